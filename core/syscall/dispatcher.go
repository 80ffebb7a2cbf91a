package syscall

import (
	"github.com/starkexec/core/callframe"
	"github.com/starkexec/core/log"
	"github.com/starkexec/core/vmhost"
)

var logger = log.Default().Module("dispatcher")

// Entry is one row of the dispatch table (§9 "Dispatch table"): a
// selector's statically known request/response sizes (in field-element
// slots) plus its (decode, handle, encode) triple.
type Entry struct {
	Selector Selector
	ReqSize  int
	RespSize int
	Decode   func(vm vmhost.VM, ptr vmhost.Ptr) (Request, error)
	Handle   func(ctx *callframe.Frame, req Request) (Response, error)
	Encode   func(vm vmhost.VM, ptr vmhost.Ptr, resp Response) error
}

const arrayMeta = 2

// Table is the selector → Entry dispatch table, built once and passed
// by reference (§9 "No global mutable state").
type Table struct {
	entries map[Selector]Entry
}

// NewTable builds the complete dispatch table for every selector in
// §4.2's selector set.
func NewTable() *Table {
	entries := map[Selector]Entry{
		StorageRead: {
			Selector: StorageRead, ReqSize: 1, RespSize: 1,
			Decode: decodeStorageRead, Handle: handleStorageRead, Encode: encodeStorageRead,
		},
		StorageWrite: {
			Selector: StorageWrite, ReqSize: 2, RespSize: 0,
			Decode: decodeStorageWrite, Handle: handleStorageWrite, Encode: encodeEmpty,
		},
		CallContract: {
			Selector: CallContract, ReqSize: 2 + arrayMeta, RespSize: arrayMeta,
			Decode: decodeCall, Handle: handleCallContract, Encode: encodeRetdata,
		},
		LibraryCall: {
			Selector: LibraryCall, ReqSize: 2 + arrayMeta, RespSize: arrayMeta,
			Decode: decodeLibraryCall, Handle: handleLibraryCall, Encode: encodeRetdata,
		},
		LibraryCallL1Handler: {
			Selector: LibraryCallL1Handler, ReqSize: 2 + arrayMeta, RespSize: arrayMeta,
			Decode: decodeLibraryCall, Handle: handleLibraryCallL1Handler, Encode: encodeRetdata,
		},
		DelegateCall: {
			Selector: DelegateCall, ReqSize: 2 + arrayMeta, RespSize: arrayMeta,
			Decode: decodeCall, Handle: handleDelegateCall, Encode: encodeRetdata,
		},
		DelegateL1Handler: {
			Selector: DelegateL1Handler, ReqSize: 2 + arrayMeta, RespSize: arrayMeta,
			Decode: decodeCall, Handle: handleDelegateL1Handler, Encode: encodeRetdata,
		},
		Deploy: {
			Selector: Deploy, ReqSize: 3 + arrayMeta, RespSize: 1 + arrayMeta,
			Decode: decodeDeploy, Handle: handleDeploy, Encode: encodeDeploy,
		},
		EmitEvent: {
			Selector: EmitEvent, ReqSize: 2 * arrayMeta, RespSize: 0,
			Decode: decodeEmitEvent, Handle: handleEmitEvent, Encode: encodeEmpty,
		},
		SendMessageToL1: {
			Selector: SendMessageToL1, ReqSize: 1 + arrayMeta, RespSize: 0,
			Decode: decodeSendMessageToL1, Handle: handleSendMessageToL1, Encode: encodeEmpty,
		},
		GetBlockNumber: {
			Selector: GetBlockNumber, ReqSize: 0, RespSize: 1,
			Decode: decodeEmpty, Handle: handleGetBlockNumber, Encode: encodeFelt,
		},
		GetBlockTimestamp: {
			Selector: GetBlockTimestamp, ReqSize: 0, RespSize: 1,
			Decode: decodeEmpty, Handle: handleGetBlockTimestamp, Encode: encodeFelt,
		},
		GetCallerAddress: {
			Selector: GetCallerAddress, ReqSize: 0, RespSize: 1,
			Decode: decodeEmpty, Handle: handleGetCallerAddress, Encode: encodeFelt,
		},
		GetContractAddress: {
			Selector: GetContractAddress, ReqSize: 0, RespSize: 1,
			Decode: decodeEmpty, Handle: handleGetContractAddress, Encode: encodeFelt,
		},
		GetSequencerAddress: {
			Selector: GetSequencerAddress, ReqSize: 0, RespSize: 1,
			Decode: decodeEmpty, Handle: handleGetSequencerAddress, Encode: encodeFelt,
		},
		GetTxSignature: {
			Selector: GetTxSignature, ReqSize: 0, RespSize: arrayMeta,
			Decode: decodeEmpty, Handle: handleGetTxSignature, Encode: encodeSegment,
		},
		GetTxInfo: {
			Selector: GetTxInfo, ReqSize: 0, RespSize: 1,
			Decode: decodeEmpty, Handle: handleGetTxInfo, Encode: encodePtr,
		},
	}
	return &Table{entries: entries}
}

// Lookup returns the Entry for sel, or false if sel is not in the table
// (which should not happen for any Selector DecodeSelector can produce).
func (t *Table) Lookup(sel Selector) (Entry, bool) {
	e, ok := t.entries[sel]
	return e, ok
}

// Dispatch decodes a selector word at selectorPtr, decodes its request
// at reqPtr, invokes the corresponding handler against ctx, and encodes
// the response at respPtr (§4.2 "Syscall Dispatcher").
func (t *Table) Dispatch(vm vmhost.VM, ctx *callframe.Frame, selectorPtr, reqPtr, respPtr vmhost.Ptr) error {
	raw, err := vm.ReadValue(selectorPtr)
	if err != nil {
		return &MemoryError{Err: err}
	}
	sel, err := DecodeSelector(raw)
	if err != nil {
		return err
	}
	entry, ok := t.Lookup(sel)
	if !ok {
		// Unreachable: every Selector DecodeSelector can return has a
		// table entry. Surfaced as InvalidSelector rather than a panic.
		return &InvalidSelector{Raw: raw}
	}

	req, err := entry.Decode(vm, reqPtr)
	if err != nil {
		return err
	}
	logger.Debug("dispatching syscall", "selector", sel.String())
	resp, err := entry.Handle(ctx, req)
	if err != nil {
		return err
	}
	return entry.Encode(vm, respPtr, resp)
}
