// Package callframe implements the call frame (§3 "Call frame") that
// backs every syscall handler invocation, and the Inner Call Orchestrator
// (§4.2) that builds and runs nested call frames for CallContract,
// LibraryCall, Delegate variants, and Deploy.
package callframe

import (
	"github.com/starkexec/core/context"
	"github.com/starkexec/core/felt"
	"github.com/starkexec/core/log"
	"github.com/starkexec/core/statecache"
	"github.com/starkexec/core/vmhost"
)

var logger = log.Default().Module("callframe")

// EntryPointType distinguishes an External entry point from an
// L1Handler one, per the LibraryCallL1Handler/DelegateL1Handler variants.
type EntryPointType int

const (
	External EntryPointType = iota
	L1Handler
)

// OrderedEvent is an event appended to a frame's log, carrying its
// frame-local emission order.
type OrderedEvent struct {
	Order uint64
	Keys  []felt.Felt
	Data  []felt.Felt
}

// OrderedL2ToL1Message is a message appended to a frame's log, carrying
// its frame-local emission order.
type OrderedL2ToL1Message struct {
	Order   uint64
	To      felt.EthAddress
	Payload []felt.Felt
}

// CallInfo records one inner call made from this frame, for the parent's
// inner-call list (§4.2 step 5).
type CallInfo struct {
	CallerAddress  felt.Address
	StorageAddress felt.Address
	ClassHash      felt.ClassHash
	EntryPointType EntryPointType
	Selector       felt.Felt
	Calldata       []felt.Felt
	Retdata        []felt.Felt
}

// Frame is the syscall handler context (§3 "Call frame"): a mutable
// State Cache reference, the acting identity (self/caller), read-only
// block and transaction context, frame-local ordered logs, the inner-call
// list, and the VM handle used to allocate this frame's own memoized
// read-only segments.
type Frame struct {
	Cache          *statecache.Cache
	StorageAddress felt.Address
	CallerAddress  felt.Address
	Block          context.Block
	Tx             context.AccountTransaction
	VM             vmhost.VM
	Orchestrator   *Orchestrator

	Depth int

	nEmittedEvents uint64
	nSentMessages  uint64
	Events         []OrderedEvent
	Messages       []OrderedL2ToL1Message
	InnerCalls     []CallInfo

	txSignatureSegment *vmhost.Ptr
	txInfoSegment      *vmhost.Ptr
}

// New constructs a top-level frame: depth 0, empty logs, over cache.
func New(cache *statecache.Cache, storageAddress, callerAddress felt.Address, block context.Block, tx context.AccountTransaction, vm vmhost.VM, orchestrator *Orchestrator) *Frame {
	return &Frame{
		Cache:          cache,
		StorageAddress: storageAddress,
		CallerAddress:  callerAddress,
		Block:          block,
		Tx:             tx,
		VM:             vm,
		Orchestrator:   orchestrator,
	}
}

// EmitEvent appends an OrderedEvent at the frame's next event order and
// advances the counter (§4.2 "EmitEvent").
func (f *Frame) EmitEvent(keys, data []felt.Felt) {
	f.Events = append(f.Events, OrderedEvent{Order: f.nEmittedEvents, Keys: keys, Data: data})
	f.nEmittedEvents++
}

// SendMessage appends an OrderedL2ToL1Message at the frame's next message
// order and advances the counter (§4.2 "SendMessageToL1").
func (f *Frame) SendMessage(to felt.EthAddress, payload []felt.Felt) {
	f.Messages = append(f.Messages, OrderedL2ToL1Message{Order: f.nSentMessages, To: to, Payload: payload})
	f.nSentMessages++
}

// NEmittedEvents returns the frame's current event counter.
func (f *Frame) NEmittedEvents() uint64 { return f.nEmittedEvents }

// NSentMessages returns the frame's current message counter.
func (f *Frame) NSentMessages() uint64 { return f.nSentMessages }

// absorbChildLogs appends child's events and messages after f's own,
// advancing f's counters by the number of entries merged so that order
// stays gap-free across the combined log (§4.2 step 5, §9 "Ordered log
// merge").
func (f *Frame) absorbChildLogs(child *Frame) {
	base := f.nEmittedEvents
	for _, e := range child.Events {
		f.Events = append(f.Events, OrderedEvent{Order: base + e.Order, Keys: e.Keys, Data: e.Data})
	}
	f.nEmittedEvents += uint64(len(child.Events))

	msgBase := f.nSentMessages
	for _, m := range child.Messages {
		f.Messages = append(f.Messages, OrderedL2ToL1Message{Order: msgBase + m.Order, To: m.To, Payload: m.Payload})
	}
	f.nSentMessages += uint64(len(child.Messages))
}

// GetTxSignatureSegment lazily allocates and memoizes a read-only VM
// segment holding the transaction's signature felts, returning its start
// pointer and length (§4.2 "GetTxSignature").
func (f *Frame) GetTxSignatureSegment() (vmhost.Ptr, int, error) {
	if f.txSignatureSegment != nil {
		return *f.txSignatureSegment, len(f.Tx.Signature), nil
	}
	seg, err := f.VM.AllocateSegment()
	if err != nil {
		return vmhost.Ptr{}, 0, err
	}
	if err := f.VM.LoadData(seg, f.Tx.Signature); err != nil {
		return vmhost.Ptr{}, 0, err
	}
	f.txSignatureSegment = &seg
	return seg, len(f.Tx.Signature), nil
}

// txInfoSlots is the (version, account_contract_address, max_fee,
// signature_start, signature_len, transaction_hash, chain_id, nonce)
// layout of the tx-info struct memoized by GetTxInfo.
func (f *Frame) txInfoSlots() ([]felt.Felt, error) {
	sigStart, sigLen, err := f.GetTxSignatureSegment()
	if err != nil {
		return nil, err
	}
	return []felt.Felt{
		f.Tx.Version,
		f.Tx.AccountContractAddress,
		f.Tx.MaxFee,
		sigStart.ToFelt(),
		felt.FromUint64(uint64(sigLen)),
		f.Tx.TransactionHash,
		f.Block.ChainID,
		f.Tx.Nonce,
	}, nil
}

// GetTxInfoSegment lazily allocates and memoizes a read-only VM segment
// holding the tx-info struct, returning its start pointer (§4.2
// "GetTxInfo").
func (f *Frame) GetTxInfoSegment() (vmhost.Ptr, error) {
	if f.txInfoSegment != nil {
		return *f.txInfoSegment, nil
	}
	slots, err := f.txInfoSlots()
	if err != nil {
		return vmhost.Ptr{}, err
	}
	seg, err := f.VM.AllocateSegment()
	if err != nil {
		return vmhost.Ptr{}, err
	}
	if err := f.VM.LoadData(seg, slots); err != nil {
		return vmhost.Ptr{}, err
	}
	f.txInfoSegment = &seg
	return seg, nil
}
