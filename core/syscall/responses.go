package syscall

import (
	"github.com/starkexec/core/felt"
	"github.com/starkexec/core/vmhost"
)

// Response is a marker interface implemented by one concrete struct per
// selector, per Design Note "Dispatch table."
type Response interface{ isResponse() }

type StorageReadResponse struct{ Value felt.Felt }

func (StorageReadResponse) isResponse() {}

// EmptyResponse is encoded by every selector with no response fields
// (StorageWrite, EmitEvent, SendMessageToL1).
type EmptyResponse struct{}

func (EmptyResponse) isResponse() {}

// RetdataResponse is shared by CallContract, LibraryCall,
// LibraryCallL1Handler, DelegateCall, and DelegateL1Handler, all of which
// respond with an ARRAY_META over the inner call's return data.
type RetdataResponse struct{ Retdata []felt.Felt }

func (RetdataResponse) isResponse() {}

type DeployResponse struct{ Address felt.Address }

func (DeployResponse) isResponse() {}

type FeltResponse struct{ Value felt.Felt }

func (FeltResponse) isResponse() {}

// SegmentResponse is GetTxSignature's response: a (start, length) pair
// describing a read-only VM segment.
type SegmentResponse struct {
	Start  vmhost.Ptr
	Length int
}

func (SegmentResponse) isResponse() {}

// PtrResponse is GetTxInfo's response: the start of a read-only VM
// segment holding the tx-info struct.
type PtrResponse struct{ Start vmhost.Ptr }

func (PtrResponse) isResponse() {}

func encodeStorageRead(vm vmhost.VM, cursor vmhost.Ptr, resp Response) error {
	return writeValue(vm, cursor, resp.(StorageReadResponse).Value)
}

func encodeEmpty(vm vmhost.VM, cursor vmhost.Ptr, resp Response) error {
	return nil
}

func encodeRetdata(vm vmhost.VM, cursor vmhost.Ptr, resp Response) error {
	_, err := encodeArray(vm, cursor, resp.(RetdataResponse).Retdata)
	return err
}

// encodeDeploy writes (address, 0, 0): the new address followed by a
// zero-length, zero-pointer ARRAY_META, since a successful Deploy
// requires empty constructor retdata (§4.2, §7 InvalidResponse).
func encodeDeploy(vm vmhost.VM, cursor vmhost.Ptr, resp Response) error {
	d := resp.(DeployResponse)
	if err := writeValue(vm, cursor, d.Address); err != nil {
		return err
	}
	if err := writeValue(vm, cursor.Add(1), felt.Zero); err != nil {
		return err
	}
	return writeValue(vm, cursor.Add(2), felt.Zero)
}

func encodeFelt(vm vmhost.VM, cursor vmhost.Ptr, resp Response) error {
	return writeValue(vm, cursor, resp.(FeltResponse).Value)
}

func encodeSegment(vm vmhost.VM, cursor vmhost.Ptr, resp Response) error {
	s := resp.(SegmentResponse)
	if err := writeValue(vm, cursor, s.Start.ToFelt()); err != nil {
		return err
	}
	return writeValue(vm, cursor.Add(1), felt.FromUint64(uint64(s.Length)))
}

func encodePtr(vm vmhost.VM, cursor vmhost.Ptr, resp Response) error {
	return writeValue(vm, cursor, resp.(PtrResponse).Start.ToFelt())
}
