package syscall

import (
	"fmt"

	"github.com/starkexec/core/felt"
	"github.com/starkexec/core/vmhost"
)

// Request is a marker interface implemented by one concrete struct per
// selector, per Design Note "Dispatch table."
type Request interface{ isRequest() }

type StorageReadRequest struct{ Address felt.Address }

func (StorageReadRequest) isRequest() {}

type StorageWriteRequest struct {
	Address felt.Address
	Value   felt.Felt
}

func (StorageWriteRequest) isRequest() {}

// CallRequest is shared by CallContract and DelegateCall/DelegateL1Handler,
// all of which decode (target, selector, calldata ARRAY_META).
type CallRequest struct {
	Target   felt.Address
	Selector felt.Felt
	Calldata []felt.Felt
}

func (CallRequest) isRequest() {}

// LibraryCallRequest is shared by LibraryCall and LibraryCallL1Handler,
// which decode (class_hash, selector, calldata ARRAY_META).
type LibraryCallRequest struct {
	ClassHash felt.ClassHash
	Selector  felt.Felt
	Calldata  []felt.Felt
}

func (LibraryCallRequest) isRequest() {}

type DeployRequest struct {
	ClassHash      felt.ClassHash
	Salt           felt.Felt
	Calldata       []felt.Felt
	DeployFromZero bool
}

func (DeployRequest) isRequest() {}

type EmitEventRequest struct {
	Keys []felt.Felt
	Data []felt.Felt
}

func (EmitEventRequest) isRequest() {}

type SendMessageToL1Request struct {
	To      felt.EthAddress
	Payload []felt.Felt
}

func (SendMessageToL1Request) isRequest() {}

// EmptyRequest is decoded by every selector with no request fields
// (GetBlockNumber, GetBlockTimestamp, GetCallerAddress, GetContractAddress,
// GetSequencerAddress, GetTxSignature, GetTxInfo).
type EmptyRequest struct{}

func (EmptyRequest) isRequest() {}

func decodeStorageRead(vm vmhost.VM, cursor vmhost.Ptr) (Request, error) {
	addr, err := readValue(vm, cursor)
	if err != nil {
		return nil, err
	}
	return StorageReadRequest{Address: addr}, nil
}

func decodeStorageWrite(vm vmhost.VM, cursor vmhost.Ptr) (Request, error) {
	addr, err := readValue(vm, cursor)
	if err != nil {
		return nil, err
	}
	value, err := readValue(vm, cursor.Add(1))
	if err != nil {
		return nil, err
	}
	return StorageWriteRequest{Address: addr, Value: value}, nil
}

func decodeCall(vm vmhost.VM, cursor vmhost.Ptr) (Request, error) {
	target, err := readValue(vm, cursor)
	if err != nil {
		return nil, err
	}
	sel, err := readValue(vm, cursor.Add(1))
	if err != nil {
		return nil, err
	}
	calldata, _, err := decodeArray(vm, cursor.Add(2))
	if err != nil {
		return nil, err
	}
	return CallRequest{Target: target, Selector: sel, Calldata: calldata}, nil
}

func decodeLibraryCall(vm vmhost.VM, cursor vmhost.Ptr) (Request, error) {
	classHash, err := readValue(vm, cursor)
	if err != nil {
		return nil, err
	}
	sel, err := readValue(vm, cursor.Add(1))
	if err != nil {
		return nil, err
	}
	calldata, _, err := decodeArray(vm, cursor.Add(2))
	if err != nil {
		return nil, err
	}
	return LibraryCallRequest{ClassHash: classHash, Selector: sel, Calldata: calldata}, nil
}

func decodeDeploy(vm vmhost.VM, cursor vmhost.Ptr) (Request, error) {
	classHash, err := readValue(vm, cursor)
	if err != nil {
		return nil, err
	}
	salt, err := readValue(vm, cursor.Add(1))
	if err != nil {
		return nil, err
	}
	calldata, next, err := decodeArray(vm, cursor.Add(2))
	if err != nil {
		return nil, err
	}
	flagFelt, err := readValue(vm, next)
	if err != nil {
		return nil, err
	}
	flag, err := felt.BoolFromFelt(flagFelt)
	if err != nil {
		return nil, &InvalidArgument{Err: fmt.Errorf("deploy_from_zero: %w", err)}
	}
	return DeployRequest{ClassHash: classHash, Salt: salt, Calldata: calldata, DeployFromZero: flag}, nil
}

func decodeEmitEvent(vm vmhost.VM, cursor vmhost.Ptr) (Request, error) {
	keys, next, err := decodeArray(vm, cursor)
	if err != nil {
		return nil, err
	}
	data, _, err := decodeArray(vm, next)
	if err != nil {
		return nil, err
	}
	return EmitEventRequest{Keys: keys, Data: data}, nil
}

func decodeSendMessageToL1(vm vmhost.VM, cursor vmhost.Ptr) (Request, error) {
	toFelt, err := readValue(vm, cursor)
	if err != nil {
		return nil, err
	}
	to, err := felt.EthAddressFromFelt(toFelt)
	if err != nil {
		return nil, &InvalidArgument{Err: err}
	}
	payload, _, err := decodeArray(vm, cursor.Add(1))
	if err != nil {
		return nil, err
	}
	return SendMessageToL1Request{To: to, Payload: payload}, nil
}

func decodeEmpty(vm vmhost.VM, cursor vmhost.Ptr) (Request, error) {
	return EmptyRequest{}, nil
}
