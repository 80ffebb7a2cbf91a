package syscall

import (
	"testing"

	"github.com/starkexec/core/felt"
	"github.com/starkexec/core/vmhost"
	"github.com/starkexec/core/vmtest"
)

func addrAt(b byte) felt.Address {
	var a felt.Address
	a[31] = b
	return a
}

// Round-trip law: encoding then decoding a request at a given cursor
// yields the original request.
func TestStorageReadRequestRoundTrip(t *testing.T) {
	vm := vmtest.NewMemVM()
	reqPtr := vm.NewSegment([]felt.Felt{addrAt(7)})

	req, err := decodeStorageRead(vm, reqPtr)
	if err != nil {
		t.Fatal(err)
	}
	got := req.(StorageReadRequest)
	if got.Address != addrAt(7) {
		t.Fatalf("Address = %s, want %s", got.Address, addrAt(7))
	}
}

func TestStorageReadResponseRoundTrip(t *testing.T) {
	vm := vmtest.NewMemVM()
	respPtr := vm.NewSegment([]felt.Felt{felt.Zero})

	if err := encodeStorageRead(vm, respPtr, StorageReadResponse{Value: felt.FromUint64(42)}); err != nil {
		t.Fatal(err)
	}
	v, err := vm.ReadValue(respPtr)
	if err != nil {
		t.Fatal(err)
	}
	if v != felt.FromUint64(42) {
		t.Fatalf("encoded value = %s, want 42", v)
	}
}

func TestCallRequestRoundTrip(t *testing.T) {
	vm := vmtest.NewMemVM()
	calldata := []felt.Felt{felt.FromUint64(1), felt.FromUint64(2), felt.FromUint64(3)}
	calldataPtr := vm.NewSegment(calldata)
	reqPtr := vm.NewSegment([]felt.Felt{
		addrAt(9),                                  // target
		felt.FromUint64(99),                         // selector
		felt.FromUint64(uint64(len(calldata))),      // array len
		calldataPtr.ToFelt(),                        // array ptr
	})

	req, err := decodeCall(vm, reqPtr)
	if err != nil {
		t.Fatal(err)
	}
	got := req.(CallRequest)
	if got.Target != addrAt(9) || got.Selector != felt.FromUint64(99) {
		t.Fatalf("decoded = %+v", got)
	}
	if len(got.Calldata) != 3 || got.Calldata[2] != felt.FromUint64(3) {
		t.Fatalf("calldata = %+v", got.Calldata)
	}
}

func TestRetdataResponseRoundTrip(t *testing.T) {
	vm := vmtest.NewMemVM()
	respPtr := vm.NewSegment([]felt.Felt{felt.Zero, felt.Zero})
	retdata := []felt.Felt{felt.FromUint64(11), felt.FromUint64(22)}

	if err := encodeRetdata(vm, respPtr, RetdataResponse{Retdata: retdata}); err != nil {
		t.Fatal(err)
	}
	lenFelt, err := vm.ReadValue(respPtr)
	if err != nil {
		t.Fatal(err)
	}
	if lenFelt != felt.FromUint64(2) {
		t.Fatalf("encoded len = %s, want 2", lenFelt)
	}
	ptrFelt, err := vm.ReadValue(respPtr.Add(1))
	if err != nil {
		t.Fatal(err)
	}
	got, err := vm.ReadValues(vmhost.PtrFromFelt(ptrFelt), 2)
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != retdata[0] || got[1] != retdata[1] {
		t.Fatalf("retdata = %+v, want %+v", got, retdata)
	}
}

func TestDeployResponseEncoding(t *testing.T) {
	vm := vmtest.NewMemVM()
	respPtr := vm.NewSegment([]felt.Felt{felt.Zero, felt.Zero, felt.Zero})

	if err := encodeDeploy(vm, respPtr, DeployResponse{Address: addrAt(5)}); err != nil {
		t.Fatal(err)
	}
	vs, err := vm.ReadValues(respPtr, 3)
	if err != nil {
		t.Fatal(err)
	}
	if vs[0] != addrAt(5) || vs[1] != felt.Zero || vs[2] != felt.Zero {
		t.Fatalf("deploy response = %+v, want (addr, 0, 0)", vs)
	}
}
