package syscall

import (
	"errors"
	"testing"

	"github.com/starkexec/core/address"
	"github.com/starkexec/core/callframe"
	"github.com/starkexec/core/context"
	"github.com/starkexec/core/felt"
	"github.com/starkexec/core/statecache"
	"github.com/starkexec/core/vmhost"
	"github.com/starkexec/core/vmtest"
)

func newFrame(t *testing.T, vm vmhost.VM, orch *callframe.Orchestrator, storage, caller felt.Address) *callframe.Frame {
	t.Helper()
	reader := vmtest.NewStateReader()
	cache := statecache.New(reader)
	return callframe.New(cache, storage, caller, context.Block{}, context.AccountTransaction{}, vm, orch)
}

func selectorSegment(vm *vmtest.MemVM, tag string) vmhost.Ptr {
	f, err := felt.FromASCII(tag)
	if err != nil {
		panic(err)
	}
	return vm.NewSegment([]felt.Felt{f})
}

func TestDispatchStorageReadWrite(t *testing.T) {
	table := NewTable()
	vm := vmtest.NewMemVM()
	orch := callframe.NewOrchestrator(vmtest.NewScriptedExecutor())
	ctx := newFrame(t, vm, orch, addrAt(1), felt.Zero)

	selPtr := selectorSegment(vm, "StorageWrite")
	reqPtr := vm.NewSegment([]felt.Felt{felt.FromUint64(100), felt.FromUint64(7)})
	respPtr := vm.NewSegment(nil)
	if err := table.Dispatch(vm, ctx, selPtr, reqPtr, respPtr); err != nil {
		t.Fatalf("StorageWrite dispatch: %v", err)
	}

	selPtr2 := selectorSegment(vm, "StorageRead")
	reqPtr2 := vm.NewSegment([]felt.Felt{felt.FromUint64(100)})
	respPtr2 := vm.NewSegment([]felt.Felt{felt.Zero})
	if err := table.Dispatch(vm, ctx, selPtr2, reqPtr2, respPtr2); err != nil {
		t.Fatalf("StorageRead dispatch: %v", err)
	}
	v, err := vm.ReadValue(respPtr2)
	if err != nil {
		t.Fatal(err)
	}
	if v != felt.FromUint64(7) {
		t.Fatalf("read back = %s, want 7", v)
	}
}

func TestDispatchGetContextValues(t *testing.T) {
	table := NewTable()
	vm := vmtest.NewMemVM()
	orch := callframe.NewOrchestrator(vmtest.NewScriptedExecutor())
	ctx := newFrame(t, vm, orch, addrAt(1), addrAt(2))
	ctx.Block.BlockNumber = 55

	selPtr := selectorSegment(vm, "GetBlockNumber")
	respPtr := vm.NewSegment([]felt.Felt{felt.Zero})
	if err := table.Dispatch(vm, ctx, selPtr, vmhost.Ptr{}, respPtr); err != nil {
		t.Fatalf("GetBlockNumber dispatch: %v", err)
	}
	v, _ := vm.ReadValue(respPtr)
	if v != felt.FromUint64(55) {
		t.Fatalf("block number = %s, want 55", v)
	}
}

func TestDispatchUnknownSelector(t *testing.T) {
	table := NewTable()
	vm := vmtest.NewMemVM()
	orch := callframe.NewOrchestrator(vmtest.NewScriptedExecutor())
	ctx := newFrame(t, vm, orch, addrAt(1), felt.Zero)

	selPtr := selectorSegment(vm, "NotASelector")
	err := table.Dispatch(vm, ctx, selPtr, vmhost.Ptr{}, vmhost.Ptr{})
	var invalid *InvalidSelector
	if !errors.As(err, &invalid) {
		t.Fatalf("Dispatch(unknown) = %v, want *InvalidSelector", err)
	}
}

// S3 — Deploy and immediately call.
func TestS3DeployAndCall(t *testing.T) {
	executor := vmtest.NewScriptedExecutor()
	classHash := felt.FromUint64(77)
	executor.Scripts[classHash] = func(frame *callframe.Frame, selector felt.Felt, calldata []felt.Felt) ([]felt.Felt, error) {
		return nil, nil // constructor: no-op, empty retdata
	}

	table := NewTable()
	vm := vmtest.NewMemVM()
	orch := callframe.NewOrchestrator(executor)
	deployer := addrAt(1)
	ctx := newFrame(t, vm, orch, deployer, felt.Zero)
	ctx.Cache.InstallContractClass(classHash, &vmhost.ContractClass{ClassHash: classHash})

	salt := felt.FromUint64(5)
	selPtr := selectorSegment(vm, "Deploy")
	calldataPtr := vm.NewSegment(nil)
	reqPtr := vm.NewSegment([]felt.Felt{
		classHash,
		salt,
		felt.Zero, // calldata len = 0
		calldataPtr.ToFelt(),
		felt.FromBool(false), // deploy_from_zero
	})
	respPtr := vm.NewSegment([]felt.Felt{felt.Zero, felt.Zero, felt.Zero})

	if err := table.Dispatch(vm, ctx, selPtr, reqPtr, respPtr); err != nil {
		t.Fatalf("Deploy dispatch: %v", err)
	}

	wantAddr, err := address.Compute(deployer, salt, classHash, nil)
	if err != nil {
		t.Fatal(err)
	}
	vs, err := vm.ReadValues(respPtr, 3)
	if err != nil {
		t.Fatal(err)
	}
	if vs[0] != wantAddr || vs[1] != felt.Zero || vs[2] != felt.Zero {
		t.Fatalf("deploy response = %+v, want (%s, 0, 0)", vs, wantAddr)
	}

	// Subsequent bind_class_hash(a, h') fails with AddressUnavailable.
	err = ctx.Cache.BindClassHash(wantAddr, felt.FromUint64(999))
	var unavailable *statecache.AddressUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("rebind after deploy = %v, want *AddressUnavailable", err)
	}
}

func TestDeployRejectsNonEmptyConstructorRetdata(t *testing.T) {
	executor := vmtest.NewScriptedExecutor()
	classHash := felt.FromUint64(88)
	executor.Scripts[classHash] = func(frame *callframe.Frame, selector felt.Felt, calldata []felt.Felt) ([]felt.Felt, error) {
		return []felt.Felt{felt.FromUint64(1)}, nil
	}

	table := NewTable()
	vm := vmtest.NewMemVM()
	orch := callframe.NewOrchestrator(executor)
	ctx := newFrame(t, vm, orch, addrAt(1), felt.Zero)
	ctx.Cache.InstallContractClass(classHash, &vmhost.ContractClass{ClassHash: classHash})

	selPtr := selectorSegment(vm, "Deploy")
	calldataPtr := vm.NewSegment(nil)
	reqPtr := vm.NewSegment([]felt.Felt{
		classHash, felt.FromUint64(1), felt.Zero, calldataPtr.ToFelt(), felt.FromBool(false),
	})
	respPtr := vm.NewSegment([]felt.Felt{felt.Zero, felt.Zero, felt.Zero})

	err := table.Dispatch(vm, ctx, selPtr, reqPtr, respPtr)
	if !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("Deploy with nonempty retdata = %v, want ErrInvalidResponse", err)
	}

	diff := ctx.Cache.StateDiff()
	if len(diff.DeployedContracts) != 0 {
		t.Fatalf("deploy diff after rejected constructor = %+v, want none", diff.DeployedContracts)
	}
}

// S4 — Event ordering across inner call.
func TestS4EventOrderingAcrossInnerCall(t *testing.T) {
	executor := vmtest.NewScriptedExecutor()
	childClass := felt.FromUint64(42)
	executor.Scripts[childClass] = func(frame *callframe.Frame, selector felt.Felt, calldata []felt.Felt) ([]felt.Felt, error) {
		frame.EmitEvent([]felt.Felt{felt.FromUint64(100)}, nil) // C0
		frame.EmitEvent([]felt.Felt{felt.FromUint64(101)}, nil) // C1
		return nil, nil
	}

	orch := callframe.NewOrchestrator(executor)
	vm := vmtest.NewMemVM()
	target := addrAt(2)
	parent := newFrame(t, vm, orch, addrAt(1), felt.Zero)
	parent.Cache.BindClassHash(target, childClass)
	parent.Cache.InstallContractClass(childClass, &vmhost.ContractClass{ClassHash: childClass})

	parent.EmitEvent([]felt.Felt{felt.FromUint64(0)}, nil) // E0
	if _, err := orch.InvokeCallContract(parent, target, felt.FromUint64(1), nil); err != nil {
		t.Fatalf("InvokeCallContract: %v", err)
	}
	parent.EmitEvent([]felt.Felt{felt.FromUint64(1)}, nil) // E1

	if len(parent.Events) != 4 {
		t.Fatalf("len(Events) = %d, want 4", len(parent.Events))
	}
	for i, e := range parent.Events {
		if e.Order != uint64(i) {
			t.Fatalf("Events[%d].Order = %d, want %d", i, e.Order, i)
		}
	}
	if parent.Events[1].Keys[0] != felt.FromUint64(100) || parent.Events[2].Keys[0] != felt.FromUint64(101) {
		t.Fatalf("Events = %+v, want E0,C0,C1,E1 order", parent.Events)
	}
}

// Additional property: orchestrator renumbering gap-free across two
// inner calls.
func TestOrchestratorRenumberingAcrossTwoInnerCalls(t *testing.T) {
	executor := vmtest.NewScriptedExecutor()
	classHash := felt.FromUint64(9)
	executor.Scripts[classHash] = func(frame *callframe.Frame, selector felt.Felt, calldata []felt.Felt) ([]felt.Felt, error) {
		frame.EmitEvent(nil, nil)
		frame.EmitEvent(nil, nil)
		return nil, nil
	}

	orch := callframe.NewOrchestrator(executor)
	vm := vmtest.NewMemVM()
	target := addrAt(3)
	parent := newFrame(t, vm, orch, addrAt(1), felt.Zero)
	parent.Cache.BindClassHash(target, classHash)
	parent.Cache.InstallContractClass(classHash, &vmhost.ContractClass{ClassHash: classHash})

	if _, err := orch.InvokeCallContract(parent, target, felt.Zero, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := orch.InvokeCallContract(parent, target, felt.Zero, nil); err != nil {
		t.Fatal(err)
	}

	if len(parent.Events) != 4 {
		t.Fatalf("len(Events) = %d, want 4", len(parent.Events))
	}
	for i, e := range parent.Events {
		if e.Order != uint64(i) {
			t.Fatalf("Events[%d].Order = %d, want %d (gap-free across both inner calls)", i, e.Order, i)
		}
	}
}

// S5 at the orchestrator level — failed inner call discards writes.
func TestS5OrchestratorAbortDiscardsWrites(t *testing.T) {
	executor := vmtest.NewScriptedExecutor()
	classHash := felt.FromUint64(13)
	boom := errors.New("boom")
	executor.Scripts[classHash] = func(frame *callframe.Frame, selector felt.Felt, calldata []felt.Felt) ([]felt.Felt, error) {
		frame.Cache.WriteStorage(frame.StorageAddress, felt.FromUint64(1), felt.FromUint64(2))
		return nil, boom
	}

	orch := callframe.NewOrchestrator(executor)
	vm := vmtest.NewMemVM()
	target := addrAt(4)
	parent := newFrame(t, vm, orch, addrAt(1), felt.Zero)
	parent.Cache.BindClassHash(target, classHash)
	parent.Cache.InstallContractClass(classHash, &vmhost.ContractClass{ClassHash: classHash})
	parent.Cache.WriteStorage(target, felt.FromUint64(1), felt.FromUint64(1))

	_, err := orch.InvokeCallContract(parent, target, felt.Zero, nil)
	var execErr *callframe.ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("InvokeCallContract error = %v, want *callframe.ExecutionError", err)
	}

	v, err := parent.Cache.ReadStorage(target, felt.FromUint64(1))
	if err != nil {
		t.Fatal(err)
	}
	if v != felt.FromUint64(1) {
		t.Fatalf("storage after abort = %s, want 1 (failed inner call must not leak writes)", v)
	}
}

// Restored-from-original_source detail: DelegateCall's caller_address is
// the grandcaller (the current frame's caller), not the current frame's
// self — unlike CallContract.
func TestDelegateCallPreservesGrandCaller(t *testing.T) {
	var observedCaller felt.Address
	executor := vmtest.NewScriptedExecutor()
	classHash := felt.FromUint64(21)
	executor.Scripts[classHash] = func(frame *callframe.Frame, selector felt.Felt, calldata []felt.Felt) ([]felt.Felt, error) {
		observedCaller = frame.CallerAddress
		return nil, nil
	}

	orch := callframe.NewOrchestrator(executor)
	vm := vmtest.NewMemVM()
	target := addrAt(5)
	grandcaller := addrAt(6)
	parent := newFrame(t, vm, orch, addrAt(1), grandcaller)
	parent.Cache.BindClassHash(target, classHash)
	parent.Cache.InstallContractClass(classHash, &vmhost.ContractClass{ClassHash: classHash})

	if _, err := orch.InvokeDelegateCall(parent, target, felt.Zero, nil, callframe.External); err != nil {
		t.Fatal(err)
	}
	if observedCaller != grandcaller {
		t.Fatalf("DelegateCall child caller = %s, want grandcaller %s", observedCaller, grandcaller)
	}
}

func TestCallContractUsesSelfAsCaller(t *testing.T) {
	var observedCaller felt.Address
	executor := vmtest.NewScriptedExecutor()
	classHash := felt.FromUint64(22)
	executor.Scripts[classHash] = func(frame *callframe.Frame, selector felt.Felt, calldata []felt.Felt) ([]felt.Felt, error) {
		observedCaller = frame.CallerAddress
		return nil, nil
	}

	orch := callframe.NewOrchestrator(executor)
	vm := vmtest.NewMemVM()
	target := addrAt(7)
	self := addrAt(1)
	parent := newFrame(t, vm, orch, self, addrAt(99))
	parent.Cache.BindClassHash(target, classHash)
	parent.Cache.InstallContractClass(classHash, &vmhost.ContractClass{ClassHash: classHash})

	if _, err := orch.InvokeCallContract(parent, target, felt.Zero, nil); err != nil {
		t.Fatal(err)
	}
	if observedCaller != self {
		t.Fatalf("CallContract child caller = %s, want self %s", observedCaller, self)
	}
}
