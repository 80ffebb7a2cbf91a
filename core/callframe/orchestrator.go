package callframe

import (
	"github.com/starkexec/core/address"
	"github.com/starkexec/core/felt"
	"github.com/starkexec/core/statecache"
	"github.com/starkexec/core/vmhost"
)

// MaxRecursionDepth is the default ceiling on inner-call nesting, the
// contract-call-stack-depth analogue of the teacher's MaxCallDepth.
const MaxRecursionDepth = 1024

// constructorSelector is the selector felt used to invoke a newly
// deployed contract's constructor. Production Starknet derives this from
// a Pedersen-based "selector of 'constructor'" function; no such
// function exists in the example pack (see core/address's doc comment
// and DESIGN.md), so this module uses the ASCII tag directly, consistent
// with how every other selector in this module is represented.
var constructorSelector = mustASCII("constructor")

func mustASCII(tag string) felt.Felt {
	f, err := felt.FromASCII(tag)
	if err != nil {
		panic(err)
	}
	return f
}

// Executor runs a resolved entry point against a child frame and returns
// its return data. It stands in for the Cairo VM itself (out of scope
// per SPEC_FULL.md §1): a real binding recursively re-enters the syscall
// dispatcher as the executed bytecode issues further syscalls against
// frame.
type Executor interface {
	Execute(class *vmhost.ContractClass, frame *Frame, epType EntryPointType, selector felt.Felt, calldata []felt.Felt) ([]felt.Felt, error)
}

// Orchestrator builds nested call frames for CallContract, LibraryCall,
// Delegate variants, and Deploy, running each against a child
// transactional layer over the caller's State Cache (§4.2 "Inner Call
// Orchestrator").
type Orchestrator struct {
	executor Executor
	maxDepth int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMaxRecursionDepth overrides MaxRecursionDepth.
func WithMaxRecursionDepth(n int) Option {
	return func(o *Orchestrator) { o.maxDepth = n }
}

// NewOrchestrator constructs an Orchestrator driven by executor.
func NewOrchestrator(executor Executor, opts ...Option) *Orchestrator {
	o := &Orchestrator{executor: executor, maxDepth: MaxRecursionDepth}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// openChild builds the child State Cache and child Frame shared by every
// inner-call variant (§4.2 step 1-2): a fresh cache layered over parent's,
// reset event/message counters and inner-call list, same block/tx
// context and VM handle as parent.
func (o *Orchestrator) openChild(parent *Frame, storageAddr, callerAddr felt.Address) (*Frame, error) {
	if parent.Depth+1 > o.maxDepth {
		return nil, ErrMaxRecursionDepth
	}
	child := New(statecache.NewChild(parent.Cache), storageAddr, callerAddr, parent.Block, parent.Tx, parent.VM, o)
	child.Depth = parent.Depth + 1
	return child, nil
}

// finish implements §4.2 steps 5-6: on success, merges the child cache
// into the parent, appends the child's logs preserving intra-frame
// order, and records a CallInfo; on failure, aborts the child (a no-op
// beyond documentation) and returns an ExecutionError.
func (o *Orchestrator) finish(parent, child *Frame, classHash felt.ClassHash, epType EntryPointType, selector felt.Felt, calldata []felt.Felt, retdata []felt.Felt, execErr error) ([]felt.Felt, error) {
	if execErr != nil {
		statecache.Abort(child.Cache)
		return nil, &ExecutionError{Err: execErr}
	}
	parent.Cache.Merge(child.Cache)
	parent.absorbChildLogs(child)
	parent.InnerCalls = append(parent.InnerCalls, CallInfo{
		CallerAddress:  child.CallerAddress,
		StorageAddress: child.StorageAddress,
		ClassHash:      classHash,
		EntryPointType: epType,
		Selector:       selector,
		Calldata:       calldata,
		Retdata:        retdata,
	})
	return retdata, nil
}

// InvokeCallContract implements the CallContract syscall: an external
// entry-point call to (target, selector, calldata) with
// caller_address=self, storage_address=target (§4.2 handler semantics,
// restored-from-original_source detail: caller is the *current* frame's
// self, i.e. parent.StorageAddress).
func (o *Orchestrator) InvokeCallContract(parent *Frame, target felt.Address, selector felt.Felt, calldata []felt.Felt) ([]felt.Felt, error) {
	child, err := o.openChild(parent, target, parent.StorageAddress)
	if err != nil {
		return nil, err
	}
	classHash, err := parent.Cache.ReadClassHash(target)
	if err != nil {
		return nil, err
	}
	class, err := child.Cache.ReadContractClass(classHash)
	if err != nil {
		return nil, err
	}
	retdata, execErr := o.executor.Execute(class, child, External, selector, calldata)
	return o.finish(parent, child, classHash, External, selector, calldata, retdata, execErr)
}

// InvokeLibraryCall implements LibraryCall/LibraryCallL1Handler: the
// child borrows classHash's code but preserves the *current* frame's
// storage_address and caller_address unchanged (§4.2, restored detail).
func (o *Orchestrator) InvokeLibraryCall(parent *Frame, classHash felt.ClassHash, selector felt.Felt, calldata []felt.Felt, epType EntryPointType) ([]felt.Felt, error) {
	child, err := o.openChild(parent, parent.StorageAddress, parent.CallerAddress)
	if err != nil {
		return nil, err
	}
	class, err := child.Cache.ReadContractClass(classHash)
	if err != nil {
		return nil, err
	}
	retdata, execErr := o.executor.Execute(class, child, epType, selector, calldata)
	return o.finish(parent, child, classHash, epType, selector, calldata, retdata, execErr)
}

// InvokeDelegateCall implements DelegateCall/DelegateL1Handler: resolve
// target's class hash first, then behave like InvokeLibraryCall but with
// storage_address=target and caller_address=parent's caller (the
// grandcaller, not parent's self) — restored-from-original_source detail
// covered by TestDelegateCallPreservesGrandCaller.
func (o *Orchestrator) InvokeDelegateCall(parent *Frame, target felt.Address, selector felt.Felt, calldata []felt.Felt, epType EntryPointType) ([]felt.Felt, error) {
	classHash, err := parent.Cache.ReadClassHash(target)
	if err != nil {
		return nil, err
	}
	child, err := o.openChild(parent, target, parent.CallerAddress)
	if err != nil {
		return nil, err
	}
	class, err := child.Cache.ReadContractClass(classHash)
	if err != nil {
		return nil, err
	}
	retdata, execErr := o.executor.Execute(class, child, epType, selector, calldata)
	return o.finish(parent, child, classHash, epType, selector, calldata, retdata, execErr)
}

// Deploy computes the new contract's address, binds its class hash
// inside a child cache, runs its constructor, and — only if both the
// constructor succeeds and its retdata is empty — merges the child into
// parent (§4.2 "Deploy", EXPANSION "Deploy's relationship to the
// orchestrator"). The binding and the constructor's effects land together
// in one child transactional scope: a constructor that fails, or that
// succeeds with nonempty retdata, leaves the deployer's world exactly as
// it was.
func (o *Orchestrator) Deploy(parent *Frame, classHash felt.ClassHash, salt felt.Felt, calldata []felt.Felt, deployFromZero bool) (felt.Address, error) {
	deployer := parent.StorageAddress
	if deployFromZero {
		deployer = felt.Zero
	}
	newAddr, err := address.Compute(deployer, salt, classHash, calldata)
	if err != nil {
		return felt.Felt{}, err
	}

	child, err := o.openChild(parent, newAddr, parent.StorageAddress)
	if err != nil {
		return felt.Felt{}, err
	}
	if err := child.Cache.BindClassHash(newAddr, classHash); err != nil {
		return felt.Felt{}, err
	}
	class, err := child.Cache.ReadContractClass(classHash)
	if err != nil {
		return felt.Felt{}, err
	}

	retdata, execErr := o.executor.Execute(class, child, External, constructorSelector, calldata)
	if execErr == nil && len(retdata) != 0 {
		statecache.Abort(child.Cache)
		return felt.Felt{}, ErrConstructorRetdataNotEmpty
	}
	if _, err := o.finish(parent, child, classHash, External, constructorSelector, calldata, retdata, execErr); err != nil {
		return felt.Felt{}, err
	}
	return newAddr, nil
}
