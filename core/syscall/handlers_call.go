package syscall

import (
	"errors"

	"github.com/starkexec/core/callframe"
)

// handleCallContract implements §4.2's CallContract handler: an external
// entry-point call to (target, selector, calldata) with caller=self,
// storage=target.
func handleCallContract(ctx *callframe.Frame, req Request) (Response, error) {
	r := req.(CallRequest)
	retdata, err := ctx.Orchestrator.InvokeCallContract(ctx, r.Target, r.Selector, r.Calldata)
	if err != nil {
		return nil, wrapOrchestratorError(err)
	}
	return RetdataResponse{Retdata: retdata}, nil
}

// handleLibraryCall implements LibraryCall: code borrowed from
// class_hash, acting identity (storage/caller) unchanged.
func handleLibraryCall(ctx *callframe.Frame, req Request) (Response, error) {
	r := req.(LibraryCallRequest)
	retdata, err := ctx.Orchestrator.InvokeLibraryCall(ctx, r.ClassHash, r.Selector, r.Calldata, callframe.External)
	if err != nil {
		return nil, wrapOrchestratorError(err)
	}
	return RetdataResponse{Retdata: retdata}, nil
}

// handleLibraryCallL1Handler implements LibraryCallL1Handler: identical
// to LibraryCall but against the L1Handler entry-point type.
func handleLibraryCallL1Handler(ctx *callframe.Frame, req Request) (Response, error) {
	r := req.(LibraryCallRequest)
	retdata, err := ctx.Orchestrator.InvokeLibraryCall(ctx, r.ClassHash, r.Selector, r.Calldata, callframe.L1Handler)
	if err != nil {
		return nil, wrapOrchestratorError(err)
	}
	return RetdataResponse{Retdata: retdata}, nil
}

// handleDelegateCall implements DelegateCall: resolves target's class
// hash, then behaves like LibraryCall but with storage=target,
// caller=ctx's caller (the grandcaller).
func handleDelegateCall(ctx *callframe.Frame, req Request) (Response, error) {
	r := req.(CallRequest)
	retdata, err := ctx.Orchestrator.InvokeDelegateCall(ctx, r.Target, r.Selector, r.Calldata, callframe.External)
	if err != nil {
		return nil, wrapOrchestratorError(err)
	}
	return RetdataResponse{Retdata: retdata}, nil
}

// handleDelegateL1Handler implements DelegateL1Handler: identical to
// DelegateCall but against the L1Handler entry-point type.
func handleDelegateL1Handler(ctx *callframe.Frame, req Request) (Response, error) {
	r := req.(CallRequest)
	retdata, err := ctx.Orchestrator.InvokeDelegateCall(ctx, r.Target, r.Selector, r.Calldata, callframe.L1Handler)
	if err != nil {
		return nil, wrapOrchestratorError(err)
	}
	return RetdataResponse{Retdata: retdata}, nil
}

// handleDeploy implements Deploy: computes the deterministic address,
// runs the constructor inside the orchestrator's bind-then-construct
// scope, and responds with (address, 0, 0).
func handleDeploy(ctx *callframe.Frame, req Request) (Response, error) {
	r := req.(DeployRequest)
	addr, err := ctx.Orchestrator.Deploy(ctx, r.ClassHash, r.Salt, r.Calldata, r.DeployFromZero)
	if err != nil {
		return nil, wrapOrchestratorError(err)
	}
	return DeployResponse{Address: addr}, nil
}

// wrapOrchestratorError maps the callframe package's orchestration
// failures onto this package's §7 error vocabulary, so every error
// surfaced by syscall.Dispatch uses the same kinds regardless of which
// internal component raised it.
func wrapOrchestratorError(err error) error {
	var execErr *callframe.ExecutionError
	if errors.As(err, &execErr) {
		return &ExecutionError{Err: execErr.Unwrap()}
	}
	if errors.Is(err, callframe.ErrConstructorRetdataNotEmpty) {
		return ErrInvalidResponse
	}
	return err
}
