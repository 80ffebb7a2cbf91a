package syscall

import (
	"errors"
	"fmt"

	"github.com/starkexec/core/felt"
)

// ErrInvalidResponse is returned when a handler's own response would
// violate a syscall's contract — currently only Deploy's "constructor
// retdata must be empty" rule (§7).
var ErrInvalidResponse = errors.New("syscall: invalid response")

// ErrContractAddressCalculation is the ContractAddressCalculation error
// kind. address.Compute performs no range checks on its inputs, so no code
// path in this module returns it.
var ErrContractAddressCalculation = errors.New("syscall: contract address calculation failed")

// InvalidSelector is returned by DecodeSelector when raw does not match
// any known selector tag.
type InvalidSelector struct {
	Raw felt.Felt
}

func (e *InvalidSelector) Error() string {
	return fmt.Sprintf("syscall: %s is not a valid selector", e.Raw)
}

// InvalidArgument is returned when a decoded request field violates a
// value constraint: a malformed Ethereum address, a non-boolean deploy
// flag, or an array length above maxArrayLen (which includes every
// negative length, since a negative felt is a large field element). Other
// request felts are not range-checked against the Cairo prime.
type InvalidArgument struct {
	Err error
}

func (e *InvalidArgument) Error() string { return "syscall: invalid argument: " + e.Err.Error() }
func (e *InvalidArgument) Unwrap() error { return e.Err }

// MemoryError wraps a VM memory access failure surfaced while decoding a
// request or encoding a response.
type MemoryError struct {
	Err error
}

func (e *MemoryError) Error() string { return "syscall: VM memory access failed: " + e.Err.Error() }
func (e *MemoryError) Unwrap() error { return e.Err }

// ExecutionError wraps a nested VM execution failure surfaced by the
// Inner Call Orchestrator.
type ExecutionError struct {
	Err error
}

func (e *ExecutionError) Error() string { return "syscall: inner execution failed: " + e.Err.Error() }
func (e *ExecutionError) Unwrap() error { return e.Err }
