package statecache

import (
	"errors"
	"fmt"

	"github.com/starkexec/core/felt"
)

// ErrZeroAddress is returned by BindClassHash when the target address is
// the reserved zero address.
var ErrZeroAddress = errors.New("statecache: cannot bind a class hash to the zero address")

// ErrNonceOverflow is returned by IncrementNonce when the current nonce
// already occupies the full 64-bit window the reference implementation
// increments through (see DESIGN.md).
var ErrNonceOverflow = errors.New("statecache: nonce would overflow")

// errInitialsInvariantViolated guards the "must be unreachable by
// construction" invariant from SPEC_FULL.md §7: a read that populated
// initials must then find its own entry. If this ever fires it is a
// programmer error in this package, not a caller mistake — it is still
// returned rather than panicking, per the no-panics policy.
var errInitialsInvariantViolated = errors.New("statecache: initials invariant violated (unreachable)")

// AddressUnavailable is returned by BindClassHash when the address already
// has a non-zero class hash bound.
type AddressUnavailable struct {
	Address felt.Address
}

func (e *AddressUnavailable) Error() string {
	return fmt.Sprintf("statecache: address %s is already bound to a class hash", e.Address)
}

// StateReadError wraps a failure from the underlying state reader
// collaborator.
type StateReadError struct {
	Err error
}

func (e *StateReadError) Error() string { return "statecache: underlying read failed: " + e.Err.Error() }
func (e *StateReadError) Unwrap() error { return e.Err }
