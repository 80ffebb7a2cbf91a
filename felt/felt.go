// Package felt implements the Cairo field element and the typed aliases
// built on top of it (contract address, storage key, class hash, Ethereum
// address widening).
//
// A felt is an integer in [0, P) where P is the Cairo field prime. Values
// are carried as a fixed 32-byte big-endian array for hashing/equality/map
// keys, with arithmetic performed through github.com/holiman/uint256 — the
// same fixed-width integer library the surrounding stack already pulls in
// for EVM word arithmetic.
package felt

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Felt is a 32-byte big-endian unsigned integer bounded below the Cairo
// field prime.
type Felt [32]byte

// Address is a contract address: a Felt that is nonzero for any deployed
// contract. The zero Address is reserved and can never be bound to a
// class hash.
type Address = Felt

// StorageKey locates a cell within a contract's storage.
type StorageKey = Felt

// ClassHash identifies a deployed contract's code. The zero ClassHash
// denotes "unbound."
type ClassHash = Felt

// cairoPrimeHex is P = 2^251 + 17*2^192 + 1, the modulus of the Cairo
// STARK-friendly field.
const cairoPrimeHex = "0x800000000000011000000000000000000000000000000000000000000000001"

// Prime is the Cairo field prime, P.
var Prime = mustUint256FromHex(cairoPrimeHex)

func mustUint256FromHex(s string) *uint256.Int {
	v, err := uint256.FromHex(s)
	if err != nil {
		panic(fmt.Sprintf("felt: invalid prime constant %q: %v", s, err))
	}
	return v
}

// Zero is the additive identity, and the reserved zero address / unbound
// class hash.
var Zero = Felt{}

// IsZero reports whether f is the all-zero felt.
func (f Felt) IsZero() bool {
	return f == Zero
}

// Bytes returns the 32-byte big-endian representation.
func (f Felt) Bytes() []byte {
	b := make([]byte, 32)
	copy(b, f[:])
	return b
}

// Uint256 returns f as a *uint256.Int for arithmetic.
func (f Felt) Uint256() *uint256.Int {
	var u uint256.Int
	u.SetBytes32(f[:])
	return &u
}

// FromUint256 reduces u modulo the Cairo prime and returns the resulting
// felt.
func FromUint256(u *uint256.Int) Felt {
	var reduced uint256.Int
	if u.Cmp(Prime) >= 0 {
		reduced.Mod(u, Prime)
	} else {
		reduced.Set(u)
	}
	var f Felt
	reduced.WriteToSlice(f[:])
	return f
}

// FromUint64 builds a felt from a small unsigned integer.
func FromUint64(v uint64) Felt {
	var u uint256.Int
	u.SetUint64(v)
	return FromUint256(&u)
}

// FromBytes builds a felt from a big-endian byte slice, left-padding with
// zeros (truncating excess leading bytes is an error: the value must fit
// in 32 bytes).
func FromBytes(b []byte) (Felt, error) {
	if len(b) > 32 {
		return Felt{}, fmt.Errorf("felt: %d bytes exceeds 32-byte width", len(b))
	}
	var f Felt
	copy(f[32-len(b):], b)
	return f, nil
}

// FromASCII packs an ASCII tag into a felt, left-zero-padded, matching the
// selector wire format (§6 of the spec this module implements).
func FromASCII(tag string) (Felt, error) {
	if len(tag) > 32 {
		return Felt{}, fmt.Errorf("felt: ASCII tag %q exceeds 32 bytes", tag)
	}
	return FromBytes([]byte(tag))
}

// Add returns f+g reduced modulo the Cairo prime.
func (f Felt) Add(g Felt) Felt {
	var sum uint256.Int
	sum.Add(f.Uint256(), g.Uint256())
	return FromUint256(&sum)
}

// Cmp compares f and g as unsigned big-endian integers: -1, 0, or 1.
func (f Felt) Cmp(g Felt) int {
	return f.Uint256().Cmp(g.Uint256())
}

// String renders the felt as a 0x-prefixed hex string.
func (f Felt) String() string {
	return f.Uint256().Hex()
}

// Uint64 returns the low 64 bits of f, discarding any higher bits. This
// mirrors the 64-bit window the reference nonce-increment implementation
// truncates through (see core/statecache's IncrementNonce and DESIGN.md).
func (f Felt) Uint64() uint64 {
	return f.Uint256().Uint64()
}

// EthAddress is a 20-byte big-endian Ethereum address, as accepted by
// SendMessageToL1's "to" field.
type EthAddress [20]byte

// ToFelt widens e to a Felt, left-padding with 12 zero bytes.
func (e EthAddress) ToFelt() Felt {
	var f Felt
	copy(f[12:], e[:])
	return f
}

// EthAddressFromFelt narrows a Felt to an EthAddress. It fails with an
// error if the felt has any nonzero byte in its top 12 bytes (i.e. it does
// not fit in 20 bytes).
func EthAddressFromFelt(f Felt) (EthAddress, error) {
	for _, b := range f[:12] {
		if b != 0 {
			return EthAddress{}, fmt.Errorf("felt: value %s does not fit in a 20-byte Ethereum address", f)
		}
	}
	var e EthAddress
	copy(e[:], f[12:])
	return e, nil
}

// BoolFromFelt coerces a felt to a bool per the syscall decode rule: only
// 0 or 1 are valid; anything else is a decode error.
func BoolFromFelt(f Felt) (bool, error) {
	switch {
	case f.IsZero():
		return false, nil
	case f == FromUint64(1):
		return true, nil
	default:
		return false, fmt.Errorf("felt: %s is not a valid boolean (0 or 1)", f)
	}
}

// FromBool is the inverse of BoolFromFelt.
func FromBool(b bool) Felt {
	if b {
		return FromUint64(1)
	}
	return Zero
}
