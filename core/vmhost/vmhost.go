// Package vmhost defines the narrow seam between the syscall dispatch core
// and its two external collaborators: the Cairo VM (memory, relocatable
// pointers) and the underlying authoritative state reader. Both the VM
// itself and the compiled contract class's bytecode semantics are out of
// scope for this module (see SPEC_FULL.md §1) — only the interfaces these
// collaborators expose to, and consume from, the core are modeled here.
package vmhost

import (
	"golang.org/x/crypto/sha3"

	"github.com/starkexec/core/felt"
)

// Ptr is a relocatable pointer into VM memory: a segment index plus an
// offset within that segment. The VM's memory model supports constant-time
// offset addition, modeled by Add.
type Ptr struct {
	Segment int
	Offset  int
}

// Add returns a pointer offset by n within the same segment.
func (p Ptr) Add(n int) Ptr {
	return Ptr{Segment: p.Segment, Offset: p.Offset + n}
}

// ToFelt packs p into a felt so it can occupy the "ptr" half of an
// ARRAY_META (len, ptr) pair alongside ordinary field elements in VM
// memory. Segment occupies the high 8 bytes, offset the low 24.
func (p Ptr) ToFelt() felt.Felt {
	var f felt.Felt
	var seg [8]byte
	s := uint64(p.Segment)
	for i := 7; i >= 0; i-- {
		seg[i] = byte(s)
		s >>= 8
	}
	copy(f[0:8], seg[:])
	off := uint64(p.Offset)
	for i := 31; i >= 8; i-- {
		f[i] = byte(off)
		off >>= 8
	}
	return f
}

// PtrFromFelt is the inverse of Ptr.ToFelt.
func PtrFromFelt(f felt.Felt) Ptr {
	var seg, off uint64
	for i := 0; i < 8; i++ {
		seg = seg<<8 | uint64(f[i])
	}
	for i := 8; i < 32; i++ {
		off = off<<8 | uint64(f[i])
	}
	return Ptr{Segment: int(seg), Offset: int(off)}
}

// VM is the memory interface the core reads requests from and writes
// responses to. A real binding wraps a Cairo VM's memory segments; tests
// and cmd/dispatchbench use an in-memory implementation.
type VM interface {
	// ReadValue reads a single felt at p.
	ReadValue(p Ptr) (felt.Felt, error)
	// ReadValues reads n consecutive felts starting at p.
	ReadValues(p Ptr, n int) ([]felt.Felt, error)
	// InsertValue writes a single felt at p.
	InsertValue(p Ptr, v felt.Felt) error
	// AllocateSegment reserves a fresh memory segment and returns a
	// pointer to its start, used for read-only segments (return data,
	// tx signature, tx info).
	AllocateSegment() (Ptr, error)
	// LoadData writes values into a segment starting at p, typically
	// immediately after AllocateSegment.
	LoadData(p Ptr, values []felt.Felt) error
}

// ContractClass is an opaque, hash-addressed, cloneable handle to a
// compiled contract's code. The bytecode representation itself is an
// external collaborator (see SPEC_FULL.md §3) — this module never
// interprets Program or ABI, only loads, caches, and clones them.
type ContractClass struct {
	ClassHash felt.ClassHash
	Program   []byte
	ABI       []byte
}

// ProgramDigest returns a sha3-256 digest of c's Program bytes, for
// diagnostic logging when a class is loaded (e.g. confirming two
// addresses share bytecode without printing it). It carries no
// consensus meaning: Starknet's real class hash is a separate,
// Poseidon-based commitment produced outside this module.
func (c *ContractClass) ProgramDigest() [32]byte {
	return sha3.Sum256(c.Program)
}

// Clone returns a deep copy of c.
func (c *ContractClass) Clone() *ContractClass {
	if c == nil {
		return nil
	}
	cp := &ContractClass{ClassHash: c.ClassHash}
	if c.Program != nil {
		cp.Program = make([]byte, len(c.Program))
		copy(cp.Program, c.Program)
	}
	if c.ABI != nil {
		cp.ABI = make([]byte, len(c.ABI))
		copy(cp.ABI, c.ABI)
	}
	return cp
}

// StateReader is the underlying state reader contract: the parent of the
// outermost cache. Implementations must be deterministic and must not
// cache across transactions in a way that leaks uncommitted writes.
type StateReader interface {
	GetStorageAt(addr felt.Address, key felt.StorageKey) (felt.Felt, error)
	GetNonceAt(addr felt.Address) (felt.Felt, error)
	GetClassHashAt(addr felt.Address) (felt.ClassHash, error)
	GetContractClass(hash felt.ClassHash) (*ContractClass, error)
}

// StateError wraps a failure from the underlying state reader.
type StateError struct {
	Err error
}

func (e *StateError) Error() string { return "vmhost: state read failed: " + e.Err.Error() }
func (e *StateError) Unwrap() error { return e.Err }
