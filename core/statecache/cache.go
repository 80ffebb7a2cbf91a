// Package statecache implements the State Cache: a per-transaction
// layered store holding initial-value snapshots (reads) and pending
// writes for storage slots, nonces, and class-hash bindings, plus a
// cache of loaded contract classes.
//
// A Cache is created empty, mutated solely through the methods below, and
// terminated by either Merge (into a parent, i.e. "commit") or simply
// being dropped (i.e. "abort" — there is nothing to undo since writes
// never touch the parent until Merge is called).
package statecache

import (
	"fmt"

	"github.com/starkexec/core/felt"
	"github.com/starkexec/core/log"
	"github.com/starkexec/core/vmhost"
)

var logger = log.Default().Module("statecache")

// storageCellKey identifies a single storage cell.
type storageCellKey struct {
	Address felt.Address
	Key     felt.StorageKey
}

// Cache is the transactional, layered store described above. The zero
// value is not usable; construct with New or NewChild.
type Cache struct {
	reader vmhost.StateReader

	storageInitials map[storageCellKey]felt.Felt
	storageWrites   map[storageCellKey]felt.Felt
	storageOrder    []storageCellKey // first-write insertion order, for diff grouping

	nonceInitials map[felt.Address]felt.Felt
	nonceWrites   map[felt.Address]felt.Felt
	nonceOrder    []felt.Address

	classInitials map[felt.Address]felt.ClassHash
	classWrites   map[felt.Address]felt.ClassHash
	classOrder    []felt.Address

	classCode map[felt.ClassHash]*vmhost.ContractClass
}

// New creates an empty Cache reading through to reader.
func New(reader vmhost.StateReader) *Cache {
	return &Cache{
		reader:          reader,
		storageInitials: make(map[storageCellKey]felt.Felt),
		storageWrites:   make(map[storageCellKey]felt.Felt),
		nonceInitials:   make(map[felt.Address]felt.Felt),
		nonceWrites:     make(map[felt.Address]felt.Felt),
		classInitials:   make(map[felt.Address]felt.ClassHash),
		classWrites:     make(map[felt.Address]felt.ClassHash),
		classCode:       make(map[felt.ClassHash]*vmhost.ContractClass),
	}
}

// NewChild creates a Cache whose underlying reader is parent itself,
// realizing the "frames nest by constructing a child State Cache whose
// underlying reader is the parent cache" lifecycle rule. Parent and child
// are otherwise entirely independent until the child is merged back with
// Merge.
func NewChild(parent *Cache) *Cache {
	return New(parent)
}

// --- vmhost.StateReader ---
//
// Cache satisfies vmhost.StateReader itself (each Read* method already has
// the right signature modulo the felt.StorageKey/felt.ClassHash aliasing),
// which is what makes NewChild's "reader is the parent cache" wiring work
// without an adapter type.

// GetStorageAt implements vmhost.StateReader.
func (c *Cache) GetStorageAt(addr felt.Address, key felt.StorageKey) (felt.Felt, error) {
	return c.ReadStorage(addr, key)
}

// GetNonceAt implements vmhost.StateReader.
func (c *Cache) GetNonceAt(addr felt.Address) (felt.Felt, error) {
	return c.ReadNonce(addr)
}

// GetClassHashAt implements vmhost.StateReader.
func (c *Cache) GetClassHashAt(addr felt.Address) (felt.ClassHash, error) {
	return c.ReadClassHash(addr)
}

// GetContractClass implements vmhost.StateReader.
func (c *Cache) GetContractClass(hash felt.ClassHash) (*vmhost.ContractClass, error) {
	return c.ReadContractClass(hash)
}

// --- Read operations (lazy-memoizing) ---

// ReadStorage returns the value at (addr, key): the pending write if one
// exists, else the initial value, fetching and memoizing it from the
// underlying reader on first observation.
func (c *Cache) ReadStorage(addr felt.Address, key felt.StorageKey) (felt.Felt, error) {
	sk := storageCellKey{Address: addr, Key: key}
	if v, ok := c.storageWrites[sk]; ok {
		return v, nil
	}
	if _, ok := c.storageInitials[sk]; !ok {
		v, err := c.reader.GetStorageAt(addr, key)
		if err != nil {
			return felt.Felt{}, &StateReadError{Err: err}
		}
		c.storageInitials[sk] = v
	}
	v, ok := c.storageInitials[sk]
	if !ok {
		return felt.Felt{}, errInitialsInvariantViolated
	}
	return v, nil
}

// ReadNonce returns the current nonce at addr, symmetric to ReadStorage.
func (c *Cache) ReadNonce(addr felt.Address) (felt.Felt, error) {
	if v, ok := c.nonceWrites[addr]; ok {
		return v, nil
	}
	if _, ok := c.nonceInitials[addr]; !ok {
		v, err := c.reader.GetNonceAt(addr)
		if err != nil {
			return felt.Felt{}, &StateReadError{Err: err}
		}
		c.nonceInitials[addr] = v
	}
	v, ok := c.nonceInitials[addr]
	if !ok {
		return felt.Felt{}, errInitialsInvariantViolated
	}
	return v, nil
}

// ReadClassHash returns the class hash bound at addr, symmetric to
// ReadStorage.
func (c *Cache) ReadClassHash(addr felt.Address) (felt.ClassHash, error) {
	if v, ok := c.classWrites[addr]; ok {
		return v, nil
	}
	if _, ok := c.classInitials[addr]; !ok {
		v, err := c.reader.GetClassHashAt(addr)
		if err != nil {
			return felt.Felt{}, &StateReadError{Err: err}
		}
		c.classInitials[addr] = v
	}
	v, ok := c.classInitials[addr]
	if !ok {
		return felt.Felt{}, errInitialsInvariantViolated
	}
	return v, nil
}

// ReadContractClass returns a clone of the contract class for hash,
// fetching and caching it from the underlying reader on first load.
func (c *Cache) ReadContractClass(hash felt.ClassHash) (*vmhost.ContractClass, error) {
	class, ok := c.classCode[hash]
	if !ok {
		fetched, err := c.reader.GetContractClass(hash)
		if err != nil {
			return nil, &StateReadError{Err: err}
		}
		c.classCode[hash] = fetched
		class = fetched
		logger.Debug("loaded contract class", "class_hash", hash, "program_digest", fmt.Sprintf("%x", fetched.ProgramDigest()))
	}
	return class.Clone(), nil
}

// --- Write operations ---

// WriteStorage unconditionally records a pending write at (addr, key).
func (c *Cache) WriteStorage(addr felt.Address, key felt.StorageKey, value felt.Felt) {
	sk := storageCellKey{Address: addr, Key: key}
	if _, exists := c.storageWrites[sk]; !exists {
		c.storageOrder = append(c.storageOrder, sk)
	}
	c.storageWrites[sk] = value
}

// IncrementNonce advances the nonce at addr to exactly current+1. It fails
// with ErrNonceOverflow if current already occupies the full 64-bit
// window the reference implementation increments through — see
// DESIGN.md's discussion of this carried-over truncating behavior.
func (c *Cache) IncrementNonce(addr felt.Address) error {
	current, err := c.ReadNonce(addr)
	if err != nil {
		return err
	}
	currentU64 := current.Uint64()
	if currentU64 == ^uint64(0) {
		return ErrNonceOverflow
	}
	next := felt.FromUint64(currentU64 + 1)
	if _, exists := c.nonceWrites[addr]; !exists {
		c.nonceOrder = append(c.nonceOrder, addr)
	}
	c.nonceWrites[addr] = next
	return nil
}

// BindClassHash binds hash at addr. It fails with ErrZeroAddress if addr
// is the zero address, and with AddressUnavailable if addr's current
// class hash is already non-zero.
func (c *Cache) BindClassHash(addr felt.Address, hash felt.ClassHash) error {
	if addr.IsZero() {
		return ErrZeroAddress
	}
	current, err := c.ReadClassHash(addr)
	if err != nil {
		return err
	}
	if !current.IsZero() {
		return &AddressUnavailable{Address: addr}
	}
	if _, exists := c.classWrites[addr]; !exists {
		c.classOrder = append(c.classOrder, addr)
	}
	c.classWrites[addr] = hash
	return nil
}

// InstallContractClass unconditionally caches code under hash.
func (c *Cache) InstallContractClass(hash felt.ClassHash, code *vmhost.ContractClass) {
	c.classCode[hash] = code
}

// --- Merge (commit of child into parent) ---

// Merge propagates every write (and loaded class) recorded in child into
// c, overwriting on conflict. Child initials are discarded — the parent
// already snapshotted what it needed when it was child's reader. Merge is
// the only way a Cache's effects reach its parent; dropping a Cache
// without calling Merge is "abort."
func (c *Cache) Merge(child *Cache) {
	for _, sk := range child.storageOrder {
		if _, exists := c.storageWrites[sk]; !exists {
			c.storageOrder = append(c.storageOrder, sk)
		}
		c.storageWrites[sk] = child.storageWrites[sk]
	}
	for _, addr := range child.nonceOrder {
		if _, exists := c.nonceWrites[addr]; !exists {
			c.nonceOrder = append(c.nonceOrder, addr)
		}
		c.nonceWrites[addr] = child.nonceWrites[addr]
	}
	for _, addr := range child.classOrder {
		if _, exists := c.classWrites[addr]; !exists {
			c.classOrder = append(c.classOrder, addr)
		}
		c.classWrites[addr] = child.classWrites[addr]
	}
	for hash, code := range child.classCode {
		c.classCode[hash] = code
	}
}

// Abort discards child without touching its parent. Since Cache never
// writes to its reader except through an explicit Merge, Abort is purely
// documentary — it exists so call sites can make the discard explicit
// (and so a future refactor that gives Cache a non-trivial abort path has
// one call site to change).
func Abort(child *Cache) {
	logger.Debug("discarding child cache", "storageWrites", len(child.storageWrites), "nonceWrites", len(child.nonceWrites))
}
