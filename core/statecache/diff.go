package statecache

import "github.com/starkexec/core/felt"

// StorageEntry is one (key, value) pair within an address's storage diff.
type StorageEntry struct {
	Key   felt.StorageKey
	Value felt.Felt
}

// AddressStorageDiff groups the changed storage cells for one address, in
// first-write insertion order.
type AddressStorageDiff struct {
	Address felt.Address
	Entries []StorageEntry
}

// DeployedContract records an address whose bound class hash changed from
// its initial value.
type DeployedContract struct {
	Address   felt.Address
	ClassHash felt.ClassHash
}

// NonceDiff records an address whose nonce changed from its initial
// value.
type NonceDiff struct {
	Address felt.Address
	Nonce   felt.Felt
}

// Diff is the minimal set of changes relative to the initial snapshot
// observed during a transaction. DeclaredClasses is reserved and always
// empty in the current scope (SPEC_FULL.md §4.1).
type Diff struct {
	DeployedContracts []DeployedContract
	StorageDiffs      []AddressStorageDiff
	NonceDiffs        []NonceDiff
	DeclaredClasses   []felt.ClassHash
}

// StateDiff computes c's Diff. Ordering is deterministic: the outer
// (address) order and inner (key) order both follow first-write
// insertion order, per SPEC_FULL.md §4.1.
func (c *Cache) StateDiff() *Diff {
	diff := &Diff{}

	addrDiffs := make(map[felt.Address]*AddressStorageDiff)
	var addrOrder []felt.Address
	for _, sk := range c.storageOrder {
		newVal := c.storageWrites[sk]
		if initVal, hadInit := c.storageInitials[sk]; hadInit && initVal == newVal {
			continue
		}
		ad, ok := addrDiffs[sk.Address]
		if !ok {
			ad = &AddressStorageDiff{Address: sk.Address}
			addrDiffs[sk.Address] = ad
			addrOrder = append(addrOrder, sk.Address)
		}
		ad.Entries = append(ad.Entries, StorageEntry{Key: sk.Key, Value: newVal})
	}
	for _, addr := range addrOrder {
		diff.StorageDiffs = append(diff.StorageDiffs, *addrDiffs[addr])
	}

	for _, addr := range c.nonceOrder {
		newVal := c.nonceWrites[addr]
		if initVal, hadInit := c.nonceInitials[addr]; hadInit && initVal == newVal {
			continue
		}
		diff.NonceDiffs = append(diff.NonceDiffs, NonceDiff{Address: addr, Nonce: newVal})
	}

	for _, addr := range c.classOrder {
		newVal := c.classWrites[addr]
		if initVal, hadInit := c.classInitials[addr]; hadInit && initVal == newVal {
			continue
		}
		diff.DeployedContracts = append(diff.DeployedContracts, DeployedContract{Address: addr, ClassHash: newVal})
	}

	return diff
}
