// Package context holds the two read-only collaborators threaded into
// every call frame: the block context and the account transaction
// context (SPEC_FULL.md §3, §6). Neither is mutated by the syscall
// dispatch core; they are supplied once by the out-of-scope
// transaction-entry pipeline.
package context

import "github.com/starkexec/core/felt"

// Block is the block context visible to a transaction: chain id, block
// number, block timestamp, sequencer address, fee token address, gas
// price.
type Block struct {
	ChainID          felt.Felt
	BlockNumber      uint64
	BlockTimestamp   uint64
	SequencerAddress felt.Address
	FeeTokenAddress  felt.Address
	GasPrice         felt.Felt
}

// AccountTransaction is the account transaction context visible to a
// transaction: version, account contract address, max fee, signature,
// transaction hash, nonce.
type AccountTransaction struct {
	Version                felt.Felt
	AccountContractAddress felt.Address
	MaxFee                 felt.Felt
	Signature              []felt.Felt
	TransactionHash        felt.Felt
	Nonce                  felt.Felt
}
