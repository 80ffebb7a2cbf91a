// Package address computes the deterministic contract address assigned
// to a newly deployed contract (SPEC_FULL.md §6's "Contract-address
// derivation").
//
// The production Starknet formula folds its inputs through the Pedersen
// hash; no Pedersen or Poseidon implementation over the Stark field
// exists anywhere in the example pack this module was built against
// (see DESIGN.md). This package instead chains go-ethereum's
// crypto.Keccak256 — a real hash primitive the surrounding stack already
// depends on — as a domain-separated folding function, reducing every
// intermediate digest modulo the Cairo prime and finally modulo the L2
// address bound. The shape of the derivation (an iterated,
// domain-separated hash chain over prefix/deployer/salt/class_hash/
// calldata-hash, bounded below a fixed address ceiling) matches §6
// exactly; the specific digest does not match production Starknet.
package address

import (
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/starkexec/core/felt"
)

// contractAddressPrefix is the domain-separation tag folded in ahead of
// every other input, matching the STARKNET_CONTRACT_ADDRESS prefix named
// in §6.
const contractAddressPrefix = "STARKNET_CONTRACT_ADDRESS"

// addressBoundHex is 2**251 - 256, the L2 address bound: every derived
// contract address is reduced modulo this value, one step tighter than
// the Cairo field prime itself.
const addressBoundHex = "0x7ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff00"

var addressBound = mustUint256FromHex(addressBoundHex)

func mustUint256FromHex(s string) *uint256.Int {
	v, err := uint256.FromHex(s)
	if err != nil {
		panic("address: invalid address bound constant: " + err.Error())
	}
	return v
}

// fold hashes together the big-endian byte encodings of elements with
// Keccak256 and reduces the result modulo the Cairo prime, one chain
// link of the derivation.
func fold(elements ...felt.Felt) felt.Felt {
	h := make([]byte, 0, 32*len(elements))
	for _, e := range elements {
		h = append(h, e.Bytes()...)
	}
	digest := crypto.Keccak256(h)
	var u uint256.Int
	u.SetBytes(digest)
	return felt.FromUint256(&u)
}

// HashCalldata folds a constructor calldata sequence into a single felt,
// the `hash(constructor_calldata)` term of §6's formula.
func HashCalldata(calldata []felt.Felt) felt.Felt {
	tag, err := felt.FromASCII("CALLDATA")
	if err != nil {
		panic(err) // "CALLDATA" is 8 ASCII bytes, always fits.
	}
	acc := tag
	for _, c := range calldata {
		acc = fold(acc, c)
	}
	return acc
}

// Compute derives the deterministic address of a contract deployed with
// the given deployer, salt, class hash, and constructor calldata, per
// §6: hash(prefix, deployer, salt, class_hash, hash(calldata)) modulo
// the L2 address bound.
//
// Deploy passes felt.Zero for deployer when deploy_from_zero is true.
func Compute(deployer felt.Address, salt felt.Felt, classHash felt.ClassHash, calldata []felt.Felt) (felt.Address, error) {
	prefix, err := felt.FromASCII(contractAddressPrefix)
	if err != nil {
		return felt.Felt{}, err
	}
	calldataHash := HashCalldata(calldata)
	raw := fold(prefix, deployer, salt, classHash, calldataHash)

	var reduced uint256.Int
	u := raw.Uint256()
	if u.Cmp(addressBound) >= 0 {
		reduced.Mod(u, addressBound)
	} else {
		reduced.Set(u)
	}
	return felt.FromUint256(&reduced), nil
}
