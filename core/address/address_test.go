package address

import (
	"testing"

	"github.com/starkexec/core/felt"
)

func mustAddr(b byte) felt.Address {
	var a felt.Address
	a[31] = b
	return a
}

func TestComputeIsDeterministic(t *testing.T) {
	deployer := mustAddr(1)
	salt := felt.FromUint64(2)
	classHash := felt.FromUint64(3)
	calldata := []felt.Felt{felt.FromUint64(4), felt.FromUint64(5)}

	a1, err := Compute(deployer, salt, classHash, calldata)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	a2, err := Compute(deployer, salt, classHash, calldata)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if a1 != a2 {
		t.Fatalf("Compute is not deterministic: %s != %s", a1, a2)
	}
	if a1.IsZero() {
		t.Fatalf("Compute produced the zero address")
	}
}

func TestComputeIsSensitiveToEachInput(t *testing.T) {
	base, err := Compute(mustAddr(1), felt.FromUint64(2), felt.FromUint64(3), nil)
	if err != nil {
		t.Fatal(err)
	}

	variants := []felt.Address{}
	mustCompute := func(deployer felt.Address, salt, classHash felt.Felt, calldata []felt.Felt) felt.Address {
		a, err := Compute(deployer, salt, classHash, calldata)
		if err != nil {
			t.Fatal(err)
		}
		return a
	}
	variants = append(variants, mustCompute(mustAddr(9), felt.FromUint64(2), felt.FromUint64(3), nil))
	variants = append(variants, mustCompute(mustAddr(1), felt.FromUint64(9), felt.FromUint64(3), nil))
	variants = append(variants, mustCompute(mustAddr(1), felt.FromUint64(2), felt.FromUint64(9), nil))
	variants = append(variants, mustCompute(mustAddr(1), felt.FromUint64(2), felt.FromUint64(3), []felt.Felt{felt.FromUint64(9)}))

	for i, v := range variants {
		if v == base {
			t.Fatalf("variant %d collided with the base address", i)
		}
	}
}

func TestComputeWithDeployFromZero(t *testing.T) {
	withDeployer, err := Compute(mustAddr(1), felt.FromUint64(2), felt.FromUint64(3), nil)
	if err != nil {
		t.Fatal(err)
	}
	fromZero, err := Compute(felt.Zero, felt.FromUint64(2), felt.FromUint64(3), nil)
	if err != nil {
		t.Fatal(err)
	}
	if withDeployer == fromZero {
		t.Fatalf("deploy_from_zero substitution had no effect")
	}
}

func TestHashCalldataEmptyVsNonEmpty(t *testing.T) {
	empty := HashCalldata(nil)
	nonEmpty := HashCalldata([]felt.Felt{felt.FromUint64(1)})
	if empty == nonEmpty {
		t.Fatalf("empty and non-empty calldata hashed to the same value")
	}
}
