package syscall

import (
	"fmt"

	"github.com/starkexec/core/felt"
	"github.com/starkexec/core/vmhost"
)

// maxArrayLen bounds array-meta lengths decoded from VM memory. Starknet
// bounds calldata/event/payload sizes far below this; it exists purely to
// reject a corrupt or adversarial length before attempting a large
// allocation.
const maxArrayLen = 1 << 20

// decodeArray reads an ARRAY_META (len, ptr) pair at cursor, then
// dereferences len successive slots from ptr, per §4.2 "Request
// decoding." It returns the decoded sequence and the cursor advanced
// past the two meta slots.
func decodeArray(vm vmhost.VM, cursor vmhost.Ptr) ([]felt.Felt, vmhost.Ptr, error) {
	lenFelt, err := vm.ReadValue(cursor)
	if err != nil {
		return nil, cursor, &MemoryError{Err: err}
	}
	ptrFelt, err := vm.ReadValue(cursor.Add(1))
	if err != nil {
		return nil, cursor, &MemoryError{Err: err}
	}
	if lenFelt.Cmp(felt.FromUint64(maxArrayLen)) > 0 {
		return nil, cursor, &InvalidArgument{Err: fmt.Errorf("array length %s exceeds the maximum of %d", lenFelt, maxArrayLen)}
	}
	n := lenFelt.Uint64()
	values, err := vm.ReadValues(vmhost.PtrFromFelt(ptrFelt), int(n))
	if err != nil {
		return nil, cursor, &MemoryError{Err: err}
	}
	return values, cursor.Add(2), nil
}

// encodeArray allocates a fresh read-only segment holding values, writes
// an ARRAY_META (len, ptr) pair at cursor pointing to it, and returns the
// cursor advanced past the two meta slots.
func encodeArray(vm vmhost.VM, cursor vmhost.Ptr, values []felt.Felt) (vmhost.Ptr, error) {
	seg, err := vm.AllocateSegment()
	if err != nil {
		return cursor, &MemoryError{Err: err}
	}
	if err := vm.LoadData(seg, values); err != nil {
		return cursor, &MemoryError{Err: err}
	}
	if err := vm.InsertValue(cursor, felt.FromUint64(uint64(len(values)))); err != nil {
		return cursor, &MemoryError{Err: err}
	}
	if err := vm.InsertValue(cursor.Add(1), seg.ToFelt()); err != nil {
		return cursor, &MemoryError{Err: err}
	}
	return cursor.Add(2), nil
}

func readValue(vm vmhost.VM, p vmhost.Ptr) (felt.Felt, error) {
	v, err := vm.ReadValue(p)
	if err != nil {
		return felt.Felt{}, &MemoryError{Err: err}
	}
	return v, nil
}

func writeValue(vm vmhost.VM, p vmhost.Ptr, v felt.Felt) error {
	if err := vm.InsertValue(p, v); err != nil {
		return &MemoryError{Err: err}
	}
	return nil
}
