// Package vmtest provides in-memory fixtures for exercising the syscall
// dispatch core without a real Cairo VM binding: a segment-addressed VM,
// an in-memory state reader, and a scripted Executor. Grounded on the
// teacher's pkg/core/eftest fixture/runner package — non-test files that
// exist purely to support tests and cmd/dispatchbench.
package vmtest

import (
	"fmt"

	"github.com/starkexec/core/callframe"
	"github.com/starkexec/core/felt"
	"github.com/starkexec/core/vmhost"
)

// MemVM is a minimal vmhost.VM backed by a slice of segments, each a
// slice of felts. It has no relocation/validation semantics beyond
// bounds checking.
type MemVM struct {
	segments [][]felt.Felt
}

// NewMemVM constructs an empty MemVM.
func NewMemVM() *MemVM {
	return &MemVM{}
}

// NewSegment allocates and immediately loads a fixed segment, returning
// its start pointer. Useful for building request fixtures in tests.
func (m *MemVM) NewSegment(values []felt.Felt) vmhost.Ptr {
	p, _ := m.AllocateSegment()
	_ = m.LoadData(p, values)
	return p
}

func (m *MemVM) AllocateSegment() (vmhost.Ptr, error) {
	idx := len(m.segments)
	m.segments = append(m.segments, nil)
	return vmhost.Ptr{Segment: idx, Offset: 0}, nil
}

func (m *MemVM) LoadData(p vmhost.Ptr, values []felt.Felt) error {
	if p.Segment < 0 || p.Segment >= len(m.segments) {
		return fmt.Errorf("vmtest: segment %d out of range", p.Segment)
	}
	seg := m.segments[p.Segment]
	needed := p.Offset + len(values)
	if needed > len(seg) {
		grown := make([]felt.Felt, needed)
		copy(grown, seg)
		seg = grown
	}
	copy(seg[p.Offset:], values)
	m.segments[p.Segment] = seg
	return nil
}

func (m *MemVM) InsertValue(p vmhost.Ptr, v felt.Felt) error {
	return m.LoadData(p, []felt.Felt{v})
}

func (m *MemVM) ReadValue(p vmhost.Ptr) (felt.Felt, error) {
	vs, err := m.ReadValues(p, 1)
	if err != nil {
		return felt.Felt{}, err
	}
	return vs[0], nil
}

func (m *MemVM) ReadValues(p vmhost.Ptr, n int) ([]felt.Felt, error) {
	if p.Segment < 0 || p.Segment >= len(m.segments) {
		return nil, fmt.Errorf("vmtest: segment %d out of range", p.Segment)
	}
	seg := m.segments[p.Segment]
	if p.Offset < 0 || p.Offset+n > len(seg) {
		return nil, fmt.Errorf("vmtest: offset %d+%d out of range for segment %d (len %d)", p.Offset, n, p.Segment, len(seg))
	}
	out := make([]felt.Felt, n)
	copy(out, seg[p.Offset:p.Offset+n])
	return out, nil
}

// StateReader is a trivial in-memory vmhost.StateReader for tests and
// cmd/dispatchbench: everything reads as zero/unbound unless seeded.
type StateReader struct {
	Storage map[[2]felt.Felt]felt.Felt
	Nonces  map[felt.Felt]felt.Felt
	Classes map[felt.Felt]felt.ClassHash
	Code    map[felt.ClassHash]*vmhost.ContractClass
}

// NewStateReader constructs an empty StateReader.
func NewStateReader() *StateReader {
	return &StateReader{
		Storage: make(map[[2]felt.Felt]felt.Felt),
		Nonces:  make(map[felt.Felt]felt.Felt),
		Classes: make(map[felt.Felt]felt.ClassHash),
		Code:    make(map[felt.ClassHash]*vmhost.ContractClass),
	}
}

func (r *StateReader) GetStorageAt(addr felt.Address, key felt.StorageKey) (felt.Felt, error) {
	return r.Storage[[2]felt.Felt{addr, key}], nil
}

func (r *StateReader) GetNonceAt(addr felt.Address) (felt.Felt, error) {
	return r.Nonces[addr], nil
}

func (r *StateReader) GetClassHashAt(addr felt.Address) (felt.ClassHash, error) {
	return r.Classes[addr], nil
}

func (r *StateReader) GetContractClass(hash felt.ClassHash) (*vmhost.ContractClass, error) {
	c, ok := r.Code[hash]
	if !ok {
		return &vmhost.ContractClass{ClassHash: hash}, nil
	}
	return c, nil
}

// ScriptedExecutor is a callframe.Executor driven by a lookup table from
// class hash to a plain Go function, standing in for "run the Cairo VM
// against this class's bytecode." Each script may itself drive further
// syscalls against frame, modeling the re-entrant dispatcher behavior the
// real VM provides via hints.
type ScriptedExecutor struct {
	Scripts map[felt.ClassHash]func(frame *callframe.Frame, selector felt.Felt, calldata []felt.Felt) ([]felt.Felt, error)
}

// NewScriptedExecutor constructs an empty ScriptedExecutor.
func NewScriptedExecutor() *ScriptedExecutor {
	return &ScriptedExecutor{Scripts: make(map[felt.ClassHash]func(*callframe.Frame, felt.Felt, []felt.Felt) ([]felt.Felt, error))}
}

func (s *ScriptedExecutor) Execute(class *vmhost.ContractClass, frame *callframe.Frame, epType callframe.EntryPointType, selector felt.Felt, calldata []felt.Felt) ([]felt.Felt, error) {
	script, ok := s.Scripts[class.ClassHash]
	if !ok {
		return nil, nil
	}
	return script(frame, selector, calldata)
}
