package vm

import (
	"errors"
	"fmt"
)

// ErrMemoryLimit is returned when growth would exceed the configured limit.
var ErrMemoryLimit = errors.New("memory limit exceeded")

// AddressError reports a negative effective address.
type AddressError struct {
	IP   int64 // instruction pointer at the time of the access
	Addr int64
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("address error at %d: negative address %d", e.IP, e.Addr)
}

// MaxCells is the hard ceiling on memory growth (512 MiB of cells). It
// applies even when no limit is configured; larger limits are clamped to it.
const MaxCells = 1 << 26

// Memory is a zero-initialized tape of int64 cells. It only ever grows:
// any access beyond the current length extends it with zeros first.
type Memory struct {
	cells []int64
	limit int // maximum number of cells, 0 = unlimited
}

// NewMemory creates a memory initialized with a copy of program.
func NewMemory(program Program) *Memory {
	return &Memory{cells: program.Clone()}
}

// Len returns the current number of cells.
func (m *Memory) Len() int {
	return len(m.cells)
}

// SetLimit caps the number of cells growth may reach. Zero leaves only the
// MaxCells ceiling.
func (m *Memory) SetLimit(cells int) {
	m.limit = cells
}

// Ensure grows memory so that addr is a valid index.
func (m *Memory) Ensure(addr int64) error {
	if addr < 0 {
		return &AddressError{Addr: addr}
	}
	if addr < int64(len(m.cells)) {
		return nil
	}
	limit := m.Limit()
	if addr >= limit {
		return fmt.Errorf("%w: address %d, limit %d cells", ErrMemoryLimit, addr, limit)
	}
	grow := addr + 1 - int64(len(m.cells))
	m.cells = append(m.cells, make([]int64, grow)...)
	return nil
}

// Limit returns the effective cell cap.
func (m *Memory) Limit() int64 {
	if m.limit > 0 && m.limit < MaxCells {
		return int64(m.limit)
	}
	return MaxCells
}

// Load returns the value at addr, growing memory if needed.
func (m *Memory) Load(addr int64) (int64, error) {
	if err := m.Ensure(addr); err != nil {
		return 0, err
	}
	return m.cells[addr], nil
}

// Store writes value at addr, growing memory if needed.
func (m *Memory) Store(addr, value int64) error {
	if err := m.Ensure(addr); err != nil {
		return err
	}
	m.cells[addr] = value
	return nil
}

// Peek returns the value at addr without growing memory.
// Addresses outside the tape read as zero.
func (m *Memory) Peek(addr int64) int64 {
	if addr < 0 || addr >= int64(len(m.cells)) {
		return 0
	}
	return m.cells[addr]
}

// Slice returns a copy of cells [from, to), clamped to the current length.
func (m *Memory) Slice(from, to int64) []int64 {
	if from < 0 {
		from = 0
	}
	if to > int64(len(m.cells)) {
		to = int64(len(m.cells))
	}
	if from >= to {
		return []int64{}
	}
	out := make([]int64, to-from)
	copy(out, m.cells[from:to])
	return out
}

// Snapshot returns a copy of all cells.
func (m *Memory) Snapshot() []int64 {
	return m.Slice(0, int64(len(m.cells)))
}
