// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package machine

// MaxMemory is the most cells any machine may allocate, whatever its limit.
const MaxMemory int64 = 1 << 26

// Memory is a zero-initialised store of words that grows on write. Reads past
// the end observe zero without allocating.
type Memory struct {
	cells []int64
	limit int64
}

func NewMemory(program []int64, limit int64) Memory {
	cells := make([]int64, len(program))
	copy(cells, program)
	return Memory{cells: cells, limit: limit}
}

func (mem *Memory) check(addr int64) error {
	if addr < 0 || (mem.limit > 0 && addr >= mem.limit) {
		return &AddressError{addr, mem.limit}
	}
	return nil
}

func (mem *Memory) Read(addr int64) (int64, error) {
	if err := mem.check(addr); err != nil {
		return 0, err
	}

	if addr >= int64(len(mem.cells)) {
		return 0, nil
	}

	return mem.cells[addr], nil
}

func (mem *Memory) Write(addr int64, value int64) error {
	if err := mem.check(addr); err != nil {
		return err
	}

	if addr >= MaxMemory {
		return &AddressError{addr, MaxMemory}
	}

	if addr >= int64(len(mem.cells)) {
		mem.grow(addr + 1)
	}

	mem.cells[addr] = value
	return nil
}

func (mem *Memory) grow(size int64) {
	if size <= int64(cap(mem.cells)) {
		mem.cells = mem.cells[:size]
		return
	}

	capacity := int64(cap(mem.cells)) * 2
	if capacity < size {
		capacity = size
	}
	if mem.limit > 0 && capacity > mem.limit {
		capacity = mem.limit
	}
	if capacity > MaxMemory {
		capacity = MaxMemory
	}

	cells := make([]int64, size, capacity)
	copy(cells, mem.cells)
	mem.cells = cells
}

// Len is the number of cells written or loaded so far.
func (mem *Memory) Len() int64 {
	return int64(len(mem.cells))
}

func (mem *Memory) Limit() int64 {
	return mem.limit
}

func (mem *Memory) Dump() []int64 {
	result := make([]int64, len(mem.cells))
	copy(result, mem.cells)
	return result
}
