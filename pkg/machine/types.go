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

import (
	"fmt"
)

type Opcode int64
type Mode int64
type State uint

func (op Opcode) Valid() bool {
	_, ok := operandCount[op]
	return ok
}

// Operands is the number of operand words following the opcode word.
func (op Opcode) Operands() int {
	return operandCount[op]
}

// WriteOperand returns the index of the operand the instruction writes to.
func (op Opcode) WriteOperand() (int, bool) {
	index, ok := writeOperand[op]
	return index, ok
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("OP(%d)", int64(op))
}

func (m Mode) String() string {
	switch m {
	case MODE_POSITION:
		return "position"
	case MODE_IMMEDIATE:
		return "immediate"
	case MODE_RELATIVE:
		return "relative"
	}
	return fmt.Sprintf("mode(%d)", int64(m))
}

func (s State) String() string {
	switch s {
	case STATE_RUNNING:
		return "running"
	case STATE_AWAITING_INPUT:
		return "awaiting-input"
	case STATE_HALTED:
		return "halted"
	}
	return "unknown"
}

// Instruction is an opcode word split into its opcode and operand modes.
type Instruction struct {
	Opcode Opcode
	Modes  [3]Mode
}

// Size is the number of words the instruction occupies.
func (in Instruction) Size() int64 {
	return int64(in.Opcode.Operands()) + 1
}

type MachineState struct {
	Memory       Memory
	Program      int64
	RelativeBase int64
	Input        Channel
	Output       Channel
	Status       State
	Steps        uint64
	Fault        error
}

type MachineDebugger interface {
	Step(mc *Machine)
	Read(addr int64, mc *Machine)
	Write(addr int64, mc *Machine)
}

type Options struct {
	// Limit bounds memory to cells [0, Limit). Zero grows up to MaxMemory.
	Limit int64
	Input []int64
}

type Machine struct {
	State    MachineState
	Debugger MachineDebugger
}
