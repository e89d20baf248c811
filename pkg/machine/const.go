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

const (
	OP_ADD  Opcode = 1
	OP_MUL  Opcode = 2
	OP_IN   Opcode = 3
	OP_OUT  Opcode = 4
	OP_JNZ  Opcode = 5
	OP_JZ   Opcode = 6
	OP_LT   Opcode = 7
	OP_EQ   Opcode = 8
	OP_ARB  Opcode = 9
	OP_HALT Opcode = 99
)

const (
	MODE_POSITION  Mode = 0
	MODE_IMMEDIATE Mode = 1
	MODE_RELATIVE  Mode = 2
)

const (
	STATE_RUNNING State = iota
	STATE_AWAITING_INPUT
	STATE_HALTED
)

// Operand layout per opcode: how many operand words follow the opcode and
// which of them (if any) is a write target.
var operandCount = map[Opcode]int{
	OP_ADD:  3,
	OP_MUL:  3,
	OP_IN:   1,
	OP_OUT:  1,
	OP_JNZ:  2,
	OP_JZ:   2,
	OP_LT:   3,
	OP_EQ:   3,
	OP_ARB:  1,
	OP_HALT: 0,
}

var writeOperand = map[Opcode]int{
	OP_ADD: 2,
	OP_MUL: 2,
	OP_IN:  0,
	OP_LT:  2,
	OP_EQ:  2,
}

var opcodeNames = map[Opcode]string{
	OP_ADD:  "ADD",
	OP_MUL:  "MUL",
	OP_IN:   "IN",
	OP_OUT:  "OUT",
	OP_JNZ:  "JNZ",
	OP_JZ:   "JZ",
	OP_LT:   "LT",
	OP_EQ:   "EQ",
	OP_ARB:  "ARB",
	OP_HALT: "HLT",
}
