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

// Decode splits an opcode word into its opcode and the modes of the operands
// that opcode uses. Mode digits past the opcode's operand count are ignored.
func Decode(word int64) (Instruction, error) {
	var in Instruction

	in.Opcode = Opcode(word % 100)

	if word < 0 || !in.Opcode.Valid() {
		return in, &IllegalOpcodeError{Opcode: Opcode(word % 100)}
	}

	digits := word / 100

	for i := 0; i < in.Opcode.Operands(); i++ {
		mode := Mode(digits % 10)
		digits /= 10

		switch mode {
		case MODE_POSITION, MODE_IMMEDIATE, MODE_RELATIVE:
			in.Modes[i] = mode
		default:
			return in, &IllegalModeError{Operand: i, Mode: mode}
		}
	}

	return in, nil
}
