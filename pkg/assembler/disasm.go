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

package assembler

import (
	"strconv"
	"strings"

	"github.com/lassandro/gointcode/pkg/machine"
)

// Line is one disassembled instruction, or a single data word when the word
// at Addr does not decode.
type Line struct {
	Addr  int64
	Label string
	Words []int64
	Text  string
}

func (line *Line) Size() int64 {
	return int64(len(line.Words))
}

func formatOperand(value int64, mode machine.Mode, symtable *SymTable) string {
	switch mode {
	case machine.MODE_IMMEDIATE:
		return string(PREFIX_IMMEDIATE) + strconv.FormatInt(value, 10)
	case machine.MODE_RELATIVE:
		return string(PREFIX_RELATIVE) + strconv.FormatInt(value, 10)
	}

	if symtable != nil {
		if label, ok := symtable.Labels[value]; ok {
			return label
		}
	}

	return strconv.FormatInt(value, 10)
}

// Disassemble renders the instruction at addr in the syntax accepted by
// Assemble. symtable may be nil.
func Disassemble(mem []int64, addr int64, symtable *SymTable) (Line, error) {
	if addr < 0 || addr >= int64(len(mem)) {
		return Line{}, &machine.AddressError{Addr: addr, Limit: int64(len(mem))}
	}

	line := Line{Addr: addr}

	if symtable != nil {
		line.Label = symtable.Labels[addr]
	}

	word := mem[addr]
	in, err := machine.Decode(word)

	if err != nil || addr+in.Size() > int64(len(mem)) {
		line.Words = []int64{word}
		line.Text = ".DATA " + strconv.FormatInt(word, 10)
		return line, nil
	}

	line.Words = make([]int64, in.Size())
	copy(line.Words, mem[addr:addr+in.Size()])

	operands := make([]string, 0, in.Opcode.Operands())

	for i := 0; i < in.Opcode.Operands(); i++ {
		operands = append(
			operands, formatOperand(line.Words[i+1], in.Modes[i], symtable),
		)
	}

	line.Text = in.Opcode.String()

	if len(operands) > 0 {
		line.Text += " " + strings.Join(operands, ", ")
	}

	return line, nil
}

// DisassembleAll walks mem from address 0. Data embedded between
// instructions is decoded as instructions where it happens to decode.
func DisassembleAll(mem []int64, symtable *SymTable) []Line {
	result := make([]Line, 0, len(mem)/2)

	for addr := int64(0); addr < int64(len(mem)); {
		line, err := Disassemble(mem, addr, symtable)

		if err != nil {
			break
		}

		result = append(result, line)
		addr += line.Size()
	}

	return result
}
