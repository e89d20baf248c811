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
	"github.com/lassandro/gointcode/pkg/machine"
)

const (
	TOKEN_NONE TokenType = iota
	TOKEN_IDENT
	TOKEN_LABEL
	TOKEN_DIRECTIVE
	TOKEN_STRING
	TOKEN_LITERAL
)

const (
	DIRECTIVE_INVALID DirectiveType = iota
	DIRECTIVE_DATA
	DIRECTIVE_BLKW
	DIRECTIVE_STRING
	DIRECTIVE_END
)

var mnemonics = map[string]machine.Opcode{
	"ADD": machine.OP_ADD,
	"MUL": machine.OP_MUL,
	"IN":  machine.OP_IN,
	"OUT": machine.OP_OUT,
	"JNZ": machine.OP_JNZ,
	"JZ":  machine.OP_JZ,
	"LT":  machine.OP_LT,
	"EQ":  machine.OP_EQ,
	"ARB": machine.OP_ARB,
	"HLT": machine.OP_HALT,
}

var directives = map[string]DirectiveType{
	".DATA":   DIRECTIVE_DATA,
	".BLKW":   DIRECTIVE_BLKW,
	".STRING": DIRECTIVE_STRING,
	".END":    DIRECTIVE_END,
}

// Operand prefixes selecting the addressing mode. No prefix is position mode.
const (
	PREFIX_IMMEDIATE = '#'
	PREFIX_RELATIVE  = '@'
)
