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
	"fmt"
	"strings"

	"github.com/lassandro/gointcode/pkg/machine"
)

type TokenType uint
type DirectiveType uint

type Cursor struct {
	Line     int
	Column   int
	Byte     int64
	Size     int64
	LineByte int64
}

type Token struct {
	Type     TokenType
	Mode     machine.Mode
	Position Cursor
	Value    string
}

// SymTable maps assembled addresses back to the source. Symbols holds the
// byte offset of the line each instruction came from.
type SymTable struct {
	Source  string
	Symbols map[int64]int64
	Labels  map[int64]string
}

func NewSymTable() *SymTable {
	return &SymTable{
		Symbols: make(map[int64]int64),
		Labels:  make(map[int64]string),
	}
}

// Lookup returns the address of a label.
func (symtable *SymTable) Lookup(label string) (int64, bool) {
	for addr, name := range symtable.Labels {
		if name == label {
			return addr, true
		}
	}
	return 0, false
}

type TokenError interface {
	GetPosition() Cursor
}

// located carries the source position shared by every assembler error.
type located struct {
	Position Cursor
}

func (loc located) GetPosition() Cursor {
	return loc.Position
}

func (loc located) errorf(format string, args ...any) string {
	return fmt.Sprintf(
		"%02d:%02d: ", loc.Position.Line, loc.Position.Column,
	) + fmt.Sprintf(format, args...)
}

func tokenTypeName(tokenType TokenType) string {
	switch tokenType {
	case TOKEN_IDENT:
		return "Identifier"
	case TOKEN_LABEL:
		return "Label"
	case TOKEN_DIRECTIVE:
		return "Directive"
	case TOKEN_STRING:
		return "String"
	case TOKEN_LITERAL:
		return "Literal"
	}
	return "<invalid>"
}

type InvalidOperandError struct {
	located
	Required []TokenType
	Received TokenType
}

func (err *InvalidOperandError) Error() string {
	names := make([]string, len(err.Required))
	for i, tokenType := range err.Required {
		names[i] = tokenTypeName(tokenType)
	}

	return err.errorf(
		"Invalid operand\n\twant:%s\n\thave:%s",
		strings.Join(names, " or "),
		tokenTypeName(err.Received),
	)
}

type InvalidNumArgumentsError struct {
	located
	Required int
	Received int
}

func (err *InvalidNumArgumentsError) Error() string {
	return err.errorf(
		"Invalid number of operands\n\twant:%d\n\thave:%d",
		err.Required,
		err.Received,
	)
}

type InvalidLiteralError struct{ located }

func (err *InvalidLiteralError) Error() string {
	return err.errorf("Invalid numeric literal")
}

type InvalidStringError struct{ located }

func (err *InvalidStringError) Error() string {
	return err.errorf("Invalid string literal")
}

// ImmediateWriteError reports a write operand carrying the immediate prefix.
type ImmediateWriteError struct{ located }

func (err *ImmediateWriteError) Error() string {
	return err.errorf("Write operand cannot be immediate")
}

type UnexpectedCharacterError struct {
	located
	Received rune
}

func (err *UnexpectedCharacterError) Error() string {
	return err.errorf("Unexpected character %q", err.Received)
}

type RedeclaredLabelError struct {
	located
	Label string
}

func (err *RedeclaredLabelError) Error() string {
	return err.errorf("Label '%s' already declared", err.Label)
}

type UnknownLabelError struct {
	located
	Label string
}

func (err *UnknownLabelError) Error() string {
	return err.errorf("Undeclared label '%s'", err.Label)
}

type UnknownIdentifierError struct {
	located
	Ident string
}

func (err *UnknownIdentifierError) Error() string {
	return err.errorf("Unknown mnemonic or directive '%s'", err.Ident)
}
