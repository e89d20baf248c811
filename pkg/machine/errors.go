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
	"errors"
	"fmt"
)

var (
	ErrMalformedProgram = errors.New("malformed program")
	ErrIllegalOperand   = errors.New("illegal operand")
	ErrOutOfBounds      = errors.New("memory access out of bounds")
)

type IllegalOpcodeError struct {
	Addr   int64
	Opcode Opcode
}

func (err *IllegalOpcodeError) Error() string {
	return fmt.Sprintf(
		"%#04x: Illegal opcode %d", err.Addr, int64(err.Opcode),
	)
}

func (err *IllegalOpcodeError) Is(target error) bool {
	return target == ErrMalformedProgram
}

type IllegalModeError struct {
	Addr    int64
	Operand int
	Mode    Mode
}

func (err *IllegalModeError) Error() string {
	return fmt.Sprintf(
		"%#04x: Illegal mode %d for operand %d",
		err.Addr,
		int64(err.Mode),
		err.Operand+1,
	)
}

func (err *IllegalModeError) Is(target error) bool {
	return target == ErrMalformedProgram
}

// IllegalOperandError reports a write target encoded in immediate mode.
type IllegalOperandError struct {
	Addr    int64
	Opcode  Opcode
	Operand int
}

func (err *IllegalOperandError) Error() string {
	return fmt.Sprintf(
		"%#04x: %s writes through immediate operand %d",
		err.Addr,
		err.Opcode,
		err.Operand+1,
	)
}

func (err *IllegalOperandError) Is(target error) bool {
	return target == ErrIllegalOperand
}

// AddressError reports a memory access at a negative address or past the
// configured memory limit.
type AddressError struct {
	Addr  int64
	Limit int64
}

func (err *AddressError) Error() string {
	if err.Addr < 0 {
		return fmt.Sprintf("Negative memory address %d", err.Addr)
	}
	return fmt.Sprintf(
		"Memory address %d exceeds limit\n\twant:<%d\n\thave:%d",
		err.Addr,
		err.Limit,
		err.Addr,
	)
}

func (err *AddressError) Is(target error) bool {
	if err.Addr < 0 {
		return target == ErrIllegalOperand
	}
	return target == ErrOutOfBounds
}
