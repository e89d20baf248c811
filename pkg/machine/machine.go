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

	"golang.org/x/exp/slices"

	"github.com/lassandro/gointcode/pkg/log"
)

// New returns a machine with program loaded at address 0 and input queued.
// Memory grows on demand up to MaxMemory.
func New(program []int64, input ...int64) *Machine {
	var mc Machine
	mc.State.Reset(program, 0)
	mc.State.Input.Push(input...)
	return &mc
}

func NewWithOptions(program []int64, opts Options) (*Machine, error) {
	if opts.Limit < 0 {
		return nil, &AddressError{opts.Limit, 0}
	}

	if opts.Limit > 0 && int64(len(program)) > opts.Limit {
		return nil, &AddressError{int64(len(program)) - 1, opts.Limit}
	}

	var mc Machine
	mc.State.Reset(program, opts.Limit)
	mc.State.Input.Push(opts.Input...)
	return &mc, nil
}

func (mc *MachineState) Reset(program []int64, limit int64) {
	*mc = MachineState{Memory: NewMemory(program, limit)}
}

// Clone returns an independent copy of the machine without its debugger.
func (mc *Machine) Clone() *Machine {
	clone := &Machine{State: mc.State}
	clone.State.Memory.cells = slices.Clone(mc.State.Memory.cells)
	clone.State.Input.values = slices.Clone(mc.State.Input.values)
	clone.State.Output.values = slices.Clone(mc.State.Output.values)
	return clone
}

func (mc *Machine) AddInput(value int64) {
	mc.State.Input.Push(value)
}

func (mc *Machine) AddInputs(values ...int64) {
	mc.State.Input.Push(values...)
}

// AddASCII queues each byte of s as one input word.
func (mc *Machine) AddASCII(s string) {
	for i := 0; i < len(s); i++ {
		mc.State.Input.Push(int64(s[i]))
	}
}

func (mc *Machine) PeekOutput() (int64, bool) {
	return mc.State.Output.Peek()
}

func (mc *Machine) PopOutput() (int64, bool) {
	return mc.State.Output.Pop()
}

func (mc *Machine) Output() []int64 {
	return mc.State.Output.Values()
}

func (mc *Machine) DrainOutput() []int64 {
	return mc.State.Output.Drain()
}

func (mc *Machine) ClearOutput() {
	mc.State.Output.Clear()
}

func (mc *Machine) OutputLen() int {
	return mc.State.Output.Len()
}

func (mc *Machine) IsOutputEmpty() bool {
	return mc.State.Output.Len() == 0
}

// IsHalted reports whether the machine reached HLT or faulted.
func (mc *Machine) IsHalted() bool {
	return mc.State.Status == STATE_HALTED
}

func (mc *Machine) IsAwaitingInput() bool {
	return mc.State.Status == STATE_AWAITING_INPUT
}

func (mc *Machine) Status() State {
	return mc.State.Status
}

// Err returns the fault that halted the machine, if any.
func (mc *Machine) Err() error {
	return mc.State.Fault
}

func (mc *Machine) Program() int64 {
	return mc.State.Program
}

func (mc *Machine) RelativeBase() int64 {
	return mc.State.RelativeBase
}

func (mc *Machine) Steps() uint64 {
	return mc.State.Steps
}

func (mc *Machine) DumpMemory() []int64 {
	return mc.State.Memory.Dump()
}

func (mc *Machine) ReadMemory(addr int64) (int64, error) {
	return mc.State.Memory.Read(addr)
}

func (mc *Machine) WriteMemory(addr int64, value int64) error {
	return mc.State.Memory.Write(addr, value)
}

func (mc *Machine) read(addr int64) (int64, error) {
	value, err := mc.State.Memory.Read(addr)

	if err == nil && mc.Debugger != nil {
		mc.Debugger.Read(addr, mc)
	}

	return value, err
}

func (mc *Machine) write(addr int64, value int64) error {
	if err := mc.State.Memory.Write(addr, value); err != nil {
		return err
	}

	if mc.Debugger != nil {
		mc.Debugger.Write(addr, mc)
	}

	return nil
}

// resolve returns the value of operand i of the instruction at the program
// counter, or its target address when forWrite is set.
func (mc *Machine) resolve(in Instruction, i int, forWrite bool) (int64, error) {
	word, err := mc.State.Memory.Read(mc.State.Program + int64(i) + 1)

	if err != nil {
		return 0, err
	}

	switch in.Modes[i] {
	case MODE_POSITION:
		if forWrite {
			return word, nil
		}
		return mc.read(word)

	case MODE_IMMEDIATE:
		if forWrite {
			return 0, &IllegalOperandError{mc.State.Program, in.Opcode, i}
		}
		return word, nil

	case MODE_RELATIVE:
		addr := mc.State.RelativeBase + word
		if forWrite {
			return addr, nil
		}
		return mc.read(addr)
	}

	return 0, &IllegalModeError{mc.State.Program, i, in.Modes[i]}
}

func (mc *Machine) fault(err error) error {
	var opErr *IllegalOpcodeError
	var modeErr *IllegalModeError

	if errors.As(err, &opErr) {
		opErr.Addr = mc.State.Program
	} else if errors.As(err, &modeErr) {
		modeErr.Addr = mc.State.Program
	}

	mc.State.Status = STATE_HALTED
	mc.State.Fault = err

	log.Debug(
		log.MachineModule, "machine fault",
		"pc", mc.State.Program, "steps", mc.State.Steps, "err", err,
	)

	return err
}

// Step executes a single instruction. A machine awaiting input resumes only
// if input has arrived; otherwise Step does nothing.
func (mc *Machine) Step() error {
	_, err := mc.execute()
	return err
}

// Run executes instructions until the machine halts, needs input that has
// not been supplied, or, with suspendOnOutput set, has just emitted a value.
// Calling Run on a halted machine returns the fault that halted it, if any.
func (mc *Machine) Run(suspendOnOutput bool) error {
	for {
		op, err := mc.execute()

		if err != nil {
			return err
		}

		if mc.State.Status != STATE_RUNNING {
			break
		}

		if suspendOnOutput && op == OP_OUT {
			break
		}
	}

	log.Debug(
		log.MachineModule, "machine suspended",
		"state", mc.State.Status,
		"pc", mc.State.Program,
		"steps", mc.State.Steps,
		"output", mc.State.Output.Len(),
	)

	return nil
}

func (mc *Machine) execute() (Opcode, error) {
	switch mc.State.Status {
	case STATE_HALTED:
		return OP_HALT, mc.State.Fault
	case STATE_AWAITING_INPUT:
		if mc.State.Input.Len() == 0 {
			return OP_IN, nil
		}
		mc.State.Status = STATE_RUNNING
	}

	word, err := mc.State.Memory.Read(mc.State.Program)

	if err != nil {
		return 0, mc.fault(err)
	}

	in, err := Decode(word)

	if err != nil {
		return in.Opcode, mc.fault(err)
	}

	if log.ModuleEnabled(log.MachineModule) {
		log.Trace(
			log.MachineModule, "step",
			"pc", mc.State.Program,
			"op", in.Opcode,
			"rb", mc.State.RelativeBase,
		)
	}

	switch in.Opcode {
	// ADD  a, b, dst | dst <- a + b
	// MUL  a, b, dst | dst <- a * b
	// LT   a, b, dst | dst <- a < b
	// EQ   a, b, dst | dst <- a == b
	case OP_ADD, OP_MUL, OP_LT, OP_EQ:
		a, err := mc.resolve(in, 0, false)
		if err != nil {
			return in.Opcode, mc.fault(err)
		}

		b, err := mc.resolve(in, 1, false)
		if err != nil {
			return in.Opcode, mc.fault(err)
		}

		dest, err := mc.resolve(in, 2, true)
		if err != nil {
			return in.Opcode, mc.fault(err)
		}

		var result int64

		switch in.Opcode {
		case OP_ADD:
			result = a + b
		case OP_MUL:
			result = a * b
		case OP_LT:
			if a < b {
				result = 1
			}
		case OP_EQ:
			if a == b {
				result = 1
			}
		}

		if err := mc.write(dest, result); err != nil {
			return in.Opcode, mc.fault(err)
		}

		mc.State.Program += in.Size()

	// IN   dst | dst <- input, suspends without advancing when starved
	case OP_IN:
		if mc.State.Input.Len() == 0 {
			mc.State.Status = STATE_AWAITING_INPUT
			return in.Opcode, nil
		}

		dest, err := mc.resolve(in, 0, true)
		if err != nil {
			return in.Opcode, mc.fault(err)
		}

		value, _ := mc.State.Input.Peek()

		if err := mc.write(dest, value); err != nil {
			return in.Opcode, mc.fault(err)
		}

		mc.State.Input.Pop()
		mc.State.Program += in.Size()

	// OUT  a | output <- a
	case OP_OUT:
		a, err := mc.resolve(in, 0, false)
		if err != nil {
			return in.Opcode, mc.fault(err)
		}

		mc.State.Output.Push(a)
		mc.State.Program += in.Size()

	// JNZ  cond, target | jump if cond != 0
	// JZ   cond, target | jump if cond == 0
	case OP_JNZ, OP_JZ:
		cond, err := mc.resolve(in, 0, false)
		if err != nil {
			return in.Opcode, mc.fault(err)
		}

		target, err := mc.resolve(in, 1, false)
		if err != nil {
			return in.Opcode, mc.fault(err)
		}

		if (cond != 0) == (in.Opcode == OP_JNZ) {
			if target < 0 {
				return in.Opcode, mc.fault(&AddressError{target, mc.State.Memory.Limit()})
			}
			mc.State.Program = target
		} else {
			mc.State.Program += in.Size()
		}

	// ARB  a | relative base += a
	case OP_ARB:
		a, err := mc.resolve(in, 0, false)
		if err != nil {
			return in.Opcode, mc.fault(err)
		}

		mc.State.RelativeBase += a
		mc.State.Program += in.Size()

	case OP_HALT:
		mc.State.Status = STATE_HALTED
	}

	mc.State.Steps++

	if mc.Debugger != nil {
		mc.Debugger.Step(mc)
	}

	return in.Opcode, nil
}
