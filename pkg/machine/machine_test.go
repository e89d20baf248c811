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

package machine_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lassandro/gointcode/pkg/machine"
)

type testCase struct {
	Name    string
	Program []int64
	Input   []int64
	Output  []int64
	Memory  map[int64]int64
}

type failCase struct {
	Name    string
	Program []int64
	Input   []int64
	Error   error
}

func testMachineSuccess(t *testing.T, test *testCase) {
	mc := machine.New(test.Program, test.Input...)

	require.NoError(t, mc.Run(false))
	require.True(t, mc.IsHalted(), "machine did not halt")

	if test.Output != nil {
		assert.Equal(t, test.Output, mc.Output(), "output mismatch")
	}

	for addr, want := range test.Memory {
		have, err := mc.ReadMemory(addr)
		require.NoError(t, err)
		assert.Equalf(
			t, want, have, "memory mismatch at %d", addr,
		)
	}
}

func testMachineFailure(t *testing.T, test *failCase) {
	mc := machine.New(test.Program, test.Input...)

	err := mc.Run(false)

	require.Error(t, err)
	assert.Truef(
		t, errors.Is(err, test.Error),
		"error mismatch\nwant:%v\nhave:%v", test.Error, err,
	)
	assert.True(t, mc.IsHalted())
	assert.Equal(t, err, mc.Err())

	// A faulted machine stays faulted.
	assert.Equal(t, err, mc.Run(false))
}

var quine = []int64{
	109, 1, 204, -1, 1001, 100, 1, 100, 1008, 100, 16, 101, 1006, 101, 0, 99,
}

var compareLarge = []int64{
	3, 21, 1008, 21, 8, 20, 1005, 20, 22, 107, 8, 21, 20, 1006, 20, 31,
	1106, 0, 36, 98, 0, 0, 1002, 21, 125, 20, 4, 20, 1105, 1, 46, 104,
	999, 1105, 1, 46, 1101, 1000, 1, 20, 4, 20, 1105, 1, 46, 98, 99,
}

func TestArithmetic(t *testing.T) {
	tests := []testCase{
		{
			Name:    "Add",
			Program: []int64{1, 2, 2, 0, 99},
			Memory:  map[int64]int64{0: 4},
		},
		{
			Name:    "Multiply",
			Program: []int64{2, 2, 4, 0, 99},
			Memory:  map[int64]int64{0: 396},
		},
		{
			Name:    "Immediate",
			Program: []int64{1102, 2, 4, 0, 99},
			Memory:  map[int64]int64{0: 8},
		},
		{
			Name:    "Negative",
			Program: []int64{1101, 100, -1, 4, 0},
			Memory:  map[int64]int64{4: 99},
		},
		{
			Name:    "Tape",
			Program: []int64{1, 9, 10, 3, 2, 3, 11, 0, 99, 30, 40, 50},
			Memory:  map[int64]int64{0: 3500, 3: 70},
		},
		{
			Name:    "SelfModify",
			Program: []int64{1, 1, 1, 4, 99, 5, 6, 0, 99},
			Memory:  map[int64]int64{0: 30, 4: 2},
		},
		{
			Name:    "SquareBeyondHalt",
			Program: []int64{2, 4, 4, 5, 99, 0},
			Memory:  map[int64]int64{5: 9801},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.Name, func(t *testing.T) {
			testMachineSuccess(t, &test)
		})
	}
}

func TestIO(t *testing.T) {
	tests := []testCase{
		{
			Name:    "Halt",
			Program: []int64{99},
			Input:   []int64{0},
			Output:  []int64{},
		},
		{
			Name:    "Input",
			Program: []int64{3, 3, 99, 0},
			Input:   []int64{30},
			Memory:  map[int64]int64{3: 30},
		},
		{
			Name:    "Output",
			Program: []int64{4, 2, 99},
			Output:  []int64{99},
		},
		{
			Name:    "Echo",
			Program: []int64{3, 0, 4, 0, 99},
			Input:   []int64{-42},
			Output:  []int64{-42},
		},
		{
			Name:    "Quine",
			Program: quine,
			Output:  quine,
		},
		{
			Name:    "SixteenDigits",
			Program: []int64{1102, 34915192, 34915192, 7, 4, 7, 99, 0},
			Output:  []int64{1219070632396864},
		},
		{
			Name:    "LargeLiteral",
			Program: []int64{104, 1125899906842624, 99},
			Output:  []int64{1125899906842624},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.Name, func(t *testing.T) {
			testMachineSuccess(t, &test)
		})
	}
}

func TestComparison(t *testing.T) {
	tests := []testCase{
		{"PositionEqual", []int64{3, 9, 8, 9, 10, 9, 4, 9, 99, -1, 8}, []int64{8}, []int64{1}, nil},
		{"PositionNotEqual", []int64{3, 9, 8, 9, 10, 9, 4, 9, 99, -1, 8}, []int64{10}, []int64{0}, nil},
		{"PositionLess", []int64{3, 9, 7, 9, 10, 9, 4, 9, 99, -1, 8}, []int64{3}, []int64{1}, nil},
		{"PositionNotLess", []int64{3, 9, 7, 9, 10, 9, 4, 9, 99, -1, 8}, []int64{10}, []int64{0}, nil},
		{"ImmediateEqual", []int64{3, 3, 1108, -1, 8, 3, 4, 3, 99}, []int64{8}, []int64{1}, nil},
		{"ImmediateNotEqual", []int64{3, 3, 1108, -1, 8, 3, 4, 3, 99}, []int64{10}, []int64{0}, nil},
		{"ImmediateLess", []int64{3, 3, 1107, -1, 8, 3, 4, 3, 99}, []int64{3}, []int64{1}, nil},
		{"ImmediateNotLess", []int64{3, 3, 1107, -1, 8, 3, 4, 3, 99}, []int64{10}, []int64{0}, nil},
		{"LargeBelow", compareLarge, []int64{7}, []int64{999}, nil},
		{"LargeEqual", compareLarge, []int64{8}, []int64{1000}, nil},
		{"LargeAbove", compareLarge, []int64{9}, []int64{1001}, nil},
	}

	for _, test := range tests {
		test := test
		t.Run(test.Name, func(t *testing.T) {
			testMachineSuccess(t, &test)
		})
	}
}

func TestJumps(t *testing.T) {
	position := []int64{3, 12, 6, 12, 15, 1, 13, 14, 13, 4, 13, 99, -1, 0, 1, 9}
	immediate := []int64{3, 3, 1105, -1, 9, 1101, 0, 0, 12, 4, 12, 99, 1}

	tests := []testCase{
		{"PositionZero", position, []int64{0}, []int64{0}, nil},
		{"PositionNonZero", position, []int64{1}, []int64{1}, nil},
		{"ImmediateZero", immediate, []int64{0}, []int64{0}, nil},
		{"ImmediateNonZero", immediate, []int64{1}, []int64{1}, nil},
	}

	for _, test := range tests {
		test := test
		t.Run(test.Name, func(t *testing.T) {
			testMachineSuccess(t, &test)
		})
	}
}

func TestRelativeBase(t *testing.T) {
	tests := []testCase{
		{"OpcodeWord", []int64{109, 1, 204, -1, 99}, nil, []int64{109}, nil},
		{"NegativeBasePosition", []int64{109, -1, 4, 1, 99}, nil, []int64{-1}, nil},
		{"NegativeBaseImmediate", []int64{109, -1, 104, 1, 99}, nil, []int64{1}, nil},
		{"NegativeBaseRelative", []int64{109, -1, 204, 1, 99}, nil, []int64{109}, nil},
		{"PositionAdjust", []int64{109, 1, 9, 2, 204, -6, 99}, nil, []int64{204}, nil},
		{"ImmediateAdjust", []int64{109, 1, 109, 9, 204, -6, 99}, nil, []int64{204}, nil},
		{"RelativeAdjust", []int64{109, 1, 209, -1, 204, -106, 99}, nil, []int64{204}, nil},
		{"PositionInput", []int64{109, 1, 3, 3, 204, 2, 99}, []int64{123}, []int64{123}, nil},
		{"RelativeInput", []int64{109, 1, 203, 2, 204, 2, 99}, []int64{456}, []int64{456}, nil},
	}

	for _, test := range tests {
		test := test
		t.Run(test.Name, func(t *testing.T) {
			testMachineSuccess(t, &test)
		})
	}
}

func TestFaults(t *testing.T) {
	tests := []failCase{
		{
			Name:    "IllegalOpcode",
			Program: []int64{42},
			Error:   machine.ErrMalformedProgram,
		},
		{
			Name:    "NegativeOpcodeWord",
			Program: []int64{-1},
			Error:   machine.ErrMalformedProgram,
		},
		{
			Name:    "IllegalMode",
			Program: []int64{301, 0, 0, 0, 99},
			Error:   machine.ErrMalformedProgram,
		},
		{
			Name:    "ImmediateWriteTarget",
			Program: []int64{11101, 1, 1, 0, 99},
			Error:   machine.ErrIllegalOperand,
		},
		{
			Name:    "ImmediateInputTarget",
			Program: []int64{103, 0, 99},
			Input:   []int64{1},
			Error:   machine.ErrIllegalOperand,
		},
		{
			Name:    "NegativeRead",
			Program: []int64{4, -1, 99},
			Error:   machine.ErrIllegalOperand,
		},
		{
			Name:    "NegativeRelativeWrite",
			Program: []int64{109, -5, 21101, 1, 1, 0, 99},
			Error:   machine.ErrIllegalOperand,
		},
		{
			Name:    "NegativeJump",
			Program: []int64{1105, 1, -3, 99},
			Error:   machine.ErrIllegalOperand,
		},
		{
			Name:    "HugeWrite",
			Program: []int64{1101, 1, 1, math.MaxInt64, 99},
			Error:   machine.ErrOutOfBounds,
		},
		{
			Name:    "HugeRelativeWrite",
			Program: []int64{109, 1 << 50, 21101, 1, 1, 0, 99},
			Error:   machine.ErrOutOfBounds,
		},
		{
			Name:    "WritePastMaxMemory",
			Program: []int64{1101, 1, 1, machine.MaxMemory, 99},
			Error:   machine.ErrOutOfBounds,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.Name, func(t *testing.T) {
			testMachineFailure(t, &test)
		})
	}
}

func TestFaultAddress(t *testing.T) {
	mc := machine.New([]int64{1101, 1, 1, 5, 42})

	err := mc.Run(false)

	var opErr *machine.IllegalOpcodeError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, int64(4), opErr.Addr)
	assert.Equal(t, machine.Opcode(42), opErr.Opcode)
	assert.Equal(t, int64(4), mc.Program())
}

func TestUnusedModeDigitsIgnored(t *testing.T) {
	// Mode digits past the operand count of OUT are never consulted.
	mc := machine.New([]int64{90104, 7, 99})

	require.NoError(t, mc.Run(false))
	assert.Equal(t, []int64{7}, mc.Output())
}

func TestMemoryGrowth(t *testing.T) {
	mc := machine.New([]int64{1101, 6, 7, 1000, 4, 1000, 99})

	require.NoError(t, mc.Run(false))
	assert.Equal(t, []int64{13}, mc.Output())

	dump := mc.DumpMemory()
	assert.Len(t, dump, 1001)
	assert.Equal(t, int64(13), dump[1000])
	assert.Equal(t, int64(0), dump[999])
}

func TestMemoryLimit(t *testing.T) {
	program := []int64{1101, 6, 7, 1000, 99}

	mc, err := machine.NewWithOptions(program, machine.Options{Limit: 100})
	require.NoError(t, err)

	err = mc.Run(false)
	require.ErrorIs(t, err, machine.ErrOutOfBounds)

	var addrErr *machine.AddressError
	require.ErrorAs(t, err, &addrErr)
	assert.Equal(t, int64(1000), addrErr.Addr)

	_, err = machine.NewWithOptions(program, machine.Options{Limit: 2})
	assert.ErrorIs(t, err, machine.ErrOutOfBounds)

	_, err = machine.NewWithOptions(program, machine.Options{Limit: -1})
	assert.Error(t, err)
}

func TestSuspendOnOutput(t *testing.T) {
	mc := machine.New(quine)

	for i, want := range quine {
		require.NoError(t, mc.Run(true))
		require.False(t, mc.IsHalted(), "halted early at output %d", i)

		have, ok := mc.PopOutput()
		require.True(t, ok)
		assert.Equal(t, want, have)
		assert.True(t, mc.IsOutputEmpty())
	}

	require.NoError(t, mc.Run(true))
	assert.True(t, mc.IsHalted())
	assert.True(t, mc.IsOutputEmpty())

	// Halted machines do nothing further.
	steps := mc.Steps()
	require.NoError(t, mc.Run(false))
	assert.Equal(t, steps, mc.Steps())
}

func TestResume(t *testing.T) {
	mc := machine.New([]int64{3, 0, 4, 0, 99})
	mc.AddInput(7)

	require.NoError(t, mc.Run(true))
	assert.False(t, mc.IsHalted())
	assert.Equal(t, []int64{7}, mc.Output())

	require.NoError(t, mc.Run(true))
	assert.True(t, mc.IsHalted())
	assert.Equal(t, []int64{7}, mc.Output())
}

func TestAwaitingInput(t *testing.T) {
	mc := machine.New([]int64{1101, 2, 3, 9, 3, 10, 4, 10, 99, 0, 0})

	require.NoError(t, mc.Run(false))
	assert.True(t, mc.IsAwaitingInput())
	assert.False(t, mc.IsHalted())
	assert.Equal(t, machine.STATE_AWAITING_INPUT, mc.Status())
	assert.Equal(t, int64(4), mc.Program())

	// Repeated runs without input neither advance nor execute.
	steps := mc.Steps()
	require.NoError(t, mc.Run(false))
	require.NoError(t, mc.Step())
	assert.Equal(t, int64(4), mc.Program())
	assert.Equal(t, steps, mc.Steps())
	assert.True(t, mc.IsAwaitingInput())

	mc.AddInput(55)
	require.NoError(t, mc.Run(false))
	assert.False(t, mc.IsAwaitingInput())
	assert.True(t, mc.IsHalted())
	assert.Equal(t, []int64{55}, mc.Output())
}

func TestInputOrder(t *testing.T) {
	mc := machine.New([]int64{3, 0, 3, 1, 4, 1, 4, 0, 99}, 1)
	mc.AddInputs(2)

	require.NoError(t, mc.Run(false))
	assert.Equal(t, []int64{2, 1}, mc.Output())
}

func TestASCIIInput(t *testing.T) {
	mc := machine.New([]int64{3, 0, 4, 0, 1105, 1, 0})
	mc.AddASCII("ok\n")

	require.NoError(t, mc.Run(false))
	assert.True(t, mc.IsAwaitingInput())
	assert.Equal(t, []int64{'o', 'k', '\n'}, mc.DrainOutput())
	assert.True(t, mc.IsOutputEmpty())
}

func TestOutputAccessors(t *testing.T) {
	mc := machine.New([]int64{104, 1, 104, 2, 104, 3, 99})
	require.NoError(t, mc.Run(false))

	front, ok := mc.PeekOutput()
	require.True(t, ok)
	assert.Equal(t, int64(1), front)
	assert.Equal(t, 3, mc.OutputLen())

	front, ok = mc.PopOutput()
	require.True(t, ok)
	assert.Equal(t, int64(1), front)
	assert.Equal(t, []int64{2, 3}, mc.Output())

	mc.ClearOutput()
	_, ok = mc.PopOutput()
	assert.False(t, ok)
	_, ok = mc.PeekOutput()
	assert.False(t, ok)
}

func TestCloneIsIndependent(t *testing.T) {
	mc := machine.New([]int64{3, 0, 4, 0, 99})

	require.NoError(t, mc.Run(false))
	require.True(t, mc.IsAwaitingInput())

	clone := mc.Clone()
	clone.AddInput(1)
	mc.AddInput(2)

	require.NoError(t, clone.Run(false))
	require.NoError(t, mc.Run(false))

	assert.Equal(t, []int64{1}, clone.Output())
	assert.Equal(t, []int64{2}, mc.Output())
	assert.Equal(t, int64(1), clone.DumpMemory()[0])
	assert.Equal(t, int64(2), mc.DumpMemory()[0])
}

func TestPatchAndDump(t *testing.T) {
	program := []int64{1, 0, 0, 0, 99}
	mc := machine.New(program)

	require.NoError(t, mc.WriteMemory(1, 4))
	require.NoError(t, mc.Run(false))

	assert.Equal(t, []int64{100, 4, 0, 0, 99}, mc.DumpMemory())
	assert.Equal(t, []int64{1, 0, 0, 0, 99}, program, "program slice was aliased")
}

type recorder struct {
	steps  []int64
	reads  []int64
	writes []int64
}

func (r *recorder) Step(mc *machine.Machine) {
	r.steps = append(r.steps, mc.Program())
}

func (r *recorder) Read(addr int64, mc *machine.Machine) {
	r.reads = append(r.reads, addr)
}

func (r *recorder) Write(addr int64, mc *machine.Machine) {
	r.writes = append(r.writes, addr)
}

func TestDebuggerHooks(t *testing.T) {
	var rec recorder

	mc := machine.New([]int64{1, 5, 6, 7, 99, 10, 20, 0})
	mc.Debugger = &rec

	require.NoError(t, mc.Run(false))

	assert.Equal(t, []int64{4, 4}, rec.steps)
	assert.Equal(t, []int64{5, 6}, rec.reads)
	assert.Equal(t, []int64{7}, rec.writes)
}
