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

package assembler_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lassandro/gointcode/pkg/assembler"
	"github.com/lassandro/gointcode/pkg/machine"
)

type testCase struct {
	Name   string
	Input  string
	Output []int64
}

type failCase struct {
	Name  string
	Input string
	Error error
}

func testAssemblerSuccess(t *testing.T, test *testCase) {
	result, errs := assembler.Assemble(strings.NewReader(test.Input), nil)

	if len(errs) > 0 {
		t.Fatal(errs[0])
	}

	assert.Equal(t, test.Output, result)
}

func testAssemblerFailure(t *testing.T, test *failCase) {
	_, errs := assembler.Assemble(strings.NewReader(test.Input), nil)

	require.NotEmpty(t, errs, "expected assembler errors")
	assert.IsType(t, test.Error, errs[0], errs[0].Error())

	_, ok := errs[0].(assembler.TokenError)
	assert.True(t, ok, "error does not carry a position")
}

func TestInstructions(t *testing.T) {
	tests := []testCase{
		{"ADD", "ADD 9, 10, 3", []int64{1, 9, 10, 3}},
		{"ADD Immediate", "add #2, #-3, 0", []int64{1101, 2, -3, 0}},
		{"MUL Mixed", "MUL 4, #3, 4", []int64{1002, 4, 3, 4}},
		{"MUL Relative", "MUL @1, #3, @-2", []int64{21202, 1, 3, -2}},
		{"IN", "IN 0", []int64{3, 0}},
		{"IN Relative", "IN @2", []int64{203, 2}},
		{"OUT Immediate", "OUT #1125899906842624", []int64{104, 1125899906842624}},
		{"JNZ", "JNZ #1, #9", []int64{1105, 1, 9}},
		{"JZ", "JZ 12, 15", []int64{6, 12, 15}},
		{"LT", "LT #-1, #8, 3", []int64{1107, -1, 8, 3}},
		{"EQ", "EQ 9, 10, 9", []int64{8, 9, 10, 9}},
		{"ARB", "ARB #1", []int64{109, 1}},
		{"HLT", "HLT", []int64{99}},
		{"Hex", "OUT #0x10", []int64{104, 16}},
		{"Comment", "HLT ; stop here", []int64{99}},
	}

	for _, test := range tests {
		test := test
		t.Run(test.Name, func(t *testing.T) {
			testAssemblerSuccess(t, &test)
		})
	}
}

func TestDirectives(t *testing.T) {
	tests := []testCase{
		{"DATA", ".DATA 1, -2, 3", []int64{1, -2, 3}},
		{"BLKW", "HLT\n.BLKW 3", []int64{99, 0, 0, 0}},
		{"STRING", `.STRING "hi\n"`, []int64{104, 105, 10}},
		{"STRING Separators", `.STRING "a, b;"`, []int64{97, 44, 32, 98, 59}},
		{"END", "HLT\n.END\nHLT", []int64{99}},
	}

	for _, test := range tests {
		test := test
		t.Run(test.Name, func(t *testing.T) {
			testAssemblerSuccess(t, &test)
		})
	}
}

func TestLabels(t *testing.T) {
	tests := []testCase{
		{
			Name: "Echo",
			Input: `
; echo every input value
start:  IN   value
        OUT  value
        JNZ  #1, #start
value:  .DATA 0
`,
			Output: []int64{3, 7, 4, 7, 1105, 1, 0, 0},
		},
		{
			Name: "LabelOnly",
			Input: `
loop:
        JZ #0, #loop
`,
			Output: []int64{1106, 0, 0},
		},
		{
			Name: "Backward",
			Input: `
one:    .DATA 1
        ADD one, one, one
        HLT
`,
			Output: []int64{1, 1, 0, 0, 0, 99},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.Name, func(t *testing.T) {
			testAssemblerSuccess(t, &test)
		})
	}
}

func TestAssemblerErrors(t *testing.T) {
	tests := []failCase{
		{"UnknownMnemonic", "FOO 1", &assembler.UnknownIdentifierError{}},
		{"UnknownDirective", ".ORIG 3", &assembler.UnknownIdentifierError{}},
		{"ArgumentCount", "ADD 1, 2", &assembler.InvalidNumArgumentsError{}},
		{"HaltArguments", "HLT 1", &assembler.InvalidNumArgumentsError{}},
		{"ImmediateWrite", "ADD #1, #2, #3", &assembler.ImmediateWriteError{}},
		{"ImmediateInput", "IN #3", &assembler.ImmediateWriteError{}},
		{"Redeclared", "x: HLT\nx: HLT", &assembler.RedeclaredLabelError{}},
		{"UnknownLabel", "JZ #0, #nowhere", &assembler.UnknownLabelError{}},
		{"BadLiteral", ".DATA 1x", &assembler.InvalidLiteralError{}},
		{"NegativeBlock", ".BLKW -1", &assembler.InvalidLiteralError{}},
		{"UnterminatedString", `.STRING "abc`, &assembler.InvalidStringError{}},
		{"StringOperand", ".STRING 12", &assembler.InvalidOperandError{}},
		{"StringInstruction", `OUT "a"`, &assembler.InvalidOperandError{}},
		{"Character", "ADD 1, 2, 3 $", &assembler.UnexpectedCharacterError{}},
		{"LoosePrefix", "OUT #", &assembler.UnexpectedCharacterError{}},
		{"MidTokenSign", "OUT 1-2", &assembler.UnexpectedCharacterError{}},
		{"EmptyLabel", ": HLT", &assembler.UnexpectedCharacterError{}},
	}

	for _, test := range tests {
		test := test
		t.Run(test.Name, func(t *testing.T) {
			testAssemblerFailure(t, &test)
		})
	}
}

func TestErrorPosition(t *testing.T) {
	_, errs := assembler.Assemble(strings.NewReader("HLT\n  ADD 1, 2"), nil)
	require.Len(t, errs, 1)

	cursor := errs[0].(assembler.TokenError).GetPosition()
	assert.Equal(t, 2, cursor.Line)
	assert.Equal(t, 3, cursor.Column)
	assert.Equal(t, int64(6), cursor.Byte)
	assert.Equal(t, int64(4), cursor.LineByte)
	assert.Equal(t, int64(3), cursor.Size)
}

func TestSymTable(t *testing.T) {
	source := "start: IN 7\n\nOUT 7 ; echo\nend: HLT\n"
	symtable := assembler.NewSymTable()

	result, errs := assembler.Assemble(strings.NewReader(source), symtable)
	require.Empty(t, errs)
	assert.Equal(t, []int64{3, 7, 4, 7, 99}, result)

	assert.Equal(t, map[int64]int64{0: 0, 2: 13, 4: 26}, symtable.Symbols)
	assert.Equal(t, map[int64]string{0: "start", 4: "end"}, symtable.Labels)

	addr, ok := symtable.Lookup("end")
	assert.True(t, ok)
	assert.Equal(t, int64(4), addr)

	_, ok = symtable.Lookup("missing")
	assert.False(t, ok)
}

func TestAssembledProgramRuns(t *testing.T) {
	source := `
        ARB  #1
        OUT  @-1
        HLT
`
	result, errs := assembler.Assemble(strings.NewReader(source), nil)
	require.Empty(t, errs)
	require.Equal(t, []int64{109, 1, 204, -1, 99}, result)

	mc := machine.New(result)
	require.NoError(t, mc.Run(false))
	assert.Equal(t, []int64{109}, mc.Output())
}
