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

package pipeline_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lassandro/gointcode/pkg/machine"
	"github.com/lassandro/gointcode/pkg/pipeline"
)

var (
	shiftDigits = []int64{
		3, 15, 3, 16, 1002, 16, 10, 16, 1, 16, 15, 15, 4, 15, 99, 0, 0,
	}
	reverseDigits = []int64{
		3, 23, 3, 24, 1002, 24, 10, 24, 1002, 23, -1, 23, 101, 5, 23, 23, 1, 24,
		23, 23, 4, 23, 99, 0, 0,
	}
	feedbackLoop = []int64{
		3, 26, 1001, 26, -4, 26, 3, 27, 1002, 27, 2, 27, 1, 27, 26, 27, 4, 27,
		1001, 28, -1, 28, 1005, 28, 6, 99, 0, 0, 5,
	}
	// discards the phase, echoes the seed
	echoSeed = []int64{3, 0, 3, 0, 4, 0, 99}
)

func TestChain(t *testing.T) {
	signal, err := pipeline.Chain(shiftDigits, []int64{4, 3, 2, 1, 0}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(43210), signal)

	signal, err = pipeline.Chain(reverseDigits, []int64{0, 1, 2, 3, 4}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(54321), signal)

	signal, err = pipeline.Chain(echoSeed, []int64{1, 2}, 17)
	require.NoError(t, err)
	assert.Equal(t, int64(17), signal)
}

func TestLoop(t *testing.T) {
	signal, err := pipeline.Loop(feedbackLoop, []int64{9, 8, 7, 6, 5}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(139629729), signal)
}

func TestRelayErrors(t *testing.T) {
	_, err := pipeline.Chain(shiftDigits, nil, 0)
	assert.ErrorIs(t, err, pipeline.ErrNoPhases)

	_, err = pipeline.Chain([]int64{3, 0, 3, 0, 99}, []int64{0}, 0)
	assert.ErrorIs(t, err, pipeline.ErrNoOutput)

	_, err = pipeline.Chain([]int64{3, 0, 3, 0, 3, 0, 99}, []int64{0}, 0)
	assert.ErrorIs(t, err, pipeline.ErrStalled)

	_, err = pipeline.Chain([]int64{3, 0, 4, 0, 98}, []int64{1, 2}, 0)
	assert.ErrorIs(t, err, machine.ErrMalformedProgram)

	var stageErr *pipeline.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, 0, stageErr.Stage)
	assert.Equal(t, int64(1), stageErr.Phase)
}

func TestPermutations(t *testing.T) {
	assert.Equal(
		t,
		[][]int64{
			{1, 2, 3}, {1, 3, 2}, {2, 1, 3}, {2, 3, 1}, {3, 1, 2}, {3, 2, 1},
		},
		pipeline.Permutations([]int64{1, 2, 3}),
	)

	assert.Len(t, pipeline.Permutations([]int64{0, 1, 2, 3, 4}), 120)
	assert.Equal(t, [][]int64{{}}, pipeline.Permutations(nil))
}

func TestSearch(t *testing.T) {
	tests := []struct {
		Name    string
		Program []int64
		Phases  []int64
		Options pipeline.Options
		Result  pipeline.Result
	}{
		{
			"Chain",
			shiftDigits,
			[]int64{0, 1, 2, 3, 4},
			pipeline.Options{Workers: 4},
			pipeline.Result{Signal: 43210, Phases: []int64{4, 3, 2, 1, 0}},
		},
		{
			"Serial",
			reverseDigits,
			[]int64{4, 3, 2, 1, 0},
			pipeline.Options{Workers: 1},
			pipeline.Result{Signal: 54321, Phases: []int64{0, 1, 2, 3, 4}},
		},
		{
			"Feedback",
			feedbackLoop,
			[]int64{5, 6, 7, 8, 9},
			pipeline.Options{Feedback: true},
			pipeline.Result{Signal: 139629729, Phases: []int64{9, 8, 7, 6, 5}},
		},
		{
			"Tie",
			echoSeed,
			[]int64{2, 0, 1},
			pipeline.Options{Seed: 3},
			pipeline.Result{Signal: 3, Phases: []int64{0, 1, 2}},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.Name, func(t *testing.T) {
			result, err := pipeline.Search(
				context.Background(), test.Program, test.Phases, test.Options,
			)
			require.NoError(t, err)
			assert.Equal(t, test.Result, result)
		})
	}
}

func TestSearchErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pipeline.Search(ctx, shiftDigits, []int64{0, 1, 2}, pipeline.Options{})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = pipeline.Search(
		context.Background(), []int64{98}, []int64{0, 1}, pipeline.Options{},
	)
	assert.ErrorIs(t, err, machine.ErrMalformedProgram)

	_, err = pipeline.Search(
		context.Background(),
		[]int64{1101, 1, 1, math.MaxInt64, 99},
		[]int64{0, 1, 2},
		pipeline.Options{Workers: 2},
	)
	assert.ErrorIs(t, err, machine.ErrOutOfBounds)

	_, err = pipeline.Search(
		context.Background(), shiftDigits, nil, pipeline.Options{},
	)
	assert.ErrorIs(t, err, pipeline.ErrNoPhases)
}
