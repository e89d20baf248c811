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

package pipeline

import (
	"context"
	"runtime"

	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"github.com/lassandro/gointcode/pkg/log"
)

type Options struct {
	// Feedback selects Loop instead of Chain.
	Feedback bool
	// Workers bounds concurrent evaluations. Zero uses GOMAXPROCS.
	Workers int
	Seed    int64
}

type Result struct {
	Signal int64
	Phases []int64
}

// Permutations returns every ordering of values, in lexicographic order of
// their positions in values.
func Permutations(values []int64) [][]int64 {
	if len(values) == 0 {
		return [][]int64{{}}
	}

	result := make([][]int64, 0, len(values))

	for i, value := range values {
		rest := make([]int64, 0, len(values)-1)
		rest = append(rest, values[:i]...)
		rest = append(rest, values[i+1:]...)

		for _, tail := range Permutations(rest) {
			result = append(result, append([]int64{value}, tail...))
		}
	}

	return result
}

// Search evaluates program under every ordering of phases and returns the
// largest signal. Equal signals resolve to the lexicographically smallest
// phase order.
func Search(ctx context.Context, program []int64, phases []int64, opts Options) (Result, error) {
	if len(phases) == 0 {
		return Result{}, ErrNoPhases
	}

	eval := Chain
	if opts.Feedback {
		eval = Loop
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	perms := Permutations(phases)
	signals := make([]int64, len(perms))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	log.Debug(
		log.PipelineModule, "search started",
		"permutations", len(perms), "workers", workers, "feedback", opts.Feedback,
	)

	for i, perm := range perms {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			signal, err := eval(program, perm, opts.Seed)

			if err != nil {
				return err
			}

			signals[i] = signal
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	best := Result{Signal: signals[0], Phases: perms[0]}

	for i, perm := range perms[1:] {
		signal := signals[i+1]

		if signal > best.Signal ||
			(signal == best.Signal && slices.Compare(perm, best.Phases) < 0) {
			best = Result{Signal: signal, Phases: perm}
		}
	}

	best.Phases = slices.Clone(best.Phases)

	log.Debug(
		log.PipelineModule, "search finished",
		"signal", best.Signal, "phases", best.Phases,
	)

	return best, nil
}
