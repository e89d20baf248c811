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
	"errors"
	"fmt"

	"github.com/lassandro/gointcode/pkg/log"
	"github.com/lassandro/gointcode/pkg/machine"
)

var (
	ErrNoPhases = errors.New("no phases given")
	ErrNoOutput = errors.New("final stage produced no output")
	ErrStalled  = errors.New("every running stage is waiting for input")
)

// StageError reports the fault of one machine in a pipeline.
type StageError struct {
	Stage int
	Phase int64
	Err   error
}

func (err *StageError) Error() string {
	return fmt.Sprintf("stage %d (phase %d): %v", err.Stage, err.Phase, err.Err)
}

func (err *StageError) Unwrap() error {
	return err.Err
}

// Chain runs one machine per phase, each primed with its phase value, and
// relays every output to the next machine. seed is the first machine's
// second input. The result is the last value emitted by the final machine.
func Chain(program []int64, phases []int64, seed int64) (int64, error) {
	return relay(program, phases, seed, false)
}

// Loop is Chain with the final machine's output fed back into the first
// machine, running until every machine halts.
func Loop(program []int64, phases []int64, seed int64) (int64, error) {
	return relay(program, phases, seed, true)
}

func relay(program []int64, phases []int64, seed int64, feedback bool) (int64, error) {
	if len(phases) == 0 {
		return 0, ErrNoPhases
	}

	machines := make([]*machine.Machine, len(phases))
	for i, phase := range phases {
		machines[i] = machine.New(program, phase)
	}

	machines[0].AddInput(seed)

	var last int64
	var emitted bool

	for round := 0; ; round++ {
		progressed := false
		halted := 0

		for i, mc := range machines {
			if mc.IsHalted() {
				continue
			}

			if err := mc.Run(true); err != nil {
				return 0, &StageError{i, phases[i], err}
			}

			for _, value := range mc.DrainOutput() {
				progressed = true

				if i < len(machines)-1 {
					machines[i+1].AddInput(value)
					continue
				}

				last, emitted = value, true

				if feedback {
					machines[0].AddInput(value)
				}
			}
		}

		for _, mc := range machines {
			if mc.IsHalted() {
				halted++
			}
		}

		if halted == len(machines) {
			log.Debug(
				log.PipelineModule, "pipeline halted",
				"phases", phases, "rounds", round, "signal", last,
			)
			break
		}

		if !progressed {
			return 0, ErrStalled
		}
	}

	if !emitted {
		return 0, ErrNoOutput
	}

	return last, nil
}
