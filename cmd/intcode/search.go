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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/lassandro/gointcode/pkg/encoding"
	"github.com/lassandro/gointcode/pkg/pipeline"
)

func newSearchCmd() *cobra.Command {
	var phases []int64
	var opts pipeline.Options

	cmd := &cobra.Command{
		Use:   "search file",
		Short: "Finds the phase order giving the largest pipeline signal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := encoding.LoadProgramFile(args[0])
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			result, err := pipeline.Search(ctx, program, phases, opts)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d %s\n", result.Signal, encoding.FormatProgram(result.Phases))
			return nil
		},
	}

	cmd.Flags().Int64SliceVar(&phases, "phases", []int64{0, 1, 2, 3, 4}, "Phase values to permute")
	cmd.Flags().BoolVar(&opts.Feedback, "feedback", false, "Feed the last stage's output back into the first")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "Concurrent evaluations (0 for GOMAXPROCS)")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "Input given to the first stage")

	return cmd
}
