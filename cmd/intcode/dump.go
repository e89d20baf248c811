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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lassandro/gointcode/pkg/encoding"
	"github.com/lassandro/gointcode/pkg/machine"
)

func newDumpCmd() *cobra.Command {
	var inputs []int64
	var patches []string
	var address int64

	cmd := &cobra.Command{
		Use:   "dump file",
		Short: "Runs a program and prints its final memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := encoding.LoadProgramFile(args[0])
			if err != nil {
				return err
			}

			mc := machine.New(program, inputs...)

			if err := applyPatches(mc, patches); err != nil {
				return err
			}

			if err := mc.Run(false); err != nil {
				return err
			}

			if mc.IsAwaitingInput() {
				return fmt.Errorf("program awaits input at %d", mc.Program())
			}

			if cmd.Flags().Changed("address") {
				value, err := mc.ReadMemory(address)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), encoding.FormatProgram(mc.DumpMemory()))
			return nil
		},
	}

	cmd.Flags().Int64SliceVar(&inputs, "input", nil, "Input values queued before running")
	cmd.Flags().StringArrayVar(&patches, "set", nil, "Memory patch addr=value applied before running")
	cmd.Flags().Int64Var(&address, "address", 0, "Print only the word at this address")

	return cmd
}
