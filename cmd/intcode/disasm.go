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
	"os"

	"github.com/spf13/cobra"

	"github.com/lassandro/gointcode/pkg/assembler"
	"github.com/lassandro/gointcode/pkg/encoding"
	"github.com/lassandro/gointcode/pkg/log"
)

func newDisasmCmd() *cobra.Command {
	var symbols bool

	cmd := &cobra.Command{
		Use:   "disasm file",
		Short: "Prints an assembly listing of a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := encoding.LoadProgramFile(args[0])
			if err != nil {
				return err
			}

			var symtable *assembler.SymTable

			if symbols {
				if symtable, err = loadSymbols(args[0]); err != nil && !os.IsNotExist(err) {
					return err
				} else if err != nil {
					log.Warn(log.CLIModule, "no symbol table", "path", symbolPath(args[0]))
				}
			}

			w := cmd.OutOrStdout()

			for _, line := range assembler.DisassembleAll(program, symtable) {
				if line.Label != "" {
					fmt.Fprintf(w, "%s:\n", line.Label)
				}
				fmt.Fprintf(w, "%6d  %s\n", line.Addr, line.Text)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&symbols, "symbols", true, "Use labels from the program's .icdb symbol table")

	return cmd
}
