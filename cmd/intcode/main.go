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
	stdlog "log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lassandro/gointcode/pkg/log"
)

var logLevel string
var logModules string

func init() {
	exe, _ := os.Executable()
	stdlog.SetFlags(0)
	stdlog.SetPrefix(fmt.Sprintf("%s: ", filepath.Base(exe)))
	stdlog.SetOutput(os.Stderr)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "intcode",
		Short:         "Intcode program runner and debugger",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := log.InitLogger(os.Stderr, logLevel); err != nil {
				return err
			}
			log.EnableModules(logModules)
			return nil
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "warn",
		"Log level (trace, debug, info, warn, error)",
	)
	rootCmd.PersistentFlags().StringVar(
		&logModules, "log-modules", "",
		"Comma separated modules with trace and debug logging enabled "+
			"(machine, pipeline, debugger, cli)",
	)

	rootCmd.AddCommand(
		newRunCmd(),
		newDebugCmd(),
		newDisasmCmd(),
		newSearchCmd(),
		newDumpCmd(),
	)

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		stdlog.Println(err)
		os.Exit(1)
	}
}
