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
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lassandro/gointcode/pkg/config"
	"github.com/lassandro/gointcode/pkg/encoding"
	"github.com/lassandro/gointcode/pkg/log"
	"github.com/lassandro/gointcode/pkg/machine"
)

type runFlags struct {
	inputs      []int64
	ascii       string
	configPath  string
	interactive bool
	patches     []string
	memoryLimit int64
	asciiOut    bool
	suspend     bool
}

func newRunCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Runs a program to completion and prints its output",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadRunConfig(cmd, &flags, args)
			if err != nil {
				return err
			}
			return run(cfg, &flags, cmd.OutOrStdout())
		},
	}

	cmd.Flags().Int64SliceVar(&flags.inputs, "input", nil, "Input values queued before running")
	cmd.Flags().StringVar(&flags.ascii, "ascii", "", "Text queued as ASCII input after --input")
	cmd.Flags().StringVar(&flags.configPath, "config", "", "YAML run configuration")
	cmd.Flags().BoolVar(&flags.interactive, "interactive", false, "Prompt for input whenever the program waits for it")
	cmd.Flags().StringArrayVar(&flags.patches, "set", nil, "Memory patch addr=value applied before running")
	cmd.Flags().Int64Var(&flags.memoryLimit, "memory-limit", 0, "Memory size limit in words (0 for none)")
	cmd.Flags().BoolVar(&flags.asciiOut, "ascii-out", false, "Print output as ASCII text")
	cmd.Flags().BoolVar(&flags.suspend, "suspend-on-output", false, "Flush output after every value")

	return cmd
}

// loadRunConfig layers command line flags over the config file.
func loadRunConfig(cmd *cobra.Command, flags *runFlags, args []string) (*config.Config, error) {
	cfg := config.Default()

	if flags.configPath != "" {
		var err error
		if cfg, err = config.Load(flags.configPath); err != nil {
			return nil, err
		}

		if !cmd.Flags().Changed("log-level") {
			if err := log.InitLogger(os.Stderr, cfg.LogLevel); err != nil {
				return nil, err
			}
		}

		for _, module := range cfg.LogModules {
			log.EnableModule(module)
		}
	}

	if len(args) > 0 {
		cfg.Program = args[0]
	}

	if cfg.Program == "" {
		return nil, errors.New("no program given")
	}

	if cmd.Flags().Changed("input") {
		cfg.Inputs = flags.inputs
	}

	if cmd.Flags().Changed("ascii") {
		cfg.ASCII = flags.ascii
	}

	if cmd.Flags().Changed("memory-limit") {
		cfg.MemoryLimit = flags.memoryLimit
	}

	if cmd.Flags().Changed("suspend-on-output") {
		cfg.SuspendOnOutput = flags.suspend
	}

	for _, patch := range flags.patches {
		addr, value, err := parsePatch(patch)
		if err != nil {
			return nil, err
		}
		cfg.Patches[addr] = value
	}

	return cfg, cfg.Validate()
}

func printOutput(w io.Writer, values []int64, ascii bool) {
	if ascii {
		fmt.Fprint(w, encoding.DecodeASCII(values))
		return
	}

	for _, value := range values {
		fmt.Fprintln(w, value)
	}
}

func run(cfg *config.Config, flags *runFlags, w io.Writer) error {
	program, err := encoding.LoadProgramFile(cfg.Program)
	if err != nil {
		return err
	}

	mc, err := machine.NewWithOptions(program, cfg.Options())
	if err != nil {
		return err
	}

	if err := cfg.Apply(mc); err != nil {
		return err
	}

	var prompt lineReader

	if flags.interactive {
		if prompt, err = newLineReader("> ", historyPath("intcode_input_history")); err != nil {
			return err
		}
		defer prompt.Close()
	}

	for {
		if err := mc.Run(cfg.SuspendOnOutput); err != nil {
			printOutput(w, mc.DrainOutput(), flags.asciiOut)
			return fmt.Errorf("fault after %d steps: %w", mc.Steps(), err)
		}

		printOutput(w, mc.DrainOutput(), flags.asciiOut)

		if mc.IsHalted() {
			break
		}

		if !mc.IsAwaitingInput() {
			continue
		}

		if prompt == nil {
			return fmt.Errorf("program awaits input at %d", mc.Program())
		}

		line, err := prompt.Readline()
		if err != nil {
			return fmt.Errorf("program awaits input at %d: %w", mc.Program(), err)
		}

		if flags.asciiOut {
			mc.AddASCII(line + "\n")
			continue
		}

		values, err := encoding.ParseProgram(line)
		if err != nil {
			log.Warn(log.CLIModule, "invalid input", "line", strings.TrimSpace(line), "err", err)
			continue
		}

		mc.AddInputs(values...)
	}

	log.Info(log.CLIModule, "program halted", "steps", mc.Steps())
	return nil
}
