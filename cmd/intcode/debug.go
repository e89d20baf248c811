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
	stdlog "log"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/lassandro/gointcode/pkg/config"
	"github.com/lassandro/gointcode/pkg/debugger"
	"github.com/lassandro/gointcode/pkg/encoding"
	"github.com/lassandro/gointcode/pkg/log"
	"github.com/lassandro/gointcode/pkg/machine"
)

// session is one debugger run. The REPL returns control to the run loop on
// continue, next, or quit.
type session struct {
	dbg     *debugger.Debugger
	program []int64
	rl      lineReader
	lastcmd []string
	exit    bool
}

func (s *session) debugBreak(args []string) {
	const usage = "break [add|list|remove|clear]"

	if len(args) == 0 {
		args = append(args, "l")
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "break add [addr|label]"

		if len(args) != 1 {
			stdlog.Println(usage)
			return
		}

		addr, err := s.dbg.Resolve(args[0])

		if err != nil {
			stdlog.Println(err)
			return
		}

		if s.dbg.AddBreakpoint(addr) {
			fmt.Printf("Breakpoint added [%04d]\n", addr)
		}

	case "l", "ls", "list":
		var fmtstring string
		{
			digits := math.Floor(math.Log10(float64(len(s.dbg.Breakpoints) + 1)))
			fmtstring = fmt.Sprintf("#%%0%dd: %%d\n", int64(digits)+1)
		}

		for i, breakpoint := range s.dbg.Breakpoints {
			fmt.Printf(fmtstring, i, breakpoint.Addr)
		}

	case "r", "rm", "remove":
		const usage = "break remove [#]"

		if len(args) != 1 {
			stdlog.Println(usage)
			return
		}

		i, err := strconv.Atoi(args[0])

		if err != nil {
			stdlog.Println(err)
			return
		}

		if err := s.dbg.RemoveBreakpoint(i); err != nil {
			stdlog.Println(err)
			return
		}

		fmt.Printf("Breakpoint removed [%d]\n", i)

	case "clear":
		s.dbg.Breakpoints = nil
		fmt.Println("Breakpoints reset")

	default:
		stdlog.Printf("break: '%s' is not a valid command\n%s\n", cmd, usage)
	}
}

func (s *session) debugWatch(args []string) {
	const usage = "watch [add|list|remove|clear]"

	if len(args) == 0 {
		args = append(args, "l")
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "watch add [addr|label] [read|write|readwrite]"

		if len(args) != 2 {
			stdlog.Println(usage)
			return
		}

		addr, err := s.dbg.Resolve(args[0])

		if err != nil {
			stdlog.Println(err)
			return
		}

		wtype, err := debugger.ParseWatchpointType(args[1])

		if err != nil {
			stdlog.Println(usage)
			return
		}

		if s.dbg.AddWatchpoint(addr, wtype) {
			fmt.Printf("Watchpoint added [%04d] (%s)\n", addr, wtype)
		}

	case "l", "ls", "list":
		var fmtstring string
		{
			digits := math.Floor(math.Log10(float64(len(s.dbg.Watchpoints) + 1)))
			fmtstring = fmt.Sprintf("#%%0%dd: %%d %%s\n", int64(digits)+1)
		}

		for i, watchpoint := range s.dbg.Watchpoints {
			fmt.Printf(fmtstring, i, watchpoint.Addr, watchpoint.Type)
		}

	case "r", "rm", "remove":
		const usage = "watch remove [#]"

		if len(args) != 1 {
			stdlog.Println(usage)
			return
		}

		i, err := strconv.Atoi(args[0])

		if err != nil {
			stdlog.Println(err)
			return
		}

		if err := s.dbg.RemoveWatchpoint(i); err != nil {
			stdlog.Println(err)
			return
		}

		fmt.Printf("Watchpoint removed [%d]\n", i)

	case "clear":
		s.dbg.Watchpoints = nil
		fmt.Println("Watchpoints reset")

	default:
		stdlog.Printf("watch: '%s' is not a valid command\n%s\n", cmd, usage)
	}
}

// parseRange reads the optional [addr|label] [#] arguments shared by the
// listing commands. A lone number is a count from the program counter.
func (s *session) parseRange(args []string, mc *machine.MachineState, count int64) (int64, int64, bool) {
	addr := mc.Program

	if len(args) > 2 {
		return 0, 0, false
	}

	if len(args) > 0 {
		if len(args) == 1 && !s.isLabel(args[0]) {
			value, err := strconv.ParseInt(args[0], 10, 64)

			if err == nil {
				return addr, value, true
			}
		}

		value, err := s.dbg.Resolve(args[0])

		if err != nil {
			stdlog.Println(err)
			return 0, 0, false
		}

		addr = value
	}

	if len(args) > 1 {
		value, err := strconv.ParseInt(args[1], 10, 64)

		if err != nil {
			stdlog.Println(err)
			return 0, 0, false
		}

		count = value
	}

	return addr, count, true
}

func (s *session) isLabel(arg string) bool {
	if s.dbg.SymTable == nil {
		return false
	}
	_, ok := s.dbg.SymTable.Lookup(arg)
	return ok
}

func (s *session) debugSource(mc *machine.MachineState, args []string) {
	addr, count, ok := s.parseRange(args, mc, 3)

	if !ok {
		stdlog.Println("source [addr|label] [#]")
		return
	}

	s.dbg.PrintSource(addr, int(count))
}

func (s *session) debugDisasm(mc *machine.MachineState, args []string) {
	addr, count, ok := s.parseRange(args, mc, 5)

	if !ok {
		stdlog.Println("disasm [addr|label] [#]")
		return
	}

	s.dbg.PrintDisasm(mc, addr, int(count))
}

func (s *session) debugMemory(mc *machine.MachineState, args []string) {
	addr, count, ok := s.parseRange(args, mc, 1)

	if !ok {
		stdlog.Println("memory [addr|label] [#]")
		return
	}

	s.dbg.PrintMem(mc, addr, count)
}

func (s *session) debugJump(mc *machine.MachineState, args []string) {
	const usage = "jump [addr|label]"

	if len(args) != 1 {
		fmt.Println(usage)
		return
	}

	addr, err := s.dbg.Resolve(args[0])

	if err != nil {
		stdlog.Println(err)
		return
	}

	mc.Program = addr
	fmt.Printf("\033[1mPC:\033[0m %d\n", addr)
}

func (s *session) debugSet(mc *machine.MachineState, args []string) {
	const usage = "set [addr|label|pc|rb] [value]"

	if len(args) != 2 {
		stdlog.Println(usage)
		return
	}

	value, err := encoding.DecodeInt(args[1])

	if err != nil {
		stdlog.Println(err)
		return
	}

	switch strings.ToUpper(args[0]) {
	case "PC":
		mc.Program = value
		s.dbg.PrintState(mc)
		return
	case "RB":
		mc.RelativeBase = value
		s.dbg.PrintState(mc)
		return
	}

	addr, err := s.dbg.Resolve(args[0])

	if err != nil {
		stdlog.Println(err)
		return
	}

	if err := mc.Memory.Write(addr, value); err != nil {
		stdlog.Println(err)
		return
	}

	s.dbg.PrintMem(mc, addr, 1)
}

func (s *session) debugInput(mc *machine.Machine, args []string) {
	const usage = "input [value,...|\"text\"]"

	line := strings.TrimSpace(strings.Join(args, " "))

	if line == "" {
		fmt.Printf("\033[1mIN:\033[0m %v\n", mc.State.Input.Values())
		return
	}

	if text, err := strconv.Unquote(line); err == nil {
		mc.AddASCII(text)
		return
	}

	values, err := encoding.ParseProgram(line)

	if err != nil {
		stdlog.Println(usage)
		stdlog.Println(err)
		return
	}

	mc.AddInputs(values...)
}

func (s *session) repl(mc *machine.Machine) {
	for {
		line, err := s.rl.Readline()

		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}

		if err != nil {
			fmt.Println()
			s.exit = true
			return
		}

		args := strings.Fields(line)

		if len(args) == 0 {
			if len(s.lastcmd) == 0 {
				continue
			}
			args = s.lastcmd
		} else {
			s.lastcmd = make([]string, len(args))
			copy(s.lastcmd, args)
		}

		cmd := args[0]
		args = args[1:]

		switch cmd {
		case "b", "bp", "break", "breakpoint":
			s.debugBreak(args)

		case "w", "wp", "watch", "watchpoint":
			s.debugWatch(args)

		case "st", "state":
			s.dbg.PrintState(&mc.State)

		case "s", "src", "source":
			s.debugSource(&mc.State, args)

		case "d", "dis", "disasm":
			s.debugDisasm(&mc.State, args)

		case "l", "label", "labels":
			s.dbg.PrintLabels()

		case "j", "jmp", "jump":
			s.debugJump(&mc.State, args)

		case "m", "mem", "memory":
			s.debugMemory(&mc.State, args)

		case "set":
			s.debugSet(&mc.State, args)

		case "i", "in", "input":
			s.debugInput(mc, args)

		case "o", "out", "output":
			printOutput(os.Stdout, mc.DrainOutput(), false)

		case "c", "continue":
			s.dbg.Break.Store(false)
			return

		case "n", "next":
			s.dbg.Break.Store(true)
			return

		case "q", "quit", "exit":
			s.exit = true
			return

		case "clear":
			fmt.Print("\033[H\033[2J")

		case "reset":
			mc.State.Reset(s.program, mc.State.Memory.Limit())
			s.dbg.PrintState(&mc.State)

		default:
			fmt.Printf("error: '%s' is not a valid command\n", cmd)
		}
	}
}

func (s *session) stopped(mc *machine.Machine) {
	fmt.Println()
	fmt.Println("Program stopped")
	s.dbg.PrintDisasm(&mc.State, mc.State.Program, 1)
}

func (s *session) handleBreak(dbg *debugger.Debugger, mc *machine.Machine) {
	if !dbg.Break.Load() {
		s.stopped(mc)
	} else {
		dbg.PrintDisasm(&mc.State, mc.State.Program, 1)
	}
	s.repl(mc)
}

func (s *session) handleWatch(addr int64, dbg *debugger.Debugger, mc *machine.Machine) {
	s.stopped(mc)
	dbg.PrintMem(&mc.State, addr, 1)
	s.repl(mc)
}

// breakOnSignal stops the machine at the next instruction whenever c
// delivers. The returned func ends the watcher and waits for it.
func breakOnSignal(dbg *debugger.Debugger, c <-chan os.Signal) func() {
	done := make(chan struct{})
	exited := make(chan struct{})

	go func() {
		defer close(exited)

		for {
			select {
			case <-c:
				dbg.Break.Store(true)
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		<-exited
	}
}

func newDebugCmd() *cobra.Command {
	var inputs []int64
	var breakpoints []string
	var configPath string

	cmd := &cobra.Command{
		Use:   "debug file",
		Short: "Runs a program under the interactive debugger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := encoding.LoadProgramFile(args[0])
			if err != nil {
				return err
			}

			cfg := config.Default()

			if configPath != "" {
				if cfg, err = config.Load(configPath); err != nil {
					return err
				}
			}

			opts := cfg.Options()
			opts.Input = append(opts.Input, inputs...)

			mc, err := machine.NewWithOptions(program, opts)
			if err != nil {
				return err
			}

			if err := cfg.Apply(mc); err != nil {
				return err
			}

			dbg := &debugger.Debugger{Output: os.Stdout}

			for _, addr := range cfg.Breakpoints {
				dbg.AddBreakpoint(addr)
			}

			if symtable, err := loadSymbols(args[0]); err == nil {
				dbg.SymTable = symtable
			} else if !os.IsNotExist(err) {
				stdlog.Println("Error loading symbol file")
				stdlog.Println(err)
			}

			if dbg.SymTable != nil && dbg.SymTable.Source != "" {
				if file, err := os.Open(dbg.SymTable.Source); err == nil {
					dbg.Source = file
					defer file.Close()
				} else {
					stdlog.Println("Error loading source file")
					stdlog.Println(err)
				}
			}

			for _, breakpoint := range breakpoints {
				addr, err := dbg.Resolve(breakpoint)
				if err != nil {
					return err
				}
				dbg.AddBreakpoint(addr)
			}

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "\033[1;30m(dbg)\033[0m ",
				HistoryFile:     historyPath("intcode_debug_history"),
				InterruptPrompt: "^C",
				EOFPrompt:       "quit",
			})
			if err != nil {
				return err
			}
			defer rl.Close()

			s := &session{dbg: dbg, program: program, rl: rl}

			dbg.HandleBreak = s.handleBreak
			dbg.HandleRead = s.handleWatch
			dbg.HandleWrite = s.handleWatch
			mc.Debugger = dbg

			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt)
			defer signal.Stop(c)

			stop := breakOnSignal(dbg, c)
			defer stop()

			log.Debug(log.DebuggerModule, "debugger started", "program", args[0], "words", len(program))

			s.dbg.PrintState(&mc.State)
			s.dbg.PrintDisasm(&mc.State, mc.State.Program, 1)
			s.repl(mc)

			return s.loop(mc, cmd.OutOrStdout())
		},
	}

	cmd.Flags().Int64SliceVar(&inputs, "input", nil, "Input values queued before running")
	cmd.Flags().StringArrayVar(&breakpoints, "break", nil, "Breakpoint address or label")
	cmd.Flags().StringVar(&configPath, "config", "", "YAML run configuration")

	return cmd
}

func (s *session) loop(mc *machine.Machine, w io.Writer) error {
	for !s.exit {
		if err := mc.Step(); err != nil {
			fmt.Fprintf(w, "Program faulted: %v\n", err)
			s.dbg.PrintState(&mc.State)
			s.repl(mc)
			if mc.IsHalted() {
				return err
			}
			continue
		}

		printOutput(w, mc.DrainOutput(), false)

		switch {
		case mc.IsHalted():
			fmt.Fprintln(w, "Program halted")
			s.dbg.PrintState(&mc.State)
			s.repl(mc)
			if mc.IsHalted() {
				return nil
			}

		case mc.IsAwaitingInput() && mc.State.Input.Len() == 0:
			fmt.Fprintln(w, "Program awaits input")
			s.repl(mc)
		}
	}

	return nil
}
