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

package debugger

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/lassandro/gointcode/pkg/assembler"
	"github.com/lassandro/gointcode/pkg/encoding"
	"github.com/lassandro/gointcode/pkg/log"
	"github.com/lassandro/gointcode/pkg/machine"
)

func (t WatchpointType) String() string {
	switch t {
	case ReadWatch:
		return "read"
	case WriteWatch:
		return "write"
	case ReadWriteWatch:
		return "rwrite"
	}
	return "<invalid>"
}

func ParseWatchpointType(s string) (WatchpointType, error) {
	switch strings.ToLower(s) {
	case "r", "read":
		return ReadWatch, nil
	case "w", "write":
		return WriteWatch, nil
	case "rw", "rwrite", "readwrite":
		return ReadWriteWatch, nil
	}
	return 0, fmt.Errorf("invalid watchpoint type '%s'", s)
}

func (dbg *Debugger) out() io.Writer {
	if dbg.Output == nil {
		return os.Stdout
	}
	return dbg.Output
}

// Step is called by the machine after each instruction, so the program
// counter already names the next instruction to run.
func (dbg *Debugger) Step(mc *machine.Machine) {
	if dbg.HandleBreak == nil {
		return
	}

	if dbg.Break.Load() {
		dbg.HandleBreak(dbg, mc)
		return
	}

	for _, breakpoint := range dbg.Breakpoints {
		if mc.State.Program == breakpoint.Addr {
			log.Debug(
				log.DebuggerModule, "breakpoint hit",
				"pc", mc.State.Program, "steps", mc.State.Steps,
			)
			dbg.HandleBreak(dbg, mc)
			break
		}
	}
}

func (dbg *Debugger) Read(addr int64, mc *machine.Machine) {
	if dbg.HandleRead == nil {
		return
	}

	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == WriteWatch {
			continue
		}

		if addr == watchpoint.Addr {
			log.Debug(log.DebuggerModule, "read watchpoint hit", "addr", addr)
			dbg.HandleRead(addr, dbg, mc)
			break
		}
	}
}

func (dbg *Debugger) Write(addr int64, mc *machine.Machine) {
	if dbg.HandleWrite == nil {
		return
	}

	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == ReadWatch {
			continue
		}

		if addr == watchpoint.Addr {
			log.Debug(log.DebuggerModule, "write watchpoint hit", "addr", addr)
			dbg.HandleWrite(addr, dbg, mc)
			break
		}
	}
}

// AddBreakpoint reports whether a new breakpoint was added.
func (dbg *Debugger) AddBreakpoint(addr int64) bool {
	for _, breakpoint := range dbg.Breakpoints {
		if breakpoint.Addr == addr {
			return false
		}
	}

	dbg.Breakpoints = append(dbg.Breakpoints, Breakpoint{addr})
	return true
}

func (dbg *Debugger) RemoveBreakpoint(i int) error {
	if i < 0 || i >= len(dbg.Breakpoints) {
		return fmt.Errorf("invalid breakpoint number %d", i)
	}

	dbg.Breakpoints = append(dbg.Breakpoints[:i], dbg.Breakpoints[i+1:]...)
	return nil
}

// AddWatchpoint reports whether a new watchpoint was added.
func (dbg *Debugger) AddWatchpoint(addr int64, wtype WatchpointType) bool {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Addr == addr && watchpoint.Type == wtype {
			return false
		}
	}

	dbg.Watchpoints = append(dbg.Watchpoints, Watchpoint{addr, wtype})
	return true
}

func (dbg *Debugger) RemoveWatchpoint(i int) error {
	if i < 0 || i >= len(dbg.Watchpoints) {
		return fmt.Errorf("invalid watchpoint number %d", i)
	}

	dbg.Watchpoints = append(dbg.Watchpoints[:i], dbg.Watchpoints[i+1:]...)
	return nil
}

// Resolve accepts a label name or a numeric address.
func (dbg *Debugger) Resolve(s string) (int64, error) {
	if dbg.SymTable != nil {
		if addr, ok := dbg.SymTable.Lookup(s); ok {
			return addr, nil
		}
	}

	addr, err := encoding.DecodeInt(s)

	if err != nil {
		return 0, fmt.Errorf("unknown label or address '%s'", s)
	}

	if addr < 0 {
		return 0, &machine.AddressError{Addr: addr}
	}

	return addr, nil
}

func (dbg *Debugger) PrintSource(addr int64, count int) {
	w := dbg.out()

	if dbg.Source == nil {
		fmt.Fprintln(w, "No source file loaded")
		return
	}

	if dbg.SymTable == nil {
		fmt.Fprintln(w, "No symbol table loaded")
		return
	}

	offset, exists := dbg.SymTable.Symbols[addr]

	if !exists {
		fmt.Fprintf(w, "No instruction found at %d\n", addr)
		return
	}

	lineAddrs := make(map[int64]int64, len(dbg.SymTable.Symbols))
	for lineaddr, linebyte := range dbg.SymTable.Symbols {
		lineAddrs[linebyte] = lineaddr
	}

	if _, err := dbg.Source.Seek(offset, io.SeekStart); err != nil {
		fmt.Fprintln(w, err)
		return
	}

	scanner := bufio.NewScanner(dbg.Source)
	scanner.Split(bufio.ScanLines)

	for i := 0; i < count; i++ {
		if !scanner.Scan() {
			break
		}

		line := scanner.Text()

		if lineaddr, ok := lineAddrs[offset]; ok {
			fmt.Fprintf(w, "\033[1m[%04d]\033[0m ", lineaddr)
		} else {
			fmt.Fprint(w, "\033[1;30m~~~~~~\033[0m ")
		}

		fmt.Fprintln(w, line)

		offset += int64(len(line) + 1)
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintln(w, err)
	}
}

func (dbg *Debugger) PrintMem(mc *machine.MachineState, addr int64, count int64) {
	w := dbg.out()

	for i := addr; i < addr+count; i++ {
		if i == addr {
			fmt.Fprintf(w, "\033[1m[%04d]\033[0m ", i)
		} else if (i-addr)%4 == 0 {
			fmt.Fprintln(w)
			fmt.Fprintf(w, "\033[1m[%04d]\033[0m ", i)
		}

		result, err := mc.Memory.Read(i)

		if err != nil {
			fmt.Fprintln(w)
			fmt.Fprintln(w, err)
			return
		}

		if result == 0 {
			fmt.Fprintf(w, "\033[1;30m%d\033[0m ", result)
		} else {
			fmt.Fprintf(w, "%d ", result)
		}
	}

	fmt.Fprintln(w)
}

// PrintDisasm lists count instructions starting at addr, marking the one at
// the program counter.
func (dbg *Debugger) PrintDisasm(mc *machine.MachineState, addr int64, count int) {
	w := dbg.out()
	mem := mc.Memory.Dump()

	for i := 0; i < count; i++ {
		line, err := assembler.Disassemble(mem, addr, dbg.SymTable)

		if err != nil {
			break
		}

		marker := "  "
		if line.Addr == mc.Program {
			marker = "=>"
		}

		if line.Label != "" {
			fmt.Fprintf(w, "\033[1;30m%s:\033[0m\n", line.Label)
		}

		fmt.Fprintf(w, "%s \033[1m[%04d]\033[0m %s\n", marker, line.Addr, line.Text)

		addr += line.Size()
	}
}

func (dbg *Debugger) PrintState(mc *machine.MachineState) {
	w := dbg.out()

	fmt.Fprintf(
		w,
		"\033[1mPC:\033[0m %d\t\033[1mRB:\033[0m %d\t\033[1mSTATE:\033[0m %s\t\033[1mSTEPS:\033[0m %d\n",
		mc.Program,
		mc.RelativeBase,
		mc.Status,
		mc.Steps,
	)

	fmt.Fprintf(w, "\033[1mIN:\033[0m  %v\n", mc.Input.Values())
	fmt.Fprintf(w, "\033[1mOUT:\033[0m %v\n", mc.Output.Values())

	if mc.Fault != nil {
		fmt.Fprintf(w, "\033[1mFAULT:\033[0m %v\n", mc.Fault)
	}
}

func (dbg *Debugger) PrintLabels() {
	w := dbg.out()

	if dbg.SymTable == nil {
		fmt.Fprintln(w, "No symbol table loaded")
		return
	}

	keys := make([]int64, 0, len(dbg.SymTable.Labels))
	for addr := range dbg.SymTable.Labels {
		keys = append(keys, addr)
	}

	slices.Sort(keys)

	for _, addr := range keys {
		fmt.Fprintf(w, "\033[1m[%04d]\033[0m %s\n", addr, dbg.SymTable.Labels[addr])
	}
}
