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

package log

import (
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
)

const (
	MachineModule  = "machine"
	PipelineModule = "pipeline"
	DebuggerModule = "debugger"
	CLIModule      = "cli"
)

var root atomic.Value

// modules holds an immutable map[string]bool, replaced whole on every change.
var modules atomic.Value

var modulesMu sync.Mutex

func init() {
	root.Store(NewLogger(DiscardHandler()))
	modules.Store(map[string]bool{})
}

func setModule(module string, enabled bool) {
	modulesMu.Lock()
	defer modulesMu.Unlock()

	current := modules.Load().(map[string]bool)
	next := make(map[string]bool, len(current)+1)

	for name := range current {
		next[name] = true
	}

	if enabled {
		next[module] = true
	} else {
		delete(next, module)
	}

	modules.Store(next)
}

// InitLogger installs a text logger on w at the named level.
func InitLogger(w io.Writer, level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	SetDefault(NewLogger(NewTextHandler(w, lvl)))
	return nil
}

// SetDefault sets the default global logger
func SetDefault(l Logger) {
	root.Store(l)
}

// Root returns the root logger
func Root() Logger {
	return root.Load().(Logger)
}

// EnableModule enables trace and debug records for module.
func EnableModule(module string) {
	setModule(module, true)
}

// EnableModules takes a comma separated module list.
func EnableModules(list string) {
	for _, module := range strings.Split(list, ",") {
		if module = strings.TrimSpace(module); module != "" {
			EnableModule(module)
		}
	}
}

func DisableModule(module string) {
	setModule(module, false)
}

// ModuleEnabled reports whether trace and debug records for module are
// emitted. Callers on hot paths check this before building attributes.
func ModuleEnabled(module string) bool {
	return modules.Load().(map[string]bool)[module]
}

// Trace and Debug are filtered per module; the remaining levels are not.

func Trace(module string, msg string, ctx ...any) {
	if !ModuleEnabled(module) {
		return
	}
	Root().Write(LevelTrace, module, msg, ctx...)
}

func Debug(module string, msg string, ctx ...any) {
	if !ModuleEnabled(module) {
		return
	}
	Root().Write(slog.LevelDebug, module, msg, ctx...)
}

func Info(module string, msg string, ctx ...any) {
	Root().Write(slog.LevelInfo, module, msg, ctx...)
}

func Warn(module string, msg string, ctx ...any) {
	Root().Write(slog.LevelWarn, module, msg, ctx...)
}

func Error(module string, msg string, ctx ...any) {
	Root().Write(slog.LevelError, module, msg, ctx...)
}
