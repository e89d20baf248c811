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
	"bufio"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/lassandro/gointcode/pkg/assembler"
	"github.com/lassandro/gointcode/pkg/encoding"
	"github.com/lassandro/gointcode/pkg/machine"
)

// symbolPath maps a program file to its symbol table, foo.txt -> foo.icdb.
func symbolPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".icdb"
}

func loadSymbols(path string) (*assembler.SymTable, error) {
	file, err := os.Open(symbolPath(path))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var symtable assembler.SymTable

	if err := gob.NewDecoder(file).Decode(&symtable); err != nil {
		return nil, fmt.Errorf("%s: %w", file.Name(), err)
	}

	return &symtable, nil
}

// parsePatch parses addr=value.
func parsePatch(s string) (int64, int64, error) {
	addrString, valueString, ok := strings.Cut(s, "=")
	if !ok {
		return 0, 0, fmt.Errorf("invalid patch '%s', want addr=value", s)
	}

	addr, err := encoding.DecodeInt(strings.TrimSpace(addrString))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid patch address '%s'", addrString)
	}

	value, err := encoding.DecodeInt(strings.TrimSpace(valueString))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid patch value '%s'", valueString)
	}

	return addr, value, nil
}

func applyPatches(mc *machine.Machine, patches []string) error {
	for _, patch := range patches {
		addr, value, err := parsePatch(patch)
		if err != nil {
			return err
		}

		if err := mc.WriteMemory(addr, value); err != nil {
			return err
		}
	}
	return nil
}

type lineReader interface {
	Readline() (string, error)
	Close() error
}

type scanReader struct {
	scanner *bufio.Scanner
}

func (r *scanReader) Readline() (string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

func (r *scanReader) Close() error {
	return nil
}

// newLineReader prompts through readline on a terminal and reads plain
// lines otherwise.
func newLineReader(prompt string, history string) (lineReader, error) {
	if !isTerminal(os.Stdin) {
		return &scanReader{bufio.NewScanner(os.Stdin)}, nil
	}

	return readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     history,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
}

func historyPath(name string) string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, name)
}
