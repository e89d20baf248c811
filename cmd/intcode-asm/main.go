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
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lassandro/gointcode/pkg/assembler"
	"github.com/lassandro/gointcode/pkg/encoding"
	"github.com/lassandro/gointcode/pkg/log"
)

var debugvar bool
var outvar string
var logLevel string

func init() {
	stdlog.SetFlags(0)
	stdlog.SetOutput(os.Stderr)
}

// underline renders the source line an error points at with a caret under
// the offending token.
func underline(input io.ReadSeeker, cursor assembler.Cursor) (string, error) {
	if _, err := input.Seek(cursor.LineByte, io.SeekStart); err != nil {
		return "", err
	}

	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}

	line = strings.TrimSuffix(line, "\n")
	size := int(cursor.Size)

	if size < 1 {
		size = 1
	}

	underlinefmt := fmt.Sprintf(
		"%% %ds%s",
		int(cursor.Byte-cursor.LineByte)+1,
		strings.Repeat("~", size-1),
	)

	return fmt.Sprintf(
		"%s\n\033[31m%s\033[0m", line, fmt.Sprintf(underlinefmt, "^"),
	), nil
}

func assemble(cmd *cobra.Command, args []string) error {
	var infile string
	var input io.ReadSeeker

	if stat, _ := os.Stdin.Stat(); len(args) == 0 && stat.Mode()&os.ModeCharDevice == 0 {
		input = os.Stdin
		stdlog.SetPrefix("\033[1m<stdin>:\033[0m")

		if outvar == "" {
			outvar = "out.txt"
		}
	} else {
		if len(args) != 1 {
			return errors.New(cmd.UseLine())
		}

		file, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer file.Close()

		filename := filepath.Base(file.Name())

		if stat, err := file.Stat(); err != nil {
			return err
		} else if stat.IsDir() {
			return fmt.Errorf("%s is not a valid Intcode assembly file", filename)
		}

		input = file
		infile = file.Name()
		stdlog.SetPrefix(fmt.Sprintf("\033[1m%s:\033[0m", filename))

		if outvar == "" {
			outvar = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".txt"
		}
	}

	var symtable *assembler.SymTable

	if debugvar {
		symtable = assembler.NewSymTable()

		if infile != "" {
			var err error
			if symtable.Source, err = filepath.Abs(infile); err != nil {
				stdlog.Println(err)
				symtable.Source = ""
			}
		}
	}

	result, errs := assembler.Assemble(input, symtable)

	if len(errs) > 0 {
		for _, err := range errs {
			tokenErr, ok := err.(assembler.TokenError)

			if !ok || input == os.Stdin {
				stdlog.Println(err)
				continue
			}

			text, seekErr := underline(input, tokenErr.GetPosition())

			if seekErr != nil {
				stdlog.Println(err)
				continue
			}

			stdlog.Printf("%s\n%s", err, text)
		}

		return fmt.Errorf("%d errors", len(errs))
	}

	log.Debug(log.CLIModule, "assembled", "words", len(result), "out", outvar)

	if err := os.WriteFile(outvar, []byte(encoding.FormatProgram(result)+"\n"), 0666); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}

	if debugvar {
		filename := strings.TrimSuffix(outvar, filepath.Ext(outvar)) + ".icdb"

		file, err := os.Create(filename)
		if err != nil {
			return fmt.Errorf("creating symbol table: %w", err)
		}
		defer file.Close()

		if err := gob.NewEncoder(file).Encode(symtable); err != nil {
			return fmt.Errorf("writing symbol table: %w", err)
		}
	}

	return nil
}

func main() {
	cmd := &cobra.Command{
		Use:           "intcode-asm [--debug] [--out file] [file]",
		Short:         "Assembles Intcode assembly into program text",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return log.InitLogger(os.Stderr, logLevel)
		},
		RunE: assemble,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.Flags().BoolVar(
		&debugvar, "debug", false,
		"Specifies whether to generate debugging information as a symbol "+
			"table. The table will use the output filename with extension "+
			"'.icdb'",
	)
	cmd.Flags().StringVar(
		&outvar, "out", "",
		"Specifies a precise name for the output file, "+
			"overriding the default means of determining it",
	)
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "Log level")

	if err := cmd.Execute(); err != nil {
		stdlog.Println(err)
		os.Exit(1)
	}
}
