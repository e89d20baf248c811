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

package encoding

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lassandro/gointcode/pkg/machine"
)

var ErrEmptyProgram = errors.New("empty program")

// MalformedWordError reports a program word that is not a decimal integer.
type MalformedWordError struct {
	Index int
	Word  string
	Err   error
}

func (err *MalformedWordError) Error() string {
	return fmt.Sprintf("word %d: invalid integer %q", err.Index, err.Word)
}

func (err *MalformedWordError) Unwrap() error {
	return err.Err
}

func (err *MalformedWordError) Is(target error) bool {
	return target == machine.ErrMalformedProgram
}

// ParseProgram parses comma separated decimal words. Surrounding whitespace is
// ignored.
func ParseProgram(text string) ([]int64, error) {
	text = strings.TrimSpace(text)

	if text == "" {
		return nil, ErrEmptyProgram
	}

	words := strings.Split(text, ",")
	result := make([]int64, len(words))

	for i, word := range words {
		value, err := strconv.ParseInt(strings.TrimSpace(word), 10, 64)

		if err != nil {
			return nil, &MalformedWordError{i, word, err}
		}

		result[i] = value
	}

	return result, nil
}

func ReadProgram(reader io.Reader) ([]int64, error) {
	data, err := io.ReadAll(reader)

	if err != nil {
		return nil, err
	}

	return ParseProgram(string(data))
}

func LoadProgramFile(path string) ([]int64, error) {
	file, err := os.Open(path)

	if err != nil {
		return nil, err
	}

	defer file.Close()

	program, err := ReadProgram(file)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return program, nil
}

// FormatProgram renders words in the format read by ParseProgram.
func FormatProgram(program []int64) string {
	var builder strings.Builder

	for i, word := range program {
		if i > 0 {
			builder.WriteByte(',')
		}
		builder.WriteString(strconv.FormatInt(word, 10))
	}

	return builder.String()
}

// Decodes an integer string in the formats: #123, 123, -123, 0x7B, #0x7B
func DecodeInt(s string) (int64, error) {
	if i := strings.Index(s, "#"); i == 0 {
		s = s[1:]
	}

	base := 10
	digits := strings.TrimPrefix(s, "-")

	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		base = 0
	}

	return strconv.ParseInt(s, base, 64)
}

func EncodeASCII(s string) []int64 {
	result := make([]int64, len(s))

	for i := 0; i < len(s); i++ {
		result[i] = int64(s[i])
	}

	return result
}

// DecodeASCII renders words as text. Words outside the ASCII range are
// written as their decimal value in brackets.
func DecodeASCII(words []int64) string {
	var builder strings.Builder

	for _, word := range words {
		if word >= 0 && word <= 127 {
			builder.WriteByte(byte(word))
		} else {
			fmt.Fprintf(&builder, "[%d]", word)
		}
	}

	return builder.String()
}
