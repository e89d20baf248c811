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

package assembler

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/lassandro/gointcode/pkg/encoding"
	"github.com/lassandro/gointcode/pkg/machine"
)

func parseDirective(ident string) DirectiveType {
	return directives[strings.ToUpper(ident)]
}

func parseInstruction(ident string) (machine.Opcode, bool) {
	op, ok := mnemonics[strings.ToUpper(ident)]
	return op, ok
}

func isIdentRune(char rune) bool {
	return char == '_' || unicode.IsLetter(char) || unicode.IsDigit(char)
}

// tokenize splits one source line into tokens. cursor carries the line
// number and the byte offset of the start of the line.
func tokenize(line string, cursor Cursor) (tokens []Token, errs []error) {
	var builder strings.Builder
	var tokenStart int
	var inString bool
	var escaped bool

	position := func(column int, size int) Cursor {
		return Cursor{
			Line:     cursor.Line,
			Column:   column + 1,
			Byte:     cursor.LineByte + int64(column),
			Size:     int64(size),
			LineByte: cursor.LineByte,
		}
	}

	flush := func(label bool) {
		if builder.Len() == 0 {
			return
		}

		value := builder.String()
		builder.Reset()

		token := Token{
			Position: position(tokenStart, len(value)),
			Value:    value,
			Mode:     machine.MODE_POSITION,
		}

		switch {
		case label:
			token.Type = TOKEN_LABEL
			if unicode.IsDigit(rune(value[0])) || strings.ContainsAny(value, "#@.-") {
				errs = append(errs, &UnexpectedCharacterError{located{token.Position}, ':'})
				return
			}

		case value[0] == '.':
			token.Type = TOKEN_DIRECTIVE

		case value[0] == '"':
			token.Type = TOKEN_STRING

		default:
			switch value[0] {
			case PREFIX_IMMEDIATE:
				token.Mode = machine.MODE_IMMEDIATE
				value = value[1:]
			case PREFIX_RELATIVE:
				token.Mode = machine.MODE_RELATIVE
				value = value[1:]
			}

			if value == "" {
				errs = append(
					errs,
					&UnexpectedCharacterError{located{token.Position}, rune(token.Value[0])},
				)
				return
			}

			if value[0] == '-' || unicode.IsDigit(rune(value[0])) {
				token.Type = TOKEN_LITERAL
			} else {
				token.Type = TOKEN_IDENT
			}

			token.Value = value
		}

		tokens = append(tokens, token)
	}

	start := func(column int) {
		if builder.Len() == 0 {
			tokenStart = column
		}
	}

scan:
	for column, char := range line {
		if inString {
			builder.WriteRune(char)

			if char == '"' && !escaped {
				inString = false
				flush(false)
			}

			escaped = char == '\\' && !escaped
			continue
		}

		switch {
		// Whitespace and operand separators
		case unicode.IsSpace(char), char == ',':
			flush(false)

		// Comments
		case char == ';':
			flush(false)
			break scan

		// String literal
		case char == '"':
			if builder.Len() > 0 {
				errs = append(errs, &UnexpectedCharacterError{located{position(column, 1)}, char})
				continue
			}

			start(column)
			builder.WriteRune(char)
			inString = true
			escaped = false

		// Label declaration
		case char == ':':
			if builder.Len() == 0 {
				errs = append(errs, &UnexpectedCharacterError{located{position(column, 1)}, char})
				continue
			}

			flush(true)

		// Mode prefixes, directives and signs only open a token, although a
		// sign may follow a mode prefix.
		case char == PREFIX_IMMEDIATE, char == PREFIX_RELATIVE, char == '.', char == '-':
			prefix := builder.String()

			if builder.Len() > 0 && !(char == '-' && (prefix == "#" || prefix == "@")) {
				errs = append(errs, &UnexpectedCharacterError{located{position(column, 1)}, char})
				continue
			}

			start(column)
			builder.WriteRune(char)

		case isIdentRune(char):
			start(column)
			builder.WriteRune(char)

		default:
			errs = append(errs, &UnexpectedCharacterError{located{position(column, 1)}, char})
		}
	}

	if inString {
		errs = append(errs, &InvalidStringError{located{position(tokenStart, builder.Len())}})
	} else {
		flush(false)
	}

	return tokens, errs
}

// Assemble translates Intcode assembly into program words. When symtable is
// non-nil it is filled with label names and the source offsets of each
// assembled line.
func Assemble(input io.Reader, symtable *SymTable) (result []int64, errs []error) {
	type LabelRef struct {
		Label    string
		Addr     int64
		Position Cursor
	}

	var labels = make(map[string]int64)
	var labelRefs []LabelRef
	var cursor Cursor
	var scanner = bufio.NewScanner(input)

	result = make([]int64, 0, 64)
	errs = make([]error, 0)

	emit := func(value int64) {
		result = append(result, value)
	}

	emitOperand := func(operand Token) {
		switch operand.Type {
		case TOKEN_LITERAL:
			value, err := encoding.DecodeInt(operand.Value)

			if err != nil {
				errs = append(errs, &InvalidLiteralError{located{operand.Position}})
			}

			emit(value)

		case TOKEN_IDENT:
			if addr, exists := labels[operand.Value]; exists {
				emit(addr)
			} else {
				labelRefs = append(labelRefs, LabelRef{
					operand.Value, int64(len(result)), operand.Position,
				})
				emit(0)
			}

		default:
			errs = append(
				errs,
				&InvalidOperandError{
					located{operand.Position},
					[]TokenType{TOKEN_LITERAL, TOKEN_IDENT},
					operand.Type,
				},
			)
			emit(0)
		}
	}

lines:
	for scanner.Scan() {
		line := scanner.Text()

		cursor.Line++
		lineByte := cursor.LineByte

		tokens, lineErrs := tokenize(line, cursor)
		cursor.LineByte += int64(len(line) + 1)

		// Skip assembling lines that did not parse
		if len(lineErrs) > 0 {
			errs = append(errs, lineErrs...)
			continue
		}

		if len(tokens) > 0 && tokens[0].Type == TOKEN_LABEL {
			label := tokens[0]

			if _, exists := labels[label.Value]; exists {
				errs = append(
					errs, &RedeclaredLabelError{located{label.Position}, label.Value},
				)
			} else {
				labels[label.Value] = int64(len(result))

				if symtable != nil {
					symtable.Labels[int64(len(result))] = label.Value
				}
			}

			tokens = tokens[1:]
		}

		if len(tokens) == 0 {
			continue
		}

		keyword := tokens[0]
		operands := tokens[1:]
		addr := int64(len(result))

		switch keyword.Type {
		case TOKEN_DIRECTIVE:
			switch parseDirective(keyword.Value) {
			// .END
			case DIRECTIVE_END:
				if count := len(operands); count != 0 {
					errs = append(
						errs, &InvalidNumArgumentsError{located{keyword.Position}, 0, count},
					)
				}

				break lines

			// .DATA #, label, ...
			case DIRECTIVE_DATA:
				if len(operands) == 0 {
					errs = append(
						errs, &InvalidNumArgumentsError{located{keyword.Position}, 1, 0},
					)
					break
				}

				for _, operand := range operands {
					emitOperand(operand)
				}

			// .BLKW #
			case DIRECTIVE_BLKW:
				if count := len(operands); count != 1 {
					errs = append(
						errs, &InvalidNumArgumentsError{located{keyword.Position}, 1, count},
					)
					break
				}

				if operands[0].Type != TOKEN_LITERAL {
					errs = append(
						errs,
						&InvalidOperandError{
							located{operands[0].Position},
							[]TokenType{TOKEN_LITERAL},
							operands[0].Type,
						},
					)
					break
				}

				count, err := encoding.DecodeInt(operands[0].Value)

				if err != nil || count < 0 {
					errs = append(errs, &InvalidLiteralError{located{operands[0].Position}})
					break
				}

				for i := int64(0); i < count; i++ {
					emit(0)
				}

			// .STRING "..."
			case DIRECTIVE_STRING:
				if count := len(operands); count != 1 {
					errs = append(
						errs, &InvalidNumArgumentsError{located{keyword.Position}, 1, count},
					)
					break
				}

				if operands[0].Type != TOKEN_STRING {
					errs = append(
						errs,
						&InvalidOperandError{
							located{operands[0].Position},
							[]TokenType{TOKEN_STRING},
							operands[0].Type,
						},
					)
					break
				}

				s, err := strconv.Unquote(operands[0].Value)

				if err != nil {
					errs = append(errs, &InvalidStringError{located{operands[0].Position}})
					break
				}

				for i := 0; i < len(s); i++ {
					emit(int64(s[i]))
				}

			default:
				errs = append(
					errs,
					&UnknownIdentifierError{located{keyword.Position}, keyword.Value},
				)
			}

		case TOKEN_IDENT:
			op, ok := parseInstruction(keyword.Value)

			if !ok || keyword.Mode != machine.MODE_POSITION {
				errs = append(
					errs,
					&UnknownIdentifierError{located{keyword.Position}, keyword.Value},
				)
				break
			}

			if count := len(operands); count != op.Operands() {
				errs = append(
					errs,
					&InvalidNumArgumentsError{located{keyword.Position}, op.Operands(), count},
				)
				break
			}

			word := int64(op)
			scale := int64(100)

			for _, operand := range operands {
				word += int64(operand.Mode) * scale
				scale *= 10
			}

			emit(word)

			writeIndex, writes := op.WriteOperand()

			for i, operand := range operands {
				if writes && i == writeIndex && operand.Mode == machine.MODE_IMMEDIATE {
					errs = append(errs, &ImmediateWriteError{located{operand.Position}})
				}

				emitOperand(operand)
			}

		default:
			errs = append(
				errs,
				&InvalidOperandError{
					located{keyword.Position},
					[]TokenType{TOKEN_IDENT, TOKEN_DIRECTIVE},
					keyword.Type,
				},
			)
		}

		if symtable != nil && int64(len(result)) > addr {
			symtable.Symbols[addr] = lineByte
		}
	}

	if err := scanner.Err(); err != nil {
		errs = append(errs, err)
	}

	for _, ref := range labelRefs {
		if addr, exists := labels[ref.Label]; exists {
			result[ref.Addr] = addr
		} else {
			errs = append(errs, &UnknownLabelError{located{ref.Position}, ref.Label})
		}
	}

	return result, errs
}
