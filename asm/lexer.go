// Copyright 2021-2024 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"strconv"
	"strings"

	"github.com/beevik/parody/isa"
)

// The lexer is a state object used while scanning one source buffer. The
// buffer accumulates characters until its contents are recognized as a
// token.
type lexer struct {
	input  string  // source text
	pos    int     // index of the next unread character
	row    int     // 1-based line of the next unread character
	col    int     // 0-based column of the next unread character
	last   int     // column preceding the most recent newline
	buf    []byte  // characters accumulated since the last token
	bufRow int     // line of the first buffered character
	bufCol int     // column of the first buffered character
	tokens []Token // tokens produced so far
	strict bool    // report unrecognized text left at end of input
}

// Lex converts assembly source text into its sequence of tokens.
// Whitespace and comments produce no tokens.
func Lex(src string) ([]Token, error) {
	return lex(src, false)
}

// LexStrict is like Lex, but it fails when the source ends with text that
// never formed a token, such as an incomplete mnemonic or a stray character
// and everything buffered after it.
func LexStrict(src string) ([]Token, error) {
	return lex(src, true)
}

func lex(src string, strict bool) ([]Token, error) {
	l := &lexer{input: src, row: 1, strict: strict}
	if err := l.run(); err != nil {
		return nil, err
	}
	return l.tokens, nil
}

func (l *lexer) run() error {
	for !l.eof() {
		if len(l.buf) == 0 {
			l.bufRow, l.bufCol = l.row, l.col
		}
		l.buf = append(l.buf, l.next())

		err := l.recognize()
		if err != nil {
			return err
		}
	}

	// A complete mnemonic or register is always emitted as soon as it is
	// buffered, so anything left over is an incomplete word.
	if l.strict && len(l.buf) > 0 {
		text, _, _ := strings.Cut(string(l.buf), "\n")
		return syntaxError(l.bufRow, l.bufCol, "unrecognized text '%s'", strings.TrimSpace(text))
	}
	l.reset()
	return nil
}

// Test the buffer against each recognizer, most specific first. If none
// match, the buffer is left alone so the next character can extend it.
func (l *lexer) recognize() error {
	s := string(l.buf)

	switch {
	case len(s) == 1 && whitespace(s[0]):
		l.reset()

	case s == "\n":
		l.emit(Token{Kind: TokenNewline})

	case len(s) == 1 && comment(s[0]):
		l.skipComment()

	case s == ",":
		l.emit(Token{Kind: TokenComma, Value: ","})

	case s == "#":
		return l.scanNumber()

	case labelStart(s):
		return l.scanLabel()

	case isa.IsMnemonic(s):
		l.emit(Token{Kind: TokenMnemonic, Value: s})

	case isa.RegisterIndex(s) >= 0:
		l.emit(Token{Kind: TokenRegister, Value: s})
	}
	return nil
}

// Discard the rest of a comment line. The newline ending the comment still
// produces a token.
func (l *lexer) skipComment() {
	for !l.eof() && l.peek() != '\n' {
		l.next()
	}
	l.reset()
	if !l.eof() {
		l.bufRow, l.bufCol = l.row, l.col
		l.next()
		l.emit(Token{Kind: TokenNewline})
	}
}

// Scan the number following a '#' prefix: an optional '-' and one or more
// decimal digits.
func (l *lexer) scanNumber() error {
	start := l.pos
	if !l.eof() && l.peek() == '-' {
		l.next()
	}
	for !l.eof() && decimal(l.peek()) {
		l.next()
	}

	lit := l.input[start:l.pos]
	switch {
	case lit == "":
		return syntaxError(l.bufRow, l.bufCol, "number prefix '#' must be followed by a sign or digit")
	case lit == "-":
		return syntaxError(l.bufRow, l.bufCol, "number sign must be followed by at least one digit")
	}

	n, err := strconv.ParseInt(lit, 10, 64)
	if err != nil {
		return syntaxError(l.bufRow, l.bufCol, "number '%s' out of range", lit)
	}

	l.emit(Token{Kind: TokenNumber, Value: lit, Number: n})
	return nil
}

// Scan a label, which runs to the end of the line or to a comment. A label
// following a jmp mnemonic is a jump target; anywhere else it defines a
// label and must end with a colon.
func (l *lexer) scanLabel() error {
	// A word cut short by the end of the line leaves the newline for the
	// newline recognizer.
	if n := len(l.buf); l.buf[n-1] == '\n' {
		l.buf = l.buf[:n-1]
		l.unread()
	}

	for !l.eof() && l.peek() != '\n' && !comment(l.peek()) {
		l.buf = append(l.buf, l.next())
	}

	name := strings.TrimRight(string(l.buf), " \t\r")
	if i := strings.IndexAny(name, " \t"); i >= 0 {
		return entityError(l.bufRow, l.bufCol+i, "label name '%s' must not contain whitespace", name)
	}

	ref := l.followsJump()
	switch {
	case ref && strings.HasSuffix(name, ":"):
		return entityError(l.bufRow, l.bufCol, "jump target '%s' must not end with colon", name)
	case ref:
		l.emit(Token{Kind: TokenLabel, Value: name, Ref: true})
	case !strings.HasSuffix(name, ":"):
		return entityError(l.bufRow, l.bufCol, "label name '%s' must end with colon", name)
	default:
		l.emit(Token{Kind: TokenLabel, Value: name[:len(name)-1]})
	}
	return nil
}

// Return true if the most recent token is a jmp mnemonic on the current
// line.
func (l *lexer) followsJump() bool {
	if len(l.tokens) == 0 {
		return false
	}
	t := l.tokens[len(l.tokens)-1]
	return t.Kind == TokenMnemonic && t.Value == "jmp" && t.Row == l.bufRow
}

func (l *lexer) emit(t Token) {
	t.Row, t.Column = l.bufRow, l.bufCol
	l.tokens = append(l.tokens, t)
	l.reset()
}

func (l *lexer) reset() {
	l.buf = l.buf[:0]
}

func (l *lexer) eof() bool {
	return l.pos >= len(l.input)
}

func (l *lexer) peek() byte {
	return l.input[l.pos]
}

func (l *lexer) next() byte {
	c := l.input[l.pos]
	l.pos++
	if c == '\n' {
		l.row, l.col, l.last = l.row+1, 0, l.col
	} else {
		l.col++
	}
	return c
}

// Step back over the character just returned by next. Only a single
// character of lookbehind is supported.
func (l *lexer) unread() {
	l.pos--
	if l.input[l.pos] == '\n' {
		l.row, l.col = l.row-1, l.last
	} else {
		l.col--
	}
}

// Return true if s begins a label: it starts with a label character and
// can no longer grow into a mnemonic or register name.
func labelStart(s string) bool {
	if !labelStartChar(s[0]) {
		return false
	}
	for _, m := range isa.Mnemonics {
		if strings.HasPrefix(m, s) {
			return false
		}
	}
	for _, r := range isa.Registers {
		if strings.HasPrefix(r, s) {
			return false
		}
	}
	return true
}

//
// character helper functions
//

func whitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r'
}

func alpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func decimal(c byte) bool {
	return c >= '0' && c <= '9'
}

func comment(c byte) bool {
	return c == ';'
}

func labelStartChar(c byte) bool {
	return alpha(c) || c == '_' || c == '.'
}
