// Copyright 2021-2024 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the lexer, parser and code generator
// wraps exactly one of these, so callers may test with errors.Is.
var (
	ErrSyntax      = errors.New("syntax error")
	ErrLexedEntity = errors.New("lexed entity error")
	ErrAST         = errors.New("ast error")
)

// An Error describes a failure detected while assembling, along with the
// source position that triggered it when one is known.
type Error struct {
	Kind   error  // ErrSyntax, ErrLexedEntity or ErrAST
	Row    int    // 1-based line number, or 0 if unknown
	Column int    // 0-based column
	Msg    string // description of the problem
}

func (e *Error) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("%v in line %d, col %d: %s", e.Kind, e.Row, e.Column+1, e.Msg)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Msg)
}

// Unwrap returns the error kind.
func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, row, col int, format string, args ...any) *Error {
	return &Error{
		Kind:   kind,
		Row:    row,
		Column: col,
		Msg:    fmt.Sprintf(format, args...),
	}
}

func syntaxError(row, col int, format string, args ...any) error {
	return newError(ErrSyntax, row, col, format, args...)
}

func entityError(row, col int, format string, args ...any) error {
	return newError(ErrLexedEntity, row, col, format, args...)
}

func astError(tok *Token, format string, args ...any) error {
	if tok == nil {
		return newError(ErrAST, 0, 0, format, args...)
	}
	return newError(ErrAST, tok.Row, tok.Column, format, args...)
}
