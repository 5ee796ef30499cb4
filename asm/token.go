// Copyright 2021-2024 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import "fmt"

// A TokenKind identifies the lexical class of a token.
type TokenKind byte

// Token kinds produced by the lexer.
const (
	TokenComma TokenKind = iota
	TokenNumber
	TokenRegister
	TokenMnemonic
	TokenLabel
	TokenNewline
)

var tokenKindName = []string{
	"comma",
	"number",
	"register",
	"mnemonic",
	"label",
	"newline",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindName) {
		return tokenKindName[k]
	}
	return fmt.Sprintf("token(%d)", k)
}

// A Token is a single lexical unit of assembly source. Tokens are immutable
// once produced by the lexer.
type Token struct {
	Kind   TokenKind
	Value  string // mnemonic, register or label name; literal text of a number
	Number int64  // parsed value of a number token
	Ref    bool   // label token names a jump target instead of defining one
	Row    int    // 1-based source line
	Column int    // 0-based source column
}

func (t Token) String() string {
	switch t.Kind {
	case TokenComma:
		return ","
	case TokenNewline:
		return "\\n"
	case TokenNumber:
		return fmt.Sprintf("#%d", t.Number)
	case TokenLabel:
		if t.Ref {
			return t.Value
		}
		return t.Value + ":"
	default:
		return t.Value
	}
}
