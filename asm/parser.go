// Copyright 2021-2024 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import "github.com/beevik/parody/isa"

// The parser is a state object used while building the syntax tree for a
// single token sequence.
type parser struct {
	tokens []Token
	pos    int
	root   *Node
}

// Parse lexes and parses assembly source, returning the root of its syntax
// tree. Lexer errors are returned unchanged.
func Parse(src string) (*Node, error) {
	tokens, err := Lex(src)
	if err != nil {
		return nil, err
	}
	return ParseTokens(tokens)
}

// ParseTokens builds a syntax tree from a token sequence produced by Lex.
func ParseTokens(tokens []Token) (*Node, error) {
	p := &parser{
		tokens: tokens,
		root:   NewNode(NodeRoot, nil),
	}
	if err := p.run(); err != nil {
		return nil, err
	}
	return p.root, nil
}

func (p *parser) run() error {
	for ; p.pos < len(p.tokens); p.pos++ {
		t := &p.tokens[p.pos]
		switch t.Kind {
		case TokenLabel:
			p.root.AddChild(NewNode(NodeLabel, t))
		case TokenMnemonic:
			if err := p.parseInstructionLine(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Collect the tokens up to the end of the line and turn them into an
// instruction-line node.
func (p *parser) parseInstructionLine() error {
	start := p.pos
	for p.pos < len(p.tokens) && p.tokens[p.pos].Kind != TokenNewline {
		p.pos++
	}

	line := p.tokens[start:p.pos]
	if len(line) == 0 {
		return nil
	}

	if line[0].Kind != TokenMnemonic {
		return syntaxError(line[0].Row, line[0].Column, "instruction line must be prefixed by a valid mnemonic")
	}

	if err := validateInstruction(line); err != nil {
		return err
	}

	node := NewNode(NodeInstructionLine, nil)
	for i := range line {
		t := &line[i]
		switch t.Kind {
		case TokenMnemonic:
			node.AddChild(NewNode(NodeMnemonic, t))
		case TokenRegister:
			node.AddChild(NewNode(NodeRegister, t))
		case TokenNumber:
			node.AddChild(NewNode(NodeInteger, t))
		case TokenLabel:
			node.AddChild(NewNode(NodeLabel, t))
		}
	}
	p.root.AddChild(node)
	return nil
}

// Check an instruction line's shape by token count and kind. Operand 1 of
// the two-operand mnemonics is not kind-checked here; only the destination
// must be a register.
func validateInstruction(line []Token) error {
	m := &line[0]
	switch {
	case m.Value == "prib" && len(line) == 2:
		op := line[1].Kind
		if op != TokenNumber && op != TokenRegister {
			return syntaxError(m.Row, m.Column, "'prib' instruction must be followed by register name or number (line: %d)", m.Row)
		}

	case m.Value == "jmp" && len(line) == 2:
		if line[1].Kind != TokenLabel || !line[1].Ref {
			return syntaxError(m.Row, m.Column, "'jmp' instruction must be followed by label name (line: %d)", m.Row)
		}

	case isa.IsArithmetic(m.Value) && len(line) == 4:
		if line[3].Kind == TokenNumber {
			return syntaxError(m.Row, m.Column, "number cannot be placed in second operand when mnemonic is '%s' (line: %d)", m.Value, m.Row)
		}
		if line[3].Kind != TokenRegister {
			return syntaxError(m.Row, m.Column, "first operand must be register or numeric constant, and second operand must be register (line: %d)", m.Row)
		}

	default:
		return syntaxError(m.Row, m.Column, "unknown instruction (line: %d)", m.Row)
	}
	return nil
}
