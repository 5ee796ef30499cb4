// Copyright 2021-2024 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"testing"

	"github.com/nalgeon/be"
)

func generate(t *testing.T, src string, labels LabelTable) []byte {
	t.Helper()
	root, err := Parse(src)
	be.Err(t, err, nil)
	code, err := Generate(root, labels)
	be.Err(t, err, nil)
	return code
}

func TestGenerateBackwardJump(t *testing.T) {
	labels := NewLabelTable()
	code := generate(t, "start:\nmovb #10, r0\njmp start\n", labels)

	offset, ok := labels.Resolve("start")
	be.True(t, ok)
	be.Equal(t, offset, 0)
	be.Equal(t, len(code), 12)
	be.Equal(t, code[6:8], []byte{0x0f, 0x01})
	be.Equal(t, code[8:], []byte{0, 0, 0, 0})
}

func TestGenerateLabelOffsets(t *testing.T) {
	labels := NewLabelTable()
	generate(t, "a:\nprib r0\nb:\nprib #1\nc:\n", labels)

	for name, want := range map[string]int{"a": 0, "b": 0, "c": 6} {
		offset, ok := labels.Resolve(name)
		be.True(t, ok)
		be.Equal(t, offset, want)
	}
	be.Equal(t, labels.Names(), []string{"a", "b", "c"})
}

func TestGenerateUnresolved(t *testing.T) {
	root, err := Parse("prib r1\njmp missing\n")
	be.Err(t, err, nil)

	g := NewGenerator(nil)
	code, err := g.Generate(root)
	be.Err(t, err, nil)
	be.Equal(t, code, []byte{0x82, 0, 0, 0, 0, 0, 0})
	be.Equal(t, g.Unresolved(), []string{"missing"})

	g.Strict = true
	code, err = g.Generate(root)
	be.Err(t, err, ErrAST)
	be.True(t, code == nil)
}

func TestGenerateReuse(t *testing.T) {
	root, err := Parse("loop:\nprib r0\njmp loop\n")
	be.Err(t, err, nil)

	g := NewGenerator(nil)
	code1, err := g.Generate(root)
	be.Err(t, err, nil)
	code2, err := g.Generate(root)
	be.Err(t, err, nil)
	be.Equal(t, code1, code2)
	be.Equal(t, len(g.SourceLines()), 2)
}

func TestGenerateSourceLines(t *testing.T) {
	root, err := Parse("\nprib r0\nloop:\nmovb #1, r1\njmp loop\n")
	be.Err(t, err, nil)

	g := NewGenerator(nil)
	_, err = g.Generate(root)
	be.Err(t, err, nil)
	be.Equal(t, g.SourceLines(), []SourceLine{
		{Address: 0, Line: 2},
		{Address: 1, Line: 4},
		{Address: 7, Line: 5},
	})
}

func TestGenerateBadTree(t *testing.T) {
	mnemonic := &Token{Kind: TokenMnemonic, Value: "movb", Row: 1}
	label := &Token{Kind: TokenLabel, Value: "x", Row: 1}
	reg := &Token{Kind: TokenRegister, Value: "r0", Row: 1}
	num := &Token{Kind: TokenNumber, Value: "1", Number: 1, Row: 1}
	prib := &Token{Kind: TokenMnemonic, Value: "prib", Row: 1}

	line := func(children ...*Node) *Node {
		n := NewNode(NodeInstructionLine, nil)
		for _, c := range children {
			n.AddChild(c)
		}
		return n
	}
	tree := func(children ...*Node) *Node {
		n := NewNode(NodeRoot, nil)
		for _, c := range children {
			n.AddChild(c)
		}
		return n
	}

	trees := []*Node{
		nil,
		NewNode(NodeLabel, label),
		tree(NewNode(NodeMnemonic, mnemonic)),
		tree(line()),
		tree(line(NewNode(NodeRegister, reg))),
		tree(line(NewNode(NodeMnemonic, mnemonic), NewNode(NodeLabel, label), NewNode(NodeRegister, reg))),
		tree(line(NewNode(NodeMnemonic, mnemonic), NewNode(NodeRegister, reg), NewNode(NodeInteger, num))),
		tree(line(NewNode(NodeMnemonic, &Token{Kind: TokenMnemonic, Value: "jmp"}), NewNode(NodeRegister, reg))),
		tree(line(NewNode(NodeMnemonic, &Token{Kind: TokenMnemonic, Value: "prib"}), NewNode(NodeLabel, label))),
		tree(line(NewNode(NodeMnemonic, &Token{Kind: TokenMnemonic, Value: "halt"}))),

		// Operand leaves with no token.
		tree(line(NewNode(NodeMnemonic, prib), NewNode(NodeInteger, nil))),
		tree(line(NewNode(NodeMnemonic, prib), NewNode(NodeRegister, nil))),
		tree(line(NewNode(NodeMnemonic, mnemonic), NewNode(NodeRegister, reg), NewNode(NodeRegister, nil))),
		tree(line(NewNode(NodeMnemonic, mnemonic), NewNode(NodeInteger, nil), NewNode(NodeRegister, reg))),
	}

	for _, root := range trees {
		code, err := Generate(root, nil)
		be.Err(t, err, ErrAST)
		be.True(t, code == nil)
	}
}

func TestGenerateInjectedLabels(t *testing.T) {
	labels := NewLabelTable()
	labels.Define("external", 0x1234)
	code := generate(t, "jmp external\n", labels)
	be.Equal(t, code, []byte{0x0f, 0x01, 0x00, 0x00, 0x12, 0x34})

	g := NewGenerator(labels)
	be.True(t, g.Labels() == LabelTable(labels))
	be.True(t, NewGenerator(nil).Labels() != nil)
}
