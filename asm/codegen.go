// Copyright 2021-2024 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"strings"

	"github.com/beevik/parody/isa"
)

// A patch is a jump whose target offset is written once every label in the
// program has been seen.
type patch struct {
	pos    int    // output position of the jump's first byte
	kind   byte   // jump kind byte
	target string // label name
	tok    *Token // jump target token, for diagnostics
}

// A Generator converts a syntax tree into Parody machine code. A Generator
// may be reused; each call to Generate starts from an empty output buffer.
type Generator struct {
	// Strict causes Generate to fail when a jump names a label that is
	// never defined. Otherwise such jumps keep their zero placeholder
	// bytes.
	Strict bool

	labels     LabelTable
	instSet    *isa.InstructionSet
	code       []byte
	patches    []patch
	lines      []SourceLine
	unresolved []string
}

// NewGenerator creates a code generator that records label offsets in the
// provided table. If labels is nil, a new table is created.
func NewGenerator(labels LabelTable) *Generator {
	if labels == nil {
		labels = NewLabelTable()
	}
	return &Generator{
		labels:  labels,
		instSet: isa.GetInstructionSet(),
	}
}

// Generate produces machine code for a syntax tree. It returns nil code on
// error.
func Generate(root *Node, labels LabelTable) ([]byte, error) {
	return NewGenerator(labels).Generate(root)
}

// Labels returns the generator's label table.
func (g *Generator) Labels() LabelTable {
	return g.labels
}

// SourceLines returns the output offset and source row of each instruction
// emitted by the most recent call to Generate.
func (g *Generator) SourceLines() []SourceLine {
	return g.lines
}

// Unresolved returns the jump targets left unpatched by the most recent
// call to Generate.
func (g *Generator) Unresolved() []string {
	return g.unresolved
}

// Generate produces machine code for a syntax tree.
func (g *Generator) Generate(root *Node) ([]byte, error) {
	g.code = []byte{}
	g.patches = nil
	g.lines = nil
	g.unresolved = nil

	if root == nil || root.Kind != NodeRoot {
		return nil, astError(nil, "syntax tree must begin with a root node")
	}

	for _, n := range root.Children() {
		var err error
		switch n.Kind {
		case NodeLabel:
			err = g.defineLabel(n)
		case NodeInstructionLine:
			err = g.generateInstruction(n)
		default:
			err = astError(n.Token, "unexpected %s node at top level", n.Kind)
		}
		if err != nil {
			return nil, err
		}
	}

	if err := g.applyPatches(); err != nil {
		return nil, err
	}
	return g.code, nil
}

// A label refers to the last byte emitted before it, or to offset 0 when
// nothing has been emitted yet.
func (g *Generator) defineLabel(n *Node) error {
	if n.Token == nil {
		return astError(nil, "label node has no name")
	}
	offset := len(g.code) - 1
	if offset < 0 {
		offset = 0
	}
	g.labels.Define(n.Token.Value, offset)
	return nil
}

func (g *Generator) generateInstruction(n *Node) error {
	m := n.Child(0)
	if m == nil || m.Kind != NodeMnemonic || m.Token == nil {
		return astError(nil, "instruction line must begin with a mnemonic")
	}

	start := len(g.code)
	name := m.Token.Value
	args := n.Children()[1:]

	var err error
	switch {
	case name == "jmp" && len(args) == 1:
		err = g.generateJump(m, args[0])
	case name == "prib" && len(args) == 1:
		err = g.generatePrint(m, args[0])
	case isa.IsArithmetic(name) && len(args) == 2:
		err = g.generateArithmetic(m, args[0], args[1])
	default:
		err = astError(m.Token, "unknown instruction '%s' with %d operands", name, len(args))
	}
	if err != nil {
		return err
	}

	g.lines = append(g.lines, SourceLine{Address: start, Line: m.Token.Row})
	return nil
}

func (g *Generator) generateJump(m, target *Node) error {
	if target.Kind != NodeLabel || target.Token == nil {
		return astError(m.Token, "'jmp' operand must be a label")
	}
	g.patches = append(g.patches, patch{
		pos:    len(g.code),
		kind:   isa.JumpPlain,
		target: target.Token.Value,
		tok:    target.Token,
	})
	g.code = append(g.code, make([]byte, isa.JumpLength)...)
	return nil
}

func (g *Generator) generatePrint(m, op *Node) error {
	t, err := leafToken(m, op)
	if err != nil {
		return err
	}

	switch op.Kind {
	case NodeInteger:
		g.emitImmediate(g.instSet.PrintImmediate(), t.Number)
	case NodeRegister:
		inst := g.instSet.PrintRegister(isa.RegisterIndex(t.Value))
		if inst == nil {
			return astError(t, "invalid register '%s'", t.Value)
		}
		g.code = append(g.code, inst.Opcode)
	default:
		return astError(m.Token, "'prib' operand must be a register or number")
	}
	return nil
}

func (g *Generator) generateArithmetic(m, src, dst *Node) error {
	name := m.Token.Value
	if dst.Kind != NodeRegister {
		return astError(m.Token, "second operand of '%s' must be a register", name)
	}
	dt, err := leafToken(m, dst)
	if err != nil {
		return err
	}
	st, err := leafToken(m, src)
	if err != nil {
		return err
	}
	d := isa.RegisterIndex(dt.Value)

	switch src.Kind {
	case NodeInteger:
		inst := g.instSet.ImmediateToRegister(name, d)
		if inst == nil {
			return astError(dt, "invalid register '%s'", dt.Value)
		}
		g.emitImmediate(inst, st.Number)
	case NodeRegister:
		inst := g.instSet.RegisterToRegister(name, d, isa.RegisterIndex(st.Value))
		if inst == nil {
			return astError(st, "invalid register pair '%s, %s'", st.Value, dt.Value)
		}
		g.code = append(g.code, inst.Opcode)
	default:
		return astError(m.Token, "first operand of '%s' must be a register or number", name)
	}
	return nil
}

// Return the token of an operand leaf of instruction m. Operand nodes built
// without a token are rejected.
func leafToken(m, n *Node) (*Token, error) {
	if n.Token == nil {
		return nil, astError(m.Token, "%s operand of '%s' has no value", n.Kind, m.Token.Value)
	}
	return n.Token, nil
}

func (g *Generator) emitImmediate(inst *isa.Instruction, n int64) {
	g.code = append(g.code, inst.Opcode)
	g.code = append(g.code, isa.EncodeImmediate(n)...)
}

// Overwrite each jump placeholder with its resolved target.
func (g *Generator) applyPatches() error {
	var first *Token
	for _, p := range g.patches {
		offset, ok := g.labels.Resolve(p.target)
		if !ok {
			if first == nil {
				first = p.tok
			}
			g.unresolved = append(g.unresolved, p.target)
			continue
		}
		b := append([]byte{isa.JumpPrefix, p.kind}, isa.EncodeOffset(offset)...)
		copy(g.code[p.pos:p.pos+isa.JumpLength], b)
	}

	if g.Strict && len(g.unresolved) > 0 {
		return astError(first, "undefined label(s): %s", strings.Join(g.unresolved, ", "))
	}
	return nil
}
