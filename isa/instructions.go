// Copyright 2021-2024 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package isa describes the instruction set of the Parody virtual machine:
// a 4-register, byte-oriented machine whose programs are flat sequences of
// opcode bytes.
package isa

import "strings"

// A Mode describes how an instruction's operands are encoded.
type Mode byte

// Operand encoding modes.
const (
	REG Mode = iota // register source, register destination
	IMM             // 5-byte immediate source, register destination
	PRR             // single register operand
	PRI             // single 5-byte immediate operand
	JMP             // jump prefix, jump kind and 4-byte absolute offset
)

// Instruction lengths, in bytes, including the opcode.
const (
	ImmediateSize = 5
	OffsetSize    = 4

	RegisterLength  = 1
	ImmediateLength = 1 + ImmediateSize
	JumpLength      = 2 + OffsetSize
)

// Fixed opcode bytes outside the arithmetic families.
const (
	PribImm8   byte = 0x80 // prib #imm
	PribR0     byte = 0x81 // prib r0..r3 occupy 0x81-0x84
	JumpPrefix byte = 0x0f // first byte of every jump
	JumpPlain  byte = 0x01 // unconditional jump kind
)

// Sign tags used by the immediate encoding.
const (
	SignPositive byte = 0xfe
	SignNegative byte = 0xff
)

// Registers holds the register names in index order.
var Registers = []string{"r0", "r1", "r2", "r3"}

// A family is one of the arithmetic mnemonics that share the same
// register-to-register and immediate-to-register layout.
type family struct {
	name    string
	regBase byte // first opcode of the 16-entry register block
	immBase byte // first opcode of the 4-entry immediate block
}

var families = []family{
	{"movb", 0x10, 0x60},
	{"addb", 0x20, 0x64},
	{"subb", 0x30, 0x68},
	{"mulb", 0x40, 0x6c},
	{"divb", 0x50, 0x70},
}

// Mnemonics holds every recognized mnemonic.
var Mnemonics = []string{"movb", "addb", "subb", "mulb", "divb", "prib", "jmp"}

// An Instruction describes one opcode of the Parody instruction set.
type Instruction struct {
	Name   string // lower-case mnemonic
	Mode   Mode   // operand encoding
	Opcode byte   // opcode byte value
	Length byte   // combined size of opcode and operands, in bytes
	Dst    int    // destination register index, or -1
	Src    int    // source register index, or -1
}

// An InstructionSet holds the Parody instructions indexed by opcode and by
// mnemonic.
type InstructionSet struct {
	instructions [256]*Instruction
	variants     map[string][]*Instruction
	reg          map[string]*[4][4]*Instruction // name -> [dst][src]
	imm          map[string]*[4]*Instruction    // name -> [dst]
}

// Lookup retrieves the instruction with the requested opcode. It returns nil
// if the opcode is unassigned.
func (s *InstructionSet) Lookup(opcode byte) *Instruction {
	return s.instructions[opcode]
}

// GetInstructions returns all instruction variants sharing a mnemonic.
func (s *InstructionSet) GetInstructions(name string) []*Instruction {
	return s.variants[strings.ToLower(name)]
}

// RegisterToRegister returns the single-byte instruction that applies
// mnemonic 'name' from register src to register dst.
func (s *InstructionSet) RegisterToRegister(name string, dst, src int) *Instruction {
	t, ok := s.reg[name]
	if !ok || !validRegister(dst) || !validRegister(src) {
		return nil
	}
	return t[dst][src]
}

// ImmediateToRegister returns the instruction that applies mnemonic 'name'
// from an immediate to register dst.
func (s *InstructionSet) ImmediateToRegister(name string, dst int) *Instruction {
	t, ok := s.imm[name]
	if !ok || !validRegister(dst) {
		return nil
	}
	return t[dst]
}

// PrintRegister returns the prib instruction for register r.
func (s *InstructionSet) PrintRegister(r int) *Instruction {
	if !validRegister(r) {
		return nil
	}
	return s.instructions[PribR0+byte(r)]
}

// PrintImmediate returns the prib instruction taking an immediate.
func (s *InstructionSet) PrintImmediate() *Instruction {
	return s.instructions[PribImm8]
}

// Jump returns the plain jump instruction.
func (s *InstructionSet) Jump() *Instruction {
	return s.instructions[JumpPrefix]
}

func (s *InstructionSet) add(inst *Instruction) {
	if s.instructions[inst.Opcode] != nil {
		panic("duplicate opcode")
	}
	s.instructions[inst.Opcode] = inst
	s.variants[inst.Name] = append(s.variants[inst.Name], inst)
}

func newInstructionSet() *InstructionSet {
	set := &InstructionSet{
		variants: make(map[string][]*Instruction),
		reg:      make(map[string]*[4][4]*Instruction),
		imm:      make(map[string]*[4]*Instruction),
	}

	for _, f := range families {
		reg := new([4][4]*Instruction)
		imm := new([4]*Instruction)
		for dst := range Registers {
			for src := range Registers {
				inst := &Instruction{
					Name:   f.name,
					Mode:   REG,
					Opcode: f.regBase + byte(dst*4+src),
					Length: RegisterLength,
					Dst:    dst,
					Src:    src,
				}
				reg[dst][src] = inst
				set.add(inst)
			}
			inst := &Instruction{
				Name:   f.name,
				Mode:   IMM,
				Opcode: f.immBase + byte(dst),
				Length: ImmediateLength,
				Dst:    dst,
				Src:    -1,
			}
			imm[dst] = inst
			set.add(inst)
		}
		set.reg[f.name] = reg
		set.imm[f.name] = imm
	}

	set.add(&Instruction{Name: "prib", Mode: PRI, Opcode: PribImm8, Length: ImmediateLength, Dst: -1, Src: -1})
	for r := range Registers {
		set.add(&Instruction{Name: "prib", Mode: PRR, Opcode: PribR0 + byte(r), Length: RegisterLength, Dst: -1, Src: r})
	}

	set.add(&Instruction{Name: "jmp", Mode: JMP, Opcode: JumpPrefix, Length: JumpLength, Dst: -1, Src: -1})
	return set
}

// The instruction set is immutable once built, so it is shared by all
// concurrent assemblies.
var instructionSet = newInstructionSet()

// GetInstructionSet returns the Parody instruction set.
func GetInstructionSet() *InstructionSet {
	return instructionSet
}

// IsMnemonic reports whether s names an instruction.
func IsMnemonic(s string) bool {
	for _, m := range Mnemonics {
		if m == s {
			return true
		}
	}
	return false
}

// IsArithmetic reports whether s is one of the two-operand mnemonics.
func IsArithmetic(s string) bool {
	for _, f := range families {
		if f.name == s {
			return true
		}
	}
	return false
}

// RegisterIndex returns the index of the named register, or -1.
func RegisterIndex(name string) int {
	for i, r := range Registers {
		if r == name {
			return i
		}
	}
	return -1
}

func validRegister(r int) bool {
	return r >= 0 && r < len(Registers)
}
