// Copyright 2021-2024 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package isa

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestRegisterOpcodesUniquePerFamily(t *testing.T) {
	set := GetInstructionSet()
	for _, f := range families {
		seen := make(map[byte]bool)
		for dst := range Registers {
			for src := range Registers {
				inst := set.RegisterToRegister(f.name, dst, src)
				be.True(t, inst != nil)
				be.True(t, !seen[inst.Opcode])
				seen[inst.Opcode] = true

				be.True(t, inst.Opcode >= f.regBase && inst.Opcode <= f.regBase+0x0f)
				be.Equal(t, inst.Opcode, f.regBase+byte(dst*4+src))
				be.Equal(t, inst.Length, byte(RegisterLength))
			}
		}
		be.Equal(t, len(seen), 16)
	}
}

func TestFamilyRanges(t *testing.T) {
	set := GetInstructionSet()
	tests := []struct {
		name string
		lo   byte
	}{
		{"movb", 0x10},
		{"addb", 0x20},
		{"subb", 0x30},
		{"mulb", 0x40},
		{"divb", 0x50},
	}
	for _, tt := range tests {
		// r0 <- r0 opens the block, r3 <- r3 closes it.
		be.Equal(t, set.RegisterToRegister(tt.name, 0, 0).Opcode, tt.lo)
		be.Equal(t, set.RegisterToRegister(tt.name, 3, 3).Opcode, tt.lo+0x0f)
		// movb r1, r0 (src r1, dst r0) sits in the TO_R0 block.
		be.Equal(t, set.RegisterToRegister(tt.name, 0, 1).Opcode, tt.lo+1)
		be.Equal(t, set.RegisterToRegister(tt.name, 1, 0).Opcode, tt.lo+4)
	}
}

func TestLookupRoundTrip(t *testing.T) {
	set := GetInstructionSet()
	count := 0
	for op := 0; op < 256; op++ {
		inst := set.Lookup(byte(op))
		if inst == nil {
			continue
		}
		count++
		be.Equal(t, inst.Opcode, byte(op))
		be.True(t, IsMnemonic(inst.Name))
	}
	// 5 families * (16 + 4), 5 prib variants, 1 jmp.
	be.Equal(t, count, 5*20+5+1)
}

func TestGetInstructions(t *testing.T) {
	set := GetInstructionSet()
	be.Equal(t, len(set.GetInstructions("movb")), 20)
	be.Equal(t, len(set.GetInstructions("PRIB")), 5)
	be.Equal(t, len(set.GetInstructions("jmp")), 1)
	be.Equal(t, len(set.GetInstructions("nop")), 0)
}

func TestSpecialOpcodes(t *testing.T) {
	set := GetInstructionSet()
	be.Equal(t, set.PrintImmediate().Opcode, PribImm8)
	for r := range Registers {
		be.Equal(t, set.PrintRegister(r).Opcode, PribR0+byte(r))
	}
	be.True(t, set.PrintRegister(4) == nil)
	be.Equal(t, set.Jump().Length, byte(JumpLength))
	be.True(t, set.ImmediateToRegister("prib", 0) == nil)
	be.True(t, set.RegisterToRegister("jmp", 0, 0) == nil)
}

func TestRegisterIndex(t *testing.T) {
	be.Equal(t, RegisterIndex("r0"), 0)
	be.Equal(t, RegisterIndex("r3"), 3)
	be.Equal(t, RegisterIndex("r4"), -1)
	be.True(t, IsArithmetic("divb"))
	be.True(t, !IsArithmetic("prib"))
}
