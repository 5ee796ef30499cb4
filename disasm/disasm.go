// Copyright 2021-2024 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm implements a Parody instruction set disassembler.
package disasm

import (
	"fmt"

	"github.com/beevik/parody/isa"
)

// Disassemble the machine code in 'code' at offset 'offset'. Return a 'line'
// string representing the disassembled instruction and a 'next' offset that
// starts the following line of machine code. Bytes that do not begin a
// complete instruction are rendered as a single .byte directive.
func Disassemble(code []byte, offset int) (line string, next int) {
	if offset < 0 || offset >= len(code) {
		return "", offset
	}

	opcode := code[offset]
	set := isa.GetInstructionSet()
	inst := set.Lookup(opcode)
	if inst == nil || offset+int(inst.Length) > len(code) {
		return byteDirective(opcode), offset + 1
	}

	operand := code[offset+1 : offset+int(inst.Length)]
	switch inst.Mode {
	case isa.REG:
		line = fmt.Sprintf("%s %s, %s", inst.Name, isa.Registers[inst.Src], isa.Registers[inst.Dst])

	case isa.IMM:
		n, ok := isa.DecodeImmediate(operand)
		if !ok {
			return byteDirective(opcode), offset + 1
		}
		line = fmt.Sprintf("%s #%d, %s", inst.Name, n, isa.Registers[inst.Dst])

	case isa.PRR:
		line = fmt.Sprintf("%s %s", inst.Name, isa.Registers[inst.Src])

	case isa.PRI:
		n, ok := isa.DecodeImmediate(operand)
		if !ok {
			return byteDirective(opcode), offset + 1
		}
		line = fmt.Sprintf("%s #%d", inst.Name, n)

	case isa.JMP:
		if operand[0] != isa.JumpPlain {
			return byteDirective(opcode), offset + 1
		}
		line = fmt.Sprintf("%s $%08X", inst.Name, isa.DecodeOffset(operand[1:]))
	}

	next = offset + int(inst.Length)
	return line, next
}

// Length returns the number of bytes occupied by the instruction at
// 'offset'. It returns 1 for bytes that do not form an instruction and 0 for
// an offset outside the code.
func Length(code []byte, offset int) int {
	_, next := Disassemble(code, offset)
	if next <= offset {
		return 0
	}
	return next - offset
}

func byteDirective(b byte) string {
	return fmt.Sprintf(".byte $%02X", b)
}
