// Copyright 2021-2024 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func run(h *Host, script string) string {
	var out bytes.Buffer
	h.RunCommands(strings.NewReader(script), &out, false)
	return out.String()
}

func TestAssembleText(t *testing.T) {
	h := New()
	out := run(h, `assemble text start:\nmovb #10, r0\njmp start
labels
disassemble
`)

	be.True(t, strings.Contains(out, "Assembled 12 bytes."))
	be.True(t, strings.Contains(out, "0000-  60 FE 00 00 00 0A 0F 01"))
	be.True(t, strings.Contains(out, "start            $0000"))
	be.True(t, strings.Contains(out, "0000-   60 FE 00 00 00 0A   movb #10, r0"))
	be.True(t, strings.Contains(out, "0006-   0F 01 00 00 00 00   jmp $00000000"))
	be.True(t, strings.Contains(out, "; <text>:3"))
}

func TestAssembleTextError(t *testing.T) {
	h := New()
	out := run(h, `assemble text movb r0, #5
labels
`)

	be.True(t, strings.Contains(out, "Failed to assemble."))
	be.True(t, strings.Contains(out, "Syntax error in '<text>' line 1"))
	be.True(t, strings.Contains(out, "No labels defined."))
}

func TestLexAndParse(t *testing.T) {
	h := New()
	out := run(h, `lex movb #5, r0
parse loop:\nprib #-2
parse movb r0, #5
`)

	be.True(t, strings.Contains(out, "mnemonic movb"))
	be.True(t, strings.Contains(out, "number   #5"))
	be.True(t, strings.Contains(out, "  <label> (loop:)"))
	be.True(t, strings.Contains(out, "    <integer> (#-2)"))
	be.True(t, strings.Contains(out, "syntax error in line 1"))
}

func TestAssembleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "count.pa")
	err := os.WriteFile(path, []byte("loop:\naddb #1, r0\nprib r0\njmp loop\n"), 0600)
	be.Err(t, err, nil)

	h := New()
	out := run(h, "assemble file "+path+"\nlabels\ndump\n")
	be.True(t, strings.Contains(out, "Assembled 'count.pa' to produce 'count.bin' and 'count.map'."))
	be.True(t, strings.Contains(out, "loop             $0000"))
	be.True(t, strings.Contains(out, "0000-  64 FE 00 00 00 01 81 0F"))
	be.True(t, strings.Contains(out, "0008-  01 00 00 00 00"))

	h = New()
	out = run(h, "disassemble "+filepath.Join(dir, "count.bin")+" 2\n\n")
	be.True(t, strings.Contains(out, "addb #1, r0"))
	be.True(t, strings.Contains(out, "; count.pa:2"))
	be.True(t, strings.Contains(out, "prib r0"))
	be.True(t, strings.Contains(out, "jmp $00000000"))
}

func TestDisassembleNoProgram(t *testing.T) {
	out := run(New(), "disassemble\ndump\n")
	be.Equal(t, out, "No program loaded.\nNo program loaded.\n")
}

func TestSettings(t *testing.T) {
	h := New()
	out := run(h, `set strict true
set hexbytes 4
set writemap 0
set nothing 1
set
`)
	be.True(t, h.settings.Strict)
	be.Equal(t, h.settings.HexBytesPerLine, 4)
	be.True(t, !h.settings.WriteMap)
	be.True(t, strings.Contains(out, "Setting updated."))
	be.True(t, strings.Contains(out, "Setting 'nothing' not found"))
	be.True(t, strings.Contains(out, "Variables:"))
	be.True(t, strings.Contains(out, "(treat jumps to undefined labels as errors)"))
}

func TestStrictSetting(t *testing.T) {
	h := New()
	out := run(h, `assemble text jmp nowhere
set strict true
assemble text jmp nowhere
`)
	be.True(t, strings.Contains(out, "Assembled 6 bytes."))
	be.True(t, strings.Contains(out, "Failed to assemble."))
	be.True(t, strings.Contains(out, "nowhere"))
}

func TestSettingsKind(t *testing.T) {
	s := newSettings()
	be.Equal(t, s.Kind("verb"), reflect.Bool)
	be.Equal(t, s.Kind("disasm"), reflect.Int)
	be.Equal(t, s.Kind("bogus"), reflect.Invalid)

	be.Err(t, s.Set("disasmlines", "ten"))
	be.Err(t, s.Set("disasmlines", int64(20)), nil)
	be.Equal(t, s.DisasmLines, 20)

	be.Err(t, s.Set("strict", int64(1)))
	be.Err(t, s.Set("disasmlines", true))
	be.Err(t, s.Set("hexbytes", int64(-1)))
	be.Equal(t, s.HexBytesPerLine, 8)
	be.Err(t, s.Set("verbose", true), nil)
	be.True(t, s.Verbose)

	var buf strings.Builder
	s.Display(&buf)
	be.True(t, strings.Contains(buf.String(), "    DisasmLines      20"))
}

func TestHelpAndQuit(t *testing.T) {
	out := run(New(), `help
help assemble text
bogus
quit
labels
`)
	be.True(t, strings.Contains(out, "Commands:"))
	be.True(t, strings.Contains(out, "assemble text"))
	be.True(t, strings.Contains(out, "Syntax: assemble text <source>"))
	be.True(t, strings.Contains(out, "Command not found."))
	be.True(t, !strings.Contains(out, "No labels defined."))
}

func TestUtil(t *testing.T) {
	be.Equal(t, codeString([]byte{0x0f, 0x01, 0xab}), "0F 01 AB")
	be.Equal(t, codeString(nil), "")
	be.Equal(t, expandSource([]string{`a:\nprib`, "r0"}), "a:\nprib r0")
	be.Equal(t, indentWrap(2, "one two"), "  one two")
}
