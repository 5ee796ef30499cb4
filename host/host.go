// Copyright 2021-2024 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package host implements an interactive command shell around the Parody
// assembler.
//
// Within the host it is possible to assemble source files or source typed
// on the command line, inspect the tokens and syntax tree produced for a
// piece of source code, disassemble and dump machine code, and list the
// labels of the most recently assembled program.
package host

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/beevik/cmd"
	"github.com/beevik/parody/asm"
	"github.com/beevik/parody/disasm"
)

var errQuit = errors.New("exiting program")

// A Host is a command shell holding the most recently assembled or loaded
// program.
type Host struct {
	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool
	lastCmd     *cmd.Selection
	settings    *settings
	code        []byte         // current program
	sourceMap   *asm.SourceMap // source map of the current program, if any
	nextDisasm  int            // offset of next disassembly
}

// New creates a new host.
func New() *Host {
	return &Host{
		output:   bufio.NewWriter(os.Stdout),
		settings: newSettings(),
	}
}

// RunCommands accepts host commands from a reader and outputs the results
// to a writer. If the commands are interactive, a prompt is displayed while
// the host waits for the the next command to be entered.
func (h *Host) RunCommands(r io.Reader, w io.Writer, interactive bool) {
	h.input = bufio.NewScanner(r)
	h.output = bufio.NewWriter(w)
	h.interactive = interactive
	defer h.flush()

	for {
		h.prompt()

		line, err := h.getLine()
		if err != nil {
			break
		}

		var c cmd.Selection
		if line != "" {
			c, err = cmds.Lookup(line)
			switch {
			case errors.Is(err, cmd.ErrNotFound):
				h.println("Command not found.")
				continue
			case errors.Is(err, cmd.ErrAmbiguous):
				h.println("Command is ambiguous.")
				continue
			case err != nil:
				h.printf("ERROR: %v.\n", err)
				continue
			}
		} else if h.lastCmd != nil {
			c = *h.lastCmd
		}

		if c.Command == nil {
			continue
		}
		h.lastCmd = &c

		hc := c.Command.Data.(*command)
		err = hc.handler(h, c)
		if err != nil {
			break
		}
	}
}

// AssembleFile assembles a file using the host's settings and makes the
// result the current program.
func (h *Host) AssembleFile(filename string) error {
	defer h.flush()

	err := asm.AssembleFile(filename, h.options(), h.output)
	if err != nil {
		return err
	}

	ext := filepath.Ext(filename)
	prefix := filename[:len(filename)-len(ext)]
	return h.load(prefix+".bin", h.settings.WriteMap)
}

func (h *Host) options() asm.Option {
	var options asm.Option
	if h.settings.Verbose {
		options |= asm.Verbose
	}
	if h.settings.Strict {
		options |= asm.Strict
	}
	if !h.settings.WriteMap {
		options |= asm.NoSourceMap
	}
	return options
}

func (h *Host) printf(format string, args ...any) {
	fmt.Fprintf(h.output, format, args...)
	h.flush()
}

func (h *Host) println(args ...any) {
	fmt.Fprintln(h.output, args...)
	h.flush()
}

func (h *Host) flush() {
	h.output.Flush()
}

func (h *Host) getLine() (string, error) {
	if h.input.Scan() {
		return strings.TrimSpace(h.input.Text()), nil
	}
	if h.input.Err() != nil {
		return "", h.input.Err()
	}
	return "", io.EOF
}

func (h *Host) prompt() {
	if h.interactive {
		h.printf("* ")
	}
}

func (h *Host) cmdAssembleFile(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c.Command)
		return nil
	}

	filename := c.Args[0]
	if filepath.Ext(filename) == "" {
		filename += ".pa"
	}

	err := h.AssembleFile(filename)
	if err != nil {
		h.printf("Failed to assemble '%s': %v\n", filepath.Base(filename), err)
	}
	return nil
}

func (h *Host) cmdAssembleText(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c.Command)
		return nil
	}

	src := expandSource(c.Args)
	assembly, sourceMap, err := asm.Assemble(strings.NewReader(src), "<text>", h.output, h.options())
	if err != nil {
		h.println("Failed to assemble.")
		for _, e := range assembly.Errors {
			h.println(e)
		}
		return nil
	}

	h.setProgram(assembly.Code, sourceMap)
	h.printf("Assembled %d bytes.\n", len(assembly.Code))
	h.dumpCode(assembly.Code)
	return nil
}

func (h *Host) cmdLex(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c.Command)
		return nil
	}

	tokens, err := asm.Lex(expandSource(c.Args))
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	for _, t := range tokens {
		h.printf("%-3d %-3d %-8s %s\n", t.Row, t.Column+1, t.Kind, t)
	}
	return nil
}

func (h *Host) cmdParse(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c.Command)
		return nil
	}

	root, err := asm.Parse(expandSource(c.Args))
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	root.Dump(h.output)
	h.flush()
	return nil
}

func (h *Host) cmdDisassemble(c cmd.Selection) error {
	args := c.Args
	if len(args) > 0 {
		if _, err := strconv.Atoi(args[0]); err != nil {
			if err := h.load(args[0], true); err != nil {
				h.printf("%v\n", err)
				return nil
			}
			args = args[1:]
		}
	}

	if h.code == nil {
		h.println("No program loaded.")
		return nil
	}

	lines := h.settings.DisasmLines
	if len(args) > 0 {
		l, err := strconv.Atoi(args[0])
		if err != nil || l < 1 {
			h.printf("Invalid line count '%s'.\n", args[0])
			return nil
		}
		lines = l
	}

	addr := h.nextDisasm
	for i := 0; i < lines && addr < len(h.code); i++ {
		var d string
		d, addr = h.disassemble(addr)
		h.println(d)
	}

	h.nextDisasm = addr
	if h.lastCmd != nil {
		h.lastCmd.Args = []string{strconv.Itoa(lines)}
	}
	return nil
}

func (h *Host) cmdDump(c cmd.Selection) error {
	if len(c.Args) > 0 {
		if err := h.load(c.Args[0], true); err != nil {
			h.printf("%v\n", err)
			return nil
		}
	}

	if h.code == nil {
		h.println("No program loaded.")
		return nil
	}

	h.dumpCode(h.code)
	return nil
}

func (h *Host) cmdLabels(c cmd.Selection) error {
	if h.sourceMap == nil || len(h.sourceMap.Labels) == 0 {
		h.println("No labels defined.")
		return nil
	}
	for _, l := range h.sourceMap.Labels {
		h.printf("%-16s $%04X\n", l.Name, l.Address)
	}
	return nil
}

func (h *Host) cmdHelp(c cmd.Selection) error {
	if len(c.Args) == 0 {
		h.displayCommands("")
		return nil
	}

	name := strings.Join(c.Args, " ")
	s, err := cmds.Lookup(name)
	if err != nil || s.Command == nil {
		if !h.displayCommands(name) {
			h.println("Command not found.")
		}
		return nil
	}

	hc := s.Command.Data.(*command)
	if hc.usage != "" {
		h.printf("Syntax: %s\n\n", hc.usage)
	}
	switch {
	case hc.description != "":
		h.printf("Description:\n%s\n\n", indentWrap(3, hc.description))
	case hc.brief != "":
		h.printf("Description:\n%s.\n\n", indentWrap(3, hc.brief))
	}
	return nil
}

func (h *Host) cmdQuit(c cmd.Selection) error {
	return errQuit
}

func (h *Host) cmdSet(c cmd.Selection) error {
	switch len(c.Args) {
	case 0:
		h.println("Variables:")
		h.settings.Display(h.output)
		h.flush()

	case 1:
		h.displayHelpText(c.Command)

	default:
		key, value := strings.ToLower(c.Args[0]), strings.Join(c.Args[1:], " ")

		var err error
		switch h.settings.Kind(key) {
		case reflect.Invalid:
			err = fmt.Errorf("Setting '%s' not found", key)
		case reflect.Bool:
			var v bool
			v, err = stringToBool(value)
			if err == nil {
				err = h.settings.Set(key, v)
			}
		default:
			var v int64
			v, err = strconv.ParseInt(value, 0, 64)
			if err == nil {
				err = h.settings.Set(key, v)
			}
		}

		if err == nil {
			h.println("Setting updated.")
		} else {
			h.printf("%v\n", err)
		}
	}

	return nil
}

// Load a binary file and, optionally, its source map. The loaded code
// becomes the current program.
func (h *Host) load(filename string, withMap bool) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open '%s': %w", filepath.Base(filename), err)
	}
	defer file.Close()

	var assembly asm.Assembly
	if _, err := assembly.ReadFrom(file); err != nil {
		return fmt.Errorf("failed to read '%s': %w", filepath.Base(filename), err)
	}

	var sourceMap *asm.SourceMap
	if withMap {
		ext := filepath.Ext(filename)
		mapFile, err := os.Open(filename[:len(filename)-len(ext)] + ".map")
		if err == nil {
			defer mapFile.Close()
			sourceMap = &asm.SourceMap{}
			if _, err := sourceMap.ReadFrom(mapFile); err != nil {
				return fmt.Errorf("failed to read source map: %w", err)
			}
			if sourceMap.Size != uint32(len(assembly.Code)) {
				sourceMap = nil
			}
		}
	}

	h.setProgram(assembly.Code, sourceMap)
	return nil
}

func (h *Host) setProgram(code []byte, sourceMap *asm.SourceMap) {
	h.code = code
	h.sourceMap = sourceMap
	h.nextDisasm = 0
}

// Disassemble the instruction at 'addr' of the current program, annotating
// it with its source line when a source map is loaded.
func (h *Host) disassemble(addr int) (str string, next int) {
	line, next := disasm.Disassemble(h.code, addr)
	str = fmt.Sprintf("%04X-   %-17s   %s", addr, codeString(h.code[addr:next]), line)
	if h.sourceMap != nil {
		if file, row := h.sourceMap.Search(addr); row > 0 {
			str = fmt.Sprintf("%-50s ; %s:%d", str, filepath.Base(file), row)
		}
	}
	return str, next
}

func (h *Host) dumpCode(code []byte) {
	n := h.settings.HexBytesPerLine
	if n < 1 {
		n = 8
	}

	for addr := 0; addr < len(code); addr += n {
		row := code[addr:min(addr+n, len(code))]
		chars := make([]byte, len(row))
		for i, v := range row {
			chars[i] = toPrintableChar(v)
		}
		h.printf("%04X-  %-*s  %s\n", addr, n*3-1, codeString(row), chars)
	}
}

func (h *Host) displayHelpText(c *cmd.Command) {
	hc := c.Data.(*command)
	if hc.usage != "" {
		h.printf("Syntax: %s\n", hc.usage)
	} else {
		h.println("<no help text>")
	}
}

// Display the commands whose names begin with 'prefix'. Return false if
// there are none.
func (h *Host) displayCommands(prefix string) bool {
	var found []*command
	for _, c := range commands {
		if prefix == "" || c.path == prefix || strings.HasPrefix(c.path, prefix+" ") {
			found = append(found, c)
		}
	}
	if len(found) == 0 {
		return false
	}

	h.println("Commands:")
	for _, c := range found {
		if c.brief != "" {
			h.printf("    %-20s %s\n", c.path, c.brief)
		}
	}
	return true
}
