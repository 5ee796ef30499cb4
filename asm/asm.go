// Copyright 2021-2024 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asm implements an assembler for the Parody virtual machine.
//
// Assembly runs in three stages. The lexer converts source text into
// tokens, the parser groups the tokens into a syntax tree of labels and
// instruction lines, and the code generator walks the tree to emit machine
// code, patching forward jumps once every label offset is known.
package asm

import (
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// The assembler is a state object used during the assembly of machine code
// from a single source file.
type assembler struct {
	r       io.Reader    // the reader passed to Assemble
	file    string       // name of the source file
	src     string       // source text
	rows    []string     // source text split into lines
	tokens  []Token      // lexer output
	root    *Node        // parser output
	gen     *Generator   // code generator
	code    []byte       // generated machine code
	lines   []SourceLine // source code line mappings
	out     io.Writer    // output used for verbose output
	verbose bool         // verbose output
	strict  bool         // fail on undefined jump targets and stray text
	errors  []string     // errors encountered during assembly
}

// Assembly contains the assembled machine code and other data associated
// with the machine code.
type Assembly struct {
	Code   []byte   // Assembled machine code
	Errors []string // Errors encountered during assembly
}

// ReadFrom reads machine code from a binary input source.
func (a *Assembly) ReadFrom(r io.Reader) (n int64, err error) {
	a.Errors = []string{}
	a.Code, err = io.ReadAll(r)
	return int64(len(a.Code)), err
}

// WriteTo saves machine code as binary data into an output writer.
func (a *Assembly) WriteTo(w io.Writer) (n int64, err error) {
	nn, err := w.Write(a.Code)
	return int64(nn), err
}

// Option type used by the Assemble function.
type Option uint

// Options for the Assemble function.
const (
	Verbose     Option = 1 << iota // verbose output during assembly
	Strict                         // undefined labels and stray text are errors
	NoSourceMap                    // AssembleFile skips the source map file
)

// AssembleFile reads a file containing Parody assembly code, assembles it,
// and produces a binary output file and a source map file.
func AssembleFile(path string, options Option, out io.Writer) error {
	inFile, err := os.Open(path)
	if err != nil {
		return err
	}
	defer inFile.Close()

	assembly, sourceMap, err := Assemble(inFile, path, out, options)
	if err != nil {
		for _, e := range assembly.Errors {
			fmt.Fprintln(out, e)
		}
		return err
	}

	ext := filepath.Ext(path)
	prefix := path[:len(path)-len(ext)]
	binPath := prefix + ".bin"
	if err := writeFile(binPath, assembly); err != nil {
		return err
	}

	if options&NoSourceMap != 0 {
		fmt.Fprintf(out, "Assembled '%s' to produce '%s'.\n",
			filepath.Base(path),
			filepath.Base(binPath))
		return nil
	}

	mapPath := prefix + ".map"
	if err := writeFile(mapPath, sourceMap); err != nil {
		return err
	}

	fmt.Fprintf(out, "Assembled '%s' to produce '%s' and '%s'.\n",
		filepath.Base(path),
		filepath.Base(binPath),
		filepath.Base(mapPath))
	return nil
}

func writeFile(path string, w io.WriterTo) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = w.WriteTo(f)
	return err
}

// Assemble reads data from the provided stream and attempts to assemble it
// into Parody machine code. On failure the returned assembly holds no code
// and lists the errors encountered.
func Assemble(r io.Reader, filename string, out io.Writer, options Option) (*Assembly, *SourceMap, error) {
	if out == nil {
		out = os.Stdout
	}

	a := &assembler{
		r:       r,
		file:    filename,
		out:     out,
		verbose: (options & Verbose) != 0,
		strict:  (options & Strict) != 0,
	}

	// Assembly consists of the following steps
	steps := []func(a *assembler) error{
		(*assembler).read,     // Read the source text
		(*assembler).lex,      // Convert the source text into tokens
		(*assembler).parse,    // Build the syntax tree
		(*assembler).generate, // Generate and patch the machine code
		(*assembler).report,   // Log the label table
	}

	// Execute assembler steps, breaking if an error is encountered
	// in any one of them.
	var err error
	for _, step := range steps {
		err = step(a)
		if err != nil {
			a.addError(err)
			a.code = nil
			break
		}
	}

	assembly := &Assembly{
		Code:   a.code,
		Errors: a.errors,
	}

	sourceMap := &SourceMap{
		Size:  uint32(len(a.code)),
		CRC:   crc32.ChecksumIEEE(a.code),
		Files: []string{a.file},
	}
	if err == nil {
		sourceMap.Lines = a.lines
		sourceMap.Labels = labelList(a.gen.Labels())
	}

	return assembly, sourceMap, err
}

func (a *assembler) read() error {
	b, err := io.ReadAll(a.r)
	if err != nil {
		return err
	}
	a.src = string(b)
	a.rows = strings.Split(a.src, "\n")
	return nil
}

func (a *assembler) lex() error {
	a.logSection("Lexing assembly code")

	lexFn := Lex
	if a.strict {
		lexFn = LexStrict
	}

	tokens, err := lexFn(a.src)
	if err != nil {
		return err
	}

	for _, t := range tokens {
		if t.Kind != TokenNewline {
			a.logLine(t.Row, t.Column, "%-8s %s", t.Kind, t)
		}
	}
	a.tokens = tokens
	return nil
}

func (a *assembler) parse() error {
	a.logSection("Parsing tokens")

	root, err := ParseTokens(a.tokens)
	if err != nil {
		return err
	}

	if a.verbose {
		root.Dump(a.out)
	}
	a.root = root
	return nil
}

func (a *assembler) generate() error {
	a.logSection("Generating code")

	a.gen = NewGenerator(nil)
	a.gen.Strict = a.strict

	code, err := a.gen.Generate(a.root)
	if err != nil {
		return err
	}
	a.code = code
	a.lines = a.gen.SourceLines()

	for i, l := range a.lines {
		end := len(code)
		if i+1 < len(a.lines) {
			end = a.lines[i+1].Address
		}
		a.logBytes(l.Address, code[l.Address:end], a.row(l.Line))
	}
	return nil
}

func (a *assembler) report() error {
	a.logSection("Resolving labels")
	for _, l := range labelList(a.gen.Labels()) {
		a.log("%-15s Addr:$%04X", l.Name, l.Address)
	}
	for _, name := range a.gen.Unresolved() {
		a.log("%-15s unresolved", name)
	}
	return nil
}

// Return the text of a 1-based source row.
func (a *assembler) row(n int) string {
	if n < 1 || n > len(a.rows) {
		return ""
	}
	return strings.TrimRight(a.rows[n-1], "\r")
}

// Append an error message to the assembler's error state.
func (a *assembler) addError(err error) {
	var e *Error
	if !errors.As(err, &e) || e.Row == 0 {
		msg := fmt.Sprintf("Error in '%s': %v", a.file, err)
		a.errors = append(a.errors, msg)
		if a.verbose {
			fmt.Fprintln(a.out, msg)
		}
		return
	}

	kind := e.Kind.Error()
	kind = strings.ToUpper(kind[:1]) + kind[1:]
	msg := fmt.Sprintf("%s in '%s' line %d, col %d: %s", kind, a.file, e.Row, e.Column+1, e.Msg)
	a.errors = append(a.errors, msg)
	if a.verbose {
		fmt.Fprintln(a.out, msg)
		fmt.Fprintln(a.out, a.row(e.Row))
		fmt.Fprintln(a.out, strings.Repeat("-", e.Column)+"^")
	}
}

// In verbose mode, log a string to the output.
func (a *assembler) log(format string, args ...any) {
	if a.verbose {
		fmt.Fprintf(a.out, format, args...)
		fmt.Fprintf(a.out, "\n")
	}
}

// In verbose mode, log a string and its associated line of assembly code.
func (a *assembler) logLine(row, col int, format string, args ...any) {
	if a.verbose {
		detail := fmt.Sprintf(format, args...)
		fmt.Fprintf(a.out, "%-3d %-3d | %-20s | %s\n", row, col+1, detail, strings.TrimSpace(a.row(row)))
	}
}

// In verbose mode, log the bytes of an instruction with its offset.
func (a *assembler) logBytes(addr int, b []byte, text string) {
	a.log("%04X-   %-17s   %s", addr, byteString(b), strings.TrimSpace(text))
}

// In verbose mode, log a section header to the output.
func (a *assembler) logSection(name string) {
	if a.verbose {
		fmt.Fprintln(a.out, strings.Repeat("-", len(name)+6))
		fmt.Fprintf(a.out, "-- %s --\n", name)
		fmt.Fprintln(a.out, strings.Repeat("-", len(name)+6))
	}
}
