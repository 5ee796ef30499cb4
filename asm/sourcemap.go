// Copyright 2021-2024 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"encoding/json"
	"io"
	"sort"
)

// A SourceMap describes the mapping between source code line numbers and
// machine code offsets.
type SourceMap struct {
	Size   uint32       // size of the machine code, in bytes
	CRC    uint32       // IEEE CRC-32 of the machine code
	Files  []string     // source files
	Lines  []SourceLine // instruction mappings, sorted by address
	Labels []Label      // defined labels, in order of definition
}

// A SourceLine represents a mapping between a machine code offset and the
// source code file and line number used to generate it.
type SourceLine struct {
	Address   int // machine code offset
	FileIndex int // source code file index
	Line      int // source code line number
}

// A Label describes a defined label and the offset it resolved to.
type Label struct {
	Name    string
	Address int
}

// Search searches the source map for a mapping with the requested offset.
func (s *SourceMap) Search(addr int) (filename string, line int) {
	i := sort.Search(len(s.Lines), func(i int) bool {
		return s.Lines[i].Address >= addr
	})
	if i < len(s.Lines) && s.Lines[i].Address == addr {
		return s.Files[s.Lines[i].FileIndex], s.Lines[i].Line
	}
	return "", -1
}

// FindLabel returns the offset of a label recorded in the source map.
func (s *SourceMap) FindLabel(name string) (addr int, ok bool) {
	for _, l := range s.Labels {
		if l.Name == name {
			return l.Address, true
		}
	}
	return 0, false
}

// ReadFrom reads the contents of an exported source map file.
func (s *SourceMap) ReadFrom(r io.Reader) (n int64, err error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}

	err = json.Unmarshal(b, s)
	if err != nil {
		return 0, err
	}
	return int64(len(b)), nil
}

// WriteTo writes the contents of the source map to an output stream.
func (s *SourceMap) WriteTo(w io.Writer) (n int64, err error) {
	b, err := json.Marshal(*s)
	if err != nil {
		return 0, err
	}

	nn, err := w.Write(b)
	return int64(nn), err
}

// List the labels of a table in definition order. Tables that cannot
// enumerate their names yield no labels.
func labelList(t LabelTable) []Label {
	lt, ok := t.(interface{ Names() []string })
	if !ok {
		return nil
	}
	names := lt.Names()
	labels := make([]Label, 0, len(names))
	for _, name := range names {
		addr, _ := t.Resolve(name)
		labels = append(labels, Label{Name: name, Address: addr})
	}
	return labels
}
