// Copyright 2021-2024 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

// A LabelTable maps label names to byte offsets in generated code.
type LabelTable interface {
	// Define records the offset of a label. Redefining a label replaces
	// its previous offset.
	Define(name string, offset int)

	// Resolve returns the offset of a label and whether it was defined.
	Resolve(name string) (offset int, ok bool)
}

// Labels is the default map-backed LabelTable. It also remembers the order
// in which labels were first defined.
type Labels struct {
	offsets map[string]int
	order   []string
}

// NewLabelTable creates an empty label table.
func NewLabelTable() *Labels {
	return &Labels{offsets: make(map[string]int)}
}

// Define records the offset of a label.
func (l *Labels) Define(name string, offset int) {
	if _, ok := l.offsets[name]; !ok {
		l.order = append(l.order, name)
	}
	l.offsets[name] = offset
}

// Resolve returns the offset of a label.
func (l *Labels) Resolve(name string) (int, bool) {
	offset, ok := l.offsets[name]
	return offset, ok
}

// Names returns the defined label names in order of first definition.
func (l *Labels) Names() []string {
	return l.order
}

// Len returns the number of defined labels.
func (l *Labels) Len() int {
	return len(l.order)
}
