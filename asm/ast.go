// Copyright 2021-2024 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"
	"io"
	"strings"
)

// A NodeKind identifies the role of a node in the syntax tree.
type NodeKind byte

// Syntax tree node kinds.
const (
	NodeRoot NodeKind = iota
	NodeMnemonic
	NodeRegister
	NodeInteger
	NodeInstructionLine
	NodeLabel
)

var nodeKindName = []string{
	"<root>",
	"<mnemonic>",
	"<register>",
	"<integer>",
	"<instruction-line>",
	"<label>",
}

func (k NodeKind) String() string {
	if int(k) < len(nodeKindName) {
		return nodeKindName[k]
	}
	return "<unknown>"
}

// A Node is an element of the syntax tree built by the parser. Leaf nodes
// carry the token they were built from; the root and instruction-line
// nodes carry no token.
type Node struct {
	Kind     NodeKind
	Token    *Token
	children []*Node
}

// NewNode creates a syntax tree node.
func NewNode(kind NodeKind, tok *Token) *Node {
	return &Node{Kind: kind, Token: tok}
}

// Children returns the node's children in source order.
func (n *Node) Children() []*Node {
	return n.children
}

// Child returns the i'th child, or nil if there is no such child.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// AddChild appends a child node.
func (n *Node) AddChild(c *Node) {
	n.children = append(n.children, c)
}

func (n *Node) String() string {
	if n.Token == nil {
		return fmt.Sprintf("%s (<nil>)", n.Kind)
	}
	return fmt.Sprintf("%s (%s)", n.Kind, n.Token)
}

// Dump writes an indented rendering of the tree rooted at n.
func (n *Node) Dump(w io.Writer) {
	n.dump(w, 0)
}

func (n *Node) dump(w io.Writer, depth int) {
	fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), n)
	for _, c := range n.children {
		c.dump(w, depth+1)
	}
}
