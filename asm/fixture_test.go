// Copyright 2021-2024 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// A fixture is a test program extracted from a Markdown file. Each fixture
// starts with a "Test: <name>" heading followed by a parody code fence and
// either a hex fence with the expected machine code or an error fence
// naming the expected error kind.
type fixture struct {
	name   string
	source string
	hex    string
	err    string
}

var fixtureErrors = map[string]error{
	"syntax":       ErrSyntax,
	"lexed entity": ErrLexedEntity,
	"ast":          ErrAST,
}

func loadFixtures(path string) ([]fixture, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var fixtures []fixture
	var cur *fixture
	err = gast.Walk(doc, func(node gast.Node, entering bool) (gast.WalkStatus, error) {
		if !entering {
			return gast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *gast.Heading:
			title := headingText(n, src)
			if !strings.HasPrefix(title, "Test: ") {
				return gast.WalkContinue, nil
			}
			if cur != nil {
				fixtures = append(fixtures, *cur)
			}
			cur = &fixture{name: strings.TrimPrefix(title, "Test: ")}

		case *gast.FencedCodeBlock:
			if cur == nil {
				return gast.WalkStop, fmt.Errorf("code fence outside of a test")
			}
			content := fenceContent(n, src)
			switch lang := string(n.Language(src)); lang {
			case "parody":
				cur.source = content
			case "hex":
				cur.hex = content
			case "error":
				cur.err = strings.TrimSpace(content)
			default:
				return gast.WalkStop, fmt.Errorf("test '%s': unknown fence '%s'", cur.name, lang)
			}
		}
		return gast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	if cur != nil {
		fixtures = append(fixtures, *cur)
	}
	return fixtures, nil
}

func headingText(n gast.Node, src []byte) string {
	var buf bytes.Buffer
	gast.Walk(n, func(c gast.Node, entering bool) (gast.WalkStatus, error) {
		if t, ok := c.(*gast.Text); ok && entering {
			buf.Write(t.Segment.Value(src))
		}
		return gast.WalkContinue, nil
	})
	return buf.String()
}

func fenceContent(n *gast.FencedCodeBlock, src []byte) string {
	var buf bytes.Buffer
	for i := 0; i < n.Lines().Len(); i++ {
		line := n.Lines().At(i)
		buf.Write(line.Value(src))
	}
	return buf.String()
}

func TestFixtures(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.md"))
	be.Err(t, err, nil)
	be.True(t, len(paths) > 0)

	for _, path := range paths {
		fixtures, err := loadFixtures(path)
		be.Err(t, err, nil)

		for _, f := range fixtures {
			t.Run(f.name, func(t *testing.T) {
				assembly, _, err := Assemble(strings.NewReader(f.source), f.name, io.Discard, 0)
				if f.err != "" {
					kind, ok := fixtureErrors[f.err]
					be.True(t, ok)
					be.Err(t, err, kind)
					return
				}
				be.Err(t, err, nil)
				be.Equal(t, byteString(assembly.Code), byteString(hexToBytes(f.hex)))
			})
		}
	}
}
