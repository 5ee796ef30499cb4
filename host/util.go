// Copyright 2021-2024 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"fmt"
	"strings"
)

var hexString = "0123456789ABCDEF"

// Return the bytes of b as space-separated hexadecimal pairs.
func codeString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	buf := make([]byte, len(b)*3-1)
	for i, v := range b {
		j := i * 3
		byteToBuf(v, buf[j:j+2])
		if j+2 < len(buf) {
			buf[j+2] = ' '
		}
	}
	return string(buf)
}

func byteToBuf(v byte, b []byte) {
	b[0] = hexString[(v>>4)&0xf]
	b[1] = hexString[v&0xf]
}

func toPrintableChar(v byte) byte {
	switch {
	case v >= 32 && v < 127:
		return v
	default:
		return '.'
	}
}

func stringToBool(s string) (bool, error) {
	s = strings.ToLower(s)
	switch s {
	case "0", "false":
		return false, nil
	case "1", "true":
		return true, nil
	default:
		return false, fmt.Errorf("invalid bool value '%s'", s)
	}
}

// Expand the \n escapes used to enter multi-line source on a single
// command line.
func expandSource(args []string) string {
	return strings.ReplaceAll(strings.Join(args, " "), `\n`, "\n")
}

// Wrap text at 80 columns, indenting each line.
func indentWrap(indent int, s string) string {
	pad := strings.Repeat(" ", indent)
	var lines []string
	line := pad
	for _, w := range strings.Fields(s) {
		if len(line) > indent && len(line)+1+len(w) > 80 {
			lines = append(lines, line)
			line = pad
		}
		if len(line) > indent {
			line += " "
		}
		line += w
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
