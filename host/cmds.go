// Copyright 2021-2024 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"strings"

	"github.com/beevik/cmd"
)

// A command describes a host command. Each command node in the command tree
// stores its command as data.
type command struct {
	name        string
	path        string // full command name, including parent subtrees
	brief       string
	description string
	usage       string
	handler     func(h *Host, c cmd.Selection) error
}

var (
	cmds     *cmd.Tree
	commands []*command
)

func addCommand(t *cmd.Tree, parent string, c *command) {
	c.path = strings.TrimSpace(parent + " " + c.name)
	t.AddCommand(cmd.CommandDescriptor{
		Name:        c.name,
		Brief:       c.brief,
		Description: c.description,
		Usage:       c.usage,
		Data:        c,
	})
	commands = append(commands, c)
}

func init() {
	root := cmd.NewTree(cmd.TreeDescriptor{Name: "parody"})
	addCommand(root, "", &command{
		name:        "help",
		brief:       "Display help",
		description: "Display help for a command.",
		usage:       "help [<command>]",
		handler:     (*Host).cmdHelp,
	})

	// Assemble commands
	as := root.AddSubtree(cmd.TreeDescriptor{Name: "assemble", Brief: "Assemble commands"})
	addCommand(as, "assemble", &command{
		name:  "file",
		brief: "Assemble a file from disk and save the binary to disk",
		description: "Run the assembler on the specified file," +
			" producing a binary file and source map file if successful." +
			" The assembled code becomes the current program.",
		usage:   "assemble file <filename>",
		handler: (*Host).cmdAssembleFile,
	})
	addCommand(as, "assemble", &command{
		name:  "text",
		brief: "Assemble source code typed on the command line",
		description: "Assemble the source code that follows the command." +
			" Use \\n to separate lines. The assembled code becomes the" +
			" current program.",
		usage:   "assemble text <source>",
		handler: (*Host).cmdAssembleText,
	})

	addCommand(root, "", &command{
		name:  "disassemble",
		brief: "Disassemble code",
		description: "Disassemble machine code. If a binary file is" +
			" specified, it is loaded and becomes the current program." +
			" The number of instruction lines to disassemble may be" +
			" specified as an option. If no file is specified, the" +
			" disassembly continues from where the last disassembly left off.",
		usage:   "disassemble [<filename>] [<lines>]",
		handler: (*Host).cmdDisassemble,
	})
	addCommand(root, "", &command{
		name:  "dump",
		brief: "Dump machine code bytes",
		description: "Display the bytes of a binary file, or of the" +
			" current program if no file is specified.",
		usage:   "dump [<filename>]",
		handler: (*Host).cmdDump,
	})
	addCommand(root, "", &command{
		name:  "labels",
		brief: "List label offsets",
		description: "Display the labels defined by the current program" +
			" and the offsets they resolved to.",
		usage:   "labels",
		handler: (*Host).cmdLabels,
	})
	addCommand(root, "", &command{
		name:        "lex",
		brief:       "Display the tokens of source code",
		description: "Run the lexer on the source code that follows the command and display the resulting tokens. Use \\n to separate lines.",
		usage:       "lex <source>",
		handler:     (*Host).cmdLex,
	})
	addCommand(root, "", &command{
		name:        "parse",
		brief:       "Display the syntax tree of source code",
		description: "Parse the source code that follows the command and display the resulting syntax tree. Use \\n to separate lines.",
		usage:       "parse <source>",
		handler:     (*Host).cmdParse,
	})
	addCommand(root, "", &command{
		name:        "quit",
		brief:       "Quit the program",
		description: "Quit the program.",
		usage:       "quit",
		handler:     (*Host).cmdQuit,
	})
	addCommand(root, "", &command{
		name:  "set",
		brief: "Set a configuration variable",
		description: "Set the value of a configuration variable. To see the" +
			" current values of all configuration variables, type set" +
			" without any arguments.",
		usage:   "set [<var> <value>]",
		handler: (*Host).cmdSet,
	})

	// Add command shortcuts.
	root.AddShortcut("a", "assemble file")
	root.AddShortcut("at", "assemble text")
	root.AddShortcut("d", "disassemble")
	root.AddShortcut("?", "help")

	cmds = root
}
