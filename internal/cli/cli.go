// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses command-line arguments and implements the non-TUI
// commands: one-shot questions, the line-mode REPL, transcript search and
// export, and version output.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command is the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdSearch
	CmdExport
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet bool
	JSON  bool

	// Command-specific
	Query        string
	Conversation string
	Format       string
	Output       string
	Nonce        string
	Limit        int

	// Raw args remaining after flag parsing
	Raw []string
}

// Parse reads os.Args and returns the command and its arguments.
func Parse() (Command, *Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses an argument slice. No arguments launches the TUI.
func ParseArgs(argv []string) (Command, *Args) {
	args := &Args{Limit: 20}
	if len(argv) == 0 {
		return CmdTUI, args
	}

	cmd := CmdTUI
	rest := argv
	switch argv[0] {
	case "ask":
		cmd = CmdAsk
		rest = argv[1:]
	case "chat":
		cmd = CmdChat
		rest = argv[1:]
	case "search":
		cmd = CmdSearch
		rest = argv[1:]
	case "export":
		cmd = CmdExport
		rest = argv[1:]
	case "version", "--version", "-V":
		return CmdVersion, args
	case "help", "--help", "-h":
		return CmdHelp, args
	}

	var positional []string
	for i := 0; i < len(rest); i++ {
		arg := rest[i]
		if !strings.HasPrefix(arg, "-") {
			positional = append(positional, arg)
			continue
		}

		name := strings.TrimLeft(arg, "-")
		value := ""
		if eq := strings.Index(name, "="); eq >= 0 {
			name, value = name[:eq], name[eq+1:]
		} else if i+1 < len(rest) && !strings.HasPrefix(rest[i+1], "-") && flagTakesValue(name) {
			value = rest[i+1]
			i++
		}

		switch name {
		case "quiet", "q":
			args.Quiet = true
		case "json":
			args.JSON = true
		case "conversation", "c":
			args.Conversation = value
		case "format", "f":
			args.Format = value
		case "output", "o":
			args.Output = value
		case "nonce":
			args.Nonce = value
		case "limit", "n":
			fmt.Sscanf(value, "%d", &args.Limit)
		}
	}

	args.Raw = positional
	args.Query = strings.Join(positional, " ")
	return cmd, args
}

// flagTakesValue reports whether a flag consumes the following argument.
func flagTakesValue(name string) bool {
	switch name {
	case "conversation", "c", "format", "f", "output", "o", "nonce", "limit", "n":
		return true
	}
	return false
}

// HandleVersion prints version information.
func HandleVersion(args *Args) {
	if args.JSON {
		fmt.Printf("{\"version\":%q,\"commit\":%q,\"date\":%q}\n", Version, GitCommit, BuildDate)
		return
	}
	fmt.Printf("ask-herbie %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}

// HandleHelp prints usage.
func HandleHelp() {
	fmt.Print(`ask-herbie - talk to Herbie from your terminal

Usage:
  herbie                   Launch the interactive TUI
  herbie ask <question>    Ask a single question and stream the answer
  herbie chat              Line-mode REPL (for terminals without TUI support)
  herbie search <query>    Search saved conversations
  herbie export            Export a conversation transcript
  herbie version           Print version information

Flags:
  ask:
    --nonce VALUE          De-duplication nonce for scripted triggers
    -q, --quiet            Suppress everything but the answer
  search:
    -n, --limit N          Maximum hits to print (default 20)
    --json                 Emit hits as JSON
  export:
    -c, --conversation ID  Conversation to export (default: last active)
    -f, --format FMT       txt, md, json, or html
    -o, --output DIR       Output directory

Environment:
  HERBIE_API_URL, HERBIE_WORDPRESS_URL, HERBIE_TOKEN, HERBIE_THEME
`)
}
