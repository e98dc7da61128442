package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context) error
	Search(ctx context.Context, term string) error
	Page(ctx context.Context, arg string) error
	PageSize(ctx context.Context, arg string) error
	Lookup(ctx context.Context, dni string) error
	AddRecord(ctx context.Context) error
	EditRecord(ctx context.Context) error
	DeleteRecord(ctx context.Context) error
	Tokens(ctx context.Context) error
	AddToken(ctx context.Context) error
	DeleteToken(ctx context.Context) error
	ToggleToken(ctx context.Context) error
	ShowConfig(ctx context.Context) error
	SetToken(ctx context.Context) error
	Backup(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the DNI Admin CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           — show available commands
//	  - login          — authenticate
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - help           — show available commands
//	  - (l)ist         — reload and print the current page
//	  - search [term]  — set the search term (empty clears it)
//	  - page <n>       — jump to page n
//	  - pagesize <n>   — change the page size
//	  - lookup <dni>   — look up a document number
//	  - add | edit | delete        — record mutations (interactive prompts)
//	  - tokens | tokenadd | tokendel | tokentoggle — API token management
//	  - config | settoken          — integration-token configuration
//	  - backup         — download a database backup
//	  - logout         — log out
//	  - exit | quit    — leave the program
//
// Any errors returned by command handlers are ignored here; handlers surface
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("dni> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist, search, page, pagesize, lookup, add, edit, delete, tokens, tokenadd, tokendel, tokentoggle, config, settoken, backup, logout, exit")
			} else {
				printlnFn("Available commands: login, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "search":
			_ = a.Search(ctx, strings.Join(args, " "))

		case "page":
			if len(args) == 0 {
				printlnFn("Usage: page <n>")
				continue
			}
			_ = a.Page(ctx, args[0])

		case "pagesize":
			if len(args) == 0 {
				printlnFn("Usage: pagesize <n>")
				continue
			}
			_ = a.PageSize(ctx, args[0])

		case "lookup":
			if len(args) == 0 {
				printlnFn("Usage: lookup <dni>")
				continue
			}
			_ = a.Lookup(ctx, args[0])

		case "add":
			_ = a.AddRecord(ctx)

		case "edit":
			_ = a.EditRecord(ctx)

		case "delete":
			_ = a.DeleteRecord(ctx)

		case "tokens":
			_ = a.Tokens(ctx)

		case "tokenadd":
			_ = a.AddToken(ctx)

		case "tokendel":
			_ = a.DeleteToken(ctx)

		case "tokentoggle":
			_ = a.ToggleToken(ctx)

		case "config":
			_ = a.ShowConfig(ctx)

		case "settoken":
			_ = a.SetToken(ctx)

		case "backup":
			_ = a.Backup(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
