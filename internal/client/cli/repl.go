// Package cli implements the interactive dashboard and the guided kiosk
// capture flow.
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
	List(ctx context.Context) error
	Toggle(ctx context.Context, arg string) error
	SelectAll(ctx context.Context) error
	ClearSelection(ctx context.Context) error
	ExportPDF(ctx context.Context) error
	ExportDocumentPDF(ctx context.Context) error
	PrintSelected(ctx context.Context) error
	PrintOne(ctx context.Context, arg string) error
	DeleteOne(ctx context.Context, arg string) error
	DeleteSelected(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the dashboard.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Commands:
//
//   - help               — show available commands
//   - l | list           — list photos, newest first
//   - select <n>         — toggle selection of photo number n
//   - all                — select every photo
//   - none               — clear the selection
//   - pdf                — export the selected photos as a PDF
//   - docpdf             — export a verification sheet from two selected photos
//   - print              — open the grouped print view for the selection
//   - printone <n>       — open the single-photo print view
//   - delete <n>         — delete photo number n (with confirmation)
//   - delete             — delete the selection (with confirmation)
//   - exit | quit        — leave the program
//
// Any errors returned by command handlers are printed and swallowed; the
// loop itself never stops on a handler error.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("docsnap> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		arg := ""
		if len(parts) > 1 {
			arg = parts[1]
		}

		var err error
		switch cmd {
		case "help":
			printlnFn("Available commands: (l)ist, select <n>, all, none, pdf, docpdf, print, printone <n>, delete [n], exit")

		case "l", "list":
			err = a.List(ctx)

		case "select":
			if arg == "" {
				printlnFn("Usage: select <n>")
				continue
			}
			err = a.Toggle(ctx, arg)

		case "all":
			err = a.SelectAll(ctx)

		case "none":
			err = a.ClearSelection(ctx)

		case "pdf":
			err = a.ExportPDF(ctx)

		case "docpdf":
			err = a.ExportDocumentPDF(ctx)

		case "print":
			err = a.PrintSelected(ctx)

		case "printone":
			if arg == "" {
				printlnFn("Usage: printone <n>")
				continue
			}
			err = a.PrintOne(ctx, arg)

		case "delete":
			if arg == "" {
				err = a.DeleteSelected(ctx)
			} else {
				err = a.DeleteOne(ctx, arg)
			}

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}
}
