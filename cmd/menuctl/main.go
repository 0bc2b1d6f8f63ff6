// Command menuctl manages the menu data directory: it initializes and edits
// the category and dish documents, browses and restores backups, imports
// spreadsheet exports and serves the HTTP API.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/chero-kobuleti/menu/pkg/types"
)

// Exit codes: 1 for errors the user can fix by changing the request, 2 for
// failures of the environment (filesystem, lock, corrupt documents).
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitCode(err)
	}
	return exitSuccess
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, types.ErrIO),
		errors.Is(err, types.ErrLockTimeout),
		errors.Is(err, types.ErrParse):
		return exitSysError
	default:
		return exitUserError
	}
}
