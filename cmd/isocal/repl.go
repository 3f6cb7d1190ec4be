package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"isocal/internal/repl"
)

func runREPL(args []string) error {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	// A script piped on stdin runs as a whole file.
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		thread := repl.NewThread("exec stdin", os.Stdout)
		if _, err := repl.Exec(thread, "<stdin>", os.Stdin); err != nil {
			repl.PrintError(os.Stderr, err)
			return errors.New("script failed")
		}
		return nil
	}

	fmt.Printf("isocal %s, the iso module is predeclared. Ctrl-D exits.\n", version)
	return repl.Run(repl.NewThread("REPL", os.Stdout), repl.Globals())
}
