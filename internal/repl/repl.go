// Package repl provides the interactive Starlark console of isocal, with
// the iso module predeclared.
//
// If an input line parses as an expression, it is evaluated and the
// result printed. Otherwise lines are read until the statement is
// complete and then executed for its side effects. Control-C cancels
// the running statement; Control-D exits.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/chzyer/readline"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	appLog "isocal/internal/log"
	"isocal/starlarkiso"
)

// Globals returns a fresh environment holding the iso module.
func Globals() starlark.StringDict {
	return starlark.StringDict{starlarkiso.ModuleName: starlarkiso.Module}
}

// NewThread returns a thread whose print() writes to w.
func NewThread(name string, w io.Writer) *starlark.Thread {
	return &starlark.Thread{
		Name: name,
		Print: func(_ *starlark.Thread, msg string) {
			fmt.Fprintln(w, msg)
		},
	}
}

// lineReader is the part of *readline.Instance used by the loop.
type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

// Run reads, evaluates and prints until end of input on the terminal.
func Run(thread *starlark.Thread, globals starlark.StringDict) error {
	interrupted := make(chan os.Signal, 1)
	signal.Notify(interrupted, os.Interrupt)
	defer signal.Stop(interrupted)

	rl, err := readline.New(">>> ")
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	appLog.Debug("repl started", "thread", thread.Name)
	for {
		err := rep(rl, os.Stdout, os.Stderr, thread, globals, interrupted)
		switch {
		case err == nil:
		case errors.Is(err, readline.ErrInterrupt):
			fmt.Println(err)
		case errors.Is(err, io.EOF):
			fmt.Println()
			return nil
		default:
			return err
		}
	}
}

// rep reads, evaluates, and prints one item. It returns an error only if
// reading failed; Starlark errors are written to errOut.
func rep(rl lineReader, out, errOut io.Writer, thread *starlark.Thread, globals starlark.StringDict, interrupted <-chan os.Signal) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-interrupted:
			cancel()
		case <-ctx.Done():
		}
	}()
	thread.SetLocal("context", ctx)

	eof := false
	rl.SetPrompt(">>> ")
	readLine := func() ([]byte, error) {
		line, err := rl.Readline()
		rl.SetPrompt("... ")
		if err != nil {
			if err == io.EOF {
				eof = true
			}
			return nil, err
		}
		return []byte(line + "\n"), nil
	}

	f, err := syntax.ParseCompoundStmt("<stdin>", readLine)
	if err != nil {
		if eof {
			return io.EOF
		}
		if errors.Is(err, readline.ErrInterrupt) {
			return err
		}
		PrintError(errOut, err)
		return nil
	}

	if expr := soleExpr(f); expr != nil {
		v, err := starlark.EvalExpr(thread, expr, globals)
		if err != nil {
			PrintError(errOut, err)
			return nil
		}
		if v != starlark.None {
			fmt.Fprintln(out, v)
		}
	} else if err := starlark.ExecREPLChunk(f, thread, globals); err != nil {
		PrintError(errOut, err)
	}
	return nil
}

func soleExpr(f *syntax.File) syntax.Expr {
	if len(f.Stmts) == 1 {
		if stmt, ok := f.Stmts[0].(*syntax.ExprStmt); ok {
			return stmt.X
		}
	}
	return nil
}

// Exec runs a whole script read from src, as used when stdin is not a
// terminal.
func Exec(thread *starlark.Thread, filename string, src io.Reader) (starlark.StringDict, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	return starlark.ExecFile(thread, filename, data, Globals())
}

// PrintError writes err to w, or its backtrace if it is a Starlark
// evaluation error.
func PrintError(w io.Writer, err error) {
	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		fmt.Fprintln(w, evalErr.Backtrace())
		return
	}
	fmt.Fprintln(w, err)
}
