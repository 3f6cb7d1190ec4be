package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"isocal/calendar"
	"isocal/diff"
	appLog "isocal/internal/log"
	"isocal/iso8601"
)

const version = "0.1.0"

const usage = `usage: isocal <command> [flags] [args]

commands:
  parse TEXT...                 parse ISO-8601 values and print them as JSON
  localtime [-offset Z] [-us N] TS
                                convert a Unix timestamp to calendar fields
  diff FROM TO                  print the precise difference between two dates
  events [-config PATH]         fetch and expand the configured ICS feeds
  serve [-config PATH] [-listen ADDR]
                                run the HTTP API
  repl                          start the Starlark console with iso predeclared
`

var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	var err error
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "parse":
		err = runParse(rest, stdout)
	case "localtime":
		err = runLocalTime(rest, stdout)
	case "diff":
		err = runDiff(rest, stdout)
	case "events":
		err = runEvents(rest, stdout)
	case "serve":
		err = runServe(rest)
	case "repl":
		err = runREPL(rest)
	case "version":
		fmt.Fprintln(stdout, "isocal", version)
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usage)
	default:
		fmt.Fprintf(stderr, "isocal: unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		fmt.Fprint(stderr, usage)
		return 2
	default:
		appLog.Error("isocal "+cmd+" failed", err)
		return 1
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runParse(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("parse", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errUsage
	}

	var failed error
	for _, text := range fs.Args() {
		res, err := iso8601.Parse(text)
		if err != nil {
			failed = errors.Join(failed, fmt.Errorf("%q: %w", text, err))
			continue
		}
		if err := writeJSON(stdout, res); err != nil {
			return err
		}
	}
	return failed
}

func runLocalTime(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("localtime", flag.ContinueOnError)
	offsetFlag := fs.String("offset", "0", "Offset in seconds east of UTC, or a designator such as +09:00")
	us := fs.Int("us", 0, "Microsecond carried into the result")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errUsage
	}

	ts, err := strconv.ParseFloat(fs.Arg(0), 64)
	if err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	offset, err := parseOffset(*offsetFlag)
	if err != nil {
		return err
	}
	if err := calendar.CheckLocalTime(ts, offset, *us); err != nil {
		return err
	}
	return writeJSON(stdout, calendar.LocalTime(ts, offset, *us))
}

// parseOffset accepts seconds or an ISO-8601 zone designator.
func parseOffset(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err == nil {
		return n, nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("offset: %w", err)
	}
	z, err := iso8601.ParseZone(s)
	if err != nil {
		return 0, fmt.Errorf("offset: %w", err)
	}
	return z.Offset, nil
}

type diffOutput struct {
	diff.PreciseDiff
	Duration string `json:"duration"`
	InWeeks  int    `json:"in_weeks"`
	InMonths int    `json:"in_months"`
}

func runDiff(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("diff", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errUsage
	}

	var values [2]iso8601.DateTime
	for i, text := range fs.Args() {
		dt, err := iso8601.ParseDateTime(text)
		if err != nil {
			return fmt.Errorf("%q: %w", text, err)
		}
		if !dt.HasDate {
			return fmt.Errorf("%q: a date is required", text)
		}
		values[i] = dt
	}

	d := diff.Precise(values[0], values[1])
	return writeJSON(stdout, diffOutput{
		PreciseDiff: d,
		Duration:    d.String(),
		InWeeks:     d.InWeeks(),
		InMonths:    d.InMonths(),
	})
}
