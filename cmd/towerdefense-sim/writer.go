package main

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"towerdefense-sim/internal/config"
	"towerdefense-sim/internal/sim"
)

// isTerminal reports whether STDOUT is attached to a terminal.
var isTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }

// outputOptions selects the presentation writer.
type outputOptions struct {
	printOnly bool
	tui       bool
	logFile   string
}

// newWriters sets up the writer chain based on flags and env vars. The returned
// cleanup closes every writer holding resources.
func newWriters(c *config.Campaign, opts outputOptions) (sim.StateWriter, func(), error) {
	writer, err := baseWriter(c, opts)
	if err != nil {
		return nil, nil, err
	}
	if opts.logFile == "" {
		return writer, closerFor(writer), nil
	}

	fw, err := sim.NewFileWriter(opts.logFile, opts.logFile+".events", opts.logFile+".entities")
	if err != nil {
		closerFor(writer)()
		return nil, nil, err
	}
	mw := sim.NewMultiWriter(writer, fw)
	return mw, closerFor(mw), nil
}

// baseWriter picks JSON when printing only, the TUI when asked for, GreptimeDB
// when an endpoint is configured and colored STDOUT otherwise.
func baseWriter(c *config.Campaign, opts outputOptions) (sim.StateWriter, error) {
	switch {
	case opts.printOnly:
		return sim.NewJSONStdoutWriter(), nil
	case opts.tui && isTerminal():
		return sim.NewTUIWriter(c), nil
	}
	endpoint := os.Getenv("GREPTIMEDB_ENDPOINT")
	if endpoint == "" {
		return sim.NewColorStdoutWriter(c), nil
	}
	database := os.Getenv("GREPTIMEDB_DATABASE")
	if database == "" {
		database = "public"
	}
	return sim.NewGreptimeDBWriter(endpoint, database)
}

func closerFor(w sim.StateWriter) func() {
	return func() {
		if c, ok := w.(io.Closer); ok {
			if err := c.Close(); err != nil {
				fmt.Fprintln(os.Stderr, "close writer:", err)
			}
		}
	}
}
