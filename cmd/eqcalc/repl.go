package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"eqcalc/pkg/calc"
	"eqcalc/pkg/runtime"
)

func (a *app) runRepl() int {
	cfg, ok := a.loadConfig()
	if !ok {
		return 1
	}
	ev, ok := a.newSession(cfg)
	if !ok {
		return 1
	}
	histPath := resolveHistoryPath(cfg)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		line, err := ln.Prompt(cfg.Prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(a.stdout)
			return 0
		}
		if err != nil {
			fmt.Fprintf(a.stderr, "read input: %v\n", err)
			return 1
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		ln.AppendHistory(line)
		if quit := a.handleReplLine(ev, line); quit {
			return 0
		}
	}
}

// handleReplLine runs one REPL line and reports whether the session should end.
func (a *app) handleReplLine(ev *calc.Evaluator, line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, ":") {
		name, err := ev.Evaluate(line)
		if err != nil {
			fmt.Fprintln(a.stderr, calc.Describe(line, err))
			return false
		}
		value, _ := ev.Value(name)
		fmt.Fprintln(a.stdout, runtime.FormatBinding(name, value))
		return false
	}

	fields := strings.Fields(trimmed)
	switch fields[0] {
	case ":quit", ":q":
		return true
	case ":vars":
		printBindings(a.stdout, ev.Variables())
	case ":get":
		if len(fields) != 2 {
			fmt.Fprintln(a.stderr, "usage: :get <name>")
			return false
		}
		value, ok := ev.Value(fields[1])
		if !ok {
			fmt.Fprintf(a.stderr, "undefined variable '%s'\n", fields[1])
			return false
		}
		fmt.Fprintln(a.stdout, runtime.FormatBinding(fields[1], value))
	case ":unset":
		if len(fields) < 2 {
			fmt.Fprintln(a.stderr, "usage: :unset <name> [name ...]")
			return false
		}
		for _, name := range fields[1:] {
			ev.Unset(name)
			fmt.Fprintln(a.stdout, runtime.FormatBinding(name, nil))
		}
	case ":help":
		fmt.Fprintln(a.stdout, "Commands: :vars, :get <name>, :unset <name>, :quit")
	default:
		fmt.Fprintf(a.stderr, "unknown command %q. Type :help for commands.\n", fields[0])
	}
	return false
}
