package driver

import (
	"bufio"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"eqcalc/pkg/calc"
)

// Script is an ordered list of statements read from a source.
type Script struct {
	Source     string
	Statements []Statement
}

// Statement is one non-blank, non-comment line of a script.
type Statement struct {
	Line int
	Text string
}

// ScriptError reports the statement that stopped a script.
type ScriptError struct {
	Source string
	Line   int
	Input  string
	Err    error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Source, e.Line, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

// Describe renders the failing statement with a caret under the error position.
func (e *ScriptError) Describe() string {
	return fmt.Sprintf("%s:%d: %s", e.Source, e.Line, calc.Describe(e.Input, e.Err))
}

// Reporter receives the outcome of every successful statement. value is nil
// when the statement removed the binding.
type Reporter func(name string, value *big.Int)

// LoadScript reads a script from disk.
func LoadScript(path string) (*Script, error) {
	if path == "" {
		return nil, fmt.Errorf("script: empty path")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("script: open %s: %w", path, err)
	}
	defer file.Close()
	return ParseScript(filepath.Clean(path), file)
}

// ParseScript splits r into statements. Blank lines and lines whose first
// non-space character is '#' are skipped; line numbers are 1-based.
func ParseScript(source string, r io.Reader) (*Script, error) {
	script := &Script{Source: source}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		trimmed := strings.TrimSpace(text)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		script.Statements = append(script.Statements, Statement{Line: line, Text: text})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("script: read %s: %w", source, err)
	}
	return script, nil
}

// RunScript evaluates the statements in order and stops at the first failure,
// which is returned as a *ScriptError. report may be nil.
func RunScript(ev *calc.Evaluator, script *Script, report Reporter) error {
	if ev == nil || script == nil {
		return fmt.Errorf("script: nil evaluator or script")
	}
	for _, stmt := range script.Statements {
		name, err := ev.Evaluate(stmt.Text)
		if err != nil {
			return &ScriptError{Source: script.Source, Line: stmt.Line, Input: stmt.Text, Err: err}
		}
		if report != nil {
			value, _ := ev.Value(name)
			report(name, value)
		}
	}
	return nil
}

// ApplyDefinitions evaluates the config's definitions into ev.
func ApplyDefinitions(ev *calc.Evaluator, cfg *Config) error {
	if cfg == nil || len(cfg.Definitions) == 0 {
		return nil
	}
	source := "definitions"
	if cfg.Path != "" {
		source = cfg.Path
	}
	script := &Script{Source: source}
	for i, def := range cfg.Definitions {
		script.Statements = append(script.Statements, Statement{Line: i + 1, Text: def})
	}
	return RunScript(ev, script, nil)
}
