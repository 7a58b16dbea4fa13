package main

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"eqcalc/pkg/calc"
	"eqcalc/pkg/driver"
	"eqcalc/pkg/runtime"
)

const cliToolVersion = "eqcalc 0.0.0-dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	return newApp(os.Stdout, os.Stderr).run(args)
}

type app struct {
	stdout io.Writer
	stderr io.Writer
	quiet  bool
}

func newApp(stdout, stderr io.Writer) *app {
	reloadEnv()
	return &app{stdout: stdout, stderr: stderr, quiet: quietFromEnv()}
}

func (a *app) run(args []string) int {
	if len(args) == 0 {
		printUsage(a.stderr)
		return 1
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage(a.stdout)
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(a.stdout, cliToolVersion)
		return 0
	case "eval":
		return a.runEval(args[1:])
	case "vars":
		return a.runVars(args[1:])
	case "run":
		return a.runScript(args[1:])
	case "repl":
		if len(args) > 1 {
			fmt.Fprintf(a.stderr, "eqcalc repl does not take arguments (received %s)\n", strings.Join(args[1:], " "))
			return 1
		}
		return a.runRepl()
	default:
		return a.runScript(args)
	}
}

// newSession builds an evaluator seeded with the config's definitions.
func (a *app) newSession(cfg *driver.Config) (*calc.Evaluator, bool) {
	ev := calc.New()
	if err := driver.ApplyDefinitions(ev, cfg); err != nil {
		a.reportError(err)
		return nil, false
	}
	return ev, true
}

func (a *app) runEval(statements []string) int {
	if len(statements) == 0 {
		fmt.Fprintln(a.stderr, "eqcalc eval requires at least one statement")
		return 1
	}
	cfg, ok := a.loadConfig()
	if !ok {
		return 1
	}
	ev, ok := a.newSession(cfg)
	if !ok {
		return 1
	}
	for _, stmt := range statements {
		name, err := ev.Evaluate(stmt)
		if err != nil {
			fmt.Fprintln(a.stderr, calc.Describe(stmt, err))
			return 1
		}
		value, _ := ev.Value(name)
		a.echo(name, value)
	}
	return 0
}

func (a *app) runVars(statements []string) int {
	cfg, ok := a.loadConfig()
	if !ok {
		return 1
	}
	ev, ok := a.newSession(cfg)
	if !ok {
		return 1
	}
	for _, stmt := range statements {
		if _, err := ev.Evaluate(stmt); err != nil {
			fmt.Fprintln(a.stderr, calc.Describe(stmt, err))
			return 1
		}
	}
	printBindings(a.stdout, ev.Variables())
	return 0
}

func (a *app) runScript(args []string) int {
	watch := false
	var targets []string
	for _, arg := range args {
		switch arg {
		case "--watch", "-w":
			watch = true
		default:
			targets = append(targets, arg)
		}
	}
	if len(targets) != 1 {
		fmt.Fprintln(a.stderr, "eqcalc run requires exactly one script file or configured script name")
		return 1
	}

	cfg, ok := a.loadConfig()
	if !ok {
		return 1
	}
	path, isGit, err := a.resolveTarget(cfg, targets[0])
	if err != nil {
		fmt.Fprintf(a.stderr, "failed to resolve script: %v\n", err)
		return 1
	}

	if !watch {
		return a.executeScript(cfg, path)
	}
	if isGit {
		fmt.Fprintln(a.stderr, "--watch applies only to local scripts")
		return 1
	}
	a.executeScript(cfg, path)
	if err := watchScript(path, nil, func() {
		fmt.Fprintf(a.stdout, "---- %s changed ----\n", path)
		a.executeScript(cfg, path)
	}); err != nil {
		fmt.Fprintf(a.stderr, "%v\n", err)
		return 1
	}
	return 0
}

func (a *app) resolveTarget(cfg *driver.Config, target string) (string, bool, error) {
	spec, ok := cfg.FindScript(target)
	if !ok {
		return target, false, nil
	}
	var fetcher *driver.GitFetcher
	if spec.IsGit() {
		home, err := resolveCalcHome()
		if err != nil {
			return "", false, err
		}
		fetcher = driver.NewGitFetcher(home)
	}
	path, err := driver.ResolveScript(cfg, target, fetcher)
	return path, spec.IsGit(), err
}

// executeScript runs path in a fresh session.
func (a *app) executeScript(cfg *driver.Config, path string) int {
	script, err := driver.LoadScript(path)
	if err != nil {
		fmt.Fprintf(a.stderr, "failed to load script: %v\n", err)
		return 1
	}
	ev, ok := a.newSession(cfg)
	if !ok {
		return 1
	}
	if err := driver.RunScript(ev, script, a.echo); err != nil {
		a.reportError(err)
		return 1
	}
	return 0
}

func (a *app) echo(name string, value *big.Int) {
	if a.quiet {
		return
	}
	fmt.Fprintln(a.stdout, runtime.FormatBinding(name, value))
}

func (a *app) reportError(err error) {
	var serr *driver.ScriptError
	if errors.As(err, &serr) {
		fmt.Fprintln(a.stderr, serr.Describe())
		return
	}
	fmt.Fprintf(a.stderr, "%v\n", err)
}

func printBindings(w io.Writer, bindings []runtime.Binding) {
	for _, b := range bindings {
		fmt.Fprintln(w, b.String())
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  eqcalc eval <statement> [statement ...]")
	fmt.Fprintln(w, "  eqcalc vars [statement ...]")
	fmt.Fprintln(w, "  eqcalc run [--watch] <file|script>")
	fmt.Fprintln(w, "  eqcalc <file|script>")
	fmt.Fprintln(w, "  eqcalc repl")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Statements have the form: name = term { + term }")
}
