package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xyproto/env/v2"

	"eqcalc/pkg/driver"
)

var errConfigNotFound = errors.New("calc.yml not found")

const defaultHistoryFile = ".eqcalc_history"

// loadConfig honours EQCALC_CONFIG, then searches upward from the working
// directory. A missing config yields the defaults.
func (a *app) loadConfig() (*driver.Config, bool) {
	if explicit := strings.TrimSpace(env.Str("EQCALC_CONFIG")); explicit != "" {
		cfg, err := driver.LoadConfig(explicit)
		if err != nil {
			fmt.Fprintf(a.stderr, "failed to load config: %v\n", err)
			return nil, false
		}
		return cfg, true
	}
	cfg, err := loadConfigFrom(".")
	switch {
	case err == nil:
		return cfg, true
	case errors.Is(err, errConfigNotFound):
		return driver.DefaultConfig(), true
	default:
		fmt.Fprintf(a.stderr, "failed to load config: %v\n", err)
		return nil, false
	}
}

func loadConfigFrom(start string) (*driver.Config, error) {
	path, err := findConfig(start)
	if err != nil {
		return nil, err
	}
	return driver.LoadConfig(path)
}

func findConfig(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start directory %q: %w", start, err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	origin := dir
	for {
		candidate := filepath.Join(dir, driver.ConfigFileName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found from %s upwards: %w", driver.ConfigFileName, origin, errConfigNotFound)
		}
		dir = parent
	}
}

// resolveCalcHome returns the cache root for fetched scripts.
func resolveCalcHome() (string, error) {
	if home := strings.TrimSpace(env.Str("EQCALC_HOME")); home != "" {
		abs, err := filepath.Abs(home)
		if err != nil {
			return "", fmt.Errorf("resolve EQCALC_HOME %q: %w", home, err)
		}
		return abs, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(userHome, ".eqcalc"), nil
}

// resolveHistoryPath picks the REPL history file: EQCALC_HISTORY, then the
// config's history entry (relative to the config file), then ~/.eqcalc_history.
func resolveHistoryPath(cfg *driver.Config) string {
	if p := strings.TrimSpace(env.Str("EQCALC_HISTORY")); p != "" {
		return p
	}
	if cfg != nil && cfg.History != "" {
		if filepath.IsAbs(cfg.History) || cfg.Dir() == "" {
			return cfg.History
		}
		return filepath.Join(cfg.Dir(), cfg.History)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultHistoryFile
	}
	return filepath.Join(home, defaultHistoryFile)
}

// reloadEnv refreshes env's cached copy of the process environment.
func reloadEnv() {
	env.Load()
}

func quietFromEnv() bool {
	return env.Bool("EQCALC_QUIET")
}
