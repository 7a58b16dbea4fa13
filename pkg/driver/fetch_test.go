package driver

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func initGitRepo(t *testing.T, dir string) string {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == filepath.Join(dir, ".git") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		_, err = worktree.Add(filepath.ToSlash(rel))
		return err
	}); err != nil {
		t.Fatalf("stage files: %v", err)
	}
	hash, err := worktree.Commit("init", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "eqcalc",
			Email: "eqcalc@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return hash.String()
}

func TestResolveScriptLocal(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Path = filepath.Join(dir, ConfigFileName)
	cfg.Scripts["rates"] = &ScriptSpec{Name: "rates", Path: "scripts/rates.calc"}

	path, err := ResolveScript(cfg, "rates", nil)
	if err != nil {
		t.Fatalf("ResolveScript returned error: %v", err)
	}
	if want := filepath.Join(dir, "scripts", "rates.calc"); path != want {
		t.Fatalf("ResolveScript = %q, want %q", path, want)
	}
}

func TestResolveScriptUnknown(t *testing.T) {
	_, err := ResolveScript(DefaultConfig(), "missing", nil)
	if !errors.Is(err, ErrScriptNotFound) {
		t.Fatalf("expected ErrScriptNotFound, got %v", err)
	}
}

func TestResolveScriptGitRev(t *testing.T) {
	root := t.TempDir()
	repo := filepath.Join(root, "repo")
	writeFile(t, filepath.Join(repo, "defs", "base.calc"), "one = 1\nbig = 800000000000000000000 + one")
	rev := initGitRepo(t, repo)

	cfg := DefaultConfig()
	cfg.Scripts["base"] = &ScriptSpec{Name: "base", Git: repo, Rev: rev, Path: "defs/base.calc"}
	cacheDir := filepath.Join(root, "cache")
	fetcher := NewGitFetcher(cacheDir)

	path, err := ResolveScript(cfg, "base", fetcher)
	if err != nil {
		t.Fatalf("ResolveScript returned error: %v", err)
	}
	want := filepath.Join(cacheDir, "scripts", "base", rev, "defs", "base.calc")
	if path != want {
		t.Fatalf("ResolveScript = %q, want %q", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read checkout: %v", err)
	}
	if !strings.Contains(string(data), "800000000000000000000") {
		t.Fatalf("unexpected script contents %q", data)
	}

	// A pinned rev is served from the cache on the second resolve.
	if err := os.RemoveAll(repo); err != nil {
		t.Fatalf("remove repo: %v", err)
	}
	again, err := ResolveScript(cfg, "base", fetcher)
	if err != nil || again != want {
		t.Fatalf("cached ResolveScript = (%q, %v)", again, err)
	}
}

func TestGitFetcherBranch(t *testing.T) {
	root := t.TempDir()
	repo := filepath.Join(root, "repo")
	writeFile(t, filepath.Join(repo, "s.calc"), "x = 5")
	rev := initGitRepo(t, repo)

	fetcher := NewGitFetcher(filepath.Join(root, "cache"))
	dir, commit, err := fetcher.Checkout(&ScriptSpec{Name: "s", Git: repo, Branch: "master", Path: "s.calc"})
	if err != nil {
		t.Fatalf("Checkout returned error: %v", err)
	}
	if commit != rev {
		t.Fatalf("commit = %q, want %q", commit, rev)
	}
	if filepath.Base(dir) != sanitizePathSegment("master@"+rev) {
		t.Fatalf("checkout dir = %q", dir)
	}
	if _, err := os.Stat(filepath.Join(dir, "s.calc")); err != nil {
		t.Fatalf("expected checked out script: %v", err)
	}
}

func TestResolveScriptRejectsEscapingPath(t *testing.T) {
	root := t.TempDir()
	repo := filepath.Join(root, "repo")
	writeFile(t, filepath.Join(repo, "s.calc"), "x = 5")
	rev := initGitRepo(t, repo)

	cfg := DefaultConfig()
	cfg.Scripts["evil"] = &ScriptSpec{Name: "evil", Git: repo, Rev: rev, Path: "../../outside.calc"}
	_, err := ResolveScript(cfg, "evil", NewGitFetcher(filepath.Join(root, "cache")))
	if err == nil || !strings.Contains(err.Error(), "escapes") {
		t.Fatalf("expected escape error, got %v", err)
	}
}

func TestNilGitFetcher(t *testing.T) {
	var fetcher *GitFetcher
	if _, _, err := fetcher.Checkout(&ScriptSpec{Git: "x", Rev: "y"}); err == nil {
		t.Fatalf("expected error from nil fetcher")
	}
	if NewGitFetcher("") != nil {
		t.Fatalf("expected nil fetcher for empty cache dir")
	}
}
