package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ErrScriptNotFound is returned when a name matches no configured script.
var ErrScriptNotFound = errors.New("script not found")

// GitFetcher checks out git-hosted scripts into a local cache.
type GitFetcher struct {
	CacheDir string
}

// NewGitFetcher returns a fetcher rooted at cacheDir, or nil when cacheDir is empty.
func NewGitFetcher(cacheDir string) *GitFetcher {
	if cacheDir == "" {
		return nil
	}
	return &GitFetcher{CacheDir: cacheDir}
}

// Checkout makes the revision named by spec available on disk and returns the
// checkout directory and the resolved commit hash. Existing checkouts of a
// pinned rev are reused.
func (g *GitFetcher) Checkout(spec *ScriptSpec) (string, string, error) {
	if g == nil {
		return "", "", errors.New("git fetcher unavailable")
	}
	if spec == nil || strings.TrimSpace(spec.Git) == "" {
		return "", "", fmt.Errorf("script: git URL required")
	}
	url := strings.TrimSpace(spec.Git)
	baseDir := filepath.Join(g.CacheDir, "scripts", sanitizePathSegment(spec.Name))
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", err
	}

	revision, descriptor, err := gitRevisionFromSpec(spec)
	if err != nil {
		return "", "", err
	}

	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		existing := filepath.Join(baseDir, sanitizePathSegment(rev))
		if _, err := os.Stat(existing); err == nil {
			return existing, rev, nil
		}
	}

	tmpDir, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return "", "", err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", "", err
	}

	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{URL: url})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git clone %s: %w", url, err)
	}

	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("resolve revision %s: %w", revision, err)
	}

	version := descriptor
	if spec.Rev == "" {
		version = fmt.Sprintf("%s@%s", descriptor, hash.String())
	}
	targetDir := filepath.Join(baseDir, sanitizePathSegment(version))
	if _, err := os.Stat(targetDir); err == nil {
		_ = os.RemoveAll(tmpDir)
		return targetDir, hash.String(), nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{
		Hash:  *hash,
		Force: true,
	}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git checkout %s: %w", revision, err)
	}

	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	return targetDir, hash.String(), nil
}

// ResolveScript maps a configured script name to a file on disk, checking out
// git scripts through fetcher. Local paths are relative to the config file.
func ResolveScript(cfg *Config, name string, fetcher *GitFetcher) (string, error) {
	spec, ok := cfg.FindScript(name)
	if !ok {
		return "", fmt.Errorf("script %q: %w", name, ErrScriptNotFound)
	}
	if !spec.IsGit() {
		if filepath.IsAbs(spec.Path) {
			return filepath.Clean(spec.Path), nil
		}
		return filepath.Join(cfg.Dir(), filepath.FromSlash(spec.Path)), nil
	}
	dir, _, err := fetcher.Checkout(spec)
	if err != nil {
		return "", fmt.Errorf("script %q: %w", name, err)
	}
	path := filepath.Join(dir, filepath.FromSlash(spec.Path))
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("script %q: path %q escapes the repository", name, spec.Path)
	}
	return path, nil
}

func gitRevisionFromSpec(spec *ScriptSpec) (plumbing.Revision, string, error) {
	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		return plumbing.Revision(rev), rev, nil
	}
	if tag := strings.TrimSpace(spec.Tag); tag != "" {
		return plumbing.Revision("refs/tags/" + tag), tag, nil
	}
	if branch := strings.TrimSpace(spec.Branch); branch != "" {
		return plumbing.Revision("refs/remotes/origin/" + branch), branch, nil
	}
	return "", "", fmt.Errorf("git scripts require rev, tag, or branch")
}

func sanitizePathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "head"
	}
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
