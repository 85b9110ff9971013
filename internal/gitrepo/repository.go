// Package gitrepo drives the git command line against a local working copy:
// pulling upstream changes and publishing generated files.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/incomegrid/internal/ctxlog"
)

// DefaultCommitMessage is used by Publish when no message is given.
const DefaultCommitMessage = "Update income distribution charts"

// ErrRepositoryNotFound is returned when the working copy path does not exist.
var ErrRepositoryNotFound = errors.New("repository not found")

// CommandError reports a git sub-command that exited unsuccessfully.
type CommandError struct {
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s failed with exit code %d", strings.Join(e.Args, " "), e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

// Repository is a handle on a local git working copy.
type Repository struct {
	Path   string
	runner CommandRunner
}

// Option configures a Repository.
type Option func(*Repository)

// WithRunner replaces the subprocess runner.
func WithRunner(r CommandRunner) Option {
	return func(repo *Repository) { repo.runner = r }
}

// Open returns a handle for the working copy at path.
func Open(path string, opts ...Option) (*Repository, error) {
	repo := &Repository{Path: path, runner: ExecRunner{}}
	for _, opt := range opts {
		opt(repo)
	}
	if err := repo.checkExists(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *Repository) checkExists() error {
	info, err := os.Stat(r.Path)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrRepositoryNotFound, r.Path)
	}
	return nil
}

// Pull fetches and merges upstream changes and returns git's output.
func (r *Repository) Pull(ctx context.Context) (string, error) {
	if err := r.checkExists(); err != nil {
		return "", err
	}
	return r.git(ctx, "pull")
}

// Publish stages paths (the whole tree when none are given), commits them
// with message and pushes. Paths are relative to the current directory, not
// to the repository. The first failing sub-command aborts the sequence.
func (r *Repository) Publish(ctx context.Context, message string, paths ...string) (string, error) {
	if err := r.checkExists(); err != nil {
		return "", err
	}
	if message == "" {
		message = DefaultCommitMessage
	}
	if len(paths) == 0 {
		paths = []string{"."}
	} else {
		var err error
		if paths, err = r.relativePaths(paths); err != nil {
			return "", err
		}
	}

	var out strings.Builder
	for _, args := range [][]string{
		append([]string{"add", "--"}, paths...),
		{"commit", "-m", message},
		{"push"},
	} {
		stdout, err := r.git(ctx, args...)
		out.WriteString(stdout)
		if err != nil {
			return out.String(), err
		}
	}
	return out.String(), nil
}

// relativePaths rewrites paths so git resolves them against the working copy.
func (r *Repository) relativePaths(paths []string) ([]string, error) {
	root, err := filepath.Abs(r.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve repository path %s: %w", r.Path, err)
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, fmt.Errorf("%s is outside repository %s", p, r.Path)
		}
		out = append(out, rel)
	}
	return out, nil
}

func (r *Repository) git(ctx context.Context, args ...string) (string, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Running git.", "path", r.Path, "args", args)

	full := append([]string{"-C", r.Path}, args...)
	stdout, stderr, code, err := r.runner.Run(ctx, "git", full...)
	if err != nil {
		return string(stdout), &CommandError{
			Args:     args,
			ExitCode: code,
			Stdout:   string(stdout),
			Stderr:   string(stderr),
			Err:      err,
		}
	}
	logger.Debug("git finished.", "args", args, "stdout", strings.TrimSpace(string(stdout)))
	return string(stdout), nil
}
