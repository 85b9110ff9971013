package testutil

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// GitRunner is a gitrepo.CommandRunner that records git invocations instead
// of running them. A call whose subcommand equals FailOn exits with 128.
type GitRunner struct {
	FailOn string

	mu    sync.Mutex
	calls [][]string
}

// Run records the call and reports success unless the subcommand is FailOn.
func (g *GitRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, int, error) {
	g.mu.Lock()
	g.calls = append(g.calls, append([]string{name}, args...))
	g.mu.Unlock()

	// args are "-C <path> <subcommand> ..."
	if len(args) > 2 && args[2] == g.FailOn {
		return nil, []byte("fatal: " + g.FailOn + " rejected"), 128, errors.New("exit status 128")
	}
	return []byte("ok " + strings.Join(args, " ")), nil, 0, nil
}

// Subcommands returns the git subcommands in the order they ran.
func (g *GitRunner) Subcommands() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, len(g.calls))
	for _, c := range g.calls {
		if len(c) > 3 {
			out = append(out, c[3])
		}
	}
	return out
}
