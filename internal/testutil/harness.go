// Package testutil provides helpers for grid-level integration tests: a
// harness that loads and runs HCL grids through the real application, a
// recording git runner and a small data repository fixture.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/incomegrid/internal/app"
	"github.com/specialistvlad/incomegrid/internal/hcl"
	"github.com/specialistvlad/incomegrid/internal/registry"
	"github.com/stretchr/testify/require"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
}

// RunGrid writes grid to a temp directory and runs it with the given
// modules, or the core modules when none are given. cfg fields other than
// GridPath are honoured; zero values fall back to debug text logging and
// two workers.
func RunGrid(ctx context.Context, t *testing.T, grid string, cfg app.Config, modules ...registry.Module) *HarnessResult {
	t.Helper()

	dir := t.TempDir()
	WriteFiles(t, dir, map[string]string{"main.hcl": grid})

	cfg.GridPath = filepath.Join(dir, "main.hcl")
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	conf, err := app.NewConfig(cfg)
	require.NoError(t, err)

	logs := &SafeBuffer{}
	a := app.NewApp(logs, conf, hcl.NewLoader(), modules...)
	runErr := a.Run(ctx)

	return &HarnessResult{LogOutput: logs.String(), Err: runErr, App: a}
}
