package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/incomegrid/internal/app"
	"github.com/specialistvlad/incomegrid/internal/hcl"
	"github.com/specialistvlad/incomegrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Validation(t *testing.T) {
	t.Parallel()

	_, err := app.NewConfig(app.Config{WorkerCount: 1})
	require.ErrorContains(t, err, "GridPath")

	_, err = app.NewConfig(app.Config{GridPath: "g.hcl"})
	require.ErrorContains(t, err, "worker count")

	cfg, err := app.NewConfig(app.Config{GridPath: "g.hcl", WorkerCount: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.WorkerCount)
}

func TestNewApp_PanicsOnMissingGrid(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	cfg := &app.Config{GridPath: filepath.Join(t.TempDir(), "absent.hcl"), WorkerCount: 1}

	// --- Act & Assert ---
	assert.PanicsWithError(t, "failed to load configuration: file not found: "+cfg.GridPath, func() {
		app.NewApp(&testutil.SafeBuffer{}, cfg, hcl.NewLoader())
	})
}

func TestNewApp_RegistersCoreModules(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	grid := filepath.Join(t.TempDir(), "empty.hcl")
	require.NoError(t, os.WriteFile(grid, nil, 0o644))

	// --- Act ---
	a := app.NewApp(&testutil.SafeBuffer{}, &app.Config{GridPath: grid, WorkerCount: 1}, hcl.NewLoader())

	// --- Assert ---
	reg := a.Registry()
	for _, name := range []string{
		"OnRunGitPull", "OnRunGitPush", "OnRunCSVTable", "OnRunGeoJSON",
		"OnRunIncomeTrend", "OnRunIncomeBars", "OnRunIncomeMap", "OnRunIslandBars", "OnRunPrint",
	} {
		assert.Contains(t, reg.HandlerRegistry, name)
	}
	assert.Contains(t, reg.AssetHandlerRegistry, "CreateGitRepository")
	assert.Contains(t, reg.DefinitionRegistry, "income_map")
}

func TestRun_EmptyGrid(t *testing.T) {
	t.Parallel()

	// --- Act ---
	result := testutil.RunGrid(context.Background(), t, "", app.Config{})

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Contains(t, result.LogOutput, "No nodes found in graph")
}

func TestRun_WritesMetricsOnFailure(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	grid := `
step "csv_table" "missing" {
  arguments {
    path = "/definitely/not/here.csv"
  }
}
`
	metricsFile := filepath.Join(t.TempDir(), "metrics", "run.prom")

	// --- Act ---
	result := testutil.RunGrid(context.Background(), t, grid, app.Config{MetricsFile: metricsFile})

	// --- Assert ---
	require.ErrorContains(t, result.Err, "execution failed for step.csv_table.missing")
	body, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(body), "incomegrid_run_failed 1")
	assert.Contains(t, string(body), `incomegrid_node_executions_total{kind="step",outcome="failed",type="csv_table"} 1`)
}

func TestRun_WritesMetricsOnGraphBuildFailure(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	grid := `
step "print" "orphan" {
  depends_on = ["print.ghost"]

  arguments {
    input = {}
  }
}
`
	metricsFile := filepath.Join(t.TempDir(), "run.prom")

	// --- Act ---
	result := testutil.RunGrid(context.Background(), t, grid, app.Config{MetricsFile: metricsFile})

	// --- Assert ---
	require.ErrorContains(t, result.Err, "failed to build dependency graph")
	require.ErrorContains(t, result.Err, "print.ghost")
	body, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(body), "incomegrid_run_failed 1")
	assert.NotContains(t, string(body), "incomegrid_node_executions_total{")
}
