package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/incomegrid/internal/config"
	"github.com/specialistvlad/incomegrid/internal/fsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

const testManifest = `
runner "csv_table" {
  lifecycle { on_run = "OnRunCSVTable" }
  input "path" { type = string }
  input "delimiter" {
    type    = string
    default = ","
  }
  output "header" { type = list(string) }
}

runner "island_bars" {
  lifecycle { on_run = "OnRunIslandBars" }
  uses "income" { runner_type = "csv_table" }
  uses "repo" { asset_type = "git_repository" }
  output "chart" { type = object({ path = string, bytes = number }) }
}

asset "git_repository" {
  lifecycle {
    create  = "CreateGitRepository"
    destroy = "DestroyGitRepository"
  }
  input "path" {
    type    = string
    default = "."
  }
}
`

const testGrid = `
locals {
  year   = 2023
  island = "Gran Canaria"
}

resource "git_repository" "data" {}

step "csv_table" "renta" {
  depends_on = ["git_repository.data"]
  arguments {
    path = "data/renta.csv"
  }
}

step "island_bars" "img4" {
  uses {
    income = step.csv_table.renta
  }
}
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoader_Load_MergesSourcesAndFiles(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	gridPath := writeFile(t, dir, "grid.hcl", testGrid)
	sources := []config.Source{{Name: "manifest.hcl", Body: []byte(testManifest)}}

	// --- Act ---
	model, converter, err := NewLoader().Load(context.Background(), sources, gridPath)

	// --- Assert ---
	require.NoError(t, err)
	require.NotNil(t, converter)

	require.Contains(t, model.Runners, "csv_table")
	csv := model.Runners["csv_table"]
	assert.Equal(t, "OnRunCSVTable", csv.Lifecycle.OnRun)
	assert.Equal(t, cty.String, csv.Inputs["path"].Type)
	assert.False(t, csv.Inputs["path"].Optional)
	require.NotNil(t, csv.Inputs["delimiter"].Default)
	assert.Equal(t, cty.StringVal(","), *csv.Inputs["delimiter"].Default)
	assert.Equal(t, cty.List(cty.String), csv.Outputs["header"].Type)

	bars := model.Runners["island_bars"]
	assert.Equal(t, "csv_table", bars.Uses["income"].RunnerType)
	assert.Equal(t, "git_repository", bars.Uses["repo"].AssetType)
	assert.Equal(t, cty.Object(map[string]cty.Type{"path": cty.String, "bytes": cty.Number}), bars.Outputs["chart"].Type)

	require.Contains(t, model.Assets, "git_repository")
	assert.Equal(t, "CreateGitRepository", model.Assets["git_repository"].Lifecycle.Create)

	require.Len(t, model.Grid.Steps, 2)
	require.Len(t, model.Grid.Resources, 1)
	assert.Equal(t, []string{"git_repository.data"}, model.Grid.Steps[0].DependsOn)
	assert.Contains(t, model.Grid.Steps[1].Uses, "income")
	assert.True(t, model.Grid.Locals["year"].Equals(cty.NumberIntVal(2023)).True())
	assert.Equal(t, "Gran Canaria", model.Grid.Locals["island"].AsString())
}

func TestLoader_Load_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "syntax error",
			body:    `step "print" "a" {`,
			wantErr: "failed to parse",
		},
		{
			name:    "unknown block",
			body:    `pipeline "x" {}`,
			wantErr: "failed to decode",
		},
		{
			name: "uses without kind",
			body: `runner "x" {
  lifecycle { on_run = "X" }
  uses "a" {}
}`,
			wantErr: "exactly one of asset_type or runner_type",
		},
		{
			name: "unknown type keyword",
			body: `runner "x" {
  lifecycle { on_run = "X" }
  input "a" { type = strng }
}`,
			wantErr: "unknown primitive type",
		},
		{
			name: "local referencing a step",
			body: `locals {
  a = step.x.y.output
}`,
			wantErr: "local \"a\"",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, "main.hcl", tc.body)

			_, _, err := NewLoader().Load(context.Background(), nil, path)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoader_Load_MissingPath(t *testing.T) {
	t.Parallel()

	_, _, err := NewLoader().Load(context.Background(), nil, filepath.Join(t.TempDir(), "nope.hcl"))

	require.ErrorIs(t, err, fsutil.ErrFileNotFound)
}

func TestLoader_Load_DirectoryOverridesEmbeddedManifest(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	writeFile(t, dir, "override.hcl", `
runner "csv_table" {
  lifecycle { on_run = "OnRunCSVTable" }
  input "path" { type = string }
  input "delimiter" {
    type    = string
    default = ";"
  }
}`)
	sources := []config.Source{{Name: "manifest.hcl", Body: []byte(testManifest)}}

	// --- Act ---
	model, _, err := NewLoader().Load(context.Background(), sources, dir)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, cty.StringVal(";"), *model.Runners["csv_table"].Inputs["delimiter"].Default)
}
