package dag

import (
	"context"
	"testing"

	"github.com/specialistvlad/incomegrid/internal/config"
	"github.com/specialistvlad/incomegrid/internal/hcl"
	"github.com/specialistvlad/incomegrid/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifests = `
runner "load" {
  lifecycle { on_run = "OnRunLoad" }
  input "path" { type = string }
  output "path" { type = string }
}

runner "render" {
  lifecycle { on_run = "OnRunRender" }
  uses "table" { runner_type = "load" }
  input "title" {
    type    = string
    default = ""
  }
  output "path" { type = string }
}

runner "publish" {
  lifecycle { on_run = "OnRunPublish" }
  uses "repo" { asset_type = "repo" }
}

asset "repo" {
  lifecycle {
    create  = "CreateRepo"
    destroy = "DestroyRepo"
  }
}
`

func buildFromHCL(t *testing.T, grid string) (*Graph, error) {
	t.Helper()
	ctx := context.Background()
	model, _, err := hcl.NewLoader().Load(ctx, []config.Source{
		{Name: "manifests.hcl", Body: []byte(manifests)},
		{Name: "grid.hcl", Body: []byte(grid)},
	})
	require.NoError(t, err)

	reg := registry.New()
	reg.PopulateDefinitionsFromModel(model)
	return Build(ctx, model, reg)
}

func TestBuild_PipelineShape(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	grid := `
locals { title = "Income" }

resource "repo" "data" {}

step "load" "renta" {
  depends_on = ["repo.data"]
  arguments { path = "renta.csv" }
}

step "render" "img1" {
  uses { table = step.load.renta }
  arguments { title = local.title }
}

step "render" "img2" {
  uses { table = step.load.renta }
  arguments { title = "source: ${step.load.renta.output.path}" }
}

step "publish" "push" {
  uses       { repo = resource.repo.data }
  depends_on = ["render.img1", "render.img2"]
}
`

	// --- Act ---
	graph, err := buildFromHCL(t, grid)

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, graph.Nodes, 5)

	load := graph.Nodes["step.load.renta"]
	require.NotNil(t, load)
	assert.Contains(t, load.Deps, "resource.repo.data")
	assert.Len(t, load.Dependents, 2)

	img2 := graph.Nodes["step.render.img2"]
	assert.Contains(t, img2.Deps, "step.load.renta")
	assert.EqualValues(t, 1, img2.DepCount())

	push := graph.Nodes["step.publish.push"]
	assert.Len(t, push.Deps, 3)
	assert.EqualValues(t, 3, push.DepCount())
	assert.EqualValues(t, 0, graph.Nodes["resource.repo.data"].DepCount())
}

func TestBuild_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		grid    string
		wantErr string
	}{
		{
			name:    "unknown runner",
			grid:    `step "plot" "a" {}`,
			wantErr: "unknown runner type 'plot'",
		},
		{
			name:    "unknown asset",
			grid:    `resource "bucket" "a" {}`,
			wantErr: "unknown asset type 'bucket'",
		},
		{
			name: "duplicate step",
			grid: `
step "load" "a" {
  arguments { path = "x" }
}
step "load" "a" {
  arguments { path = "y" }
}`,
			wantErr: "duplicate definition of 'step.load.a'",
		},
		{
			name:    "missing depends_on target",
			grid:    `step "load" "a" { depends_on = ["load.b"] }`,
			wantErr: "non-existent identifier 'load.b'",
		},
		{
			name: "missing implicit target",
			grid: `
step "load" "a" {
  arguments { path = step.load.b.output.path }
}`,
			wantErr: "references non-existent 'step.load.b'",
		},
		{
			name: "undeclared output",
			grid: `
step "load" "a" {
  arguments { path = "x" }
}
step "load" "b" {
  arguments { path = step.load.a.output.rows }
}`,
			wantErr: `undeclared output "rows"`,
		},
		{
			name: "undefined local",
			grid: `
step "load" "a" {
  arguments { path = local.nope }
}`,
			wantErr: `undefined local "nope"`,
		},
		{
			name: "uses wrong kind",
			grid: `
resource "repo" "r" {}
step "render" "a" {
  uses { table = resource.repo.r }
}`,
			wantErr: "requires a step of type 'load'",
		},
		{
			name:    "missing uses",
			grid:    `step "render" "a" {}`,
			wantErr: `missing required uses "table"`,
		},
		{
			name: "undeclared uses",
			grid: `
step "load" "a" {
  arguments { path = "x" }
}
step "load" "b" {
  uses { table = step.load.a }
  arguments { path = "y" }
}`,
			wantErr: `does not declare uses "table"`,
		},
		{
			name: "cycle",
			grid: `
step "load" "a" {
  depends_on = ["load.b"]
  arguments { path = "x" }
}
step "load" "b" {
  depends_on = ["load.a"]
  arguments { path = "y" }
}`,
			wantErr: "cycle detected",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := buildFromHCL(t, tc.grid)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
