package executor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/specialistvlad/incomegrid/internal/config"
	"github.com/specialistvlad/incomegrid/internal/dag"
	"github.com/specialistvlad/incomegrid/internal/hcl"
	"github.com/specialistvlad/incomegrid/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const manifests = `
runner "emit" {
  lifecycle { on_run = "OnRunEmit" }
  input "value" { type = string }
  output "value" { type = string }
}

runner "concat" {
  lifecycle { on_run = "OnRunConcat" }
  uses "source" { runner_type = "emit" }
  input "suffix" {
    type    = string
    default = "!"
  }
  output "value" { type = string }
}

runner "fail" {
  lifecycle { on_run = "OnRunFail" }
}

runner "touch" {
  lifecycle { on_run = "OnRunTouch" }
  uses "box" { asset_type = "box" }
}

asset "box" {
  lifecycle {
    create  = "CreateBox"
    destroy = "DestroyBox"
  }
  input "label" { type = string }
}
`

type emitOutput struct {
	Value string `cty:"value"`
}

type box struct {
	Label string
	mu    sync.Mutex
	Hits  int
}

// fixture is a registry of test runners that records what ran.
type fixture struct {
	mu        sync.Mutex
	ran       []string
	destroyed []string
}

func (f *fixture) record(list *[]string, v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	*list = append(*list, v)
}

func (f *fixture) Register(r *registry.Registry) {
	type emitInput struct {
		Value string `bggo:"value"`
	}
	r.RegisterRunner("OnRunEmit", &registry.RegisteredRunner{
		NewInput: func() any { return new(emitInput) },
		Fn: func(_ context.Context, _ any, in *emitInput) (*emitOutput, error) {
			f.record(&f.ran, "emit:"+in.Value)
			return &emitOutput{Value: in.Value}, nil
		},
	})

	type concatInput struct {
		Suffix string `bggo:"suffix"`
	}
	type concatDeps struct {
		Source *emitOutput `bggo:"source"`
	}
	r.RegisterRunner("OnRunConcat", &registry.RegisteredRunner{
		NewInput: func() any { return new(concatInput) },
		NewDeps:  func() any { return new(concatDeps) },
		Fn: func(_ context.Context, deps *concatDeps, in *concatInput) (*emitOutput, error) {
			out := deps.Source.Value + in.Suffix
			f.record(&f.ran, "concat:"+out)
			return &emitOutput{Value: out}, nil
		},
	})

	r.RegisterRunner("OnRunFail", &registry.RegisteredRunner{
		Fn: func(context.Context, any, any) (any, error) {
			f.record(&f.ran, "fail")
			return nil, errors.New("boom")
		},
	})

	type touchDeps struct {
		Box *box `bggo:"box"`
	}
	r.RegisterRunner("OnRunTouch", &registry.RegisteredRunner{
		NewDeps: func() any { return new(touchDeps) },
		Fn: func(_ context.Context, deps *touchDeps, _ any) (any, error) {
			deps.Box.mu.Lock()
			deps.Box.Hits++
			deps.Box.mu.Unlock()
			f.record(&f.ran, "touch:"+deps.Box.Label)
			return nil, nil
		},
	})

	type boxInput struct {
		Label string `bggo:"label"`
	}
	r.RegisterAssetHandler("CreateBox", &registry.RegisteredAsset{
		NewInput: func() any { return new(boxInput) },
		CreateFn: func(_ context.Context, in *boxInput) (*box, error) {
			return &box{Label: in.Label}, nil
		},
	})
	r.RegisterAssetHandler("DestroyBox", &registry.RegisteredAsset{
		DestroyFn: func(b *box) error {
			f.record(&f.destroyed, b.Label)
			return nil
		},
	})
}

type recordedOutcome struct {
	kind, nodeType, outcome string
}

type fakeRecorder struct {
	mu       sync.Mutex
	outcomes []recordedOutcome
}

func (r *fakeRecorder) ObserveNode(kind, nodeType, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, recordedOutcome{kind, nodeType, outcome})
}

func (r *fakeRecorder) count(outcome string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, o := range r.outcomes {
		if o.outcome == outcome {
			n++
		}
	}
	return n
}

func newExecutor(t *testing.T, grid string, f *fixture, opts ...Option) *Executor {
	t.Helper()
	ctx := context.Background()
	model, converter, err := hcl.NewLoader().Load(ctx, []config.Source{
		{Name: "manifests.hcl", Body: []byte(manifests)},
		{Name: "grid.hcl", Body: []byte(grid)},
	})
	require.NoError(t, err)

	reg := registry.New()
	f.Register(reg)
	reg.PopulateDefinitionsFromModel(model)
	require.NoError(t, reg.ValidateRegistry(ctx))

	graph, err := dag.Build(ctx, model, reg)
	require.NoError(t, err)
	return New(graph, 4, reg, converter, opts...)
}

func TestRun_PassesOutputsAlongTheGraph(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	grid := `
locals { greeting = "hello" }

step "emit" "a" {
  arguments { value = local.greeting }
}

step "concat" "b" {
  uses { source = step.emit.a }
}

step "emit" "c" {
  arguments { value = "${step.concat.b.output.value}?" }
}
`
	f := &fixture{}
	exec := newExecutor(t, grid, f)

	// --- Act ---
	err := exec.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{"emit:hello", "concat:hello!", "emit:hello!?"}, f.ran)

	node := exec.Graph.Nodes["step.emit.c"]
	require.NotNil(t, node)
	assert.Equal(t, dag.Done, node.GetState())
	assert.Equal(t, &emitOutput{Value: "hello!?"}, node.Output)
	assert.Equal(t, "hello!?", node.CtyOutput.GetAttr("value").AsString())
}

func TestRun_FailureSkipsOnlyItsBranch(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	grid := `
step "fail" "broken" {}

step "emit" "downstream" {
  depends_on = ["fail.broken"]
  arguments { value = "never" }
}

step "concat" "further" {
  uses { source = step.emit.downstream }
}

step "emit" "independent" {
  arguments { value = "ok" }
}
`
	f := &fixture{}
	rec := &fakeRecorder{}
	exec := newExecutor(t, grid, f, WithRecorder(rec))

	// --- Act ---
	err := exec.Run(context.Background())

	// --- Assert ---
	require.Error(t, err)
	assert.Contains(t, err.Error(), "execution failed for step.fail.broken")
	assert.Contains(t, err.Error(), "boom")

	assert.ElementsMatch(t, []string{"fail", "emit:ok"}, f.ran)

	for _, id := range []string{"step.emit.downstream", "step.concat.further"} {
		node := exec.Graph.Nodes[id]
		require.NotNil(t, node, id)
		assert.Equal(t, dag.Failed, node.GetState(), id)
		assert.ErrorIs(t, node.Error, ErrSkipped, id)
	}
	assert.Equal(t, dag.Done, exec.Graph.Nodes["step.emit.independent"].GetState())

	assert.Equal(t, 1, rec.count(OutcomeSuccess))
	assert.Equal(t, 1, rec.count(OutcomeFailed))
	assert.Equal(t, 2, rec.count(OutcomeSkipped))
}

func TestRun_ResourcesAreSharedAndDestroyedInReverseOrder(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	grid := `
resource "box" "first" {
  arguments { label = "first" }
}

resource "box" "second" {
  depends_on = ["box.first"]
  arguments { label = "second" }
}

step "touch" "one" {
  uses { box = resource.box.second }
}

step "touch" "two" {
  uses { box = resource.box.second }
}
`
	f := &fixture{}
	exec := newExecutor(t, grid, f)

	// --- Act ---
	err := exec.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"touch:second", "touch:second"}, f.ran)
	assert.Equal(t, []string{"second", "first"}, f.destroyed)

	shared, ok := exec.Graph.Nodes["resource.box.second"].Output.(*box)
	require.True(t, ok)
	assert.Equal(t, 2, shared.Hits)
}

func TestRun_MissingRequiredArgumentFailsNode(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	grid := `
step "emit" "empty" {}
`
	f := &fixture{}
	exec := newExecutor(t, grid, f)

	// --- Act ---
	err := exec.Run(context.Background())

	// --- Assert ---
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing required argument "value"`)
	assert.Empty(t, f.ran)
}

func TestRun_CancelledContextSkipsEverything(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	grid := `
step "emit" "a" {
  arguments { value = "a" }
}

step "concat" "b" {
  uses { source = step.emit.a }
}
`
	f := &fixture{}
	rec := &fakeRecorder{}
	exec := newExecutor(t, grid, f, WithRecorder(rec))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// --- Act ---
	err := exec.Run(ctx)

	// --- Assert ---
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "execution cancelled")
	assert.Empty(t, f.ran)
	assert.Equal(t, 2, rec.count(OutcomeSkipped))
}

func TestInvoke_ConvertsPanicToError(t *testing.T) {
	t.Parallel()

	// --- Act ---
	_, err := callHandler(func(context.Context, any, any) (any, error) {
		panic("kaboom")
	}, context.Background(), nil, nil)

	// --- Assert ---
	require.Error(t, err)
	assert.Contains(t, err.Error(), "handler panicked: kaboom")
}

func TestInvoke_RejectsWrongShape(t *testing.T) {
	t.Parallel()

	_, err := callHandler(func(context.Context) error { return nil }, context.Background(), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must take 3 arguments")
}
