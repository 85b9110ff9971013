package executor

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/incomegrid/internal/ctxlog"
	"github.com/specialistvlad/incomegrid/internal/dag"
	"github.com/zclconf/go-cty/cty"
)

// buildEvalContext creates the HCL evaluation context for a node. It exposes
// `local.<name>` and `step.<type>.<name>.output` for the node's completed
// step dependencies; the graph builder guarantees every referenced step is a
// dependency.
func (e *Executor) buildEvalContext(ctx context.Context, node *dag.Node) *hcl.EvalContext {
	logger := ctxlog.FromContext(ctx)
	vars := make(map[string]cty.Value)

	stepOutputsByRunner := make(map[string]map[string]cty.Value)
	for _, depNode := range node.Deps {
		if depNode.Type != dag.StepNode || depNode.GetState() != dag.Done {
			continue
		}
		output := depNode.CtyOutput
		if output == cty.NilVal {
			output = cty.NullVal(cty.DynamicPseudoType)
		}
		runnerType := depNode.StepConfig.RunnerType
		if _, ok := stepOutputsByRunner[runnerType]; !ok {
			stepOutputsByRunner[runnerType] = make(map[string]cty.Value)
		}
		stepOutputsByRunner[runnerType][depNode.Name] = cty.ObjectVal(map[string]cty.Value{
			"output": output,
		})
	}

	steps := make(map[string]cty.Value, len(stepOutputsByRunner))
	for runnerType, instances := range stepOutputsByRunner {
		steps[runnerType] = cty.ObjectVal(instances)
	}
	vars["step"] = cty.ObjectVal(steps)

	if len(e.Graph.Locals) > 0 {
		vars["local"] = cty.ObjectVal(e.Graph.Locals)
	} else {
		vars["local"] = cty.EmptyObjectVal
	}

	logger.Debug("Built HCL evaluation context.", "node", node.ID, "step_types", len(steps), "locals", len(e.Graph.Locals))
	return &hcl.EvalContext{Variables: vars}
}
