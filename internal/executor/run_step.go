package executor

import (
	"context"
	"fmt"

	"github.com/specialistvlad/incomegrid/internal/ctxlog"
	"github.com/specialistvlad/incomegrid/internal/dag"
	"github.com/zclconf/go-cty/cty"
)

// runStepNode decodes a step's arguments, injects its `uses` dependencies,
// calls the runner handler and stores both native and cty outputs.
func (e *Executor) runStepNode(ctx context.Context, node *dag.Node) error {
	ctx, logger := ctxlog.With(ctx, "step", node.ID)
	logger.Info("▶️ Starting step")

	runnerDef, ok := e.registry.DefinitionRegistry[node.StepConfig.RunnerType]
	if !ok {
		return fmt.Errorf("unknown runner type '%s'", node.StepConfig.RunnerType)
	}
	handlerName := runnerDef.Lifecycle.OnRun
	handler, ok := e.registry.HandlerRegistry[handlerName]
	if !ok {
		return fmt.Errorf("handler '%s' not registered", handlerName)
	}

	var inputStruct any
	if handler.NewInput != nil {
		inputStruct = handler.NewInput()
	}
	if inputStruct != nil {
		evalCtx := e.buildEvalContext(ctx, node)
		if err := e.converter.DecodeBody(ctx, inputStruct, node.StepConfig.Arguments, runnerDef.Inputs, evalCtx); err != nil {
			return fmt.Errorf("failed to decode arguments for step %s: %w", node.ID, err)
		}
	}
	logger.Debug("Step input decoded.", "data", formatValueForLogs(inputStruct))

	depsStruct, err := e.buildDepsStruct(ctx, node, handler.NewDeps)
	if err != nil {
		return err
	}

	logger.Debug("Calling step run handler.", "handler", handlerName)
	output, err := callHandler(handler.Fn, ctx, depsStruct, inputStruct)
	if err != nil {
		return err
	}

	ctyOutput, err := e.converter.ToCtyValue(output)
	if err != nil {
		if len(runnerDef.Outputs) > 0 {
			return fmt.Errorf("failed to convert output of step %s: %w", node.ID, err)
		}
		logger.Debug("Step output has no cty form; it is only available through uses.", "type", fmt.Sprintf("%T", output))
		ctyOutput = cty.NilVal
	}

	node.Output = output
	node.CtyOutput = ctyOutput
	logger.Debug("Step output stored.", "data", formatValueForLogs(ctyOutput))
	logger.Info("✅ Finished step")
	return nil
}
