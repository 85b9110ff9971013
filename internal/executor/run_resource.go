package executor

import (
	"context"
	"fmt"
	"reflect"

	"github.com/specialistvlad/incomegrid/internal/ctxlog"
	"github.com/specialistvlad/incomegrid/internal/dag"
)

// runResourceNode handles the creation of a stateful resource and schedules
// its destruction for the end of the run.
func (e *Executor) runResourceNode(ctx context.Context, node *dag.Node) error {
	ctx, logger := ctxlog.With(ctx, "resource", node.ID)
	logger.Info("▶️ Creating resource")

	assetType := node.ResourceConfig.AssetType
	assetDef, ok := e.registry.AssetDefinitionRegistry[assetType]
	if !ok {
		return fmt.Errorf("unknown asset type '%s'", assetType)
	}

	createHandler, ok := e.registry.AssetHandlerRegistry[assetDef.Lifecycle.Create]
	if !ok || createHandler.CreateFn == nil {
		return fmt.Errorf("create handler '%s' not registered", assetDef.Lifecycle.Create)
	}
	destroyHandler, ok := e.registry.AssetHandlerRegistry[assetDef.Lifecycle.Destroy]
	if !ok || destroyHandler.DestroyFn == nil {
		return fmt.Errorf("destroy handler '%s' not registered", assetDef.Lifecycle.Destroy)
	}

	var inputStruct any
	if createHandler.NewInput != nil {
		inputStruct = createHandler.NewInput()
	}
	if inputStruct != nil {
		evalCtx := e.buildEvalContext(ctx, node)
		if err := e.converter.DecodeBody(ctx, inputStruct, node.ResourceConfig.Arguments, assetDef.Inputs, evalCtx); err != nil {
			return fmt.Errorf("failed to decode arguments for resource %s: %w", node.ID, err)
		}
	}

	instance, err := callAssetCreate(createHandler.CreateFn, ctx, inputStruct)
	if err != nil {
		return err
	}

	node.Output = instance
	e.pushCleanup(func() {
		logger.Info("🔥 Destroying resource")
		results := reflect.ValueOf(destroyHandler.DestroyFn).Call([]reflect.Value{argValue(reflect.TypeOf(destroyHandler.DestroyFn).In(0), instance)})
		if len(results) > 0 {
			if errVal, ok := results[len(results)-1].Interface().(error); ok && errVal != nil {
				logger.Error("Resource destroy failed.", "error", errVal)
			}
		}
	})

	logger.Info("✅ Resource created")
	return nil
}
