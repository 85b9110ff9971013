package executor

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/incomegrid/internal/ctxlog"
	"github.com/specialistvlad/incomegrid/internal/dag"
)

// buildDepsStruct populates the `deps` struct for a step handler from the
// native outputs of the nodes named in its `uses` block: resource instances
// and loaded datasets alike.
func (e *Executor) buildDepsStruct(ctx context.Context, node *dag.Node, newDeps func() any) (any, error) {
	if newDeps == nil {
		return nil, nil
	}
	depsStruct := newDeps()
	if depsStruct == nil {
		return nil, nil
	}

	depsValue := reflect.ValueOf(depsStruct)
	if depsValue.Kind() != reflect.Ptr || depsValue.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("deps for step %s must be a pointer to a struct, got %T", node.ID, depsStruct)
	}
	depsValue = depsValue.Elem()
	depsType := depsValue.Type()

	for i := 0; i < depsType.NumField(); i++ {
		field := depsType.Field(i)
		lookupKey := strings.Split(field.Tag.Get("bggo"), ",")[0]
		if lookupKey == "" || lookupKey == "-" {
			continue
		}
		fieldLogger := ctxlog.FromContext(ctx).With("go_field", field.Name, "uses", lookupKey)

		expr, ok := node.StepConfig.Uses[lookupKey]
		if !ok {
			return nil, fmt.Errorf("step '%s' has no uses entry for %q", node.ID, lookupKey)
		}
		depID, err := usesTargetID(expr)
		if err != nil {
			return nil, fmt.Errorf("step '%s', uses %q: %w", node.ID, lookupKey, err)
		}
		depNode, ok := node.Deps[depID]
		if !ok || depNode.GetState() != dag.Done {
			return nil, fmt.Errorf("step '%s' requires '%s', which has not completed", node.ID, depID)
		}

		instance := depNode.Output
		if instance == nil {
			return nil, fmt.Errorf("step '%s' requires '%s', which produced no value", node.ID, depID)
		}
		instanceType := reflect.TypeOf(instance)
		if !instanceType.AssignableTo(field.Type) {
			err := fmt.Errorf("type mismatch for '%s': value of type %v is not assignable to field of type %v", lookupKey, instanceType, field.Type)
			fieldLogger.Error("Dependency injection failed.", "error", err)
			return nil, err
		}

		fieldLogger.Debug("Injecting dependency.", "from", depID)
		depsValue.Field(i).Set(reflect.ValueOf(instance))
	}
	return depsStruct, nil
}

// usesTargetID converts a `uses` reference into its node ID.
func usesTargetID(expr hcl.Expression) (string, error) {
	traversal, diags := hcl.AbsTraversalForExpr(expr)
	if diags.HasErrors() || len(traversal) != 3 {
		return "", fmt.Errorf("expected a direct step or resource reference")
	}
	typeAttr, ok1 := traversal[1].(hcl.TraverseAttr)
	nameAttr, ok2 := traversal[2].(hcl.TraverseAttr)
	if !ok1 || !ok2 {
		return "", fmt.Errorf("expected a direct step or resource reference")
	}
	return fmt.Sprintf("%s.%s.%s", traversal.RootName(), typeAttr.Name, nameAttr.Name), nil
}
