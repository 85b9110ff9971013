package registry

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/specialistvlad/incomegrid/internal/config"
	"github.com/specialistvlad/incomegrid/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ValidateRegistry performs a strict parity check between manifests and Go code.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for runnerType, def := range r.DefinitionRegistry {
		if def.Lifecycle == nil || def.Lifecycle.OnRun == "" {
			errs = append(errs, fmt.Sprintf("runner '%s': manifest has no lifecycle.on_run handler", runnerType))
			continue
		}
		handler, ok := r.HandlerRegistry[def.Lifecycle.OnRun]
		if !ok {
			errs = append(errs, fmt.Sprintf("runner '%s': handler '%s' is not registered", runnerType, def.Lifecycle.OnRun))
			continue
		}
		if handler.Fn == nil {
			errs = append(errs, fmt.Sprintf("runner '%s': handler '%s' has no function", runnerType, def.Lifecycle.OnRun))
			continue
		}

		errs = append(errs, checkInputs(ctx, "runner", runnerType, handler.NewInput, def.Inputs)...)
		errs = append(errs, checkUses(runnerType, handler.NewDeps, def.Uses)...)
	}

	for assetType, def := range r.AssetDefinitionRegistry {
		if def.Lifecycle == nil {
			errs = append(errs, fmt.Sprintf("asset '%s': manifest has no lifecycle block", assetType))
			continue
		}
		create, ok := r.AssetHandlerRegistry[def.Lifecycle.Create]
		if !ok || create.CreateFn == nil {
			errs = append(errs, fmt.Sprintf("asset '%s': create handler '%s' is not registered", assetType, def.Lifecycle.Create))
			continue
		}
		if destroy, ok := r.AssetHandlerRegistry[def.Lifecycle.Destroy]; !ok || destroy.DestroyFn == nil {
			errs = append(errs, fmt.Sprintf("asset '%s': destroy handler '%s' is not registered", assetType, def.Lifecycle.Destroy))
		}
		errs = append(errs, checkInputs(ctx, "asset", assetType, create.NewInput, def.Inputs)...)
	}

	if len(errs) > 0 {
		sort.Strings(errs)
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	logger.Debug("Registry validation passed.", "runners", len(r.DefinitionRegistry), "assets", len(r.AssetDefinitionRegistry))
	return nil
}

// taggedFields returns the exported struct fields of the value produced by
// newFn, keyed by their `bggo` tag name.
func taggedFields(newFn func() any) (map[string]reflect.StructField, bool) {
	if newFn == nil {
		return nil, false
	}
	v := newFn()
	if v == nil {
		return nil, false
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, false
	}

	fields := make(map[string]reflect.StructField)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		tagName := strings.Split(field.Tag.Get("bggo"), ",")[0]
		if tagName != "" && tagName != "-" {
			fields[tagName] = field
		}
	}
	return fields, true
}

func checkInputs(ctx context.Context, kind, name string, newInput func() any, defs map[string]*config.InputDefinition) []string {
	var errs []string
	goInputs, ok := taggedFields(newInput)
	if !ok {
		if len(defs) > 0 {
			errs = append(errs, fmt.Sprintf("%s '%s': manifest declares inputs, but Go handler has no input struct", kind, name))
		}
		return errs
	}

	for field := range goInputs {
		if _, ok := defs[field]; !ok {
			errs = append(errs, fmt.Sprintf("%s '%s': Go struct has field for input '%s' which is not declared in manifest", kind, name, field))
		}
	}

	for inputName, inputDef := range defs {
		goField, ok := goInputs[inputName]
		if !ok {
			errs = append(errs, fmt.Sprintf("%s '%s': manifest declares input '%s' which is not found in Go struct", kind, name, inputName))
			continue
		}

		if inputDef.Type.Equals(cty.DynamicPseudoType) {
			ctxlog.FromContext(ctx).Warn("Manifest input has 'type = any', which disables static type checking.", kind, name, "input", inputName)
			continue
		}

		goFieldType, err := gocty.ImpliedType(reflect.Zero(goField.Type).Interface())
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s '%s', input '%s': could not imply cty type from Go field type %s: %v", kind, name, inputName, goField.Type, err))
			continue
		}
		if !inputDef.Type.Equals(goFieldType) {
			errs = append(errs, fmt.Sprintf("%s '%s', input '%s': type mismatch. Manifest requires '%s' but Go struct field '%s' provides '%s'",
				kind, name, inputName, inputDef.Type.FriendlyName(), goField.Name, goFieldType.FriendlyName()))
		}
	}
	return errs
}

func checkUses(runnerType string, newDeps func() any, uses map[string]*config.UsesDefinition) []string {
	var errs []string
	goDeps, ok := taggedFields(newDeps)
	if !ok {
		if len(uses) > 0 {
			errs = append(errs, fmt.Sprintf("runner '%s': manifest declares uses, but Go handler has no deps struct", runnerType))
		}
		return errs
	}

	for field := range goDeps {
		if _, ok := uses[field]; !ok {
			errs = append(errs, fmt.Sprintf("runner '%s': Go deps struct has field '%s' which is not declared in manifest uses", runnerType, field))
		}
	}
	for local := range uses {
		if _, ok := goDeps[local]; !ok {
			errs = append(errs, fmt.Sprintf("runner '%s': manifest uses '%s' which is not found in Go deps struct", runnerType, local))
		}
	}
	return errs
}
