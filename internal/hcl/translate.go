package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/incomegrid/internal/config"
	"github.com/zclconf/go-cty/cty"
)

// translateInputDefinition processes a single input block, handling its
// default value and type parsing.
func translateInputDefinition(ctx context.Context, in *inputBlock, ownerKind, ownerName string) (*config.InputDefinition, error) {
	var defaultVal *cty.Value
	var isOptional bool

	if in.Default != nil {
		val, diags := in.Default.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("invalid default value for input '%s' in %s '%s': %w", in.Name, ownerKind, ownerName, diags)
		}
		if !val.IsNull() {
			defaultVal = &val
			isOptional = true
		}
	}

	parsedType, err := typeExprToCtyType(ctx, in.Type)
	if err != nil {
		return nil, fmt.Errorf("in %s '%s', input '%s': %w", ownerKind, ownerName, in.Name, err)
	}

	return &config.InputDefinition{
		Name:        in.Name,
		Type:        parsedType,
		Description: in.Description,
		Default:     defaultVal,
		Optional:    isOptional,
	}, nil
}

func translateOutputs(ctx context.Context, outs []*outputBlock, ownerKind, ownerName string) (map[string]*config.OutputDefinition, error) {
	result := make(map[string]*config.OutputDefinition, len(outs))
	for _, out := range outs {
		parsedType, err := typeExprToCtyType(ctx, out.Type)
		if err != nil {
			return nil, fmt.Errorf("in %s '%s', output '%s': %w", ownerKind, ownerName, out.Name, err)
		}
		result[out.Name] = &config.OutputDefinition{
			Name:        out.Name,
			Type:        parsedType,
			Description: out.Description,
		}
	}
	return result, nil
}

// translateStep converts the HCL-specific step schema into the agnostic model.
func translateStep(s *stepBlock) (*config.Step, error) {
	args, err := extractBodyAttributes(s.Arguments)
	if err != nil {
		return nil, fmt.Errorf("step %s.%s arguments: %w", s.RunnerType, s.Name, err)
	}
	uses, err := extractBodyAttributes(s.Uses)
	if err != nil {
		return nil, fmt.Errorf("step %s.%s uses: %w", s.RunnerType, s.Name, err)
	}
	return &config.Step{
		RunnerType: s.RunnerType,
		Name:       s.Name,
		Arguments:  args,
		Uses:       uses,
		DependsOn:  s.DependsOn,
	}, nil
}

// translateResource converts the HCL-specific resource schema into the agnostic model.
func translateResource(s *resourceBlock) (*config.Resource, error) {
	args, err := extractBodyAttributes(s.Arguments)
	if err != nil {
		return nil, fmt.Errorf("resource %s.%s arguments: %w", s.AssetType, s.Name, err)
	}
	return &config.Resource{
		AssetType: s.AssetType,
		Name:      s.Name,
		Arguments: args,
		DependsOn: s.DependsOn,
	}, nil
}

// translateRunnerDefinition converts the HCL-specific runner schema into the agnostic model.
func translateRunnerDefinition(ctx context.Context, s *runnerBlock) (*config.RunnerDefinition, error) {
	r := &config.RunnerDefinition{
		Type:        s.Type,
		Description: s.Description,
		Inputs:      make(map[string]*config.InputDefinition),
		Uses:        make(map[string]*config.UsesDefinition),
	}
	if s.Lifecycle != nil {
		r.Lifecycle = &config.Lifecycle{OnRun: s.Lifecycle.OnRun}
	}

	for _, in := range s.Inputs {
		translatedInput, err := translateInputDefinition(ctx, in, "runner", s.Type)
		if err != nil {
			return nil, err
		}
		r.Inputs[in.Name] = translatedInput
	}

	outputs, err := translateOutputs(ctx, s.Outputs, "runner", s.Type)
	if err != nil {
		return nil, err
	}
	r.Outputs = outputs

	for _, use := range s.Uses {
		if (use.AssetType == "") == (use.RunnerType == "") {
			return nil, fmt.Errorf("in runner '%s', uses '%s': exactly one of asset_type or runner_type must be set", s.Type, use.LocalName)
		}
		r.Uses[use.LocalName] = &config.UsesDefinition{
			LocalName:  use.LocalName,
			AssetType:  use.AssetType,
			RunnerType: use.RunnerType,
		}
	}
	return r, nil
}

// translateAssetDefinition converts the HCL-specific asset schema into the agnostic model.
func translateAssetDefinition(ctx context.Context, s *assetBlock) (*config.AssetDefinition, error) {
	a := &config.AssetDefinition{
		Type:        s.Type,
		Description: s.Description,
		Inputs:      make(map[string]*config.InputDefinition),
	}
	if s.Lifecycle != nil {
		a.Lifecycle = &config.AssetLifecycle{Create: s.Lifecycle.Create, Destroy: s.Lifecycle.Destroy}
	}

	for _, in := range s.Inputs {
		translatedInput, err := translateInputDefinition(ctx, in, "asset", s.Type)
		if err != nil {
			return nil, err
		}
		a.Inputs[in.Name] = translatedInput
	}

	outputs, err := translateOutputs(ctx, s.Outputs, "asset", s.Type)
	if err != nil {
		return nil, err
	}
	a.Outputs = outputs
	return a, nil
}

// translateLocals evaluates a locals block. Locals are constants: they may
// not reference steps, resources or each other.
func translateLocals(block *bodyBlock, into map[string]cty.Value) error {
	attrs, err := extractBodyAttributes(block)
	if err != nil {
		return err
	}
	for name, expr := range attrs {
		if _, exists := into[name]; exists {
			return fmt.Errorf("duplicate local %q", name)
		}
		val, diags := expr.Value(nil)
		if diags.HasErrors() {
			return fmt.Errorf("local %q: %w", name, diags)
		}
		into[name] = val
	}
	return nil
}

// extractBodyAttributes converts a block body into a map of expressions.
func extractBodyAttributes(block *bodyBlock) (map[string]hcl.Expression, error) {
	if block == nil || block.Body == nil {
		return nil, nil
	}
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	exprMap := make(map[string]hcl.Expression, len(attrs))
	for name, attr := range attrs {
		exprMap[name] = attr.Expr
	}
	return exprMap, nil
}
