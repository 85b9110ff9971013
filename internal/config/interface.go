package config

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Source is an in-memory configuration file, typically a module manifest
// embedded in the binary.
type Source struct {
	Name string
	Body []byte
}

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load parses the in-memory sources and every configuration file found
	// under paths, translates them into the format-agnostic model, and returns
	// a matching Converter.
	Load(ctx context.Context, sources []Source, paths ...string) (*Model, Converter, error)
}

// Converter is the bridge between raw configuration expressions and the Go
// types used by modules.
type Converter interface {
	// DecodeBody decodes a raw configuration body (e.g., an 'arguments'
	// block) into a target Go struct, applying defaults and validations.
	DecodeBody(
		ctx context.Context,
		inputStruct any,
		args map[string]hcl.Expression,
		defs map[string]*InputDefinition,
		evalCtx *hcl.EvalContext,
	) error

	// ToCtyValue converts a native Go value into its equivalent cty.Value.
	ToCtyValue(v any) (cty.Value, error)
}
