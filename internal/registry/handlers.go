package registry

import (
	"fmt"
	"log/slog"
)

// RegisteredRunner holds the compiled Go parts of a runner's lifecycle function.
//
// Fn must have the shape func(context.Context, *Deps, *Input) (Output, error).
// The output may be any Go value: it is injected as-is into steps that
// `uses` it, and converted to cty for expression references.
type RegisteredRunner struct {
	NewInput func() any
	NewDeps  func() any
	Fn       any
}

// RegisterRunner registers a Go function for a runner's lifecycle event.
func (r *Registry) RegisterRunner(name string, handler *RegisteredRunner) {
	if _, exists := r.HandlerRegistry[name]; exists {
		panic(fmt.Sprintf("runner handler with name '%s' already registered", name))
	}
	slog.Debug("Registering runner handler.", "name", name)
	r.HandlerRegistry[name] = handler
}

// RegisteredAsset holds Go functions for an asset's lifecycle.
//
// CreateFn has the shape func(context.Context, *Input) (Instance, error) and
// DestroyFn func(Instance) error. Create and destroy are registered under
// separate handler names.
type RegisteredAsset struct {
	NewInput  func() any
	CreateFn  any
	DestroyFn any
}

// RegisterAssetHandler registers Go functions for an asset's lifecycle events.
func (r *Registry) RegisterAssetHandler(name string, handler *RegisteredAsset) {
	if _, exists := r.AssetHandlerRegistry[name]; exists {
		panic(fmt.Sprintf("asset handler with name '%s' already registered", name))
	}
	slog.Debug("Registering asset handler.", "name", name)
	r.AssetHandlerRegistry[name] = handler
}
