// Package geojson provides the geojson runner.
package geojson

import (
	"context"
	_ "embed"

	"github.com/specialistvlad/incomegrid/internal/config"
	"github.com/specialistvlad/incomegrid/internal/ctxlog"
	"github.com/specialistvlad/incomegrid/internal/geo"
	"github.com/specialistvlad/incomegrid/internal/registry"
)

//go:embed manifest.hcl
var manifest []byte

// Module implements the registry.Module interface for this package.
type Module struct{}

// Manifest returns the embedded HCL manifest.
func (m *Module) Manifest() config.Source {
	return config.Source{Name: "geojson/manifest.hcl", Body: manifest}
}

// Input defines the arguments for the geojson runner.
type Input struct {
	Path         string `bggo:"path"`
	CodeProperty string `bggo:"code_property"`
	NameProperty string `bggo:"name_property"`
}

// OnRunGeoJSON loads the boundaries file.
func OnRunGeoJSON(ctx context.Context, _ any, input *Input) (*geo.Collection, error) {
	c, err := geo.Load(input.Path, input.CodeProperty, input.NameProperty)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Info("Loaded boundaries.", "path", input.Path, "features", c.FeatureCount)
	return c, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("OnRunGeoJSON", &registry.RegisteredRunner{
		NewInput: func() any { return new(Input) },
		Fn:       OnRunGeoJSON,
	})
}
