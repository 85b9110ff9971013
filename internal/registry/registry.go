package registry

import (
	"github.com/specialistvlad/incomegrid/internal/config"
)

// Module is the interface that all core modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// ManifestProvider is implemented by modules that ship their HCL manifest
// inside the binary.
type ManifestProvider interface {
	Manifest() config.Source
}

// Registry holds all the registered handlers and definitions for a single
// application instance.
type Registry struct {
	HandlerRegistry         map[string]*RegisteredRunner
	AssetHandlerRegistry    map[string]*RegisteredAsset
	DefinitionRegistry      map[string]*config.RunnerDefinition
	AssetDefinitionRegistry map[string]*config.AssetDefinition
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		HandlerRegistry:         make(map[string]*RegisteredRunner),
		AssetHandlerRegistry:    make(map[string]*RegisteredAsset),
		DefinitionRegistry:      make(map[string]*config.RunnerDefinition),
		AssetDefinitionRegistry: make(map[string]*config.AssetDefinition),
	}
}

// PopulateDefinitionsFromModel copies the loaded module definitions from the
// config model into the registry for easy access during execution.
func (r *Registry) PopulateDefinitionsFromModel(model *config.Model) {
	for key, val := range model.Runners {
		r.DefinitionRegistry[key] = val
	}
	for key, val := range model.Assets {
		r.AssetDefinitionRegistry[key] = val
	}
}

// Manifests collects the embedded manifests of the given modules.
func Manifests(modules []Module) []config.Source {
	var sources []config.Source
	for _, m := range modules {
		if p, ok := m.(ManifestProvider); ok {
			sources = append(sources, p.Manifest())
		}
	}
	return sources
}
