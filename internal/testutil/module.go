package testutil

import (
	"context"
	"testing"

	"github.com/specialistvlad/incomegrid/internal/hcl"
	"github.com/specialistvlad/incomegrid/internal/registry"
	"github.com/stretchr/testify/require"
)

// RequireManifestParity loads the embedded manifests of modules and fails
// the test unless every lifecycle handler, input and uses entry matches the
// registered Go handlers.
func RequireManifestParity(t *testing.T, modules ...registry.Module) *registry.Registry {
	t.Helper()
	model, _, err := hcl.NewLoader().Load(context.Background(), registry.Manifests(modules))
	require.NoError(t, err)

	reg := registry.New()
	for _, m := range modules {
		m.Register(reg)
	}
	reg.PopulateDefinitionsFromModel(model)
	require.NoError(t, reg.ValidateRegistry(context.Background()))
	return reg
}
