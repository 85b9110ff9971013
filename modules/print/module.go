// Package print provides the print runner, which writes a sorted listing of
// its input map to stdout.
package print

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/specialistvlad/incomegrid/internal/config"
	"github.com/specialistvlad/incomegrid/internal/ctxlog"
	"github.com/specialistvlad/incomegrid/internal/registry"
)

//go:embed manifest.hcl
var manifest []byte

// Module implements the registry.Module interface for this package.
type Module struct {
	// Out receives the listing; nil means stdout.
	Out io.Writer
}

// Manifest returns the embedded HCL manifest.
func (m *Module) Manifest() config.Source {
	return config.Source{Name: "print/manifest.hcl", Body: manifest}
}

// Input defines the arguments for the print runner.
type Input struct {
	Value map[string]string `bggo:"input"`
}

func (m *Module) onRunPrint(ctx context.Context, _ any, input *Input) (any, error) {
	ctxlog.FromContext(ctx).Info("Printing input")
	out := m.Out
	if out == nil {
		out = os.Stdout
	}

	if input.Value == nil {
		fmt.Fprintln(out, "      (null)")
		return nil, nil
	}

	keys := make([]string, 0, len(input.Value))
	for k := range input.Value {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(out, "      %s = %q\n", k, input.Value[k])
	}
	return nil, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("OnRunPrint", &registry.RegisteredRunner{
		NewInput: func() any { return new(Input) },
		Fn:       m.onRunPrint,
	})
}
