// Package csvtable provides the csv_table runner, which loads a delimited
// file as-is for downstream steps to consume through `uses`.
package csvtable

import (
	"context"
	_ "embed"
	"fmt"
	"unicode/utf8"

	"github.com/specialistvlad/incomegrid/internal/config"
	"github.com/specialistvlad/incomegrid/internal/ctxlog"
	"github.com/specialistvlad/incomegrid/internal/dataset"
	"github.com/specialistvlad/incomegrid/internal/registry"
)

//go:embed manifest.hcl
var manifest []byte

// Module implements the registry.Module interface for this package.
type Module struct{}

// Manifest returns the embedded HCL manifest.
func (m *Module) Manifest() config.Source {
	return config.Source{Name: "csvtable/manifest.hcl", Body: manifest}
}

// Input defines the arguments for the csv_table runner.
type Input struct {
	Path      string `bggo:"path"`
	Delimiter string `bggo:"delimiter"`
}

// OnRunCSVTable loads the table. The returned *dataset.Table is what
// dependent steps receive.
func OnRunCSVTable(ctx context.Context, _ any, input *Input) (*dataset.Table, error) {
	if utf8.RuneCountInString(input.Delimiter) != 1 {
		return nil, fmt.Errorf("delimiter must be a single character, got %q", input.Delimiter)
	}
	delim, _ := utf8.DecodeRuneInString(input.Delimiter)

	table, err := dataset.Load(input.Path, delim)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Info("Loaded table.", "path", input.Path, "columns", len(table.Header), "rows", table.Len())
	return table, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("OnRunCSVTable", &registry.RegisteredRunner{
		NewInput: func() any { return new(Input) },
		Fn:       OnRunCSVTable,
	})
}
