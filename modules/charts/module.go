// Package charts provides the four income distribution chart runners.
package charts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/specialistvlad/incomegrid/internal/chart"
	"github.com/specialistvlad/incomegrid/internal/config"
	"github.com/specialistvlad/incomegrid/internal/dataset"
	"github.com/specialistvlad/incomegrid/internal/geo"
	"github.com/specialistvlad/incomegrid/internal/income"
	"github.com/specialistvlad/incomegrid/internal/registry"
)

//go:embed manifest.hcl
var manifest []byte

// Module implements the registry.Module interface for this package.
type Module struct{}

// Manifest returns the embedded HCL manifest.
func (m *Module) Manifest() config.Source {
	return config.Source{Name: "charts/manifest.hcl", Body: manifest}
}

// IncomeDeps is used by the runners that only need the income table.
type IncomeDeps struct {
	Income *dataset.Table `bggo:"income"`
}

// MapDeps is used by income_map.
type MapDeps struct {
	Income     *dataset.Table  `bggo:"income"`
	Boundaries *geo.Collection `bggo:"boundaries"`
}

// IslandDeps is used by island_bars.
type IslandDeps struct {
	Income  *dataset.Table `bggo:"income"`
	Catalog *dataset.Table `bggo:"catalog"`
}

// TerritoryInput defines the arguments of income_trend and income_bars.
type TerritoryInput struct {
	Territory string `bggo:"territory"`
	Title     string `bggo:"title"`
	Output    string `bggo:"output"`
}

// MapInput defines the arguments of income_map.
type MapInput struct {
	Year       int      `bggo:"year"`
	Categories []string `bggo:"categories"`
	Title      string   `bggo:"title"`
	Output     string   `bggo:"output"`
}

// IslandInput defines the arguments of island_bars.
type IslandInput struct {
	Island string `bggo:"island"`
	Year   int    `bggo:"year"`
	Title  string `bggo:"title"`
	Output string `bggo:"output"`
}

func observations(table *dataset.Table) (income.Observations, error) {
	obs, err := income.FromTable(table, income.DefaultColumns)
	if err != nil {
		return nil, fmt.Errorf("invalid income table %s: %w", table.Path, err)
	}
	return obs, nil
}

// OnRunIncomeTrend renders the per-category trend lines.
func OnRunIncomeTrend(ctx context.Context, deps *IncomeDeps, input *TerritoryInput) (*chart.Result, error) {
	obs, err := observations(deps.Income)
	if err != nil {
		return nil, err
	}
	return chart.Trend(ctx, obs, chart.TrendOptions{Territory: input.Territory, Title: input.Title, Output: input.Output})
}

// OnRunIncomeBars renders the grouped bars by year.
func OnRunIncomeBars(ctx context.Context, deps *IncomeDeps, input *TerritoryInput) (*chart.Result, error) {
	obs, err := observations(deps.Income)
	if err != nil {
		return nil, err
	}
	return chart.GroupedBars(ctx, obs, chart.BarsOptions{Territory: input.Territory, Title: input.Title, Output: input.Output})
}

// OnRunIncomeMap renders the faceted choropleth.
func OnRunIncomeMap(ctx context.Context, deps *MapDeps, input *MapInput) (*chart.Result, error) {
	obs, err := observations(deps.Income)
	if err != nil {
		return nil, err
	}
	return chart.Choropleth(ctx, deps.Boundaries, obs, chart.MapOptions{
		Year:       input.Year,
		Categories: input.Categories,
		Title:      input.Title,
		Output:     input.Output,
	})
}

// OnRunIslandBars renders the stacked bars of one island's municipalities.
func OnRunIslandBars(ctx context.Context, deps *IslandDeps, input *IslandInput) (*chart.Result, error) {
	obs, err := observations(deps.Income)
	if err != nil {
		return nil, err
	}
	return chart.IslandBars(ctx, obs, deps.Catalog, chart.IslandOptions{
		Island: input.Island,
		Year:   input.Year,
		Title:  input.Title,
		Output: input.Output,
	})
}

// Register registers the handlers with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("OnRunIncomeTrend", &registry.RegisteredRunner{
		NewInput: func() any { return new(TerritoryInput) },
		NewDeps:  func() any { return new(IncomeDeps) },
		Fn:       OnRunIncomeTrend,
	})
	r.RegisterRunner("OnRunIncomeBars", &registry.RegisteredRunner{
		NewInput: func() any { return new(TerritoryInput) },
		NewDeps:  func() any { return new(IncomeDeps) },
		Fn:       OnRunIncomeBars,
	})
	r.RegisterRunner("OnRunIncomeMap", &registry.RegisteredRunner{
		NewInput: func() any { return new(MapInput) },
		NewDeps:  func() any { return new(MapDeps) },
		Fn:       OnRunIncomeMap,
	})
	r.RegisterRunner("OnRunIslandBars", &registry.RegisteredRunner{
		NewInput: func() any { return new(IslandInput) },
		NewDeps:  func() any { return new(IslandDeps) },
		Fn:       OnRunIslandBars,
	})
}
