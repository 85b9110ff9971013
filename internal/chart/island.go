package chart

import (
	"context"
	"fmt"
	"sort"

	"github.com/specialistvlad/incomegrid/internal/ctxlog"
	"github.com/specialistvlad/incomegrid/internal/dataset"
	"github.com/specialistvlad/incomegrid/internal/income"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Municipality catalog columns.
const (
	CatalogIslandColumn = "ISLA"
	CatalogNameColumn   = "NOMBRE"
)

// IslandOptions configures the per-island stacked bars figure.
type IslandOptions struct {
	Island string
	Year   int
	Title  string
	Output string
}

// IslandMunicipalities lists the municipalities the catalog places on island.
func IslandMunicipalities(catalog *dataset.Table, island string) ([]string, error) {
	islands, err := catalog.Column(CatalogIslandColumn)
	if err != nil {
		return nil, err
	}
	names, err := catalog.Column(CatalogNameColumn)
	if err != nil {
		return nil, err
	}
	var out []string
	for i, isl := range islands {
		if isl == island {
			out = append(out, names[i])
		}
	}
	return out, nil
}

// PrepareIslandBars returns one group per municipality of the island present
// in the data for year, sorted by name, with one stacked segment per category.
func PrepareIslandBars(obs income.Observations, municipalities []string, year int) Matrix {
	working := obs.ForYear(year).InTerritories(municipalities...).DropMissing()
	groups := working.Territories()
	sort.Strings(groups)
	return buildMatrix(working, groups, func(o income.Observation) string { return o.Territory })
}

// IslandBars draws stacked horizontal bars of percentage by category for each
// municipality of one island.
func IslandBars(ctx context.Context, obs income.Observations, catalog *dataset.Table, opts IslandOptions) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	municipalities, err := IslandMunicipalities(catalog, opts.Island)
	if err != nil {
		return nil, err
	}
	m := PrepareIslandBars(obs, municipalities, opts.Year)
	if len(m.Groups) == 0 {
		return nil, fmt.Errorf("no income observations for %s in %d", opts.Island, opts.Year)
	}
	logger.Debug("Prepared island bars.", "island", opts.Island, "municipalities", len(m.Groups), "categories", len(m.Categories))

	title := opts.Title
	if title == "" {
		title = fmt.Sprintf("Distribución de renta por municipio de %s en %d", opts.Island, opts.Year)
	}
	p := newMinimalPlot(title, labelPercentage, labelMunicipio)

	colors, err := qualitative(len(m.Categories))
	if err != nil {
		return nil, err
	}

	plotHeight := IslandSize.Height - 1.5*vg.Inch
	width := plotHeight * 0.7 / vg.Length(len(m.Groups))

	var entries []legendEntry
	var below *plotter.BarChart
	for ci, cat := range m.Categories {
		bars, err := plotter.NewBarChart(plotter.Values(m.Values[ci]), width)
		if err != nil {
			return nil, fmt.Errorf("failed to build bars for %q: %w", cat, err)
		}
		bars.Horizontal = true
		bars.Color = colors[ci]
		bars.LineStyle.Width = 0
		if below != nil {
			bars.StackOn(below)
		}
		below = bars
		p.Add(bars)
		entries = append(entries, legendEntry{name: cat, thumbs: []plot.Thumbnailer{bars}})
	}
	p.NominalY(m.Groups...)

	img, dc := newFigure(IslandSize)
	drawWithLegend(dc, p, labelCategory, entries)

	res, err := save(opts.Output, img)
	if err != nil {
		return nil, err
	}
	logger.Info("Wrote chart.", "path", res.Path, "bytes", res.Bytes)
	return res, nil
}
