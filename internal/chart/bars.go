package chart

import (
	"context"
	"fmt"
	"strconv"

	"github.com/specialistvlad/incomegrid/internal/ctxlog"
	"github.com/specialistvlad/incomegrid/internal/income"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// BarsOptions configures the grouped bars figure.
type BarsOptions struct {
	Territory string
	Title     string
	Output    string
}

// PrepareGroupedBars returns the territory's values with one group per year
// and one bar per category.
func PrepareGroupedBars(obs income.Observations, territory string) Matrix {
	working := obs.ForTerritory(territory).DropMissing()
	years := working.Years()
	groups := make([]string, len(years))
	for i, y := range years {
		groups[i] = strconv.Itoa(y)
	}
	return buildMatrix(working, groups, func(o income.Observation) string { return strconv.Itoa(o.Year) })
}

// GroupedBars draws dodged bars of percentage by category for each year.
func GroupedBars(ctx context.Context, obs income.Observations, opts BarsOptions) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	m := PrepareGroupedBars(obs, opts.Territory)
	if len(m.Groups) == 0 {
		return nil, fmt.Errorf("no income observations for territory %q", opts.Territory)
	}
	logger.Debug("Prepared grouped bars.", "territory", opts.Territory, "years", len(m.Groups), "categories", len(m.Categories))

	title := opts.Title
	if title == "" {
		title = fmt.Sprintf("Distribución de renta por tipo y año en %s", opts.Territory)
	}
	p := newMinimalPlot(title, labelYear, labelPercentage)

	colors, err := qualitative(len(m.Categories))
	if err != nil {
		return nil, err
	}

	// Bars of one group share 80% of the space allotted to it.
	plotWidth := BarsSize.Width - 3*vg.Inch
	width := plotWidth * 0.8 / vg.Length(len(m.Groups)*len(m.Categories))
	n := len(m.Categories)

	var entries []legendEntry
	for ci, cat := range m.Categories {
		bars, err := plotter.NewBarChart(plotter.Values(m.Values[ci]), width)
		if err != nil {
			return nil, fmt.Errorf("failed to build bars for %q: %w", cat, err)
		}
		bars.Color = colors[ci]
		bars.LineStyle.Width = 0
		bars.Offset = vg.Length(float64(ci)-float64(n-1)/2) * width
		p.Add(bars)
		entries = append(entries, legendEntry{name: cat, thumbs: []plot.Thumbnailer{bars}})
	}
	p.NominalX(m.Groups...)

	img, dc := newFigure(BarsSize)
	drawWithLegend(dc, p, labelCategory, entries)

	res, err := save(opts.Output, img)
	if err != nil {
		return nil, err
	}
	logger.Info("Wrote chart.", "path", res.Path, "bytes", res.Bytes)
	return res, nil
}
