package chart

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/specialistvlad/incomegrid/internal/ctxlog"
	"github.com/specialistvlad/incomegrid/internal/income"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Series is one category's values over the years.
type Series struct {
	Category string
	Points   plotter.XYs
}

// TrendOptions configures the per-category trend figure.
type TrendOptions struct {
	Territory string
	Title     string
	Output    string
}

// PrepareTrend returns one series per category for territory, ordered by
// year. Missing values are dropped and duplicate years are summed.
func PrepareTrend(obs income.Observations, territory string) []Series {
	working := obs.ForTerritory(territory).DropMissing()
	years := working.Years()
	groups := make([]string, len(years))
	for i, y := range years {
		groups[i] = strconv.Itoa(y)
	}
	m := buildMatrix(working, groups, func(o income.Observation) string { return strconv.Itoa(o.Year) })

	present := make(map[string]map[int]bool)
	for _, o := range working {
		if present[o.Category] == nil {
			present[o.Category] = make(map[int]bool)
		}
		present[o.Category][o.Year] = true
	}

	series := make([]Series, 0, len(m.Categories))
	for ci, cat := range m.Categories {
		s := Series{Category: cat}
		for gi, y := range years {
			if !present[cat][y] {
				continue
			}
			s.Points = append(s.Points, plotter.XY{X: float64(y), Y: m.Values[ci][gi]})
		}
		sort.Slice(s.Points, func(i, j int) bool { return s.Points[i].X < s.Points[j].X })
		series = append(series, s)
	}
	return series
}

// Trend draws line and point series of percentage by category across years.
func Trend(ctx context.Context, obs income.Observations, opts TrendOptions) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	series := PrepareTrend(obs, opts.Territory)
	if len(series) == 0 {
		return nil, fmt.Errorf("no income observations for territory %q", opts.Territory)
	}
	logger.Debug("Prepared trend series.", "territory", opts.Territory, "series", len(series))

	title := opts.Title
	if title == "" {
		title = fmt.Sprintf("Distribución de renta por tipo y año en %s", opts.Territory)
	}
	p := newMinimalPlot(title, labelYear, labelPercentage)

	colors, err := qualitative(len(series))
	if err != nil {
		return nil, err
	}

	var entries []legendEntry
	yearTicks := make(map[float64]bool)
	for i, s := range series {
		line, err := plotter.NewLine(s.Points)
		if err != nil {
			return nil, fmt.Errorf("failed to build line for %q: %w", s.Category, err)
		}
		line.Color = colors[i]
		line.Width = vg.Points(2.5)

		points, err := plotter.NewScatter(s.Points)
		if err != nil {
			return nil, fmt.Errorf("failed to build points for %q: %w", s.Category, err)
		}
		points.GlyphStyle.Color = colors[i]
		points.GlyphStyle.Shape = draw.CircleGlyph{}
		points.GlyphStyle.Radius = vg.Points(3.5)

		p.Add(line, points)
		entries = append(entries, legendEntry{name: s.Category, thumbs: []plot.Thumbnailer{line, points}})
		for _, pt := range s.Points {
			yearTicks[pt.X] = true
		}
	}
	p.X.Tick.Marker = yearMarker(yearTicks)

	img, dc := newFigure(TrendSize)
	drawWithLegend(dc, p, labelCategory, entries)

	res, err := save(opts.Output, img)
	if err != nil {
		return nil, err
	}
	logger.Info("Wrote chart.", "path", res.Path, "bytes", res.Bytes)
	return res, nil
}

// yearMarker labels exactly the years present in the data.
func yearMarker(years map[float64]bool) plot.ConstantTicks {
	ticks := make(plot.ConstantTicks, 0, len(years))
	for y := range years {
		ticks = append(ticks, plot.Tick{Value: y, Label: strconv.Itoa(int(y))})
	}
	sort.Slice(ticks, func(i, j int) bool { return ticks[i].Value < ticks[j].Value })
	return ticks
}
