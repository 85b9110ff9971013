package chart

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/specialistvlad/incomegrid/internal/ctxlog"
	"github.com/specialistvlad/incomegrid/internal/geo"
	"github.com/specialistvlad/incomegrid/internal/income"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// DefaultMapCategories are the income categories mapped by default.
var DefaultMapCategories = []string{
	"Otras prestaciones",
	"Otros ingresos",
	"Pensiones",
	"Prestaciones por desempleo",
	"Sueldos y salarios",
}

var noDataGrey = color.Gray{Y: 190}

// MapOptions configures the faceted choropleth.
type MapOptions struct {
	Year       int
	Categories []string
	Title      string
	Output     string
}

// Panel is one facet: every ring with the value of its municipality, or NaN
// when the municipality has no value for the category.
type Panel struct {
	Category string
	Rings    []geo.Ring
	Values   []float64
}

// MapData is the prepared content of the choropleth.
type MapData struct {
	Panels   []Panel
	Min, Max float64
}

// ValueTable maps cleaned municipality codes to values for one year and
// category. National aggregates, unparseable codes and missing values are
// left out; the first value wins when a code repeats.
func ValueTable(ctx context.Context, obs income.Observations, year int, category string) map[int]float64 {
	logger := ctxlog.FromContext(ctx)
	values := make(map[int]float64)
	for _, o := range obs.ForYear(year).ForCategories(category).DropMissing() {
		code, ok := income.CleanTerritoryCode(o.TerritoryCode)
		if !ok {
			continue
		}
		if prev, dup := values[code]; dup {
			logger.Warn("Duplicate territory code, keeping first value.", "code", code, "category", category, "kept", prev, "ignored", o.Value)
			continue
		}
		values[code] = o.Value
	}
	return values
}

// PrepareChoropleth left-joins the flattened boundaries to the values of each
// category, sorted by category name.
func PrepareChoropleth(ctx context.Context, rows []geo.VertexRow, obs income.Observations, year int, categories []string) MapData {
	cats := append([]string(nil), categories...)
	sort.Strings(cats)
	rings := geo.GroupRings(rows)

	data := MapData{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, cat := range cats {
		table := ValueTable(ctx, obs, year, cat)
		panel := Panel{Category: cat, Rings: rings, Values: make([]float64, len(rings))}
		for i, r := range rings {
			v, ok := table[r.Code]
			if !r.HasCode || !ok {
				panel.Values[i] = math.NaN()
				continue
			}
			panel.Values[i] = v
			data.Min = math.Min(data.Min, v)
			data.Max = math.Max(data.Max, v)
		}
		data.Panels = append(data.Panels, panel)
	}
	return data
}

// Choropleth draws one map panel per category in a grid of three columns,
// filled on a shared Spectral scale, with a colour bar in the next free cell.
func Choropleth(ctx context.Context, boundaries *geo.Collection, obs income.Observations, opts MapOptions) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	categories := opts.Categories
	if len(categories) == 0 {
		categories = DefaultMapCategories
	}
	rows := boundaries.Flatten()
	if len(rows) == 0 {
		return nil, fmt.Errorf("no polygons in boundaries %s", boundaries.Path)
	}
	data := PrepareChoropleth(ctx, rows, obs, opts.Year, categories)
	lo, hi := data.Min, data.Max
	if math.IsInf(lo, 1) {
		logger.Warn("No municipality has a value, every polygon is drawn as no data.", "year", opts.Year)
		lo, hi = 0, 1
	}
	if hi == lo {
		hi = lo + 1
	}
	logger.Debug("Prepared choropleth.", "rings", len(data.Panels[0].Rings), "panels", len(data.Panels), "min", lo, "max", hi)

	cmap, err := newSpectral(lo, hi)
	if err != nil {
		return nil, err
	}

	title := opts.Title
	if title == "" {
		title = fmt.Sprintf("Distribución de renta por municipio en %d", opts.Year)
	}

	img, dc := newFigure(MapSize)
	titleHeight := vg.Points(30)
	dc.FillText(titleStyle(vg.Points(14)), vg.Point{X: (dc.Min.X + dc.Max.X) / 2, Y: dc.Max.Y - vg.Points(6)}, title)
	body := draw.Crop(dc, 0, 0, 0, -titleHeight)

	cols := 3
	cells := len(data.Panels) + 1
	tiles := draw.Tiles{
		Rows:      (cells + cols - 1) / cols,
		Cols:      cols,
		PadX:      vg.Points(6),
		PadY:      vg.Points(6),
		PadLeft:   vg.Points(6),
		PadRight:  vg.Points(6),
		PadBottom: vg.Points(6),
	}

	xmin, xmax, ymin, ymax := ringExtent(data.Panels[0].Rings)
	for i, panel := range data.Panels {
		cell := tiles.At(body, i%cols, i/cols)
		p, err := panelPlot(panel, cmap)
		if err != nil {
			return nil, err
		}
		fitAspect(p, cell, xmin, xmax, ymin, ymax)
		p.Draw(cell)
	}

	barCell := tiles.At(body, len(data.Panels)%cols, len(data.Panels)/cols)
	width := barCell.Max.X - barCell.Min.X
	height := barCell.Max.Y - barCell.Min.Y
	bar := plot.New()
	bar.Title.Text = labelPercentage
	bar.HideX()
	bar.Add(&plotter.ColorBar{ColorMap: cmap, Vertical: true})
	bar.Draw(draw.Crop(barCell, width*0.42, -width*0.42, height*0.1, -height*0.05))

	res, err := save(opts.Output, img)
	if err != nil {
		return nil, err
	}
	logger.Info("Wrote chart.", "path", res.Path, "bytes", res.Bytes)
	return res, nil
}

// panelPlot builds one facet with axes hidden.
func panelPlot(panel Panel, cmap *gradient) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = panel.Category
	p.Title.TextStyle.Font.Size = vg.Points(11)
	p.HideAxes()

	for i, ring := range panel.Rings {
		xys := make(plotter.XYs, len(ring.XS))
		for j := range ring.XS {
			xys[j] = plotter.XY{X: ring.XS[j], Y: ring.YS[j]}
		}
		poly, err := plotter.NewPolygon(xys)
		if err != nil {
			return nil, fmt.Errorf("failed to build polygon %d: %w", ring.PolyID, err)
		}
		poly.LineStyle.Color = color.Black
		poly.LineStyle.Width = vg.Points(0.4)
		poly.Color = noDataGrey
		if v := panel.Values[i]; !math.IsNaN(v) {
			fill, err := cmap.At(v)
			if err != nil {
				return nil, fmt.Errorf("failed to colour polygon %d: %w", ring.PolyID, err)
			}
			poly.Color = fill
		}
		p.Add(poly)
	}
	return p, nil
}

func ringExtent(rings []geo.Ring) (xmin, xmax, ymin, ymax float64) {
	xmin, ymin = math.Inf(1), math.Inf(1)
	xmax, ymax = math.Inf(-1), math.Inf(-1)
	for _, r := range rings {
		for i := range r.XS {
			xmin, xmax = math.Min(xmin, r.XS[i]), math.Max(xmax, r.XS[i])
			ymin, ymax = math.Min(ymin, r.YS[i]), math.Max(ymax, r.YS[i])
		}
	}
	return xmin, xmax, ymin, ymax
}

// fitAspect widens one axis range so a data unit has the same length on both
// axes inside the cell.
func fitAspect(p *plot.Plot, cell draw.Canvas, xmin, xmax, ymin, ymax float64) {
	dx, dy := xmax-xmin, ymax-ymin
	if dx <= 0 || dy <= 0 {
		return
	}
	w := float64(cell.Max.X - cell.Min.X)
	h := float64(cell.Max.Y-cell.Min.Y) - 20
	if w <= 0 || h <= 0 {
		return
	}
	if dx/dy > w/h {
		pad := (dx*h/w - dy) / 2
		ymin, ymax = ymin-pad, ymax+pad
	} else {
		pad := (dy*w/h - dx) / 2
		xmin, xmax = xmin-pad, xmax+pad
	}
	p.X.Min, p.X.Max = xmin, xmax
	p.Y.Min, p.Y.Max = ymin, ymax
}
