// Package chart renders the income distribution figures with gonum/plot.
//
// Every renderer is split in two: a pure Prepare function that filters and
// aggregates observations into the exact values drawn, and a drawing function
// that lays the figure out and rasterizes it to PNG at a fixed resolution.
package chart

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// DPI is the raster resolution of every figure.
const DPI = 300

// Size is a figure size.
type Size struct {
	Width, Height vg.Length
}

// Figure sizes.
var (
	TrendSize  = Size{Width: 10 * vg.Inch, Height: 6 * vg.Inch}
	BarsSize   = Size{Width: 10 * vg.Inch, Height: 6 * vg.Inch}
	MapSize    = Size{Width: 14 * vg.Inch, Height: 6 * vg.Inch}
	IslandSize = Size{Width: 10 * vg.Inch, Height: 8 * vg.Inch}
)

// Axis and legend labels shared by the figures.
const (
	labelYear       = "Año"
	labelPercentage = "Porcentaje"
	labelCategory   = "Tipo de renta"
	labelMunicipio  = "Municipio"
)

var gridGrey = color.Gray{Y: 225}

// Result describes a written figure.
type Result struct {
	Path  string `cty:"path"`
	Bytes int64  `cty:"bytes"`
}

func boldFont(size vg.Length) font.Font {
	f := font.From(plot.DefaultFont, size)
	f.Weight = xfont.WeightBold
	return f
}

func titleStyle(size vg.Length) text.Style {
	return text.Style{
		Color:   color.Black,
		Font:    boldFont(size),
		XAlign:  draw.XCenter,
		YAlign:  draw.YTop,
		Handler: plot.DefaultTextHandler,
	}
}

// newMinimalPlot returns a plot with a bold title, light grid and no axis
// lines or tick marks.
func newMinimalPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font = boldFont(vg.Points(14))
	p.Title.Padding = vg.Points(8)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	for _, axis := range []*plot.Axis{&p.X, &p.Y} {
		axis.LineStyle.Width = 0
		axis.Tick.LineStyle.Width = 0
	}

	grid := plotter.NewGrid()
	grid.Vertical.Color = gridGrey
	grid.Horizontal.Color = gridGrey
	p.Add(grid)
	return p
}

// qualitative returns n colours from the brewer Set1 palette, cycling when
// n exceeds its nine colours.
func qualitative(n int) ([]color.Color, error) {
	p, err := brewer.GetPalette(brewer.TypeQualitative, "Set1", 9)
	if err != nil {
		return nil, fmt.Errorf("failed to load Set1 palette: %w", err)
	}
	base := p.Colors()
	out := make([]color.Color, n)
	for i := range out {
		out[i] = base[i%len(base)]
	}
	return out, nil
}

// legendEntry is one row of a side legend.
type legendEntry struct {
	name   string
	thumbs []plot.Thumbnailer
}

// drawWithLegend draws p on the left of dc and a titled legend on a strip to
// its right sized to the longest entry.
func drawWithLegend(dc draw.Canvas, p *plot.Plot, title string, entries []legendEntry) {
	l := plot.NewLegend()
	l.Top = true
	l.Left = true
	l.YOffs = -vg.Inch
	l.Add(title)
	width := l.TextStyle.Width(title)
	for _, e := range entries {
		l.Add(e.name, e.thumbs...)
		if w := l.TextStyle.Width(e.name) + l.ThumbnailWidth; w > width {
			width = w
		}
	}
	width += vg.Points(24)

	total := dc.Max.X - dc.Min.X
	p.Draw(draw.Crop(dc, 0, -width, 0, 0))
	l.Draw(draw.Crop(dc, total-width, 0, 0, 0))
}

func newFigure(size Size) (*vgimg.Canvas, draw.Canvas) {
	img := vgimg.NewWith(
		vgimg.UseWH(size.Width, size.Height),
		vgimg.UseDPI(DPI),
		vgimg.UseBackgroundColor(color.White),
	)
	return img, draw.New(img)
}

// pngPath appends the .png extension when path has none.
func pngPath(path string) string {
	if filepath.Ext(path) == "" {
		return path + ".png"
	}
	return path
}

// save writes img as PNG to path, creating parent directories and replacing
// any existing file.
func save(path string, img *vgimg.Canvas) (*Result, error) {
	path = pngPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory for %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".chart-*.png")
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	n, err := vgimg.PngCanvas{Canvas: img}.WriteTo(tmp)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return &Result{Path: path, Bytes: n}, nil
}
