package chart

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/brewer"
)

// gradient is a continuous colour map interpolating linearly between the
// stops of a brewer palette.
type gradient struct {
	stops    []color.Color
	min, max float64
	alpha    float64
}

var _ palette.ColorMap = (*gradient)(nil)

// newSpectral returns the diverging Spectral palette as a continuous map,
// running from blue at the low end to red at the high end.
func newSpectral(lo, hi float64) (*gradient, error) {
	p, err := brewer.GetPalette(brewer.TypeDiverging, "Spectral", 11)
	if err != nil {
		return nil, fmt.Errorf("failed to load Spectral palette: %w", err)
	}
	src := p.Colors()
	stops := make([]color.Color, len(src))
	for i, c := range src {
		stops[len(src)-1-i] = c
	}
	return &gradient{stops: stops, min: lo, max: hi, alpha: 1}, nil
}

func (g *gradient) At(v float64) (color.Color, error) {
	switch {
	case math.IsNaN(v):
		return nil, palette.ErrNaN
	case v < g.min:
		return nil, palette.ErrUnderflow
	case v > g.max:
		return nil, palette.ErrOverflow
	}
	t := 0.0
	if g.max > g.min {
		t = (v - g.min) / (g.max - g.min)
	}
	pos := t * float64(len(g.stops)-1)
	i := int(pos)
	if i >= len(g.stops)-1 {
		return g.mix(g.stops[len(g.stops)-1], g.stops[len(g.stops)-1], 0), nil
	}
	return g.mix(g.stops[i], g.stops[i+1], pos-float64(i)), nil
}

func (g *gradient) mix(a, b color.Color, frac float64) color.Color {
	ar, ag, ab, _ := a.RGBA()
	br, bg, bb, _ := b.RGBA()
	lerp := func(x, y uint32) uint16 {
		return uint16(math.Round((float64(x) + (float64(y)-float64(x))*frac) * g.alpha))
	}
	return color.RGBA64{R: lerp(ar, br), G: lerp(ag, bg), B: lerp(ab, bb), A: uint16(math.Round(0xffff * g.alpha))}
}

func (g *gradient) Max() float64     { return g.max }
func (g *gradient) SetMax(v float64) { g.max = v }
func (g *gradient) Min() float64     { return g.min }
func (g *gradient) SetMin(v float64) { g.min = v }
func (g *gradient) Alpha() float64   { return g.alpha }

func (g *gradient) SetAlpha(a float64) {
	if a < 0 || a > 1 {
		panic("chart: alpha out of range")
	}
	g.alpha = a
}

func (g *gradient) Palette(n int) palette.Palette {
	colors := make([]color.Color, n)
	for i := range colors {
		v := g.min
		if n > 1 {
			v += (g.max - g.min) * float64(i) / float64(n-1)
		}
		colors[i], _ = g.At(v)
	}
	return colorList(colors)
}

type colorList []color.Color

func (c colorList) Colors() []color.Color { return c }
