package geo

import (
	"github.com/twpayne/go-geom"
)

// VertexRow is one exterior-ring vertex of one polygon.
type VertexRow struct {
	PolyID  int
	Code    int
	HasCode bool
	Name    string
	X, Y    float64
}

// Flatten explodes multi-polygons into their parts and emits one row per
// exterior-ring vertex, tagged with a synthetic polygon id. Interior rings are
// dropped. Features with nil or non-polygonal geometry are skipped.
func (c *Collection) Flatten() []VertexRow {
	var rows []VertexRow
	polyID := 0
	for _, f := range c.Features {
		for _, p := range polygons(f.Geometry) {
			if p.NumLinearRings() == 0 {
				continue
			}
			for _, coord := range p.LinearRing(0).Coords() {
				rows = append(rows, VertexRow{
					PolyID:  polyID,
					Code:    f.Code,
					HasCode: f.HasCode,
					Name:    f.Name,
					X:       coord.X(),
					Y:       coord.Y(),
				})
			}
			polyID++
		}
	}
	return rows
}

func polygons(g geom.T) []*geom.Polygon {
	switch g := g.(type) {
	case *geom.Polygon:
		return []*geom.Polygon{g}
	case *geom.MultiPolygon:
		out := make([]*geom.Polygon, 0, g.NumPolygons())
		for i := 0; i < g.NumPolygons(); i++ {
			out = append(out, g.Polygon(i))
		}
		return out
	}
	return nil
}

// Ring is the exterior ring of one polygon, grouped from a vertex table.
type Ring struct {
	PolyID  int
	Code    int
	HasCode bool
	Name    string
	XS, YS  []float64
}

// GroupRings reassembles flattened rows into rings, preserving row order.
func GroupRings(rows []VertexRow) []Ring {
	var rings []Ring
	index := make(map[int]int)
	for _, r := range rows {
		i, ok := index[r.PolyID]
		if !ok {
			i = len(rings)
			index[r.PolyID] = i
			rings = append(rings, Ring{PolyID: r.PolyID, Code: r.Code, HasCode: r.HasCode, Name: r.Name})
		}
		rings[i].XS = append(rings[i].XS, r.X)
		rings[i].YS = append(rings[i].YS, r.Y)
	}
	return rings
}
