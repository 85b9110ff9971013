// Package geo loads municipal boundaries from GeoJSON and flattens their
// polygons into a vertex table suitable for drawing.
package geo

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/specialistvlad/incomegrid/internal/fsutil"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// Default property names of the municipal boundaries file.
const (
	DefaultCodeProperty = "codigo"
	DefaultNameProperty = "nombre"
)

// Feature is a boundary with its municipality code and name. Geometry is nil
// when the source feature had a null geometry.
type Feature struct {
	Code     int
	HasCode  bool
	Name     string
	Geometry geom.T
}

// Collection is a loaded boundaries file.
type Collection struct {
	Path         string `cty:"path"`
	FeatureCount int    `cty:"feature_count"`
	Features     []Feature
}

// Load reads the GeoJSON FeatureCollection at path, reading the municipality
// code and name from the given properties.
func Load(path, codeProperty, nameProperty string) (*Collection, error) {
	if err := fsutil.RequireFile(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	c, err := Decode(data, codeProperty, nameProperty)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	c.Path = path
	return c, nil
}

// Decode parses a GeoJSON FeatureCollection.
func Decode(data []byte, codeProperty, nameProperty string) (*Collection, error) {
	if codeProperty == "" {
		codeProperty = DefaultCodeProperty
	}
	if nameProperty == "" {
		nameProperty = DefaultNameProperty
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, err
	}

	c := &Collection{Features: make([]Feature, 0, len(fc.Features))}
	for _, f := range fc.Features {
		feature := Feature{Geometry: f.Geometry}
		feature.Code, feature.HasCode = parseCode(f.Properties[codeProperty])
		if name, ok := f.Properties[nameProperty]; ok && name != nil {
			feature.Name = fmt.Sprint(name)
		}
		c.Features = append(c.Features, feature)
	}
	c.FeatureCount = len(c.Features)
	return c, nil
}

// parseCode accepts numeric codes stored either as JSON numbers or strings.
func parseCode(v any) (int, bool) {
	switch code := v.(type) {
	case float64:
		if code != math.Trunc(code) {
			return 0, false
		}
		return int(code), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(code))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// Bounds returns the planar extent of every geometry in the collection.
func (c *Collection) Bounds() *geom.Bounds {
	b := geom.NewBounds(geom.XY)
	for _, f := range c.Features {
		if f.Geometry != nil {
			b.Extend(f.Geometry)
		}
	}
	return b
}
