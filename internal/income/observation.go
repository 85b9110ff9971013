// Package income turns the raw income distribution table into typed
// observations and provides the filters the chart renderers share.
package income

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/specialistvlad/incomegrid/internal/dataset"
)

// Columns maps source column names to the semantic fields of an Observation.
type Columns struct {
	Year          string
	Category      string
	Value         string
	Territory     string
	TerritoryCode string
}

// DefaultColumns matches the published income distribution CSV.
var DefaultColumns = Columns{
	Year:          "TIME_PERIOD_CODE",
	Category:      "MEDIDAS#es",
	Value:         "OBS_VALUE",
	Territory:     "TERRITORIO#es",
	TerritoryCode: "TERRITORIO_CODE",
}

// Observation is one percentage of income of a category for a territory and year.
type Observation struct {
	Year          int
	Category      string
	Territory     string
	TerritoryCode string
	Value         float64
	Missing       bool
}

// Observations is a list of observations with filter helpers. Filters never
// modify the receiver.
type Observations []Observation

var naMarkers = map[string]struct{}{
	"":        {},
	"na":      {},
	"nan":     {},
	"n/a":     {},
	"#n/a":    {},
	"null":    {},
	"none":    {},
	"<na>":    {},
	"-nan":    {},
	"#na":     {},
	"-1.#ind": {},
	"1.#qnan": {},
}

// IsMissing reports whether raw is one of the recognised missing-value markers.
func IsMissing(raw string) bool {
	_, ok := naMarkers[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// FromTable converts a loaded table using the given column mapping.
func FromTable(t *dataset.Table, cols Columns) (Observations, error) {
	renamed, err := t.Rename(map[string]string{
		cols.Year:          "year",
		cols.Category:      "category",
		cols.Value:         "value",
		cols.Territory:     "territory",
		cols.TerritoryCode: "territory_code",
	})
	if err != nil {
		return nil, err
	}
	idx := func(name string) int { return renamed.ColumnIndex(name) }
	yearIdx, catIdx, valIdx, terrIdx, codeIdx := idx("year"), idx("category"), idx("value"), idx("territory"), idx("territory_code")

	out := make(Observations, 0, len(renamed.Rows))
	for i, row := range renamed.Rows {
		line := i + 2
		year, err := strconv.Atoi(strings.TrimSpace(row[yearIdx]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid year %q", line, row[yearIdx])
		}
		obs := Observation{
			Year:          year,
			Category:      strings.TrimSpace(row[catIdx]),
			Territory:     strings.TrimSpace(row[terrIdx]),
			TerritoryCode: strings.TrimSpace(row[codeIdx]),
		}
		if IsMissing(row[valIdx]) {
			obs.Missing = true
		} else {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[valIdx]), 64)
			if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
				return nil, fmt.Errorf("line %d: invalid value %q", line, row[valIdx])
			}
			obs.Value = v
		}
		out = append(out, obs)
	}
	return out, nil
}

// Where returns the observations for which keep returns true.
func (o Observations) Where(keep func(Observation) bool) Observations {
	var out Observations
	for _, obs := range o {
		if keep(obs) {
			out = append(out, obs)
		}
	}
	return out
}

// DropMissing removes observations without a value.
func (o Observations) DropMissing() Observations {
	return o.Where(func(obs Observation) bool { return !obs.Missing })
}

// ForTerritory keeps observations of the named territory.
func (o Observations) ForTerritory(name string) Observations {
	return o.Where(func(obs Observation) bool { return obs.Territory == name })
}

// ForYear keeps observations of one year.
func (o Observations) ForYear(year int) Observations {
	return o.Where(func(obs Observation) bool { return obs.Year == year })
}

// ForCategories keeps observations whose category is listed.
func (o Observations) ForCategories(categories ...string) Observations {
	set := toSet(categories)
	return o.Where(func(obs Observation) bool { _, ok := set[obs.Category]; return ok })
}

// InTerritories keeps observations whose territory is listed.
func (o Observations) InTerritories(names ...string) Observations {
	set := toSet(names)
	return o.Where(func(obs Observation) bool { _, ok := set[obs.Territory]; return ok })
}

// Categories returns the distinct categories, sorted.
func (o Observations) Categories() []string {
	return distinct(o, func(obs Observation) string { return obs.Category })
}

// Territories returns the distinct territories, sorted.
func (o Observations) Territories() []string {
	return distinct(o, func(obs Observation) string { return obs.Territory })
}

// Years returns the distinct years, ascending.
func (o Observations) Years() []int {
	seen := make(map[int]struct{})
	var out []int
	for _, obs := range o {
		if _, ok := seen[obs.Year]; !ok {
			seen[obs.Year] = struct{}{}
			out = append(out, obs.Year)
		}
	}
	sort.Ints(out)
	return out
}

// CleanTerritoryCode extracts the numeric municipality code from a raw
// territory code such as "35022_2023". National aggregates (prefix "ES") and
// unparseable codes report false.
func CleanTerritoryCode(raw string) (int, bool) {
	prefix, _, _ := strings.Cut(strings.TrimSpace(raw), "_")
	if strings.HasPrefix(prefix, "ES") {
		return 0, false
	}
	code, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, false
	}
	return code, true
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}

func distinct(o Observations, key func(Observation) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, obs := range o {
		k := key(obs)
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
