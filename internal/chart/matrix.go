package chart

import (
	"github.com/specialistvlad/incomegrid/internal/income"
)

// Matrix holds summed values for every (group, category) pair. Pairs without
// observations are zero so every bar layer has one value per group.
type Matrix struct {
	Groups     []string
	Categories []string
	// Values is indexed [category][group].
	Values [][]float64
}

// Value returns the value of one pair.
func (m Matrix) Value(group, category string) (float64, bool) {
	gi, ci := indexOf(m.Groups, group), indexOf(m.Categories, category)
	if gi < 0 || ci < 0 {
		return 0, false
	}
	return m.Values[ci][gi], true
}

// buildMatrix sums obs into a matrix whose groups are given in display order
// and whose categories are sorted.
func buildMatrix(obs income.Observations, groups []string, groupOf func(income.Observation) string) Matrix {
	m := Matrix{Groups: groups, Categories: obs.Categories()}
	m.Values = make([][]float64, len(m.Categories))
	for i := range m.Values {
		m.Values[i] = make([]float64, len(groups))
	}
	for _, o := range obs {
		gi, ci := indexOf(groups, groupOf(o)), indexOf(m.Categories, o.Category)
		if gi < 0 || ci < 0 {
			continue
		}
		m.Values[ci][gi] += o.Value
	}
	return m
}

func indexOf(items []string, s string) int {
	for i, it := range items {
		if it == s {
			return i
		}
	}
	return -1
}
