/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: plot.go
Description: Plot data for validation results. Builds one gold-standard by
test confusion grid per antibiotic, with axis levels ordered by concentration
and facets laid out on a wrap grid.
*/

package reporting

import (
	"fmt"
	"math"
	"sort"

	"github.com/kleascm/mic-validator/pkg/mic"
	"github.com/kleascm/mic-validator/pkg/validation"
)

// PlotOptions controls the layout of the agreement plot
type PlotOptions struct {
	MatchAxes           bool `json:"match_axes" mapstructure:"match_axes"`
	AddMissingDilutions bool `json:"add_missing_dilutions" mapstructure:"add_missing_dilutions"`
	FacetWrapNcol       int  `json:"facet_wrap_ncol" mapstructure:"facet_wrap_ncol"`
	FacetWrapNrow       int  `json:"facet_wrap_nrow" mapstructure:"facet_wrap_nrow"`
}

// DefaultPlotOptions returns matched axes with missing dilutions filled in
func DefaultPlotOptions() PlotOptions {
	return PlotOptions{MatchAxes: true, AddMissingDilutions: true}
}

// Cell is one gold/test combination of a facet
type Cell struct {
	Gold      string `json:"gold"`
	Test      string `json:"test"`
	Count     int    `json:"count"`
	Agreement string `json:"agreement,omitempty"` // essential agreement label, empty when Count is 0
}

// Facet is the confusion grid of one antibiotic.
// Cells is indexed [gold level][test level].
type Facet struct {
	Antibiotic string   `json:"antibiotic"`
	GoldLevels []string `json:"gold_levels"`
	TestLevels []string `json:"test_levels"`
	Cells      [][]Cell `json:"cells"`
	Total      int      `json:"total"`
}

// Plot is the full facetted agreement plot
type Plot struct {
	Facets []Facet `json:"facets"`
	Ncol   int     `json:"ncol"`
	Nrow   int     `json:"nrow"`
}

// level is an axis tick: a value label with its sort position
type level struct {
	label     string
	magnitude float64
	censor    mic.Censor
}

func censorRank(c mic.Censor) int {
	switch c {
	case mic.CensorLT:
		return 0
	case mic.CensorGT:
		return 2
	default:
		return 1
	}
}

type levelSet map[string]level

func (s levelSet) add(v mic.Value) {
	label := v.String()
	s[label] = level{label: label, magnitude: v.Magnitude, censor: v.Censor}
}

func (s levelSet) merge(o levelSet) {
	for k, v := range o {
		s[k] = v
	}
}

// fill adds every ladder dilution between the smallest and largest magnitude
func (s levelSet) fill() {
	if len(s) == 0 {
		return
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, l := range s {
		lo = math.Min(lo, l.magnitude)
		hi = math.Max(hi, l.magnitude)
	}
	for _, m := range mic.Ladder(lo, hi) {
		s.add(mic.Value{Magnitude: m})
	}
}

// sorted orders levels by concentration; at equal concentration "<" precedes
// the plain value, which precedes ">"
func (s levelSet) sorted() []string {
	levels := make([]level, 0, len(s))
	for _, l := range s {
		levels = append(levels, l)
	}
	sort.Slice(levels, func(i, j int) bool {
		a, b := levels[i], levels[j]
		if a.magnitude != b.magnitude {
			return a.magnitude < b.magnitude
		}
		return censorRank(a.censor) < censorRank(b.censor)
	})
	out := make([]string, len(levels))
	for i, l := range levels {
		out[i] = l.label
	}
	return out
}

// BuildPlot builds the facetted confusion grids of an exported table.
// Facets follow the first-seen order of antibiotics.
func BuildPlot(table validation.Table, opts PlotOptions) (*Plot, error) {
	if opts.FacetWrapNcol < 0 || opts.FacetWrapNrow < 0 {
		return nil, fmt.Errorf("facet wrap dimensions must not be negative")
	}

	var order []string
	byAB := make(map[string][]validation.Record)
	for _, r := range table.Records {
		if _, ok := byAB[r.Antibiotic]; !ok {
			order = append(order, r.Antibiotic)
		}
		byAB[r.Antibiotic] = append(byAB[r.Antibiotic], r)
	}

	plot := &Plot{Facets: make([]Facet, 0, len(order))}
	for _, ab := range order {
		plot.Facets = append(plot.Facets, buildFacet(ab, byAB[ab], opts))
	}

	ncol, nrow, err := wrapLayout(len(plot.Facets), opts.FacetWrapNcol, opts.FacetWrapNrow)
	if err != nil {
		return nil, err
	}
	plot.Ncol, plot.Nrow = ncol, nrow
	return plot, nil
}

func buildFacet(ab string, records []validation.Record, opts PlotOptions) Facet {
	gold, test := levelSet{}, levelSet{}
	for _, r := range records {
		gold.add(r.Gold)
		test.add(r.Test)
	}
	if opts.MatchAxes {
		gold.merge(test)
		test = gold
	}
	if opts.AddMissingDilutions {
		gold.fill()
		test.fill()
	}

	f := Facet{
		Antibiotic: ab,
		GoldLevels: gold.sorted(),
		TestLevels: test.sorted(),
		Total:      len(records),
	}

	goldIdx := indexOf(f.GoldLevels)
	testIdx := indexOf(f.TestLevels)
	f.Cells = make([][]Cell, len(f.GoldLevels))
	for i, g := range f.GoldLevels {
		f.Cells[i] = make([]Cell, len(f.TestLevels))
		for j, t := range f.TestLevels {
			f.Cells[i][j] = Cell{Gold: g, Test: t}
		}
	}
	for _, r := range records {
		c := &f.Cells[goldIdx[r.Gold.String()]][testIdx[r.Test.String()]]
		c.Count++
		c.Agreement = r.EssentialAgreement
	}
	return f
}

func indexOf(levels []string) map[string]int {
	m := make(map[string]int, len(levels))
	for i, l := range levels {
		m[l] = i
	}
	return m
}

// wrapLayout resolves the facet grid dimensions. Unset dimensions are
// derived from the set ones, or from a near-square layout.
func wrapLayout(n, ncol, nrow int) (int, int, error) {
	if n == 0 {
		return 0, 0, nil
	}
	switch {
	case ncol == 0 && nrow == 0:
		ncol = int(math.Ceil(math.Sqrt(float64(n))))
		nrow = ceilDiv(n, ncol)
	case nrow == 0:
		nrow = ceilDiv(n, ncol)
	case ncol == 0:
		ncol = ceilDiv(n, nrow)
	}
	if ncol*nrow < n {
		return 0, 0, fmt.Errorf("facet grid %dx%d cannot hold %d facets", nrow, ncol, n)
	}
	return ncol, nrow, nil
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
