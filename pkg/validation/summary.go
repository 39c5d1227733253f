/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: summary.go
Description: Summary aggregation for validation datasets. Reduces rows into
essential agreement rate, bias, categorical agreement rate and error-type
rates, overall and per antibiotic (or antibiotic x organism) group.
*/

package validation

import (
	"encoding/json"
	"math"
)

// GroupBy selects how summary rows are stratified
type GroupBy int

const (
	GroupAuto GroupBy = iota // by the codes that were supplied
	GroupNone
	GroupAntibiotic
	GroupAntibioticOrganism
)

func (g GroupBy) String() string {
	switch g {
	case GroupNone:
		return "none"
	case GroupAntibiotic:
		return "antibiotic"
	case GroupAntibioticOrganism:
		return "antibiotic_organism"
	default:
		return "auto"
	}
}

// SummaryRow holds the statistics of one group (or the overall dataset).
// Rates with an empty denominator are NaN.
type SummaryRow struct {
	Antibiotic string `json:"antibiotic,omitempty"`
	Organism   string `json:"organism,omitempty"`
	Overall    bool   `json:"overall"`

	N         int     `json:"n"`
	Evaluable int     `json:"evaluable"`
	EACount   int     `json:"ea_count"`
	EARate    float64 `json:"ea_rate"`
	Bias      float64 `json:"bias"`

	Classifiable  int     `json:"classifiable"`
	CACount       int     `json:"ca_count"`
	Minor         int     `json:"minor"`
	Major         int     `json:"major"`
	VeryMajor     int     `json:"very_major"`
	CARate        float64 `json:"ca_rate"`
	MinorRate     float64 `json:"minor_rate"`
	MajorRate     float64 `json:"major_rate"`
	VeryMajorRate float64 `json:"very_major_rate"`
}

// MarshalJSON encodes undefined rates as null
func (r SummaryRow) MarshalJSON() ([]byte, error) {
	type alias SummaryRow
	return json.Marshal(struct {
		alias
		EARate        *float64 `json:"ea_rate"`
		Bias          *float64 `json:"bias"`
		CARate        *float64 `json:"ca_rate"`
		MinorRate     *float64 `json:"minor_rate"`
		MajorRate     *float64 `json:"major_rate"`
		VeryMajorRate *float64 `json:"very_major_rate"`
	}{
		alias:         alias(r),
		EARate:        finite(r.EARate),
		Bias:          finite(r.Bias),
		CARate:        finite(r.CARate),
		MinorRate:     finite(r.MinorRate),
		MajorRate:     finite(r.MajorRate),
		VeryMajorRate: finite(r.VeryMajorRate),
	})
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Summary is derived on demand from a dataset and never cached
type Summary struct {
	Categorical bool         `json:"categorical"`
	GroupBy     GroupBy      `json:"group_by"`
	Groups      []SummaryRow `json:"groups,omitempty"`
	Overall     SummaryRow   `json:"overall"`
	Diagnostics Diagnostics  `json:"diagnostics"`
}

// Rows returns the group rows followed by the overall row
func (s *Summary) Rows() []SummaryRow {
	out := make([]SummaryRow, 0, len(s.Groups)+1)
	out = append(out, s.Groups...)
	return append(out, s.Overall)
}

// tally is a commutative accumulator; merging two tallies equals tallying
// their rows together.
type tally struct {
	n, evaluable, ea, biasSum           int
	classifiable, ca, minor, major, vme int
}

func (t *tally) add(r Row) {
	t.n++
	res := r.Result
	if res.EssentialAgreement.Evaluable() {
		t.evaluable++
		t.biasSum += res.DilutionDifference
		if res.EssentialAgreement == EAAgree {
			t.ea++
		}
	}
	if res.CategoricalAgreement.Classifiable() {
		t.classifiable++
		switch res.CategoricalAgreement {
		case CategoricalAgree:
			t.ca++
		case MinorError:
			t.minor++
		case MajorError:
			t.major++
		case VeryMajorError:
			t.vme++
		}
	}
}

func (t *tally) merge(o tally) {
	t.n += o.n
	t.evaluable += o.evaluable
	t.ea += o.ea
	t.biasSum += o.biasSum
	t.classifiable += o.classifiable
	t.ca += o.ca
	t.minor += o.minor
	t.major += o.major
	t.vme += o.vme
}

func ratio(num, den int) float64 {
	if den == 0 {
		return math.NaN()
	}
	return float64(num) / float64(den)
}

func (t tally) row(ab, mo string, overall bool) SummaryRow {
	return SummaryRow{
		Antibiotic:    ab,
		Organism:      mo,
		Overall:       overall,
		N:             t.n,
		Evaluable:     t.evaluable,
		EACount:       t.ea,
		EARate:        ratio(t.ea, t.evaluable),
		Bias:          ratio(t.biasSum, t.evaluable),
		Classifiable:  t.classifiable,
		CACount:       t.ca,
		Minor:         t.minor,
		Major:         t.major,
		VeryMajor:     t.vme,
		CARate:        ratio(t.ca, t.classifiable),
		MinorRate:     ratio(t.minor, t.classifiable),
		MajorRate:     ratio(t.major, t.classifiable),
		VeryMajorRate: ratio(t.vme, t.classifiable),
	}
}

type groupKey struct {
	antibiotic string
	organism   string
}

// Summarize aggregates the dataset. Groups appear in first-seen order of
// their key, followed by the overall row.
func Summarize(ds *Dataset, by GroupBy) *Summary {
	if by == GroupAuto {
		switch {
		case ds.HasAntibiotics() && ds.HasOrganisms():
			by = GroupAntibioticOrganism
		case ds.HasAntibiotics():
			by = GroupAntibiotic
		default:
			by = GroupNone
		}
	}

	var overall tally
	var order []groupKey
	groups := make(map[groupKey]*tally)

	for _, r := range ds.rows {
		if by != GroupNone {
			k := groupKey{antibiotic: r.Observation.Antibiotic}
			if by == GroupAntibioticOrganism {
				k.organism = r.Observation.Organism
			}
			g, ok := groups[k]
			if !ok {
				g = &tally{}
				groups[k] = g
				order = append(order, k)
			}
			g.add(r)
		}
	}

	s := &Summary{
		Categorical: ds.Categorical(),
		GroupBy:     by,
		Diagnostics: ds.Diagnostics(),
	}
	for _, k := range order {
		g := groups[k]
		overall.merge(*g)
		s.Groups = append(s.Groups, g.row(k.antibiotic, k.organism, false))
	}
	if by == GroupNone {
		for _, r := range ds.rows {
			overall.add(r)
		}
	}
	s.Overall = overall.row("", "", true)
	return s
}
