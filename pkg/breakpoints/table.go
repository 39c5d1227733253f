/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: table.go
Description: Read-only breakpoint table. Holds clinical breakpoints and ECOFF
cut-offs keyed by antibiotic and organism (or organism group), and resolves
the thresholds that apply to a given antibiotic/organism pair.
*/

package breakpoints

import (
	"fmt"
	"strings"

	"github.com/kleascm/mic-validator/pkg/mic"
)

// Source identifies where a set of thresholds comes from
type Source string

const (
	SourceClinical Source = "clinical"
	SourceECOFF    Source = "ecoff"
)

// Category is an interpretive susceptibility category
type Category string

const (
	Susceptible  Category = "S"
	Intermediate Category = "I"
	Resistant    Category = "R"
	Unclassified Category = ""
)

// Entry is a single row of the breakpoint table.
// Clinical rows use Susceptible/Resistant; ECOFF rows use ECOFF.
type Entry struct {
	Antibiotic  string  `json:"antibiotic" yaml:"antibiotic"`
	Organism    string  `json:"organism" yaml:"organism"` // organism code or group name
	Susceptible float64 `json:"susceptible,omitempty" yaml:"susceptible,omitempty"`
	Resistant   float64 `json:"resistant,omitempty" yaml:"resistant,omitempty"`
	ECOFF       float64 `json:"ecoff,omitempty" yaml:"ecoff,omitempty"`
	Source      Source  `json:"source" yaml:"source"`
}

// Classify maps a MIC to a category using this entry's thresholds.
// Clinical: MIC <= S is susceptible, MIC > R is resistant, otherwise intermediate.
// ECOFF: MIC <= ECOFF is wild type (reported as susceptible), otherwise resistant.
// A censored MIC is classified only when its whole range falls into one
// category: ">X" with X >= R is resistant and "<X" with X <= S is
// susceptible. Any other censored MIC is unclassified.
func (e Entry) Classify(v mic.Value) Category {
	s, r := e.Susceptible, e.Resistant
	if e.Source == SourceECOFF {
		s, r = e.ECOFF, e.ECOFF
	}

	switch v.Censor {
	case mic.CensorGT:
		if v.Magnitude >= r {
			return Resistant
		}
		return Unclassified
	case mic.CensorLT:
		if v.Magnitude <= s {
			return Susceptible
		}
		return Unclassified
	}

	switch {
	case v.Magnitude <= s:
		return Susceptible
	case v.Magnitude > r:
		return Resistant
	default:
		return Intermediate
	}
}

func (e Entry) validate() error {
	if strings.TrimSpace(e.Antibiotic) == "" || strings.TrimSpace(e.Organism) == "" {
		return fmt.Errorf("antibiotic and organism are required")
	}
	switch e.Source {
	case SourceClinical:
		if e.Susceptible <= 0 || e.Resistant <= 0 {
			return fmt.Errorf("%s/%s: clinical thresholds must be positive", e.Antibiotic, e.Organism)
		}
		if e.Susceptible > e.Resistant {
			return fmt.Errorf("%s/%s: susceptible threshold %v exceeds resistant threshold %v",
				e.Antibiotic, e.Organism, e.Susceptible, e.Resistant)
		}
	case SourceECOFF:
		if e.ECOFF <= 0 {
			return fmt.Errorf("%s/%s: ECOFF must be positive", e.Antibiotic, e.Organism)
		}
	default:
		return fmt.Errorf("%s/%s: unknown source %q", e.Antibiotic, e.Organism, e.Source)
	}
	return nil
}

type key struct {
	antibiotic string
	organism   string
	source     Source
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Table is an immutable breakpoint table. It is safe for concurrent use.
type Table struct {
	entries map[key]Entry
	lookups map[string][]string // normalized organism code -> normalized groups
	groups  map[string][]string // organism code -> groups as supplied, most specific first
	order   []Entry
}

// NewTable validates the entries and builds a table.
// groups maps an organism code to the groups it belongs to, most specific first.
func NewTable(entries []Entry, groups map[string][]string) (*Table, error) {
	t := &Table{
		entries: make(map[key]Entry, len(entries)),
		lookups: make(map[string][]string, len(groups)),
		groups:  make(map[string][]string, len(groups)),
		order:   make([]Entry, 0, len(entries)),
	}

	for i, e := range entries {
		if err := e.validate(); err != nil {
			return nil, fmt.Errorf("breakpoint entry %d: %w", i, err)
		}
		k := key{normalize(e.Antibiotic), normalize(e.Organism), e.Source}
		if _, dup := t.entries[k]; dup {
			return nil, fmt.Errorf("breakpoint entry %d: duplicate %s breakpoint for %s/%s",
				i, e.Source, e.Antibiotic, e.Organism)
		}
		t.entries[k] = e
		t.order = append(t.order, e)
	}

	for organism, gs := range groups {
		norm := make([]string, 0, len(gs))
		for _, g := range gs {
			norm = append(norm, normalize(g))
		}
		t.lookups[normalize(organism)] = norm
		t.groups[organism] = append([]string(nil), gs...)
	}

	return t, nil
}

// Empty returns a table without any entries. Every lookup is unresolved.
func Empty() *Table {
	t, _ := NewTable(nil, nil)
	return t
}

// Len returns the number of entries
func (t *Table) Len() int {
	return len(t.order)
}

// Entries returns a copy of the entries in load order
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.order))
	copy(out, t.order)
	return out
}

// Groups returns a copy of the organism group mapping with its original spelling
func (t *Table) Groups() map[string][]string {
	out := make(map[string][]string, len(t.groups))
	for k, v := range t.groups {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Resolve finds the thresholds for an antibiotic/organism pair.
// Clinical breakpoints are tried first, for the organism itself and then each
// of its groups. ECOFFs are consulted the same way only when acceptECOFF is set.
func (t *Table) Resolve(antibiotic, organism string, acceptECOFF bool) (Entry, bool) {
	ab, mo := normalize(antibiotic), normalize(organism)
	if ab == "" || mo == "" {
		return Entry{}, false
	}

	candidates := append([]string{mo}, t.lookups[mo]...)

	if e, ok := t.lookup(ab, candidates, SourceClinical); ok {
		return e, true
	}
	if acceptECOFF {
		if e, ok := t.lookup(ab, candidates, SourceECOFF); ok {
			return e, true
		}
	}
	return Entry{}, false
}

func (t *Table) lookup(ab string, organisms []string, source Source) (Entry, bool) {
	for _, mo := range organisms {
		if e, ok := t.entries[key{ab, mo, source}]; ok {
			return e, true
		}
	}
	return Entry{}, false
}
