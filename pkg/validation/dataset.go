/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: dataset.go
Description: Immutable validation dataset. Holds the parsed observations and
their agreement results in input order, together with diagnostics about rows
excluded from essential or categorical rates.
*/

package validation

import (
	"time"

	"github.com/kleascm/mic-validator/pkg/mic"
)

// Observation is one gold/test MIC pair with its optional codes
type Observation struct {
	Index      int       `json:"index"`
	Gold       mic.Value `json:"gold"`
	Test       mic.Value `json:"test"`
	Antibiotic string    `json:"antibiotic,omitempty"`
	Organism   string    `json:"organism,omitempty"`
}

// Row pairs an observation with its evaluated result
type Row struct {
	Observation Observation     `json:"observation"`
	Result      AgreementResult `json:"result"`
}

// Diagnostics counts rows excluded from the rate denominators
type Diagnostics struct {
	Unevaluable    int `json:"unevaluable"`
	Unclassifiable int `json:"unclassifiable"`
}

// Dataset is the immutable result of a comparison. Accessors return copies.
type Dataset struct {
	id             string
	createdAt      time.Time
	config         Config
	rows           []Row
	hasAntibiotics bool
	hasOrganisms   bool
	diagnostics    Diagnostics
}

func newDataset(id string, cfg Config, rows []Row, hasAB, hasMO bool) *Dataset {
	ds := &Dataset{
		id:             id,
		createdAt:      time.Now(),
		config:         cfg,
		rows:           rows,
		hasAntibiotics: hasAB,
		hasOrganisms:   hasMO,
	}
	for _, r := range rows {
		if !r.Result.EssentialAgreement.Evaluable() {
			ds.diagnostics.Unevaluable++
		}
		if ds.HasCodes() && !r.Result.CategoricalAgreement.Classifiable() {
			ds.diagnostics.Unclassifiable++
		}
	}
	return ds
}

// ID returns the unique identifier of the comparison run
func (d *Dataset) ID() string { return d.id }

// CreatedAt returns when the dataset was built
func (d *Dataset) CreatedAt() time.Time { return d.createdAt }

// Config returns the configuration the dataset was built with
func (d *Dataset) Config() Config { return d.config }

// Len returns the number of observations
func (d *Dataset) Len() int { return len(d.rows) }

// Rows returns a copy of all rows in input order
func (d *Dataset) Rows() []Row {
	out := make([]Row, len(d.rows))
	copy(out, d.rows)
	return out
}

// Row returns the row at index i
func (d *Dataset) Row(i int) Row { return d.rows[i] }

// HasAntibiotics reports whether antibiotic codes were supplied
func (d *Dataset) HasAntibiotics() bool { return d.hasAntibiotics }

// HasOrganisms reports whether organism codes were supplied
func (d *Dataset) HasOrganisms() bool { return d.hasOrganisms }

// HasCodes reports whether antibiotic or organism codes were supplied.
// Rows of such a dataset carry a categorical result, unclassifiable when
// only one kind of code was given.
func (d *Dataset) HasCodes() bool { return d.hasAntibiotics || d.hasOrganisms }

// Categorical reports whether categorical agreement was evaluated
func (d *Dataset) Categorical() bool { return d.hasAntibiotics && d.hasOrganisms }

// Diagnostics returns the excluded-row counts
func (d *Dataset) Diagnostics() Diagnostics { return d.diagnostics }

// Antibiotics returns the distinct antibiotic codes in first-seen order
func (d *Dataset) Antibiotics() []string {
	return distinct(d.rows, func(r Row) string { return r.Observation.Antibiotic })
}

// Organisms returns the distinct organism codes in first-seen order
func (d *Dataset) Organisms() []string {
	return distinct(d.rows, func(r Row) string { return r.Observation.Organism })
}

// EssentialAgreements returns the EA outcome of every row in order
func (d *Dataset) EssentialAgreements() []EssentialAgreement {
	out := make([]EssentialAgreement, len(d.rows))
	for i, r := range d.rows {
		out[i] = r.Result.EssentialAgreement
	}
	return out
}

func distinct(rows []Row, keyFn func(Row) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		k := keyFn(r)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
