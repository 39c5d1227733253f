/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: export.go
Description: Tabular export of validation datasets. Produces one record per
observation with the gold standard, test and essential agreement columns,
plus categorical columns when antibiotic/organism codes were supplied.
*/

package validation

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/kleascm/mic-validator/pkg/mic"
)

// Base export columns, always present
var baseColumns = []string{"gold_standard", "test", "essential_agreement"}

// Categorical export columns, present when codes were supplied
var categoricalColumns = []string{"antibiotic", "organism", "gold_category", "test_category", "categorical_agreement"}

// Record is one exported observation. Gold and Test keep the numeric values
// for consumers such as plots; the string fields are the exported cells.
type Record struct {
	Gold                 mic.Value          `json:"-"`
	Test                 mic.Value          `json:"-"`
	Agreement            EssentialAgreement `json:"-"`
	DilutionDifference   int                `json:"-"`
	GoldStandard         string             `json:"gold_standard"`
	TestValue            string             `json:"test"`
	EssentialAgreement   string             `json:"essential_agreement"`
	Antibiotic           string             `json:"antibiotic,omitempty"`
	Organism             string             `json:"organism,omitempty"`
	GoldCategory         string             `json:"gold_category,omitempty"`
	TestCategory         string             `json:"test_category,omitempty"`
	CategoricalAgreement string             `json:"categorical_agreement,omitempty"`
}

// Table is the tabular form of a dataset
type Table struct {
	Columns []string `json:"columns"`
	Records []Record `json:"records"`
}

// HasCodes reports whether the table carries antibiotic/organism columns
func (t Table) HasCodes() bool {
	return len(t.Columns) > len(baseColumns)
}

// Export builds the tabular form of a dataset
func Export(ds *Dataset) Table {
	withCodes := ds.HasCodes()

	cols := append([]string(nil), baseColumns...)
	if withCodes {
		cols = append(cols, categoricalColumns...)
	}

	mode := ds.Config().EAMode
	records := make([]Record, 0, ds.Len())
	for _, r := range ds.rows {
		rec := Record{
			Gold:               r.Observation.Gold,
			Test:               r.Observation.Test,
			Agreement:          r.Result.EssentialAgreement,
			DilutionDifference: r.Result.DilutionDifference,
			GoldStandard:       r.Observation.Gold.String(),
			TestValue:          r.Observation.Test.String(),
			EssentialAgreement: r.Result.EssentialAgreement.Label(mode),
		}
		if withCodes {
			rec.Antibiotic = r.Observation.Antibiotic
			rec.Organism = r.Observation.Organism
			rec.GoldCategory = categoryCell(string(r.Result.GoldCategory))
			rec.TestCategory = categoryCell(string(r.Result.TestCategory))
			rec.CategoricalAgreement = string(r.Result.CategoricalAgreement)
		}
		records = append(records, rec)
	}

	return Table{Columns: cols, Records: records}
}

func categoryCell(c string) string {
	if c == "" {
		return "NA"
	}
	return c
}

// cells returns the record's values in column order
func (r Record) cells(withCodes bool) []string {
	out := []string{r.GoldStandard, r.TestValue, r.EssentialAgreement}
	if withCodes {
		out = append(out, r.Antibiotic, r.Organism, r.GoldCategory, r.TestCategory, r.CategoricalAgreement)
	}
	return out
}

// WriteCSV writes the table with a header row
func (t Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, r := range t.Records {
		if err := cw.Write(r.cells(t.HasCodes())); err != nil {
			return fmt.Errorf("write csv record %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the records as an indented JSON array
func (t Table) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t.Records)
}
