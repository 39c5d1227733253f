/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: text.go
Description: Plain-text presentation of validation datasets and summaries:
the one-line object description and the multi-line summary report.
*/

package reporting

import (
	"fmt"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/kleascm/mic-validator/pkg/validation"
)

// Describe returns a short description of a dataset
func Describe(ds *validation.Dataset) string {
	var b strings.Builder
	fmt.Fprintf(&b, "MIC validation object with %d observations\n", ds.Len())
	if ds.Categorical() {
		b.WriteString("Agreement type: essential and categorical\n")
	} else {
		b.WriteString("Agreement type: essential\n")
	}
	if abs := ds.Antibiotics(); len(abs) > 0 {
		fmt.Fprintf(&b, "Antibiotics: %s\n", strings.Join(abs, ", "))
	}
	if mos := ds.Organisms(); len(mos) > 0 {
		fmt.Fprintf(&b, "Organisms: %s\n", strings.Join(mos, ", "))
	}
	return b.String()
}

// percent formats a rate, or NA when undefined
func percent(rate float64) string {
	if math.IsNaN(rate) {
		return "NA"
	}
	return fmt.Sprintf("%.1f%%", rate*100)
}

func decimal(v float64) string {
	if math.IsNaN(v) {
		return "NA"
	}
	return fmt.Sprintf("%.2f", v)
}

// SummaryText renders a summary as a human-readable report
func SummaryText(s *validation.Summary) string {
	var b strings.Builder
	o := s.Overall

	b.WriteString("MIC validation summary\n")
	fmt.Fprintf(&b, "Essential agreement: %d/%d (%s)\n", o.EACount, o.Evaluable, percent(o.EARate))
	fmt.Fprintf(&b, "Bias: %s\n", decimal(o.Bias))
	if s.Categorical {
		fmt.Fprintf(&b, "Categorical agreement: %d/%d (%s)\n", o.CACount, o.Classifiable, percent(o.CARate))
		fmt.Fprintf(&b, "Minor errors: %d (%s)\n", o.Minor, percent(o.MinorRate))
		fmt.Fprintf(&b, "Major errors: %d (%s)\n", o.Major, percent(o.MajorRate))
		fmt.Fprintf(&b, "Very major errors: %d (%s)\n", o.VeryMajor, percent(o.VeryMajorRate))
	}
	if s.Diagnostics.Unevaluable > 0 {
		fmt.Fprintf(&b, "Unevaluable observations: %d\n", s.Diagnostics.Unevaluable)
	}
	if s.Diagnostics.Unclassifiable > 0 {
		fmt.Fprintf(&b, "Unclassifiable observations: %d\n", s.Diagnostics.Unclassifiable)
	}

	if len(s.Groups) == 0 {
		return b.String()
	}

	b.WriteString("\n")
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	header := []string{"antibiotic"}
	if s.GroupBy == validation.GroupAntibioticOrganism {
		header = append(header, "organism")
	}
	header = append(header, "n", "EA", "bias")
	if s.Categorical {
		header = append(header, "CA", "minor", "major", "very_major")
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, g := range s.Groups {
		cells := []string{g.Antibiotic}
		if s.GroupBy == validation.GroupAntibioticOrganism {
			cells = append(cells, g.Organism)
		}
		cells = append(cells, fmt.Sprint(g.N), percent(g.EARate), decimal(g.Bias))
		if s.Categorical {
			cells = append(cells, percent(g.CARate), percent(g.MinorRate), percent(g.MajorRate), percent(g.VeryMajorRate))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()
	return b.String()
}
