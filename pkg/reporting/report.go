/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: report.go
Description: HTML report generation for validation results. Combines the
dataset description, summary statistics and agreement plot into a single
self-contained page, written to an output directory or any writer.
*/

package reporting

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/kleascm/mic-validator/pkg/validation"
	"github.com/sirupsen/logrus"
)

// Report contains all data for report generation
type Report struct {
	Title       string              `json:"title"`
	GeneratedAt time.Time           `json:"generated_at"`
	RunID       string              `json:"run_id"`
	Description string              `json:"description"`
	Summary     *validation.Summary `json:"summary,omitempty"`
	Plot        *Plot               `json:"plot,omitempty"`
}

// NewReport assembles a report for a dataset
func NewReport(ds *validation.Dataset, by validation.GroupBy, opts PlotOptions) (*Report, error) {
	plot, err := BuildPlot(validation.Export(ds), opts)
	if err != nil {
		return nil, err
	}
	return &Report{
		Title:       "MIC Validation Report",
		GeneratedAt: time.Now(),
		RunID:       ds.ID(),
		Description: Describe(ds),
		Summary:     validation.Summarize(ds, by),
		Plot:        plot,
	}, nil
}

// Class returns the CSS class of a cell
func (c Cell) Class() string {
	if c.Count == 0 {
		return "empty"
	}
	switch c.Agreement {
	case "EA", "TRUE":
		return "ea-agree"
	case "non-EA", "FALSE":
		return "ea-disagree"
	default:
		return "ea-na"
	}
}

var reportFuncs = template.FuncMap{
	"percent": percent,
	"decimal": decimal,
}

var reportTmpl = template.Must(template.New("report").Funcs(reportFuncs).Parse(reportTemplate))

// RenderHTML writes the report page to w
func RenderHTML(w io.Writer, r *Report) error {
	if err := reportTmpl.Execute(w, r); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

// ReportGenerator writes HTML reports into an output directory
type ReportGenerator struct {
	outputDir string
	logger    *logrus.Logger
}

// NewReportGenerator creates a new report generator
func NewReportGenerator(outputDir string, logger *logrus.Logger) *ReportGenerator {
	return &ReportGenerator{
		outputDir: outputDir,
		logger:    logger,
	}
}

// Generate writes index.html and returns its path
func (rg *ReportGenerator) Generate(r *Report) (string, error) {
	if err := os.MkdirAll(rg.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	outputFile := filepath.Join(rg.outputDir, "index.html")
	file, err := os.Create(outputFile)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := RenderHTML(file, r); err != nil {
		return "", err
	}

	facets := 0
	if r.Plot != nil {
		facets = len(r.Plot.Facets)
	}
	rg.logger.WithFields(logrus.Fields{
		"path":   outputFile,
		"facets": facets,
	}).Info("Plot report written")
	return outputFile, nil
}
