/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: plot.go
Description: CLI command for the agreement plot. Builds the facetted
confusion grids and writes them as an HTML report, or renders the report to
PNG or PDF through headless Chrome.
*/

package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kleascm/mic-validator/pkg/reporting"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// PlotOptions reads the plot layout options
func PlotOptions() reporting.PlotOptions {
	opts := reporting.DefaultPlotOptions()
	if viper.IsSet("plot.match_axes") {
		opts.MatchAxes = viper.GetBool("plot.match_axes")
	}
	if viper.IsSet("plot.add_missing_dilutions") {
		opts.AddMissingDilutions = viper.GetBool("plot.add_missing_dilutions")
	}
	opts.FacetWrapNcol = viper.GetInt("plot.facet_wrap_ncol")
	opts.FacetWrapNrow = viper.GetInt("plot.facet_wrap_nrow")
	return opts
}

// RunPlot compares the input sequences and writes the plot report
func RunPlot(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.close()

	by, err := ParseGroupBy(viper.GetString("group_by"))
	if err != nil {
		return err
	}
	ds, err := s.compare()
	if err != nil {
		return err
	}
	report, err := reporting.NewReport(ds, by, PlotOptions())
	if err != nil {
		return fmt.Errorf("failed to build plot: %w", err)
	}

	output := viper.GetString("output")
	if output == "" {
		output = "./report"
	}

	ext := strings.ToLower(filepath.Ext(output))
	switch ext {
	case "":
		path, err := reporting.NewReportGenerator(output, s.logger.GetLogger()).Generate(report)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	case ".html", ".htm":
		if err := writeHTML(output, report); err != nil {
			return err
		}
	case ".png", ".pdf":
		renderer := reporting.NewRenderer()
		renderer.ExecPath = viper.GetString("plot.chrome_path")
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		var data []byte
		if ext == ".png" {
			data, err = renderer.RenderPNG(ctx, report)
		} else {
			data, err = renderer.RenderPDF(ctx, report)
		}
		if err != nil {
			return err
		}
		if err := writeFile(output, data); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported plot output %q (use a directory, .html, .png or .pdf)", output)
	}

	s.logger.LogExport(output, strings.TrimPrefix(ext, "."), ds.Len())
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}

func writeHTML(path string, report *reporting.Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()
	return reporting.RenderHTML(f, report)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
