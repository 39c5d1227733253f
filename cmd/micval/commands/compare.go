/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: compare.go
Description: CLI commands that run a comparison and present the dataset:
compare prints the dataset description, summary prints the summary
statistics and export writes the per-observation table.
*/

package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kleascm/mic-validator/pkg/reporting"
	"github.com/kleascm/mic-validator/pkg/validation"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunCompare compares the input sequences and prints the dataset description
func RunCompare(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.close()

	ds, err := s.compare()
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), reporting.Describe(ds))
	return s.writeResult("dataset", ds.ID(), validation.Export(ds))
}

// RunSummary compares the input sequences and prints summary statistics
func RunSummary(cmd *cobra.Command, args []string) error {
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
	summary := validation.Summarize(ds, by)

	out := cmd.OutOrStdout()
	if viper.GetBool("summary.json") {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			return fmt.Errorf("failed to encode summary: %w", err)
		}
	} else {
		fmt.Fprint(out, reporting.SummaryText(summary))
	}
	return s.writeResult("summary", ds.ID(), summary)
}

// RunExport compares the input sequences and writes the tabular export
func RunExport(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.close()

	ds, err := s.compare()
	if err != nil {
		return err
	}
	table := validation.Export(ds)

	output := viper.GetString("output")
	format, err := exportFormat(viper.GetString("format"), output)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "json":
		err = table.WriteJSON(w)
	default:
		err = table.WriteCSV(w)
	}
	if err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	if output != "" {
		s.logger.LogExport(output, format, len(table.Records))
	}
	return nil
}

// exportFormat resolves the export format from the flag or the file extension
func exportFormat(format, output string) (string, error) {
	if format == "" || format == "auto" {
		if strings.EqualFold(filepath.Ext(output), ".json") {
			return "json", nil
		}
		return "csv", nil
	}
	switch format {
	case "csv", "json":
		return format, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}
}
