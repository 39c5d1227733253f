/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Main command-line interface for the MIC validator. Compares test
MIC measurements against a gold standard from a CSV file and presents the
result as a description, summary statistics, a tabular export or a plot.
*/

package main

import (
	"fmt"
	"os"

	"github.com/kleascm/mic-validator/cmd/micval/commands"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "micval",
		Short: "MIC validation - compare test MICs against a gold standard",
		Long: `micval validates minimum inhibitory concentration measurements from a test
method against a gold standard. It reports essential agreement within one
doubling dilution and, when breakpoints are loaded and antibiotic/organism
codes are supplied, categorical agreement with minor, major and very major
error rates.`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Configuration file path")
	pf.String("log-level", "info", "Logging level (debug, info, warn, error)")
	pf.String("log-format", "custom", "Log format (text, json, custom)")
	pf.String("log-dir", "", "Log output directory (empty disables log files)")
	pf.Int("log-max-files", 10, "Maximum number of log files to keep")
	pf.String("breakpoints", "", "Breakpoint table (.yaml, .json, .db)")
	pf.Int("workers", 0, "Rows evaluated in parallel (0 = number of CPUs)")
	pf.String("profile-dir", "", "Write CPU and heap profiles to this directory")
	pf.String("results-dir", "", "Write JSON results to this directory")

	// Input flags
	pf.StringP("input", "i", "", "CSV file with gold standard and test columns")
	pf.String("gold-column", "gold_standard", "CSV column holding gold standard MICs")
	pf.String("test-column", "test", "CSV column holding test MICs")
	pf.String("ab-column", "ab", "CSV column holding antibiotic codes")
	pf.String("mo-column", "mo", "CSV column holding organism codes")
	pf.String("ab", "", "Antibiotic code applied to every row")
	pf.String("mo", "", "Organism code applied to every row")
	pf.StringP("output", "o", "", "Output path")
	pf.String("group-by", "auto", "Summary grouping (auto, none, antibiotic, antibiotic_organism)")

	// Comparison flags
	pf.Bool("accept-ecoff", false, "Fall back to ECOFFs when no clinical breakpoint exists")
	pf.Bool("simplify", true, "Snap values to the doubling dilution ladder")
	pf.String("ea-mode", "categorical", "Essential agreement wording (categorical, numeric)")
	pf.String("tolerate-censoring", "gold_standard", "Censored side accepted (strict, gold_standard, test, both)")
	pf.String("tolerate-matched-censoring", "both", "Same-direction censoring accepted (strict, gold_standard, test, both)")
	pf.Bool("tolerate-leq", true, "Accept values censored with < or <=")
	pf.Bool("tolerate-geq", true, "Accept values censored with > or >=")

	bindings := map[string]string{
		"config":                                "config",
		"log_level":                             "log-level",
		"log_format":                            "log-format",
		"log_dir":                               "log-dir",
		"log_max_files":                         "log-max-files",
		"breakpoints":                           "breakpoints",
		"workers":                               "workers",
		"profile_dir":                           "profile-dir",
		"results_dir":                           "results-dir",
		"input":                                 "input",
		"gold_column":                           "gold-column",
		"test_column":                           "test-column",
		"ab_column":                             "ab-column",
		"mo_column":                             "mo-column",
		"ab":                                    "ab",
		"mo":                                    "mo",
		"output":                                "output",
		"group_by":                              "group-by",
		"validation.accept_ecoff":               "accept-ecoff",
		"validation.simplify":                   "simplify",
		"validation.ea_mode":                    "ea-mode",
		"validation.tolerate_censoring":         "tolerate-censoring",
		"validation.tolerate_matched_censoring": "tolerate-matched-censoring",
		"validation.tolerate_leq":               "tolerate-leq",
		"validation.tolerate_geq":               "tolerate-geq",
	}
	for key, flag := range bindings {
		viper.BindPFlag(key, pf.Lookup(flag))
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "compare",
		Short: "Compare test MICs against the gold standard",
		Long: `Parse both MIC sequences, evaluate essential and categorical agreement for
every observation and print a description of the resulting dataset.`,
		RunE: commands.RunCompare,
	})

	// Add summary command
	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Print agreement statistics",
		Long: `Print essential agreement rate and bias, plus categorical agreement and
minor/major/very major error rates when categorical agreement was evaluated.
Statistics are grouped per antibiotic (and organism) when codes are supplied.`,
		RunE: commands.RunSummary,
	}
	summaryCmd.Flags().Bool("json", false, "Print the summary as JSON")
	viper.BindPFlag("summary.json", summaryCmd.Flags().Lookup("json"))
	rootCmd.AddCommand(summaryCmd)

	// Add export command
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write one row per observation as CSV or JSON",
		RunE:  commands.RunExport,
	}
	exportCmd.Flags().String("format", "auto", "Export format (auto, csv, json)")
	viper.BindPFlag("format", exportCmd.Flags().Lookup("format"))
	rootCmd.AddCommand(exportCmd)

	// Add plot command
	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "Plot gold standard against test MICs",
		Long: `Build one confusion grid per antibiotic, colored by essential agreement, and
write it as an HTML report (directory or .html) or render it to .png/.pdf with
headless Chrome.`,
		RunE: commands.RunPlot,
	}
	plotCmd.Flags().Bool("match-axes", true, "Use the same dilutions on both axes")
	plotCmd.Flags().Bool("add-missing-dilutions", true, "Show dilutions absent from the data")
	plotCmd.Flags().Int("facet-wrap-ncol", 0, "Facet grid columns (0 = automatic)")
	plotCmd.Flags().Int("facet-wrap-nrow", 0, "Facet grid rows (0 = automatic)")
	plotCmd.Flags().String("chrome-path", "", "Chrome binary used for PNG/PDF rendering")
	viper.BindPFlag("plot.match_axes", plotCmd.Flags().Lookup("match-axes"))
	viper.BindPFlag("plot.add_missing_dilutions", plotCmd.Flags().Lookup("add-missing-dilutions"))
	viper.BindPFlag("plot.facet_wrap_ncol", plotCmd.Flags().Lookup("facet-wrap-ncol"))
	viper.BindPFlag("plot.facet_wrap_nrow", plotCmd.Flags().Lookup("facet-wrap-nrow"))
	viper.BindPFlag("plot.chrome_path", plotCmd.Flags().Lookup("chrome-path"))
	rootCmd.AddCommand(plotCmd)

	// Add breakpoints command group
	breakpointsCmd := &cobra.Command{
		Use:   "breakpoints",
		Short: "Inspect and convert breakpoint tables",
	}
	breakpointsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the entries of the breakpoint table",
		RunE:  commands.RunBreakpointsList,
	})
	breakpointsCmd.AddCommand(&cobra.Command{
		Use:   "resolve <antibiotic> <organism>",
		Short: "Show the breakpoint applied to an antibiotic/organism pair",
		Args:  cobra.ExactArgs(2),
		RunE:  commands.RunBreakpointsResolve,
	})
	convertCmd := &cobra.Command{
		Use:   "convert <target>",
		Short: "Convert the breakpoint table to .yaml, .json or .db",
		Args:  cobra.ExactArgs(1),
		RunE:  commands.RunBreakpointsConvert,
	}
	convertCmd.Flags().String("guideline", "", "Guideline name stored with the table")
	viper.BindPFlag("guideline", convertCmd.Flags().Lookup("guideline"))
	breakpointsCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(breakpointsCmd)

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
