/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: breakpoints.go
Description: CLI commands for breakpoint tables: list the entries of a table,
resolve the thresholds for an antibiotic/organism pair and convert a table
between YAML, JSON and SQLite.
*/

package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/kleascm/mic-validator/pkg/breakpoints"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func loadBreakpoints() (*breakpoints.Table, string, error) {
	if err := LoadConfig(); err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}
	path := viper.GetString("breakpoints")
	if path == "" {
		return nil, "", fmt.Errorf("breakpoints file is required")
	}
	table, err := breakpoints.LoadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load breakpoints: %w", err)
	}
	return table, path, nil
}

func threshold(v float64) string {
	if v == 0 {
		return "-"
	}
	return fmt.Sprint(v)
}

// RunBreakpointsList prints every entry of the configured table
func RunBreakpointsList(cmd *cobra.Command, args []string) error {
	table, _, err := loadBreakpoints()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "antibiotic\torganism\tsource\tS<=\tR>\tECOFF")
	for _, e := range table.Entries() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Antibiotic, e.Organism, e.Source,
			threshold(e.Susceptible), threshold(e.Resistant), threshold(e.ECOFF))
	}
	return tw.Flush()
}

// RunBreakpointsResolve prints the entry used for an antibiotic/organism pair
func RunBreakpointsResolve(cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("expected <antibiotic> <organism>")
	}
	table, _, err := loadBreakpoints()
	if err != nil {
		return err
	}

	e, ok := table.Resolve(args[0], args[1], EngineConfig().AcceptECOFF)
	if !ok {
		return fmt.Errorf("no breakpoint for %s/%s", args[0], args[1])
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s/%s (%s): S<=%s R>%s ECOFF=%s\n",
		e.Antibiotic, e.Organism, e.Source,
		threshold(e.Susceptible), threshold(e.Resistant), threshold(e.ECOFF))
	return nil
}

// RunBreakpointsConvert writes the configured table in the format of the target path
func RunBreakpointsConvert(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected <target>")
	}
	table, source, err := loadBreakpoints()
	if err != nil {
		return err
	}
	if err := breakpoints.SaveFile(args[0], table, viper.GetString("guideline")); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "converted %d entries from %s to %s\n", table.Len(), source, args[0])
	return nil
}
