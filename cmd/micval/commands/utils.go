/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the micval commands. Provides configuration
loading, logging setup, breakpoint and input loading, and the per-command
session that wires the engine, metrics and profiler together.
*/

package commands

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kleascm/mic-validator/pkg/breakpoints"
	"github.com/kleascm/mic-validator/pkg/logging"
	"github.com/kleascm/mic-validator/pkg/monitoring"
	"github.com/kleascm/mic-validator/pkg/utils"
	"github.com/kleascm/mic-validator/pkg/validation"
	"github.com/spf13/viper"
)

// LoadConfig loads configuration from files and environment
func LoadConfig() error {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	viper.SetEnvPrefix("MICVAL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	return nil
}

// SetupLogging builds the logger from configuration
func SetupLogging(console io.Writer) (*logging.Logger, error) {
	config := logging.DefaultLoggerConfig()
	if v := viper.GetString("log_level"); v != "" {
		config.Level = logging.LogLevel(v)
	}
	if v := viper.GetString("log_format"); v != "" {
		config.Format = logging.LogFormat(v)
	}
	config.OutputDir = viper.GetString("log_dir")
	if v := viper.GetInt("log_max_files"); v > 0 {
		config.MaxFiles = v
	}
	config.Console = console

	logger, err := logging.NewLogger(config)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	return logger, nil
}

// EngineConfig reads the comparison options
func EngineConfig() validation.Config {
	cfg := validation.DefaultConfig()
	if viper.IsSet("validation.accept_ecoff") {
		cfg.AcceptECOFF = viper.GetBool("validation.accept_ecoff")
	}
	if viper.IsSet("validation.simplify") {
		cfg.Simplify = viper.GetBool("validation.simplify")
	}
	if viper.IsSet("validation.ea_mode") {
		cfg.EAMode = validation.EAMode(viper.GetString("validation.ea_mode"))
	}
	if viper.IsSet("validation.tolerate_censoring") {
		cfg.TolerateCensoring = validation.Tolerance(viper.GetString("validation.tolerate_censoring"))
	}
	if viper.IsSet("validation.tolerate_matched_censoring") {
		cfg.TolerateMatchedCensoring = validation.Tolerance(viper.GetString("validation.tolerate_matched_censoring"))
	}
	if viper.IsSet("validation.tolerate_leq") {
		cfg.TolerateLEQ = viper.GetBool("validation.tolerate_leq")
	}
	if viper.IsSet("validation.tolerate_geq") {
		cfg.TolerateGEQ = viper.GetBool("validation.tolerate_geq")
	}
	return cfg
}

// ParseGroupBy maps a group_by option to its value
func ParseGroupBy(s string) (validation.GroupBy, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return validation.GroupAuto, nil
	case "none":
		return validation.GroupNone, nil
	case "antibiotic", "ab":
		return validation.GroupAntibiotic, nil
	case "antibiotic_organism", "ab_mo":
		return validation.GroupAntibioticOrganism, nil
	default:
		return validation.GroupAuto, fmt.Errorf("unsupported group_by %q", s)
	}
}

// InputColumns names the CSV columns holding each sequence
type InputColumns struct {
	Gold       string
	Test       string
	Antibiotic string
	Organism   string
}

func inputColumns() InputColumns {
	return InputColumns{
		Gold:       viper.GetString("gold_column"),
		Test:       viper.GetString("test_column"),
		Antibiotic: viper.GetString("ab_column"),
		Organism:   viper.GetString("mo_column"),
	}
}

// ReadInput reads paired MIC sequences from a CSV file with a header row.
// Antibiotic and organism columns are optional.
func ReadInput(r io.Reader, cols InputColumns) (validation.Input, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return validation.Input{}, fmt.Errorf("read csv header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	column := func(name string) int {
		if name == "" {
			return -1
		}
		if i, ok := index[strings.ToLower(name)]; ok {
			return i
		}
		return -1
	}

	goldIdx, testIdx := column(cols.Gold), column(cols.Test)
	if goldIdx < 0 || testIdx < 0 {
		return validation.Input{}, fmt.Errorf("csv must contain %q and %q columns", cols.Gold, cols.Test)
	}
	abIdx, moIdx := column(cols.Antibiotic), column(cols.Organism)

	var in validation.Input
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return validation.Input{}, fmt.Errorf("read csv line %d: %w", line, err)
		}
		in.GoldStandard = append(in.GoldStandard, record[goldIdx])
		in.Test = append(in.Test, record[testIdx])
		if abIdx >= 0 {
			in.Antibiotics = append(in.Antibiotics, record[abIdx])
		}
		if moIdx >= 0 {
			in.Organisms = append(in.Organisms, record[moIdx])
		}
	}
	return in, nil
}

// loadInput reads the configured input file and applies scalar codes
func loadInput() (validation.Input, error) {
	path := viper.GetString("input")
	if path == "" {
		return validation.Input{}, fmt.Errorf("input file is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return validation.Input{}, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	in, err := ReadInput(f, inputColumns())
	if err != nil {
		return validation.Input{}, fmt.Errorf("%s: %w", path, err)
	}
	if ab := viper.GetString("ab"); ab != "" && len(in.Antibiotics) == 0 {
		in.Antibiotics = []string{ab}
	}
	if mo := viper.GetString("mo"); mo != "" && len(in.Organisms) == 0 {
		in.Organisms = []string{mo}
	}
	return in, nil
}

// session holds the collaborators of one command run
type session struct {
	logger   *logging.Logger
	metrics  *monitoring.Collector
	profiler *monitoring.Profiler
	engine   *validation.Engine
}

// newSession loads configuration, sets up logging, loads breakpoints and
// builds the engine
func newSession(console io.Writer) (*session, error) {
	if err := LoadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := SetupLogging(console)
	if err != nil {
		return nil, err
	}

	s := &session{logger: logger, metrics: monitoring.NewCollector()}

	if dir := viper.GetString("profile_dir"); dir != "" {
		s.profiler = monitoring.NewProfiler(dir, logger.GetLogger())
		if err := s.profiler.Start(); err != nil {
			logger.Close()
			return nil, err
		}
	}

	table := breakpoints.Empty()
	if path := viper.GetString("breakpoints"); path != "" {
		table, err = breakpoints.LoadFile(path)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("failed to load breakpoints: %w", err)
		}
		logger.LogBreakpoints(path, table.Len(), len(table.Groups()))
	}

	s.engine = validation.NewEngine(table,
		validation.WithLogger(logger.GetLogger()),
		validation.WithMetrics(s.metrics),
		validation.WithWorkers(viper.GetInt("workers")),
	)
	return s, nil
}

// compare loads the input and runs the comparison
func (s *session) compare() (*validation.Dataset, error) {
	in, err := loadInput()
	if err != nil {
		return nil, err
	}
	ds, err := s.engine.Compare(in, EngineConfig())
	if err != nil {
		s.logger.LogRejected(err)
		return nil, err
	}
	diag := ds.Diagnostics()
	snap := s.metrics.Snapshot()
	s.logger.LogComparison(ds.ID(), ds.Len(), diag.Unevaluable, diag.Unclassifiable, snap.TotalDuration)
	return ds, nil
}

// writeResult stores a JSON result when a results directory is configured
func (s *session) writeResult(kind, run string, result interface{}) error {
	dir := viper.GetString("results_dir")
	if dir == "" {
		return nil
	}
	path, err := utils.WriteResult(dir, kind, run, result)
	if err != nil {
		return err
	}
	s.logger.LogExport(path, "json", 1)
	return nil
}

func (s *session) close() {
	if s.profiler != nil {
		if _, err := s.profiler.Stop(); err != nil {
			s.logger.GetLogger().WithError(err).Warn("Failed to stop profiler")
		}
	}
	s.metrics.LogSnapshot(s.logger.GetLogger())
	s.logger.Close()
}
