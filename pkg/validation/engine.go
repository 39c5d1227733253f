/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: engine.go
Description: MIC validation engine. Constructed once with a loaded breakpoint
table, it parses paired gold-standard/test MIC tokens, snaps them to the
dilution ladder, evaluates essential and categorical agreement for every
observation, and returns an immutable dataset. Safe for concurrent use.
*/

package validation

import (
	"io"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/mic-validator/pkg/breakpoints"
	"github.com/kleascm/mic-validator/pkg/mic"
	"github.com/kleascm/mic-validator/pkg/monitoring"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Input holds the paired sequences to compare.
// Antibiotics and Organisms are optional; a single value applies to every row.
type Input struct {
	GoldStandard []string
	Test         []string
	Antibiotics  []string
	Organisms    []string
}

// Engine compares MIC sequences against a read-only breakpoint table
type Engine struct {
	table   *breakpoints.Table
	logger  *logrus.Logger
	metrics *monitoring.Collector
	workers int
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithLogger sets the logger used for per-comparison diagnostics
func WithLogger(logger *logrus.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// WithMetrics attaches a metrics collector
func WithMetrics(c *monitoring.Collector) EngineOption {
	return func(e *Engine) { e.metrics = c }
}

// WithWorkers bounds the number of rows evaluated in parallel
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// NewEngine creates an engine. A nil table behaves like an empty one.
func NewEngine(table *breakpoints.Table, opts ...EngineOption) *Engine {
	if table == nil {
		table = breakpoints.Empty()
	}
	silent := logrus.New()
	silent.SetOutput(io.Discard)

	e := &Engine{
		table:   table,
		logger:  silent,
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Table returns the engine's breakpoint table
func (e *Engine) Table() *breakpoints.Table {
	return e.table
}

// Compare validates the test sequence against the gold standard.
// Configuration and length errors are raised before any token is parsed; a
// malformed token aborts the whole comparison.
func (e *Engine) Compare(in Input, cfg Config) (*Dataset, error) {
	start := time.Now()

	obs, err := e.prepare(in, cfg)
	if err != nil {
		if e.metrics != nil {
			e.metrics.RecordFailure()
		}
		e.logger.WithError(err).Warn("Comparison rejected")
		return nil, err
	}

	rows := make([]Row, len(obs))
	withCodes := len(in.Antibiotics) > 0 || len(in.Organisms) > 0
	categorical := len(in.Antibiotics) > 0 && len(in.Organisms) > 0

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i := range obs {
		i := i
		g.Go(func() error {
			rows[i] = Row{Observation: obs[i], Result: e.evaluate(obs[i], cfg, withCodes, categorical)}
			return nil
		})
	}
	_ = g.Wait() // evaluation is total once inputs are validated

	ds := newDataset(uuid.New().String(), cfg, rows, len(in.Antibiotics) > 0, len(in.Organisms) > 0)
	diag := ds.Diagnostics()
	duration := time.Since(start)

	if e.metrics != nil {
		e.metrics.RecordComparison(ds.Len(), diag.Unevaluable, diag.Unclassifiable, duration)
	}

	fields := logrus.Fields{
		"dataset_id":     ds.ID(),
		"observations":   ds.Len(),
		"unevaluable":    diag.Unevaluable,
		"unclassifiable": diag.Unclassifiable,
		"duration":       duration,
	}
	if diag.Unclassifiable > 0 {
		e.logger.WithFields(fields).Warn("Breakpoints unresolved for some observations")
	} else {
		e.logger.WithFields(fields).Debug("Comparison completed")
	}

	return ds, nil
}

// prepare validates the inputs and builds the observations
func (e *Engine) prepare(in Input, cfg Config) ([]Observation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	n := len(in.GoldStandard)
	if len(in.Test) != n {
		return nil, &LengthMismatchError{Field: "test", Got: len(in.Test), Want: n}
	}
	abs, err := broadcast("ab", in.Antibiotics, n)
	if err != nil {
		return nil, err
	}
	mos, err := broadcast("mo", in.Organisms, n)
	if err != nil {
		return nil, err
	}

	gold, err := parseSide("gold_standard", in.GoldStandard, cfg.Simplify)
	if err != nil {
		return nil, err
	}
	test, err := parseSide("test", in.Test, cfg.Simplify)
	if err != nil {
		return nil, err
	}

	obs := make([]Observation, n)
	for i := 0; i < n; i++ {
		obs[i] = Observation{
			Index:      i,
			Gold:       gold[i],
			Test:       test[i],
			Antibiotic: abs[i],
			Organism:   mos[i],
		}
	}
	return obs, nil
}

// broadcast expands an optional code sequence to n rows
func broadcast(field string, codes []string, n int) ([]string, error) {
	out := make([]string, n)
	switch len(codes) {
	case 0:
	case 1:
		for i := range out {
			out[i] = codes[0]
		}
	case n:
		copy(out, codes)
	default:
		return nil, &LengthMismatchError{Field: field, Got: len(codes), Want: n}
	}
	return out, nil
}

func parseSide(field string, tokens []string, simplify bool) ([]mic.Value, error) {
	values, idx, err := mic.ParseAll(tokens)
	if err != nil {
		return nil, &ParseError{Field: field, Index: idx, Token: tokens[idx], Err: err}
	}
	if simplify {
		for i := range values {
			values[i] = mic.Simplify(values[i])
		}
	}
	return values, nil
}

// evaluate computes the agreement result of a single observation.
// With only one of antibiotic or organism codes the row is unclassifiable.
func (e *Engine) evaluate(o Observation, cfg Config, withCodes, categorical bool) AgreementResult {
	ea, diff := EvaluateEssential(o.Gold, o.Test, cfg)
	res := AgreementResult{
		EssentialAgreement: ea,
		DilutionDifference: diff,
	}
	if !categorical {
		if withCodes {
			res.CategoricalAgreement = Unclassifiable
		}
		return res
	}

	entry, ok := e.table.Resolve(o.Antibiotic, o.Organism, cfg.AcceptECOFF)
	if !ok {
		res.CategoricalAgreement = Unclassifiable
		return res
	}
	res.GoldCategory = entry.Classify(o.Gold)
	res.TestCategory = entry.Classify(o.Test)
	res.CategoricalAgreement = CompareCategories(res.GoldCategory, res.TestCategory)
	return res
}
