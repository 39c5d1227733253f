/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: engine_test.go
Description: Tests for the validation engine: input validation, essential
agreement under every censoring policy, categorical classification and
concurrent use of a shared engine.
*/

package validation

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kleascm/mic-validator/pkg/breakpoints"
	"github.com/kleascm/mic-validator/pkg/mic"
	"github.com/kleascm/mic-validator/pkg/monitoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	exampleGold = []string{"<0.25", "8", "64", ">64"}
	exampleTest = []string{"<0.25", "2", "16", "64"}
)

func testTable(t *testing.T) *breakpoints.Table {
	t.Helper()
	table, err := breakpoints.NewTable([]breakpoints.Entry{
		{Antibiotic: "AMK", Organism: "Enterobacterales", Susceptible: 8, Resistant: 8, Source: breakpoints.SourceClinical},
		{Antibiotic: "CIP", Organism: "Enterobacterales", Susceptible: 0.25, Resistant: 0.5, Source: breakpoints.SourceClinical},
		{Antibiotic: "FOS", Organism: "B_ESCHR_COLI", ECOFF: 4, Source: breakpoints.SourceECOFF},
		{Antibiotic: "GEN", Organism: "B_ESCHR_COLI", Susceptible: 2, Resistant: 4, Source: breakpoints.SourceClinical},
	}, map[string][]string{
		"B_ESCHR_COLI": {"Enterobacterales"},
		"B_KLBSL_PNMN": {"Enterobacterales"},
	})
	require.NoError(t, err)
	return table
}

func mustCompare(t *testing.T, e *Engine, in Input, cfg Config) *Dataset {
	t.Helper()
	ds, err := e.Compare(in, cfg)
	require.NoError(t, err)
	require.NotNil(t, ds)
	return ds
}

// TestCompareExample tests the reference example with default settings
func TestCompareExample(t *testing.T) {
	e := NewEngine(nil)
	ds := mustCompare(t, e, Input{GoldStandard: exampleGold, Test: exampleTest}, DefaultConfig())

	want := []EssentialAgreement{EAAgree, EADisagree, EADisagree, EAAgree}
	if diff := cmp.Diff(want, ds.EssentialAgreements()); diff != "" {
		t.Errorf("essential agreement mismatch (-want +got):\n%s", diff)
	}

	diffs := make([]int, ds.Len())
	for i, r := range ds.Rows() {
		diffs[i] = r.Result.DilutionDifference
		assert.Equal(t, i, r.Observation.Index)
	}
	assert.Equal(t, []int{0, -2, -2, 0}, diffs)
	assert.NotEmpty(t, ds.ID())
	assert.False(t, ds.Categorical())
	assert.Equal(t, Diagnostics{}, ds.Diagnostics())
}

// TestIdenticalPairsAgree tests that equal tokens always agree at distance 0
func TestIdenticalPairsAgree(t *testing.T) {
	tokens := []string{"0.125", "1", "3", "64", "<0.25", ">64", "<=2", ">=8"}
	e := NewEngine(nil)

	for _, mode := range []EAMode{EAModeCategorical, EAModeNumeric} {
		cfg := DefaultConfig()
		cfg.EAMode = mode
		ds := mustCompare(t, e, Input{GoldStandard: tokens, Test: tokens}, cfg)
		for _, r := range ds.Rows() {
			assert.Equal(t, EAAgree, r.Result.EssentialAgreement, "mode %s row %d", mode, r.Observation.Index)
			assert.Equal(t, 0, r.Result.DilutionDifference)
		}
	}
}

// TestTolerateLEQ tests that disabling <= excludes rows from the denominator
func TestTolerateLEQ(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TolerateLEQ = false
	ds := mustCompare(t, NewEngine(nil), Input{GoldStandard: exampleGold, Test: exampleTest}, cfg)

	assert.Equal(t, []EssentialAgreement{EAUnevaluable, EADisagree, EADisagree, EAAgree}, ds.EssentialAgreements())
	assert.Equal(t, 1, ds.Diagnostics().Unevaluable)

	s := Summarize(ds, GroupAuto)
	assert.Equal(t, 4, s.Overall.N)
	assert.Equal(t, 3, s.Overall.Evaluable)
	assert.InDelta(t, 1.0/3.0, s.Overall.EARate, 1e-12)
}

// TestTolerateGEQ tests that disabling >= excludes rows with a GT value
func TestTolerateGEQ(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TolerateGEQ = false
	ds := mustCompare(t, NewEngine(nil), Input{GoldStandard: exampleGold, Test: exampleTest}, cfg)

	assert.Equal(t, []EssentialAgreement{EAAgree, EADisagree, EADisagree, EAUnevaluable}, ds.EssentialAgreements())
}

// TestTolerateCensoring tests the one-sided censoring policy
func TestTolerateCensoring(t *testing.T) {
	gold := []string{">64", "64", "<0.5", "1"}
	test := []string{"64", ">64", "1", "<0.5"}

	tests := []struct {
		policy Tolerance
		want   []EssentialAgreement
	}{
		{TolerateStrict, []EssentialAgreement{EAUnevaluable, EAUnevaluable, EAUnevaluable, EAUnevaluable}},
		{TolerateGoldStandard, []EssentialAgreement{EAAgree, EAUnevaluable, EAAgree, EAUnevaluable}},
		{TolerateTest, []EssentialAgreement{EAUnevaluable, EAAgree, EAUnevaluable, EAAgree}},
		{TolerateBoth, []EssentialAgreement{EAAgree, EAAgree, EAAgree, EAAgree}},
	}

	e := NewEngine(nil)
	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.TolerateCensoring = tt.policy
			ds := mustCompare(t, e, Input{GoldStandard: gold, Test: test}, cfg)
			assert.Equal(t, tt.want, ds.EssentialAgreements())
		})
	}
}

// TestTolerateMatchedCensoring tests pairs censored in the same direction
func TestTolerateMatchedCensoring(t *testing.T) {
	// row 0: both <, test bound far below gold bound
	// row 1: both <, test bound far above gold bound
	// row 2: both >, identical
	gold := []string{"<4", "<0.25", ">64"}
	test := []string{"<0.25", "<4", ">64"}

	tests := []struct {
		policy Tolerance
		want   []EssentialAgreement
	}{
		{TolerateBoth, []EssentialAgreement{EAAgree, EAAgree, EAAgree}},
		{TolerateStrict, []EssentialAgreement{EAUnevaluable, EAUnevaluable, EAUnevaluable}},
		{TolerateGoldStandard, []EssentialAgreement{EAAgree, EADisagree, EAAgree}},
		{TolerateTest, []EssentialAgreement{EADisagree, EAAgree, EAAgree}},
	}

	e := NewEngine(nil)
	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.TolerateMatchedCensoring = tt.policy
			ds := mustCompare(t, e, Input{GoldStandard: gold, Test: test}, cfg)
			assert.Equal(t, tt.want, ds.EssentialAgreements())
		})
	}
}

// TestOppositeCensoring tests pairs censored in opposite directions
func TestOppositeCensoring(t *testing.T) {
	in := Input{GoldStandard: []string{"<1"}, Test: []string{">1"}}
	e := NewEngine(nil)

	ds := mustCompare(t, e, in, DefaultConfig())
	assert.Equal(t, EAUnevaluable, ds.Row(0).Result.EssentialAgreement)

	cfg := DefaultConfig()
	cfg.TolerateCensoring = TolerateBoth
	ds = mustCompare(t, e, in, cfg)
	assert.Equal(t, EAAgree, ds.Row(0).Result.EssentialAgreement)
}

// TestSimplifyToggle tests that snapping never changes censoring outcomes
func TestSimplifyToggle(t *testing.T) {
	gold := []string{"<0.3", "5", ">60", "3"}
	test := []string{"<0.3", "3", "50", "12"}
	e := NewEngine(nil)

	on := DefaultConfig()
	off := DefaultConfig()
	off.Simplify = false

	a := mustCompare(t, e, Input{GoldStandard: gold, Test: test}, on)
	b := mustCompare(t, e, Input{GoldStandard: gold, Test: test}, off)

	for i := range gold {
		ra, rb := a.Row(i), b.Row(i)
		assert.Equal(t, ra.Observation.Gold.Censor, rb.Observation.Gold.Censor)
		assert.Equal(t, ra.Observation.Test.Censor, rb.Observation.Test.Censor)
		assert.True(t, mic.OnLadder(ra.Observation.Gold.Magnitude))
		assert.True(t, mic.OnLadder(ra.Observation.Test.Magnitude))
	}

	assert.Equal(t, 3.0, b.Row(3).Observation.Gold.Magnitude)
	assert.Equal(t, 4.0, a.Row(3).Observation.Gold.Magnitude)
	// 3 -> 12 is two steps raw, 4 -> 16 is two steps snapped
	assert.Equal(t, 2, a.Row(3).Result.DilutionDifference)
	assert.Equal(t, 2, b.Row(3).Result.DilutionDifference)
}

// TestConfigurationErrors tests fail-fast enum validation
func TestConfigurationErrors(t *testing.T) {
	tests := []struct {
		field  string
		mutate func(*Config)
	}{
		{"ea_mode", func(c *Config) { c.EAMode = "fuzzy" }},
		{"tolerate_censoring", func(c *Config) { c.TolerateCensoring = "sometimes" }},
		{"tolerate_matched_censoring", func(c *Config) { c.TolerateMatchedCensoring = "" }},
	}

	collector := monitoring.NewCollector()
	e := NewEngine(nil, WithMetrics(collector))
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			// malformed tokens must not be reached
			ds, err := e.Compare(Input{GoldStandard: []string{"x"}, Test: []string{"1", "2"}}, cfg)
			assert.Nil(t, ds)

			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.NotEmpty(t, cfgErr.Allowed)
		})
	}
	assert.Equal(t, int64(3), collector.Snapshot().Failures)
}

// TestLengthMismatch tests sequence length preconditions
func TestLengthMismatch(t *testing.T) {
	tests := []struct {
		name  string
		in    Input
		field string
	}{
		{"test shorter", Input{GoldStandard: []string{"1", "2"}, Test: []string{"1"}}, "test"},
		{"ab sequence", Input{GoldStandard: []string{"1", "2"}, Test: []string{"1", "2"}, Antibiotics: []string{"A", "B", "C"}}, "ab"},
		{"mo sequence", Input{GoldStandard: []string{"1", "2", "4"}, Test: []string{"1", "2", "4"}, Antibiotics: []string{"A"}, Organisms: []string{"X", "Y"}}, "mo"},
	}

	e := NewEngine(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Compare(tt.in, DefaultConfig())
			var lenErr *LengthMismatchError
			require.True(t, errors.As(err, &lenErr), "got %v", err)
			assert.Equal(t, tt.field, lenErr.Field)
		})
	}

	// scalar codes apply to every row
	ds := mustCompare(t, e, Input{
		GoldStandard: exampleGold, Test: exampleTest,
		Antibiotics: []string{"AMK"}, Organisms: []string{"B_ESCHR_COLI"},
	}, DefaultConfig())
	for _, r := range ds.Rows() {
		assert.Equal(t, "AMK", r.Observation.Antibiotic)
		assert.Equal(t, "B_ESCHR_COLI", r.Observation.Organism)
	}
}

// TestParseErrorAbortsComparison tests that a malformed token yields no dataset
func TestParseErrorAbortsComparison(t *testing.T) {
	e := NewEngine(nil)
	ds, err := e.Compare(Input{GoldStandard: []string{"1", "2"}, Test: []string{"1", "-2"}}, DefaultConfig())
	assert.Nil(t, ds)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "test", parseErr.Field)
	assert.Equal(t, 1, parseErr.Index)
	assert.Equal(t, "-2", parseErr.Token)
	assert.True(t, errors.Is(err, mic.ErrNonPositive))
}

// TestCategoricalClassification tests S/I/R error types
func TestCategoricalClassification(t *testing.T) {
	e := NewEngine(testTable(t))
	in := Input{
		GoldStandard: []string{"0.125", "1", "0.5", "0.25", "0.25", "2"},
		Test:         []string{"1", "0.125", "0.25", "0.25", "0.25", "8"},
		Antibiotics:  []string{"CIP", "CIP", "CIP", "CIP", "CIP", "FOS"},
		Organisms:    []string{"B_ESCHR_COLI", "B_KLBSL_PNMN", "B_ESCHR_COLI", "B_ESCHR_COLI", "B_STPHY_AURS", "B_ESCHR_COLI"},
	}

	ds := mustCompare(t, e, in, DefaultConfig())
	require.True(t, ds.Categorical())

	got := make([]CategoricalAgreement, ds.Len())
	for i, r := range ds.Rows() {
		got[i] = r.Result.CategoricalAgreement
	}
	want := []CategoricalAgreement{MajorError, VeryMajorError, MinorError, CategoricalAgree, Unclassifiable, Unclassifiable}
	assert.Equal(t, want, got)
	assert.Equal(t, 2, ds.Diagnostics().Unclassifiable)

	r := ds.Row(0).Result
	assert.Equal(t, breakpoints.Susceptible, r.GoldCategory)
	assert.Equal(t, breakpoints.Resistant, r.TestCategory)

	// ECOFF fallback resolves the FOS row
	cfg := DefaultConfig()
	cfg.AcceptECOFF = true
	ds = mustCompare(t, e, in, cfg)
	assert.Equal(t, MajorError, ds.Row(5).Result.CategoricalAgreement)
	assert.Equal(t, 1, ds.Diagnostics().Unclassifiable)
}

// TestCategoricalCensoredValues tests that censored MICs are classified by
// their whole range instead of their boundary
func TestCategoricalCensoredValues(t *testing.T) {
	e := NewEngine(testTable(t))
	in := Input{
		GoldStandard: []string{">4", ">8", "<0.25", "<4", "1"},
		Test:         []string{"8", "16", "0.125", "2", ">2"},
		Antibiotics:  []string{"GEN", "AMK", "CIP", "GEN", "GEN"},
		Organisms:    []string{"B_ESCHR_COLI"},
	}
	cfg := DefaultConfig()
	cfg.TolerateCensoring = TolerateBoth

	ds := mustCompare(t, e, in, cfg)

	type categories struct {
		gold, test breakpoints.Category
		ca         CategoricalAgreement
	}
	want := []categories{
		{breakpoints.Resistant, breakpoints.Resistant, CategoricalAgree},
		{breakpoints.Resistant, breakpoints.Resistant, CategoricalAgree},
		{breakpoints.Susceptible, breakpoints.Susceptible, CategoricalAgree},
		{breakpoints.Unclassified, breakpoints.Susceptible, Unclassifiable},
		{breakpoints.Susceptible, breakpoints.Unclassified, Unclassifiable},
	}
	for i, w := range want {
		r := ds.Row(i).Result
		assert.Equal(t, w, categories{r.GoldCategory, r.TestCategory, r.CategoricalAgreement}, "row %d", i)
	}
	assert.Equal(t, 2, ds.Diagnostics().Unclassifiable)

	s := Summarize(ds, GroupNone)
	assert.Equal(t, 3, s.Overall.Classifiable)
	assert.Equal(t, 0, s.Overall.Major)
	assert.Equal(t, 0, s.Overall.Minor)
}

// TestPartialCodesUnclassifiable tests that a single kind of code marks every
// row unclassifiable in both the export and the diagnostics
func TestPartialCodesUnclassifiable(t *testing.T) {
	e := NewEngine(testTable(t))
	for _, in := range []Input{
		{GoldStandard: exampleGold, Test: exampleTest, Antibiotics: []string{"AMK"}},
		{GoldStandard: exampleGold, Test: exampleTest, Organisms: []string{"B_ESCHR_COLI"}},
	} {
		ds := mustCompare(t, e, in, DefaultConfig())
		assert.False(t, ds.Categorical())
		assert.True(t, ds.HasCodes())
		assert.Equal(t, 4, ds.Diagnostics().Unclassifiable)

		table := Export(ds)
		require.True(t, table.HasCodes())
		for _, r := range table.Records {
			assert.Equal(t, string(Unclassifiable), r.CategoricalAgreement)
		}
	}

	ds := mustCompare(t, e, Input{GoldStandard: exampleGold, Test: exampleTest}, DefaultConfig())
	assert.False(t, ds.HasCodes())
	assert.Equal(t, 0, ds.Diagnostics().Unclassifiable)
}

// TestCompareCategories tests the full category matrix
func TestCompareCategories(t *testing.T) {
	S, I, R := breakpoints.Susceptible, breakpoints.Intermediate, breakpoints.Resistant
	assert.Equal(t, CategoricalAgree, CompareCategories(S, S))
	assert.Equal(t, CategoricalAgree, CompareCategories(I, I))
	assert.Equal(t, CategoricalAgree, CompareCategories(R, R))
	assert.Equal(t, MajorError, CompareCategories(S, R))
	assert.Equal(t, VeryMajorError, CompareCategories(R, S))
	assert.Equal(t, MinorError, CompareCategories(S, I))
	assert.Equal(t, MinorError, CompareCategories(I, S))
	assert.Equal(t, MinorError, CompareCategories(R, I))
	assert.Equal(t, MinorError, CompareCategories(I, R))
	assert.Equal(t, Unclassifiable, CompareCategories(breakpoints.Unclassified, S))
}

// TestDatasetImmutable tests that accessor copies cannot alter the dataset
func TestDatasetImmutable(t *testing.T) {
	ds := mustCompare(t, NewEngine(nil), Input{GoldStandard: exampleGold, Test: exampleTest}, DefaultConfig())

	rows := ds.Rows()
	rows[0].Result.EssentialAgreement = EADisagree
	rows[0].Observation.Gold.Magnitude = 1000

	assert.Equal(t, EAAgree, ds.Row(0).Result.EssentialAgreement)
	assert.Equal(t, 0.25, ds.Row(0).Observation.Gold.Magnitude)
}

// TestConcurrentCompare tests that one engine can serve parallel comparisons
func TestConcurrentCompare(t *testing.T) {
	collector := monitoring.NewCollector()
	e := NewEngine(testTable(t), WithMetrics(collector), WithWorkers(2))
	in := Input{
		GoldStandard: exampleGold, Test: exampleTest,
		Antibiotics: []string{"AMK"}, Organisms: []string{"B_ESCHR_COLI"},
	}

	var wg sync.WaitGroup
	results := make([][]Row, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ds, err := e.Compare(in, DefaultConfig())
			if err == nil {
				results[i] = ds.Rows()
			}
		}(i)
	}
	wg.Wait()

	S, R := breakpoints.Susceptible, breakpoints.Resistant
	wantGold := []breakpoints.Category{S, S, R, R}
	wantTest := []breakpoints.Category{S, S, R, R}
	for _, rows := range results {
		require.Len(t, rows, 4)
		ea := make([]EssentialAgreement, len(rows))
		gold := make([]breakpoints.Category, len(rows))
		test := make([]breakpoints.Category, len(rows))
		for i, r := range rows {
			ea[i] = r.Result.EssentialAgreement
			gold[i] = r.Result.GoldCategory
			test[i] = r.Result.TestCategory
		}
		assert.Equal(t, []EssentialAgreement{EAAgree, EADisagree, EADisagree, EAAgree}, ea)
		assert.Equal(t, wantGold, gold)
		assert.Equal(t, wantTest, test)
	}

	snap := collector.Snapshot()
	assert.Equal(t, int64(16), snap.Comparisons)
	assert.Equal(t, int64(64), snap.Observations)
}

// TestEmptyInput tests that empty sequences produce an empty dataset
func TestEmptyInput(t *testing.T) {
	ds := mustCompare(t, NewEngine(nil), Input{}, DefaultConfig())
	assert.Equal(t, 0, ds.Len())

	s := Summarize(ds, GroupAuto)
	assert.Equal(t, 0, s.Overall.N)
	assert.True(t, s.Overall.EARate != s.Overall.EARate, "EA rate should be NaN")
}
