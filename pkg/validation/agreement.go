/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: agreement.go
Description: Essential agreement evaluation and categorical error
classification for a single gold/test MIC pair. Essential agreement is
judged on the log2 dilution distance under the configured censoring
tolerance; categorical agreement compares S/I/R interpretations.
*/

package validation

import (
	"github.com/kleascm/mic-validator/pkg/breakpoints"
	"github.com/kleascm/mic-validator/pkg/mic"
)

// EssentialAgreement is the outcome of the dilution-distance check
type EssentialAgreement int

const (
	EAUnevaluable EssentialAgreement = iota
	EAAgree
	EADisagree
)

// Evaluable reports whether the row counts toward the EA denominator
func (ea EssentialAgreement) Evaluable() bool {
	return ea != EAUnevaluable
}

// Label returns the export wording for the given mode
func (ea EssentialAgreement) Label(mode EAMode) string {
	switch ea {
	case EAAgree:
		if mode == EAModeNumeric {
			return "TRUE"
		}
		return "EA"
	case EADisagree:
		if mode == EAModeNumeric {
			return "FALSE"
		}
		return "non-EA"
	default:
		return "NA"
	}
}

func (ea EssentialAgreement) String() string {
	return ea.Label(EAModeNumeric)
}

// CategoricalAgreement classifies S/I/R discordance by clinical severity
type CategoricalAgreement string

const (
	CategoricalAgree CategoricalAgreement = "agree"
	MinorError       CategoricalAgreement = "minor"
	MajorError       CategoricalAgreement = "major"
	VeryMajorError   CategoricalAgreement = "very_major"
	Unclassifiable   CategoricalAgreement = "unclassifiable"
)

// Classifiable reports whether the row counts toward the categorical denominator
func (ca CategoricalAgreement) Classifiable() bool {
	return ca != Unclassifiable && ca != ""
}

// AgreementResult holds the per-observation outcome
type AgreementResult struct {
	EssentialAgreement   EssentialAgreement   `json:"essential_agreement"`
	DilutionDifference   int                  `json:"dilution_difference"`
	GoldCategory         breakpoints.Category `json:"gold_category"`
	TestCategory         breakpoints.Category `json:"test_category"`
	CategoricalAgreement CategoricalAgreement `json:"categorical_agreement"`
}

// EvaluateEssential decides essential agreement for one pair.
// The dilution difference is always computed from face values and is
// returned even when the pair is not evaluable.
func EvaluateEssential(gold, test mic.Value, cfg Config) (EssentialAgreement, int) {
	diff := mic.Steps(gold.Magnitude, test.Magnitude)

	hasLT := gold.Censor == mic.CensorLT || test.Censor == mic.CensorLT
	hasGT := gold.Censor == mic.CensorGT || test.Censor == mic.CensorGT
	if (hasLT && !cfg.TolerateLEQ) || (hasGT && !cfg.TolerateGEQ) {
		return EAUnevaluable, diff
	}

	switch {
	case !gold.IsCensored() && !test.IsCensored():
		return withinOneDilution(diff), diff

	case gold.Censor == test.Censor:
		return matchedCensoring(gold, test, diff, cfg.TolerateMatchedCensoring), diff

	default:
		// one side censored, or both censored in opposite directions
		if gold.IsCensored() && !cfg.TolerateCensoring.permits(TolerateGoldStandard) {
			return EAUnevaluable, diff
		}
		if test.IsCensored() && !cfg.TolerateCensoring.permits(TolerateTest) {
			return EAUnevaluable, diff
		}
		return withinOneDilution(diff), diff
	}
}

func withinOneDilution(diff int) EssentialAgreement {
	if diff >= -1 && diff <= 1 {
		return EAAgree
	}
	return EADisagree
}

// matchedCensoring handles pairs censored in the same direction. With a
// single reference side, the other value agrees when it is within one
// dilution or inside the reference side's censored range.
func matchedCensoring(gold, test mic.Value, diff int, policy Tolerance) EssentialAgreement {
	var ref, other mic.Value
	switch policy {
	case TolerateBoth:
		return EAAgree
	case TolerateGoldStandard:
		ref, other = gold, test
	case TolerateTest:
		ref, other = test, gold
	default:
		return EAUnevaluable
	}

	if withinOneDilution(diff) == EAAgree {
		return EAAgree
	}
	switch ref.Censor {
	case mic.CensorLT:
		if other.Magnitude <= ref.Magnitude {
			return EAAgree
		}
	case mic.CensorGT:
		if other.Magnitude >= ref.Magnitude {
			return EAAgree
		}
	}
	return EADisagree
}

// CompareCategories maps a gold/test category pair to its error class
func CompareCategories(gold, test breakpoints.Category) CategoricalAgreement {
	if gold == breakpoints.Unclassified || test == breakpoints.Unclassified {
		return Unclassifiable
	}
	switch {
	case gold == test:
		return CategoricalAgree
	case gold == breakpoints.Susceptible && test == breakpoints.Resistant:
		return MajorError
	case gold == breakpoints.Resistant && test == breakpoints.Susceptible:
		return VeryMajorError
	default:
		return MinorError
	}
}
