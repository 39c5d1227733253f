/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: config.go
Description: Comparison configuration for the MIC validation engine. Enumerates
every supported option with its default and validates enum values before any
observation is processed.
*/

package validation

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// EAMode controls how essential agreement is worded in exports
type EAMode string

const (
	EAModeCategorical EAMode = "categorical"
	EAModeNumeric     EAMode = "numeric"
)

// Tolerance selects which side's censored values are accepted
type Tolerance string

const (
	TolerateStrict       Tolerance = "strict"
	TolerateGoldStandard Tolerance = "gold_standard"
	TolerateTest         Tolerance = "test"
	TolerateBoth         Tolerance = "both"
)

// Config holds every option of a comparison
type Config struct {
	AcceptECOFF              bool      `json:"accept_ecoff" mapstructure:"accept_ecoff"`
	Simplify                 bool      `json:"simplify" mapstructure:"simplify"`
	EAMode                   EAMode    `json:"ea_mode" mapstructure:"ea_mode" validate:"oneof=categorical numeric"`
	TolerateCensoring        Tolerance `json:"tolerate_censoring" mapstructure:"tolerate_censoring" validate:"oneof=strict gold_standard test both"`
	TolerateMatchedCensoring Tolerance `json:"tolerate_matched_censoring" mapstructure:"tolerate_matched_censoring" validate:"oneof=strict gold_standard test both"`
	TolerateLEQ              bool      `json:"tolerate_leq" mapstructure:"tolerate_leq"`
	TolerateGEQ              bool      `json:"tolerate_geq" mapstructure:"tolerate_geq"`
}

// DefaultConfig returns the standard comparison settings
func DefaultConfig() Config {
	return Config{
		AcceptECOFF:              false,
		Simplify:                 true,
		EAMode:                   EAModeCategorical,
		TolerateCensoring:        TolerateGoldStandard,
		TolerateMatchedCensoring: TolerateBoth,
		TolerateLEQ:              true,
		TolerateGEQ:              true,
	}
}

var configValidate = validator.New()

// Validate checks enum fields and returns a *ConfigurationError for the
// first invalid one.
func (c Config) Validate() error {
	err := configValidate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ConfigurationError{Field: "config", Err: err}
	}

	fe := verrs[0]
	return &ConfigurationError{
		Field:   configFieldName(fe.StructField()),
		Value:   fe.Value(),
		Allowed: strings.Fields(fe.Param()),
	}
}

func configFieldName(structField string) string {
	switch structField {
	case "EAMode":
		return "ea_mode"
	case "TolerateCensoring":
		return "tolerate_censoring"
	case "TolerateMatchedCensoring":
		return "tolerate_matched_censoring"
	default:
		return structField
	}
}

// permits reports whether censoring on the given side is tolerated
func (t Tolerance) permits(side Tolerance) bool {
	return t == TolerateBoth || t == side
}
