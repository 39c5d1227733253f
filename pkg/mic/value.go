/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: value.go
Description: Core MIC value types for the validator. A MIC value is a positive
concentration on the log2 dilution scale, optionally left- or right-censored
when the true value lies outside the tested range.
*/

package mic

import (
	"math"
	"strconv"
)

// Censor describes whether a MIC value is exact or censored
type Censor int

const (
	CensorNone Censor = iota // exact value
	CensorLT                 // true value is below the reported boundary
	CensorGT                 // true value is above the reported boundary
)

// String returns the token prefix for the censoring flag
func (c Censor) String() string {
	switch c {
	case CensorLT:
		return "<"
	case CensorGT:
		return ">"
	default:
		return ""
	}
}

// Value represents a single parsed MIC measurement
type Value struct {
	Magnitude float64 `json:"magnitude"` // Concentration, always > 0
	Censor    Censor  `json:"censor"`    // Censoring flag
	Raw       string  `json:"raw"`       // Token as supplied by the caller
}

// IsCensored reports whether the value carries a < or > qualifier
func (v Value) IsCensored() bool {
	return v.Censor != CensorNone
}

// Log2 returns the value's position on the log2 scale
func (v Value) Log2() float64 {
	return math.Log2(v.Magnitude)
}

// String reconstructs a token from the value. Exact values format back to
// the shortest decimal that parses to the same float64.
func (v Value) String() string {
	return v.Censor.String() + strconv.FormatFloat(v.Magnitude, 'f', -1, 64)
}
