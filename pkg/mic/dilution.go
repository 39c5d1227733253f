/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: dilution.go
Description: Dilution ladder helpers. Snaps concentrations onto the canonical
two-fold dilution series (..., 0.25, 0.5, 1, 2, 4, ...) and enumerates ladder
steps between two concentrations.
*/

package mic

import "math"

// LadderBase is the anchor of the dilution series; every step is LadderBase*2^k
const LadderBase = 1.0

// snapEpsilon absorbs float noise in log2 of values already on the ladder
const snapEpsilon = 1e-9

// Snap maps a magnitude onto the nearest ladder step in log2 space.
// Values exactly halfway between two steps go to the lower concentration.
func Snap(magnitude float64) float64 {
	k := math.Log2(magnitude / LadderBase)
	lower := math.Floor(k + snapEpsilon)
	if k-lower > 0.5+snapEpsilon {
		lower++
	}
	return LadderBase * math.Exp2(lower)
}

// Simplify returns v with its magnitude snapped to the ladder.
// Censoring and the raw token are preserved.
func Simplify(v Value) Value {
	v.Magnitude = Snap(v.Magnitude)
	return v
}

// OnLadder reports whether the magnitude is already a ladder step
func OnLadder(magnitude float64) bool {
	k := math.Log2(magnitude / LadderBase)
	return math.Abs(k-math.Round(k)) < snapEpsilon
}

// Steps returns the signed number of dilution steps from a to b,
// rounded to the nearest integer (halves away from zero).
func Steps(a, b float64) int {
	return int(math.Round(math.Log2(b / a)))
}

// Ladder lists every ladder step between lo and hi inclusive, in ascending order.
// Both bounds are snapped first.
func Ladder(lo, hi float64) []float64 {
	lo, hi = Snap(lo), Snap(hi)
	if lo > hi {
		lo, hi = hi, lo
	}
	var steps []float64
	for k := math.Round(math.Log2(lo / LadderBase)); ; k++ {
		m := LadderBase * math.Exp2(k)
		if m > hi*(1+snapEpsilon) {
			break
		}
		steps = append(steps, m)
	}
	return steps
}
