/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: parser.go
Description: MIC token parser. Turns raw assay tokens such as "<0.25", "8" or
">64" into structured values with a censoring flag. Parsing is strict: any
malformed token is reported instead of being silently dropped.
*/

package mic

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrEmptyToken       = errors.New("empty MIC token")
	ErrNotNumeric       = errors.New("MIC magnitude is not numeric")
	ErrNonPositive      = errors.New("MIC magnitude must be positive")
	ErrUnknownQualifier = errors.New("unrecognized MIC qualifier")
)

// TokenError describes a token that could not be parsed
type TokenError struct {
	Token string
	Err   error
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("invalid MIC token %q: %v", e.Token, e.Err)
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

// Parse converts a raw token into a Value.
// Accepted qualifiers are "<", "<=", ">" and ">=". No qualifier means exact.
func Parse(token string) (Value, error) {
	s := strings.TrimSpace(token)
	if s == "" {
		return Value{}, &TokenError{Token: token, Err: ErrEmptyToken}
	}

	censor := CensorNone
	switch {
	case strings.HasPrefix(s, "<="):
		censor, s = CensorLT, s[2:]
	case strings.HasPrefix(s, ">="):
		censor, s = CensorGT, s[2:]
	case strings.HasPrefix(s, "<"):
		censor, s = CensorLT, s[1:]
	case strings.HasPrefix(s, ">"):
		censor, s = CensorGT, s[1:]
	case strings.IndexAny(s, "=~≤≥") == 0:
		return Value{}, &TokenError{Token: token, Err: ErrUnknownQualifier}
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return Value{}, &TokenError{Token: token, Err: ErrNotNumeric}
	}
	// A sign is never part of a valid magnitude; "-1" is rejected as
	// non-positive below, "+1" as non-numeric here.
	if s[0] == '+' {
		return Value{}, &TokenError{Token: token, Err: ErrNotNumeric}
	}

	magnitude, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(magnitude) || math.IsInf(magnitude, 0) {
		return Value{}, &TokenError{Token: token, Err: ErrNotNumeric}
	}
	if magnitude <= 0 {
		return Value{}, &TokenError{Token: token, Err: ErrNonPositive}
	}

	return Value{Magnitude: magnitude, Censor: censor, Raw: token}, nil
}

// ParseAll parses a slice of tokens, stopping at the first failure.
// The returned index identifies the offending token.
func ParseAll(tokens []string) ([]Value, int, error) {
	values := make([]Value, len(tokens))
	for i, tok := range tokens {
		v, err := Parse(tok)
		if err != nil {
			return nil, i, err
		}
		values[i] = v
	}
	return values, -1, nil
}
