/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: errors.go
Description: Error types returned by the validation engine. All of them are
raised before a dataset is produced; a failed comparison never yields a
partial result.
*/

package validation

import "fmt"

// ConfigurationError reports an invalid option value
type ConfigurationError struct {
	Field   string
	Value   interface{}
	Allowed []string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid %s %q: must be one of %v", e.Field, fmt.Sprint(e.Value), e.Allowed)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// LengthMismatchError reports an input sequence whose length does not match
// the gold standard
type LengthMismatchError struct {
	Field string
	Got   int
	Want  int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("length mismatch: %s has %d values, expected %d", e.Field, e.Got, e.Want)
}

// ParseError reports a malformed MIC token
type ParseError struct {
	Field string // gold_standard or test
	Index int
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s[%d]: %v", e.Field, e.Index, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
