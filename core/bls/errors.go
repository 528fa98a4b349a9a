package bls

import (
	"errors"
	"fmt"
)

// Sentinel errors for the transit search. Typed errors below match them with errors.Is.
var (
	ErrInvalidRange     = errors.New("invalid search range")
	ErrInvalidCount     = errors.New("invalid period count")
	ErrInsufficientData = errors.New("insufficient data")
	ErrSearchPrimitive  = errors.New("search primitive failed")
	ErrEmptyResult      = errors.New("empty search result")
	ErrAllNonFinite     = errors.New("no finite power in search result")
)

// InvalidRangeError reports a bad period or duration range.
type InvalidRangeError struct {
	Name   string // "period" or "duration"
	Low    float64
	High   float64
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("%s: %s range [%g, %g]: %s", ErrInvalidRange, e.Name, e.Low, e.High, e.Reason)
}

// Is reports whether target is ErrInvalidRange.
func (e *InvalidRangeError) Is(target error) bool {
	return target == ErrInvalidRange
}

// InvalidCountError reports a period grid with fewer than two points.
type InvalidCountError struct {
	Count int
}

func (e *InvalidCountError) Error() string {
	return fmt.Sprintf("%s: n-periods must be at least 2 (received %d)", ErrInvalidCount, e.Count)
}

// Is reports whether target is ErrInvalidCount.
func (e *InvalidCountError) Is(target error) bool {
	return target == ErrInvalidCount
}

// InsufficientDataError reports too few finite samples to search.
type InsufficientDataError struct {
	Valid    int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: %d finite samples, need at least %d", ErrInsufficientData, e.Valid, e.Required)
}

// Is reports whether target is ErrInsufficientData.
func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// SearchPrimitiveError wraps a failure of the power spectrum primitive.
type SearchPrimitiveError struct {
	Err error
}

func (e *SearchPrimitiveError) Error() string {
	return fmt.Sprintf("%s: %v", ErrSearchPrimitive, e.Err)
}

// Unwrap returns the primitive's own error.
func (e *SearchPrimitiveError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrSearchPrimitive.
func (e *SearchPrimitiveError) Is(target error) bool {
	return target == ErrSearchPrimitive
}
