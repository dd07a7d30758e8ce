package glyph

import (
	"errors"
	"fmt"
)

var (
	// ErrDimension matches any *DimensionError via errors.Is.
	ErrDimension = errors.New("glyph: dimension mismatch")
	// ErrRange matches any *RangeError via errors.Is.
	ErrRange = errors.New("glyph: value out of range")
)

// DimensionError reports rows of the wrong length or a wrong height.
type DimensionError struct {
	Op     string
	Reason string
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *DimensionError) Is(target error) bool { return target == ErrDimension }

// RangeError reports numeric input outside the supported domain.
type RangeError struct {
	Op    string
	Value any
	Min   any
	Max   any
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: %v outside [%v, %v]", e.Op, e.Value, e.Min, e.Max)
}

func (e *RangeError) Is(target error) bool { return target == ErrRange }

func dimErr(op, format string, args ...any) error {
	return &DimensionError{Op: op, Reason: fmt.Sprintf(format, args...)}
}
