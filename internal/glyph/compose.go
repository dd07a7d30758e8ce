package glyph

import (
	"math"
)

const digitWidth = 3

// digits are 3x7 so that a two digit composite (3+1+3) leaves the 9x9
// frame a column of margin on each side.
var digits = [10]Glyph{
	MustFromRows("***", "* *", "* *", "* *", "* *", "* *", "***"),
	MustFromRows(" * ", "** ", " * ", " * ", " * ", " * ", "***"),
	MustFromRows("***", "  *", "  *", "***", "*  ", "*  ", "***"),
	MustFromRows("***", "  *", "  *", "***", "  *", "  *", "***"),
	MustFromRows("* *", "* *", "* *", "***", "  *", "  *", "  *"),
	MustFromRows("***", "*  ", "*  ", "***", "  *", "  *", "***"),
	MustFromRows("***", "*  ", "*  ", "***", "* *", "* *", "***"),
	MustFromRows("***", "  *", "  *", "  *", "  *", "  *", "  *"),
	MustFromRows("***", "* *", "* *", "***", "* *", "* *", "***"),
	MustFromRows("***", "* *", "* *", "***", "  *", "  *", "***"),
}

// hundred cannot be composed from the digit table: three digits with
// separators would not fit the frame.
var hundred = MustFromRows(
	"* *** ***",
	"* * * * *",
	"* * * * *",
	"* * * * *",
	"* * * * *",
	"* * * * *",
	"* *** ***",
)

// Digit returns the pre-authored glyph for a single decimal digit.
func Digit(d int) (Glyph, error) {
	if d < 0 || d > 9 {
		return Glyph{}, &RangeError{Op: "glyph.Digit", Value: d, Min: 0, Max: 9}
	}
	return digits[d], nil
}

// Number renders 0..100 as a two digit composite; 100 has its own glyph.
func Number(n int) (Glyph, error) {
	if n < 0 || n > 100 {
		return Glyph{}, &RangeError{Op: "glyph.Number", Value: n, Min: 0, Max: 100}
	}
	if n == 100 {
		return hundred, nil
	}
	return Concat(digits[(n/10)%10], digits[n%10])
}

// NumberFloat is Number for values decoded as floating point. Non-integral
// and non-finite values are rejected.
func NumberFloat(v float64) (Glyph, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return Glyph{}, &RangeError{Op: "glyph.NumberFloat", Value: v, Min: 0, Max: 100}
	}
	if v < 0 || v > 100 {
		return Glyph{}, &RangeError{Op: "glyph.NumberFloat", Value: v, Min: 0, Max: 100}
	}
	return Number(int(v))
}

// Concat joins a and b side by side with one blank column between them.
func Concat(a, b Glyph) (Glyph, error) {
	if !a.Valid() || !b.Valid() {
		return Glyph{}, dimErr("glyph.Concat", "invalid operand")
	}
	if a.Height() != b.Height() {
		return Glyph{}, dimErr("glyph.Concat", "heights differ: %d vs %d", a.Height(), b.Height())
	}
	rows := make([]string, a.Height())
	for i := range rows {
		rows[i] = a.rows[i] + " " + b.rows[i]
	}
	return build(rows), nil
}
