// Package glyph holds the immutable bitmap values shown on the 9x9 dial
// display and the small algebra used to build compound glyphs from them.
package glyph

import (
	"strings"
	"unicode/utf8"
)

const (
	// FrameWidth and FrameHeight are the size of one display frame.
	FrameWidth  = 9
	FrameHeight = 9

	litRune   = '*'
	unlitRune = ' '
)

// Alignment positions a glyph horizontally inside a larger frame.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignRight:
		return "right"
	default:
		return "center"
	}
}

// Glyph is a fixed bitmap made of equal-length rows. Any rune other than a
// space is lit. The zero value is not a valid glyph; use FromRows.
type Glyph struct {
	rows  []string
	cells [][]rune
	width int
}

// build indexes rows by rune. Rows must already be non-empty and equal in
// rune count.
func build(rows []string) Glyph {
	cells := make([][]rune, len(rows))
	for i, r := range rows {
		cells[i] = []rune(r)
	}
	return Glyph{rows: rows, cells: cells, width: len(cells[0])}
}

// FromRows builds a Glyph from textual rows. Width is counted in runes. It
// fails when there are no rows, a row is empty, or the rows differ in width.
func FromRows(rows ...string) (Glyph, error) {
	if len(rows) == 0 {
		return Glyph{}, dimErr("glyph.FromRows", "no rows")
	}
	w := utf8.RuneCountInString(rows[0])
	if w == 0 {
		return Glyph{}, dimErr("glyph.FromRows", "row 0 is empty")
	}
	for i, r := range rows {
		if n := utf8.RuneCountInString(r); n != w {
			return Glyph{}, dimErr("glyph.FromRows", "row %d has width %d, want %d", i, n, w)
		}
	}
	cp := make([]string, len(rows))
	copy(cp, rows)
	return build(cp), nil
}

// MustFromRows is FromRows for pre-authored tables; it panics on error.
func MustFromRows(rows ...string) Glyph {
	g, err := FromRows(rows...)
	if err != nil {
		panic(err)
	}
	return g
}

// Rows returns a copy of the glyph rows.
func (g Glyph) Rows() []string {
	out := make([]string, len(g.rows))
	copy(out, g.rows)
	return out
}

func (g Glyph) Width() int  { return g.width }
func (g Glyph) Height() int { return len(g.rows) }

// Valid reports whether g was built by FromRows (or derived from one).
func (g Glyph) Valid() bool { return len(g.rows) > 0 && g.width > 0 }

// Lit reports whether the pixel at column x, row y is on. Out of bounds is off.
func (g Glyph) Lit(x, y int) bool {
	if y < 0 || y >= len(g.rows) || x < 0 || x >= g.width {
		return false
	}
	return g.cells[y][x] != unlitRune
}

// Equal compares glyphs row by row.
func (g Glyph) Equal(o Glyph) bool {
	if len(g.rows) != len(o.rows) || g.width != o.width {
		return false
	}
	for i := range g.rows {
		if g.rows[i] != o.rows[i] {
			return false
		}
	}
	return true
}

func (g Glyph) String() string {
	return strings.Join(g.rows, "\n")
}

// Invert returns a copy with every pixel flipped. Lit pixels become '*'.
func (g Glyph) Invert() Glyph {
	out := make([]string, len(g.rows))
	var b strings.Builder
	for i, r := range g.cells {
		b.Reset()
		b.Grow(len(r))
		for _, c := range r {
			if c == unlitRune {
				b.WriteByte(litRune)
			} else {
				b.WriteByte(unlitRune)
			}
		}
		out[i] = b.String()
	}
	return build(out)
}

// Frame places g inside a w x h canvas. Horizontal position follows a;
// vertically the glyph is centred, with any odd row going below it.
func (g Glyph) Frame(w, h int, a Alignment) (Glyph, error) {
	if !g.Valid() {
		return Glyph{}, dimErr("glyph.Frame", "invalid glyph")
	}
	if g.width > w || len(g.rows) > h {
		return Glyph{}, dimErr("glyph.Frame", "%dx%d glyph does not fit %dx%d", g.width, len(g.rows), w, h)
	}
	var left int
	switch a {
	case AlignLeft:
		left = 0
	case AlignRight:
		left = w - g.width
	default:
		left = (w - g.width) / 2
	}
	right := w - g.width - left
	top := (h - len(g.rows)) / 2

	blank := strings.Repeat(string(unlitRune), w)
	out := make([]string, 0, h)
	for i := 0; i < top; i++ {
		out = append(out, blank)
	}
	for _, r := range g.rows {
		out = append(out, strings.Repeat(" ", left)+r+strings.Repeat(" ", right))
	}
	for len(out) < h {
		out = append(out, blank)
	}
	return build(out), nil
}
