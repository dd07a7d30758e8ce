// Package layout maps display coordinates onto the linear index of an LED
// strip wired as a matrix.
package layout

// Layout describes a Width x Height matrix made from one strip. Serpentine
// strips reverse direction on every odd row.
type Layout struct {
	Width      int
	Height     int
	Serpentine bool
	// FlipY puts row 0 at the end of the strip.
	FlipY bool
}

// Nuimo is the 9x9 matrix wired row by row in a serpentine.
var Nuimo = Layout{Width: 9, Height: 9, Serpentine: true}

// Index maps x,y -> linear LED index (0..N-1). Out of range returns -1.
func (l Layout) Index(x, y int) int {
	if x < 0 || y < 0 || x >= l.Width || y >= l.Height {
		return -1
	}
	yy := y
	if l.FlipY {
		yy = l.Height - 1 - y
	}
	xx := x
	if l.Serpentine && yy%2 == 1 {
		xx = l.Width - 1 - x
	}
	return yy*l.Width + xx
}

func (l Layout) Count() int {
	return l.Width * l.Height
}
