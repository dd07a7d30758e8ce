// Package render describes how a glyph is pushed to a display: the display
// options passed through to the device and the Display sink interface.
package render

import (
	"time"

	"github.com/coreman2200/funtimes-nuimo/internal/glyph"
)

// Transition selects how the device moves from the previous frame.
type Transition int

const (
	Immediate Transition = iota
	CrossFade
)

func (t Transition) String() string {
	if t == CrossFade {
		return "crossfade"
	}
	return "immediate"
}

// Composition selects whether lit pixels are drawn as-is or inverted.
type Composition int

const (
	Normal Composition = iota
	Invert
)

func (c Composition) String() string {
	if c == Invert {
		return "invert"
	}
	return "normal"
}

// Options are handed to the device untouched; only the sinks that draw
// pixels themselves (matrix, preview) interpret them.
type Options struct {
	Alignment   glyph.Alignment
	Transition  Transition
	Composition Composition
	// Brightness in [0,1]; nil keeps the device default.
	Brightness *float64
	// Timeout after which the device blanks on its own; zero keeps it lit.
	Timeout time.Duration
}

// Centered returns centre aligned options with the given transition.
func Centered(t Transition) Options {
	return Options{Alignment: glyph.AlignCenter, Transition: t}
}

// Brightness returns a pointer for Options.Brightness.
func Brightness(v float64) *float64 { return &v }

// Level resolves Brightness, clamped to [0,1], falling back to def.
func (o Options) Level(def float64) float64 {
	if o.Brightness == nil {
		return def
	}
	b := *o.Brightness
	if b < 0 {
		return 0
	}
	if b > 1 {
		return 1
	}
	return b
}

// Display is anything that can show a glyph.
type Display interface {
	Render(g glyph.Glyph, opts Options) error
}
