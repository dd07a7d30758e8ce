package sequence

import (
	"time"

	"github.com/coreman2200/funtimes-nuimo/internal/glyph"
	"github.com/coreman2200/funtimes-nuimo/internal/render"
)

// Animation is an ordered, finite list of frames. Treat it as immutable
// once built; sessions index into it without copying.
type Animation []glyph.Glyph

func (a Animation) Len() int { return len(a) }

// State enumerates session states.
type State string

const (
	Idle    State = "idle"
	Playing State = "playing"
	Stopped State = "stopped"
)

// Target is the device a session draws on.
type Target interface {
	render.Display
	Connected() bool
}

// Ticker is the part of time.Ticker a session needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates the periodic frame tick for a session.
type TickerFunc func(d time.Duration) Ticker

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker is the default TickerFunc.
func NewTimeTicker(d time.Duration) Ticker { return timeTicker{t: time.NewTicker(d)} }
