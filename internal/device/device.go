// Package device defines the connected dial controller as seen by the rest
// of the program: a display, an ordered input event stream and the rotation
// range primitive. Transports live under internal/driver.
package device

import (
	"context"
	"sync"

	"github.com/coreman2200/funtimes-nuimo/internal/dial"
	"github.com/coreman2200/funtimes-nuimo/internal/render"
)

// Kind names an input event.
type Kind string

const (
	Select      Kind = "select"
	SelectDown  Kind = "select_down"
	SelectUp    Kind = "select_up"
	Touch       Kind = "touch"
	Rotate      Kind = "rotate"
	RotateLeft  Kind = "rotate_left"
	RotateRight Kind = "rotate_right"
	SwipeLeft   Kind = "swipe_left"
	SwipeRight  Kind = "swipe_right"
	Disconnect  Kind = "disconnect"
)

// Event is one input delivered by the device. Delta and Position are only
// meaningful for rotation events; Position is already clamped by the device
// to the configured rotation range.
type Event struct {
	Kind     Kind    `json:"event"`
	Delta    float64 `json:"delta,omitempty"`
	Position float64 `json:"position,omitempty"`
}

type Handler func(Event)

// RotationMode tells the device how to report the dial position.
type RotationMode string

const (
	RotationContinuous RotationMode = "continuous"
	RotationClamped    RotationMode = "clamped"
)

// Device is a connected controller.
type Device interface {
	render.Display
	Connected() bool
	On(k Kind, h Handler)
	SetRotationMode(m RotationMode) error
	SetRotationRange(r dial.Range) error
	Close() error
}

// Connector discovers and connects to a device. An empty id accepts the
// first device found.
type Connector interface {
	Connect(ctx context.Context, id string) (Device, error)
}

// Emitter is a handler registry for Device implementations. Emit calls the
// handlers for an event kind synchronously in registration order.
type Emitter struct {
	mu       sync.RWMutex
	handlers map[Kind][]Handler
}

func (e *Emitter) On(k Kind, h Handler) {
	if h == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.handlers == nil {
		e.handlers = map[Kind][]Handler{}
	}
	e.handlers[k] = append(e.handlers[k], h)
}

func (e *Emitter) Emit(ev Event) {
	e.mu.RLock()
	hs := append([]Handler(nil), e.handlers[ev.Kind]...)
	e.mu.RUnlock()
	for _, h := range hs {
		h(ev)
	}
}

// Handlers reports how many handlers are registered for k.
func (e *Emitter) Handlers(k Kind) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.handlers[k])
}
