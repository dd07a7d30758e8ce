// Package fake provides an in-memory Device for headless runs and tests.
package fake

import (
	"sync"

	"github.com/coreman2200/funtimes-nuimo/internal/device"
	"github.com/coreman2200/funtimes-nuimo/internal/dial"
	"github.com/coreman2200/funtimes-nuimo/internal/glyph"
	"github.com/coreman2200/funtimes-nuimo/internal/render"
)

// Frame is one recorded Render call.
type Frame struct {
	Glyph   glyph.Glyph
	Options render.Options
}

// Driver records every frame and lets tests fire input events.
type Driver struct {
	device.Emitter

	mu        sync.Mutex
	frames    []Frame
	connected bool
	renderErr error
	mode      device.RotationMode
	rng       *dial.Range
	rangeSets int
	closed    bool
}

var _ device.Device = (*Driver)(nil)

// New returns a connected fake device.
func New() *Driver {
	return &Driver{connected: true}
}

func (d *Driver) Render(g glyph.Glyph, opts render.Options) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frames = append(d.frames, Frame{Glyph: g, Options: opts})
	return d.renderErr
}

func (d *Driver) Connected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connected
}

// SetConnected flips the connection flag without emitting an event.
func (d *Driver) SetConnected(v bool) {
	d.mu.Lock()
	d.connected = v
	d.mu.Unlock()
}

// Disconnect marks the device gone and emits a disconnect event.
func (d *Driver) Disconnect() {
	d.SetConnected(false)
	d.Emit(device.Event{Kind: device.Disconnect})
}

// FailRenders makes subsequent Render calls return err (nil to clear).
func (d *Driver) FailRenders(err error) {
	d.mu.Lock()
	d.renderErr = err
	d.mu.Unlock()
}

func (d *Driver) SetRotationMode(m device.RotationMode) error {
	d.mu.Lock()
	d.mode = m
	d.mu.Unlock()
	return nil
}

func (d *Driver) SetRotationRange(r dial.Range) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rng = &r
	d.rangeSets++
	return nil
}

func (d *Driver) Close() error {
	d.mu.Lock()
	d.closed = true
	d.connected = false
	d.mu.Unlock()
	return nil
}

// Frames returns a copy of the recorded frames.
func (d *Driver) Frames() []Frame {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Frame(nil), d.frames...)
}

// Count is the number of Render calls so far.
func (d *Driver) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.frames)
}

// Last returns the most recent frame.
func (d *Driver) Last() (Frame, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.frames) == 0 {
		return Frame{}, false
	}
	return d.frames[len(d.frames)-1], true
}

// Rotation reports the configured mode and range and how often the range was set.
func (d *Driver) Rotation() (device.RotationMode, *dial.Range, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode, d.rng, d.rangeSets
}

func (d *Driver) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}
