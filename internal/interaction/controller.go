// Package interaction maps dial input to display feedback and playback
// commands on the audio endpoint.
package interaction

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-nuimo/internal/audio"
	"github.com/coreman2200/funtimes-nuimo/internal/device"
	"github.com/coreman2200/funtimes-nuimo/internal/dial"
	"github.com/coreman2200/funtimes-nuimo/internal/glyph"
	"github.com/coreman2200/funtimes-nuimo/internal/render"
)

const (
	DefaultClearDelay  = 5 * time.Second
	DefaultCallTimeout = 3 * time.Second
)

// Canceller stops the running display session (the splash animation).
type Canceller interface {
	Cancel()
}

// Stopper is the part of *time.Timer needed to drop a pending clear.
type Stopper interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc by default.
type AfterFunc func(d time.Duration, f func()) Stopper

func realAfterFunc(d time.Duration, f func()) Stopper { return time.AfterFunc(d, f) }

// Notice describes a command sent to the endpoint, for telemetry.
type Notice struct {
	Kind string `json:"kind"`
	// Volume is set for volume notices, including a volume of 0.
	Volume *int                `json:"volume,omitempty"`
	State  audio.PlaybackState `json:"state,omitempty"`
	At     time.Time           `json:"at"`
}

// Controller reacts to device events. Handlers run on the goroutine that
// delivers the event, so events are handled in delivery order.
type Controller struct {
	Device  device.Device
	Audio   audio.Endpoint
	Player  Canceller
	Range   dial.Range
	// Display receives every glyph; nil renders straight to Device.
	Display render.Display

	// ClearDelay is how long select/touch feedback stays up.
	ClearDelay time.Duration
	// CallTimeout bounds each request to the audio endpoint.
	CallTimeout time.Duration
	// Coalesce makes a new flash drop the previous pending clear instead
	// of letting every flash clear independently.
	Coalesce bool
	// CancelOnTouch stops the splash animation when the surface is touched.
	CancelOnTouch bool
	// ShowPress renders the inverted speaker glyph while select is held.
	ShowPress bool

	Notify    func(Notice)
	AfterFunc AfterFunc
	Log       zerolog.Logger

	mu           sync.Mutex
	ctx          context.Context
	pending      map[uint64]Stopper
	nextID       uint64
	disconnected bool
	attached     bool
}

// New returns a controller with the default range and delays.
func New(dev device.Device, ep audio.Endpoint, player Canceller, log zerolog.Logger) *Controller {
	return &Controller{
		Device:        dev,
		Audio:         ep,
		Player:        player,
		Range:         dial.Default,
		ClearDelay:    DefaultClearDelay,
		CallTimeout:   DefaultCallTimeout,
		CancelOnTouch: true,
		AfterFunc:     realAfterFunc,
		Log:           log,
	}
}

// Attach configures the rotation range once and subscribes the handlers.
// ctx bounds every endpoint call made by the handlers.
func (c *Controller) Attach(ctx context.Context) error {
	if c.Device == nil || c.Audio == nil {
		return errors.New("interaction: device and audio endpoint are required")
	}
	if err := c.Range.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	if c.attached {
		c.mu.Unlock()
		return errors.New("interaction: already attached")
	}
	c.attached = true
	c.ctx = ctx
	c.pending = map[uint64]Stopper{}
	c.mu.Unlock()

	if err := c.Device.SetRotationMode(device.RotationClamped); err != nil {
		return fmt.Errorf("set rotation mode: %w", err)
	}
	if err := c.Device.SetRotationRange(c.seededRange()); err != nil {
		return fmt.Errorf("set rotation range: %w", err)
	}

	c.Device.On(device.Select, c.handle(device.Select, c.onSelect))
	c.Device.On(device.SelectDown, c.handle(device.SelectDown, c.onSelectDown))
	c.Device.On(device.Touch, c.handle(device.Touch, c.onTouch))
	c.Device.On(device.Rotate, c.handle(device.Rotate, c.onRotate))
	c.Device.On(device.RotateLeft, c.handle(device.RotateLeft, c.onRotate))
	c.Device.On(device.RotateRight, c.handle(device.RotateRight, c.onRotate))
	c.Device.On(device.Disconnect, c.handle(device.Disconnect, c.onDisconnect))
	return nil
}

// seededRange starts the dial at the zone's current volume so the first
// rotation does not jump. Without a volume the configured Start is kept.
func (c *Controller) seededRange() dial.Range {
	r := c.Range
	ctx, cancel := c.callContext()
	defer cancel()
	v, err := c.Audio.Volume(ctx)
	if err != nil {
		c.Log.Debug().Err(err).Msg("volume unknown; rotation starts at range start")
		return r
	}
	r.Start = r.Position(int(math.Round(v)))
	return r
}

// handle is the error boundary: failures and panics are logged and never
// reach the device's event loop.
func (c *Controller) handle(k device.Kind, fn func(context.Context, device.Event) error) device.Handler {
	return func(ev device.Event) {
		defer func() {
			if r := recover(); r != nil {
				c.Log.Error().Str("event", string(k)).Interface("panic", r).Msg("event handler panicked")
			}
		}()
		ctx, cancel := c.callContext()
		defer cancel()
		if err := fn(ctx, ev); err != nil {
			c.Log.Warn().Err(err).Str("event", string(k)).Msg("event handler failed")
		}
	}
}

func (c *Controller) callContext() (context.Context, context.CancelFunc) {
	c.mu.Lock()
	parent := c.ctx
	c.mu.Unlock()
	if parent == nil {
		parent = context.Background()
	}
	if c.CallTimeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, c.CallTimeout)
}

// FeedbackFor is the glyph shown after select for the state before the toggle.
func FeedbackFor(s audio.PlaybackState) glyph.Glyph {
	switch s {
	case audio.Playing:
		return glyph.Pause
	case audio.Paused:
		return glyph.Play
	default:
		return glyph.Empty
	}
}

func toggled(s audio.PlaybackState) audio.PlaybackState {
	if s == audio.Playing {
		return audio.Paused
	}
	return audio.Playing
}

func (c *Controller) onSelect(ctx context.Context, _ device.Event) error {
	st, err := c.Audio.State(ctx)
	if err != nil {
		return fmt.Errorf("playback state: %w", err)
	}
	fb := FeedbackFor(st)
	if err := c.Audio.TogglePlayback(ctx); err != nil {
		return fmt.Errorf("toggle playback: %w", err)
	}
	c.notify(Notice{Kind: "playback", State: toggled(st)})
	return c.flash(fb)
}

func (c *Controller) onSelectDown(_ context.Context, _ device.Event) error {
	if !c.ShowPress {
		return nil
	}
	opts := render.Centered(render.CrossFade)
	opts.Composition = render.Invert
	return c.display().Render(glyph.Speaker, opts)
}

func (c *Controller) onTouch(ctx context.Context, _ device.Event) error {
	if c.CancelOnTouch && c.Player != nil {
		c.Player.Cancel()
	}
	v, err := c.Audio.Volume(ctx)
	if err != nil {
		return fmt.Errorf("get volume: %w", err)
	}
	g, err := glyph.NumberFloat(v)
	if err != nil {
		return err
	}
	return c.flash(g)
}

func (c *Controller) onRotate(ctx context.Context, ev device.Event) error {
	v := c.Range.Volume(ev.Position)
	var setErr error
	if err := c.Audio.SetVolume(ctx, v); err != nil {
		setErr = fmt.Errorf("set volume %d: %w", v, err)
	} else {
		c.notify(Notice{Kind: "volume", Volume: &v})
	}
	g, err := glyph.Number(v)
	if err != nil {
		return errors.Join(setErr, err)
	}
	if err := c.display().Render(g, render.Centered(render.CrossFade)); err != nil {
		return errors.Join(setErr, fmt.Errorf("render volume: %w", err))
	}
	return setErr
}

func (c *Controller) onDisconnect(_ context.Context, _ device.Event) error {
	if c.Player != nil {
		c.Player.Cancel()
	}
	c.mu.Lock()
	c.disconnected = true
	n := len(c.pending)
	for id, t := range c.pending {
		t.Stop()
		delete(c.pending, id)
	}
	c.mu.Unlock()
	c.Log.Info().Int("dropped_clears", n).Msg("device disconnected")
	return nil
}

func (c *Controller) display() render.Display {
	if c.Display != nil {
		return c.Display
	}
	return c.Device
}

// flash shows g now and schedules the auto-clear.
func (c *Controller) flash(g glyph.Glyph) error {
	if err := c.display().Render(g, render.Centered(render.CrossFade)); err != nil {
		return fmt.Errorf("render feedback: %w", err)
	}
	c.scheduleClear()
	return nil
}

func (c *Controller) scheduleClear() {
	after := c.AfterFunc
	if after == nil {
		after = realAfterFunc
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disconnected {
		return
	}
	if c.pending == nil {
		c.pending = map[uint64]Stopper{}
	}
	if c.Coalesce {
		for id, t := range c.pending {
			t.Stop()
			delete(c.pending, id)
		}
	}
	id := c.nextID
	c.nextID++
	c.pending[id] = after(c.ClearDelay, func() { c.clearFeedback(id) })
}

// clearFeedback is best effort: the device may be gone by the time it fires.
func (c *Controller) clearFeedback(id uint64) {
	c.mu.Lock()
	_, ok := c.pending[id]
	delete(c.pending, id)
	skip := !ok || c.disconnected
	c.mu.Unlock()
	if skip {
		return
	}
	if err := c.display().Render(glyph.Empty, render.Centered(render.CrossFade)); err != nil {
		c.Log.Debug().Err(err).Msg("auto-clear failed")
	}
}

// Pending is the number of scheduled clears.
func (c *Controller) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Controller) notify(n Notice) {
	if c.Notify == nil {
		return
	}
	if n.At.IsZero() {
		n.At = time.Now()
	}
	c.Notify(n)
}
