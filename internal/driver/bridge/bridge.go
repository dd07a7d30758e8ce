// Package bridge connects to a dial controller through a websocket bridge
// process that owns the Bluetooth link. The bridge streams input events as
// JSON and accepts render and rotation commands.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-nuimo/internal/device"
	"github.com/coreman2200/funtimes-nuimo/internal/dial"
	"github.com/coreman2200/funtimes-nuimo/internal/glyph"
	"github.com/coreman2200/funtimes-nuimo/internal/render"
)

const writeWait = 2 * time.Second

// ErrDisconnected is returned by commands sent after the link dropped.
var ErrDisconnected = errors.New("bridge: device disconnected")

type wireOptions struct {
	Alignment   string   `json:"alignment"`
	Transition  string   `json:"transition"`
	Composition string   `json:"composition"`
	Brightness  *float64 `json:"brightness,omitempty"`
	TimeoutMS   int64    `json:"timeout_ms,omitempty"`
}

type renderMsg struct {
	Type    string      `json:"type"`
	Rows    []string    `json:"rows"`
	Options wireOptions `json:"options"`
}

type rotationModeMsg struct {
	Type string              `json:"type"`
	Mode device.RotationMode `json:"mode"`
}

type rotationRangeMsg struct {
	Type   string  `json:"type"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Start  float64 `json:"start"`
	Cycles int     `json:"cycles"`
}

// Device is a controller reached through the bridge.
type Device struct {
	device.Emitter

	id   string
	conn *websocket.Conn
	log  zerolog.Logger

	wmu sync.Mutex

	mu        sync.Mutex
	connected bool
	closing   bool
	once      sync.Once
	done      chan struct{}
}

var _ device.Device = (*Device)(nil)

// Dial connects to the bridge at rawURL. A non-empty id asks the bridge for
// that specific controller.
func Dial(ctx context.Context, rawURL, id string, log zerolog.Logger) (*Device, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("bridge url: %w", err)
	}
	if id != "" {
		q := u.Query()
		q.Set("id", id)
		u.RawQuery = q.Encode()
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("bridge dial %s: %w", u.Redacted(), err)
	}
	d := &Device{
		id:        id,
		conn:      conn,
		log:       log,
		connected: true,
		done:      make(chan struct{}),
	}
	go d.readLoop()
	log.Info().Str("url", u.Redacted()).Str("device", id).Msg("bridge connected")
	return d, nil
}

func (d *Device) readLoop() {
	defer d.markDisconnected()
	for {
		var ev device.Event
		if err := d.conn.ReadJSON(&ev); err != nil {
			d.mu.Lock()
			closing := d.closing
			d.mu.Unlock()
			if !closing {
				d.log.Warn().Err(err).Msg("bridge read failed")
			}
			return
		}
		switch ev.Kind {
		case "":
			continue
		case device.Disconnect:
			return
		}
		d.Emit(ev)
	}
}

func (d *Device) markDisconnected() {
	d.once.Do(func() {
		d.mu.Lock()
		d.connected = false
		d.mu.Unlock()
		close(d.done)
		d.Emit(device.Event{Kind: device.Disconnect})
	})
}

func (d *Device) Connected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connected
}

// Done is closed once the link is gone.
func (d *Device) Done() <-chan struct{} { return d.done }

func (d *Device) write(v any) error {
	if !d.Connected() {
		return ErrDisconnected
	}
	d.wmu.Lock()
	defer d.wmu.Unlock()
	_ = d.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := d.conn.WriteJSON(v); err != nil {
		return fmt.Errorf("bridge write: %w", err)
	}
	return nil
}

func (d *Device) Render(g glyph.Glyph, opts render.Options) error {
	if !g.Valid() {
		return &glyph.DimensionError{Op: "bridge.Render", Reason: "invalid glyph"}
	}
	return d.write(renderMsg{
		Type: "render",
		Rows: g.Rows(),
		Options: wireOptions{
			Alignment:   opts.Alignment.String(),
			Transition:  opts.Transition.String(),
			Composition: opts.Composition.String(),
			Brightness:  opts.Brightness,
			TimeoutMS:   opts.Timeout.Milliseconds(),
		},
	})
}

func (d *Device) SetRotationMode(m device.RotationMode) error {
	return d.write(rotationModeMsg{Type: "rotation_mode", Mode: m})
}

func (d *Device) SetRotationRange(r dial.Range) error {
	if err := r.Validate(); err != nil {
		return err
	}
	return d.write(rotationRangeMsg{Type: "rotation_range", Min: r.Min, Max: r.Max, Start: r.Start, Cycles: r.Cycles})
}

// Close sends a close frame and drops the link. The disconnect event still
// fires for registered handlers.
func (d *Device) Close() error {
	d.mu.Lock()
	d.closing = true
	d.mu.Unlock()

	d.wmu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = d.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	d.wmu.Unlock()

	err := d.conn.Close()
	<-d.done
	return err
}

// Connector dials the bridge for every Connect.
type Connector struct {
	URL string
	Log zerolog.Logger
}

func (c Connector) Connect(ctx context.Context, id string) (device.Device, error) {
	return Dial(ctx, c.URL, id, c.Log)
}
