// Package ws serves a live preview of the frames sent to the device over
// websockets, plus a small health endpoint.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-nuimo/internal/glyph"
	"github.com/coreman2200/funtimes-nuimo/internal/render"
)

const writeWait = 2 * time.Second

// Frame is the JSON pushed to preview clients.
type Frame struct {
	FrameID    uint64   `json:"frame_id"`
	Rows       []string `json:"rows"`
	Transition string   `json:"transition"`
	Invert     bool     `json:"invert,omitempty"`
	Brightness *float64 `json:"brightness,omitempty"`
}

// clientQueue is how many frames may wait for a slow preview client before
// new ones are dropped for it.
const clientQueue = 8

// client owns one preview connection; only its writer goroutine writes.
type client struct {
	conn *websocket.Conn
	send chan *Frame
}

func (c *client) writeLoop(log zerolog.Logger) {
	for f := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(f); err != nil {
			log.Debug().Err(err).Msg("preview client dropped")
			c.conn.Close()
			for range c.send {
			}
			return
		}
	}
}

// State holds the last frame and the connected preview clients. It is a
// render.Display so it can sit behind a render.Mirror; Render never waits
// on a client.
type State struct {
	mu        sync.Mutex
	last      *Frame
	frameID   uint64
	startTime time.Time
	clients   map[*client]struct{}
	dropped   uint64
	log       zerolog.Logger
}

var _ render.Display = (*State)(nil)

func NewState(log zerolog.Logger) *State {
	return &State{
		startTime: time.Now(),
		clients:   map[*client]struct{}{},
		log:       log,
	}
}

// Render frames g to the display size and queues it for every client.
func (s *State) Render(g glyph.Glyph, opts render.Options) error {
	f, err := g.Frame(glyph.FrameWidth, glyph.FrameHeight, opts.Alignment)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frameID++
	s.last = &Frame{
		FrameID:    s.frameID,
		Rows:       f.Rows(),
		Transition: opts.Transition.String(),
		Invert:     opts.Composition == render.Invert,
		Brightness: opts.Brightness,
	}
	for c := range s.clients {
		select {
		case c.send <- s.last:
		default:
			s.dropped++
		}
	}
	return nil
}

// remove unregisters c and ends its writer. Only the caller that finds c
// registered closes the queue.
func (s *State) remove(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	s.mu.Unlock()
	if ok {
		close(c.send)
	}
}

func (s *State) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn, send: make(chan *Frame, clientQueue)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	if s.last != nil {
		c.send <- s.last
	}
	s.mu.Unlock()

	go c.writeLoop(s.log)
	go func() {
		defer func() {
			s.remove(c)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *State) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	resp := map[string]any{
		"frame_id": s.frameID,
		"uptime_s": time.Since(s.startTime).Seconds(),
		"clients":  len(s.clients),
		"dropped":  s.dropped,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Handler routes /ws and /health.
func (s *State) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleFramesWS)
	mux.HandleFunc("/health", s.HandleHealth)
	return mux
}

// Close drops every preview client.
func (s *State) Close() error {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()
	for _, c := range clients {
		s.remove(c)
		c.conn.Close()
	}
	return nil
}
