// Package sequence plays animations on a device: one session at a time,
// advanced by a periodic frame tick until the frames run out or the
// session is cancelled.
package sequence

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-nuimo/internal/render"
)

// Session is one playback of an Animation. Its index and state live and die
// with the session.
type Session struct {
	mu     sync.Mutex
	target Target
	frames Animation
	index  int
	state  State

	ticker   Ticker
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	log      zerolog.Logger
}

// Tick advances the session by one frame. It reports whether the session
// still wants ticks. A tick while the device is disconnected does nothing.
func (s *Session) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Playing {
		return false
	}
	if !s.target.Connected() {
		return true
	}
	if s.index >= len(s.frames) {
		s.state = Idle
		s.stopOnce.Do(func() { close(s.stop) })
		s.log.Debug().Int("frames", len(s.frames)).Msg("animation complete")
		return false
	}
	g := s.frames[s.index]
	s.index++
	if err := s.target.Render(g, render.Centered(render.Immediate)); err != nil {
		s.log.Warn().Err(err).Int("frame", s.index-1).Msg("frame render failed")
	}
	return true
}

// Cancel stops the session. No frame is rendered once Cancel returns.
// Cancelling a finished or already stopped session is a no-op.
func (s *Session) Cancel() {
	s.mu.Lock()
	if s.state == Playing {
		s.state = Stopped
	}
	s.mu.Unlock()
	s.stopOnce.Do(func() { close(s.stop) })
}

// Done is closed when the tick loop has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Index is the next frame to be rendered by a tick.
func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

func (s *Session) run() {
	defer close(s.done)
	defer s.ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-s.ticker.C():
			if !s.Tick() {
				return
			}
		}
	}
}

// Player owns the single active session for a device.
type Player struct {
	Target    Target
	NewTicker TickerFunc
	Log       zerolog.Logger

	mu     sync.Mutex
	active *Session
}

// NewPlayer constructs a Player using real time tickers.
func NewPlayer(t Target, log zerolog.Logger) *Player {
	return &Player{Target: t, NewTicker: NewTimeTicker, Log: log}
}

// Play cancels any running session, waits for its loop to exit, renders the
// first frame with a cross fade and starts ticking every interval.
func (p *Player) Play(anim Animation, interval time.Duration) (*Session, error) {
	if len(anim) == 0 {
		return nil, errors.New("animation has no frames")
	}
	if interval <= 0 {
		return nil, errors.New("frame interval must be positive")
	}
	if p.Target == nil {
		return nil, errors.New("player has no target")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if prev := p.active; prev != nil {
		prev.Cancel()
		<-prev.Done()
	}

	newTicker := p.NewTicker
	if newTicker == nil {
		newTicker = NewTimeTicker
	}
	s := &Session{
		target: p.Target,
		frames: anim,
		state:  Playing,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		log:    p.Log,
	}
	if err := p.Target.Render(anim[0], render.Centered(render.CrossFade)); err != nil {
		p.Log.Warn().Err(err).Msg("first frame render failed")
	}
	s.ticker = newTicker(interval)
	p.active = s
	go s.run()

	p.Log.Debug().Int("frames", len(anim)).Dur("interval", interval).Msg("animation started")
	return s, nil
}

// Cancel stops the active session, if any.
func (p *Player) Cancel() {
	p.mu.Lock()
	s := p.active
	p.mu.Unlock()
	if s != nil {
		s.Cancel()
	}
}

// Active returns the session that is still playing, or nil.
func (p *Player) Active() *Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active == nil || p.active.State() != Playing {
		return nil
	}
	return p.active
}
