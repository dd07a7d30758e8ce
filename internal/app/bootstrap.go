package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-nuimo/internal/audio"
	"github.com/coreman2200/funtimes-nuimo/internal/banner"
	"github.com/coreman2200/funtimes-nuimo/internal/config"
	"github.com/coreman2200/funtimes-nuimo/internal/device"
	"github.com/coreman2200/funtimes-nuimo/internal/interaction"
	"github.com/coreman2200/funtimes-nuimo/internal/render"
	"github.com/coreman2200/funtimes-nuimo/internal/sequence"
)

// Core is one connected controller with its player and event handlers.
type Core struct {
	Device     device.Device
	Display    *render.Mirror
	Player     *sequence.Player
	Controller *interaction.Controller

	cfg  *config.Config
	log  zerolog.Logger
	gone chan struct{}
}

type options struct {
	mirrors []render.Display
	notify  func(interaction.Notice)
}

// Option customises InitCore.
type Option func(*options)

// WithMirrors copies every frame to extra displays.
func WithMirrors(d ...render.Display) Option {
	return func(o *options) { o.mirrors = append(o.mirrors, d...) }
}

// WithNotify receives volume and playback notices. It runs on the event
// goroutine and must not block.
func WithNotify(fn func(interaction.Notice)) Option {
	return func(o *options) { o.notify = fn }
}

// target adds the device's link state to the mirror.
type target struct {
	*render.Mirror
	dev device.Device
}

func (t target) Connected() bool { return t.dev.Connected() }

func InitCore(ctx context.Context, cfg *config.Config, conn device.Connector, ep audio.Endpoint, log zerolog.Logger, opts ...Option) (*Core, error) {
	if cfg == nil || conn == nil || ep == nil {
		return nil, errors.New("app: config, connector and audio endpoint are required")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cctx := ctx
	if cfg.Device.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, cfg.Device.ConnectTimeout)
		defer cancel()
	}
	dev, err := conn.Connect(cctx, cfg.Device.ID)
	if err != nil {
		return nil, fmt.Errorf("connect device: %w", err)
	}

	mirror := render.NewMirror(dev, o.mirrors...)
	mirror.OnMirrorError = func(err error) {
		log.Debug().Err(err).Msg("mirror render failed")
	}
	player := sequence.NewPlayer(target{Mirror: mirror, dev: dev}, log)

	ctrl := interaction.New(dev, ep, player, log)
	ctrl.Display = mirror
	ctrl.Range = cfg.Rotation.Range()
	ctrl.ClearDelay = cfg.Feedback.ClearDelay
	ctrl.Coalesce = cfg.Feedback.Coalesce
	ctrl.CancelOnTouch = cfg.Feedback.CancelOnTouch
	ctrl.ShowPress = cfg.Feedback.ShowPress
	ctrl.Notify = o.notify
	if cfg.Sonos.Timeout > 0 {
		ctrl.CallTimeout = cfg.Sonos.Timeout
	}

	c := &Core{
		Device:     dev,
		Display:    mirror,
		Player:     player,
		Controller: ctrl,
		cfg:        cfg,
		log:        log,
		gone:       make(chan struct{}),
	}
	if err := ctrl.Attach(ctx); err != nil {
		_ = dev.Close()
		return nil, fmt.Errorf("attach controller: %w", err)
	}
	// Registered after the controller so Gone closes once its cleanup ran.
	var once sync.Once
	markGone := func() { once.Do(func() { close(c.gone) }) }
	dev.On(device.Disconnect, func(device.Event) { markGone() })
	if !dev.Connected() {
		markGone()
	}
	log.Info().Str("device", cfg.Device.ID).Msg("controller ready")
	return c, nil
}

// Gone is closed when the device disconnects.
func (c *Core) Gone() <-chan struct{} { return c.gone }

// SplashBanner is the configured splash text, or the built-in banner.
func SplashBanner(cfg *config.Config) (banner.Banner, error) {
	if cfg.Splash.Text == "" {
		return banner.Sonos, nil
	}
	return banner.Text(cfg.Splash.Text)
}

// Splash starts the banner animation. It returns a nil session when the
// splash is disabled.
func (c *Core) Splash() (*sequence.Session, error) {
	if !c.cfg.Splash.Enabled {
		return nil, nil
	}
	b, err := SplashBanner(c.cfg)
	if err != nil {
		return nil, fmt.Errorf("splash banner: %w", err)
	}
	anim, err := banner.ToAnimation(b, c.cfg.Splash.Pad)
	if err != nil {
		return nil, fmt.Errorf("splash animation: %w", err)
	}
	s, err := c.Player.Play(anim, c.cfg.Splash.Interval)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (c *Core) Close() error {
	c.Player.Cancel()
	return c.Device.Close()
}
