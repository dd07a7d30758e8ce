package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-nuimo/internal/audio"
	"github.com/coreman2200/funtimes-nuimo/internal/config"
	"github.com/coreman2200/funtimes-nuimo/internal/device"
)

const DefaultRetry = 2 * time.Second

// Conductor keeps a controller session alive: it connects, plays the
// splash, and after a disconnect tears the session down and connects again.
type Conductor struct {
	Config    *config.Config
	Connector device.Connector
	Audio     audio.Endpoint
	Options   []Option
	Log       zerolog.Logger

	// Retry is the pause between connection attempts.
	Retry time.Duration
	// OnCore sees every new session before the splash starts.
	OnCore func(*Core)
}

// Run blocks until ctx ends.
func (c *Conductor) Run(ctx context.Context) error {
	retry := c.Retry
	if retry <= 0 {
		retry = DefaultRetry
	}
	for {
		core, err := InitCore(ctx, c.Config, c.Connector, c.Audio, c.Log, c.Options...)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.Log.Warn().Err(err).Dur("retry", retry).Msg("connect failed")
		} else {
			c.serve(ctx, core)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.Log.Info().Dur("retry", retry).Msg("device gone; reconnecting")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retry):
		}
	}
}

func (c *Conductor) serve(ctx context.Context, core *Core) {
	defer func() {
		if err := core.Close(); err != nil {
			c.Log.Debug().Err(err).Msg("close device")
		}
	}()
	if c.OnCore != nil {
		c.OnCore(core)
	}
	if _, err := core.Splash(); err != nil {
		c.Log.Warn().Err(err).Msg("splash failed")
	}
	select {
	case <-ctx.Done():
	case <-core.Gone():
	}
}
