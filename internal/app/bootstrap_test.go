package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-nuimo/internal/audio"
	"github.com/coreman2200/funtimes-nuimo/internal/banner"
	"github.com/coreman2200/funtimes-nuimo/internal/config"
	"github.com/coreman2200/funtimes-nuimo/internal/device"
	"github.com/coreman2200/funtimes-nuimo/internal/driver/fake"
	"github.com/coreman2200/funtimes-nuimo/internal/glyph"
	"github.com/coreman2200/funtimes-nuimo/internal/interaction"
	"github.com/coreman2200/funtimes-nuimo/internal/render"
	"github.com/coreman2200/funtimes-nuimo/internal/sequence"
)

type zone struct {
	mu     sync.Mutex
	state  audio.PlaybackState
	volume float64
}

func (z *zone) State(context.Context) (audio.PlaybackState, error) {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.state, nil
}

func (z *zone) Volume(context.Context) (float64, error) {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.volume, nil
}

func (z *zone) SetVolume(_ context.Context, v int) error {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.volume = float64(v)
	return nil
}

func (z *zone) TogglePlayback(context.Context) error { return nil }

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Device.ID = "c0:ff:ee"
	cfg.Splash.Interval = time.Hour
	return cfg
}

func TestInitCoreWiresEverything(t *testing.T) {
	conn := &fake.Connector{}
	mirror := fake.New()
	var notices []interaction.Notice
	core, err := InitCore(context.Background(), testConfig(), conn, &zone{state: audio.Playing}, zerolog.Nop(),
		WithMirrors(mirror),
		WithNotify(func(n interaction.Notice) { notices = append(notices, n) }))
	require.NoError(t, err)
	defer core.Close()

	assert.Equal(t, []string{"c0:ff:ee"}, conn.IDs())
	drv := conn.Drivers()[0]
	mode, rng, _ := drv.Rotation()
	assert.Equal(t, device.RotationClamped, mode)
	require.NotNil(t, rng)

	drv.Emit(device.Event{Kind: device.Rotate, Position: 1})
	require.Equal(t, 1, drv.Count())
	require.Equal(t, 1, mirror.Count())
	hundred, err := glyph.Number(100)
	require.NoError(t, err)
	last, _ := mirror.Last()
	assert.True(t, last.Glyph.Equal(hundred))
	require.Len(t, notices, 1)
	require.NotNil(t, notices[0].Volume)
	assert.Equal(t, 100, *notices[0].Volume)
}

func TestSplashPlaysOnEveryDisplay(t *testing.T) {
	conn := &fake.Connector{}
	mirror := fake.New()
	core, err := InitCore(context.Background(), testConfig(), conn, &zone{}, zerolog.Nop(), WithMirrors(mirror))
	require.NoError(t, err)
	defer core.Close()

	s, err := core.Splash()
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, sequence.Playing, s.State())

	b, err := banner.Pad(banner.Sonos, banner.DefaultPad)
	require.NoError(t, err)
	want, err := banner.ToAnimation(b, false)
	require.NoError(t, err)
	last, ok := mirror.Last()
	require.True(t, ok)
	assert.True(t, last.Glyph.Equal(want[0]))

	// touching the surface stops the splash
	conn.Drivers()[0].Emit(device.Event{Kind: device.Touch})
	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("splash still running after touch")
	}
	assert.Equal(t, sequence.Stopped, s.State())
}

func TestSplashVariants(t *testing.T) {
	cfg := testConfig()
	cfg.Splash.Enabled = false
	core, err := InitCore(context.Background(), cfg, &fake.Connector{}, &zone{}, zerolog.Nop())
	require.NoError(t, err)
	s, err := core.Splash()
	assert.NoError(t, err)
	assert.Nil(t, s)
	require.NoError(t, core.Close())

	cfg = testConfig()
	cfg.Splash.Text = "~"
	core, err = InitCore(context.Background(), cfg, &fake.Connector{}, &zone{}, zerolog.Nop())
	require.NoError(t, err)
	_, err = core.Splash()
	assert.ErrorIs(t, err, glyph.ErrRange)
	require.NoError(t, core.Close())

	cfg = testConfig()
	cfg.Splash.Text = "HI"
	b, err := SplashBanner(cfg)
	require.NoError(t, err)
	assert.Equal(t, glyph.FrameHeight, b.Height())
}

func TestDisconnectClosesGone(t *testing.T) {
	conn := &fake.Connector{}
	core, err := InitCore(context.Background(), testConfig(), conn, &zone{}, zerolog.Nop())
	require.NoError(t, err)
	s, err := core.Splash()
	require.NoError(t, err)

	conn.Drivers()[0].Disconnect()
	select {
	case <-core.Gone():
	default:
		t.Fatal("Gone not closed")
	}
	<-s.Done()
	assert.Equal(t, sequence.Stopped, s.State())
	assert.Equal(t, 0, core.Controller.Pending())

	require.NoError(t, core.Close())
	assert.True(t, conn.Drivers()[0].Closed())
}

func TestInitCoreErrors(t *testing.T) {
	_, err := InitCore(context.Background(), nil, &fake.Connector{}, &zone{}, zerolog.Nop())
	assert.Error(t, err)

	_, err = InitCore(context.Background(), testConfig(), &fake.Connector{Err: errors.New("no bridge")}, &zone{}, zerolog.Nop())
	assert.ErrorContains(t, err, "no bridge")

	cfg := testConfig()
	cfg.Rotation.Max = cfg.Rotation.Min
	conn := &fake.Connector{}
	_, err = InitCore(context.Background(), cfg, conn, &zone{}, zerolog.Nop())
	assert.ErrorContains(t, err, "attach controller")
	assert.True(t, conn.Drivers()[0].Closed())
}

func TestSelectDownShowsPressByDefault(t *testing.T) {
	conn := &fake.Connector{}
	core, err := InitCore(context.Background(), testConfig(), conn, &zone{}, zerolog.Nop())
	require.NoError(t, err)
	defer core.Close()

	drv := conn.Drivers()[0]
	drv.Emit(device.Event{Kind: device.SelectDown})
	f, ok := drv.Last()
	require.True(t, ok)
	assert.True(t, f.Glyph.Equal(glyph.Speaker))
	assert.Equal(t, render.Invert, f.Options.Composition)
}
