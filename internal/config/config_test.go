package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-nuimo/internal/dial"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, dial.Default, c.Rotation.Range())
	assert.Equal(t, 5*time.Second, c.Feedback.ClearDelay)
	assert.Equal(t, 250*time.Millisecond, c.Splash.Interval)
	assert.True(t, c.Feedback.CancelOnTouch)
	assert.False(t, c.Feedback.Coalesce)
	assert.True(t, c.Feedback.ShowPress)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sonos:
  room: Kitchen
splash:
  text: HELLO
  interval: 100ms
feedback:
  coalesce: true
rotation:
  min: 0
  max: 2
  start: 1
  cycles: 2
`), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Kitchen", c.Sonos.Room)
	assert.Equal(t, "http://127.0.0.1:5005", c.Sonos.URL)
	assert.Equal(t, "HELLO", c.Splash.Text)
	assert.Equal(t, 100*time.Millisecond, c.Splash.Interval)
	assert.True(t, c.Feedback.Coalesce)
	assert.Equal(t, dial.Range{Min: 0, Max: 2, Start: 1, Cycles: 2}, c.Rotation.Range())
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sonos:\n  room: Kitchen\n"), 0644))
	t.Setenv("NUIMO_SONOS_ROOM", "Office")
	t.Setenv("NUIMO_CLEAR_DELAY", "2s")
	t.Setenv("NUIMO_MQTT_ADDR", "broker:1883")
	t.Setenv("NUIMO_LOG_LEVEL", "debug")
	t.Setenv("NUIMO_SHOW_PRESS", "false")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Office", c.Sonos.Room)
	assert.Equal(t, 2*time.Second, c.Feedback.ClearDelay)
	assert.Equal(t, "broker:1883", c.MQTT.Addr)
	assert.Equal(t, "debug", c.Log.Level)
	assert.False(t, c.Feedback.ShowPress)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("sonos: [1, 2"), 0644))
	_, err := Load(bad)
	assert.ErrorContains(t, err, "parse")

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("rotation:\n  min: 1\n  max: 0\n"), 0644))
	_, err = Load(invalid)
	assert.ErrorContains(t, err, "rotation range")

	t.Setenv("NUIMO_CLEAR_DELAY", "soon")
	_, err = Load("")
	assert.ErrorContains(t, err, "parse env")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"splash interval", func(c *Config) { c.Splash.Interval = 0 }, "splash.interval"},
		{"clear delay", func(c *Config) { c.Feedback.ClearDelay = -time.Second }, "clear_delay"},
		{"bridge", func(c *Config) { c.Bridge.URL = "" }, "bridge.url"},
		{"room", func(c *Config) { c.Sonos.Room = "" }, "sonos.room"},
		{"brightness", func(c *Config) { c.Matrix.Brightness = 2 }, "matrix.brightness"},
		{"mqtt topic", func(c *Config) { c.MQTT.Addr = "b:1883"; c.MQTT.Topic = "" }, "mqtt.topic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			assert.ErrorContains(t, c.Validate(), tt.want)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	c := Default()
	c.Device.ID = "c0:ff:ee"
	c.Splash.Text = "HI"
	require.NoError(t, Save(path, c))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}
