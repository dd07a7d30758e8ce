// Package config loads nuimoctl settings from config.yaml with NUIMO_*
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-nuimo/internal/dial"
)

type Device struct {
	// ID selects one controller; empty takes the first the bridge finds.
	ID             string        `yaml:"id" env:"DEVICE_ID"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"CONNECT_TIMEOUT"`
}

type Bridge struct {
	URL string `yaml:"url" env:"BRIDGE_URL"`
}

type Sonos struct {
	URL     string        `yaml:"url" env:"SONOS_URL"`
	Room    string        `yaml:"room" env:"SONOS_ROOM"`
	Timeout time.Duration `yaml:"timeout" env:"SONOS_TIMEOUT"`
}

type Splash struct {
	Enabled bool `yaml:"enabled" env:"SPLASH"`
	// Text replaces the built-in banner when set.
	Text     string        `yaml:"text" env:"SPLASH_TEXT"`
	Interval time.Duration `yaml:"interval" env:"SPLASH_INTERVAL"`
	Pad      bool          `yaml:"pad" env:"SPLASH_PAD"`
}

type Feedback struct {
	ClearDelay    time.Duration `yaml:"clear_delay" env:"CLEAR_DELAY"`
	Coalesce      bool          `yaml:"coalesce" env:"COALESCE_CLEARS"`
	CancelOnTouch bool          `yaml:"cancel_on_touch" env:"CANCEL_ON_TOUCH"`
	ShowPress     bool          `yaml:"show_press" env:"SHOW_PRESS"`
}

type Rotation struct {
	Min    float64 `yaml:"min" env:"ROTATION_MIN"`
	Max    float64 `yaml:"max" env:"ROTATION_MAX"`
	Start  float64 `yaml:"start" env:"ROTATION_START"`
	Cycles int     `yaml:"cycles" env:"ROTATION_CYCLES"`
}

func (r Rotation) Range() dial.Range {
	return dial.Range{Min: r.Min, Max: r.Max, Start: r.Start, Cycles: r.Cycles}
}

type Matrix struct {
	Enabled    bool    `yaml:"enabled" env:"MATRIX"`
	SPI        string  `yaml:"spi" env:"MATRIX_SPI"` // e.g. /dev/spidev0.0, empty takes the first port
	Brightness float64 `yaml:"brightness" env:"MATRIX_BRIGHTNESS"`
	Serpentine bool    `yaml:"serpentine" env:"MATRIX_SERPENTINE"`
	FlipY      bool    `yaml:"flip_y" env:"MATRIX_FLIP_Y"`
}

type Preview struct {
	Addr string `yaml:"addr" env:"PREVIEW_ADDR"` // empty disables the preview server
}

type MQTT struct {
	Addr     string `yaml:"addr" env:"MQTT_ADDR"` // empty disables publishing
	ClientID string `yaml:"client_id" env:"MQTT_CLIENT_ID"`
	Topic    string `yaml:"topic" env:"MQTT_TOPIC"`
}

type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
}

type Config struct {
	Device   Device   `yaml:"device"`
	Bridge   Bridge   `yaml:"bridge"`
	Sonos    Sonos    `yaml:"sonos"`
	Splash   Splash   `yaml:"splash"`
	Feedback Feedback `yaml:"feedback"`
	Rotation Rotation `yaml:"rotation"`
	Matrix   Matrix   `yaml:"matrix,omitempty"`
	Preview  Preview  `yaml:"preview"`
	MQTT     MQTT     `yaml:"mqtt,omitempty"`
	Log      Log      `yaml:"log"`
}

// Default is a complete working config for a local bridge and Sonos API.
func Default() *Config {
	return &Config{
		Device: Device{ConnectTimeout: 30 * time.Second},
		Bridge: Bridge{URL: "ws://127.0.0.1:8765/nuimo"},
		Sonos: Sonos{
			URL:     "http://127.0.0.1:5005",
			Room:    "Living Room",
			Timeout: 3 * time.Second,
		},
		Splash: Splash{Enabled: true, Interval: 250 * time.Millisecond, Pad: true},
		Feedback: Feedback{
			ClearDelay:    5 * time.Second,
			CancelOnTouch: true,
			ShowPress:     true,
		},
		Rotation: Rotation{Min: dial.Default.Min, Max: dial.Default.Max, Start: dial.Default.Start, Cycles: dial.Default.Cycles},
		Matrix:   Matrix{Brightness: 0.3, Serpentine: true},
		MQTT:     MQTT{ClientID: "nuimoctl", Topic: "nuimo/events"},
		Log:      Log{Level: "info"},
	}
}

// Load reads path over Default and then applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(b, c); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	if err := ParseEnv(c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ParseEnv applies NUIMO_* variables onto target.
func ParseEnv(target *Config) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: "NUIMO_"}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if err := c.Rotation.Range().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Splash.Interval <= 0 {
		errs = append(errs, errors.New("splash.interval must be positive"))
	}
	if c.Feedback.ClearDelay < 0 {
		errs = append(errs, errors.New("feedback.clear_delay must not be negative"))
	}
	if c.Bridge.URL == "" {
		errs = append(errs, errors.New("bridge.url is required"))
	}
	if c.Sonos.URL == "" || c.Sonos.Room == "" {
		errs = append(errs, errors.New("sonos.url and sonos.room are required"))
	}
	if c.Matrix.Brightness < 0 || c.Matrix.Brightness > 1 {
		errs = append(errs, errors.New("matrix.brightness must be within [0,1]"))
	}
	if c.MQTT.Addr != "" && c.MQTT.Topic == "" {
		errs = append(errs, errors.New("mqtt.topic is required when mqtt.addr is set"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
