package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-nuimo/internal/app"
	"github.com/coreman2200/funtimes-nuimo/internal/config"
	"github.com/coreman2200/funtimes-nuimo/internal/driver/bridge"
	"github.com/coreman2200/funtimes-nuimo/internal/driver/matrix"
	"github.com/coreman2200/funtimes-nuimo/internal/interaction"
	"github.com/coreman2200/funtimes-nuimo/internal/layout"
	"github.com/coreman2200/funtimes-nuimo/internal/mqtt"
	"github.com/coreman2200/funtimes-nuimo/internal/sonos"
	"github.com/coreman2200/funtimes-nuimo/internal/ws"
)

func main() {
	// ---- Flags (override config.yaml and NUIMO_* env) ----
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		deviceID   = flag.String("device", "", "controller id; empty takes the first found")
		bridgeURL  = flag.String("bridge", "", "websocket url of the BLE bridge")
		sonosURL   = flag.String("sonos", "", "base url of the Sonos HTTP API")
		room       = flag.String("room", "", "Sonos room to control")
		text       = flag.String("text", "", "splash text instead of the built-in banner")
		preview    = flag.String("preview", "", "listen address of the frame preview, e.g. :8080")
		noSplash   = flag.Bool("no-splash", false, "skip the splash animation")
		noMatrix   = flag.Bool("no-matrix", false, "disable the local LED matrix mirror")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("config load failed")
	}
	setString(&cfg.Device.ID, *deviceID)
	setString(&cfg.Bridge.URL, *bridgeURL)
	setString(&cfg.Sonos.URL, *sonosURL)
	setString(&cfg.Sonos.Room, *room)
	setString(&cfg.Splash.Text, *text)
	setString(&cfg.Preview.Addr, *preview)
	if *noSplash {
		cfg.Splash.Enabled = false
	}
	if *noMatrix {
		cfg.Matrix.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}
	if _, err := app.SplashBanner(cfg); err != nil {
		log.Fatal().Err(err).Str("text", cfg.Splash.Text).Msg("splash text cannot be rendered")
	}

	if lvl, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	} else {
		log.Warn().Str("level", cfg.Log.Level).Msg("unknown log level; using info")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var opts []app.Option
	var closers []func() error

	// ---- Mirrors ----
	if cfg.Matrix.Enabled {
		l := layout.Nuimo
		l.Serpentine = cfg.Matrix.Serpentine
		l.FlipY = cfg.Matrix.FlipY
		m, err := matrix.Open(cfg.Matrix.SPI, l)
		if err != nil {
			log.Warn().Err(err).Str("spi", cfg.Matrix.SPI).Msg("matrix unavailable; continuing without it")
		} else {
			m.Brightness = cfg.Matrix.Brightness
			log.Info().Str("matrix", m.String()).Bool("console", m.Console).Msg("matrix mirror on")
			opts = append(opts, app.WithMirrors(m))
			closers = append(closers, m.Close)
		}
	}

	var srv *http.Server
	if cfg.Preview.Addr != "" {
		state := ws.NewState(log.Logger)
		srv = &http.Server{
			Addr:         cfg.Preview.Addr,
			Handler:      withCORS(state.Handler()),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		opts = append(opts, app.WithMirrors(state))
		closers = append(closers, state.Close)
		go func() {
			log.Info().Str("addr", cfg.Preview.Addr).Msg("preview server starting")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("preview server stopped")
			}
		}()
	}

	// ---- Telemetry ----
	if cfg.MQTT.Addr != "" {
		pub := mqtt.New(cfg.MQTT.Addr, cfg.MQTT.ClientID, cfg.MQTT.Topic, log.Logger)
		events := make(chan any, 16)
		go pub.Run(ctx, events)
		opts = append(opts, app.WithNotify(func(n interaction.Notice) {
			select {
			case events <- n:
			default:
				log.Warn().Str("kind", n.Kind).Msg("telemetry queue full; notice dropped")
			}
		}))
		closers = append(closers, pub.Close)
	}

	conductor := &app.Conductor{
		Config:    cfg,
		Connector: bridge.Connector{URL: cfg.Bridge.URL, Log: log.Logger},
		Audio:     sonos.New(cfg.Sonos.URL, cfg.Sonos.Room, cfg.Sonos.Timeout),
		Options:   opts,
		Log:       log.Logger,
	}
	log.Info().Str("bridge", cfg.Bridge.URL).Str("room", cfg.Sonos.Room).Msg("nuimoctl starting")
	if err := conductor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("conductor stopped")
	}

	// ---- Graceful shutdown ----
	log.Info().Msg("shutting down")
	if srv != nil {
		_ = srv.Close()
	}
	for _, c := range closers {
		_ = c()
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
