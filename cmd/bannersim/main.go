package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-nuimo/internal/banner"
	"github.com/coreman2200/funtimes-nuimo/internal/driver/matrix"
	"github.com/coreman2200/funtimes-nuimo/internal/glyph"
	"github.com/coreman2200/funtimes-nuimo/internal/layout"
	"github.com/coreman2200/funtimes-nuimo/internal/render"
	"github.com/coreman2200/funtimes-nuimo/internal/sequence"
)

// console prints every frame as a 9x9 block of characters.
type console struct {
	frames int
}

func (c *console) Render(g glyph.Glyph, opts render.Options) error {
	f, err := g.Frame(glyph.FrameWidth, glyph.FrameHeight, opts.Alignment)
	if err != nil {
		return err
	}
	if opts.Composition == render.Invert {
		f = f.Invert()
	}
	c.frames++
	var b strings.Builder
	fmt.Fprintf(&b, "\033[H\033[2Jframe %d (%s)\n", c.frames, opts.Transition)
	for _, row := range f.Rows() {
		b.WriteString(strings.ReplaceAll(row, "*", "#"))
		b.WriteByte('\n')
	}
	_, err = os.Stdout.WriteString(b.String())
	return err
}

type mirrored struct {
	*render.Mirror
}

func (mirrored) Connected() bool { return true }

func main() {
	var (
		text     string
		interval time.Duration
		pad      bool
		spiDev   string
		useLEDs  bool
	)
	flag.StringVar(&text, "text", "", "banner text; empty plays the built-in banner")
	flag.DurationVar(&interval, "interval", 250*time.Millisecond, "time per frame")
	flag.BoolVar(&pad, "pad", true, "scroll in from and out to a blank frame")
	flag.BoolVar(&useLEDs, "matrix", false, "also draw on the local LED matrix")
	flag.StringVar(&spiDev, "spi", "", "SPI port for -matrix; empty picks the first")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	b := banner.Sonos
	if text != "" {
		var err error
		if b, err = banner.Text(text); err != nil {
			log.Fatal().Err(err).Str("text", text).Msg("banner")
		}
	}
	anim, err := banner.ToAnimation(b, pad)
	if err != nil {
		log.Fatal().Err(err).Msg("animation")
	}

	mirror := render.NewMirror(&console{})
	if useLEDs {
		m, err := matrix.Open(spiDev, layout.Nuimo)
		if err != nil {
			log.Fatal().Err(err).Msg("matrix")
		}
		defer m.Close()
		mirror.Secondaries = append(mirror.Secondaries, m)
	}

	player := sequence.NewPlayer(mirrored{mirror}, log.Logger)
	start := time.Now()
	s, err := player.Play(anim, interval)
	if err != nil {
		log.Fatal().Err(err).Msg("play")
	}
	<-s.Done()
	log.Info().Int("frames", anim.Len()).Dur("elapsed", time.Since(start)).Msg("done")
}
