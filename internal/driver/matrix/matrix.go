// Package matrix mirrors frames onto a local LED matrix driven through
// periph: WS2812 style strips over SPI, or an ANSI console strip when no SPI
// port is available.
package matrix

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/extra/devices/screen"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-nuimo/internal/glyph"
	"github.com/coreman2200/funtimes-nuimo/internal/layout"
	"github.com/coreman2200/funtimes-nuimo/internal/render"
)

// RefreshRate of the strip in kHz before the 3x SPI expansion.
const RefreshRate physic.Frequency = 800

// Driver renders glyphs as a 1 x N strip image through the layout.
type Driver struct {
	mu     sync.Mutex
	drawer display.Drawer
	closer io.Closer
	layout layout.Layout

	// Color of a lit pixel at full brightness.
	Color color.NRGBA
	// Brightness used when Options.Brightness is unset.
	Brightness float64
	// Console is true when the drawer is the terminal fallback.
	Console bool
}

// New wraps an already opened drawer.
func New(d display.Drawer, l layout.Layout) *Driver {
	return &Driver{
		drawer:     d,
		layout:     l,
		Color:      color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		Brightness: 1,
	}
}

// Open initializes periph and opens the SPI port (empty name picks the
// first one). Without an SPI port it falls back to printing at the console.
func Open(spiDev string, l layout.Layout) (*Driver, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	p, err := spireg.Open(spiDev)
	if err != nil {
		d := New(screen.New(l.Count()), l)
		d.Console = true
		return d, nil
	}
	opts := nrzled.Opts{
		NumPixels: l.Count(),
		Channels:  3,
		Freq:      ((RefreshRate * 3) + 100) * physic.KiloHertz,
	}
	strip, err := nrzled.NewSPI(p, &opts)
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("nrzled on %q: %w", spiDev, err)
	}
	d := New(strip, l)
	d.closer = p
	return d, nil
}

// Strip returns the frame as a 1 x N image ordered by strip index.
func (d *Driver) Strip(g glyph.Glyph, level float64) *image.NRGBA {
	l := d.layout
	img := image.NewNRGBA(image.Rect(0, 0, l.Count(), 1))
	on := color.NRGBA{
		R: uint8(float64(d.Color.R) * level),
		G: uint8(float64(d.Color.G) * level),
		B: uint8(float64(d.Color.B) * level),
		A: 255,
	}
	off := color.NRGBA{A: 255}
	bits := g.Image()
	bounds := bits.Bounds()
	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			i := l.Index(x, y)
			if image.Pt(x, y).In(bounds) && bits.BitAt(x, y) == image1bit.On {
				img.SetNRGBA(i, 0, on)
			} else {
				img.SetNRGBA(i, 0, off)
			}
		}
	}
	return img
}

func (d *Driver) Render(g glyph.Glyph, opts render.Options) error {
	f, err := g.Frame(d.layout.Width, d.layout.Height, opts.Alignment)
	if err != nil {
		return err
	}
	if opts.Composition == render.Invert {
		f = f.Invert()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	img := d.Strip(f, opts.Level(d.Brightness))
	if err := d.drawer.Draw(d.drawer.Bounds(), img, image.Point{}); err != nil {
		return fmt.Errorf("matrix draw: %w", err)
	}
	return nil
}

// Close blanks the strip and releases the port.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	err := d.drawer.Halt()
	if d.closer != nil {
		if cerr := d.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (d *Driver) String() string {
	return fmt.Sprintf("matrix{%s %dx%d}", d.drawer, d.layout.Width, d.layout.Height)
}
