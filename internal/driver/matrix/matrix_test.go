package matrix

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spitest"
	"periph.io/x/devices/v3/nrzled"

	"github.com/coreman2200/funtimes-nuimo/internal/glyph"
	"github.com/coreman2200/funtimes-nuimo/internal/layout"
	"github.com/coreman2200/funtimes-nuimo/internal/render"
)

// fakeDrawer keeps the last image drawn.
type fakeDrawer struct {
	w      int
	last   *image.NRGBA
	halted bool
}

func (f *fakeDrawer) String() string               { return "fake" }
func (f *fakeDrawer) Halt() error                  { f.halted = true; return nil }
func (f *fakeDrawer) ColorModel() color.Model      { return color.NRGBAModel }
func (f *fakeDrawer) Bounds() image.Rectangle      { return image.Rect(0, 0, f.w, 1) }
func (f *fakeDrawer) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	f.last = src.(*image.NRGBA)
	return nil
}

func litCount(img *image.NRGBA) int {
	n := 0
	for x := 0; x < img.Rect.Dx(); x++ {
		if img.NRGBAAt(x, 0).R > 0 {
			n++
		}
	}
	return n
}

func TestRenderMapsThroughLayout(t *testing.T) {
	fd := &fakeDrawer{w: 9}
	d := New(fd, layout.Layout{Width: 3, Height: 3, Serpentine: true})

	g := glyph.MustFromRows("*  ", "*  ", "*  ")
	require.NoError(t, d.Render(g, render.Options{Alignment: glyph.AlignLeft}))
	require.NotNil(t, fd.last)
	// column 0 lands on strip 0, 5 and 6 in a 3x3 serpentine
	for _, i := range []int{0, 5, 6} {
		assert.Equal(t, uint8(255), fd.last.NRGBAAt(i, 0).R, "led %d", i)
	}
	assert.Equal(t, 3, litCount(fd.last))
}

func TestRenderOptions(t *testing.T) {
	fd := &fakeDrawer{w: 81}
	d := New(fd, layout.Nuimo)

	require.NoError(t, d.Render(glyph.Empty, render.Options{Composition: render.Invert}))
	assert.Equal(t, 81, litCount(fd.last))

	require.NoError(t, d.Render(glyph.MustFromRows("*"), render.Options{Brightness: render.Brightness(0.5)}))
	assert.Equal(t, 1, litCount(fd.last))
	// centred single pixel sits at (4,4): row 4 is even so index 40
	assert.Equal(t, uint8(127), fd.last.NRGBAAt(40, 0).R)

	big := glyph.MustFromRows("**********")
	assert.ErrorIs(t, d.Render(big, render.Options{}), glyph.ErrDimension)

	require.NoError(t, d.Close())
	assert.True(t, fd.halted)
}

func TestRenderOverSPI(t *testing.T) {
	buf := bytes.Buffer{}
	o := nrzled.Opts{NumPixels: layout.Nuimo.Count(), Channels: 3, Freq: 2500 * physic.KiloHertz}
	strip, err := nrzled.NewSPI(spitest.NewRecordRaw(&buf), &o)
	require.NoError(t, err)

	d := New(strip, layout.Nuimo)
	require.NoError(t, d.Render(glyph.Play, render.Centered(render.CrossFade)))
	assert.NotZero(t, buf.Len())
	assert.Contains(t, d.String(), "9x9")
}

func TestStripReadsGlyphBits(t *testing.T) {
	d := New(&fakeDrawer{w: 9}, layout.Layout{Width: 3, Height: 3})

	img := d.Strip(glyph.MustFromRows("█ ", " █"), 1)
	assert.Equal(t, 2, litCount(img))
	assert.Equal(t, uint8(255), img.NRGBAAt(0, 0).R)
	assert.Equal(t, uint8(255), img.NRGBAAt(4, 0).R)
	// pixels outside a smaller glyph stay off
	assert.Equal(t, uint8(0), img.NRGBAAt(8, 0).R)
}
