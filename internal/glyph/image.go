package glyph

import (
	"image"

	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Image returns the glyph as a 1-bit image, one pixel per cell.
func (g Glyph) Image() *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, g.width, len(g.rows)))
	for y := range g.rows {
		for x := 0; x < g.width; x++ {
			if g.Lit(x, y) {
				img.SetBit(x, y, image1bit.On)
			}
		}
	}
	return img
}
