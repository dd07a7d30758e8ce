// Package banner turns wide multi-row bitmaps into scrolling animations for
// the 9x9 display.
package banner

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/coreman2200/funtimes-nuimo/internal/glyph"
	"github.com/coreman2200/funtimes-nuimo/internal/sequence"
)

// DefaultPad is one full frame of blank columns, so the scroll starts and
// ends on an empty display.
const DefaultPad = glyph.FrameWidth

// Banner is a bitmap wider than one frame, one string per display row.
type Banner []string

func (b Banner) Height() int { return len(b) }

// Width is the rune count of the first row; Validate checks the rest agree.
func (b Banner) Width() int {
	if len(b) == 0 {
		return 0
	}
	return utf8.RuneCountInString(b[0])
}

func (b Banner) Validate() error {
	if len(b) == 0 {
		return &glyph.DimensionError{Op: "banner", Reason: "no rows"}
	}
	w := b.Width()
	for i, r := range b {
		if n := utf8.RuneCountInString(r); n != w {
			return &glyph.DimensionError{Op: "banner", Reason: fmt.Sprintf("row %d has width %d, want %d", i, n, w)}
		}
	}
	return nil
}

// Pad returns a copy of b with pad blank columns on both sides of each row.
// Only full height banners can be padded.
func Pad(b Banner, pad int) (Banner, error) {
	if pad < 0 {
		return nil, &glyph.RangeError{Op: "banner.Pad", Value: pad, Min: 0, Max: "inf"}
	}
	if b.Height() != glyph.FrameHeight {
		return nil, &glyph.DimensionError{Op: "banner.Pad", Reason: fmt.Sprintf("height %d, want %d", b.Height(), glyph.FrameHeight)}
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	margin := strings.Repeat(" ", pad)
	out := make(Banner, len(b))
	for i, r := range b {
		out[i] = margin + r + margin
	}
	return out, nil
}

// ToAnimation slides a frame wide window across b one column at a time,
// left to right. A w column banner yields w-8 frames.
func ToAnimation(b Banner, addPad bool) (sequence.Animation, error) {
	if addPad {
		var err error
		if b, err = Pad(b, DefaultPad); err != nil {
			return nil, err
		}
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if b.Height() != glyph.FrameHeight {
		return nil, &glyph.DimensionError{Op: "banner.ToAnimation", Reason: fmt.Sprintf("height %d, want %d", b.Height(), glyph.FrameHeight)}
	}
	frameCount := b.Width() - (glyph.FrameWidth - 1)
	if frameCount < 1 {
		return nil, &glyph.RangeError{Op: "banner.ToAnimation", Value: b.Width(), Min: glyph.FrameWidth, Max: "inf"}
	}

	cells := make([][]rune, len(b))
	for r, row := range b {
		cells[r] = []rune(row)
	}
	anim := make(sequence.Animation, 0, frameCount)
	rows := make([]string, glyph.FrameHeight)
	for i := 0; i < frameCount; i++ {
		for r := range rows {
			rows[r] = string(cells[r][i : i+glyph.FrameWidth])
		}
		g, err := glyph.FromRows(rows...)
		if err != nil {
			return nil, err
		}
		anim = append(anim, g)
	}
	return anim, nil
}
