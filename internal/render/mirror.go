package render

import (
	"errors"

	"github.com/coreman2200/funtimes-nuimo/internal/glyph"
)

// Mirror renders to a primary display and copies every frame to secondary
// sinks (console, local matrix, preview). Only the primary's error is
// returned; secondary errors go to OnMirrorError when set.
type Mirror struct {
	Primary       Display
	Secondaries   []Display
	OnMirrorError func(error)
}

func NewMirror(primary Display, secondaries ...Display) *Mirror {
	return &Mirror{Primary: primary, Secondaries: secondaries}
}

func (m *Mirror) Render(g glyph.Glyph, opts Options) error {
	if m.Primary == nil {
		return errors.New("mirror: no primary display")
	}
	err := m.Primary.Render(g, opts)
	for _, s := range m.Secondaries {
		if s == nil {
			continue
		}
		if serr := s.Render(g, opts); serr != nil && m.OnMirrorError != nil {
			m.OnMirrorError(serr)
		}
	}
	return err
}
