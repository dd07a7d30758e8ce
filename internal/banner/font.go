package banner

import (
	"strings"
	"unicode"

	"github.com/coreman2200/funtimes-nuimo/internal/glyph"
)

// font maps runes to 7 row bitmaps. Widths vary per rune.
var font = map[rune][]string{
	'A': {" ** ", "*  *", "*  *", "****", "*  *", "*  *", "*  *"},
	'B': {"*** ", "*  *", "*  *", "*** ", "*  *", "*  *", "*** "},
	'C': {" ***", "*   ", "*   ", "*   ", "*   ", "*   ", " ***"},
	'D': {"*** ", "*  *", "*  *", "*  *", "*  *", "*  *", "*** "},
	'E': {"****", "*   ", "*   ", "*** ", "*   ", "*   ", "****"},
	'F': {"****", "*   ", "*   ", "*** ", "*   ", "*   ", "*   "},
	'G': {" ***", "*   ", "*   ", "* **", "*  *", "*  *", " ***"},
	'H': {"*  *", "*  *", "*  *", "****", "*  *", "*  *", "*  *"},
	'I': {"***", " * ", " * ", " * ", " * ", " * ", "***"},
	'J': {"  **", "   *", "   *", "   *", "   *", "*  *", " ** "},
	'K': {"*  *", "* * ", "**  ", "**  ", "* * ", "*  *", "*  *"},
	'L': {"*   ", "*   ", "*   ", "*   ", "*   ", "*   ", "****"},
	'M': {"*   *", "** **", "* * *", "*   *", "*   *", "*   *", "*   *"},
	'N': {"*   *", "**  *", "* * *", "*  **", "*   *", "*   *", "*   *"},
	'O': {" ** ", "*  *", "*  *", "*  *", "*  *", "*  *", " ** "},
	'P': {"*** ", "*  *", "*  *", "*** ", "*   ", "*   ", "*   "},
	'Q': {" ** ", "*  *", "*  *", "*  *", "* **", " ** ", "   *"},
	'R': {"*** ", "*  *", "*  *", "*** ", "* * ", "*  *", "*  *"},
	'S': {" ***", "*   ", "*   ", " ** ", "   *", "   *", "*** "},
	'T': {"*****", "  *  ", "  *  ", "  *  ", "  *  ", "  *  ", "  *  "},
	'U': {"*  *", "*  *", "*  *", "*  *", "*  *", "*  *", " ** "},
	'V': {"*   *", "*   *", "*   *", "*   *", " * * ", " * * ", "  *  "},
	'W': {"*   *", "*   *", "*   *", "* * *", "* * *", "** **", "*   *"},
	'X': {"*   *", "*   *", " * * ", "  *  ", " * * ", "*   *", "*   *"},
	'Y': {"*   *", "*   *", " * * ", "  *  ", "  *  ", "  *  ", "  *  "},
	'Z': {"****", "   *", "  * ", "  * ", " *  ", "*   ", "****"},
	' ': {"  ", "  ", "  ", "  ", "  ", "  ", "  "},
	'!': {"*", "*", "*", "*", "*", " ", "*"},
	'-': {"   ", "   ", "   ", "***", "   ", "   ", "   "},
	'.': {" ", " ", " ", " ", " ", " ", "*"},
	':': {" ", "*", " ", " ", " ", "*", " "},
	'?': {" ** ", "*  *", "   *", "  * ", "  * ", "    ", "  * "},
}

// Sonos is the hand-authored startup banner.
var Sonos = Banner{
	"                         ",
	" **   **  *   *  **   ** ",
	"*  * *  * *   * *  * *  *",
	"*    *  * **  * *  * *   ",
	"**** *  * * * * *  * ****",
	"   * *  * *  ** *  *    *",
	"*  * *  * *   * *  * *  *",
	" **   **  *   *  **   ** ",
	"                         ",
}

func runeGlyph(r rune) (glyph.Glyph, error) {
	if r >= '0' && r <= '9' {
		return glyph.Digit(int(r - '0'))
	}
	rows, ok := font[unicode.ToUpper(r)]
	if !ok {
		return glyph.Glyph{}, &glyph.RangeError{Op: "banner.Text", Value: string(r), Min: "A-Z 0-9", Max: "! - . : ?"}
	}
	return glyph.FromRows(rows...)
}

// Text renders s with the built-in font as a full height banner: one blank
// row above and below, one blank column between characters.
func Text(s string) (Banner, error) {
	if s == "" {
		return nil, &glyph.DimensionError{Op: "banner.Text", Reason: "empty text"}
	}
	var line glyph.Glyph
	for i, r := range s {
		g, err := runeGlyph(r)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			line = g
			continue
		}
		if line, err = glyph.Concat(line, g); err != nil {
			return nil, err
		}
	}
	blank := strings.Repeat(" ", line.Width())
	out := make(Banner, 0, glyph.FrameHeight)
	out = append(out, blank)
	out = append(out, line.Rows()...)
	out = append(out, blank)
	return out, nil
}
