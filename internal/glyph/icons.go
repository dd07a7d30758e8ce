package glyph

// Pre-authored feedback icons.
var (
	Empty = MustFromRows(
		"         ",
		"         ",
		"         ",
		"         ",
		"         ",
		"         ",
		"         ",
		"         ",
		"         ",
	)

	Play = MustFromRows(
		"  *      ",
		"  **     ",
		"  ***    ",
		"  ****   ",
		"  *****  ",
		"  ****   ",
		"  ***    ",
		"  **     ",
		"  *      ",
	)

	Pause = MustFromRows(
		"         ",
		" **   ** ",
		" **   ** ",
		" **   ** ",
		" **   ** ",
		" **   ** ",
		" **   ** ",
		" **   ** ",
		"         ",
	)

	// Speaker is shown while the select button is held.
	Speaker = MustFromRows(
		" **   ** ",
		"*  * *  *",
		"*  * *  *",
		"*  * *  *",
		"*  * *  *",
		"*  * *  *",
		" **   ** ",
	)
)
