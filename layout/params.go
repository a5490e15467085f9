package layout

import "golang.org/x/image/math/fixed"

// XAlignment positions a line horizontally within its text area.
type XAlignment int

const (
	AlignStart XAlignment = iota
	AlignCenter
	AlignEnd
)

// YAlignment positions the whole text block vertically within its area,
// via the factor named in §4.D.2 step 7 (0 top, 1 center, 2 bottom).
type YAlignment int

const (
	AlignTop YAlignment = iota
	AlignMiddle
	AlignBottom
)

func (y YAlignment) factor() fixed.Int26_6 {
	switch y {
	case AlignMiddle:
		return fixed.I(1)
	case AlignBottom:
		return fixed.I(2)
	default:
		return 0
	}
}

// Params are the build parameters of §4.D.1, following the teacher's plain
// Parameters struct shape in text/shaper.go.
type Params struct {
	// TextAreaWidth constrains line breaking; 0 means no wrap.
	TextAreaWidth fixed.Int26_6
	// TextAreaHeight is used only for Y-alignment.
	TextAreaHeight fixed.Int26_6
	// TabWidth is the pixel width intended for a tab stop. Builder.Build
	// does not read it: a tab is shaped like any other character.
	TabWidth fixed.Int26_6

	XAlign XAlignment
	YAlign YAlignment

	// RightToLeft makes RTL the fallback base paragraph direction: P2/P3
	// first-strong-character detection still runs, and RTL is used only
	// for a paragraph with no strong character (bidi.DefaultRTL).
	RightToLeft bool
	// OverrideDirectionality is accepted but not read by Builder.Build:
	// levels always come from the full BiDi resolution, and no level is
	// forced to the base direction.
	OverrideDirectionality bool
}
