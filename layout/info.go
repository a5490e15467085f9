package layout

import (
	"golang.org/x/image/math/fixed"

	gofont "github.com/go-text/typesetting/font"

	ffont "github.com/forenoonwatch/richtext/font"
)

// VisualRun is the unit emitted to Info, per §3's "Visual run": a maximal
// run of glyphs sharing a font, rendered in one direction.
type VisualRun struct {
	Font ffont.SingleScriptFont

	GlyphEndIndex int // exclusive, into Info.glyphs/charIndices
	CharStart     int // inclusive byte offset into the whole source text
	CharEnd       int // exclusive byte offset into the whole source text
	// CharEndOffset is the count of trailing paragraph-separator bytes
	// this run owns (§3: only the paragraph's highest run is nonzero).
	CharEndOffset int
	RightToLeft   bool
}

// Line is one visual line, per §3's "Line".
type Line struct {
	VisualRunsEndIndex int // exclusive index into Info.runs
	Width              fixed.Int26_6
	Ascent             fixed.Int26_6
	TotalDescent       fixed.Int26_6 // running sum from the top of the text block
}

// Info is the immutable layout-info aggregate of §3/§4.E, produced once by
// Builder.Build and safe for concurrent readers thereafter.
type Info struct {
	runs  []VisualRun
	lines []Line

	glyphs         []gofont.GID
	charIndices    []int
	glyphPositions []fixed.Point26_6 // glyph_count(r)+1 entries per run, sentinel trailing

	textStartY fixed.Int26_6
}

func (info *Info) LineCount() int { return len(info.lines) }
func (info *Info) RunCount() int  { return len(info.runs) }

// TextWidth is the widest line's width.
func (info *Info) TextWidth() fixed.Int26_6 {
	var w fixed.Int26_6
	for _, l := range info.lines {
		if l.Width > w {
			w = l.Width
		}
	}
	return w
}

// TextHeight is the total descent of the final line (the bottom of the
// text block, since TotalDescent accumulates from the top).
func (info *Info) TextHeight() fixed.Int26_6 {
	if len(info.lines) == 0 {
		return 0
	}
	return info.lines[len(info.lines)-1].TotalDescent
}

func (info *Info) TextStartY() fixed.Int26_6 { return info.textStartY }

func (info *Info) LineWidth(i int) fixed.Int26_6        { return info.lines[i].Width }
func (info *Info) LineAscent(i int) fixed.Int26_6       { return info.lines[i].Ascent }
func (info *Info) LineTotalDescent(i int) fixed.Int26_6 { return info.lines[i].TotalDescent }
func (info *Info) LineRunEnd(i int) int                 { return info.lines[i].VisualRunsEndIndex }

// lineRunRange returns [start, end) into info.runs for line i.
func (info *Info) lineRunRange(i int) (start, end int) {
	if i == 0 {
		return 0, info.lines[0].VisualRunsEndIndex
	}
	return info.lines[i-1].VisualRunsEndIndex, info.lines[i].VisualRunsEndIndex
}

// LineStartPos returns the byte offset of the first char in line i.
func (info *Info) LineStartPos(i int) int {
	start, end := info.lineRunRange(i)
	if start == end {
		return 0
	}
	return info.runs[start].CharStart
}

// LineEndPos returns the byte offset one past the last char in line i,
// including the trailing separator bytes owned by its highest run.
func (info *Info) LineEndPos(i int) int {
	_, end := info.lineRunRange(i)
	r := info.runs[end-1]
	return r.CharEnd + r.CharEndOffset
}

func (info *Info) RunFont(i int) ffont.SingleScriptFont { return info.runs[i].Font }
func (info *Info) RunCharStart(i int) int               { return info.runs[i].CharStart }
func (info *Info) RunCharEnd(i int) int                 { return info.runs[i].CharEnd }
func (info *Info) RunRTL(i int) bool                    { return info.runs[i].RightToLeft }

func (info *Info) runGlyphRange(i int) (start, end int) {
	if i == 0 {
		return 0, info.runs[0].GlyphEndIndex
	}
	return info.runs[i-1].GlyphEndIndex, info.runs[i].GlyphEndIndex
}

func (info *Info) RunGlyphCount(i int) int {
	s, e := info.runGlyphRange(i)
	return e - s
}

// RunPositions returns the glyph_count(i)+1 position entries for run i,
// the trailing one being the sentinel pen position after the run's last
// glyph.
func (info *Info) RunPositions(i int) []fixed.Point26_6 {
	s, e := info.runGlyphRange(i)
	first := info.firstPositionIndex(i, s)
	return info.glyphPositions[first : first+(e-s)+1]
}

// firstPositionIndex accounts for the +1 sentinel stored per run: run r's
// positions start at the sum of (count+1) over every prior run, which is
// glyphStart + i.
func (info *Info) firstPositionIndex(i, glyphStart int) int {
	return glyphStart + i
}

func (info *Info) RunGlyphs(i int) []gofont.GID {
	s, e := info.runGlyphRange(i)
	return info.glyphs[s:e]
}

func (info *Info) RunCharIndices(i int) []int {
	s, e := info.runGlyphRange(i)
	return info.charIndices[s:e]
}
