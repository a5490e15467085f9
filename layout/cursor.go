package layout

import (
	"sort"

	"golang.org/x/image/math/fixed"
)

// Affinity resolves which of two adjacent visual runs a cursor sitting
// exactly at their shared boundary belongs to, per §4.E's affinity rules.
type Affinity int

const (
	AffinityDefault Affinity = iota
	AffinityOpposite
)

// Cursor is a byte position plus the affinity bit that disambiguates it at
// a visual-run boundary.
type Cursor struct {
	Position int
	Affinity Affinity
}

// GraphemeIterator is the external grapheme-cluster collaborator of §6,
// used to resolve a pixel position to a cursor within a multi-byte glyph
// cluster (a ligature, or a single glyph spanning several combining runes).
type GraphemeIterator interface {
	// Boundaries returns the grapheme-cluster boundary byte offsets within
	// [start, end], ascending, including both start and end.
	Boundaries(text string, start, end int) []int
}

// lineOf returns the index of the line containing byte position pos, via
// binary search over each line's monotone LineEndPos.
func (info *Info) lineOf(pos int) int {
	n := len(info.lines)
	i := sort.Search(n, func(i int) bool { return info.LineEndPos(i) > pos })
	if i >= n {
		return n - 1
	}
	return i
}

// lineTop returns the y offset of the top of line i, relative to the text
// block's top (before TextStartY is added).
func (info *Info) lineTop(i int) fixed.Int26_6 {
	if i == 0 {
		return 0
	}
	return info.lines[i-1].TotalDescent
}

// LineHeight is TotalDescent(i) minus the top of line i.
func (info *Info) LineHeight(i int) fixed.Int26_6 {
	return info.lines[i].TotalDescent - info.lineTop(i)
}

// GetRunContainingCursor implements §4.E's get_run_containing_cursor: the
// line containing cursor.Position, and the run therein selected by the
// affinity rules at a boundary.
func (info *Info) GetRunContainingCursor(cursor Cursor) (runIndex, lineNumber int) {
	lineNumber = info.lineOf(cursor.Position)
	// At a soft line break, OPPOSITE affinity keeps the cursor at the end
	// of the previous line instead of the start of the line lineOf found.
	if cursor.Affinity == AffinityOpposite && lineNumber > 0 && info.LineEndPos(lineNumber-1) == cursor.Position {
		pStart, pEnd := info.lineRunRange(lineNumber - 1)
		for r := pStart; r < pEnd; r++ {
			if info.runs[r].CharEnd == cursor.Position && info.runs[r].CharEndOffset == 0 {
				return r, lineNumber - 1
			}
		}
	}
	start, end := info.lineRunRange(lineNumber)
	if start == end {
		return start, lineNumber
	}

	i := sort.Search(end-start, func(i int) bool {
		return info.runs[start+i].CharEnd+info.runs[start+i].CharEndOffset > cursor.Position
	}) + start
	if i >= end {
		i = end - 1
	}

	// i is the first run whose end exceeds the cursor. If the cursor sits
	// exactly at i's start and a previous run in the same line ends there
	// too, apply the affinity rules to choose between them.
	if i > start && info.runs[i].CharStart == cursor.Position {
		prev, next := info.runs[i-1], info.runs[i]
		atLineBreak := lineNumber < info.LineCount()-1 && info.LineEndPos(lineNumber) == cursor.Position
		if preferPrev(prev.RightToLeft, next.RightToLeft, atLineBreak, cursor.Affinity) {
			return i - 1, lineNumber
		}
	}
	return i, lineNumber
}

// preferPrev implements the four affinity rules of §4.E.
func preferPrev(prevRTL, nextRTL, atLineBreak bool, a Affinity) bool {
	switch {
	case atLineBreak && a == AffinityOpposite:
		return true
	case !atLineBreak && prevRTL && !nextRTL && a == AffinityDefault:
		return true
	case !atLineBreak && !prevRTL && nextRTL && a == AffinityOpposite:
		return true
	default:
		return false
	}
}

// clusterRange locates the glyph cluster in run runIdx containing byte
// position pos: the glyph index plus the cluster's [start, end) byte span.
// Run glyphs are stored in ascending char-index order internally; visual
// emission reverses that order for RTL runs, so a run's CharIndices are
// descending for RTL and the search below branches on direction.
func (info *Info) clusterRange(runIdx, pos int) (glyphIdx, clusterStart, clusterEnd int) {
	indices := info.RunCharIndices(runIdx)
	run := info.runs[runIdx]

	// indices is ascending for an LTR run, descending for an RTL run.
	if run.RightToLeft {
		glyphIdx = sort.Search(len(indices), func(i int) bool { return indices[i] <= pos })
	} else {
		glyphIdx = sort.Search(len(indices), func(i int) bool { return indices[i] > pos }) - 1
	}
	if glyphIdx < 0 {
		glyphIdx = 0
	}
	if glyphIdx >= len(indices) {
		glyphIdx = len(indices) - 1
	}
	clusterStart = indices[glyphIdx]

	next := glyphIdx + 1
	if run.RightToLeft {
		if next < len(indices) {
			clusterEnd = indices[next]
		} else {
			clusterEnd = run.CharStart
		}
		clusterStart, clusterEnd = clusterEnd, clusterStart
	} else {
		if next < len(indices) {
			clusterEnd = indices[next]
		} else {
			clusterEnd = run.CharEnd
		}
	}
	return glyphIdx, clusterStart, clusterEnd
}

// glyphOffsetLTR and glyphOffsetRTL linearly interpolate the pixel x of
// byte pos within a k-byte cluster spanning [clusterStart, clusterEnd) in the pen,
// per §4.E's "(P - cluster_start) / k" rule. Both read the same two
// positions; they're kept distinct to mirror the teacher's symmetric
// ascent/descent-style accessor pairs.
func glyphOffsetLTR(pos, clusterStart, clusterEnd int, xStart, xEnd fixed.Int26_6) fixed.Int26_6 {
	k := clusterEnd - clusterStart
	if k <= 0 {
		return xStart
	}
	frac := float64(pos-clusterStart) / float64(k)
	return xStart + fixed.Int26_6(float64(xEnd-xStart)*frac)
}

func glyphOffsetRTL(pos, clusterStart, clusterEnd int, xStart, xEnd fixed.Int26_6) fixed.Int26_6 {
	return glyphOffsetLTR(pos, clusterStart, clusterEnd, xStart, xEnd)
}

// CalcCursorPixelPos implements §4.E's calc_cursor_pixel_pos: the on-screen
// position of cursor, the active line's height, and its index.
func (info *Info) CalcCursorPixelPos(params Params, cursor Cursor) (x, y, lineHeight fixed.Int26_6, lineNumber int) {
	runIdx, lineNumber := info.GetRunContainingCursor(cursor)
	lineHeight = info.LineHeight(lineNumber)
	y = info.TextStartY() + info.lineTop(lineNumber)

	start, end := info.lineRunRange(lineNumber)
	if start == end {
		return xAlignOffset(params, info.LineWidth(lineNumber)), y, lineHeight, lineNumber
	}

	run := info.runs[runIdx]
	positions := info.RunPositions(runIdx)
	glyphIdx, clusterStart, clusterEnd := info.clusterRange(runIdx, cursor.Position)

	xStart, xEnd := positions[glyphIdx].X, positions[glyphIdx+1].X
	var runX fixed.Int26_6
	if run.RightToLeft {
		runX = glyphOffsetRTL(cursor.Position, clusterStart, clusterEnd, xStart, xEnd)
	} else {
		runX = glyphOffsetLTR(cursor.Position, clusterStart, clusterEnd, xStart, xEnd)
	}
	x = xAlignOffset(params, info.LineWidth(lineNumber)) + runX
	return x, y, lineHeight, lineNumber
}

func xAlignOffset(params Params, lineWidth fixed.Int26_6) fixed.Int26_6 {
	switch params.XAlign {
	case AlignCenter:
		return (params.TextAreaWidth - lineWidth) / 2
	case AlignEnd:
		return params.TextAreaWidth - lineWidth
	default:
		return 0
	}
}

// FindClosestCursorPosition implements §4.E's find_closest_cursor_position:
// given a line and an x pixel coordinate, locate the run by binary search
// on run sentinel positions, the glyph cluster by binary search on glyph
// positions, then resolve within the cluster via grapheme boundaries.
func (info *Info) FindClosestCursorPosition(params Params, text string, grapheme GraphemeIterator,
	lineNumber int, x fixed.Int26_6) Cursor {

	start, end := info.lineRunRange(lineNumber)
	if start == end {
		return Cursor{Position: info.LineStartPos(lineNumber)}
	}
	localX := x - xAlignOffset(params, info.LineWidth(lineNumber))

	runIdx := sort.Search(end-start, func(i int) bool {
		positions := info.RunPositions(start + i)
		return positions[len(positions)-1].X >= localX
	}) + start
	if runIdx >= end {
		runIdx = end - 1
	}

	run := info.runs[runIdx]
	positions := info.RunPositions(runIdx)
	g := sort.Search(len(positions)-1, func(i int) bool { return positions[i+1].X >= localX })
	if g >= len(positions)-1 {
		g = len(positions) - 2
	}
	if g < 0 {
		g = 0
	}

	indices := info.RunCharIndices(runIdx)
	clusterStart, clusterEnd := indices[g], run.CharEnd
	if run.RightToLeft {
		clusterEnd = run.CharStart
		if g+1 < len(indices) {
			clusterEnd = indices[g+1]
		}
		clusterStart, clusterEnd = clusterEnd, indices[g]
	} else if g+1 < len(indices) {
		clusterEnd = indices[g+1]
	}

	boundaries := grapheme.Boundaries(text, clusterStart, clusterEnd)
	pos := clusterStart
	if len(boundaries) > 0 {
		xStart, xEnd := positions[g].X, positions[g+1].X
		best := boundaries[0]
		bestDist := fixed.Int26_6(1 << 30)
		for _, b := range boundaries {
			bx := glyphOffsetLTR(b, clusterStart, clusterEnd, xStart, xEnd)
			d := bx - localX
			if d < 0 {
				d = -d
			}
			if d < bestDist {
				bestDist = d
				best = b
			}
		}
		pos = best
	}

	affinity := AffinityDefault
	if runIdx+1 < end && pos == run.CharEnd {
		next := info.runs[runIdx+1]
		atLineBreak := false
		if preferPrev(run.RightToLeft, next.RightToLeft, atLineBreak, AffinityDefault) !=
			preferPrev(run.RightToLeft, next.RightToLeft, atLineBreak, AffinityOpposite) {
			affinity = AffinityOpposite
		}
	}
	return Cursor{Position: pos, Affinity: affinity}
}
