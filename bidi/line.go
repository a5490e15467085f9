package bidi

// Line is a sub-range of a Paragraph produced by line breaking (§4.D.2
// step 3 runs this once per visual line). It owns a line-local copy of
// levels so that L1 rule 4 (trailing whitespace reset) can be applied
// without disturbing the paragraph's own levels, per §4.C.2 Stage 6's
// split between paragraph-level and line-level whitespace handling.
type Line struct {
	text      string
	start     int
	limit     int
	paraLevel Level

	levels    []Level
	levelRuns []levelRun
	runs      []VisualRun

	// lrmPositions holds the absolute byte positions (from p.lrmInsertions)
	// that fall within this line, for InsertLRMForNumeric materialization.
	lrmPositions []int
}

// SetLine derives the visual-run decomposition of the [start, limit) byte
// range of p. start and limit must be rune boundaries within [0, p.GetLength()].
func (p *Paragraph) SetLine(start, limit int) (*Line, error) {
	if start < 0 || limit > len(p.text) || start > limit {
		return nil, illegalArg("line range [%d, %d) out of bounds", start, limit)
	}
	if start < len(p.dp.runeStart) && !p.dp.runeStart[start] {
		return nil, illegalArg("line start %d is not a rune boundary", start)
	}
	if limit < len(p.dp.runeStart) && !p.dp.runeStart[limit] {
		return nil, illegalArg("line limit %d is not a rune boundary", limit)
	}

	// absLevels mirrors the paragraph's absolute byte indexing (required by
	// computeLevelRuns/applyLineTrailingWhitespace) over just this line's
	// range; bytes outside [start, limit) are left zeroed and never read.
	absLevels := make([]Level, limit)
	copy(absLevels[start:], p.levels[start:limit])
	applyLineTrailingWhitespace(p.dp, absLevels, start, limit, p.paraLevel)

	l := &Line{
		text:      p.text,
		start:     start,
		limit:     limit,
		paraLevel: p.paraLevel,
		levels:    append([]Level(nil), absLevels[start:limit]...),
	}
	l.levelRuns = computeLevelRuns(p.dp, absLevels, start, limit)
	l.runs = computeVisualOrder(l.levelRuns)
	for _, pos := range p.lrmInsertions {
		if pos >= start && pos < limit {
			l.lrmPositions = append(l.lrmPositions, pos)
		}
	}
	return l, nil
}

// hasLRMBefore reports whether abs (an absolute byte position) is one of
// the line's recorded inverse-mode LRM insertion points.
func (l *Line) hasLRMBefore(abs int) bool {
	for _, pos := range l.lrmPositions {
		if pos == abs {
			return true
		}
	}
	return false
}

// GetLength returns the line's byte length.
func (l *Line) GetLength() int { return l.limit - l.start }

// CountRuns returns the number of visual runs in this line.
func (l *Line) CountRuns() int { return len(l.runs) }

// GetVisualRun returns the i'th visual run in display order, as byte
// offsets relative to the line's own start.
func (l *Line) GetVisualRun(i int) (start, length int, rtl bool) {
	r := l.runs[i]
	return r.Start - l.start, r.Length, r.RTL
}

// GetLevelAt returns the resolved level at a line-relative byte offset.
func (l *Line) GetLevelAt(offset int) Level {
	if offset < 0 || offset >= len(l.levels) {
		return l.paraLevel
	}
	return l.levels[offset]
}
