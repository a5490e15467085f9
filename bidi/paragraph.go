package bidi

// Paragraph is bound to one UTF-8 buffer and its resolved embedding
// levels. It may be reused across calls to SetParagraph, reusing its
// internal scratch arrays (§3's "Ownership and lifetime": the engine owns
// a state block and several paragraph-length internal arrays).
type Paragraph struct {
	text      string
	paraLevel Level // the resolved (never Default*) level of the *first* sub-paragraph
	subParas  []paragraphRange
	subLevels []Level // resolved base level per sub-paragraph (P1 may find several, e.g. "en\nهذا")

	dp     *dirProps
	levels []Level

	levelRuns []levelRun
	runs      []VisualRun // visual order for the whole paragraph treated as one line

	prologue, epilogue string

	mode ReorderingMode
	// lrmInsertions records, in ascending byte order, the positions at
	// which an inverse reordering mode wants an LRM materialized by
	// WriteReordered's Options.InsertLRMForNumeric (§4.C.3).
	lrmInsertions []int
}

// SetReorderingMode selects the table pair used for weak/neutral/implicit
// resolution in the next SetParagraph call, per §4.C.2 Stage 4. The default,
// zero-value mode is ModeDefault.
func (p *Paragraph) SetReorderingMode(mode ReorderingMode) {
	p.mode = mode
}

// GetReorderingMode returns the mode last selected by SetReorderingMode.
func (p *Paragraph) GetReorderingMode() ReorderingMode {
	return p.mode
}

// NewParagraph allocates a reusable Paragraph. Call SetParagraph to bind
// it to text.
func NewParagraph() *Paragraph { return &Paragraph{} }

// SetContext supplies prologue/epilogue text for sos/eos context at the
// very start/end of the bound text, per §4.C.2 Stage 4's "set_context".
// It must be called before SetParagraph and is consumed (cleared) by it.
func (p *Paragraph) SetContext(prologue, epilogue string) {
	p.prologue, p.epilogue = prologue, epilogue
}

// lastStrongClass scans text for its last strong L/R/AL character, per
// P2/P3's strong-type scan, over context text that sits just before the
// bound paragraph (SetContext's prologue). The scan runs forward and keeps
// the last strong character seen.
func lastStrongClass(text string) (class, bool) {
	if text == "" {
		return 0, false
	}
	dp := collectDirProps(text)
	found := false
	var result class
	for i := 0; i < len(text); i++ {
		if !dp.runeStart[i] {
			continue
		}
		switch dp.classes[i] {
		case classL:
			result, found = classL, true
		case classR, classAL:
			result, found = classR, true
		}
	}
	return result, found
}

// firstStrongClass scans text for its first strong L/R/AL character, per
// P2/P3, over context text that sits just after the bound paragraph
// (SetContext's epilogue).
func firstStrongClass(text string) (class, bool) {
	if text == "" {
		return 0, false
	}
	dp := collectDirProps(text)
	for i := 0; i < len(text); i++ {
		if !dp.runeStart[i] {
			continue
		}
		switch dp.classes[i] {
		case classL:
			return classL, true
		case classR, classAL:
			return classR, true
		}
	}
	return 0, false
}

// SetParagraph runs stages 1-6 of §4.C.2 over text at the requested base
// level (an explicit 0..MaxExplicitLevel level, or DefaultLTR/DefaultRTL).
// preLevels, if non-nil, supplies externally resolved levels (one entry per
// byte, matching len(text)); with them both X1-X8 explicit resolution and
// the weak/neutral/implicit resolution are skipped.
func (p *Paragraph) SetParagraph(text string, level Level, preLevels []Level) error {
	if !level.isValid() {
		return illegalArg("level %d out of range", level)
	}
	if preLevels != nil && len(preLevels) != len(text) {
		return illegalArg("preLevels length %d != text length %d", len(preLevels), len(text))
	}
	prologue, epilogue := p.prologue, p.epilogue
	p.prologue, p.epilogue = "", ""
	p.text = text
	p.subParas = splitParagraphs(text)
	p.dp = collectDirProps(text)
	p.levels = make([]Level, len(text))
	p.subLevels = make([]Level, len(p.subParas))
	p.lrmInsertions = nil

	// A SetContext prologue/epilogue only bears on sos/eos at the outer
	// edges of the whole bound text (X10), i.e. the first sub-paragraph's
	// start and the last sub-paragraph's end; interior sub-paragraph
	// boundaries already have real neighboring text to derive sos/eos from.
	var sosOverride, eosOverride *class
	if c, ok := lastStrongClass(prologue); ok {
		sosOverride = &c
	}
	if c, ok := firstStrongClass(epilogue); ok {
		eosOverride = &c
	}

	for i, sp := range p.subParas {
		resolveFSI(p.dp, sp.start, sp.limit)
		base := level
		if level == DefaultLTR || level == DefaultRTL {
			base = firstStrongDirectionLevel(p.dp, sp.start, sp.limit, level)
		}
		p.subLevels[i] = base
		if preLevels != nil {
			copy(p.levels[sp.start:sp.limit], preLevels[sp.start:sp.limit])
		} else {
			resolveExplicit(p.dp, p.levels, sp.start, sp.limit, base)
			var sos, eos *class
			if sp.start == 0 {
				sos = sosOverride
			}
			if sp.limit == len(text) {
				eos = eosOverride
			}
			resolveWeakNeutralImplicit(p.dp, p.levels, sp.start, sp.limit, base, p.mode, sos, eos, &p.lrmInsertions)
		}
		applyParagraphWhitespace(p.dp, p.levels, sp.start, sp.limit, base)
	}

	if len(p.subLevels) > 0 {
		p.paraLevel = p.subLevels[0]
	} else {
		p.paraLevel = 0
	}

	// The whole-paragraph "line" used by CountRuns/GetVisualRun etc. per
	// §4.C.1's paragraph-level query surface.
	lineLevels := append([]Level(nil), p.levels...)
	applyLineTrailingWhitespace(p.dp, lineLevels, 0, len(text), p.paraLevel)
	p.levelRuns = computeLevelRuns(p.dp, lineLevels, 0, len(text))
	p.runs = computeVisualOrder(p.levelRuns)
	return nil
}

// firstStrongDirectionLevel wraps firstStrongDirection (which returns 0/1)
// as a Level, given the caller's Default* fallback.
func firstStrongDirectionLevel(dp *dirProps, start, limit int, fallback Level) Level {
	return firstStrongDirection(dp, start, limit, fallback)
}

// GetDirection reports the overall directionality: LTR/RTL if every run
// shares the same direction, Mixed otherwise.
func (p *Paragraph) GetDirection() Direction {
	if len(p.runs) == 0 {
		if p.paraLevel.isRTL() {
			return RTL
		}
		return LTR
	}
	allLTR, allRTL := true, true
	for _, r := range p.runs {
		if r.RTL {
			allLTR = false
		} else {
			allRTL = false
		}
	}
	switch {
	case allLTR:
		return LTR
	case allRTL:
		return RTL
	default:
		return Mixed
	}
}

// GetLength returns the processed byte length.
func (p *Paragraph) GetLength() int { return len(p.text) }

// GetParaLevel returns the resolved base level of the first sub-paragraph.
func (p *Paragraph) GetParaLevel() Level { return p.paraLevel }

// GetParagraph locates the sub-paragraph (per P1) containing charIndex.
func (p *Paragraph) GetParagraph(charIndex int) (start, limit int, level Level, index int, err error) {
	if charIndex < 0 || charIndex > len(p.text) {
		return 0, 0, 0, 0, illegalArg("charIndex %d out of range", charIndex)
	}
	for i, sp := range p.subParas {
		if charIndex < sp.limit || i == len(p.subParas)-1 {
			return sp.start, sp.limit, p.subLevels[i], i, nil
		}
	}
	return 0, 0, 0, 0, illegalArg("unreachable")
}

// GetLevelAt returns the resolved level at byteIndex.
func (p *Paragraph) GetLevelAt(byteIndex int) Level {
	if byteIndex < 0 || byteIndex >= len(p.levels) {
		if len(p.levels) == 0 {
			return p.paraLevel
		}
		return p.levels[len(p.levels)-1]
	}
	return p.levels[byteIndex]
}

// GetLevels returns the full per-byte resolved level array. Callers must
// not mutate it.
func (p *Paragraph) GetLevels() []Level { return p.levels }

// CountRuns returns the number of visual runs across the whole paragraph
// treated as a single line (no line breaks applied).
func (p *Paragraph) CountRuns() int { return len(p.runs) }

// GetVisualRun returns the i'th visual run in display order.
func (p *Paragraph) GetVisualRun(i int) (logicalStart, length int, rtl bool) {
	r := p.runs[i]
	return r.Start, r.Length, r.RTL
}

// GetLogicalRun returns the limit and level of the level run starting at
// the given logical byte position.
func (p *Paragraph) GetLogicalRun(start int) (limit int, level Level) {
	for _, lr := range p.levelRuns {
		if lr.start == start {
			return lr.limit, lr.level
		}
	}
	return start, p.paraLevel
}

// GetVisualIndex maps a logical run index (an index into the paragraph's
// runs in logical order) to that run's visual run index (not a byte
// position): callers combine it with GetVisualRun/
// GetVisualMap for byte-granular mapping, matching the source's
// run-oriented getVisualIndex/getLogicalIndex pair.
func (p *Paragraph) GetVisualIndex(logicalRunIndex int) int {
	for visualPos, r := range p.runs {
		if r.Start == p.levelRuns[logicalRunIndex].start {
			return visualPos
		}
	}
	return -1
}

// GetLogicalIndex is the inverse of GetVisualIndex.
func (p *Paragraph) GetLogicalIndex(visualRunIndex int) int {
	target := p.runs[visualRunIndex].Start
	for logicalPos, lr := range p.levelRuns {
		if lr.start == target {
			return logicalPos
		}
	}
	return -1
}

// GetLogicalMap writes, for each logical run index, its position in
// visual order.
func (p *Paragraph) GetLogicalMap(out []int) {
	for i := range p.levelRuns {
		out[i] = p.GetVisualIndex(i)
	}
}

// GetVisualMap writes, for each visual position, the logical run index.
func (p *Paragraph) GetVisualMap(out []int) {
	for i := range p.runs {
		out[i] = p.GetLogicalIndex(i)
	}
}
