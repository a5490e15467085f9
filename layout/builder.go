// Package layout implements components D and E of the layout core: the
// Builder that drives font selection, shaping, line breaking and visual-run
// emission for one text+attribute bundle, and the Info query/cursor surface
// it produces.
package layout

import (
	"sort"
	"unicode"
	"unicode/utf8"

	"golang.org/x/image/math/fixed"

	gofont "github.com/go-text/typesetting/font"

	"github.com/forenoonwatch/richtext/bidi"
	ffont "github.com/forenoonwatch/richtext/font"
	"github.com/forenoonwatch/richtext/internal/uax24"
	"github.com/forenoonwatch/richtext/linebreak"
	"github.com/forenoonwatch/richtext/runs"
	"github.com/forenoonwatch/richtext/shaping"
)

// EventKind classifies one Builder diagnostic, per SPEC_FULL.md §11's
// "plain callback, no hidden global logger" ambient logging shape.
type EventKind int

const (
	ShaperFailure EventKind = iota
	RegistryUnavailable
)

// Event is reported to Builder.OnEvent when set.
type Event struct {
	Kind EventKind
	Msg  string
	Pos  int // byte offset in the source text, where applicable
}

// Stats accumulates glyph/run/line counts over every Build call made with
// the Builder (Build does not reset it), supplementing the distilled spec
// per SPEC_FULL.md §13 (grounded on the original's debug counters).
// CacheHits and CacheMisses are never incremented: the Builder keeps no
// shaping cache.
type Stats struct {
	Glyphs      int
	LogicalRuns int
	VisualRuns  int
	Lines       int
	CacheHits   int
	CacheMisses int
}

// Builder drives the pipeline of §4.D.2 for one text+attribute bundle. Its
// scratch buffers are reset at the start of each paragraph and reused
// across Build calls, per §3's "Ownership and lifetime".
type Builder struct {
	Registry ffont.Registry
	Shaper   shaping.Shaper

	// NewLineBreaker constructs the line-break collaborator for one text
	// buffer. Defaults to linebreak.NewUAX14Iterator if nil.
	NewLineBreaker func(text string) linebreak.Iterator

	OnEvent func(Event)

	Stats Stats

	// scratch, reused per paragraph.
	glyphs      []gofont.GID
	charIndices []int
	widths      []fixed.Int26_6
	crossPos    []fixed.Int26_6
	logical     []logicalRun
}

// logicalRun is one builder-internal maximal run sharing a SingleScriptFont,
// per §3's "Logical run".
type logicalRun struct {
	font          ffont.SingleScriptFont
	level         bidi.Level
	charStart     int // paragraph-local byte offset
	charEnd       int // exclusive
	glyphStart    int // index into builder.glyphs/charIndices
	glyphEnd      int // exclusive
	ascent        fixed.Int26_6
	descent       fixed.Int26_6
}

func (b *Builder) emit(e Event) {
	if b.OnEvent != nil {
		b.OnEvent(e)
	}
}

func (b *Builder) lineBreaker(text string) linebreak.Iterator {
	if b.NewLineBreaker != nil {
		return b.NewLineBreaker(text)
	}
	return linebreak.NewUAX14Iterator(text)
}

// Build runs the full pipeline over text under the given attribute runs and
// Params, producing an immutable Info. fonts must cover [0, len(text)).
// smallcaps/subscript/superscript may be nil, meaning uniformly false.
func (b *Builder) Build(text string, fonts *runs.ValueRuns[ffont.Font],
	smallcaps, subscript, superscript *runs.ValueRuns[bool], params Params) *Info {

	info := &Info{}
	var totalDescent fixed.Int26_6

	pos := 0
	for pos < len(text) {
		pStart, pLimit, sepLen := b.nextParagraph(text, pos)
		b.buildParagraph(text, pStart, pLimit, sepLen, fonts, smallcaps, subscript, superscript, params, info, &totalDescent)
		pos = pLimit
	}
	if len(text) == 0 {
		b.buildParagraph(text, 0, 0, 0, fonts, smallcaps, subscript, superscript, params, info, &totalDescent)
	}

	info.textStartY = params.YAlign.factor().Mul(params.TextAreaHeight-totalDescent) / 2
	return info
}

// nextParagraph scans text for the next paragraph separator starting at
// pos (P1), returning [start, limit) and the separator's byte length
// (0 for the final, unterminated paragraph).
func (b *Builder) nextParagraph(text string, pos int) (start, limit, sepLen int) {
	start = pos
	for i := pos; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if isParaSep(r) {
			sep := size
			if r == '\r' && i+size < len(text) {
				if r2, size2 := utf8.DecodeRuneInString(text[i+size:]); r2 == '\n' {
					sep += size2
				}
			}
			return start, i + sep, sep
		}
		i += size
	}
	return start, len(text), 0
}

func isParaSep(r rune) bool {
	switch r {
	case '\n', '\r', '\u001c', '\u2028', '\u2029':
		return true
	default:
		return false
	}
}

func (b *Builder) buildParagraph(text string, pStart, pLimit, sepLen int,
	fonts *runs.ValueRuns[ffont.Font], smallcaps, subscript, superscript *runs.ValueRuns[bool],
	params Params, info *Info, totalDescent *fixed.Int26_6) {

	b.glyphs = b.glyphs[:0]
	b.charIndices = b.charIndices[:0]
	b.widths = b.widths[:0]
	b.crossPos = b.crossPos[:0]
	b.logical = b.logical[:0]

	paraText := text[pStart:pLimit]

	baseLevel := bidi.DefaultLTR
	if params.RightToLeft {
		baseLevel = bidi.DefaultRTL
	}
	para := bidi.NewParagraph()
	if err := para.SetParagraph(paraText, baseLevel, nil); err != nil {
		b.emit(Event{Kind: ShaperFailure, Msg: err.Error(), Pos: pStart})
	}

	if len(paraText) == sepLen {
		b.emitEmptyParagraph(pStart, sepLen, fonts, info, totalDescent)
		return
	}

	levelRuns := levelValueRuns(para, len(paraText))
	scriptRuns := scriptValueRuns(paraText)
	fontSub := runs.New[ffont.Font](4)
	if fonts != nil {
		fonts.GetSubset(pStart, pLimit-pStart, fontSub)
	} else {
		fontSub.Add(pLimit-pStart, ffont.Font{})
	}

	mi := runs.NewMultiIterator(len(paraText))
	runs.AddSource(mi, fontSub, ffont.Font{})
	runs.AddSource(mi, scriptRuns, uax24.Common)
	runs.AddSource(mi, levelRuns, bidi.Level(0))
	runs.AddSource(mi, smallcapsSubset(smallcaps, pStart, len(paraText)), false)
	runs.AddSource(mi, subscriptSubset(subscript, pStart, len(paraText)), false)
	runs.AddSource(mi, superscriptSubset(superscript, pStart, len(paraText)), false)

	segStart := 0
	for {
		segLimit, ok := mi.Next()
		if !ok {
			break
		}
		baseFont := runs.Value[ffont.Font](mi, 0)
		script := runs.Value[uax24.Script](mi, 1)
		level := runs.Value[bidi.Level](mi, 2)
		sc := runs.Value[bool](mi, 3)
		sub := runs.Value[bool](mi, 4)
		sup := runs.Value[bool](mi, 5)

		off := segStart
		for off < segLimit {
			ssf, err := b.Registry.GetSubFont(baseFont, paraText, &off, segLimit, script, sc, sub, sup)
			if err != nil {
				b.emit(Event{Kind: RegistryUnavailable, Msg: err.Error(), Pos: pStart + off})
				ssf = ffont.SingleScriptFont{Font: baseFont}
				off = segLimit
			}
			b.appendOrCoalesceLogicalRun(ssf, level, segStart, off)
			segStart = off
		}
		segStart = segLimit
	}

	for i := range b.logical {
		b.shapeLogicalRun(paraText, &b.logical[i])
	}
	b.Stats.LogicalRuns += len(b.logical)

	b.emitLines(text, pStart, pLimit, sepLen, para, params, info, totalDescent)
}

func (b *Builder) appendOrCoalesceLogicalRun(ssf ffont.SingleScriptFont, level bidi.Level, start, end int) {
	if end <= start {
		return
	}
	if n := len(b.logical); n > 0 && sameFont(b.logical[n-1].font, ssf) && b.logical[n-1].level == level && b.logical[n-1].charEnd == start {
		b.logical[n-1].charEnd = end
		return
	}
	b.logical = append(b.logical, logicalRun{font: ssf, level: level, charStart: start, charEnd: end})
}

func sameFont(a, b ffont.SingleScriptFont) bool {
	return a.Font == b.Font && a.Face == b.Face &&
		a.SyntheticSmallCaps == b.SyntheticSmallCaps &&
		a.SyntheticSubscript == b.SyntheticSubscript &&
		a.SyntheticSuperscript == b.SyntheticSuperscript
}

// Synthesis ratios for the features no face in this run natively supports
// (§4.D.2 step 2): small-caps shrinks the caps substituted for lowercase
// letters, sub/superscript shrink the whole run and shift it off the
// baseline. Approximations of real font-designed variants, not a
// substitute for a face's own smcp/subs/sups glyphs.
const (
	smallCapsScaleNum, smallCapsScaleDen         = 7, 10
	synthScriptScaleNum, synthScriptScaleDen     = 2, 3
	synthBaselineShiftNum, synthBaselineShiftDen = 1, 3
)

func scaleFixed(v fixed.Int26_6, num, den int) fixed.Int26_6 {
	return fixed.Int26_6(int64(v) * int64(num) / int64(den))
}

// shapeLogicalRun shapes one logical run and appends its glyphs into the
// builder's scratch arrays in logical (source-byte monotone) order, per
// §4.D.2 step 2. A run whose font carries SyntheticSmallCaps/Subscript/
// Superscript (because the registry found no face-native support) has that
// feature's effect approximated here instead: small-caps uppercases the
// run's text before shaping and shrinks the glyphs substituted for
// originally-lowercase runes; subscript/superscript shrink every glyph in
// the run and shift it off the baseline.
func (b *Builder) shapeLogicalRun(paraText string, lr *logicalRun) {
	sub := paraText[lr.charStart:lr.charEnd]
	runeText := []rune(sub)

	var wasLower []bool
	if lr.font.SyntheticSmallCaps {
		wasLower = make([]bool, len(runeText))
		for i, r := range runeText {
			if up := unicode.ToUpper(r); up != r {
				wasLower[i] = true
				runeText[i] = up
			}
		}
	}

	rtl := lr.level&1 != 0
	dir := shaping.LTR
	if rtl {
		dir = shaping.RTL
	}

	var face gofont.Face
	if lr.font.Face != nil {
		face = lr.font.Face.Face()
	}
	in := shaping.Input{
		Face:      face,
		Text:      runeText,
		RunStart:  0,
		RunEnd:    len(runeText),
		Direction: dir,
	}
	out := b.Shaper.Shape(in)
	if len(out.Glyphs) == 0 {
		b.emit(Event{Kind: ShaperFailure, Msg: "empty shaper output", Pos: lr.charStart})
	}

	var baselineShift fixed.Int26_6
	switch {
	case lr.font.SyntheticSuperscript:
		baselineShift = scaleFixed(out.Ascent, synthBaselineShiftNum, synthBaselineShiftDen)
	case lr.font.SyntheticSubscript:
		baselineShift = scaleFixed(out.Descent, synthBaselineShiftNum, synthBaselineShiftDen)
	}

	lr.glyphStart = len(b.glyphs)
	lr.ascent = out.Ascent
	lr.descent = out.Descent
	if lr.font.SyntheticSuperscript {
		lr.ascent += baselineShift
	} else if lr.font.SyntheticSubscript {
		lr.descent += baselineShift
	}

	glyphs := out.Glyphs
	if rtl {
		glyphs = reverseGlyphs(glyphs)
	}

	runeByteOffsets := byteOffsetsOf(sub)
	for _, g := range glyphs {
		byteOff := lr.charStart
		if g.ClusterIndex < len(runeByteOffsets) {
			byteOff = lr.charStart + runeByteOffsets[g.ClusterIndex]
		}

		xAdvance, yOffset := g.XAdvance, g.YOffset
		switch {
		case lr.font.SyntheticSubscript || lr.font.SyntheticSuperscript:
			xAdvance = scaleFixed(xAdvance, synthScriptScaleNum, synthScriptScaleDen)
			yOffset = scaleFixed(yOffset, synthScriptScaleNum, synthScriptScaleDen) + baselineShift
		case lr.font.SyntheticSmallCaps && g.ClusterIndex < len(wasLower) && wasLower[g.ClusterIndex]:
			xAdvance = scaleFixed(xAdvance, smallCapsScaleNum, smallCapsScaleDen)
			yOffset = scaleFixed(yOffset, smallCapsScaleNum, smallCapsScaleDen)
		}

		b.glyphs = append(b.glyphs, g.ID)
		b.charIndices = append(b.charIndices, byteOff)
		b.widths = append(b.widths, xAdvance)
		b.crossPos = append(b.crossPos, yOffset)
	}
	lr.glyphEnd = len(b.glyphs)
}

func reverseGlyphs(gs []shaping.Glyph) []shaping.Glyph {
	out := make([]shaping.Glyph, len(gs))
	for i, g := range gs {
		out[len(gs)-1-i] = g
	}
	return out
}

// byteOffsetsOf returns, for each rune index in s, its byte offset, plus a
// trailing entry equal to len(s) so a cluster index at the very end of s is
// still in bounds.
func byteOffsetsOf(s string) []int {
	offs := make([]int, 0, len(s)+1)
	for i := range s {
		offs = append(offs, i)
	}
	offs = append(offs, len(s))
	return offs
}

func levelValueRuns(para *bidi.Paragraph, length int) *runs.ValueRuns[bidi.Level] {
	out := runs.New[bidi.Level](4)
	if length == 0 {
		out.Add(0, 0)
		return out
	}
	cur := para.GetLevelAt(0)
	for i := 1; i < length; i++ {
		lvl := para.GetLevelAt(i)
		if lvl != cur {
			out.Add(i, cur)
			cur = lvl
		}
	}
	out.Add(length, cur)
	return out
}

func scriptValueRuns(text string) *runs.ValueRuns[uax24.Script] {
	out := runs.New[uax24.Script](4)
	it := uax24.NewIterator(text)
	for {
		_, limit, script, ok := it.Next()
		if !ok {
			break
		}
		out.Add(limit, script)
	}
	if out.Len() == 0 {
		out.Add(len(text), uax24.Common)
	}
	return out
}

func smallcapsSubset(v *runs.ValueRuns[bool], pStart, length int) *runs.ValueRuns[bool] {
	return boolSubset(v, pStart, length)
}
func subscriptSubset(v *runs.ValueRuns[bool], pStart, length int) *runs.ValueRuns[bool] {
	return boolSubset(v, pStart, length)
}
func superscriptSubset(v *runs.ValueRuns[bool], pStart, length int) *runs.ValueRuns[bool] {
	return boolSubset(v, pStart, length)
}

func boolSubset(v *runs.ValueRuns[bool], pStart, length int) *runs.ValueRuns[bool] {
	if v == nil {
		return nil
	}
	out := runs.New[bool](2)
	v.GetSubset(pStart, length, out)
	return out
}

// emitEmptyParagraph handles §4.D.2 step 6: a paragraph consisting solely
// of its separator produces a synthetic empty visual run and a line whose
// height comes from the paragraph's font: the ascent/descent the shaper
// reports for a space in that font's face. When the registry supplies no
// face, or there is no shaper, a fixed 12px ascent and 4px descent is used.
func (b *Builder) emitEmptyParagraph(pStart, sepLen int, fonts *runs.ValueRuns[ffont.Font], info *Info, totalDescent *fixed.Int26_6) {
	var baseFont ffont.Font
	if fonts != nil && fonts.Len() > 0 {
		baseFont = fonts.Get(pStart)
	}
	ssf := ffont.SingleScriptFont{Font: baseFont}
	if b.Registry != nil {
		off := 0
		if f, err := b.Registry.GetSubFont(baseFont, " ", &off, 1, uax24.Common, false, false, false); err == nil {
			ssf = f
		}
	}
	info.glyphPositions = append(info.glyphPositions, fixed.Point26_6{})
	info.runs = append(info.runs, VisualRun{
		Font:          ssf,
		GlyphEndIndex: len(info.glyphs),
		CharStart:     pStart,
		CharEnd:       pStart,
		CharEndOffset: sepLen,
		RightToLeft:   false,
	})
	b.Stats.VisualRuns++
	ascent := fixed.I(12)
	descent := fixed.I(-4) // negative: below the baseline
	if b.Shaper != nil && ssf.Face != nil {
		out := b.Shaper.Shape(shaping.Input{Face: ssf.Face.Face(), Text: []rune{' '}, RunEnd: 1})
		if out.Ascent != 0 || out.Descent != 0 {
			ascent, descent = out.Ascent, out.Descent
		}
	}
	*totalDescent += ascent - descent
	info.lines = append(info.lines, Line{
		VisualRunsEndIndex: len(info.runs),
		Width:              0,
		Ascent:             ascent,
		TotalDescent:       *totalDescent,
	})
	b.Stats.Lines++
}

// emitLines implements §4.D.2 steps 3-5: line breaking, visual-run
// emission per line, and line-record accumulation.
func (b *Builder) emitLines(text string, pStart, pLimit, sepLen int, para *bidi.Paragraph,
	params Params, info *Info, totalDescent *fixed.Int26_6) {

	paraLen := pLimit - pStart - sepLen
	lb := b.lineBreaker(text[pStart : pStart+paraLen])

	lineStart := 0
	for lineStart < paraLen {
		lineEnd := b.breakLine(lineStart, paraLen, params.TextAreaWidth, lb)
		b.emitLine(pStart, lineStart, lineEnd, lineEnd == paraLen, sepLen, para, params, info, totalDescent)
		lineStart = lineEnd
	}
	if paraLen == 0 {
		b.emitLine(pStart, 0, 0, true, sepLen, para, params, info, totalDescent)
	}
}

// breakLine implements §4.D.2 step 3: locate the next line's end.
func (b *Builder) breakLine(lineStart, paraLen int, areaWidth fixed.Int26_6, lb linebreak.Iterator) int {
	if areaWidth <= 0 {
		return paraLen
	}
	startGlyph := b.glyphIndexAt(lineStart)
	var w fixed.Int26_6
	g := startGlyph
	for g < len(b.charIndices) && b.charIndices[g] < paraLen {
		gw := b.widths[g]
		if w+gw > areaWidth && g > startGlyph {
			break
		}
		w += gw
		g++
	}
	if g == startGlyph && g < len(b.charIndices) {
		g++ // force one glyph to guarantee forward progress
	}
	candidateEnd := paraLen
	if g < len(b.charIndices) {
		candidateEnd = b.charIndices[g]
	}
	brk := lb.Preceding(candidateEnd)
	if brk <= lineStart {
		for g < len(b.charIndices) && b.charIndices[g] <= lineStart {
			g++
		}
		if g < len(b.charIndices) {
			return b.charIndices[g]
		}
		return paraLen
	}
	return brk
}

// glyphIndexAt returns the first glyph index whose char index is >= pos,
// via binary search over the monotone logical char_indices array.
func (b *Builder) glyphIndexAt(pos int) int {
	return sort.Search(len(b.charIndices), func(i int) bool { return b.charIndices[i] >= pos })
}

// emitLine implements §4.D.2 step 4-5 for one line: per BiDi visual
// sub-run, locate its logical-run fragment(s), emit glyphs/positions in
// visual order, then append the line record.
func (b *Builder) emitLine(pStart, lineStart, lineEnd int, isLastLine bool, sepLen int,
	para *bidi.Paragraph, params Params, info *Info, totalDescent *fixed.Int26_6) {

	line, err := para.SetLine(lineStart, lineEnd)
	if err != nil {
		b.emit(Event{Kind: ShaperFailure, Msg: err.Error(), Pos: pStart + lineStart})
		return
	}

	var lastX fixed.Int26_6
	var maxAscent, maxDescent fixed.Int26_6
	highestRunIdx, highestCharEnd := -1, -1

	for i := 0; i < line.CountRuns(); i++ {
		relStart, length, rtl := line.GetVisualRun(i)
		charStart, charEnd := lineStart+relStart, lineStart+relStart+length

		for k := range b.logical {
			// An RTL sub-run's fragments are emitted last-to-first, so the
			// logically final fragment lands leftmost.
			li := k
			if rtl {
				li = len(b.logical) - 1 - k
			}
			lr := &b.logical[li]
			fs, fe := max(lr.charStart, charStart), min(lr.charEnd, charEnd)
			if fs >= fe {
				continue
			}
			gs, ge := b.glyphRangeFor(lr, fs, fe)
			if gs >= ge {
				continue
			}
			if rtl {
				for g := ge - 1; g >= gs; g-- {
					info.glyphs = append(info.glyphs, b.glyphs[g])
					info.charIndices = append(info.charIndices, pStart+b.charIndices[g])
					info.glyphPositions = append(info.glyphPositions, fixed.Point26_6{
						X: lastX, Y: b.crossPos[g],
					})
					lastX += b.widths[g]
				}
			} else {
				for g := gs; g < ge; g++ {
					info.glyphs = append(info.glyphs, b.glyphs[g])
					info.charIndices = append(info.charIndices, pStart+b.charIndices[g])
					info.glyphPositions = append(info.glyphPositions, fixed.Point26_6{
						X: lastX, Y: b.crossPos[g],
					})
					lastX += b.widths[g]
				}
			}
			info.glyphPositions = append(info.glyphPositions, fixed.Point26_6{X: lastX})

			if lr.ascent > maxAscent {
				maxAscent = lr.ascent
			}
			// descent is negative (below the baseline); the deepest
			// descent on the line is the most negative value.
			if lr.descent < maxDescent {
				maxDescent = lr.descent
			}

			if fe > highestCharEnd {
				highestCharEnd = fe
				highestRunIdx = len(info.runs)
			}
			info.runs = append(info.runs, VisualRun{
				Font:          lr.font,
				GlyphEndIndex: len(info.glyphs),
				CharStart:     pStart + fs,
				CharEnd:       pStart + fe,
				RightToLeft:   rtl,
			})
			b.Stats.VisualRuns++
			b.Stats.Glyphs += ge - gs
		}
	}

	if isLastLine && highestRunIdx >= 0 {
		info.runs[highestRunIdx].CharEndOffset = sepLen
	}

	*totalDescent += maxAscent - maxDescent
	info.lines = append(info.lines, Line{
		VisualRunsEndIndex: len(info.runs),
		Width:              lastX,
		Ascent:             maxAscent,
		TotalDescent:       *totalDescent,
	})
	b.Stats.Lines++
}

// glyphRangeFor binary-searches lr's glyph range for the glyphs whose char
// index falls in [fs, fe), per §4.D.2 step 4's "binary-search char_indices
// within the logical-run's glyph range".
func (b *Builder) glyphRangeFor(lr *logicalRun, fs, fe int) (start, end int) {
	start = sort.Search(lr.glyphEnd-lr.glyphStart, func(i int) bool {
		return b.charIndices[lr.glyphStart+i] >= fs
	}) + lr.glyphStart
	end = sort.Search(lr.glyphEnd-lr.glyphStart, func(i int) bool {
		return b.charIndices[lr.glyphStart+i] >= fe
	}) + lr.glyphStart
	return start, end
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
