package layout

import (
	"testing"

	"golang.org/x/image/math/fixed"

	ffont "github.com/forenoonwatch/richtext/font"
	"github.com/forenoonwatch/richtext/internal/uax24"
	"github.com/forenoonwatch/richtext/linebreak"
	"github.com/forenoonwatch/richtext/runs"
	"github.com/forenoonwatch/richtext/shaping"
)

// stubRegistry treats an entire requested segment as covered by one
// faceless SingleScriptFont, so tests exercise the builder without a real
// font stack.
type stubRegistry struct{}

func (stubRegistry) GetSubFont(base ffont.Font, text string, offset *int, limit int,
	script uax24.Script, smallcaps, subscript, superscript bool) (ffont.SingleScriptFont, error) {
	*offset = limit
	return ffont.SingleScriptFont{Font: base}, nil
}

// syntheticRegistry reports every requested feature as unsupported by the
// face, forcing the builder's synthesis path for whichever of
// smallcaps/subscript/superscript the caller asks for.
type syntheticRegistry struct{}

func (syntheticRegistry) GetSubFont(base ffont.Font, text string, offset *int, limit int,
	script uax24.Script, smallcaps, subscript, superscript bool) (ffont.SingleScriptFont, error) {
	*offset = limit
	return ffont.SingleScriptFont{
		Font:                 base,
		SyntheticSmallCaps:   smallcaps,
		SyntheticSubscript:   subscript,
		SyntheticSuperscript: superscript,
	}, nil
}

// stubShaper advances one em per rune.
type stubShaper struct{ em fixed.Int26_6 }

func (s stubShaper) Shape(in shaping.Input) shaping.Output {
	em := s.em
	if em == 0 {
		em = fixed.I(10)
	}
	glyphs := make([]shaping.Glyph, len(in.Text))
	for i := range in.Text {
		glyphs[i] = shaping.Glyph{XAdvance: em, ClusterIndex: i, RuneCount: 1}
	}
	// Like a real shaper, report RTL glyphs in visual order.
	if in.Direction == shaping.RTL {
		for i, j := 0, len(glyphs)-1; i < j; i, j = i+1, j-1 {
			glyphs[i], glyphs[j] = glyphs[j], glyphs[i]
		}
	}
	// Descent is negative (below the baseline), matching the shaping
	// stack's own LineBounds convention.
	return shaping.Output{Glyphs: glyphs, Ascent: fixed.I(8), Descent: fixed.I(-2)}
}

// wordBreaker breaks only at spaces, via linebreak.Iterator.
type wordBreaker struct{ text string }

func (w wordBreaker) Preceding(byteIndex int) int {
	best := 0
	for i, r := range w.text {
		if i >= byteIndex {
			break
		}
		if r == ' ' {
			best = i + 1
		}
	}
	return best
}

func newTestBuilder() *Builder {
	return &Builder{Registry: stubRegistry{}, Shaper: stubShaper{}}
}

func TestBuildSingleLineLTR(t *testing.T) {
	b := newTestBuilder()
	info := b.Build("abc", nil, nil, nil, nil, Params{})

	if info.LineCount() != 1 {
		t.Fatalf("LineCount() = %d, want 1", info.LineCount())
	}
	if info.RunCount() != 1 {
		t.Fatalf("RunCount() = %d, want 1", info.RunCount())
	}
	if info.RunCharStart(0) != 0 || info.RunCharEnd(0) != 3 {
		t.Fatalf("run span = [%d,%d), want [0,3)", info.RunCharStart(0), info.RunCharEnd(0))
	}
	if info.RunRTL(0) {
		t.Fatal("expected LTR run")
	}
	if info.RunGlyphCount(0) != 3 {
		t.Fatalf("RunGlyphCount() = %d, want 3", info.RunGlyphCount(0))
	}
	wantWidth := fixed.I(30)
	if info.LineWidth(0) != wantWidth {
		t.Fatalf("LineWidth() = %v, want %v", info.LineWidth(0), wantWidth)
	}
}

func TestBuildTwoParagraphs(t *testing.T) {
	b := newTestBuilder()
	info := b.Build("abc\nde", nil, nil, nil, nil, Params{})

	if info.LineCount() != 2 {
		t.Fatalf("LineCount() = %d, want 2", info.LineCount())
	}
	if info.LineStartPos(0) != 0 || info.LineEndPos(0) != 4 {
		t.Fatalf("line 0 span = [%d,%d), want [0,4)", info.LineStartPos(0), info.LineEndPos(0))
	}
	if info.LineStartPos(1) != 4 || info.LineEndPos(1) != 6 {
		t.Fatalf("line 1 span = [%d,%d), want [4,6)", info.LineStartPos(1), info.LineEndPos(1))
	}
	if info.lines[0].TotalDescent >= info.lines[1].TotalDescent {
		t.Fatal("total_descent must be monotone non-decreasing across lines")
	}
}

func TestBuildEmptyParagraph(t *testing.T) {
	b := newTestBuilder()
	info := b.Build("\n", nil, nil, nil, nil, Params{})

	if info.LineCount() != 1 {
		t.Fatalf("LineCount() = %d, want 1 (a lone separator is one empty paragraph)", info.LineCount())
	}
	if info.RunCharStart(0) != info.RunCharEnd(0) {
		t.Fatal("empty paragraph's synthetic run must have char_start == char_end")
	}
}

func TestBuildEmptyParagraphAfterNonEmptyOne(t *testing.T) {
	b := newTestBuilder()
	// The second paragraph is empty at a nonzero pStart: a regression guard
	// for the builder's synthetic-font lookup, which must index the single
	// placeholder string it passes the registry, not the source text.
	info := b.Build("a\n\nb", nil, nil, nil, nil, Params{})

	if info.LineCount() != 3 {
		t.Fatalf("LineCount() = %d, want 3", info.LineCount())
	}
	// The middle line's synthetic run has no content, but its span still
	// owns the paragraph's own separator byte, so line spans stay
	// contiguous across the whole text with no gap.
	if info.RunCharStart(1) != info.RunCharEnd(1) {
		t.Fatalf("middle line's synthetic run span = [%d,%d), want an empty span", info.RunCharStart(1), info.RunCharEnd(1))
	}
	if info.LineEndPos(1) != info.LineStartPos(2) {
		t.Fatalf("LineEndPos(1) = %d, LineStartPos(2) = %d, want them equal (contiguous lines)", info.LineEndPos(1), info.LineStartPos(2))
	}
}

func TestBuildWrapsAtWordBoundary(t *testing.T) {
	b := &Builder{
		Registry:       stubRegistry{},
		Shaper:         stubShaper{},
		NewLineBreaker: func(text string) linebreak.Iterator { return wordBreaker{text: text} },
	}
	// Each glyph is 1em == fixed.I(10) wide; a width of 35px fits "abc de"
	// (6 chars = 60px) only up to the first word, forcing a wrap before "de".
	info := b.Build("abc de fg", nil, nil, nil, nil, Params{TextAreaWidth: fixed.I(35)})

	if info.LineCount() < 2 {
		t.Fatalf("LineCount() = %d, want >= 2 under a narrow text area", info.LineCount())
	}
	if info.LineEndPos(0) > 4 {
		t.Fatalf("first line should break at or before \"abc \", got end=%d", info.LineEndPos(0))
	}
}

func TestBuildRTLReversesVisualOrder(t *testing.T) {
	b := newTestBuilder()
	// Hebrew text: strong R, so the paragraph resolves RTL with no base
	// level override.
	info := b.Build("אבג", nil, nil, nil, nil, Params{})

	if info.RunCount() != 1 {
		t.Fatalf("RunCount() = %d, want 1", info.RunCount())
	}
	if !info.RunRTL(0) {
		t.Fatal("expected an RTL run for Hebrew text")
	}
	indices := info.RunCharIndices(0)
	for i := 1; i < len(indices); i++ {
		if indices[i] >= indices[i-1] {
			t.Fatalf("RTL run char indices must descend visually: %v", indices)
		}
	}
}

func TestCalcCursorPixelPosLTR(t *testing.T) {
	b := newTestBuilder()
	info := b.Build("abc", nil, nil, nil, nil, Params{})

	params := Params{TextAreaWidth: fixed.I(1000)}
	x, _, _, line := info.CalcCursorPixelPos(params, Cursor{Position: 2})
	if line != 0 {
		t.Fatalf("line = %d, want 0", line)
	}
	wantX := fixed.I(20)
	if x != wantX {
		t.Fatalf("x = %v, want %v", x, wantX)
	}
}

func TestGetRunContainingCursorAffinity(t *testing.T) {
	b := newTestBuilder()
	info := b.Build("ab\ncd", nil, nil, nil, nil, Params{})

	runIdx, line := info.GetRunContainingCursor(Cursor{Position: 2, Affinity: AffinityOpposite})
	if line != 0 {
		t.Fatalf("line = %d, want 0 (affinity OPPOSITE prefers the line's own run at a line break)", line)
	}
	if info.RunCharEnd(runIdx) != 2 {
		t.Fatalf("run char_end = %d, want 2", info.RunCharEnd(runIdx))
	}
}

func boolRunWhole(length int, v bool) *runs.ValueRuns[bool] {
	r := runs.New[bool](1)
	r.Add(length, v)
	return r
}

func TestBuildSyntheticSmallCapsShrinksOriginallyLowercaseGlyphs(t *testing.T) {
	b := &Builder{Registry: syntheticRegistry{}, Shaper: stubShaper{em: fixed.I(10)}}
	info := b.Build("ab", nil, boolRunWhole(2, true), nil, nil, Params{})

	want := 2 * scaleFixed(fixed.I(10), smallCapsScaleNum, smallCapsScaleDen)
	if info.LineWidth(0) != want {
		t.Fatalf("LineWidth() = %v, want %v (small-caps shrinks the caps substituted for lowercase runes)", info.LineWidth(0), want)
	}
}

func TestBuildSyntheticSmallCapsLeavesAlreadyUppercaseGlyphsFullSize(t *testing.T) {
	b := &Builder{Registry: syntheticRegistry{}, Shaper: stubShaper{em: fixed.I(10)}}
	info := b.Build("AB", nil, boolRunWhole(2, true), nil, nil, Params{})

	want := 2 * fixed.I(10)
	if info.LineWidth(0) != want {
		t.Fatalf("LineWidth() = %v, want %v (glyphs already uppercase in the source keep full size)", info.LineWidth(0), want)
	}
}

func TestBuildSyntheticSuperscriptShrinksGlyphsAndRaisesAscent(t *testing.T) {
	b := &Builder{Registry: syntheticRegistry{}, Shaper: stubShaper{em: fixed.I(10)}}
	info := b.Build("x", nil, nil, nil, boolRunWhole(1, true), Params{})

	wantWidth := scaleFixed(fixed.I(10), synthScriptScaleNum, synthScriptScaleDen)
	if info.LineWidth(0) != wantWidth {
		t.Fatalf("LineWidth() = %v, want %v (superscript shrinks the glyph)", info.LineWidth(0), wantWidth)
	}
	if info.LineAscent(0) <= fixed.I(8) {
		t.Fatalf("LineAscent() = %v, want > %v (superscript raises the line above its face ascent)", info.LineAscent(0), fixed.I(8))
	}
}

func TestBuildSyntheticSubscriptExtendsBelowBaseline(t *testing.T) {
	plain := newTestBuilder().Build("x", nil, nil, nil, nil, Params{})

	b := &Builder{Registry: syntheticRegistry{}, Shaper: stubShaper{em: fixed.I(10)}}
	info := b.Build("x", nil, nil, boolRunWhole(1, true), nil, Params{})

	if info.LineTotalDescent(0) <= plain.LineTotalDescent(0) {
		t.Fatalf("LineTotalDescent() = %v, want > %v (subscript drops the glyph below its face descent)",
			info.LineTotalDescent(0), plain.LineTotalDescent(0))
	}
}
