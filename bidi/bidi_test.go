package bidi

import (
	"strings"
	"testing"
)

func TestParagraphLTRSingleRun(t *testing.T) {
	p := NewParagraph()
	if err := p.SetParagraph("abc", DefaultLTR, nil); err != nil {
		t.Fatal(err)
	}
	if got := p.GetDirection(); got != LTR {
		t.Fatalf("GetDirection() = %v, want LTR", got)
	}
	if n := p.CountRuns(); n != 1 {
		t.Fatalf("CountRuns() = %d, want 1", n)
	}
	start, length, rtl := p.GetVisualRun(0)
	if start != 0 || length != 3 || rtl {
		t.Fatalf("GetVisualRun(0) = (%d, %d, %v), want (0, 3, false)", start, length, rtl)
	}
}

func TestParagraphRTLByteDescending(t *testing.T) {
	text := "אבג" // three Hebrew letters, strong R
	p := NewParagraph()
	if err := p.SetParagraph(text, DefaultLTR, nil); err != nil {
		t.Fatal(err)
	}
	if got := p.GetDirection(); got != RTL {
		t.Fatalf("GetDirection() = %v, want RTL", got)
	}
	if n := p.CountRuns(); n != 1 {
		t.Fatalf("CountRuns() = %d, want 1", n)
	}
	start, length, rtl := p.GetVisualRun(0)
	if start != 0 || length != len(text) || !rtl {
		t.Fatalf("GetVisualRun(0) = (%d, %d, %v), want (0, %d, true)", start, length, rtl, len(text))
	}
	var dst [64]byte
	n, err := p.levelRunsAsLine().WriteReordered(dst[:], OutputReverse)
	if err != nil {
		t.Fatal(err)
	}
	if string(dst[:n]) != "גבא" {
		t.Fatalf("WriteReordered(OutputReverse) = %q, want %q", dst[:n], "גבא")
	}
}

func TestParagraphThreeVisualRuns(t *testing.T) {
	text := "abc אבג def"
	p := NewParagraph()
	if err := p.SetParagraph(text, DefaultLTR, nil); err != nil {
		t.Fatal(err)
	}
	if got := p.GetDirection(); got != Mixed {
		t.Fatalf("GetDirection() = %v, want Mixed", got)
	}
	if n := p.CountRuns(); n != 3 {
		t.Fatalf("CountRuns() = %d, want 3", n)
	}
	_, _, rtl0 := p.GetVisualRun(0)
	_, _, rtl1 := p.GetVisualRun(1)
	_, _, rtl2 := p.GetVisualRun(2)
	if rtl0 || !rtl1 || rtl2 {
		t.Fatalf("run directions = (%v, %v, %v), want (false, true, false)", rtl0, rtl1, rtl2)
	}
}

func TestParagraphTwoLines(t *testing.T) {
	text := "abc\ndef"
	p := NewParagraph()
	if err := p.SetParagraph(text, DefaultLTR, nil); err != nil {
		t.Fatal(err)
	}
	_, limit, _, _, err := p.GetParagraph(0)
	if err != nil {
		t.Fatal(err)
	}
	if limit != 4 { // "abc\n" includes the paragraph separator
		t.Fatalf("first sub-paragraph limit = %d, want 4", limit)
	}
	line, err := p.SetLine(0, 4)
	if err != nil {
		t.Fatal(err)
	}
	if line.GetLength() != 4 {
		t.Fatalf("line length = %d, want 4", line.GetLength())
	}
}

func TestParagraphBracketPairN0bEmbeddingMatch(t *testing.T) {
	// A Hebrew run containing a parenthesized Hebrew fragment: the content
	// matches the surrounding RTL embedding directly, so N0b applies and the
	// bracket pair takes the embedding direction, same level as its content.
	text := "אב(גד)הו"
	p := NewParagraph()
	if err := p.SetParagraph(text, DefaultLTR, nil); err != nil {
		t.Fatal(err)
	}
	openIdx := strings.IndexByte(text, '(')
	innerIdx := openIdx + 1
	if p.GetLevelAt(0)%2 != 1 {
		t.Fatalf("level at start = %d, want odd (RTL)", p.GetLevelAt(0))
	}
	if p.GetLevelAt(openIdx) != p.GetLevelAt(0) {
		t.Fatalf("bracket level (%d) should match the surrounding RTL level (%d) under N0b",
			p.GetLevelAt(openIdx), p.GetLevelAt(0))
	}
	if p.GetLevelAt(innerIdx) != p.GetLevelAt(openIdx) {
		t.Fatalf("level inside brackets (%d) should match bracket level (%d)",
			p.GetLevelAt(innerIdx), p.GetLevelAt(openIdx))
	}
}

func TestParagraphBracketPairN0c1ContextMatchesOpposite(t *testing.T) {
	// An explicit LTR paragraph with Hebrew (R, opposite of the L embedding)
	// both before and inside the brackets: the preceding Hebrew establishes
	// an R context before '(', and the brackets contain only R content, so
	// N0c1 applies and the bracket pair itself takes the opposite (R)
	// direction, one level deeper than the Latin embedding.
	text := "שלום (שלום) world"
	p := NewParagraph()
	if err := p.SetParagraph(text, 0, nil); err != nil {
		t.Fatal(err)
	}
	openIdx := strings.IndexByte(text, '(')
	innerIdx := openIdx + 1
	if p.GetLevelAt(0) != 0 {
		t.Fatalf("embedding level at start = %d, want 0 (explicit LTR)", p.GetLevelAt(0))
	}
	if p.GetLevelAt(openIdx) <= p.GetLevelAt(0) {
		t.Fatalf("bracket level (%d) should exceed the embedding level (%d)", p.GetLevelAt(openIdx), p.GetLevelAt(0))
	}
	if p.GetLevelAt(innerIdx) != p.GetLevelAt(openIdx) {
		t.Fatalf("level inside brackets (%d) should match bracket level (%d) under N0c1",
			p.GetLevelAt(innerIdx), p.GetLevelAt(openIdx))
	}
}

func TestParagraphBracketPairN0c2FallsBackToEmbedding(t *testing.T) {
	// "Hello (שלום) World": the preceding "Hello " establishes an L context
	// (matching the L embedding) before the brackets, and the brackets
	// contain only Hebrew (R, opposite of the embedding). With no opposite
	// context established before the bracket, N0c2 falls back to the
	// embedding direction: the parens stay at the base (L) level even
	// though their own content is Hebrew.
	text := "Hello (שלום) World"
	p := NewParagraph()
	if err := p.SetParagraph(text, 0, nil); err != nil {
		t.Fatal(err)
	}
	openIdx := strings.IndexByte(text, '(')
	closeIdx := strings.IndexByte(text, ')')
	if p.GetLevelAt(openIdx) != 0 {
		t.Fatalf("bracket level = %d, want 0 (N0c2 falls back to the L embedding)", p.GetLevelAt(openIdx))
	}
	if p.GetLevelAt(closeIdx) != 0 {
		t.Fatalf("closing bracket level = %d, want 0 (N0c2 falls back to the L embedding)", p.GetLevelAt(closeIdx))
	}
}

func TestWriteReorderedMirroring(t *testing.T) {
	text := "אב(גד)"
	p := NewParagraph()
	if err := p.SetParagraph(text, DefaultLTR, nil); err != nil {
		t.Fatal(err)
	}
	line, err := p.SetLine(0, len(text))
	if err != nil {
		t.Fatal(err)
	}
	var dst [64]byte
	n, err := line.WriteReordered(dst[:], DoMirroring|OutputReverse)
	if err != nil {
		t.Fatal(err)
	}
	out := string(dst[:n])
	if !containsRune(out, '(') && !containsRune(out, ')') {
		t.Fatalf("WriteReordered(DoMirroring) output %q has no bracket glyphs", out)
	}
}

func TestWriteReorderedBufferOverflow(t *testing.T) {
	p := NewParagraph()
	if err := p.SetParagraph("abc", DefaultLTR, nil); err != nil {
		t.Fatal(err)
	}
	line, err := p.SetLine(0, 3)
	if err != nil {
		t.Fatal(err)
	}
	var dst [1]byte
	_, err = line.WriteReordered(dst[:], 0)
	berr, ok := err.(*Error)
	if !ok || berr.Kind != BufferOverflow {
		t.Fatalf("WriteReordered with undersized dst: err = %v, want BufferOverflow", err)
	}
	if berr.RequiredLength != 3 {
		t.Fatalf("RequiredLength = %d, want 3", berr.RequiredLength)
	}
}

// levelRunsAsLine exposes the whole-paragraph run decomposition as a Line
// for tests that want WriteReordered without constructing a separate line.
func (p *Paragraph) levelRunsAsLine() *Line {
	l := &Line{
		text:      p.text,
		start:     0,
		limit:     len(p.text),
		paraLevel: p.paraLevel,
		levels:    append([]Level(nil), p.levels...),
		levelRuns: p.levelRuns,
		runs:      p.runs,
	}
	return l
}

func containsRune(s string, r rune) bool {
	for _, c := range s {
		if c == r {
			return true
		}
	}
	return false
}

func TestSetContextAffectsResolution(t *testing.T) {
	// A lone European digit at the very start of an explicit-LTR paragraph:
	// with no context, sos is L (the only run's own level), so W7 folds the
	// digit to L and its level stays at the base. A SetContext prologue
	// ending in a strong Hebrew (R) character overrides sos to R, so W7
	// leaves the digit as EN, which I2 then lifts two levels above an even
	// (L) embedding.
	without := NewParagraph()
	if err := without.SetParagraph("5", 0, nil); err != nil {
		t.Fatal(err)
	}
	if lvl := without.GetLevelAt(0); lvl != 0 {
		t.Fatalf("without context: level = %d, want 0", lvl)
	}

	with := NewParagraph()
	with.SetContext("א", "")
	if err := with.SetParagraph("5", 0, nil); err != nil {
		t.Fatal(err)
	}
	if lvl := with.GetLevelAt(0); lvl != 2 {
		t.Fatalf("with an R prologue: level = %d, want 2 (EN not folded to L by W7)", lvl)
	}

	// SetContext is consumed by the SetParagraph call it precedes; a second
	// SetParagraph call must not keep applying it.
	if err := with.SetParagraph("5", 0, nil); err != nil {
		t.Fatal(err)
	}
	if lvl := with.GetLevelAt(0); lvl != 0 {
		t.Fatalf("a second SetParagraph without a fresh SetContext call: level = %d, want 0", lvl)
	}
}

func TestResolveWeakNeutralImplicitRunsOnlyIsolatesNeighbors(t *testing.T) {
	// A neutral sandwiched between two RTL (level 1) runs, itself at level
	// 0: by default its sos/eos both pick up the higher neighboring level
	// (R) so N1 resolves it to R, one level above its own run. RUNS_ONLY
	// resolves each run as if it stood alone, so sos/eos fall back to the
	// run's own (L) level and N1 resolves it to L instead, with no bump.
	text := "א!ב"
	dp := collectDirProps(text)
	baseLevels := []Level{1, 1, 0, 1, 1}

	def := append([]Level(nil), baseLevels...)
	resolveWeakNeutralImplicit(dp, def, 0, len(text), 0, ModeDefault, nil, nil, nil)
	if def[2] != 1 {
		t.Fatalf("default mode: neutral level = %d, want 1 (neighboring R context bleeds in via N1)", def[2])
	}

	runsOnly := append([]Level(nil), baseLevels...)
	resolveWeakNeutralImplicit(dp, runsOnly, 0, len(text), 0, ModeRunsOnly, nil, nil, nil)
	if runsOnly[2] != 0 {
		t.Fatalf("ModeRunsOnly: neutral level = %d, want 0 (isolated from neighboring runs)", runsOnly[2])
	}
}

func TestResolveWeakNeutralImplicitInverseModeRecordsLRMInsertions(t *testing.T) {
	// A lone digit at an RTL (odd) level: an inverse mode records its
	// position as an LRM insertion point, so WriteReordered's
	// InsertLRMForNumeric can later keep it reading left-to-right once the
	// run is materialized in reverse. DEFAULT mode records nothing.
	text := "5"
	dp := collectDirProps(text)

	inverseLevels := []Level{1}
	var lrm []int
	resolveWeakNeutralImplicit(dp, inverseLevels, 0, 1, 1, ModeInverseLikeDirect, nil, nil, &lrm)
	if len(lrm) != 1 || lrm[0] != 0 {
		t.Fatalf("ModeInverseLikeDirect: lrm insertions = %v, want [0]", lrm)
	}

	defaultLevels := []Level{1}
	var lrm2 []int
	resolveWeakNeutralImplicit(dp, defaultLevels, 0, 1, 1, ModeDefault, nil, nil, &lrm2)
	if len(lrm2) != 0 {
		t.Fatalf("ModeDefault: lrm insertions = %v, want none", lrm2)
	}
}

func TestWriteReorderedInsertLRMForNumeric(t *testing.T) {
	text := "אבג5דהו" // an ASCII digit embedded in Hebrew (RTL) text
	p := NewParagraph()
	p.SetReorderingMode(ModeInverseLikeDirect)
	if err := p.SetParagraph(text, DefaultLTR, nil); err != nil {
		t.Fatal(err)
	}
	line, err := p.SetLine(0, len(text))
	if err != nil {
		t.Fatal(err)
	}
	var dst [64]byte
	n, err := line.WriteReordered(dst[:], InsertLRMForNumeric)
	if err != nil {
		t.Fatal(err)
	}
	if out := string(dst[:n]); !containsRune(out, '\u200e') {
		t.Fatalf("WriteReordered(InsertLRMForNumeric) = %q, want an LRM before the embedded digit", out)
	}
}

func TestWriteReorderedKeepBaseCombining(t *testing.T) {
	text := "אְב" // base, Hebrew point (NSM), base
	p := NewParagraph()
	if err := p.SetParagraph(text, DefaultLTR, nil); err != nil {
		t.Fatal(err)
	}
	line, err := p.SetLine(0, len(text))
	if err != nil {
		t.Fatal(err)
	}

	var dst [64]byte
	n, err := line.WriteReordered(dst[:], OutputReverse|KeepBaseCombining)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(dst[:n]), "ב"+"א"+"ְ"; got != want {
		t.Fatalf("WriteReordered(OutputReverse|KeepBaseCombining) = %q, want %q (base+mark kept together)", got, want)
	}

	var dst2 [64]byte
	n2, err := line.WriteReordered(dst2[:], OutputReverse)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(dst2[:n2]), "ב"+"ְ"+"א"; got != want {
		t.Fatalf("WriteReordered(OutputReverse) without KeepBaseCombining = %q, want %q (naive full reversal)", got, want)
	}
}
