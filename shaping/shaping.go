// Package shaping defines the external shaper collaborator of §6 and a
// default implementation wrapping github.com/go-text/typesetting/shaping,
// the same shaping stack the teacher drives in text/gotext.go.
package shaping

import (
	"golang.org/x/image/math/fixed"

	gofont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/language"
	gshaping "github.com/go-text/typesetting/shaping"
)

// Direction mirrors the run direction passed to the shaper, LTR or RTL.
type Direction int

const (
	LTR Direction = iota
	RTL
)

// Glyph is one shaped glyph: an ID, its advance/offset in 26.6 fixed point,
// and the cluster it belongs to, given as a rune index into Input.Text
// (the layout builder maps it back to a source byte offset).
type Glyph struct {
	ID           gofont.GID
	XAdvance     fixed.Int26_6
	YAdvance     fixed.Int26_6
	XOffset      fixed.Int26_6
	YOffset      fixed.Int26_6
	ClusterIndex int
	RuneCount    int
}

// Output is one shaped run: its glyphs in the shaper's own visual order,
// plus whole-run ascent/descent (the teacher's run.LineBounds). Descent is
// negative (below the baseline), matching go-text/typesetting's own
// LineBounds convention.
type Output struct {
	Glyphs  []Glyph
	Ascent  fixed.Int26_6
	Descent fixed.Int26_6
}

// Input is one shaping request: a run of text under one face, script,
// language and direction, with optional prefix/suffix context for proper
// joining at run boundaries (§6's "Contexts are provided to enable proper
// joining at run boundaries").
type Input struct {
	Face      gofont.Face
	Size      fixed.Int26_6
	Text      []rune
	RunStart  int
	RunEnd    int
	Direction Direction
	Script    language.Script
	Language  language.Language
	// Features lists OpenType feature tags (smcp/subs/sups) for this run.
	// The layout builder never sets it, and HarfbuzzShaper does not
	// forward it.
	Features []Feature
}

// Feature is one OpenType feature request with an explicit on/off value.
type Feature struct {
	Tag   string
	Value uint32
}

// Shaper is the external shaper collaborator: it converts one Input into
// shaped glyphs. Implementations are synchronous per §5.
type Shaper interface {
	Shape(Input) Output
}

// HarfbuzzShaper wraps go-text/typesetting/shaping.HarfbuzzShaper, the
// teacher's own default shaper (text/gotext.go's shaperImpl.shaper field).
type HarfbuzzShaper struct {
	impl gshaping.HarfbuzzShaper
}

func NewHarfbuzzShaper() *HarfbuzzShaper { return &HarfbuzzShaper{} }

func (s *HarfbuzzShaper) Shape(in Input) Output {
	// in.Features is not forwarded to the shaper here; the layout builder
	// approximates smcp/subs/sups itself for fonts marked Synthetic*
	// (uppercasing, baseline/scale shift) without using in.Features: the pinned go-text/
	// typesetting feature-request type isn't available to this module's
	// dependency pack to ground a translation against (see DESIGN.md).
	input := gshaping.Input{
		Face:      in.Face,
		Size:      in.Size,
		Text:      in.Text,
		RunStart:  in.RunStart,
		RunEnd:    in.RunEnd,
		Script:    in.Script,
		Language:  in.Language,
		Direction: toDiDirection(in.Direction),
	}
	out := s.impl.Shape(input)
	glyphs := make([]Glyph, len(out.Glyphs))
	for i, g := range out.Glyphs {
		glyphs[i] = Glyph{
			ID:           g.GlyphID,
			XAdvance:     g.XAdvance,
			YAdvance:     g.YAdvance,
			XOffset:      g.XOffset,
			YOffset:      g.YOffset,
			ClusterIndex: int(g.ClusterIndex),
			RuneCount:    int(g.RuneCount),
		}
	}
	return Output{
		Glyphs:  glyphs,
		Ascent:  out.LineBounds.Ascent,
		Descent: out.LineBounds.Descent,
	}
}

func toDiDirection(d Direction) di.Direction {
	if d == RTL {
		return di.DirectionRTL
	}
	return di.DirectionLTR
}

