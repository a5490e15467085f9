package font

import (
	"fmt"

	gofont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/shaping"

	"github.com/forenoonwatch/richtext/internal/uax24"
)

// A Collection maps a Font to the Face that renders it, following the
// teacher's own text.Collection shape in text/gotext.go.
type Collection struct {
	order []entry
}

type entry struct {
	font Font
	face Face
}

// NewCollection returns an empty Collection.
func NewCollection() *Collection { return &Collection{} }

// Register adds face under fnt. Faces are ranked per request by how
// closely their Font matches the requested style (facesForStyle); the
// top-ranked face is the fallback when no better match exists, and among
// equally close faces the earlier registered one ranks first.
func (c *Collection) Register(fnt Font, face Face) {
	c.order = append(c.order, entry{font: fnt, face: face})
}

// facesForStyle ranks this collection's faces by closeness to fnt, closest
// first, mirroring faceOrderer.sortedFacesForStyle's weight/style scoring.
func (c *Collection) facesForStyle(fnt Font) []Face {
	type scored struct {
		face  Face
		score int
	}
	scores := make([]scored, 0, len(c.order))
	for _, e := range c.order {
		s := 0
		if e.font.Typeface == fnt.Typeface {
			s += 100
		}
		if e.font.Variant == fnt.Variant {
			s += 50
		}
		if e.font.Style == fnt.Style {
			s += 20
		}
		w := int(e.font.Weight - fnt.Weight)
		if w < 0 {
			w = -w
		}
		s += 10 - min(w/100, 10)
		scores = append(scores, scored{face: e.face, score: s})
	}
	for i := 1; i < len(scores); i++ {
		for j := i; j > 0 && scores[j].score > scores[j-1].score; j-- {
			scores[j], scores[j-1] = scores[j-1], scores[j]
		}
	}
	out := make([]Face, len(scores))
	for i, s := range scores {
		out[i] = s.face
	}
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// CollectionRegistry is a reference Registry over an in-memory Collection,
// selecting faces by glyph coverage via shaping.SplitByFontGlyphs, the same
// helper the teacher's shapeText uses to split shaping input by font
// coverage (text/gotext.go's splitByFaces).
type CollectionRegistry struct {
	Collection *Collection
}

func NewCollectionRegistry(c *Collection) *CollectionRegistry {
	return &CollectionRegistry{Collection: c}
}

func (r *CollectionRegistry) GetSubFont(base Font, text string, offset *int, limit int,
	script uax24.Script, smallcaps, subscript, superscript bool) (SingleScriptFont, error) {
	faces := r.Collection.facesForStyle(base)
	if len(faces) == 0 {
		return SingleScriptFont{}, fmt.Errorf("font: no faces registered")
	}
	runes := []rune(text[*offset:limit])
	if len(runes) == 0 {
		return SingleScriptFont{}, fmt.Errorf("font: empty subrange")
	}
	input := shaping.Input{Text: runes, RunStart: 0, RunEnd: len(runes)}
	rawFaces := make([]gofont.Face, len(faces))
	for i, f := range faces {
		rawFaces[i] = f.Face()
	}
	splits := shaping.SplitByFontGlyphs(input, rawFaces)
	if len(splits) == 0 {
		return SingleScriptFont{}, fmt.Errorf("font: no coverage for text")
	}
	first := splits[0]
	coveredRunes := first.RunEnd - first.RunStart
	consumedBytes := len(string(runes[:coveredRunes]))
	*offset += consumedBytes

	face := faces[0]
	for i, rf := range rawFaces {
		if rf == first.Face {
			face = faces[i]
			break
		}
	}

	ssf := SingleScriptFont{
		Font: base,
		Face: face,
	}
	if smallcaps && !faceHasFeature(face, FeatureSmallCaps) {
		ssf.SyntheticSmallCaps = true
	}
	if subscript && !faceHasFeature(face, FeatureSubscript) {
		ssf.SyntheticSubscript = true
	}
	if superscript && !faceHasFeature(face, FeatureSuperscript) {
		ssf.SyntheticSuperscript = true
	}
	return ssf, nil
}
