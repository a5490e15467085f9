/*
Package font provides type describing font faces attributes.
*/
package font

import (
	"github.com/go-text/typesetting/font"

	"github.com/forenoonwatch/richtext/internal/uax24"
)

// A FontFace is a Font and a matching Face.
type FontFace struct {
	Font Font
	Face Face
}

// Style is the font style.
type Style int

// Weight is a font weight, in CSS units subtracted 400 so the zero value
// is normal text weight.
type Weight int

// Font specify a particular typeface variant, style and weight.
type Font struct {
	Typeface Typeface
	Variant  Variant
	Style    Style
	// Weight is the text weight. If zero, Normal is used instead.
	Weight Weight
}

// Face is an opaque handle to a typeface. The concrete implementation depends
// upon the kind of font and shaper in use.
type Face interface {
	Face() font.Face
}

// Typeface identifies a particular typeface design. The empty
// string denotes the default typeface.
type Typeface string

// Variant denotes a typeface variant such as "Mono" or "Smallcaps".
type Variant string

const (
	Regular Style = iota
	Italic
)

const (
	Thin       Weight = -300
	ExtraLight Weight = -200
	Light      Weight = -100
	Normal     Weight = 0
	Medium     Weight = 100
	SemiBold   Weight = 200
	Bold       Weight = 300
	ExtraBold  Weight = 400
	Black      Weight = 500
)

func (s Style) String() string {
	switch s {
	case Regular:
		return "Regular"
	case Italic:
		return "Italic"
	default:
		panic("invalid Style")
	}
}

func (w Weight) String() string {
	switch w {
	case Thin:
		return "Thin"
	case ExtraLight:
		return "ExtraLight"
	case Light:
		return "Light"
	case Normal:
		return "Normal"
	case Medium:
		return "Medium"
	case SemiBold:
		return "SemiBold"
	case Bold:
		return "Bold"
	case ExtraBold:
		return "ExtraBold"
	case Black:
		return "Black"
	default:
		panic("invalid Weight")
	}
}

// Feature names an OpenType feature tag the layout builder may request for
// a run (smcp, subs, sups) per §4.D.2 step 1/2.
type Feature string

const (
	FeatureSmallCaps Feature = "smcp"
	FeatureSubscript Feature = "subs"
	FeatureSuperscript Feature = "sups"
)

// SingleScriptFont is the physical face the registry selects to cover one
// script under a requested base Font, plus the synthesized-feature flags
// set when the face itself lacks the feature. Ascent/descent for a shaped
// run of this font come from the shaper's own output metrics (LineBounds),
// not from this struct, matching the teacher's text/gotext.go, which reads
// run.LineBounds.Ascent/Descent rather than querying the face directly.
type SingleScriptFont struct {
	Font Font
	Face Face

	// SyntheticSmallCaps is set when the face has no smcp table: the
	// builder uppercases the run's text itself instead of requesting the
	// feature from the shaper.
	SyntheticSmallCaps bool
	// SyntheticSubscript and SyntheticSuperscript mirror SyntheticSmallCaps
	// for the subs/sups features.
	SyntheticSubscript   bool
	SyntheticSuperscript bool
}

// FeatureQuerier is an optional capability a Face implementation may expose
// to report its own OpenType feature coverage. A registry consults it (via
// a type assertion) before deciding to synthesize smcp/subs/sups; a Face
// that doesn't implement it is treated as lacking every feature, so the
// builder's synthesis path always applies.
type FeatureQuerier interface {
	HasFeature(feat Feature) bool
}

// faceHasFeature reports whether face natively supports feat, consulting
// FeatureQuerier when the concrete Face implements it.
func faceHasFeature(face Face, feat Feature) bool {
	fq, ok := face.(FeatureQuerier)
	if !ok {
		return false
	}
	return fq.HasFeature(feat)
}

// HasNativeFeature reports whether f's face natively supports feat (as
// opposed to requiring the builder's synthesis path).
func (f SingleScriptFont) HasNativeFeature(feat Feature) bool {
	switch feat {
	case FeatureSmallCaps:
		return !f.SyntheticSmallCaps
	case FeatureSubscript:
		return !f.SyntheticSubscript
	case FeatureSuperscript:
		return !f.SyntheticSuperscript
	default:
		return false
	}
}

// Registry resolves a base Font plus script and feature request into the
// physical SingleScriptFont able to render it, per §6's font registry
// external interface. Implementations MAY block internally but are treated
// by callers as synchronous.
type Registry interface {
	// GetSubFont returns the face covering the longest prefix of
	// text[*offset:limit] under base for the given script, advancing
	// *offset past that prefix.
	GetSubFont(base Font, text string, offset *int, limit int, script uax24.Script,
		smallcaps, subscript, superscript bool) (SingleScriptFont, error)
}
