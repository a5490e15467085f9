package bidi

import (
	"unicode/utf8"

	uc "golang.org/x/text/unicode/bidi"
)

// WriteReordered renders a Line's visual order into dst, per §4.C.3.
// With DoMirroring set, characters in a run at an odd (RTL) level are
// replaced by their canonical mirror glyph (§4.C.2's bracket handling
// already resolved directionality; this is purely glyph substitution).
// With OutputReverse, bytes within each RTL run are additionally emitted
// in reverse rune order, matching a renderer that lays out glyphs
// left-to-right but wants RTL runs pre-reversed; KeepBaseCombining then
// keeps each base rune and the combining marks following it together as a
// unit during that reversal, instead of reversing mark order relative to
// their base. RemoveBidiControls drops LRM/RLM/LRE/RLE/LRO/RLO/PDF/LRI/RLI/
// FSI/PDI from the output. InsertLRMForNumeric materializes an LRM at each point an
// inverse ReorderingMode recorded during resolution (§4.C.2 Stage 4), so
// digit sequences embedded in an RTL run keep reading left-to-right.
//
// If dst is too small, WriteReordered returns a *Error with Kind
// BufferOverflow and RequiredLength set to the needed byte count; no
// partial output is written.
func (l *Line) WriteReordered(dst []byte, opts Options) (int, error) {
	required := l.reorderedLen(opts)
	if len(dst) < required {
		return 0, &Error{Kind: BufferOverflow, RequiredLength: required}
	}

	n := 0
	for _, r := range l.runs {
		seg := l.text[r.Start : r.Start+r.Length]
		n += l.emit(dst[n:], seg, r.Start, r.RTL, opts)
	}
	return n, nil
}

// reorderedLen computes WriteReordered's output size without writing,
// so BufferOverflow can report RequiredLength up front rather than after
// a partial write (§4.C.4's recoverable-error contract).
func (l *Line) reorderedLen(opts Options) int {
	n := 0
	for _, r := range l.runs {
		seg := l.text[r.Start : r.Start+r.Length]
		for i, ru := range seg {
			if opts&RemoveBidiControls != 0 && isBidiControlRune(ru) {
				continue
			}
			if opts&InsertLRMForNumeric != 0 && l.hasLRMBefore(r.Start+i) {
				n += utf8.RuneLen('\u200e')
			}
			n += utf8.RuneLen(ru)
		}
	}
	return n
}

// emitRune pairs a rune with its absolute byte position in l.text, carried
// through reordering so LRM insertion points and combining-mark clustering
// still refer to the right source position after reversal.
type emitRune struct {
	r   rune
	abs int
}

// emit writes one run's worth of seg (starting at absolute byte offset
// segStart) into dst, applying mirroring, control removal, combining-mark
// clustering, LRM materialization, and (if rtl and OutputReverse) reversal.
// It returns the number of bytes written.
func (l *Line) emit(dst []byte, seg string, segStart int, rtl bool, opts Options) int {
	items := make([]emitRune, 0, len(seg))
	for i, r := range seg {
		if opts&RemoveBidiControls != 0 && isBidiControlRune(r) {
			continue
		}
		if opts&DoMirroring != 0 && rtl {
			r = mirror(r)
		}
		items = append(items, emitRune{r: r, abs: segStart + i})
	}
	if rtl && opts&OutputReverse != 0 {
		if opts&KeepBaseCombining != 0 {
			items = reverseKeepingClusters(items)
		} else {
			for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
				items[i], items[j] = items[j], items[i]
			}
		}
	}
	n := 0
	for _, it := range items {
		if opts&InsertLRMForNumeric != 0 && l.hasLRMBefore(it.abs) {
			n += utf8.EncodeRune(dst[n:], '\u200e')
		}
		n += utf8.EncodeRune(dst[n:], it.r)
	}
	return n
}

// reverseKeepingClusters reverses the order of base+combining-mark clusters
// without reversing a cluster's own internal (base, mark, mark, ...) order,
// per KeepBaseCombining.
func reverseKeepingClusters(items []emitRune) []emitRune {
	var clusters [][]emitRune
	for _, it := range items {
		if isCombiningMark(it.r) && len(clusters) > 0 {
			last := len(clusters) - 1
			clusters[last] = append(clusters[last], it)
		} else {
			clusters = append(clusters, []emitRune{it})
		}
	}
	out := make([]emitRune, 0, len(items))
	for i := len(clusters) - 1; i >= 0; i-- {
		out = append(out, clusters[i]...)
	}
	return out
}

func isCombiningMark(r rune) bool {
	props, _ := uc.LookupRune(r)
	return props.Class() == uc.NSM
}

func isBidiControlRune(r rune) bool {
	switch r {
	case '\u200e', '\u200f', '\u202a', '\u202b', '\u202c', '\u202d', '\u202e',
		'\u2066', '\u2067', '\u2068', '\u2069':
		return true
	default:
		return false
	}
}
