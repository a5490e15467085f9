package bidi

import (
	"unicode/utf8"

	uc "golang.org/x/text/unicode/bidi"
)

// class is this package's own alias for golang.org/x/text/unicode/bidi's
// Class, kept distinct so call sites read bidi.classOf rather than reaching
// across packages for every comparison.
type class = uc.Class

const (
	classL   = uc.L
	classR   = uc.R
	classEN  = uc.EN
	classES  = uc.ES
	classET  = uc.ET
	classAN  = uc.AN
	classCS  = uc.CS
	classNSM = uc.NSM
	classBN  = uc.BN
	classB   = uc.B
	classS   = uc.S
	classWS  = uc.WS
	classON  = uc.ON
	classLRE = uc.LRE
	classLRO = uc.LRO
	classRLE = uc.RLE
	classRLO = uc.RLO
	classPDF = uc.PDF
	classLRI = uc.LRI
	classRLI = uc.RLI
	classFSI = uc.FSI
	classPDI = uc.PDI
)

// paraSep reports whether r is one of the paragraph-separator code points
// named in the Glossary: LF, CR, LS (U+2028), PS (U+2029), FS (U+001C).
// CRLF is handled by the caller treating the CR,LF pair as one separator.
func paraSep(r rune) bool {
	switch r {
	case '\n', '\r', '\u2028', '\u2029', '\u001c':
		return true
	default:
		return false
	}
}

// paragraphRange describes one P1 paragraph: byte range [start, limit) of
// the overall buffer, where limit is one past the separator (or len(text)
// for the final, unterminated paragraph).
type paragraphRange struct {
	start, limit int
	sepLen       int // bytes of separator consumed at the end, 0 for the last unterminated paragraph
}

// splitParagraphs implements P1: scan text for paragraph separators and
// return the resulting ranges. A lone CR immediately followed by LF is one
// two-byte separator (CRLF), matching the Glossary's enumeration.
func splitParagraphs(text string) []paragraphRange {
	var out []paragraphRange
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if paraSep(r) {
			sepLen := size
			if r == '\r' && i+size < len(text) {
				if r2, size2 := utf8.DecodeRuneInString(text[i+size:]); r2 == '\n' {
					sepLen += size2
				}
			}
			limit := i + sepLen
			out = append(out, paragraphRange{start: start, limit: limit, sepLen: sepLen})
			start = limit
			i = limit
			continue
		}
		i += size
	}
	if start < len(text) || len(out) == 0 {
		out = append(out, paragraphRange{start: start, limit: len(text), sepLen: 0})
	}
	return out
}

// dirProps holds one Class entry per byte of the source text: the lead
// byte of a multi-byte scalar gets its real class, continuation bytes get
// BN so that table-driven logic operating "one entry per byte" needs no
// special casing, per §4.C ("trailing bytes... filled with BN").
type dirProps struct {
	text string
	classes []class
	// runeStart marks, for each byte, whether it begins a scalar value
	// (true) or is a UTF-8 continuation byte (false). Used to skip
	// continuation bytes when iterating "real" positions.
	runeStart []bool
	flags     uint32 // bitmask of (1 << class) seen, for quick "does this paragraph contain X" checks
}

func collectDirProps(text string) *dirProps {
	dp := &dirProps{
		text:      text,
		classes:   make([]class, len(text)),
		runeStart: make([]bool, len(text)),
	}
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		props, _ := uc.LookupRune(r)
		c := props.Class()
		dp.classes[i] = c
		dp.runeStart[i] = true
		dp.flags |= 1 << uint(c)
		for j := 1; j < size; j++ {
			dp.classes[i+j] = classBN
		}
		i += size
	}
	return dp
}

func (dp *dirProps) has(c class) bool { return dp.flags&(1<<uint(c)) != 0 }

// firstStrongDirection implements the P2/P3 scan: the first strong L/R/AL
// character (skipping isolate sub-sequences per P2's "except isolates")
// determines the default base level; with no strong character found it
// returns fallback's direction (1 for DefaultRTL, otherwise 0).
func firstStrongDirection(dp *dirProps, start, limit int, fallback Level) Level {
	isolateDepth := 0
	for i := start; i < limit; i++ {
		if !dp.runeStart[i] {
			continue
		}
		switch dp.classes[i] {
		case classLRI, classRLI, classFSI:
			isolateDepth++
		case classPDI:
			if isolateDepth > 0 {
				isolateDepth--
			}
		default:
			if isolateDepth > 0 {
				continue
			}
			switch dp.classes[i] {
			case classL:
				return 0
			case classR, classAL:
				return 1
			}
		}
	}
	if fallback == DefaultRTL {
		return 1
	}
	return 0
}

// resolveFSI rewrites each FSI's class to LRI or RLI in place, per P2/P3
// applied to the isolate's own scope: look ahead from just after the FSI
// to its matching PDI (or the end of the paragraph) for the first strong
// character, skipping nested isolates.
func resolveFSI(dp *dirProps, paraStart, paraLimit int) {
	for i := paraStart; i < paraLimit; i++ {
		if !dp.runeStart[i] || dp.classes[i] != classFSI {
			continue
		}
		scopeEnd := matchingPDI(dp, i, paraLimit)
		lvl := firstStrongDirection(dp, nextRuneStart(dp, i), scopeEnd, DefaultLTR)
		if lvl == 1 {
			dp.classes[i] = classRLI
		} else {
			dp.classes[i] = classLRI
		}
	}
}

// matchingPDI returns the byte index of the PDI matching the isolate
// initiator at i (LRI/RLI/FSI), or paraLimit if unmatched, per BD9.
func matchingPDI(dp *dirProps, i, paraLimit int) int {
	depth := 1
	for j := nextRuneStart(dp, i); j < paraLimit; j = nextRuneStart(dp, j) {
		switch dp.classes[j] {
		case classLRI, classRLI, classFSI:
			depth++
		case classPDI:
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return paraLimit
}

func nextRuneStart(dp *dirProps, i int) int {
	i++
	for i < len(dp.runeStart) && !dp.runeStart[i] {
		i++
	}
	return i
}
