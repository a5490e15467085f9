package bidi

import "unicode/utf8"

// bracketPairs lists the paired-bracket characters participating in N0,
// open followed by its close. It is a separate, smaller list than the
// script-run iterator's pairedChars table in internal/uax24, and includes
// both angle-bracket forms U+2329/U+232A and U+3008/U+3009, which
// canonicalPairIndex treats as one pair.
var bracketPairs = []rune{
	'(', ')',
	'<', '>',
	'[', ']',
	'{', '}',
	'〈', '〉', // angle brackets, and synonym for U+232A below
	'〈', '〉',
}

func bracketPairIndex(r rune) (idx int, opening bool) {
	for i := 0; i < len(bracketPairs); i += 2 {
		if bracketPairs[i] == r {
			return i, true
		}
		if bracketPairs[i+1] == r {
			return i, false
		}
	}
	return -1, false
}

// canonicalPairIndex maps a bracket to the pair index used for matching,
// collapsing U+2329/U+232A onto their canonical equivalents U+3008/U+3009
// so either angle-bracket form closes an opening of the other form.
func canonicalPairIndex(r rune) int {
	switch r {
	case '〈':
		r = '〈'
	case '〉':
		r = '〉'
	}
	idx, _ := bracketPairIndex(r)
	return idx
}

// applyBracketsN0 runs N0 over one level run's working sequence (as built
// by resolveWeakNeutralImplicit) and overwrites classes in place for any
// bracket pair that resolves, ahead of N1/N2 so resolved brackets behave as
// ordinary strong characters for neutral-run absorption.
func applyBracketsN0(dp *dirProps, positions []int, classes []class, runIsRTL bool, sos class) {
	bt := &bracketTracker{context: sos}
	for i := range classes {
		r, _ := utf8.DecodeRuneInString(dp.text[positions[i]:])
		bt.onChar(positions[i], classes[i], runIsRTL, r)
	}
	for _, res := range bt.resolved {
		setClassAt(positions, classes, res.openPos, res.strong)
		setClassAt(positions, classes, res.closePos, res.strong)
	}
}

func setClassAt(positions []int, classes []class, pos int, c class) {
	for i, p := range positions {
		if p == pos {
			classes[i] = c
			return
		}
	}
}

const maxOpenings = 63 // BD16's bound: isolating run sequence bracket-pair stack depth

type bracketOpening struct {
	pos        int // byte index of the opening bracket
	pairIdx    int
	seenL      bool
	seenR      bool
	contextDir class // the strong direction context established before this opening bracket
}

// bracketTracker implements N0 over one isolating run sequence: pending
// opening brackets are pushed as seen, strong characters update seenL/seenR
// for every still-open entry, and a matching close resolves the pair (and
// discards anything nested above it that failed to resolve).
type bracketTracker struct {
	openings []bracketOpening
	// context is the most recent strong direction (L or R, with EN/AN
	// counted as R) seen so far in the isolating run sequence, independent
	// of bracket nesting; it seeds each opening's contextDir for N0c1/c2,
	// grounded on u8bidi.cpp's IsoRun.contextDir.
	context class
	// resolved receives one entry per resolved bracket pair: the byte
	// positions of its opening and closing brackets and the strong class
	// (L or R) N0 assigns to both; the caller applies these after the
	// sequence completes.
	resolved []bracketResolution
}

type bracketResolution struct {
	openPos, closePos int
	strong            class // classL or classR: the resolved direction
}

func (bt *bracketTracker) onChar(pos int, c class, paraEmbeddingIsRTL bool, r rune) {
	switch c {
	case classON:
		if idx, isOpen := bracketPairIndex(r); idx >= 0 {
			if isOpen {
				if len(bt.openings) < maxOpenings {
					bt.openings = append(bt.openings, bracketOpening{pos: pos, pairIdx: canonicalPairIndex(r), contextDir: bt.context})
				}
				return
			}
			pi := canonicalPairIndex(r)
			for i := len(bt.openings) - 1; i >= 0; i-- {
				if bt.openings[i].pairIdx == pi {
					o := bt.openings[i]
					bt.resolve(o, pos, paraEmbeddingIsRTL)
					bt.openings = bt.openings[:i]
					return
				}
			}
		}
	case classL:
		bt.markStrong(classL)
		bt.context = classL
	case classR, classEN, classAN:
		// EN/AN are treated as R for N0's "strong type" purposes per the
		// UAX #9 N0 note that says EN and AN are treated as R.
		bt.markStrong(classR)
		bt.context = classR
	}
}

func (bt *bracketTracker) markStrong(strong class) {
	for i := range bt.openings {
		if strong == classL {
			bt.openings[i].seenL = true
		} else {
			bt.openings[i].seenR = true
		}
	}
}

// resolve applies N0's priority exactly as u8bidi.cpp's bracketProcessClosing
// orders it: a strong character matching the embedding direction anywhere
// inside the pair wins outright (N0b), checked before anything else. Only
// when no embedding-direction match was found, but an opposite-direction one
// was, does the preceding strong context decide: context opposite to the
// embedding direction resolves the pair to that opposite direction (N0c1);
// any other context (including none) falls back to the embedding direction
// (N0c2). No strong character at all inside leaves the pair unresolved (N0d).
func (bt *bracketTracker) resolve(o bracketOpening, closePos int, embeddingIsRTL bool) {
	embedding, opposite := classL, classR
	if embeddingIsRTL {
		embedding, opposite = classR, classL
	}
	embeddingSeen := (embedding == classL && o.seenL) || (embedding == classR && o.seenR)
	oppositeSeen := (opposite == classL && o.seenL) || (opposite == classR && o.seenR)
	switch {
	case embeddingSeen:
		bt.resolved = append(bt.resolved, bracketResolution{o.pos, closePos, embedding})
	case oppositeSeen:
		strong := embedding
		if o.contextDir == opposite {
			strong = opposite
		}
		bt.resolved = append(bt.resolved, bracketResolution{o.pos, closePos, strong})
	default:
	}
}
