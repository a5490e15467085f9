package bidi

// mirrorPairs lists the common BidiMirroring characters exercised by
// rendering RTL bracket/angle punctuation, grounded on the same bracket
// set §4.B and §4.C.2 already name (the Unicode BidiMirroring.txt data
// file itself has no home in this corpus; see DESIGN.md). Mapping is
// symmetric: each pair mirrors to the other.
var mirrorPairs = [][2]rune{
	{'(', ')'},
	{'[', ']'},
	{'{', '}'},
	{'<', '>'},
	{'«', '»'},
	{'〈', '〉'},
	{'｢', '｣'},
}

// mirror returns r's canonical mirror glyph, or r unchanged if it has
// none.
func mirror(r rune) rune {
	for _, p := range mirrorPairs {
		if p[0] == r {
			return p[1]
		}
		if p[1] == r {
			return p[0]
		}
	}
	return r
}
