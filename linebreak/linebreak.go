// Package linebreak defines the external line-break collaborator of §6
// and a default UAX #14 implementation over github.com/npillmayer/uax,
// a dependency the teacher's own go.mod already names (gioui.org/go.mod)
// but which goes unused in the snapshot this module grew from.
package linebreak

import (
	"bufio"
	"sort"
	"strings"

	"github.com/npillmayer/uax/uax14"
)

// Iterator is the external line-break collaborator of §6: Preceding
// returns the largest legal break position at or before byteIndex.
// Whitespace immediately preceding byteIndex may be treated as
// margin-hangable by the implementation.
type Iterator interface {
	Preceding(byteIndex int) int
}

// UAX14Iterator implements Iterator by precomputing every UAX #14 break
// position in text up front with uax14's bufio.SplitFunc-compatible line
// breaker, then answering Preceding via binary search.
type UAX14Iterator struct {
	breaks []int // byte offsets, ascending, each a legal break position
	length int
}

// NewUAX14Iterator scans text once for all legal break positions.
func NewUAX14Iterator(text string) *UAX14Iterator {
	it := &UAX14Iterator{length: len(text)}
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Split(uax14.NewLineWrap().SplitFunc())
	pos := 0
	for scanner.Scan() {
		pos += len(scanner.Bytes())
		it.breaks = append(it.breaks, pos)
	}
	return it
}

// Preceding returns the largest recorded break position <= byteIndex, or 0
// if byteIndex precedes every recorded break.
func (it *UAX14Iterator) Preceding(byteIndex int) int {
	i := sort.Search(len(it.breaks), func(i int) bool { return it.breaks[i] > byteIndex })
	if i == 0 {
		return 0
	}
	return it.breaks[i-1]
}
