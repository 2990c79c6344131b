// Package order implements spec.md §4.7's segmented multi-key stable sort
// and its argument-less heuristic fallback. It imports board (not the
// reverse) like every other operator package.
package order

import (
	"fmt"
	"sort"

	"board/board"
	"board/column"
)

// Direction is a sort direction for one ordering key.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// Key names one ordering key and its direction.
type Key struct {
	Column    string
	Direction Direction
}

// OrderBy performs spec.md §4.7's reorder(keys, directions): a segmented
// stable sort, one key at a time, each pass subdividing the previous pass's
// equal-value runs. After the last key, the resulting permutation is
// applied to every column (key and non-key alike) via Board.Permute.
func OrderBy(b *board.Board, keys []Key) error {
	if len(keys) == 0 {
		return nil
	}
	cols := make([]*column.Column, len(keys))
	for i, k := range keys {
		c, ok := b.Column(k.Column)
		if !ok {
			return fmt.Errorf("order: unknown column %q", k.Column)
		}
		cols[i] = c
	}

	n := b.NRows()
	perm := make([]uint32, n)
	for i := range perm {
		perm[i] = uint32(i)
	}
	segments := []int{0, n} // segment start offsets, including the sentinel end

	for ki, col := range cols {
		segments = sortWithinSegments(perm, segments, col, keys[ki].Direction == Descending)
	}

	b.Permute(perm)
	return nil
}

// sortWithinSegments stably sorts perm within each [segments[i], segments[i+1])
// run by col's value at that (already-permuted) position, descending when
// desc is set, then returns the new, possibly finer, segment boundaries
// induced by col's distinct values (spec.md's "further subdividing segments
// when the new key differs").
func sortWithinSegments(perm []uint32, segments []int, col *column.Column, desc bool) []int {
	var next []int
	for s := 0; s < len(segments)-1; s++ {
		lo, hi := segments[s], segments[s+1]
		run := perm[lo:hi]
		sort.SliceStable(run, func(i, j int) bool {
			if desc {
				return col.Less(int(run[j]), int(run[i]))
			}
			return col.Less(int(run[i]), int(run[j]))
		})
		next = append(next, subdivide(perm, lo, hi, col)...)
	}
	next = append(next, segments[len(segments)-1])
	return dedupe(next)
}

// subdivide walks an already-sorted [lo,hi) run and returns the offsets
// where col's value changes (a new sub-segment begins), including lo itself.
func subdivide(perm []uint32, lo, hi int, col *column.Column) []int {
	if lo >= hi {
		return nil
	}
	out := []int{lo}
	for i := lo + 1; i < hi; i++ {
		if !col.Equal(int(perm[i-1]), int(perm[i])) {
			out = append(out, i)
		}
	}
	return out
}

func dedupe(offsets []int) []int {
	out := offsets[:0:0]
	seen := -1
	for _, o := range offsets {
		if o != seen {
			out = append(out, o)
			seen = o
		}
	}
	return out
}

// Reorder implements spec.md §4.7's argument-less reorder(): sort by every
// integer column whose value range exceeds zero, ascending, narrowest
// range first (the heuristic that maximises cache friendliness).
func Reorder(b *board.Board) error {
	type candidate struct {
		name  string
		width float64
	}
	var cands []candidate
	for _, c := range b.Columns() {
		width := c.RangeWidth()
		if width > 0 {
			cands = append(cands, candidate{name: c.Name(), width: width})
		}
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].width < cands[j].width })

	keys := make([]Key, len(cands))
	for i, c := range cands {
		keys[i] = Key{Column: c.name, Direction: Ascending}
	}
	return OrderBy(b, keys)
}
