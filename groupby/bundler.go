package groupby

import (
	"sort"

	"board/column"
)

// Bundler is the external collaborator groupbyA delegates to (spec.md
// §4.5, §6): given the materialised key columns, return a sequence of
// distinct key tuples in the order that must match the value columns'
// implied sort order, each with the list of input row indices belonging to
// that group.
type Bundler interface {
	Bundle(keyCols []*column.Column, n int) ([]Group, error)
}

// Group is one distinct key tuple's row membership, as produced by a Bundler.
type Group struct {
	Rows []uint32
}

// DefaultBundler groups rows by their key tuple's canonical textual form
// and orders groups lexicographically by that text, matching spec.md's
// "assumed to sort by the keys and segment equal runs". With no key
// columns at all, every row of the working set folds into a single group
// (the degenerate "aggregate the whole board" case).
type DefaultBundler struct{}

func (DefaultBundler) Bundle(keyCols []*column.Column, n int) ([]Group, error) {
	if len(keyCols) == 0 {
		rows := make([]uint32, n)
		for i := range rows {
			rows[i] = uint32(i)
		}
		return []Group{{Rows: rows}}, nil
	}

	byKey := make(map[string][]uint32)
	var order []string
	for row := 0; row < n; row++ {
		k := groupKeyString(keyCols, row)
		if _, ok := byKey[k]; !ok {
			order = append(order, k)
		}
		byKey[k] = append(byKey[k], uint32(row))
	}
	sort.Strings(order)

	groups := make([]Group, len(order))
	for i, k := range order {
		groups[i] = Group{Rows: byKey[k]}
	}
	return groups, nil
}
