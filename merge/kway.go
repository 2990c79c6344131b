package merge

import (
	"board/board"
	"board/column"
)

// kWayMerge walks self and other together in key-sorted order (spec.md
// §4.6): on matching keys it folds values and emits one row; otherwise it
// emits the smaller key's row unchanged. Both sides are assumed already
// sorted in key order, matching the Bundler's output order from groupbyA.
// The generic (n keys / m values) algorithm is used uniformly; spec.md's
// per-arity specialisations are a performance concern this port does not
// reproduce (see DESIGN.md).
func kWayMerge(self, other *board.Board, clause []Role) (*board.Board, error) {
	selfCols := make([]*column.Column, len(clause))
	otherCols := make([]*column.Column, len(clause))
	for i, r := range clause {
		selfCols[i], _ = self.Column(r.Name)
		otherCols[i], _ = other.Column(r.Name)
	}

	nSelf, nOther := self.NRows(), other.NRows()
	outRows := make([]rowSource, 0, nSelf+nOther)

	i, j := 0, 0
	for i < nSelf && j < nOther {
		cmp := compareKeys(selfCols, clause, i, otherCols, j)
		switch {
		case cmp == 0:
			outRows = append(outRows, rowSource{side: sideBoth, i: i, j: j})
			i++
			j++
		case cmp < 0:
			outRows = append(outRows, rowSource{side: sideSelf, i: i})
			i++
		default:
			outRows = append(outRows, rowSource{side: sideOther, j: j})
			j++
		}
	}
	for ; i < nSelf; i++ {
		outRows = append(outRows, rowSource{side: sideSelf, i: i})
	}
	for ; j < nOther; j++ {
		outRows = append(outRows, rowSource{side: sideOther, j: j})
	}

	n := len(outRows)
	schema := make([]board.ColumnSpec, len(clause))
	buffers := make([]*column.Buffer, len(clause))
	dicts := make(map[string]*column.Dictionary, len(clause))

	for ci, r := range clause {
		sc := selfCols[ci]
		out := column.New(r.Name, sc.Type(), n)
		if sc.Dictionary() != nil {
			out.SetDictionary(sc.Dictionary())
		}
		for row, src := range outRows {
			switch src.side {
			case sideSelf:
				copyKeyOrValue(out, row, sc, src.i)
			case sideOther:
				copyKeyOrValue(out, row, otherCols[ci], src.j)
			case sideBoth:
				if r.IsKey {
					copyKeyOrValue(out, row, sc, src.i)
				} else {
					copyKeyOrValue(out, row, sc, src.i)
					foldValue(out, row, otherCols[ci], src.j, r.Agg)
				}
			}
		}
		schema[ci] = board.ColumnSpec{Name: r.Name, Type: sc.Type()}
		buffers[ci] = out.Buffer()
		if out.Dictionary() != nil {
			dicts[r.Name] = out.Dictionary()
		}
	}

	return board.New(self.Name(), self.Description(), n, buffers, schema, dicts)
}

type side int

const (
	sideSelf side = iota
	sideOther
	sideBoth
)

type rowSource struct {
	side side
	i, j int
}

// compareKeys compares self's row i to other's row j across every key
// column in clause order, returning -1/0/1 (spec.md's lexicographic order,
// matching the Bundler's).
func compareKeys(selfCols []*column.Column, clause []Role, i int, otherCols []*column.Column, j int) int {
	for idx, r := range clause {
		if !r.IsKey {
			continue
		}
		a, b := selfCols[idx], otherCols[idx]
		av, bv := a.FormatValue(i), b.FormatValue(j)
		if av == bv {
			continue
		}
		if av < bv {
			return -1
		}
		return 1
	}
	return 0
}

func copyKeyOrValue(dst *column.Column, dstRow int, src *column.Column, srcRow int) {
	if !src.IsValid(srcRow) {
		dst.SetValid(dstRow, false)
		return
	}
	switch src.Type() {
	case column.Text, column.Category:
		writeString(dst, dstRow, src, srcRow)
	default:
		writeFloat(dst, dstRow, readFloat(src, srcRow))
	}
}

func writeString(dst *column.Column, dstRow int, src *column.Column, srcRow int) {
	if dst.Type() == column.Category {
		code, ok := dst.Dictionary().Lookup(src.FormatValueRaw(srcRow))
		if !ok {
			code = dst.Dictionary().Intern(src.FormatValueRaw(srcRow))
		}
		dst.Buffer().MutUint32()[dstRow] = code
	} else {
		dst.Buffer().MutStrings()[dstRow] = src.FormatValueRaw(srcRow)
	}
	dst.SetValid(dstRow, true)
}
