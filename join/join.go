// Package join implements spec.md §4.8's sort-merge natural/equi-join,
// grounded on the original engine's jnatural.cpp: materialise each side's
// join column under its own filter mask, sort both ascending, then walk the
// two sorted arrays with a pair of cursors, emitting the cross product of
// every equal-key run.
package join

import (
	"fmt"
	"sort"
	"strings"

	"board/board"
	"board/column"
	"board/expr"
	"board/scanner"
)

// Projection is one output column of the join result: a caller-facing name,
// possibly qualified "R.x" / "S.x" (spec.md's column-name resolution rules).
type Projection struct {
	Name string // output column name
	Ref  string // "R.x", "S.x", or an unqualified "x"
}

// Join performs the equi-join of r and s on column joinCol (present, with
// widenable types, on both sides), restricted by the optional per-side
// predicates condR/condS, projecting the requested output columns
// (spec.md §4.8).
func Join(r, s *board.Board, joinCol string, condR, condS *expr.Tree, projections []Projection) (*board.Board, error) {
	rCol, ok := r.Column(joinCol)
	if !ok {
		return nil, fmt.Errorf("join: column %q missing from R", joinCol)
	}
	sCol, ok := s.Column(joinCol)
	if !ok {
		return nil, fmt.Errorf("join: column %q missing from S", joinCol)
	}
	if !joinTypesCompatible(rCol.Type(), sCol.Type()) {
		return nil, fmt.Errorf("join: column %q types incompatible (%s vs %s)", joinCol, rCol.Type(), sCol.Type())
	}

	mR, err := applyFilter(r, condR)
	if err != nil {
		return nil, fmt.Errorf("join: filtering R: %w", err)
	}
	mS, err := applyFilter(s, condS)
	if err != nil {
		return nil, fmt.Errorf("join: filtering S: %w", err)
	}

	rKeys, rOrder := materialiseJoinColumn(rCol, mR)
	sKeys, sOrder := materialiseJoinColumn(sCol, mS)

	sortByKey(rKeys, rOrder)
	sortByKey(sKeys, sOrder)

	pairs := sortMerge(rKeys, sKeys)

	schema := make([]board.ColumnSpec, len(projections))
	buffers := make([]*column.Buffer, len(projections))
	dicts := make(map[string]*column.Dictionary, len(projections))

	for i, p := range projections {
		side, col, err := resolveProjection(r, s, p.Ref)
		if err != nil {
			return nil, fmt.Errorf("join: projection %q: %w", p.Name, err)
		}
		out := column.New(p.Name, col.Type(), len(pairs))
		if col.Dictionary() != nil {
			out.SetDictionary(col.Dictionary())
		}
		for row, pr := range pairs {
			var origRow int
			if side == sideR {
				origRow = int(rOrder[pr.r])
			} else {
				origRow = int(sOrder[pr.s])
			}
			copyJoinValue(out, row, col, origRow)
		}
		schema[i] = board.ColumnSpec{Name: p.Name, Type: col.Type()}
		buffers[i] = out.Buffer()
		if out.Dictionary() != nil {
			dicts[p.Name] = out.Dictionary()
		}
	}

	return board.New(r.Name()+"_join_"+s.Name(), "", len(pairs), buffers, schema, dicts)
}

func joinTypesCompatible(a, b column.DataType) bool {
	if a == b {
		return true
	}
	if a.IsString() && b.IsString() {
		return true
	}
	return a.IsInteger() && b.IsInteger() || a.IsFloat() && b.IsFloat()
}

func applyFilter(b *board.Board, cond *expr.Tree) (column.Mask, error) {
	full := column.FullMask(b.NRows())
	if cond == nil {
		return full, nil
	}
	s := scanner.New(b, nil)
	return s.Evaluate(cond, full)
}

// joinKey holds one surviving row's join value, in whichever form its type
// needs for ordering (numeric or string).
type joinKey struct {
	num    float64
	str    string
	isText bool
}

func materialiseJoinColumn(col *column.Column, mask column.Mask) ([]joinKey, []uint32) {
	rows := mask.Ones()
	keys := make([]joinKey, len(rows))
	isText := col.Type().IsString()
	for i, r := range rows {
		if isText {
			keys[i] = joinKey{str: col.FormatValueRaw(int(r)), isText: true}
		} else {
			var buf [1]float64
			col.ReadFloat64(int(r), int(r)+1, buf[:])
			keys[i] = joinKey{num: buf[0]}
		}
	}
	return keys, rows
}

func sortByKey(keys []joinKey, order []uint32) {
	idx := make([]int, len(keys))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return lessKey(keys[idx[a]], keys[idx[b]]) })

	sortedKeys := make([]joinKey, len(keys))
	sortedOrder := make([]uint32, len(order))
	for newPos, oldPos := range idx {
		sortedKeys[newPos] = keys[oldPos]
		sortedOrder[newPos] = order[oldPos]
	}
	copy(keys, sortedKeys)
	copy(order, sortedOrder)
}

func lessKey(a, b joinKey) bool {
	if a.isText {
		return a.str < b.str
	}
	return a.num < b.num
}

func equalKey(a, b joinKey) bool {
	if a.isText {
		return a.str == b.str
	}
	return a.num == b.num
}

type pairIdx struct{ r, s int }

// sortMerge enumerates the cross product of every equal-key run between
// rKeys and sKeys (spec.md §4.8 step 4).
func sortMerge(rKeys, sKeys []joinKey) []pairIdx {
	var out []pairIdx
	i, j := 0, 0
	for i < len(rKeys) && j < len(sKeys) {
		switch {
		case lessKey(rKeys[i], sKeys[j]):
			i++
		case lessKey(sKeys[j], rKeys[i]):
			j++
		default:
			iEnd := i
			for iEnd < len(rKeys) && equalKey(rKeys[iEnd], rKeys[i]) {
				iEnd++
			}
			jEnd := j
			for jEnd < len(sKeys) && equalKey(sKeys[jEnd], sKeys[j]) {
				jEnd++
			}
			for a := i; a < iEnd; a++ {
				for b := j; b < jEnd; b++ {
					out = append(out, pairIdx{r: a, s: b})
				}
			}
			i, j = iEnd, jEnd
		}
	}
	return out
}

type joinSide int

const (
	sideR joinSide = iota
	sideS
)

// resolveProjection implements spec.md §4.8's column-name resolution: an
// "R.x"/"S.x" ref binds unambiguously; an unqualified ref binds to R if
// present, else S.
func resolveProjection(r, s *board.Board, ref string) (joinSide, *column.Column, error) {
	if strings.HasPrefix(ref, "R.") || strings.HasPrefix(ref, "r.") {
		name := ref[2:]
		c, ok := r.Column(name)
		if !ok {
			return 0, nil, fmt.Errorf("unknown R column %q", name)
		}
		return sideR, c, nil
	}
	if strings.HasPrefix(ref, "S.") || strings.HasPrefix(ref, "s.") {
		name := ref[2:]
		c, ok := s.Column(name)
		if !ok {
			return 0, nil, fmt.Errorf("unknown S column %q", name)
		}
		return sideS, c, nil
	}
	if c, ok := r.Column(ref); ok {
		return sideR, c, nil
	}
	if c, ok := s.Column(ref); ok {
		return sideS, c, nil
	}
	return 0, nil, fmt.Errorf("column %q not found on either side", ref)
}

func copyJoinValue(dst *column.Column, dstRow int, src *column.Column, srcRow int) {
	if !src.IsValid(srcRow) {
		dst.SetValid(dstRow, false)
		return
	}
	switch src.Type() {
	case column.Text:
		dst.Buffer().MutStrings()[dstRow] = src.Buffer().Strings()[srcRow]
	case column.Category:
		code, ok := dst.Dictionary().Lookup(src.FormatValueRaw(srcRow))
		if !ok {
			code = dst.Dictionary().Intern(src.FormatValueRaw(srcRow))
		}
		dst.Buffer().MutUint32()[dstRow] = code
	case column.Int8:
		dst.Buffer().MutInt8()[dstRow] = src.Buffer().Int8()[srcRow]
	case column.Int16:
		dst.Buffer().MutInt16()[dstRow] = src.Buffer().Int16()[srcRow]
	case column.Int32:
		dst.Buffer().MutInt32()[dstRow] = src.Buffer().Int32()[srcRow]
	case column.Int64:
		dst.Buffer().MutInt64()[dstRow] = src.Buffer().Int64()[srcRow]
	case column.Uint8:
		dst.Buffer().MutUint8()[dstRow] = src.Buffer().Uint8()[srcRow]
	case column.Uint16:
		dst.Buffer().MutUint16()[dstRow] = src.Buffer().Uint16()[srcRow]
	case column.Uint32:
		dst.Buffer().MutUint32()[dstRow] = src.Buffer().Uint32()[srcRow]
	case column.Uint64:
		dst.Buffer().MutUint64()[dstRow] = src.Buffer().Uint64()[srcRow]
	case column.Float32:
		dst.Buffer().MutFloat32()[dstRow] = src.Buffer().Float32()[srcRow]
	case column.Float64:
		dst.Buffer().MutFloat64()[dstRow] = src.Buffer().Float64()[srcRow]
	case column.Oid:
		dst.Buffer().MutOids()[dstRow] = src.Buffer().Oids()[srcRow]
	}
	dst.SetValid(dstRow, true)
}
