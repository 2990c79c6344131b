// Package merge implements the Merger described in spec.md §4.6: folding
// two partially-aggregated Boards together in place, either row-aligned or
// via a k-way key-ordered merge. Only separable aggregators (CNT/SUM/MIN/
// MAX) are supported; anything else is rejected as non-separable.
package merge

import (
	"fmt"

	"board/board"
	"board/column"
)

// ValueAgg is one of the separable aggregators merge can fold in place.
type ValueAgg int

const (
	ValueCount ValueAgg = iota
	ValueSum
	ValueMin
	ValueMax
)

// Role classifies one column of the shared select clause (spec.md §4.6):
// a key column participates in the ordered merge unchanged; a value column
// is folded with ValueAgg when two rows' keys match.
type Role struct {
	Name  string
	IsKey bool
	Agg   ValueAgg
}

// Merge combines other into self in place, per selectClause (spec.md §4.6).
// Preconditions (same column names in clause order, same types, both in
// memory) are validated and returned as an error rather than assumed.
func Merge(self, other *board.Board, clause []Role) error {
	if err := checkPreconditions(self, other, clause); err != nil {
		return err
	}

	if rowsIdentical(self, other, clause) {
		foldInPlace(self, other, clause)
		return nil
	}

	merged, err := kWayMerge(self, other, clause)
	if err != nil {
		return err
	}
	self.ReplaceContents(merged)
	return nil
}

func checkPreconditions(self, other *board.Board, clause []Role) error {
	for _, r := range clause {
		sc, ok := self.Column(r.Name)
		if !ok {
			return fmt.Errorf("merge: self missing column %q", r.Name)
		}
		oc, ok := other.Column(r.Name)
		if !ok {
			return fmt.Errorf("merge: other missing column %q", r.Name)
		}
		if sc.Type() != oc.Type() {
			return fmt.Errorf("merge: column %q type mismatch (%s vs %s)", r.Name, sc.Type(), oc.Type())
		}
		if !r.IsKey && (r.Agg < ValueCount || r.Agg > ValueMax) {
			return fmt.Errorf("merge: column %q: aggregator %d is not separable", r.Name, r.Agg)
		}
	}
	return nil
}

// rowsIdentical reports whether self and other have the same row count and
// identical key columns row-by-row (spec.md's fast path).
func rowsIdentical(self, other *board.Board, clause []Role) bool {
	if self.NRows() != other.NRows() {
		return false
	}
	for _, r := range clause {
		if !r.IsKey {
			continue
		}
		sc, _ := self.Column(r.Name)
		oc, _ := other.Column(r.Name)
		for i := 0; i < self.NRows(); i++ {
			if !rowEqualCrossColumn(sc, i, oc, i) {
				return false
			}
		}
	}
	return true
}

func rowEqualCrossColumn(a *column.Column, i int, b *column.Column, j int) bool {
	if a.IsValid(i) != b.IsValid(j) {
		return false
	}
	if !a.IsValid(i) {
		return true
	}
	return a.FormatValue(i) == b.FormatValue(j)
}

// foldInPlace implements the row-aligned fast path: self[v][i] <-
// agg(self[v][i], other[v][i]) for every value column, row by row.
func foldInPlace(self, other *board.Board, clause []Role) {
	n := self.NRows()
	for _, r := range clause {
		if r.IsKey {
			continue
		}
		sc, _ := self.Column(r.Name)
		oc, _ := other.Column(r.Name)
		for i := 0; i < n; i++ {
			foldValue(sc, i, oc, i, r.Agg)
		}
	}
}

// foldValue applies agg to self's row i in place using other's row j as the
// second operand, per spec.md's "self[v][i] <- aggregator(self[v][i], other[v][i])".
func foldValue(self *column.Column, i int, other *column.Column, j int, agg ValueAgg) {
	if !other.IsValid(j) {
		return
	}
	if !self.IsValid(i) {
		copyValueAt(self, i, other, j)
		return
	}
	sv := readFloat(self, i)
	ov := readFloat(other, j)
	var out float64
	switch agg {
	case ValueCount, ValueSum:
		out = sv + ov
	case ValueMin:
		out = sv
		if ov < sv {
			out = ov
		}
	case ValueMax:
		out = sv
		if ov > sv {
			out = ov
		}
	}
	writeFloat(self, i, out)
}

func readFloat(c *column.Column, row int) float64 {
	var buf [1]float64
	c.ReadFloat64(row, row+1, buf[:])
	return buf[0]
}

func writeFloat(c *column.Column, row int, v float64) {
	switch c.Type() {
	case column.Int8:
		c.Buffer().MutInt8()[row] = int8(v)
	case column.Int16:
		c.Buffer().MutInt16()[row] = int16(v)
	case column.Int32:
		c.Buffer().MutInt32()[row] = int32(v)
	case column.Int64:
		c.Buffer().MutInt64()[row] = int64(v)
	case column.Uint8:
		c.Buffer().MutUint8()[row] = uint8(v)
	case column.Uint16:
		c.Buffer().MutUint16()[row] = uint16(v)
	case column.Uint32:
		c.Buffer().MutUint32()[row] = uint32(v)
	case column.Uint64:
		c.Buffer().MutUint64()[row] = uint64(v)
	case column.Float32:
		c.Buffer().MutFloat32()[row] = float32(v)
	case column.Float64:
		c.Buffer().MutFloat64()[row] = v
	}
	c.SetValid(row, true)
}

func copyValueAt(dst *column.Column, dstRow int, src *column.Column, srcRow int) {
	writeFloat(dst, dstRow, readFloat(src, srcRow))
}
