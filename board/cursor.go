package board

import (
	"fmt"
	"io"
	"strings"

	"board/column"
)

// Cursor iterates the rows of a Board one at a time (spec.md §4.9). It
// holds no lock of its own; callers that need a consistent view across a
// Fetch loop should bracket it with Board.RLock/RUnlock.
type Cursor struct {
	b    *Board
	row  int
	cols map[string]*column.Column
}

// NewCursor returns a Cursor positioned before the first row.
func NewCursor(b *Board) *Cursor {
	return &Cursor{b: b, row: -1, cols: b.columnsByKey()}
}

func (b *Board) columnsByKey() map[string]*column.Column {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]*column.Column, len(b.cols))
	for k, c := range b.cols {
		out[k] = c
	}
	return out
}

// Fetch advances the cursor to the next row and reports whether one was
// available (spec.md's zero-argument "fetch()").
func (cur *Cursor) Fetch() bool {
	if cur.row+1 >= cur.b.NRows() {
		return false
	}
	cur.row++
	return true
}

// FetchAt seeks the cursor directly to rowIndex (spec.md's "fetch(rowIndex)"),
// reporting whether it is within range.
func (cur *Cursor) FetchAt(rowIndex int) bool {
	if rowIndex < 0 || rowIndex >= cur.b.NRows() {
		return false
	}
	cur.row = rowIndex
	return true
}

// Row returns the cursor's current row index, or -1 before the first Fetch.
func (cur *Cursor) Row() int { return cur.row }

// Valid reports whether the current row is marked present in the Board's
// row-validity mask.
func (cur *Cursor) Valid() bool {
	if cur.row < 0 {
		return false
	}
	return cur.b.RowValid(cur.row)
}

// GetColumnAsInt64 widens the named column's current-row value to int64
// (spec.md's "getColumnAsX"); ok is false if the column is missing or
// cannot widen to int64.
func (cur *Cursor) GetColumnAsInt64(name string) (v int64, ok bool) {
	c, found := cur.column(name)
	if !found {
		return 0, false
	}
	var buf [1]int64
	n, code := c.ReadInt64(cur.row, cur.row+1, buf[:])
	if code != 0 || n != 1 {
		return 0, false
	}
	return buf[0], true
}

// GetColumnAsUint64 is GetColumnAsInt64's unsigned counterpart.
func (cur *Cursor) GetColumnAsUint64(name string) (v uint64, ok bool) {
	c, found := cur.column(name)
	if !found {
		return 0, false
	}
	var buf [1]uint64
	n, code := c.ReadUint64(cur.row, cur.row+1, buf[:])
	if code != 0 || n != 1 {
		return 0, false
	}
	return buf[0], true
}

// GetColumnAsFloat64 widens the named column's current-row value to float64.
func (cur *Cursor) GetColumnAsFloat64(name string) (v float64, ok bool) {
	c, found := cur.column(name)
	if !found {
		return 0, false
	}
	var buf [1]float64
	n, code := c.ReadFloat64(cur.row, cur.row+1, buf[:])
	if code != 0 || n != 1 {
		return 0, false
	}
	return buf[0], true
}

// GetColumnAsString widens the named column's current-row value to its raw
// textual form (always succeeds for a present column, per Table 1).
func (cur *Cursor) GetColumnAsString(name string) (v string, ok bool) {
	c, found := cur.column(name)
	if !found {
		return "", false
	}
	return c.FormatValueRaw(cur.row), true
}

func (cur *Cursor) column(name string) (*column.Column, bool) {
	c, ok := cur.cols[strings.ToLower(name)]
	return c, ok
}

// Dump writes the current row in display order, one field per column,
// separated by delimiter (spec.md §4.9's cursor-scoped "dump").
func (cur *Cursor) Dump(w io.Writer, delimiter string) error {
	if cur.row < 0 {
		return fmt.Errorf("board: cursor: dump called before fetch")
	}
	names := cur.b.ColumnNames()
	fields := make([]string, len(names))
	for i, name := range names {
		c, ok := cur.column(name)
		if !ok {
			return fmt.Errorf("board: cursor: column %q missing", name)
		}
		fields[i] = c.FormatValue(cur.row)
	}
	_, err := fmt.Fprintln(w, strings.Join(fields, delimiter))
	return err
}
