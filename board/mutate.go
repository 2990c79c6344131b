package board

import (
	"fmt"

	"board/column"
)

// ReserveSpace pre-sizes every column's backing buffer to at least n rows,
// so ingesters can batch rows up to a caller-chosen size before the Board
// is frozen or shipped out (spec.md §5 "Memory").
func (b *Board) ReserveSpace(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n <= b.reserved {
		return
	}
	for _, key := range b.insertOrder {
		b.cols[key].Buffer().Reserve(n)
	}
	b.reserved = n
}

// Capacity returns the largest row count ReserveSpace has prepared for
// without a further reallocation.
func (b *Board) Capacity() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.reserved < b.nRows {
		return b.nRows
	}
	return b.reserved
}

// Limit truncates the Board to its first n rows (spec.md §4.2). A no-op if
// n >= NRows().
func (b *Board) Limit(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n >= b.nRows {
		return
	}
	if n < 0 {
		n = 0
	}
	for _, key := range b.insertOrder {
		b.cols[key].Limit(n)
	}
	b.rowValid = b.rowValid.Resize(n)
	b.nRows = n
}

// ReverseRows reverses every column's row order in place.
func (b *Board) ReverseRows() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, key := range b.insertOrder {
		b.cols[key].ReverseRows()
	}
	b.rowValid = reverseMask(b.rowValid)
}

func reverseMask(m column.Mask) column.Mask {
	n := m.Len()
	out := column.NewMask(n)
	for i := 0; i < n; i++ {
		if m.Get(i) {
			out.Set(n - 1 - i)
		}
	}
	return out
}

// Permute rewrites every column so row i holds what used to be at
// row order[i] (spec.md §4.7's "apply the permutation to every other
// column"). Used by the order package; exported so order need not reach
// into Board's column map directly.
func (b *Board) Permute(order []uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, key := range b.insertOrder {
		b.cols[key].Permute(order)
	}
	rv := column.NewMask(len(order))
	for dst, src := range order {
		if b.rowValid.Get(int(src)) {
			rv.Set(dst)
		}
	}
	b.rowValid = rv
}

// AppendRows grows the Board by nNew rows. For every existing column,
// provide is called with that column's name to obtain a same-typed Column
// holding exactly nNew new values (and their validity); its values are
// widening-appended via column.Column.AppendColumn. Returns the number of
// rows appended, or a negative column error code (spec.md §4.2 Append's
// "negative code for missing columns or type mismatches").
func (b *Board) AppendRows(nNew int, provide func(name string) (*column.Column, error)) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	type pending struct {
		col *column.Column
		src *column.Column
	}
	plan := make([]pending, 0, len(b.insertOrder))
	for _, key := range b.insertOrder {
		col := b.cols[key]
		src, err := provide(col.Name())
		if err != nil {
			return 0, fmt.Errorf("board: append: %w", err)
		}
		if src.Len() != nNew {
			return 0, fmt.Errorf("board: append: column %q supplied %d rows, expected %d", col.Name(), src.Len(), nNew)
		}
		plan = append(plan, pending{col: col, src: src})
	}

	for _, p := range plan {
		if _, code := p.col.AppendColumn(p.src); code != 0 {
			return 0, fmt.Errorf("board: append: column %q: widening error code %d", p.col.Name(), code)
		}
	}
	b.rowValid = b.rowValid.Resize(b.nRows + nNew)
	for i := 0; i < nNew; i++ {
		b.rowValid.Set(b.nRows + i)
	}
	b.nRows += nNew
	return nNew, nil
}
