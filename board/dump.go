package board

import (
	"fmt"
	"io"
	"strings"

	"board/column"
)

// Dump emits up to count rows starting at offset, honouring the display
// order, one row per line, columns separated by delimiter (spec.md §4.2).
// A negative count emits every row from offset to the end. Returns 0 on success, column.ErrMissingBuffer (-3) if any named display
// column is no longer in memory, column.ErrWriterFailure (-4) on writer
// failure.
func (b *Board) Dump(w io.Writer, offset, count int, delimiter string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := b.effectiveOrderLocked()
	cols := make([]*column.Column, len(names))
	for i, n := range names {
		c, ok := b.cols[strings.ToLower(n)]
		if !ok {
			return -3
		}
		cols[i] = c
	}

	end := offset + count
	if count < 0 || end > b.nRows {
		end = b.nRows
	}
	for row := offset; row < end; row++ {
		fields := make([]string, len(cols))
		for i, c := range cols {
			fields[i] = c.FormatValue(row)
		}
		if _, err := fmt.Fprintln(w, strings.Join(fields, delimiter)); err != nil {
			return -4
		}
	}
	return 0
}
