package board

// ReplaceContents swaps b's column set, row count and display order for
// src's, in place, preserving b's identity (ID/Name/Description/CreatedAt).
// This is the primitive spec.md §4.6's "combines...into self, in place"
// Merge contract is built on, since a k-way merge can change the row count
// and Board's fixed-length buffers can't be grown column-by-column without
// rebuilding the whole set.
func (b *Board) ReplaceContents(src *Board) {
	src.mu.RLock()
	cols := src.cols
	insertOrder := src.insertOrder
	displayOrder := src.displayOrder
	nRows := src.nRows
	rowValid := src.rowValid
	src.mu.RUnlock()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.cols = cols
	b.insertOrder = insertOrder
	b.displayOrder = displayOrder
	b.nRows = nRows
	b.rowValid = rowValid
	b.reserved = nRows
}
