// Package board implements the in-memory columnar table described in
// spec.md §4.2: an ordered set of equal-length Columns, a row-validity
// bitmap, and an optional display order. Board itself only carries data
// model operations (construction, describe/dump/estimate, append/reorder/
// limit/reserveSpace, cursor); the query operators (scanner, projector,
// groupby, merge, order, join) operate ON a *Board from their own packages
// to keep the dependency graph acyclic — see engine for the facade that
// ties them together as spec.md §4.2 describes them.
package board

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"board/column"
)

// ColumnSpec describes one column of a Board under construction (spec.md
// §6 Board::new's "schema" parameter).
type ColumnSpec struct {
	Name        string
	Type        column.DataType
	Description string
}

// Board is an in-memory, columnar, typed table partition (GLOSSARY). It is
// governed by a read-write lock per spec.md §5: Describe/Dump/Estimate and
// every operator's read path take RLock; Append/Reorder/Limit/ReverseRows/
// Merge take Lock.
type Board struct {
	mu sync.RWMutex

	id      uuid.UUID
	name    string
	desc    string
	created time.Time

	cols         map[string]*column.Column // keyed by lower-cased name
	insertOrder  []string                  // lower-cased keys, insertion order
	displayOrder []string                  // optional; see Board invariants below

	nRows    int
	rowValid column.Mask
	reserved int
}

// New constructs a Board from a schema and a parallel slice of already
// materialised buffers (spec.md §6 Board::new). It fails fast (returns a
// non-nil error, no Board) on any schema or shape error: mismatched
// lengths, duplicate names (case-insensitive), or a non-empty buffer whose
// length differs from rowCount.
func New(name, description string, rowCount int, buffers []*column.Buffer, schema []ColumnSpec, dicts map[string]*column.Dictionary) (*Board, error) {
	if rowCount < 0 {
		return nil, errors.New("board: rowCount must be >= 0")
	}
	if len(buffers) != len(schema) {
		return nil, fmt.Errorf("board: %d buffers but %d schema entries", len(buffers), len(schema))
	}

	b := &Board{
		id:       uuid.New(),
		name:     name,
		desc:     description,
		created:  time.Now(),
		cols:     make(map[string]*column.Column, len(schema)),
		nRows:    rowCount,
		rowValid: column.FullMask(rowCount),
	}

	for i, spec := range schema {
		key := strings.ToLower(spec.Name)
		if _, dup := b.cols[key]; dup {
			return nil, fmt.Errorf("board: duplicate column name %q", spec.Name)
		}
		if buffers[i].Len() != rowCount && buffers[i].Len() != 0 {
			return nil, fmt.Errorf("board: column %q has %d rows, board declares %d", spec.Name, buffers[i].Len(), rowCount)
		}
		var dict *column.Dictionary
		if dicts != nil {
			dict = dicts[spec.Name]
		}
		col := columnFromBuffer(spec, buffers[i], dict, rowCount)
		b.cols[key] = col
		b.insertOrder = append(b.insertOrder, key)
	}
	return b, nil
}

// columnFromBuffer wraps an already-built Buffer into a fresh Column, used
// only by New since column.New allocates its own empty Buffer otherwise.
func columnFromBuffer(spec ColumnSpec, buf *column.Buffer, dict *column.Dictionary, rowCount int) *column.Column {
	col := column.New(spec.Name, spec.Type, 0)
	col.SetDescription(spec.Description)
	return col.ReplaceBuffer(buf, dict, rowCount)
}

// Empty returns a zero-row Board with the given schema, used by operators
// for the "empty answer" case (spec.md §7 propagation policy).
func Empty(name, description string, schema []ColumnSpec) *Board {
	b := &Board{
		id:      uuid.New(),
		name:    name,
		desc:    description,
		created: time.Now(),
		cols:    make(map[string]*column.Column, len(schema)),
	}
	for _, spec := range schema {
		key := strings.ToLower(spec.Name)
		col := column.New(spec.Name, spec.Type, 0)
		col.SetDescription(spec.Description)
		b.cols[key] = col
		b.insertOrder = append(b.insertOrder, key)
	}
	return b
}

func (b *Board) ID() uuid.UUID       { return b.id }
func (b *Board) Name() string        { return b.name }
func (b *Board) Description() string { return b.desc }
func (b *Board) CreatedAt() time.Time { return b.created }
func (b *Board) NRows() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.nRows
}

// Column looks up a column by name, case-insensitively (spec.md §8
// "getColumn(\"Foo\") == getColumn(\"FOO\")").
func (b *Board) Column(name string) (*column.Column, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	c, ok := b.cols[strings.ToLower(name)]
	return c, ok
}

// ColumnNames returns every column name in the Board's effective output
// order: the display order if one is set (extended with any leftover
// columns sorted case-insensitively, spec.md §9), else insertion order
// sorted case-insensitively for determinism.
func (b *Board) ColumnNames() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.effectiveOrderLocked()
}

func (b *Board) effectiveOrderLocked() []string {
	if len(b.displayOrder) == 0 {
		keys := append([]string(nil), b.insertOrder...)
		sort.Strings(keys)
		return namesFromKeys(b, keys)
	}
	seen := make(map[string]bool, len(b.displayOrder))
	out := make([]string, 0, len(b.cols))
	for _, key := range b.displayOrder {
		if c, ok := b.cols[key]; ok {
			out = append(out, c.Name())
			seen[key] = true
		}
	}
	var leftover []string
	for _, key := range b.insertOrder {
		if !seen[key] {
			leftover = append(leftover, key)
		}
	}
	sort.Strings(leftover)
	out = append(out, namesFromKeys(b, leftover)...)
	return out
}

func namesFromKeys(b *Board, keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = b.cols[k].Name()
	}
	return out
}

// SetDisplayOrder installs a preferred output order (spec.md §3's Board
// invariant: it must cover exactly the column set, or be a prefix of it).
// Column names not present in the Board are an error.
func (b *Board) SetDisplayOrder(names []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	keys := make([]string, len(names))
	seen := make(map[string]bool, len(names))
	for i, n := range names {
		key := strings.ToLower(n)
		if _, ok := b.cols[key]; !ok {
			return fmt.Errorf("board: display order references unknown column %q", n)
		}
		if seen[key] {
			return fmt.Errorf("board: display order repeats column %q", n)
		}
		seen[key] = true
		keys[i] = key
	}
	if len(keys) > len(b.cols) {
		return fmt.Errorf("board: display order has more entries than columns")
	}
	b.displayOrder = keys
	return nil
}

// RowValid reports whether row i itself is considered present (distinct
// from any single column's validity, spec.md §3).
func (b *Board) RowValid(i int) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rowValid.Get(i)
}

// Columns returns every Column in the Board in unspecified order; callers
// that need a stable order should use ColumnNames + Column. This is the
// accessor operator packages (scanner/projector/groupby/merge/order/join)
// use to read a Board's columns without Board depending back on them.
func (b *Board) Columns() []*column.Column {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*column.Column, 0, len(b.cols))
	for _, key := range b.insertOrder {
		out = append(out, b.cols[key])
	}
	return out
}

// RLock/RUnlock/Lock/Unlock expose spec.md §5's locking contract directly
// to operator packages that need to hold the lock across a multi-step
// read (e.g. Scanner then Projector) or write (e.g. Merge).
func (b *Board) RLock()   { b.mu.RLock() }
func (b *Board) RUnlock() { b.mu.RUnlock() }
func (b *Board) Lock()    { b.mu.Lock() }
func (b *Board) Unlock()  { b.mu.Unlock() }
