// Package boardindex is the optional index-provider collaborator spec.md
// §6 describes: "if present, Scanner may ask it for a pre-computed mask
// instead of scanning." It implements board.IndexProvider directly (that
// minimal method-shape interface lives in board itself so board need not
// import this package); boardindex additionally offers a richer Mask method
// operator packages can type-assert for when they want the full bitmap
// rather than just a row-count estimate.
package boardindex

import (
	"strings"
	"sync"

	"board/column"
)

// MaskProvider is the richer collaborator interface: in addition to
// board.IndexProvider's cheap bound, it can hand back a pre-computed row
// mask for a predicate key, letting Scanner skip the scan entirely.
type MaskProvider interface {
	Mask(predicateKey string) (column.Mask, bool)
}

// Registry is a simple in-memory index keyed by predicate string (e.g. a
// canonicalised "column op value" form), holding both the pre-computed mask
// and the cheap bound derived from it. It satisfies both board.IndexProvider
// and MaskProvider.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]column.Mask
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]column.Mask)}
}

// Put installs (or replaces) the pre-computed mask for predicateKey.
// Keys are matched case-insensitively, mirroring Board's column lookup.
func (r *Registry) Put(predicateKey string, mask column.Mask) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[strings.ToLower(predicateKey)] = mask
}

// Invalidate removes a previously installed entry (spec.md §4.7's
// "unload/invalidate any per-column indexes" step before a reorder).
func (r *Registry) Invalidate(predicateKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, strings.ToLower(predicateKey))
}

// InvalidateAll drops every entry, used when a reorder or append changes
// row positions out from under every index at once.
func (r *Registry) InvalidateAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]column.Mask)
}

// Mask implements MaskProvider.
func (r *Registry) Mask(predicateKey string) (column.Mask, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.entries[strings.ToLower(predicateKey)]
	return m, ok
}

// Estimate implements board.IndexProvider by deriving a bound from the
// pre-computed mask's popcount: since the mask is exact, nmin == nmax.
func (r *Registry) Estimate(predicateKey string) (nmin, nmax int, ok bool) {
	m, found := r.Mask(predicateKey)
	if !found {
		return 0, 0, false
	}
	n := m.Count()
	return n, n, true
}
