package board

// IndexProvider is the optional index-provider collaborator (spec.md §6):
// if present, Estimate (and Scanner, via the engine facade) may ask it for
// a cheap bound or a pre-computed mask instead of scanning. See
// internal/boardindex for a concrete implementation; Board only needs
// the method shape here to avoid importing that package (kept separate so
// a future bitmap index implementation doesn't need to touch board).
type IndexProvider interface {
	// Estimate returns a cheap (nmin, nmax) bound on how many rows could
	// satisfy a predicate named by predicateKey, or ok=false if it has no
	// information about that predicate.
	Estimate(predicateKey string) (nmin, nmax int, ok bool)
}

// Estimate returns a cheap lower/upper bound on the qualifying row count
// for the given predicate key (spec.md §4.2). Defaults to (0, nRows) when
// no index provider is installed or it has no information.
func (b *Board) Estimate(idx IndexProvider, predicateKey string) (nmin, nmax int) {
	b.mu.RLock()
	n := b.nRows
	b.mu.RUnlock()
	if idx == nil {
		return 0, n
	}
	if lo, hi, ok := idx.Estimate(predicateKey); ok {
		return lo, hi
	}
	return 0, n
}
