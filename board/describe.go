package board

import (
	"fmt"
	"io"
	"strings"
)

// Describe emits name, description, row count, and one line per column with
// its type and dictionary size (if applicable), preferring display order
// when complete (spec.md §4.2).
func (b *Board) Describe(w io.Writer) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if _, err := fmt.Fprintf(w, "board %q: %s\n", b.name, b.desc); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "rows: %d\n", b.nRows); err != nil {
		return err
	}
	for _, name := range b.effectiveOrderLocked() {
		c := b.cols[strings.ToLower(name)]
		line := fmt.Sprintf("  %s %s", name, c.Type())
		if d := c.Dictionary(); d != nil {
			line += fmt.Sprintf(" (dict size %d)", d.Size())
		}
		if c.Description() != "" {
			line += ": " + c.Description()
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

