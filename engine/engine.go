// Package engine is the facade spec.md §4.2 describes Select/GroupBy/
// Merge/OrderBy/Join as Board operations: it ties together board, scanner,
// projector, groupby, merge, order and join as free functions so none of
// those packages has to import another, keeping the dependency graph
// acyclic (see board's package doc).
package engine

import (
	"fmt"

	"board/board"
	"board/column"
	"board/expr"
	"board/groupby"
	"board/join"
	"board/merge"
	"board/order"
	"board/projector"
	"board/scanner"
)

// Select evaluates where against b (nil means "every row"), then projects
// terms under the resulting mask, producing a new Board (spec.md §4.3+4.4
// chained as a typical query does).
func Select(b *board.Board, idx board.IndexProvider, where *expr.Tree, terms []projector.Term) (*board.Board, error) {
	s := scanner.New(b, idx)
	mask := column.FullMask(b.NRows())
	if where != nil {
		var err error
		mask, err = s.Evaluate(where, mask)
		if err != nil {
			return nil, fmt.Errorf("engine: select: %w", err)
		}
	}
	return projector.Project(b, s, terms, mask)
}

// GroupBy runs groupbyA then groupbyC back to back (spec.md §4.5); callers
// doing distributed partial aggregation should call groupbyA/groupbyC (via
// the groupby package directly) and Merge the partials themselves instead.
func GroupBy(b *board.Board, clauseA []groupby.Term, clauseC []projector.Term, bundler groupby.Bundler) (*board.Board, error) {
	partial, err := groupby.GroupByA(b, scanner.New(b, nil), clauseA, bundler)
	if err != nil {
		return nil, fmt.Errorf("engine: groupby: %w", err)
	}
	s := scanner.New(partial, nil)
	return groupby.GroupByC(partial, s, clauseC)
}

// Merge folds other into self in place (spec.md §4.6).
func Merge(self, other *board.Board, clause []merge.Role) error {
	return merge.Merge(self, other, clause)
}

// OrderBy performs the segmented multi-key stable sort in place (spec.md §4.7).
func OrderBy(b *board.Board, keys []order.Key) error {
	return order.OrderBy(b, keys)
}

// Reorder performs the argument-less heuristic reorder in place (spec.md §4.7).
func Reorder(b *board.Board) error {
	return order.Reorder(b)
}

// Join performs the sort-merge equi-join described in spec.md §4.8.
func Join(r, s *board.Board, joinCol string, condR, condS *expr.Tree, projections []join.Projection) (*board.Board, error) {
	return join.Join(r, s, joinCol, condR, condS, projections)
}

// Append implements spec.md §4.2's append(selectClause, sourceBoard, mask):
// for each of dest's columns, terms supplies how to obtain its new values
// from source — a bare variable, the count(*) placeholder, or an
// arithmetic expression evaluated under mask. terms must name every column
// of dest (by Term.Name) exactly once.
func Append(dest *board.Board, terms []projector.Term, source *board.Board, mask column.Mask) (int, error) {
	projected, err := projector.Project(source, scanner.New(source, nil), terms, mask)
	if err != nil {
		return 0, fmt.Errorf("engine: append: %w", err)
	}

	return dest.AppendRows(projected.NRows(), func(name string) (*column.Column, error) {
		c, ok := projected.Column(name)
		if !ok {
			return nil, fmt.Errorf("engine: append: select clause has no term for column %q", name)
		}
		return c, nil
	})
}
