// Package groupby implements the two-phase GroupBy engine described in
// spec.md §4.5: groupbyA (partial aggregation) and groupbyC (final
// expressions). Splitting the two permits distributed partial aggregation:
// groupbyA runs per-partition, partials are folded together by merge, and
// groupbyC runs once at the end.
package groupby

import (
	"fmt"
	"strings"

	"board/board"
	"board/column"
	"board/expr"
	"board/projector"
	"board/scanner"
)

// Agg names one of the fixed aggregator kinds (spec.md §4.5).
type Agg int

const (
	AggCountStar Agg = iota
	AggCount
	AggSum
	AggMin
	AggMax
	AggAvg
	AggVar
	AggStdev
	AggMedian
	AggDistinct
	AggConcat
)

// Term is one top-level entry of a group-by select clause: either a bare
// key (Agg is ignored, Arg names the source column) or an aggregate pair
// (Agg plus a scalar expression over the source board).
type Term struct {
	Name string // output column name
	IsKey bool
	Arg   string    // key's source column name
	Agg   Agg       // aggregate kind, meaningless when IsKey
	Expr  *expr.Tree // aggregate argument; nil for CNT(*)
}

// Key builds a plain grouping-key term.
func Key(column string) Term { return Term{Name: column, IsKey: true, Arg: column} }

// Aggregate builds an aggregate term named name, computing agg over expr
// (pass nil expr for CNT(*)).
func Aggregate(name string, agg Agg, arg *expr.Tree) Term {
	return Term{Name: name, Agg: agg, Expr: arg}
}

// GroupByA performs spec.md §4.5's partial-aggregation phase: it materialises
// every non-count argument through the Projector under a full-true mask,
// invokes bundler to segment rows into distinct key-tuple groups, then folds
// each aggregate term's values over each group. bundler may be nil, in which
// case DefaultBundler is used.
func GroupByA(src *board.Board, s *scanner.Scanner, clause []Term, bundler Bundler) (*board.Board, error) {
	if bundler == nil {
		bundler = DefaultBundler{}
	}

	full := column.FullMask(src.NRows())

	var keyTerms, aggTerms []Term
	for _, t := range clause {
		if t.IsKey {
			keyTerms = append(keyTerms, t)
		} else {
			aggTerms = append(aggTerms, t)
		}
	}

	projTerms := make([]projector.Term, 0, len(keyTerms)+len(aggTerms))
	for _, t := range keyTerms {
		projTerms = append(projTerms, projector.Term{Name: t.Name, Expr: expr.Var(t.Arg)})
	}
	argIndex := make(map[string]int, len(aggTerms))
	for _, t := range aggTerms {
		if t.Expr == nil { // CNT(*) needs no materialised argument
			continue
		}
		if _, ok := argIndex[t.Name]; ok {
			continue
		}
		argIndex[t.Name] = len(projTerms)
		projTerms = append(projTerms, projector.Term{Name: t.Name, Expr: t.Expr})
	}

	working, err := projector.Project(src, s, projTerms, full)
	if err != nil {
		return nil, fmt.Errorf("groupby: materialising working set: %w", err)
	}

	keyCols := make([]*column.Column, len(keyTerms))
	for i, t := range keyTerms {
		c, ok := working.Column(t.Name)
		if !ok {
			return nil, fmt.Errorf("groupby: missing key column %q", t.Name)
		}
		keyCols[i] = c
	}

	groups, err := bundler.Bundle(keyCols, working.NRows())
	if err != nil {
		return nil, fmt.Errorf("groupby: bundling: %w", err)
	}

	nGroups := len(groups)
	schema := make([]board.ColumnSpec, len(clause))
	buffers := make([]*column.Buffer, len(clause))
	dicts := make(map[string]*column.Dictionary, len(clause))

	for i, t := range clause {
		if t.IsKey {
			col, _ := working.Column(t.Name)
			buf, dict, err := foldKey(col, groups)
			if err != nil {
				return nil, err
			}
			schema[i] = board.ColumnSpec{Name: t.Name, Type: col.Type()}
			buffers[i] = buf
			if dict != nil {
				dicts[t.Name] = dict
			}
			continue
		}

		var valueCol *column.Column
		if t.Expr != nil {
			valueCol, _ = working.Column(t.Name)
		}
		buf, typ, err := foldAggregate(t.Agg, valueCol, groups, nGroups)
		if err != nil {
			return nil, fmt.Errorf("groupby: aggregate %q: %w", t.Name, err)
		}
		schema[i] = board.ColumnSpec{Name: t.Name, Type: typ}
		buffers[i] = buf
	}

	return board.New(src.Name()+":groupbyA", "", nGroups, buffers, schema, dicts)
}

// GroupByC applies the final select-clause expressions to a groupbyA
// partial-aggregate Board (spec.md §4.5). If every top-level term is a bare
// variable reference to one of the partial's columns, it is renamed in
// place and returned; otherwise the Projector evaluates the full clause.
func GroupByC(partial *board.Board, s *scanner.Scanner, clause []projector.Term) (*board.Board, error) {
	allBareVars := true
	for _, t := range clause {
		if _, ok := t.Expr.IsVar(); !ok {
			allBareVars = false
			break
		}
	}
	if !allBareVars {
		return projector.Project(partial, s, clause, column.FullMask(partial.NRows()))
	}

	schema := make([]board.ColumnSpec, len(clause))
	buffers := make([]*column.Buffer, len(clause))
	dicts := make(map[string]*column.Dictionary, len(clause))
	for i, t := range clause {
		name, _ := t.Expr.IsVar()
		col, ok := partial.Column(name)
		if !ok {
			return nil, fmt.Errorf("groupby: groupbyC: unknown column %q", name)
		}
		schema[i] = board.ColumnSpec{Name: t.Name, Type: col.Type()}
		buffers[i] = col.Buffer().Shallow()
		if col.Dictionary() != nil {
			dicts[t.Name] = col.Dictionary()
		}
	}
	return board.New(partial.Name(), partial.Description(), partial.NRows(), buffers, schema, dicts)
}

func groupKeyString(keyCols []*column.Column, row int) string {
	if len(keyCols) == 1 {
		return keyCols[0].FormatValue(row)
	}
	var b strings.Builder
	for i, c := range keyCols {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		b.WriteString(c.FormatValue(row))
	}
	return b.String()
}
