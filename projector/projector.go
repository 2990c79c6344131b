// Package projector materialises a select clause against a board.Board
// under a mask into a brand-new Board (spec.md §4.4).
package projector

import (
	"fmt"
	"strings"

	"board/board"
	"board/column"
	"board/expr"
	"board/scanner"
)

// Term is one top-level entry of a select clause: an expression tree and
// the name its materialised column should carry in the output Board.
type Term struct {
	Name string
	Expr *expr.Tree
}

// Project materialises len(terms) columns, one per term, with rows
// corresponding to the set bits of mask in ascending order (spec.md §4.4).
// s must be a Scanner over src (needed to evaluate arithmetic terms).
func Project(src *board.Board, s *scanner.Scanner, terms []Term, mask column.Mask) (*board.Board, error) {
	rows := mask.Ones()
	n := len(rows)

	schema := make([]board.ColumnSpec, len(terms))
	buffers := make([]*column.Buffer, len(terms))
	dicts := make(map[string]*column.Dictionary, len(terms))

	for i, term := range terms {
		col, dict, err := projectTerm(src, s, term, mask, rows, n)
		if err != nil {
			return nil, fmt.Errorf("projector: term %q: %w", term.Name, err)
		}
		schema[i] = board.ColumnSpec{Name: term.Name, Type: col.Type()}
		buffers[i] = col.Buffer()
		if dict != nil {
			dicts[term.Name] = dict
		}
	}
	return board.New(src.Name()+":projection", "", n, buffers, schema, dicts)
}

// projectTerm materialises one term per spec.md §4.4's four cases.
func projectTerm(src *board.Board, s *scanner.Scanner, term Term, mask column.Mask, rows []uint32, n int) (*column.Column, *column.Dictionary, error) {
	t := term.Expr

	if name, ok := t.IsVar(); ok {
		col, ok := src.Column(name)
		if !ok {
			return nil, nil, fmt.Errorf("unknown column %q", name)
		}
		return col.SelectColumn(mask), col.Dictionary(), nil
	}

	if t.IsCountStar() {
		col := column.New(term.Name, column.Uint32, n)
		for i := 0; i < n; i++ {
			col.Buffer().MutUint32()[i] = 1
			col.SetValid(i, true)
		}
		return col, nil, nil
	}

	switch t.Kind {
	case expr.KindNumberLit:
		col := column.New(term.Name, column.Float64, n)
		for i := 0; i < n; i++ {
			col.Buffer().MutFloat64()[i] = t.Number
			col.SetValid(i, true)
		}
		return col, nil, nil

	case expr.KindStringLit:
		dict := column.NewDictionary()
		code := dict.Intern(t.Str)
		col := column.New(term.Name, column.Category, n)
		col.SetDictionary(dict)
		for i := 0; i < n; i++ {
			col.Buffer().MutUint32()[i] = code
			col.SetValid(i, true)
		}
		return col, dict, nil

	case expr.KindCall:
		if expr.IsTimeFunc(t.Func) {
			col, err := projectTimeFunc(src, s, term, mask, rows, n)
			return col, nil, err
		}
		return projectArith(s, term, mask, rows, n)

	default:
		return projectArith(s, term, mask, rows, n)
	}
}

// projectArith materialises an arithmetic term (spec.md §4.3's double-array
// evaluation) as a Float64 column, propagating EvalArith's per-row validity
// rather than marking every row valid (spec.md §9's NULL-propagation
// resolution, see DESIGN.md).
func projectArith(s *scanner.Scanner, term Term, mask column.Mask, rows []uint32, n int) (*column.Column, *column.Dictionary, error) {
	t := term.Expr
	values, valid, err := s.EvalArith(t, mask)
	if err != nil {
		return nil, nil, err
	}
	col := column.New(term.Name, column.Float64, n)
	dst := col.Buffer().MutFloat64()
	for i, r := range rows {
		if !valid.Get(int(r)) {
			continue
		}
		dst[i] = values[r]
		col.SetValid(i, true)
	}
	return col, nil, nil
}

// projectTimeFunc materialises one of the four FROM_UNIXTIME_*/
// TO_UNIXTIME_* calls (spec.md §3, §8 scenario 6): FROM_UNIXTIME_* takes a
// numeric seconds argument and a strftime-style format literal, producing a
// Text column; TO_UNIXTIME_* takes a string column and the same format,
// producing a Float64 column of seconds since epoch.
func projectTimeFunc(src *board.Board, s *scanner.Scanner, term Term, mask column.Mask, rows []uint32, n int) (*column.Column, error) {
	t := term.Expr
	if len(t.Args) != 2 {
		return nil, fmt.Errorf("%s takes exactly two arguments", t.Func)
	}
	formatArg := t.Args[1]
	if formatArg.Kind != expr.KindStringLit {
		return nil, fmt.Errorf("%s: format argument must be a string literal", t.Func)
	}
	format := formatArg.Str

	if strings.HasPrefix(strings.ToLower(t.Func), "from_unixtime") {
		seconds, valid, err := s.EvalArith(t.Args[0], mask)
		if err != nil {
			return nil, err
		}
		col := column.New(term.Name, column.Text, n)
		dst := col.Buffer().MutStrings()
		for i, r := range rows {
			if !valid.Get(int(r)) {
				continue
			}
			str, _, err := expr.EvalTimeFunc(t.Func, seconds[r], "", format)
			if err != nil {
				return nil, err
			}
			dst[i] = str
			col.SetValid(i, true)
		}
		return col, nil
	}

	name, ok := t.Args[0].IsVar()
	if !ok {
		return nil, fmt.Errorf("%s: first argument must be a column reference", t.Func)
	}
	srcCol, ok := src.Column(name)
	if !ok {
		return nil, fmt.Errorf("unknown column %q", name)
	}
	col := column.New(term.Name, column.Float64, n)
	dst := col.Buffer().MutFloat64()
	for i, r := range rows {
		if !srcCol.IsValid(int(r)) {
			continue
		}
		str := srcCol.FormatValueRaw(int(r))
		_, secs, err := expr.EvalTimeFunc(t.Func, 0, str, format)
		if err != nil {
			return nil, err
		}
		dst[i] = secs
		col.SetValid(i, true)
	}
	return col, nil
}
