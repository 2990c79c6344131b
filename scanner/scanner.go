// Package scanner evaluates an expr.Tree against a board.Board under an
// input mask, producing the row mask of qualifying rows (spec.md §4.3). It
// imports board (not the reverse) to keep the dependency graph acyclic; see
// board's package doc and engine for how the two are tied together.
package scanner

import (
	"fmt"
	"strings"

	"board/board"
	"board/column"
	"board/expr"
)

// Scanner evaluates expressions against one Board.
type Scanner struct {
	b   *board.Board
	idx board.IndexProvider // optional, spec.md §6
}

// New returns a Scanner over b. idx may be nil.
func New(b *board.Board, idx board.IndexProvider) *Scanner {
	return &Scanner{b: b, idx: idx}
}

// Evaluate performs the post-order traversal described in spec.md §4.3.
// Scanning never mutates t or the Board.
func (s *Scanner) Evaluate(t *expr.Tree, in column.Mask) (column.Mask, error) {
	if t == nil {
		return in, nil
	}
	switch t.Kind {
	case expr.KindAnd:
		left, err := s.Evaluate(t.Left, in)
		if err != nil {
			return column.Mask{}, err
		}
		// right is evaluated under left's result for early termination.
		return s.Evaluate(t.Right, left)

	case expr.KindOr:
		left, err := s.Evaluate(t.Left, in)
		if err != nil {
			return column.Mask{}, err
		}
		right, err := s.Evaluate(t.Right, in)
		if err != nil {
			return column.Mask{}, err
		}
		return left.Or(right), nil

	case expr.KindXor:
		left, err := s.Evaluate(t.Left, in)
		if err != nil {
			return column.Mask{}, err
		}
		right, err := s.Evaluate(t.Right, in)
		if err != nil {
			return column.Mask{}, err
		}
		return left.Xor(right), nil

	case expr.KindMinus:
		left, err := s.Evaluate(t.Left, in)
		if err != nil {
			return column.Mask{}, err
		}
		right, err := s.Evaluate(t.Right, in)
		if err != nil {
			return column.Mask{}, err
		}
		return left.AndNot(right), nil

	case expr.KindNot:
		sub, err := s.Evaluate(t.Left, in)
		if err != nil {
			return column.Mask{}, err
		}
		return sub.Not().And(in), nil

	case expr.KindRange:
		if m, ok := s.maskFromIndex(t, in); ok {
			return m, nil
		}
		col, ok := s.b.Column(t.Column)
		if !ok {
			return column.Mask{}, fmt.Errorf("scanner: unknown column %q", t.Column)
		}
		if col.Type().IsString() || col.Type() == column.Category {
			// ScanStringEQ is the only string comparison a Column offers;
			// ordering operators (<, <=, >=, >) have no defined meaning
			// here and are rejected rather than silently treated as "=".
			switch t.Op {
			case expr.OpEQ:
				return col.ScanStringEQ(t.Str, in), nil
			case expr.OpNE:
				return in.AndNot(col.ScanStringEQ(t.Str, in)), nil
			default:
				return column.Mask{}, fmt.Errorf("scanner: string range on %q only supports = and !=", t.Column)
			}
		}
		return col.ScanRange(t.Op, t.Scalar, in), nil

	case expr.KindDoubleRange:
		return s.evalDoubleRange(t, in)

	case expr.KindCompRange:
		return s.evalCompRange(t, in)

	case expr.KindDiscreteRange, expr.KindIntHod, expr.KindUIntHod:
		col, ok := s.b.Column(t.Column)
		if !ok {
			return column.Mask{}, fmt.Errorf("scanner: unknown column %q", t.Column)
		}
		return col.ScanDiscrete(t.Values, in), nil

	case expr.KindAnyString:
		col, ok := s.b.Column(t.Column)
		if !ok {
			return column.Mask{}, fmt.Errorf("scanner: unknown column %q", t.Column)
		}
		return col.ScanAnyString(t.Strs, in), nil

	case expr.KindLike:
		col, ok := s.b.Column(t.Column)
		if !ok {
			return column.Mask{}, fmt.Errorf("scanner: unknown column %q", t.Column)
		}
		return col.ScanLike(t.Pattern, in), nil

	case expr.KindKeyword:
		col, ok := s.b.Column(t.Column)
		if !ok {
			return column.Mask{}, fmt.Errorf("scanner: unknown column %q", t.Column)
		}
		if len(t.Strs) == 0 {
			return column.Mask{}, fmt.Errorf("scanner: keyword predicate on %q has no term", t.Column)
		}
		return col.ScanKeyword(t.Strs[0], in), nil

	case expr.KindAllWords:
		col, ok := s.b.Column(t.Column)
		if !ok {
			return column.Mask{}, fmt.Errorf("scanner: unknown column %q", t.Column)
		}
		return col.ScanAllWords(t.Strs, in), nil

	case expr.KindExists:
		col, ok := s.b.Column(t.Column)
		if !ok {
			return column.Mask{}, fmt.Errorf("scanner: unknown column %q", t.Column)
		}
		return col.Validity().And(in), nil

	case expr.KindAnyAny:
		return s.evalAnyAny(t, in), nil

	default:
		return column.Mask{}, fmt.Errorf("scanner: %v is not a predicate", t.Kind)
	}
}

// maskProvider is the richer index-provider capability (see
// internal/boardindex.MaskProvider); matched by duck typing so scanner need
// not import that internal package.
type maskProvider interface {
	Mask(predicateKey string) (column.Mask, bool)
}

// maskFromIndex asks s.idx for a pre-computed mask for a Range predicate
// (spec.md §6: "Scanner may ask it for a pre-computed mask instead of
// scanning"), intersected with in. ok is false if idx has no such mask.
func (s *Scanner) maskFromIndex(t *expr.Tree, in column.Mask) (column.Mask, bool) {
	mp, ok := s.idx.(maskProvider)
	if !ok {
		return column.Mask{}, false
	}
	key := fmt.Sprintf("%s:%d:%v:%s", t.Column, t.Op, t.Scalar, t.Str)
	m, found := mp.Mask(key)
	if !found {
		return column.Mask{}, false
	}
	return m.And(in), true
}

// evalAnyAny ORs together col.ScanStringEQ/ScanRange(=, value) over every
// column whose name begins with prefix (spec.md §4.3 AnyAny).
func (s *Scanner) evalAnyAny(t *expr.Tree, in column.Mask) column.Mask {
	out := column.NewMask(in.Len())
	for _, col := range s.b.Columns() {
		if !strings.HasPrefix(strings.ToLower(col.Name()), strings.ToLower(t.Prefix)) {
			continue
		}
		var m column.Mask
		if col.Type().IsString() || col.Type() == column.Category {
			m = col.ScanStringEQ(t.Str, in)
		} else {
			var v float64
			if _, err := fmt.Sscanf(t.Str, "%g", &v); err != nil {
				continue
			}
			m = col.ScanRange(expr.OpEQ, v, in)
		}
		out = out.Or(m)
	}
	return out
}

func (s *Scanner) evalDoubleRange(t *expr.Tree, in column.Mask) (column.Mask, error) {
	midTree := t.ExprMid
	if midTree == nil {
		midTree = expr.Var(t.Column)
	}
	mid, midValid, err := s.EvalArith(midTree, in)
	if err != nil {
		return column.Mask{}, err
	}
	out := column.NewMask(in.Len())
	for _, r := range in.Ones() {
		if !midValid.Get(int(r)) {
			continue
		}
		v := mid[r]
		if compareScalar(t.Lo, t.Op1, v) && compareScalar(v, t.Op2, t.Hi) {
			out.Set(int(r))
		}
	}
	return out, nil
}

func (s *Scanner) evalCompRange(t *expr.Tree, in column.Mask) (column.Mask, error) {
	lo, loValid, err := s.EvalArith(t.ExprLo, in)
	if err != nil {
		return column.Mask{}, err
	}
	mid, midValid, err := s.EvalArith(t.ExprMid, in)
	if err != nil {
		return column.Mask{}, err
	}
	var hi []float64
	hiValid := in
	if t.ExprHi != nil {
		hi, hiValid, err = s.EvalArith(t.ExprHi, in)
		if err != nil {
			return column.Mask{}, err
		}
	}
	out := column.NewMask(in.Len())
	for _, r := range in.Ones() {
		if !loValid.Get(int(r)) || !midValid.Get(int(r)) || !hiValid.Get(int(r)) {
			continue
		}
		if !compareScalar(lo[r], t.Op1, mid[r]) {
			continue
		}
		if t.ExprHi == nil || compareScalar(mid[r], t.Op2, hi[r]) {
			out.Set(int(r))
		}
	}
	return out, nil
}

func compareScalar(a float64, op expr.Op, b float64) bool {
	switch op {
	case expr.OpLT:
		return a < b
	case expr.OpLE:
		return a <= b
	case expr.OpEQ:
		return a == b
	case expr.OpGE:
		return a >= b
	case expr.OpGT:
		return a > b
	case expr.OpNE:
		return a != b
	default:
		return false
	}
}

// EvalArith evaluates an arithmetic sub-tree into a dense float64 array of
// length in.Len(), alongside a validity mask (spec.md §4.3: "evaluate
// arithmetic subterms into double arrays under the current mask"; spec.md
// §9's NULL-propagation resolution, see DESIGN.md). Rows not set in in, or
// whose evaluation touched any NULL operand, are left clear in the returned
// mask and hold zero in out.
func (s *Scanner) EvalArith(t *expr.Tree, in column.Mask) ([]float64, column.Mask, error) {
	out := make([]float64, in.Len())
	valid := column.NewMask(in.Len())
	switch t.Kind {
	case expr.KindNumberLit:
		for _, r := range in.Ones() {
			out[r] = t.Number
			valid.Set(int(r))
		}
		return out, valid, nil

	case expr.KindVar:
		col, ok := s.b.Column(t.Var)
		if !ok {
			return nil, column.Mask{}, fmt.Errorf("scanner: unknown column %q", t.Var)
		}
		n, code := col.ReadFloat64(0, col.Len(), out)
		if code != 0 || n != col.Len() {
			return nil, column.Mask{}, fmt.Errorf("scanner: column %q cannot widen to double", t.Var)
		}
		colValid := col.Validity()
		for _, r := range in.Ones() {
			if colValid.Get(int(r)) {
				valid.Set(int(r))
			} else {
				out[r] = 0
			}
		}
		return out, valid, nil

	case expr.KindArithUnaryMinus:
		sub, subValid, err := s.EvalArith(t.Left, in)
		if err != nil {
			return nil, column.Mask{}, err
		}
		for _, r := range in.Ones() {
			if !subValid.Get(int(r)) {
				continue
			}
			out[r] = -sub[r]
			valid.Set(int(r))
		}
		return out, valid, nil

	case expr.KindArithBinary:
		left, leftValid, err := s.EvalArith(t.Left, in)
		if err != nil {
			return nil, column.Mask{}, err
		}
		right, rightValid, err := s.EvalArith(t.Right, in)
		if err != nil {
			return nil, column.Mask{}, err
		}
		for _, r := range in.Ones() {
			if !leftValid.Get(int(r)) || !rightValid.Get(int(r)) {
				continue
			}
			out[r] = applyArith(t.ArithOp, left[r], right[r])
			valid.Set(int(r))
		}
		return out, valid, nil

	case expr.KindCall:
		args := make([][]float64, len(t.Args))
		argsValid := make([]column.Mask, len(t.Args))
		for i, a := range t.Args {
			v, vv, err := s.EvalArith(a, in)
			if err != nil {
				return nil, column.Mask{}, err
			}
			args[i] = v
			argsValid[i] = vv
		}
		for _, r := range in.Ones() {
			row := make([]float64, len(args))
			rowValid := true
			for i, a := range args {
				if !argsValid[i].Get(int(r)) {
					rowValid = false
					break
				}
				row[i] = a[r]
			}
			if !rowValid {
				continue
			}
			v, ok := expr.Builtin(t.Func, row)
			if !ok {
				return nil, column.Mask{}, fmt.Errorf("scanner: unknown function %q", t.Func)
			}
			out[r] = v
			valid.Set(int(r))
		}
		return out, valid, nil

	default:
		return nil, column.Mask{}, fmt.Errorf("scanner: %v is not an arithmetic term", t.Kind)
	}
}

func applyArith(op expr.ArithOp, a, b float64) float64 {
	switch op {
	case expr.ArithAdd:
		return a + b
	case expr.ArithSub:
		return a - b
	case expr.ArithMul:
		return a * b
	case expr.ArithDiv:
		return a / b
	case expr.ArithMod:
		if b == 0 {
			return 0
		}
		return float64(int64(a) % int64(b))
	case expr.ArithPow:
		v, _ := expr.Builtin("pow", []float64{a, b})
		return v
	case expr.ArithBitAnd:
		return float64(int64(a) & int64(b))
	case expr.ArithBitOr:
		return float64(int64(a) | int64(b))
	default:
		return 0
	}
}
