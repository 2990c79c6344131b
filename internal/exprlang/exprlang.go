// Package exprlang adapts a SQL-ish clause string into an expr.Tree, the way
// the teacher's internal/parser/mysql adapts a CREATE TABLE dump into
// internal/core types: both lean on TiDB's parser rather than hand-rolling a
// grammar. Select clauses ("a, b, sum(c)") and where clauses
// ("a > 3 AND b LIKE 'x%'") are each wrapped in a throwaway "SELECT ... FROM
// t" statement and parsed, then the resulting ast.ExprNode tree is walked
// into expr.Tree nodes.
package exprlang

import (
	"fmt"
	"strings"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	"github.com/pingcap/tidb/pkg/parser/opcode"
	driver "github.com/pingcap/tidb/pkg/parser/test_driver"

	"board/expr"
)

// Compiler parses clause strings into expr.Tree values. It wraps a
// *parser.Parser the way mysql.Parser wraps one for schema dumps.
type Compiler struct {
	p *parser.Parser
}

// New returns a Compiler ready to parse clauses.
func New() *Compiler {
	return &Compiler{p: parser.New()}
}

// CompileWhere parses a boolean clause (no bare "SELECT"/"FROM" keywords)
// into an expr.Tree predicate, e.g. "age >= 18 AND city = 'NY'".
func (c *Compiler) CompileWhere(clause string) (*expr.Tree, error) {
	sel, err := c.parseSelect(clause)
	if err != nil {
		return nil, err
	}
	if sel.Where == nil {
		return nil, fmt.Errorf("exprlang: empty where clause")
	}
	return c.walk(sel.Where)
}

// CompileTerms parses a comma-separated select-list clause (e.g.
// "city, sum(population) AS total") into one expr.Tree per term, in order.
// An item's alias, if given, is returned alongside its tree.
func (c *Compiler) CompileTerms(clause string) ([]Term, error) {
	sel, err := c.parseSelect(clause)
	if err != nil {
		return nil, err
	}
	terms := make([]Term, 0, len(sel.Fields.Fields))
	for _, f := range sel.Fields.Fields {
		if f.WildCard != nil {
			terms = append(terms, Term{Name: "*", Tree: expr.Var("*")})
			continue
		}
		t, err := c.walk(f.Expr)
		if err != nil {
			return nil, err
		}
		name := ""
		if f.AsName.O != "" {
			name = f.AsName.O
		} else if v, ok := t.IsVar(); ok {
			name = v
		} else {
			name = strings.TrimSpace(f.Text())
		}
		terms = append(terms, Term{Name: name, Tree: t})
	}
	return terms, nil
}

// Term is one parsed select-list item: its output name and expression.
type Term struct {
	Name string
	Tree *expr.Tree
}

func (c *Compiler) parseSelect(clause string) (*ast.SelectStmt, error) {
	sql := "SELECT " + clause + " FROM t"
	stmtNodes, _, err := c.p.Parse(sql, "", "")
	if err != nil {
		return nil, fmt.Errorf("exprlang: parse %q: %w", clause, err)
	}
	if len(stmtNodes) != 1 {
		return nil, fmt.Errorf("exprlang: expected one statement, got %d", len(stmtNodes))
	}
	sel, ok := stmtNodes[0].(*ast.SelectStmt)
	if !ok {
		return nil, fmt.Errorf("exprlang: %q is not a select statement", clause)
	}
	return sel, nil
}

// walk converts one ast.ExprNode into an expr.Tree, mirroring the
// teacher's exprToString in that it recurses over ast node types, but
// building a structured tree instead of a restored string.
func (c *Compiler) walk(n ast.ExprNode) (*expr.Tree, error) {
	switch v := n.(type) {
	case *ast.BinaryOperationExpr:
		return c.walkBinary(v)

	case *ast.UnaryOperationExpr:
		sub, err := c.walk(v.V)
		if err != nil {
			return nil, err
		}
		if v.Op == opcode.Not {
			return expr.Not(sub), nil
		}
		return &expr.Tree{Kind: expr.KindArithUnaryMinus, Left: sub}, nil

	case *ast.ParenthesesExpr:
		return c.walk(v.Expr)

	case *ast.ColumnNameExpr:
		return expr.Var(v.Name.Name.O), nil

	case *driver.ValueExpr:
		return c.walkValue(v)

	case *ast.IsNullExpr:
		col, ok := columnName(v.Expr)
		if !ok {
			return nil, fmt.Errorf("exprlang: IS [NOT] NULL only supported on a bare column")
		}
		e := expr.Exists(col)
		if !v.Not {
			e = expr.Not(e)
		}
		return e, nil

	case *ast.BetweenExpr:
		col, ok := columnName(v.Expr)
		if !ok {
			return nil, fmt.Errorf("exprlang: BETWEEN only supported on a bare column")
		}
		lo, err := c.numericLit(v.Left)
		if err != nil {
			return nil, err
		}
		hi, err := c.numericLit(v.Right)
		if err != nil {
			return nil, err
		}
		if v.Not {
			return expr.Not(&expr.Tree{Kind: expr.KindDoubleRange, Column: col, Lo: lo, Op1: expr.OpLE, Op2: expr.OpLE, Hi: hi}), nil
		}
		return &expr.Tree{Kind: expr.KindDoubleRange, Column: col, Lo: lo, Op1: expr.OpLE, Op2: expr.OpLE, Hi: hi}, nil

	case *ast.PatternInExpr:
		col, ok := columnName(v.Expr)
		if !ok {
			return nil, fmt.Errorf("exprlang: IN only supported on a bare column")
		}
		tree, err := c.patternIn(col, v.List)
		if err != nil {
			return nil, err
		}
		if v.Not {
			return expr.Not(tree), nil
		}
		return tree, nil

	case *ast.PatternLikeExpr:
		col, ok := columnName(v.Expr)
		if !ok {
			return nil, fmt.Errorf("exprlang: LIKE only supported on a bare column")
		}
		pat, ok := stringLit(v.Pattern)
		if !ok {
			return nil, fmt.Errorf("exprlang: LIKE pattern must be a string literal")
		}
		tree := &expr.Tree{Kind: expr.KindLike, Column: col, Pattern: sqlLikeToGlob(pat)}
		if v.Not {
			return expr.Not(tree), nil
		}
		return tree, nil

	case *ast.FuncCallExpr:
		args := make([]*expr.Tree, len(v.Args))
		for i, a := range v.Args {
			t, err := c.walk(a)
			if err != nil {
				return nil, err
			}
			args[i] = t
		}
		return expr.Call(strings.ToLower(v.FnName.O), args...), nil

	case *ast.AggregateFuncExpr:
		args := make([]*expr.Tree, len(v.Args))
		for i, a := range v.Args {
			t, err := c.walk(a)
			if err != nil {
				return nil, err
			}
			args[i] = t
		}
		return expr.Call(strings.ToLower(v.F), args...), nil

	default:
		return nil, fmt.Errorf("exprlang: unsupported expression node %T", n)
	}
}

func (c *Compiler) walkBinary(v *ast.BinaryOperationExpr) (*expr.Tree, error) {
	switch v.Op {
	case opcode.LogicAnd:
		l, err := c.walk(v.L)
		if err != nil {
			return nil, err
		}
		r, err := c.walk(v.R)
		if err != nil {
			return nil, err
		}
		return expr.And(l, r), nil

	case opcode.LogicOr:
		l, err := c.walk(v.L)
		if err != nil {
			return nil, err
		}
		r, err := c.walk(v.R)
		if err != nil {
			return nil, err
		}
		return expr.Or(l, r), nil

	case opcode.LogicXor:
		l, err := c.walk(v.L)
		if err != nil {
			return nil, err
		}
		r, err := c.walk(v.R)
		if err != nil {
			return nil, err
		}
		return expr.Xor(l, r), nil

	case opcode.LT, opcode.LE, opcode.EQ, opcode.GE, opcode.GT, opcode.NE:
		return c.walkComparison(v)

	case opcode.Plus, opcode.Minus, opcode.Mul, opcode.Div, opcode.Mod, opcode.And, opcode.Or:
		l, err := c.walk(v.L)
		if err != nil {
			return nil, err
		}
		r, err := c.walk(v.R)
		if err != nil {
			return nil, err
		}
		return &expr.Tree{Kind: expr.KindArithBinary, Left: l, Right: r, ArithOp: arithOp(v.Op)}, nil

	default:
		return nil, fmt.Errorf("exprlang: unsupported operator %v", v.Op)
	}
}

// walkComparison builds a Range predicate when one side is a bare column and
// the other a literal (the common case); otherwise it falls back to a
// CompRange over two arithmetic sub-expressions (spec.md §4.3).
func (c *Compiler) walkComparison(v *ast.BinaryOperationExpr) (*expr.Tree, error) {
	op := compareOp(v.Op)
	if col, ok := columnName(v.L); ok {
		if lit, ok := numberLit(v.R); ok {
			return expr.RangeExpr(col, op, lit), nil
		}
		if s, ok := stringLit(v.R); ok {
			return expr.RangeStr(col, op, s), nil
		}
	}
	if col, ok := columnName(v.R); ok {
		if lit, ok := numberLit(v.L); ok {
			return expr.RangeExpr(col, flip(op), lit), nil
		}
		if s, ok := stringLit(v.L); ok {
			return expr.RangeStr(col, flip(op), s), nil
		}
	}

	l, err := c.walk(v.L)
	if err != nil {
		return nil, err
	}
	r, err := c.walk(v.R)
	if err != nil {
		return nil, err
	}
	return &expr.Tree{Kind: expr.KindCompRange, ExprLo: l, Op1: op, ExprMid: r}, nil
}

func (c *Compiler) patternIn(col string, list []ast.ExprNode) (*expr.Tree, error) {
	allNumeric := true
	values := make([]float64, 0, len(list))
	strs := make([]string, 0, len(list))
	for _, item := range list {
		if v, ok := numberLit(item); ok {
			values = append(values, v)
			continue
		}
		allNumeric = false
		s, ok := stringLit(item)
		if !ok {
			return nil, fmt.Errorf("exprlang: IN list must be all-numeric or all-string literals")
		}
		strs = append(strs, s)
	}
	if allNumeric {
		return &expr.Tree{Kind: expr.KindDiscreteRange, Column: col, Values: values}, nil
	}
	return &expr.Tree{Kind: expr.KindAnyString, Column: col, Strs: strs}, nil
}

func (c *Compiler) numericLit(n ast.ExprNode) (float64, error) {
	v, ok := numberLit(n)
	if !ok {
		return 0, fmt.Errorf("exprlang: expected a numeric literal")
	}
	return v, nil
}

func (c *Compiler) walkValue(v *driver.ValueExpr) (*expr.Tree, error) {
	if f, ok := numberLit(v); ok {
		return expr.NumberLit(f), nil
	}
	if s, ok := stringLit(v); ok {
		return expr.StringLit(s), nil
	}
	return nil, fmt.Errorf("exprlang: unsupported literal kind")
}

func columnName(n ast.ExprNode) (string, bool) {
	if p, ok := n.(*ast.ParenthesesExpr); ok {
		return columnName(p.Expr)
	}
	c, ok := n.(*ast.ColumnNameExpr)
	if !ok {
		return "", false
	}
	return c.Name.Name.O, true
}

func numberLit(n ast.ExprNode) (float64, bool) {
	if p, ok := n.(*ast.ParenthesesExpr); ok {
		return numberLit(p.Expr)
	}
	ve, ok := n.(*driver.ValueExpr)
	if !ok {
		return 0, false
	}
	switch ve.Kind() {
	case driver.KindInt64:
		return float64(ve.GetInt64()), true
	case driver.KindUint64:
		return float64(ve.GetUint64()), true
	case driver.KindFloat32, driver.KindFloat64:
		return ve.GetFloat64(), true
	case driver.KindMysqlDecimal:
		f, _ := ve.GetMysqlDecimal().ToFloat64()
		return f, true
	default:
		return 0, false
	}
}

func stringLit(n ast.ExprNode) (string, bool) {
	if p, ok := n.(*ast.ParenthesesExpr); ok {
		return stringLit(p.Expr)
	}
	ve, ok := n.(*driver.ValueExpr)
	if !ok {
		return "", false
	}
	if ve.Kind() != driver.KindString && ve.Kind() != driver.KindBytes {
		return "", false
	}
	return ve.GetString(), true
}

func compareOp(op opcode.Op) expr.Op {
	switch op {
	case opcode.LT:
		return expr.OpLT
	case opcode.LE:
		return expr.OpLE
	case opcode.GE:
		return expr.OpGE
	case opcode.GT:
		return expr.OpGT
	case opcode.NE:
		return expr.OpNE
	default:
		return expr.OpEQ
	}
}

func flip(op expr.Op) expr.Op {
	switch op {
	case expr.OpLT:
		return expr.OpGT
	case expr.OpLE:
		return expr.OpGE
	case expr.OpGE:
		return expr.OpLE
	case expr.OpGT:
		return expr.OpLT
	default:
		return op
	}
}

func arithOp(op opcode.Op) expr.ArithOp {
	switch op {
	case opcode.Plus:
		return expr.ArithAdd
	case opcode.Minus:
		return expr.ArithSub
	case opcode.Mul:
		return expr.ArithMul
	case opcode.Div:
		return expr.ArithDiv
	case opcode.Mod:
		return expr.ArithMod
	case opcode.And:
		return expr.ArithBitAnd
	case opcode.Or:
		return expr.ArithBitOr
	default:
		return expr.ArithAdd
	}
}

// sqlLikeToGlob rewrites SQL LIKE's % / _ wildcards into the '*'/'?' glob
// syntax expr.Tree's Like predicate expects (spec.md §4.3).
func sqlLikeToGlob(pattern string) string {
	var sb strings.Builder
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '%':
			sb.WriteByte('*')
		case '_':
			sb.WriteByte('?')
		case '\\':
			if i+1 < len(pattern) {
				i++
				sb.WriteByte(pattern[i])
			}
		default:
			sb.WriteByte(pattern[i])
		}
	}
	return sb.String()
}
