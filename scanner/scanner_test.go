package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"board/column"
	"board/expr"
	"board/internal/boardindex"
)

func TestEvaluateRange(t *testing.T) {
	b := newTestBoard(t)
	s := New(b, nil)

	mask, err := s.Evaluate(expr.RangeExpr("age", expr.OpGE, 18), column.FullMask(5))
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 3, 4}, mask.Ones())
}

func TestEvaluateRangeString(t *testing.T) {
	b := newTestBoard(t)
	s := New(b, nil)

	mask, err := s.Evaluate(expr.RangeStr("city", expr.OpEQ, "LA"), column.FullMask(5))
	require.NoError(t, err)
	assert.Equal(t, []uint32{2, 3}, mask.Ones())
}

func TestEvaluateAndOrNot(t *testing.T) {
	b := newTestBoard(t)
	s := New(b, nil)
	full := column.FullMask(5)

	adult := expr.RangeExpr("age", expr.OpGE, 18)
	inLA := expr.RangeStr("city", expr.OpEQ, "LA")

	and, err := s.Evaluate(expr.And(adult, inLA), full)
	require.NoError(t, err)
	assert.Equal(t, []uint32{2, 3}, and.Ones())

	or, err := s.Evaluate(expr.Or(adult, inLA), full)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 3, 4}, or.Ones())

	not, err := s.Evaluate(expr.Not(adult), full)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0}, not.Ones())
}

func TestEvaluateDiscreteRange(t *testing.T) {
	b := newTestBoard(t)
	s := New(b, nil)

	tree := &expr.Tree{Kind: expr.KindDiscreteRange, Column: "age", Values: []float64{18, 70}}
	mask, err := s.Evaluate(tree, column.FullMask(5))
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 4}, mask.Ones())
}

func TestEvaluateAnyString(t *testing.T) {
	b := newTestBoard(t)
	s := New(b, nil)

	tree := &expr.Tree{Kind: expr.KindAnyString, Column: "city", Strs: []string{"LA", "SF"}}
	mask, err := s.Evaluate(tree, column.FullMask(5))
	require.NoError(t, err)
	assert.Equal(t, []uint32{2, 3, 4}, mask.Ones())
}

func TestEvaluateUnknownColumnErrors(t *testing.T) {
	b := newTestBoard(t)
	s := New(b, nil)

	_, err := s.Evaluate(expr.RangeExpr("nope", expr.OpEQ, 1), column.FullMask(5))
	assert.Error(t, err)
}

func TestEvaluateUsesIndexMaskWhenPresent(t *testing.T) {
	b := newTestBoard(t)
	reg := boardindex.NewRegistry()
	s := New(b, reg)

	precomputed := column.NewMask(5)
	precomputed.Set(4)
	tree := expr.RangeExpr("age", expr.OpGE, 18)
	key := "age:4:18:" // mirrors maskFromIndex's key format: column:op:scalar:str
	reg.Put(key, precomputed)

	mask, err := s.Evaluate(tree, column.FullMask(5))
	require.NoError(t, err)
	assert.Equal(t, []uint32{4}, mask.Ones())
}

func TestEvalArithBinaryAndCall(t *testing.T) {
	b := newTestBoard(t)
	s := New(b, nil)
	full := column.FullMask(5)

	sum := &expr.Tree{
		Kind:    expr.KindArithBinary,
		ArithOp: expr.ArithAdd,
		Left:    expr.Var("age"),
		Right:   expr.NumberLit(1),
	}
	vals, valid, err := s.EvalArith(sum, full)
	require.NoError(t, err)
	assert.Equal(t, []float64{11, 19, 22, 66, 71}, vals)
	assert.Equal(t, []uint32{0, 1, 2, 3, 4}, valid.Ones())

	abs := expr.Call("abs", &expr.Tree{Kind: expr.KindArithUnaryMinus, Left: expr.Var("age")})
	vals, valid, err = s.EvalArith(abs, full)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 18, 21, 65, 70}, vals)
	assert.Equal(t, []uint32{0, 1, 2, 3, 4}, valid.Ones())
}

func TestEvalArithPropagatesNullOperand(t *testing.T) {
	b := newTestBoard(t)
	ageCol, ok := b.Column("age")
	require.True(t, ok)
	ageCol.SetValid(2, false)

	s := New(b, nil)
	full := column.FullMask(5)

	sum := &expr.Tree{
		Kind:    expr.KindArithBinary,
		ArithOp: expr.ArithAdd,
		Left:    expr.Var("age"),
		Right:   expr.NumberLit(1),
	}
	vals, valid, err := s.EvalArith(sum, full)
	require.NoError(t, err)
	assert.False(t, valid.Get(2))
	assert.Equal(t, float64(0), vals[2])
	assert.True(t, valid.Get(0))
	assert.True(t, valid.Get(4))
}
