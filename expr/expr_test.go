package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsBuildExpectedKinds(t *testing.T) {
	a, b := Var("x"), NumberLit(1)
	assert.Equal(t, KindAnd, And(a, b).Kind)
	assert.Equal(t, KindOr, Or(a, b).Kind)
	assert.Equal(t, KindXor, Xor(a, b).Kind)
	assert.Equal(t, KindMinus, Minus(a, b).Kind)
	assert.Equal(t, KindNot, Not(a).Kind)
}

func TestRangeExprAndRangeStr(t *testing.T) {
	num := RangeExpr("age", OpGE, 18)
	assert.Equal(t, KindRange, num.Kind)
	assert.Equal(t, "age", num.Column)
	assert.Equal(t, OpGE, num.Op)
	assert.Equal(t, float64(18), num.Scalar)

	str := RangeStr("city", OpEQ, "LA")
	assert.Equal(t, KindRange, str.Kind)
	assert.Equal(t, "LA", str.Str)
}

func TestVarNumberLitStringLit(t *testing.T) {
	v := Var("age")
	assert.Equal(t, KindVar, v.Kind)
	assert.Equal(t, "age", v.Var)

	n := NumberLit(3.5)
	assert.Equal(t, KindNumberLit, n.Kind)
	assert.Equal(t, 3.5, n.Number)

	s := StringLit("hi")
	assert.Equal(t, KindStringLit, s.Kind)
	assert.Equal(t, "hi", s.Str)
}

func TestCallBuildsArgList(t *testing.T) {
	c := Call("abs", Var("age"), NumberLit(1))
	assert.Equal(t, KindCall, c.Kind)
	assert.Equal(t, "abs", c.Func)
	assert.Len(t, c.Args, 2)
}

func TestExistsAndAnyAny(t *testing.T) {
	e := Exists("city")
	assert.Equal(t, KindExists, e.Kind)
	assert.Equal(t, "city", e.Column)

	aa := AnyAny("prefix_", "value")
	assert.Equal(t, KindAnyAny, aa.Kind)
	assert.Equal(t, "prefix_", aa.Prefix)
	assert.Equal(t, "value", aa.Str)
}

func TestIsCountStar(t *testing.T) {
	assert.True(t, Call("count", Var("*")).IsCountStar())
	assert.False(t, Call("count", Var("age")).IsCountStar())
	assert.False(t, Var("age").IsCountStar())
	var nilTree *Tree
	assert.False(t, nilTree.IsCountStar())
}

func TestIsVar(t *testing.T) {
	name, ok := Var("age").IsVar()
	assert.True(t, ok)
	assert.Equal(t, "age", name)

	_, ok = NumberLit(1).IsVar()
	assert.False(t, ok)
}
