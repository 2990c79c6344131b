package projector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"board/board"
	"board/column"
	"board/expr"
	"board/scanner"
)

func newTestBoard(t *testing.T) *board.Board {
	t.Helper()
	ageBuf := column.NewBuffer(column.Int64, 3)
	copy(ageBuf.MutInt64(), []int64{10, 18, 21})

	cityBuf := column.NewBuffer(column.Uint32, 3)
	dict := column.NewDictionary()
	for i, s := range []string{"NY", "LA", "LA"} {
		cityBuf.MutUint32()[i] = dict.Intern(s)
	}

	b, err := board.New("people", "", 3,
		[]*column.Buffer{ageBuf, cityBuf},
		[]board.ColumnSpec{
			{Name: "age", Type: column.Int64},
			{Name: "city", Type: column.Category},
		},
		map[string]*column.Dictionary{"city": dict},
	)
	require.NoError(t, err)
	return b
}

func TestProjectBareVariable(t *testing.T) {
	b := newTestBoard(t)
	s := scanner.New(b, nil)
	mask := column.FullMask(3)
	mask.Clear(0)

	out, err := Project(b, s, []Term{{Name: "age", Expr: expr.Var("age")}}, mask)
	require.NoError(t, err)
	require.Equal(t, 2, out.NRows())

	col, ok := out.Column("age")
	require.True(t, ok)
	var dst [2]int64
	n, code := col.ReadInt64(0, 2, dst[:])
	require.Equal(t, 2, n)
	require.Equal(t, 0, code)
	assert.Equal(t, [2]int64{18, 21}, dst)
}

func TestProjectCountStar(t *testing.T) {
	b := newTestBoard(t)
	s := scanner.New(b, nil)

	out, err := Project(b, s, []Term{{Name: "n", Expr: expr.Call("count", expr.Var("*"))}}, column.FullMask(3))
	require.NoError(t, err)
	col, ok := out.Column("n")
	require.True(t, ok)
	var dst [3]uint64
	n, code := col.ReadUint64(0, 3, dst[:])
	require.Equal(t, 3, n)
	require.Equal(t, 0, code)
	assert.Equal(t, [3]uint64{1, 1, 1}, dst)
}

func TestProjectArithmeticExpression(t *testing.T) {
	b := newTestBoard(t)
	s := scanner.New(b, nil)

	doubled := &expr.Tree{Kind: expr.KindArithBinary, ArithOp: expr.ArithMul, Left: expr.Var("age"), Right: expr.NumberLit(2)}
	out, err := Project(b, s, []Term{{Name: "double_age", Expr: doubled}}, column.FullMask(3))
	require.NoError(t, err)

	col, ok := out.Column("double_age")
	require.True(t, ok)
	var dst [3]float64
	n, code := col.ReadFloat64(0, 3, dst[:])
	require.Equal(t, 3, n)
	require.Equal(t, 0, code)
	assert.Equal(t, [3]float64{20, 36, 42}, dst)
}

func TestProjectStringLiteral(t *testing.T) {
	b := newTestBoard(t)
	s := scanner.New(b, nil)

	out, err := Project(b, s, []Term{{Name: "tag", Expr: expr.StringLit("const")}}, column.FullMask(3))
	require.NoError(t, err)
	col, ok := out.Column("tag")
	require.True(t, ok)
	assert.Equal(t, column.Category, col.Type())
	assert.Equal(t, "const", col.FormatValueRaw(0))
	assert.Equal(t, "const", col.FormatValueRaw(2))
}

func TestProjectFromUnixtimeGMT(t *testing.T) {
	tsBuf := column.NewBuffer(column.Int64, 2)
	copy(tsBuf.MutInt64(), []int64{0, 86400})

	b, err := board.New("ticks", "", 2,
		[]*column.Buffer{tsBuf},
		[]board.ColumnSpec{{Name: "ts", Type: column.Int64}},
		nil,
	)
	require.NoError(t, err)
	s := scanner.New(b, nil)

	call := expr.Call("from_unixtime_gmt", expr.Var("ts"), expr.StringLit("%Y-%m-%d"))
	out, err := Project(b, s, []Term{{Name: "day", Expr: call}}, column.FullMask(2))
	require.NoError(t, err)

	col, ok := out.Column("day")
	require.True(t, ok)
	assert.Equal(t, column.Text, col.Type())
	assert.Equal(t, "1970-01-01", col.FormatValueRaw(0))
	assert.Equal(t, "1970-01-02", col.FormatValueRaw(1))
}

func TestProjectUnknownColumnErrors(t *testing.T) {
	b := newTestBoard(t)
	s := scanner.New(b, nil)

	_, err := Project(b, s, []Term{{Name: "x", Expr: expr.Var("nope")}}, column.FullMask(3))
	assert.Error(t, err)
}
