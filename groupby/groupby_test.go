package groupby

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"board/board"
	"board/column"
	"board/expr"
	"board/projector"
	"board/scanner"
)

func varExpr(name string) *expr.Tree { return expr.Var(name) }

func varExprForAmount() *expr.Tree { return expr.Var("amount") }

func newSalesBoard(t *testing.T) *board.Board {
	t.Helper()
	cityBuf := column.NewBuffer(column.Uint32, 5)
	dict := column.NewDictionary()
	for i, s := range []string{"NY", "LA", "NY", "LA", "NY"} {
		cityBuf.MutUint32()[i] = dict.Intern(s)
	}
	saleBuf := column.NewBuffer(column.Float64, 5)
	copy(saleBuf.MutFloat64(), []float64{10, 20, 30, 40, 50})

	b, err := board.New("sales", "", 5,
		[]*column.Buffer{cityBuf, saleBuf},
		[]board.ColumnSpec{
			{Name: "city", Type: column.Category},
			{Name: "amount", Type: column.Float64},
		},
		map[string]*column.Dictionary{"city": dict},
	)
	require.NoError(t, err)
	return b
}

func TestGroupByASumAndCount(t *testing.T) {
	b := newSalesBoard(t)
	s := scanner.New(b, nil)

	realClause := []Term{
		Key("city"),
		Aggregate("total", AggSum, varExprForAmount()),
		Aggregate("n", AggCountStar, nil),
	}

	partial, err := GroupByA(b, s, realClause, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, partial.NRows())

	cityCol, ok := partial.Column("city")
	require.True(t, ok)
	totalCol, ok := partial.Column("total")
	require.True(t, ok)
	nCol, ok := partial.Column("n")
	require.True(t, ok)

	totals := map[string]float64{}
	counts := map[string]uint64{}
	for row := 0; row < partial.NRows(); row++ {
		city := cityCol.FormatValueRaw(row)
		var tv [1]float64
		totalCol.ReadFloat64(row, row+1, tv[:])
		totals[city] = tv[0]
		var nv [1]uint64
		nCol.ReadUint64(row, row+1, nv[:])
		counts[city] = nv[0]
	}
	assert.Equal(t, float64(90), totals["NY"])
	assert.Equal(t, float64(60), totals["LA"])
	assert.Equal(t, uint64(3), counts["NY"])
	assert.Equal(t, uint64(2), counts["LA"])
}

func TestGroupByCRenamesBareVars(t *testing.T) {
	b := newSalesBoard(t)
	s := scanner.New(b, nil)

	partial, err := GroupByA(b, s, []Term{
		Key("city"),
		Aggregate("total", AggSum, varExprForAmount()),
	}, nil)
	require.NoError(t, err)

	final, err := GroupByC(partial, s, []projector.Term{
		{Name: "city_name", Expr: varExpr("city")},
		{Name: "grand_total", Expr: varExpr("total")},
	})
	require.NoError(t, err)

	_, ok := final.Column("city_name")
	assert.True(t, ok)
	_, ok = final.Column("grand_total")
	assert.True(t, ok)
}

func TestDefaultBundlerNoKeysProducesSingleGroup(t *testing.T) {
	cols := []*column.Column{}
	groups, err := DefaultBundler{}.Bundle(cols, 4)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, []uint32{0, 1, 2, 3}, groups[0].Rows)
}
