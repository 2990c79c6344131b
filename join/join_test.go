package join

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"board/board"
	"board/column"
	"board/expr"
)

func newOrdersBoard(t *testing.T) *board.Board {
	t.Helper()
	custBuf := column.NewBuffer(column.Int64, 4)
	copy(custBuf.MutInt64(), []int64{1, 2, 1, 3})
	amountBuf := column.NewBuffer(column.Float64, 4)
	copy(amountBuf.MutFloat64(), []float64{100, 200, 50, 300})

	b, err := board.New("orders", "", 4,
		[]*column.Buffer{custBuf, amountBuf},
		[]board.ColumnSpec{
			{Name: "customer_id", Type: column.Int64},
			{Name: "amount", Type: column.Float64},
		},
		nil,
	)
	require.NoError(t, err)
	return b
}

func newCustomersBoard(t *testing.T) *board.Board {
	t.Helper()
	idBuf := column.NewBuffer(column.Int64, 2)
	copy(idBuf.MutInt64(), []int64{1, 2})
	nameBuf := column.NewBuffer(column.Uint32, 2)
	dict := column.NewDictionary()
	for i, s := range []string{"Alice", "Bob"} {
		nameBuf.MutUint32()[i] = dict.Intern(s)
	}

	b, err := board.New("customers", "", 2,
		[]*column.Buffer{idBuf, nameBuf},
		[]board.ColumnSpec{
			{Name: "customer_id", Type: column.Int64},
			{Name: "name", Type: column.Category},
		},
		map[string]*column.Dictionary{"name": dict},
	)
	require.NoError(t, err)
	return b
}

func TestJoinProducesMatchingPairs(t *testing.T) {
	orders := newOrdersBoard(t)
	customers := newCustomersBoard(t)

	out, err := Join(orders, customers, "customer_id", nil, nil, []Projection{
		{Name: "name", Ref: "S.name"},
		{Name: "amount", Ref: "R.amount"},
	})
	require.NoError(t, err)
	require.Equal(t, 3, out.NRows())

	nameCol, ok := out.Column("name")
	require.True(t, ok)
	amountCol, ok := out.Column("amount")
	require.True(t, ok)

	totals := map[string]float64{}
	for i := 0; i < out.NRows(); i++ {
		var v [1]float64
		amountCol.ReadFloat64(i, i+1, v[:])
		totals[nameCol.FormatValueRaw(i)] += v[0]
	}
	assert.Equal(t, float64(150), totals["Alice"])
	assert.Equal(t, float64(200), totals["Bob"])
}

func TestJoinUnqualifiedProjectionPrefersR(t *testing.T) {
	orders := newOrdersBoard(t)
	customers := newCustomersBoard(t)

	out, err := Join(orders, customers, "customer_id", nil, nil, []Projection{
		{Name: "customer_id", Ref: "customer_id"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, out.NRows())
}

func TestJoinWithPerSidePredicate(t *testing.T) {
	orders := newOrdersBoard(t)
	customers := newCustomersBoard(t)

	cond := expr.RangeExpr("amount", expr.OpGE, 100)
	out, err := Join(orders, customers, "customer_id", cond, nil, []Projection{
		{Name: "name", Ref: "S.name"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, out.NRows())
}

func TestJoinUnknownColumnErrors(t *testing.T) {
	orders := newOrdersBoard(t)
	customers := newCustomersBoard(t)

	_, err := Join(orders, customers, "nope", nil, nil, nil)
	assert.Error(t, err)
}

func TestJoinIncompatibleTypesError(t *testing.T) {
	orders := newOrdersBoard(t)

	nameBuf := column.NewBuffer(column.Uint32, 1)
	dict := column.NewDictionary()
	nameBuf.MutUint32()[0] = dict.Intern("x")
	s, err := board.New("s", "", 1,
		[]*column.Buffer{nameBuf},
		[]board.ColumnSpec{{Name: "customer_id", Type: column.Category}},
		map[string]*column.Dictionary{"customer_id": dict},
	)
	require.NoError(t, err)

	_, err = Join(orders, s, "customer_id", nil, nil, nil)
	assert.Error(t, err)
}
