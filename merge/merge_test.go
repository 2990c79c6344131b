package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"board/board"
	"board/column"
)

func newPartial(t *testing.T, cities []string, sums []float64, counts []uint64) *board.Board {
	t.Helper()
	n := len(cities)
	cityBuf := column.NewBuffer(column.Uint32, n)
	dict := column.NewDictionary()
	for i, s := range cities {
		cityBuf.MutUint32()[i] = dict.Intern(s)
	}
	sumBuf := column.NewBuffer(column.Float64, n)
	copy(sumBuf.MutFloat64(), sums)
	countBuf := column.NewBuffer(column.Uint64, n)
	copy(countBuf.MutUint64(), counts)

	b, err := board.New("partial", "", n,
		[]*column.Buffer{cityBuf, sumBuf, countBuf},
		[]board.ColumnSpec{
			{Name: "city", Type: column.Category},
			{Name: "total", Type: column.Float64},
			{Name: "n", Type: column.Uint64},
		},
		map[string]*column.Dictionary{"city": dict},
	)
	require.NoError(t, err)
	return b
}

func testClause() []Role {
	return []Role{
		{Name: "city", IsKey: true},
		{Name: "total", Agg: ValueSum},
		{Name: "n", Agg: ValueCount},
	}
}

func TestMergeRowAlignedFastPath(t *testing.T) {
	self := newPartial(t, []string{"NY", "LA"}, []float64{10, 20}, []uint64{1, 2})
	other := newPartial(t, []string{"NY", "LA"}, []float64{5, 1}, []uint64{1, 1})

	err := Merge(self, other, testClause())
	require.NoError(t, err)

	totalCol, ok := self.Column("total")
	require.True(t, ok)
	nCol, ok := self.Column("n")
	require.True(t, ok)

	var totals [2]float64
	totalCol.ReadFloat64(0, 2, totals[:])
	assert.Equal(t, [2]float64{15, 21}, totals)

	var counts [2]uint64
	nCol.ReadUint64(0, 2, counts[:])
	assert.Equal(t, [2]uint64{2, 3}, counts)
}

func TestMergeKWayMergeOnPartlyOverlappingKeys(t *testing.T) {
	self := newPartial(t, []string{"LA", "NY"}, []float64{20, 10}, []uint64{2, 1})
	other := newPartial(t, []string{"LA", "SF"}, []float64{1, 30}, []uint64{1, 3})

	err := Merge(self, other, testClause())
	require.NoError(t, err)

	require.Equal(t, 3, self.NRows())
	cityCol, ok := self.Column("city")
	require.True(t, ok)
	totalCol, ok := self.Column("total")
	require.True(t, ok)

	totals := map[string]float64{}
	for i := 0; i < self.NRows(); i++ {
		var v [1]float64
		totalCol.ReadFloat64(i, i+1, v[:])
		totals[cityCol.FormatValueRaw(i)] = v[0]
	}
	assert.Equal(t, float64(21), totals["LA"])
	assert.Equal(t, float64(10), totals["NY"])
	assert.Equal(t, float64(30), totals["SF"])
}

func TestMergeRejectsTypeMismatch(t *testing.T) {
	self := newPartial(t, []string{"NY"}, []float64{1}, []uint64{1})

	cityBuf := column.NewBuffer(column.Int64, 1)
	other, err := board.New("other", "", 1,
		[]*column.Buffer{cityBuf},
		[]board.ColumnSpec{{Name: "city", Type: column.Int64}},
		nil,
	)
	require.NoError(t, err)

	err = Merge(self, other, []Role{{Name: "city", IsKey: true}})
	assert.Error(t, err)
}

func TestMergeRejectsMissingColumn(t *testing.T) {
	self := newPartial(t, []string{"NY"}, []float64{1}, []uint64{1})
	other := newPartial(t, []string{"NY"}, []float64{1}, []uint64{1})

	err := Merge(self, other, []Role{{Name: "missing", IsKey: true}})
	assert.Error(t, err)
}
