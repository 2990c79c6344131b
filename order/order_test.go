package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"board/board"
	"board/column"
)

func newUnsortedBoard(t *testing.T) *board.Board {
	t.Helper()
	cityBuf := column.NewBuffer(column.Uint32, 5)
	dict := column.NewDictionary()
	for i, s := range []string{"LA", "NY", "LA", "SF", "NY"} {
		cityBuf.MutUint32()[i] = dict.Intern(s)
	}
	ageBuf := column.NewBuffer(column.Int64, 5)
	copy(ageBuf.MutInt64(), []int64{30, 20, 10, 40, 5})

	b, err := board.New("people", "", 5,
		[]*column.Buffer{cityBuf, ageBuf},
		[]board.ColumnSpec{
			{Name: "city", Type: column.Category},
			{Name: "age", Type: column.Int64},
		},
		map[string]*column.Dictionary{"city": dict},
	)
	require.NoError(t, err)
	return b
}

func TestOrderBySingleKeyAscending(t *testing.T) {
	b := newUnsortedBoard(t)
	err := OrderBy(b, []Key{{Column: "age", Direction: Ascending}})
	require.NoError(t, err)

	ageCol, ok := b.Column("age")
	require.True(t, ok)
	var got [5]int64
	ageCol.ReadInt64(0, 5, got[:])
	assert.Equal(t, [5]int64{5, 10, 20, 30, 40}, got)
}

func TestOrderBySingleKeyDescending(t *testing.T) {
	b := newUnsortedBoard(t)
	err := OrderBy(b, []Key{{Column: "age", Direction: Descending}})
	require.NoError(t, err)

	ageCol, ok := b.Column("age")
	require.True(t, ok)
	var got [5]int64
	ageCol.ReadInt64(0, 5, got[:])
	assert.Equal(t, [5]int64{40, 30, 20, 10, 5}, got)
}

func TestOrderBySegmentsWithinEqualKeyRuns(t *testing.T) {
	b := newUnsortedBoard(t)
	err := OrderBy(b, []Key{
		{Column: "city", Direction: Ascending},
		{Column: "age", Direction: Ascending},
	})
	require.NoError(t, err)

	cityCol, _ := b.Column("city")
	ageCol, _ := b.Column("age")
	gotCity := make([]string, 5)
	var gotAge [5]int64
	ageCol.ReadInt64(0, 5, gotAge[:])
	for i := range gotCity {
		gotCity[i] = cityCol.FormatValueRaw(i)
	}
	assert.Equal(t, []string{"LA", "LA", "NY", "NY", "SF"}, gotCity)
	assert.Equal(t, int64(10), gotAge[0])
	assert.Equal(t, int64(30), gotAge[1])
	assert.Equal(t, int64(5), gotAge[2])
	assert.Equal(t, int64(20), gotAge[3])
	assert.Equal(t, int64(40), gotAge[4])
}

func TestOrderByUnknownColumnErrors(t *testing.T) {
	b := newUnsortedBoard(t)
	err := OrderBy(b, []Key{{Column: "nope"}})
	assert.Error(t, err)
}

func TestOrderByEmptyKeysIsNoop(t *testing.T) {
	b := newUnsortedBoard(t)
	err := OrderBy(b, nil)
	require.NoError(t, err)

	ageCol, _ := b.Column("age")
	var got [5]int64
	ageCol.ReadInt64(0, 5, got[:])
	assert.Equal(t, [5]int64{30, 20, 10, 40, 5}, got)
}

func TestReorderSortsByNarrowestRangeFirst(t *testing.T) {
	b := newUnsortedBoard(t)
	err := Reorder(b)
	require.NoError(t, err)
	assert.Equal(t, 5, b.NRows())
}
