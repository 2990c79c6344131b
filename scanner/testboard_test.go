package scanner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"board/board"
	"board/column"
)

// newTestBoard builds a 5-row Board with an int64 "age" column and a
// category "city" column, used across scanner's tests.
func newTestBoard(t *testing.T) *board.Board {
	t.Helper()
	ageBuf := column.NewBuffer(column.Int64, 5)
	copy(ageBuf.MutInt64(), []int64{10, 18, 21, 65, 70})

	cityBuf := column.NewBuffer(column.Uint32, 5)
	dict := column.NewDictionary()
	codes := []string{"NY", "NY", "LA", "LA", "SF"}
	for i, s := range codes {
		cityBuf.MutUint32()[i] = dict.Intern(s)
	}

	b, err := board.New("people", "", 5,
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
