package board

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"board/column"
)

func newPeopleBoard(t *testing.T) *Board {
	t.Helper()
	ageBuf := column.NewBuffer(column.Int64, 3)
	copy(ageBuf.MutInt64(), []int64{10, 20, 30})
	cityBuf := column.NewBuffer(column.Uint32, 3)
	dict := column.NewDictionary()
	for i, s := range []string{"NY", "LA", "SF"} {
		cityBuf.MutUint32()[i] = dict.Intern(s)
	}
	b, err := New("people", "a test board", 3,
		[]*column.Buffer{ageBuf, cityBuf},
		[]ColumnSpec{
			{Name: "age", Type: column.Int64},
			{Name: "city", Type: column.Category},
		},
		map[string]*column.Dictionary{"city": dict},
	)
	require.NoError(t, err)
	return b
}

func TestNewRejectsMismatchedBufferCount(t *testing.T) {
	_, err := New("x", "", 3, nil, []ColumnSpec{{Name: "a", Type: column.Int64}}, nil)
	assert.Error(t, err)
}

func TestNewRejectsDuplicateColumnNames(t *testing.T) {
	buf1 := column.NewBuffer(column.Int64, 1)
	buf2 := column.NewBuffer(column.Int64, 1)
	_, err := New("x", "", 1, []*column.Buffer{buf1, buf2}, []ColumnSpec{
		{Name: "a", Type: column.Int64},
		{Name: "A", Type: column.Int64},
	}, nil)
	assert.Error(t, err)
}

func TestNewRejectsRowCountMismatch(t *testing.T) {
	buf := column.NewBuffer(column.Int64, 5)
	_, err := New("x", "", 3, []*column.Buffer{buf}, []ColumnSpec{{Name: "a", Type: column.Int64}}, nil)
	assert.Error(t, err)
}

func TestColumnLookupIsCaseInsensitive(t *testing.T) {
	b := newPeopleBoard(t)
	_, ok := b.Column("AGE")
	assert.True(t, ok)
	_, ok = b.Column("City")
	assert.True(t, ok)
	_, ok = b.Column("nope")
	assert.False(t, ok)
}

func TestColumnNamesDefaultSortedOrder(t *testing.T) {
	b := newPeopleBoard(t)
	assert.Equal(t, []string{"age", "city"}, b.ColumnNames())
}

func TestSetDisplayOrderAppliesAndValidates(t *testing.T) {
	b := newPeopleBoard(t)
	require.NoError(t, b.SetDisplayOrder([]string{"city", "age"}))
	assert.Equal(t, []string{"city", "age"}, b.ColumnNames())

	assert.Error(t, b.SetDisplayOrder([]string{"nope"}))
	assert.Error(t, b.SetDisplayOrder([]string{"city", "city"}))
}

func TestSetDisplayOrderAllowsPrefix(t *testing.T) {
	b := newPeopleBoard(t)
	require.NoError(t, b.SetDisplayOrder([]string{"city"}))
	assert.Equal(t, []string{"city", "age"}, b.ColumnNames())
}

func TestLimitTruncatesRows(t *testing.T) {
	b := newPeopleBoard(t)
	b.Limit(2)
	assert.Equal(t, 2, b.NRows())
	ageCol, _ := b.Column("age")
	assert.Equal(t, 2, ageCol.Len())
}

func TestLimitNoopWhenNGreaterThanRows(t *testing.T) {
	b := newPeopleBoard(t)
	b.Limit(10)
	assert.Equal(t, 3, b.NRows())
}

func TestReverseRows(t *testing.T) {
	b := newPeopleBoard(t)
	b.ReverseRows()
	ageCol, _ := b.Column("age")
	var got [3]int64
	ageCol.ReadInt64(0, 3, got[:])
	assert.Equal(t, [3]int64{30, 20, 10}, got)
}

func TestPermuteReordersEveryColumnAndRowValidity(t *testing.T) {
	b := newPeopleBoard(t)
	b.Permute([]uint32{2, 0, 1})
	ageCol, _ := b.Column("age")
	var got [3]int64
	ageCol.ReadInt64(0, 3, got[:])
	assert.Equal(t, [3]int64{30, 10, 20}, got)
}

func TestAppendRowsGrowsBoard(t *testing.T) {
	b := newPeopleBoard(t)
	provide := func(name string) (*column.Column, error) {
		switch name {
		case "age":
			c := column.New("age", column.Int64, 1)
			c.Buffer().MutInt64()[0] = 99
			c.SetValid(0, true)
			return c, nil
		case "city":
			c := column.New("city", column.Category, 1)
			c.Buffer().MutUint32()[0] = c.Dictionary().Intern("DEN")
			c.SetValid(0, true)
			return c, nil
		}
		return nil, assertNeverReached(t)
	}
	n, err := b.AppendRows(1, provide)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 4, b.NRows())

	ageCol, _ := b.Column("age")
	var got [4]int64
	ageCol.ReadInt64(0, 4, got[:])
	assert.Equal(t, int64(99), got[3])
}

func assertNeverReached(t *testing.T) error {
	t.Helper()
	t.Fatal("unexpected column name requested")
	return nil
}

func TestReserveSpaceAndCapacity(t *testing.T) {
	b := newPeopleBoard(t)
	b.ReserveSpace(100)
	assert.Equal(t, 100, b.Capacity())
	b.ReserveSpace(10) // smaller request is a no-op
	assert.Equal(t, 100, b.Capacity())
}

func TestEstimateWithoutIndexProviderReturnsFullRange(t *testing.T) {
	b := newPeopleBoard(t)
	lo, hi := b.Estimate(nil, "anything")
	assert.Equal(t, 0, lo)
	assert.Equal(t, 3, hi)
}

type fakeIndex struct{}

func (fakeIndex) Estimate(predicateKey string) (int, int, bool) {
	if predicateKey == "age:4:18:" {
		return 1, 2, true
	}
	return 0, 0, false
}

func TestEstimateConsultsIndexProvider(t *testing.T) {
	b := newPeopleBoard(t)
	lo, hi := b.Estimate(fakeIndex{}, "age:4:18:")
	assert.Equal(t, 1, lo)
	assert.Equal(t, 2, hi)

	lo, hi = b.Estimate(fakeIndex{}, "unknown")
	assert.Equal(t, 0, lo)
	assert.Equal(t, 3, hi)
}

func TestDescribeWritesHeaderAndColumns(t *testing.T) {
	b := newPeopleBoard(t)
	var sb strings.Builder
	require.NoError(t, b.Describe(&sb))
	out := sb.String()
	assert.Contains(t, out, `board "people": a test board`)
	assert.Contains(t, out, "rows: 3")
	assert.Contains(t, out, "age")
	assert.Contains(t, out, "city")
	assert.Contains(t, out, "dict size 3")
}

func TestDumpEmitsRowsWithDelimiter(t *testing.T) {
	b := newPeopleBoard(t)
	var sb strings.Builder
	code := b.Dump(&sb, 0, 10, ",")
	assert.Equal(t, 0, code)
	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `10,"NY"`, lines[0])
}

func TestDumpRespectsOffsetAndCount(t *testing.T) {
	b := newPeopleBoard(t)
	var sb strings.Builder
	code := b.Dump(&sb, 1, 1, ",")
	assert.Equal(t, 0, code)
	assert.Equal(t, `20,"LA"`, strings.TrimSpace(sb.String()))
}
