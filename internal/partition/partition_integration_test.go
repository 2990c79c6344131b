package partition

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"

	"board/board"
	"board/column"
)

type testMySQLContainer struct {
	container *mysql.MySQLContainer
	dsn       string
}

func setupMySQL(t *testing.T) *testMySQLContainer {
	t.Helper()
	ctx := context.Background()

	mysqlContainer, err := mysql.Run(ctx, "mysql:8.0",
		mysql.WithDatabase("testdb"),
		mysql.WithUsername("root"),
		mysql.WithPassword("testpass"),
	)
	require.NoError(t, err, "failed to start MySQL container")

	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(mysqlContainer); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := mysqlContainer.ConnectionString(ctx, "parseTime=true")
	require.NoError(t, err, "failed to get connection string")

	return &testMySQLContainer{container: mysqlContainer, dsn: dsn}
}

func sampleBoard(t *testing.T) *board.Board {
	t.Helper()
	cityBuf := column.NewBuffer(column.Uint32, 3)
	dict := column.NewDictionary()
	cityBuf.MutUint32()[0] = dict.Intern("Warsaw")
	cityBuf.MutUint32()[1] = dict.Intern("Krakow")
	cityBuf.MutUint32()[2] = dict.Intern("Warsaw")

	popBuf := column.NewBuffer(column.Int64, 3)
	copy(popBuf.MutInt64(), []int64{1800000, 780000, 1800000})

	b, err := board.New("cities", "sample cities", 3,
		[]*column.Buffer{cityBuf, popBuf},
		[]board.ColumnSpec{
			{Name: "city", Type: column.Category},
			{Name: "population", Type: column.Int64},
		},
		map[string]*column.Dictionary{"city": dict},
	)
	require.NoError(t, err)
	return b
}

func TestStoreBackupAndReadRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tc := setupMySQL(t)
	ctx := context.Background()

	s, err := Open(ctx, tc.dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	b := sampleBoard(t)

	t.Run("backup then read reproduces rows", func(t *testing.T) {
		meta, err := s.Backup(ctx, b, "cities_partition")
		require.NoError(t, err)
		assert.Equal(t, 3, meta.RowCount)
		assert.Equal(t, "cities_partition", meta.Table)

		got, err := s.Read(ctx, meta)
		require.NoError(t, err)
		assert.Equal(t, 3, got.NRows())

		cur := board.NewCursor(got)
		var cities []string
		var pops []int64
		for cur.Fetch() {
			city, ok := cur.GetColumnAsString("city")
			require.True(t, ok)
			cities = append(cities, city)
			pop, ok := cur.GetColumnAsInt64("population")
			require.True(t, ok)
			pops = append(pops, pop)
		}
		assert.Equal(t, []string{"Warsaw", "Krakow", "Warsaw"}, cities)
		assert.Equal(t, []int64{1800000, 780000, 1800000}, pops)
	})

	t.Run("sidecar file round trip via BackupToFile/ReadFromFile", func(t *testing.T) {
		dir := t.TempDir()
		meta, err := s.BackupToFile(ctx, b, dir)
		require.NoError(t, err)

		got, err := ReadFromFile(ctx, s, dir, b.ID().String())
		require.NoError(t, err)
		assert.Equal(t, meta.RowCount, got.NRows())
		assert.Equal(t, b.Name(), got.Name())
	})
}

func TestStoreOpenInvalidDSN(t *testing.T) {
	_, err := Open(context.Background(), "invalid:user@tcp(127.0.0.1:1)/nope")
	assert.Error(t, err)
}
