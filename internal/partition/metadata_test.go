package partition

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"board/column"
)

func TestMetadataEncodeDecodeRoundTrip(t *testing.T) {
	meta := Metadata{
		Name:        "cities",
		Description: "sample cities",
		RowCount:    3,
		Table:       "cities_partition",
		CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Columns: []ColumnMeta{
			{Name: "city", Type: "category"},
			{Name: "population", Type: "int64", Description: "head count"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeMetadata(&buf, meta))

	path := t.TempDir() + "/cities-part.txt"
	require.NoError(t, WriteMetadata(path, meta))

	got, err := ReadMetadata(path)
	require.NoError(t, err)
	assert.Equal(t, meta.Name, got.Name)
	assert.Equal(t, meta.RowCount, got.RowCount)
	assert.Equal(t, meta.Table, got.Table)
	require.Len(t, got.Columns, 2)
	assert.Equal(t, "city", got.Columns[0].Name)
	assert.Equal(t, "category", got.Columns[0].Type)
	assert.Equal(t, "head count", got.Columns[1].Description)
}

func TestParseTypeNameRoundTripsEveryDataType(t *testing.T) {
	for t2 := column.Int8; t2 <= column.Oid; t2++ {
		parsed, err := parseTypeName(typeName(t2))
		require.NoError(t, err)
		assert.Equal(t, t2, parsed)
	}
}

func TestParseTypeNameRejectsUnknown(t *testing.T) {
	_, err := parseTypeName("not-a-type")
	assert.Error(t, err)
}

func TestMysqlTypeMapping(t *testing.T) {
	assert.Equal(t, "BIGINT", mysqlType(column.Int64))
	assert.Equal(t, "VARCHAR(255)", mysqlType(column.Category))
	assert.Equal(t, "DOUBLE", mysqlType(column.Float64))
}
