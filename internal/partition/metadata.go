// Package partition is the persistent partition reader/writer collaborator
// spec.md §6 names: a Board is "backed up" by writing one row per in-memory
// row into a staging table over database/sql, and "read" by streaming rows
// back into fresh typed buffers. A sidecar TOML file records the schema and
// rowcount the way the teacher's internal/parser/mysql records a CREATE
// TABLE's shape, so a partition can be rediscovered without touching the
// database.
package partition

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"board/column"
)

// ColumnMeta describes one column's on-disk shape (spec.md §3's per-column
// type, mirrored into the sidecar file the way a schema TOML dump would).
type ColumnMeta struct {
	Name        string `toml:"name"`
	Type        string `toml:"type"`
	Description string `toml:"description,omitempty"`
}

// Metadata is the sidecar "-part.txt" document: everything needed to
// recreate a Board's schema and know how many rows its staging table holds,
// without opening a connection.
type Metadata struct {
	Name        string       `toml:"name"`
	Description string       `toml:"description,omitempty"`
	RowCount    int          `toml:"row_count"`
	Table       string       `toml:"table"`
	CreatedAt   time.Time    `toml:"created_at"`
	Columns     []ColumnMeta `toml:"columns"`
}

// WriteMetadata encodes meta as TOML to path, overwriting any existing file.
func WriteMetadata(path string, meta Metadata) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("partition: create %q: %w", path, err)
	}
	defer f.Close()
	return EncodeMetadata(f, meta)
}

// EncodeMetadata writes meta as TOML to w.
func EncodeMetadata(w io.Writer, meta Metadata) error {
	return toml.NewEncoder(w).Encode(meta)
}

// ReadMetadata decodes a sidecar file written by WriteMetadata.
func ReadMetadata(path string) (Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("partition: open %q: %w", path, err)
	}
	defer f.Close()
	var meta Metadata
	if _, err := toml.NewDecoder(f).Decode(&meta); err != nil {
		return Metadata{}, fmt.Errorf("partition: decode %q: %w", path, err)
	}
	return meta, nil
}

// typeName renders a column.DataType the way it is stored in a sidecar file
// (the same strings column.DataType.String() produces, kept distinct here
// so a future on-disk type alias doesn't silently track Go-side renames).
func typeName(t column.DataType) string { return t.String() }

func parseTypeName(s string) (column.DataType, error) {
	for t := column.Int8; t <= column.Oid; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return column.Unknown, fmt.Errorf("partition: unknown column type %q", s)
}
