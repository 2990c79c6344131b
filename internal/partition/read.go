package partition

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"board/board"
	"board/column"
)

// Read streams table back into a fresh Board built from meta's schema,
// the counterpart to Backup (spec.md §6's partition reader/writer contract).
// Rows are ordered by the staging table's internal "__row" column so the
// Board's row order matches what Backup wrote.
func (s *Store) Read(ctx context.Context, meta Metadata) (*board.Board, error) {
	schema := make([]board.ColumnSpec, len(meta.Columns))
	buffers := make([]*column.Buffer, len(meta.Columns))
	dicts := make(map[string]*column.Dictionary, len(meta.Columns))
	colTypes := make([]column.DataType, len(meta.Columns))

	for i, cm := range meta.Columns {
		t, err := parseTypeName(cm.Type)
		if err != nil {
			return nil, err
		}
		colTypes[i] = t
		schema[i] = board.ColumnSpec{Name: cm.Name, Type: t, Description: cm.Description}
		buffers[i] = column.NewBuffer(physicalBufferType(t), meta.RowCount)
		if t == column.Category {
			dicts[cm.Name] = column.NewDictionary()
		}
	}

	quoted := make([]string, len(meta.Columns))
	for i, cm := range meta.Columns {
		quoted[i] = fmt.Sprintf("`%s`", cm.Name)
	}
	query := fmt.Sprintf("SELECT %s FROM `%s` ORDER BY `__row`", strings.Join(quoted, ", "), meta.Table)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("partition: read %q: %w", meta.Table, err)
	}
	defer rows.Close()

	scanTargets := make([]any, len(meta.Columns))
	values := make([]sql.NullString, len(meta.Columns))
	for i := range values {
		scanTargets[i] = &values[i]
	}
	nulls := make([][]int, len(meta.Columns))

	row := 0
	for rows.Next() {
		if row >= meta.RowCount {
			return nil, fmt.Errorf("partition: read %q: more rows than metadata row_count %d", meta.Table, meta.RowCount)
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, fmt.Errorf("partition: scan row %d: %w", row, err)
		}
		for i, cm := range meta.Columns {
			if !values[i].Valid {
				nulls[i] = append(nulls[i], row)
				continue
			}
			if err := setCell(buffers[i], colTypes[i], dicts[cm.Name], row, values[i].String); err != nil {
				return nil, fmt.Errorf("partition: column %q row %d: %w", cm.Name, row, err)
			}
		}
		row++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("partition: read %q: %w", meta.Table, err)
	}

	b, err := board.New(meta.Name, meta.Description, meta.RowCount, buffers, schema, dicts)
	if err != nil {
		return nil, fmt.Errorf("partition: rebuild board: %w", err)
	}
	return b, markMissing(b, meta, nulls, row)
}

// markMissing clears validity for every cell that came back NULL, plus
// every row beyond what the query actually returned (a truncated table),
// matching spec.md §3's "absent data" convention rather than erroring.
// board.New marks every cell valid by default since a raw buffer carries no
// separate validity information (column.ReplaceBuffer's doc comment).
func markMissing(b *board.Board, meta Metadata, nulls [][]int, rowsRead int) error {
	for i, cm := range meta.Columns {
		c, ok := b.Column(cm.Name)
		if !ok {
			return fmt.Errorf("partition: rebuilt board missing column %q", cm.Name)
		}
		for _, row := range nulls[i] {
			c.SetValid(row, false)
		}
		for row := rowsRead; row < meta.RowCount; row++ {
			c.SetValid(row, false)
		}
	}
	return nil
}

func setCell(buf *column.Buffer, t column.DataType, dict *column.Dictionary, row int, s string) error {
	switch t {
	case column.Int8:
		v, err := parseInt(s, 8)
		if err != nil {
			return err
		}
		buf.MutInt8()[row] = int8(v)
	case column.Int16:
		v, err := parseInt(s, 16)
		if err != nil {
			return err
		}
		buf.MutInt16()[row] = int16(v)
	case column.Int32:
		v, err := parseInt(s, 32)
		if err != nil {
			return err
		}
		buf.MutInt32()[row] = int32(v)
	case column.Int64:
		v, err := parseInt(s, 64)
		if err != nil {
			return err
		}
		buf.MutInt64()[row] = v
	case column.Uint8:
		v, err := parseUint(s)
		if err != nil {
			return err
		}
		buf.MutUint8()[row] = uint8(v)
	case column.Uint16:
		v, err := parseUint(s)
		if err != nil {
			return err
		}
		buf.MutUint16()[row] = uint16(v)
	case column.Uint32:
		v, err := parseUint(s)
		if err != nil {
			return err
		}
		buf.MutUint32()[row] = uint32(v)
	case column.Uint64:
		v, err := parseUint(s)
		if err != nil {
			return err
		}
		buf.MutUint64()[row] = v
	case column.Float32:
		v, err := parseFloat(s)
		if err != nil {
			return err
		}
		buf.MutFloat32()[row] = float32(v)
	case column.Float64:
		v, err := parseFloat(s)
		if err != nil {
			return err
		}
		buf.MutFloat64()[row] = v
	case column.Text:
		buf.MutStrings()[row] = s
	case column.Category:
		code := dict.Intern(s)
		buf.MutUint32()[row] = code
	case column.Oid:
		o, err := parseOid(s)
		if err != nil {
			return err
		}
		buf.MutOids()[row] = o
	default:
		return fmt.Errorf("partition: unsupported column type %v", t)
	}
	return nil
}

func parseInt(s string, bits int) (int64, error) {
	var v int64
	_, err := fmt.Sscanf(s, "%d", &v)
	return v, err
}

func parseUint(s string) (uint64, error) {
	var v uint64
	_, err := fmt.Sscanf(s, "%d", &v)
	return v, err
}

func parseFloat(s string) (float64, error) {
	var v float64
	_, err := fmt.Sscanf(s, "%g", &v)
	return v, err
}

// physicalBufferType mirrors column.New's own (unexported) mapping: a
// Category column's physical storage is a Uint32 dictionary-code array, not
// a raw string array.
func physicalBufferType(t column.DataType) column.DataType {
	if t == column.Category {
		return column.Uint32
	}
	return t
}

func parseOid(s string) (column.Oid128, error) {
	if len(s) != 32 {
		return column.Oid128{}, fmt.Errorf("partition: malformed oid %q", s)
	}
	var hi, lo uint64
	if _, err := fmt.Sscanf(s[:16], "%016x", &hi); err != nil {
		return column.Oid128{}, err
	}
	if _, err := fmt.Sscanf(s[16:], "%016x", &lo); err != nil {
		return column.Oid128{}, err
	}
	return column.Oid128{Hi: hi, Lo: lo}, nil
}
