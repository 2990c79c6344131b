package partition

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"board/board"
	"board/column"
)

// Store is a database/sql-backed collaborator that backs up and reads
// Boards against a real MySQL server, the way the teacher's apply.Applier
// wraps a *sql.DB for schema migrations.
type Store struct {
	db *sql.DB
}

// Open establishes and pings a connection against dsn (a go-sql-driver/mysql
// data source name), mirroring apply.Applier.Connect.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("partition: open database connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("partition: ping: %w; additionally failed to close: %w", err, closeErr)
		}
		return nil, fmt.Errorf("partition: ping: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Backup writes every row of b into a fresh staging table named table
// (dropped and recreated), one SQL row per Board row, and returns the
// Metadata a caller should persist as a sidecar file via WriteMetadata.
func (s *Store) Backup(ctx context.Context, b *board.Board, table string) (Metadata, error) {
	names := b.ColumnNames()
	cols := make([]*column.Column, 0, len(names))
	for _, name := range names {
		c, ok := b.Column(name)
		if !ok {
			return Metadata{}, fmt.Errorf("partition: backup: column %q vanished mid-backup", name)
		}
		cols = append(cols, c)
	}

	if err := s.createStagingTable(ctx, table, cols); err != nil {
		return Metadata{}, err
	}

	meta := Metadata{
		Name:      b.Name(),
		Table:     table,
		RowCount:  b.NRows(),
		CreatedAt: b.CreatedAt(),
		Columns:   make([]ColumnMeta, len(cols)),
	}
	for i, c := range cols {
		meta.Columns[i] = ColumnMeta{Name: c.Name(), Type: typeName(c.Type()), Description: c.Description()}
	}

	if err := s.insertRows(ctx, table, cols, b.NRows()); err != nil {
		return Metadata{}, err
	}
	return meta, nil
}

func (s *Store) createStagingTable(ctx context.Context, table string, cols []*column.Column) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS `%s`", table)); err != nil {
		return fmt.Errorf("partition: drop staging table: %w", err)
	}

	defs := make([]string, 0, len(cols)+1)
	defs = append(defs, "`__row` INT NOT NULL")
	for _, c := range cols {
		defs = append(defs, fmt.Sprintf("`%s` %s NULL", c.Name(), mysqlType(c.Type())))
	}
	ddl := fmt.Sprintf("CREATE TABLE `%s` (%s, PRIMARY KEY (`__row`))", table, strings.Join(defs, ", "))
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("partition: create staging table: %w", err)
	}
	return nil
}

func (s *Store) insertRows(ctx context.Context, table string, cols []*column.Column, nRows int) error {
	if nRows == 0 {
		return nil
	}

	colNames := make([]string, 0, len(cols)+1)
	colNames = append(colNames, "`__row`")
	placeholders := make([]string, 0, len(cols)+1)
	placeholders = append(placeholders, "?")
	for _, c := range cols {
		colNames = append(colNames, fmt.Sprintf("`%s`", c.Name()))
		placeholders = append(placeholders, "?")
	}
	insertSQL := fmt.Sprintf("INSERT INTO `%s` (%s) VALUES (%s)", table, strings.Join(colNames, ", "), strings.Join(placeholders, ", "))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("partition: begin backup transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("partition: prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(cols)+1)
	for row := 0; row < nRows; row++ {
		args[0] = row
		for i, c := range cols {
			args[i+1] = cellValue(c, row)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("partition: insert row %d: %w", row, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("partition: commit backup: %w", err)
	}
	return nil
}

// cellValue reads one cell out of c for args passed to database/sql,
// returning nil for an invalid (null) cell (spec.md §3's validity bitmap).
func cellValue(c *column.Column, row int) any {
	if !c.IsValid(row) {
		return nil
	}
	buf := c.Buffer()
	switch c.Type() {
	case column.Int8:
		return buf.Int8()[row]
	case column.Int16:
		return buf.Int16()[row]
	case column.Int32:
		return buf.Int32()[row]
	case column.Int64:
		return buf.Int64()[row]
	case column.Uint8:
		return buf.Uint8()[row]
	case column.Uint16:
		return buf.Uint16()[row]
	case column.Uint32:
		return buf.Uint32()[row]
	case column.Uint64:
		return buf.Uint64()[row]
	case column.Float32:
		return buf.Float32()[row]
	case column.Float64:
		return buf.Float64()[row]
	case column.Text:
		return buf.Strings()[row]
	case column.Category:
		code := buf.Uint32()[row]
		return c.Dictionary().MustString(code)
	case column.Oid:
		o := buf.Oids()[row]
		return fmt.Sprintf("%016x%016x", o.Hi, o.Lo)
	default:
		return nil
	}
}

func mysqlType(t column.DataType) string {
	switch t {
	case column.Int8:
		return "TINYINT"
	case column.Int16:
		return "SMALLINT"
	case column.Int32:
		return "INT"
	case column.Int64:
		return "BIGINT"
	case column.Uint8:
		return "TINYINT UNSIGNED"
	case column.Uint16:
		return "SMALLINT UNSIGNED"
	case column.Uint32:
		return "INT UNSIGNED"
	case column.Uint64:
		return "BIGINT UNSIGNED"
	case column.Float32:
		return "FLOAT"
	case column.Float64:
		return "DOUBLE"
	case column.Text:
		return "TEXT"
	case column.Category:
		return "VARCHAR(255)"
	case column.Oid:
		return "CHAR(32)"
	default:
		return "TEXT"
	}
}
