package partition

import (
	"context"
	"fmt"
	"path/filepath"

	"board/board"
)

// SidecarPath returns the conventional metadata filename for a Board's
// partition, keyed by its uuid.UUID identity the way the teacher keys a
// schema dump by table name: "<id>-part.txt" under dir.
func SidecarPath(dir string, b *board.Board) string {
	return filepath.Join(dir, fmt.Sprintf("%s-part.txt", b.ID()))
}

// BackupToFile backs b up into a staging table named after its id and
// writes the sidecar metadata file alongside it, returning the metadata
// actually written.
func (s *Store) BackupToFile(ctx context.Context, b *board.Board, dir string) (Metadata, error) {
	table := fmt.Sprintf("board_%s", sanitizeTableName(b.ID().String()))
	meta, err := s.Backup(ctx, b, table)
	if err != nil {
		return Metadata{}, err
	}
	meta.Name = b.Name()
	meta.Description = b.Description()
	if err := WriteMetadata(SidecarPath(dir, b), meta); err != nil {
		return Metadata{}, err
	}
	return meta, nil
}

// ReadFromFile reads the sidecar metadata file for id under dir, then
// streams the matching staging table back into a fresh Board.
func ReadFromFile(ctx context.Context, s *Store, dir, id string) (*board.Board, error) {
	meta, err := ReadMetadata(filepath.Join(dir, fmt.Sprintf("%s-part.txt", id)))
	if err != nil {
		return nil, err
	}
	return s.Read(ctx, meta)
}

func sanitizeTableName(id string) string {
	out := make([]byte, 0, len(id))
	for i := 0; i < len(id); i++ {
		c := id[i]
		if c == '-' {
			out = append(out, '_')
			continue
		}
		out = append(out, c)
	}
	return string(out)
}
