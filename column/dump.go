package column

import "io"

// Dump writes row's value in canonical text form (spec.md §4.1 "dump").
func (c *Column) Dump(w io.Writer, row int) error {
	_, err := io.WriteString(w, c.FormatValue(row))
	return err
}
