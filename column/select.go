package column

import "math"

// SelectInt64 returns a dense []int64 of the column's values at every set
// bit of mask, in row order (spec.md §4.1 "select-by-mask").
func (c *Column) SelectInt64(mask Mask) ([]int64, int) {
	if !canWidenToInt64(c.typ) {
		return nil, ErrTypeMismatch
	}
	rows := mask.Ones()
	out := make([]int64, len(rows))
	for i, r := range rows {
		if !c.IsValid(int(r)) {
			out[i] = sentinelInt64
			continue
		}
		out[i] = c.rawInt64(int(r))
	}
	return out, 0
}

// SelectUint64 is SelectInt64's unsigned counterpart.
func (c *Column) SelectUint64(mask Mask) ([]uint64, int) {
	if !canWidenToUint64(c.typ) {
		return nil, ErrTypeMismatch
	}
	rows := mask.Ones()
	out := make([]uint64, len(rows))
	for i, r := range rows {
		if !c.IsValid(int(r)) {
			out[i] = sentinelUint64
			continue
		}
		out[i] = c.rawUint64(int(r))
	}
	return out, 0
}

// SelectFloat64 is SelectInt64's floating-point counterpart.
func (c *Column) SelectFloat64(mask Mask) ([]float64, int) {
	if !canWidenToFloat64(c.typ) {
		return nil, ErrTypeMismatch
	}
	rows := mask.Ones()
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = c.rawFloat64OrNaN(int(r))
	}
	return out, 0
}

func (c *Column) rawFloat64OrNaN(row int) float64 {
	if !c.IsValid(row) {
		return math.NaN()
	}
	return c.rawFloat64(row)
}

// SelectStrings is universal: every type stringifies (spec.md §4.1). Values
// are raw (unquoted); use FormatValue for dump()'s display form.
func (c *Column) SelectStrings(mask Mask) []string {
	rows := mask.Ones()
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = c.FormatValueRaw(int(r))
	}
	return out
}

// SelectColumn builds a brand-new Column holding only the rows selected by
// mask, preserving this column's type, name, description and (shared)
// Dictionary. This is the operation Projector uses for a bare variable
// reference (spec.md §4.4).
func (c *Column) SelectColumn(mask Mask) *Column {
	rows := mask.Ones()
	out := &Column{
		name: c.name,
		desc: c.desc,
		typ:  c.typ,
		dict: c.dict,
		buf:  NewBuffer(bufferTypeFor(c.typ), len(rows)),
		vld:  NewMask(len(rows)),
	}
	for i, r := range rows {
		out.copyValueFrom(i, c, int(r))
	}
	return out
}

// copyValueFrom copies row srcRow of src into row dstRow of c, including
// validity. Both columns must share the same physical storage type.
func (c *Column) copyValueFrom(dstRow int, src *Column, srcRow int) {
	if !src.IsValid(srcRow) {
		c.SetValid(dstRow, false)
		return
	}
	c.SetValid(dstRow, true)
	switch c.typ {
	case Int8:
		c.buf.MutInt8()[dstRow] = src.buf.Int8()[srcRow]
	case Int16:
		c.buf.MutInt16()[dstRow] = src.buf.Int16()[srcRow]
	case Int32:
		c.buf.MutInt32()[dstRow] = src.buf.Int32()[srcRow]
	case Int64:
		c.buf.MutInt64()[dstRow] = src.buf.Int64()[srcRow]
	case Uint8:
		c.buf.MutUint8()[dstRow] = src.buf.Uint8()[srcRow]
	case Uint16:
		c.buf.MutUint16()[dstRow] = src.buf.Uint16()[srcRow]
	case Uint32, Category:
		c.buf.MutUint32()[dstRow] = src.buf.Uint32()[srcRow]
	case Uint64:
		c.buf.MutUint64()[dstRow] = src.buf.Uint64()[srcRow]
	case Float32:
		c.buf.MutFloat32()[dstRow] = src.buf.Float32()[srcRow]
	case Float64:
		c.buf.MutFloat64()[dstRow] = src.buf.Float64()[srcRow]
	case Text:
		c.buf.MutStrings()[dstRow] = src.buf.Strings()[srcRow]
	case Oid:
		c.buf.MutOids()[dstRow] = src.buf.Oids()[srcRow]
	}
}
