package column

// growBy extends the column by n rows (all initially invalid), returning
// the row index the new rows start at.
func (c *Column) growBy(n int) int {
	start := c.Len()
	c.buf.SetLen(start + n)
	c.vld = c.vld.Resize(start + n)
	return start
}

func (c *Column) shrinkTo(n int) {
	c.buf.SetLen(n)
	c.vld = c.vld.Resize(n)
}

// AppendColumn appends every row of src onto c using the Table 1 widening
// rules (spec.md §4.1 "append from another Column"). It fails with
// ErrTypeMismatch, leaving c unchanged, if src's type cannot widen to c's.
func (c *Column) AppendColumn(src *Column) (int, int) {
	n := src.Len()
	if n == 0 {
		return 0, 0
	}
	start := c.growBy(n)

	switch {
	case c.typ.IsSigned():
		vals := make([]int64, n)
		if _, code := src.ReadInt64(0, n, vals); code != 0 {
			c.shrinkTo(start)
			return 0, code
		}
		for i := 0; i < n; i++ {
			c.setInt64(start+i, vals[i])
			c.SetValid(start+i, src.IsValid(i))
		}
	case c.typ.IsUnsigned():
		vals := make([]uint64, n)
		if _, code := src.ReadUint64(0, n, vals); code != 0 {
			c.shrinkTo(start)
			return 0, code
		}
		for i := 0; i < n; i++ {
			c.setUint64(start+i, vals[i])
			c.SetValid(start+i, src.IsValid(i))
		}
	case c.typ == Float32:
		vals := make([]float32, n)
		if _, code := src.ReadFloat32(0, n, vals); code != 0 {
			c.shrinkTo(start)
			return 0, code
		}
		mv := c.buf.MutFloat32()
		for i := 0; i < n; i++ {
			mv[start+i] = vals[i]
			c.SetValid(start+i, src.IsValid(i))
		}
	case c.typ == Float64:
		vals := make([]float64, n)
		if _, code := src.ReadFloat64(0, n, vals); code != 0 {
			c.shrinkTo(start)
			return 0, code
		}
		mv := c.buf.MutFloat64()
		for i := 0; i < n; i++ {
			mv[start+i] = vals[i]
			c.SetValid(start+i, src.IsValid(i))
		}
	case c.typ == Text:
		mv := c.buf.MutStrings()
		for i := 0; i < n; i++ {
			if src.IsValid(i) {
				mv[start+i] = src.FormatValueRaw(i)
			}
			c.SetValid(start+i, src.IsValid(i))
		}
	case c.typ == Category:
		mv := c.buf.MutUint32()
		for i := 0; i < n; i++ {
			if src.IsValid(i) {
				mv[start+i] = c.dict.Intern(src.FormatValueRaw(i))
			}
			c.SetValid(start+i, src.IsValid(i))
		}
	case c.typ == Oid:
		if src.typ != Oid {
			c.shrinkTo(start)
			return 0, ErrTypeMismatch
		}
		mv := c.buf.MutOids()
		copy(mv[start:], src.buf.Oids())
		for i := 0; i < n; i++ {
			c.SetValid(start+i, src.IsValid(i))
		}
	default:
		c.shrinkTo(start)
		return 0, ErrTypeMismatch
	}
	return n, 0
}

func (c *Column) setInt64(row int, v int64) {
	switch c.typ {
	case Int8:
		c.buf.MutInt8()[row] = int8(v)
	case Int16:
		c.buf.MutInt16()[row] = int16(v)
	case Int32:
		c.buf.MutInt32()[row] = int32(v)
	case Int64:
		c.buf.MutInt64()[row] = v
	}
}

func (c *Column) setUint64(row int, v uint64) {
	switch c.typ {
	case Uint8:
		c.buf.MutUint8()[row] = uint8(v)
	case Uint16:
		c.buf.MutUint16()[row] = uint16(v)
	case Uint32:
		c.buf.MutUint32()[row] = uint32(v)
	case Uint64:
		c.buf.MutUint64()[row] = v
	}
}

// FormatValueRaw is like FormatValue but without quoting/sentinel wrapping:
// it returns the column's own textual value for row i (used when widening
// into a Text/Category destination), or "" for an invalid row (validity is
// copied separately by the caller).
func (c *Column) FormatValueRaw(row int) string {
	if !c.IsValid(row) {
		return ""
	}
	switch c.typ {
	case Text:
		return c.buf.Strings()[row]
	case Category:
		return c.dict.MustString(c.buf.Uint32()[row])
	case Int8, Int16, Int32, Int64:
		return formatInt(c.rawInt64(row))
	case Uint8, Uint16, Uint32, Uint64:
		return formatUint(c.rawUint64(row))
	case Float32:
		return formatFloat(float64(c.buf.Float32()[row]), 7)
	case Float64:
		return formatFloat(c.buf.Float64()[row], 15)
	default:
		return ""
	}
}

// AppendFloat64Literal appends a raw []float64 buffer with an accompanying
// validity mask (spec.md §4.1 "append literal buffer"). c must already be a
// Float64 column; used by Projector/GroupBy to extend a derived column.
func (c *Column) AppendFloat64Literal(values []float64, valid Mask) (int, int) {
	if c.typ != Float64 {
		return 0, ErrTypeMismatch
	}
	n := len(values)
	start := c.growBy(n)
	mv := c.buf.MutFloat64()
	for i := 0; i < n; i++ {
		mv[start+i] = values[i]
		c.SetValid(start+i, valid.Get(i))
	}
	return n, 0
}

// AppendUint32Literal is AppendFloat64Literal's Uint32/Category counterpart,
// used for the `count(*)` constant-ones column (spec.md §4.4).
func (c *Column) AppendUint32Literal(values []uint32, valid Mask) (int, int) {
	if c.typ != Uint32 && c.typ != Category {
		return 0, ErrTypeMismatch
	}
	n := len(values)
	start := c.growBy(n)
	mv := c.buf.MutUint32()
	for i := 0; i < n; i++ {
		mv[start+i] = values[i]
		c.SetValid(start+i, valid.Get(i))
	}
	return n, 0
}
