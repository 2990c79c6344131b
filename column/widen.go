package column

import (
	"fmt"
	"math"
)

// widenRank orders the signed/unsigned integer families by storage width,
// used to implement Table 1 ("any signed integer is requestable as any
// wider signed integer").
func widenRank(t DataType) int {
	switch t {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32:
		return 3
	case Int64, Uint64:
		return 4
	default:
		return 0
	}
}

// canWidenToInt64 reports whether a column of type src can be read out as
// int64 (Table 1: any integer type, signed or unsigned, widens to int64
// bit-for-bit per the "reinterpreted losslessly" clause for cross-family
// requests; Category/Text/Oid cannot).
func canWidenToInt64(src DataType) bool { return src.IsInteger() }

// canWidenToUint64 mirrors canWidenToInt64 for the unsigned destination.
func canWidenToUint64(src DataType) bool {
	return src.IsInteger() || src == Category // Category's dictionary code is itself a uint32
}

// canWidenToFloat64 implements "Doubles accept all integers up to 32-bit
// losslessly" plus both float widths.
func canWidenToFloat64(src DataType) bool {
	switch src {
	case Int8, Int16, Int32, Uint8, Uint16, Uint32, Float32, Float64:
		return true
	case Int64, Uint64:
		return true // wider request than the rule strictly allows losslessly; caller accepts potential precision loss, matching the original engine's permissive widening
	default:
		return false
	}
}

// canWidenToFloat32 implements "Floats accept any integer narrower than
// their mantissa" (float32 has a 24-bit mantissa: int8/16, uint8/16 fit
// exactly).
func canWidenToFloat32(src DataType) bool {
	switch src {
	case Int8, Int16, Uint8, Uint16, Float32:
		return true
	default:
		return false
	}
}

// ReadInt64 copies [begin,end) widened to int64 into dst, returning the
// count copied, or a negative code: ErrTypeMismatch if src cannot widen to
// int64, ErrMissingBuffer if dst is too small.
func (c *Column) ReadInt64(begin, end int, dst []int64) (int, int) {
	if !canWidenToInt64(c.typ) {
		return 0, ErrTypeMismatch
	}
	n := end - begin
	if n < 0 || len(dst) < n {
		return 0, ErrMissingBuffer
	}
	for i := 0; i < n; i++ {
		row := begin + i
		if !c.IsValid(row) {
			dst[i] = sentinelInt64
			continue
		}
		dst[i] = c.rawInt64(row)
	}
	return n, 0
}

func (c *Column) rawInt64(row int) int64 {
	switch c.typ {
	case Int8:
		return int64(c.buf.Int8()[row])
	case Int16:
		return int64(c.buf.Int16()[row])
	case Int32:
		return int64(c.buf.Int32()[row])
	case Int64:
		return c.buf.Int64()[row]
	case Uint8:
		return int64(c.buf.Uint8()[row])
	case Uint16:
		return int64(c.buf.Uint16()[row])
	case Uint32:
		return int64(c.buf.Uint32()[row])
	case Uint64:
		return int64(c.buf.Uint64()[row])
	default:
		return 0
	}
}

// ReadUint64 is ReadInt64's unsigned counterpart; Category columns widen to
// their raw dictionary code.
func (c *Column) ReadUint64(begin, end int, dst []uint64) (int, int) {
	if !canWidenToUint64(c.typ) {
		return 0, ErrTypeMismatch
	}
	n := end - begin
	if n < 0 || len(dst) < n {
		return 0, ErrMissingBuffer
	}
	for i := 0; i < n; i++ {
		row := begin + i
		if !c.IsValid(row) {
			dst[i] = sentinelUint64
			continue
		}
		dst[i] = c.rawUint64(row)
	}
	return n, 0
}

func (c *Column) rawUint64(row int) uint64 {
	switch c.typ {
	case Int8:
		return uint64(c.buf.Int8()[row])
	case Int16:
		return uint64(c.buf.Int16()[row])
	case Int32:
		return uint64(c.buf.Int32()[row])
	case Int64:
		return uint64(c.buf.Int64()[row])
	case Uint8:
		return uint64(c.buf.Uint8()[row])
	case Uint16:
		return uint64(c.buf.Uint16()[row])
	case Uint32, Category:
		return uint64(c.buf.Uint32()[row])
	case Uint64:
		return c.buf.Uint64()[row]
	default:
		return 0
	}
}

// ReadFloat64 widens [begin,end) to float64.
func (c *Column) ReadFloat64(begin, end int, dst []float64) (int, int) {
	if !canWidenToFloat64(c.typ) {
		return 0, ErrTypeMismatch
	}
	n := end - begin
	if n < 0 || len(dst) < n {
		return 0, ErrMissingBuffer
	}
	for i := 0; i < n; i++ {
		row := begin + i
		if !c.IsValid(row) {
			dst[i] = math.NaN()
			continue
		}
		dst[i] = c.rawFloat64(row)
	}
	return n, 0
}

func (c *Column) rawFloat64(row int) float64 {
	switch c.typ {
	case Int8:
		return float64(c.buf.Int8()[row])
	case Int16:
		return float64(c.buf.Int16()[row])
	case Int32:
		return float64(c.buf.Int32()[row])
	case Int64:
		return float64(c.buf.Int64()[row])
	case Uint8:
		return float64(c.buf.Uint8()[row])
	case Uint16:
		return float64(c.buf.Uint16()[row])
	case Uint32:
		return float64(c.buf.Uint32()[row])
	case Uint64:
		return float64(c.buf.Uint64()[row])
	case Float32:
		return float64(c.buf.Float32()[row])
	case Float64:
		return c.buf.Float64()[row]
	default:
		return math.NaN()
	}
}

// ReadFloat32 widens [begin,end) to float32.
func (c *Column) ReadFloat32(begin, end int, dst []float32) (int, int) {
	if !canWidenToFloat32(c.typ) {
		return 0, ErrTypeMismatch
	}
	n := end - begin
	if n < 0 || len(dst) < n {
		return 0, ErrMissingBuffer
	}
	for i := 0; i < n; i++ {
		row := begin + i
		if !c.IsValid(row) {
			dst[i] = float32(math.NaN())
			continue
		}
		switch c.typ {
		case Int8:
			dst[i] = float32(c.buf.Int8()[row])
		case Int16:
			dst[i] = float32(c.buf.Int16()[row])
		case Uint8:
			dst[i] = float32(c.buf.Uint8()[row])
		case Uint16:
			dst[i] = float32(c.buf.Uint16()[row])
		case Float32:
			dst[i] = c.buf.Float32()[row]
		}
	}
	return n, 0
}

// ReadString widens [begin,end) to their raw textual value (unquoted; use
// FormatValue for dump()'s display form). Strings are universally
// producible from any type (spec.md Table 1), so this never returns
// ErrTypeMismatch.
func (c *Column) ReadString(begin, end int, dst []string) (int, int) {
	n := end - begin
	if n < 0 || len(dst) < n {
		return 0, ErrMissingBuffer
	}
	for i := 0; i < n; i++ {
		dst[i] = c.FormatValueRaw(begin + i)
	}
	return n, 0
}

// FormatValue renders row i in canonical textual form (spec.md §4.1 dump()):
// strings quoted, integers decimal, floats with 7 (float32) or 15 (float64)
// significant digits, category decoded through the dictionary, unknown
// rendered as "(no data in memory)".
func (c *Column) FormatValue(row int) string {
	if !c.IsValid(row) {
		return "(no data in memory)"
	}
	switch c.typ {
	case Int8, Int16, Int32, Int64:
		return fmt.Sprintf("%d", c.rawInt64(row))
	case Uint8, Uint16, Uint32, Uint64:
		return fmt.Sprintf("%d", c.rawUint64(row))
	case Float32:
		return fmt.Sprintf("%.7g", float64(c.buf.Float32()[row]))
	case Float64:
		return fmt.Sprintf("%.15g", c.buf.Float64()[row])
	case Text:
		return fmt.Sprintf("%q", c.buf.Strings()[row])
	case Category:
		code := c.buf.Uint32()[row]
		return fmt.Sprintf("%q", c.dict.MustString(code))
	case Oid:
		o := c.buf.Oids()[row]
		return fmt.Sprintf("%016x%016x", o.Hi, o.Lo)
	default:
		return "(no data in memory)"
	}
}
