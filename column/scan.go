package column

import "board/expr"

// ScanRange evaluates a continuous-range predicate (column op scalar)
// against every row selected by in, intersected first with this column's own
// validity mask (spec.md §4.1 "scan"). expr.OpNotNull means "IS NOT NULL"
// and simply returns the intersected validity mask.
func (c *Column) ScanRange(op expr.Op, scalar float64, in Mask) Mask {
	valid := in.And(c.vld)
	if op == expr.OpNotNull {
		return valid
	}
	out := NewMask(c.Len())
	for _, r := range valid.Ones() {
		v := c.rawFloat64(int(r))
		if compareOp(v, op, scalar) {
			out.Set(int(r))
		}
	}
	return out
}

func compareOp(v float64, op expr.Op, scalar float64) bool {
	switch op {
	case expr.OpLT:
		return v < scalar
	case expr.OpLE:
		return v <= scalar
	case expr.OpEQ:
		return v == scalar
	case expr.OpGE:
		return v >= scalar
	case expr.OpGT:
		return v > scalar
	case expr.OpNE:
		return v != scalar
	default:
		return false
	}
}

// ScanDiscrete evaluates a numeric IN (list) predicate (spec.md
// DiscreteRange/IntHod/UIntHod).
func (c *Column) ScanDiscrete(values []float64, in Mask) Mask {
	set := make(map[float64]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	valid := in.And(c.vld)
	out := NewMask(c.Len())
	for _, r := range valid.Ones() {
		v := c.rawFloat64(int(r))
		if _, ok := set[v]; ok {
			out.Set(int(r))
		}
	}
	return out
}
