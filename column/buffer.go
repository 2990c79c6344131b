package column

import "fmt"

// store holds the actual typed arrays behind a TypedBuffer. It is the unit
// of copy-on-write sharing: multiple TypedBuffer handles may point at the
// same store (refs > 1) until one of them needs to mutate, at which point
// Buffer.ensureUnique deep-copies it.
type store struct {
	refs int

	i8  []int8
	i16 []int16
	i32 []int32
	i64 []int64
	u8  []uint8
	u16 []uint16
	u32 []uint32
	u64 []uint64
	f32 []float32
	f64 []float64
	str []string
	oid []Oid128
}

func newStore(typ DataType, n int) *store {
	s := &store{refs: 1}
	switch typ {
	case Int8:
		s.i8 = make([]int8, n)
	case Int16:
		s.i16 = make([]int16, n)
	case Int32:
		s.i32 = make([]int32, n)
	case Int64:
		s.i64 = make([]int64, n)
	case Uint8:
		s.u8 = make([]uint8, n)
	case Uint16:
		s.u16 = make([]uint16, n)
	case Uint32:
		s.u32 = make([]uint32, n)
	case Uint64:
		s.u64 = make([]uint64, n)
	case Float32:
		s.f32 = make([]float32, n)
	case Float64:
		s.f64 = make([]float64, n)
	case Text, Category:
		s.str = make([]string, n)
	case Oid:
		s.oid = make([]Oid128, n)
	}
	return s
}

func (s *store) clone() *store {
	c := &store{refs: 1}
	c.i8 = append([]int8(nil), s.i8...)
	c.i16 = append([]int16(nil), s.i16...)
	c.i32 = append([]int32(nil), s.i32...)
	c.i64 = append([]int64(nil), s.i64...)
	c.u8 = append([]uint8(nil), s.u8...)
	c.u16 = append([]uint16(nil), s.u16...)
	c.u32 = append([]uint32(nil), s.u32...)
	c.u64 = append([]uint64(nil), s.u64...)
	c.f32 = append([]float32(nil), s.f32...)
	c.f64 = append([]float64(nil), s.f64...)
	c.str = append([]string(nil), s.str...)
	c.oid = append([]Oid128(nil), s.oid...)
	return c
}

// Buffer is a type-tagged contiguous buffer holding one of ~12 scalar types
// or a string vector, with copy-on-write semantics (spec.md §4 "TypedBuffer").
// The zero value is not usable; construct with NewBuffer.
type Buffer struct {
	typ DataType
	s   *store
}

// NewBuffer allocates a zero-filled Buffer of the given type and length.
func NewBuffer(typ DataType, n int) *Buffer {
	return &Buffer{typ: typ, s: newStore(typ, n)}
}

// Type returns the buffer's logical type.
func (b *Buffer) Type() DataType { return b.typ }

// Len returns the number of elements in the buffer.
func (b *Buffer) Len() int {
	switch b.typ {
	case Int8:
		return len(b.s.i8)
	case Int16:
		return len(b.s.i16)
	case Int32:
		return len(b.s.i32)
	case Int64:
		return len(b.s.i64)
	case Uint8:
		return len(b.s.u8)
	case Uint16:
		return len(b.s.u16)
	case Uint32:
		return len(b.s.u32)
	case Uint64:
		return len(b.s.u64)
	case Float32:
		return len(b.s.f32)
	case Float64:
		return len(b.s.f64)
	case Text, Category:
		return len(b.s.str)
	case Oid:
		return len(b.s.oid)
	default:
		return 0
	}
}

// Shallow returns a new handle sharing the same backing store (a
// copy-on-write "shallow copy" per spec.md's Board ownership invariant).
// The returned Buffer must call ensureUnique before any in-place mutation.
func (b *Buffer) Shallow() *Buffer {
	b.s.refs++
	return &Buffer{typ: b.typ, s: b.s}
}

// ensureUnique makes b's store exclusively owned, deep-copying it first if
// another handle still references it. Every mutating entry point on Buffer
// and Column must call this before writing.
func (b *Buffer) ensureUnique() {
	if b.s.refs > 1 {
		b.s.refs--
		b.s = b.s.clone()
	}
}

// --- typed element access -------------------------------------------------

func (b *Buffer) Int8() []int8       { return b.s.i8 }
func (b *Buffer) Int16() []int16     { return b.s.i16 }
func (b *Buffer) Int32() []int32     { return b.s.i32 }
func (b *Buffer) Int64() []int64     { return b.s.i64 }
func (b *Buffer) Uint8() []uint8     { return b.s.u8 }
func (b *Buffer) Uint16() []uint16   { return b.s.u16 }
func (b *Buffer) Uint32() []uint32   { return b.s.u32 }
func (b *Buffer) Uint64() []uint64   { return b.s.u64 }
func (b *Buffer) Float32() []float32 { return b.s.f32 }
func (b *Buffer) Float64() []float64 { return b.s.f64 }
func (b *Buffer) Strings() []string  { return b.s.str }
func (b *Buffer) Oids() []Oid128     { return b.s.oid }

// MutInt8 etc. return a mutable slice view, uniquifying the store first.
func (b *Buffer) MutInt8() []int8 { b.ensureUnique(); return b.s.i8 }
func (b *Buffer) MutInt16() []int16 { b.ensureUnique(); return b.s.i16 }
func (b *Buffer) MutInt32() []int32 { b.ensureUnique(); return b.s.i32 }
func (b *Buffer) MutInt64() []int64 { b.ensureUnique(); return b.s.i64 }
func (b *Buffer) MutUint8() []uint8 { b.ensureUnique(); return b.s.u8 }
func (b *Buffer) MutUint16() []uint16 { b.ensureUnique(); return b.s.u16 }
func (b *Buffer) MutUint32() []uint32 { b.ensureUnique(); return b.s.u32 }
func (b *Buffer) MutUint64() []uint64 { b.ensureUnique(); return b.s.u64 }
func (b *Buffer) MutFloat32() []float32 { b.ensureUnique(); return b.s.f32 }
func (b *Buffer) MutFloat64() []float64 { b.ensureUnique(); return b.s.f64 }
func (b *Buffer) MutStrings() []string  { b.ensureUnique(); return b.s.str }
func (b *Buffer) MutOids() []Oid128     { b.ensureUnique(); return b.s.oid }

// SetLen truncates or extends the buffer to length n in place, zero-filling
// new elements. Used by Column.Limit and Column's append path.
func (b *Buffer) SetLen(n int) {
	b.ensureUnique()
	switch b.typ {
	case Int8:
		b.s.i8 = resize(b.s.i8, n)
	case Int16:
		b.s.i16 = resize(b.s.i16, n)
	case Int32:
		b.s.i32 = resize(b.s.i32, n)
	case Int64:
		b.s.i64 = resize(b.s.i64, n)
	case Uint8:
		b.s.u8 = resize(b.s.u8, n)
	case Uint16:
		b.s.u16 = resize(b.s.u16, n)
	case Uint32:
		b.s.u32 = resize(b.s.u32, n)
	case Uint64:
		b.s.u64 = resize(b.s.u64, n)
	case Float32:
		b.s.f32 = resize(b.s.f32, n)
	case Float64:
		b.s.f64 = resize(b.s.f64, n)
	case Text, Category:
		b.s.str = resize(b.s.str, n)
	case Oid:
		b.s.oid = resize(b.s.oid, n)
	}
}

func resize[T any](s []T, n int) []T {
	if n <= len(s) {
		return s[:n]
	}
	if n <= cap(s) {
		old := len(s)
		s = s[:n]
		var zero T
		for i := old; i < n; i++ {
			s[i] = zero
		}
		return s
	}
	newCap := cap(s) + cap(s)/2
	if newCap < n {
		newCap = n
	}
	grown := make([]T, n, newCap)
	copy(grown, s)
	return grown
}

// Reserve grows the backing array's capacity to at least n elements without
// changing Len(), for Board.ReserveSpace (spec.md §5 / SPEC_FULL.md §4).
func (b *Buffer) Reserve(n int) {
	b.ensureUnique()
	cur := b.Len()
	if n <= cur {
		return
	}
	b.SetLen(n)
	b.SetLen(cur)
}

// String implements fmt.Stringer for debugging.
func (b *Buffer) String() string {
	return fmt.Sprintf("Buffer{%s, len=%d}", b.typ, b.Len())
}
