package column

import (
	"fmt"
	"strings"
)

// Column is a named, typed sequence of values with an attached validity
// bitmap and (for Category, or a dictionary-backed Uint32) an interned
// Dictionary (spec.md §3, §4.1). It is the atomic unit a Board owns.
type Column struct {
	name string
	desc string
	typ  DataType
	dict *Dictionary // nil unless Category or dictionary-backed Uint32
	buf  *Buffer
	vld  Mask
}

// New constructs a Column of length n, all rows initially invalid.
// Category columns get a fresh empty Dictionary; pass a shared Dictionary
// via NewWithDictionary when interning into an existing code space (e.g.
// appending from another Board with the same categorical domain).
func New(name string, typ DataType, n int) *Column {
	c := &Column{
		name: name,
		typ:  typ,
		buf:  NewBuffer(bufferTypeFor(typ), n),
		vld:  NewMask(n),
	}
	if typ == Category {
		c.dict = NewDictionary()
	}
	return c
}

// NewWithDictionary is like New but attaches an existing Dictionary by
// shallow reference (spec.md: "dictionaries...shared by shallow copy with
// explicit lifetime").
func NewWithDictionary(name string, typ DataType, n int, dict *Dictionary) *Column {
	c := New(name, typ, n)
	c.dict = dict
	return c
}

// bufferTypeFor maps a logical DataType to its physical TypedBuffer type:
// Category is physically stored as Uint32 dictionary codes.
func bufferTypeFor(typ DataType) DataType {
	if typ == Category {
		return Uint32
	}
	return typ
}

func (c *Column) Name() string        { return c.name }
func (c *Column) SetName(name string) { c.name = name }
func (c *Column) Description() string { return c.desc }
func (c *Column) SetDescription(d string) { c.desc = d }
func (c *Column) Type() DataType      { return c.typ }
func (c *Column) Dictionary() *Dictionary { return c.dict }

// SetDictionary installs dict as c's Dictionary, used by the Projector when
// materialising a string-literal column (spec.md §4.4).
func (c *Column) SetDictionary(dict *Dictionary) { c.dict = dict }
func (c *Column) Len() int            { return c.buf.Len() }
func (c *Column) Buffer() *Buffer     { return c.buf }
func (c *Column) Validity() Mask      { return c.vld }

// IsValid reports whether row i holds a real (non-null) value.
func (c *Column) IsValid(i int) bool { return c.vld.Get(i) }

// SetValid marks row i present or absent.
func (c *Column) SetValid(i int, ok bool) {
	if ok {
		c.vld.Set(i)
	} else {
		c.vld.Clear(i)
	}
}

// SameName does spec.md's case-insensitive column-name comparison.
func SameName(a, b string) bool { return strings.EqualFold(a, b) }

// Clone returns a Column sharing its Buffer (copy-on-write) and Dictionary
// (shallow, shared lifetime) but with an independently mutable validity
// bitmap, matching spec.md's "Board owns its columns exclusively; columns
// may internally share a TypedBuffer with another Column" invariant.
func (c *Column) Clone() *Column {
	return &Column{
		name: c.name,
		desc: c.desc,
		typ:  c.typ,
		dict: c.dict,
		buf:  c.buf.Shallow(),
		vld:  c.vld.Clone(),
	}
}

// ReplaceBuffer installs an already-built Buffer (and optional Dictionary)
// into c, used by board.New when ingesting externally-supplied typed
// buffers alongside a schema (spec.md §6 Board::new). If buf is shorter
// than rowCount (the "column has just been constructed empty" escape
// hatch in spec.md's Column invariants), it is grown to rowCount first.
// Every row is marked valid: ingestion from a raw buffer carries no
// separate validity information, so presence is assumed until a caller
// explicitly clears it.
func (c *Column) ReplaceBuffer(buf *Buffer, dict *Dictionary, rowCount int) *Column {
	if buf.Len() < rowCount {
		buf.SetLen(rowCount)
	}
	c.buf = buf
	if dict != nil {
		c.dict = dict
	} else if c.typ == Category && c.dict == nil {
		c.dict = NewDictionary()
	}
	c.vld = FullMask(rowCount)
	return c
}

// checkBuilt is an internal sanity check used by constructors/tests: the
// buffer length and validity mask length must always agree.
func (c *Column) checkBuilt() error {
	if c.buf.Len() != c.vld.Len() {
		return fmt.Errorf("column %q: buffer length %d != validity length %d", c.name, c.buf.Len(), c.vld.Len())
	}
	return nil
}

// Sentinel values per spec.md §3: "Sentinel null values are encoded as
// type-specific extremes". Consumers that ignore the validity bitmap see
// these; the bitmap remains authoritative.
const (
	sentinelInt8   = int8(0x7F)
	sentinelInt16  = int16(0x7FFF)
	sentinelInt32  = int32(0x7FFFFFFF)
	sentinelInt64  = int64(0x7FFFFFFFFFFFFFFF)
	sentinelUint8  = uint8(0xFF)
	sentinelUint16 = uint16(0xFFFF)
	sentinelUint32 = uint32(0xFFFFFFFF)
	sentinelUint64 = uint64(0xFFFFFFFFFFFFFFFF)
)
