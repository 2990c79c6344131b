package column

import "fmt"

// Dictionary interns strings into small unsigned integer codes for
// Category columns (spec.md §1, §4.1). Code 0 is permanently reserved for
// "unknown" and is never assigned to a real string. Codes are handed out in
// first-seen order starting at 1 (SPEC_FULL.md §4 "Dictionary growth").
//
// A Dictionary is shared by shallow copy between Columns (spec.md §3's "Board
// invariants": columns may share a TypedBuffer, and a shared-by-reference
// Dictionary follows the same rule) until a mutating Intern call needs to
// grow it, at which point the caller is responsible for uniquifying first
// via Clone — Dictionary itself does not implement copy-on-write, since it
// is always paired 1:1 with a single logical Category column's code space.
type Dictionary struct {
	byCode []string       // index 0 unused (reserved for "unknown")
	byStr  map[string]uint32
}

// NewDictionary returns an empty Dictionary (size 0, only code 0 defined).
func NewDictionary() *Dictionary {
	return &Dictionary{
		byCode: []string{""}, // placeholder for the reserved code 0
		byStr:  make(map[string]uint32),
	}
}

// Size returns the number of real (non-zero) codes defined.
func (d *Dictionary) Size() int {
	if d == nil {
		return 0
	}
	return len(d.byCode) - 1
}

// Intern returns the code for s, allocating a new one if s has not been
// seen before. The reserved unknown code is never returned for a non-empty
// lookup: the empty string "" is treated as a perfectly ordinary value with
// its own code, distinct from "unknown" (absence, tracked by the column's
// validity bitmap).
func (d *Dictionary) Intern(s string) uint32 {
	if code, ok := d.byStr[s]; ok {
		return code
	}
	code := uint32(len(d.byCode))
	d.byCode = append(d.byCode, s)
	d.byStr[s] = code
	return code
}

// Lookup returns the code already assigned to s, if any, without mutating
// the dictionary.
func (d *Dictionary) Lookup(s string) (code uint32, ok bool) {
	code, ok = d.byStr[s]
	return
}

// String decodes a code back to its string; code 0 decodes to the sentinel
// "(no data in memory)" per spec.md §4.1's dump() convention.
func (d *Dictionary) String(code uint32) (string, error) {
	if code == 0 {
		return "(no data in memory)", nil
	}
	if int(code) >= len(d.byCode) {
		return "", fmt.Errorf("column: dictionary code %d out of range (size %d)", code, d.Size())
	}
	return d.byCode[code], nil
}

// MustString decodes a code, returning the unknown sentinel for any code
// that is out of range rather than erroring; used by hot dump/format paths
// that must never fail on a well-formed column.
func (d *Dictionary) MustString(code uint32) string {
	s, err := d.String(code)
	if err != nil {
		return "(no data in memory)"
	}
	return s
}

// Clone returns an independent copy of the dictionary, safe to mutate
// without affecting any Column still sharing the original.
func (d *Dictionary) Clone() *Dictionary {
	if d == nil {
		return NewDictionary()
	}
	byCode := make([]string, len(d.byCode))
	copy(byCode, d.byCode)
	byStr := make(map[string]uint32, len(d.byStr))
	for k, v := range d.byStr {
		byStr[k] = v
	}
	return &Dictionary{byCode: byCode, byStr: byStr}
}

// Valid reports whether code satisfies spec.md §3's column invariant:
// 0 (unknown) or 1 <= code <= Size().
func (d *Dictionary) Valid(code uint32) bool {
	return code == 0 || int(code) <= d.Size()
}
