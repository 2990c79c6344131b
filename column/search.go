package column

import (
	"path/filepath"
	"strings"
)

// ScanStringEQ evaluates an exact-match string predicate. For Category
// columns the value is first resolved against the Dictionary to a code (a
// miss yields an empty mask without scanning any rows); for Text columns it
// is a direct linear scan (spec.md §4.1 "string search").
func (c *Column) ScanStringEQ(value string, in Mask) Mask {
	valid := in.And(c.vld)
	out := NewMask(c.Len())
	if c.typ == Category {
		code, ok := c.dict.Lookup(value)
		if !ok {
			return out
		}
		codes := c.buf.Uint32()
		for _, r := range valid.Ones() {
			if codes[r] == code {
				out.Set(int(r))
			}
		}
		return out
	}
	strs := c.buf.Strings()
	for _, r := range valid.Ones() {
		if strs[r] == value {
			out.Set(int(r))
		}
	}
	return out
}

// ScanAnyString evaluates a multi-value string IN (list) predicate
// (spec.md AnyString).
func (c *Column) ScanAnyString(values []string, in Mask) Mask {
	valid := in.And(c.vld)
	out := NewMask(c.Len())
	if c.typ == Category {
		codes := make(map[uint32]struct{}, len(values))
		for _, v := range values {
			if code, ok := c.dict.Lookup(v); ok {
				codes[code] = struct{}{}
			}
		}
		buf := c.buf.Uint32()
		for _, r := range valid.Ones() {
			if _, ok := codes[buf[r]]; ok {
				out.Set(int(r))
			}
		}
		return out
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	strs := c.buf.Strings()
	for _, r := range valid.Ones() {
		if _, ok := set[strs[r]]; ok {
			out.Set(int(r))
		}
	}
	return out
}

// ScanLike evaluates a glob-style LIKE predicate ('*' / '?' wildcards, the
// same syntax as path/filepath.Match's '*'/'?', spec.md Like).
func (c *Column) ScanLike(pattern string, in Mask) Mask {
	valid := in.And(c.vld)
	out := NewMask(c.Len())
	matchRow := func(s string) bool {
		ok, err := filepath.Match(pattern, s)
		return err == nil && ok
	}
	if c.typ == Category {
		codes := c.buf.Uint32()
		cache := make(map[uint32]bool)
		for _, r := range valid.Ones() {
			code := codes[r]
			m, seen := cache[code]
			if !seen {
				m = matchRow(c.dict.MustString(code))
				cache[code] = m
			}
			if m {
				out.Set(int(r))
			}
		}
		return out
	}
	strs := c.buf.Strings()
	for _, r := range valid.Ones() {
		if matchRow(strs[r]) {
			out.Set(int(r))
		}
	}
	return out
}

// tokenize is the "simple tokenizer" spec.md §4.1 calls for on Text
// columns: split on anything that is not an ASCII letter or digit.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9')
	})
}

// ScanKeyword evaluates a single full-text token predicate (spec.md
// Keyword): row matches if keyword appears as one of its tokens.
func (c *Column) ScanKeyword(keyword string, in Mask) Mask {
	return c.scanWords([]string{keyword}, false, in)
}

// ScanAllWords evaluates a full-text conjunction (spec.md AllWords): every
// word must appear among the row's tokens.
func (c *Column) ScanAllWords(words []string, in Mask) Mask {
	return c.scanWords(words, true, in)
}

func (c *Column) scanWords(words []string, all bool, in Mask) Mask {
	valid := in.And(c.vld)
	out := NewMask(c.Len())
	lowered := make([]string, len(words))
	for i, w := range words {
		lowered[i] = strings.ToLower(w)
	}
	matches := func(text string) bool {
		toks := make(map[string]struct{})
		for _, t := range tokenize(text) {
			toks[strings.ToLower(t)] = struct{}{}
		}
		found := 0
		for _, w := range lowered {
			if _, ok := toks[w]; ok {
				found++
			}
		}
		if all {
			return found == len(lowered)
		}
		return found > 0
	}
	if c.typ == Category {
		codes := c.buf.Uint32()
		cache := make(map[uint32]bool)
		for _, r := range valid.Ones() {
			code := codes[r]
			m, seen := cache[code]
			if !seen {
				m = matches(c.dict.MustString(code))
				cache[code] = m
			}
			if m {
				out.Set(int(r))
			}
		}
		return out
	}
	strs := c.buf.Strings()
	for _, r := range valid.Ones() {
		if matches(strs[r]) {
			out.Set(int(r))
		}
	}
	return out
}
