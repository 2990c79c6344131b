package column

// ReverseRows reverses the column's rows in place (spec.md §4.1 "reverseRows").
func (c *Column) ReverseRows() {
	n := c.Len()
	perm := make([]uint32, n)
	for i := 0; i < n; i++ {
		perm[i] = uint32(n - 1 - i)
	}
	c.Permute(perm)
}

// Limit truncates the column to its first n rows in place (spec.md §4.1
// "limit(n)"). A no-op if n >= Len().
func (c *Column) Limit(n int) {
	if n >= c.Len() {
		return
	}
	if n < 0 {
		n = 0
	}
	c.shrinkTo(n)
}

// Permute rewrites the column so that new row i holds the value currently at
// row order[i] (spec.md §4.7 "apply the permutation to every other
// column"). len(order) must equal c.Len().
func (c *Column) Permute(order []uint32) {
	n := c.Len()
	out := &Column{
		name: c.name,
		desc: c.desc,
		typ:  c.typ,
		dict: c.dict,
		buf:  NewBuffer(bufferTypeFor(c.typ), n),
		vld:  NewMask(n),
	}
	for dst, src := range order {
		out.copyValueFrom(dst, c, int(src))
	}
	*c = *out
}
