package column

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictionaryInternAssignsStableCodes(t *testing.T) {
	d := NewDictionary()
	a := d.Intern("alpha")
	b := d.Intern("beta")
	again := d.Intern("alpha")

	assert.Equal(t, a, again)
	assert.NotEqual(t, a, b)
	assert.Equal(t, uint32(1), a)
	assert.Equal(t, uint32(2), b)
	assert.Equal(t, 2, d.Size())
}

func TestDictionaryLookupMissing(t *testing.T) {
	d := NewDictionary()
	d.Intern("alpha")
	_, ok := d.Lookup("missing")
	assert.False(t, ok)
}

func TestDictionaryStringRoundTrip(t *testing.T) {
	d := NewDictionary()
	code := d.Intern("alpha")
	s, err := d.String(code)
	require.NoError(t, err)
	assert.Equal(t, "alpha", s)
}

func TestDictionaryCodeZeroIsUnknownSentinel(t *testing.T) {
	d := NewDictionary()
	s, err := d.String(0)
	require.NoError(t, err)
	assert.Equal(t, "(no data in memory)", s)
}

func TestDictionaryStringOutOfRangeErrors(t *testing.T) {
	d := NewDictionary()
	_, err := d.String(99)
	assert.Error(t, err)
	assert.Equal(t, "(no data in memory)", d.MustString(99))
}

func TestDictionaryCloneIsIndependent(t *testing.T) {
	d := NewDictionary()
	d.Intern("alpha")
	clone := d.Clone()
	clone.Intern("beta")

	assert.Equal(t, 1, d.Size())
	assert.Equal(t, 2, clone.Size())
}

func TestDictionaryValid(t *testing.T) {
	d := NewDictionary()
	code := d.Intern("alpha")
	assert.True(t, d.Valid(0))
	assert.True(t, d.Valid(code))
	assert.False(t, d.Valid(code+1))
}
