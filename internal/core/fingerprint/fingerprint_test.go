package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrings_Deterministic(t *testing.T) {
	a := Strings([]string{"github", "acme/api", "42"})
	b := Strings([]string{"github", "acme/api", "42"})
	assert.Equal(t, a, b)
	assert.Len(t, a, Size)
}

func TestStrings_BoundariesAreFolded(t *testing.T) {
	pairs := [][2][]string{
		{{"a,b", "c"}, {"a", "b", "c"}},
		{{"a|b", "c"}, {"a", "b|c"}},
		{{"a;b"}, {"a", "b"}},
		{{"a b"}, {"a", "b"}},
		{{"ab", ""}, {"a", "b"}},
		{{""}, {}},
		{{`a","b`}, {"a", "b"}},
	}
	for _, p := range pairs {
		assert.NotEqual(t, Strings(p[0]), Strings(p[1]), "%q vs %q", p[0], p[1])
	}
}

func TestStrings_NilIsNotEmpty(t *testing.T) {
	assert.NotEqual(t, Strings(nil), Strings([]string{}))
	assert.NotEqual(t, Keyed(nil), Keyed(map[string]string{}))
}

func TestStrings_OrderMatters(t *testing.T) {
	assert.NotEqual(t, Strings([]string{"a", "b"}), Strings([]string{"b", "a"}))
}

func TestStrings_UnicodeNormalized(t *testing.T) {
	composed := "caf\u00e9"
	decomposed := "cafe\u0301"
	assert.Equal(t, Strings([]string{composed}), Strings([]string{decomposed}))
}

func TestKeyed_OrderIrrelevantAssignmentRelevant(t *testing.T) {
	m1 := map[string]string{"repo": "api", "owner": "acme", "number": "7"}
	m2 := map[string]string{"number": "7", "owner": "acme", "repo": "api"}
	assert.Equal(t, Keyed(m1), Keyed(m2))

	swapped := map[string]string{"repo": "acme", "owner": "api", "number": "7"}
	assert.NotEqual(t, Keyed(m1), Keyed(swapped))

	assert.NotEqual(t, Keyed(map[string]string{"a,b": "c"}), Keyed(map[string]string{"a": "b,c"}))
}

func TestKeyedDiffersFromSequence(t *testing.T) {
	assert.NotEqual(t, Keyed(map[string]string{"a": "b"}), Strings([]string{"a", "b"}))
}

func TestUUIDAndID(t *testing.T) {
	d := Strings([]string{"x"})
	assert.Equal(t, UUID(d), UUID(d))
	assert.Equal(t, 5, int(UUID(d).Version()))
	assert.Equal(t, ID("x"), UUID(d).String())
	assert.NotEqual(t, ID("x", "y"), ID("x,y"))
	assert.Equal(t, ID(), UUID(Strings([]string{})).String())
}

func TestStrings_InvalidUTF8Distinct(t *testing.T) {
	assert.NotEqual(t, Strings([]string{"id-\xff"}), Strings([]string{"id-\xfe"}))
	assert.NotEqual(t, Strings([]string{"id-\xff"}), Strings([]string{"id-\ufffd"}))
	assert.NotEqual(t, Strings([]string{"\xff"}), Strings([]string{"/w=="}))
	assert.Equal(t, Strings([]string{"id-\xff"}), Strings([]string{"id-\xff"}))
	assert.NotEqual(t, ID("a\xff"), ID("a\xfe"))
}

func TestKeyed_InvalidUTF8Distinct(t *testing.T) {
	assert.NotEqual(t,
		Keyed(map[string]string{"k": "v\xff"}),
		Keyed(map[string]string{"k": "v\xfe"}))
	assert.NotEqual(t,
		Keyed(map[string]string{"k\xff": "v"}),
		Keyed(map[string]string{"k\xfe": "v"}))
	assert.NotEqual(t,
		Keyed(map[string]string{"\xff": "v"}),
		Keyed(map[string]string{"/w==": "v"}))
}
