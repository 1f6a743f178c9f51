package bibdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseList(t *testing.T) {
	assert.Equal(t, []string{"parsing", "bib", "{a, b}"}, ParseList("parsing, bib ,, {a, b},", ","))
	assert.Equal(t, []string{"x", "y"}, ParseList("x;y", ";"))
	assert.Nil(t, ParseList("  ", ","))
}

func TestParseLiteralList(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"Springer", []string{"Springer"}},
		{"Springer and {Barnes and Noble}", []string{"Springer", "{Barnes and Noble}"}},
		{"New~York  and\n London", []string{"New York", "London"}},
		{"and Oxford", []string{"Oxford"}},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLiteralList(tt.raw), tt.raw)
	}
}

func TestWords(t *testing.T) {
	assert.Equal(t, []string{"a", "{b c}d", "e"}, words(" a {b c}d~e "))
	assert.Nil(t, words(" \t\n"))
}

func TestEscapedBracesAreText(t *testing.T) {
	bib := parseTest(t, `@misc{k, keywords = {a\{, b, c}, note = {x\}, y}}`)
	e, _ := bib.Get("k")
	kw, ok, err := e.Keywords()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{`a\{`, "b", "c"}, kw)

	note, _, err := e.List("note", ",")
	require.NoError(t, err)
	assert.Equal(t, []string{`x\}`, "y"}, note)

	// an escaped separator does not split
	assert.Equal(t, []string{`a\,b`, "c"}, ParseList(`a\,b, c`, ","))
	assert.Equal(t, []string{`x\\`, "y"}, ParseList(`x\\, y`, ","))
	assert.Equal(t, []string{`\{a`, `{b \} c}`}, words(`\{a {b \} c}`))
}
