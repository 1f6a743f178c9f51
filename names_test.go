package bibdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseName(t *testing.T) {
	tests := []struct {
		raw  string
		want Name
	}{
		{"J. R. R. Tolkien", Name{First: []string{"J.", "R.", "R."}, Last: []string{"Tolkien"}}},
		{"Tolkien, J. R. R.", Name{First: []string{"J.", "R.", "R."}, Last: []string{"Tolkien"}}},
		{"Ludwig van Beethoven", Name{First: []string{"Ludwig"}, Particle: []string{"van"}, Last: []string{"Beethoven"}}},
		{"Jean de la Fontaine", Name{First: []string{"Jean"}, Particle: []string{"de", "la"}, Last: []string{"Fontaine"}}},
		{"de la Fontaine, Jean", Name{First: []string{"Jean"}, Particle: []string{"de", "la"}, Last: []string{"Fontaine"}}},
		{"Ford, Jr., Henry", Name{First: []string{"Henry"}, Last: []string{"Ford"}, Suffix: []string{"Jr."}}},
		{"Alice~Smith", Name{First: []string{"Alice"}, Last: []string{"Smith"}}},
		{"Plato", Name{Last: []string{"Plato"}}},
		{"{World Health Organization}", Name{Last: []string{"{World Health Organization}"}}},
		{"{\\'E}mile Zola", Name{First: []string{"{\\'E}mile"}, Last: []string{"Zola"}}},
		{"others", Name{Last: []string{"others"}}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			n, err := ParseName(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)

			// String is read back to the same name
			back, err := ParseName(n.String())
			require.NoError(t, err)
			assert.True(t, n.Equal(back), "%q -> %q", tt.raw, n.String())
		})
	}
}

func TestNameParts(t *testing.T) {
	n, err := ParseName("Ludwig van Beethoven")
	require.NoError(t, err)
	assert.Equal(t, "van Beethoven", n.Family())
	assert.Equal(t, "Ludwig", n.Given())
	assert.Equal(t, "van Beethoven, Ludwig", n.String())
	assert.False(t, n.IsOthers())

	n, err = ParseName("Ford, Jr., Henry")
	require.NoError(t, err)
	assert.Equal(t, "Ford, Jr., Henry", n.String())
}

func TestParseNames(t *testing.T) {
	names, err := ParseNames("J. R. R. Tolkien and Tolkien, Christopher AND {Barnes and Noble} and others")
	require.NoError(t, err)
	require.Len(t, names, 4)
	assert.Equal(t, "Tolkien", names[0].Family())
	assert.Equal(t, "Christopher", names[1].Given())
	assert.Equal(t, []string{"{Barnes and Noble}"}, names[2].Last)
	assert.True(t, names[3].IsOthers())

	names, err = ParseNames("  ")
	require.NoError(t, err)
	assert.Nil(t, names)
}

func TestParseNamesErrors(t *testing.T) {
	tests := []struct{ name, raw string }{
		{"too many commas", "A, B, C, D"},
		{"empty last name", ", John"},
		{"empty name", "Doe and and Roe"},
		{"trailing and", "Doe and"},
		{"unbalanced", "{Unbalanced Name"},
		{"stray close", "Doe} and Roe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseNames(tt.raw)
			assert.ErrorIs(t, err, ErrMalformedName)
		})
	}
}

func TestParseNamesEscapedBraces(t *testing.T) {
	names, err := ParseNames(`Smith \{ John and {Barnes \} and Noble}`)
	require.NoError(t, err)
	require.Len(t, names, 2)
	assert.Equal(t, []string{"John"}, names[0].Last)
	assert.Equal(t, []string{`{Barnes \} and Noble}`}, names[1].Last)

	bib := parseTest(t, `@misc{k, author = {Smith \{ John}}`)
	e, _ := bib.Get("k")
	authors, ok, err := e.Authors()
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, authors, 1)

	_, err = ParseNames(`Smith \{ {John`)
	assert.ErrorIs(t, err, ErrMalformedName)
}
