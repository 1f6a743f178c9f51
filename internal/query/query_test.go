package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drgo/bibdoc"
)

const sample = `
@book{knuth84,
  author = {Donald E. Knuth},
  title = {The {\TeX}book},
  publisher = {Addison-Wesley},
  year = 1984,
  keywords = {tex, typesetting}
}
@article{lamport86,
  author = {Leslie Lamport and others},
  title = {LaTeX},
  journal = {Computers and Typesetting},
  year = {1986}
}
@inbook{chapter,
  crossref = {knuth84},
  title = {Boxes and Glue},
  pages = {63--80}
}
@misc{broken,
  author = {Smith, John, Jr, Extra},
  year = {2001}
}
`

func parse(t *testing.T) *bibdoc.Bibliography {
	t.Helper()
	bib, err := bibdoc.Parse(sample, bibdoc.Options{})
	require.NoError(t, err)
	return bib
}

func keys(entries []*bibdoc.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Key
	}
	return out
}

func TestSelect(t *testing.T) {
	bib := parse(t)
	tests := []struct {
		expr string
		want []string
	}{
		{`kind == "article"`, []string{"lamport86"}},
		{`year < 1985`, []string{"knuth84", "chapter"}},
		{`authors.exists(a, a == "Knuth")`, []string{"knuth84", "chapter"}},
		{`"publisher" in fields && fields.publisher.startsWith("Addison")`, []string{"knuth84", "chapter"}},
		{`"tex" in keywords`, []string{"knuth84", "chapter"}},
		{`size(authors) == 1 && kind == "article"`, []string{"lamport86"}},
		{`key.endsWith("86")`, []string{"lamport86"}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			f, err := Compile(tt.expr)
			require.NoError(t, err)
			var skipped []string
			got := Select(f, bib, func(e *bibdoc.Entry, err error) {
				skipped = append(skipped, e.Key)
			})
			assert.Equal(t, tt.want, keys(got))
			assert.Equal(t, []string{"broken"}, skipped)
		})
	}
}

func TestMatchReportsFieldErrors(t *testing.T) {
	bib := parse(t)
	f, err := Compile(`year > 0`)
	require.NoError(t, err)

	e, ok := bib.Get("broken")
	require.True(t, ok)
	_, err = f.Match(e)
	require.Error(t, err)
	assert.True(t, errors.Is(err, bibdoc.ErrMalformedName))
}

func TestCompileErrors(t *testing.T) {
	for _, expr := range []string{
		``,
		`year +`,
		`year + 1`,
		`unknown == 1`,
	} {
		_, err := Compile(expr)
		assert.Error(t, err, expr)
	}
}
