package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drgo/bibdoc"
)

const sample = `
@proceedings{icse99,
  editor = {Barry Boehm and David Garlan},
  title = {Proceedings of ICSE},
  publisher = {ACM},
  year = 1999
}
@inproceedings{parnas99,
  author = {David Lorge Parnas},
  title = {Software Engineering Programs Are Not Computer Science Programs},
  crossref = {icse99}
}
@misc{dangling,
  author = {Anne Onymous},
  crossref = {nowhere}
}
`

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "index.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	bib, err := bibdoc.Parse(sample, bibdoc.Options{})
	require.NoError(t, err)

	n, err := s.SaveBibliography(ctx, bib)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	rec, err := s.Entry(ctx, "parnas99")
	require.NoError(t, err)
	assert.Equal(t, "inproceedings", rec.Kind)
	names := make([]string, len(rec.Fields))
	for i, f := range rec.Fields {
		names[i] = f.Name
	}
	// own fields first, then inherited ones; title is not inherited
	assert.Equal(t, []string{"author", "title", "crossref", "editor", "booktitle", "publisher", "year"}, names)
	assert.Equal(t, "Proceedings of ICSE", rec.Fields[4].Value)

	// a broken crossref still stores the entry's own fields
	rec, err = s.Entry(ctx, "dangling")
	require.NoError(t, err)
	assert.Len(t, rec.Fields, 2)

	_, err = s.Entry(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	bib, err := bibdoc.Parse(sample, bibdoc.Options{})
	require.NoError(t, err)
	_, err = s.SaveBibliography(ctx, bib)
	require.NoError(t, err)

	keys, err := s.Search(ctx, "title", "icse")
	require.NoError(t, err)
	assert.Equal(t, []string{"icse99"}, keys)

	keys, err = s.Search(ctx, "publisher", "acm")
	require.NoError(t, err)
	assert.Equal(t, []string{"icse99", "parnas99"}, keys)

	keys, err = s.ByName(ctx, "Garlan")
	require.NoError(t, err)
	assert.Equal(t, []string{"icse99", "parnas99"}, keys)

	keys, err = s.ByName(ctx, "Parnas")
	require.NoError(t, err)
	assert.Equal(t, []string{"parnas99"}, keys)
}

func TestSaveReplaces(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	first, err := bibdoc.Parse(`@book{k, title = {Old}, author = {A. Author}}`, bibdoc.Options{})
	require.NoError(t, err)
	second, err := bibdoc.Parse(`@book{k, title = {New}}`, bibdoc.Options{})
	require.NoError(t, err)

	_, err = s.SaveBibliography(ctx, first)
	require.NoError(t, err)
	_, err = s.SaveBibliography(ctx, second)
	require.NoError(t, err)

	rec, err := s.Entry(ctx, "k")
	require.NoError(t, err)
	require.Len(t, rec.Fields, 1)
	assert.Equal(t, "New", rec.Fields[0].Value)

	keys, err := s.ByName(ctx, "Author")
	require.NoError(t, err)
	assert.Empty(t, keys)
}
