package bibdoc

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestWriteBibTeX(t *testing.T) {
	bib := parseTest(t, crossrefBib)
	e, _ := bib.Get("prologue")

	var buf bytes.Buffer
	require.NoError(t, WriteBibTeX(&buf, []*Entry{e}, false))
	assert.Equal(t, "@inbook{prologue,\n"+
		"  crossref = {fellowship},\n"+
		"  title = {Prologue},\n"+
		"  pages = {1--20}\n"+
		"}\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteBibTeX(&buf, []*Entry{e}, true))
	assert.Equal(t, "@inbook{prologue,\n"+
		"  title = {Prologue},\n"+
		"  pages = {1--20},\n"+
		"  booktitle = {The Fellowship of the Ring},\n"+
		"  year = {1954},\n"+
		"  author = {J. R. R. Tolkien},\n"+
		"  bookauthor = {J. R. R. Tolkien},\n"+
		"  maintitle = {The Lord of the Rings},\n"+
		`  publisher = {Allen \& Unwin}`+"\n"+
		"}\n", buf.String())

	// the flattened copy parses on its own
	flat := parseTest(t, buf.String())
	v, ok := flat.Entries()[0].Field("booktitle")
	assert.True(t, ok)
	assert.Equal(t, "The Fellowship of the Ring", v)

	orphan, _ := bib.Get("orphan")
	err := WriteBibTeX(&buf, []*Entry{orphan}, true)
	assert.ErrorIs(t, err, ErrMissingCrossrefTarget)
}

func TestWriteYAML(t *testing.T) {
	bib := parseTest(t, fieldsBib)
	knuth, _ := bib.Get("knuth84")
	conf, _ := bib.Get("conf")

	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, []*Entry{knuth, conf}))
	assert.True(t, strings.HasPrefix(buf.String(), "knuth84:\n  type: article\n  title: Literate Programming\n"), buf.String())

	var got map[string]hayagrivaEntry
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)

	k := got["knuth84"]
	assert.Equal(t, []string{"Knuth, Donald E."}, k.Author)
	assert.Equal(t, "1984-05", k.Date)
	assert.Equal(t, "Oxford University Press; {British Computer Society}", k.Publisher)
	assert.Equal(t, "Oxford", k.Location)
	assert.Equal(t, "97--111", k.PageRange)
	assert.Empty(t, k.Volume)
	require.NotNil(t, k.Parent)
	assert.Equal(t, hayagrivaEntry{
		Type:   "periodical",
		Title:  "The Computer Journal",
		Volume: "27",
		Issue:  "2",
	}, *k.Parent)

	c := got["conf"]
	assert.Equal(t, "proceedings", c.Type)
	assert.Equal(t, []string{"Lovelace, Ada", "others"}, c.Editor)
	assert.Equal(t, "2020-05/2021", c.Date)
	assert.Nil(t, c.Parent)

	bad, _ := bib.Get("badname")
	err := WriteYAML(&buf, []*Entry{bad})
	assert.ErrorIs(t, err, ErrMalformedName)
}

func TestAsTyp(t *testing.T) {
	bib := parseTest(t, fieldsBib)
	e, _ := bib.Get("knuth84")
	var buf bytes.Buffer
	require.NoError(t, AsTyp(&buf, []*Entry{e}, "Articles"))
	assert.Equal(t, "= Articles\n\n"+
		"+ Knuth, D. E. (1984). _Literate Programming_. The Computer Journal, "+
		"Oxford University Press and British Computer Society, 27, 97--111.\n", buf.String())
}

func TestFormatAuthors(t *testing.T) {
	names, err := ParseNames("Donald E. Knuth and Leslie Lamport and others")
	require.NoError(t, err)
	assert.Equal(t, "Knuth, D. E., Lamport, L. & et al.", formatAuthors(names))
	assert.Equal(t, "Knuth, D. E.", formatAuthors(names[:1]))
}

func TestExportTyp(t *testing.T) {
	a, b := parseTest(t, dedupA), parseTest(t, dedupB)
	dir := t.TempDir()
	require.NoError(t, ExportTyp(append(a.Entries(), b.Entries()...), dir))

	files, err := filepath.Glob(filepath.Join(dir, "*.typ"))
	require.NoError(t, err)
	assert.Len(t, files, 3)

	data, err := os.ReadFile(filepath.Join(dir, "article.typ"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "= Referred Articles\n\n"))

	data, err = os.ReadFile(filepath.Join(dir, "book.typ"))
	require.NoError(t, err)
	assert.Equal(t, "= Book\n\n"+
		"+ Knuth, D. E. (1984). _The TeXbook_.\n"+
		"+ Knuth, D. E. (1984). _The TeXbook_.\n", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "misc.typ"))
	require.NoError(t, err)
	assert.Equal(t, "= Misc\n\n+ _Other_.\n", string(data))

	assert.Error(t, ExportTyp(nil, dir))
	assert.Error(t, ExportTyp(a.Entries(), filepath.Join(dir, "missing", "dir")))
}
