package bibdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokens(t *testing.T, src string) []string {
	t.Helper()
	var out []string
	for tok, err := range NewLexer(src).All() {
		require.NoError(t, err)
		out = append(out, tok.String())
	}
	return out
}

func TestLexer(t *testing.T) {
	src := `junk @string{s = "S"} @preamble{"P" # s}
@comment{c}
@Book{k1, Title = {T} # s, year = 1999}
@misc(k2)`
	assert.Equal(t, []string{
		"StringDef(s)",
		"PreambleDef({P} # s)",
		"Comment(c)",
		"EntryStart(Book)",
		"Key(k1)",
		"FieldName(title)",
		"FieldValue({T} # s)",
		"FieldName(year)",
		"FieldValue({1999})",
		"EndOfEntry",
		"EntryStart(misc)",
		"Key(k2)",
		"EndOfEntry",
		"EOF",
	}, tokens(t, src))
}

func TestLexerOffsets(t *testing.T) {
	src := "@misc{k,\n  title = {T}}"
	l := NewLexer(src)
	var got []Token
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		got = append(got, tok)
		if tok.Kind == TokenEOF {
			break
		}
	}
	require.Len(t, got, 6)
	assert.Equal(t, 0, got[0].Offset)
	assert.Equal(t, 6, got[1].Offset)
	line, col := Position(src, got[2].Offset)
	assert.Equal(t, 2, line)
	assert.Equal(t, 3, col)
	assert.Equal(t, TokenFieldValue, got[3].Kind)
	assert.Equal(t, 19, got[3].Pieces[0].Offset)

	// exhausted lexers keep returning EOF
	tok, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, TokenEOF, tok.Kind)
}

func TestLexerStickyErrorAndReset(t *testing.T) {
	l := NewLexer(`@misc{k, title = {open}`)
	var err error
	for err == nil {
		_, err = l.Next()
	}
	assert.ErrorIs(t, err, ErrUnterminatedGroup)
	_, again := l.Next()
	assert.Equal(t, err, again)

	l.Reset()
	tok, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, TokenEntryStart, tok.Kind)
}

func TestLexerAllReplays(t *testing.T) {
	l := NewLexer(`@misc{a} @misc{b}`)
	count := func() int {
		n := 0
		for _, err := range l.All() {
			require.NoError(t, err)
			n++
		}
		return n
	}
	first := count()
	assert.Equal(t, 7, first)
	assert.Equal(t, first, count())
}

func TestLexerAllStopsEarly(t *testing.T) {
	n := 0
	for range NewLexer(`@misc{a} @misc{b}`).All() {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestPosition(t *testing.T) {
	src := "ab\nçd\n"
	tests := []struct{ offset, line, col int }{
		{0, 1, 1},
		{2, 1, 3},
		{3, 2, 1},
		{5, 2, 2}, // ç is two bytes
		{100, 3, 1},
	}
	for _, tt := range tests {
		line, col := Position(src, tt.offset)
		assert.Equal(t, tt.line, line, "offset %d", tt.offset)
		assert.Equal(t, tt.col, col, "offset %d", tt.offset)
	}
}
