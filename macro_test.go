package bibdoc

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMacroTable(t *testing.T) {
	mt := NewMacroTable()
	v, ok := mt.Lookup("SEP")
	require.True(t, ok)
	assert.Equal(t, "September", v)

	require.NoError(t, mt.Define("Short", []Piece{{Kind: PieceLiteral, Text: "Long Form"}}))
	v, err := mt.Resolve([]Piece{
		{Kind: PieceMacro, Text: "short"},
		{Kind: PieceLiteral, Text: " extra"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Long Form extra", v)

	_, err = mt.Resolve([]Piece{{Kind: PieceMacro, Text: "nope", Offset: 42}})
	require.ErrorIs(t, err, ErrUnknownMacro)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 42, pe.Offset)

	assert.Contains(t, mt.Names(), "short")
	assert.Len(t, mt.Names(), 13)
}

func TestMacroRedefinition(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	mt := NewMacroTable()
	mt.log = logger

	require.NoError(t, mt.Define("x", []Piece{{Kind: PieceLiteral, Text: "1"}}))
	require.NoError(t, mt.Define("X", []Piece{{Kind: PieceLiteral, Text: "2"}}))
	v, _ := mt.Lookup("x")
	assert.Equal(t, "2", v)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "macro redefined", hook.LastEntry().Message)
}

func TestMacroSelfReference(t *testing.T) {
	// a macro may build on its own previous value
	bib := parseTest(t, `@string{s = {a}} @string{s = s # {b}} @misc{k, f = s}`)
	e, _ := bib.Get("k")
	v, _ := e.Field("f")
	assert.Equal(t, "ab", v)
}
