package bibdoc

import (
	"strconv"
	"strings"
)

// TokenKind is the set of structural tokens produced by the Lexer.
type TokenKind int

const (
	TokenEOF         TokenKind = iota
	TokenEntryStart            // @article{ ; Text is the entry type as written
	TokenKey                   // citation key
	TokenFieldName             // field name, lower-cased
	TokenFieldValue            // Pieces hold the value
	TokenStringDef             // @string ; Text is the macro name
	TokenPreambleDef           // @preamble ; Pieces hold the value
	TokenComment               // @comment ; Text is the verbatim body
	TokenEndOfEntry            // closing } or )
)

var tokenNames = [...]string{
	TokenEOF:         "EOF",
	TokenEntryStart:  "EntryStart",
	TokenKey:         "Key",
	TokenFieldName:   "FieldName",
	TokenFieldValue:  "FieldValue",
	TokenStringDef:   "StringDef",
	TokenPreambleDef: "PreambleDef",
	TokenComment:     "Comment",
	TokenEndOfEntry:  "EndOfEntry",
}

func (k TokenKind) String() string {
	if 0 <= k && int(k) < len(tokenNames) {
		return tokenNames[k]
	}
	return "token(" + strconv.Itoa(int(k)) + ")"
}

// PieceKind classifies one operand of a #-concatenated value.
type PieceKind int

const (
	PieceLiteral PieceKind = iota // {braced}, "quoted" or a bare number
	PieceMacro                    // bare identifier naming an @string macro
)

// Piece is one operand of a field value. Text of a literal is the span between
// its delimiters, byte for byte; Text of a macro is the lower-cased name.
type Piece struct {
	Kind   PieceKind
	Text   string
	Offset int
}

// Token is one structural unit of the source.
type Token struct {
	Kind   TokenKind
	Text   string
	Pieces []Piece
	Offset int
}

func (t Token) String() string {
	switch t.Kind {
	case TokenFieldValue, TokenPreambleDef:
		parts := make([]string, len(t.Pieces))
		for i, p := range t.Pieces {
			if p.Kind == PieceMacro {
				parts[i] = p.Text
			} else {
				parts[i] = "{" + p.Text + "}"
			}
		}
		return t.Kind.String() + "(" + strings.Join(parts, " # ") + ")"
	case TokenEOF, TokenEndOfEntry:
		return t.Kind.String()
	}
	return t.Kind.String() + "(" + t.Text + ")"
}

// Position converts a byte offset in src into a 1-based line and column.
// Columns count runes.
func Position(src string, offset int) (line, col int) {
	if offset > len(src) {
		offset = len(src)
	}
	line, col = 1, 1
	for _, ch := range src[:offset] {
		if ch == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
