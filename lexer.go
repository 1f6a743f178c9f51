package bibdoc

import (
	"iter"
	"strings"
)

type lexState int8

const (
	stateTop    lexState = iota // between commands, skipping junk
	stateFields                 // inside an entry, after the key
	stateDone
)

// Lexer splits BibTeX source into structural tokens. Field values are kept as
// opaque spans: only brace depth, top-level quotes and # are significant.
// A Lexer stops at the first error and keeps returning it.
type Lexer struct {
	src     string
	pos     int
	state   lexState
	closer  byte // '}' or ')' closing the current command
	open    int  // offset of the current command's opening delimiter
	pending []Token
	err     error
}

// NewLexer returns a lexer positioned at the start of src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src}
}

// Reset rewinds the lexer to the start of its source, clearing any error.
func (l *Lexer) Reset() {
	*l = Lexer{src: l.src}
}

// All replays the token sequence from the start. The sequence ends after
// TokenEOF or after the first error.
func (l *Lexer) All() iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		l.Reset()
		for {
			tok, err := l.Next()
			if !yield(tok, err) || err != nil || tok.Kind == TokenEOF {
				return
			}
		}
	}
}

// Next returns the next token. After the source is exhausted it returns
// TokenEOF indefinitely.
func (l *Lexer) Next() (Token, error) {
	if l.err != nil {
		return Token{}, l.err
	}
	if len(l.pending) > 0 {
		tok := l.pending[0]
		l.pending = l.pending[1:]
		return tok, nil
	}
	var (
		tok Token
		err error
	)
	switch l.state {
	case stateTop:
		tok, err = l.lexCommand()
	case stateFields:
		tok, err = l.lexField()
	default:
		return Token{Kind: TokenEOF, Offset: len(l.src)}, nil
	}
	if err != nil {
		l.err = err
		l.state = stateDone
		l.pending = nil
		return Token{}, err
	}
	return tok, nil
}

// lexCommand skips free text up to the next '@' and lexes the command header.
func (l *Lexer) lexCommand() (Token, error) {
	i := strings.IndexByte(l.src[l.pos:], AT)
	if i < 0 {
		l.pos = len(l.src)
		l.state = stateDone
		return Token{Kind: TokenEOF, Offset: l.pos}, nil
	}
	start := l.pos + i
	l.pos = start + 1
	l.skipSpace()
	typ := l.readName()
	if typ == "" {
		return Token{}, l.malformed(l.pos, "expected entry type after '@'")
	}
	command := strings.ToLower(typ)
	l.skipSpace()
	if l.eof() {
		if command == "comment" {
			return Token{Kind: TokenComment, Offset: start}, nil
		}
		return Token{}, newParseError(ErrMalformedToken, l.pos, "expected '{' or '(' after @%s", typ)
	}
	switch l.src[l.pos] {
	case LBRACE:
		l.closer = RBRACE
	case LPAREN:
		l.closer = RPAREN
	default:
		if command == "comment" {
			// a bare @comment only hides its own name
			return Token{Kind: TokenComment, Offset: start}, nil
		}
		return Token{}, l.malformed(l.pos, "expected '{' or '(' after @%s", typ)
	}
	l.open = l.pos
	l.pos++

	switch command {
	case "comment":
		body, err := l.readComment()
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: TokenComment, Text: body, Offset: start}, nil
	case "preamble":
		body := l.pos
		pieces, err := l.readValue()
		if err == nil {
			err = l.closeCommand("@preamble")
		}
		if err != nil {
			// not a value: keep the raw body, as long as it is closed
			l.pos = body
			text, err := l.readComment()
			if err != nil {
				return Token{}, err
			}
			pieces = []Piece{{Kind: PieceLiteral, Text: strings.TrimSpace(text), Offset: body}}
		}
		return Token{Kind: TokenPreambleDef, Pieces: pieces, Offset: start}, nil
	case "string":
		return l.lexStringDef(start)
	}

	l.skipSpace()
	keyStart := l.pos
	key := l.readName()
	l.skipSpace()
	if l.eof() {
		return Token{}, l.unterminated()
	}
	switch c := l.src[l.pos]; {
	case key == "":
		return Token{}, l.malformed(keyStart, "missing citation key in @%s", typ)
	case c == COMMA:
		l.pos++
		l.state = stateFields
		l.pending = append(l.pending, Token{Kind: TokenKey, Text: key, Offset: keyStart})
	case c == l.closer:
		l.pos++
		l.pending = append(l.pending,
			Token{Kind: TokenKey, Text: key, Offset: keyStart},
			Token{Kind: TokenEndOfEntry, Offset: l.pos - 1})
	default:
		return Token{}, l.malformed(l.pos, "unexpected %q after citation key %q", c, key)
	}
	return Token{Kind: TokenEntryStart, Text: typ, Offset: start}, nil
}

func (l *Lexer) lexStringDef(start int) (Token, error) {
	l.skipSpace()
	nameStart := l.pos
	name := l.readName()
	if name == "" {
		if l.eof() {
			return Token{}, l.unterminated()
		}
		return Token{}, l.malformed(nameStart, "expected macro name in @string")
	}
	if err := l.expectAssign(name); err != nil {
		return Token{}, err
	}
	pieces, err := l.readValue()
	if err != nil {
		return Token{}, err
	}
	l.skipSpace()
	if !l.eof() && l.src[l.pos] == COMMA {
		l.pos++
	}
	if err := l.closeCommand("@string"); err != nil {
		return Token{}, err
	}
	return Token{Kind: TokenStringDef, Text: strings.ToLower(name), Pieces: pieces, Offset: start}, nil
}

// lexField lexes one "name = value" pair, or the end of the entry.
func (l *Lexer) lexField() (Token, error) {
	l.skipSpace()
	if l.eof() {
		return Token{}, l.unterminated()
	}
	if l.src[l.pos] == l.closer {
		l.pos++
		l.state = stateTop
		return Token{Kind: TokenEndOfEntry, Offset: l.pos - 1}, nil
	}
	nameStart := l.pos
	name := l.readName()
	if name == "" {
		return Token{}, l.malformed(l.pos, "unexpected %q where a field name was expected", l.src[l.pos])
	}
	if err := l.expectAssign(name); err != nil {
		return Token{}, err
	}
	l.skipSpace()
	valueStart := l.pos
	pieces, err := l.readValue()
	if err != nil {
		return Token{}, err
	}
	l.skipSpace()
	if l.eof() {
		return Token{}, l.unterminated()
	}
	switch c := l.src[l.pos]; c {
	case COMMA:
		l.pos++
	case l.closer:
		// left for the next call
	default:
		return Token{}, l.malformed(l.pos, "expected ',' or %q after field %q, found %q", l.closer, name, c)
	}
	l.pending = append(l.pending, Token{Kind: TokenFieldValue, Pieces: pieces, Offset: valueStart})
	return Token{Kind: TokenFieldName, Text: strings.ToLower(name), Offset: nameStart}, nil
}

// readValue reads one or more #-joined pieces.
func (l *Lexer) readValue() ([]Piece, error) {
	var pieces []Piece
	for {
		l.skipSpace()
		if l.eof() {
			return nil, l.unterminated()
		}
		start := l.pos
		switch c := l.src[l.pos]; {
		case c == LBRACE:
			text, err := l.readBraced()
			if err != nil {
				return nil, err
			}
			pieces = append(pieces, Piece{Kind: PieceLiteral, Text: text, Offset: start})
		case c == QUOTE:
			text, err := l.readQuoted()
			if err != nil {
				return nil, err
			}
			pieces = append(pieces, Piece{Kind: PieceLiteral, Text: text, Offset: start})
		case isNameByte(c):
			name := l.readName()
			switch {
			case isNumber(name):
				pieces = append(pieces, Piece{Kind: PieceLiteral, Text: name, Offset: start})
			case isDigit(name[0]):
				return nil, l.malformed(start, "macro name %q starts with a digit", name)
			default:
				pieces = append(pieces, Piece{Kind: PieceMacro, Text: strings.ToLower(name), Offset: start})
			}
		default:
			return nil, l.malformed(start, "unexpected %q in field value", c)
		}
		l.skipSpace()
		if !l.eof() && l.src[l.pos] == HASH {
			l.pos++
			continue
		}
		return pieces, nil
	}
}

// readBraced reads a balanced {...} group starting at the current '{' and
// returns its inner text. \{ and \} do not count towards the depth.
func (l *Lexer) readBraced() (string, error) {
	open := l.pos
	depth := 0
	escaped := false
	for i := open; i < len(l.src); i++ {
		c := l.src[i]
		switch {
		case escaped:
			escaped = false
		case c == BACKSLASH:
			escaped = true
		case c == LBRACE:
			depth++
		case c == RBRACE:
			depth--
			if depth == 0 {
				l.pos = i + 1
				return l.src[open+1 : i], nil
			}
		}
	}
	return "", newParseError(ErrUnterminatedGroup, open, "brace group is not closed")
}

// readQuoted reads a "..." value. Quotes nested in braces do not end it.
func (l *Lexer) readQuoted() (string, error) {
	open := l.pos
	depth := 0
	escaped := false
	for i := open + 1; i < len(l.src); i++ {
		c := l.src[i]
		switch {
		case escaped:
			escaped = false
		case c == BACKSLASH:
			escaped = true
		case c == LBRACE:
			depth++
		case c == RBRACE:
			depth--
			if depth < 0 {
				return "", newParseError(ErrMalformedToken, i, "unbalanced '}' in quoted value")
			}
		case c == QUOTE && depth == 0:
			l.pos = i + 1
			return l.src[open+1 : i], nil
		}
	}
	return "", newParseError(ErrUnterminatedGroup, open, "quoted value is not closed")
}

// readComment returns the body of @comment up to the matching closer.
func (l *Lexer) readComment() (string, error) {
	start := l.pos
	depth := 0
	for i := start; i < len(l.src); i++ {
		switch c := l.src[i]; {
		case c == LBRACE:
			depth++
		case c == RBRACE && depth > 0:
			depth--
		case c == l.closer && depth == 0:
			l.pos = i + 1
			return l.src[start:i], nil
		}
	}
	return "", l.unterminated()
}

func (l *Lexer) expectAssign(name string) error {
	l.skipSpace()
	if l.eof() {
		return l.unterminated()
	}
	if l.src[l.pos] != EQUAL {
		return l.malformed(l.pos, "expected '=' after %q, found %q", name, l.src[l.pos])
	}
	l.pos++
	return nil
}

func (l *Lexer) closeCommand(what string) error {
	l.skipSpace()
	if l.eof() {
		return l.unterminated()
	}
	if l.src[l.pos] != l.closer {
		return l.malformed(l.pos, "expected %q to close %s, found %q", l.closer, what, l.src[l.pos])
	}
	l.pos++
	return nil
}

func (l *Lexer) readName() string {
	start := l.pos
	for l.pos < len(l.src) && isNameByte(l.src[l.pos]) {
		l.pos++
	}
	return l.src[start:l.pos]
}

func (l *Lexer) skipSpace() {
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.pos++
	}
}

func (l *Lexer) eof() bool { return l.pos >= len(l.src) }

func (l *Lexer) unterminated() error {
	return newParseError(ErrUnterminatedGroup, l.open, "%q opened here is not closed", l.src[l.open])
}

func (l *Lexer) malformed(offset int, format string, args ...any) error {
	return newParseError(ErrMalformedToken, offset, format, args...)
}
