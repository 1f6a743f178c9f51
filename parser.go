package bibdoc

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	LPAREN    byte = '('
	RPAREN    byte = ')'
	LBRACE    byte = '{'
	RBRACE    byte = '}'
	COMMA     byte = ','
	EQUAL     byte = '='
	AT        byte = '@'
	HASH      byte = '#'
	QUOTE     byte = '"'
	BACKSLASH byte = '\\'
)

// Options tune a parse. The zero value is ready to use.
type Options struct {
	// Logger receives debug events (discarded comments, repeated fields,
	// macro redefinitions). Nil discards them.
	Logger logrus.FieldLogger
	// Macros are defined before the first @string of the source, after the
	// built-in month abbreviations.
	Macros map[string]string
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Parse parses BibTeX source text into a Bibliography. It fails on the first
// lexical or structural error and never returns a partial document.
func Parse(src string, opts Options) (*Bibliography, error) {
	p := newParser(src, opts)
	bib, err := p.parse()
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) && pe.Line == 0 {
			pe.Line, pe.Col = Position(src, pe.Offset)
		}
		return nil, err
	}
	return bib, nil
}

// ParseReader reads r to the end and parses it.
func ParseReader(r io.Reader, opts Options) (*Bibliography, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read bibliography: %w", err)
	}
	return Parse(string(b), opts)
}

// ParseFile reads and parses the named file.
func ParseFile(fileName string, opts Options) (*Bibliography, error) {
	b, err := os.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("can't process file %s: %w", fileName, err)
	}
	bib, err := Parse(string(b), opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}
	bib.name = fileName
	return bib, nil
}

type parser struct {
	lex    *Lexer
	log    logrus.FieldLogger
	macros *MacroTable
	lines  lineIndex
}

func newParser(src string, opts Options) *parser {
	log := opts.Logger
	if log == nil {
		log = discardLogger()
	}
	macros := NewMacroTable()
	macros.log = log
	for name, value := range opts.Macros {
		macros.set(name, value)
	}
	return &parser{
		lex:    NewLexer(src),
		log:    log,
		macros: macros,
		lines:  newLineIndex(src),
	}
}

func (p *parser) parse() (*Bibliography, error) {
	bib := newBibliography(p.macros)
	var (
		current  *Entry // nil outside an entry
		field    string // pending field name
		comments int
	)
	for {
		tok, err := p.lex.Next()
		if err != nil {
			if current != nil {
				err = withKey(err, current.Key)
			}
			return nil, err
		}
		switch tok.Kind {
		case TokenEOF:
			p.log.WithFields(logrus.Fields{
				"entries":  len(bib.entries),
				"comments": comments,
			}).Debug("parsed bibliography")
			return bib, nil
		case TokenComment:
			comments++
		case TokenPreambleDef:
			text, err := p.macros.Resolve(tok.Pieces)
			if err != nil {
				return nil, err
			}
			bib.preambles = append(bib.preambles, text)
		case TokenStringDef:
			if err := p.macros.Define(tok.Text, tok.Pieces); err != nil {
				return nil, err
			}
		case TokenEntryStart:
			current = newEntry(strings.ToLower(tok.Text), "", tok.Offset, p.lines.line(tok.Offset))
		case TokenKey:
			current.Key = tok.Text
			if _, dup := bib.index[tok.Text]; dup {
				return nil, &ParseError{Err: ErrDuplicateKey, Offset: tok.Offset, Key: tok.Text,
					Msg: fmt.Sprintf("first defined on line %d", bib.index[tok.Text].Line)}
			}
		case TokenFieldName:
			field = tok.Text
		case TokenFieldValue:
			value, err := p.macros.Resolve(tok.Pieces)
			if err != nil {
				return nil, withKey(err, current.Key)
			}
			if current.set(Field{Name: field, Value: value, Offset: tok.Offset, Line: p.lines.line(tok.Offset)}) {
				p.log.WithFields(logrus.Fields{"key": current.Key, "field": field}).
					Debug("repeated field, keeping the last value")
			}
		case TokenEndOfEntry:
			bib.add(current)
			current = nil
		}
	}
}

func withKey(err error, key string) error {
	var pe *ParseError
	if errors.As(err, &pe) && pe.Key == "" {
		pe.Key = key
	}
	return err
}

// lineIndex maps offsets to line numbers without rescanning the source.
type lineIndex []int

func newLineIndex(src string) lineIndex {
	starts := lineIndex{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func (li lineIndex) line(offset int) int {
	return sort.SearchInts(li, offset+1)
}
