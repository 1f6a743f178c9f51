package bibdoc

import (
	"fmt"
	"io"
	"strings"
)

// Entry is one bibliographic record. Its raw fields are fixed when the
// bibliography is parsed; inherited values are computed on read.
type Entry struct {
	Kind   string // entry type, lower-cased: article, book, ...
	Key    string // citation key
	Offset int    // byte offset of the '@'
	Line   int

	fields []Field
	index  map[string]int
	bib    *Bibliography
}

// Field is a named raw value after macro resolution.
type Field struct {
	Name   string
	Value  string
	Offset int
	Line   int
}

func newEntry(kind, key string, offset, line int) *Entry {
	return &Entry{Kind: kind, Key: key, Offset: offset, Line: line, index: make(map[string]int)}
}

// set stores a field; a repeated name overwrites the value in place.
func (e *Entry) set(f Field) (replaced bool) {
	if i, ok := e.index[f.Name]; ok {
		e.fields[i].Value = f.Value
		return true
	}
	e.index[f.Name] = len(e.fields)
	e.fields = append(e.fields, f)
	return false
}

// withKey returns a copy of e under another key. The copy shares fields and
// still resolves inheritance through e's bibliography.
func (e *Entry) withKey(key string) *Entry {
	c := *e
	c.Key = key
	return &c
}

// Field returns the entry's own raw value for name, ignoring crossrefs.
func (e *Entry) Field(name string) (string, bool) {
	i, ok := e.index[strings.ToLower(name)]
	if !ok {
		return "", false
	}
	return e.fields[i].Value, true
}

// Fields returns the entry's own fields in source order.
func (e *Entry) Fields() []Field {
	out := make([]Field, len(e.fields))
	copy(out, e.fields)
	return out
}

// FieldNames returns the entry's own field names in source order.
func (e *Entry) FieldNames() []string {
	names := make([]string, len(e.fields))
	for i, f := range e.fields {
		names[i] = f.Name
	}
	return names
}

// Len is the number of own fields.
func (e *Entry) Len() int { return len(e.fields) }

// Bibliography returns the document the entry belongs to.
func (e *Entry) Bibliography() *Bibliography { return e.bib }

func (e *Entry) BibtexRepr() string {
	return fmt.Sprintf("@%s{%s,\n", e.Kind, e.Key)
}

func (f Field) BibtexRepr() string {
	return fmt.Sprintf("  %s = {%s}", f.Name, f.Value)
}

// Print writes a *Bibliography, an *Entry, a []*Entry or a Field in BibTeX
// syntax. Values are written brace-delimited and unchanged.
func Print(w io.Writer, n any) error {
	switch n := n.(type) {
	case *Bibliography:
		return Print(w, n.entries)
	case []*Entry:
		for i, e := range n {
			if i > 0 {
				if _, err := fmt.Fprintln(w); err != nil {
					return err
				}
			}
			if err := Print(w, e); err != nil {
				return err
			}
		}
		return nil
	case *Entry:
		if _, err := io.WriteString(w, n.BibtexRepr()); err != nil {
			return err
		}
		for i, f := range n.fields {
			if err := Print(w, f); err != nil {
				return err
			}
			sep := ",\n"
			if i == len(n.fields)-1 {
				sep = "\n"
			}
			if _, err := io.WriteString(w, sep); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintln(w, "}")
		return err
	case Field:
		_, err := io.WriteString(w, n.BibtexRepr())
		return err
	default:
		return fmt.Errorf("cannot print %T", n)
	}
}
