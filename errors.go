package bibdoc

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by this package wraps exactly one of these,
// so callers can test for a kind with errors.Is.
var (
	ErrUnterminatedGroup     = errors.New("unterminated group")
	ErrMalformedToken        = errors.New("malformed token")
	ErrUnknownMacro          = errors.New("unknown macro")
	ErrDuplicateKey          = errors.New("duplicate citation key")
	ErrMissingCrossrefTarget = errors.New("missing crossref target")
	ErrCyclicCrossref        = errors.New("cyclic crossref")
	ErrMalformedName         = errors.New("malformed name")
	ErrMalformedDate         = errors.New("malformed date")
)

// ParseError reports a structural failure found while parsing source text.
// Parsing stops at the first ParseError.
type ParseError struct {
	Err    error  // one of the Err* kinds
	Msg    string // detail
	Offset int    // byte offset into the source
	Line   int    // 1-based; 0 if unknown
	Col    int    // 1-based; 0 if unknown
	Key    string // citation key of the entry being assembled, if any
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	if e.Line > 0 {
		fmt.Fprintf(&sb, "line %d col %d: ", e.Line, e.Col)
	} else {
		fmt.Fprintf(&sb, "offset %d: ", e.Offset)
	}
	sb.WriteString(e.Err.Error())
	if e.Msg != "" {
		sb.WriteString(": " + e.Msg)
	}
	if e.Key != "" {
		fmt.Fprintf(&sb, " (in entry %q)", e.Key)
	}
	return sb.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

func newParseError(kind error, offset int, format string, args ...any) *ParseError {
	return &ParseError{Err: kind, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

// FieldError reports a failure local to one field of one entry. It is returned
// by effective-field lookups and typed getters and never aborts a parse.
type FieldError struct {
	Err   error
	Key   string // entry key
	Field string // field name as requested
	Value string // offending raw value, if any
	Msg   string
}

func (e *FieldError) Error() string {
	s := fmt.Sprintf("%s.%s: %s", e.Key, e.Field, e.Err)
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Value != "" {
		s += fmt.Sprintf(" in %q", e.Value)
	}
	return s
}

func (e *FieldError) Unwrap() error { return e.Err }

// grammarError is what the name, date and list grammars return; getters attach
// entry and field context by turning it into a FieldError.
type grammarError struct {
	err error
	msg string
}

func (e *grammarError) Error() string { return e.err.Error() + ": " + e.msg }
func (e *grammarError) Unwrap() error { return e.err }

func nameError(format string, args ...any) error {
	return &grammarError{err: ErrMalformedName, msg: fmt.Sprintf(format, args...)}
}

func dateError(format string, args ...any) error {
	return &grammarError{err: ErrMalformedDate, msg: fmt.Sprintf(format, args...)}
}

func fieldError(e *Entry, field, value string, err error) error {
	if err == nil {
		return nil
	}
	var fe *FieldError
	if errors.As(err, &fe) {
		return err
	}
	out := &FieldError{Key: e.Key, Field: field, Value: value, Err: err}
	var ge *grammarError
	if errors.As(err, &ge) {
		out.Err, out.Msg = ge.err, ge.msg
	}
	return out
}
