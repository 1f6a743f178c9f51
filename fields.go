package bibdoc

import (
	"strings"
)

// aliases lists, for a canonical field, the legacy names tried after it in
// priority order.
var aliases = map[string][]string{
	"journaltitle": {"journal"},
	"location":     {"address"},
	"institution":  {"school"},
	"annotation":   {"annote"},
	"eprinttype":   {"archiveprefix"},
	"eprintclass":  {"primaryclass"},
	"sortkey":      {"key"},
	"file":         {"pdf"},
}

// Aliases returns the names tried for a canonical field, canonical first.
func Aliases(name string) []string {
	name = strings.ToLower(name)
	return append([]string{name}, aliases[name]...)
}

// Lookup returns the effective value of name, trying its aliases in order.
// field is the name the value was found under.
func (e *Entry) Lookup(name string) (value, field string, ok bool, err error) {
	for _, f := range Aliases(name) {
		v, ok, err := e.Effective(f)
		if err != nil || ok {
			return v, f, ok, err
		}
	}
	return "", "", false, nil
}

// Literal returns a field's value unchanged. Markup is not interpreted.
func (e *Entry) Literal(name string) (string, bool, error) {
	v, _, ok, err := e.Lookup(name)
	return v, ok, err
}

func (e *Entry) Title() (string, bool, error)        { return e.Literal("title") }
func (e *Entry) Subtitle() (string, bool, error)     { return e.Literal("subtitle") }
func (e *Entry) BookTitle() (string, bool, error)    { return e.Literal("booktitle") }
func (e *Entry) JournalTitle() (string, bool, error) { return e.Literal("journaltitle") }

// Names parses a name-list field such as author or editor.
func (e *Entry) Names(name string) ([]Name, bool, error) {
	v, f, ok, err := e.Lookup(name)
	if err != nil || !ok {
		return nil, ok, err
	}
	names, err := ParseNames(v)
	if err != nil {
		return nil, true, fieldError(e, f, v, err)
	}
	return names, true, nil
}

func (e *Entry) Authors() ([]Name, bool, error)     { return e.Names("author") }
func (e *Entry) Editors() ([]Name, bool, error)     { return e.Names("editor") }
func (e *Entry) Translators() ([]Name, bool, error) { return e.Names("translator") }
func (e *Entry) BookAuthors() ([]Name, bool, error) { return e.Names("bookauthor") }

// LiteralList parses an "and"-separated list of literals.
func (e *Entry) LiteralList(name string) ([]string, bool, error) {
	v, _, ok, err := e.Lookup(name)
	if err != nil || !ok {
		return nil, ok, err
	}
	return ParseLiteralList(v), true, nil
}

func (e *Entry) Publishers() ([]string, bool, error)   { return e.LiteralList("publisher") }
func (e *Entry) Locations() ([]string, bool, error)    { return e.LiteralList("location") }
func (e *Entry) Institutions() ([]string, bool, error) { return e.LiteralList("institution") }

// List splits a separated field such as keywords.
func (e *Entry) List(name, sep string) ([]string, bool, error) {
	v, _, ok, err := e.Lookup(name)
	if err != nil || !ok {
		return nil, ok, err
	}
	return ParseList(v, sep), true, nil
}

func (e *Entry) Keywords() ([]string, bool, error) { return e.List("keywords", ",") }

// DateOf parses the <prefix>date field: "" for date, or event, orig, url.
func (e *Entry) DateOf(prefix string) (Date, bool, error) {
	name := strings.ToLower(prefix) + "date"
	v, f, ok, err := e.Lookup(name)
	if err != nil || !ok {
		return Date{}, ok, err
	}
	d, err := ParseDate(v)
	if err != nil {
		return Date{}, true, fieldError(e, f, v, err)
	}
	return d, true, nil
}

// Date returns the publication date, falling back to the year, month and day
// fields when date is absent.
func (e *Entry) Date() (Date, bool, error) {
	d, ok, err := e.DateOf("")
	if err != nil || ok {
		return d, ok, err
	}
	year, ok, err := e.Literal("year")
	if err != nil || !ok {
		return Date{}, ok, err
	}
	p, err := parseDatePart(year)
	if err != nil || p.Month != 0 {
		return Date{}, true, fieldError(e, "year", year, dateError("not a year: %q", year))
	}
	month, ok, err := e.Literal("month")
	if err != nil {
		return Date{}, true, err
	}
	if ok {
		if p.Month, ok = parseMonth(month); !ok {
			return Date{}, true, fieldError(e, "month", month, dateError("not a month: %q", month))
		}
		day, ok, err := e.Literal("day")
		if err != nil {
			return Date{}, true, err
		}
		if ok {
			if p.Day, ok = component(strings.TrimSpace(day)); !ok || p.Day < 1 || p.Day > daysIn(p.Year, p.Month) {
				return Date{}, true, fieldError(e, "day", day, dateError("not a day of %04d-%02d: %q", p.Year, p.Month, day))
			}
		}
	}
	return Date{Start: p}, true, nil
}

// Year is the year of the start of Date.
func (e *Entry) Year() (int, bool, error) {
	d, ok, err := e.Date()
	if err != nil || !ok {
		return 0, ok, err
	}
	return d.Start.Year, true, nil
}

// Crossref is the raw key in the entry's own crossref field.
func (e *Entry) Crossref() (string, bool) {
	v, ok := e.Field(FieldCrossref)
	return strings.TrimSpace(v), ok
}
