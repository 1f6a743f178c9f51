package bibdoc

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// WriteBibTeX writes entries in BibTeX syntax. With resolve set, each entry is
// written with its effective fields and without crossref or xdata, so it stands
// on its own.
func WriteBibTeX(w io.Writer, entries []*Entry, resolve bool) error {
	if !resolve {
		return Print(w, entries)
	}
	flat := make([]*Entry, 0, len(entries))
	for _, e := range entries {
		fields, err := e.resolvedFields()
		if err != nil {
			return err
		}
		c := newEntry(e.Kind, e.Key, e.Offset, e.Line)
		for _, f := range fields {
			if f.Name != FieldCrossref && f.Name != FieldXData {
				c.set(f)
			}
		}
		flat = append(flat, c)
	}
	return Print(w, flat)
}

func (e *Entry) resolvedFields() ([]Field, error) {
	if e.bib == nil {
		return e.Fields(), nil
	}
	return e.bib.ResolvedFields(e)
}

// hayagrivaEntry is one record in the hayagriva YAML bibliography format.
type hayagrivaEntry struct {
	Type      string            `yaml:"type"`
	Title     string            `yaml:"title,omitempty"`
	Author    []string          `yaml:"author,omitempty"`
	Editor    []string          `yaml:"editor,omitempty"`
	Date      string            `yaml:"date,omitempty"`
	Publisher string            `yaml:"publisher,omitempty"`
	Location  string            `yaml:"location,omitempty"`
	Volume    string            `yaml:"volume,omitempty"`
	Issue     string            `yaml:"issue,omitempty"`
	PageRange string            `yaml:"page-range,omitempty"`
	URL       string            `yaml:"url,omitempty"`
	Serial    map[string]string `yaml:"serial-number,omitempty"`
	Parent    *hayagrivaEntry   `yaml:"parent,omitempty"`
}

var hayagrivaTypes = map[string]string{
	"article":       "article",
	"book":          "book",
	"mvbook":        "book",
	"booklet":       "book",
	"inbook":        "chapter",
	"bookinbook":    "chapter",
	"incollection":  "chapter",
	"inproceedings": "article",
	"conference":    "article",
	"collection":    "anthology",
	"proceedings":   "proceedings",
	"periodical":    "periodical",
	"online":        "web",
	"www":           "web",
	"thesis":        "thesis",
	"phdthesis":     "thesis",
	"mastersthesis": "thesis",
	"report":        "report",
	"techreport":    "report",
	"manual":        "report",
	"patent":        "patent",
	"software":      "repository",
	"dataset":       "repository",
	"unpublished":   "manuscript",
}

// parentTypes gives the hayagriva parent type for entries that live inside
// another work, and the field naming that work.
var parentTypes = map[string][2]string{
	"article":       {"periodical", "journaltitle"},
	"inproceedings": {"proceedings", "booktitle"},
	"conference":    {"proceedings", "booktitle"},
	"incollection":  {"anthology", "booktitle"},
	"inbook":        {"book", "booktitle"},
	"bookinbook":    {"book", "booktitle"},
}

// WriteYAML writes entries as a hayagriva YAML bibliography, keyed by
// citation key in the order given. Typed getter errors abort the export.
func WriteYAML(w io.Writer, entries []*Entry) error {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range entries {
		he, err := toHayagriva(e)
		if err != nil {
			return err
		}
		var val yaml.Node
		if err := val.Encode(he); err != nil {
			return fmt.Errorf("encode %s: %w", e.Key, err)
		}
		doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: e.Key}, &val)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func toHayagriva(e *Entry) (*hayagrivaEntry, error) {
	he := &hayagrivaEntry{Type: "misc"}
	if t, ok := hayagrivaTypes[e.Kind]; ok {
		he.Type = t
	}
	var err error
	get := func(name string) string {
		if err != nil {
			return ""
		}
		var v string
		v, _, err = e.Literal(name)
		return strings.TrimSpace(v)
	}
	names := func(name string) []string {
		if err != nil {
			return nil
		}
		var ns []Name
		ns, _, err = e.Names(name)
		return lo.Map(ns, func(n Name, _ int) string { return n.String() })
	}
	he.Title = get("title")
	he.Author = names("author")
	he.Editor = names("editor")
	if err == nil {
		var ps []string
		ps, _, err = e.Publishers()
		he.Publisher = strings.Join(ps, "; ")
	}
	he.Location = get("location")
	he.Volume = get("volume")
	he.Issue = get("number")
	he.PageRange = get("pages")
	he.URL = get("url")
	for _, id := range []string{"doi", "isbn", "issn"} {
		if v := get(id); v != "" {
			if he.Serial == nil {
				he.Serial = map[string]string{}
			}
			he.Serial[id] = v
		}
	}
	if err != nil {
		return nil, err
	}
	d, ok, err := e.Date()
	if err != nil {
		return nil, err
	}
	if ok {
		he.Date = d.String()
	}
	if pt, ok := parentTypes[e.Kind]; ok {
		if title := get(pt[1]); title != "" {
			he.Parent = &hayagrivaEntry{Type: pt[0], Title: title}
			if pt[0] == "periodical" {
				// volume and issue belong to the journal
				he.Parent.Volume, he.Parent.Issue = he.Volume, he.Issue
				he.Volume, he.Issue = "", ""
			} else {
				he.Parent.Editor, he.Editor = he.Editor, nil
			}
		}
		if err != nil {
			return nil, err
		}
	}
	return he, nil
}

var typEscaper = strings.NewReplacer(
	`{`, "", `}`, "",
	`#`, `\#`, `*`, `\*`, `_`, `\_`, `$`, `\$`, `@`, `\@`, `<`, `\<`, "`", "\\`",
)

// AsTyp writes entries as a Typst section: a heading followed by a numbered
// list. Brace groups are dropped and Typst markup characters escaped.
func AsTyp(w io.Writer, entries []*Entry, section string) error {
	if _, err := fmt.Fprintf(w, "= %s\n\n", section); err != nil {
		return err
	}
	for _, e := range entries {
		line, err := typItem(e)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "+ %s\n", line); err != nil {
			return err
		}
	}
	return nil
}

func typItem(e *Entry) (string, error) {
	var parts []string
	authors, _, err := e.Authors()
	if err != nil {
		return "", err
	}
	if len(authors) > 0 {
		parts = append(parts, typEscaper.Replace(formatAuthors(authors)))
	}
	if y, ok, err := e.Year(); err != nil {
		return "", err
	} else if ok {
		parts = append(parts, fmt.Sprintf("(%d).", y))
	}
	title, _, err := e.Title()
	if err != nil {
		return "", err
	}
	parts = append(parts, "_"+typEscaper.Replace(title)+"_.")
	var where []string
	for _, name := range []string{"journaltitle", "booktitle", "publisher", "volume", "pages"} {
		v, _, err := e.Literal(name)
		if err != nil {
			return "", err
		}
		if v = strings.TrimSpace(v); v != "" {
			where = append(where, typEscaper.Replace(v))
		}
	}
	if len(where) > 0 {
		parts = append(parts, strings.Join(where, ", ")+".")
	}
	return strings.Join(parts, " "), nil
}

// formatAuthors renders "Last, F. F., Last, F. & Last, F.".
func formatAuthors(names []Name) string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n.IsOthers() {
			out = append(out, "et al.")
			continue
		}
		initials := lo.Map(n.First, func(w string, _ int) string {
			if r, ok := firstLetter(w); ok {
				return string(r) + "."
			}
			return w
		})
		s := n.Family()
		if len(initials) > 0 {
			s += ", " + strings.Join(initials, " ")
		}
		out = append(out, s)
	}
	if len(out) < 2 {
		return strings.Join(out, "")
	}
	return strings.Join(out[:len(out)-1], ", ") + " & " + out[len(out)-1]
}

// ExportTyp splits entries by kind and writes one <kind>.typ file per kind
// into outDirName, ready for typesetting.
func ExportTyp(entries []*Entry, outDirName string) error {
	groups := Split(entries)
	if len(groups) == 0 {
		return fmt.Errorf("nothing to export")
	}
	kinds := lo.Keys(groups)
	slices.Sort(kinds)
	title := cases.Title(language.English)
	for _, kind := range kinds {
		secName := ""
		switch kind {
		case "article":
			secName = "Referred Articles"
		case "inbook", "incollection":
			secName = "Book Chapters"
		case "inproceedings":
			secName = "Conference Papers"
		case "online", "software":
			secName = "Software and Online Resources"
		default:
			secName = title.String(kind)
		}
		err := saveWith(filepath.Join(outDirName, kind+".typ"), func(w io.Writer) error {
			return AsTyp(w, groups[kind], secName)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
