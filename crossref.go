package bibdoc

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Link fields naming other entries to inherit from. xdata is consulted before
// crossref; it inherits under the same field names.
const (
	FieldCrossref = "crossref"
	FieldXData    = "xdata"
)

// fields that are never inherited from a parent
var noInherit = map[string]bool{
	"crossref":       true,
	"xdata":          true,
	"xref":           true,
	"ids":            true,
	"entryset":       true,
	"entrysubtype":   true,
	"execute":        true,
	"label":          true,
	"options":        true,
	"presort":        true,
	"related":        true,
	"relatedoptions": true,
	"relatedstring":  true,
	"relatedtype":    true,
	"shorthand":      true,
	"shorthandintro": true,
	"sortkey":        true,
}

type inheritKey struct {
	child, parent, field string
}

// inheritTable maps (child type, parent type, child field) to the parent
// field it is read from. An empty value means the field is not inherited.
// Pairs not in the table inherit under the same name.
var (
	inheritTable = map[inheritKey]string{}
	// reverse of inheritTable: (child, parent, parent field) -> child fields
	inheritReverse = map[inheritKey][]string{}
)

type inheritRule struct {
	parents  []string
	children []string
	fields   map[string]string // child field -> parent field
}

var titleFields = []string{"title", "subtitle", "titleaddon", "shorttitle", "sorttitle", "indextitle", "indexsorttitle"}

var inheritRules = []inheritRule{
	{
		parents: []string{"mvbook", "mvcollection", "mvproceedings", "mvreference"},
		children: []string{"book", "collection", "proceedings", "reference", "inbook", "incollection",
			"inproceedings", "inreference", "bookinbook", "suppbook", "suppcollection"},
		fields: map[string]string{"maintitle": "title", "mainsubtitle": "subtitle", "maintitleaddon": "titleaddon"},
	},
	{
		parents:  []string{"book"},
		children: []string{"inbook", "bookinbook", "suppbook"},
		fields: map[string]string{"booktitle": "title", "booksubtitle": "subtitle",
			"booktitleaddon": "titleaddon", "bookauthor": "author"},
	},
	{
		parents:  []string{"collection", "reference"},
		children: []string{"incollection", "inreference", "suppcollection"},
		fields:   map[string]string{"booktitle": "title", "booksubtitle": "subtitle", "booktitleaddon": "titleaddon"},
	},
	{
		parents:  []string{"proceedings"},
		children: []string{"inproceedings"},
		fields:   map[string]string{"booktitle": "title", "booksubtitle": "subtitle", "booktitleaddon": "titleaddon"},
	},
	{
		parents:  []string{"periodical"},
		children: []string{"article", "suppperiodical"},
		fields:   map[string]string{"journaltitle": "title", "journalsubtitle": "subtitle"},
	},
}

func init() {
	for _, r := range inheritRules {
		for _, p := range r.parents {
			for _, c := range r.children {
				for _, f := range titleFields {
					inheritTable[inheritKey{c, p, f}] = ""
				}
				for cf, pf := range r.fields {
					inheritTable[inheritKey{c, p, cf}] = pf
					rk := inheritKey{c, p, pf}
					inheritReverse[rk] = append(inheritReverse[rk], cf)
				}
			}
		}
	}
}

// inheritedName returns the parent field a child field is read from.
func inheritedName(child, parent, field string) (string, bool) {
	if noInherit[field] {
		return "", false
	}
	if pf, ok := inheritTable[inheritKey{child, parent, field}]; ok {
		return pf, pf != ""
	}
	return field, true
}

// childNames is the inverse of inheritedName.
func childNames(child, parent, field string) []string {
	if noInherit[field] {
		return nil
	}
	names := inheritReverse[inheritKey{child, parent, field}]
	if _, mapped := inheritTable[inheritKey{child, parent, field}]; !mapped {
		names = append([]string{field}, names...)
	}
	return names
}

// EffectiveField returns the value of name as seen by e: its own field if
// present, otherwise the value inherited through xdata and then crossref.
// Broken links are only reported when they are actually consulted.
func (b *Bibliography) EffectiveField(e *Entry, name string) (string, bool, error) {
	name = strings.ToLower(name)
	v, ok, err := b.effectiveField(e, name, map[string]bool{})
	if err != nil {
		return "", false, fieldError(e, name, "", err)
	}
	return v, ok, nil
}

// Effective is shorthand for e.Bibliography().EffectiveField(e, name).
func (e *Entry) Effective(name string) (string, bool, error) {
	if e.bib == nil {
		v, ok := e.Field(name)
		return v, ok, nil
	}
	return e.bib.EffectiveField(e, name)
}

// visited holds the keys on the current inheritance path. Links are
// followed one at a time, so a broken link behind a parent that already has
// the field is never reached.
func (b *Bibliography) effectiveField(e *Entry, name string, visited map[string]bool) (string, bool, error) {
	if v, ok := e.Field(name); ok {
		return v, true, nil
	}
	if noInherit[name] {
		return "", false, nil
	}
	visited[e.Key] = true
	defer delete(visited, e.Key)
	for _, l := range links(e) {
		parent, err := b.follow(e, l)
		if err != nil {
			return "", false, err
		}
		pname := name
		if l.mapped {
			var ok bool
			if pname, ok = inheritedName(e.Kind, parent.Kind, name); !ok {
				continue
			}
		}
		if err := l.checkCycle(e, visited); err != nil {
			return "", false, err
		}
		v, ok, err := b.effectiveField(parent, pname, visited)
		if err != nil || ok {
			return v, ok, err
		}
	}
	return "", false, nil
}

// link is one unresolved xdata or crossref reference.
type link struct {
	field  string // FieldXData or FieldCrossref
	key    string
	mapped bool // crossref applies the type table, xdata does not
}

// links lists e's xdata and crossref references in lookup order.
func links(e *Entry) []link {
	var out []link
	if v, ok := e.Field(FieldXData); ok {
		for _, key := range ParseList(v, ",") {
			out = append(out, link{field: FieldXData, key: key})
		}
	}
	if v, ok := e.Field(FieldCrossref); ok {
		if key := strings.TrimSpace(v); key != "" {
			out = append(out, link{field: FieldCrossref, key: key, mapped: true})
		}
	}
	return out
}

// follow returns the entry l points at.
func (b *Bibliography) follow(e *Entry, l link) (*Entry, error) {
	target, ok := b.index[l.key]
	if !ok {
		return nil, &FieldError{Err: ErrMissingCrossrefTarget, Key: e.Key, Field: l.field, Value: l.key,
			Msg: "no entry with that key"}
	}
	return target, nil
}

func (l link) checkCycle(e *Entry, visited map[string]bool) error {
	if l.key == e.Key || visited[l.key] {
		return &FieldError{Err: ErrCyclicCrossref, Key: e.Key, Field: l.field, Value: l.key,
			Msg: fmt.Sprintf("%s leads back to %q", l.field, l.key)}
	}
	return nil
}

// ResolvedFields returns the effective view of e: its own fields in source
// order followed by every inherited field not already present.
func (b *Bibliography) ResolvedFields(e *Entry) ([]Field, error) {
	names, err := b.inheritableNames(e, map[string]bool{})
	if err != nil {
		return nil, fieldError(e, FieldCrossref, "", err)
	}
	out := e.Fields()
	for _, name := range lo.Uniq(names) {
		if _, own := e.index[name]; own {
			continue
		}
		v, ok, err := b.EffectiveField(e, name)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, Field{Name: name, Value: v})
		}
	}
	return out, nil
}

// inheritableNames lists the field names e could see through its links.
// Every link is needed here, so any broken one is an error.
func (b *Bibliography) inheritableNames(e *Entry, visited map[string]bool) ([]string, error) {
	visited[e.Key] = true
	defer delete(visited, e.Key)
	var names []string
	for _, l := range links(e) {
		parent, err := b.follow(e, l)
		if err != nil {
			return nil, err
		}
		if err := l.checkCycle(e, visited); err != nil {
			return nil, err
		}
		pnames, err := b.inheritableNames(parent, visited)
		if err != nil {
			return nil, err
		}
		pnames = append(parent.FieldNames(), pnames...)
		for _, pn := range pnames {
			switch {
			case noInherit[pn]:
			case l.mapped:
				names = append(names, childNames(e.Kind, parent.Kind, pn)...)
			default:
				names = append(names, pn)
			}
		}
	}
	return names, nil
}
