package bibdoc

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/samber/lo"
)

// Missing sorts entries without a year after every real year.
const Missing = 1<<31 - 1

type SetActionType int8

const (
	SetNoAction SetActionType = iota
	// SetIntersect keeps one entry for every index value found more than once
	// and drops the rest. The first occurrence is kept.
	SetIntersect
	SetUnion
)

// ErrNothingToDedup is returned by Deduplicate when there are no entries.
var ErrNothingToDedup = errors.New("nothing to deduplicate")

type DedupReport struct {
	DuplicateSetCount int
	DuplicateSet      map[string][]*Entry
	ResultSetCount    int
	order             []string // index values in first-seen order
}

func (dr *DedupReport) Print(w io.Writer) (err error) {
	if dr == nil || dr.DuplicateSetCount == 0 {
		return nil
	}
	if _, err = fmt.Fprintf(w, "%d duplicate sets found\n", dr.DuplicateSetCount); err != nil {
		return err
	}
	for _, idx := range dr.order {
		entries := dr.DuplicateSet[idx]
		if len(entries) < 2 {
			continue
		}
		if _, err = fmt.Fprintf(w, "%s\n[%s] has %d occurrences in lines\n", strings.Repeat("*", 60), idx, len(entries)); err != nil {
			return err
		}
		for _, e := range entries {
			if _, err = fmt.Fprintf(w, "%s:%d\n", sourceName(e), e.Line); err != nil {
				return err
			}
			if err = Print(w, e); err != nil {
				return err
			}
		}
	}
	if dr.ResultSetCount > 0 {
		_, err = fmt.Fprintf(w, "%d records processed\n", dr.ResultSetCount)
	}
	return err
}

func (dr DedupReport) String() string {
	var b = new(bytes.Buffer)
	if err := dr.Print(b); err != nil {
		b.WriteString("error: " + err.Error())
	}
	return b.String()
}

func sourceName(e *Entry) string {
	if e.bib == nil || e.bib.name == "" {
		return "<input>"
	}
	return e.bib.name
}

// indexEntry concatenates the effective values of fldNames.
func indexEntry(e *Entry, fldNames []string, raw bool) (string, error) {
	var sb strings.Builder
	for _, name := range fldNames {
		v, _, err := e.Literal(name)
		if err != nil {
			return "", err
		}
		sb.WriteString(v)
	}
	if raw {
		return sb.String(), nil
	}
	return onlyASCIAlphaNumeric(sb.String()), nil
}

// Deduplicate performs set operations on one or more bibliographies using the
// concatenated effective values of fldNames, folded to lower-case letters and
// digits. With no fields, or when fldNames contains "citekey", the citation
// key takes part in the index.
// With SetNoAction only the report is returned.
func Deduplicate(bibs []*Bibliography, fldNames []string, action SetActionType) ([]*Entry, *DedupReport, error) {
	total := lo.SumBy(bibs, func(b *Bibliography) int { return b.Len() })
	if total == 0 {
		return nil, nil, ErrNothingToDedup
	}
	fields := lo.Without(fldNames, "citekey")
	citekey := len(fields) == 0 || len(fields) != len(fldNames)
	dr := &DedupReport{DuplicateSet: make(map[string][]*Entry, total)}
	for _, b := range bibs {
		for e := range b.All() {
			idx := ""
			if len(fields) > 0 {
				var err error
				if idx, err = indexEntry(e, fields, false); err != nil {
					return nil, nil, err
				}
			}
			if citekey {
				idx += e.Key
			}
			if _, seen := dr.DuplicateSet[idx]; !seen {
				dr.order = append(dr.order, idx)
			}
			dr.DuplicateSet[idx] = append(dr.DuplicateSet[idx], e)
		}
	}
	dr.DuplicateSetCount = lo.CountBy(dr.order, func(idx string) bool { return len(dr.DuplicateSet[idx]) > 1 })
	var res []*Entry
	switch action {
	case SetNoAction:
		return nil, dr, nil
	case SetIntersect:
		if dr.DuplicateSetCount == 0 {
			return nil, dr, fmt.Errorf("no common records")
		}
		for _, idx := range dr.order {
			if entries := dr.DuplicateSet[idx]; len(entries) > 1 {
				res = append(res, entries[0])
			}
		}
	case SetUnion:
		for _, idx := range dr.order {
			res = append(res, dr.DuplicateSet[idx][0])
		}
	default:
		return nil, nil, fmt.Errorf("invalid set action %d", action)
	}
	dr.ResultSetCount = len(res)
	return res, dr, nil
}

// ValidKeys reports whether no citation key occurs twice across bibs.
func ValidKeys(bibs ...*Bibliography) bool {
	_, dr, err := Deduplicate(bibs, nil, SetNoAction)
	if err != nil {
		return true // only error is nothing to deduplicate
	}
	return dr.DuplicateSetCount == 0
}

// FindSimilar groups entries whose folded values of field are at least
// threshold similar (0..1, Levenshtein). Only groups of two or more are
// returned, in order of their first member. Entries without the field are
// skipped.
func FindSimilar(entries []*Entry, field string, threshold float64) ([][]*Entry, error) {
	type item struct {
		e   *Entry
		val string
	}
	var items []item
	for _, e := range entries {
		v, ok, err := e.Literal(field)
		if err != nil {
			return nil, err
		}
		if v = onlyASCIAlphaNumeric(v); ok && v != "" {
			items = append(items, item{e, v})
		}
	}
	metric := metrics.NewLevenshtein()
	grouped := make([]bool, len(items))
	var groups [][]*Entry
	for i, a := range items {
		if grouped[i] {
			continue
		}
		group := []*Entry{a.e}
		for j := i + 1; j < len(items); j++ {
			if !grouped[j] && strutil.Similarity(a.val, items[j].val, metric) >= threshold {
				grouped[j] = true
				group = append(group, items[j].e)
			}
		}
		if len(group) > 1 {
			groups = append(groups, group)
		}
	}
	return groups, nil
}

// Split groups entries by kind.
func Split(entries []*Entry) map[string][]*Entry {
	return lo.GroupBy(entries, func(e *Entry) string { return e.Kind })
}

// SortEntries sorts entries in place by a comma-separated list of keys, each
// optionally prefixed with '-' for descending order. The keys are "type",
// "key", "year" and any other field name, which compares effective values.
// Entries whose year is missing or invalid sort last on "year".
func SortEntries(entries []*Entry, by string) error {
	keys := ParseList(by, ",")
	if len(keys) == 0 {
		return fmt.Errorf("nothing to sort by")
	}
	type sortKey struct {
		name string
		desc bool
	}
	sks := lo.Map(keys, func(k string, _ int) sortKey {
		name, desc := strings.CutPrefix(k, "-")
		return sortKey{strings.ToLower(name), desc}
	})
	years := make(map[*Entry]int, len(entries))
	for _, e := range entries {
		y, ok, err := e.Year()
		if err != nil || !ok {
			y = Missing
		}
		years[e] = y
	}
	slices.SortStableFunc(entries, func(a, b *Entry) int {
		for _, sk := range sks {
			var c int
			switch sk.name {
			case "type", "kind":
				c = cmp.Compare(a.Kind, b.Kind)
			case "key", "citekey":
				c = cmp.Compare(a.Key, b.Key)
			case "year":
				ya, yb := years[a], years[b]
				if ya == Missing || yb == Missing {
					// missing years stay last whatever the direction
					c = cmp.Compare(lo.Ternary(ya == Missing, 1, 0), lo.Ternary(yb == Missing, 1, 0))
					if c != 0 {
						return c
					}
				}
				c = cmp.Compare(ya, yb)
			default:
				va, _, _ := a.Literal(sk.name)
				vb, _, _ := b.Literal(sk.name)
				c = cmp.Compare(strings.ToLower(va), strings.ToLower(vb))
			}
			if sk.desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
	return nil
}

// NewCiteKey generates a key from the last name of the first author, the
// year, the first word of the title, the first letter of the entry type and
// the pages or volume.
func NewCiteKey(e *Entry) string {
	var sb strings.Builder
	if names, _, err := e.Authors(); err == nil && len(names) > 0 {
		sb.WriteString(onlyASCIAlphaNumeric(strings.Join(names[0].Last, "")))
	}
	if y, ok, err := e.Year(); err == nil && ok {
		fmt.Fprintf(&sb, "%d", y)
	}
	if title, _, err := e.Title(); err == nil {
		word, _, _ := strings.Cut(strings.TrimSpace(title), " ")
		sb.WriteString(onlyASCIAlphaNumeric(word))
	}
	b := byte('x')
	if e.Kind != "" {
		b = e.Kind[0]
	}
	sb.WriteByte(b)
	pages, _, _ := e.Literal("pages")
	volume, _, _ := e.Literal("volume")
	sb.WriteString(onlyASCIAlphaNumeric(pages + volume))
	return sb.String()
}

// FixKeys returns copies of entries whose keys are unique across the slice.
// With all set every key is regenerated by NewCiteKey; otherwise only
// repeated keys are touched. Repeats get A, B, C... appended.
func FixKeys(entries []*Entry, all bool) []*Entry {
	out := make([]*Entry, len(entries))
	used := make(map[string]bool, len(entries))
	next := make(map[string]int) // last suffix tried per base key
	// original keys are kept by their first entry, so suffixes avoid them
	reserved := make(map[string]bool, len(entries))
	if !all {
		for _, e := range entries {
			reserved[e.Key] = true
		}
	}
	for i, e := range entries {
		base := e.Key
		if all {
			base = NewCiteKey(e)
		}
		key := base
		for used[key] || key != base && reserved[key] {
			next[base]++
			key = base + suffix(next[base])
		}
		used[key] = true
		out[i] = e.withKey(key)
	}
	return out
}

// suffix returns A..Z, then AA, AB...
func suffix(n int) string {
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+n%26)) + s
		n /= 26
	}
	return s
}
