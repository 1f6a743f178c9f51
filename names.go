package bibdoc

import (
	"slices"
	"strings"
)

// Name is one personal name split into its BibTeX parts. Each part is a list
// of words; brace groups are kept verbatim inside the word holding them.
type Name struct {
	Particle []string // von part: "van", "de la"
	Last     []string
	First    []string
	Suffix   []string // jr part
}

// others is the literal that marks a truncated name list.
const others = "others"

// IsOthers reports whether n is the "and others" marker.
func (n Name) IsOthers() bool {
	return len(n.Last) == 1 && n.Last[0] == others && len(n.First)+len(n.Particle)+len(n.Suffix) == 0
}

// Equal reports whether n and m have the same parts.
func (n Name) Equal(m Name) bool {
	return slices.Equal(n.Particle, m.Particle) && slices.Equal(n.Last, m.Last) &&
		slices.Equal(n.First, m.First) && slices.Equal(n.Suffix, m.Suffix)
}

// Family is the particle and last name joined with spaces.
func (n Name) Family() string {
	return strings.Join(append(slices.Clone(n.Particle), n.Last...), " ")
}

// Given is the first name joined with spaces.
func (n Name) Given() string { return strings.Join(n.First, " ") }

// String formats n in the unambiguous "von Last, Jr, First" form, which
// ParseName reads back to an equal Name.
func (n Name) String() string {
	s := n.Family()
	if len(n.Suffix) > 0 {
		s += ", " + strings.Join(n.Suffix, " ")
		return s + ", " + n.Given()
	}
	if len(n.First) > 0 {
		s += ", " + n.Given()
	}
	return s
}

// ParseNames splits an author-style field on the word "and" at brace depth
// zero and parses each name. An empty value yields no names.
func ParseNames(raw string) ([]Name, error) {
	if !braceDepthOK(raw) {
		return nil, nameError("unbalanced braces")
	}
	ws := words(raw)
	if len(ws) == 0 {
		return nil, nil
	}
	groups := splitWordsOn(ws, "and")
	names := make([]Name, 0, len(groups))
	for i, g := range groups {
		if len(g) == 0 {
			return nil, nameError("empty name at position %d", i+1)
		}
		n, err := ParseName(strings.Join(g, " "))
		if err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, nil
}

// ParseName parses a single name in one of the forms
//
//	First von Last
//	von Last, First
//	von Last, Jr, First
func ParseName(raw string) (Name, error) {
	if !braceDepthOK(raw) {
		return Name{}, nameError("unbalanced braces in %q", raw)
	}
	parts := splitTopLevel(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	var n Name
	switch len(parts) {
	case 1:
		ws := words(parts[0])
		if len(ws) == 0 {
			return Name{}, nameError("empty name")
		}
		if len(ws) == 1 && ws[0] == others {
			return Name{Last: ws}, nil
		}
		n.First, n.Particle, n.Last = splitFirstVonLast(ws)
	case 2, 3:
		var ok bool
		if n.Particle, n.Last, ok = splitVonLast(words(parts[0])); !ok {
			return Name{}, nameError("missing last name in %q", raw)
		}
		n.First = words(parts[len(parts)-1])
		if len(parts) == 3 {
			n.Suffix = words(parts[1])
		}
	default:
		return Name{}, nameError("too many commas in %q", raw)
	}
	for _, part := range []*[]string{&n.Particle, &n.Last, &n.First, &n.Suffix} {
		if len(*part) == 0 {
			*part = nil
		}
	}
	return n, nil
}

// splitFirstVonLast handles the comma-free form. The von part runs from the
// first to the last lower-case word; the final word is always the last name.
func splitFirstVonLast(ws []string) (first, von, last []string) {
	n := len(ws)
	start := slices.IndexFunc(ws[:n-1], isLowerWord)
	if start < 0 {
		return ws[:n-1], nil, ws[n-1:]
	}
	end := start
	for i := start + 1; i < n-1; i++ {
		if isLowerWord(ws[i]) {
			end = i
		}
	}
	return ws[:start], ws[start : end+1], ws[end+1:]
}

// splitVonLast splits the part before the first comma. ok is false when no
// last name remains.
func splitVonLast(ws []string) (von, last []string, ok bool) {
	if len(ws) == 0 {
		return nil, nil, false
	}
	end := -1
	for i := 0; i < len(ws)-1; i++ {
		if !isLowerWord(ws[i]) {
			break
		}
		end = i
	}
	return ws[:end+1], ws[end+1:], true
}
