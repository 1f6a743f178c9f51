package bibdoc

import "strings"

// ParseList splits raw on sep at brace depth zero, trims each item and drops
// empty ones. Escaped braces and separators are text. It never fails: a stray
// brace only widens the item it sits in.
func ParseList(raw, sep string) []string {
	var items []string
	for _, item := range splitTopLevel(raw, sep) {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// ParseLiteralList splits an "and"-separated literal list such as a
// publisher or location field. Items are whitespace-normalised.
func ParseLiteralList(raw string) []string {
	var items []string
	for _, group := range splitWordsOn(words(raw), "and") {
		if len(group) > 0 {
			items = append(items, strings.Join(group, " "))
		}
	}
	return items
}

// words splits s on whitespace and ~ at brace depth zero. Brace groups stay
// inside the word that contains them; escaped characters never split.
func words(s string) []string {
	var out []string
	start := -1
	walkBraces(s, func(i, depth int) bool {
		if c := s[i]; depth == 0 && (isSpace(c) || c == '~') {
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
		} else if start < 0 {
			start = i
		}
		return true
	})
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}

// splitWordsOn splits a word list at every word equal (case-insensitively)
// to sep. Empty groups are kept so callers can reject them.
func splitWordsOn(ws []string, sep string) [][]string {
	groups := [][]string{nil}
	for _, w := range ws {
		if strings.EqualFold(w, sep) {
			groups = append(groups, nil)
			continue
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], w)
	}
	return groups
}
