package bibdoc

import (
	"iter"
	"slices"
)

// Bibliography is an immutable set of entries keyed by citation key. It is
// safe for concurrent readers once Parse has returned.
type Bibliography struct {
	name      string
	entries   []*Entry
	index     map[string]*Entry
	macros    *MacroTable
	preambles []string
}

func newBibliography(macros *MacroTable) *Bibliography {
	return &Bibliography{index: make(map[string]*Entry), macros: macros}
}

func (b *Bibliography) add(e *Entry) {
	e.bib = b
	b.index[e.Key] = e
	b.entries = append(b.entries, e)
}

// Name is the file the bibliography was read from, if any.
func (b *Bibliography) Name() string { return b.name }

// Get returns the entry with the given citation key.
func (b *Bibliography) Get(key string) (*Entry, bool) {
	e, ok := b.index[key]
	return e, ok
}

// Len is the number of entries.
func (b *Bibliography) Len() int { return len(b.entries) }

// Entries returns the entries in source order. The slice is a copy.
func (b *Bibliography) Entries() []*Entry {
	return slices.Clone(b.entries)
}

// All iterates the entries in source order. Every call replays from the first
// entry.
func (b *Bibliography) All() iter.Seq[*Entry] {
	return func(yield func(*Entry) bool) {
		for _, e := range b.entries {
			if !yield(e) {
				return
			}
		}
	}
}

// Keys returns the citation keys in source order.
func (b *Bibliography) Keys() []string {
	keys := make([]string, len(b.entries))
	for i, e := range b.entries {
		keys[i] = e.Key
	}
	return keys
}

// Preambles returns the resolved @preamble contents in source order.
func (b *Bibliography) Preambles() []string {
	return slices.Clone(b.preambles)
}

// Macro returns the value of an @string macro (or a built-in month macro) as
// it stood at the end of the source.
func (b *Bibliography) Macro(name string) (string, bool) {
	return b.macros.Lookup(name)
}

// MacroNames lists every macro known to the document.
func (b *Bibliography) MacroNames() []string {
	return b.macros.Names()
}
