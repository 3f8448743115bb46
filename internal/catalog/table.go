package catalog

import (
	"fmt"
	"sort"
)

// Template is a title/description pair. Both halves are rendered from one
// context so that shared tokens come out identical.
type Template struct {
	ID    string
	Title Text
	Desc  Text
	Event EventType // Reign event templates only
}

// Tokens returns the distinct tokens referenced by title and desc, title first.
func (t Template) Tokens() []Token {
	out := t.Title.Tokens()
	seen := make(map[Token]bool, len(out))
	for _, tok := range out {
		seen[tok] = true
	}
	for _, tok := range t.Desc.Tokens() {
		if !seen[tok] {
			seen[tok] = true
			out = append(out, tok)
		}
	}
	return out
}

// Table maps category keys to ordered candidate sequences. The default
// sequence is stored apart from the keyed entries.
type Table[K ~string, T any] struct {
	name       string
	entries    map[K][]T
	def        []T
	hasDefault bool
	optional   bool // An empty default is a valid "nothing applies" outcome
}

// NewTable builds a table. Tables are immutable once built; the slices passed
// in are owned by the table.
func NewTable[K ~string, T any](name string, entries map[K][]T, def []T, hasDefault bool) *Table[K, T] {
	if entries == nil {
		entries = make(map[K][]T)
	}
	return &Table[K, T]{name: name, entries: entries, def: def, hasDefault: hasDefault}
}

// NewFlatTable builds a table holding only a default sequence.
func NewFlatTable[T any](name string, items []T) *Table[NoKey, T] {
	return NewTable[NoKey, T](name, nil, items, true)
}

// AllowEmptyDefault marks the table's default as optional.
func (t *Table[K, T]) AllowEmptyDefault() *Table[K, T] {
	t.optional = true
	return t
}

// Name returns the catalog category name of the table.
func (t *Table[K, T]) Name() string { return t.name }

// Entry returns the sequence stored under key.
func (t *Table[K, T]) Entry(key K) ([]T, bool) {
	items, ok := t.entries[key]
	return items, ok
}

// Default returns the fallback sequence and whether one was defined.
func (t *Table[K, T]) Default() ([]T, bool) {
	return t.def, t.hasDefault
}

// Optional reports whether an empty default is permitted.
func (t *Table[K, T]) Optional() bool { return t.optional }

// Keys returns the table's keys in sorted order.
func (t *Table[K, T]) Keys() []K {
	keys := make([]K, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Len returns the number of items across every key and the default.
func (t *Table[K, T]) Len() int {
	n := len(t.def)
	for _, items := range t.entries {
		n += len(items)
	}
	return n
}

// PoolID names the candidate sequence for a key ("ruler_titles/dwarf").
func (t *Table[K, T]) PoolID(key K, fallback bool) string {
	if fallback {
		return t.name + "/" + DefaultKey
	}
	if key == "" {
		return t.name
	}
	return fmt.Sprintf("%s/%s", t.name, string(key))
}

// CompoundTable pairs a template table with auxiliary name pools stored under
// some of its keys. A key with an auxiliary pool resolves through two draws.
type CompoundTable[K ~string] struct {
	*Table[K, Template]
	aux    map[K][]string
	defAux []string
}

// NewCompoundTable wraps templates with per-key auxiliary pools. defAux is the
// auxiliary pool of the default sequence, if the default is compound.
func NewCompoundTable[K ~string](templates *Table[K, Template], aux map[K][]string, defAux []string) *CompoundTable[K] {
	if aux == nil {
		aux = make(map[K][]string)
	}
	return &CompoundTable[K]{Table: templates, aux: aux, defAux: defAux}
}

// Aux returns the auxiliary pool for key, or for the default when fallback is set.
func (c *CompoundTable[K]) Aux(key K, fallback bool) ([]string, bool) {
	if fallback {
		return c.defAux, c.defAux != nil
	}
	pool, ok := c.aux[key]
	return pool, ok
}
