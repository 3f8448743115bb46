package naming

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/talgya/backstory/internal/catalog"
	"github.com/talgya/backstory/internal/entropy"
)

var artifactSuffixes = []string{"Wrath", "Bane", "Fury", "Edge", "Light", "Shadow", "Song", "Crown", "Heart", "Fang"}

// Generator draws names from a style. It is as safe for concurrent use as its
// source.
type Generator struct {
	src   entropy.Source
	style Style
	race  catalog.Race
}

// New creates a generator for a race's naming style.
func New(src entropy.Source, race catalog.Race) *Generator {
	return &Generator{src: src, style: StyleFor(race), race: race}
}

func (g *Generator) pick(items []string) string {
	return items[g.src.Intn(len(items))]
}

func (g *Generator) chance(p float64) bool {
	return g.src.Float64() < p
}

// Personal returns a given name such as "Krath" or "Aelindra".
func (g *Generator) Personal() string {
	s := g.style
	syllables := s.MinSyllables + g.src.Intn(s.MaxSyllables-s.MinSyllables+1)
	var b strings.Builder

	for i := 0; i < syllables; i++ {
		if i > 0 {
			roll := g.src.Float64()
			switch {
			case s.Apostrophes && roll < 0.15:
				b.WriteByte('\'')
			case s.Hyphens && roll < 0.10:
				b.WriteByte('-')
			}
		}

		// Some names open on a vowel.
		if i == 0 && g.chance(0.2) {
			b.WriteString(g.pick(s.Vowels))
			if g.chance(0.6) {
				b.WriteString(g.pick(s.Codas))
			}
			continue
		}

		b.WriteString(g.pick(s.Onsets))
		b.WriteString(g.pick(s.Vowels))
		codaChance := 0.4
		if i == syllables-1 {
			codaChance = 0.7
		}
		if g.chance(codaChance) {
			b.WriteString(g.pick(s.Codas))
		}
	}

	name := b.String()
	if len(name) < 2 {
		name += "a"
	}
	return capitalize(name)
}

// Place returns a place name such as "Ironhold" or "Thalwen".
func (g *Generator) Place() string {
	s := g.style
	if g.chance(0.6) {
		return g.pick(s.PlacePrefixes) + g.pick(s.PlaceSuffixes)
	}
	base := g.Personal()
	if g.chance(0.5) {
		return base + g.pick(s.PlaceSuffixes)
	}
	return base
}

// Epithet returns a cultural epithet such as "the Grim".
func (g *Generator) Epithet() string {
	return g.pick(g.style.Epithets)
}

// Artifact returns an artifact name such as "Grimjaw's Wrath".
func (g *Generator) Artifact() string {
	roll := g.src.Float64()
	switch {
	case roll < 0.4:
		return g.Place()
	case roll < 0.7:
		ep := strings.TrimPrefix(g.Epithet(), "the ")
		return "The " + capitalize(ep)
	default:
		return g.Personal() + "'s " + g.pick(artifactSuffixes)
	}
}

// Realm returns a faction name such as "The Irondelve Dwarves".
func (g *Generator) Realm() string {
	return "The " + g.Place() + " " + Plural(g.race)
}

// Plural returns the collective name of a race's people.
func Plural(race catalog.Race) string {
	if p, ok := racePlurals[race]; ok {
		return p
	}
	return cases.Title(language.Und).String(strings.ReplaceAll(race.String(), "_", " ")) + "folk"
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return cases.Upper(language.Und).String(string(r)) + s[size:]
}
