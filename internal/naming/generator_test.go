package naming

import (
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/talgya/backstory/internal/catalog"
	"github.com/talgya/backstory/internal/entropy"
)

func TestPersonalNames(t *testing.T) {
	for _, race := range catalog.BuiltinRaces() {
		g := New(entropy.NewSeeded(42), race)
		for i := 0; i < 50; i++ {
			name := g.Personal()
			assert.GreaterOrEqual(t, len(name), 2, race)
			r, _ := utf8.DecodeRuneInString(name)
			assert.True(t, unicode.IsUpper(r), "%s: %q", race, name)
		}
	}
}

func TestNamesAreVaried(t *testing.T) {
	g := New(entropy.NewSeeded(99), catalog.RaceDwarf)
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		seen[g.Personal()] = true
	}
	assert.GreaterOrEqual(t, len(seen), 10)
}

func TestFlowingNamesRunLonger(t *testing.T) {
	dwarf := New(entropy.NewSeeded(1), catalog.RaceDwarf)
	elf := New(entropy.NewSeeded(1), catalog.RaceElf)
	var d, e int
	for i := 0; i < 200; i++ {
		d += len(dwarf.Personal())
		e += len(elf.Personal())
	}
	assert.Greater(t, e, d)
}

func TestRealmName(t *testing.T) {
	g := New(entropy.NewSeeded(3), catalog.RaceDwarf)
	name := g.Realm()
	assert.True(t, strings.HasPrefix(name, "The "), name)
	assert.True(t, strings.HasSuffix(name, " Dwarves"), name)
}

func TestPluralCustomRace(t *testing.T) {
	assert.Equal(t, "Elves", Plural(catalog.RaceElf))
	assert.Equal(t, "Spritefolk", Plural("sprite"))
	assert.Equal(t, Compound, ArchetypeFor("sprite"))
}

func TestPlaceAndArtifact(t *testing.T) {
	g := New(entropy.NewSeeded(5), catalog.RaceOrc)
	for i := 0; i < 50; i++ {
		assert.NotEmpty(t, g.Place())
		a := g.Artifact()
		assert.NotEmpty(t, a)
		assert.NotContains(t, a, "The the")
	}
}

func TestDeterministic(t *testing.T) {
	a := New(entropy.NewSeeded(8), catalog.RaceFey)
	b := New(entropy.NewSeeded(8), catalog.RaceFey)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Personal(), b.Personal())
	}
}
