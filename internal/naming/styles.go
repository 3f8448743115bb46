// Package naming produces culture-consistent personal, place, artifact and
// realm names from per-race syllable styles.
package naming

import "github.com/talgya/backstory/internal/catalog"

// Archetype is a family of naming sounds.
type Archetype uint8

const (
	Harsh Archetype = iota
	Flowing
	Compound
	Guttural
	Mystical
	Sibilant
	Ancient
)

// Style holds the phonetic pieces a culture builds names from.
type Style struct {
	Onsets        []string
	Codas         []string
	Vowels        []string
	MinSyllables  int
	MaxSyllables  int
	Apostrophes   bool
	Hyphens       bool
	PlacePrefixes []string
	PlaceSuffixes []string
	Epithets      []string
}

var styles = map[Archetype]Style{
	Harsh: {
		Onsets:        []string{"k", "kr", "d", "dr", "g", "gr", "th", "b", "br", "n", "m", "t", "tr", "v", "st", "sk"},
		Codas:         []string{"k", "rk", "th", "n", "m", "r", "rd", "ng", "lk", "ld", "x"},
		Vowels:        []string{"a", "o", "u", "i", "e", "ur", "or"},
		MinSyllables:  1,
		MaxSyllables:  3,
		Hyphens:       true,
		PlacePrefixes: []string{"Iron", "Black", "Bitter", "Stone", "Dark", "Deep"},
		PlaceSuffixes: []string{"hold", "forge", "delve", "helm", "guard", "hall", "gate"},
		Epithets:      []string{"the Unyielding", "Ironhand", "Stoneheart", "the Grim", "Hammerfist", "the Merciless"},
	},
	Flowing: {
		Onsets:        []string{"l", "th", "s", "n", "r", "f", "v", "el", "al", "gl", "br", "m", "c", "t"},
		Codas:         []string{"n", "l", "r", "s", "th", "nd", "ll", "rn", "wen", "iel"},
		Vowels:        []string{"ae", "a", "e", "i", "o", "ei", "ia", "io", "ea"},
		MinSyllables:  2,
		MaxSyllables:  4,
		PlacePrefixes: []string{"Sil", "Lor", "Thal", "Cel", "Ael", "Gal"},
		PlaceSuffixes: []string{"wen", "oth", "dor", "ion", "iel", "ost", "anor"},
		Epithets:      []string{"the Radiant", "Starweaver", "the Evergreen", "Dawnbringer", "the Ageless", "Moonwhisper"},
	},
	Compound: {
		Onsets:        []string{"b", "d", "g", "h", "l", "m", "n", "r", "s", "t", "w", "j", "f", "p", "c"},
		Codas:         []string{"n", "d", "r", "l", "s", "t", "ld", "rd", "nd", "ck"},
		Vowels:        []string{"a", "e", "i", "o", "u", "ay", "ow"},
		MinSyllables:  1,
		MaxSyllables:  3,
		PlacePrefixes: []string{"North", "South", "East", "West", "Red", "White", "Green", "High", "Low", "Old"},
		PlaceSuffixes: []string{"ton", "burg", "dale", "ford", "wick", "field", "bridge", "stead", "haven", "mere"},
		Epithets:      []string{"the Bold", "the Wise", "the Brave", "the Just", "the Conqueror", "the Peacemaker"},
	},
	Guttural: {
		Onsets:        []string{"gr", "kr", "g", "z", "b", "dr", "sk", "gh", "v", "r", "hr", "sn", "gn"},
		Codas:         []string{"k", "g", "gh", "rk", "zz", "sh", "rg", "gk", "kh", "x"},
		Vowels:        []string{"a", "u", "o", "aa", "uu"},
		MinSyllables:  1,
		MaxSyllables:  3,
		PlacePrefixes: []string{"Blood", "Skull", "War", "Bone", "Rot", "Ash"},
		PlaceSuffixes: []string{"maw", "pit", "gore", "fang", "crush", "break"},
		Epithets:      []string{"the Destroyer", "Skullcrusher", "Bonegnawer", "the Savage", "Blooddrinker", "the Dread"},
	},
	Mystical: {
		Onsets:        []string{"l", "n", "s", "w", "f", "th", "sh", "wh", "ph", "m", "r", "v"},
		Codas:         []string{"ss", "th", "n", "l", "r", "ll", "nn", "sh"},
		Vowels:        []string{"i", "y", "e", "a", "ie", "ea", "ai"},
		MinSyllables:  2,
		MaxSyllables:  4,
		Apostrophes:   true,
		PlacePrefixes: []string{"Whisper", "Mist", "Dream", "Shimmer", "Moon", "Star"},
		PlaceSuffixes: []string{"wind", "vale", "mere", "glade", "song", "light"},
		Epithets:      []string{"the Dreaming", "Mistwalker", "the Fey-touched", "Glamourweave", "the Changeling", "Starborn"},
	},
	Sibilant: {
		Onsets:        []string{"ss", "s", "z", "x", "sh", "th", "ts", "sk", "sl", "zh", "ks"},
		Codas:         []string{"ss", "th", "x", "k", "sh", "z", "sk", "ks"},
		Vowels:        []string{"i", "a", "e", "o", "ai", "ei"},
		MinSyllables:  2,
		MaxSyllables:  3,
		Apostrophes:   true,
		PlacePrefixes: []string{"Scale", "Fang", "Venom", "Sand", "Sun", "Salt"},
		PlaceSuffixes: []string{"spire", "nest", "coil", "den", "rock", "marsh"},
		Epithets:      []string{"the Venomous", "Scaleborn", "the Cold-blooded", "Sandstrider", "Sunbasker", "the Scaled"},
	},
	Ancient: {
		Onsets:        []string{"kr", "b", "g", "th", "m", "d", "n", "r", "st", "br", "tr"},
		Codas:         []string{"rn", "rd", "th", "m", "n", "r", "ld", "nd", "lm"},
		Vowels:        []string{"o", "u", "a", "au", "ou", "oo"},
		MinSyllables:  2,
		MaxSyllables:  3,
		Hyphens:       true,
		PlacePrefixes: []string{"Grand", "Titan", "Elder", "Basalt", "Thunder", "Crown"},
		PlaceSuffixes: []string{"mount", "spire", "throne", "cairn", "monolith", "keep"},
		Epithets:      []string{"the Eternal", "Worldshaker", "the Colossal", "Mountainborn", "the Undying", "Stormfather"},
	},
}

var raceArchetypes = map[catalog.Race]Archetype{
	catalog.RaceHuman:     Compound,
	catalog.RaceHalfling:  Compound,
	catalog.RaceDwarf:     Harsh,
	catalog.RaceConstruct: Harsh,
	catalog.RaceElf:       Flowing,
	catalog.RaceOrc:       Guttural,
	catalog.RaceGoblin:    Guttural,
	catalog.RaceBeastfolk: Guttural,
	catalog.RaceFey:       Mystical,
	catalog.RaceElemental: Mystical,
	catalog.RaceReptilian: Sibilant,
	catalog.RaceGiant:     Ancient,
	catalog.RaceUndead:    Ancient,
}

var racePlurals = map[catalog.Race]string{
	catalog.RaceHuman:     "Men",
	catalog.RaceDwarf:     "Dwarves",
	catalog.RaceElf:       "Elves",
	catalog.RaceOrc:       "Orcs",
	catalog.RaceGoblin:    "Goblins",
	catalog.RaceHalfling:  "Halflings",
	catalog.RaceReptilian: "Scalefolk",
	catalog.RaceFey:       "Fey",
	catalog.RaceUndead:    "Dead",
	catalog.RaceElemental: "Elementals",
	catalog.RaceBeastfolk: "Beastfolk",
	catalog.RaceGiant:     "Giants",
	catalog.RaceConstruct: "Constructs",
}

// ArchetypeFor returns the naming archetype of a race. Unknown races use
// Compound.
func ArchetypeFor(race catalog.Race) Archetype {
	if a, ok := raceArchetypes[race]; ok {
		return a
	}
	return Compound
}

// StyleFor returns the naming style of a race.
func StyleFor(race catalog.Race) Style {
	return styles[ArchetypeFor(race)]
}
