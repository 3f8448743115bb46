package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogLoads(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	titles, ok := c.RulerTitles().Entry(RaceDwarf)
	require.True(t, ok)
	assert.Contains(t, titles, "Thane")
	assert.Contains(t, titles, "High King")

	def, ok := c.RulerTitles().Default()
	require.True(t, ok)
	assert.NotEmpty(t, def)

	epithets, ok := c.RaceEpithets().Default()
	assert.True(t, ok)
	assert.Empty(t, epithets)
	assert.True(t, c.RaceEpithets().Optional())

	assert.InDelta(t, 0.4, c.RaceEpithetChance(), 1e-9)
}

func TestDefaultKeyIsNotAKey(t *testing.T) {
	c := MustDefault()
	for _, k := range c.RulerTitles().Keys() {
		assert.NotEqual(t, DefaultKey, string(k))
	}
	_, ok := c.RulerTitles().Entry(Race(DefaultKey))
	assert.False(t, ok)
}

func TestUnknownRaceHasNoEntry(t *testing.T) {
	c := MustDefault()
	sprite, err := ParseRace("sprite")
	require.NoError(t, err)

	_, ok := c.RulerTitles().Entry(sprite)
	assert.False(t, ok)
	assert.Equal(t, "ruler_titles/_default", c.RulerTitles().PoolID(sprite, true))
}

func TestDiseaseDeathIsCompound(t *testing.T) {
	c := MustDefault()

	templates, ok := c.Deaths().Entry(DeathDisease)
	require.True(t, ok)
	require.NotEmpty(t, templates)

	diseases, ok := c.Deaths().Aux(DeathDisease, false)
	require.True(t, ok)
	assert.Contains(t, diseases, "the Crimson Fever")

	for _, tmpl := range templates {
		assert.Contains(t, tmpl.Tokens(), TokenDisease, tmpl.ID)
	}

	_, ok = c.Deaths().Aux(DeathBattle, false)
	assert.False(t, ok)
}

func TestReignEventsGroupedByType(t *testing.T) {
	c := MustDefault()

	battles, ok := c.ReignEvents().Entry(EventBattleFought)
	require.True(t, ok)
	for _, tmpl := range battles {
		assert.Equal(t, EventBattleFought, tmpl.Event)
	}

	_, ok = c.ReignEvents().Entry(EventArtifactCreated)
	assert.False(t, ok)

	other, ok := c.ReignEvents().Default()
	require.True(t, ok)
	require.NotEmpty(t, other)
	for _, tmpl := range other {
		assert.Equal(t, EventOther, tmpl.Event)
	}

	all, _ := c.AllReignEvents().Default()
	assert.Equal(t, c.ReignEvents().Len(), len(all))
}

func TestRacesIncludesBuiltins(t *testing.T) {
	races := MustDefault().Races()
	for _, r := range BuiltinRaces() {
		assert.Contains(t, races, r)
	}
}

func TestStats(t *testing.T) {
	stats := MustDefault().Stats()
	byName := make(map[string]Count, len(stats))
	for _, s := range stats {
		byName[s.Category] = s
	}

	assert.Equal(t, 13, byName["ruler_titles"].Keys)
	assert.Positive(t, byName["death_diseases"].Entries)
	assert.Positive(t, byName["reign_event_templates"].Entries)
}

const minimalJSON = `{
  "common_epithets": ["the Bold"],
  "race_epithets": {"_default": []},
  "ruler_titles": {"dwarf": ["Thane"], "_default": ["King"]},
  "dynasty_patterns": {"_default": ["House of {}"]},
  "coronation_founding": {"_default": [{"title": "The Founding of {F}", "desc": "{N} founded {F} as its first {T}."}]},
  "coronation_succession": [{"title": "{N} crowned", "desc": "After {P}, {N} became {T} of {F}."}],
  "death_templates": {
    "Disease": {"templates": [{"title": "{N} falls to {D}", "desc": "{S} of {F} died of {D}."}], "diseases": ["the Grey Pox"]},
    "_default": [{"title": "{N} died", "desc": "{S} of {F} is gone."}]
  },
  "reign_event_templates": [
    {"event_type": "Other", "title": "A quiet year", "desc": "{RULER} ruled {FACTION} in peace."}
  ],
  "enemy_names": {"_default": ["barbarian"]},
  "faction_adjectives": ["distant"],
  "plague_names": ["Plague"],
  "beast_names": ["beast"],
  "succession_templates": [{"title": "Coronation of {N}", "desc": "After {DEAD}, {N} ruled {F}."}]
}`

func TestLoadJSON(t *testing.T) {
	c, err := Load(strings.NewReader(minimalJSON), FormatJSON)
	require.NoError(t, err)

	titles, ok := c.RulerTitles().Entry(RaceDwarf)
	require.True(t, ok)
	assert.Equal(t, []string{"Thane"}, titles)
	assert.InDelta(t, DefaultEpithetChance, c.RaceEpithetChance(), 1e-9)
}

func TestValidationCollectsEveryProblem(t *testing.T) {
	broken := strings.Replace(minimalJSON, `"_default": ["King"]`, `"elf": []`, 1)
	broken = strings.Replace(broken, `as its first {T}`, `as its first {Q}`, 1)
	broken = strings.Replace(broken, `"faction_adjectives": ["distant"]`, `"faction_adjectives": []`, 1)

	_, err := Load(strings.NewReader(broken), FormatJSON)
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("ruler_titles", DefaultKey), "missing default")
	assert.True(t, verr.Has("ruler_titles", "elf"), "empty keyed entry")
	assert.True(t, verr.Has("coronation_founding", DefaultKey), "unknown marker")
	assert.True(t, verr.Has("faction_adjectives", ""), "empty flat table")
	assert.GreaterOrEqual(t, len(verr.Problems), 4)
}

func TestValidationRejectsDisallowedToken(t *testing.T) {
	broken := strings.Replace(minimalJSON, `"{N} died"`, `"{N} died at {PLACE}"`, 1)

	_, err := Load(strings.NewReader(broken), FormatJSON)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("death_templates", DefaultKey))
	assert.Contains(t, err.Error(), "{PLACE}")
}

func TestValidationRejectsBadChanceAndUnknownCategory(t *testing.T) {
	withChance := strings.Replace(minimalJSON, `"common_epithets"`, `"race_epithet_chance": 1.5, "common_epithets"`, 1)
	_, err := Load(strings.NewReader(withChance), FormatJSON)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("race_epithet_chance", ""))

	withExtra := strings.Replace(minimalJSON, `"common_epithets"`, `"villains": [], "common_epithets"`, 1)
	_, err = Load(strings.NewReader(withExtra), FormatJSON)
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("villains", ""))
}

func TestValidationReportsMalformedCompoundWithOtherProblems(t *testing.T) {
	broken := strings.Replace(minimalJSON, `"ruler_titles": {"dwarf": ["Thane"], "_default": ["King"]}`, `"ruler_titles": {"dwarf": ["Thane"]}`, 1)
	broken = strings.Replace(broken, `"dynasty_patterns": {"_default": ["House of {}"]}`, `"dynasty_patterns": {}`, 1)
	broken = strings.Replace(broken, `"diseases": ["the Grey Pox"]`, `"diseases": ["the Grey Pox"], "weights": [1]`, 1)

	_, err := Load(strings.NewReader(broken), FormatJSON)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("death_templates", "Disease"), "malformed compound entry")
	assert.True(t, verr.Has("ruler_titles", DefaultKey), "ruler_titles default")
	assert.True(t, verr.Has("dynasty_patterns", DefaultKey), "dynasty_patterns default")
	assert.Contains(t, err.Error(), `"weights"`)
}

func TestValidationReportsMistypedCategoryWithOtherProblems(t *testing.T) {
	broken := strings.Replace(minimalJSON, `"ruler_titles": {"dwarf": ["Thane"], "_default": ["King"]}`, `"ruler_titles": ["King"]`, 1)
	broken = strings.Replace(broken, `"beast_names": ["beast"]`, `"beast_names": []`, 1)
	broken = strings.Replace(broken, `"common_epithets"`, `"villains": [], "common_epithets"`, 1)

	_, err := Load(strings.NewReader(broken), FormatJSON)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("ruler_titles", ""))
	assert.True(t, verr.Has("beast_names", ""))
	assert.True(t, verr.Has("villains", ""))
	assert.False(t, verr.Has("ruler_titles", DefaultKey), "no follow-on problems for an undecodable category")
}

func TestValidationRejectsUnknownKeys(t *testing.T) {
	broken := strings.Replace(minimalJSON, `"Disease": {`, `"Drowning": [], "Disease": {`, 1)
	broken = strings.Replace(broken, `"event_type": "Other"`, `"event_type": "Picnic"`, 1)

	_, err := Load(strings.NewReader(broken), FormatJSON)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("death_templates", "Drowning"))
	assert.True(t, verr.Has("reign_event_templates", ""))
}

const minimalYAML = `
common_epithets: [the Bold]
race_epithets: {_default: []}
race_epithet_chance: 0.25
ruler_titles:
  dwarf: [Thane]
  _default: [King]
dynasty_patterns: {_default: ["House of {}"]}
coronation_founding:
  _default:
    - title: "The Founding of {F}"
      desc: "{N} founded {F} as its first {T}."
coronation_succession:
  - title: "{N} crowned"
    desc: "After {P}, {N} became {T} of {F}."
death_templates:
  _default:
    - title: "{N} died"
      desc: "{S} of {F} is gone."
reign_event_templates:
  - event_type: Other
    title: A quiet year
    desc: "{RULER} ruled {FACTION} in peace."
enemy_names: {_default: [barbarian]}
faction_adjectives: [distant]
plague_names: [Plague]
beast_names: [beast]
succession_templates:
  - title: "Coronation of {N}"
    desc: "After {DEAD}, {N} ruled {F}."
`

func TestLoadYAML(t *testing.T) {
	c, err := Load(strings.NewReader(minimalYAML), FormatYAML)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, c.RaceEpithetChance(), 1e-9)

	founding, ok := c.Founding().Default()
	require.True(t, ok)
	require.Len(t, founding, 1)
	assert.Equal(t, []Token{TokenFaction, TokenSubject, TokenTitle}, founding[0].Tokens())
}

func TestLoadYAMLNonStringKeysAreProblems(t *testing.T) {
	broken := strings.Replace(minimalYAML, "  dwarf: [Thane]", "  1: [Thane]", 1)
	broken = strings.Replace(broken, "faction_adjectives: [distant]", "faction_adjectives: []", 1)

	_, err := Load(strings.NewReader(broken), FormatYAML)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("ruler_titles", ""))
	assert.True(t, verr.Has("faction_adjectives", ""))
}

func TestLoadDirOverlaysKeyedCategories(t *testing.T) {
	dir := t.TempDir()
	overlayTOML := `
faction_adjectives = ["sunken", "drowned"]

[ruler_titles]
dwarf = ["Mountain King"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "backstory.toml"), []byte(overlayTOML), 0o644))

	c, err := LoadDir(dir)
	require.NoError(t, err)

	dwarf, _ := c.RulerTitles().Entry(RaceDwarf)
	assert.Equal(t, []string{"Mountain King"}, dwarf)

	elf, ok := c.RulerTitles().Entry(RaceElf)
	require.True(t, ok, "other keys survive the overlay")
	assert.NotEmpty(t, elf)

	adjectives, _ := c.FactionAdjectives().Default()
	assert.Equal(t, []string{"sunken", "drowned"}, adjectives)
}

func TestLoadDirMissingDirectoryYieldsDefaults(t *testing.T) {
	c, err := LoadDir(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Equal(t, MustDefault().Stats(), c.Stats())
}

func TestLoadDirBadOverlayIsFatal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "backstory.json"), []byte(`{"beast_names": []}`), 0o644))

	_, err := LoadDir(dir)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("beast_names", ""))
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]Format{
		"a/backstory.json": FormatJSON,
		"b.YML":            FormatYAML,
		"c.yaml":           FormatYAML,
		"d.toml":           FormatTOML,
	} {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}
	_, err := FormatFromPath("catalog.ini")
	assert.Error(t, err)
}
