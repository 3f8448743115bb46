package catalog

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed defaults/backstory.json
var defaultsFS embed.FS

const defaultsPath = "defaults/backstory.json"

// DefaultEpithetChance applies when a catalog omits race_epithet_chance.
const DefaultEpithetChance = 0.4

// Format is a catalog file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported catalog file extension %q", filepath.Ext(path))
	}
}

// Categories that are keyed by race or cause. Overlays merge these per key;
// every other category is replaced whole.
var keyedCategories = map[string]bool{
	"race_epithets":       true,
	"ruler_titles":        true,
	"dynasty_patterns":    true,
	"coronation_founding": true,
	"death_templates":     true,
	"enemy_names":         true,
}

// knownCategories are the top-level keys a catalog file may hold.
var knownCategories = map[string]bool{
	"common_epithets":       true,
	"race_epithets":         true,
	"race_epithet_chance":   true,
	"ruler_titles":          true,
	"dynasty_patterns":      true,
	"coronation_founding":   true,
	"coronation_succession": true,
	"death_templates":       true,
	"reign_event_templates": true,
	"enemy_names":           true,
	"faction_adjectives":    true,
	"plague_names":          true,
	"beast_names":           true,
	"succession_templates":  true,
}

// overlayNames are the file names LoadDir looks for, in order of application.
var overlayNames = []string{"backstory.json", "backstory.yaml", "backstory.yml", "backstory.toml"}

type document map[string]json.RawMessage

type rawTemplate struct {
	EventType string `json:"event_type,omitempty"`
	Title     string `json:"title"`
	Desc      string `json:"desc"`
}

// rawDeathEntry is either a plain template list or {templates, diseases}.
type rawDeathEntry struct {
	Templates []rawTemplate
	Diseases  []string
	Compound  bool
}

func parseDeathEntry(data json.RawMessage) (rawDeathEntry, error) {
	var e rawDeathEntry
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return e, errors.New("empty death entry")
	}
	switch trimmed[0] {
	case '[':
		if err := decodeStrict(trimmed, &e.Templates); err != nil {
			return e, fmt.Errorf("death entry: %w", err)
		}
		return e, nil
	case '{':
		var obj struct {
			Templates []rawTemplate `json:"templates"`
			Diseases  []string      `json:"diseases"`
		}
		if err := decodeStrict(trimmed, &obj); err != nil {
			return e, fmt.Errorf("compound death entry: %w", err)
		}
		e.Templates = obj.Templates
		e.Diseases = obj.Diseases
		e.Compound = true
		return e, nil
	default:
		return e, fmt.Errorf("death entry must be a list or an object, got %s", trimmed[:1])
	}
}

// rawCatalog holds each decoded category before validation.
type rawCatalog struct {
	CommonEpithets       []string
	RaceEpithets         map[string][]string
	RaceEpithetChance    *float64
	RulerTitles          map[string][]string
	DynastyPatterns      map[string][]string
	CoronationFounding   map[string][]rawTemplate
	CoronationSuccession []rawTemplate
	DeathTemplates       map[string]json.RawMessage
	ReignEventTemplates  []rawTemplate
	EnemyNames           map[string][]string
	FactionAdjectives    []string
	PlagueNames          []string
	BeastNames           []string
	SuccessionTemplates  []rawTemplate
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	doc, err := defaultDocument()
	if err != nil {
		return nil, err
	}
	return fromDocument(doc, nil)
}

// MustDefault is Default for callers that treat a broken embedded catalog as
// a programming error.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Load decodes and validates a catalog.
func Load(r io.Reader, format Format) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	doc, problems, err := decodeDocument(data, format)
	if err != nil {
		return nil, err
	}
	return fromDocument(doc, problems)
}

// LoadFile loads a catalog file, inferring its format from the extension.
func LoadFile(path string) (*Catalog, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	c, err := Load(f, format)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return c, nil
}

// LoadDir loads the embedded defaults and overlays any backstory.* files found
// in dir. Keyed categories merge per key; other categories are replaced.
// A missing directory yields the defaults.
func LoadDir(dir string) (*Catalog, error) {
	doc, err := defaultDocument()
	if err != nil {
		return nil, err
	}

	var problems []Problem
	for _, name := range overlayNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read overlay %s: %w", path, err)
		}
		format, err := FormatFromPath(path)
		if err != nil {
			return nil, err
		}
		over, bad, err := decodeDocument(data, format)
		if err != nil {
			return nil, fmt.Errorf("overlay %s: %w", path, err)
		}
		problems = append(problems, bad...)
		doc = overlay(doc, over)
		slog.Info("catalog overlay applied", "path", path, "categories", len(over))
	}

	return fromDocument(doc, problems)
}

func defaultDocument() (document, error) {
	data, err := defaultsFS.ReadFile(defaultsPath)
	if err != nil {
		return nil, fmt.Errorf("read embedded catalog: %w", err)
	}
	doc, problems, err := decodeDocument(data, FormatJSON)
	if err != nil {
		return nil, err
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	return doc, nil
}

// decodeDocument splits a catalog file into its top-level categories. The
// error is for a file that cannot be parsed at all; categories that cannot be
// carried over are returned as problems.
func decodeDocument(data []byte, format Format) (document, []Problem, error) {
	switch format {
	case FormatJSON:
		var doc document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, nil, fmt.Errorf("decode json catalog: %w", err)
		}
		return doc, nil, nil
	case FormatYAML:
		var tree map[string]any
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, nil, fmt.Errorf("decode yaml catalog: %w", err)
		}
		doc, problems := documentFromTree(tree)
		return doc, problems, nil
	case FormatTOML:
		var tree map[string]any
		if err := toml.Unmarshal(data, &tree); err != nil {
			return nil, nil, fmt.Errorf("decode toml catalog: %w", err)
		}
		doc, problems := documentFromTree(tree)
		return doc, problems, nil
	default:
		return nil, nil, fmt.Errorf("unsupported catalog format %q", format)
	}
}

func documentFromTree(tree map[string]any) (document, []Problem) {
	doc := make(document, len(tree))
	var problems []Problem
	for _, key := range sortedKeys(tree) {
		b, err := json.Marshal(tree[key])
		if err != nil {
			// YAML mappings with non-string keys land here.
			problems = append(problems, Problem{Category: key, Message: fmt.Sprintf("cannot decode category: %v", err)})
			continue
		}
		doc[key] = b
	}
	return doc, problems
}

// overlay merges keyed categories per key and replaces the rest. A category
// that is not an object on either side is replaced whole and left for
// validation to report.
func overlay(base, over document) document {
	out := make(document, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}

	for category, value := range over {
		var entries map[string]json.RawMessage
		if !keyedCategories[category] || json.Unmarshal(value, &entries) != nil {
			out[category] = value
			continue
		}

		merged := make(map[string]json.RawMessage)
		if existing, ok := out[category]; ok && json.Unmarshal(existing, &merged) != nil {
			merged = make(map[string]json.RawMessage)
		}
		for key, entry := range entries {
			merged[key] = entry
		}
		b, err := json.Marshal(merged)
		if err != nil {
			out[category] = value
			continue
		}
		out[category] = b
	}

	return out
}

func decodeStrict(data []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// decodeCategory decodes one top-level category. A category that does not
// decode is reported once and treated as absent.
func decodeCategory[T any](v *validator, doc document, name string) T {
	var out T
	data, ok := doc[name]
	if !ok {
		return out
	}
	if err := decodeStrict(data, &out); err != nil {
		v.fail(name, "cannot decode category: %v", err)
		var zero T
		return zero
	}
	return out
}

// fromDocument decodes every category it can, then validates the result.
// Problems found while decoding the file are reported along with the rest.
func fromDocument(doc document, problems []Problem) (*Catalog, error) {
	v := newValidator(problems)
	for _, name := range sortedKeys(doc) {
		if !knownCategories[name] {
			v.fail(name, "unknown category")
		}
	}

	raw := rawCatalog{
		CommonEpithets:       decodeCategory[[]string](v, doc, "common_epithets"),
		RaceEpithets:         decodeCategory[map[string][]string](v, doc, "race_epithets"),
		RaceEpithetChance:    decodeCategory[*float64](v, doc, "race_epithet_chance"),
		RulerTitles:          decodeCategory[map[string][]string](v, doc, "ruler_titles"),
		DynastyPatterns:      decodeCategory[map[string][]string](v, doc, "dynasty_patterns"),
		CoronationFounding:   decodeCategory[map[string][]rawTemplate](v, doc, "coronation_founding"),
		CoronationSuccession: decodeCategory[[]rawTemplate](v, doc, "coronation_succession"),
		DeathTemplates:       decodeCategory[map[string]json.RawMessage](v, doc, "death_templates"),
		ReignEventTemplates:  decodeCategory[[]rawTemplate](v, doc, "reign_event_templates"),
		EnemyNames:           decodeCategory[map[string][]string](v, doc, "enemy_names"),
		FactionAdjectives:    decodeCategory[[]string](v, doc, "faction_adjectives"),
		PlagueNames:          decodeCategory[[]string](v, doc, "plague_names"),
		BeastNames:           decodeCategory[[]string](v, doc, "beast_names"),
		SuccessionTemplates:  decodeCategory[[]rawTemplate](v, doc, "succession_templates"),
	}
	return build(v, raw)
}

func build(v *validator, raw rawCatalog) (*Catalog, error) {
	c := &Catalog{}

	c.commonEpithets = NewFlatTable("common_epithets", v.plain("common_epithets", "", raw.CommonEpithets, true))
	c.raceEpithets = buildRaceTable(v, "race_epithets", raw.RaceEpithets, true,
		func(key string, items []string, required bool) []string {
			return v.plain("race_epithets", key, items, required)
		})

	c.raceEpithetChance = DefaultEpithetChance
	if raw.RaceEpithetChance != nil {
		chance := *raw.RaceEpithetChance
		if math.IsNaN(chance) || chance < 0 || chance > 1 {
			v.add("race_epithet_chance", "", "must lie in [0, 1], got %v", chance)
		}
		c.raceEpithetChance = chance
	}

	c.rulerTitles = buildRaceTable(v, "ruler_titles", raw.RulerTitles, false,
		func(key string, items []string, required bool) []string {
			return v.plain("ruler_titles", key, items, required)
		})
	c.dynastyPatterns = buildRaceTable(v, "dynasty_patterns", raw.DynastyPatterns, false,
		func(key string, items []string, required bool) []Text {
			return v.patterns("dynasty_patterns", key, items, dynastyTokens, required)
		})
	c.founding = buildRaceTable(v, "coronation_founding", raw.CoronationFounding, false,
		func(key string, items []rawTemplate, required bool) []Template {
			return v.templates("coronation_founding", key, items, foundingTokens, required)
		})
	c.enemyNames = buildRaceTable(v, "enemy_names", raw.EnemyNames, false,
		func(key string, items []string, required bool) []string {
			return v.plain("enemy_names", key, items, required)
		})

	c.coronationSuccession = NewFlatTable("coronation_succession",
		v.templates("coronation_succession", "", raw.CoronationSuccession, coronationTokens, true))
	c.successions = NewFlatTable("succession_templates",
		v.templates("succession_templates", "", raw.SuccessionTemplates, successionTokens, true))
	c.factionAdjectives = NewFlatTable("faction_adjectives", v.plain("faction_adjectives", "", raw.FactionAdjectives, true))
	c.plagueNames = NewFlatTable("plague_names", v.plain("plague_names", "", raw.PlagueNames, true))
	c.beastNames = NewFlatTable("beast_names", v.plain("beast_names", "", raw.BeastNames, true))

	c.deaths = buildDeaths(v, raw.DeathTemplates)
	c.reignEvents, c.allReignEvents = buildReignEvents(v, raw.ReignEventTemplates)

	c.races = collectRaces(c)

	if err := v.err(); err != nil {
		return nil, err
	}
	return c, nil
}

// buildRaceTable converts a race-keyed category. The default must be present;
// it may be empty only when optionalDefault is set.
func buildRaceTable[R any, T any](v *validator, category string, m map[string][]R, optionalDefault bool,
	convert func(key string, items []R, required bool) []T) *Table[Race, T] {
	if m == nil {
		v.add(category, "", "category is missing")
		return NewTable[Race, T](category, nil, nil, false)
	}

	entries := make(map[Race][]T, len(m))
	var def []T
	hasDefault := false

	for _, key := range sortedKeys(m) {
		items := m[key]
		if key == DefaultKey {
			hasDefault = true
			def = convert(key, items, !optionalDefault)
			continue
		}
		race, err := ParseRace(key)
		if err != nil {
			v.add(category, key, "malformed race key")
			continue
		}
		entries[race] = convert(key, items, true)
	}
	if !hasDefault {
		v.add(category, DefaultKey, "missing %s entry", DefaultKey)
	}

	t := NewTable(category, entries, def, hasDefault)
	if optionalDefault {
		t.AllowEmptyDefault()
	}
	return t
}

func buildDeaths(v *validator, m map[string]json.RawMessage) *CompoundTable[DeathCause] {
	const category = "death_templates"
	if m == nil {
		v.add(category, "", "category is missing")
		return NewCompoundTable(NewTable[DeathCause, Template](category, nil, nil, false), nil, nil)
	}

	entries := make(map[DeathCause][]Template, len(m))
	aux := make(map[DeathCause][]string)
	var def []Template
	var defAux []string
	hasDefault := false

	for _, key := range sortedKeys(m) {
		entry, err := parseDeathEntry(m[key])
		if err != nil {
			v.add(category, key, "%v", err)
			if key == DefaultKey {
				hasDefault = true
			}
			continue
		}
		allowed := deathTokens
		if entry.Compound {
			allowed = diseaseDeathTokens
			if len(entry.Templates) == 0 {
				v.add(category, key, "compound entry has no templates")
			}
			if len(entry.Diseases) == 0 {
				v.add(category, key, "compound entry has no diseases")
			}
			v.plain(category, key, entry.Diseases, false)
		}
		templates := v.templates(category, key, entry.Templates, allowed, !entry.Compound)

		if key == DefaultKey {
			hasDefault = true
			def = templates
			if entry.Compound {
				defAux = entry.Diseases
			}
			continue
		}
		cause, err := ParseDeathCause(key)
		if err != nil {
			v.add(category, key, "unknown death cause")
			continue
		}
		entries[cause] = templates
		if entry.Compound {
			aux[cause] = entry.Diseases
		}
	}
	if !hasDefault {
		v.add(category, DefaultKey, "missing %s entry", DefaultKey)
	}

	return NewCompoundTable(NewTable(category, entries, def, hasDefault), aux, defAux)
}

// buildReignEvents groups reign events by type. The fallback for a type with
// no templates is the Other group.
func buildReignEvents(v *validator, raws []rawTemplate) (*Table[EventType, Template], *Table[NoKey, Template]) {
	const category = "reign_event_templates"
	all := v.templates(category, "", raws, reignTokens, true)

	byType := make(map[EventType][]Template)
	valid := make([]Template, 0, len(all))
	for i, r := range raws {
		et, err := ParseEventType(r.EventType)
		if err != nil {
			v.add(category, "", "item %d: unknown event_type %q", i, r.EventType)
			continue
		}
		t := all[i]
		t.Event = et
		byType[et] = append(byType[et], t)
		valid = append(valid, t)
	}

	other := byType[EventOther]
	if len(raws) > 0 && len(other) == 0 {
		v.add(category, string(EventOther), "no %s templates to fall back on", EventOther)
	}
	delete(byType, EventOther)

	return NewTable(category, byType, other, len(other) > 0), NewFlatTable(category, valid)
}

func collectRaces(c *Catalog) []Race {
	seen := make(map[Race]bool)
	for _, r := range builtinRaces {
		seen[r] = true
	}
	for _, keys := range [][]Race{
		c.raceEpithets.Keys(), c.rulerTitles.Keys(), c.dynastyPatterns.Keys(),
		c.founding.Keys(), c.enemyNames.Keys(),
	} {
		for _, k := range keys {
			seen[k] = true
		}
	}
	out := make([]Race, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
