// Package catalog holds the backstory template catalog: typed category keys,
// the placeholder grammar, and loading and validation of catalog files.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultKey is the sentinel used in catalog files for a table's fallback
// sequence. It never appears in a table's key space.
const DefaultKey = "_default"

// ErrInvalidKey is returned when a category key fails boundary validation.
var ErrInvalidKey = errors.New("invalid category key")

// Race is a race tag such as "dwarf". Tags outside the built-in set are valid
// and resolve through a table's default sequence.
type Race string

const (
	RaceHuman     Race = "human"
	RaceDwarf     Race = "dwarf"
	RaceElf       Race = "elf"
	RaceOrc       Race = "orc"
	RaceGoblin    Race = "goblin"
	RaceHalfling  Race = "halfling"
	RaceReptilian Race = "reptilian"
	RaceFey       Race = "fey"
	RaceUndead    Race = "undead"
	RaceElemental Race = "elemental"
	RaceBeastfolk Race = "beastfolk"
	RaceGiant     Race = "giant"
	RaceConstruct Race = "construct"
)

var builtinRaces = []Race{
	RaceHuman, RaceDwarf, RaceElf, RaceOrc, RaceGoblin, RaceHalfling,
	RaceReptilian, RaceFey, RaceUndead, RaceElemental, RaceBeastfolk,
	RaceGiant, RaceConstruct,
}

// BuiltinRaces returns the race tags known to the engine.
func BuiltinRaces() []Race {
	out := make([]Race, len(builtinRaces))
	copy(out, builtinRaces)
	return out
}

// ParseRace validates a race tag: lowercase ASCII letters, digits, '-' or '_',
// starting with a letter.
func ParseRace(s string) (Race, error) {
	if !isTag(s) {
		return "", fmt.Errorf("%w: race %q", ErrInvalidKey, s)
	}
	return Race(s), nil
}

func (r Race) String() string { return string(r) }

func isTag(s string) bool {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

// DeathCause is the closed set of ways a ruler can die.
type DeathCause string

const (
	DeathNatural       DeathCause = "Natural"
	DeathBattle        DeathCause = "Battle"
	DeathAssassination DeathCause = "Assassination"
	DeathExecution     DeathCause = "Execution"
	DeathDuel          DeathCause = "Duel"
	DeathMonster       DeathCause = "Monster"
	DeathDisease       DeathCause = "Disease"
	DeathMagic         DeathCause = "Magic"
	DeathAccident      DeathCause = "Accident"
	DeathSuicide       DeathCause = "Suicide"
	DeathUnknown       DeathCause = "Unknown"
)

var deathCauses = []DeathCause{
	DeathNatural, DeathBattle, DeathAssassination, DeathExecution, DeathDuel,
	DeathMonster, DeathDisease, DeathMagic, DeathAccident, DeathSuicide,
	DeathUnknown,
}

// DeathCauses returns every death cause.
func DeathCauses() []DeathCause {
	out := make([]DeathCause, len(deathCauses))
	copy(out, deathCauses)
	return out
}

// ParseDeathCause matches a cause name case-insensitively.
func ParseDeathCause(s string) (DeathCause, error) {
	for _, c := range deathCauses {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: death cause %q", ErrInvalidKey, s)
}

func (c DeathCause) String() string { return string(c) }

// EventType tags a reign event template.
type EventType string

const (
	EventBattleFought          EventType = "BattleFought"
	EventRaid                  EventType = "Raid"
	EventSettlementGrew        EventType = "SettlementGrew"
	EventMonumentBuilt         EventType = "MonumentBuilt"
	EventTempleBuilt           EventType = "TempleBuilt"
	EventTreatySigned          EventType = "TreatySigned"
	EventTradeRouteEstablished EventType = "TradeRouteEstablished"
	EventPlague                EventType = "Plague"
	EventDrought               EventType = "Drought"
	EventFlood                 EventType = "Flood"
	EventEarthquake            EventType = "Earthquake"
	EventVolcanoErupted        EventType = "VolcanoErupted"
	EventQuestCompleted        EventType = "QuestCompleted"
	EventArtifactFound         EventType = "ArtifactFound"
	EventArtifactCreated       EventType = "ArtifactCreated"
	EventRebellion             EventType = "Rebellion"
	EventCoup                  EventType = "Coup"
	EventMiracle               EventType = "Miracle"
	EventCultFormed            EventType = "CultFormed"
	EventReligionFounded       EventType = "ReligionFounded"
	EventHolyWarDeclared       EventType = "HolyWarDeclared"
	EventSpellInvented         EventType = "SpellInvented"
	EventMagicalExperiment     EventType = "MagicalExperiment"
	EventMagicalCatastrophe    EventType = "MagicalCatastrophe"
	EventCurseApplied          EventType = "CurseApplied"
	EventCurseLifted           EventType = "CurseLifted"
	EventCreatureAppeared      EventType = "CreatureAppeared"
	EventCreatureSlain         EventType = "CreatureSlain"
	EventLairEstablished       EventType = "LairEstablished"
	EventMonsterRaid           EventType = "MonsterRaid"
	EventMasterworkCreated     EventType = "MasterworkCreated"
	EventWarDeclared           EventType = "WarDeclared"
	EventAllianceFormed        EventType = "AllianceFormed"
	EventSiegeBegun            EventType = "SiegeBegun"
	EventMassacre              EventType = "Massacre"
	EventPopulationMigrated    EventType = "PopulationMigrated"
	EventOther                 EventType = "Other"
)

var eventTypes = []EventType{
	EventBattleFought, EventRaid, EventSettlementGrew, EventMonumentBuilt,
	EventTempleBuilt, EventTreatySigned, EventTradeRouteEstablished,
	EventPlague, EventDrought, EventFlood, EventEarthquake, EventVolcanoErupted,
	EventQuestCompleted, EventArtifactFound, EventArtifactCreated,
	EventRebellion, EventCoup, EventMiracle, EventCultFormed,
	EventReligionFounded, EventHolyWarDeclared, EventSpellInvented,
	EventMagicalExperiment, EventMagicalCatastrophe, EventCurseApplied,
	EventCurseLifted, EventCreatureAppeared, EventCreatureSlain,
	EventLairEstablished, EventMonsterRaid, EventMasterworkCreated,
	EventWarDeclared, EventAllianceFormed, EventSiegeBegun, EventMassacre,
	EventPopulationMigrated, EventOther,
}

// EventTypes returns every reign event type.
func EventTypes() []EventType {
	out := make([]EventType, len(eventTypes))
	copy(out, eventTypes)
	return out
}

// ParseEventType matches an event type name exactly.
func ParseEventType(s string) (EventType, error) {
	for _, e := range eventTypes {
		if string(e) == s {
			return e, nil
		}
	}
	return "", fmt.Errorf("%w: event type %q", ErrInvalidKey, s)
}

func (e EventType) String() string { return string(e) }

// NoKey keys flat sequences that have only a default.
type NoKey string
