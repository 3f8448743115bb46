// Package chronicle generates the recorded history of each realm's ruling
// line: foundings, coronations, deeds, deaths and successions.
package chronicle

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/talgya/backstory/internal/catalog"
	"github.com/talgya/backstory/internal/entropy"
	"github.com/talgya/backstory/internal/social"
	"github.com/talgya/backstory/internal/world"
)

// Kind classifies a chronicle entry.
type Kind string

const (
	KindFounding   Kind = "founding"
	KindCoronation Kind = "coronation"
	KindReign      Kind = "reign"
	KindDeath      Kind = "death"
	KindSuccession Kind = "succession"
)

// Event is a notable occurrence in a realm's history.
type Event struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	Year        int            `json:"year" db:"year"`
	Kind        Kind           `json:"kind" db:"kind"`
	RealmID     social.RealmID `json:"realm_id" db:"realm_id"`
	RulerID     social.RulerID `json:"ruler_id" db:"ruler_id"`
	Title       string         `json:"title" db:"title"`
	Description string         `json:"description" db:"description"`
	TemplateID  string         `json:"template_id" db:"template_id"`
	EventType   string         `json:"event_type,omitempty" db:"event_type"` // Reign events only
}

// Chronicle is a generated world history.
type Chronicle struct {
	Seed        int64
	CurrentYear int
	Map         *world.Map
	Realms      []*social.Realm
	Dynasties   []*social.Dynasty
	Events      []Event
}

// EventsOf returns a realm's events in chronological order.
func (c *Chronicle) EventsOf(id social.RealmID) []Event {
	var out []Event
	for _, e := range c.Events {
		if e.RealmID == id {
			out = append(out, e)
		}
	}
	return out
}

// eventID derives a stable ID so that a seed always reproduces the same
// chronicle, IDs included.
func eventID(seed int64, realm social.RealmID, seq int) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("backstory/%d/%d/%d", seed, realm, seq)))
}

// RandomDeathCause draws how a ruler died: 40% natural, 20% battle,
// 15% disease, 10% assassination, 5% duel, 10% unknown.
func RandomDeathCause(src entropy.Source) catalog.DeathCause {
	roll := src.Intn(100)
	switch {
	case roll < 40:
		return catalog.DeathNatural
	case roll < 60:
		return catalog.DeathBattle
	case roll < 75:
		return catalog.DeathDisease
	case roll < 85:
		return catalog.DeathAssassination
	case roll < 90:
		return catalog.DeathDuel
	default:
		return catalog.DeathUnknown
	}
}

func sortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Year != events[j].Year {
			return events[i].Year < events[j].Year
		}
		return events[i].RealmID < events[j].RealmID
	})
}
