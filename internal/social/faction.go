// Realms: the polities whose ruling lines the chronicle records.
package social

import (
	"github.com/talgya/backstory/internal/catalog"
	"github.com/talgya/backstory/internal/world"
)

// RealmID is a unique identifier for a realm.
type RealmID uint64

// Realm is a polity founded by one race at a seat on the map.
type Realm struct {
	ID      RealmID        `json:"id" db:"id"`
	Name    string         `json:"name" db:"name"`
	Race    catalog.Race   `json:"race" db:"race"`
	Seat    world.HexCoord `json:"seat"`
	Terrain world.Terrain  `json:"terrain" db:"terrain"`

	FoundedYear int    `json:"founded_year" db:"founded_year"`
	RulerTitle  string `json:"ruler_title" db:"ruler_title"`

	// Ruling line, set once the realm's history is generated.
	DynastyID *DynastyID `json:"dynasty_id,omitempty" db:"dynasty_id"`
}

// Subject is the key selection policies use to tell realms apart.
func (r *Realm) Subject() string {
	return "realm-" + formatID(uint64(r.ID))
}

// SeedRealms creates one realm per seat. Names are assigned by the caller.
func SeedRealms(seats []world.RealmSeat, names []string) []*Realm {
	realms := make([]*Realm, 0, len(seats))
	for i, seat := range seats {
		r := &Realm{
			ID:      RealmID(i + 1),
			Race:    seat.Race,
			Seat:    seat.Coord,
			Terrain: seat.Terrain,
		}
		if i < len(names) {
			r.Name = names[i]
		}
		realms = append(realms, r)
	}
	return realms
}
