package social

import (
	"strconv"

	"github.com/talgya/backstory/internal/catalog"
)

type RulerID uint64
type DynastyID uint64

// Ruler is one member of a ruling line.
type Ruler struct {
	ID        RulerID  `json:"id" db:"id"`
	Name      string   `json:"name" db:"name"`
	Epithet   string   `json:"epithet,omitempty" db:"epithet"`
	Titles    []string `json:"titles,omitempty"`
	ParentID  *RulerID `json:"parent_id,omitempty" db:"parent_id"`
	BirthYear int      `json:"birth_year" db:"birth_year"`

	ReignStart int                `json:"reign_start" db:"reign_start"`
	DeathYear  *int               `json:"death_year,omitempty" db:"death_year"`
	Cause      catalog.DeathCause `json:"cause,omitempty" db:"cause"`
}

// FullName is the name with its epithet, e.g. "Thrain the Grim".
func (r *Ruler) FullName() string {
	if r.Epithet == "" {
		return r.Name
	}
	return r.Name + " " + r.Epithet
}

// Alive reports whether the ruler still reigns.
func (r *Ruler) Alive() bool {
	return r.DeathYear == nil
}

// Kill records the ruler's death.
func (r *Ruler) Kill(year int, cause catalog.DeathCause) {
	r.DeathYear = &year
	r.Cause = cause
}

// Dynasty is a realm's ruling line, oldest first.
type Dynasty struct {
	ID          DynastyID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	RealmID     RealmID   `json:"realm_id" db:"realm_id"`
	FoundedYear int       `json:"founded_year" db:"founded_year"`
	Rulers      []*Ruler  `json:"rulers"`
}

// Founder returns the first ruler, or nil for an empty line.
func (d *Dynasty) Founder() *Ruler {
	if len(d.Rulers) == 0 {
		return nil
	}
	return d.Rulers[0]
}

// Head returns the reigning ruler, or nil for an empty line.
func (d *Dynasty) Head() *Ruler {
	if len(d.Rulers) == 0 {
		return nil
	}
	return d.Rulers[len(d.Rulers)-1]
}

// Generations is the number of rulers in the line.
func (d *Dynasty) Generations() int {
	return len(d.Rulers)
}

// Lifespan describes how long a race lives and when it comes of age.
// Max of zero means the race does not die of age.
type Lifespan struct {
	Maturity int
	Min      int
	Max      int
}

var lifespans = map[catalog.Race]Lifespan{
	catalog.RaceHuman:     {Maturity: 16, Min: 60, Max: 90},
	catalog.RaceDwarf:     {Maturity: 40, Min: 200, Max: 400},
	catalog.RaceElf:       {Maturity: 80, Min: 500, Max: 1000},
	catalog.RaceOrc:       {Maturity: 12, Min: 40, Max: 70},
	catalog.RaceGoblin:    {Maturity: 8, Min: 30, Max: 60},
	catalog.RaceHalfling:  {Maturity: 20, Min: 80, Max: 130},
	catalog.RaceReptilian: {Maturity: 14, Min: 80, Max: 150},
	catalog.RaceFey:       {Maturity: 50, Min: 300, Max: 800},
	catalog.RaceUndead:    {},
	catalog.RaceElemental: {},
	catalog.RaceBeastfolk: {Maturity: 14, Min: 50, Max: 80},
	catalog.RaceGiant:     {Maturity: 60, Min: 300, Max: 600},
	catalog.RaceConstruct: {},
}

// LifespanOf returns a race's lifespan; unknown races live like humans.
func LifespanOf(race catalog.Race) Lifespan {
	if l, ok := lifespans[race]; ok {
		return l
	}
	return Lifespan{Maturity: 16, Min: 60, Max: 100}
}

// Immortal reports whether the race never dies of age.
func (l Lifespan) Immortal() bool {
	return l.Max == 0
}

func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}
