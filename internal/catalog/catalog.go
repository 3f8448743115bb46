package catalog

// Catalog is a validated, immutable set of backstory tables. It is safe for
// concurrent use.
type Catalog struct {
	commonEpithets    *Table[NoKey, string]
	raceEpithets      *Table[Race, string]
	raceEpithetChance float64

	rulerTitles          *Table[Race, string]
	dynastyPatterns      *Table[Race, Text]
	founding             *Table[Race, Template]
	coronationSuccession *Table[NoKey, Template]
	deaths               *CompoundTable[DeathCause]
	reignEvents          *Table[EventType, Template]
	allReignEvents       *Table[NoKey, Template]
	enemyNames           *Table[Race, string]
	factionAdjectives    *Table[NoKey, string]
	plagueNames          *Table[NoKey, string]
	beastNames           *Table[NoKey, string]
	successions          *Table[NoKey, Template]

	races []Race
}

func (c *Catalog) CommonEpithets() *Table[NoKey, string] { return c.commonEpithets }
func (c *Catalog) RaceEpithets() *Table[Race, string]    { return c.raceEpithets }

// RaceEpithetChance is the probability that an epithet is drawn from the
// race-specific pool rather than the common one.
func (c *Catalog) RaceEpithetChance() float64 { return c.raceEpithetChance }

func (c *Catalog) RulerTitles() *Table[Race, string]              { return c.rulerTitles }
func (c *Catalog) DynastyPatterns() *Table[Race, Text]            { return c.dynastyPatterns }
func (c *Catalog) Founding() *Table[Race, Template]               { return c.founding }
func (c *Catalog) CoronationSuccession() *Table[NoKey, Template]  { return c.coronationSuccession }
func (c *Catalog) Deaths() *CompoundTable[DeathCause]             { return c.deaths }
func (c *Catalog) ReignEvents() *Table[EventType, Template]       { return c.reignEvents }
func (c *Catalog) AllReignEvents() *Table[NoKey, Template]        { return c.allReignEvents }
func (c *Catalog) EnemyNames() *Table[Race, string]               { return c.enemyNames }
func (c *Catalog) FactionAdjectives() *Table[NoKey, string]       { return c.factionAdjectives }
func (c *Catalog) PlagueNames() *Table[NoKey, string]             { return c.plagueNames }
func (c *Catalog) BeastNames() *Table[NoKey, string]              { return c.beastNames }
func (c *Catalog) SuccessionTemplates() *Table[NoKey, Template]   { return c.successions }

// Races returns the built-in races together with any race keyed in the
// catalog, sorted.
func (c *Catalog) Races() []Race {
	out := make([]Race, len(c.races))
	copy(out, c.races)
	return out
}

// Count is the number of entries in one catalog category.
type Count struct {
	Category string
	Keys     int
	Entries  int
}

// Stats summarizes the catalog per category, in file order.
func (c *Catalog) Stats() []Count {
	diseases := 0
	for _, cause := range c.deaths.Keys() {
		pool, _ := c.deaths.Aux(cause, false)
		diseases += len(pool)
	}
	pool, _ := c.deaths.Aux("", true)
	diseases += len(pool)

	return []Count{
		{Category: c.commonEpithets.Name(), Entries: c.commonEpithets.Len()},
		{Category: c.raceEpithets.Name(), Keys: len(c.raceEpithets.Keys()), Entries: c.raceEpithets.Len()},
		{Category: c.rulerTitles.Name(), Keys: len(c.rulerTitles.Keys()), Entries: c.rulerTitles.Len()},
		{Category: c.dynastyPatterns.Name(), Keys: len(c.dynastyPatterns.Keys()), Entries: c.dynastyPatterns.Len()},
		{Category: c.founding.Name(), Keys: len(c.founding.Keys()), Entries: c.founding.Len()},
		{Category: c.coronationSuccession.Name(), Entries: c.coronationSuccession.Len()},
		{Category: c.deaths.Name(), Keys: len(c.deaths.Keys()), Entries: c.deaths.Len()},
		{Category: "death_diseases", Entries: diseases},
		{Category: c.allReignEvents.Name(), Keys: len(c.reignEvents.Keys()) + 1, Entries: c.allReignEvents.Len()},
		{Category: c.enemyNames.Name(), Keys: len(c.enemyNames.Keys()), Entries: c.enemyNames.Len()},
		{Category: c.factionAdjectives.Name(), Entries: c.factionAdjectives.Len()},
		{Category: c.plagueNames.Name(), Entries: c.plagueNames.Len()},
		{Category: c.beastNames.Name(), Entries: c.beastNames.Len()},
		{Category: c.successions.Name(), Entries: c.successions.Len()},
	}
}
