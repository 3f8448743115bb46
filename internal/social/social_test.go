package social

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/backstory/internal/catalog"
	"github.com/talgya/backstory/internal/world"
)

func TestRulerFullName(t *testing.T) {
	r := &Ruler{Name: "Thrain"}
	assert.Equal(t, "Thrain", r.FullName())
	r.Epithet = "the Grim"
	assert.Equal(t, "Thrain the Grim", r.FullName())

	assert.True(t, r.Alive())
	r.Kill(312, catalog.DeathBattle)
	assert.False(t, r.Alive())
	require.NotNil(t, r.DeathYear)
	assert.Equal(t, 312, *r.DeathYear)
	assert.Equal(t, catalog.DeathBattle, r.Cause)
}

func TestDynastyHeadAndFounder(t *testing.T) {
	d := &Dynasty{}
	assert.Nil(t, d.Founder())
	assert.Nil(t, d.Head())

	d.Rulers = []*Ruler{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}, {ID: 3, Name: "C"}}
	assert.Equal(t, RulerID(1), d.Founder().ID)
	assert.Equal(t, RulerID(3), d.Head().ID)
	assert.Equal(t, 3, d.Generations())
}

func TestLifespans(t *testing.T) {
	assert.True(t, LifespanOf(catalog.RaceUndead).Immortal())
	assert.False(t, LifespanOf(catalog.RaceHuman).Immortal())
	assert.Equal(t, 16, LifespanOf("sprite").Maturity)
}

func TestSeedRealms(t *testing.T) {
	seats := []world.RealmSeat{
		{Coord: world.HexCoord{Q: 1, R: 2}, Terrain: world.TerrainMountain, Race: catalog.RaceDwarf},
		{Coord: world.HexCoord{Q: -4, R: 0}, Terrain: world.TerrainForest, Race: catalog.RaceElf},
	}
	realms := SeedRealms(seats, []string{"Ironhold"})
	require.Len(t, realms, 2)
	assert.Equal(t, RealmID(1), realms[0].ID)
	assert.Equal(t, "Ironhold", realms[0].Name)
	assert.Empty(t, realms[1].Name)
	assert.Equal(t, "realm-2", realms[1].Subject())
	assert.Equal(t, catalog.RaceElf, realms[1].Race)
}
