// Realm placement: scores land hexes, picks well-spaced seats and chooses the
// race that founded each realm from the terrain it sits on.
package world

import (
	"math/rand"
	"sort"

	"github.com/talgya/backstory/internal/catalog"
)

// RealmSeat is where a realm is founded and by whom.
type RealmSeat struct {
	Coord   HexCoord
	Terrain Terrain
	Race    catalog.Race
	Score   float64
}

// terrainRaces lists the peoples likely to settle each terrain, most likely
// first.
var terrainRaces = map[Terrain][]catalog.Race{
	TerrainPlains:   {catalog.RaceHuman, catalog.RaceHalfling, catalog.RaceOrc},
	TerrainForest:   {catalog.RaceElf, catalog.RaceFey, catalog.RaceBeastfolk},
	TerrainMountain: {catalog.RaceDwarf, catalog.RaceGiant, catalog.RaceConstruct},
	TerrainCoast:    {catalog.RaceHuman, catalog.RaceElf, catalog.RaceReptilian},
	TerrainRiver:    {catalog.RaceHalfling, catalog.RaceHuman, catalog.RaceGoblin},
	TerrainDesert:   {catalog.RaceOrc, catalog.RaceReptilian, catalog.RaceElemental},
	TerrainSwamp:    {catalog.RaceReptilian, catalog.RaceGoblin, catalog.RaceUndead},
	TerrainTundra:   {catalog.RaceGiant, catalog.RaceUndead, catalog.RaceBeastfolk},
}

// PlaceRealms picks up to count realm seats at least minDist hexes apart.
// Seats come back in order of desirability.
func PlaceRealms(m *Map, seed int64, count, minDist int) []RealmSeat {
	rng := rand.New(rand.NewSource(seed + 200))

	type scored struct {
		coord HexCoord
		score float64
	}
	var candidates []scored
	for _, coord := range LandCoords(m) {
		if s := seatScore(m, coord); s > 0 {
			candidates = append(candidates, scored{coord, s})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	var seats []RealmSeat
	for _, c := range candidates {
		if len(seats) >= count {
			break
		}
		if tooClose(c.coord, seats, minDist) {
			continue
		}
		hex := m.Get(c.coord)
		seats = append(seats, RealmSeat{
			Coord:   c.coord,
			Terrain: hex.Terrain,
			Race:    raceFor(rng, hex.Terrain),
			Score:   c.score,
		})
	}
	return seats
}

// raceFor draws a founding race for a terrain, weighting earlier entries.
func raceFor(rng *rand.Rand, t Terrain) catalog.Race {
	races, ok := terrainRaces[t]
	if !ok {
		return catalog.RaceHuman
	}
	roll := rng.Float64()
	switch {
	case roll < 0.6:
		return races[0]
	case roll < 0.85:
		return races[1]
	default:
		return races[2]
	}
}

// seatScore prefers water access and varied surroundings.
func seatScore(m *Map, coord HexCoord) float64 {
	hex := m.Get(coord)
	score := 0.0

	switch hex.Terrain {
	case TerrainCoast:
		score += 4.0
	case TerrainRiver:
		score += 3.5
	case TerrainPlains:
		score += 3.0
	case TerrainForest:
		score += 2.0
	case TerrainMountain:
		score += 1.5
	case TerrainDesert, TerrainSwamp, TerrainTundra:
		score += 1.0
	default:
		return 0
	}

	terrainTypes := make(map[Terrain]bool)
	for _, nc := range coord.Neighbors() {
		nh := m.Get(nc)
		if nh == nil {
			continue
		}
		if nh.Terrain.IsLand() {
			terrainTypes[nh.Terrain] = true
		}
	}
	score += float64(len(terrainTypes)) * 0.3

	// Sheltered from the rim.
	score += (1 - float64(ring(coord))/float64(m.Radius+1)) * 0.5
	return score
}

func tooClose(coord HexCoord, existing []RealmSeat, minDist int) bool {
	for _, s := range existing {
		if Distance(coord, s.Coord) < minDist {
			return true
		}
	}
	return false
}
