// World generation using layered simplex noise.
// Elevation, rainfall and temperature layers are sampled per hex and terrain
// is derived from them; coasts and rivers are marked in post-passes.
package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds world generation parameters.
type GenConfig struct {
	Radius      int     // Hex grid radius
	Seed        int64   // Random seed (0 = random)
	SeaLevel    float64 // Elevation threshold for ocean (0.0–1.0)
	MountainLvl float64 // Elevation threshold for mountains (0.0–1.0)
}

// DefaultGenConfig returns a continent large enough for a dozen realms.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Radius:      22,
		SeaLevel:    0.25,
		MountainLvl: 0.72,
	}
}

// SmallTestConfig returns a tiny world for tests.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Radius:      8,
		Seed:        42,
		SeaLevel:    0.20,
		MountainLvl: 0.75,
	}
}

// Generate creates a world map. The same seed always yields the same map.
func Generate(cfg GenConfig) *Map {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	elevNoise := opensimplex.NewNormalized(seed)
	rainNoise := opensimplex.NewNormalized(seed + 1)
	tempNoise := opensimplex.NewNormalized(seed + 2)

	m := NewMap(cfg.Radius)
	m.Seed = seed

	for q := -cfg.Radius; q <= cfg.Radius; q++ {
		for r := -cfg.Radius; r <= cfg.Radius; r++ {
			coord := HexCoord{Q: q, R: r}
			if !m.InBounds(coord) {
				continue
			}

			// Axial to cartesian for noise sampling.
			x := float64(q) + float64(r)*0.5
			y := float64(r) * math.Sqrt(3.0) / 2.0

			elev := octaveNoise(elevNoise, x, y, 4, 0.08, 0.5)
			rain := octaveNoise(rainNoise, x, y, 3, 0.06, 0.5)
			temp := octaveNoise(tempNoise, x, y, 3, 0.05, 0.5)

			// Sink the rim so the continent is ringed by ocean.
			distFromCenter := math.Sqrt(x*x+y*y) / float64(cfg.Radius)
			edgeFalloff := math.Max(0, 1.0-math.Pow(distFromCenter, 3.5))
			elev *= edgeFalloff

			// Colder toward the poles and at altitude.
			temp = temp*0.6 + (1.0-math.Abs(y)/float64(cfg.Radius))*0.3 + (1.0-elev)*0.1

			m.Set(&Hex{
				Coord:       coord,
				Terrain:     deriveTerrain(elev, rain, temp, cfg),
				Elevation:   elev,
				Rainfall:    rain,
				Temperature: temp,
			})
		}
	}

	markCoastalHexes(m)
	placeRivers(m, seed)

	return m
}

func deriveTerrain(elev, rain, temp float64, cfg GenConfig) Terrain {
	switch {
	case elev < cfg.SeaLevel:
		return TerrainOcean
	case elev > cfg.MountainLvl:
		return TerrainMountain
	case temp < 0.25:
		return TerrainTundra
	case rain < 0.25 && temp > 0.5:
		return TerrainDesert
	case rain > 0.7 && elev < 0.45:
		return TerrainSwamp
	case rain > 0.45 && elev > 0.45:
		return TerrainForest
	default:
		return TerrainPlains
	}
}

// markCoastalHexes turns low plains and forest next to the ocean into coast.
func markCoastalHexes(m *Map) {
	var toMark []HexCoord
	for _, coord := range m.Coords() {
		hex := m.Get(coord)
		if hex.Terrain != TerrainPlains && hex.Terrain != TerrainForest {
			continue
		}
		if hex.Elevation >= 0.5 {
			continue
		}
		for _, neighbor := range coord.Neighbors() {
			if nh := m.Get(neighbor); nh != nil && nh.Terrain == TerrainOcean {
				toMark = append(toMark, coord)
				break
			}
		}
	}
	for _, coord := range toMark {
		m.Get(coord).Terrain = TerrainCoast
	}
}

// placeRivers traces a handful of rivers downhill from highland sources.
func placeRivers(m *Map, seed int64) {
	rng := rand.New(rand.NewSource(seed + 100))

	var sources []HexCoord
	for _, coord := range m.Coords() {
		hex := m.Get(coord)
		if hex.Elevation > 0.65 && hex.Terrain != TerrainOcean {
			sources = append(sources, coord)
		}
	}

	numRivers := min(max(len(sources)/8, 2), 10)

	rng.Shuffle(len(sources), func(i, j int) {
		sources[i], sources[j] = sources[j], sources[i]
	})
	if len(sources) > numRivers {
		sources = sources[:numRivers]
	}
	for _, start := range sources {
		traceRiver(m, start)
	}
}

// traceRiver follows the steepest descent until it reaches the ocean or runs
// out of downhill path.
func traceRiver(m *Map, start HexCoord) {
	current := start
	visited := make(map[HexCoord]bool)

	for step := 0; step < 50; step++ {
		visited[current] = true
		hex := m.Get(current)
		if hex == nil || hex.Terrain == TerrainOcean {
			return
		}
		if hex.Terrain != TerrainMountain && hex.Terrain != TerrainCoast {
			hex.Terrain = TerrainRiver
		}

		next, found := current, false
		bestElev := hex.Elevation
		for _, nc := range current.Neighbors() {
			nh := m.Get(nc)
			if nh == nil || visited[nc] {
				continue
			}
			if nh.Elevation < bestElev {
				bestElev = nh.Elevation
				next, found = nc, true
			}
		}
		if !found {
			return
		}
		current = next
	}
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// LandCoords returns every land coordinate in stable order.
func LandCoords(m *Map) []HexCoord {
	var out []HexCoord
	for _, c := range m.Coords() {
		if m.Get(c).Terrain.IsLand() {
			out = append(out, c)
		}
	}
	return out
}
