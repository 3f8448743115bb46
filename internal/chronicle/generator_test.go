package chronicle

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/backstory/internal/catalog"
	"github.com/talgya/backstory/internal/entropy"
	"github.com/talgya/backstory/internal/resolve"
	"github.com/talgya/backstory/internal/social"
	"github.com/talgya/backstory/internal/world"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Seed = 42
	cfg.Realms = 3
	cfg.Years = 300
	cfg.MinSeatDistance = 3
	cfg.World = world.SmallTestConfig()
	return cfg
}

func generate(t *testing.T, cfg Config) *Chronicle {
	t.Helper()
	c, err := NewGenerator(catalog.MustDefault(), cfg, nil).Generate(context.Background())
	require.NoError(t, err)
	return c
}

func TestGenerateChronicle(t *testing.T) {
	c := generate(t, testConfig())

	require.NotEmpty(t, c.Realms)
	require.Len(t, c.Dynasties, len(c.Realms))
	require.NotEmpty(t, c.Events)

	for i, realm := range c.Realms {
		dyn := c.Dynasties[i]
		assert.NotEmpty(t, realm.Name)
		assert.NotEmpty(t, realm.RulerTitle)
		require.NotNil(t, realm.DynastyID)
		assert.Equal(t, dyn.ID, *realm.DynastyID)
		assert.NotEmpty(t, dyn.Name)
		assert.LessOrEqual(t, realm.FoundedYear, c.CurrentYear-150)

		head := dyn.Head()
		require.NotNil(t, head)
		assert.True(t, head.Alive(), "the last ruler still reigns")
		assert.Contains(t, head.Titles, realm.RulerTitle+" of "+realm.Name)
		assert.Contains(t, dyn.Founder().Titles, "Founder of "+realm.Name)

		for _, r := range dyn.Rulers[:len(dyn.Rulers)-1] {
			assert.False(t, r.Alive())
			assert.NotEmpty(t, r.Epithet)
			assert.NotEmpty(t, r.Cause)
		}

		events := c.EventsOf(realm.ID)
		require.NotEmpty(t, events)
		assert.Equal(t, KindFounding, events[0].Kind)
		assert.Equal(t, realm.FoundedYear, events[0].Year)
	}

	for i, e := range c.Events {
		assert.NotEmpty(t, e.Title)
		assert.NotEmpty(t, e.Description)
		assert.NotContains(t, e.Description, "{", e.TemplateID)
		if e.Kind == KindReign {
			assert.NotEmpty(t, e.EventType)
		} else {
			assert.Empty(t, e.EventType)
		}
		if i > 0 {
			assert.LessOrEqual(t, c.Events[i-1].Year, e.Year)
		}
	}
}

func TestGenerateIsReproducible(t *testing.T) {
	parallel := testConfig()
	serial := testConfig()
	serial.Parallel = false

	a := generate(t, parallel)
	b := generate(t, serial)
	require.Equal(t, len(a.Events), len(b.Events))
	for i := range a.Events {
		assert.Equal(t, a.Events[i], b.Events[i])
	}

	other := testConfig()
	other.Seed = 43
	c := generate(t, other)
	assert.NotEqual(t, a.Events[0].ID, c.Events[0].ID)
}

func TestGenerateRejectsShortHistory(t *testing.T) {
	cfg := testConfig()
	cfg.Years = 1
	_, err := NewGenerator(catalog.MustDefault(), cfg, nil).Generate(context.Background())
	assert.Error(t, err)
}

func TestGenerateHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewGenerator(catalog.MustDefault(), testConfig(), nil).Generate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDeathsAreFollowedBySuccession(t *testing.T) {
	c := generate(t, testConfig())
	for _, realm := range c.Realms {
		events := c.EventsOf(realm.ID)
		deaths, successions := 0, 0
		for _, e := range events {
			switch e.Kind {
			case KindDeath:
				deaths++
			case KindSuccession:
				successions++
			}
		}
		assert.Equal(t, deaths, successions, realm.Name)
	}
}

func TestRandomDeathCauseDistribution(t *testing.T) {
	src := entropy.NewSeeded(9)
	counts := map[catalog.DeathCause]int{}
	const n = 20000
	for i := 0; i < n; i++ {
		counts[RandomDeathCause(src)]++
	}
	assert.InDelta(t, 0.40, float64(counts[catalog.DeathNatural])/n, 0.02)
	assert.InDelta(t, 0.20, float64(counts[catalog.DeathBattle])/n, 0.02)
	assert.InDelta(t, 0.15, float64(counts[catalog.DeathDisease])/n, 0.02)
	assert.InDelta(t, 0.05, float64(counts[catalog.DeathDuel])/n, 0.02)
	assert.Len(t, counts, 6)
}

func TestGenerationCount(t *testing.T) {
	human := social.LifespanOf(catalog.RaceHuman)
	assert.Equal(t, 10, generationCount(human, 400, 10))
	assert.Equal(t, 1, generationCount(human, 5, 10))

	elf := social.LifespanOf(catalog.RaceElf)
	assert.Equal(t, 5, generationCount(elf, 200, 0))

	undead := social.LifespanOf(catalog.RaceUndead)
	assert.Equal(t, 3, generationCount(undead, 300, 0))
}

func TestRulerTitles(t *testing.T) {
	assert.Equal(t,
		[]string{"Founder of Ironhold", "First King of Ironhold", "King of Ironhold"},
		rulerTitles(0, true, "King", "Ironhold"))
	assert.Empty(t, rulerTitles(2, false, "King", "Ironhold"))
	assert.True(t, strings.HasPrefix(rulerTitles(0, false, "Thane", "Deep")[1], "First Thane"))
}

func TestRealmHistoryForgetsRecencyHistory(t *testing.T) {
	cfg := testConfig()
	m := world.Generate(cfg.World)
	seats := world.PlaceRealms(m, cfg.Seed, 1, cfg.MinSeatDistance)
	require.NotEmpty(t, seats)
	realm := social.SeedRealms(seats, nil)[0]

	policy := resolve.NewRecencyAvoiding(resolve.DefaultRecencyWindow)
	g := NewGenerator(catalog.MustDefault(), cfg, nil)
	h, err := g.realmHistory(context.Background(), cfg, realm, policy)
	require.NoError(t, err)
	assert.NotEmpty(t, h.events)
	assert.Zero(t, policy.Subjects())
}
