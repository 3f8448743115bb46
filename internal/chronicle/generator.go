package chronicle

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/talgya/backstory/internal/backstory"
	"github.com/talgya/backstory/internal/catalog"
	"github.com/talgya/backstory/internal/entropy"
	"github.com/talgya/backstory/internal/naming"
	"github.com/talgya/backstory/internal/resolve"
	"github.com/talgya/backstory/internal/social"
	"github.com/talgya/backstory/internal/world"
)

// Config controls a chronicle run.
type Config struct {
	Seed            int64
	Realms          int
	CurrentYear     int
	Years           int // Oldest realm age; realms are founded between Years/2 and Years ago
	MaxGenerations  int
	MinSeatDistance int
	Parallel        bool
	World           world.GenConfig
}

// DefaultConfig returns settings for a medium-sized history.
func DefaultConfig() Config {
	return Config{
		Seed:            42,
		Realms:          8,
		CurrentYear:     1000,
		Years:           400,
		MaxGenerations:  12,
		MinSeatDistance: 5,
		Parallel:        true,
		World:           world.DefaultGenConfig(),
	}
}

// Generator builds chronicles from a template catalog.
type Generator struct {
	cat *catalog.Catalog
	cfg Config
	log *slog.Logger
}

// NewGenerator creates a generator. A nil logger uses slog.Default.
func NewGenerator(cat *catalog.Catalog, cfg Config, log *slog.Logger) *Generator {
	if log == nil {
		log = slog.Default()
	}
	return &Generator{
		cat: cat,
		cfg: cfg,
		log: log,
	}
}

// Generate builds the map, seats the realms and writes each realm's history.
// Every realm draws from its own stream derived from the seed, so the result
// does not depend on whether realms run in parallel.
func (g *Generator) Generate(ctx context.Context) (*Chronicle, error) {
	cfg := g.cfg
	if cfg.Years < 2 {
		return nil, fmt.Errorf("years must be at least 2, got %d", cfg.Years)
	}
	cfg.World.Seed = cfg.Seed
	m := world.Generate(cfg.World)
	cfg.Seed = m.Seed // A zero seed is replaced by a random one

	seats := world.PlaceRealms(m, cfg.Seed, cfg.Realms, cfg.MinSeatDistance)
	if len(seats) == 0 {
		return nil, fmt.Errorf("no land to seat realms on (seed %d)", cfg.Seed)
	}
	realms := social.SeedRealms(seats, nil)

	// Recency is tracked per realm, so sharing one policy keeps realms
	// independent of each other and of scheduling.
	policy := resolve.NewRecencyAvoiding(resolve.DefaultRecencyWindow)
	histories := make([]history, len(realms))
	run := func(i int) error {
		h, err := g.realmHistory(ctx, cfg, realms[i], policy)
		if err != nil {
			return fmt.Errorf("realm %d: %w", realms[i].ID, err)
		}
		histories[i] = h
		return nil
	}

	if cfg.Parallel {
		eg, gctx := errgroup.WithContext(ctx)
		ctx = gctx
		for i := range realms {
			eg.Go(func() error { return run(i) })
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range realms {
			if err := run(i); err != nil {
				return nil, err
			}
		}
	}

	c := &Chronicle{
		Seed:        cfg.Seed,
		CurrentYear: cfg.CurrentYear,
		Map:         m,
		Realms:      realms,
	}
	for _, h := range histories {
		c.Dynasties = append(c.Dynasties, h.dynasty)
		c.Events = append(c.Events, h.events...)
	}
	sortEvents(c.Events)

	g.log.Info("chronicle generated",
		"seed", cfg.Seed,
		"realms", len(realms),
		"events", len(c.Events),
	)
	return c, nil
}

type history struct {
	dynasty *social.Dynasty
	events  []Event
}

// realmWriter carries one realm's state while its history is written.
type realmWriter struct {
	cfg     Config
	realm   *social.Realm
	src     entropy.Source
	eng     *backstory.Engine
	names   *naming.Generator
	subject string
	events  []Event
}

func (w *realmWriter) record(year int, kind Kind, ruler social.RulerID, res backstory.Result) {
	e := Event{
		ID:          eventID(w.cfg.Seed, w.realm.ID, len(w.events)),
		Year:        year,
		Kind:        kind,
		RealmID:     w.realm.ID,
		RulerID:     ruler,
		Title:       res.Title,
		Description: res.Desc,
		TemplateID:  res.TemplateID,
	}
	if kind == KindReign {
		e.EventType = res.Event.String()
	}
	w.events = append(w.events, e)
}

func (g *Generator) realmHistory(ctx context.Context, cfg Config, realm *social.Realm, policy *resolve.RecencyAvoiding) (history, error) {
	src := entropy.NewSeeded(entropy.Derive(cfg.Seed, realm.Subject()))
	w := &realmWriter{
		cfg:     cfg,
		realm:   realm,
		src:     src,
		eng:     backstory.New(g.cat, src, backstory.WithPolicy(policy), backstory.WithLogger(g.log)),
		names:   naming.New(src, realm.Race),
		subject: realm.Subject(),
	}
	defer policy.Forget(w.subject)
	race := realm.Race

	if realm.Name == "" {
		realm.Name = w.names.Realm()
	}
	age := cfg.Years/2 + src.Intn(cfg.Years/2+1)
	realm.FoundedYear = cfg.CurrentYear - age

	title, err := w.eng.RulerTitle(race, w.subject)
	if err != nil {
		return history{}, err
	}
	realm.RulerTitle = title

	life := social.LifespanOf(race)
	gens := generationCount(life, age, cfg.MaxGenerations)

	names := make([]string, gens)
	for i := range names {
		names[i] = w.names.Personal()
	}
	dynName, err := w.eng.DynastyName(race, names[0], w.subject)
	if err != nil {
		return history{}, err
	}

	dyn := &social.Dynasty{
		ID:          social.DynastyID(realm.ID),
		Name:        dynName,
		RealmID:     realm.ID,
		FoundedYear: realm.FoundedYear,
	}
	realm.DynastyID = &dyn.ID

	reignSpan := age / gens
	reignStart := realm.FoundedYear
	var prev *social.Ruler

	for gen := 0; gen < gens; gen++ {
		if err := ctx.Err(); err != nil {
			return history{}, err
		}
		last := gen == gens-1

		ruler := &social.Ruler{
			ID:         social.RulerID(uint64(realm.ID)<<16 | uint64(gen+1)),
			Name:       names[gen],
			BirthYear:  reignStart - life.Maturity - src.Intn(life.Maturity/2+1),
			ReignStart: reignStart,
		}
		if prev != nil {
			ruler.ParentID = &prev.ID
		}

		// Every dead ruler is remembered by an epithet; the living sometimes.
		if !last || w.eng.RollDecoration(0.3) {
			if ruler.Epithet, err = w.eng.Epithet(race, w.subject); err != nil {
				return history{}, err
			}
		}
		ruler.Titles = rulerTitles(gen, last, title, realm.Name)

		predecessor := ""
		if prev != nil {
			predecessor = prev.FullName()
		}
		res, err := w.eng.Coronation(backstory.Coronation{
			Race:        race,
			Generation:  gen,
			Name:        ruler.Name,
			Faction:     realm.Name,
			Title:       title,
			Predecessor: predecessor,
			Subject:     w.subject,
		})
		if err != nil {
			return history{}, err
		}
		kind := KindCoronation
		if gen == 0 {
			kind = KindFounding
		}
		w.record(reignStart, kind, ruler.ID, res)

		reignEnd := cfg.CurrentYear
		if !last {
			reignEnd = reignStart + reignSpan
			if err := w.reignEvents(ruler, reignStart, reignEnd); err != nil {
				return history{}, err
			}
			if err := w.death(ruler, reignEnd, names[gen+1]); err != nil {
				return history{}, err
			}
		}

		dyn.Rulers = append(dyn.Rulers, ruler)
		prev = ruler
		reignStart = reignEnd
	}

	g.log.Debug("realm history written",
		"realm", realm.Name,
		"race", race.String(),
		"generations", gens,
		"events", len(w.events),
	)
	return history{dynasty: dyn, events: w.events}, nil
}

// reignEvents records up to three deeds for a finished reign longer than two
// years, at most one per three years of rule.
func (w *realmWriter) reignEvents(ruler *social.Ruler, start, end int) error {
	years := end - start
	if years <= 2 {
		return nil
	}
	n := min(1+w.src.Intn(3), years/3)
	for i := 0; i < n; i++ {
		year := start + 1 + w.src.Intn(years-1)
		res, err := w.eng.ReignEvent(backstory.ReignEvent{
			Race:      w.realm.Race,
			Ruler:     ruler.FullName(),
			RulerName: ruler.Name,
			Faction:   w.realm.Name,
			Place:     w.names.Place(),
			Artifact:  w.names.Artifact(),
			Rebel:     w.names.Personal(),
			Subject:   w.subject,
		})
		if err != nil {
			return err
		}
		w.record(year, KindReign, ruler.ID, res)
	}
	return nil
}

// death ends a reign and records the heir's succession.
func (w *realmWriter) death(ruler *social.Ruler, year int, heir string) error {
	cause := RandomDeathCause(w.src)
	ruler.Kill(year, cause)

	res, err := w.eng.Death(backstory.Death{
		Cause:     cause,
		FullName:  ruler.FullName(),
		ShortName: ruler.Name,
		Faction:   w.realm.Name,
		Subject:   w.subject,
	})
	if err != nil {
		return err
	}
	w.record(year, KindDeath, ruler.ID, res)

	res, err = w.eng.Succession(backstory.Succession{
		Name:    heir,
		Dead:    ruler.FullName(),
		Faction: w.realm.Name,
		Subject: w.subject,
	})
	if err != nil {
		return err
	}
	w.record(year, KindSuccession, ruler.ID, res)
	return nil
}

// generationCount spreads a realm's age over reigns of about half a working
// life. Races that do not age reign for about a century each.
func generationCount(life social.Lifespan, age, maxGens int) int {
	reign := 100
	if !life.Immortal() {
		reign = max((life.Min-life.Maturity+40)/2, 10)
		reign = min(reign, 40)
	}
	gens := max(age/reign, 1)
	if maxGens > 0 {
		gens = min(gens, maxGens)
	}
	return gens
}

func rulerTitles(gen int, last bool, title, realm string) []string {
	var out []string
	if gen == 0 {
		out = append(out, "Founder of "+realm, "First "+title+" of "+realm)
	}
	if last {
		out = append(out, title+" of "+realm)
	}
	return out
}
