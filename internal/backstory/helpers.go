package backstory

import (
	"fmt"

	"github.com/talgya/backstory/internal/catalog"
	"github.com/talgya/backstory/internal/render"
	"github.com/talgya/backstory/internal/resolve"
)

// PreviousRuler stands in for an unknown predecessor in succession stories.
const PreviousRuler = "the previous ruler"

// Epithet draws a race epithet with the catalog's race epithet chance, and a
// common epithet otherwise or when the race has none.
func (e *Engine) Epithet(race catalog.Race, subject string) (string, error) {
	if e.RollDecoration(e.cat.RaceEpithetChance()) {
		v, ok, err := resolve.ResolveOptional(e.res, e.cat.RaceEpithets(), race, subject)
		if err != nil {
			return "", err
		}
		if ok {
			return v, nil
		}
	}
	return resolve.Draw(e.res, e.cat.CommonEpithets(), subject)
}

func (e *Engine) RulerTitle(race catalog.Race, subject string) (string, error) {
	return resolve.Resolve(e.res, e.cat.RulerTitles(), race, subject)
}

// DynastyName fills a race dynasty pattern with the founder's name.
func (e *Engine) DynastyName(race catalog.Race, founder, subject string) (string, error) {
	pattern, err := resolve.Resolve(e.res, e.cat.DynastyPatterns(), race, subject)
	if err != nil {
		return "", err
	}
	return render.RenderText(pattern, render.Context{catalog.TokenSubject: founder})
}

func (e *Engine) Enemy(race catalog.Race, subject string) (string, error) {
	return resolve.Resolve(e.res, e.cat.EnemyNames(), race, subject)
}

func (e *Engine) FactionAdjective(subject string) (string, error) {
	return resolve.Draw(e.res, e.cat.FactionAdjectives(), subject)
}

func (e *Engine) Plague(subject string) (string, error) {
	return resolve.Draw(e.res, e.cat.PlagueNames(), subject)
}

func (e *Engine) Beast(subject string) (string, error) {
	return resolve.Draw(e.res, e.cat.BeastNames(), subject)
}

// Coronation describes a ruler taking power. Generation 0 is a founding and
// uses the race's founding stories; later generations use succession stories.
type Coronation struct {
	Race        catalog.Race
	Generation  int
	Name        string
	Faction     string
	Title       string
	Predecessor string // Defaults to PreviousRuler
	Subject     string
}

func (e *Engine) Coronation(c Coronation) (Result, error) {
	ctx := compact(render.Context{
		catalog.TokenSubject: c.Name,
		catalog.TokenFaction: c.Faction,
		catalog.TokenTitle:   c.Title,
	})
	if c.Generation == 0 {
		return e.ResolveAndRender(Request{
			Category: CategoryFounding,
			Key:      c.Race.String(),
			Subject:  c.Subject,
			Context:  ctx,
		})
	}

	pred := c.Predecessor
	if pred == "" {
		pred = PreviousRuler
	}
	ctx[catalog.TokenPredecessor] = pred
	return e.ResolveAndRender(Request{
		Category: CategoryCoronationSuccession,
		Subject:  c.Subject,
		Context:  ctx,
	})
}

// Death describes how a ruler died.
type Death struct {
	Cause     catalog.DeathCause
	FullName  string
	ShortName string
	Faction   string
	Disease   string // Optional; drawn from the catalog when empty
	Subject   string
}

func (e *Engine) Death(d Death) (Result, error) {
	return e.ResolveAndRender(Request{
		Category:  CategoryDeath,
		Key:       d.Cause.String(),
		Subject:   d.Subject,
		Auxiliary: d.Disease,
		Context: compact(render.Context{
			catalog.TokenSubject:      d.FullName,
			catalog.TokenSubjectShort: d.ShortName,
			catalog.TokenFaction:      d.Faction,
		}),
	})
}

// Succession describes an heir replacing a dead leader.
type Succession struct {
	Name    string
	Dead    string
	Faction string
	Subject string
}

func (e *Engine) Succession(s Succession) (Result, error) {
	dead := s.Dead
	if dead == "" {
		dead = PreviousRuler
	}
	return e.ResolveAndRender(Request{
		Category: CategoryLeaderSuccession,
		Subject:  s.Subject,
		Context: compact(render.Context{
			catalog.TokenSubject:     s.Name,
			catalog.TokenFaction:     s.Faction,
			catalog.TokenPredecessor: dead,
		}),
	})
}

// ReignEvent describes something that happened during a reign. Place,
// Artifact and Rebel come from the caller's world; enemy, plague, creature
// and adjective values are drawn from the catalog when a template needs them.
type ReignEvent struct {
	Race      catalog.Race
	Event     catalog.EventType // Empty draws from every event type
	Ruler     string
	RulerName string // Short form
	Faction   string
	Place     string
	Artifact  string
	Rebel     string
	Subject   string
}

func (e *Engine) ReignEvent(r ReignEvent) (Result, error) {
	req := Request{
		Category: CategoryReignEvent,
		Key:      r.Event.String(),
		Subject:  r.Subject,
		Context: compact(render.Context{
			catalog.TokenSubject:      r.Ruler,
			catalog.TokenSubjectShort: r.RulerName,
			catalog.TokenFaction:      r.Faction,
			catalog.TokenPlace:        r.Place,
			catalog.TokenArtifact:     r.Artifact,
			catalog.TokenRebel:        r.Rebel,
		}),
	}

	ch, err := e.choose(req)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", req.Category, err)
	}
	for _, tok := range ch.tmpl.Tokens() {
		if _, ok := req.Context[tok]; ok {
			continue
		}
		v, ok, err := e.catalogValue(tok, r.Race, r.Subject)
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", req.Category, err)
		}
		if ok {
			req.Context[tok] = v
		}
	}
	return e.render(req, ch)
}

// compact drops empty values so catalog-supplied tokens are drawn and any
// other empty token fails.
func compact(ctx render.Context) render.Context {
	for tok, v := range ctx {
		if v == "" {
			delete(ctx, tok)
		}
	}
	return ctx
}

// catalogValue draws a value for a token the catalog itself can supply.
func (e *Engine) catalogValue(tok catalog.Token, race catalog.Race, subject string) (string, bool, error) {
	var (
		v   string
		err error
	)
	switch tok {
	case catalog.TokenEnemy:
		v, err = e.Enemy(race, subject)
	case catalog.TokenDisease:
		v, err = e.Plague(subject)
	case catalog.TokenCreature:
		v, err = e.Beast(subject)
	case catalog.TokenAdjective:
		v, err = e.FactionAdjective(subject)
	default:
		return "", false, nil
	}
	return v, err == nil, err
}
