// Engine resolves catalog templates and renders them from live values.
// It is the one entry point simulation code uses to turn a founding, death,
// reign event or succession into a title and description.
package backstory

import (
	"fmt"
	"log/slog"

	"github.com/talgya/backstory/internal/catalog"
	"github.com/talgya/backstory/internal/entropy"
	"github.com/talgya/backstory/internal/render"
	"github.com/talgya/backstory/internal/resolve"
)

// Category selects which template table a request draws from.
type Category uint8

const (
	CategoryFounding             Category = iota + 1 // Keyed by race
	CategoryCoronationSuccession                     // Flat
	CategoryDeath                                    // Keyed by death cause; Disease is compound
	CategoryReignEvent                               // Keyed by event type; empty key draws from every event
	CategoryLeaderSuccession                         // Flat
)

var categoryNames = map[Category]string{
	CategoryFounding:             "founding",
	CategoryCoronationSuccession: "coronation",
	CategoryDeath:                "death",
	CategoryReignEvent:           "reign-event",
	CategoryLeaderSuccession:     "succession",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", uint8(c))
}

// ParseCategory maps a category name back to its value.
func ParseCategory(s string) (Category, error) {
	for c, name := range categoryNames {
		if name == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: category %q", catalog.ErrInvalidKey, s)
}

// Request describes one template to resolve and render.
type Request struct {
	Category  Category
	Key       string         // Race tag, death cause or event type; unused by flat categories
	Subject   string         // Identifies whose story this is, for selection policies
	Auxiliary string         // Fixes a compound entry's auxiliary value instead of drawing it
	Context   render.Context // Values for every token the template may use
}

// Result is a rendered template and where it came from.
type Result struct {
	render.Rendered
	TemplateID string
	Pool       string
	Fallback   bool
	Event      catalog.EventType // Reign events only
	Aux        string            // Compound entries only
}

// Engine is safe for concurrent use when its entropy source is.
type Engine struct {
	cat *catalog.Catalog
	res *resolve.Resolver
	log *slog.Logger

	src    entropy.Source
	policy resolve.Policy
}

// Option configures an Engine.
type Option func(*Engine)

// WithPolicy sets the selection policy. The default is resolve.Uniform.
func WithPolicy(p resolve.Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithLogger sets the logger used for debug traces of every resolution.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New creates an engine drawing from src. A *entropy.Seeded source must not
// be shared between goroutines; wrap it with entropy.NewLocked or use
// entropy.Crypto for a shared engine.
func New(cat *catalog.Catalog, src entropy.Source, opts ...Option) *Engine {
	e := &Engine{cat: cat, src: src, log: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	e.res = resolve.New(e.src, e.policy)
	return e
}

// Catalog returns the catalog the engine draws from.
func (e *Engine) Catalog() *catalog.Catalog { return e.cat }

// ResolveAndRender selects a template for the request and renders it.
// A bad key wraps catalog.ErrInvalidKey, a catalog gap wraps
// *resolve.ConfigurationError, and an incomplete context wraps
// *render.MissingPlaceholderError.
func (e *Engine) ResolveAndRender(req Request) (Result, error) {
	res, err := e.choose(req)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", req.Category, err)
	}
	return e.render(req, res)
}

// RollDecoration reports whether an optional decoration should be applied.
func (e *Engine) RollDecoration(chance float64) bool {
	return resolve.MaybeApply(chance, e.src)
}

type chosen struct {
	tmpl catalog.Template
	res  Result
}

func (e *Engine) choose(req Request) (chosen, error) {
	var (
		c   resolve.Choice[catalog.Template]
		err error
		out chosen
	)

	switch req.Category {
	case CategoryFounding:
		race, perr := catalog.ParseRace(req.Key)
		if perr != nil {
			return out, perr
		}
		c, err = resolve.Choose(e.res, e.cat.Founding(), race, req.Subject)

	case CategoryCoronationSuccession:
		c, err = resolve.Choose(e.res, e.cat.CoronationSuccession(), "", req.Subject)

	case CategoryLeaderSuccession:
		c, err = resolve.Choose(e.res, e.cat.SuccessionTemplates(), "", req.Subject)

	case CategoryReignEvent:
		if req.Key == "" {
			c, err = resolve.Choose(e.res, e.cat.AllReignEvents(), "", req.Subject)
			break
		}
		event, perr := catalog.ParseEventType(req.Key)
		if perr != nil {
			return out, perr
		}
		c, err = resolve.Choose(e.res, e.cat.ReignEvents(), event, req.Subject)

	case CategoryDeath:
		cause, perr := catalog.ParseDeathCause(req.Key)
		if perr != nil {
			return out, perr
		}
		comp, cerr := resolve.ResolveCompound(e.res, e.cat.Deaths(), cause, req.Subject)
		if cerr != nil {
			return out, cerr
		}
		c = comp.Choice
		if comp.HasAux {
			out.res.Aux = comp.Aux
			if req.Auxiliary != "" {
				out.res.Aux = req.Auxiliary
			}
		}

	default:
		return out, fmt.Errorf("%w: category %d", catalog.ErrInvalidKey, uint8(req.Category))
	}
	if err != nil {
		return out, err
	}

	out.tmpl = c.Value
	out.res.TemplateID = c.Value.ID
	out.res.Pool = c.Pool
	out.res.Fallback = c.Fallback
	out.res.Event = c.Value.Event
	return out, nil
}

func (e *Engine) render(req Request, ch chosen) (Result, error) {
	ctx := req.Context
	if ch.res.Aux != "" {
		ctx = ctx.With(catalog.TokenDisease, ch.res.Aux)
	}

	rendered, err := render.Render(ch.tmpl, ctx)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", req.Category, err)
	}
	ch.res.Rendered = rendered

	e.log.Debug("backstory rendered",
		"category", req.Category.String(),
		"key", req.Key,
		"template", ch.res.TemplateID,
		"fallback", ch.res.Fallback,
	)
	return ch.res, nil
}
