// Package api provides the HTTP API for reading a stored chronicle.
// GET endpoints are read-only. POST /api/v1/render draws a fresh backstory
// from the catalog and is rate limited per client.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/talgya/backstory/internal/backstory"
	"github.com/talgya/backstory/internal/catalog"
	"github.com/talgya/backstory/internal/persistence"
	"github.com/talgya/backstory/internal/render"
	"github.com/talgya/backstory/internal/resolve"
	"github.com/talgya/backstory/internal/social"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// Server serves a stored chronicle over HTTP.
type Server struct {
	DB     *persistence.DB
	Engine *backstory.Engine
	Port   int

	// Requests per hour allowed on the render endpoint per client.
	RenderRate int
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	rate := s.RenderRate
	if rate <= 0 {
		rate = 120
	}
	renderLimiter := NewRateLimiter(rate, time.Hour)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/realms", s.handleRealms)
	mux.HandleFunc("GET /api/v1/realm/{id}", s.handleRealmDetail)
	mux.HandleFunc("GET /api/v1/realm/{id}/events", s.handleRealmEvents)
	mux.HandleFunc("GET /api/v1/events", s.handleEvents)
	mux.HandleFunc("GET /api/v1/catalog/stats", s.handleCatalogStats)
	mux.HandleFunc("POST /api/v1/render", RateLimitMiddleware(renderLimiter, s.handleRender))
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", srv.Addr)

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		slog.Info("HTTP API stopping")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	realms, err := s.DB.Realms()
	if err != nil {
		internalError(w, err)
		return
	}
	events, err := s.DB.EventCount()
	if err != nil {
		internalError(w, err)
		return
	}
	seed, _ := s.DB.GetMeta("seed")
	year, _ := s.DB.GetMeta("current_year")

	writeJSON(w, map[string]any{
		"seed":         seed,
		"current_year": year,
		"realms":       len(realms),
		"events":       events,
	})
}

func (s *Server) handleRealms(w http.ResponseWriter, r *http.Request) {
	realms, err := s.DB.Realms()
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, realms)
}

type realmDetail struct {
	*social.Realm
	Rulers []*social.Ruler `json:"rulers"`
}

func (s *Server) handleRealmDetail(w http.ResponseWriter, r *http.Request) {
	realm, ok := s.findRealm(w, r)
	if !ok {
		return
	}
	detail := realmDetail{Realm: realm}
	if realm.DynastyID != nil {
		rulers, err := s.DB.Rulers(*realm.DynastyID)
		if err != nil {
			internalError(w, err)
			return
		}
		detail.Rulers = rulers
	}
	writeJSON(w, detail)
}

func (s *Server) handleRealmEvents(w http.ResponseWriter, r *http.Request) {
	realm, ok := s.findRealm(w, r)
	if !ok {
		return
	}
	events, err := s.DB.EventsForRealm(realm.ID)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, events)
}

func (s *Server) findRealm(w http.ResponseWriter, r *http.Request) (*social.Realm, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid realm id", http.StatusBadRequest)
		return nil, false
	}
	realms, err := s.DB.Realms()
	if err != nil {
		internalError(w, err)
		return nil, false
	}
	for _, realm := range realms {
		if realm.ID == social.RealmID(id) {
			return realm, true
		}
	}
	http.Error(w, "realm not found", http.StatusNotFound)
	return nil, false
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := defaultEventLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxEventLimit)
	}
	events, err := s.DB.RecentEvents(limit)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, events)
}

func (s *Server) handleCatalogStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Engine.Catalog().Stats())
}

// renderRequest is a backstory request with context keyed by marker name,
// e.g. {"N": "Thrain", "F": "Ironhold"}.
type renderRequest struct {
	Category  string            `json:"category"`
	Key       string            `json:"key"`
	Subject   string            `json:"subject"`
	Auxiliary string            `json:"auxiliary"`
	Context   map[string]string `json:"context"`
}

type renderResponse struct {
	Title    string `json:"title"`
	Desc     string `json:"desc"`
	Template string `json:"template"`
	Fallback bool   `json:"fallback"`
	Event    string `json:"event,omitempty"`
	Aux      string `json:"aux,omitempty"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var body renderRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&body); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	category, err := backstory.ParseCategory(body.Category)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := render.Context{}
	for marker, v := range body.Context {
		tok, ok := catalog.LookupMarker(marker)
		if !ok {
			http.Error(w, fmt.Sprintf("unknown marker %q", marker), http.StatusBadRequest)
			return
		}
		ctx[tok] = v
	}

	res, err := s.Engine.ResolveAndRender(backstory.Request{
		Category:  category,
		Key:       body.Key,
		Subject:   body.Subject,
		Auxiliary: body.Auxiliary,
		Context:   ctx,
	})
	if err != nil {
		writeRenderError(w, err)
		return
	}

	writeJSON(w, renderResponse{
		Title:    res.Title,
		Desc:     res.Desc,
		Template: res.TemplateID,
		Fallback: res.Fallback,
		Event:    res.Event.String(),
		Aux:      res.Aux,
	})
}

func writeRenderError(w http.ResponseWriter, err error) {
	var (
		missing *render.MissingPlaceholderError
		cfgErr  *resolve.ConfigurationError
	)
	switch {
	case errors.Is(err, catalog.ErrInvalidKey):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &missing):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &cfgErr):
		slog.Error("catalog misconfigured", "table", cfgErr.Table, "key", cfgErr.Key)
		http.Error(w, "catalog misconfigured", http.StatusInternalServerError)
	default:
		internalError(w, err)
	}
}

func internalError(w http.ResponseWriter, err error) {
	slog.Error("api request failed", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
