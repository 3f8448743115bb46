package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/backstory/internal/backstory"
	"github.com/talgya/backstory/internal/catalog"
	"github.com/talgya/backstory/internal/chronicle"
	"github.com/talgya/backstory/internal/entropy"
	"github.com/talgya/backstory/internal/persistence"
	"github.com/talgya/backstory/internal/world"
)

func newTestServer(t *testing.T, renderRate int) (*Server, *chronicle.Chronicle) {
	t.Helper()
	db, err := persistence.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cat := catalog.MustDefault()
	cfg := chronicle.DefaultConfig()
	cfg.Realms = 2
	cfg.Years = 150
	cfg.MinSeatDistance = 3
	cfg.World = world.SmallTestConfig()
	c, err := chronicle.NewGenerator(cat, cfg, nil).Generate(context.Background())
	require.NoError(t, err)
	require.NoError(t, db.SaveChronicle(c))

	return &Server{
		DB:         db,
		Engine:     backstory.New(cat, entropy.NewSeeded(1)),
		RenderRate: renderRate,
	}, c
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.RemoteAddr = "192.0.2.7:5555"
	h.ServeHTTP(rec, req)
	return rec
}

func TestStatusAndRealms(t *testing.T) {
	s, c := newTestServer(t, 0)
	h := s.Handler()

	rec := get(t, h, "/api/v1/status")
	require.Equal(t, http.StatusOK, rec.Code)
	var status map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "42", status["seed"])
	assert.Equal(t, float64(len(c.Events)), status["events"])

	rec = get(t, h, "/api/v1/realms")
	require.Equal(t, http.StatusOK, rec.Code)
	var realms []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &realms))
	assert.Len(t, realms, len(c.Realms))
}

func TestRealmDetailAndEvents(t *testing.T) {
	s, c := newTestServer(t, 0)
	h := s.Handler()

	rec := get(t, h, "/api/v1/realm/1")
	require.Equal(t, http.StatusOK, rec.Code)
	var detail struct {
		Name   string           `json:"name"`
		Rulers []map[string]any `json:"rulers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, c.Realms[0].Name, detail.Name)
	assert.Len(t, detail.Rulers, c.Dynasties[0].Generations())

	rec = get(t, h, "/api/v1/realm/1/events")
	require.Equal(t, http.StatusOK, rec.Code)
	var events []chronicle.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	assert.Equal(t, c.EventsOf(1), events)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/v1/realm/99").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/v1/realm/first").Code)
}

func TestRecentEventsLimit(t *testing.T) {
	s, _ := newTestServer(t, 0)
	h := s.Handler()

	rec := get(t, h, "/api/v1/events?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)
	var events []chronicle.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	assert.Len(t, events, 2)
	assert.GreaterOrEqual(t, events[0].Year, events[1].Year)

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/v1/events?limit=0").Code)
}

func TestRender(t *testing.T) {
	s, _ := newTestServer(t, 0)
	h := s.Handler()

	rec := post(t, h, "/api/v1/render",
		`{"category":"founding","key":"dwarf","subject":"realm-1","context":{"N":"Thrain","F":"Ironhold","T":"Thane"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res renderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.NotEmpty(t, res.Title)
	assert.False(t, res.Fallback)
	assert.NotContains(t, res.Desc, "{")

	rec = post(t, h, "/api/v1/render",
		`{"category":"death","key":"Disease","auxiliary":"the Grey Cough","context":{"N":"Thrain the Grim","S":"Thrain","F":"Ironhold"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "the Grey Cough", res.Aux)
}

func TestRenderErrors(t *testing.T) {
	s, _ := newTestServer(t, 0)
	h := s.Handler()

	tests := []struct {
		name string
		body string
		want int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"unknown category", `{"category":"wedding"}`, http.StatusBadRequest},
		{"unknown marker", `{"category":"succession","context":{"WHO":"x"}}`, http.StatusBadRequest},
		{"bad key", `{"category":"death","key":"Boredom"}`, http.StatusBadRequest},
		{"missing value", `{"category":"succession","context":{"N":"Thrain"}}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, post(t, h, "/api/v1/render", tt.body).Code)
		})
	}
}

func TestRenderIsRateLimited(t *testing.T) {
	s, _ := newTestServer(t, 1)
	h := s.Handler()
	body := `{"category":"succession","context":{"N":"Thrain","F":"Ironhold","P":"Dain"}}`

	assert.Equal(t, http.StatusOK, post(t, h, "/api/v1/render", body).Code)
	rec := post(t, h, "/api/v1/render", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimiterWindow(t *testing.T) {
	now := time.Unix(1000, 0)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))
	assert.Equal(t, 61, rl.RetryAfter("a"))

	now = now.Add(time.Minute)
	assert.True(t, rl.Allow("a"))

	now = now.Add(3 * time.Minute)
	rl.Allow("c")
	assert.NotContains(t, rl.buckets, "b")
}

func TestClientAddr(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "198.51.100.4:8080"
	assert.Equal(t, "198.51.100.4", clientAddr(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientAddr(r))
}
