package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/consultdesk/consultdesk/internal/billing"
	"github.com/consultdesk/consultdesk/internal/handlers"
	"github.com/consultdesk/consultdesk/internal/models"
	"github.com/consultdesk/consultdesk/internal/reports"
	"github.com/consultdesk/consultdesk/internal/router"
	"github.com/consultdesk/consultdesk/internal/store"
	"github.com/consultdesk/consultdesk/internal/storetest"
	"github.com/consultdesk/consultdesk/internal/timetrack"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testServer struct {
	store  *store.Store
	user   *models.User
	clock  *fakeClock
	hub    *handlers.Hub
	engine *gin.Engine
}

// newTestServer wires the full router over a sqlite store with demo mode
// resolving to the seeded user.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	s := storetest.New(t)
	u := storetest.User(t, s, "demo")
	clock := &fakeClock{now: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)}

	rep := reports.New(s, time.UTC)
	rep.SetClock(clock.Now)
	hub := handlers.NewHub([]string{"*"})
	t.Cleanup(hub.Close)

	h := handlers.New(handlers.Options{
		Store:   s,
		Timer:   timetrack.New(s, timetrack.WithClock(clock.Now)),
		Billing: billing.New(s, billing.WithClock(clock.Now)),
		Reports: rep,
		Hub:     hub,
		Sender:  billing.Sender{Name: "Demo Consultant", Email: "demo@example.com"},
	})

	engine := router.NewRouter(h, router.Config{
		Users:          s,
		DemoUsername:   u.Username,
		AllowedOrigins: []string{"http://localhost:5173"},
	})

	return &testServer{store: s, user: u, clock: clock, hub: hub, engine: engine}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)
	return rec
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status: got %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	decode(t, rec, &body)
	return body.Message
}
