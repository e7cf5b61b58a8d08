package handlers_test

import (
	"net/http"
	"testing"

	"github.com/consultdesk/consultdesk/internal/handlers"
	"github.com/consultdesk/consultdesk/internal/storetest"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/health", nil)
	expectStatus(t, rec, http.StatusOK)
}

func TestProjectLifecycle(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/projects", map[string]interface{}{
		"name":          "Thesis statistics",
		"clientName":    "Dr. Rivera",
		"hourlyRate":    "120",
		"startDate":     "2026-03-01",
		"softwareTools": []string{"R", "SPSS", "R"},
	})
	expectStatus(t, rec, http.StatusCreated)

	var created handlers.ProjectResponse
	decode(t, rec, &created)
	if created.HourlyRate != "120.00" || created.Status != "active" {
		t.Fatalf("unexpected project: %+v", created)
	}
	if diff := cmp.Diff([]string{"R", "SPSS"}, created.SoftwareTools); diff != "" {
		t.Fatalf("software tools mismatch (-want +got):\n%s", diff)
	}
	if created.StartDate == nil || created.StartDate.String() != "2026-03-01" {
		t.Fatalf("start date: got %v", created.StartDate)
	}

	rec = ts.do(t, http.MethodGet, "/api/projects", nil)
	expectStatus(t, rec, http.StatusOK)
	var list []handlers.ProjectResponse
	decode(t, rec, &list)
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("list: got %+v", list)
	}

	path := "/api/projects/" + created.ID
	rec = ts.do(t, http.MethodPut, path, map[string]interface{}{"status": "completed", "hourlyRate": 135.5})
	expectStatus(t, rec, http.StatusOK)
	var updated handlers.ProjectResponse
	decode(t, rec, &updated)
	if updated.Status != "completed" || updated.HourlyRate != "135.50" || updated.Name != created.Name {
		t.Fatalf("unexpected update: %+v", updated)
	}

	rec = ts.do(t, http.MethodPut, path, map[string]interface{}{"status": "on-hold"})
	expectStatus(t, rec, http.StatusConflict)

	rec = ts.do(t, http.MethodPut, path, map[string]interface{}{"status": "archived"})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = ts.do(t, http.MethodDelete, path, nil)
	expectStatus(t, rec, http.StatusNoContent)

	rec = ts.do(t, http.MethodGet, path, nil)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestCreateProjectValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing client", map[string]interface{}{"name": "A", "hourlyRate": 10}},
		{"negative rate", map[string]interface{}{"name": "A", "clientName": "B", "hourlyRate": -1}},
		{"bad status", map[string]interface{}{"name": "A", "clientName": "B", "status": "done"}},
		{"deadline first", map[string]interface{}{"name": "A", "clientName": "B", "startDate": "2026-03-10", "deadline": "2026-03-01"}},
		{"bad date", map[string]interface{}{"name": "A", "clientName": "B", "startDate": "03/10/2026"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/api/projects", tt.body)
			expectStatus(t, rec, http.StatusBadRequest)
			if message(t, rec) == "" {
				t.Fatal("error body has no message")
			}
		})
	}
}

func TestProjectPathIDMustBeUUID(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/projects/42", nil)
	expectStatus(t, rec, http.StatusBadRequest)
	if got := message(t, rec); got != "Invalid Project ID" {
		t.Fatalf("message: got %q", got)
	}

	rec = ts.do(t, http.MethodGet, "/api/projects/"+uuid.NewString(), nil)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestDeleteProjectWithTimeEntriesConflicts(t *testing.T) {
	ts := newTestServer(t)
	p := storetest.Project(t, ts.store, ts.user.ID, "Survey", "80")
	storetest.StoppedEntry(t, ts.store, ts.user.ID, p.ID, ts.clock.Now(), "1")

	rec := ts.do(t, http.MethodDelete, "/api/projects/"+p.ID, nil)
	expectStatus(t, rec, http.StatusConflict)
}

func TestProjectsOfOtherUsersAreHidden(t *testing.T) {
	ts := newTestServer(t)
	other := storetest.User(t, ts.store, "other")
	p := storetest.Project(t, ts.store, other.ID, "Private", "50")

	rec := ts.do(t, http.MethodGet, "/api/projects/"+p.ID, nil)
	expectStatus(t, rec, http.StatusNotFound)

	rec = ts.do(t, http.MethodGet, "/api/projects", nil)
	expectStatus(t, rec, http.StatusOK)
	if rec.Body.String() != "[]" {
		t.Fatalf("list: got %s, want []", rec.Body.String())
	}
}
