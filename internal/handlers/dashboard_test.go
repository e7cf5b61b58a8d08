package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/consultdesk/consultdesk/internal/handlers"
	"github.com/consultdesk/consultdesk/internal/models"
	"github.com/consultdesk/consultdesk/internal/storetest"
	"github.com/google/go-cmp/cmp"
)

func TestDashboardAndSummary(t *testing.T) {
	ts := newTestServer(t)
	p := storetest.Project(t, ts.store, ts.user.ID, "Thesis", "100")
	done := storetest.Project(t, ts.store, ts.user.ID, "Survey", "80")
	if err := ts.store.DB().Model(done).Update("status", models.ProjectCompleted).Error; err != nil {
		t.Fatalf("complete project: %v", err)
	}
	st := storetest.Student(t, ts.store, ts.user.ID, "lee")

	rec := ts.do(t, http.MethodPost, "/api/projects/"+p.ID+"/students", map[string]interface{}{"studentId": st.ID})
	expectStatus(t, rec, http.StatusCreated)

	storetest.StoppedEntry(t, ts.store, ts.user.ID, p.ID, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), "2")
	storetest.StoppedEntry(t, ts.store, ts.user.ID, p.ID, time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC), "1")

	rec = ts.do(t, http.MethodPost, "/api/invoices", map[string]interface{}{
		"projectId": p.ID, "fromDate": "2026-03-01", "toDate": "2026-03-01",
	})
	expectStatus(t, rec, http.StatusCreated)
	var inv handlers.InvoiceResponse
	decode(t, rec, &inv)
	rec = ts.do(t, http.MethodPut, "/api/invoices/"+inv.ID, map[string]interface{}{"status": "sent"})
	expectStatus(t, rec, http.StatusOK)

	rec = ts.do(t, http.MethodGet, "/api/dashboard/metrics", nil)
	expectStatus(t, rec, http.StatusOK)
	var m handlers.DashboardMetricsResponse
	decode(t, rec, &m)
	want := handlers.DashboardMetricsResponse{
		ActiveProjects:        1,
		HoursThisMonth:        "2.00",
		PendingInvoicesAmount: "200.00",
		StudentsAssigned:      1,
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Fatalf("metrics mismatch (-want +got):\n%s", diff)
	}

	rec = ts.do(t, http.MethodGet, "/api/reports/summary", nil)
	expectStatus(t, rec, http.StatusOK)
	var sum handlers.ReportSummaryResponse
	decode(t, rec, &sum)
	if sum.TotalProjects != 2 || sum.CompletedProjects != 1 || sum.TotalHours != "3.00" {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if sum.TotalRevenue != "200.00" || sum.PendingRevenue != "200.00" || sum.PaidRevenue != "0.00" {
		t.Fatalf("unexpected revenue: %+v", sum)
	}
	if sum.ProjectsByStatus["active"] != 1 || sum.TopTools == nil {
		t.Fatalf("unexpected breakdown: %+v", sum)
	}
}
