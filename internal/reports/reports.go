// Package reports computes the dashboard metrics and the reporting summary.
// Every figure is recomputed from the store on each call.
package reports

import (
	"context"
	"sort"
	"time"

	"github.com/consultdesk/consultdesk/internal/models"
	"github.com/consultdesk/consultdesk/internal/store"
	"github.com/shopspring/decimal"
)

const topToolsLimit = 5

type Service struct {
	store *store.Store
	loc   *time.Location
	now   func() time.Time
}

func New(st *store.Store, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: st, loc: loc, now: time.Now}
}

// SetClock replaces time.Now, for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// MonthRange returns the half-open range covering the calendar month of now
// in loc.
func MonthRange(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

type DashboardMetrics struct {
	ActiveProjects        int64
	HoursThisMonth        decimal.Decimal
	PendingInvoicesAmount decimal.Decimal
	StudentsAssigned      int64
}

func (s *Service) Dashboard(ctx context.Context, userID string) (*DashboardMetrics, error) {
	var (
		m   DashboardMetrics
		err error
	)

	if m.ActiveProjects, err = s.store.CountProjects(ctx, userID, models.ProjectActive); err != nil {
		return nil, err
	}

	from, to := MonthRange(s.now(), s.loc)
	if m.HoursThisMonth, err = s.store.SumHours(ctx, userID, from, to); err != nil {
		return nil, err
	}
	if m.PendingInvoicesAmount, err = s.store.SumInvoiceTotals(ctx, userID, models.InvoiceSent); err != nil {
		return nil, err
	}
	if m.StudentsAssigned, err = s.store.CountAssignedStudents(ctx, userID); err != nil {
		return nil, err
	}
	return &m, nil
}

type ToolUsage struct {
	Name     string
	Projects int
}

type Summary struct {
	TotalProjects     int64
	ActiveProjects    int64
	CompletedProjects int64
	ProjectsByStatus  map[models.ProjectStatus]int64
	TotalHours        decimal.Decimal
	TotalRevenue      decimal.Decimal
	PaidRevenue       decimal.Decimal
	PendingRevenue    decimal.Decimal
	TopTools          []ToolUsage
}

// Summary aggregates projects, hours, revenue and tool usage. Cancelled
// invoices do not count as revenue.
func (s *Service) Summary(ctx context.Context, userID string) (*Summary, error) {
	byStatus, err := s.store.ProjectStatusCounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		ProjectsByStatus:  byStatus,
		ActiveProjects:    byStatus[models.ProjectActive],
		CompletedProjects: byStatus[models.ProjectCompleted],
	}
	for _, n := range byStatus {
		sum.TotalProjects += n
	}

	if sum.TotalHours, err = s.store.SumHours(ctx, userID, time.Time{}, time.Time{}); err != nil {
		return nil, err
	}

	all, err := s.store.SumInvoiceTotals(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	cancelled, err := s.store.SumInvoiceTotals(ctx, userID, models.InvoiceCancelled)
	if err != nil {
		return nil, err
	}
	sum.TotalRevenue = all.Sub(cancelled)
	if sum.PaidRevenue, err = s.store.SumInvoiceTotals(ctx, userID, models.InvoicePaid); err != nil {
		return nil, err
	}
	if sum.PendingRevenue, err = s.store.SumInvoiceTotals(ctx, userID, models.InvoiceSent); err != nil {
		return nil, err
	}

	tools, err := s.store.ProjectTools(ctx, userID)
	if err != nil {
		return nil, err
	}
	sum.TopTools = TopTools(tools, topToolsLimit)
	return sum, nil
}

// TopTools counts in how many projects each tool appears and returns the
// most used ones, ties broken by name.
func TopTools(perProject [][]string, limit int) []ToolUsage {
	counts := make(map[string]int)
	for _, tools := range perProject {
		seen := make(map[string]struct{}, len(tools))
		for _, t := range tools {
			if _, ok := seen[t]; ok || t == "" {
				continue
			}
			seen[t] = struct{}{}
			counts[t]++
		}
	}

	usage := make([]ToolUsage, 0, len(counts))
	for name, n := range counts {
		usage = append(usage, ToolUsage{Name: name, Projects: n})
	}
	sort.Slice(usage, func(i, j int) bool {
		if usage[i].Projects != usage[j].Projects {
			return usage[i].Projects > usage[j].Projects
		}
		return usage[i].Name < usage[j].Name
	})
	if len(usage) > limit {
		usage = usage[:limit]
	}
	return usage
}
