package store

import (
	"context"
	"time"

	"github.com/consultdesk/consultdesk/internal/models"
	"github.com/shopspring/decimal"
)

// CountProjects counts the user's projects. An empty status counts all of
// them.
func (s *Store) CountProjects(ctx context.Context, userID string, status models.ProjectStatus) (int64, error) {
	db, cancel := s.conn(ctx, false)
	defer cancel()

	q := db.Model(&models.Project{}).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, classify(err, "count projects")
	}
	return n, nil
}

func (s *Store) ProjectStatusCounts(ctx context.Context, userID string) (map[models.ProjectStatus]int64, error) {
	db, cancel := s.conn(ctx, false)
	defer cancel()

	var rows []struct {
		Status models.ProjectStatus
		Count  int64
	}
	err := db.Model(&models.Project{}).
		Select("status, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, classify(err, "count projects by status")
	}

	counts := make(map[models.ProjectStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// SumHours totals the duration of the user's stopped entries that started in
// [from, to). Zero bounds are open.
func (s *Store) SumHours(ctx context.Context, userID string, from, to time.Time) (decimal.Decimal, error) {
	db, cancel := s.conn(ctx, false)
	defer cancel()

	q := db.Model(&models.TimeEntry{}).
		Select("COALESCE(SUM(duration), 0)").
		Where("user_id = ? AND is_running = ? AND duration IS NOT NULL", userID, false)
	if !from.IsZero() {
		q = q.Where("start_time >= ?", from.UTC())
	}
	if !to.IsZero() {
		q = q.Where("start_time < ?", to.UTC())
	}

	var total decimal.Decimal
	if err := q.Row().Scan(&total); err != nil {
		return decimal.Zero, classify(err, "sum hours")
	}
	return total, nil
}

// SumInvoiceTotals adds up invoice totals. An empty status sums every
// invoice.
func (s *Store) SumInvoiceTotals(ctx context.Context, userID string, status models.InvoiceStatus) (decimal.Decimal, error) {
	db, cancel := s.conn(ctx, false)
	defer cancel()

	q := db.Model(&models.Invoice{}).
		Select("COALESCE(SUM(total), 0)").
		Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total decimal.Decimal
	if err := q.Row().Scan(&total); err != nil {
		return decimal.Zero, classify(err, "sum invoice totals")
	}
	return total, nil
}

// CountAssignedStudents counts distinct students assigned to any of the
// user's projects.
func (s *Store) CountAssignedStudents(ctx context.Context, userID string) (int64, error) {
	db, cancel := s.conn(ctx, false)
	defer cancel()

	var n int64
	err := db.Table("project_students").
		Joins("JOIN projects ON projects.id = project_students.project_id").
		Where("projects.user_id = ?", userID).
		Distinct("project_students.student_id").
		Count(&n).Error
	if err != nil {
		return 0, classify(err, "count assigned students")
	}
	return n, nil
}

// ProjectTools returns the software tool list of every project the user
// owns.
func (s *Store) ProjectTools(ctx context.Context, userID string) ([][]string, error) {
	db, cancel := s.conn(ctx, false)
	defer cancel()

	var projects []models.Project
	if err := db.Select("software_tools").Where("user_id = ?", userID).Find(&projects).Error; err != nil {
		return nil, classify(err, "list project tools")
	}

	tools := make([][]string, 0, len(projects))
	for _, p := range projects {
		tools = append(tools, p.SoftwareTools)
	}
	return tools, nil
}
