package store

import (
	"context"

	"github.com/consultdesk/consultdesk/internal/apperr"
	"github.com/consultdesk/consultdesk/internal/models"
	"gorm.io/gorm/clause"
)

func (s *Store) ListProjects(ctx context.Context, userID string) ([]models.Project, error) {
	db, cancel := s.conn(ctx, false)
	defer cancel()

	var projects []models.Project
	if err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, classify(err, "list projects")
	}
	return projects, nil
}

func (s *Store) GetProject(ctx context.Context, userID, id string) (*models.Project, error) {
	db, cancel := s.conn(ctx, false)
	defer cancel()

	var project models.Project
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&project).Error; err != nil {
		return nil, notFound(err, "Project", "fetch project")
	}
	return &project, nil
}

func (s *Store) CreateProject(ctx context.Context, p *models.Project) error {
	db, cancel := s.conn(ctx, true)
	defer cancel()

	if err := db.Omit(clause.Associations).Create(p).Error; err != nil {
		return classify(err, "create project")
	}
	return nil
}

// UpdateProject loads the project, lets apply mutate it and saves the result
// in one transaction. An error from apply aborts the update.
func (s *Store) UpdateProject(ctx context.Context, userID, id string, apply func(*models.Project) error) (*models.Project, error) {
	var out *models.Project
	err := s.Transaction(ctx, func(tx *Store) error {
		p, err := tx.GetProject(ctx, userID, id)
		if err != nil {
			return err
		}
		if err := apply(p); err != nil {
			return err
		}

		db, cancel := tx.conn(ctx, true)
		defer cancel()
		if err := db.Omit(clause.Associations).Save(p).Error; err != nil {
			return classify(err, "update project")
		}
		out = p
		return nil
	})
	return out, err
}

// DeleteProject removes a project and its student assignments. Projects that
// still have time entries or invoices cannot be deleted.
func (s *Store) DeleteProject(ctx context.Context, userID, id string) error {
	return s.Transaction(ctx, func(tx *Store) error {
		p, err := tx.GetProject(ctx, userID, id)
		if err != nil {
			return err
		}

		db, cancel := tx.conn(ctx, true)
		defer cancel()

		var entries, invoices int64
		if err := db.Model(&models.TimeEntry{}).Where("project_id = ?", p.ID).Count(&entries).Error; err != nil {
			return classify(err, "count project time entries")
		}
		if err := db.Model(&models.Invoice{}).Where("project_id = ?", p.ID).Count(&invoices).Error; err != nil {
			return classify(err, "count project invoices")
		}
		if entries > 0 || invoices > 0 {
			return apperr.Conflict("Project has %d time entries and %d invoices and cannot be deleted", entries, invoices)
		}

		if err := db.Where("project_id = ?", p.ID).Delete(&models.ProjectStudent{}).Error; err != nil {
			return classify(err, "delete project assignments")
		}
		if err := db.Where("id = ? AND user_id = ?", p.ID, userID).Delete(&models.Project{}).Error; err != nil {
			if isForeignKeyViolation(err) {
				return apperr.Conflict("Project is referenced by time entries or invoices and cannot be deleted")
			}
			return classify(err, "delete project")
		}
		return nil
	})
}
