package store

import (
	"context"

	"github.com/consultdesk/consultdesk/internal/apperr"
	"github.com/consultdesk/consultdesk/internal/models"
	"gorm.io/gorm/clause"
)

func (s *Store) ListStudents(ctx context.Context, userID string) ([]models.Student, error) {
	db, cancel := s.conn(ctx, false)
	defer cancel()

	var students []models.Student
	if err := db.Where("user_id = ?", userID).Order("name ASC").Find(&students).Error; err != nil {
		return nil, classify(err, "list students")
	}
	return students, nil
}

func (s *Store) GetStudent(ctx context.Context, userID, id string) (*models.Student, error) {
	db, cancel := s.conn(ctx, false)
	defer cancel()

	var student models.Student
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&student).Error; err != nil {
		return nil, notFound(err, "Student", "fetch student")
	}
	return &student, nil
}

func (s *Store) CreateStudent(ctx context.Context, st *models.Student) error {
	db, cancel := s.conn(ctx, true)
	defer cancel()

	if err := db.Omit(clause.Associations).Create(st).Error; err != nil {
		if isDuplicateKey(err) {
			return apperr.Conflict("A student with email %s already exists", st.Email)
		}
		return classify(err, "create student")
	}
	return nil
}

func (s *Store) UpdateStudent(ctx context.Context, userID, id string, apply func(*models.Student) error) (*models.Student, error) {
	var out *models.Student
	err := s.Transaction(ctx, func(tx *Store) error {
		st, err := tx.GetStudent(ctx, userID, id)
		if err != nil {
			return err
		}
		if err := apply(st); err != nil {
			return err
		}

		db, cancel := tx.conn(ctx, true)
		defer cancel()
		if err := db.Omit(clause.Associations).Save(st).Error; err != nil {
			if isDuplicateKey(err) {
				return apperr.Conflict("A student with email %s already exists", st.Email)
			}
			return classify(err, "update student")
		}
		out = st
		return nil
	})
	return out, err
}

// DeleteStudent removes the student together with its project assignments.
func (s *Store) DeleteStudent(ctx context.Context, userID, id string) error {
	return s.Transaction(ctx, func(tx *Store) error {
		st, err := tx.GetStudent(ctx, userID, id)
		if err != nil {
			return err
		}

		db, cancel := tx.conn(ctx, true)
		defer cancel()
		if err := db.Where("student_id = ?", st.ID).Delete(&models.ProjectStudent{}).Error; err != nil {
			return classify(err, "delete student assignments")
		}
		if err := db.Where("id = ? AND user_id = ?", st.ID, userID).Delete(&models.Student{}).Error; err != nil {
			return classify(err, "delete student")
		}
		return nil
	})
}

// ListProjectStudents returns the assignments of a project with their
// students loaded.
func (s *Store) ListProjectStudents(ctx context.Context, userID, projectID string) ([]models.ProjectStudent, error) {
	if _, err := s.GetProject(ctx, userID, projectID); err != nil {
		return nil, err
	}

	db, cancel := s.conn(ctx, false)
	defer cancel()

	var assignments []models.ProjectStudent
	err := db.Preload("Student").
		Where("project_id = ?", projectID).
		Order("assigned_at ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, classify(err, "list project students")
	}
	return assignments, nil
}

// AssignStudent links a student to a project. Both must belong to userID and
// the pair must not already be assigned.
func (s *Store) AssignStudent(ctx context.Context, userID string, a *models.ProjectStudent) error {
	return s.Transaction(ctx, func(tx *Store) error {
		if _, err := tx.GetProject(ctx, userID, a.ProjectID); err != nil {
			return err
		}
		st, err := tx.GetStudent(ctx, userID, a.StudentID)
		if err != nil {
			return err
		}

		db, cancel := tx.conn(ctx, true)
		defer cancel()
		if err := db.Omit(clause.Associations).Create(a).Error; err != nil {
			if isDuplicateKey(err) {
				return apperr.Conflict("Student is already assigned to this project")
			}
			return classify(err, "assign student")
		}
		a.Student = *st
		return nil
	})
}

func (s *Store) RemoveStudent(ctx context.Context, userID, projectID, studentID string) error {
	return s.Transaction(ctx, func(tx *Store) error {
		if _, err := tx.GetProject(ctx, userID, projectID); err != nil {
			return err
		}

		db, cancel := tx.conn(ctx, true)
		defer cancel()
		res := db.Where("project_id = ? AND student_id = ?", projectID, studentID).Delete(&models.ProjectStudent{})
		if res.Error != nil {
			return classify(res.Error, "remove student")
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("Student is not assigned to this project")
		}
		return nil
	})
}
