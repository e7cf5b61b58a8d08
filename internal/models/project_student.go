package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectStudent assigns a student to a project. The (project, student) pair
// is unique.
type ProjectStudent struct {
	ID         string `gorm:"type:varchar(36);primaryKey"`
	ProjectID  string `gorm:"type:varchar(36);not null;uniqueIndex:idx_project_student"`
	StudentID  string `gorm:"type:varchar(36);not null;uniqueIndex:idx_project_student;index"`
	Role       string
	AssignedAt time.Time `gorm:"not null"`

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Student Student `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (a *ProjectStudent) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
