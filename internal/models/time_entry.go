package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// TimeEntry is one span of work on a project. Duration is in hours and is
// only set once the entry is stopped.
type TimeEntry struct {
	BaseModel

	ProjectID           string    `gorm:"type:varchar(36);not null;index"`
	UserID              string    `gorm:"type:varchar(36);not null;index"`
	Description         string    `gorm:"type:text;not null"`
	StartTime           time.Time `gorm:"not null;index"`
	EndTime             *time.Time
	Duration            decimal.NullDecimal `gorm:"type:numeric(12,6)"`
	IsRunning           bool                `gorm:"not null"`
	SoftwareUsed        datatypes.JSONSlice[string]
	ProblemsEncountered string `gorm:"type:text"`

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// Billable reports whether the entry can be put on an invoice.
func (e *TimeEntry) Billable() bool {
	return !e.IsRunning && e.Duration.Valid
}
