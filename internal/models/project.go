package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Project struct {
	BaseModel
	UpdatedAt time.Time

	Name           string              `gorm:"not null"`
	Description    string              `gorm:"type:text"`
	ClientName     string              `gorm:"not null"`
	HourlyRate     decimal.Decimal     `gorm:"type:numeric(12,2);not null"`
	EstimatedHours decimal.NullDecimal `gorm:"type:numeric(12,2)"`
	Status         ProjectStatus       `gorm:"type:varchar(16);not null;index"`
	StartDate      *time.Time
	Deadline       *time.Time
	SoftwareTools  datatypes.JSONSlice[string]
	UserID         string `gorm:"type:varchar(36);not null;index"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
