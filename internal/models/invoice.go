package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Invoice struct {
	BaseModel
	UpdatedAt time.Time

	InvoiceNumber string          `gorm:"size:32;uniqueIndex;not null"`
	ProjectID     string          `gorm:"type:varchar(36);not null;index"`
	UserID        string          `gorm:"type:varchar(36);not null;index"`
	ClientName    string          `gorm:"not null"`
	FromDate      time.Time       `gorm:"not null"`
	ToDate        time.Time       `gorm:"not null"`
	Subtotal      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	TaxRate       decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	TaxAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Total         decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Status        InvoiceStatus   `gorm:"type:varchar(16);not null;index"`
	DueDate       *time.Time
	PaidDate      *time.Time
	Notes         string `gorm:"type:text"`

	// Relationships
	Project Project       `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	User    User          `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Items   []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// InvoiceItem is a snapshot of one billed time entry. It is never updated
// after the invoice is created; TimeEntryID is cleared if the source entry is
// deleted.
type InvoiceItem struct {
	ID          string          `gorm:"type:varchar(36);primaryKey"`
	InvoiceID   string          `gorm:"type:varchar(36);not null;index"`
	TimeEntryID *string         `gorm:"type:varchar(36);index"`
	WorkDate    time.Time       `gorm:"not null"`
	Description string          `gorm:"type:text;not null"`
	Hours       decimal.Decimal `gorm:"type:numeric(12,6);not null"`
	Rate        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null"`

	// Relationships
	TimeEntry *TimeEntry `gorm:"foreignKey:TimeEntryID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (i *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
