package store

import (
	"context"

	"github.com/consultdesk/consultdesk/internal/apperr"
	"github.com/consultdesk/consultdesk/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func orderItems(db *gorm.DB) *gorm.DB {
	return db.Order("work_date ASC")
}

func (s *Store) ListInvoices(ctx context.Context, userID string) ([]models.Invoice, error) {
	db, cancel := s.conn(ctx, false)
	defer cancel()

	var invoices []models.Invoice
	err := db.Preload("Project").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&invoices).Error
	if err != nil {
		return nil, classify(err, "list invoices")
	}
	return invoices, nil
}

// GetInvoice returns an invoice with its project and items loaded.
func (s *Store) GetInvoice(ctx context.Context, userID, id string) (*models.Invoice, error) {
	db, cancel := s.conn(ctx, false)
	defer cancel()

	var invoice models.Invoice
	err := db.Preload("Project").
		Preload("Items", orderItems).
		Where("id = ? AND user_id = ?", id, userID).
		First(&invoice).Error
	if err != nil {
		return nil, notFound(err, "Invoice", "fetch invoice")
	}
	return &invoice, nil
}

// InsertInvoice writes the invoice header and its items atomically. A
// collision on the invoice number is reported as a retryable conflict.
func (s *Store) InsertInvoice(ctx context.Context, inv *models.Invoice) error {
	return s.Transaction(ctx, func(tx *Store) error {
		db, cancel := tx.conn(ctx, true)
		defer cancel()

		if err := db.Omit(clause.Associations).Create(inv).Error; err != nil {
			if isDuplicateKey(err) {
				return apperr.RetryableConflict("Invoice number %s already exists", inv.InvoiceNumber)
			}
			return classify(err, "create invoice")
		}

		if len(inv.Items) == 0 {
			return nil
		}
		for i := range inv.Items {
			inv.Items[i].InvoiceID = inv.ID
		}
		if err := db.Omit(clause.Associations).Create(&inv.Items).Error; err != nil {
			return classify(err, "create invoice items")
		}
		return nil
	})
}

// UpdateInvoice applies changes to the invoice header. Items are never
// touched.
func (s *Store) UpdateInvoice(ctx context.Context, userID, id string, apply func(*models.Invoice) error) (*models.Invoice, error) {
	var out *models.Invoice
	err := s.Transaction(ctx, func(tx *Store) error {
		inv, err := tx.GetInvoice(ctx, userID, id)
		if err != nil {
			return err
		}
		if err := apply(inv); err != nil {
			return err
		}

		db, cancel := tx.conn(ctx, true)
		defer cancel()
		if err := db.Omit(clause.Associations).Save(inv).Error; err != nil {
			return classify(err, "update invoice")
		}
		out = inv
		return nil
	})
	return out, err
}

// DeleteInvoice removes the invoice and its items. The billed time entries
// are left alone.
func (s *Store) DeleteInvoice(ctx context.Context, userID, id string) error {
	return s.Transaction(ctx, func(tx *Store) error {
		inv, err := tx.GetInvoice(ctx, userID, id)
		if err != nil {
			return err
		}

		db, cancel := tx.conn(ctx, true)
		defer cancel()
		if err := db.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return classify(err, "delete invoice items")
		}
		if err := db.Where("id = ? AND user_id = ?", inv.ID, userID).Delete(&models.Invoice{}).Error; err != nil {
			return classify(err, "delete invoice")
		}
		return nil
	})
}
