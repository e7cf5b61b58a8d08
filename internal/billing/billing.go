// Package billing turns stopped time entries into invoices: billable
// selection, totals, invoice numbers, atomic creation, status transitions
// and PDF rendering.
package billing

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/consultdesk/consultdesk/internal/apperr"
	"github.com/consultdesk/consultdesk/internal/models"
	"github.com/consultdesk/consultdesk/internal/store"
	"github.com/consultdesk/consultdesk/internal/types"
	"github.com/shopspring/decimal"
)

// MaxNumberAttempts bounds how often invoice creation is retried after an
// invoice number collision.
const MaxNumberAttempts = 5

var maxTaxRate = decimal.NewFromInt(100)

// Notifier is told when an invoice changes status.
type Notifier interface {
	InvoiceStatusChanged(inv models.Invoice, from models.InvoiceStatus)
}

type Service struct {
	store    *store.Store
	loc      *time.Location
	now      func() time.Time
	notifier Notifier

	mu  sync.Mutex
	rnd *rand.Rand
}

type Option func(*Service)

// WithLocation sets the business time zone used for calendar dates.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		s.loc = loc
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithRand sets the source of invoice number suffixes.
func WithRand(r *rand.Rand) Option {
	return func(s *Service) {
		s.rnd = r
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

func New(st *store.Store, opts ...Option) *Service {
	s := &Service{
		store: st,
		loc:   time.UTC,
		now:   time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) nextNumber() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return GenerateInvoiceNumber(s.now().In(s.loc), s.rnd)
}

type CreateInput struct {
	ProjectID string
	From      types.Date
	To        types.Date
	TaxRate   decimal.Decimal
	Notes     string
	DueDate   *types.Date
}

func (in CreateInput) validate() error {
	if strings.TrimSpace(in.ProjectID) == "" {
		return apperr.Validation("Project ID is required")
	}
	if in.From.IsZero() || in.To.IsZero() {
		return apperr.Validation("From and to dates are required")
	}
	if in.To.Before(in.From) {
		return apperr.Validation("To date %s is before from date %s", in.To, in.From)
	}
	if in.TaxRate.IsNegative() || in.TaxRate.GreaterThan(maxTaxRate) {
		return apperr.Validation("Tax rate must be between 0 and 100")
	}
	return nil
}

// SelectBillableEntries returns the stopped entries of a project whose start
// falls on a calendar day in [from, to] in the business time zone.
func (s *Service) SelectBillableEntries(ctx context.Context, userID, projectID string, from, to types.Date) ([]models.TimeEntry, error) {
	return s.selectBillable(ctx, s.store, userID, projectID, from, to)
}

func (s *Service) selectBillable(ctx context.Context, st *store.Store, userID, projectID string, from, to types.Date) ([]models.TimeEntry, error) {
	return st.BillableEntries(ctx, userID, projectID, from.In(s.loc), to.AddDays(1).In(s.loc))
}

// draft builds an unsaved invoice with its items. It fails before anything
// is written when the range has no billable hours.
func (s *Service) draft(ctx context.Context, st *store.Store, userID string, in CreateInput) (*models.Invoice, error) {
	project, err := st.GetProject(ctx, userID, in.ProjectID)
	if err != nil {
		return nil, err
	}

	entries, err := s.selectBillable(ctx, st, userID, project.ID, in.From, in.To)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, apperr.BusinessRule("No billable hours in range %s to %s", in.From, in.To)
	}

	totals := ComputeTotals(entries, project.HourlyRate, in.TaxRate).Rounded()
	inv := &models.Invoice{
		ProjectID:  project.ID,
		UserID:     userID,
		ClientName: project.ClientName,
		FromDate:   in.From.In(time.UTC),
		ToDate:     in.To.In(time.UTC),
		Subtotal:   totals.Subtotal,
		TaxRate:    in.TaxRate,
		TaxAmount:  totals.TaxAmount,
		Total:      totals.Total,
		Status:     models.InvoiceDraft,
		Notes:      strings.TrimSpace(in.Notes),
		Project:    *project,
		Items:      BuildItems(entries, project.HourlyRate),
	}
	if in.DueDate != nil {
		due := in.DueDate.In(time.UTC)
		inv.DueDate = &due
	}
	return inv, nil
}

// Preview computes the invoice Create would produce without saving it.
func (s *Service) Preview(ctx context.Context, userID string, in CreateInput) (*models.Invoice, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	inv, err := s.draft(ctx, s.store, userID, in)
	if err != nil {
		return nil, err
	}
	inv.CreatedAt = s.now().UTC()
	return inv, nil
}

// Create selects the billable entries, computes totals and writes the
// invoice with its items in one transaction. An invoice number collision
// retries the whole transaction with a fresh number.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*models.Invoice, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= MaxNumberAttempts; attempt++ {
		inv, err := s.create(ctx, userID, in)
		if err == nil {
			log.Infof("Created invoice %s for project %s (%s)", inv.InvoiceNumber, inv.ProjectID, inv.Total.StringFixed(MoneyPlaces))
			return s.store.GetInvoice(ctx, userID, inv.ID)
		}
		if !apperr.IsRetryable(err) {
			return nil, err
		}
		log.Warnf("Invoice number collision on attempt %d/%d: %v", attempt, MaxNumberAttempts, err)
	}

	return nil, apperr.RetryableConflict("Could not allocate a unique invoice number after %d attempts", MaxNumberAttempts)
}

func (s *Service) create(ctx context.Context, userID string, in CreateInput) (*models.Invoice, error) {
	var inv *models.Invoice
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		d, err := s.draft(ctx, tx, userID, in)
		if err != nil {
			return err
		}
		d.InvoiceNumber = s.nextNumber()
		if err := tx.InsertInvoice(ctx, d); err != nil {
			return err
		}
		inv = d
		return nil
	})
	return inv, err
}

type UpdateInput struct {
	Status   *string
	DueDate  *types.Date
	PaidDate *types.Date
	Notes    *string
}

// Update changes the invoice header. Status moves follow the transition
// table and moving to paid without a paid date stamps today.
func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput) (*models.Invoice, error) {
	var from models.InvoiceStatus
	inv, err := s.store.UpdateInvoice(ctx, userID, id, func(inv *models.Invoice) error {
		from = inv.Status

		if in.Status != nil {
			next, err := models.ParseInvoiceStatus(*in.Status)
			if err != nil {
				return apperr.Validation("Invalid invoice status %q", *in.Status)
			}
			if !inv.Status.CanTransition(next) {
				return apperr.Conflict("Invoice cannot move from %s to %s", inv.Status, next)
			}
			inv.Status = next
		}
		if in.DueDate != nil {
			due := in.DueDate.In(time.UTC)
			inv.DueDate = &due
		}
		if in.PaidDate != nil {
			paid := in.PaidDate.In(time.UTC)
			inv.PaidDate = &paid
		}
		if inv.Status == models.InvoicePaid && inv.PaidDate == nil {
			today := types.DateOf(s.now(), s.loc).In(time.UTC)
			inv.PaidDate = &today
		}
		if in.Notes != nil {
			inv.Notes = strings.TrimSpace(*in.Notes)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if inv.Status != from {
		log.Infof("Invoice %s moved from %s to %s", inv.InvoiceNumber, from, inv.Status)
		if s.notifier != nil && (inv.Status == models.InvoiceSent || inv.Status == models.InvoicePaid) {
			s.notifier.InvoiceStatusChanged(*inv, from)
		}
	}
	return inv, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.store.DeleteInvoice(ctx, userID, id)
}
