package billing

import (
	"time"

	"github.com/consultdesk/consultdesk/internal/models"
	"github.com/consultdesk/consultdesk/internal/types"
	"github.com/shopspring/decimal"
)

// Sender is the consultant block printed on invoices.
type Sender struct {
	Name    string
	Title   string
	Address string
	Email   string
}

type ItemView struct {
	Date        types.Date
	Description string
	Hours       decimal.Decimal
	Rate        decimal.Decimal
	Amount      decimal.Decimal
}

// InvoiceView is everything a rendered invoice shows, already computed.
type InvoiceView struct {
	Number      string
	IssuedOn    types.Date
	Status      models.InvoiceStatus
	Sender      Sender
	ClientName  string
	ProjectName string
	From        types.Date
	To          types.Date
	Items       []ItemView
	Subtotal    decimal.Decimal
	TaxRate     decimal.Decimal
	TaxAmount   decimal.Decimal
	Total       decimal.Decimal
	Notes       string
	DueDate     *types.Date
}

// NewView flattens a loaded invoice for rendering. Stored dates are midnight
// UTC; timestamps are shown in loc.
func NewView(inv *models.Invoice, sender Sender, loc *time.Location) InvoiceView {
	v := InvoiceView{
		Number:      inv.InvoiceNumber,
		IssuedOn:    types.DateOf(inv.CreatedAt, loc),
		Status:      inv.Status,
		Sender:      sender,
		ClientName:  inv.ClientName,
		ProjectName: inv.Project.Name,
		From:        types.DateOf(inv.FromDate, time.UTC),
		To:          types.DateOf(inv.ToDate, time.UTC),
		Subtotal:    inv.Subtotal,
		TaxRate:     inv.TaxRate,
		TaxAmount:   inv.TaxAmount,
		Total:       inv.Total,
		Notes:       inv.Notes,
	}
	if inv.DueDate != nil {
		due := types.DateOf(*inv.DueDate, time.UTC)
		v.DueDate = &due
	}
	for _, it := range inv.Items {
		v.Items = append(v.Items, ItemView{
			Date:        types.DateOf(it.WorkDate, loc),
			Description: it.Description,
			Hours:       it.Hours,
			Rate:        it.Rate,
			Amount:      it.Amount,
		})
	}
	return v
}
