package billing

import (
	"github.com/consultdesk/consultdesk/internal/models"
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the precision money is stored and shown with.
const MoneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// Totals holds unrounded invoice sums.
type Totals struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// ComputeTotals sums duration times rate over the billable entries and
// applies a tax rate given in percent. Nothing is rounded.
func ComputeTotals(entries []models.TimeEntry, hourlyRate, taxRatePercent decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for i := range entries {
		if !entries[i].Billable() {
			continue
		}
		subtotal = subtotal.Add(entries[i].Duration.Decimal.Mul(hourlyRate))
	}

	tax := subtotal.Mul(taxRatePercent).Div(hundred)
	return Totals{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     subtotal.Add(tax),
	}
}

// Rounded returns the totals rounded to cents.
func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal:  t.Subtotal.Round(MoneyPlaces),
		TaxAmount: t.TaxAmount.Round(MoneyPlaces),
		Total:     t.Total.Round(MoneyPlaces),
	}
}

// BuildItems snapshots each billable entry as an invoice item.
func BuildItems(entries []models.TimeEntry, hourlyRate decimal.Decimal) []models.InvoiceItem {
	items := make([]models.InvoiceItem, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		if !e.Billable() {
			continue
		}
		id := e.ID
		items = append(items, models.InvoiceItem{
			TimeEntryID: &id,
			WorkDate:    e.StartTime.UTC(),
			Description: e.Description,
			Hours:       e.Duration.Decimal,
			Rate:        hourlyRate,
			Amount:      e.Duration.Decimal.Mul(hourlyRate).Round(MoneyPlaces),
		})
	}
	return items
}
