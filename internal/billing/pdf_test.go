package billing

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/consultdesk/consultdesk/internal/models"
	"github.com/consultdesk/consultdesk/internal/types"
	"github.com/shopspring/decimal"
)

func TestFormatMoney(t *testing.T) {
	tests := map[string]string{
		"0":       "$0.00",
		"12.5":    "$12.50",
		"379.755": "$379.76",
		"-4.1":    "-$4.10",
	}
	for in, want := range tests {
		if got := FormatMoney(dec(in)); got != want {
			t.Errorf("FormatMoney(%s): got %q, want %q", in, got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	short := "Data cleaning"
	if got := truncate(short); got != short {
		t.Fatalf("short: got %q", got)
	}

	long := strings.Repeat("é", 45)
	got := truncate(long)
	if want := strings.Repeat("é", 37) + "..."; got != want {
		t.Fatalf("long: got %q, want %q", got, want)
	}
}

func TestNewView(t *testing.T) {
	created := time.Date(2024, 3, 8, 3, 0, 0, 0, time.UTC)
	due := time.Date(2024, 4, 7, 0, 0, 0, 0, time.UTC)
	inv := &models.Invoice{
		InvoiceNumber: "INV-20240308-001",
		ClientName:    "Acme Labs",
		FromDate:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		ToDate:        time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
		DueDate:       &due,
		Project:       models.Project{Name: "Survey analysis"},
		Items: []models.InvoiceItem{{
			WorkDate:    time.Date(2024, 3, 2, 2, 0, 0, 0, time.UTC),
			Description: "Cleaning",
			Hours:       dec("1.5"),
			Rate:        dec("100"),
			Amount:      dec("150"),
		}},
	}
	inv.CreatedAt = created

	est := time.FixedZone("EST", -5*60*60)
	v := NewView(inv, Sender{Name: "Dr. Sarah Chen"}, est)

	if v.IssuedOn != mustDate(t, "2024-03-07") {
		t.Fatalf("issued on: got %s", v.IssuedOn)
	}
	if v.From != mustDate(t, "2024-03-01") || v.To != mustDate(t, "2024-03-07") {
		t.Fatalf("period: got %s to %s", v.From, v.To)
	}
	if len(v.Items) != 1 || v.Items[0].Date != mustDate(t, "2024-03-01") {
		t.Fatalf("item date should be shown in business zone: %+v", v.Items)
	}
	if v.DueDate == nil || *v.DueDate != mustDate(t, "2024-04-07") {
		t.Fatalf("due date: got %v", v.DueDate)
	}
	if v.ProjectName != "Survey analysis" {
		t.Fatalf("project name: got %q", v.ProjectName)
	}
}

func TestRenderPDF(t *testing.T) {
	due := mustDate(t, "2024-04-07")
	v := InvoiceView{
		Number:      "INV-20240308-001",
		IssuedOn:    mustDate(t, "2024-03-08"),
		Status:      models.InvoiceDraft,
		Sender:      Sender{Name: "Dr. Sarah Chen", Title: "Statistical Consultant", Address: "123 University Ave", Email: "sarah.chen@example.com"},
		ClientName:  "Acme Labs",
		ProjectName: "Survey analysis",
		From:        mustDate(t, "2024-03-01"),
		To:          mustDate(t, "2024-03-31"),
		Subtotal:    decimal.Zero,
		TaxRate:     dec("8.5"),
		Notes:       "Net 30",
		DueDate:     &due,
	}
	// Enough rows to spill onto a second page.
	for i := 0; i < 80; i++ {
		v.Items = append(v.Items, ItemView{
			Date:        types.Date{Year: 2024, Month: time.March, Day: 1 + i%28},
			Description: fmt.Sprintf("Session %d: a rather long description that needs truncating", i),
			Hours:       dec("1.25"),
			Rate:        dec("100"),
			Amount:      dec("125"),
		})
		v.Subtotal = v.Subtotal.Add(dec("125"))
	}
	v.TaxAmount = v.Subtotal.Mul(v.TaxRate).Div(hundred)
	v.Total = v.Subtotal.Add(v.TaxAmount)

	out, err := RenderPDF(v)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output is not a PDF: %q", out[:min(len(out), 16)])
	}
}
