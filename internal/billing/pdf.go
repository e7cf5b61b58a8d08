package billing

import (
	"fmt"

	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"
	"github.com/pkg/errors"
)

var itemGrid = []uint{2, 5, 1, 2, 2}

// RenderPDF lays out an invoice view as an A4 document. Item rows flow onto
// new pages when the current one is full.
func RenderPDF(v InvoiceView) ([]byte, error) {
	m := pdf.NewMaroto(consts.Portrait, consts.A4)
	m.SetPageMargins(20, 10, 20)

	m.RegisterFooter(func() {
		m.Row(8, func() {
			m.Col(6, func() {
				m.Text("Thank you for your business!", props.Text{
					Size:  8,
					Align: consts.Left,
				})
			})
			m.Col(6, func() {
				m.Text(fmt.Sprintf("Invoice %s", v.Number), props.Text{
					Size:  8,
					Align: consts.Right,
				})
			})
		})
	})

	m.Row(14, func() {
		m.Col(6, func() {
			m.Text("INVOICE", props.Text{
				Top:   2,
				Style: consts.Bold,
				Size:  24,
			})
		})
		m.Col(6, func() {
			m.Text(fmt.Sprintf("Invoice #%s", v.Number), props.Text{
				Top:   2,
				Align: consts.Right,
				Size:  11,
			})
			m.Text(fmt.Sprintf("Date: %s", v.IssuedOn), props.Text{
				Top:   8,
				Align: consts.Right,
				Size:  11,
			})
		})
	})

	m.Row(8, func() {})
	addressRow(m, "From:", "To:", consts.Bold)
	addressRow(m, v.Sender.Name, v.ClientName, consts.Normal)
	addressRow(m, v.Sender.Title, "", consts.Normal)
	addressRow(m, v.Sender.Address, "", consts.Normal)
	addressRow(m, v.Sender.Email, "", consts.Normal)

	m.Row(6, func() {})
	m.Row(7, func() {
		m.Col(12, func() {
			m.Text(fmt.Sprintf("Project: %s", v.ProjectName), props.Text{Style: consts.Bold, Size: 11})
		})
	})
	m.Row(7, func() {
		m.Col(12, func() {
			m.Text(fmt.Sprintf("Period: %s to %s", v.From, v.To), props.Text{Style: consts.Bold, Size: 11})
		})
	})
	m.Row(6, func() {})

	headers := []string{"Date", "Description", "Hours", "Rate", "Amount"}
	rows := make([][]string, 0, len(v.Items))
	for _, it := range v.Items {
		rows = append(rows, []string{
			it.Date.String(),
			truncate(it.Description),
			FormatHours(it.Hours),
			FormatMoney(it.Rate),
			FormatMoney(it.Amount),
		})
	}
	m.TableList(headers, rows, props.TableList{
		HeaderProp: props.TableListContent{
			Size:      10,
			GridSizes: itemGrid,
		},
		ContentProp: props.TableListContent{
			Size:      9,
			GridSizes: itemGrid,
		},
		Align:                consts.Left,
		AlternatedBackground: &color.Color{Red: 248, Green: 250, Blue: 252},
		HeaderContentSpace:   1,
		Line:                 false,
	})

	m.Row(8, func() {})
	totalRow(m, "Subtotal:", FormatMoney(v.Subtotal), consts.Normal)
	totalRow(m, fmt.Sprintf("Tax (%s):", FormatPercent(v.TaxRate)), FormatMoney(v.TaxAmount), consts.Normal)
	totalRow(m, "Total:", FormatMoney(v.Total), consts.Bold)

	if v.DueDate != nil || v.Notes != "" {
		m.Row(8, func() {})
	}
	if v.DueDate != nil {
		m.Row(6, func() {
			m.Col(12, func() {
				m.Text(fmt.Sprintf("Payment due by %s", v.DueDate), props.Text{Size: 10})
			})
		})
	}
	if v.Notes != "" {
		m.Row(12, func() {
			m.Col(12, func() {
				m.Text(v.Notes, props.Text{Size: 9})
			})
		})
	}

	buf, err := m.Output()
	if err != nil {
		return nil, errors.Wrapf(err, "render invoice %s", v.Number)
	}
	return buf.Bytes(), nil
}

func addressRow(m pdf.Maroto, left, right string, style consts.Style) {
	m.Row(6, func() {
		m.Col(6, func() {
			m.Text(left, props.Text{Style: style, Size: 10})
		})
		m.Col(6, func() {
			m.Text(right, props.Text{Style: style, Size: 10})
		})
	})
}

func totalRow(m pdf.Maroto, label, value string, style consts.Style) {
	m.Row(7, func() {
		m.Col(8, func() {
			m.Text(label, props.Text{Style: style, Size: 10, Align: consts.Right})
		})
		m.Col(4, func() {
			m.Text(value, props.Text{Style: style, Size: 10, Align: consts.Right})
		})
	})
}
