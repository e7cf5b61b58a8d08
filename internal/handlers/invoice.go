package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/consultdesk/consultdesk/internal/billing"
	"github.com/consultdesk/consultdesk/internal/models"
	"github.com/consultdesk/consultdesk/internal/types"
	"github.com/consultdesk/consultdesk/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest is the body of create and preview. Items sent by
// older clients are accepted and ignored; the server derives them from the
// billable entries.
type CreateInvoiceRequest struct {
	ProjectID string          `json:"projectId" binding:"required"`
	FromDate  types.Date      `json:"fromDate"`
	ToDate    types.Date      `json:"toDate"`
	TaxRate   decimal.Decimal `json:"taxRate"`
	Notes     string          `json:"notes"`
	DueDate   *types.Date     `json:"dueDate"`
	Items     json.RawMessage `json:"items,omitempty"`
}

type UpdateInvoiceRequest struct {
	Status   *string     `json:"status"`
	DueDate  *types.Date `json:"dueDate"`
	PaidDate *types.Date `json:"paidDate"`
	Notes    *string     `json:"notes"`
}

func (body *CreateInvoiceRequest) input() billing.CreateInput {
	return billing.CreateInput{
		ProjectID: body.ProjectID,
		From:      body.FromDate,
		To:        body.ToDate,
		TaxRate:   body.TaxRate,
		Notes:     body.Notes,
		DueDate:   body.DueDate,
	}
}

func (h *Handler) invoiceResponse(inv *models.Invoice) InvoiceResponse {
	return newInvoiceResponse(inv, h.billing.Location())
}

func (h *Handler) ListInvoices(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	invoices, err := h.store.ListInvoices(ctx.Request.Context(), userID)

	if err != nil {
		respondError(ctx, err, "Failed to retrieve invoices")
		return
	}

	response := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		response = append(response, h.invoiceResponse(&invoices[i]))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *Handler) GetInvoice(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	invoiceID, err := utils.GetInvoiceID(ctx)

	if err != nil {
		respondBadParam(ctx, err)
		return
	}

	invoice, err := h.store.GetInvoice(ctx.Request.Context(), userID, invoiceID)

	if err != nil {
		respondError(ctx, err, "Failed to retrieve invoice")
		return
	}

	ctx.JSON(http.StatusOK, h.invoiceResponse(invoice))
}

func (h *Handler) CreateInvoice(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var body CreateInvoiceRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondBindError(ctx, err, "invoice")
		return
	}

	if len(body.Items) > 0 {
		log.Debugf("Ignoring %d bytes of client supplied invoice items", len(body.Items))
	}

	invoice, err := h.billing.Create(ctx.Request.Context(), userID, body.input())

	if err != nil {
		respondError(ctx, err, "Failed to create invoice")
		return
	}

	h.refresh(userID, ResourceInvoices)
	ctx.JSON(http.StatusCreated, h.invoiceResponse(invoice))
}

func (h *Handler) PreviewInvoice(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var body CreateInvoiceRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondBindError(ctx, err, "invoice")
		return
	}

	invoice, err := h.billing.Preview(ctx.Request.Context(), userID, body.input())

	if err != nil {
		respondError(ctx, err, "Failed to preview invoice")
		return
	}

	ctx.JSON(http.StatusOK, h.invoiceResponse(invoice))
}

func (h *Handler) UpdateInvoice(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	invoiceID, err := utils.GetInvoiceID(ctx)

	if err != nil {
		respondBadParam(ctx, err)
		return
	}

	var body UpdateInvoiceRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondBindError(ctx, err, "invoice")
		return
	}

	invoice, err := h.billing.Update(ctx.Request.Context(), userID, invoiceID, billing.UpdateInput{
		Status:   body.Status,
		DueDate:  body.DueDate,
		PaidDate: body.PaidDate,
		Notes:    body.Notes,
	})

	if err != nil {
		respondError(ctx, err, "Failed to update invoice")
		return
	}

	h.refresh(userID, ResourceInvoices)
	ctx.JSON(http.StatusOK, h.invoiceResponse(invoice))
}

func (h *Handler) DeleteInvoice(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	invoiceID, err := utils.GetInvoiceID(ctx)

	if err != nil {
		respondBadParam(ctx, err)
		return
	}

	if err := h.billing.Delete(ctx.Request.Context(), userID, invoiceID); err != nil {
		respondError(ctx, err, "Failed to delete invoice")
		return
	}

	h.refresh(userID, ResourceInvoices)
	ctx.Status(http.StatusNoContent)
}

// InvoicePDF renders the stored invoice as a PDF download.
func (h *Handler) InvoicePDF(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	invoiceID, err := utils.GetInvoiceID(ctx)

	if err != nil {
		respondBadParam(ctx, err)
		return
	}

	invoice, err := h.store.GetInvoice(ctx.Request.Context(), userID, invoiceID)

	if err != nil {
		respondError(ctx, err, "Failed to retrieve invoice")
		return
	}

	doc, err := billing.RenderPDF(billing.NewView(invoice, h.sender, h.billing.Location()))

	if err != nil {
		respondError(ctx, err, "Failed to render invoice")
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"Invoice_%s.pdf\"", invoice.InvoiceNumber))
	ctx.Data(http.StatusOK, "application/pdf", doc)
}
