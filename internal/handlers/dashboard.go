package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type DashboardMetricsResponse struct {
	ActiveProjects        int64  `json:"activeProjects"`
	HoursThisMonth        string `json:"hoursThisMonth"`
	PendingInvoicesAmount string `json:"pendingInvoicesAmount"`
	StudentsAssigned      int64  `json:"studentsAssigned"`
}

type ToolUsageResponse struct {
	Name     string `json:"name"`
	Projects int    `json:"projects"`
}

type ReportSummaryResponse struct {
	TotalProjects     int64               `json:"totalProjects"`
	ActiveProjects    int64               `json:"activeProjects"`
	CompletedProjects int64               `json:"completedProjects"`
	ProjectsByStatus  map[string]int64    `json:"projectsByStatus"`
	TotalHours        string              `json:"totalHours"`
	TotalRevenue      string              `json:"totalRevenue"`
	PaidRevenue       string              `json:"paidRevenue"`
	PendingRevenue    string              `json:"pendingRevenue"`
	TopTools          []ToolUsageResponse `json:"topTools"`
}

func (h *Handler) DashboardMetrics(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	m, err := h.reports.Dashboard(ctx.Request.Context(), userID)

	if err != nil {
		respondError(ctx, err, "Failed to load dashboard metrics")
		return
	}

	ctx.JSON(http.StatusOK, DashboardMetricsResponse{
		ActiveProjects:        m.ActiveProjects,
		HoursThisMonth:        m.HoursThisMonth.StringFixed(moneyPlaces),
		PendingInvoicesAmount: money(m.PendingInvoicesAmount),
		StudentsAssigned:      m.StudentsAssigned,
	})
}

func (h *Handler) ReportSummary(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	sum, err := h.reports.Summary(ctx.Request.Context(), userID)

	if err != nil {
		respondError(ctx, err, "Failed to load report summary")
		return
	}

	response := ReportSummaryResponse{
		TotalProjects:     sum.TotalProjects,
		ActiveProjects:    sum.ActiveProjects,
		CompletedProjects: sum.CompletedProjects,
		ProjectsByStatus:  make(map[string]int64, len(sum.ProjectsByStatus)),
		TotalHours:        sum.TotalHours.StringFixed(moneyPlaces),
		TotalRevenue:      money(sum.TotalRevenue),
		PaidRevenue:       money(sum.PaidRevenue),
		PendingRevenue:    money(sum.PendingRevenue),
		TopTools:          make([]ToolUsageResponse, 0, len(sum.TopTools)),
	}
	for status, n := range sum.ProjectsByStatus {
		response.ProjectsByStatus[string(status)] = n
	}
	for _, t := range sum.TopTools {
		response.TopTools = append(response.TopTools, ToolUsageResponse{Name: t.Name, Projects: t.Projects})
	}

	ctx.JSON(http.StatusOK, response)
}
