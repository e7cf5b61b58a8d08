package handlers

import (
	"net/http"
	"strings"

	"github.com/consultdesk/consultdesk/internal/apperr"
	"github.com/consultdesk/consultdesk/internal/models"
	"github.com/consultdesk/consultdesk/internal/types"
	"github.com/consultdesk/consultdesk/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CreateProjectRequest struct {
	Name           string              `json:"name" binding:"required"`
	Description    string              `json:"description"`
	ClientName     string              `json:"clientName" binding:"required"`
	HourlyRate     decimal.Decimal     `json:"hourlyRate"`
	EstimatedHours decimal.NullDecimal `json:"estimatedHours"`
	Status         string              `json:"status"`
	StartDate      *types.Date         `json:"startDate"`
	Deadline       *types.Date         `json:"deadline"`
	SoftwareTools  []string            `json:"softwareTools"`
}

// UpdateProjectRequest is a partial update; absent fields are left alone.
type UpdateProjectRequest struct {
	Name           *string          `json:"name"`
	Description    *string          `json:"description"`
	ClientName     *string          `json:"clientName"`
	HourlyRate     *decimal.Decimal `json:"hourlyRate"`
	EstimatedHours *decimal.Decimal `json:"estimatedHours"`
	Status         *string          `json:"status"`
	StartDate      *types.Date      `json:"startDate"`
	Deadline       *types.Date      `json:"deadline"`
	SoftwareTools  *[]string        `json:"softwareTools"`
}

func validateRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return apperr.Validation("Hourly rate cannot be negative")
	}
	return nil
}

func validateSchedule(p *models.Project) error {
	if p.StartDate != nil && p.Deadline != nil && p.Deadline.Before(*p.StartDate) {
		return apperr.Validation("Deadline cannot be before the start date")
	}
	return nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func (body *CreateProjectRequest) project(userID string) (*models.Project, error) {
	name := strings.TrimSpace(body.Name)
	client := strings.TrimSpace(body.ClientName)
	if name == "" || client == "" {
		return nil, apperr.Validation("Name and client name are required")
	}
	if err := validateRate(body.HourlyRate); err != nil {
		return nil, err
	}
	if body.EstimatedHours.Valid && body.EstimatedHours.Decimal.IsNegative() {
		return nil, apperr.Validation("Estimated hours cannot be negative")
	}

	status := models.ProjectActive
	if body.Status != "" {
		st, err := models.ParseProjectStatus(body.Status)
		if err != nil {
			return nil, apperr.Validation("Invalid project status %q", body.Status)
		}
		status = st
	}

	p := &models.Project{
		Name:           name,
		Description:    strings.TrimSpace(body.Description),
		ClientName:     client,
		HourlyRate:     body.HourlyRate,
		EstimatedHours: body.EstimatedHours,
		Status:         status,
		StartDate:      dateTime(body.StartDate),
		Deadline:       dateTime(body.Deadline),
		SoftwareTools:  cleanList(body.SoftwareTools),
		UserID:         userID,
	}
	if err := validateSchedule(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (body *UpdateProjectRequest) apply(p *models.Project) error {
	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" {
			return apperr.Validation("Name cannot be empty")
		}
		p.Name = name
	}
	if body.ClientName != nil {
		client := strings.TrimSpace(*body.ClientName)
		if client == "" {
			return apperr.Validation("Client name cannot be empty")
		}
		p.ClientName = client
	}
	if body.Description != nil {
		p.Description = strings.TrimSpace(*body.Description)
	}
	if body.HourlyRate != nil {
		if err := validateRate(*body.HourlyRate); err != nil {
			return err
		}
		p.HourlyRate = *body.HourlyRate
	}
	if body.EstimatedHours != nil {
		if body.EstimatedHours.IsNegative() {
			return apperr.Validation("Estimated hours cannot be negative")
		}
		p.EstimatedHours = decimal.NewNullDecimal(*body.EstimatedHours)
	}
	if body.Status != nil {
		next, err := models.ParseProjectStatus(*body.Status)
		if err != nil {
			return apperr.Validation("Invalid project status %q", *body.Status)
		}
		if !p.Status.CanTransition(next) {
			return apperr.Conflict("Project cannot move from %s to %s", p.Status, next)
		}
		p.Status = next
	}
	if body.StartDate != nil {
		p.StartDate = dateTime(body.StartDate)
	}
	if body.Deadline != nil {
		p.Deadline = dateTime(body.Deadline)
	}
	if body.SoftwareTools != nil {
		p.SoftwareTools = cleanList(*body.SoftwareTools)
	}
	return validateSchedule(p)
}

func (h *Handler) ListProjects(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	projects, err := h.store.ListProjects(ctx.Request.Context(), userID)

	if err != nil {
		respondError(ctx, err, "Failed to retrieve projects")
		return
	}

	response := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		response = append(response, newProjectResponse(&projects[i]))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *Handler) GetProject(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		respondBadParam(ctx, err)
		return
	}

	project, err := h.store.GetProject(ctx.Request.Context(), userID, projectID)

	if err != nil {
		respondError(ctx, err, "Failed to retrieve project")
		return
	}

	ctx.JSON(http.StatusOK, newProjectResponse(project))
}

func (h *Handler) CreateProject(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var body CreateProjectRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondBindError(ctx, err, "project")
		return
	}

	project, err := body.project(userID)

	if err != nil {
		respondError(ctx, err, "Failed to create project")
		return
	}

	if err := h.store.CreateProject(ctx.Request.Context(), project); err != nil {
		respondError(ctx, err, "Failed to create project")
		return
	}

	h.refresh(userID, ResourceProjects)
	ctx.JSON(http.StatusCreated, newProjectResponse(project))
}

func (h *Handler) UpdateProject(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		respondBadParam(ctx, err)
		return
	}

	var body UpdateProjectRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondBindError(ctx, err, "project")
		return
	}

	project, err := h.store.UpdateProject(ctx.Request.Context(), userID, projectID, body.apply)

	if err != nil {
		respondError(ctx, err, "Failed to update project")
		return
	}

	h.refresh(userID, ResourceProjects)
	ctx.JSON(http.StatusOK, newProjectResponse(project))
}

func (h *Handler) DeleteProject(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		respondBadParam(ctx, err)
		return
	}

	if err := h.store.DeleteProject(ctx.Request.Context(), userID, projectID); err != nil {
		respondError(ctx, err, "Failed to delete project")
		return
	}

	h.refresh(userID, ResourceProjects)
	h.refresh(userID, ResourceAssignments)
	ctx.Status(http.StatusNoContent)
}
