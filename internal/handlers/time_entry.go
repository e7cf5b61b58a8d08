package handlers

import (
	"net/http"

	"github.com/consultdesk/consultdesk/internal/models"
	"github.com/consultdesk/consultdesk/internal/timetrack"
	"github.com/consultdesk/consultdesk/internal/utils"
	"github.com/gin-gonic/gin"
)

type StartTimeEntryRequest struct {
	ProjectID           string   `json:"projectId" binding:"required"`
	Description         string   `json:"description" binding:"required"`
	SoftwareUsed        []string `json:"softwareUsed"`
	ProblemsEncountered string   `json:"problemsEncountered"`
}

type UpdateTimeEntryRequest struct {
	Description         *string   `json:"description"`
	SoftwareUsed        *[]string `json:"softwareUsed"`
	ProblemsEncountered *string   `json:"problemsEncountered"`
}

func timeEntryList(entries []models.TimeEntry) []TimeEntryResponse {
	response := make([]TimeEntryResponse, 0, len(entries))
	for i := range entries {
		response = append(response, newTimeEntryResponse(&entries[i]))
	}
	return response
}

func (h *Handler) ListTimeEntries(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	entries, err := h.store.ListTimeEntries(ctx.Request.Context(), userID)

	if err != nil {
		respondError(ctx, err, "Failed to retrieve time entries")
		return
	}

	ctx.JSON(http.StatusOK, timeEntryList(entries))
}

func (h *Handler) ListProjectTimeEntries(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		respondBadParam(ctx, err)
		return
	}

	entries, err := h.store.ListProjectTimeEntries(ctx.Request.Context(), userID, projectID)

	if err != nil {
		respondError(ctx, err, "Failed to retrieve time entries")
		return
	}

	ctx.JSON(http.StatusOK, timeEntryList(entries))
}

// GetActiveTimeEntry returns the running entry with its elapsed seconds, or
// null when no timer is running.
func (h *Handler) GetActiveTimeEntry(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	entry, err := h.timer.Active(ctx.Request.Context(), userID)

	if err != nil {
		respondError(ctx, err, "Failed to retrieve active time entry")
		return
	}

	if entry == nil {
		ctx.JSON(http.StatusOK, nil)
		return
	}

	response := newTimeEntryResponse(entry)
	elapsed := int64(timetrack.Elapsed(entry, h.timer.Now()).Seconds())
	response.ElapsedSeconds = &elapsed

	ctx.JSON(http.StatusOK, response)
}

func (h *Handler) StartTimeEntry(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var body StartTimeEntryRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondBindError(ctx, err, "time entry")
		return
	}

	entry, err := h.timer.Start(ctx.Request.Context(), userID, timetrack.StartInput{
		ProjectID:           body.ProjectID,
		Description:         body.Description,
		SoftwareUsed:        body.SoftwareUsed,
		ProblemsEncountered: body.ProblemsEncountered,
	})

	if err != nil {
		respondError(ctx, err, "Failed to start timer")
		return
	}

	h.refresh(userID, ResourceTimeEntries)
	ctx.JSON(http.StatusCreated, newTimeEntryResponse(entry))
}

func (h *Handler) StopTimeEntry(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	entryID, err := utils.GetTimeEntryID(ctx)

	if err != nil {
		respondBadParam(ctx, err)
		return
	}

	entry, err := h.timer.Stop(ctx.Request.Context(), userID, entryID)

	if err != nil {
		respondError(ctx, err, "Failed to stop timer")
		return
	}

	h.refresh(userID, ResourceTimeEntries)
	ctx.JSON(http.StatusOK, newTimeEntryResponse(entry))
}

func (h *Handler) UpdateTimeEntry(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	entryID, err := utils.GetTimeEntryID(ctx)

	if err != nil {
		respondBadParam(ctx, err)
		return
	}

	var body UpdateTimeEntryRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondBindError(ctx, err, "time entry")
		return
	}

	entry, err := h.timer.Update(ctx.Request.Context(), userID, entryID, timetrack.UpdateInput{
		Description:         body.Description,
		SoftwareUsed:        body.SoftwareUsed,
		ProblemsEncountered: body.ProblemsEncountered,
	})

	if err != nil {
		respondError(ctx, err, "Failed to update time entry")
		return
	}

	h.refresh(userID, ResourceTimeEntries)
	ctx.JSON(http.StatusOK, newTimeEntryResponse(entry))
}

func (h *Handler) DeleteTimeEntry(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	entryID, err := utils.GetTimeEntryID(ctx)

	if err != nil {
		respondBadParam(ctx, err)
		return
	}

	if err := h.timer.Delete(ctx.Request.Context(), userID, entryID); err != nil {
		respondError(ctx, err, "Failed to delete time entry")
		return
	}

	h.refresh(userID, ResourceTimeEntries)
	ctx.Status(http.StatusNoContent)
}
