package handlers

import (
	"net/http"
	"strings"

	"github.com/consultdesk/consultdesk/internal/models"
	"github.com/consultdesk/consultdesk/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AssignStudentRequest struct {
	StudentID string `json:"studentId" binding:"required"`
	Role      string `json:"role"`
}

func (h *Handler) ListProjectStudents(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		respondBadParam(ctx, err)
		return
	}

	assignments, err := h.store.ListProjectStudents(ctx.Request.Context(), userID, projectID)

	if err != nil {
		respondError(ctx, err, "Failed to retrieve project students")
		return
	}

	response := make([]AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		response = append(response, newAssignmentResponse(&assignments[i]))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *Handler) AssignStudent(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		respondBadParam(ctx, err)
		return
	}

	var body AssignStudentRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondBindError(ctx, err, "assignment")
		return
	}

	studentID, err := uuid.Parse(body.StudentID)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid Student ID"})
		return
	}

	assignment := &models.ProjectStudent{
		ProjectID:  projectID,
		StudentID:  studentID.String(),
		Role:       strings.TrimSpace(body.Role),
		AssignedAt: h.timer.Now().UTC(),
	}

	if err := h.store.AssignStudent(ctx.Request.Context(), userID, assignment); err != nil {
		respondError(ctx, err, "Failed to assign student")
		return
	}

	h.refresh(userID, ResourceAssignments)
	ctx.JSON(http.StatusCreated, newAssignmentResponse(assignment))
}

func (h *Handler) RemoveProjectStudent(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	projectID, studentID, err := utils.GetProjectStudentID(ctx)

	if err != nil {
		respondBadParam(ctx, err)
		return
	}

	if err := h.store.RemoveStudent(ctx.Request.Context(), userID, projectID, studentID); err != nil {
		respondError(ctx, err, "Failed to remove student from project")
		return
	}

	h.refresh(userID, ResourceAssignments)
	ctx.Status(http.StatusNoContent)
}
