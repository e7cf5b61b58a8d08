package handlers

import (
	"net/http"
	"strings"

	"github.com/consultdesk/consultdesk/internal/apperr"
	"github.com/consultdesk/consultdesk/internal/models"
	"github.com/consultdesk/consultdesk/internal/utils"
	"github.com/gin-gonic/gin"
)

type CreateStudentRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Program string `json:"program" binding:"required"`
	Level   string `json:"level" binding:"required"`
}

type UpdateStudentRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Program *string `json:"program"`
	Level   *string `json:"level"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func parseLevel(s string) (models.StudentLevel, error) {
	level, err := models.ParseStudentLevel(strings.TrimSpace(s))
	if err != nil {
		return "", apperr.Validation("Invalid student level %q", s)
	}
	return level, nil
}

func (body *UpdateStudentRequest) apply(st *models.Student) error {
	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" {
			return apperr.Validation("Name cannot be empty")
		}
		st.Name = name
	}
	if body.Email != nil {
		st.Email = normalizeEmail(*body.Email)
	}
	if body.Program != nil {
		program := strings.TrimSpace(*body.Program)
		if program == "" {
			return apperr.Validation("Program cannot be empty")
		}
		st.Program = program
	}
	if body.Level != nil {
		level, err := parseLevel(*body.Level)
		if err != nil {
			return err
		}
		st.Level = level
	}
	return nil
}

func (h *Handler) ListStudents(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	students, err := h.store.ListStudents(ctx.Request.Context(), userID)

	if err != nil {
		respondError(ctx, err, "Failed to retrieve students")
		return
	}

	response := make([]StudentResponse, 0, len(students))
	for i := range students {
		response = append(response, newStudentResponse(&students[i]))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *Handler) GetStudent(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	studentID, err := utils.GetStudentID(ctx)

	if err != nil {
		respondBadParam(ctx, err)
		return
	}

	student, err := h.store.GetStudent(ctx.Request.Context(), userID, studentID)

	if err != nil {
		respondError(ctx, err, "Failed to retrieve student")
		return
	}

	ctx.JSON(http.StatusOK, newStudentResponse(student))
}

func (h *Handler) CreateStudent(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var body CreateStudentRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondBindError(ctx, err, "student")
		return
	}

	level, err := parseLevel(body.Level)

	if err != nil {
		respondError(ctx, err, "Failed to create student")
		return
	}

	student := &models.Student{
		Name:    strings.TrimSpace(body.Name),
		Email:   normalizeEmail(body.Email),
		Program: strings.TrimSpace(body.Program),
		Level:   level,
		UserID:  userID,
	}

	if student.Name == "" || student.Program == "" {
		respondError(ctx, apperr.Validation("Name and program are required"), "Failed to create student")
		return
	}

	if err := h.store.CreateStudent(ctx.Request.Context(), student); err != nil {
		respondError(ctx, err, "Failed to create student")
		return
	}

	h.refresh(userID, ResourceStudents)
	ctx.JSON(http.StatusCreated, newStudentResponse(student))
}

func (h *Handler) UpdateStudent(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	studentID, err := utils.GetStudentID(ctx)

	if err != nil {
		respondBadParam(ctx, err)
		return
	}

	var body UpdateStudentRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondBindError(ctx, err, "student")
		return
	}

	student, err := h.store.UpdateStudent(ctx.Request.Context(), userID, studentID, body.apply)

	if err != nil {
		respondError(ctx, err, "Failed to update student")
		return
	}

	h.refresh(userID, ResourceStudents)
	ctx.JSON(http.StatusOK, newStudentResponse(student))
}

func (h *Handler) DeleteStudent(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	studentID, err := utils.GetStudentID(ctx)

	if err != nil {
		respondBadParam(ctx, err)
		return
	}

	if err := h.store.DeleteStudent(ctx.Request.Context(), userID, studentID); err != nil {
		respondError(ctx, err, "Failed to delete student")
		return
	}

	h.refresh(userID, ResourceStudents)
	h.refresh(userID, ResourceAssignments)
	ctx.Status(http.StatusNoContent)
}
