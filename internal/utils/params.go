package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetPathID returns the path parameter name, which must be a UUID. label
// names the resource in error messages.
func GetPathID(ctx *gin.Context, name, label string) (string, error) {
	idStr := ctx.Param(name)

	if idStr == "" {
		return "", fmt.Errorf("%s ID not found", label)
	}

	id, err := uuid.Parse(idStr)

	if err != nil {
		return "", fmt.Errorf("Invalid %s ID", label)
	}

	return id.String(), nil
}

func GetProjectID(ctx *gin.Context) (string, error) {
	return GetPathID(ctx, "id", "Project")
}

func GetStudentID(ctx *gin.Context) (string, error) {
	return GetPathID(ctx, "id", "Student")
}

func GetTimeEntryID(ctx *gin.Context) (string, error) {
	return GetPathID(ctx, "id", "Time entry")
}

func GetInvoiceID(ctx *gin.Context) (string, error) {
	return GetPathID(ctx, "id", "Invoice")
}

// GetProjectStudentID returns the project and student IDs of an assignment
// route.
func GetProjectStudentID(ctx *gin.Context) (string, string, error) {
	projectID, err := GetProjectID(ctx)

	if err != nil {
		return "", "", err
	}

	studentID, err := GetPathID(ctx, "studentId", "Student")

	if err != nil {
		return "", "", err
	}

	return projectID, studentID, nil
}
