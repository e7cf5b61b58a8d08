package handlers

import (
	"time"

	"github.com/consultdesk/consultdesk/internal/models"
	"github.com/consultdesk/consultdesk/internal/types"
	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

func money(d decimal.Decimal) string {
	return d.StringFixed(moneyPlaces)
}

func hours(d decimal.Decimal) string {
	return d.Round(6).String()
}

func dateOf(t *time.Time) *types.Date {
	if t == nil {
		return nil
	}
	d := types.DateOf(*t, time.UTC)
	return &d
}

func dateTime(d *types.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.In(time.UTC)
	return &t
}

func tags(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Title    string `json:"title,omitempty"`
}

type ProjectResponse struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	ClientName     string      `json:"clientName"`
	HourlyRate     string      `json:"hourlyRate"`
	EstimatedHours *string     `json:"estimatedHours"`
	Status         string      `json:"status"`
	StartDate      *types.Date `json:"startDate"`
	Deadline       *types.Date `json:"deadline"`
	SoftwareTools  []string    `json:"softwareTools"`
	UserID         string      `json:"userId"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

func newProjectResponse(p *models.Project) ProjectResponse {
	r := ProjectResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		ClientName:    p.ClientName,
		HourlyRate:    money(p.HourlyRate),
		Status:        string(p.Status),
		StartDate:     dateOf(p.StartDate),
		Deadline:      dateOf(p.Deadline),
		SoftwareTools: tags(p.SoftwareTools),
		UserID:        p.UserID,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if p.EstimatedHours.Valid {
		est := money(p.EstimatedHours.Decimal)
		r.EstimatedHours = &est
	}
	return r
}

// ProjectSummary is the project as embedded in entries and invoices.
type ProjectSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ClientName string `json:"clientName"`
}

func newProjectSummary(p *models.Project) *ProjectSummary {
	if p == nil || p.ID == "" {
		return nil
	}
	return &ProjectSummary{ID: p.ID, Name: p.Name, ClientName: p.ClientName}
}

type StudentResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Program   string    `json:"program"`
	Level     string    `json:"level"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

func newStudentResponse(s *models.Student) StudentResponse {
	return StudentResponse{
		ID:        s.ID,
		Name:      s.Name,
		Email:     s.Email,
		Program:   s.Program,
		Level:     string(s.Level),
		UserID:    s.UserID,
		CreatedAt: s.CreatedAt,
	}
}

type AssignmentResponse struct {
	ID         string           `json:"id"`
	ProjectID  string           `json:"projectId"`
	StudentID  string           `json:"studentId"`
	Role       string           `json:"role"`
	AssignedAt time.Time        `json:"assignedAt"`
	Student    *StudentResponse `json:"student,omitempty"`
}

func newAssignmentResponse(a *models.ProjectStudent) AssignmentResponse {
	r := AssignmentResponse{
		ID:         a.ID,
		ProjectID:  a.ProjectID,
		StudentID:  a.StudentID,
		Role:       a.Role,
		AssignedAt: a.AssignedAt,
	}
	if a.Student.ID != "" {
		st := newStudentResponse(&a.Student)
		r.Student = &st
	}
	return r
}

type TimeEntryResponse struct {
	ID                  string          `json:"id"`
	ProjectID           string          `json:"projectId"`
	UserID              string          `json:"userId"`
	Description         string          `json:"description"`
	StartTime           time.Time       `json:"startTime"`
	EndTime             *time.Time      `json:"endTime"`
	Duration            *string         `json:"duration"`
	IsRunning           bool            `json:"isRunning"`
	SoftwareUsed        []string        `json:"softwareUsed"`
	ProblemsEncountered string          `json:"problemsEncountered"`
	CreatedAt           time.Time       `json:"createdAt"`
	Project             *ProjectSummary `json:"project,omitempty"`
	ElapsedSeconds      *int64          `json:"elapsedSeconds,omitempty"`
}

func newTimeEntryResponse(e *models.TimeEntry) TimeEntryResponse {
	r := TimeEntryResponse{
		ID:                  e.ID,
		ProjectID:           e.ProjectID,
		UserID:              e.UserID,
		Description:         e.Description,
		StartTime:           e.StartTime,
		EndTime:             e.EndTime,
		IsRunning:           e.IsRunning,
		SoftwareUsed:        tags(e.SoftwareUsed),
		ProblemsEncountered: e.ProblemsEncountered,
		CreatedAt:           e.CreatedAt,
		Project:             newProjectSummary(&e.Project),
	}
	if e.Duration.Valid {
		d := hours(e.Duration.Decimal)
		r.Duration = &d
	}
	return r
}

type InvoiceItemResponse struct {
	ID          string     `json:"id"`
	TimeEntryID *string    `json:"timeEntryId"`
	Date        types.Date `json:"date"`
	Description string     `json:"description"`
	Hours       string     `json:"hours"`
	Rate        string     `json:"rate"`
	Amount      string     `json:"amount"`
}

type InvoiceResponse struct {
	ID            string                `json:"id"`
	InvoiceNumber string                `json:"invoiceNumber"`
	ProjectID     string                `json:"projectId"`
	UserID        string                `json:"userId"`
	ClientName    string                `json:"clientName"`
	FromDate      types.Date            `json:"fromDate"`
	ToDate        types.Date            `json:"toDate"`
	Subtotal      string                `json:"subtotal"`
	TaxRate       string                `json:"taxRate"`
	TaxAmount     string                `json:"taxAmount"`
	Total         string                `json:"total"`
	Status        string                `json:"status"`
	DueDate       *types.Date           `json:"dueDate"`
	PaidDate      *types.Date           `json:"paidDate"`
	Notes         string                `json:"notes"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
	Project       *ProjectSummary       `json:"project,omitempty"`
	Items         []InvoiceItemResponse `json:"items,omitempty"`
}

func newInvoiceResponse(inv *models.Invoice, loc *time.Location) InvoiceResponse {
	r := InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		ProjectID:     inv.ProjectID,
		UserID:        inv.UserID,
		ClientName:    inv.ClientName,
		FromDate:      types.DateOf(inv.FromDate, time.UTC),
		ToDate:        types.DateOf(inv.ToDate, time.UTC),
		Subtotal:      money(inv.Subtotal),
		TaxRate:       money(inv.TaxRate),
		TaxAmount:     money(inv.TaxAmount),
		Total:         money(inv.Total),
		Status:        string(inv.Status),
		DueDate:       dateOf(inv.DueDate),
		PaidDate:      dateOf(inv.PaidDate),
		Notes:         inv.Notes,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
		Project:       newProjectSummary(&inv.Project),
	}
	for _, it := range inv.Items {
		r.Items = append(r.Items, InvoiceItemResponse{
			ID:          it.ID,
			TimeEntryID: it.TimeEntryID,
			Date:        types.DateOf(it.WorkDate, loc),
			Description: it.Description,
			Hours:       hours(it.Hours),
			Rate:        money(it.Rate),
			Amount:      money(it.Amount),
		})
	}
	return r
}
