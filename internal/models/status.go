package models

import "fmt"

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectOnHold    ProjectStatus = "on-hold"
	ProjectCancelled ProjectStatus = "cancelled"
)

// projectTransitions lists the statuses a project may move to from each
// status. Cancelled is terminal; completed projects may be reopened.
var projectTransitions = map[ProjectStatus][]ProjectStatus{
	ProjectActive:    {ProjectOnHold, ProjectCompleted, ProjectCancelled},
	ProjectOnHold:    {ProjectActive, ProjectCompleted, ProjectCancelled},
	ProjectCompleted: {ProjectActive},
	ProjectCancelled: {},
}

func ParseProjectStatus(s string) (ProjectStatus, error) {
	st := ProjectStatus(s)
	if _, ok := projectTransitions[st]; !ok {
		return "", fmt.Errorf("invalid project status %q", s)
	}
	return st, nil
}

// CanTransition reports whether a project may move from s to next. Staying
// in the same status is always allowed.
func (s ProjectStatus) CanTransition(next ProjectStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range projectTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceSent      InvoiceStatus = "sent"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceDraft:     {InvoiceSent, InvoiceCancelled},
	InvoiceSent:      {InvoicePaid, InvoiceCancelled},
	InvoicePaid:      {},
	InvoiceCancelled: {},
}

func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	st := InvoiceStatus(s)
	if _, ok := invoiceTransitions[st]; !ok {
		return "", fmt.Errorf("invalid invoice status %q", s)
	}
	return st, nil
}

func (s InvoiceStatus) CanTransition(next InvoiceStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range invoiceTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
