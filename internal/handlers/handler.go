// Package handlers holds the gin handlers of the JSON API. Handlers bind and
// validate requests, call the store or the domain services with the caller's
// identity, and publish refresh events after successful mutations.
package handlers

import (
	"net/http"

	"github.com/consultdesk/consultdesk/internal/billing"
	"github.com/consultdesk/consultdesk/internal/reports"
	"github.com/consultdesk/consultdesk/internal/store"
	"github.com/consultdesk/consultdesk/internal/timetrack"
	"github.com/consultdesk/consultdesk/internal/utils"
	"github.com/gin-gonic/gin"
)

// Resources named in refresh events.
const (
	ResourceProjects    = "projects"
	ResourceStudents    = "students"
	ResourceAssignments = "assignments"
	ResourceTimeEntries = "time-entries"
	ResourceInvoices    = "invoices"
)

type Options struct {
	Store   *store.Store
	Timer   *timetrack.Service
	Billing *billing.Service
	Reports *reports.Service
	Hub     *Hub
	Sender  billing.Sender
}

type Handler struct {
	store   *store.Store
	timer   *timetrack.Service
	billing *billing.Service
	reports *reports.Service
	hub     *Hub
	sender  billing.Sender
}

func New(o Options) *Handler {
	return &Handler{
		store:   o.Store,
		timer:   o.Timer,
		billing: o.Billing,
		reports: o.Reports,
		hub:     o.Hub,
		sender:  o.Sender,
	}
}

// currentUserID writes a 401 and returns false when no user was resolved.
func currentUserID(ctx *gin.Context) (string, bool) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return "", false
	}

	return userID, true
}

func (h *Handler) refresh(userID, resource string) {
	if h.hub != nil {
		h.hub.BroadcastRefresh(userID, resource)
	}
}
