package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/consultdesk/consultdesk/internal/models"
	"github.com/shopspring/decimal"
)

type captured struct {
	mu     sync.Mutex
	bodies [][]byte
}

func (c *captured) handler(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var raw json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		c.mu.Lock()
		c.bodies = append(c.bodies, raw)
		c.mu.Unlock()
		w.WriteHeader(status)
	}
}

func testInvoice(status models.InvoiceStatus) models.Invoice {
	due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	return models.Invoice{
		InvoiceNumber: "INV-20260302-042",
		ClientName:    "Dr. Rivera",
		FromDate:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		ToDate:        time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Total:         decimal.RequireFromString("379.75"),
		Status:        status,
		DueDate:       &due,
		Project:       models.Project{Name: "Thesis statistics"},
	}
}

func TestSendInvoiceNotification(t *testing.T) {
	var slack, discord captured
	slackSrv := httptest.NewServer(slack.handler(http.StatusOK))
	defer slackSrv.Close()
	discordSrv := httptest.NewServer(discord.handler(http.StatusNoContent))
	defer discordSrv.Close()

	n := NewNotifier(slackSrv.URL, discordSrv.URL)
	n.now = func() time.Time { return time.Unix(1772445600, 0) }

	err := n.SendInvoiceNotification(context.Background(), testInvoice(models.InvoicePaid), models.InvoiceSent)
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if len(discord.bodies) != 1 || len(slack.bodies) != 1 {
		t.Fatalf("posts: discord %d slack %d, want 1 each", len(discord.bodies), len(slack.bodies))
	}

	var d DiscordWebhookRequest
	if err := json.Unmarshal(discord.bodies[0], &d); err != nil {
		t.Fatalf("decode discord: %v", err)
	}
	if len(d.Embeds) != 1 || d.Embeds[0].Title != "Invoice paid" || d.Embeds[0].Color != ColorGreen {
		t.Fatalf("unexpected discord payload: %+v", d)
	}
	if got := d.Embeds[0].Fields[1].Value; got != "$379.75" {
		t.Fatalf("discord total: got %q", got)
	}

	var s SlackWebhookRequest
	if err := json.Unmarshal(slack.bodies[0], &s); err != nil {
		t.Fatalf("decode slack: %v", err)
	}
	if !strings.Contains(s.Text, "INV-20260302-042") || s.Attachments[0].Timestamp != 1772445600 {
		t.Fatalf("unexpected slack payload: %+v", s)
	}
	if s.Attachments[0].Text != "Status changed from sent to paid." {
		t.Fatalf("slack text: got %q", s.Attachments[0].Text)
	}
}

func TestSendInvoiceNotificationReportsFailures(t *testing.T) {
	var slack captured
	slackSrv := httptest.NewServer(slack.handler(http.StatusInternalServerError))
	defer slackSrv.Close()

	n := NewNotifier(slackSrv.URL, "")
	err := n.SendInvoiceNotification(context.Background(), testInvoice(models.InvoiceSent), models.InvoiceDraft)
	if err == nil || !strings.Contains(err.Error(), "slack") {
		t.Fatalf("got %v, want slack error", err)
	}
}

func TestInvoiceStatusChangedPostsInBackground(t *testing.T) {
	done := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		done <- struct{}{}
	}))
	defer srv.Close()

	n := NewNotifier("", srv.URL)
	n.InvoiceStatusChanged(testInvoice(models.InvoiceSent), models.InvoiceDraft)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("webhook was not called")
	}
}

func TestDisabledNotifierDoesNothing(t *testing.T) {
	n := NewNotifier("", "")
	if n.Enabled() {
		t.Fatal("notifier without URLs reports enabled")
	}
	if err := n.SendInvoiceNotification(context.Background(), testInvoice(models.InvoiceSent), models.InvoiceDraft); err != nil {
		t.Fatalf("send: %v", err)
	}
}
