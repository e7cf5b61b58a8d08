// Package services posts invoice notifications to chat webhooks.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/consultdesk/consultdesk/internal/models"
	"github.com/decred/slog"
	"github.com/pkg/errors"
)

var log = slog.Disabled

// UseLogger sets the package-wide logger.
func UseLogger(logger slog.Logger) {
	log = logger
}

type DiscordWebhookField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type DiscordEmbed struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Color       int                   `json:"color"`
	Fields      []DiscordWebhookField `json:"fields"`
	Footer      *DiscordFooter        `json:"footer,omitempty"`
	Timestamp   string                `json:"timestamp"`
}

type DiscordFooter struct {
	Text string `json:"text"`
}

type DiscordWebhookRequest struct {
	Username string         `json:"username"`
	Embeds   []DiscordEmbed `json:"embeds"`
}

type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type SlackAttachment struct {
	Color     string       `json:"color"`
	Title     string       `json:"title"`
	Text      string       `json:"text"`
	Fields    []SlackField `json:"fields"`
	Footer    string       `json:"footer"`
	Timestamp int64        `json:"ts"`
}

type SlackWebhookRequest struct {
	Username    string            `json:"username"`
	IconEmoji   string            `json:"icon_emoji,omitempty"`
	Text        string            `json:"text"`
	Attachments []SlackAttachment `json:"attachments"`
}

const (
	ColorBlue  = 3447003 // #3498DB - invoice sent
	ColorGreen = 65280   // #00FF00 - invoice paid

	Username = "ConsultDesk"

	sendTimeout = 10 * time.Second
)

// Notifier posts a message to the configured Slack and Discord webhooks when
// an invoice is sent or paid. Either URL may be empty.
type Notifier struct {
	SlackURL   string
	DiscordURL string
	Client     *http.Client

	now func() time.Time
}

func NewNotifier(slackURL, discordURL string) *Notifier {
	return &Notifier{
		SlackURL:   slackURL,
		DiscordURL: discordURL,
		Client:     &http.Client{Timeout: sendTimeout},
		now:        time.Now,
	}
}

// Enabled reports whether any webhook is configured.
func (n *Notifier) Enabled() bool {
	return n.SlackURL != "" || n.DiscordURL != ""
}

// InvoiceStatusChanged sends the notification in the background. Failures
// are logged only.
func (n *Notifier) InvoiceStatusChanged(inv models.Invoice, from models.InvoiceStatus) {
	if !n.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		if err := n.SendInvoiceNotification(ctx, inv, from); err != nil {
			log.Warnf("Invoice %s notification: %v", inv.InvoiceNumber, err)
		}
	}()
}

// SendInvoiceNotification posts to every configured webhook and returns the
// first error.
func (n *Notifier) SendInvoiceNotification(ctx context.Context, inv models.Invoice, from models.InvoiceStatus) error {
	var firstErr error

	if n.DiscordURL != "" {
		if err := n.post(ctx, n.DiscordURL, discordPayload(inv, from, n.clock())); err != nil {
			firstErr = errors.Wrap(err, "discord")
		}
	}

	if n.SlackURL != "" {
		if err := n.post(ctx, n.SlackURL, slackPayload(inv, from, n.clock())); err != nil && firstErr == nil {
			firstErr = errors.Wrap(err, "slack")
		}
	}

	if firstErr == nil {
		log.Debugf("Sent %s notification for invoice %s", inv.Status, inv.InvoiceNumber)
	}
	return firstErr
}

func (n *Notifier) clock() time.Time {
	if n.now == nil {
		return time.Now()
	}
	return n.now()
}

func headline(inv models.Invoice) (string, string) {
	if inv.Status == models.InvoicePaid {
		return "Invoice paid", fmt.Sprintf("**%s** from %s has been paid.", inv.InvoiceNumber, inv.ClientName)
	}
	return "Invoice sent", fmt.Sprintf("**%s** has been sent to %s.", inv.InvoiceNumber, inv.ClientName)
}

func dateOrDash(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format("2006-01-02")
}

func discordPayload(inv models.Invoice, from models.InvoiceStatus, now time.Time) DiscordWebhookRequest {
	title, description := headline(inv)
	color := ColorBlue
	if inv.Status == models.InvoicePaid {
		color = ColorGreen
	}

	return DiscordWebhookRequest{
		Username: Username,
		Embeds: []DiscordEmbed{
			{
				Title:       title,
				Description: description,
				Color:       color,
				Fields: []DiscordWebhookField{
					{Name: "Client", Value: inv.ClientName, Inline: true},
					{Name: "Total", Value: "$" + inv.Total.StringFixed(2), Inline: true},
					{Name: "Status", Value: fmt.Sprintf("%s → **%s**", from, inv.Status), Inline: true},
					{Name: "Period", Value: dateOrDash(&inv.FromDate) + " to " + dateOrDash(&inv.ToDate), Inline: false},
					{Name: "Due", Value: dateOrDash(inv.DueDate), Inline: true},
					{Name: "Paid", Value: dateOrDash(inv.PaidDate), Inline: true},
				},
				Footer:    &DiscordFooter{Text: "Project: " + inv.Project.Name},
				Timestamp: now.UTC().Format(time.RFC3339),
			},
		},
	}
}

func slackPayload(inv models.Invoice, from models.InvoiceStatus, now time.Time) SlackWebhookRequest {
	title, _ := headline(inv)
	color, emoji := "#3498DB", ":outbox_tray:"
	if inv.Status == models.InvoicePaid {
		color, emoji = "good", ":moneybag:"
	}

	return SlackWebhookRequest{
		Username:  Username,
		IconEmoji: emoji,
		Text:      fmt.Sprintf("%s *%s: %s*", emoji, title, inv.InvoiceNumber),
		Attachments: []SlackAttachment{
			{
				Color: color,
				Title: fmt.Sprintf("%s for %s", inv.InvoiceNumber, inv.ClientName),
				Text:  fmt.Sprintf("Status changed from %s to %s.", from, inv.Status),
				Fields: []SlackField{
					{Title: "Total", Value: "$" + inv.Total.StringFixed(2), Short: true},
					{Title: "Due", Value: dateOrDash(inv.DueDate), Short: true},
					{Title: "Period", Value: dateOrDash(&inv.FromDate) + " to " + dateOrDash(&inv.ToDate), Short: false},
				},
				Footer:    "Project: " + inv.Project.Name,
				Timestamp: now.Unix(),
			},
		},
	}
}

func (n *Notifier) post(ctx context.Context, url string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	client := n.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrap(err, "send webhook")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
