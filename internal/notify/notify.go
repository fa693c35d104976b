// Package notify delivers partnership inquiry events to the notifier service.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"google.golang.org/api/idtoken"
)

const inquiriesPath = "/inquiries"

// InquiryEvent is the payload sent when a partnership inquiry is created.
type InquiryEvent struct {
	InquiryID   uuid.UUID `json:"inquiry_id"`
	UserID      uuid.UUID `json:"user_id"`
	CompanyID   uuid.UUID `json:"company_id"`
	CompanyName string    `json:"company_name"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}

// Notifier sends inquiry events.
type Notifier interface {
	NotifyInquiry(ctx context.Context, event InquiryEvent) error
}

// Client posts events as JSON to the notifier service.
type Client struct {
	client  *http.Client
	baseURL string
}

// NewClient builds a notifier client. A nil client is replaced by an ID token
// client for the notifier's audience, or a plain client when no credentials
// are available.
func NewClient(client *http.Client, baseURL string) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	if client == nil {
		idc, err := idtoken.NewClient(context.Background(), baseURL)
		if err != nil {
			client = &http.Client{Timeout: 10 * time.Second}
		} else {
			client = idc
		}
	}
	return &Client{client: client, baseURL: baseURL}
}

// NotifyInquiry posts the event. The inquiry id doubles as the request id so
// the notifier can drop redeliveries.
func (c *Client) NotifyInquiry(ctx context.Context, event InquiryEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return eris.Wrap(err, "notify: marshal event")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+inquiriesPath, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "notify: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", event.InquiryID.String())

	resp, err := c.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "notify: send inquiry")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return eris.Errorf("notify: HTTP %d: %s", resp.StatusCode, errorMessage(resp.Body))
	}
	return nil
}

// Noop discards events. It is used when no notifier is configured.
type Noop struct{}

// NotifyInquiry implements Notifier.
func (Noop) NotifyInquiry(context.Context, InquiryEvent) error { return nil }

func errorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4<<10))
	if err != nil || len(data) == 0 {
		return "notifier returned an error"
	}

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return string(data)
}

var (
	_ Notifier = (*Client)(nil)
	_ Notifier = Noop{}
)
