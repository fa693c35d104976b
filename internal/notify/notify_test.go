package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestClient_NotifyInquiry(t *testing.T) {
	event := InquiryEvent{
		InquiryID:   uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		UserID:      uuid.New(),
		CompanyID:   uuid.New(),
		CompanyName: "Acme",
		Message:     "Let's talk",
		CreatedAt:   time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	var got InquiryEvent
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/inquiries" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("X-Request-ID") != event.InquiryID.String() {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL+"/")
	if err := client.NotifyInquiry(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CompanyName != "Acme" || got.Message != "Let's talk" || !got.CreatedAt.Equal(event.CreatedAt) {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestClient_NotifyInquiry_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"mailer down"}`))
	}))
	defer server.Close()

	err := NewClient(server.Client(), server.URL).NotifyInquiry(context.Background(), InquiryEvent{InquiryID: uuid.New()})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "mailer down") {
		t.Fatalf("expected notifier message in error, got %v", err)
	}
}

func TestNoop(t *testing.T) {
	if err := (Noop{}).NotifyInquiry(context.Background(), InquiryEvent{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
