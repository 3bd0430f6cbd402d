package delivery

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	internaldelivery "github.com/quokkastudio/vcscribe/internal/delivery"
)

func TestWebhookSenderPostsPayloadJSON(t *testing.T) {
	var got internaldelivery.Payload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("unexpected content type: %s", ct)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if err := json.Unmarshal(body, &got); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewWebhookSender(server.URL)
	payload := internaldelivery.Payload{
		SchemaVersion: internaldelivery.PayloadSchemaVersion,
		SessionID:     "abc",
		ChannelName:   "general-voice",
		Transcript:    "alice: hi",
		Report:        "short report",
	}
	if err := sender.Send(context.Background(), "short report", payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.SessionID != "abc" || got.Report != "short report" {
		t.Fatalf("payload not delivered intact: %+v", got)
	}
}

func TestWebhookSenderRejectsBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	sender := NewWebhookSender(server.URL)
	err := sender.Send(context.Background(), "r", internaldelivery.Payload{})
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestTelegramSenderSplitsLongReports(t *testing.T) {
	var texts []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/sendMessage") {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["chat_id"] != "42" {
			t.Fatalf("unexpected chat id %q", body["chat_id"])
		}
		texts = append(texts, body["text"])
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewTelegramSender("token", "42")
	sender.apiBase = server.URL

	long := strings.Repeat("line of report text\n", 300) // > 4096 chars
	if err := sender.Send(context.Background(), long, internaldelivery.Payload{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(texts) < 2 {
		t.Fatalf("expected report split into multiple messages, got %d", len(texts))
	}
	for i, text := range texts {
		if len(text) > telegramTextBudget {
			t.Fatalf("message %d exceeds telegram budget: %d chars", i, len(text))
		}
	}
}

func TestSlackSenderPostsText(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		got = body["text"]
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewSlackSender(server.URL)
	if err := sender.Send(context.Background(), "the report", internaldelivery.Payload{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "the report" {
		t.Fatalf("expected report text posted, got %q", got)
	}
}
