package notifiers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/daniacca/colony/internal/colony"
)

func testEvent(kind colony.EventKind) colony.Event {
	return colony.Event{
		World:    "test-world",
		Kind:     kind,
		EntityID: "abc123",
		Species:  colony.Species2,
		Position: colony.Position{Row: 1, Col: 2},
		At:       time.Now(),
	}
}

func TestWebhookNotifier(t *testing.T) {
	notifier := NewWebhookNotifier("test-webhook", "http://localhost:9999/webhook")

	if notifier.ID() != "test-webhook" {
		t.Errorf("Expected ID 'test-webhook', got '%s'", notifier.ID())
	}
	if notifier.Type() != "webhook" {
		t.Errorf("Expected type 'webhook', got '%s'", notifier.Type())
	}
	if notifier.URL() != "http://localhost:9999/webhook" {
		t.Errorf("Unexpected URL %s", notifier.URL())
	}
	if err := notifier.Close(); err != nil {
		t.Errorf("Close should not return error: %v", err)
	}
}

func TestWebhookNotifier_Post(t *testing.T) {
	var mu sync.Mutex
	var gotBody []byte
	var gotHeader http.Header

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		gotBody = body
		gotHeader = r.Header.Clone()
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier("hook", server.URL)
	notifier.SetHeader("Authorization", "Bearer token")

	if err := notifier.Notify(context.Background(), testEvent(colony.EventBorn)); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if gotHeader.Get("Content-Type") != "application/json" {
		t.Errorf("Expected JSON content type, got %s", gotHeader.Get("Content-Type"))
	}
	if gotHeader.Get("X-Colony-Event") != "born" {
		t.Errorf("Expected X-Colony-Event 'born', got '%s'", gotHeader.Get("X-Colony-Event"))
	}
	if gotHeader.Get("Authorization") != "Bearer token" {
		t.Errorf("Expected custom header to be sent")
	}

	var decoded colony.Event
	if err := json.Unmarshal(gotBody, &decoded); err != nil {
		t.Fatalf("Body is not an event: %v", err)
	}
	if decoded.EntityID != "abc123" || decoded.Position != (colony.Position{Row: 1, Col: 2}) {
		t.Errorf("Unexpected event body: %+v", decoded)
	}
}

func TestWebhookNotifier_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier("hook", server.URL)
	if err := notifier.Notify(context.Background(), testEvent(colony.EventDied)); err == nil {
		t.Error("Expected error for non-2xx status")
	}
}

func TestWebhookNotifier_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	notifier := NewWebhookNotifier("hook", url)
	if err := notifier.Notify(context.Background(), testEvent(colony.EventBorn)); err == nil {
		t.Error("Expected error when the server is gone")
	}
}

func TestWebhookNotifier_Only(t *testing.T) {
	calls := 0
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
	}))
	defer server.Close()

	notifier := NewWebhookNotifier("hook", server.URL).Only(colony.EventMurdered)

	if notifier.Accepts(colony.EventBorn) {
		t.Error("Expected born to be filtered out")
	}
	if !notifier.Accepts(colony.EventMurdered) {
		t.Error("Expected murdered to be accepted")
	}

	ctx := context.Background()
	if err := notifier.Notify(ctx, testEvent(colony.EventBorn)); err != nil {
		t.Errorf("Filtered event should not error: %v", err)
	}
	if err := notifier.Notify(ctx, testEvent(colony.EventMurdered)); err != nil {
		t.Errorf("Notify failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("Expected 1 request, got %d", calls)
	}
}
