package notifiers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/daniacca/colony/internal/colony"
)

// WebhookNotifier sends lifecycle events via HTTP POST to a webhook URL.
// By default every event kind is posted; Only narrows that down.
type WebhookNotifier struct {
	id      string
	url     string
	client  *http.Client
	headers map[string]string
	kinds   map[colony.EventKind]bool
}

// NewWebhookNotifier creates a new webhook notifier
func NewWebhookNotifier(id, url string) *WebhookNotifier {
	return &WebhookNotifier{
		id:      id,
		url:     url,
		client:  &http.Client{Timeout: 5 * time.Second},
		headers: make(map[string]string),
	}
}

// SetHeader sets a custom header to include in webhook requests
func (wn *WebhookNotifier) SetHeader(key, value string) {
	if wn.headers == nil {
		wn.headers = make(map[string]string)
	}
	wn.headers[key] = value
}

// Only restricts delivery to the given event kinds. Events of other kinds
// are accepted and silently skipped.
func (wn *WebhookNotifier) Only(kinds ...colony.EventKind) *WebhookNotifier {
	wn.kinds = make(map[colony.EventKind]bool, len(kinds))
	for _, k := range kinds {
		wn.kinds[k] = true
	}
	return wn
}

// Accepts reports whether events of this kind are posted.
func (wn *WebhookNotifier) Accepts(kind colony.EventKind) bool {
	return len(wn.kinds) == 0 || wn.kinds[kind]
}

// ID returns the notifier ID
func (wn *WebhookNotifier) ID() string {
	return wn.id
}

// Type returns the notifier type
func (wn *WebhookNotifier) Type() string {
	return "webhook"
}

// URL returns the target URL
func (wn *WebhookNotifier) URL() string {
	return wn.url
}

// Notify posts the event as JSON to the webhook URL
func (wn *WebhookNotifier) Notify(ctx context.Context, event colony.Event) error {
	if !wn.Accepts(event.Kind) {
		return nil
	}

	jsonData, err := event.JSON()
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wn.url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Colony-Event", string(event.Kind))
	for key, value := range wn.headers {
		req.Header.Set(key, value)
	}

	resp, err := wn.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

// Close closes the notifier (no-op for webhook)
func (wn *WebhookNotifier) Close() error {
	return nil
}
