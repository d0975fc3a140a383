package client

import "github.com/daniacca/colony/internal/colony"

// NotifierConfig is the registration body understood by POST /notifiers.
type NotifierConfig struct {
	Type   string         `json:"type"`
	ID     string         `json:"id"`
	Config map[string]any `json:"config"`
}

// WebhookBuilder provides a fluent API for building webhook registrations.
type WebhookBuilder struct {
	id      string
	url     string
	headers map[string]string
	kinds   []colony.EventKind
}

// NewWebhook creates a webhook builder posting every lifecycle event to url.
func NewWebhook(id, url string) *WebhookBuilder {
	return &WebhookBuilder{
		id:      id,
		url:     url,
		headers: make(map[string]string),
	}
}

// Header adds a header sent with every webhook request.
func (wb *WebhookBuilder) Header(key, value string) *WebhookBuilder {
	wb.headers[key] = value
	return wb
}

// Only restricts the webhook to the given event kinds.
func (wb *WebhookBuilder) Only(kinds ...colony.EventKind) *WebhookBuilder {
	wb.kinds = append(wb.kinds, kinds...)
	return wb
}

// Build converts the builder to a NotifierConfig.
func (wb *WebhookBuilder) Build() NotifierConfig {
	cfg := map[string]any{"url": wb.url}
	if len(wb.headers) > 0 {
		headers := make(map[string]any, len(wb.headers))
		for k, v := range wb.headers {
			headers[k] = v
		}
		cfg["headers"] = headers
	}
	if len(wb.kinds) > 0 {
		kinds := make([]any, len(wb.kinds))
		for i, k := range wb.kinds {
			kinds[i] = string(k)
		}
		cfg["kinds"] = kinds
	}
	return NotifierConfig{Type: "webhook", ID: wb.id, Config: cfg}
}
