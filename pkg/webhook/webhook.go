// Package webhook posts refresh summaries to HTTP endpoints.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ctrlviz/ctrlviz/pkg/config"
	"github.com/ctrlviz/ctrlviz/pkg/output"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// Client sends refresh summaries to webhook endpoints.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new webhook client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{},
	}
}

// SendOptions configures a webhook request.
type SendOptions struct {
	URL     string
	Token   string        // Bearer token (optional)
	Timeout time.Duration // Request timeout (uses DefaultTimeout if zero)
}

// Response contains the result of a webhook request.
type Response struct {
	StatusCode int
	Body       string
	Duration   time.Duration
	Error      error
}

// Success returns true if the webhook was sent successfully (2xx status).
func (r *Response) Success() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Send posts a summary to a webhook endpoint.
func (c *Client) Send(ctx context.Context, summary *output.Summary, opts SendOptions) *Response {
	start := time.Now()
	resp := &Response{}
	fail := func(err error) *Response {
		resp.Error = err
		resp.Duration = time.Since(start)
		return resp
	}

	payload, err := json.Marshal(summary)
	if err != nil {
		return fail(fmt.Errorf("failed to marshal summary: %w", err))
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.URL, bytes.NewReader(payload))
	if err != nil {
		return fail(fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "ctrlviz-webhook")
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(fmt.Errorf("request failed: %w", err))
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, 1024*1024))
	if err != nil {
		return fail(fmt.Errorf("failed to read response: %w", err))
	}

	resp.StatusCode = httpResp.StatusCode
	resp.Body = string(body)
	resp.Duration = time.Since(start)

	if resp.StatusCode >= 400 {
		resp.Error = fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return resp
}

// ShouldFire reports whether a hook with the given trigger fires for
// summary.
func ShouldFire(trigger config.WebhookTrigger, summary *output.Summary) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerOnError, "":
		return summary.Failed()
	default:
		return false
	}
}

// Notifier fans a summary out to the configured hooks.
type Notifier struct {
	client *Client
	hooks  []config.WebhookConfig
	logger *slog.Logger
}

// NewNotifier creates a notifier for hooks.
func NewNotifier(hooks []config.WebhookConfig, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{client: NewClient(), hooks: hooks, logger: logger}
}

// Notify sends summary to every hook whose trigger matches. Delivery
// failures are logged and returned in the responses; they never fail the
// refresh.
func (n *Notifier) Notify(ctx context.Context, summary *output.Summary) []*Response {
	var out []*Response
	for _, hook := range n.hooks {
		if !ShouldFire(hook.Trigger, summary) {
			continue
		}

		name := hook.Name
		if name == "" {
			name = hook.URL
		}

		resp := n.client.Send(ctx, summary, SendOptions{
			URL:     hook.URL,
			Token:   hook.Token,
			Timeout: hook.Timeout,
		})
		if resp.Success() {
			n.logger.Debug("webhook sent", "webhook", name, "status", resp.StatusCode, "duration", resp.Duration)
		} else {
			n.logger.Warn("webhook failed", "webhook", name, "error", resp.Error)
		}
		out = append(out, resp)
	}
	return out
}
