// Package webhook notifies an HTTP endpoint when a session finishes.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/use-agent/fahndung/models"
)

// SignatureHeader carries the HMAC-SHA256 of the request body.
const SignatureHeader = "X-Fahndung-Signature"

// Event is the payload sent to webhook endpoints.
type Event struct {
	Type      string               `json:"type"` // "session.completed" or "session.partially_failed"
	SessionID string               `json:"session_id"`
	Timestamp int64                `json:"timestamp"`
	Data      models.SessionReport `json:"data"`
}

// Sign returns the signature header value for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Notifier delivers session events. It implements session.Observer; only
// finished sessions are reported.
type Notifier struct {
	url    string
	secret string
	client *resty.Client
	logger *slog.Logger

	// Delays between delivery attempts; the first entry is usually zero.
	Delays []time.Duration
}

// New returns a Notifier posting to url. The body is signed when secret is
// not empty.
func New(url, secret string, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		url:    url,
		secret: secret,
		client: resty.New().
			SetTimeout(10*time.Second).
			SetHeader("Content-Type", "application/json").
			SetHeader("User-Agent", "Fahndung-Webhook/1.0"),
		logger: logger,
		Delays: []time.Duration{0, 1 * time.Second, 5 * time.Second, 30 * time.Second},
	}
}

// Deliver sends one event synchronously.
func (n *Notifier) Deliver(ctx context.Context, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	req := n.client.R().SetContext(ctx).SetBody(body)
	if n.secret != "" {
		req.SetHeader(SignatureHeader, Sign(n.secret, body))
	}
	resp, err := req.Post(n.url)
	if err != nil {
		return fmt.Errorf("webhook: deliver: %w", err)
	}
	if resp.StatusCode() >= 400 {
		return fmt.Errorf("webhook: endpoint returned status %d", resp.StatusCode())
	}
	return nil
}

// DeliverAsync sends an event in the background, retrying after each of
// Delays. done, if not nil, is called with the final error.
func (n *Notifier) DeliverAsync(event *Event, done func(error)) {
	go func() {
		var err error
		for attempt, delay := range n.Delays {
			if delay > 0 {
				time.Sleep(delay)
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err = n.Deliver(ctx, event)
			cancel()
			if err == nil {
				n.logger.Info("webhook delivered",
					"url", n.url,
					"event", event.Type,
					"session_id", event.SessionID,
					"attempt", attempt+1,
				)
				break
			}
			n.logger.Warn("webhook delivery failed",
				"url", n.url,
				"event", event.Type,
				"session_id", event.SessionID,
				"attempt", attempt+1,
				"error", err,
			)
		}
		if err != nil {
			n.logger.Error("webhook delivery exhausted all retries",
				"url", n.url,
				"event", event.Type,
				"session_id", event.SessionID,
			)
		}
		if done != nil {
			done(err)
		}
	}()
}

func (n *Notifier) SessionStarted(models.SessionReport) {}

func (n *Notifier) AdapterFinished(models.SessionReport, models.CrawlOutcome) {}

func (n *Notifier) SessionFinished(r models.SessionReport) {
	typ := "session.completed"
	if r.State == models.SessionPartiallyFailed {
		typ = "session.partially_failed"
	}
	n.DeliverAsync(&Event{
		Type:      typ,
		SessionID: r.ID,
		Timestamp: r.FinishedAt.Unix(),
		Data:      r,
	}, nil)
}
