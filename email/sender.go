// Package email sends the transactional messages of the account flows
// through Brevo templates.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBrevoURL = "https://api.brevo.com"

	senderName  = "SmartCalendar Team"
	senderEmail = "no-reply@smartcalendar.se"
)

type Message struct {
	To         string
	Subject    string
	TemplateID int64
	Params     map[string]any
}

type Sender func(ctx context.Context, msg Message) error

type contact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoRequest struct {
	Sender     contact        `json:"sender"`
	To         []contact      `json:"to"`
	Subject    string         `json:"subject"`
	TemplateID int64          `json:"templateId"`
	Params     map[string]any `json:"params,omitempty"`
}

// NewBrevoSender posts messages to the Brevo transactional email API.
func NewBrevoSender(apiKey, baseURL string, client *http.Client) Sender {
	if baseURL == "" {
		baseURL = DefaultBrevoURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	endpoint := baseURL + "/v3/smtp/email"

	return func(ctx context.Context, msg Message) error {
		body, err := json.Marshal(brevoRequest{
			Sender:     contact{Name: senderName, Email: senderEmail},
			To:         []contact{{Email: msg.To}},
			Subject:    msg.Subject,
			TemplateID: msg.TemplateID,
			Params:     msg.Params,
		})
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("api-key", apiKey)

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			respBody, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("brevo returned status %d: %s", resp.StatusCode, string(respBody))
		}
		return nil
	}
}

// NewLogSender only logs the message. Used when no API key is configured.
func NewLogSender() Sender {
	return func(ctx context.Context, msg Message) error {
		slog.InfoContext(ctx, "email not sent, no provider configured",
			"to", msg.To,
			"subject", msg.Subject,
			"template_id", msg.TemplateID,
			"params", msg.Params,
		)
		return nil
	}
}

// WithRateLimit makes next wait for limiter before every send.
func WithRateLimit(next Sender, limiter *rate.Limiter) Sender {
	return func(ctx context.Context, msg Message) error {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		return next(ctx, msg)
	}
}
