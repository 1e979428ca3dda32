package email

import (
	"context"
	"log/slog"
	"smartcalendar/metrics"
)

const (
	VerificationTemplateID  int64 = 1
	PasswordResetTemplateID int64 = 2

	kindVerification  = "verification"
	kindPasswordReset = "password_reset"
)

// Client renders the account emails and hands them to a Sender.
type Client struct {
	send Sender
}

func NewClient(send Sender) *Client {
	return &Client{send: send}
}

func (c *Client) SendVerification(ctx context.Context, to, verificationURL, otp string) error {
	return c.deliver(ctx, kindVerification, Message{
		To:         to,
		Subject:    "Verify your email",
		TemplateID: VerificationTemplateID,
		Params: map[string]any{
			"verificationUrl": verificationURL,
			"otp":             otp,
		},
	})
}

func (c *Client) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	return c.deliver(ctx, kindPasswordReset, Message{
		To:         to,
		Subject:    "Reset your password",
		TemplateID: PasswordResetTemplateID,
		Params: map[string]any{
			"resetUrl": resetURL,
		},
	})
}

func (c *Client) deliver(ctx context.Context, kind string, msg Message) error {
	if err := c.send(ctx, msg); err != nil {
		metrics.EmailsSent.WithLabelValues(kind, "error").Inc()
		slog.ErrorContext(ctx, "failed to send email", "kind", kind, "to", msg.To, "error", err)
		return err
	}
	metrics.EmailsSent.WithLabelValues(kind, "ok").Inc()
	slog.InfoContext(ctx, "sent email", "kind", kind, "to", msg.To)
	return nil
}
