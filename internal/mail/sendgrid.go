package mail

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Sender tek alıcılı e-posta gönderir.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

type SendGridClient struct {
	apiKey   string
	from     string
	fromName string
	log      *zap.Logger
}

func NewSendGridClient(apiKey, from, fromName string, log *zap.Logger) *SendGridClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &SendGridClient{apiKey: apiKey, from: from, fromName: fromName, log: log}
}

func (c *SendGridClient) Send(ctx context.Context, to, subject, text, html string) error {
	if c.apiKey == "" {
		return fmt.Errorf("sendgrid api key is empty")
	}
	if to == "" {
		return fmt.Errorf("to address is empty")
	}

	message := sgmail.NewSingleEmail(
		sgmail.NewEmail(c.fromName, c.from),
		subject,
		sgmail.NewEmail("", to),
		text,
		html,
	)

	client := sendgrid.NewSendClient(c.apiKey)
	resp, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if resp.StatusCode >= 400 {
		c.log.Warn("sendgrid rejected mail", zap.Int("status", resp.StatusCode), zap.String("body", resp.Body))
		return fmt.Errorf("sendgrid send failed: status=%d", resp.StatusCode)
	}

	c.log.Info("mail sent", zap.Int("status", resp.StatusCode), zap.String("subject", subject))
	return nil
}

// LogSender API anahtarı olmayan ortamlarda postayı sadece loglar.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, to, subject, text, html string) error {
	s.log.Info("mail (not sent, no provider configured)",
		zap.String("to", to), zap.String("subject", subject), zap.String("text", text))
	return nil
}
