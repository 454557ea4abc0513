package mail

import (
	"context"
	"fmt"

	"github.com/pribylovaa/smilecook/internal/config"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridSender отправляет письма через SendGrid API v3.
type SendGridSender struct {
	client *sendgrid.Client
	from   *sgmail.Email
}

// NewSendGridSender создаёт отправителя по конфигурации.
func NewSendGridSender(cfg config.MailConfig) *SendGridSender {
	return &SendGridSender{
		client: sendgrid.NewSendClient(cfg.SendGridAPIKey),
		from:   sgmail.NewEmail(cfg.FromName, cfg.FromAddress),
	}
}

// Send отправляет письмо; ответ со статусом >= 300 считается ошибкой.
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	const op = "mail.SendGridSender.Send"

	to := sgmail.NewEmail(msg.ToName, msg.ToEmail)
	message := sgmail.NewSingleEmail(s.from, msg.Subject, to, msg.Text, msg.HTML)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s: unexpected status %d: %s", op, resp.StatusCode, resp.Body)
	}

	return nil
}

var _ Sender = (*SendGridSender)(nil)
