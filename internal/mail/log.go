package mail

import (
	"context"
	"log/slog"

	"github.com/pribylovaa/smilecook/internal/pkg/log"
	"github.com/pribylovaa/smilecook/internal/pkg/redact"
)

// LogSender пишет письма в лог вместо отправки (локальная разработка, без ключа SendGrid).
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg Message) error {
	log.From(ctx).Info("mail_not_sent",
		slog.String("to", redact.Email(msg.ToEmail)),
		slog.String("subject", msg.Subject),
		slog.String("text", msg.Text),
	)

	return nil
}

var _ Sender = LogSender{}
