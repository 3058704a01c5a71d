package notify

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/adminusers/pkg/idx"
)

// LogSender writes notifications to the log instead of delivering them.
// Intended for development.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) SendEmail(_ context.Context, msg Message) (string, error) {
	return s.log("email", msg), nil
}

func (s LogSender) SendSMS(_ context.Context, msg Message) (string, error) {
	return s.log("sms", msg), nil
}

func (s LogSender) log(channel string, msg Message) string {
	ref := idx.New().String()
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("notification logged (dev mode)",
		slog.String("channel", channel),
		slog.String("reference", ref),
		slog.String("to", msg.To),
		slog.String("template_id", msg.TemplateID),
		slog.Any("personalisation", msg.Personalisation),
	)
	return ref
}
