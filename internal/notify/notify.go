package notify

import (
	"context"

	"github.com/imamik/ociclaim/internal/config"
)

// Logger receives delivery failures.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Notifier sends a message. Implementations swallow delivery errors.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// Discard drops every message.
type Discard struct{}

// Notify implements Notifier.
func (Discard) Notify(context.Context, string) {}

// New returns a Telegram notifier when both settings are present, else Discard.
func New(cfg config.NotifyConfig, logger Logger) Notifier {
	if !cfg.Enabled() {
		return Discard{}
	}
	return NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID, logger)
}
