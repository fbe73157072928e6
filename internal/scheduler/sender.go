package scheduler

import (
	"context"
	"log/slog"

	"github.com/lurkingpods/backend/internal/domain"
)

// LogSender records deliveries in the log instead of calling a push provider.
// It stands in until a real APNs/FCM integration lands.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a log-only notification sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the notification and reports success.
func (s *LogSender) Send(_ context.Context, notification *domain.Notification) error {
	s.logger.Info("Delivering notification",
		slog.String("notification_id", notification.ID),
		slog.String("user_id", notification.UserID),
		slog.String("type", string(notification.Type)),
		slog.String("title", notification.Title(domain.LanguageEN)),
	)
	return nil
}
