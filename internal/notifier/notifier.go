package notifier

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Notifier delivers a formatted report.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// LogNotifier writes reports to the logger. It is used when no webhook is
// configured.
type LogNotifier struct{}

func (LogNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	log.Info("report\n" + text)
	return nil
}
