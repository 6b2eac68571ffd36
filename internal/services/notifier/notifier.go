package notifier

import (
	"context"

	"github.com/sirupsen/logrus"

	"golang-admin-command-runner/internal/models"
)

// Publisher announces committed command runs to the outside world.
type Publisher interface {
	Publish(ctx context.Context, event models.CommandRunEvent) error
}

// Multi fans an event out to every publisher. A failing publisher is logged
// and does not stop the others.
type Multi struct {
	publishers []Publisher
	logger     *logrus.Logger
}

func NewMulti(logger *logrus.Logger, publishers ...Publisher) *Multi {
	return &Multi{publishers: publishers, logger: logger}
}

func (m *Multi) Len() int {
	return len(m.publishers)
}

func (m *Multi) Publish(ctx context.Context, event models.CommandRunEvent) error {
	for _, p := range m.publishers {
		if err := p.Publish(ctx, event); err != nil {
			m.logger.WithError(err).WithFields(logrus.Fields{
				"event_id": event.EventID,
				"run_id":   event.RunID,
			}).Warn("Failed to publish command run event")
		}
	}
	return nil
}
