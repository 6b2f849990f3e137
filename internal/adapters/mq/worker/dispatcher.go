package worker

import (
	"context"

	"github.com/vibingbhudha77/vibex/pkg/logger"
)

// LogDispatcher writes notifications to the structured log. It stands in
// for the push-notification collaborator in environments that have none.
type LogDispatcher struct {
	logger logger.Logger
}

// NewLogDispatcher creates a dispatcher that logs every notification.
func NewLogDispatcher() *LogDispatcher {
	return &LogDispatcher{logger: logger.Get().Named("notify")}
}

// Dispatch logs the notification at info level.
func (d *LogDispatcher) Dispatch(ctx context.Context, n Notification) error {
	d.logger.Info(ctx, "notification",
		logger.String("id", n.ID),
		logger.String("type", string(n.Type)),
		logger.String("receiver", n.ReceiverID),
		logger.Int64("session_id", n.SessionID),
		logger.String("actor", n.ActorID),
	)
	return nil
}
