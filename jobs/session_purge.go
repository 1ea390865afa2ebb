package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// TaskSessionPurge removes database sessions past their expiry.
	TaskSessionPurge = "sessions:purge"
)

// SessionPurgePayload carries scheduling metadata.
type SessionPurgePayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// SessionPurger deletes expired sessions. Implemented by the auth repository.
type SessionPurger interface {
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

// NewSessionPurgeTask constructs an Asynq task for session purging.
func NewSessionPurgeTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(SessionPurgePayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionPurge, body, asynq.Queue(QueueDefault)), nil
}

// NewSessionPurgeHandler returns an Asynq handler bound to the purger.
func NewSessionPurgeHandler(purger SessionPurger, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SessionPurgePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		removed, err := purger.DeleteExpiredSessions(ctx)
		if err != nil {
			logger.Error("session purge", slog.Any("error", err))
			return err
		}
		if removed > 0 {
			logger.Info("purged expired sessions", slog.Int64("removed", removed))
		}
		return nil
	}
}
