package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// TaskAuditTrim removes audit entries past the retention window.
	TaskAuditTrim = "audit:trim"
)

// AuditTrimPayload carries the retention window for a trim run.
type AuditTrimPayload struct {
	Retention time.Duration `json:"retention"`
}

// AuditTrimmer trims the audit trail. Implemented by the audit service.
type AuditTrimmer interface {
	Trim(ctx context.Context, retention time.Duration) (int64, error)
}

// NewAuditTrimTask constructs an Asynq task for audit trimming.
func NewAuditTrimTask(retention time.Duration) (*asynq.Task, error) {
	body, err := json.Marshal(AuditTrimPayload{Retention: retention})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditTrim, body, asynq.Queue(QueueDefault)), nil
}

// NewAuditTrimHandler returns an Asynq handler bound to the trimmer.
func NewAuditTrimHandler(trimmer AuditTrimmer, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload AuditTrimPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.Retention <= 0 {
			return asynq.SkipRetry
		}
		if _, err := trimmer.Trim(ctx, payload.Retention); err != nil {
			logger.Error("audit trim", slog.Any("error", err))
			return err
		}
		return nil
	}
}
