package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/sitehem/sitehem/internal/jobs"
	"github.com/sitehem/sitehem/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeAuthEvent is the task type for persisting authentication audit events.
	TaskTypeAuthEvent = "auth:event"
)

// AuthEventPayload carries an authentication event to the worker.
type AuthEventPayload struct {
	UserID int64          `json:"user_id,omitempty"`
	Email  string         `json:"email,omitempty"`
	Action string         `json:"action"`
	IP     string         `json:"ip,omitempty"`
	Meta   map[string]any `json:"meta,omitempty"`
	At     time.Time      `json:"at"`
}

// NewAuthEventTask constructs an Asynq task.
func NewAuthEventTask(payload AuthEventPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAuthEvent, data), nil
}

// AuthEventJob persists queued authentication events through the audit log.
type AuthEventJob struct {
	audit   *shared.AuditLogger
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewAuthEventJob constructs the handler for TaskTypeAuthEvent tasks.
func NewAuthEventJob(audit *shared.AuditLogger, logger *slog.Logger, metrics *jobmetrics.Metrics) *AuthEventJob {
	return &AuthEventJob{audit: audit, logger: logger, metrics: metrics}
}

// Handle processes a single auth event task.
func (j *AuthEventJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track("auth_event")
	var payload AuthEventPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		j.logger.Warn("auth event payload", slog.Any("error", err))
		return tracker.End(asynq.SkipRetry)
	}
	event := shared.AuthEvent{
		UserID: payload.UserID,
		Email:  payload.Email,
		Action: payload.Action,
		IP:     payload.IP,
		Meta:   payload.Meta,
		At:     payload.At,
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	return tracker.End(j.audit.Record(ctx, event))
}
