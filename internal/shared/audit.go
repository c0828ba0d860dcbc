package shared

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuthEvent represents a record stored in auth_audit_logs.
type AuthEvent struct {
	UserID int64
	Email  string
	Action string
	IP     string
	Meta   map[string]any
	At     time.Time
}

// Auth event actions.
const (
	AuditLoginSucceeded = "login.succeeded"
	AuditLoginFailed    = "login.failed"
	AuditLoginThrottled = "login.throttled"
)

// AuditLogger writes authentication events into auth_audit_logs.
type AuditLogger struct {
	pool *pgxpool.Pool
}

// NewAuditLogger returns a new AuditLogger.
func NewAuditLogger(pool *pgxpool.Pool) *AuditLogger {
	return &AuditLogger{pool: pool}
}

// Record persists the event.
func (l *AuditLogger) Record(ctx context.Context, ev AuthEvent) error {
	if l == nil {
		return errors.New("audit logger not initialised")
	}
	if ev.Action == "" {
		return errors.New("audit event requires an action")
	}
	metaJSON, err := json.Marshal(ev.Meta)
	if err != nil {
		return err
	}
	at := ev.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err = l.pool.Exec(ctx,
		`INSERT INTO auth_audit_logs (user_id, email, action, ip, meta, occurred_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		ev.UserID, ev.Email, ev.Action, ev.IP, metaJSON, at)
	return err
}
