package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"go-jobboard-backend/internal/domain"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of audit event
type EventType string

const (
	EventAccessDenied         EventType = "access_denied"
	EventDuplicateApplication EventType = "duplicate_application"
	EventApplicationCreated   EventType = "application_created"
	EventCounterDrift         EventType = "application_counter_drift"
	EventApplicationStatus    EventType = "application_status_changed"
	EventJobClosed            EventType = "job_closed"
	EventResumeUploaded       EventType = "resume_uploaded"
	EventResumeReplaced       EventType = "resume_replaced"
	EventResumeDeleted        EventType = "resume_deleted"
	EventBlobOrphaned         EventType = "blob_orphaned"
	EventUploadRejected       EventType = "upload_rejected"
	EventAccountStatus        EventType = "account_status_changed"
	EventRateLimitTriggered   EventType = "rate_limit_triggered"
)

// AuditEvent represents a business or security event worth keeping a trail of
type AuditEvent struct {
	Event    EventType
	ActorID  string
	Resource string // "job", "application", "resume", "user"
	TargetID string
	Details  map[string]interface{}
}

// AuditLogger provides structured logging for audit events
type AuditLogger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

// NewAuditLogger builds a production zap logger writing JSON to stdout.
func NewAuditLogger(serviceName, environment string) *AuditLogger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		logger, _ = zap.NewProduction()
	}

	return &AuditLogger{
		zapLogger:   logger,
		serviceName: serviceName,
		environment: environment,
	}
}

// NewAuditLoggerWith wraps an existing zap logger (tests pass zap.NewNop or an observer).
func NewAuditLoggerWith(l *zap.Logger) *AuditLogger {
	return &AuditLogger{zapLogger: l, serviceName: "test", environment: "test"}
}

// NopAuditLogger discards every event.
func NopAuditLogger() *AuditLogger {
	return NewAuditLoggerWith(zap.NewNop())
}

// Log records an event at the level its severity maps to.
func (al *AuditLogger) Log(ctx context.Context, event AuditEvent) {
	if al == nil {
		return
	}

	severity := GetSeverity(event.Event)

	fields := []zap.Field{
		zap.String("service", al.serviceName),
		zap.String("env", al.environment),
		zap.String("event", string(event.Event)),
		zap.String("severity", string(severity)),
		zap.Time("at", time.Now().UTC()),
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor", HashValue(event.ActorID)))
	}
	if event.Resource != "" {
		fields = append(fields, zap.String("resource", event.Resource))
	}
	if event.TargetID != "" {
		fields = append(fields, zap.String("target_id", event.TargetID))
	}
	if reqID, ok := ctx.Value(domain.KeyRequestID).(string); ok && reqID != "" {
		fields = append(fields, zap.String("request_id", reqID))
	}
	if len(event.Details) > 0 {
		fields = append(fields, zap.Any("details", event.Details))
	}

	al.zapLogger.Log(severity.level(), string(event.Event), fields...)
}

// Denied is shorthand for an ownership/role denial.
func (al *AuditLogger) Denied(ctx context.Context, actorID, resource, targetID string) {
	al.Log(ctx, AuditEvent{Event: EventAccessDenied, ActorID: actorID, Resource: resource, TargetID: targetID})
}

// Sync flushes any buffered log entries
func (al *AuditLogger) Sync() error {
	if al == nil {
		return nil
	}
	return al.zapLogger.Sync()
}

// MaskEmail masks an email for logging (e.g., "j***@example.com")
func MaskEmail(email string) string {
	if len(email) < 3 {
		return "***"
	}
	atIndex := -1
	for i, c := range email {
		if c == '@' {
			atIndex = i
			break
		}
	}
	if atIndex <= 1 {
		return "***" + email[1:]
	}
	return string(email[0]) + "***" + email[atIndex:]
}

// HashValue creates a SHA256 hash of a value (for logging without PII)
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}
