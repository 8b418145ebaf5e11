package security

import "go.uber.org/zap/zapcore"

// Severity represents the severity level of an audit event.
// It is derived from the EventType, never supplied by the caller.
type Severity string

const (
	SeverityINFO     Severity = "INFO"
	SeverityWARN     Severity = "WARN"
	SeverityHIGH     Severity = "HIGH"
	SeverityCRITICAL Severity = "CRITICAL"
)

// EventSeverityMap defines the fixed severity for each event type.
// Unmapped events are INFO.
var EventSeverityMap = map[EventType]Severity{
	// WARN - Potential abuse, monitor
	EventDuplicateApplication: SeverityWARN,
	EventUploadRejected:       SeverityWARN,
	EventRateLimitTriggered:   SeverityWARN,

	// HIGH - Probing or privileged changes
	EventAccessDenied:  SeverityHIGH,
	EventAccountStatus: SeverityHIGH,

	// CRITICAL - Data left inconsistent, needs an operator
	EventCounterDrift: SeverityCRITICAL,
	EventBlobOrphaned: SeverityCRITICAL,
}

// GetSeverity returns the severity for an event type
func GetSeverity(eventType EventType) Severity {
	if severity, ok := EventSeverityMap[eventType]; ok {
		return severity
	}
	return SeverityINFO
}

// IsHighOrAbove returns true if the event is HIGH or CRITICAL severity
func IsHighOrAbove(eventType EventType) bool {
	severity := GetSeverity(eventType)
	return severity == SeverityHIGH || severity == SeverityCRITICAL
}

// level maps a severity onto the zap level it is written at.
func (s Severity) level() zapcore.Level {
	switch s {
	case SeverityCRITICAL:
		return zapcore.ErrorLevel
	case SeverityWARN, SeverityHIGH:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}
