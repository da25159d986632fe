package jobscheduler

import "time"

type DispatchStatus string

const (
	StatusSent      DispatchStatus = "sent"
	StatusCompleted DispatchStatus = "completed"
	StatusFailed    DispatchStatus = "failed"
)

const (
	JobExpireChallenge  = "expire-challenge"
	JobExpireChallenges = "expire-challenges"
	JobFlushPayments    = "flush-payments"
)

// DispatchEvent is one audit record of a scheduled job hand-off.
type DispatchEvent struct {
	DispatchID   string
	JobName      string
	JobPath      string
	Reference    string
	Status       DispatchStatus
	Payload      map[string]any
	ErrorMessage string
	OccurredAt   time.Time
	TraceID      string
	SpanID       string
}
