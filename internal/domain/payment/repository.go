package payment

import (
	"context"
	"time"
)

// Outbox stores instructions until they are handed to the payment
// collaborator. New instructions are inserted by the repository that
// persists the state change producing them. ListPending also returns failed
// instructions with fewer than MaxAttempts attempts.
type Outbox interface {
	ListPending(ctx context.Context, limit int) ([]Instruction, error)
	ListByReference(ctx context.Context, reference string) ([]Instruction, error)
	MarkDispatched(ctx context.Context, instructionID string, at time.Time) error
	MarkFailed(ctx context.Context, instructionID, reason string, at time.Time) error
}

// Dispatcher executes an instruction. Implementations must treat the
// instruction ID as an idempotency key.
type Dispatcher interface {
	Dispatch(ctx context.Context, instruction Instruction) error
}
