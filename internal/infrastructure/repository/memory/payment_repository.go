package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/pool-league/internal/domain/payment"
)

type PaymentOutbox struct {
	store *Store
}

func NewPaymentOutbox(store *Store) *PaymentOutbox {
	return &PaymentOutbox{store: store}
}

func (r *PaymentOutbox) ListPending(_ context.Context, limit int) ([]payment.Instruction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]payment.Instruction, 0)
	for _, id := range r.store.insOrder {
		ins := r.store.instructions[id]
		retryable := ins.Status == payment.StatusFailed && ins.Attempts < payment.MaxAttempts
		if ins.Status != payment.StatusPending && !retryable {
			continue
		}
		out = append(out, ins)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *PaymentOutbox) ListByReference(_ context.Context, reference string) ([]payment.Instruction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]payment.Instruction, 0)
	for _, id := range r.store.insOrder {
		if ins := r.store.instructions[id]; ins.Reference == reference {
			out = append(out, ins)
		}
	}
	return out, nil
}

func (r *PaymentOutbox) MarkDispatched(_ context.Context, instructionID string, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	ins, ok := r.store.instructions[instructionID]
	if !ok {
		return fmt.Errorf("payment instruction %s not found", instructionID)
	}
	r.store.instructions[instructionID] = ins.MarkDispatched(at)
	return nil
}

func (r *PaymentOutbox) MarkFailed(_ context.Context, instructionID, reason string, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	ins, ok := r.store.instructions[instructionID]
	if !ok {
		return fmt.Errorf("payment instruction %s not found", instructionID)
	}
	r.store.instructions[instructionID] = ins.MarkFailed(reason, at)
	return nil
}
