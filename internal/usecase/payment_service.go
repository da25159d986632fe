package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/pool-league/internal/domain/payment"
	"github.com/riskibarqy/pool-league/internal/platform/logging"
)

const (
	defaultFlushWorkers = 4
	maxFlushWorkers     = 32

	flushStatusDispatched = "dispatched"
	flushStatusFailed     = "failed"
)

type PaymentConfig struct {
	Workers int
}

type FlushResult struct {
	Pending     int               `json:"pending"`
	Dispatched  int               `json:"dispatched"`
	Failed      int               `json:"failed"`
	WorkerCount int               `json:"worker_count"`
	Items       []FlushItemResult `json:"items"`
}

type FlushItemResult struct {
	InstructionID string `json:"instruction_id"`
	Kind          string `json:"kind"`
	Status        string `json:"status"`
	DurationMs    int64  `json:"duration_ms"`
	Message       string `json:"message,omitempty"`
}

// PaymentService hands outbox instructions to the payment collaborator.
type PaymentService struct {
	outbox     payment.Outbox
	dispatcher payment.Dispatcher
	cfg        PaymentConfig
	logger     *logging.Logger
	now        func() time.Time
}

func NewPaymentService(outbox payment.Outbox, dispatcher payment.Dispatcher, cfg PaymentConfig, logger *logging.Logger) *PaymentService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultFlushWorkers
	}
	return &PaymentService{
		outbox:     outbox,
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// Flush dispatches up to limit pending instructions concurrently. A failed
// dispatch is recorded on the instruction and retried by a later flush.
func (s *PaymentService) Flush(ctx context.Context, limit int) (FlushResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PaymentService.Flush")
	defer span.End()

	if s.dispatcher == nil {
		return FlushResult{}, fmt.Errorf("%w: payment dispatcher is not configured", ErrDependencyUnavailable)
	}

	pending, err := s.outbox.ListPending(ctx, limit)
	if err != nil {
		return FlushResult{}, fmt.Errorf("list pending payment instructions: %w", err)
	}

	workerCount := normalizeWorkerCount(s.cfg.Workers, len(pending))
	result := FlushResult{
		Pending:     len(pending),
		WorkerCount: workerCount,
		Items:       make([]FlushItemResult, 0, len(pending)),
	}
	if len(pending) == 0 {
		return result, nil
	}

	workers, err := ants.NewPool(workerCount)
	if err != nil {
		return FlushResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer workers.Release()

	results := make(chan FlushItemResult, len(pending))
	var dispatched atomic.Int32
	var failed atomic.Int32

	var wg sync.WaitGroup
	for _, ins := range pending {
		ins := ins
		wg.Add(1)
		if err := workers.Submit(func() {
			defer wg.Done()

			row := s.dispatchOne(ctx, ins)
			if row.Status == flushStatusDispatched {
				dispatched.Add(1)
			} else {
				failed.Add(1)
			}
			results <- row
		}); err != nil {
			wg.Done()
			return FlushResult{}, fmt.Errorf("submit payment dispatch to worker pool: %w", err)
		}
	}

	wg.Wait()
	close(results)

	for row := range results {
		result.Items = append(result.Items, row)
	}
	sort.SliceStable(result.Items, func(i, j int) bool {
		return result.Items[i].InstructionID < result.Items[j].InstructionID
	})

	result.Dispatched = int(dispatched.Load())
	result.Failed = int(failed.Load())
	if result.Failed > 0 {
		s.logger.WarnContext(ctx, "payment flush finished with failures",
			"pending", result.Pending,
			"dispatched", result.Dispatched,
			"failed", result.Failed,
		)
	}
	return result, nil
}

func (s *PaymentService) ListByReference(ctx context.Context, reference string) ([]payment.Instruction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PaymentService.ListByReference")
	defer span.End()

	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, fmt.Errorf("%w: reference is required", ErrInvalidInput)
	}

	items, err := s.outbox.ListByReference(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("list payment instructions: %w", err)
	}
	return items, nil
}

func (s *PaymentService) dispatchOne(ctx context.Context, ins payment.Instruction) FlushItemResult {
	start := time.Now()
	row := FlushItemResult{
		InstructionID: ins.ID,
		Kind:          string(ins.Kind),
		Status:        flushStatusDispatched,
	}

	if err := s.dispatcher.Dispatch(ctx, ins); err != nil {
		row.Status = flushStatusFailed
		row.Message = err.Error()
		if markErr := s.outbox.MarkFailed(ctx, ins.ID, err.Error(), s.now().UTC()); markErr != nil {
			s.logger.ErrorContext(ctx, "mark payment instruction failed",
				"instruction_id", ins.ID,
				"error", markErr,
			)
		}
	} else if markErr := s.outbox.MarkDispatched(ctx, ins.ID, s.now().UTC()); markErr != nil {
		// The transfer went out; the idempotency key keeps a retry harmless.
		row.Message = markErr.Error()
		s.logger.ErrorContext(ctx, "mark payment instruction dispatched",
			"instruction_id", ins.ID,
			"error", markErr,
		)
	}

	row.DurationMs = time.Since(start).Milliseconds()
	return row
}

func normalizeWorkerCount(requested, tasks int) int {
	if requested <= 0 {
		requested = defaultFlushWorkers
	}
	if requested > maxFlushWorkers {
		requested = maxFlushWorkers
	}
	if tasks > 0 && requested > tasks {
		requested = tasks
	}
	if requested <= 0 {
		requested = 1
	}
	return requested
}
