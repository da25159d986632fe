package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/riskibarqy/pool-league/internal/domain/jobscheduler"
	"github.com/riskibarqy/pool-league/internal/platform/logging"
	"go.opentelemetry.io/otel/trace"
)

const (
	JobPathExpireChallenge  = "/v1/internal/jobs/expire-challenge"
	JobPathExpireChallenges = "/v1/internal/jobs/expire-challenges"
	JobPathFlushPayments    = "/v1/internal/jobs/flush-payments"
)

type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type noopJobQueue struct{}

func (noopJobQueue) Enqueue(_ context.Context, _ string, _ any, _ time.Duration, _ string) error {
	return nil
}

func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}

var dedupUnsafeCharRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// jobDispatcher enqueues internal jobs and keeps one dispatch audit record
// per hand-off.
type jobDispatcher struct {
	queue        JobQueue
	dispatchRepo jobscheduler.Repository
	logger       *logging.Logger
	now          func() time.Time
}

func newJobDispatcher(queue JobQueue, dispatchRepo jobscheduler.Repository, logger *logging.Logger) *jobDispatcher {
	if queue == nil {
		queue = NewNoopJobQueue()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &jobDispatcher{
		queue:        queue,
		dispatchRepo: dispatchRepo,
		logger:       logger,
		now:          time.Now,
	}
}

func (d *jobDispatcher) enqueue(ctx context.Context, jobName, path, reference, dedupID string, delay time.Duration) error {
	payload := map[string]any{
		"reference":   reference,
		"dispatch_id": dedupID,
	}
	event := jobscheduler.DispatchEvent{
		DispatchID: dedupID,
		JobName:    jobName,
		JobPath:    path,
		Reference:  reference,
		Status:     jobscheduler.StatusSent,
		Payload:    payload,
		OccurredAt: d.now().UTC(),
	}
	if err := d.queue.Enqueue(ctx, path, payload, delay, dedupID); err != nil {
		event.Status = jobscheduler.StatusFailed
		event.ErrorMessage = err.Error()
		d.record(ctx, event)
		return fmt.Errorf("enqueue %s reference=%s: %w", jobName, reference, err)
	}
	d.record(ctx, event)
	return nil
}

func (d *jobDispatcher) complete(ctx context.Context, jobName, path, dispatchID, reference string, runErr error) {
	event := jobscheduler.DispatchEvent{
		DispatchID: dispatchID,
		JobName:    jobName,
		JobPath:    path,
		Reference:  reference,
		Status:     jobscheduler.StatusCompleted,
		OccurredAt: d.now().UTC(),
	}
	if runErr != nil {
		event.Status = jobscheduler.StatusFailed
		event.ErrorMessage = runErr.Error()
	}
	d.record(ctx, event)
}

func (d *jobDispatcher) record(ctx context.Context, event jobscheduler.DispatchEvent) {
	if d.dispatchRepo == nil || strings.TrimSpace(event.DispatchID) == "" {
		return
	}
	traceID, spanID := traceMetaFromContext(ctx)
	event.TraceID = traceID
	event.SpanID = spanID
	if event.OccurredAt.IsZero() {
		event.OccurredAt = d.now().UTC()
	}
	if err := d.dispatchRepo.UpsertEvent(ctx, event); err != nil {
		d.logger.WarnContext(ctx, "record job dispatch event failed",
			"dispatch_id", event.DispatchID,
			"status", event.Status,
			"error", err,
		)
	}
}

type JobOrchestratorConfig struct {
	SweepInterval time.Duration
	FlushInterval time.Duration
	SweepBatch    int
	FlushBatch    int
}

type JobRunInput struct {
	DispatchID string
	// Chain enqueues the next run of the same job after it finishes.
	Chain bool
}

type ExpireChallengeJobInput struct {
	ChallengeID string
	DispatchID  string
}

type JobRunResult struct {
	Mode             string   `json:"mode"`
	Processed        int      `json:"processed"`
	Succeeded        int      `json:"succeeded"`
	Failed           int      `json:"failed"`
	QueuedCount      int      `json:"queued_count"`
	QueuedOperations []string `json:"queued_operations"`
}

// JobOrchestratorService runs the internal jobs that keep time out of the
// core: challenge expiry and payment outbox flushing.
type JobOrchestratorService struct {
	challenges *ChallengeService
	payments   *PaymentService
	jobs       *jobDispatcher
	cfg        JobOrchestratorConfig
	logger     *logging.Logger
	now        func() time.Time
}

func NewJobOrchestratorService(
	challenges *ChallengeService,
	payments *PaymentService,
	queue JobQueue,
	dispatchRepo jobscheduler.Repository,
	cfg JobOrchestratorConfig,
	logger *logging.Logger,
) *JobOrchestratorService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 5 * time.Minute
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Minute
	}
	if cfg.SweepBatch <= 0 {
		cfg.SweepBatch = 200
	}
	if cfg.FlushBatch <= 0 {
		cfg.FlushBatch = 200
	}

	return &JobOrchestratorService{
		challenges: challenges,
		payments:   payments,
		jobs:       newJobDispatcher(queue, dispatchRepo, logger),
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// Bootstrap queues the first run of each recurring job.
func (s *JobOrchestratorService) Bootstrap(ctx context.Context) (JobRunResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobOrchestratorService.Bootstrap")
	defer span.End()

	now := s.now().UTC()
	result := JobRunResult{Mode: "bootstrap", QueuedOperations: make([]string, 0, 2)}

	if err := s.enqueueSweep(ctx, 0, now); err != nil {
		return JobRunResult{}, err
	}
	result.QueuedCount++
	result.QueuedOperations = append(result.QueuedOperations, jobscheduler.JobExpireChallenges)

	if err := s.enqueueFlush(ctx, 0, now); err != nil {
		return JobRunResult{}, err
	}
	result.QueuedCount++
	result.QueuedOperations = append(result.QueuedOperations, jobscheduler.JobFlushPayments)

	return result, nil
}

// ExpireChallenge handles the delayed job queued when a challenge was created.
func (s *JobOrchestratorService) ExpireChallenge(ctx context.Context, input ExpireChallengeJobInput) (JobRunResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobOrchestratorService.ExpireChallenge")
	defer span.End()

	challengeID := strings.TrimSpace(input.ChallengeID)
	if challengeID == "" {
		return JobRunResult{}, fmt.Errorf("%w: challenge id is required", ErrInvalidInput)
	}
	if s.challenges == nil {
		return JobRunResult{}, fmt.Errorf("%w: challenge service is not configured", ErrDependencyUnavailable)
	}

	_, expired, err := s.challenges.Expire(ctx, challengeID)
	s.jobs.complete(ctx, jobscheduler.JobExpireChallenge, JobPathExpireChallenge, input.DispatchID, challengeID, err)
	if err != nil {
		return JobRunResult{}, err
	}

	result := JobRunResult{Mode: jobscheduler.JobExpireChallenge, Processed: 1, QueuedOperations: []string{}}
	if expired {
		result.Succeeded = 1
	}
	return result, nil
}

func (s *JobOrchestratorService) RunExpirySweep(ctx context.Context, input JobRunInput) (JobRunResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobOrchestratorService.RunExpirySweep")
	defer span.End()

	if s.challenges == nil {
		return JobRunResult{}, fmt.Errorf("%w: challenge service is not configured", ErrDependencyUnavailable)
	}

	sweep, err := s.challenges.ExpireDue(ctx, s.cfg.SweepBatch)
	s.jobs.complete(ctx, jobscheduler.JobExpireChallenges, JobPathExpireChallenges, input.DispatchID, "", err)
	if err != nil {
		return JobRunResult{}, err
	}

	result := JobRunResult{
		Mode:             jobscheduler.JobExpireChallenges,
		Processed:        sweep.Candidates,
		Succeeded:        sweep.Expired,
		Failed:           sweep.Failed,
		QueuedOperations: []string{},
	}
	if input.Chain {
		if err := s.enqueueSweep(ctx, s.cfg.SweepInterval, s.now().UTC()); err != nil {
			return JobRunResult{}, err
		}
		result.QueuedCount++
		result.QueuedOperations = append(result.QueuedOperations, jobscheduler.JobExpireChallenges)
	}
	return result, nil
}

func (s *JobOrchestratorService) RunPaymentFlush(ctx context.Context, input JobRunInput) (JobRunResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobOrchestratorService.RunPaymentFlush")
	defer span.End()

	if s.payments == nil {
		return JobRunResult{}, fmt.Errorf("%w: payment service is not configured", ErrDependencyUnavailable)
	}

	flush, err := s.payments.Flush(ctx, s.cfg.FlushBatch)
	s.jobs.complete(ctx, jobscheduler.JobFlushPayments, JobPathFlushPayments, input.DispatchID, "", err)
	if err != nil {
		return JobRunResult{}, err
	}

	result := JobRunResult{
		Mode:             jobscheduler.JobFlushPayments,
		Processed:        flush.Pending,
		Succeeded:        flush.Dispatched,
		Failed:           flush.Failed,
		QueuedOperations: []string{},
	}
	if input.Chain {
		if err := s.enqueueFlush(ctx, s.cfg.FlushInterval, s.now().UTC()); err != nil {
			return JobRunResult{}, err
		}
		result.QueuedCount++
		result.QueuedOperations = append(result.QueuedOperations, jobscheduler.JobFlushPayments)
	}
	return result, nil
}

func (s *JobOrchestratorService) ListDispatches(ctx context.Context, reference string) ([]jobscheduler.DispatchEvent, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobOrchestratorService.ListDispatches")
	defer span.End()

	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, fmt.Errorf("%w: reference is required", ErrInvalidInput)
	}
	if s.jobs.dispatchRepo == nil {
		return []jobscheduler.DispatchEvent{}, nil
	}
	items, err := s.jobs.dispatchRepo.ListByReference(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("list job dispatches: %w", err)
	}
	return items, nil
}

func (s *JobOrchestratorService) enqueueSweep(ctx context.Context, delay time.Duration, now time.Time) error {
	dedupID := dedupKey(jobscheduler.JobExpireChallenges, "all", now.Add(delay), s.cfg.SweepInterval)
	return s.jobs.enqueue(ctx, jobscheduler.JobExpireChallenges, JobPathExpireChallenges, "", dedupID, delay)
}

func (s *JobOrchestratorService) enqueueFlush(ctx context.Context, delay time.Duration, now time.Time) error {
	dedupID := dedupKey(jobscheduler.JobFlushPayments, "all", now.Add(delay), s.cfg.FlushInterval)
	return s.jobs.enqueue(ctx, jobscheduler.JobFlushPayments, JobPathFlushPayments, "", dedupID, delay)
}

func dedupKey(prefix, reference string, at time.Time, bucket time.Duration) string {
	if bucket <= 0 {
		bucket = time.Minute
	}
	slot := at.UTC().Truncate(bucket).Format("20060102T150405Z")
	return sanitizeDedupSegment(prefix) + "-" + sanitizeDedupSegment(reference) + "-" + slot
}

func sanitizeDedupSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return dedupUnsafeCharRegex.ReplaceAllString(value, "-")
}

func traceMetaFromContext(ctx context.Context) (string, string) {
	spanContext := trace.SpanFromContext(ctx).SpanContext()
	if !spanContext.IsValid() {
		return "", ""
	}
	return spanContext.TraceID().String(), spanContext.SpanID().String()
}
