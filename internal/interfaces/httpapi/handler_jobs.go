package httpapi

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/riskibarqy/pool-league/internal/domain/jobscheduler"
	"github.com/riskibarqy/pool-league/internal/usecase"
)

var internalJobDispatchUnsafeRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func (h *Handler) RunBootstrapJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunBootstrapJob")
	defer span.End()

	if h.jobOrchestrator == nil {
		writeError(ctx, w, fmt.Errorf("%w: job orchestrator is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	result, err := h.jobOrchestrator.Bootstrap(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run bootstrap job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunExpireChallengeJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunExpireChallengeJob")
	defer span.End()

	if h.jobOrchestrator == nil {
		writeError(ctx, w, fmt.Errorf("%w: job orchestrator is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req internalExpireChallengeRequest
	if err := h.decodeAndValidate(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	dispatchID := strings.TrimSpace(req.DispatchID)
	if dispatchID == "" {
		dispatchID = buildManualDispatchID(jobscheduler.JobExpireChallenge, req.ChallengeID, time.Now())
	}
	result, err := h.jobOrchestrator.ExpireChallenge(ctx, usecase.ExpireChallengeJobInput{
		ChallengeID: req.ChallengeID,
		DispatchID:  dispatchID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "run expire challenge job failed", "challenge_id", req.ChallengeID, "dispatch_id", dispatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunExpirySweepJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunExpirySweepJob")
	defer span.End()

	if h.jobOrchestrator == nil {
		writeError(ctx, w, fmt.Errorf("%w: job orchestrator is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req, err := h.decodeInternalJobRunRequest(r, jobscheduler.JobExpireChallenges)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.jobOrchestrator.RunExpirySweep(ctx, usecase.JobRunInput{
		DispatchID: req.DispatchID,
		Chain:      req.Chain,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "run expiry sweep job failed", "dispatch_id", req.DispatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunPaymentFlushJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunPaymentFlushJob")
	defer span.End()

	if h.jobOrchestrator == nil {
		writeError(ctx, w, fmt.Errorf("%w: job orchestrator is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req, err := h.decodeInternalJobRunRequest(r, jobscheduler.JobFlushPayments)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.jobOrchestrator.RunPaymentFlush(ctx, usecase.JobRunInput{
		DispatchID: req.DispatchID,
		Chain:      req.Chain,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "run payment flush job failed", "dispatch_id", req.DispatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) ListJobDispatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListJobDispatches")
	defer span.End()

	if h.jobOrchestrator == nil {
		writeError(ctx, w, fmt.Errorf("%w: job orchestrator is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	items, err := h.jobOrchestrator.ListDispatches(ctx, r.URL.Query().Get("reference"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, dispatchEventsToDTO(items))
}

func (h *Handler) decodeInternalJobRunRequest(r *http.Request, jobName string) (internalJobRunRequest, error) {
	var req internalJobRunRequest
	if err := h.decodeAndValidate(r.Context(), r, &req, true); err != nil {
		return internalJobRunRequest{}, err
	}
	if strings.TrimSpace(req.DispatchID) == "" {
		req.DispatchID = buildManualDispatchID(jobName, "all", time.Now())
	}
	return req, nil
}

func buildManualDispatchID(jobName, reference string, now time.Time) string {
	jobName = sanitizeDispatchPart(jobName)
	reference = sanitizeDispatchPart(reference)
	ts := now.UTC().Format("20060102T150405.000000000Z")
	return "manual-" + jobName + "-" + reference + "-" + ts
}

func sanitizeDispatchPart(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return internalJobDispatchUnsafeRegex.ReplaceAllString(value, "-")
}
