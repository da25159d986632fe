package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/pool-league/internal/domain/challenge"
	"github.com/riskibarqy/pool-league/internal/domain/money"
	"github.com/riskibarqy/pool-league/internal/usecase"
)

func (h *Handler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListChallenges")
	defer span.End()

	query := r.URL.Query()
	limit := 0
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			writeError(ctx, w, fmt.Errorf("%w: limit must be a positive integer", usecase.ErrInvalidInput))
			return
		}
		limit = v
	}

	items, err := h.challengeService.List(ctx, usecase.ListChallengesInput{
		Status:        query.Get("status"),
		Kind:          query.Get("kind"),
		ParticipantID: query.Get("participant_id"),
		Limit:         limit,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "list challenges failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]challengeDTO, 0, len(items))
	for _, item := range items {
		out = append(out, challengeToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetChallenge")
	defer span.End()

	item, err := h.challengeService.Get(ctx, strings.TrimSpace(r.PathValue("challengeID")))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, challengeToDTO(item))
}

func (h *Handler) ListChallengePayments(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListChallengePayments")
	defer span.End()

	challengeID := strings.TrimSpace(r.PathValue("challengeID"))
	if _, err := h.challengeService.Get(ctx, challengeID); err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.paymentService.ListByReference(ctx, challengeID)
	if err != nil {
		h.logger.WarnContext(ctx, "list challenge payments failed", "challenge_id", challengeID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, instructionsToDTO(items))
}

func (h *Handler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateChallenge")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req createChallengeRequest
	if err := h.decodeAndValidate(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.challengeService.Create(ctx, usecase.CreateChallengeInput{
		Actor:                 principal,
		Kind:                  req.Kind,
		VenueID:               req.VenueID,
		TargetID:              req.TargetID,
		RosterIDs:             req.RosterIDs,
		OperatorID:            req.OperatorID,
		Stake:                 money.Cents(req.EntryFeeCents),
		RequiresProMembership: req.RequiresProMembership,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create challenge failed", "user_id", principal.UserID, "kind", req.Kind, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, challengeToDTO(item))
}

func (h *Handler) AcceptChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AcceptChallenge")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req acceptChallengeRequest
	if err := h.decodeAndValidate(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	challengeID := strings.TrimSpace(r.PathValue("challengeID"))
	item, err := h.challengeService.Accept(ctx, usecase.AcceptChallengeInput{
		Actor:       principal,
		ChallengeID: challengeID,
		VenueID:     req.VenueID,
		RosterIDs:   req.RosterIDs,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "accept challenge failed", "challenge_id", challengeID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, challengeToDTO(item))
}

func (h *Handler) StartChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartChallenge")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	challengeID := strings.TrimSpace(r.PathValue("challengeID"))
	item, err := h.challengeService.Start(ctx, principal, challengeID)
	if err != nil {
		h.logger.WarnContext(ctx, "start challenge failed", "challenge_id", challengeID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, challengeToDTO(item))
}

func (h *Handler) CompleteChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CompleteChallenge")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req completeChallengeRequest
	if err := h.decodeAndValidate(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	challengeID := strings.TrimSpace(r.PathValue("challengeID"))
	result, err := h.challengeService.Complete(ctx, usecase.CompleteChallengeInput{
		Actor:       principal,
		ChallengeID: challengeID,
		WinnerID:    req.WinnerID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "complete challenge failed", "challenge_id", challengeID, "winner_id", req.WinnerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, challengeResultToDTO(result))
}

func (h *Handler) CancelChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CancelChallenge")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	req := cancelChallengeRequest{Reason: string(challenge.ReasonWithdrawn)}
	if err := h.decodeAndValidate(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	challengeID := strings.TrimSpace(r.PathValue("challengeID"))
	result, err := h.challengeService.Cancel(ctx, usecase.CancelChallengeInput{
		Actor:       principal,
		ChallengeID: challengeID,
		Reason:      req.Reason,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "cancel challenge failed", "challenge_id", challengeID, "reason", req.Reason, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, challengeResultToDTO(result))
}

func (h *Handler) VoidChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.VoidChallenge")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req voidChallengeRequest
	if err := h.decodeAndValidate(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	challengeID := strings.TrimSpace(r.PathValue("challengeID"))
	result, err := h.challengeService.Void(ctx, usecase.VoidChallengeInput{
		Actor:       principal,
		ChallengeID: challengeID,
		Note:        req.Note,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "void challenge failed", "challenge_id", challengeID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, challengeResultToDTO(result))
}

func (h *Handler) UpdateChallengeStake(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateChallengeStake")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req updateStakeRequest
	if err := h.decodeAndValidate(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	challengeID := strings.TrimSpace(r.PathValue("challengeID"))
	item, err := h.challengeService.UpdateStake(ctx, usecase.UpdateStakeInput{
		Actor:       principal,
		ChallengeID: challengeID,
		Stake:       money.Cents(req.EntryFeeCents),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update challenge stake failed", "challenge_id", challengeID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, challengeToDTO(item))
}
