package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/pool-league/internal/usecase"
)

func (h *Handler) ListLadderOverview(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLadderOverview")
	defer span.End()

	overview, err := h.ladderService.Overview(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list ladder overview failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, ladderOverviewDTO{
		High: standingsToDTO(overview.High),
		Low:  standingsToDTO(overview.Low),
	})
}

func (h *Handler) ListLadderStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLadderStandings")
	defer span.End()

	division := strings.TrimSpace(r.PathValue("division"))
	items, err := h.ladderService.Standings(ctx, division)
	if err != nil {
		h.logger.WarnContext(ctx, "list ladder standings failed", "division", division, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, standingsToDTO(items))
}

func (h *Handler) GetLadderPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLadderPlayer")
	defer span.End()

	playerID := strings.TrimSpace(r.PathValue("playerID"))
	item, err := h.ladderService.GetPlayer(ctx, playerID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerToDTO(item))
}

// CheckLadderEligibility answers whether challenger may call out target
// without creating anything.
func (h *Handler) CheckLadderEligibility(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CheckLadderEligibility")
	defer span.End()

	query := r.URL.Query()
	challengerID := strings.TrimSpace(query.Get("challenger_id"))
	targetID := strings.TrimSpace(query.Get("target_id"))
	if challengerID == "" || targetID == "" {
		writeError(ctx, w, fmt.Errorf("%w: challenger_id and target_id are required", usecase.ErrInvalidInput))
		return
	}

	if err := h.ladderService.CheckEligibility(ctx, challengerID, targetID); err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"challenger_id": challengerID,
		"target_id":     targetID,
		"eligible":      true,
	})
}

func (h *Handler) RegisterLadderPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RegisterLadderPlayer")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req registerPlayerRequest
	if err := h.decodeAndValidate(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.ladderService.RegisterPlayer(ctx, usecase.RegisterPlayerInput{
		Actor:  principal,
		Name:   req.Name,
		Rating: req.Rating,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "register ladder player failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, playerToDTO(item))
}

func (h *Handler) SyncMyMembership(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SyncMyMembership")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.ladderService.SyncMembership(ctx, principal)
	if err != nil {
		h.logger.WarnContext(ctx, "sync membership failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerToDTO(item))
}

func (h *Handler) AwardRespect(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AwardRespect")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req awardRespectRequest
	if err := h.decodeAndValidate(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	playerID := strings.TrimSpace(r.PathValue("playerID"))
	item, err := h.ladderService.AwardRespect(ctx, usecase.AwardRespectInput{
		Actor:    principal,
		PlayerID: playerID,
		Points:   req.Points,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "award respect failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerToDTO(item))
}
