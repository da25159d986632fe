package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/pool-league/internal/usecase"
)

func (h *Handler) ListVenues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListVenues")
	defer span.End()

	items, err := h.venueService.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list venues failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, venuesToDTO(items))
}

func (h *Handler) ListHallStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListHallStandings")
	defer span.End()

	items, err := h.venueService.HallStandings(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list hall standings failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, venuesToDTO(items))
}

func (h *Handler) GetVenue(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetVenue")
	defer span.End()

	item, err := h.venueService.Get(ctx, strings.TrimSpace(r.PathValue("venueID")))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, venueToDTO(item))
}

func (h *Handler) CreateVenue(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateVenue")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req createVenueRequest
	if err := h.decodeAndValidate(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.venueService.Create(ctx, usecase.CreateVenueInput{
		Actor:      principal,
		Name:       req.Name,
		OperatorID: req.OperatorID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create venue failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, venueToDTO(item))
}

func (h *Handler) UnlockVenueBattles(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UnlockVenueBattles")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	venueID := strings.TrimSpace(r.PathValue("venueID"))
	item, err := h.venueService.Unlock(ctx, principal, venueID)
	if err != nil {
		h.logger.WarnContext(ctx, "unlock venue battles failed", "venue_id", venueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, venueToDTO(item))
}

func (h *Handler) LockVenueBattles(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LockVenueBattles")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	venueID := strings.TrimSpace(r.PathValue("venueID"))
	item, err := h.venueService.Lock(ctx, principal, venueID)
	if err != nil {
		h.logger.WarnContext(ctx, "lock venue battles failed", "venue_id", venueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, venueToDTO(item))
}

func (h *Handler) ListVenueAudit(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListVenueAudit")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	venueID := strings.TrimSpace(r.PathValue("venueID"))
	entries, err := h.venueService.Audit(ctx, principal, venueID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]venueAuditDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, venueAuditDTO{
			VenueID:       entry.VenueID,
			Action:        string(entry.Action),
			ActorID:       entry.ActorID,
			OccurredAtUTC: formatTime(entry.OccurredAt),
		})
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}
