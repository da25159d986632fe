package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/pool-league/internal/domain/challenge"
	"github.com/riskibarqy/pool-league/internal/domain/jobscheduler"
	"github.com/riskibarqy/pool-league/internal/domain/ladder"
	"github.com/riskibarqy/pool-league/internal/domain/membership"
	"github.com/riskibarqy/pool-league/internal/domain/money"
	"github.com/riskibarqy/pool-league/internal/domain/payment"
	"github.com/riskibarqy/pool-league/internal/domain/settlement"
	"github.com/riskibarqy/pool-league/internal/domain/sharedpot"
	"github.com/riskibarqy/pool-league/internal/domain/user"
	"github.com/riskibarqy/pool-league/internal/domain/venue"
	"github.com/riskibarqy/pool-league/internal/platform/logging"
	"github.com/riskibarqy/pool-league/internal/usecase"
	"github.com/shopspring/decimal"
)

const maxRequestBodyBytes = 1 << 20

type Handler struct {
	ladderService     *usecase.LadderService
	challengeService  *usecase.ChallengeService
	venueService      *usecase.VenueService
	sharedPotService  *usecase.SharedPotService
	settlementService *usecase.SettlementService
	paymentService    *usecase.PaymentService
	jobOrchestrator   *usecase.JobOrchestratorService
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	ladderService *usecase.LadderService,
	challengeService *usecase.ChallengeService,
	venueService *usecase.VenueService,
	sharedPotService *usecase.SharedPotService,
	settlementService *usecase.SettlementService,
	paymentService *usecase.PaymentService,
	jobOrchestrator *usecase.JobOrchestratorService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		ladderService:     ladderService,
		challengeService:  challengeService,
		venueService:      venueService,
		sharedPotService:  sharedPotService,
		settlementService: settlementService,
		paymentService:    paymentService,
		jobOrchestrator:   jobOrchestrator,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeAndValidate reads a JSON body into dst. An empty body is allowed
// when allowEmpty is set; unknown fields are rejected.
func (h *Handler) decodeAndValidate(ctx context.Context, r *http.Request, dst any, allowEmpty bool) error {
	decoder := sonic.ConfigDefault.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if !(allowEmpty && errors.Is(err, io.EOF)) {
			return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
		}
	}
	return h.validateRequest(ctx, dst)
}

type principalKey struct{}

// withPrincipal is set by RequireAuth once the bearer token is verified.
func withPrincipal(ctx context.Context, p user.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func requirePrincipal(ctx context.Context) (user.Principal, error) {
	principal, ok := ctx.Value(principalKey{}).(user.Principal)
	if !ok || strings.TrimSpace(principal.UserID) == "" {
		return user.Principal{}, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized)
	}
	return principal, nil
}

type registerPlayerRequest struct {
	Name   string `json:"name" validate:"required,max=100"`
	Rating int    `json:"rating" validate:"gte=0,lte=3000"`
}

type awardRespectRequest struct {
	Points int `json:"points" validate:"required,gt=0,lte=100"`
}

type createChallengeRequest struct {
	Kind                  string   `json:"kind" validate:"required,oneof=individual team hall"`
	VenueID               string   `json:"venue_id" validate:"omitempty,max=64"`
	TargetID              string   `json:"target_id" validate:"omitempty,max=64"`
	RosterIDs             []string `json:"roster_ids" validate:"omitempty,max=8,dive,required"`
	OperatorID            string   `json:"operator_id" validate:"omitempty,max=64"`
	EntryFeeCents         int64    `json:"entry_fee_cents" validate:"required,gt=0"`
	RequiresProMembership bool     `json:"requires_pro_membership"`
}

type acceptChallengeRequest struct {
	VenueID   string   `json:"venue_id" validate:"omitempty,max=64"`
	RosterIDs []string `json:"roster_ids" validate:"omitempty,max=8,dive,required"`
}

type completeChallengeRequest struct {
	WinnerID string `json:"winner_id" validate:"required"`
}

type cancelChallengeRequest struct {
	Reason string `json:"reason" validate:"required,oneof=withdrawn declined"`
}

type voidChallengeRequest struct {
	Note string `json:"note" validate:"required,max=500"`
}

type updateStakeRequest struct {
	EntryFeeCents int64 `json:"entry_fee_cents" validate:"required,gt=0"`
}

type createVenueRequest struct {
	Name       string `json:"name" validate:"required,max=120"`
	OperatorID string `json:"operator_id" validate:"omitempty,max=64"`
}

type createGameRequest struct {
	MaxSeats      int   `json:"max_seats" validate:"required,gte=2,lte=16"`
	EntryFeeCents int64 `json:"entry_fee_cents" validate:"required,gt=0"`
}

type completeGameRequest struct {
	WinnerSeat int `json:"winner_seat" validate:"required,gte=1"`
}

type internalJobRunRequest struct {
	DispatchID string `json:"dispatch_id" validate:"omitempty,max=200"`
	Chain      bool   `json:"chain"`
}

type internalExpireChallengeRequest struct {
	ChallengeID string `json:"challenge_id" validate:"required"`
	DispatchID  string `json:"dispatch_id" validate:"omitempty,max=200"`
}

type amountDTO struct {
	Cents   int64  `json:"cents"`
	Display string `json:"display"`
}

type playerDTO struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Rating         int    `json:"rating"`
	Division       string `json:"division"`
	Points         int    `json:"points"`
	Streak         int    `json:"streak"`
	RespectPoints  int    `json:"respect_points"`
	MembershipTier string `json:"membership_tier"`
	Wins           int    `json:"wins"`
	Losses         int    `json:"losses"`
	Version        int64  `json:"version"`
	UpdatedAtUTC   string `json:"updated_at_utc"`
}

type standingDTO struct {
	Position int       `json:"position"`
	Player   playerDTO `json:"player"`
}

type ladderOverviewDTO struct {
	High []standingDTO `json:"high"`
	Low  []standingDTO `json:"low"`
}

type challengeDTO struct {
	ID                    string    `json:"id"`
	Kind                  string    `json:"kind"`
	Status                string    `json:"status"`
	CreatedBy             string    `json:"created_by"`
	InitiatorID           string    `json:"initiator_id"`
	InitiatorRoster       []string  `json:"initiator_roster"`
	ProposedTargetID      string    `json:"proposed_target_id,omitempty"`
	TargetID              string    `json:"target_id,omitempty"`
	TargetRoster          []string  `json:"target_roster"`
	OperatorID            string    `json:"operator_id,omitempty"`
	EntryFee              amountDTO `json:"entry_fee"`
	RequiresProMembership bool      `json:"requires_pro_membership"`
	WinnerID              string    `json:"winner_id,omitempty"`
	CancelReason          string    `json:"cancel_reason,omitempty"`
	CancelledBy           string    `json:"cancelled_by,omitempty"`
	VoidNote              string    `json:"void_note,omitempty"`
	ExpiresAtUTC          string    `json:"expires_at_utc,omitempty"`
	AcceptedAtUTC         string    `json:"accepted_at_utc,omitempty"`
	StartedAtUTC          string    `json:"started_at_utc,omitempty"`
	CompletedAtUTC        string    `json:"completed_at_utc,omitempty"`
	CancelledAtUTC        string    `json:"cancelled_at_utc,omitempty"`
	Version               int64     `json:"version"`
	CreatedAtUTC          string    `json:"created_at_utc"`
	UpdatedAtUTC          string    `json:"updated_at_utc"`
}

type shareDTO struct {
	Stakeholder string    `json:"stakeholder"`
	Percent     int       `json:"percent"`
	Amount      amountDTO `json:"amount"`
}

type settlementDTO struct {
	OriginalAmount    amountDTO  `json:"original_amount"`
	Tier              string     `json:"tier"`
	RateBasisPoints   int64      `json:"rate_basis_points"`
	RawCommission     amountDTO  `json:"raw_commission"`
	RoundedCommission amountDTO  `json:"rounded_commission"`
	Shares            []shareDTO `json:"shares"`
	Retained          amountDTO  `json:"retained"`
	PrizePool         amountDTO  `json:"prize_pool"`
}

type ladderDeltaDTO struct {
	PlayerID       string `json:"player_id"`
	Won            bool   `json:"won"`
	PointsBefore   int    `json:"points_before"`
	PointsAfter    int    `json:"points_after"`
	StreakAfter    int    `json:"streak_after"`
	StreakBonus    int    `json:"streak_bonus"`
	PositionBefore int    `json:"position_before"`
	PositionAfter  int    `json:"position_after"`
	KingDropped    bool   `json:"king_dropped"`
}

type ladderOutcomeDTO struct {
	Winner ladderDeltaDTO `json:"winner"`
	Loser  ladderDeltaDTO `json:"loser"`
}

type instructionDTO struct {
	ID              string    `json:"id"`
	Kind            string    `json:"kind"`
	Reference       string    `json:"reference"`
	RecipientID     string    `json:"recipient_id"`
	Amount          amountDTO `json:"amount"`
	Memo            string    `json:"memo,omitempty"`
	Status          string    `json:"status"`
	Attempts        int       `json:"attempts"`
	LastError       string    `json:"last_error,omitempty"`
	CreatedAtUTC    string    `json:"created_at_utc"`
	DispatchedAtUTC string    `json:"dispatched_at_utc,omitempty"`
}

type challengeResultDTO struct {
	Challenge    challengeDTO      `json:"challenge"`
	Settlement   *settlementDTO    `json:"settlement,omitempty"`
	Ladder       *ladderOutcomeDTO `json:"ladder,omitempty"`
	Players      []playerDTO       `json:"players,omitempty"`
	Venues       []venueDTO        `json:"venues,omitempty"`
	Instructions []instructionDTO  `json:"instructions"`
}

type venueDTO struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Slug            string `json:"slug"`
	OperatorID      string `json:"operator_id"`
	Wins            int    `json:"wins"`
	Losses          int    `json:"losses"`
	Points          int    `json:"points"`
	BattlesUnlocked bool   `json:"battles_unlocked"`
	UnlockedBy      string `json:"unlocked_by,omitempty"`
	UnlockedAtUTC   string `json:"unlocked_at_utc,omitempty"`
	Version         int64  `json:"version"`
}

type venueAuditDTO struct {
	VenueID       string `json:"venue_id"`
	Action        string `json:"action"`
	ActorID       string `json:"actor_id"`
	OccurredAtUTC string `json:"occurred_at_utc"`
}

type seatDTO struct {
	Number      int    `json:"number"`
	PlayerID    string `json:"player_id,omitempty"`
	JoinedAtUTC string `json:"joined_at_utc,omitempty"`
}

type gameDTO struct {
	ID             string    `json:"id"`
	Status         string    `json:"status"`
	MaxSeats       int       `json:"max_seats"`
	CurrentPlayers int       `json:"current_players"`
	Seats          []seatDTO `json:"seats"`
	EntryFee       amountDTO `json:"entry_fee"`
	Pot            amountDTO `json:"pot"`
	WinnerSeat     int       `json:"winner_seat,omitempty"`
	WinnerID       string    `json:"winner_id,omitempty"`
	Version        int64     `json:"version"`
	CreatedAtUTC   string    `json:"created_at_utc"`
	ActivatedAtUTC string    `json:"activated_at_utc,omitempty"`
	CompletedAtUTC string    `json:"completed_at_utc,omitempty"`
}

type payoutDTO struct {
	Seat     int       `json:"seat"`
	PlayerID string    `json:"player_id"`
	Amount   amountDTO `json:"amount"`
}

type gameResultDTO struct {
	Game         gameDTO          `json:"game"`
	Payout       *payoutDTO       `json:"payout,omitempty"`
	Instructions []instructionDTO `json:"instructions"`
}

type benefitsDTO struct {
	Tier                string    `json:"tier"`
	CommissionRateBps   int64     `json:"commission_rate_bps"`
	CommissionRate      string    `json:"commission_rate"`
	TournamentEntryFee  amountDTO `json:"tournament_entry_fee"`
	FreeTournamentEntry bool      `json:"free_tournament_entry"`
	Perks               []string  `json:"perks"`
}

type dispatchEventDTO struct {
	DispatchID    string `json:"dispatch_id"`
	JobName       string `json:"job_name"`
	JobPath       string `json:"job_path"`
	Reference     string `json:"reference"`
	Status        string `json:"status"`
	ErrorMessage  string `json:"error_message,omitempty"`
	OccurredAtUTC string `json:"occurred_at_utc"`
	TraceID       string `json:"trace_id,omitempty"`
}

func amountToDTO(v money.Cents) amountDTO {
	return amountDTO{
		Cents:   int64(v),
		Display: decimal.New(int64(v), -2).StringFixed(2),
	}
}

// rateDisplay renders basis points as a percentage, e.g. 1000 -> "10.00%".
func rateDisplay(v money.BasisPoints) string {
	return decimal.New(int64(v), -2).StringFixed(2) + "%"
}

func playerToDTO(v ladder.Player) playerDTO {
	return playerDTO{
		ID:             v.ID,
		Name:           v.Name,
		Rating:         v.Rating,
		Division:       string(v.Division()),
		Points:         v.Points,
		Streak:         v.Streak,
		RespectPoints:  v.RespectPoints,
		MembershipTier: string(v.MembershipTier),
		Wins:           v.Wins,
		Losses:         v.Losses,
		Version:        v.Version,
		UpdatedAtUTC:   formatTime(v.UpdatedAt),
	}
}

func playersToDTO(items []ladder.Player) []playerDTO {
	out := make([]playerDTO, 0, len(items))
	for _, item := range items {
		out = append(out, playerToDTO(item))
	}
	return out
}

func standingsToDTO(items []ladder.Standing) []standingDTO {
	out := make([]standingDTO, 0, len(items))
	for _, item := range items {
		out = append(out, standingDTO{Position: item.Position, Player: playerToDTO(item.Player)})
	}
	return out
}

func challengeToDTO(v challenge.Challenge) challengeDTO {
	return challengeDTO{
		ID:                    v.ID,
		Kind:                  string(v.Kind),
		Status:                string(v.Status),
		CreatedBy:             v.CreatedBy,
		InitiatorID:           v.InitiatorID,
		InitiatorRoster:       nonNilStrings(v.InitiatorRoster),
		ProposedTargetID:      v.ProposedTargetID,
		TargetID:              v.TargetID,
		TargetRoster:          nonNilStrings(v.TargetRoster),
		OperatorID:            v.OperatorID,
		EntryFee:              amountToDTO(v.Stake),
		RequiresProMembership: v.RequiresProMembership,
		WinnerID:              v.WinnerID,
		CancelReason:          string(v.CancelReason),
		CancelledBy:           v.CancelledBy,
		VoidNote:              v.VoidNote,
		ExpiresAtUTC:          formatOptionalTime(v.ExpiresAt),
		AcceptedAtUTC:         formatOptionalTime(v.AcceptedAt),
		StartedAtUTC:          formatOptionalTime(v.StartedAt),
		CompletedAtUTC:        formatOptionalTime(v.CompletedAt),
		CancelledAtUTC:        formatOptionalTime(v.CancelledAt),
		Version:               v.Version,
		CreatedAtUTC:          formatTime(v.CreatedAt),
		UpdatedAtUTC:          formatTime(v.UpdatedAt),
	}
}

func settlementToDTO(v settlement.Result) settlementDTO {
	shares := make([]shareDTO, 0, len(v.Shares))
	for _, share := range v.Shares {
		shares = append(shares, shareDTO{
			Stakeholder: string(share.Stakeholder),
			Percent:     share.Percent,
			Amount:      amountToDTO(share.Amount),
		})
	}
	return settlementDTO{
		OriginalAmount:    amountToDTO(v.OriginalAmount),
		Tier:              string(v.Tier),
		RateBasisPoints:   int64(v.Rate),
		RawCommission:     amountToDTO(v.RawCommission),
		RoundedCommission: amountToDTO(v.RoundedCommission),
		Shares:            shares,
		Retained:          amountToDTO(v.Retained),
		PrizePool:         amountToDTO(v.PrizePool),
	}
}

func instructionsToDTO(items []payment.Instruction) []instructionDTO {
	out := make([]instructionDTO, 0, len(items))
	for _, item := range items {
		out = append(out, instructionDTO{
			ID:              item.ID,
			Kind:            string(item.Kind),
			Reference:       item.Reference,
			RecipientID:     item.RecipientID,
			Amount:          amountToDTO(item.Amount),
			Memo:            item.Memo,
			Status:          string(item.Status),
			Attempts:        item.Attempts,
			LastError:       item.LastError,
			CreatedAtUTC:    formatTime(item.CreatedAt),
			DispatchedAtUTC: formatOptionalTime(item.DispatchedAt),
		})
	}
	return out
}

func challengeResultToDTO(v usecase.ChallengeResult) challengeResultDTO {
	out := challengeResultDTO{
		Challenge:    challengeToDTO(v.Challenge),
		Instructions: instructionsToDTO(v.Instructions),
	}
	if v.Settlement != nil {
		s := settlementToDTO(*v.Settlement)
		out.Settlement = &s
	}
	if v.Ladder != nil {
		out.Ladder = &ladderOutcomeDTO{
			Winner: ladderDeltaToDTO(v.Ladder.Winner),
			Loser:  ladderDeltaToDTO(v.Ladder.Loser),
		}
	}
	if len(v.Players) > 0 {
		out.Players = playersToDTO(v.Players)
	}
	if len(v.Venues) > 0 {
		out.Venues = venuesToDTO(v.Venues)
	}
	return out
}

func ladderDeltaToDTO(v ladder.Delta) ladderDeltaDTO {
	return ladderDeltaDTO{
		PlayerID:       v.PlayerID,
		Won:            v.Won,
		PointsBefore:   v.PointsBefore,
		PointsAfter:    v.PointsAfter,
		StreakAfter:    v.StreakAfter,
		StreakBonus:    v.StreakBonus,
		PositionBefore: v.PositionBefore,
		PositionAfter:  v.PositionAfter,
		KingDropped:    v.KingDropped,
	}
}

func venueToDTO(v venue.Venue) venueDTO {
	return venueDTO{
		ID:              v.ID,
		Name:            v.Name,
		Slug:            v.Slug,
		OperatorID:      v.OperatorID,
		Wins:            v.Wins,
		Losses:          v.Losses,
		Points:          v.Points,
		BattlesUnlocked: v.BattlesUnlocked,
		UnlockedBy:      v.UnlockedBy,
		UnlockedAtUTC:   formatOptionalTime(v.UnlockedAt),
		Version:         v.Version,
	}
}

func venuesToDTO(items []venue.Venue) []venueDTO {
	out := make([]venueDTO, 0, len(items))
	for _, item := range items {
		out = append(out, venueToDTO(item))
	}
	return out
}

func gameToDTO(v sharedpot.Game) gameDTO {
	seats := make([]seatDTO, 0, len(v.Seats))
	for _, seat := range v.Seats {
		seats = append(seats, seatDTO{
			Number:      seat.Number,
			PlayerID:    seat.PlayerID,
			JoinedAtUTC: formatOptionalTime(seat.JoinedAt),
		})
	}
	return gameDTO{
		ID:             v.ID,
		Status:         string(v.Status),
		MaxSeats:       v.MaxSeats,
		CurrentPlayers: v.CurrentPlayers,
		Seats:          seats,
		EntryFee:       amountToDTO(v.EntryFee),
		Pot:            amountToDTO(v.Pot()),
		WinnerSeat:     v.WinnerSeat,
		WinnerID:       v.WinnerID,
		Version:        v.Version,
		CreatedAtUTC:   formatTime(v.CreatedAt),
		ActivatedAtUTC: formatOptionalTime(v.ActivatedAt),
		CompletedAtUTC: formatOptionalTime(v.CompletedAt),
	}
}

func gameResultToDTO(v usecase.GameResult) gameResultDTO {
	out := gameResultDTO{
		Game:         gameToDTO(v.Game),
		Instructions: instructionsToDTO(v.Instructions),
	}
	if v.Payout != nil {
		out.Payout = &payoutDTO{
			Seat:     v.Payout.Seat,
			PlayerID: v.Payout.PlayerID,
			Amount:   amountToDTO(v.Payout.Amount),
		}
	}
	return out
}

func benefitsToDTO(v membership.Benefits) benefitsDTO {
	perks := v.Perks
	if perks == nil {
		perks = []string{}
	}
	return benefitsDTO{
		Tier:                string(v.Tier),
		CommissionRateBps:   int64(v.CommissionRate),
		CommissionRate:      rateDisplay(v.CommissionRate),
		TournamentEntryFee:  amountToDTO(v.TournamentEntryFee),
		FreeTournamentEntry: v.FreeTournamentEntry,
		Perks:               perks,
	}
}

func dispatchEventsToDTO(items []jobscheduler.DispatchEvent) []dispatchEventDTO {
	out := make([]dispatchEventDTO, 0, len(items))
	for _, item := range items {
		out = append(out, dispatchEventDTO{
			DispatchID:    item.DispatchID,
			JobName:       item.JobName,
			JobPath:       item.JobPath,
			Reference:     item.Reference,
			Status:        string(item.Status),
			ErrorMessage:  item.ErrorMessage,
			OccurredAtUTC: formatTime(item.OccurredAt),
			TraceID:       item.TraceID,
		})
	}
	return out
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func formatTime(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}

func formatOptionalTime(v *time.Time) string {
	if v == nil || v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}
