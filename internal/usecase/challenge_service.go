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
	"github.com/riskibarqy/pool-league/internal/domain/challenge"
	"github.com/riskibarqy/pool-league/internal/domain/jobscheduler"
	"github.com/riskibarqy/pool-league/internal/domain/ladder"
	"github.com/riskibarqy/pool-league/internal/domain/membership"
	"github.com/riskibarqy/pool-league/internal/domain/money"
	"github.com/riskibarqy/pool-league/internal/domain/payment"
	"github.com/riskibarqy/pool-league/internal/domain/settlement"
	"github.com/riskibarqy/pool-league/internal/domain/user"
	"github.com/riskibarqy/pool-league/internal/domain/venue"
	idgen "github.com/riskibarqy/pool-league/internal/platform/id"
	"github.com/riskibarqy/pool-league/internal/platform/logging"
)

const (
	defaultChallengeListLimit = 50
	maxChallengeListLimit     = 200
	defaultSweepWorkers       = 4
)

type ChallengeConfig struct {
	StakeLimits   challenge.StakeLimits
	LadderRules   ladder.Rules
	HallWinPoints int
	// TTL is how long a challenge may stay open. Zero disables expiry.
	TTL          time.Duration
	SweepWorkers int
}

type CreateChallengeInput struct {
	Actor user.Principal
	Kind  string
	// VenueID is the initiating venue of a hall battle.
	VenueID string
	// TargetID optionally addresses a player, team captain or venue.
	TargetID string
	// RosterIDs lists teammates for team challenges and the players
	// representing the venue for hall battles.
	RosterIDs             []string
	OperatorID            string
	Stake                 money.Cents
	RequiresProMembership bool
}

type AcceptChallengeInput struct {
	Actor       user.Principal
	ChallengeID string
	VenueID     string
	RosterIDs   []string
}

type CompleteChallengeInput struct {
	Actor       user.Principal
	ChallengeID string
	WinnerID    string
}

type CancelChallengeInput struct {
	Actor       user.Principal
	ChallengeID string
	Reason      string
}

type VoidChallengeInput struct {
	Actor       user.Principal
	ChallengeID string
	Note        string
}

type UpdateStakeInput struct {
	Actor       user.Principal
	ChallengeID string
	Stake       money.Cents
}

type ListChallengesInput struct {
	Status        string
	Kind          string
	ParticipantID string
	Limit         int
}

// ChallengeResult is a challenge together with what its last transition
// produced.
type ChallengeResult struct {
	Challenge    challenge.Challenge
	Settlement   *settlement.Result
	Ladder       *ladder.Outcome
	Players      []ladder.Player
	Venues       []venue.Venue
	Instructions []payment.Instruction
}

type ExpirySweepResult struct {
	Candidates  int `json:"candidates"`
	Expired     int `json:"expired"`
	Skipped     int `json:"skipped"`
	Failed      int `json:"failed"`
	WorkerCount int `json:"worker_count"`
}

type ChallengeService struct {
	challengeRepo challenge.Repository
	playerRepo    ladder.Repository
	venueRepo     venue.Repository
	engine        *settlement.Engine
	jobs          *jobDispatcher
	idGen         idgen.Generator
	cfg           ChallengeConfig
	logger        *logging.Logger
	now           func() time.Time
}

func NewChallengeService(
	challengeRepo challenge.Repository,
	playerRepo ladder.Repository,
	venueRepo venue.Repository,
	engine *settlement.Engine,
	queue JobQueue,
	dispatchRepo jobscheduler.Repository,
	idGen idgen.Generator,
	cfg ChallengeConfig,
	logger *logging.Logger,
) *ChallengeService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.StakeLimits == (challenge.StakeLimits{}) {
		cfg.StakeLimits = challenge.DefaultStakeLimits()
	}
	if cfg.LadderRules == (ladder.Rules{}) {
		cfg.LadderRules = ladder.DefaultRules()
	}
	if cfg.HallWinPoints <= 0 {
		cfg.HallWinPoints = ladder.DefaultRules().WinPoints
	}
	if cfg.SweepWorkers <= 0 {
		cfg.SweepWorkers = defaultSweepWorkers
	}

	return &ChallengeService{
		challengeRepo: challengeRepo,
		playerRepo:    playerRepo,
		venueRepo:     venueRepo,
		engine:        engine,
		jobs:          newJobDispatcher(queue, dispatchRepo, logger),
		idGen:         idGen,
		cfg:           cfg,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *ChallengeService) Create(ctx context.Context, input CreateChallengeInput) (challenge.Challenge, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.Create")
	defer span.End()

	actorID, err := requireActor(input.Actor)
	if err != nil {
		return challenge.Challenge{}, err
	}
	kind := challenge.Kind(strings.ToLower(strings.TrimSpace(input.Kind)))
	if _, ok := challenge.AllKinds[kind]; !ok {
		return challenge.Challenge{}, fmt.Errorf("%w: kind must be individual, team or hall", ErrInvalidInput)
	}
	targetID := strings.TrimSpace(input.TargetID)
	operatorID := strings.TrimSpace(input.OperatorID)

	var (
		initiator challenge.Party
		proposed  *challenge.Party
	)
	switch kind {
	case challenge.KindIndividual:
		initiator, err = s.playerParty(ctx, actorID, nil)
		if err != nil {
			return challenge.Challenge{}, err
		}
		if targetID != "" {
			if err := checkLadderEligibility(ctx, s.playerRepo, actorID, targetID); err != nil {
				return challenge.Challenge{}, err
			}
			target, err := s.playerParty(ctx, targetID, nil)
			if err != nil {
				return challenge.Challenge{}, err
			}
			proposed = &target
		}
	case challenge.KindTeam:
		initiator, err = s.playerParty(ctx, actorID, input.RosterIDs)
		if err != nil {
			return challenge.Challenge{}, err
		}
		if targetID != "" {
			target, err := s.playerParty(ctx, targetID, nil)
			if err != nil {
				return challenge.Challenge{}, err
			}
			proposed = &target
		}
	case challenge.KindHall:
		home, err := s.operatedVenue(ctx, input.Actor, input.VenueID)
		if err != nil {
			return challenge.Challenge{}, err
		}
		initiator, err = s.venueParty(ctx, home.ID, input.RosterIDs)
		if err != nil {
			return challenge.Challenge{}, err
		}
		if targetID != "" {
			away, err := loadVenue(ctx, s.venueRepo, targetID)
			if err != nil {
				return challenge.Challenge{}, err
			}
			if err := away.EnsureBattlesUnlocked(); err != nil {
				return challenge.Challenge{}, err
			}
			// The away roster is only known once the venue accepts.
			proposed = &challenge.Party{ID: away.ID}
		}
		if operatorID == "" {
			operatorID = home.OperatorID
		}
	}

	challengeID, err := s.idGen.NewID()
	if err != nil {
		return challenge.Challenge{}, fmt.Errorf("generate challenge id: %w", err)
	}

	now := s.now().UTC()
	var expiresAt *time.Time
	if s.cfg.TTL > 0 {
		at := now.Add(s.cfg.TTL)
		expiresAt = &at
	}

	item, err := challenge.New(challenge.NewInput{
		ID:                    challengeID,
		Kind:                  kind,
		CreatedBy:             actorID,
		Initiator:             initiator,
		ProposedTarget:        proposed,
		OperatorID:            operatorID,
		Stake:                 input.Stake,
		RequiresProMembership: input.RequiresProMembership,
		ExpiresAt:             expiresAt,
	}, s.cfg.StakeLimits, now)
	if err != nil {
		return challenge.Challenge{}, err
	}

	if err := s.challengeRepo.Create(ctx, item); err != nil {
		return challenge.Challenge{}, fmt.Errorf("create challenge: %w", err)
	}

	s.scheduleExpiry(ctx, item)
	s.logger.InfoContext(ctx, "challenge created",
		"challenge_id", item.ID,
		"kind", item.Kind,
		"initiator_id", item.InitiatorID,
		"proposed_target_id", item.ProposedTargetID,
		"stake", int64(item.Stake),
	)
	return item, nil
}

func (s *ChallengeService) Accept(ctx context.Context, input AcceptChallengeInput) (challenge.Challenge, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.Accept")
	defer span.End()

	actorID, err := requireActor(input.Actor)
	if err != nil {
		return challenge.Challenge{}, err
	}
	item, err := s.load(ctx, input.ChallengeID)
	if err != nil {
		return challenge.Challenge{}, err
	}

	var acceptor challenge.Party
	switch item.Kind {
	case challenge.KindIndividual:
		if item.ProposedTargetID == "" && item.Status == challenge.StatusOpen {
			if err := checkLadderEligibility(ctx, s.playerRepo, item.InitiatorID, actorID); err != nil {
				return challenge.Challenge{}, err
			}
		}
		acceptor, err = s.playerParty(ctx, actorID, nil)
	case challenge.KindTeam:
		acceptor, err = s.playerParty(ctx, actorID, input.RosterIDs)
	case challenge.KindHall:
		var home, away venue.Venue
		home, err = loadVenue(ctx, s.venueRepo, item.InitiatorID)
		if err == nil {
			err = home.EnsureBattlesUnlocked()
		}
		if err == nil {
			away, err = s.operatedVenue(ctx, input.Actor, input.VenueID)
		}
		if err == nil {
			acceptor, err = s.venueParty(ctx, away.ID, input.RosterIDs)
		}
	}
	if err != nil {
		return challenge.Challenge{}, err
	}

	accepted, err := item.Accept(acceptor, s.now().UTC())
	if err != nil {
		return challenge.Challenge{}, err
	}
	return s.persist(ctx, accepted, nil)
}

func (s *ChallengeService) Start(ctx context.Context, actor user.Principal, challengeID string) (challenge.Challenge, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.Start")
	defer span.End()

	item, err := s.load(ctx, challengeID)
	if err != nil {
		return challenge.Challenge{}, err
	}
	if err := s.authorizeMatchAction(ctx, actor, item); err != nil {
		return challenge.Challenge{}, err
	}

	started, err := item.Start(s.now().UTC())
	if err != nil {
		return challenge.Challenge{}, err
	}
	return s.persist(ctx, started, nil)
}

// Complete records the winner and, in one transaction, persists the
// settlement payment instructions, rank movement and venue aggregates.
func (s *ChallengeService) Complete(ctx context.Context, input CompleteChallengeInput) (ChallengeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.Complete")
	defer span.End()

	item, err := s.load(ctx, input.ChallengeID)
	if err != nil {
		return ChallengeResult{}, err
	}
	if err := s.authorizeMatchAction(ctx, input.Actor, item); err != nil {
		return ChallengeResult{}, err
	}
	winnerID := strings.TrimSpace(input.WinnerID)
	if winnerID == "" {
		return ChallengeResult{}, fmt.Errorf("%w: winner id is required", ErrInvalidInput)
	}
	if !item.IsParticipant(winnerID) {
		return ChallengeResult{}, fmt.Errorf("%w: %s", challenge.ErrInvalidWinner, winnerID)
	}

	resolveInput := challenge.ResolveInput{
		Engine:        s.engine,
		PayerTier:     s.leadTier(ctx, item.RosterOf(winnerID)),
		LadderRules:   s.cfg.LadderRules,
		HallWinPoints: s.cfg.HallWinPoints,
	}
	switch item.Kind {
	case challenge.KindIndividual:
		resolveInput.Standings, err = s.matchStandings(ctx, item.InitiatorID, item.TargetID)
	case challenge.KindHall:
		resolveInput.Venues, err = s.matchVenues(ctx, item.InitiatorID, item.TargetID)
	}
	if err != nil {
		return ChallengeResult{}, err
	}

	completion, err := item.Resolve(winnerID, resolveInput, s.now().UTC())
	if err != nil {
		return ChallengeResult{}, err
	}
	if err := s.challengeRepo.Complete(ctx, completion); err != nil {
		return ChallengeResult{}, fmt.Errorf("complete challenge: %w", err)
	}

	completion.Challenge.Version++
	for i := range completion.Players {
		completion.Players[i].Version++
	}
	for i := range completion.Venues {
		completion.Venues[i].Version++
	}

	s.scheduleFlush(ctx, completion.Challenge.ID)
	s.logger.InfoContext(ctx, "challenge completed",
		"challenge_id", completion.Challenge.ID,
		"winner_id", winnerID,
		"stake", int64(completion.Settlement.OriginalAmount),
		"commission", int64(completion.Settlement.RoundedCommission),
		"prize_pool", int64(completion.Settlement.PrizePool),
	)

	result := completion.Settlement
	return ChallengeResult{
		Challenge:    completion.Challenge,
		Settlement:   &result,
		Ladder:       completion.Ladder,
		Players:      completion.Players,
		Venues:       completion.Venues,
		Instructions: completion.Instructions,
	}, nil
}

// Cancel withdraws or declines an open or accepted challenge and refunds
// every contribution.
func (s *ChallengeService) Cancel(ctx context.Context, input CancelChallengeInput) (ChallengeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.Cancel")
	defer span.End()

	actorID, err := requireActor(input.Actor)
	if err != nil {
		return ChallengeResult{}, err
	}
	reason := challenge.CancelReason(strings.ToLower(strings.TrimSpace(input.Reason)))
	if reason != challenge.ReasonWithdrawn && reason != challenge.ReasonDeclined {
		return ChallengeResult{}, fmt.Errorf("%w: reason must be withdrawn or declined", ErrInvalidInput)
	}
	item, err := s.load(ctx, input.ChallengeID)
	if err != nil {
		return ChallengeResult{}, err
	}

	// Hall sides are venues; their operators act for them.
	if item.Kind == challenge.KindHall {
		actorID = s.hallSideOf(ctx, input.Actor, item, reason)
	}

	cancelled, err := item.Cancel(actorID, reason, s.now().UTC())
	if err != nil {
		return ChallengeResult{}, err
	}
	return s.persistWithRefunds(ctx, item, cancelled, "challenge "+string(reason))
}

// Void is the administrative exit for an in-progress challenge.
func (s *ChallengeService) Void(ctx context.Context, input VoidChallengeInput) (ChallengeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.Void")
	defer span.End()

	if !input.Actor.IsAdmin() {
		return ChallengeResult{}, fmt.Errorf("%w: admin role required", ErrUnauthorized)
	}
	item, err := s.load(ctx, input.ChallengeID)
	if err != nil {
		return ChallengeResult{}, err
	}

	voided, err := item.Void(input.Actor.UserID, input.Note, s.now().UTC())
	if err != nil {
		return ChallengeResult{}, err
	}
	result, err := s.persistWithRefunds(ctx, item, voided, "challenge voided")
	if err != nil {
		return ChallengeResult{}, err
	}

	s.logger.Audit(ctx, "challenge.voided",
		"challenge_id", voided.ID,
		"actor_id", input.Actor.UserID,
		"note", voided.VoidNote,
	)
	return result, nil
}

func (s *ChallengeService) UpdateStake(ctx context.Context, input UpdateStakeInput) (challenge.Challenge, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.UpdateStake")
	defer span.End()

	actorID, err := requireActor(input.Actor)
	if err != nil {
		return challenge.Challenge{}, err
	}
	item, err := s.load(ctx, input.ChallengeID)
	if err != nil {
		return challenge.Challenge{}, err
	}
	updated, err := item.UpdateStake(actorID, input.Stake, s.cfg.StakeLimits, s.now().UTC())
	if err != nil {
		return challenge.Challenge{}, err
	}
	return s.persist(ctx, updated, nil)
}

func (s *ChallengeService) Get(ctx context.Context, challengeID string) (challenge.Challenge, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.Get")
	defer span.End()

	return s.load(ctx, challengeID)
}

func (s *ChallengeService) List(ctx context.Context, input ListChallengesInput) ([]challenge.Challenge, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.List")
	defer span.End()

	filter := challenge.ListFilter{
		Status:        challenge.Status(strings.ToLower(strings.TrimSpace(input.Status))),
		Kind:          challenge.Kind(strings.ToLower(strings.TrimSpace(input.Kind))),
		ParticipantID: strings.TrimSpace(input.ParticipantID),
		Limit:         input.Limit,
	}
	if filter.Kind != "" {
		if _, ok := challenge.AllKinds[filter.Kind]; !ok {
			return nil, fmt.Errorf("%w: unknown kind %s", ErrInvalidInput, filter.Kind)
		}
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultChallengeListLimit
	}
	if filter.Limit > maxChallengeListLimit {
		filter.Limit = maxChallengeListLimit
	}

	items, err := s.challengeRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	return items, nil
}

// Expire cancels an open challenge whose deadline has passed. It reports
// false without error when there is nothing to expire, so duplicate
// deliveries of the expiry job are harmless.
func (s *ChallengeService) Expire(ctx context.Context, challengeID string) (challenge.Challenge, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.Expire")
	defer span.End()

	item, err := s.load(ctx, challengeID)
	if err != nil {
		return challenge.Challenge{}, false, err
	}
	now := s.now().UTC()
	if item.Status != challenge.StatusOpen || item.ExpiresAt == nil || item.ExpiresAt.After(now) {
		return item, false, nil
	}

	expired, err := item.Cancel("", challenge.ReasonTimeout, now)
	if err != nil {
		return challenge.Challenge{}, false, err
	}
	result, err := s.persistWithRefunds(ctx, item, expired, "challenge expired")
	if err != nil {
		return challenge.Challenge{}, false, err
	}

	s.logger.InfoContext(ctx, "challenge expired", "challenge_id", result.Challenge.ID)
	return result.Challenge, true, nil
}

// ExpireDue sweeps every open challenge past its deadline.
func (s *ChallengeService) ExpireDue(ctx context.Context, limit int) (ExpirySweepResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.ExpireDue")
	defer span.End()

	due, err := s.challengeRepo.ListExpired(ctx, s.now().UTC(), limit)
	if err != nil {
		return ExpirySweepResult{}, fmt.Errorf("list expired challenges: %w", err)
	}

	workerCount := normalizeWorkerCount(s.cfg.SweepWorkers, len(due))
	result := ExpirySweepResult{Candidates: len(due), WorkerCount: workerCount}
	if len(due) == 0 {
		return result, nil
	}

	workers, err := ants.NewPool(workerCount)
	if err != nil {
		return ExpirySweepResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer workers.Release()

	var expired, skipped, failed atomic.Int32
	var wg sync.WaitGroup
	for _, item := range due {
		challengeID := item.ID
		wg.Add(1)
		if err := workers.Submit(func() {
			defer wg.Done()

			_, ok, err := s.Expire(ctx, challengeID)
			switch {
			case err != nil:
				failed.Add(1)
				s.logger.WarnContext(ctx, "expire challenge failed", "challenge_id", challengeID, "error", err)
			case ok:
				expired.Add(1)
			default:
				skipped.Add(1)
			}
		}); err != nil {
			wg.Done()
			return ExpirySweepResult{}, fmt.Errorf("submit expiry to worker pool: %w", err)
		}
	}
	wg.Wait()

	result.Expired = int(expired.Load())
	result.Skipped = int(skipped.Load())
	result.Failed = int(failed.Load())
	return result, nil
}

func (s *ChallengeService) load(ctx context.Context, challengeID string) (challenge.Challenge, error) {
	challengeID = strings.TrimSpace(challengeID)
	if challengeID == "" {
		return challenge.Challenge{}, fmt.Errorf("%w: challenge id is required", ErrInvalidInput)
	}
	item, exists, err := s.challengeRepo.GetByID(ctx, challengeID)
	if err != nil {
		return challenge.Challenge{}, fmt.Errorf("get challenge: %w", err)
	}
	if !exists {
		return challenge.Challenge{}, fmt.Errorf("%w: challenge=%s", ErrNotFound, challengeID)
	}
	return item, nil
}

func (s *ChallengeService) persist(ctx context.Context, item challenge.Challenge, instructions []payment.Instruction) (challenge.Challenge, error) {
	if err := s.challengeRepo.Update(ctx, item, instructions); err != nil {
		return challenge.Challenge{}, fmt.Errorf("update challenge: %w", err)
	}
	item.Version++
	return item, nil
}

// persistWithRefunds stores a cancelled challenge together with refunds of
// what each side had committed before the cancellation.
func (s *ChallengeService) persistWithRefunds(ctx context.Context, before, after challenge.Challenge, memo string) (ChallengeResult, error) {
	refunds, err := payment.Refunds(after.ID, before.Contributions(), memo, s.now().UTC())
	if err != nil {
		return ChallengeResult{}, fmt.Errorf("build refunds: %w", err)
	}
	stored, err := s.persist(ctx, after, refunds)
	if err != nil {
		return ChallengeResult{}, err
	}
	if len(refunds) > 0 {
		s.scheduleFlush(ctx, stored.ID)
	}
	return ChallengeResult{Challenge: stored, Instructions: refunds}, nil
}

func (s *ChallengeService) scheduleExpiry(ctx context.Context, item challenge.Challenge) {
	if item.ExpiresAt == nil {
		return
	}
	delay := item.ExpiresAt.Sub(s.now().UTC())
	if delay < 0 {
		delay = 0
	}
	dedupID := sanitizeDedupSegment(jobscheduler.JobExpireChallenge + "-" + item.ID)
	if err := s.jobs.enqueue(ctx, jobscheduler.JobExpireChallenge, JobPathExpireChallenge, item.ID, dedupID, delay); err != nil {
		// The periodic sweep still expires it.
		s.logger.WarnContext(ctx, "schedule challenge expiry failed", "challenge_id", item.ID, "error", err)
	}
}

func (s *ChallengeService) scheduleFlush(ctx context.Context, reference string) {
	dedupID := sanitizeDedupSegment(jobscheduler.JobFlushPayments + "-" + reference)
	if err := s.jobs.enqueue(ctx, jobscheduler.JobFlushPayments, JobPathFlushPayments, reference, dedupID, 0); err != nil {
		s.logger.WarnContext(ctx, "schedule payment flush failed", "reference", reference, "error", err)
	}
}

// playerParty builds a side led by leadID with the given teammates. Every
// member must be on the ladder; tiers come from the ladder records.
func (s *ChallengeService) playerParty(ctx context.Context, leadID string, teammateIDs []string) (challenge.Party, error) {
	ids := make([]string, 0, len(teammateIDs)+1)
	ids = append(ids, leadID)
	for _, id := range teammateIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	members, err := s.members(ctx, ids)
	if err != nil {
		return challenge.Party{}, err
	}
	return challenge.Party{ID: leadID, Roster: members}, nil
}

func (s *ChallengeService) venueParty(ctx context.Context, venueID string, rosterIDs []string) (challenge.Party, error) {
	ids := make([]string, 0, len(rosterIDs))
	for _, id := range rosterIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return challenge.Party{}, fmt.Errorf("%w: hall battle roster is required", ErrInvalidInput)
	}
	members, err := s.members(ctx, ids)
	if err != nil {
		return challenge.Party{}, err
	}
	return challenge.Party{ID: venueID, Roster: members}, nil
}

func (s *ChallengeService) members(ctx context.Context, ids []string) ([]challenge.Member, error) {
	players, err := s.playerRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get roster players: %w", err)
	}
	byID := make(map[string]ladder.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	out := make([]challenge.Member, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: player=%s", ErrNotFound, id)
		}
		out = append(out, challenge.Member{ID: p.ID, Tier: p.MembershipTier})
	}
	return out, nil
}

// operatedVenue loads an unlocked venue the actor may act for.
func (s *ChallengeService) operatedVenue(ctx context.Context, actor user.Principal, venueID string) (venue.Venue, error) {
	item, err := loadVenue(ctx, s.venueRepo, venueID)
	if err != nil {
		return venue.Venue{}, err
	}
	if !actor.IsAdmin() && actor.UserID != item.OperatorID {
		return venue.Venue{}, fmt.Errorf("%w: only the venue operator can act for venue=%s", ErrUnauthorized, item.ID)
	}
	if err := item.EnsureBattlesUnlocked(); err != nil {
		return venue.Venue{}, err
	}
	return item, nil
}

// hallSideOf maps an operator to the venue side it acts for.
func (s *ChallengeService) hallSideOf(ctx context.Context, actor user.Principal, item challenge.Challenge, reason challenge.CancelReason) string {
	candidates := []string{item.InitiatorID}
	if reason == challenge.ReasonDeclined {
		candidates = []string{item.TargetID, item.ProposedTargetID}
	}
	for _, venueID := range candidates {
		if venueID == "" {
			continue
		}
		v, exists, err := s.venueRepo.GetByID(ctx, venueID)
		if err != nil || !exists {
			continue
		}
		if actor.IsAdmin() || v.OperatorID == actor.UserID {
			return v.ID
		}
	}
	return actor.UserID
}

func (s *ChallengeService) authorizeMatchAction(ctx context.Context, actor user.Principal, item challenge.Challenge) error {
	actorID, err := requireActor(actor)
	if err != nil {
		return err
	}
	if actor.IsAdmin() || item.Involves(actorID) || item.CreatedBy == actorID {
		return nil
	}
	if item.OperatorID != "" && item.OperatorID == actorID {
		return nil
	}
	if item.Kind == challenge.KindHall {
		for _, venueID := range []string{item.InitiatorID, item.TargetID} {
			v, exists, err := s.venueRepo.GetByID(ctx, venueID)
			if err == nil && exists && v.OperatorID == actorID {
				return nil
			}
		}
	}
	return fmt.Errorf("%w: actor=%s is not part of challenge=%s", ErrUnauthorized, actorID, item.ID)
}

// leadTier resolves the commission tier from the first rostered player.
// Anything unresolvable is charged as a non-member.
func (s *ChallengeService) leadTier(ctx context.Context, roster []string) membership.Tier {
	if len(roster) == 0 {
		return membership.TierNone
	}
	p, exists, err := s.playerRepo.GetByID(ctx, roster[0])
	if err != nil || !exists {
		return membership.TierNone
	}
	return p.MembershipTier
}

// matchStandings loads the divisions of both players.
func (s *ChallengeService) matchStandings(ctx context.Context, firstID, secondID string) ([]ladder.Player, error) {
	players, err := s.playerRepo.GetByIDs(ctx, []string{firstID, secondID})
	if err != nil {
		return nil, fmt.Errorf("get match players: %w", err)
	}
	if len(players) != 2 {
		return nil, fmt.Errorf("%w: both players must be on the ladder", ErrNotFound)
	}

	divisions := map[ladder.Division]struct{}{}
	for _, p := range players {
		divisions[p.Division()] = struct{}{}
	}
	keys := make([]string, 0, len(divisions))
	for d := range divisions {
		keys = append(keys, string(d))
	}
	sort.Strings(keys)

	out := make([]ladder.Player, 0)
	for _, d := range keys {
		items, err := s.playerRepo.ListByDivision(ctx, ladder.Division(d))
		if err != nil {
			return nil, fmt.Errorf("list players division=%s: %w", d, err)
		}
		out = append(out, items...)
	}
	return out, nil
}

func (s *ChallengeService) matchVenues(ctx context.Context, firstID, secondID string) (map[string]venue.Venue, error) {
	out := make(map[string]venue.Venue, 2)
	for _, venueID := range []string{firstID, secondID} {
		v, err := loadVenue(ctx, s.venueRepo, venueID)
		if err != nil {
			return nil, err
		}
		out[v.ID] = v
	}
	return out, nil
}

func requireActor(actor user.Principal) (string, error) {
	actorID := strings.TrimSpace(actor.UserID)
	if actorID == "" {
		return "", fmt.Errorf("%w: authenticated user is required", ErrUnauthorized)
	}
	return actorID, nil
}
