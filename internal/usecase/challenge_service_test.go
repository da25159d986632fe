package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/pool-league/internal/domain/challenge"
	"github.com/riskibarqy/pool-league/internal/domain/ladder"
	"github.com/riskibarqy/pool-league/internal/domain/money"
	"github.com/riskibarqy/pool-league/internal/domain/payment"
	"github.com/riskibarqy/pool-league/internal/domain/venue"
	"github.com/riskibarqy/pool-league/internal/infrastructure/repository/memory"
	idgen "github.com/riskibarqy/pool-league/internal/platform/id"
	"github.com/riskibarqy/pool-league/internal/platform/logging"
)

func TestChallengeService_IndividualLifecycleSettlesAndMovesLadder(t *testing.T) {
	env := newTestEnv(t)
	svc := env.challengeService(ChallengeConfig{})
	ctx := t.Context()

	created, err := svc.Create(ctx, CreateChallengeInput{
		Actor:    player("pl-dimas"),
		Kind:     "individual",
		TargetID: "pl-bima",
		Stake:    10000,
	})
	if err != nil {
		t.Fatalf("create challenge: %v", err)
	}
	if created.Status != challenge.StatusOpen || created.ProposedTargetID != "pl-bima" {
		t.Fatalf("unexpected created challenge: %+v", created)
	}

	accepted, err := svc.Accept(ctx, AcceptChallengeInput{Actor: player("pl-bima"), ChallengeID: created.ID})
	if err != nil {
		t.Fatalf("accept challenge: %v", err)
	}
	if accepted.TargetID != "pl-bima" || accepted.Version != 1 {
		t.Fatalf("unexpected accepted challenge: target=%s version=%d", accepted.TargetID, accepted.Version)
	}

	if _, err := svc.Start(ctx, player("pl-dimas"), created.ID); err != nil {
		t.Fatalf("start challenge: %v", err)
	}

	result, err := svc.Complete(ctx, CompleteChallengeInput{
		Actor:       player("pl-bima"),
		ChallengeID: created.ID,
		WinnerID:    "pl-dimas",
	})
	if err != nil {
		t.Fatalf("complete challenge: %v", err)
	}

	if result.Challenge.Status != challenge.StatusCompleted || result.Challenge.WinnerID != "pl-dimas" {
		t.Fatalf("unexpected completed challenge: %+v", result.Challenge)
	}
	if result.Settlement == nil || result.Settlement.RoundedCommission != 800 || result.Settlement.PrizePool != 9200 {
		t.Fatalf("unexpected settlement: %+v", result.Settlement)
	}
	if result.Ladder == nil || result.Ladder.Winner.PointsAfter != 105 || result.Ladder.Loser.PointsAfter != 115 {
		t.Fatalf("unexpected ladder outcome: %+v", result.Ladder)
	}

	dimas, _, _ := env.players.GetByID(ctx, "pl-dimas")
	bima, _, _ := env.players.GetByID(ctx, "pl-bima")
	if dimas.Points != 105 || dimas.Streak != 1 || dimas.Wins != 1 || dimas.Version != 1 {
		t.Fatalf("unexpected stored winner: %+v", dimas)
	}
	if bima.Points != 115 || bima.Streak != 0 || bima.Losses != 1 {
		t.Fatalf("unexpected stored loser: %+v", bima)
	}

	instructions, err := env.outbox.ListByReference(ctx, created.ID)
	if err != nil {
		t.Fatalf("list instructions: %v", err)
	}
	if len(instructions) != 4 {
		t.Fatalf("unexpected instruction count: got=%d want=4", len(instructions))
	}
	if got := payment.Total(instructions, payment.KindPayout); got != 9200 {
		t.Fatalf("unexpected payout total: got=%d want=9200", got)
	}
	if got := payment.Total(instructions, payment.KindCommission); got != 800 {
		t.Fatalf("unexpected commission total: got=%d want=800", got)
	}
	if len(env.queue.byPath(JobPathFlushPayments)) != 1 {
		t.Fatalf("expected one flush job after completion")
	}
}

func TestChallengeService_KingLosesAndDropsThreePositions(t *testing.T) {
	env := newTestEnv(t)
	svc := env.challengeService(ChallengeConfig{})
	ctx := t.Context()

	created, err := svc.Create(ctx, CreateChallengeInput{
		Actor:    player("pl-bima"),
		Kind:     "individual",
		TargetID: "pl-ayu",
		Stake:    5000,
	})
	if err != nil {
		t.Fatalf("create challenge: %v", err)
	}
	if _, err := svc.Accept(ctx, AcceptChallengeInput{Actor: player("pl-ayu"), ChallengeID: created.ID}); err != nil {
		t.Fatalf("accept challenge: %v", err)
	}
	if _, err := svc.Start(ctx, player("pl-ayu"), created.ID); err != nil {
		t.Fatalf("start challenge: %v", err)
	}
	result, err := svc.Complete(ctx, CompleteChallengeInput{Actor: admin(), ChallengeID: created.ID, WinnerID: "pl-bima"})
	if err != nil {
		t.Fatalf("complete challenge: %v", err)
	}

	if !result.Ladder.Loser.KingDropped {
		t.Fatalf("expected king drop")
	}
	if result.Ladder.Loser.PointsAfter != 94 || result.Ladder.Loser.PositionAfter != 4 {
		t.Fatalf("unexpected king outcome: points=%d position=%d", result.Ladder.Loser.PointsAfter, result.Ladder.Loser.PositionAfter)
	}
}

func TestChallengeService_CreateRejections(t *testing.T) {
	env := newTestEnv(t)
	svc := env.challengeService(ChallengeConfig{})

	tests := []struct {
		name  string
		input CreateChallengeInput
		want  error
	}{
		{
			name:  "unauthenticated",
			input: CreateChallengeInput{Kind: "individual", Stake: 5000},
			want:  ErrUnauthorized,
		},
		{
			name:  "unknown kind",
			input: CreateChallengeInput{Actor: player("pl-dimas"), Kind: "doubles", Stake: 5000},
			want:  ErrInvalidInput,
		},
		{
			name:  "target too far above",
			input: CreateChallengeInput{Actor: player("pl-eka"), Kind: "individual", TargetID: "pl-ayu", Stake: 5000},
			want:  ladder.ErrIneligibleChallenge,
		},
		{
			name:  "target in other division",
			input: CreateChallengeInput{Actor: player("pl-fajar"), Kind: "individual", TargetID: "pl-eka", Stake: 5000},
			want:  ladder.ErrIneligibleChallenge,
		},
		{
			name:  "stake below minimum",
			input: CreateChallengeInput{Actor: player("pl-dimas"), Kind: "individual", Stake: 999},
			want:  money.ErrInvalidAmount,
		},
		{
			name:  "pro gate",
			input: CreateChallengeInput{Actor: player("pl-dimas"), Kind: "individual", Stake: 5000, RequiresProMembership: true},
			want:  challenge.ErrMembershipRequired,
		},
		{
			name:  "unknown player",
			input: CreateChallengeInput{Actor: player("ghost"), Kind: "individual", Stake: 5000},
			want:  ErrNotFound,
		},
		{
			name:  "locked home venue",
			input: CreateChallengeInput{Actor: operator("op-tono"), Kind: "hall", VenueID: memory.VenueIDEightBall, RosterIDs: []string{"pl-fajar"}, Stake: 5000},
			want:  venue.ErrVenueLocked,
		},
		{
			name:  "locked away venue",
			input: CreateChallengeInput{Actor: operator("op-rina"), Kind: "hall", VenueID: memory.VenueIDCornerPocket, TargetID: memory.VenueIDEightBall, RosterIDs: []string{"pl-ayu"}, Stake: 5000},
			want:  venue.ErrVenueLocked,
		},
		{
			name:  "not the venue operator",
			input: CreateChallengeInput{Actor: player("pl-ayu"), Kind: "hall", VenueID: memory.VenueIDCornerPocket, RosterIDs: []string{"pl-ayu"}, Stake: 5000},
			want:  ErrUnauthorized,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(t.Context(), tc.input)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestChallengeService_SecondAcceptFails(t *testing.T) {
	env := newTestEnv(t)
	svc := env.challengeService(ChallengeConfig{})
	ctx := t.Context()

	created, err := svc.Create(ctx, CreateChallengeInput{Actor: player("pl-citra"), Kind: "individual", Stake: 5000})
	if err != nil {
		t.Fatalf("create challenge: %v", err)
	}
	if _, err := svc.Accept(ctx, AcceptChallengeInput{Actor: player("pl-bima"), ChallengeID: created.ID}); err != nil {
		t.Fatalf("first accept: %v", err)
	}

	_, err = svc.Accept(ctx, AcceptChallengeInput{Actor: player("pl-ayu"), ChallengeID: created.ID})
	if !errors.Is(err, challenge.ErrAlreadyAccepted) {
		t.Fatalf("expected ErrAlreadyAccepted, got %v", err)
	}
}

func TestChallengeService_OpenAcceptChecksEligibility(t *testing.T) {
	env := newTestEnv(t)
	svc := env.challengeService(ChallengeConfig{})
	ctx := t.Context()

	created, err := svc.Create(ctx, CreateChallengeInput{Actor: player("pl-ayu"), Kind: "individual", Stake: 5000})
	if err != nil {
		t.Fatalf("create challenge: %v", err)
	}

	_, err = svc.Accept(ctx, AcceptChallengeInput{Actor: player("pl-eka"), ChallengeID: created.ID})
	if !errors.Is(err, ladder.ErrIneligibleChallenge) {
		t.Fatalf("expected ErrIneligibleChallenge, got %v", err)
	}
}

func TestChallengeService_CancelAfterAcceptRefundsBothSides(t *testing.T) {
	env := newTestEnv(t)
	svc := env.challengeService(ChallengeConfig{})
	ctx := t.Context()

	created, err := svc.Create(ctx, CreateChallengeInput{Actor: player("pl-citra"), Kind: "individual", Stake: 10001})
	if err != nil {
		t.Fatalf("create challenge: %v", err)
	}
	if _, err := svc.Accept(ctx, AcceptChallengeInput{Actor: player("pl-bima"), ChallengeID: created.ID}); err != nil {
		t.Fatalf("accept challenge: %v", err)
	}

	result, err := svc.Cancel(ctx, CancelChallengeInput{Actor: player("pl-citra"), ChallengeID: created.ID, Reason: "withdrawn"})
	if err != nil {
		t.Fatalf("cancel challenge: %v", err)
	}
	if result.Challenge.Status != challenge.StatusCancelled || result.Challenge.CancelReason != challenge.ReasonWithdrawn {
		t.Fatalf("unexpected cancelled challenge: %+v", result.Challenge)
	}

	refunds := map[string]money.Cents{}
	for _, ins := range result.Instructions {
		if ins.Kind != payment.KindRefund {
			t.Fatalf("unexpected instruction kind: %s", ins.Kind)
		}
		refunds[ins.RecipientID] = ins.Amount
	}
	if refunds["pl-citra"] != 5001 || refunds["pl-bima"] != 5000 {
		t.Fatalf("unexpected refunds: %+v", refunds)
	}

	if _, err := svc.Start(ctx, player("pl-citra"), created.ID); err == nil {
		t.Fatalf("expected start on cancelled challenge to fail")
	}
}

func TestChallengeService_CancelRejectsTimeoutReason(t *testing.T) {
	env := newTestEnv(t)
	svc := env.challengeService(ChallengeConfig{})

	created, err := svc.Create(t.Context(), CreateChallengeInput{Actor: player("pl-citra"), Kind: "individual", Stake: 5000})
	if err != nil {
		t.Fatalf("create challenge: %v", err)
	}

	_, err = svc.Cancel(t.Context(), CancelChallengeInput{Actor: player("pl-citra"), ChallengeID: created.ID, Reason: "timeout"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestChallengeService_ExpiryIsScheduledAndSwept(t *testing.T) {
	env := newTestEnv(t)
	svc := env.challengeService(ChallengeConfig{TTL: time.Hour})
	ctx := t.Context()

	created, err := svc.Create(ctx, CreateChallengeInput{Actor: player("pl-dimas"), Kind: "individual", Stake: 10000})
	if err != nil {
		t.Fatalf("create challenge: %v", err)
	}
	if created.ExpiresAt == nil || !created.ExpiresAt.Equal(fixedNow.Add(time.Hour)) {
		t.Fatalf("unexpected expires at: %v", created.ExpiresAt)
	}

	jobs := env.queue.byPath(JobPathExpireChallenge)
	if len(jobs) != 1 {
		t.Fatalf("unexpected expire job count: got=%d want=1", len(jobs))
	}
	if jobs[0].delay != time.Hour || jobs[0].dedupID != "expire-challenge-"+created.ID {
		t.Fatalf("unexpected expire job: %+v", jobs[0])
	}

	early, err := svc.ExpireDue(ctx, 10)
	if err != nil {
		t.Fatalf("early sweep: %v", err)
	}
	if early.Candidates != 0 {
		t.Fatalf("expected nothing due yet, got %+v", early)
	}

	svc.now = func() time.Time { return fixedNow.Add(2 * time.Hour) }
	sweep, err := svc.ExpireDue(ctx, 10)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if sweep.Candidates != 1 || sweep.Expired != 1 || sweep.Failed != 0 {
		t.Fatalf("unexpected sweep result: %+v", sweep)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get challenge: %v", err)
	}
	if got.Status != challenge.StatusCancelled || got.CancelReason != challenge.ReasonTimeout {
		t.Fatalf("unexpected expired challenge: status=%s reason=%s", got.Status, got.CancelReason)
	}

	instructions, _ := env.outbox.ListByReference(ctx, created.ID)
	if len(instructions) != 1 || instructions[0].RecipientID != "pl-dimas" || instructions[0].Amount != 5000 {
		t.Fatalf("unexpected refund: %+v", instructions)
	}

	// A late delivery of the delayed job is a no-op.
	_, expired, err := svc.Expire(ctx, created.ID)
	if err != nil || expired {
		t.Fatalf("expected idempotent expire, got expired=%v err=%v", expired, err)
	}
}

func TestChallengeService_ExpiryEnqueueFailureIsNotFatal(t *testing.T) {
	env := newTestEnv(t)
	env.queue.err = errors.New("qstash down")
	svc := env.challengeService(ChallengeConfig{TTL: time.Hour})

	created, err := svc.Create(t.Context(), CreateChallengeInput{Actor: player("pl-dimas"), Kind: "individual", Stake: 10000})
	if err != nil {
		t.Fatalf("create challenge: %v", err)
	}

	events, err := env.dispatches.ListByReference(t.Context(), created.ID)
	if err != nil {
		t.Fatalf("list dispatch events: %v", err)
	}
	if len(events) != 1 || events[0].ErrorMessage == "" {
		t.Fatalf("expected one failed dispatch event, got %+v", events)
	}
}

func TestChallengeService_HallBattleUpdatesVenues(t *testing.T) {
	env := newTestEnv(t)
	svc := env.challengeService(ChallengeConfig{HallWinPoints: 20})
	venues := NewVenueService(env.venues, idgen.NewSequenceGenerator("venue"), logging.NewNop())
	ctx := t.Context()

	if _, err := venues.Unlock(ctx, admin(), memory.VenueIDEightBall); err != nil {
		t.Fatalf("unlock venue: %v", err)
	}

	created, err := svc.Create(ctx, CreateChallengeInput{
		Actor:     operator("op-rina"),
		Kind:      "hall",
		VenueID:   memory.VenueIDCornerPocket,
		TargetID:  memory.VenueIDEightBall,
		RosterIDs: []string{"pl-ayu"},
		Stake:     20000,
	})
	if err != nil {
		t.Fatalf("create hall challenge: %v", err)
	}
	if created.OperatorID != "op-rina" {
		t.Fatalf("expected home operator to be recorded, got %q", created.OperatorID)
	}

	if _, err := svc.Accept(ctx, AcceptChallengeInput{
		Actor:       operator("op-tono"),
		ChallengeID: created.ID,
		VenueID:     memory.VenueIDEightBall,
		RosterIDs:   []string{"pl-fajar"},
	}); err != nil {
		t.Fatalf("accept hall challenge: %v", err)
	}
	if _, err := svc.Start(ctx, admin(), created.ID); err != nil {
		t.Fatalf("start hall challenge: %v", err)
	}

	result, err := svc.Complete(ctx, CompleteChallengeInput{
		Actor:       operator("op-rina"),
		ChallengeID: created.ID,
		WinnerID:    memory.VenueIDCornerPocket,
	})
	if err != nil {
		t.Fatalf("complete hall challenge: %v", err)
	}
	if result.Ladder != nil {
		t.Fatalf("hall battles must not move the ladder")
	}
	if result.Settlement.RoundedCommission != 1000 {
		t.Fatalf("expected pro rate on the lead player, got commission=%d", result.Settlement.RoundedCommission)
	}

	home, _, _ := env.venues.GetByID(ctx, memory.VenueIDCornerPocket)
	away, _, _ := env.venues.GetByID(ctx, memory.VenueIDEightBall)
	if home.Wins != 1 || home.Points != 20 || away.Losses != 1 {
		t.Fatalf("unexpected venue aggregates: home=%+v away=%+v", home, away)
	}

	var operatorShare money.Cents
	for _, ins := range result.Instructions {
		if ins.Kind == payment.KindCommission && ins.RecipientID == "op-rina" {
			operatorShare = ins.Amount
		}
	}
	if operatorShare != 300 {
		t.Fatalf("unexpected operator commission: got=%d want=300", operatorShare)
	}
}

func TestChallengeService_HallAcceptRejectsLockedHomeVenue(t *testing.T) {
	env := newTestEnv(t)
	svc := env.challengeService(ChallengeConfig{})
	venues := NewVenueService(env.venues, idgen.NewSequenceGenerator("venue"), logging.NewNop())
	ctx := t.Context()

	if _, err := venues.Unlock(ctx, admin(), memory.VenueIDEightBall); err != nil {
		t.Fatalf("unlock venue: %v", err)
	}
	created, err := svc.Create(ctx, CreateChallengeInput{
		Actor:     operator("op-rina"),
		Kind:      "hall",
		VenueID:   memory.VenueIDCornerPocket,
		TargetID:  memory.VenueIDEightBall,
		RosterIDs: []string{"pl-ayu"},
		Stake:     20000,
	})
	if err != nil {
		t.Fatalf("create hall challenge: %v", err)
	}
	if _, err := venues.Lock(ctx, admin(), memory.VenueIDCornerPocket); err != nil {
		t.Fatalf("lock home venue: %v", err)
	}

	_, err = svc.Accept(ctx, AcceptChallengeInput{
		Actor:       operator("op-tono"),
		ChallengeID: created.ID,
		VenueID:     memory.VenueIDEightBall,
		RosterIDs:   []string{"pl-fajar"},
	})
	if !errors.Is(err, venue.ErrVenueLocked) {
		t.Fatalf("expected ErrVenueLocked for locked home venue, got %v", err)
	}

	stored, _, _ := env.challenges.GetByID(ctx, created.ID)
	if stored.Status != challenge.StatusOpen {
		t.Fatalf("challenge must stay pending, got %s", stored.Status)
	}
}

func TestChallengeService_TeamPrizeIsSplitAcrossRoster(t *testing.T) {
	env := newTestEnv(t)
	svc := env.challengeService(ChallengeConfig{})
	ctx := t.Context()

	created, err := svc.Create(ctx, CreateChallengeInput{
		Actor:     player("pl-citra"),
		Kind:      "team",
		RosterIDs: []string{"pl-eka"},
		Stake:     30000,
	})
	if err != nil {
		t.Fatalf("create team challenge: %v", err)
	}
	if _, err := svc.Accept(ctx, AcceptChallengeInput{Actor: player("pl-bima"), ChallengeID: created.ID, RosterIDs: []string{"pl-dimas"}}); err != nil {
		t.Fatalf("accept team challenge: %v", err)
	}
	if _, err := svc.Start(ctx, player("pl-eka"), created.ID); err != nil {
		t.Fatalf("start team challenge: %v", err)
	}

	result, err := svc.Complete(ctx, CompleteChallengeInput{Actor: player("pl-citra"), ChallengeID: created.ID, WinnerID: "pl-citra"})
	if err != nil {
		t.Fatalf("complete team challenge: %v", err)
	}

	payouts := map[string]money.Cents{}
	for _, ins := range result.Instructions {
		if ins.Kind == payment.KindPayout {
			payouts[ins.RecipientID] = ins.Amount
		}
	}
	if payouts["pl-citra"] != 14250 || payouts["pl-eka"] != 14250 {
		t.Fatalf("unexpected team payouts: %+v", payouts)
	}

	citra, _, _ := env.players.GetByID(ctx, "pl-citra")
	if citra.Points != 120 {
		t.Fatalf("team challenges must not move the ladder, citra points=%d", citra.Points)
	}
}

func TestChallengeService_AuthorizationRules(t *testing.T) {
	env := newTestEnv(t)
	svc := env.challengeService(ChallengeConfig{})
	ctx := t.Context()

	created, err := svc.Create(ctx, CreateChallengeInput{Actor: player("pl-dimas"), Kind: "individual", TargetID: "pl-bima", Stake: 5000})
	if err != nil {
		t.Fatalf("create challenge: %v", err)
	}
	if _, err := svc.Accept(ctx, AcceptChallengeInput{Actor: player("pl-bima"), ChallengeID: created.ID}); err != nil {
		t.Fatalf("accept challenge: %v", err)
	}

	if _, err := svc.Start(ctx, player("pl-indra"), created.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected outsider start to be unauthorized, got %v", err)
	}
	if _, err := svc.Start(ctx, player("pl-bima"), created.ID); err != nil {
		t.Fatalf("start challenge: %v", err)
	}

	if _, err := svc.Complete(ctx, CompleteChallengeInput{Actor: player("pl-dimas"), ChallengeID: created.ID, WinnerID: "pl-ayu"}); !errors.Is(err, challenge.ErrInvalidWinner) {
		t.Fatalf("expected ErrInvalidWinner, got %v", err)
	}
	if _, err := svc.Void(ctx, VoidChallengeInput{Actor: player("pl-dimas"), ChallengeID: created.ID, Note: "dispute"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected non-admin void to be unauthorized, got %v", err)
	}

	result, err := svc.Void(ctx, VoidChallengeInput{Actor: admin(), ChallengeID: created.ID, Note: "table dispute"})
	if err != nil {
		t.Fatalf("void challenge: %v", err)
	}
	if result.Challenge.CancelReason != challenge.ReasonVoided || len(result.Instructions) != 2 {
		t.Fatalf("unexpected void result: reason=%s instructions=%d", result.Challenge.CancelReason, len(result.Instructions))
	}
}

func TestChallengeService_StaleWriteConflicts(t *testing.T) {
	env := newTestEnv(t)
	svc := env.challengeService(ChallengeConfig{})
	ctx := t.Context()

	created, err := svc.Create(ctx, CreateChallengeInput{Actor: player("pl-dimas"), Kind: "individual", Stake: 5000})
	if err != nil {
		t.Fatalf("create challenge: %v", err)
	}
	if _, err := svc.UpdateStake(ctx, UpdateStakeInput{Actor: player("pl-dimas"), ChallengeID: created.ID, Stake: 7000}); err != nil {
		t.Fatalf("update stake: %v", err)
	}

	stale, err := created.UpdateStake("pl-dimas", 9000, challenge.DefaultStakeLimits(), fixedNow)
	if err != nil {
		t.Fatalf("update stake on snapshot: %v", err)
	}
	if _, err := svc.persist(ctx, stale, nil); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	got, _ := svc.Get(ctx, created.ID)
	if got.Stake != 7000 {
		t.Fatalf("stale write must not win, stake=%d", got.Stake)
	}
}

func TestChallengeService_List(t *testing.T) {
	env := newTestEnv(t)
	svc := env.challengeService(ChallengeConfig{})
	ctx := t.Context()

	for _, actor := range []string{"pl-dimas", "pl-citra", "pl-hadi"} {
		if _, err := svc.Create(ctx, CreateChallengeInput{Actor: player(actor), Kind: "individual", Stake: 5000}); err != nil {
			t.Fatalf("create challenge for %s: %v", actor, err)
		}
	}

	items, err := svc.List(ctx, ListChallengesInput{ParticipantID: "pl-citra"})
	if err != nil {
		t.Fatalf("list challenges: %v", err)
	}
	if len(items) != 1 || items[0].InitiatorID != "pl-citra" {
		t.Fatalf("unexpected participant filter result: %+v", items)
	}

	all, err := svc.List(ctx, ListChallengesInput{Status: "open"})
	if err != nil {
		t.Fatalf("list challenges: %v", err)
	}
	if len(all) != 3 || all[0].InitiatorID != "pl-hadi" {
		t.Fatalf("expected newest first, got %+v", all)
	}

	if _, err := svc.List(ctx, ListChallengesInput{Kind: "doubles"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
