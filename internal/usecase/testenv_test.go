package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/pool-league/internal/domain/membership"
	"github.com/riskibarqy/pool-league/internal/domain/settlement"
	"github.com/riskibarqy/pool-league/internal/domain/user"
	"github.com/riskibarqy/pool-league/internal/infrastructure/repository/memory"
	idgen "github.com/riskibarqy/pool-league/internal/platform/id"
	"github.com/riskibarqy/pool-league/internal/platform/logging"
)

var fixedNow = time.Date(2026, 3, 7, 19, 30, 0, 0, time.UTC)

type queuedJob struct {
	path    string
	delay   time.Duration
	dedupID string
}

type recordingQueue struct {
	mu   sync.Mutex
	jobs []queuedJob
	err  error
}

func (q *recordingQueue) Enqueue(_ context.Context, path string, _ any, delay time.Duration, dedupID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, queuedJob{path: path, delay: delay, dedupID: dedupID})
	return nil
}

func (q *recordingQueue) byPath(path string) []queuedJob {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]queuedJob, 0)
	for _, job := range q.jobs {
		if job.path == path {
			out = append(out, job)
		}
	}
	return out
}

type testEnv struct {
	store      *memory.Store
	players    *memory.PlayerRepository
	challenges *memory.ChallengeRepository
	venues     *memory.VenueRepository
	games      *memory.SharedPotRepository
	outbox     *memory.PaymentOutbox
	dispatches *memory.JobDispatchRepository
	queue      *recordingQueue
	engine     *settlement.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	engine, err := settlement.NewEngine(membership.DefaultRateTable(), settlement.DefaultPolicy())
	if err != nil {
		t.Fatalf("new settlement engine: %v", err)
	}

	store := memory.NewSeededStore()
	return &testEnv{
		store:      store,
		players:    memory.NewPlayerRepository(store),
		challenges: memory.NewChallengeRepository(store),
		venues:     memory.NewVenueRepository(store),
		games:      memory.NewSharedPotRepository(store),
		outbox:     memory.NewPaymentOutbox(store),
		dispatches: memory.NewJobDispatchRepository(store),
		queue:      &recordingQueue{},
		engine:     engine,
	}
}

func (e *testEnv) challengeService(cfg ChallengeConfig) *ChallengeService {
	svc := NewChallengeService(
		e.challenges,
		e.players,
		e.venues,
		e.engine,
		e.queue,
		e.dispatches,
		idgen.NewSequenceGenerator("ch"),
		cfg,
		logging.NewNop(),
	)
	svc.now = func() time.Time { return fixedNow }
	svc.jobs.now = svc.now
	return svc
}

func player(id string) user.Principal {
	return user.Principal{UserID: id}
}

func admin() user.Principal {
	return user.Principal{UserID: "admin-root", Roles: []string{user.RoleAdmin}}
}

func operator(id string) user.Principal {
	return user.Principal{UserID: id, Roles: []string{user.RoleOperator}}
}
