package cache

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/pool-league/internal/domain/challenge"
	"github.com/riskibarqy/pool-league/internal/domain/ladder"
	"github.com/riskibarqy/pool-league/internal/infrastructure/repository/memory"
	basecache "github.com/riskibarqy/pool-league/internal/platform/cache"
)

func TestPlayerRepository_ListByDivisionIsCachedUntilWrite(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSeededStore()
	cacheStore := basecache.NewStore(time.Minute)
	repo := NewPlayerRepository(memory.NewPlayerRepository(store), cacheStore)

	first, err := repo.ListByDivision(ctx, ladder.DivisionHigh)
	if err != nil {
		t.Fatalf("list high division: %v", err)
	}
	if _, err := repo.ListByDivision(ctx, ladder.DivisionHigh); err != nil {
		t.Fatalf("list high division again: %v", err)
	}
	if stats := cacheStore.Stats(); stats.Hits != 1 {
		t.Fatalf("expected second listing to hit the cache, got %+v", stats)
	}

	p := first[0]
	p.RespectPoints++
	if err := repo.Update(ctx, p); err != nil {
		t.Fatalf("update player: %v", err)
	}

	again, err := repo.ListByDivision(ctx, ladder.DivisionHigh)
	if err != nil {
		t.Fatalf("list after update: %v", err)
	}
	for _, item := range again {
		if item.ID == p.ID && item.RespectPoints != p.RespectPoints {
			t.Fatalf("expected fresh listing after write, got respect=%d", item.RespectPoints)
		}
	}
}

func TestChallengeRepository_CompleteDropsCachedStandings(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSeededStore()
	cacheStore := basecache.NewStore(time.Minute)
	players := NewPlayerRepository(memory.NewPlayerRepository(store), cacheStore)
	challenges := NewChallengeRepository(memory.NewChallengeRepository(store), cacheStore)

	if _, err := players.ListByDivision(ctx, ladder.DivisionHigh); err != nil {
		t.Fatalf("warm cache: %v", err)
	}
	if cacheStore.Stats().Entries != 1 {
		t.Fatalf("expected one cached division")
	}

	at := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	c := challenge.Challenge{ID: "ch-cache", Kind: challenge.KindIndividual, CreatedBy: "pl-dimas", InitiatorID: "pl-dimas", TargetID: "pl-citra", Stake: 1000, Status: challenge.StatusInProgress, CreatedAt: at, UpdatedAt: at}
	if err := challenges.Create(ctx, c); err != nil {
		t.Fatalf("create challenge: %v", err)
	}

	winner, _, _ := players.GetByID(ctx, "pl-dimas")
	c.Status = challenge.StatusCompleted
	c.WinnerID = "pl-dimas"
	if err := challenges.Complete(ctx, challenge.Completion{Challenge: c, Players: []ladder.Player{winner}}); err != nil {
		t.Fatalf("complete challenge: %v", err)
	}

	if cacheStore.Stats().Entries != 0 {
		t.Fatalf("expected completion to drop cached standings")
	}
}
