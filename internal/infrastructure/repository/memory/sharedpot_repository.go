package memory

import (
	"context"
	"fmt"

	"github.com/riskibarqy/pool-league/internal/domain/payment"
	"github.com/riskibarqy/pool-league/internal/domain/revision"
	"github.com/riskibarqy/pool-league/internal/domain/sharedpot"
)

type SharedPotRepository struct {
	store *Store
}

func NewSharedPotRepository(store *Store) *SharedPotRepository {
	return &SharedPotRepository{store: store}
}

func (r *SharedPotRepository) Create(_ context.Context, g sharedpot.Game) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.games[g.ID]; exists {
		return fmt.Errorf("game %s already exists", g.ID)
	}
	r.store.games[g.ID] = cloneGame(g)
	r.store.gameOrder = append(r.store.gameOrder, g.ID)
	return nil
}

func (r *SharedPotRepository) GetByID(_ context.Context, gameID string) (sharedpot.Game, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	g, ok := r.store.games[gameID]
	if !ok {
		return sharedpot.Game{}, false, nil
	}
	return cloneGame(g), true, nil
}

func (r *SharedPotRepository) ListByStatus(_ context.Context, status sharedpot.Status) ([]sharedpot.Game, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]sharedpot.Game, 0)
	for _, id := range r.store.gameOrder {
		g := r.store.games[id]
		if status != "" && g.Status != status {
			continue
		}
		out = append(out, cloneGame(g))
	}
	return out, nil
}

func (r *SharedPotRepository) Update(_ context.Context, g sharedpot.Game, instructions []payment.Instruction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.games[g.ID]
	if !ok {
		return fmt.Errorf("game %s not found", g.ID)
	}
	if err := revision.Check("game", g.ID, stored.Version, g.Version); err != nil {
		return err
	}

	g = cloneGame(g)
	g.Version++
	r.store.games[g.ID] = g
	r.store.appendInstructionsLocked(instructions)
	return nil
}
