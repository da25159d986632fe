package memory

import (
	"context"
	"fmt"

	"github.com/riskibarqy/pool-league/internal/domain/ladder"
	"github.com/riskibarqy/pool-league/internal/domain/revision"
)

type PlayerRepository struct {
	store *Store
}

func NewPlayerRepository(store *Store) *PlayerRepository {
	return &PlayerRepository{store: store}
}

func (r *PlayerRepository) GetByID(_ context.Context, playerID string) (ladder.Player, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.players[playerID]
	return p, ok, nil
}

func (r *PlayerRepository) GetByIDs(_ context.Context, playerIDs []string) ([]ladder.Player, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]ladder.Player, 0, len(playerIDs))
	for _, id := range playerIDs {
		if p, ok := r.store.players[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *PlayerRepository) ListByDivision(_ context.Context, division ladder.Division) ([]ladder.Player, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]ladder.Player, 0, len(r.store.playerOrder))
	for _, id := range r.store.playerOrder {
		p := r.store.players[id]
		if p.Division() == division {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *PlayerRepository) Create(_ context.Context, p ladder.Player) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.players[p.ID]; exists {
		return fmt.Errorf("player %s already exists", p.ID)
	}
	r.store.players[p.ID] = p
	r.store.playerOrder = append(r.store.playerOrder, p.ID)
	return nil
}

func (r *PlayerRepository) Update(_ context.Context, p ladder.Player) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.store.updatePlayerLocked(p)
}

func (s *Store) updatePlayerLocked(p ladder.Player) error {
	stored, ok := s.players[p.ID]
	if !ok {
		return fmt.Errorf("player %s not found", p.ID)
	}
	if err := revision.Check("player", p.ID, stored.Version, p.Version); err != nil {
		return err
	}
	p.Version++
	s.players[p.ID] = p
	return nil
}
