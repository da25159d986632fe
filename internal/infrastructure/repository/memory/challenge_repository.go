package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/pool-league/internal/domain/challenge"
	"github.com/riskibarqy/pool-league/internal/domain/payment"
	"github.com/riskibarqy/pool-league/internal/domain/revision"
)

type ChallengeRepository struct {
	store *Store
}

func NewChallengeRepository(store *Store) *ChallengeRepository {
	return &ChallengeRepository{store: store}
}

func (r *ChallengeRepository) Create(_ context.Context, c challenge.Challenge) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.challenges[c.ID]; exists {
		return fmt.Errorf("challenge %s already exists", c.ID)
	}
	r.store.challenges[c.ID] = cloneChallenge(c)
	r.store.challengeIDs = append(r.store.challengeIDs, c.ID)
	return nil
}

func (r *ChallengeRepository) GetByID(_ context.Context, challengeID string) (challenge.Challenge, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	c, ok := r.store.challenges[challengeID]
	if !ok {
		return challenge.Challenge{}, false, nil
	}
	return cloneChallenge(c), true, nil
}

// List returns newest first.
func (r *ChallengeRepository) List(_ context.Context, filter challenge.ListFilter) ([]challenge.Challenge, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]challenge.Challenge, 0)
	for i := len(r.store.challengeIDs) - 1; i >= 0; i-- {
		c := r.store.challenges[r.store.challengeIDs[i]]
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.Kind != "" && c.Kind != filter.Kind {
			continue
		}
		if filter.ParticipantID != "" && !c.Involves(filter.ParticipantID) {
			continue
		}
		out = append(out, cloneChallenge(c))
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *ChallengeRepository) ListExpired(_ context.Context, now time.Time, limit int) ([]challenge.Challenge, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]challenge.Challenge, 0)
	for _, id := range r.store.challengeIDs {
		c := r.store.challenges[id]
		if c.Status != challenge.StatusOpen || c.ExpiresAt == nil || c.ExpiresAt.After(now) {
			continue
		}
		out = append(out, cloneChallenge(c))
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *ChallengeRepository) Update(_ context.Context, c challenge.Challenge, instructions []payment.Instruction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.challenges[c.ID]
	if !ok {
		return fmt.Errorf("challenge %s not found", c.ID)
	}
	if err := revision.Check("challenge", c.ID, stored.Version, c.Version); err != nil {
		return err
	}

	c = cloneChallenge(c)
	c.Version++
	r.store.challenges[c.ID] = c
	r.store.appendInstructionsLocked(instructions)
	return nil
}

// Complete validates every version before writing anything.
func (r *ChallengeRepository) Complete(_ context.Context, completion challenge.Completion) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	c := completion.Challenge
	stored, ok := r.store.challenges[c.ID]
	if !ok {
		return fmt.Errorf("challenge %s not found", c.ID)
	}
	if err := revision.Check("challenge", c.ID, stored.Version, c.Version); err != nil {
		return err
	}
	for _, p := range completion.Players {
		current, ok := r.store.players[p.ID]
		if !ok {
			return fmt.Errorf("player %s not found", p.ID)
		}
		if err := revision.Check("player", p.ID, current.Version, p.Version); err != nil {
			return err
		}
	}
	for _, v := range completion.Venues {
		current, ok := r.store.venues[v.ID]
		if !ok {
			return fmt.Errorf("venue %s not found", v.ID)
		}
		if err := revision.Check("venue", v.ID, current.Version, v.Version); err != nil {
			return err
		}
	}

	c = cloneChallenge(c)
	c.Version++
	r.store.challenges[c.ID] = c
	for _, p := range completion.Players {
		p.Version++
		r.store.players[p.ID] = p
	}
	for _, v := range completion.Venues {
		v.Version++
		r.store.venues[v.ID] = v
	}
	r.store.appendInstructionsLocked(completion.Instructions)
	return nil
}
