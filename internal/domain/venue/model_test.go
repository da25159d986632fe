package venue

import (
	"errors"
	"testing"
	"time"
)

func TestNew_BuildsSlug(t *testing.T) {
	v, err := New("v1", "  Corner Pocket Hall ", "op-1", time.Now())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if v.Slug != "corner-pocket-hall" {
		t.Fatalf("slug=%q", v.Slug)
	}
	if v.BattlesUnlocked || v.UnlockedBy != "" || v.UnlockedAt != nil {
		t.Fatalf("new venue must start locked: %+v", v)
	}
}

func TestVenue_UnlockLockKeepsAuditPairTogether(t *testing.T) {
	at := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	v, err := New("v1", "Hall", "op-1", at)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	if err := v.EnsureBattlesUnlocked(); !errors.Is(err, ErrVenueLocked) {
		t.Fatalf("expected ErrVenueLocked, got %v", err)
	}

	unlocked, entry, err := v.Unlock("admin-1", at)
	if err != nil {
		t.Fatalf("Unlock error: %v", err)
	}
	if entry == nil || entry.Action != AuditUnlock || entry.ActorID != "admin-1" {
		t.Fatalf("unexpected audit entry: %+v", entry)
	}
	if !unlocked.BattlesUnlocked || unlocked.UnlockedBy != "admin-1" || unlocked.UnlockedAt == nil || !unlocked.UnlockedAt.Equal(at) {
		t.Fatalf("unexpected unlocked venue: %+v", unlocked)
	}
	if err := unlocked.Validate(); err != nil {
		t.Fatalf("unlocked venue invalid: %v", err)
	}
	if v.BattlesUnlocked {
		t.Fatalf("Unlock mutated receiver")
	}
	if err := unlocked.EnsureBattlesUnlocked(); err != nil {
		t.Fatalf("unexpected gate error: %v", err)
	}

	again, entry, err := unlocked.Unlock("admin-2", at.Add(time.Hour))
	if err != nil || entry != nil {
		t.Fatalf("re-unlock should be a silent no-op, entry=%+v err=%v", entry, err)
	}
	if again.UnlockedBy != "admin-1" {
		t.Fatalf("re-unlock overwrote audit pair: %+v", again)
	}

	locked, entry, err := unlocked.Lock("admin-2", at.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("Lock error: %v", err)
	}
	if entry == nil || entry.Action != AuditLock {
		t.Fatalf("unexpected audit entry: %+v", entry)
	}
	if locked.BattlesUnlocked || locked.UnlockedBy != "" || locked.UnlockedAt != nil {
		t.Fatalf("lock must clear the audit pair: %+v", locked)
	}
	if err := locked.Validate(); err != nil {
		t.Fatalf("locked venue invalid: %v", err)
	}
}

func TestVenue_UnlockRequiresActor(t *testing.T) {
	v, _ := New("v1", "Hall", "op-1", time.Now())
	if _, _, err := v.Unlock(" ", time.Now()); err == nil {
		t.Fatalf("expected actor error")
	}
}

func TestVenue_RecordHallResult(t *testing.T) {
	v, _ := New("v1", "Hall", "op-1", time.Now())

	won := v.RecordHallResult(true, 3, time.Now())
	if won.Wins != 1 || won.Points != 3 || won.Losses != 0 {
		t.Fatalf("unexpected winner aggregates: %+v", won)
	}
	lost := v.RecordHallResult(false, 3, time.Now())
	if lost.Losses != 1 || lost.Points != 0 {
		t.Fatalf("unexpected loser aggregates: %+v", lost)
	}
}
