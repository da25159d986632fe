package id

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDGenerator_NewID(t *testing.T) {
	gen := NewUUIDGenerator()

	a, err := gen.NewID()
	if err != nil {
		t.Fatalf("NewID error: %v", err)
	}
	b, err := gen.NewID()
	if err != nil {
		t.Fatalf("NewID error: %v", err)
	}
	if a == b {
		t.Fatalf("expected unique ids, got %s twice", a)
	}

	parsed, err := uuid.Parse(a)
	if err != nil {
		t.Fatalf("id is not a uuid: %v", err)
	}
	if parsed.Version() != 7 {
		t.Fatalf("version=%d want=7", parsed.Version())
	}
}

func TestSequenceGenerator(t *testing.T) {
	gen := NewSequenceGenerator("ch")
	first, _ := gen.NewID()
	second, _ := gen.NewID()
	if first != "ch-1" || second != "ch-2" {
		t.Fatalf("unexpected ids: %s %s", first, second)
	}
}
