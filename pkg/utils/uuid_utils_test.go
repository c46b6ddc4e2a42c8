package utils

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestGenerateUUIDv7(t *testing.T) {
	id := GenerateUUIDv7()
	if id == uuid.Nil {
		t.Fatal("expected non-nil uuid")
	}
	if id.Version() != 7 {
		t.Fatalf("expected version 7 id for time-ordered ledger rows, got v%d", id.Version())
	}
}

func TestGenerateUUIDv7_Distinct(t *testing.T) {
	// Payment and delivery rows created in the same millisecond still need
	// unique ids
	seen := make(map[uuid.UUID]bool)
	for i := 0; i < 100; i++ {
		id := GenerateUUIDv7()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestGenerateUUIDv7_FallbackBranch(t *testing.T) {
	orig := newUUIDv7
	t.Cleanup(func() { newUUIDv7 = orig })

	newUUIDv7 = func() (uuid.UUID, error) {
		return uuid.Nil, errors.New("v7 failed")
	}
	id := GenerateUUIDv7()
	if id == uuid.Nil {
		t.Fatal("expected v4 fallback id when v7 fails")
	}
}
