package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"charitytracker/internal/core"
)

func TestStoreAppend(t *testing.T) {
	s := New()
	ctx := context.Background()
	d := core.Donation{
		ID:        "01HZX",
		Name:      "Alice",
		Amount:    core.Money{Cents: 2550},
		CreatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	ref, err := s.Append(ctx, d)
	if err != nil {
		t.Fatalf("Append() error: %v", err)
	}
	if ref != "mem:1" {
		t.Errorf("ref = %q, want mem:1", ref)
	}

	again, err := s.Append(ctx, d)
	if err != nil {
		t.Fatalf("second Append() error: %v", err)
	}
	if again != ref {
		t.Errorf("redelivered ref = %q, want %q", again, ref)
	}

	rows := s.Rows()
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	want := []any{"01HZX", "Alice", "25.50", "2024-03-01T10:00:00.000Z"}
	for i := range want {
		if rows[0][i] != want[i] {
			t.Errorf("col %d = %v, want %v", i, rows[0][i], want[i])
		}
	}
}

func TestStoreAppendRequiresID(t *testing.T) {
	_, err := New().Append(context.Background(), core.Donation{Name: "x"})
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("error = %v, want invalid input", err)
	}
}
