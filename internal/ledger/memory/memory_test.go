package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"charitytracker/internal/core"
)

// fakeClock returns the queued times in order, repeating the last one.
func fakeClock(times ...time.Time) func() time.Time {
	var mu sync.Mutex
	i := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := times[i]
		if i < len(times)-1 {
			i++
		}
		return t
	}
}

func TestMemoryStoreAppendAndList(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	s := NewWithClock(fakeClock(at))

	first, err := s.Append(ctx, "Amina", core.Money{Cents: 1000})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if first.ID == "" || !first.CreatedAt.Equal(at) || first.Name != "Amina" || first.Amount.Cents != 1000 {
		t.Fatalf("unexpected record: %+v", first)
	}

	second, err := s.Append(ctx, "Amina", core.Money{Cents: 1000})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("ids must differ: %s", first.ID)
	}

	all, err := s.ListAll(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("unexpected list: %v err=%v", all, err)
	}
	if all[0] != first || all[1] != second {
		t.Fatalf("list does not match appended records: %+v", all)
	}
}

func TestMemoryStoreRejectsInvalidAmount(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, cents := range []int64{0, -100} {
		_, err := s.Append(ctx, "x", core.Money{Cents: cents})
		if !errors.Is(err, core.ErrInvalidInput) {
			t.Fatalf("cents=%d: expected ErrInvalidInput, got %v", cents, err)
		}
	}
	all, _ := s.ListAll(ctx)
	if len(all) != 0 {
		t.Fatalf("ledger changed after invalid append: %v", all)
	}
}

func TestMemoryStoreMostRecent(t *testing.T) {
	ctx := context.Background()
	t1 := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	s := NewWithClock(fakeClock(t1, t2, t2))

	got, err := s.MostRecent(ctx)
	if err != nil || got != nil {
		t.Fatalf("empty ledger: expected nil, got %v err=%v", got, err)
	}

	a, _ := s.Append(ctx, "a", core.Money{Cents: 100})
	got, _ = s.MostRecent(ctx)
	if got == nil || *got != a {
		t.Fatalf("expected %v, got %v", a, got)
	}

	b, _ := s.Append(ctx, "b", core.Money{Cents: 200})
	got, _ = s.MostRecent(ctx)
	if got == nil || *got != b {
		t.Fatalf("expected later record %v, got %v", b, got)
	}

	// same timestamp as b: insertion order breaks the tie
	c, _ := s.Append(ctx, "c", core.Money{Cents: 300})
	got, _ = s.MostRecent(ctx)
	if got == nil || *got != c {
		t.Fatalf("expected last appended %v, got %v", c, got)
	}
}

func TestMemoryStoreGet(t *testing.T) {
	ctx := context.Background()
	s := New()
	d, _ := s.Append(ctx, "a", core.Money{Cents: 100})

	got, err := s.Get(ctx, d.ID)
	if err != nil || got != d {
		t.Fatalf("expected %v, got %v err=%v", d, got, err)
	}
	if _, err := s.Get(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Append(ctx, "n", core.Money{Cents: 1}); err != nil {
				t.Errorf("append: %v", err)
			}
		}()
	}
	wg.Wait()

	all, _ := s.ListAll(ctx)
	seen := map[string]bool{}
	for _, d := range all {
		if seen[d.ID] {
			t.Fatalf("duplicate id %s", d.ID)
		}
		seen[d.ID] = true
	}
	if len(all) != 50 {
		t.Fatalf("expected 50 records, got %d", len(all))
	}
}
