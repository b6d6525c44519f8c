// Package memory is a process-lifetime ledger backend.
package memory

import (
	"context"
	"fmt"
	"sync"

	"charitytracker/internal/core"
	"charitytracker/internal/ledger"
)

var _ ledger.Store = (*Store)(nil)

type Store struct {
	mu    sync.Mutex
	clock ledger.Clock
	ids   *ledger.IDGenerator
	items []core.Donation
}

func New() *Store {
	return NewWithClock(ledger.SystemClock)
}

// NewWithClock returns a store stamping records with clock().
func NewWithClock(clock ledger.Clock) *Store {
	if clock == nil {
		clock = ledger.SystemClock
	}
	return &Store{clock: clock, ids: ledger.NewIDGenerator()}
}

// Append stores the donation and returns the persisted record.
func (s *Store) Append(_ context.Context, name string, amount core.Money) (core.Donation, error) {
	if err := amount.Validate(); err != nil {
		return core.Donation{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	id, err := s.ids.New(now)
	if err != nil {
		return core.Donation{}, fmt.Errorf("generate id: %w: %w", core.ErrStorageUnavailable, err)
	}
	d := core.Donation{ID: id, Name: name, Amount: amount, CreatedAt: now}
	s.items = append(s.items, d)
	return d, nil
}

// ListAll returns a copy of every record in insertion order.
func (s *Store) ListAll(_ context.Context) ([]core.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Donation(nil), s.items...), nil
}

func (s *Store) MostRecent(_ context.Context) (*core.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return nil, nil
	}
	best := 0
	for i := 1; i < len(s.items); i++ {
		// later index wins ties
		if !s.items[i].CreatedAt.Before(s.items[best].CreatedAt) {
			best = i
		}
	}
	d := s.items[best]
	return &d, nil
}

func (s *Store) Get(_ context.Context, id string) (core.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.items {
		if d.ID == id {
			return d, nil
		}
	}
	return core.Donation{}, fmt.Errorf("get %s: %w", id, core.ErrNotFound)
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }
