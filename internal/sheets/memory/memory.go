// Package memory is an in-process DonationMirror used when no spreadsheet
// is configured and in tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"charitytracker/internal/core"
	"charitytracker/internal/sheets"
)

var _ sheets.DonationMirror = (*Store)(nil)

type Store struct {
	mu    sync.Mutex
	rows  [][]any
	index map[string]int
}

func New() *Store {
	return &Store{index: make(map[string]int)}
}

// Append stores the row and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, d core.Donation) (string, error) {
	if d.ID == "" {
		return "", fmt.Errorf("%w: donation id is required", core.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.index[d.ID]; ok {
		return fmt.Sprintf("mem:%d", n), nil
	}
	s.rows = append(s.rows, sheets.Row(d))
	s.index[d.ID] = len(s.rows)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of the mirrored rows in append order.
func (s *Store) Rows() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]any, len(s.rows))
	for i, r := range s.rows {
		out[i] = append([]any(nil), r...)
	}
	return out
}
