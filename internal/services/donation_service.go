package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"charitytracker/internal/core"
	"charitytracker/internal/ledger"
)

// EventPublisher announces newly recorded donations to downstream consumers.
type EventPublisher interface {
	PublishDonationRecorded(ctx context.Context, d core.Donation) error
	Close() error
}

// DashboardView is everything the admin dashboard renders, taken from a
// single read of the ledger.
type DashboardView struct {
	Months []core.MonthlyAggregate
	Totals core.Totals
	Last   *core.Donation
}

// DonationService orchestrates donation operations across the ledger store
// and the optional event publisher.
type DonationService struct {
	store     ledger.Store
	publisher EventPublisher
}

// NewDonationService wires the service. publisher may be nil.
func NewDonationService(store ledger.Store, publisher EventPublisher) *DonationService {
	return &DonationService{
		store:     store,
		publisher: publisher,
	}
}

// Submit validates and records a donation, then publishes a recorded event.
// A publish failure is logged and does not fail the submission.
func (s *DonationService) Submit(ctx context.Context, name string, amount core.Money) (core.Donation, error) {
	name = core.SanitizeName(name)
	if err := core.ValidateName(name); err != nil {
		return core.Donation{}, err
	}
	if err := amount.Validate(); err != nil {
		return core.Donation{}, err
	}

	d, err := s.store.Append(ctx, name, amount)
	if err != nil {
		return core.Donation{}, fmt.Errorf("record donation: %w", err)
	}

	if s.publisher == nil {
		slog.DebugContext(ctx, "No event publisher configured, skipping donation event", "id", d.ID)
		return d, nil
	}
	if err := s.publisher.PublishDonationRecorded(ctx, d); err != nil {
		slog.ErrorContext(ctx, "Failed to publish donation event",
			"id", d.ID, "error", err)
	}
	return d, nil
}

// MonthlyAggregates re-reads the whole ledger and groups it by month.
func (s *DonationService) MonthlyAggregates(ctx context.Context) ([]core.MonthlyAggregate, error) {
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	return core.AggregateByMonth(records), nil
}

// Summary returns the totals over all months.
func (s *DonationService) Summary(ctx context.Context) (core.Totals, error) {
	months, err := s.MonthlyAggregates(ctx)
	if err != nil {
		return core.Totals{}, err
	}
	return core.Summarize(months), nil
}

// MostRecent returns the latest donation, or nil when the ledger is empty.
func (s *DonationService) MostRecent(ctx context.Context) (*core.Donation, error) {
	d, err := s.store.MostRecent(ctx)
	if err != nil {
		return nil, fmt.Errorf("most recent donation: %w", err)
	}
	return d, nil
}

func (s *DonationService) Dashboard(ctx context.Context) (DashboardView, error) {
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return DashboardView{}, fmt.Errorf("list donations: %w", err)
	}
	months := core.AggregateByMonth(records)
	return DashboardView{
		Months: months,
		Totals: core.Summarize(months),
		Last:   core.Latest(records),
	}, nil
}

// Ready reports whether the backing store answers.
func (s *DonationService) Ready(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Close closes both the store and the publisher.
func (s *DonationService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close donation service: %w", errors.Join(errs...))
	}
	return nil
}
