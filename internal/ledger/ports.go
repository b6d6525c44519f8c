// Package ledger defines the append-only donation store capability and the
// helpers shared by its backends.
package ledger

import (
	"context"

	"charitytracker/internal/core"
)

// Ports for donation storage backends.
type (
	// Writer appends donations. Implementations assign the id and creation
	// time, reject non-positive amounts with core.ErrInvalidInput and report
	// backend failures wrapped in core.ErrStorageUnavailable.
	Writer interface {
		Append(ctx context.Context, name string, amount core.Money) (core.Donation, error)
	}

	// Reader exposes the ledger contents.
	Reader interface {
		// ListAll returns every record. Order is unspecified.
		ListAll(ctx context.Context) ([]core.Donation, error)
		// MostRecent returns the record with the latest creation time, the last
		// appended one on ties, or nil when the ledger is empty.
		MostRecent(ctx context.Context) (*core.Donation, error)
		// Get returns a single record or core.ErrNotFound.
		Get(ctx context.Context, id string) (core.Donation, error)
	}

	// Store is the full capability owned by the application.
	Store interface {
		Writer
		Reader
		Ping(ctx context.Context) error
		Close() error
	}
)
