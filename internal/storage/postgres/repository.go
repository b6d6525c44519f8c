// Package postgres is the PostgreSQL ledger backend.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"charitytracker/internal/core"
	"charitytracker/internal/ledger"
)

var _ ledger.Store = (*Repository)(nil)

type Repository struct {
	pool  *pgxpool.Pool
	clock ledger.Clock
	ids   *ledger.IDGenerator
}

// New runs migrations and opens a connection pool.
func New(ctx context.Context, databaseURL string) (*Repository, error) {
	return NewWithClock(ctx, databaseURL, ledger.SystemClock)
}

func NewWithClock(ctx context.Context, databaseURL string, clock ledger.Clock) (*Repository, error) {
	if err := RunMigrations(databaseURL); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	config.MaxConns = 10
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if clock == nil {
		clock = ledger.SystemClock
	}
	return &Repository{pool: pool, clock: clock, ids: ledger.NewIDGenerator()}, nil
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w: %w", core.ErrStorageUnavailable, err)
	}
	return nil
}

func (r *Repository) Append(ctx context.Context, name string, amount core.Money) (core.Donation, error) {
	if err := amount.Validate(); err != nil {
		return core.Donation{}, err
	}

	// timestamptz keeps microseconds
	now := r.clock().UTC().Truncate(time.Microsecond)
	id, err := r.ids.New(now)
	if err != nil {
		return core.Donation{}, fmt.Errorf("generate id: %w: %w", core.ErrStorageUnavailable, err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO donations (id, name, amount_cents, created_at) VALUES ($1, $2, $3, $4)`,
		id, name, amount.Cents, now)
	if err != nil {
		return core.Donation{}, fmt.Errorf("insert donation: %w: %w", core.ErrStorageUnavailable, err)
	}

	slog.InfoContext(ctx, "Donation saved to PostgreSQL",
		"id", id,
		"amount_cents", amount.Cents,
		"created_at", now)

	return core.Donation{ID: id, Name: name, Amount: amount, CreatedAt: now}, nil
}

func (r *Repository) ListAll(ctx context.Context) ([]core.Donation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, amount_cents, created_at FROM donations ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w: %w", core.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var out []core.Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate donations: %w: %w", core.ErrStorageUnavailable, err)
	}
	return out, nil
}

func (r *Repository) MostRecent(ctx context.Context) (*core.Donation, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, amount_cents, created_at FROM donations
		 ORDER BY created_at DESC, seq DESC LIMIT 1`)
	d, err := scanDonation(row)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *Repository) Get(ctx context.Context, id string) (core.Donation, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, amount_cents, created_at FROM donations WHERE id = $1`, id)
	d, err := scanDonation(row)
	if err != nil {
		return core.Donation{}, fmt.Errorf("get donation %s: %w", id, err)
	}
	return d, nil
}

func scanDonation(row pgx.Row) (core.Donation, error) {
	var d core.Donation
	if err := row.Scan(&d.ID, &d.Name, &d.Amount.Cents, &d.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.Donation{}, core.ErrNotFound
		}
		return core.Donation{}, fmt.Errorf("scan donation: %w: %w", core.ErrStorageUnavailable, err)
	}
	d.CreatedAt = d.CreatedAt.UTC()
	return d, nil
}
