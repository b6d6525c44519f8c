package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"charitytracker/internal/core"
	"charitytracker/internal/ledger"

	_ "modernc.org/sqlite"
)

// TimestampLayout is fixed-width so that created_at sorts lexically in
// chronological order. Values are always stored in UTC.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z"

var _ ledger.Store = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db    *sql.DB
	clock ledger.Clock
	ids   *ledger.IDGenerator
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	return NewSQLiteRepositoryWithClock(dbPath, ledger.SystemClock)
}

func NewSQLiteRepositoryWithClock(dbPath string, clock ledger.Clock) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer; one connection avoids SQLITE_BUSY on appends.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if clock == nil {
		clock = ledger.SystemClock
	}
	return &SQLiteRepository{
		db:    db,
		clock: clock,
		ids:   ledger.NewIDGenerator(),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping sqlite: %w: %w", core.ErrStorageUnavailable, err)
	}
	return nil
}

// Append implements ledger.Writer
func (r *SQLiteRepository) Append(ctx context.Context, name string, amount core.Money) (core.Donation, error) {
	if err := amount.Validate(); err != nil {
		return core.Donation{}, err
	}

	now := r.clock().UTC()
	id, err := r.ids.New(now)
	if err != nil {
		return core.Donation{}, fmt.Errorf("generate id: %w: %w", core.ErrStorageUnavailable, err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO donations (id, name, amount_cents, created_at) VALUES (?, ?, ?, ?)`,
		id, name, amount.Cents, now.Format(TimestampLayout))
	if err != nil {
		return core.Donation{}, fmt.Errorf("insert donation: %w: %w", core.ErrStorageUnavailable, err)
	}

	slog.InfoContext(ctx, "Donation saved to SQLite",
		"id", id,
		"amount_cents", amount.Cents,
		"created_at", now)

	return core.Donation{ID: id, Name: name, Amount: amount, CreatedAt: now}, nil
}

// ListAll implements ledger.Reader
func (r *SQLiteRepository) ListAll(ctx context.Context) ([]core.Donation, error) {
	rows, err := r.db.QueryContext(ctx,
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

// MostRecent implements ledger.Reader
func (r *SQLiteRepository) MostRecent(ctx context.Context) (*core.Donation, error) {
	row := r.db.QueryRowContext(ctx,
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

// Get implements ledger.Reader
func (r *SQLiteRepository) Get(ctx context.Context, id string) (core.Donation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, amount_cents, created_at FROM donations WHERE id = ?`, id)
	d, err := scanDonation(row)
	if err != nil {
		return core.Donation{}, fmt.Errorf("get donation %s: %w", id, err)
	}
	return d, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDonation(s scanner) (core.Donation, error) {
	var (
		d         core.Donation
		createdAt string
	)
	if err := s.Scan(&d.ID, &d.Name, &d.Amount.Cents, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Donation{}, core.ErrNotFound
		}
		return core.Donation{}, fmt.Errorf("scan donation: %w: %w", core.ErrStorageUnavailable, err)
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return core.Donation{}, fmt.Errorf("parse created_at %q: %w: %w", createdAt, core.ErrStorageUnavailable, err)
	}
	d.CreatedAt = t.UTC()
	return d, nil
}
