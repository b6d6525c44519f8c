package worker

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"charitytracker/internal/amqp"
	"charitytracker/internal/core"
	"charitytracker/internal/ledger/memory"
	applog "charitytracker/internal/log"
	mirrormem "charitytracker/internal/sheets/memory"
)

type failingMirror struct{ err error }

func (m failingMirror) Append(context.Context, core.Donation) (string, error) { return "", m.err }

type brokenReader struct{}

func (brokenReader) ListAll(context.Context) ([]core.Donation, error) {
	return nil, core.ErrStorageUnavailable
}

func (brokenReader) MostRecent(context.Context) (*core.Donation, error) {
	return nil, core.ErrStorageUnavailable
}

func (brokenReader) Get(context.Context, string) (core.Donation, error) {
	return core.Donation{}, core.ErrStorageUnavailable
}

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{Output: io.Discard})
}

func seededStore(t *testing.T) (*memory.Store, []core.Donation) {
	t.Helper()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	store := memory.NewWithClock(func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	})
	var out []core.Donation
	for _, name := range []string{"Alice", "Bob"} {
		d, err := store.Append(context.Background(), name, core.Money{Cents: 1000})
		require.NoError(t, err)
		out = append(out, d)
	}
	return store, out
}

func TestHandleDonationRecorded(t *testing.T) {
	ctx := context.Background()
	store, recorded := seededStore(t)
	mirror := mirrormem.New()
	w := NewMirrorWorker(store, mirror, quietLogger())

	require.NoError(t, w.HandleDonationRecorded(ctx, amqp.NewDonationRecordedMessage(recorded[1])))
	require.NoError(t, w.HandleDonationRecorded(ctx, amqp.NewDonationRecordedMessage(recorded[1])))

	rows := mirror.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, recorded[1].ID, rows[0][0])
	assert.Equal(t, "Bob", rows[0][1])
}

func TestHandleDonationRecorded_Missing(t *testing.T) {
	store, _ := seededStore(t)
	mirror := mirrormem.New()
	w := NewMirrorWorker(store, mirror, quietLogger())

	err := w.HandleDonationRecorded(context.Background(), &amqp.DonationRecordedMessage{ID: "01UNKNOWN"})
	assert.NoError(t, err)
	assert.Empty(t, mirror.Rows())
}

func TestHandleDonationRecorded_Failures(t *testing.T) {
	store, recorded := seededStore(t)
	msg := amqp.NewDonationRecordedMessage(recorded[0])

	w := NewMirrorWorker(brokenReader{}, mirrormem.New(), quietLogger())
	err := w.HandleDonationRecorded(context.Background(), msg)
	assert.ErrorIs(t, err, core.ErrStorageUnavailable)

	boom := errors.New("quota exceeded")
	w = NewMirrorWorker(store, failingMirror{err: boom}, quietLogger())
	err = w.HandleDonationRecorded(context.Background(), msg)
	assert.ErrorIs(t, err, boom)
}

func TestBackfill(t *testing.T) {
	ctx := context.Background()
	store, recorded := seededStore(t)
	mirror := mirrormem.New()
	w := NewMirrorWorker(store, mirror, quietLogger())

	require.NoError(t, w.HandleDonationRecorded(ctx, amqp.NewDonationRecordedMessage(recorded[1])))
	require.NoError(t, w.Backfill(ctx))

	rows := mirror.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, recorded[1].ID, rows[0][0])
	assert.Equal(t, recorded[0].ID, rows[1][0])
}

func TestBackfill_Errors(t *testing.T) {
	ctx := context.Background()

	w := NewMirrorWorker(brokenReader{}, mirrormem.New(), quietLogger())
	assert.ErrorIs(t, w.Backfill(ctx), core.ErrStorageUnavailable)

	store, _ := seededStore(t)
	w = NewMirrorWorker(store, failingMirror{err: errors.New("down")}, quietLogger())
	assert.ErrorContains(t, w.Backfill(ctx), "2 of 2")

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	w = NewMirrorWorker(store, mirrormem.New(), quietLogger())
	assert.ErrorIs(t, w.Backfill(cancelled), context.Canceled)
}
