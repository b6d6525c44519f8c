// Package worker mirrors recorded donations into the spreadsheet.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"charitytracker/internal/amqp"
	"charitytracker/internal/core"
	"charitytracker/internal/ledger"
	applog "charitytracker/internal/log"
	"charitytracker/internal/sheets"
)

// MirrorWorker copies donations from the ledger into a DonationMirror.
type MirrorWorker struct {
	store  ledger.Reader
	mirror sheets.DonationMirror
	logger *applog.Logger
}

func NewMirrorWorker(store ledger.Reader, mirror sheets.DonationMirror, logger *applog.Logger) *MirrorWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &MirrorWorker{
		store:  store,
		mirror: mirror,
		logger: logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleDonationRecorded mirrors the donation named by msg. A donation
// missing from the ledger is logged and acknowledged since redelivery
// cannot make it appear.
func (w *MirrorWorker) HandleDonationRecorded(ctx context.Context, msg *amqp.DonationRecordedMessage) error {
	w.logger.DebugContext(ctx, "Processing donation recorded message",
		applog.FieldDonationID, msg.ID)

	d, err := w.store.Get(ctx, msg.ID)
	if errors.Is(err, core.ErrNotFound) {
		w.logger.WarnContext(ctx, "Donation not found in ledger, skipping mirror",
			applog.FieldDonationID, msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get donation from ledger: %w", err)
	}

	ref, err := w.mirror.Append(ctx, d)
	if err != nil {
		return fmt.Errorf("mirror donation: %w", err)
	}

	w.logger.InfoContext(ctx, "Mirrored donation",
		applog.FieldDonationID, d.ID,
		applog.FieldOperation, applog.OpMirror,
		"row_ref", ref)
	return nil
}

// Backfill mirrors every donation in the ledger, oldest first. It recovers
// events lost while the worker was down; already mirrored rows are skipped
// by the mirror itself.
func (w *MirrorWorker) Backfill(ctx context.Context) error {
	all, err := w.store.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list donations for backfill: %w", err)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })

	var failed int
	for _, d := range all {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := w.mirror.Append(ctx, d); err != nil {
			w.logger.ErrorContext(ctx, "Failed to mirror donation during backfill",
				applog.FieldDonationID, d.ID,
				applog.FieldError, err)
			failed++
		}
	}

	w.logger.InfoContext(ctx, "Backfill completed",
		"total", len(all),
		"failed", failed)

	if failed > 0 {
		return fmt.Errorf("backfill: %d of %d donations not mirrored", failed, len(all))
	}
	return nil
}
