// Package sheets defines the write-only spreadsheet mirror of the ledger.
package sheets

import (
	"context"

	"charitytracker/internal/core"
)

// Ports for outbound adapters.
type (
	// DonationMirror copies a recorded donation into an external sheet.
	// Appending a donation whose id is already mirrored is a no-op that
	// returns the existing row reference.
	DonationMirror interface {
		Append(ctx context.Context, d core.Donation) (rowRef string, err error)
	}
)

// Row renders a donation as the mirrored columns: id, name, amount and
// creation time.
func Row(d core.Donation) []any {
	return []any{d.ID, d.Name, d.Amount.String(), d.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00")}
}
