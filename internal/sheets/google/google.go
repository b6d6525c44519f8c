// Package google mirrors donations into a Google Sheets spreadsheet using a
// service account.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"charitytracker/internal/cache"
	"charitytracker/internal/core"
	ports "charitytracker/internal/sheets"
)

// Ensure interface conformance
var _ ports.DonationMirror = (*Client)(nil)

// Header is written to an empty sheet before the first donation.
var Header = []any{"id", "name", "amount", "created_at"}

// Mirrored ids are remembered so redeliveries skip the column read.
const (
	seenCacheSize = 10000
	seenCacheTTL  = 24 * time.Hour
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	seen          cache.Cache[string]
}

// Options configures the client. CredentialsJSON wins over CredentialsFile.
// When ClientOptions are set they replace the credentials entirely.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
	ClientOptions   []goption.ClientOption
}

// New creates a Sheets client authenticated with service account credentials.
func New(ctx context.Context, opts Options) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheetName := strings.TrimSpace(opts.SheetName)
	if sheetName == "" {
		sheetName = "Donations"
	}

	clientOpts := []goption.ClientOption{
		goption.WithScopes(gsheet.SpreadsheetsScope),
	}
	if len(opts.ClientOptions) == 0 {
		credentialsJSON, err := readCredentials(opts)
		if err != nil {
			return nil, err
		}
		clientOpts = append(clientOpts, goption.WithCredentialsJSON(credentialsJSON))
	}
	clientOpts = append(clientOpts, opts.ClientOptions...)

	svc, err := gsheet.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		seen:          cache.NewLRUCache[string](seenCacheSize, seenCacheTTL),
	}, nil
}

func readCredentials(opts Options) ([]byte, error) {
	switch {
	case strings.TrimSpace(opts.CredentialsJSON) != "":
		return []byte(opts.CredentialsJSON), nil
	case strings.TrimSpace(opts.CredentialsFile) != "":
		data, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// Append writes the donation as a new row unless its id is already present
// in column A, which makes redelivered events harmless.
func (c *Client) Append(ctx context.Context, d core.Donation) (string, error) {
	if d.ID == "" {
		return "", fmt.Errorf("%w: donation id is required", core.ErrInvalidInput)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if ref, ok := c.seen.Get(d.ID); ok {
		return ref, nil
	}

	rng := a1Range(c.sheetName, "A:A")
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to read ids from sheet %s: %w", c.sheetName, err)
	}

	var rows [][]any
	if len(resp.Values) == 0 {
		rows = append(rows, Header)
	}
	for i, row := range resp.Values {
		if len(row) > 0 && fmt.Sprint(row[0]) == d.ID {
			ref := c.rowRef(i + 1)
			c.seen.Set(d.ID, ref)
			return ref, nil
		}
	}
	rows = append(rows, ports.Row(d))

	vr := &gsheet.ValueRange{Values: rows}
	out, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, a1Range(c.sheetName, "A:D"), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to append to sheet %s: %w", c.sheetName, err)
	}
	ref := c.rowRef(len(resp.Values) + len(rows))
	if out.Updates != nil && out.Updates.UpdatedRange != "" {
		ref = out.Updates.UpdatedRange
	}
	c.seen.Set(d.ID, ref)
	return ref, nil
}

func (c *Client) rowRef(row int) string {
	return a1Range(c.sheetName, fmt.Sprintf("A%d:D%d", row, row))
}

// a1Range quotes the sheet name so names with spaces, punctuation or
// apostrophes address the right tab. Embedded quotes are doubled.
func a1Range(sheet, cells string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'!" + cells
}
