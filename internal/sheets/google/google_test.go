package google

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"

	"charitytracker/internal/core"
)

// fakeSheet serves the two Values endpoints the client uses.
type fakeSheet struct {
	mu       sync.Mutex
	values   [][]any
	appended [][]any
	gets     int
	getErr   bool
	ranges   []string
}

func (f *fakeSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	if _, rng, ok := strings.Cut(r.URL.Path, "/values/"); ok {
		f.ranges = append(f.ranges, strings.TrimSuffix(rng, ":append"))
	}

	switch {
	case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/values/"):
		f.gets++
		if f.getErr {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":{"code":403,"message":"forbidden"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"range": "Donations!A:A", "values": f.values})
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		var body struct {
			Values [][]any `json:"values"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		start := len(f.values) + 1
		for _, row := range body.Values {
			f.appended = append(f.appended, row)
			f.values = append(f.values, []any{row[0]})
		}
		end := len(f.values)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"spreadsheetId": "sheet-1",
			"updates": map[string]any{
				"updatedRange": "Donations!A" + strconv.Itoa(start) + ":D" + strconv.Itoa(end),
			},
		})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, sheet *fakeSheet) *Client {
	t.Helper()
	return newNamedTestClient(t, sheet, "Donations")
}

func newNamedTestClient(t *testing.T, sheet *fakeSheet, name string) *Client {
	t.Helper()
	srv := httptest.NewServer(sheet)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Options{
		SpreadsheetID: "sheet-1",
		SheetName:     name,
		ClientOptions: []goption.ClientOption{
			goption.WithEndpoint(srv.URL + "/"),
			goption.WithHTTPClient(srv.Client()),
			goption.WithoutAuthentication(),
		},
	})
	require.NoError(t, err)
	return c
}

func donation(id string) core.Donation {
	return core.Donation{
		ID:        id,
		Name:      "Alice",
		Amount:    core.Money{Cents: 2550},
		CreatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(context.Background(), Options{})
	assert.ErrorContains(t, err, "missing spreadsheet id")

	_, err = New(context.Background(), Options{SpreadsheetID: "x"})
	assert.ErrorContains(t, err, "missing service account credentials")

	_, err = New(context.Background(), Options{SpreadsheetID: "x", CredentialsFile: "/nonexistent/sa.json"})
	assert.ErrorContains(t, err, "read service account file")
}

func TestAppend_WritesHeaderOnEmptySheet(t *testing.T) {
	sheet := &fakeSheet{}
	c := newTestClient(t, sheet)

	ref, err := c.Append(context.Background(), donation("01A"))
	require.NoError(t, err)
	assert.Equal(t, "Donations!A1:D2", ref)

	require.Len(t, sheet.appended, 2)
	assert.Equal(t, []any{"id", "name", "amount", "created_at"}, sheet.appended[0])
	assert.Equal(t, []any{"01A", "Alice", "25.50", "2024-03-01T10:00:00.000Z"}, sheet.appended[1])

	again, err := c.Append(context.Background(), donation("01A"))
	require.NoError(t, err)
	assert.Equal(t, ref, again)
	assert.Equal(t, 1, sheet.gets, "redelivery should be answered from the seen cache")
	assert.Len(t, sheet.appended, 2)
}

func TestAppend_SkipsAlreadyMirrored(t *testing.T) {
	sheet := &fakeSheet{values: [][]any{{"id"}, {"01A"}, {"01B"}}}
	c := newTestClient(t, sheet)

	ref, err := c.Append(context.Background(), donation("01B"))
	require.NoError(t, err)
	assert.Equal(t, "'Donations'!A3:D3", ref)
	assert.Empty(t, sheet.appended)

	ref, err = c.Append(context.Background(), donation("01C"))
	require.NoError(t, err)
	assert.Equal(t, "Donations!A4:D4", ref)
	require.Len(t, sheet.appended, 1)
	assert.Equal(t, "01C", sheet.appended[0][0])
}

func TestAppend_QuotesSheetName(t *testing.T) {
	sheet := &fakeSheet{values: [][]any{{"id"}, {"01A"}}}
	c := newNamedTestClient(t, sheet, "Donor's List 2024")

	ref, err := c.Append(context.Background(), donation("01A"))
	require.NoError(t, err)
	assert.Equal(t, "'Donor''s List 2024'!A2:D2", ref)

	_, err = c.Append(context.Background(), donation("01B"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"'Donor''s List 2024'!A:A",
		"'Donor''s List 2024'!A:A",
		"'Donor''s List 2024'!A:D",
	}, sheet.ranges)
}

func TestA1Range(t *testing.T) {
	assert.Equal(t, "'Donations'!A:A", a1Range("Donations", "A:A"))
	assert.Equal(t, "'Q1 ''24'!A2:D2", a1Range("Q1 '24", "A2:D2"))
}

func TestAppend_Errors(t *testing.T) {
	_, err := (&Client{}).Append(context.Background(), core.Donation{})
	assert.True(t, errors.Is(err, core.ErrInvalidInput))

	_, err = (&Client{}).Append(context.Background(), donation("01A"))
	assert.ErrorContains(t, err, "not initialized")

	c := newTestClient(t, &fakeSheet{getErr: true})
	_, err = c.Append(context.Background(), donation("01A"))
	assert.ErrorContains(t, err, "failed to read ids")
}
