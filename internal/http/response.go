package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"charitytracker/internal/core"
	applog "charitytracker/internal/log"
)

type donationJSON struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Amount    core.Money `json:"amount"`
	CreatedAt string     `json:"created_at"`
}

type monthlyJSON struct {
	Month         string     `json:"month"`
	DonationCount int        `json:"donation_count"`
	TotalAmount   core.Money `json:"total_amount"`
}

type summaryJSON struct {
	TotalAmount     core.Money `json:"total_amount"`
	DonorCount      int        `json:"donor_count"`
	AverageDonation core.Money `json:"average_donation"`
}

func toDonationJSON(d core.Donation) donationJSON {
	return donationJSON{
		ID:        d.ID,
		Name:      d.Name,
		Amount:    d.Amount,
		CreatedAt: d.CreatedAt.Format(time.RFC3339Nano),
	}
}

func toMonthlyJSON(aggs []core.MonthlyAggregate) []monthlyJSON {
	out := make([]monthlyJSON, 0, len(aggs))
	for _, a := range aggs {
		out = append(out, monthlyJSON{
			Month:         a.Month,
			DonationCount: a.DonationCount,
			TotalAmount:   a.TotalAmount,
		})
	}
	return out
}

func toSummaryJSON(t core.Totals) summaryJSON {
	return summaryJSON{
		TotalAmount:     t.TotalAmount,
		DonorCount:      t.DonorCount,
		AverageDonation: t.Average(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps validation failures to 400 with their message and
// everything else to 500 with the generic message. Details stay in the log.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, op, generic string) {
	if errors.Is(err, core.ErrInvalidInput) {
		writeJSONError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogError(r.Context(), generic, err, applog.ComponentDonation, op)
	writeJSONError(w, http.StatusInternalServerError, generic)
}

// validationMessage strips the "invalid input: " prefix for display.
func validationMessage(err error) string {
	for _, known := range []error{core.ErrInvalidAmount, core.ErrEmptyName, core.ErrNameTooLong} {
		if errors.Is(err, known) {
			return strings.TrimPrefix(known.Error(), core.ErrInvalidInput.Error()+": ")
		}
	}
	return strings.TrimPrefix(err.Error(), core.ErrInvalidInput.Error()+": ")
}
