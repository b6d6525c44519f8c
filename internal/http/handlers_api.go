package http

import (
	"errors"
	"net/http"

	"charitytracker/internal/auth"
	applog "charitytracker/internal/log"
)

func (s *Server) handleAPISubmit(w http.ResponseWriter, r *http.Request) {
	name, amount, err := donationInput(NewRequestBodyParser(w, r))
	if err != nil {
		s.writeServiceError(w, r, err, applog.OpAppend, "Failed to add donation")
		return
	}

	d, err := s.svc.Submit(r.Context(), name, amount)
	if err != nil {
		s.writeServiceError(w, r, err, applog.OpAppend, "Failed to add donation")
		return
	}

	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogDonationRecorded(r.Context(), d.ID, d.Amount.Cents)
	s.metrics.DonationRecorded()
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "Donation added successfully",
		"donation": toDonationJSON(d),
	})
}

func (s *Server) handleAPIMonthly(w http.ResponseWriter, r *http.Request) {
	aggs, err := s.svc.MonthlyAggregates(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, applog.OpAggregate, "Failed to fetch donations")
		return
	}
	writeJSON(w, http.StatusOK, toMonthlyJSON(aggs))
}

func (s *Server) handleAPILast(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.MostRecent(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, applog.OpList, "Failed to fetch last donation")
		return
	}
	if d == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, toDonationJSON(*d))
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	totals, err := s.svc.Summary(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, applog.OpAggregate, "Failed to fetch summary")
		return
	}
	writeJSON(w, http.StatusOK, toSummaryJSON(totals))
}

func (s *Server) handleAPILogin(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		writeJSONError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	token, err := s.gate.Login(p.Get("password"))
	if errors.Is(err, auth.ErrInvalidPassword) {
		s.logger.WarnContext(r.Context(), "Admin login failed",
			applog.FieldOperation, applog.OpLogin,
			applog.FieldClientIP, s.detector.ExtractClientIP(r))
		writeJSONError(w, http.StatusUnauthorized, "Invalid password")
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Admin login error", applog.FieldError, err)
		writeJSONError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	http.SetCookie(w, s.gate.SessionCookie(token, s.secure))
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "token": token})
}

func (s *Server) handleAPILogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.ClearCookie(s.secure))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
