package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"charitytracker/internal/auth"
	"charitytracker/internal/core"
	"charitytracker/internal/i18n"
	applog "charitytracker/internal/log"
	"charitytracker/internal/services"
)

type localeKey struct{}

var langLabels = map[string]string{
	"en": "English",
	"ar": "العربية",
	"it": "Italiano",
}

type langLink struct {
	Code    string
	Label   string
	Current bool
}

type pageData struct {
	L       i18n.Locale
	Title   string
	Path    string
	Langs   []langLink
	Success string
	Error   string

	// donation form
	Name   string
	Amount string

	// dashboard
	View services.DashboardView
}

// withLocale resolves the page language and remembers an explicit ?lang=
// choice in a cookie.
func (s *Server) withLocale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		loc := s.catalog.Resolve(r)
		if code := r.URL.Query().Get(i18n.QueryParam); code != "" {
			if _, ok := s.catalog.Lookup(code); ok {
				http.SetCookie(w, &http.Cookie{
					Name:     i18n.CookieName,
					Value:    loc.Code,
					Path:     "/",
					MaxAge:   365 * 24 * 3600,
					HttpOnly: true,
					Secure:   s.secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
		}
		ctx := context.WithValue(r.Context(), localeKey{}, loc)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) localeOf(r *http.Request) i18n.Locale {
	if loc, ok := r.Context().Value(localeKey{}).(i18n.Locale); ok {
		return loc
	}
	return s.catalog.Resolve(r)
}

func (s *Server) newPage(r *http.Request, titleKey string) pageData {
	loc := s.localeOf(r)
	langs := make([]langLink, 0, len(s.catalog.Supported()))
	for _, code := range s.catalog.Supported() {
		langs = append(langs, langLink{Code: code, Label: langLabels[code], Current: code == loc.Code})
	}
	return pageData{
		L:     loc,
		Title: loc.T(titleKey),
		Path:  r.URL.Path,
		Langs: langs,
	}
}

// render executes into a buffer first so a template error never leaves a
// half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed",
			applog.FieldOperation, applog.OpRender,
			"template", name,
			applog.FieldError, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "index.html", s.newPage(r, "form.heading"))
}

func (s *Server) handleDonate(w http.ResponseWriter, r *http.Request) {
	page := s.newPage(r, "form.heading")
	p := NewRequestBodyParser(w, r)

	name, amount, err := donationInput(p)
	if err == nil {
		var d core.Donation
		d, err = s.svc.Submit(r.Context(), name, amount)
		if err == nil {
			applog.NewStructuredLogger(applog.FromContext(r.Context())).
				LogDonationRecorded(r.Context(), d.ID, d.Amount.Cents)
			s.metrics.DonationRecorded()
			page.Success = page.L.T("form.thanks", d.Name, page.L.Amount(d.Amount))
			s.render(w, r, http.StatusCreated, "index.html", page)
			return
		}
	}

	// keep what the donor typed
	page.Name = p.Get("name")
	page.Amount = p.Get("amount")
	if errors.Is(err, core.ErrInvalidInput) {
		page.Error = page.L.T("error.invalid")
		s.render(w, r, http.StatusBadRequest, "index.html", page)
		return
	}
	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogError(r.Context(), "Failed to add donation", err, applog.ComponentDonation, applog.OpAppend)
	page.Error = page.L.T("error.server")
	s.render(w, r, http.StatusInternalServerError, "index.html", page)
}

func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	if !s.gate.Authenticated(r) {
		s.render(w, r, http.StatusOK, "login.html", s.newPage(r, "admin.login"))
		return
	}

	page := s.newPage(r, "admin.title")
	view, err := s.svc.Dashboard(r.Context())
	if err != nil {
		applog.NewStructuredLogger(applog.FromContext(r.Context())).
			LogError(r.Context(), "Failed to load dashboard", err, applog.ComponentDonation, applog.OpAggregate)
		page.Error = page.L.T("error.server")
		s.render(w, r, http.StatusInternalServerError, "admin.html", page)
		return
	}
	page.View = view
	s.render(w, r, http.StatusOK, "admin.html", page)
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		page := s.newPage(r, "admin.login")
		page.Error = page.L.T("error.invalid")
		s.render(w, r, http.StatusBadRequest, "login.html", page)
		return
	}

	token, err := s.gate.Login(p.Get("password"))
	if err != nil {
		status := http.StatusInternalServerError
		page := s.newPage(r, "admin.login")
		page.Error = page.L.T("error.server")
		if errors.Is(err, auth.ErrInvalidPassword) {
			status = http.StatusUnauthorized
			page.Error = page.L.T("admin.invalid")
			s.logger.WarnContext(r.Context(), "Admin login failed",
				applog.FieldOperation, applog.OpLogin,
				applog.FieldClientIP, s.detector.ExtractClientIP(r))
		}
		s.render(w, r, status, "login.html", page)
		return
	}

	http.SetCookie(w, s.gate.SessionCookie(token, s.secure))
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.ClearCookie(s.secure))
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}
