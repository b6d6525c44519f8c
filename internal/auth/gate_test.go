package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestGate(t *testing.T, now func() time.Time) *Gate {
	t.Helper()
	g, err := NewGate(Options{
		Password: "الحمدلله",
		Secret:   []byte("test-secret"),
		TTL:      time.Hour,
		Now:      now,
	})
	require.NoError(t, err)
	return g
}

func TestGate_LoginAndVerify(t *testing.T) {
	g := newTestGate(t, nil)

	_, err := g.Login("wrong")
	require.ErrorIs(t, err, ErrInvalidPassword)

	token, err := g.Login("الحمدلله")
	require.NoError(t, err)
	require.NoError(t, g.Verify(token))

	assert.ErrorIs(t, g.Verify(""), ErrInvalidToken)
	assert.ErrorIs(t, g.Verify(token+"x"), ErrInvalidToken)
}

func TestGate_PasswordHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	g, err := NewGate(Options{PasswordHash: string(hash), Password: "ignored"})
	require.NoError(t, err)

	_, err = g.Login("ignored")
	assert.ErrorIs(t, err, ErrInvalidPassword)
	_, err = g.Login("s3cret")
	assert.NoError(t, err)

	_, err = NewGate(Options{PasswordHash: "not-a-bcrypt-hash"})
	assert.Error(t, err)
}

func TestGate_NotConfigured(t *testing.T) {
	_, err := NewGate(Options{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGate_TokenExpires(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	g := newTestGate(t, func() time.Time { return now })

	token, err := g.Login("الحمدلله")
	require.NoError(t, err)
	require.NoError(t, g.Verify(token))

	now = now.Add(2 * time.Hour)
	assert.ErrorIs(t, g.Verify(token), ErrInvalidToken)
}

func TestGate_RejectsForeignTokens(t *testing.T) {
	g := newTestGate(t, nil)

	other, err := NewGate(Options{Password: "الحمدلله", Secret: []byte("other-secret")})
	require.NoError(t, err)
	foreign, err := other.Login("الحمدلله")
	require.NoError(t, err)
	assert.ErrorIs(t, g.Verify(foreign), ErrInvalidToken)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	s, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	assert.ErrorIs(t, g.Verify(s), ErrInvalidToken)
}

func TestRequireAdmin(t *testing.T) {
	g := newTestGate(t, nil)
	token, err := g.Login("الحمدلله")
	require.NoError(t, err)

	h := g.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"no token", func(*http.Request) {}, http.StatusUnauthorized},
		{"bad bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusNoContent},
		{"cookie", func(r *http.Request) { r.AddCookie(g.SessionCookie(token, false)) }, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/donations/monthly", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusUnauthorized {
				assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
			}
		})
	}
}

func TestClearCookie(t *testing.T) {
	c := ClearCookie(true)
	assert.Equal(t, CookieName, c.Name)
	assert.Equal(t, -1, c.MaxAge)
	assert.True(t, c.Secure)
}
