// Package auth guards the admin views with a shared password and
// short-lived signed session tokens.
package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"charitytracker/internal/ledger"
)

const (
	// CookieName carries the admin session token.
	CookieName = "ct_admin"
	subject    = "admin"
	issuer     = "charitytracker"
	// DefaultTTL is how long a session token stays valid.
	DefaultTTL = 12 * time.Hour
)

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidToken    = errors.New("invalid token")
	ErrNotConfigured   = errors.New("admin password not configured")
)

type Options struct {
	Password     string // plain, hashed at construction
	PasswordHash string // bcrypt, takes precedence over Password
	Secret       []byte // HS256 key; random per process when empty
	TTL          time.Duration
	Now          func() time.Time
}

// Gate checks the admin password and issues and verifies session tokens.
type Gate struct {
	hash   []byte
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	ids    *ledger.IDGenerator
}

func NewGate(opts Options) (*Gate, error) {
	g := &Gate{
		secret: opts.Secret,
		ttl:    opts.TTL,
		now:    opts.Now,
		ids:    ledger.NewIDGenerator(),
	}
	if g.ttl <= 0 {
		g.ttl = DefaultTTL
	}
	if g.now == nil {
		g.now = time.Now
	}

	switch {
	case opts.PasswordHash != "":
		if _, err := bcrypt.Cost([]byte(opts.PasswordHash)); err != nil {
			return nil, fmt.Errorf("admin password hash: %w", err)
		}
		g.hash = []byte(opts.PasswordHash)
	case opts.Password != "":
		h, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		g.hash = h
	default:
		return nil, ErrNotConfigured
	}

	if len(g.secret) == 0 {
		g.secret = make([]byte, 32)
		if _, err := rand.Read(g.secret); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
	}
	return g, nil
}

// TTL returns the lifetime of issued tokens.
func (g *Gate) TTL() time.Duration { return g.ttl }

// Login checks password and returns a signed session token.
func (g *Gate) Login(password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(g.hash, []byte(password)); err != nil {
		return "", ErrInvalidPassword
	}

	now := g.now()
	jti, err := g.ids.New(now)
	if err != nil {
		return "", fmt.Errorf("token id: %w", err)
	}
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    issuer,
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify accepts only unexpired HS256 tokens issued by this gate.
func (g *Gate) Verify(tokenStr string) error {
	if tokenStr == "" {
		return ErrInvalidToken
	}
	claims := new(jwt.RegisteredClaims)
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithSubject(subject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	token, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return g.secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
