package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MaxNameLength bounds the donor name accepted by the submission surface.
const MaxNameLength = 200

type (
	Money struct {
		Cents int64
	}

	// Donation is a single immutable ledger record.
	Donation struct {
		ID        string
		Name      string
		Amount    Money
		CreatedAt time.Time
	}
)

var (
	// ErrInvalidInput marks every validation failure reported to callers.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStorageUnavailable marks failures of the backing store.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrNotFound is returned when a donation id is not in the ledger.
	ErrNotFound = errors.New("donation not found")

	ErrInvalidAmount = fmt.Errorf("%w: amount must be a positive finite number up to %d", ErrInvalidInput, MaxAmountCents/100)
	ErrEmptyName     = fmt.Errorf("%w: name is required", ErrInvalidInput)
	ErrNameTooLong   = fmt.Errorf("%w: name too long (max %d characters)", ErrInvalidInput, MaxNameLength)
)

// Validate accepts positive amounts up to MaxAmountCents.
func (m Money) Validate() error {
	if m.Cents <= 0 || m.Cents > MaxAmountCents {
		return ErrInvalidAmount
	}
	return nil
}

// ValidateName checks the donor name after trimming.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if len([]rune(name)) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}

// MonthKey returns the YYYY-MM key the donation is grouped under.
func (d Donation) MonthKey() string {
	return MonthKeyOf(d.CreatedAt)
}

// MonthKeyOf truncates t to year and month in t's own location.
func MonthKeyOf(t time.Time) string {
	return t.Format("2006-01")
}

// SanitizeName trims the name and drops control characters other than tab
// and newlines.
func SanitizeName(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		if r == 127 {
			return -1
		}
		return r
	}, s)
}
