package core

import (
	"errors"
	"fmt"
	"time"
)

// DateKeyLayout is the canonical YYYY-MM-DD form used as the entry key.
const DateKeyLayout = "2006-01-02"

// MaxHours bounds the hours accepted for a single day.
const MaxHours = 24.0

type (
	// WorkEntry is the record stored for one calendar day.
	WorkEntry struct {
		Hours float64 `json:"hours"`
		Notes string  `json:"notes"`
		Date  string  `json:"date"`
	}

	// Entries maps date-keys to their work entry.
	Entries map[string]WorkEntry
)

var (
	ErrInvalidDateKey   = errors.New("invalid date key")
	ErrInvalidHours     = errors.New("invalid hours")
	ErrHoursNotPositive = errors.New("hours must be greater than 0")
	ErrHoursOutOfRange  = errors.New("hours must be between 0 and 24")
	ErrDecode           = errors.New("malformed entries data")
)

// IsValidation reports whether err is a user input problem that leaves the
// store untouched.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidDateKey) ||
		errors.Is(err, ErrInvalidHours) ||
		errors.Is(err, ErrHoursNotPositive) ||
		errors.Is(err, ErrHoursOutOfRange)
}

// DateKey formats t as a date-key.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// ParseDateKey parses a YYYY-MM-DD key into a UTC midnight time.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.Parse(DateKeyLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateKey, key)
	}
	return t, nil
}

// ValidateHours checks the range accepted on save: (0, 24].
func ValidateHours(hours float64) error {
	if hours <= 0 {
		return ErrHoursNotPositive
	}
	if hours > MaxHours {
		return ErrHoursOutOfRange
	}
	return nil
}

func (e WorkEntry) Validate() error {
	if _, err := ParseDateKey(e.Date); err != nil {
		return err
	}
	return ValidateHours(e.Hours)
}

// Clone returns an independent copy of the mapping. A nil receiver yields an
// empty, non-nil map.
func (es Entries) Clone() Entries {
	out := make(Entries, len(es))
	for k, v := range es {
		out[k] = v
	}
	return out
}
