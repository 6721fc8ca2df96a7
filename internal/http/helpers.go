package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"worktrack/internal/core"
	"worktrack/internal/services"
)

// Flash codes carried on the redirect after a plain form post.
const (
	flashSaved            = "saved"
	flashDeleted          = "deleted"
	flashCleared          = "cleared"
	flashImported         = "imported"
	flashInvalidDate      = "invalid-date"
	flashInvalidHours     = "invalid-hours"
	flashHoursNotPositive = "hours-not-positive"
	flashClearUnconfirmed = "clear-unconfirmed"
	flashImportInvalid    = "import-invalid"
	flashPersistFailed    = "persist-failed"
)

type flash struct {
	Kind    NotificationType
	Message string
}

var flashes = map[string]flash{
	flashSaved:            {NotificationSuccess, "Entry saved."},
	flashDeleted:          {NotificationSuccess, "Entry deleted."},
	flashCleared:          {NotificationSuccess, "All data cleared."},
	flashImported:         {NotificationSuccess, "Data imported."},
	flashInvalidDate:      {NotificationWarning, "That date is not valid."},
	flashInvalidHours:     {NotificationWarning, "Hours must be a number between 0 and 24."},
	flashHoursNotPositive: {NotificationWarning, "Please enter hours greater than 0."},
	flashClearUnconfirmed: {NotificationWarning, "Tick the confirmation box to clear all data."},
	flashImportInvalid:    {NotificationWarning, "The uploaded file is not a valid backup."},
	flashPersistFailed:    {NotificationError, "Could not write the data file. Nothing was changed."},
}

// lookupFlash returns the flash for code; unknown codes yield ok=false.
func lookupFlash(code string) (flash, bool) {
	f, ok := flashes[code]
	return f, ok
}

// classify maps a service error to its HTTP status and flash code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrInvalidDateKey):
		return http.StatusUnprocessableEntity, flashInvalidDate
	case errors.Is(err, core.ErrHoursNotPositive):
		return http.StatusUnprocessableEntity, flashHoursNotPositive
	case errors.Is(err, core.ErrInvalidHours), errors.Is(err, core.ErrHoursOutOfRange):
		return http.StatusUnprocessableEntity, flashInvalidHours
	case errors.Is(err, services.ErrClearNotConfirmed):
		return http.StatusUnprocessableEntity, flashClearUnconfirmed
	case errors.Is(err, core.ErrDecode):
		return http.StatusBadRequest, flashImportInvalid
	default:
		return http.StatusInternalServerError, flashPersistFailed
	}
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// monthURL builds the month view location, with an optional flash code.
func monthURL(p MonthParams, flashCode string) string {
	u := "/?" + p.Query()
	if flashCode != "" {
		u += "&flash=" + url.QueryEscape(flashCode)
	}
	return u
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
