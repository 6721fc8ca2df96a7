// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data:
// the month selector, the entry form (URL-encoded or JSON) and method checks.

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"worktrack/internal/core"
)

// maxFormBytes bounds the body read for entry forms.
const maxFormBytes = 64 << 10

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams extracts year and month from values, defaulting to now.
// A month outside 1..12 or a year outside 1..9999 falls back to now.
func ParseMonthParams(values url.Values, now time.Time) MonthParams {
	params := MonthParams{
		Year:  now.Year(),
		Month: int(now.Month()),
	}

	if v := strings.TrimSpace(values.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil && y >= 1 && y <= 9999 {
			params.Year = y
		}
	}
	if v := strings.TrimSpace(values.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m >= 1 && m <= 12 {
			params.Month = m
		}
	}

	return params
}

// Prev returns the month before p.
func (p MonthParams) Prev() MonthParams {
	if p.Month == 1 {
		return MonthParams{Year: p.Year - 1, Month: 12}
	}
	return MonthParams{Year: p.Year, Month: p.Month - 1}
}

// Next returns the month after p.
func (p MonthParams) Next() MonthParams {
	if p.Month == 12 {
		return MonthParams{Year: p.Year + 1, Month: 1}
	}
	return MonthParams{Year: p.Year, Month: p.Month + 1}
}

// Query renders p as a "year=&month=" query string.
func (p MonthParams) Query() string {
	return url.Values{
		"year":  {strconv.Itoa(p.Year)},
		"month": {strconv.Itoa(p.Month)},
	}.Encode()
}

// EntryForm is a parsed save request.
type EntryForm struct {
	Key   string
	Date  time.Time
	Hours float64
	Notes string
}

// ParseEntryForm validates the date and hours fields. Hours of zero parse
// successfully; the store rejects them on save.
func ParseEntryForm(p *RequestBodyParser) (EntryForm, error) {
	key := p.Get("date")
	date, err := core.ParseDateKey(key)
	if err != nil {
		return EntryForm{}, err
	}
	hours, err := core.ParseHours(p.Get("hours"))
	if err != nil {
		return EntryForm{}, err
	}
	return EntryForm{
		Key:   key,
		Date:  date,
		Hours: hours,
		Notes: p.Get("notes"),
	}, nil
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// ErrBodyTooLarge is returned by Parse when the body exceeds maxFormBytes.
var ErrBodyTooLarge = errors.New("request body too large")

// NewRequestBodyParser reads the request body once. A body larger than
// maxFormBytes is rejected with ErrBodyTooLarge rather than truncated.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxFormBytes+1))
		if p.err == nil && len(p.body) > maxFormBytes {
			p.body, p.err = nil, ErrBodyTooLarge
		}
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if strings.HasPrefix(p.contentType, "application/json") || p.body[0] == '{' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.jsonData = nil
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a trimmed, sanitized value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Values exposes the parsed fields as url.Values, so the month selector
// can read them regardless of encoding.
func (p *RequestBodyParser) Values() url.Values {
	if p.formData != nil {
		return p.formData
	}
	v := url.Values{}
	for k, val := range p.jsonData {
		v.Set(k, stringValue(val))
	}
	return v
}

func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// RequireMethod returns an error response when r.Method is not one of methods.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

func RequireGET(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodGet, http.MethodHead)
}
