// Package core provides hours parsing and formatting utilities.
//
// This file contains functions for reading hour amounts typed into the day
// form and rendering them back for display.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
)

// ParseHours converts a decimal string to hours.
//
// It accepts both dot (7.5) and comma (7,5) decimal separators. The value must
// be within [0, 24]; zero is accepted here and rejected later by the store, so
// callers can tell "not a number" apart from "nothing worked".
//
// Examples:
//
//	ParseHours("8")    -> 8, nil
//	ParseHours("7,5")  -> 7.5, nil
//	ParseHours("25")   -> 0, ErrHoursOutOfRange
//	ParseHours("abc")  -> 0, ErrInvalidHours
func ParseHours(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidHours
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") {
		return 0, ErrInvalidHours
	}
	neg := strings.HasPrefix(s, "-")
	digits := strings.TrimPrefix(s, "-")

	parts := strings.Split(digits, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidHours
	}
	for _, p := range parts {
		for _, r := range p {
			if !unicode.IsDigit(r) {
				return 0, ErrInvalidHours
			}
		}
	}
	if parts[0] == "" && (len(parts) == 1 || parts[1] == "") {
		return 0, ErrInvalidHours
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidHours
	}
	if neg && v != 0 {
		return 0, ErrHoursOutOfRange
	}
	if v > MaxHours {
		return 0, ErrHoursOutOfRange
	}
	return math.Abs(v), nil
}

// FormatHours renders hours with one decimal, e.g. "7.5".
func FormatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', 1, 64)
}

// FormatWhole renders a value rounded to an integer with thousands separators,
// e.g. 2080 -> "2,080".
func FormatWhole(v float64) string {
	return humanize.Comma(int64(math.Round(v)))
}
