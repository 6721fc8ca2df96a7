package core

import (
	"fmt"
	"sort"
	"strings"
)

// ScaleFactor multiplies total hours into the scaled total widget.
const ScaleFactor = 260

// Summary aggregates a set of entries.
type Summary struct {
	TotalHours  float64 `json:"total_hours"`
	DayCount    int     `json:"day_count"`
	AvgHours    float64 `json:"avg_hours"`
	ScaledTotal float64 `json:"scaled_total"`
}

// Summarize computes totals over entries. An empty input yields the zero Summary.
func Summarize(entries []WorkEntry) Summary {
	var s Summary
	for _, e := range entries {
		s.TotalHours += e.Hours
	}
	s.DayCount = len(entries)
	if s.DayCount > 0 {
		s.AvgHours = s.TotalHours / float64(s.DayCount)
	}
	s.ScaledTotal = s.TotalHours * ScaleFactor
	return s
}

// MonthPrefix returns the "YYYY-MM" prefix shared by every date-key of a month.
func MonthPrefix(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// Sorted returns the entries ordered by date-key.
func (es Entries) Sorted() []WorkEntry {
	keys := make([]string, 0, len(es))
	for k := range es {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]WorkEntry, 0, len(keys))
	for _, k := range keys {
		out = append(out, es[k])
	}
	return out
}

// InMonth returns the entries whose key falls in year/month, ordered by key.
// Matching is a prefix match on the key's year-month portion.
func (es Entries) InMonth(year, month int) []WorkEntry {
	prefix := MonthPrefix(year, month) + "-"
	keys := make([]string, 0)
	for k := range es {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := make([]WorkEntry, 0, len(keys))
	for _, k := range keys {
		out = append(out, es[k])
	}
	return out
}
