package core

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSummarizeEmpty(t *testing.T) {
	if diff := cmp.Diff(Summary{}, Summarize(nil)); diff != "" {
		t.Fatalf("empty summary mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Summary{}, Summarize([]WorkEntry{})); diff != "" {
		t.Fatalf("empty summary mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize([]WorkEntry{
		{Date: "2026-02-14", Hours: 8},
		{Date: "2026-02-15", Hours: 6.5},
		{Date: "2026-03-01", Hours: 1.5},
	})
	want := Summary{TotalHours: 16, DayCount: 3, AvgHours: 16.0 / 3, ScaledTotal: 4160}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarizeLinearAndScaled(t *testing.T) {
	a := []WorkEntry{{Date: "2026-01-02", Hours: 3.25}, {Date: "2026-01-03", Hours: 7}}
	b := []WorkEntry{{Date: "2026-02-02", Hours: 0.5}, {Date: "2026-02-03", Hours: 11.75}, {Date: "2026-02-04", Hours: 2}}

	sa, sb := Summarize(a), Summarize(b)
	union := Summarize(append(append([]WorkEntry{}, a...), b...))

	if math.Abs(union.TotalHours-(sa.TotalHours+sb.TotalHours)) > 1e-9 {
		t.Fatalf("total not additive: %v vs %v+%v", union.TotalHours, sa.TotalHours, sb.TotalHours)
	}
	if union.DayCount != sa.DayCount+sb.DayCount {
		t.Fatalf("day count not additive")
	}
	for _, s := range []Summary{sa, sb, union} {
		if math.Abs(s.ScaledTotal/ScaleFactor-s.TotalHours) > 1e-9 {
			t.Fatalf("scaled total %v does not match total %v", s.ScaledTotal, s.TotalHours)
		}
	}
}

func TestMonthPrefix(t *testing.T) {
	if got := MonthPrefix(2026, 2); got != "2026-02" {
		t.Fatalf("got %q", got)
	}
	if got := MonthPrefix(999, 12); got != "0999-12" {
		t.Fatalf("got %q", got)
	}
}

func TestEntriesInMonth(t *testing.T) {
	es := Entries{
		"2026-02-14": {Date: "2026-02-14", Hours: 8},
		"2026-02-01": {Date: "2026-02-01", Hours: 2},
		"2026-03-01": {Date: "2026-03-01", Hours: 4},
		"2025-02-14": {Date: "2025-02-14", Hours: 5},
	}
	got := es.InMonth(2026, 2)
	want := []WorkEntry{
		{Date: "2026-02-01", Hours: 2},
		{Date: "2026-02-14", Hours: 8},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("month filter mismatch (-want +got):\n%s", diff)
	}
	if s := Summarize(got); s.TotalHours != 10 || s.DayCount != 2 {
		t.Fatalf("unexpected month summary %+v", s)
	}
	if got := es.InMonth(2026, 4); len(got) != 0 {
		t.Fatalf("expected no entries for april, got %v", got)
	}
}

func TestEntriesSorted(t *testing.T) {
	es := Entries{
		"2026-03-01": {Date: "2026-03-01", Hours: 4},
		"2026-02-14": {Date: "2026-02-14", Hours: 8},
	}
	got := es.Sorted()
	if len(got) != 2 || got[0].Date != "2026-02-14" || got[1].Date != "2026-03-01" {
		t.Fatalf("unexpected order: %v", got)
	}
}
