package core

import "time"

// Day describes one calendar day of a month view.
type Day struct {
	Date       time.Time
	Key        string
	DayOfMonth int
	DayName    string
	IsWeekend  bool
	IsToday    bool
}

// DaysIn returns the number of days in the given month, or 0 if month is not 1-12.
func DaysIn(year, month int) int {
	if month < 1 || month > 12 {
		return 0
	}
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysOf enumerates every day of year/month in ascending order. IsToday is
// set for the day matching now's calendar date in now's location.
func DaysOf(year, month int, now time.Time) []Day {
	n := DaysIn(year, month)
	if n == 0 {
		return nil
	}
	ty, tm, td := now.Date()

	days := make([]Day, 0, n)
	for d := 1; d <= n; d++ {
		date := time.Date(year, time.Month(month), d, 0, 0, 0, 0, time.UTC)
		wd := date.Weekday()
		days = append(days, Day{
			Date:       date,
			Key:        DateKey(date),
			DayOfMonth: d,
			DayName:    wd.String(),
			IsWeekend:  wd == time.Saturday || wd == time.Sunday,
			IsToday:    ty == year && int(tm) == month && td == d,
		})
	}
	return days
}
