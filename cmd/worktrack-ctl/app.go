package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"worktrack/internal/core"
	"worktrack/internal/services"
)

// App runs the control commands against one loaded EntryService.
type App struct {
	svc *services.EntryService
	out io.Writer
	now func() time.Time
}

func NewApp(svc *services.EntryService, out io.Writer) *App {
	return &App{svc: svc, out: out, now: time.Now}
}

// monthOrNow fills zero year or month from the current date.
func (a *App) monthOrNow(year, month int) (int, int, error) {
	now := a.now()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("month must be between 1 and 12, got %d", month)
	}
	return year, month, nil
}

func (a *App) Summary(year, month int) error {
	year, month, err := a.monthOrNow(year, month)
	if err != nil {
		return err
	}
	ms := a.svc.MonthSummary(year, month)
	all := a.svc.AllTimeSummary()
	daysIn := core.DaysIn(year, month)

	fmt.Fprintf(a.out, "%s %d\n", time.Month(month), year)
	printTable(a.out,
		[]string{"", "Total Hours", "Days Logged", "Avg/Day", "Total x 260"},
		[][]string{
			summaryRow("Month", ms),
			summaryRow("All time", all),
		}, nil)
	fmt.Fprintf(a.out, "Remaining: %d of %d days\n", max(daysIn-ms.DayCount, 0), daysIn)
	return nil
}

func summaryRow(label string, s core.Summary) []string {
	return []string{label, core.FormatHours(s.TotalHours), fmt.Sprint(s.DayCount), core.FormatHours(s.AvgHours), core.FormatWhole(s.ScaledTotal)}
}

// Days lists every day of the month with its logged hours.
func (a *App) Days(year, month int) error {
	year, month, err := a.monthOrNow(year, month)
	if err != nil {
		return err
	}

	var rows [][]string
	for _, d := range core.DaysOf(year, month, a.now()) {
		hours, notes := "-", ""
		if e, ok := a.svc.Get(d.Key); ok {
			hours, notes = core.FormatHours(e.Hours), e.Notes
		}
		label := d.DayName
		if d.IsToday {
			label += " (today)"
		}
		rows = append(rows, []string{d.Key, label, hours, notes})
	}
	ms := a.svc.MonthSummary(year, month)
	printTable(a.out, []string{"Date", "Day", "Hours", "Notes"}, rows,
		[]string{"", "Total:", core.FormatHours(ms.TotalHours), ""})
	return nil
}

func (a *App) Put(ctx context.Context, key, hoursText, notes string) error {
	hours, err := core.ParseHours(hoursText)
	if err != nil {
		return err
	}
	if err := a.svc.Save(ctx, key, hours, notes); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved %s hours for %s\n", core.FormatHours(hours), key)
	return nil
}

func (a *App) Delete(ctx context.Context, key string) error {
	if _, err := core.ParseDateKey(key); err != nil {
		return err
	}
	deleted, err := a.svc.Delete(ctx, key)
	if err != nil {
		return err
	}
	if !deleted {
		fmt.Fprintf(a.out, "No entry for %s\n", key)
		return nil
	}
	fmt.Fprintf(a.out, "Deleted %s\n", key)
	return nil
}

// Export writes the backup to path, or to the output when path is "-".
func (a *App) Export(path string) error {
	data, err := a.svc.Export()
	if err != nil {
		return err
	}
	if path == "-" {
		_, err = a.out.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(a.out, "Exported %d entries to %s\n", a.svc.Len(), path)
	return nil
}

func (a *App) Import(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open import: %w", err)
	}
	defer f.Close()

	n, err := a.svc.Import(ctx, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Imported %d entries\n", n)
	return nil
}

func (a *App) Clear(ctx context.Context, confirmed bool) error {
	n, err := a.svc.Clear(ctx, confirmed)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Cleared %d entries\n", n)
	return nil
}

func printTable(w io.Writer, headers []string, rows [][]string, footers []string) {
	colWidths := make([]int, len(headers))
	for i, header := range headers {
		colWidths[i] = len(header)
	}
	for _, row := range append(rows, footers) {
		for i, cell := range row {
			if len(cell) > colWidths[i] {
				colWidths[i] = len(cell)
			}
		}
	}

	printRow := func(cells []string) {
		for i, cell := range cells {
			fmt.Fprintf(w, "%-*s  ", colWidths[i], cell)
		}
		fmt.Fprintln(w)
	}

	printRow(headers)
	for _, row := range rows {
		printRow(row)
	}
	if len(footers) > 0 {
		printRow(footers)
	}
}
