package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"worktrack/internal/core"
	applog "worktrack/internal/log"
	"worktrack/internal/storage"
)

const (
	maxImportBytes    = 5 << 20
	maxImportMemBytes = 1 << 20
)

type statsView struct {
	Total  string
	Days   int
	Avg    string
	Scaled string
}

func newStatsView(sum core.Summary) statsView {
	return statsView{
		Total:  core.FormatHours(sum.TotalHours),
		Days:   sum.DayCount,
		Avg:    core.FormatHours(sum.AvgHours),
		Scaled: core.FormatWhole(sum.ScaledTotal),
	}
}

type dayRow struct {
	Key        string
	Label      string
	IsWeekend  bool
	IsToday    bool
	Logged     bool
	Hours      string
	HoursValue string
	Notes      string
	Open       bool
}

type monthOption struct {
	Value    int
	Name     string
	Selected bool
}

type indexView struct {
	Title         string
	Year          int
	Month         int
	PrevURL       string
	NextURL       string
	Months        []monthOption
	MonthStats    statsView
	AllStats      statsView
	Days          []dayRow
	DaysTotal     int
	DaysLogged    int
	DaysRemaining int
	HasEntries    bool
	MaxHours      float64
	Flash         *flash
}

func (s *Server) buildIndexView(p MonthParams, flashCode string) indexView {
	now := s.now()
	monthSum := s.svc.MonthSummary(p.Year, p.Month)
	days := core.DaysOf(p.Year, p.Month, now)

	view := indexView{
		Title:      fmt.Sprintf("%s %d", time.Month(p.Month), p.Year),
		Year:       p.Year,
		Month:      p.Month,
		PrevURL:    monthURL(p.Prev(), ""),
		NextURL:    monthURL(p.Next(), ""),
		MonthStats: newStatsView(monthSum),
		AllStats:   newStatsView(s.svc.AllTimeSummary()),
		Days:       make([]dayRow, 0, len(days)),
		DaysTotal:  len(days),
		DaysLogged: monthSum.DayCount,
		HasEntries: s.svc.Len() > 0,
		MaxHours:   core.MaxHours,
	}
	view.DaysRemaining = max(view.DaysTotal-view.DaysLogged, 0)

	for m := time.January; m <= time.December; m++ {
		view.Months = append(view.Months, monthOption{Value: int(m), Name: m.String(), Selected: int(m) == p.Month})
	}

	for _, d := range days {
		row := dayRow{
			Key:        d.Key,
			Label:      fmt.Sprintf("%s %d - %s", d.Date.Format("Jan"), d.DayOfMonth, d.DayName),
			IsWeekend:  d.IsWeekend,
			IsToday:    d.IsToday,
			HoursValue: "0",
		}
		if e, ok := s.svc.Get(d.Key); ok {
			row.Logged = true
			row.Hours = core.FormatHours(e.Hours)
			row.HoursValue = strconv.FormatFloat(e.Hours, 'f', -1, 64)
			row.Notes = e.Notes
		}
		row.Open = row.IsToday && !row.Logged
		view.Days = append(view.Days, row)
	}

	if f, ok := lookupFlash(flashCode); ok {
		view.Flash = &f
	}
	return view
}

// handleIndex renders the month view.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError("Page not found").Write(w)
		return
	}
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	log := applog.FromContext(r.Context())
	if s.templates == nil {
		log.ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		InternalServerError("templates not loaded").Write(w)
		return
	}

	p := ParseMonthParams(r.URL.Query(), s.now())
	view := s.buildIndexView(p, r.URL.Query().Get("flash"))

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", view); err != nil {
		log.ErrorContext(r.Context(), "Index template execution failed",
			applog.NewFields().WithError(err).WithOperation(applog.OpRender).WithMonth(p.Year, p.Month).ToSlice()...)
		InternalServerError("Could not render the page").Write(w)
		return
	}
	NewHTMXResponse().BodyHTML(buf.String()).Write(w)
}

// handleSaveEntry stores hours and notes for one day.
func (s *Server) handleSaveEntry(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		rejectBody(w, err)
		return
	}

	target := ParseMonthParams(parser.Values(), s.now())
	form, err := ParseEntryForm(parser)
	if err != nil {
		s.fail(w, r, target, applog.OpSave, err)
		return
	}
	target = MonthParams{Year: form.Date.Year(), Month: int(form.Date.Month())}

	if err := s.svc.Save(r.Context(), form.Key, form.Hours, form.Notes); err != nil {
		s.fail(w, r, target, applog.OpSave, err)
		return
	}
	s.events.LogEntryChange(r.Context(), applog.OpSave, form.Key, form.Hours, s.svc.Len())

	s.succeed(w, r, target, flashSaved,
		NewHTMXResponse().
			TriggerEntrySaved(form.Key, form.Hours).
			TriggerSuccessNotification(fmt.Sprintf("Saved %s hours!", core.FormatHours(form.Hours))))
}

// handleDeleteEntry removes one day. Deleting a day without an entry succeeds.
func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodPost, http.MethodDelete); resp != nil {
		resp.Write(w)
		return
	}
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		rejectBody(w, err)
		return
	}

	target := ParseMonthParams(parser.Values(), s.now())
	key := parser.Get("date")
	date, err := core.ParseDateKey(key)
	if err != nil {
		s.fail(w, r, target, applog.OpDelete, err)
		return
	}
	target = MonthParams{Year: date.Year(), Month: int(date.Month())}

	deleted, err := s.svc.Delete(r.Context(), key)
	if err != nil {
		s.fail(w, r, target, applog.OpDelete, err)
		return
	}

	resp := NewHTMXResponse()
	if deleted {
		s.events.LogEntryChange(r.Context(), applog.OpDelete, key, 0, s.svc.Len())
		resp.TriggerEntryDeleted(key).TriggerSuccessNotification("Entry deleted!")
	} else {
		resp.TriggerNotification(NotificationInfo, "No entry for that day.", 3000)
	}
	s.succeed(w, r, target, flashDeleted, resp)
}

// handleClearEntries removes every entry once confirm=yes is posted.
func (s *Server) handleClearEntries(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		rejectBody(w, err)
		return
	}
	target := ParseMonthParams(parser.Values(), s.now())

	n, err := s.svc.Clear(r.Context(), parser.Get("confirm") == "yes")
	if err != nil {
		s.fail(w, r, target, applog.OpClear, err)
		return
	}
	s.events.LogEntryChange(r.Context(), applog.OpClear, "", 0, 0)

	s.succeed(w, r, target, flashCleared,
		NewHTMXResponse().
			TriggerEntriesCleared(n).
			TriggerSuccessNotification("All data cleared!"))
}

// handleExport downloads the whole store as pretty-printed JSON.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	data, err := s.svc.Export()
	if err != nil {
		s.events.LogError(r.Context(), "Export failed", err, applog.ErrorTypeInternal, applog.OpExport, nil)
		InternalServerError("Could not export data").Write(w)
		return
	}

	NewHTMXResponse().
		Header("Content-Type", "application/json").
		Header("Content-Disposition", `attachment; filename="`+storage.ExportFilename+`"`).
		Body(data).
		Write(w)
}

// handleImport replaces the whole store with an uploaded backup.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	if err := r.ParseMultipartForm(maxImportMemBytes); err != nil {
		s.fail(w, r, ParseMonthParams(r.URL.Query(), s.now()), applog.OpImport, fmt.Errorf("%w: %w", core.ErrDecode, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	target := ParseMonthParams(r.Form, s.now())
	file, _, err := r.FormFile("file")
	if err != nil {
		s.fail(w, r, target, applog.OpImport, fmt.Errorf("%w: missing file: %w", core.ErrDecode, err))
		return
	}
	defer file.Close()

	n, err := s.svc.Import(r.Context(), file)
	if err != nil {
		s.fail(w, r, target, applog.OpImport, err)
		return
	}
	s.events.LogEntryChange(r.Context(), applog.OpImport, "", 0, n)

	s.succeed(w, r, target, flashImported,
		NewHTMXResponse().
			TriggerEntriesImported(n).
			TriggerSuccessNotification(fmt.Sprintf("Data imported! %d entries loaded.", n)))
}

type summaryResponse struct {
	Year           int          `json:"year"`
	Month          int          `json:"month"`
	DaysInMonth    int          `json:"days_in_month"`
	DaysLogged     int          `json:"days_logged"`
	DaysRemaining  int          `json:"days_remaining"`
	MonthSummary   core.Summary `json:"month_summary"`
	AllTimeSummary core.Summary `json:"all_time_summary"`
}

// handleSummaryAPI returns the month and all-time aggregates as JSON.
func (s *Server) handleSummaryAPI(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	p := ParseMonthParams(r.URL.Query(), s.now())
	month := s.svc.MonthSummary(p.Year, p.Month)
	daysIn := core.DaysIn(p.Year, p.Month)

	writeJSON(w, http.StatusOK, summaryResponse{
		Year:           p.Year,
		Month:          p.Month,
		DaysInMonth:    daysIn,
		DaysLogged:     month.DayCount,
		DaysRemaining:  max(daysIn-month.DayCount, 0),
		MonthSummary:   month,
		AllTimeSummary: s.svc.AllTimeSummary(),
	})
}

// rejectBody answers a body that could not be parsed; oversize bodies get 413.
func rejectBody(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrBodyTooLarge) {
		ErrorResponse(http.StatusRequestEntityTooLarge, "Request is too large.").Write(w)
		return
	}
	BadRequestError("Invalid request format").Write(w)
}

// succeed answers HTMX requests with triggers and plain posts with a
// redirect carrying flashCode.
func (s *Server) succeed(w http.ResponseWriter, r *http.Request, target MonthParams, flashCode string, resp *HTMXResponseBuilder) {
	if !isHTMX(r) {
		http.Redirect(w, r, monthURL(target, flashCode), http.StatusSeeOther)
		return
	}
	resp.TriggerPageRefresh(target.Year, target.Month).Write(w)
}

// fail classifies err, logs it and answers like succeed. Validation problems
// are warnings; anything else is an error.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, target MonthParams, op string, err error) {
	status, code := classify(err)
	f := flashes[code]
	ctx := r.Context()

	fields := applog.NewFields().WithMonth(target.Year, target.Month)
	if status >= http.StatusInternalServerError {
		s.events.LogError(ctx, "Entry mutation failed", err, applog.ErrorTypePersist, op, fields)
	} else {
		kind := applog.ErrorTypeValidation
		if status == http.StatusBadRequest {
			kind = applog.ErrorTypeDecode
		}
		applog.FromContext(ctx).WarnContext(ctx, "Entry request rejected",
			fields.WithError(err).WithErrorType(kind).WithOperation(op).ToSlice()...)
	}

	if !isHTMX(r) {
		http.Redirect(w, r, monthURL(target, code), http.StatusSeeOther)
		return
	}
	ErrorResponse(status, f.Message).
		TriggerNotification(f.Kind, f.Message, 5000).
		Write(w)
}
