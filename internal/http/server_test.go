package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"worktrack/internal/core"
	applog "worktrack/internal/log"
	"worktrack/internal/services"
	"worktrack/internal/storage"
	"worktrack/internal/storage/memory"
	"worktrack/internal/store"
)

func newTestServer(t *testing.T, seed core.Entries) (*Server, *memory.Repository) {
	t.Helper()
	repo := memory.New(seed)
	svc := services.NewEntryService(store.New(nil), repo, nil)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	srv := NewServer(":0", svc, applog.New(applog.Config{Output: io.Discard}))
	srv.now = func() time.Time { return fixedNow }
	t.Cleanup(srv.limiter.Stop)
	return srv, repo
}

func do(srv *Server, method, target, contentType string, body io.Reader, htmx bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func postForm(srv *Server, target, form string, htmx bool) *httptest.ResponseRecorder {
	return do(srv, http.MethodPost, target, "application/x-www-form-urlencoded", strings.NewReader(form), htmx)
}

var seedEntries = core.Entries{
	"2026-02-10": {Date: "2026-02-10", Hours: 8, Notes: "meeting"},
	"2026-01-05": {Date: "2026-01-05", Hours: 4, Notes: ""},
}

func TestIndexRendersMonth(t *testing.T) {
	srv, _ := newTestServer(t, seedEntries)

	rr := do(srv, http.MethodGet, "/?year=2026&month=2", "", nil, false)
	if rr.Code != http.StatusOK {
		t.Fatalf("index status=%d body=%s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()

	if n := strings.Count(body, `<details id="day-`); n != 28 {
		t.Errorf("rendered %d day rows, want 28", n)
	}
	for _, want := range []string{
		"February 2026",
		"Feb 14 - Saturday",
		`<details id="day-2026-02-14" class="day today weekend" open>`,
		"logged (8.0 hrs)",
		"not logged",
		`<span id="days-remaining">27</span>`,
		`<dd id="month-scaled">2,080</dd>`,
		`<dd id="all-total">12.0</dd>`,
		`href="/export"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("index body missing %q", want)
		}
	}
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Errorf("security headers not applied")
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Errorf("request id not assigned")
	}
}

func TestIndexEmptyStoreHidesExport(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	body := do(srv, http.MethodGet, "/", "", nil, false).Body.String()
	if strings.Contains(body, `href="/export"`) {
		t.Error("export link shown for an empty store")
	}
}

func TestIndexFallsBackOnInvalidMonth(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	body := do(srv, http.MethodGet, "/?year=2026&month=13", "", nil, false).Body.String()
	if !strings.Contains(body, "February 2026") {
		t.Error("invalid month should fall back to the current month")
	}
}

func TestIndexShowsFlash(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	body := do(srv, http.MethodGet, "/?flash=persist-failed", "", nil, false).Body.String()
	if !strings.Contains(body, `class="flash flash-error"`) {
		t.Error("persist failure flash not rendered as error")
	}
	body = do(srv, http.MethodGet, "/?flash=<script>", "", nil, false).Body.String()
	if strings.Contains(body, "<script>") {
		t.Error("unknown flash code must not be echoed")
	}
}

func TestUnknownPathAndMethods(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	if rr := do(srv, http.MethodGet, "/nope", "", nil, false); rr.Code != http.StatusNotFound {
		t.Errorf("unknown path status=%d", rr.Code)
	}
	rr := do(srv, http.MethodGet, "/entries", "", nil, false)
	if rr.Code != http.StatusMethodNotAllowed || rr.Header().Get("Allow") != "POST" {
		t.Errorf("GET /entries status=%d allow=%q", rr.Code, rr.Header().Get("Allow"))
	}
	if rr := do(srv, http.MethodPost, "/export", "", nil, false); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /export status=%d", rr.Code)
	}
}

func TestSaveEntryPlainFormRedirects(t *testing.T) {
	srv, repo := newTestServer(t, nil)

	rr := postForm(srv, "/entries", "date=2026-02-14&hours=7%2C5&notes=deploy", false)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status=%d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/?month=2&year=2026&flash=saved" {
		t.Errorf("Location = %q", loc)
	}

	persisted, _ := repo.Load(context.Background())
	want := core.Entries{"2026-02-14": {Date: "2026-02-14", Hours: 7.5, Notes: "deploy"}}
	if diff := cmp.Diff(want, persisted); diff != "" {
		t.Errorf("persisted mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveEntryHTMX(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rr := postForm(srv, "/entries", "date=2026-03-02&hours=8", true)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	trigger := rr.Header().Get("HX-Trigger")
	for _, part := range []string{`"entry:saved"`, `"page:refresh":{"month":3,"year":2026}`, `"type":"success"`, "Saved 8.0 hours!"} {
		if !strings.Contains(trigger, part) {
			t.Errorf("HX-Trigger missing %q: %s", part, trigger)
		}
	}
}

func TestSaveEntryJSONBody(t *testing.T) {
	srv, repo := newTestServer(t, nil)
	rr := do(srv, http.MethodPost, "/entries", "application/json",
		strings.NewReader(`{"date":"2026-02-14","hours":6,"notes":"api"}`), true)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if repo.Saves() != 1 {
		t.Fatalf("expected a save")
	}
}

func TestSaveEntryValidation(t *testing.T) {
	tests := []struct {
		name     string
		form     string
		htmx     bool
		wantCode int
		wantText string
	}{
		{"zero hours", "date=2026-02-14&hours=0", true, http.StatusUnprocessableEntity, "greater than 0"},
		{"too many hours", "date=2026-02-14&hours=25", true, http.StatusUnprocessableEntity, "between 0 and 24"},
		{"not a number", "date=2026-02-14&hours=abc", true, http.StatusUnprocessableEntity, "between 0 and 24"},
		{"bad date", "date=2026-02-30&hours=8", true, http.StatusUnprocessableEntity, "date is not valid"},
		{"plain form redirects with flash", "date=2026-02-14&hours=0&year=2026&month=2", false, http.StatusSeeOther, "flash=hours-not-positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, repo := newTestServer(t, nil)
			rr := postForm(srv, "/entries", tt.form, tt.htmx)
			if rr.Code != tt.wantCode {
				t.Fatalf("status=%d, want %d", rr.Code, tt.wantCode)
			}
			got := rr.Body.String() + rr.Header().Get("Location")
			if !strings.Contains(got, tt.wantText) {
				t.Errorf("response %q missing %q", got, tt.wantText)
			}
			if tt.htmx && !strings.Contains(rr.Header().Get("HX-Trigger"), `"type":"warning"`) {
				t.Errorf("validation should raise a warning notification: %s", rr.Header().Get("HX-Trigger"))
			}
			if repo.Saves() != 0 || srv.svc.Len() != 0 {
				t.Errorf("validation error mutated state")
			}
		})
	}
}

func TestSaveEntryRejectsOversizeBody(t *testing.T) {
	srv, repo := newTestServer(t, nil)

	form := "date=2026-02-14&hours=8&notes=" + strings.Repeat("a", 70000)
	rr := postForm(srv, "/entries", form, true)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status=%d, want 413", rr.Code)
	}
	if repo.Saves() != 0 || srv.svc.Len() != 0 {
		t.Error("oversize body was stored")
	}

	rr = do(srv, http.MethodPost, "/entries", "application/json",
		strings.NewReader(`{"date":"2026-02-14","hours":8,"notes":"`+strings.Repeat("b", 70000)+`"}`), false)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("json status=%d, want 413", rr.Code)
	}
}

func TestSaveEntryPersistFailure(t *testing.T) {
	srv, repo := newTestServer(t, nil)
	repo.FailSaves(errors.New("disk full"))

	rr := postForm(srv, "/entries", "date=2026-02-14&hours=8", true)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), `"type":"error"`) {
		t.Errorf("persist failure should raise an error notification")
	}
	if _, ok := srv.svc.Get("2026-02-14"); ok {
		t.Errorf("failed save left the entry in memory")
	}

	rr = postForm(srv, "/entries", "date=2026-02-14&hours=8", false)
	if loc := rr.Header().Get("Location"); !strings.Contains(loc, "flash=persist-failed") {
		t.Errorf("Location = %q", loc)
	}
}

func TestDeleteEntry(t *testing.T) {
	srv, repo := newTestServer(t, seedEntries)

	rr := postForm(srv, "/entries/delete", "date=2026-02-10", true)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Header().Get("HX-Trigger"), `"entry:deleted"`) {
		t.Fatalf("delete status=%d trigger=%s", rr.Code, rr.Header().Get("HX-Trigger"))
	}
	if _, ok := srv.svc.Get("2026-02-10"); ok {
		t.Fatal("entry still present")
	}
	saves := repo.Saves()

	rr = postForm(srv, "/entries/delete", "date=2026-02-11", true)
	if rr.Code != http.StatusOK || strings.Contains(rr.Header().Get("HX-Trigger"), `"entry:deleted"`) {
		t.Fatalf("absent delete status=%d trigger=%s", rr.Code, rr.Header().Get("HX-Trigger"))
	}
	if repo.Saves() != saves {
		t.Error("absent delete wrote the backing store")
	}

	rr = postForm(srv, "/entries/delete", "date=2026-02-10", false)
	if loc := rr.Header().Get("Location"); loc != "/?month=2&year=2026&flash=deleted" {
		t.Errorf("Location = %q", loc)
	}
}

func TestClearEntries(t *testing.T) {
	srv, repo := newTestServer(t, seedEntries)

	rr := postForm(srv, "/entries/clear", "year=2026&month=2", true)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unconfirmed clear status=%d", rr.Code)
	}
	if srv.svc.Len() != 2 {
		t.Fatal("unconfirmed clear mutated the store")
	}

	rr = postForm(srv, "/entries/clear", "year=2026&month=2&confirm=yes", false)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/?month=2&year=2026&flash=cleared" {
		t.Fatalf("clear status=%d location=%q", rr.Code, rr.Header().Get("Location"))
	}
	persisted, _ := repo.Load(context.Background())
	if srv.svc.Len() != 0 || len(persisted) != 0 {
		t.Fatal("clear did not empty memory and backing store")
	}
}

func TestExport(t *testing.T) {
	srv, repo := newTestServer(t, seedEntries)
	saves := repo.Saves()

	rr := do(srv, http.MethodGet, "/export", "", nil, false)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "work_hours_backup.json") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if rr.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("export should not be cached")
	}
	got, err := storage.DecodeBytes(rr.Body.Bytes())
	if err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if diff := cmp.Diff(seedEntries, got); diff != "" {
		t.Errorf("export mismatch (-want +got):\n%s", diff)
	}
	if repo.Saves() != saves {
		t.Error("export wrote the backing store")
	}
}

func multipartBody(t *testing.T, field, content string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("year", "2026")
	_ = mw.WriteField("month", "2")
	if field != "" {
		fw, err := mw.CreateFormFile(field, "backup.json")
		if err != nil {
			t.Fatal(err)
		}
		_, _ = fw.Write([]byte(content))
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestImport(t *testing.T) {
	srv, repo := newTestServer(t, seedEntries)

	body, ct := multipartBody(t, "file", `{"2026-02-20": {"hours": 6.5, "notes": "imported", "date": "2026-02-20"}}`)
	rr := do(srv, http.MethodPost, "/import", ct, body, false)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/?month=2&year=2026&flash=imported" {
		t.Fatalf("import status=%d location=%q", rr.Code, rr.Header().Get("Location"))
	}

	want := core.Entries{"2026-02-20": {Date: "2026-02-20", Hours: 6.5, Notes: "imported"}}
	if diff := cmp.Diff(want, srv.svc.Entries()); diff != "" {
		t.Errorf("store mismatch (-want +got):\n%s", diff)
	}
	persisted, _ := repo.Load(context.Background())
	if diff := cmp.Diff(want, persisted); diff != "" {
		t.Errorf("persisted mismatch (-want +got):\n%s", diff)
	}
}

func TestImportRejectsBadUploads(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		content string
	}{
		{"malformed json", "file", `{"2026-02-20": `},
		{"not an object", "file", `[1,2,3]`},
		{"missing file", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, repo := newTestServer(t, seedEntries)
			body, ct := multipartBody(t, tt.field, tt.content)
			rr := do(srv, http.MethodPost, "/import", ct, body, true)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status=%d", rr.Code)
			}
			if srv.svc.Len() != 2 || repo.Saves() != 0 {
				t.Error("rejected import changed state")
			}
		})
	}

	srv, _ := newTestServer(t, nil)
	rr := postForm(srv, "/import", "file=nope", true)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("non-multipart import status=%d", rr.Code)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantFlash  string
	}{
		{"hours not positive", core.ErrHoursNotPositive, http.StatusUnprocessableEntity, flashHoursNotPositive},
		{"bad date", fmt.Errorf("%w: %q", core.ErrInvalidDateKey, "x"), http.StatusUnprocessableEntity, flashInvalidDate},
		{"unconfirmed clear", services.ErrClearNotConfirmed, http.StatusUnprocessableEntity, flashClearUnconfirmed},
		{"upload read failure", fmt.Errorf("%w: read entries: %w", core.ErrDecode, io.ErrUnexpectedEOF), http.StatusBadRequest, flashImportInvalid},
		{"write failure", fmt.Errorf("%w: %w", services.ErrPersist, errors.New("disk full")), http.StatusInternalServerError, flashPersistFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := classify(tt.err)
			if status != tt.wantStatus || code != tt.wantFlash {
				t.Errorf("classify(%v) = %d %q, want %d %q", tt.err, status, code, tt.wantStatus, tt.wantFlash)
			}
		})
	}
}

func TestSummaryAPI(t *testing.T) {
	srv, _ := newTestServer(t, seedEntries)

	rr := do(srv, http.MethodGet, "/api/summary?year=2026&month=2", "", nil, false)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	var got summaryResponse
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := summaryResponse{
		Year:           2026,
		Month:          2,
		DaysInMonth:    28,
		DaysLogged:     1,
		DaysRemaining:  27,
		MonthSummary:   core.Summary{TotalHours: 8, DayCount: 1, AvgHours: 8, ScaledTotal: 2080},
		AllTimeSummary: core.Summary{TotalHours: 12, DayCount: 2, AvgHours: 6, ScaledTotal: 3120},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestHealthAndReady(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(srv, http.MethodGet, path, "", nil, false)
		if rr.Code != http.StatusOK {
			t.Errorf("%s status=%d", path, rr.Code)
		}
	}

	srv.templates = nil
	if rr := do(srv, http.MethodGet, "/readyz", "", nil, false); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz without templates status=%d", rr.Code)
	}
	if rr := do(srv, http.MethodGet, "/", "", nil, false); rr.Code != http.StatusInternalServerError {
		t.Errorf("index without templates status=%d", rr.Code)
	}
}

func TestStaticAssets(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rr := do(srv, http.MethodGet, "/static/app.js", "", nil, false)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("Cache-Control"), "max-age=3600") {
		t.Errorf("Cache-Control = %q", rr.Header().Get("Cache-Control"))
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("second shutdown: %v", err)
	}
}
