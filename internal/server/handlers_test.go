package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anusha/bdaycal/internal/harmonize"
	"github.com/anusha/bdaycal/internal/store"
)

type stubTraceStore struct {
	runs      []store.Run
	summaries []store.RunSummary
	entries   map[int64][]store.RunEntry
}

func (s *stubTraceStore) RecordRun(ctx context.Context, run store.Run) (int64, error) {
	s.runs = append(s.runs, run)
	return int64(len(s.runs)), nil
}

func (s *stubTraceStore) ListRuns(ctx context.Context, limit int) ([]store.RunSummary, error) {
	if limit > 0 && limit < len(s.summaries) {
		return s.summaries[:limit], nil
	}
	return s.summaries, nil
}

func (s *stubTraceStore) GetRunEntries(ctx context.Context, runID int64) ([]store.RunEntry, error) {
	entries, ok := s.entries[runID]
	if !ok {
		return nil, store.ErrRunNotFound
	}
	return entries, nil
}

func (s *stubTraceStore) Ping(ctx context.Context) error { return nil }
func (s *stubTraceStore) Close() error                   { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPipeline() *harmonize.Pipeline {
	rules := harmonize.Rules{
		Now: func() time.Time {
			return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
		},
	}
	return harmonize.NewPipeline(rules, rand.New(rand.NewSource(7)), "", nil)
}

func testRouter(traces store.TraceStore) http.Handler {
	api := NewAPIHandlers(testLogger(), testPipeline(), traces)
	return NewRouter(testLogger(), RouterDependencies{API: api})
}

const legacyPayload = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//Legacy Export//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:legacy-0001@example.net\r\n" +
	"SUMMARY:Jane Doe\r\n" +
	"DESCRIPTION:Jane was born in 1985.\r\n" +
	"DTSTART:--0303\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestHandleHarmonize(t *testing.T) {
	traces := &stubTraceStore{}
	router := testRouter(traces)

	req := httptest.NewRequest(http.MethodPost, "/harmonize", strings.NewReader(legacyPayload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/calendar; charset=utf-8" {
		t.Fatalf("unexpected content type %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{"BEGIN:VCALENDAR", "SUMMARY:Jane Doe", "RRULE:FREQ=YEARLY", "TRANSP:TRANSPARENT"} {
		if !strings.Contains(body, want) {
			t.Errorf("response missing %q", want)
		}
	}
	if strings.Contains(body, "legacy-0001@example.net") {
		t.Error("response leaked the legacy UID")
	}

	if len(traces.runs) != 1 {
		t.Fatalf("expected 1 recorded run, got %d", len(traces.runs))
	}
	run := traces.runs[0]
	if run.Source != "http" || len(run.Entries) != 1 {
		t.Fatalf("unexpected run %+v", run)
	}
	if run.Entries[0].Year != 1985 || !run.Entries[0].YearKnown {
		t.Fatalf("unexpected traced entry %+v", run.Entries[0])
	}
}

func TestHandleHarmonizeBadPayload(t *testing.T) {
	router := testRouter(nil)

	req := httptest.NewRequest(http.MethodPost, "/harmonize", strings.NewReader("not a calendar"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleHarmonizeEmptyCalendar(t *testing.T) {
	router := testRouter(nil)

	empty := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//x//EN\r\nEND:VCALENDAR\r\n"
	req := httptest.NewRequest(http.MethodPost, "/harmonize", strings.NewReader(empty))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestHandleHarmonizeUnresolvableRecord(t *testing.T) {
	router := testRouter(nil)

	payload := "BEGIN:VCALENDAR\r\n" +
		"VERSION:2.0\r\n" +
		"PRODID:-//x//EN\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:legacy-0002@example.net\r\n" +
		"SUMMARY:No Date\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"
	req := httptest.NewRequest(http.MethodPost, "/harmonize", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleHarmonizeMethodNotAllowed(t *testing.T) {
	router := testRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/harmonize", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != http.MethodPost {
		t.Fatalf("unexpected Allow header %q", allow)
	}
}

func TestHandleRuns(t *testing.T) {
	traces := &stubTraceStore{
		summaries: []store.RunSummary{
			{ID: 2, Source: "http", EntryCount: 3, StartedAt: time.Now(), CompletedAt: time.Now()},
			{ID: 1, Source: "cli", EntryCount: 1, StartedAt: time.Now(), CompletedAt: time.Now()},
		},
	}
	router := testRouter(traces)

	req := httptest.NewRequest(http.MethodGet, "/runs", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var summaries []runSummaryResponse
	if err := json.NewDecoder(rec.Body).Decode(&summaries); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(summaries) != 2 || summaries[0].ID != 2 {
		t.Fatalf("unexpected summaries %+v", summaries)
	}

	req = httptest.NewRequest(http.MethodGet, "/runs?limit=1", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	summaries = nil
	if err := json.NewDecoder(rec.Body).Decode(&summaries); err != nil {
		t.Fatalf("decode limited response: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary with limit, got %d", len(summaries))
	}
}

func TestHandleRunsDisabled(t *testing.T) {
	router := testRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/runs", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without a trace store, got %d", rec.Code)
	}
}

func TestHandleRunEntries(t *testing.T) {
	traces := &stubTraceStore{
		entries: map[int64][]store.RunEntry{
			5: {{SourceUID: "legacy-0001@example.net", GeneratedUID: "uid-1", Name: "Jane Doe", Month: 3, Day: 3, Year: 1985, YearKnown: true}},
		},
	}
	router := testRouter(traces)

	req := httptest.NewRequest(http.MethodGet, "/runs/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var entries []runEntryResponse
	if err := json.NewDecoder(rec.Body).Decode(&entries); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "Jane Doe" {
		t.Fatalf("unexpected entries %+v", entries)
	}

	req = httptest.NewRequest(http.MethodGet, "/runs/not-a-number", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bad run id, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/runs/99", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for an unknown run, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	router := NewRouter(testLogger(), RouterDependencies{
		Health: &TraceHealthService{Store: &stubTraceStore{}},
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
