package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/anusha/bdaycal/internal/domain"
	"github.com/anusha/bdaycal/internal/harmonize"
	"github.com/anusha/bdaycal/internal/ical"
	"github.com/anusha/bdaycal/internal/store"
)

// Harmonizer is the pipeline contract required by the API handlers.
type Harmonizer interface {
	Run(records []harmonize.RawRecord) (harmonize.Result, error)
}

// APIHandlers exposes the HTTP handlers of the harmonization API.
type APIHandlers struct {
	logger   *slog.Logger
	pipeline Harmonizer
	traces   store.TraceStore // nil disables trace recording and /runs
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, pipeline Harmonizer, traces store.TraceStore) *APIHandlers {
	return &APIHandlers{
		logger:   logger,
		pipeline: pipeline,
		traces:   traces,
	}
}

// handleHarmonize accepts a legacy VCALENDAR in the request body and responds
// with the harmonized document. A single bad record fails the whole request;
// no partial calendar is ever returned.
func (h *APIHandlers) handleHarmonize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	defer r.Body.Close()

	startedAt := time.Now().UTC()
	records, err := ical.Decode(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid calendar payload")
		return
	}
	if len(records) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "calendar contains no events")
		return
	}

	result, err := h.pipeline.Run(records)
	if err != nil {
		if errors.Is(err, domain.ErrUnresolvableDate) || errors.Is(err, domain.ErrInvalidDate) || errors.Is(err, domain.ErrEmptyName) {
			h.logger.Warn("harmonization rejected", "error", err)
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.Error("harmonization failed", "error", err)
		writeError(w, http.StatusInternalServerError, "harmonization failed")
		return
	}

	h.recordTrace(r, startedAt, result)

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, result.Document)
}

func (h *APIHandlers) recordTrace(r *http.Request, startedAt time.Time, result harmonize.Result) {
	if h.traces == nil {
		return
	}

	run := store.Run{
		Source:      "http",
		StartedAt:   startedAt,
		CompletedAt: time.Now().UTC(),
	}
	for _, rec := range result.Records {
		run.Entries = append(run.Entries, store.RunEntry{
			SourceUID:    rec.Entry.SourceUID,
			GeneratedUID: rec.UID,
			Name:         rec.Entry.Name,
			Month:        int(rec.Entry.Month),
			Day:          rec.Entry.Day,
			Year:         rec.Entry.Year,
			YearKnown:    rec.Entry.YearKnown,
		})
	}

	if _, err := h.traces.RecordRun(r.Context(), run); err != nil {
		h.logger.Warn("failed to record trace run", "error", err)
	}
}

type runSummaryResponse struct {
	ID          int64  `json:"id"`
	Source      string `json:"source"`
	StartedAt   string `json:"startedAt"`
	CompletedAt string `json:"completedAt"`
	EntryCount  int    `json:"entryCount"`
}

type runEntryResponse struct {
	SourceUID    string `json:"sourceUid"`
	GeneratedUID string `json:"generatedUid"`
	Name         string `json:"name"`
	Month        int    `json:"month"`
	Day          int    `json:"day"`
	Year         int    `json:"year"`
	YearKnown    bool   `json:"yearKnown"`
}

func (h *APIHandlers) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	if h.traces == nil {
		writeError(w, http.StatusServiceUnavailable, "trace store is disabled")
		return
	}

	limit := parseInt(r.URL.Query().Get("limit"), 50)
	runs, err := h.traces.ListRuns(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list runs", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	response := make([]runSummaryResponse, 0, len(runs))
	for _, run := range runs {
		response = append(response, runSummaryResponse{
			ID:          run.ID,
			Source:      run.Source,
			StartedAt:   formatTime(run.StartedAt),
			CompletedAt: formatTime(run.CompletedAt),
			EntryCount:  run.EntryCount,
		})
	}
	respondJSON(w, http.StatusOK, response)
}

func (h *APIHandlers) handleRunEntries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	if h.traces == nil {
		writeError(w, http.StatusServiceUnavailable, "trace store is disabled")
		return
	}

	idRaw := strings.TrimPrefix(r.URL.Path, "/runs/")
	idRaw = strings.Trim(idRaw, "/")
	runID, err := strconv.ParseInt(idRaw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "run ID must be an integer")
		return
	}

	entries, err := h.traces.GetRunEntries(r.Context(), runID)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		h.logger.Error("failed to fetch run entries", "error", err, "runId", runID)
		writeError(w, http.StatusInternalServerError, "failed to fetch run entries")
		return
	}

	response := make([]runEntryResponse, 0, len(entries))
	for _, entry := range entries {
		response = append(response, runEntryResponse{
			SourceUID:    entry.SourceUID,
			GeneratedUID: entry.GeneratedUID,
			Name:         entry.Name,
			Month:        entry.Month,
			Day:          entry.Day,
			Year:         entry.Year,
			YearKnown:    entry.YearKnown,
		})
	}
	respondJSON(w, http.StatusOK, response)
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
