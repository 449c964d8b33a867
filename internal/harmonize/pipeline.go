// Package harmonize implements the core transformation pipeline: extraction
// of birth years from messy legacy records and generation of
// standards-conformant calendar events.
package harmonize

import (
	"fmt"
	"io"
	"log/slog"

	ics "github.com/arran4/golang-ical"

	"github.com/anusha/bdaycal/internal/domain"
)

const (
	productID           = "-//Birthday Harmonizer//EN"
	defaultCalendarName = "Harmonized Birthdays"
)

// ProcessedRecord pairs an extracted entry with the UID generated for it.
type ProcessedRecord struct {
	Entry domain.Entry
	UID   string
}

// Result is the outcome of one pipeline run.
type Result struct {
	// Document is the serialized VCALENDAR containing every output event.
	Document string
	// Records lists the processed entries in input order.
	Records []ProcessedRecord
}

// Pipeline sequences the Extractor over all input records and the Generator
// over all resulting entries, preserving input order throughout.
type Pipeline struct {
	extractor    *Extractor
	generator    *Generator
	calendarName string
	logger       *slog.Logger
}

// NewPipeline wires an Extractor and Generator sharing the same rules.
func NewPipeline(rules Rules, randomness io.Reader, calendarName string, logger *slog.Logger) *Pipeline {
	if calendarName == "" {
		calendarName = defaultCalendarName
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{
		extractor:    NewExtractor(rules, logger),
		generator:    NewGenerator(rules, randomness),
		calendarName: calendarName,
		logger:       logger,
	}
}

// Run processes the batch. Any record failure aborts the whole run without
// producing a document: emitting a calendar with silently dropped entries
// would corrupt the user's import.
func (p *Pipeline) Run(records []RawRecord) (Result, error) {
	entries := make([]domain.Entry, 0, len(records))
	for _, raw := range records {
		entry, err := p.extractor.Extract(raw)
		if err != nil {
			return Result{}, fmt.Errorf("extract: %w", err)
		}
		entries = append(entries, entry)
	}

	cal := ics.NewCalendar()
	cal.SetProductId(productID)
	cal.SetVersion("2.0")
	cal.SetXWRCalName(p.calendarName)

	processed := make([]ProcessedRecord, 0, len(entries))
	for _, entry := range entries {
		event, uid, err := p.generator.Event(entry)
		if err != nil {
			return Result{}, fmt.Errorf("generate event for %q: %w", entry.Name, err)
		}
		cal.AddVEvent(event)
		processed = append(processed, ProcessedRecord{Entry: entry, UID: uid})
	}

	p.logger.Debug("pipeline run complete", "records", len(processed))
	return Result{Document: cal.Serialize(), Records: processed}, nil
}
