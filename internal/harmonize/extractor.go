package harmonize

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/anusha/bdaycal/internal/domain"
)

var (
	yearRegex    = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	isoDateRegex = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
)

// dateToken is a month/day pair resolved from a raw record, with the year it
// was written with when one was present.
type dateToken struct {
	month   time.Month
	day     int
	year    int
	hasYear bool
}

// yearStrategy is one step of the ordered birth-year waterfall. It returns
// false when the strategy finds nothing plausible, handing over to the next.
type yearStrategy struct {
	name string
	fn   func(raw RawRecord, date dateToken) (int, bool)
}

// Extractor converts raw legacy records into validated entries.
type Extractor struct {
	rules      Rules
	logger     *slog.Logger
	strategies []yearStrategy
}

// NewExtractor builds an Extractor with the provided rules. A nil logger
// discards extraction diagnostics.
func NewExtractor(rules Rules, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	e := &Extractor{
		rules:  rules.withDefaults(),
		logger: logger,
	}
	e.strategies = []yearStrategy{
		{name: "metadata", fn: e.metadataYear},
		{name: "start-date", fn: e.startDateYear},
	}
	return e
}

// Extract is total over records that carry a resolvable month/day: every
// such record yields exactly one entry, falling back to the sentinel year
// when no plausible birth year is found anywhere.
func (e *Extractor) Extract(raw RawRecord) (domain.Entry, error) {
	date, ok := resolveDate(raw)
	if !ok {
		return domain.Entry{}, fmt.Errorf("record %q: %w", raw.UID, domain.ErrUnresolvableDate)
	}

	year := e.rules.SentinelYear
	known := false
	for _, strategy := range e.strategies {
		if y, hit := strategy.fn(raw, date); hit {
			year = y
			known = true
			e.logger.Debug("birth year resolved", "strategy", strategy.name, "year", y, "sourceUid", raw.UID)
			break
		}
	}
	if !known {
		e.logger.Debug("no plausible birth year found, using sentinel", "sourceUid", raw.UID)
	}

	entry, err := domain.NewEntry(cleanName(raw.Summary, raw.UID), date.month, date.day, year, known, raw.UID)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("record %q: %w", raw.UID, err)
	}
	return entry, nil
}

// metadataYear scans the description, then the summary, for a four-digit
// year token inside the plausibility window.
func (e *Extractor) metadataYear(raw RawRecord, _ dateToken) (int, bool) {
	for _, text := range []string{raw.Description, raw.Summary} {
		year, found := findYear(text)
		if found && e.rules.plausible(year) {
			return year, true
		}
	}
	return 0, false
}

// startDateYear accepts the DTSTART year as the birth year when it is
// plausible and far enough in the past not to be an authoring-time
// placeholder.
func (e *Extractor) startDateYear(_ RawRecord, date dateToken) (int, bool) {
	if !date.hasYear {
		return 0, false
	}
	if !e.rules.plausible(date.year) || date.year >= e.rules.Now().Year()-1 {
		return 0, false
	}
	return date.year, true
}

// resolveDate determines month/day from the DTSTART token, falling back to
// an ISO date embedded in the description.
func resolveDate(raw RawRecord) (dateToken, bool) {
	if date, ok := parseDateToken(raw.DTStart); ok {
		return date, true
	}
	if m := isoDateRegex.FindStringSubmatch(raw.Description); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if date, ok := newDateToken(month, day, year, true); ok {
			return date, true
		}
	}
	return dateToken{}, false
}

// parseDateToken handles the date shapes seen in legacy files: YYYYMMDD,
// YYYY-MM-DD (each with an optional time suffix), and the yearless
// --MMDD / --MM-DD forms.
func parseDateToken(value string) (dateToken, bool) {
	v := strings.TrimSpace(value)
	if i := strings.IndexByte(v, 'T'); i >= 0 {
		v = v[:i]
	}
	yearless := strings.HasPrefix(v, "--")
	v = strings.ReplaceAll(v, "-", "")
	if v == "" || !isDigits(v) {
		return dateToken{}, false
	}

	switch {
	case yearless && len(v) == 4:
		month, _ := strconv.Atoi(v[0:2])
		day, _ := strconv.Atoi(v[2:4])
		return newDateToken(month, day, 0, false)
	case !yearless && len(v) == 8:
		year, _ := strconv.Atoi(v[0:4])
		month, _ := strconv.Atoi(v[4:6])
		day, _ := strconv.Atoi(v[6:8])
		return newDateToken(month, day, year, true)
	default:
		return dateToken{}, false
	}
}

func newDateToken(month, day, year int, hasYear bool) (dateToken, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return dateToken{}, false
	}
	return dateToken{month: time.Month(month), day: day, year: year, hasYear: hasYear}, true
}

// findYear extracts the first four-digit year token from the text.
func findYear(text string) (int, bool) {
	match := yearRegex.FindString(text)
	if match == "" {
		return 0, false
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return year, true
}

// cleanName guarantees a non-empty display name, substituting a placeholder
// derived from the source UID so the entry stays identifiable.
func cleanName(summary, uid string) string {
	name := strings.TrimSpace(summary)
	if name != "" {
		return name
	}
	short := uid
	if len(short) > 8 {
		short = short[:8]
	}
	if short == "" {
		return "Unknown Birthday"
	}
	return fmt.Sprintf("Unknown Birthday (%s)", short)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
