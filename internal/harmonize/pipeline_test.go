package harmonize_test

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/anusha/bdaycal/internal/harmonize"
	"github.com/anusha/bdaycal/internal/ical"
)

func fixedRules() harmonize.Rules {
	return harmonize.Rules{
		Now: func() time.Time {
			return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
		},
	}
}

func sampleRecords() []harmonize.RawRecord {
	return []harmonize.RawRecord{
		{UID: "a@example.net", Summary: "Jane Doe", Description: "born in 1985", DTStart: "--0303"},
		{UID: "b@example.net", Summary: "John Roe", DTStart: "19900704"},
		{UID: "c@example.net", Summary: "Leap Kid", DTStart: "--02-29"},
	}
}

func TestPipelinePreservesOrderAndCardinality(t *testing.T) {
	p := harmonize.NewPipeline(fixedRules(), rand.New(rand.NewSource(7)), "", nil)

	result, err := p.Run(sampleRecords())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(result.Records))
	}
	wantNames := []string{"Jane Doe", "John Roe", "Leap Kid"}
	for i, rec := range result.Records {
		if rec.Entry.Name != wantNames[i] {
			t.Fatalf("record %d: expected %q, got %q", i, wantNames[i], rec.Entry.Name)
		}
	}
	if n := strings.Count(result.Document, "BEGIN:VEVENT"); n != 3 {
		t.Fatalf("expected 3 events in the document, got %d", n)
	}
	if !strings.Contains(result.Document, "X-WR-CALNAME:Harmonized Birthdays") {
		t.Fatalf("expected default calendar name in document:\n%s", result.Document)
	}
}

func TestPipelineFailFast(t *testing.T) {
	p := harmonize.NewPipeline(fixedRules(), rand.New(rand.NewSource(7)), "", nil)

	records := append(sampleRecords(), harmonize.RawRecord{UID: "bad@example.net", Summary: "No Date"})
	result, err := p.Run(records)
	if err == nil {
		t.Fatal("expected an error for an unresolvable record")
	}
	if result.Document != "" {
		t.Fatalf("expected no document on failure, got:\n%s", result.Document)
	}
}

func TestPipelineOutputIsHarmonized(t *testing.T) {
	p := harmonize.NewPipeline(fixedRules(), rand.New(rand.NewSource(7)), "Test Calendar", nil)

	result, err := p.Run(sampleRecords())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	decoded, err := ical.Decode(strings.NewReader(result.Document))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(decoded) != 3 {
		t.Fatalf("expected 3 events after decoding, got %d", len(decoded))
	}

	inputUIDs := map[string]bool{}
	for _, raw := range sampleRecords() {
		inputUIDs[raw.UID] = true
	}
	seen := map[string]bool{}
	for _, raw := range decoded {
		if inputUIDs[raw.UID] {
			t.Fatalf("output reuses input UID %q", raw.UID)
		}
		if seen[raw.UID] {
			t.Fatalf("duplicate output UID %q", raw.UID)
		}
		seen[raw.UID] = true
	}
}

func TestPipelineIdempotentDates(t *testing.T) {
	first := harmonize.NewPipeline(fixedRules(), rand.New(rand.NewSource(7)), "", nil)

	result, err := first.Run(sampleRecords())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}

	decoded, err := ical.Decode(strings.NewReader(result.Document))
	if err != nil {
		t.Fatalf("decode first output: %v", err)
	}

	second := harmonize.NewPipeline(fixedRules(), rand.New(rand.NewSource(99)), "", nil)
	again, err := second.Run(decoded)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	for i := range result.Records {
		a, b := result.Records[i].Entry, again.Records[i].Entry
		if a.Month != b.Month || a.Day != b.Day || a.Year != b.Year || a.YearKnown != b.YearKnown {
			t.Fatalf("record %d drifted between runs: %+v vs %+v", i, a, b)
		}
		if result.Records[i].UID == again.Records[i].UID {
			t.Fatalf("record %d: UID was not regenerated", i)
		}
	}
}
