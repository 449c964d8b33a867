// Package ical is the input boundary: it decodes legacy VCALENDAR data into
// raw records for the harmonization pipeline. Only the birthday-relevant
// properties are lifted; everything else in the source file is ignored.
package ical

import (
	"fmt"
	"io"

	ics "github.com/arran4/golang-ical"

	"github.com/anusha/bdaycal/internal/harmonize"
)

// Decode parses a VCALENDAR stream and returns one raw record per VEVENT, in
// document order. Property values are handed over verbatim so the extractor
// can deal with non-standard date shapes itself.
func Decode(r io.Reader) ([]harmonize.RawRecord, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}

	events := cal.Events()
	records := make([]harmonize.RawRecord, 0, len(events))
	for _, event := range events {
		records = append(records, harmonize.RawRecord{
			UID:         propValue(event, ics.ComponentPropertyUniqueId),
			Summary:     propValue(event, ics.ComponentPropertySummary),
			Description: propValue(event, ics.ComponentPropertyDescription),
			DTStart:     propValue(event, ics.ComponentPropertyDtStart),
		})
	}
	return records, nil
}

func propValue(event *ics.VEvent, name ics.ComponentProperty) string {
	prop := event.GetProperty(name)
	if prop == nil {
		return ""
	}
	return prop.Value
}
