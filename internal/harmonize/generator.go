package harmonize

import (
	crand "crypto/rand"
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/anusha/bdaycal/internal/domain"
)

// Generator serializes entries into harmonized VEVENTs.
type Generator struct {
	rules Rules
	rand  io.Reader
}

// NewGenerator builds a Generator. The randomness reader feeds UID
// generation; pass nil for crypto/rand or a seeded reader for deterministic
// output in tests.
func NewGenerator(rules Rules, randomness io.Reader) *Generator {
	if randomness == nil {
		randomness = crand.Reader
	}
	return &Generator{
		rules: rules.withDefaults(),
		rand:  randomness,
	}
}

// Event builds one standards-conformant VEVENT for the entry and returns it
// together with the freshly generated UID. The source record's UID is never
// reused.
func (g *Generator) Event(entry domain.Entry) (*ics.VEvent, string, error) {
	uid, err := uuid.NewRandomFromReader(g.rand)
	if err != nil {
		return nil, "", fmt.Errorf("generate uid: %w", err)
	}

	now := g.rules.Now()
	start := entry.Date()

	event := ics.NewEvent(uid.String())
	event.SetDtStampTime(now)
	event.SetCreatedTime(now)
	event.SetSummary(entry.Name)
	event.SetAllDayStartAt(start)
	event.SetAllDayEndAt(start.AddDate(0, 0, 1))
	// Yearly recurrence is anchored by DTSTART; no BYMONTH/BYMONTHDAY needed.
	event.AddRrule("FREQ=YEARLY")
	event.SetTimeTransparency(ics.TransparencyTransparent)
	event.SetStatus(ics.ObjectStatusConfirmed)
	event.SetProperty(ics.ComponentPropertyClass, "PUBLIC")
	event.SetProperty(ics.ComponentPropertyCategories, "Birthday")

	alarm := event.AddAlarm()
	alarm.SetAction(ics.ActionDisplay)
	alarm.SetProperty(ics.ComponentPropertyDescription, "Birthday Reminder: "+entry.Name)
	// A positive duration trigger is START-related by default, so the alarm
	// fires at the configured offset from midnight regardless of timezone.
	alarm.SetTrigger(formatOffset(g.rules.AlarmOffset))

	return event, uid.String(), nil
}

// formatOffset renders a duration as an RFC 5545 duration value.
func formatOffset(d time.Duration) string {
	hours := int(d / time.Hour)
	minutes := int(d % time.Hour / time.Minute)
	if minutes == 0 {
		return fmt.Sprintf("PT%dH", hours)
	}
	return fmt.Sprintf("PT%dH%dM", hours, minutes)
}
