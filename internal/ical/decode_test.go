package ical

import (
	"strings"
	"testing"
)

const legacyFixture = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//Legacy Export//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:legacy-0001@example.net\r\n" +
	"SUMMARY:Jane Doe\r\n" +
	"DESCRIPTION:Jane was born in 1985.\r\n" +
	"DTSTART:19850303\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:legacy-0002@example.net\r\n" +
	"DTSTART:--0229\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestDecode(t *testing.T) {
	records, err := Decode(strings.NewReader(legacyFixture))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.UID != "legacy-0001@example.net" {
		t.Errorf("unexpected UID %q", first.UID)
	}
	if first.Summary != "Jane Doe" {
		t.Errorf("unexpected summary %q", first.Summary)
	}
	if first.Description != "Jane was born in 1985." {
		t.Errorf("unexpected description %q", first.Description)
	}
	if first.DTStart != "19850303" {
		t.Errorf("unexpected DTSTART %q", first.DTStart)
	}

	second := records[1]
	if second.Summary != "" {
		t.Errorf("expected empty summary, got %q", second.Summary)
	}
	if second.DTStart != "--0229" {
		t.Errorf("yearless DTSTART lost: %q", second.DTStart)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode(strings.NewReader("this is not a calendar")); err == nil {
		t.Fatal("expected an error for non-calendar input")
	}
}

func TestDecodeEmptyCalendar(t *testing.T) {
	doc := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//x//EN\r\nEND:VCALENDAR\r\n"
	records, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}
