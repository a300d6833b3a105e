package utils

import (
	"testing"
	"time"
)

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Ana@Example.COM "); got != "ana@example.com" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestSafeFilenamePart(t *testing.T) {
	if got := SafeFilenamePart(" NY / DC trip "); got != "NY___DC_trip" {
		t.Fatalf("unexpected %q", got)
	}
	if got := SafeFilenamePart(""); got != "NA" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestFormatISORoundTrip(t *testing.T) {
	ts := time.Date(2025, 11, 10, 8, 30, 0, 123000000, time.FixedZone("X", 3600))
	s := FormatISO(ts)
	if s != "2025-11-10T07:30:00.123Z" {
		t.Fatalf("unexpected %q", s)
	}
	back, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !back.Equal(ts) {
		t.Fatalf("round trip mismatch: %v vs %v", back, ts)
	}
}
