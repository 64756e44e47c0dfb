package model

import (
	"testing"
	"time"
)

func TestStatusValidAndLabel(t *testing.T) {
	for _, st := range Statuses {
		if !st.Valid() {
			t.Errorf("Valid(%q) = false", st)
		}
	}
	if Status("ghosted").Valid() {
		t.Error("Valid(ghosted) = true")
	}
	if got := StatusInterviewing.Label(); got != "Interviewing" {
		t.Errorf("Label() = %q, want Interviewing", got)
	}
}

func TestDateOf(t *testing.T) {
	in := time.Date(2026, 9, 1, 23, 45, 12, 999, time.FixedZone("AEST", 10*3600))
	got := DateOf(in)

	if got.Location() != time.UTC {
		t.Errorf("Location = %v, want UTC", got.Location())
	}
	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 || got.Nanosecond() != 0 {
		t.Errorf("DateOf() = %v, want midnight", got)
	}
	// 23:45 AEST is 13:45 UTC the same day.
	if got.Day() != 1 {
		t.Errorf("Day = %d, want 1", got.Day())
	}
}

func TestDaysSinceApplied(t *testing.T) {
	now := time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC)
	app := Application{ApplicationDate: time.Date(2026, 9, 3, 17, 30, 0, 0, time.UTC)}

	if got := app.DaysSinceApplied(now); got != 7 {
		t.Errorf("DaysSinceApplied() = %d, want 7 (date precision, clock ignored)", got)
	}
}
