package recovery

import (
	"testing"
	"time"

	"nailbar/models"
)

func TestParseFormDateLayouts(t *testing.T) {
	cases := map[string]string{
		"2026-01-13":       "2026-01-13",
		"01/13/2026":       "2026-01-13",
		"1/5/2026":         "2026-01-05",
		"January 13, 2026": "2026-01-13",
		"Jan 13, 2026":     "2026-01-13",
	}
	for in, want := range cases {
		got, ok := ParseFormDate(in)
		if !ok || got != want {
			t.Errorf("ParseFormDate(%q) = %q,%v want %q", in, got, ok, want)
		}
	}
}

func TestParseFormDateNaturalLanguage(t *testing.T) {
	got, ok := ParseFormDate("Tuesday, January 13, 2026")
	if !ok || got != "2026-01-13" {
		t.Fatalf("got %q,%v", got, ok)
	}

	// misspelled weekday defeats the layout parse, month matching still works
	got, ok = ParseFormDate("Tuesdy, January 13th 2026")
	if !ok || got != "2026-01-13" {
		t.Fatalf("month-name fallback failed: %q,%v", got, ok)
	}
}

func TestParseFormDateRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "soon", "13/45/2026", "February 31, 2026"} {
		if got, ok := ParseFormDate(in); ok {
			t.Errorf("ParseFormDate(%q) unexpectedly parsed as %q", in, got)
		}
	}
}

func TestParseFormTime(t *testing.T) {
	cases := map[string]string{
		"14:30":    "14:30",
		"2:30 PM":  "14:30",
		"2:30pm":   "14:30",
		"9:00 AM":  "09:00",
	}
	for in, want := range cases {
		got, ok := ParseFormTime(in)
		if !ok || got != want {
			t.Errorf("ParseFormTime(%q) = %q,%v want %q", in, got, ok, want)
		}
	}
	if _, ok := ParseFormTime("noonish"); ok {
		t.Error("garbage time should not parse")
	}
}

func TestInferFromCustomerData(t *testing.T) {
	bk := models.Booking{
		CustomerData: map[string]string{
			"Appointment Date": "Tuesday, January 13, 2026",
			"Appointment Time": "10:30 AM",
		},
	}
	inf := InferFromCustomerData(bk)
	if !inf.OK || inf.Date != "2026-01-13" || inf.Time != "10:30" {
		t.Fatalf("got %+v", inf)
	}

	if inf := InferFromCustomerData(models.Booking{}); inf.OK {
		t.Error("no customer data should not infer")
	}
}

func TestInferFromCustomerDataDateOnly(t *testing.T) {
	partial := models.Booking{CustomerData: map[string]string{"Appointment Date": "Tuesday, January 13, 2026"}}
	inf := InferFromCustomerData(partial)
	if !inf.OK || inf.Date != "2026-01-13" || inf.Time != "" {
		t.Fatalf("date-only row should keep its date, got %+v", inf)
	}
}

func TestMergeFormDateKeepsFormDateOverLinkedDate(t *testing.T) {
	// the form says the 13th; the surviving linked slots drifted to the
	// 20th. The form's date wins, only the clock is borrowed.
	inf := Inference{Date: "2026-01-13", Source: "customerData", OK: true}
	linked := []models.Slot{{SlotID: "l1", Date: "2026-01-20", Time: "10:30", TechID: "t1"}}

	merged := MergeFormDate(inf, linked, 30*time.Minute)
	if !merged.OK || merged.Date != "2026-01-13" || merged.Time != "10:00" {
		t.Fatalf("expected 2026-01-13 10:00, got %+v", merged)
	}

	if out := MergeFormDate(inf, nil, 30*time.Minute); out.OK {
		t.Error("date with no time source anywhere should not infer")
	}

	full := Inference{Date: "2026-01-13", Time: "14:00", Source: "customerData", OK: true}
	if out := MergeFormDate(full, linked, 30*time.Minute); out.Time != "14:00" {
		t.Errorf("a row that carried its own time must not be overridden, got %+v", out)
	}
}

func TestInferFromLinkedSlotsBacksOffOneInterval(t *testing.T) {
	linked := []models.Slot{
		{SlotID: "l2", Date: "2026-01-13", Time: "11:00", TechID: "t1"},
		{SlotID: "l1", Date: "2026-01-13", Time: "10:30", TechID: "t1"},
	}

	inf := InferFromLinkedSlots(linked, 30*time.Minute)
	if !inf.OK || inf.Date != "2026-01-13" || inf.Time != "10:00" {
		t.Fatalf("expected one interval before 10:30, got %+v", inf)
	}

	if inf := InferFromLinkedSlots(nil, 30*time.Minute); inf.OK {
		t.Error("no linked slots should not infer")
	}
}

func TestInferFromLinkedSlotsNeverTakesAnotherSlotsTime(t *testing.T) {
	// a 09:30 slot belonging to another booking sits right before the
	// linked 10:30 in the day schedule; recreating the primary at 09:30
	// would collide on the unique tech/date/time index. Inference must go
	// by interval arithmetic, never by stored neighbors.
	linked := []models.Slot{{SlotID: "l1", Date: "2026-01-13", Time: "10:30", TechID: "t1"}}

	inf := InferFromLinkedSlots(linked, 45*time.Minute)
	if !inf.OK || inf.Time != "09:45" {
		t.Fatalf("expected 09:45 via the 45m interval, got %+v", inf)
	}
}

func TestInferFromSameDayConfirmed(t *testing.T) {
	bk := models.Booking{CreatedAt: time.Date(2026, 1, 12, 9, 0, 0, 0, time.Local)}
	confirmed := []models.Slot{
		{SlotID: "far", Date: "2026-02-20", Time: "10:00", TechID: "t1"},
		{SlotID: "near", Date: "2026-01-13", Time: "10:30", TechID: "t1"},
	}

	inf := InferFromSameDayConfirmed(bk, confirmed, 30*time.Minute)
	if !inf.OK || inf.Date != "2026-01-13" || inf.Time != "10:00" {
		t.Fatalf("got %+v", inf)
	}

	if inf := InferFromSameDayConfirmed(bk, nil, 30*time.Minute); inf.OK {
		t.Error("no confirmed slots should not infer")
	}
}
