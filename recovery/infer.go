package recovery

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"nailbar/formsync"
	"nailbar/models"
	"nailbar/slots"
	"nailbar/utils"
)

// Inference is the outcome of one evidence source: either a usable
// date/time or nothing, never a guess.
type Inference struct {
	Date   string
	Time   string
	Source string
	OK     bool
}

var dateHeaders = []string{"appointment date", "booking date", "preferred date", "date"}
var timeHeaders = []string{"appointment time", "booking time", "preferred time", "time"}

var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"Monday, January 2, 2006",
	"Monday, Jan 2, 2006",
}

var timeLayouts = []string{
	"15:04",
	"3:04 PM",
	"3:04PM",
	"3 PM",
	"3PM",
}

var monthNames = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June, "july": time.July,
	"august": time.August, "september": time.September, "october": time.October,
	"november": time.November, "december": time.December,
}

var numRe = regexp.MustCompile(`\d+`)

// ParseFormDate normalizes a free-text date to YYYY-MM-DD. Known layouts
// are tried first; failing those, explicit month-name matching handles
// natural-language strings like "Tuesday, January 13, 2026".
func ParseFormDate(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(utils.DateLayout), true
		}
	}

	// Month-name fallback: find a month word, then a day and a 4-digit year
	// among the numbers in the string.
	lower := strings.ToLower(s)
	var month time.Month
	found := false
	for name, m := range monthNames {
		if strings.Contains(lower, name) {
			month, found = m, true
			break
		}
	}
	if !found {
		return "", false
	}

	day, year := 0, 0
	for _, numStr := range numRe.FindAllString(s, -1) {
		n, _ := strconv.Atoi(numStr)
		switch {
		case n >= 1900:
			year = n
		case n >= 1 && n <= 31 && day == 0:
			day = n
		}
	}
	if day == 0 || year == 0 {
		return "", false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != month {
		return "", false
	}
	return t.Format(utils.DateLayout), true
}

// ParseFormTime normalizes a free-text clock time to 24h HH:MM.
func ParseFormTime(raw string) (string, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return "", false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(utils.TimeLayout), true
		}
	}
	return "", false
}

// InferFromCustomerData reads appointment date/time fields out of the
// synced form row. Highest-priority source: the customer wrote it down.
// A row carrying only a date still counts; Time stays empty and the
// caller borrows a clock from the linked slots.
func InferFromCustomerData(bk models.Booking) Inference {
	if len(bk.CustomerData) == 0 {
		return Inference{Source: "customerData"}
	}
	date, ok := ParseFormDate(formsync.ExtractField(bk.CustomerData, dateHeaders))
	if !ok {
		return Inference{Source: "customerData"}
	}
	inf := Inference{Date: date, Source: "customerData", OK: true}
	if clock, ok := ParseFormTime(formsync.ExtractField(bk.CustomerData, timeHeaders)); ok {
		inf.Time = clock
	}
	return inf
}

// stepBeforeEarliest backs one slot interval off the earliest linked slot.
// The stored slot preceding it in the day schedule is some other booking's
// slot, never the missing primary, so only interval arithmetic is trusted.
func stepBeforeEarliest(linked []models.Slot, interval time.Duration) (date, clock string, ok bool) {
	if len(linked) == 0 {
		return "", "", false
	}
	slots.SortByDateTime(linked)
	earliest := linked[0]

	m := utils.SlotMoment(earliest.Date, earliest.Time)
	if m.IsZero() {
		return "", "", false
	}
	prior := m.Add(-interval)
	if prior.Format(utils.DateLayout) != earliest.Date {
		return "", "", false
	}
	return earliest.Date, prior.Format(utils.TimeLayout), true
}

// InferFromLinkedSlots places the primary one slot interval before the
// earliest linked slot.
func InferFromLinkedSlots(linked []models.Slot, interval time.Duration) Inference {
	date, clock, ok := stepBeforeEarliest(linked, interval)
	if !ok {
		return Inference{Source: "linkedSlots"}
	}
	return Inference{Date: date, Time: clock, Source: "linkedSlots", OK: true}
}

// MergeFormDate fills in the clock for a date-only form inference from the
// booking's linked slots. The form's date always wins over the linked
// slots' date; only the time is borrowed. Without any time source the
// inference is abandoned.
func MergeFormDate(inf Inference, linked []models.Slot, interval time.Duration) Inference {
	if !inf.OK || inf.Time != "" {
		return inf
	}
	if _, clock, ok := stepBeforeEarliest(linked, interval); ok {
		inf.Time = clock
		return inf
	}
	return Inference{Source: inf.Source}
}

// InferFromSameDayConfirmed, bulk repair only: anchor on the tech's
// confirmed slots whose date sits nearest the booking's creation, and back
// one interval off the earliest of them.
func InferFromSameDayConfirmed(bk models.Booking, confirmed []models.Slot, interval time.Duration) Inference {
	if len(confirmed) == 0 {
		return Inference{Source: "sameDayConfirmed"}
	}

	created := bk.CreatedAt
	bestDate := ""
	var bestDelta time.Duration
	for _, s := range confirmed {
		m := utils.SlotMoment(s.Date, "00:00")
		if m.IsZero() {
			continue
		}
		delta := m.Sub(created)
		if delta < 0 {
			delta = -delta
		}
		if bestDate == "" || delta < bestDelta {
			bestDate, bestDelta = s.Date, delta
		}
	}
	if bestDate == "" {
		return Inference{Source: "sameDayConfirmed"}
	}

	var dayEarliest *models.Slot
	for i := range confirmed {
		s := confirmed[i]
		if s.Date != bestDate {
			continue
		}
		if dayEarliest == nil || s.Time < dayEarliest.Time {
			dayEarliest = &confirmed[i]
		}
	}

	m := utils.SlotMoment(dayEarliest.Date, dayEarliest.Time)
	prior := m.Add(-interval)
	if prior.Format(utils.DateLayout) != bestDate {
		return Inference{Source: "sameDayConfirmed"}
	}
	return Inference{
		Date:   bestDate,
		Time:   prior.Format(utils.TimeLayout),
		Source: "sameDayConfirmed",
		OK:     true,
	}
}

// Diagnostic reports what recovery tried for one booking.
type Diagnostic struct {
	BookingID string   `json:"bookingId"`
	Code      string   `json:"code"`
	Checked   []string `json:"checked"`
	Source    string   `json:"source,omitempty"`
	Date      string   `json:"date,omitempty"`
	Time      string   `json:"time,omitempty"`
	Recovered bool     `json:"recovered"`
	Reason    string   `json:"reason,omitempty"`
}

func (d Diagnostic) String() string {
	if d.Recovered {
		return fmt.Sprintf("%s recovered from %s as %s %s", d.Code, d.Source, d.Date, d.Time)
	}
	return fmt.Sprintf("%s unrecoverable after %v: %s", d.Code, d.Checked, d.Reason)
}
