package formsync

import (
	"testing"
	"time"

	"nailbar/models"
)

func TestExtractFieldVariantsCaseInsensitive(t *testing.T) {
	fields := map[string]string{
		"Full Name":    "Dana Kim",
		"EMAIL":        "dana@example.com",
		"Phone Number": "555-0101",
	}

	if got := ExtractField(fields, nameHeaders); got != "Dana Kim" {
		t.Errorf("name: got %q", got)
	}
	if got := ExtractField(fields, emailHeaders); got != "dana@example.com" {
		t.Errorf("email: got %q", got)
	}
	if got := ExtractField(fields, phoneHeaders); got != "555-0101" {
		t.Errorf("phone: got %q", got)
	}
}

func TestExtractFieldExactBeatsSubstring(t *testing.T) {
	fields := map[string]string{
		"Backup Email": "backup@example.com",
		"Email":        "primary@example.com",
	}
	if got := ExtractField(fields, emailHeaders); got != "primary@example.com" {
		t.Errorf("exact header should win, got %q", got)
	}
}

func TestExtractFieldSubstringFallback(t *testing.T) {
	fields := map[string]string{
		"Your Instagram @": "@nailfan",
	}
	if got := ExtractField(fields, socialHeaders); got != "@nailfan" {
		t.Errorf("substring match should find handle, got %q", got)
	}
}

func TestExtractFieldMissing(t *testing.T) {
	fields := map[string]string{"Favorite Color": "teal"}
	if got := ExtractField(fields, referralHeaders); got != "" {
		t.Errorf("absent field should be empty, got %q", got)
	}
	if got := ExtractField(nil, emailHeaders); got != "" {
		t.Errorf("nil fields should be empty, got %q", got)
	}
}

func TestExtractCustomer(t *testing.T) {
	fields := map[string]string{
		"Name":                      "Ana",
		"E-Mail":                    "ana@example.com",
		"How did you hear about us": "friend",
		"Instagram Handle":          "@ana.nails",
		"Mobile":                    " 555-0202 ",
	}
	c := ExtractCustomer(fields)
	if c.Name != "Ana" || c.Email != "ana@example.com" || c.Referral != "friend" {
		t.Errorf("unexpected customer: %+v", c)
	}
	if c.Phone != "555-0202" {
		t.Errorf("phone should be trimmed, got %q", c.Phone)
	}
	if c.Social != "@ana.nails" {
		t.Errorf("social: got %q", c.Social)
	}
}

func TestExtractBookingCode(t *testing.T) {
	if got := ExtractBookingCode(map[string]string{"Booking ID": "NB-1042"}); got != "NB-1042" {
		t.Errorf("got %q", got)
	}
	if got := ExtractBookingCode(map[string]string{"Booking Reference": "NB-1043"}); got != "NB-1043" {
		t.Errorf("got %q", got)
	}
}

func TestStatusAfterSync(t *testing.T) {
	if got := StatusAfterSync(models.ServiceManicure); got != models.BookingConfirmed {
		t.Errorf("manicure: got %s", got)
	}
	if got := StatusAfterSync(models.ServiceHome3Slots); got != models.BookingPendingPayment {
		t.Errorf("home service: got %s", got)
	}
}

func TestAlreadySynced(t *testing.T) {
	bk := models.Booking{FormSynced: true, FormRowRef: "row-7", CreatedAt: time.Now()}

	if !AlreadySynced(bk, "row-7") {
		t.Error("same row ref should be a repeat")
	}
	if AlreadySynced(bk, "row-8") {
		t.Error("different row ref is not the same delivery")
	}
	bk.FormSynced = false
	if AlreadySynced(bk, "row-7") {
		t.Error("unsynced booking has no repeats")
	}
}
