package sweeper

import (
	"testing"
	"time"

	"nailbar/models"
)

func TestEligibleByAge(t *testing.T) {
	now := time.Now()
	threshold := 30 * time.Minute

	old := models.Booking{
		Status:    models.BookingPendingForm,
		CreatedAt: now.Add(-45 * time.Minute),
	}
	if !Eligible(old, now, threshold) {
		t.Error("45-minute-old unsynced booking should be eligible at 30min threshold")
	}

	fresh := models.Booking{
		Status:    models.BookingPendingForm,
		CreatedAt: now.Add(-10 * time.Minute),
	}
	if Eligible(fresh, now, threshold) {
		t.Error("10-minute-old booking must not be released at 30min threshold")
	}
}

func TestEligibleExcludesSyncedAndNonPending(t *testing.T) {
	now := time.Now()
	threshold := 30 * time.Minute
	stale := now.Add(-2 * time.Hour)

	synced := models.Booking{
		Status:     models.BookingPendingForm,
		FormSynced: true,
		CreatedAt:  stale,
	}
	if Eligible(synced, now, threshold) {
		t.Error("a form-synced booking is never release-eligible")
	}

	for _, status := range []string{
		models.BookingConfirmed,
		models.BookingPendingPayment,
		models.BookingCancelled,
		models.BookingReleased,
	} {
		bk := models.Booking{Status: status, CreatedAt: stale}
		if Eligible(bk, now, threshold) {
			t.Errorf("status %s should not be eligible", status)
		}
	}
}

func TestEligibleBoundary(t *testing.T) {
	now := time.Now()
	threshold := 30 * time.Minute

	exactly := models.Booking{
		Status:    models.BookingPendingForm,
		CreatedAt: now.Add(-threshold),
	}
	// created exactly at the cutoff is not strictly older than it
	if Eligible(exactly, now, threshold) {
		t.Error("booking created exactly at the threshold should survive")
	}
}
