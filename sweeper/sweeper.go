package sweeper

import (
	"context"
	"fmt"
	"log"
	"time"

	"nailbar/booking"
	"nailbar/db"
	"nailbar/models"
	"nailbar/mq"
	"nailbar/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Eligible reports whether a booking qualifies for an age-based release:
// still waiting on its form, never synced, and older than the threshold.
func Eligible(bk models.Booking, now time.Time, threshold time.Duration) bool {
	if bk.Status != models.BookingPendingForm || bk.FormSynced {
		return false
	}
	return bk.CreatedAt.Before(now.Add(-threshold))
}

// ReleaseResult itemizes a sweep run.
type ReleaseResult struct {
	RunID    string        `json:"runId"`
	Scanned  int           `json:"scanned"`
	Released int           `json:"released"`
	Failures []ItemFailure `json:"failures,omitempty"`
}

type ItemFailure struct {
	BookingID string `json:"bookingId"`
	Code      string `json:"code"`
	Reason    string `json:"reason"`
}

// releaseOne claims the booking first, then frees its slots. The claim is a
// conditional write on (pending_form && !formsynced): a booking the form
// reconciler confirmed between scan and claim matches nothing, so its slots
// are never touched.
func releaseOne(ctx context.Context, bookingID string) (*models.Booking, error) {
	res := db.BookingsCollection.FindOneAndUpdate(ctx,
		bson.M{
			"bookingid":  bookingID,
			"status":     models.BookingPendingForm,
			"formsynced": false,
		},
		bson.M{"$set": bson.M{"status": models.BookingReleased, "updatedat": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var bk models.Booking
	if err := res.Decode(&bk); err != nil {
		return nil, fmt.Errorf("not eligible or already handled")
	}

	if err := booking.FreeBookingSlots(ctx, bk); err != nil {
		return &bk, fmt.Errorf("booking released but slot free failed: %w", err)
	}
	return &bk, nil
}

// fetchUnsynced loads all bookings still waiting on a form row.
func fetchUnsynced(ctx context.Context) ([]models.Booking, error) {
	cur, err := db.BookingsCollection.Find(ctx, bson.M{
		"status":     models.BookingPendingForm,
		"formsynced": false,
	}, options.Find().SetSort(bson.D{{Key: "createdat", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Booking
	for cur.Next(ctx) {
		var b models.Booking
		if err := cur.Decode(&b); err != nil {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// ReleaseExpired frees every unsynced pending booking older than threshold.
// Per-item failures are collected; one stuck booking never stops the sweep.
func ReleaseExpired(ctx context.Context, threshold time.Duration) (ReleaseResult, error) {
	result := ReleaseResult{RunID: uuid.NewString()}

	candidates, err := fetchUnsynced(ctx)
	if err != nil {
		return result, err
	}

	now := time.Now()
	techs := map[string]bool{}
	for _, bk := range candidates {
		if !Eligible(bk, now, threshold) {
			continue
		}
		result.Scanned++
		released, err := releaseOne(ctx, bk.BookingID)
		if err != nil {
			result.Failures = append(result.Failures, ItemFailure{
				BookingID: bk.BookingID, Code: bk.Code, Reason: err.Error(),
			})
			continue
		}
		result.Released++
		techs[released.TechID] = true
		mq.Emit(ctx, mq.EvBookingReleased, models.Event{
			BookingID: released.BookingID, Code: released.Code, TechID: released.TechID,
		})
	}

	for techID := range techs {
		booking.BroadcastAvailability(techID)
	}
	log.Printf("sweep %s: scanned=%d released=%d failed=%d",
		result.RunID, result.Scanned, result.Released, len(result.Failures))
	return result, nil
}

// ReleaseByIDs releases exactly the given bookings, regardless of age. The
// admin picked them by hand; eligibility is still re-verified by the claim.
func ReleaseByIDs(ctx context.Context, bookingIDs []string) ReleaseResult {
	result := ReleaseResult{RunID: uuid.NewString(), Scanned: len(bookingIDs)}

	techs := map[string]bool{}
	for _, id := range bookingIDs {
		released, err := releaseOne(ctx, id)
		if err != nil {
			result.Failures = append(result.Failures, ItemFailure{BookingID: id, Reason: err.Error()})
			continue
		}
		result.Released++
		techs[released.TechID] = true
		mq.Emit(ctx, mq.EvBookingReleased, models.Event{
			BookingID: released.BookingID, Code: released.Code, TechID: released.TechID,
		})
	}

	for techID := range techs {
		booking.BroadcastAvailability(techID)
	}
	return result
}

// EligibleView is an unsynced booking enriched for the admin release screen.
type EligibleView struct {
	Booking    models.Booking `json:"booking"`
	SlotDate   string         `json:"slotDate,omitempty"`
	SlotTime   string         `json:"slotTime,omitempty"`
	AgeMinutes int            `json:"ageMinutes"`
}

// ListEligible returns every unsynced pending booking with its slot display
// data, independent of age — the admin decides what to release.
func ListEligible(ctx context.Context) ([]EligibleView, error) {
	candidates, err := fetchUnsynced(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	views := []EligibleView{}
	for _, bk := range candidates {
		v := EligibleView{
			Booking:    bk,
			AgeMinutes: int(now.Sub(bk.CreatedAt).Minutes()),
		}
		var s models.Slot
		if err := db.SlotCollection.FindOne(ctx, bson.M{"slotid": bk.SlotID}).Decode(&s); err == nil {
			v.SlotDate = s.Date
			v.SlotTime = s.Time
		}
		views = append(views, v)
	}
	return views, nil
}

// ScanReminders emits reminder_due for confirmed bookings whose primary
// slot is tomorrow. Each booking reminds at most once.
func ScanReminders(ctx context.Context) (int, error) {
	tomorrow := time.Now().AddDate(0, 0, 1).Format(utils.DateLayout)

	slotCur, err := db.SlotCollection.Find(ctx, bson.M{
		"date":   tomorrow,
		"status": models.SlotConfirmed,
	})
	if err != nil {
		return 0, err
	}
	defer slotCur.Close(ctx)

	slotIDs := bson.A{}
	for slotCur.Next(ctx) {
		var s models.Slot
		if err := slotCur.Decode(&s); err != nil {
			continue
		}
		slotIDs = append(slotIDs, s.SlotID)
	}
	if len(slotIDs) == 0 {
		return 0, nil
	}

	cur, err := db.BookingsCollection.Find(ctx, bson.M{
		"slotid":   bson.M{"$in": slotIDs},
		"status":   models.BookingConfirmed,
		"reminded": bson.M{"$ne": true},
	})
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	sent := 0
	for cur.Next(ctx) {
		var bk models.Booking
		if err := cur.Decode(&bk); err != nil {
			continue
		}
		res, err := db.BookingsCollection.UpdateOne(ctx,
			bson.M{"bookingid": bk.BookingID, "reminded": bson.M{"$ne": true}},
			bson.M{"$set": bson.M{"reminded": true}},
		)
		if err != nil || res.ModifiedCount == 0 {
			continue
		}
		mq.Emit(ctx, mq.EvReminderDue, models.Event{
			BookingID: bk.BookingID, Code: bk.Code, TechID: bk.TechID, Date: tomorrow,
		})
		sent++
	}
	return sent, nil
}
