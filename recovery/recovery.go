package recovery

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"nailbar/db"
	"nailbar/models"
	"nailbar/mq"
	"nailbar/slots"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrNotRecoverable = errors.New("booking not recoverable")

func slotInterval() time.Duration {
	if v, err := strconv.Atoi(os.Getenv("SLOT_INTERVAL_MIN")); err == nil && v > 0 {
		return time.Duration(v) * time.Minute
	}
	return 30 * time.Minute
}

// slotExists reports whether the slot id resolves in the slot store.
func slotExists(ctx context.Context, slotID string) (bool, error) {
	err := db.SlotCollection.FindOne(ctx, bson.M{"slotid": slotID}).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return false, err
}

// loadLinked fetches the slot documents a booking links to; missing ones
// are simply absent from the result.
func loadLinked(ctx context.Context, bk models.Booking) ([]models.Slot, error) {
	ids := append([]string{}, bk.LinkedSlotIDs...)
	if bk.PairedSlotID != "" {
		ids = append(ids, bk.PairedSlotID)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return slots.FetchSlots(ctx, bson.M{"slotid": bson.M{"$in": ids}})
}

// recreateSlot writes the inferred primary slot back, confirmed, under the
// booking's original slot id so the ledger reference heals in place.
func recreateSlot(ctx context.Context, bk models.Booking, inf Inference) (*models.Slot, error) {
	s := models.Slot{
		SlotID:    bk.SlotID,
		Date:      inf.Date,
		Time:      inf.Time,
		Status:    models.SlotConfirmed,
		TechID:    bk.TechID,
		SlotType:  models.SlotRegular,
		Notes:     fmt.Sprintf("restored from %s", inf.Source),
		CreatedAt: bk.CreatedAt,
		UpdatedAt: time.Now(),
	}
	if _, err := db.SlotCollection.InsertOne(ctx, s); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("tech %s already has a slot at %s %s", bk.TechID, inf.Date, inf.Time)
		}
		return nil, err
	}
	return &s, nil
}

// repair runs the inference chain for one booking with a missing primary
// slot. allowSameDay widens the chain for bulk runs.
func repair(ctx context.Context, bk models.Booking, allowSameDay bool) Diagnostic {
	diag := Diagnostic{BookingID: bk.BookingID, Code: bk.Code}
	interval := slotInterval()

	var inf Inference

	diag.Checked = append(diag.Checked, "customerData")
	inf = InferFromCustomerData(bk)
	if inf.OK && inf.Time == "" {
		linked, err := loadLinked(ctx, bk)
		if err != nil {
			linked = nil
		}
		inf = MergeFormDate(inf, linked, interval)
	}

	if !inf.OK {
		diag.Checked = append(diag.Checked, "linkedSlots")
		linked, err := loadLinked(ctx, bk)
		if err == nil && len(linked) > 0 {
			inf = InferFromLinkedSlots(linked, interval)
		}
	}

	if !inf.OK && allowSameDay {
		diag.Checked = append(diag.Checked, "sameDayConfirmed")
		confirmed, err := slots.FetchSlots(ctx, bson.M{
			"techid": bk.TechID,
			"status": models.SlotConfirmed,
		})
		if err == nil {
			inf = InferFromSameDayConfirmed(bk, confirmed, interval)
		}
	}

	if !inf.OK {
		diag.Reason = "no source yielded a usable date/time"
		return diag
	}

	diag.Source = inf.Source
	diag.Date = inf.Date
	diag.Time = inf.Time

	if _, err := recreateSlot(ctx, bk, inf); err != nil {
		diag.Reason = err.Error()
		return diag
	}
	diag.Recovered = true

	mq.Emit(ctx, mq.EvSlotRepaired, models.Event{
		BookingID: bk.BookingID, Code: bk.Code, TechID: bk.TechID,
		Date: inf.Date, Time: inf.Time,
	})
	return diag
}

// RecoverBooking repairs a single confirmed booking whose primary slot
// vanished from the slot store.
func RecoverBooking(ctx context.Context, code string) (Diagnostic, error) {
	var bk models.Booking
	if err := db.BookingsCollection.FindOne(ctx, bson.M{"code": code}).Decode(&bk); err != nil {
		return Diagnostic{Code: code}, fmt.Errorf("booking not found")
	}
	if bk.Status != models.BookingConfirmed {
		return Diagnostic{Code: code}, fmt.Errorf("booking is %s, only confirmed bookings are repaired", bk.Status)
	}

	exists, err := slotExists(ctx, bk.SlotID)
	if err != nil {
		return Diagnostic{Code: code}, err
	}
	if exists {
		return Diagnostic{BookingID: bk.BookingID, Code: bk.Code, Recovered: false, Reason: "slot present, nothing to repair"}, nil
	}

	diag := repair(ctx, bk, false)
	if !diag.Recovered {
		return diag, ErrNotRecoverable
	}
	return diag, nil
}

// BulkResult summarizes a store-wide repair pass.
type BulkResult struct {
	Scanned       int          `json:"scanned"`
	Repaired      int          `json:"repaired"`
	Unrecoverable []Diagnostic `json:"unrecoverable,omitempty"`
}

// RestoreMissingSlots walks every confirmed booking and repairs the ones
// whose primary slot is gone. Safe to re-run: healed bookings pass the
// existence check and are skipped.
func RestoreMissingSlots(ctx context.Context) (BulkResult, error) {
	var result BulkResult

	cur, err := db.BookingsCollection.Find(ctx, bson.M{"status": models.BookingConfirmed})
	if err != nil {
		return result, err
	}
	defer cur.Close(ctx)

	var bookings []models.Booking
	for cur.Next(ctx) {
		var b models.Booking
		if err := cur.Decode(&b); err != nil {
			continue
		}
		bookings = append(bookings, b)
	}

	for _, bk := range bookings {
		exists, err := slotExists(ctx, bk.SlotID)
		if err != nil {
			result.Unrecoverable = append(result.Unrecoverable, Diagnostic{
				BookingID: bk.BookingID, Code: bk.Code, Reason: err.Error(),
			})
			continue
		}
		if exists {
			continue
		}
		result.Scanned++

		diag := repair(ctx, bk, true)
		if diag.Recovered {
			result.Repaired++
			log.Printf("repair: %s", diag)
		} else {
			result.Unrecoverable = append(result.Unrecoverable, diag)
			log.Printf("repair: %s", diag)
		}
	}
	return result, nil
}
