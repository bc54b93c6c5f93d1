package formsync

import (
	"context"
	"log"
	"time"

	"nailbar/booking"
	"nailbar/customers"
	"nailbar/db"
	"nailbar/models"
	"nailbar/mq"
	"nailbar/sheets"

	"go.mongodb.org/mongo-driver/bson"
)

// StatusAfterSync returns the booking status a reconciled form produces.
// Home services collect a deposit before confirmation, so they park at
// pending_payment; everything else confirms outright.
func StatusAfterSync(serviceType string) string {
	switch serviceType {
	case models.ServiceHome2Slots, models.ServiceHome3Slots:
		return models.BookingPendingPayment
	default:
		return models.BookingConfirmed
	}
}

// AlreadySynced reports whether this exact row was applied to the booking
// before. Re-delivered rows are common (full-sheet re-syncs) and must be
// side-effect free.
func AlreadySynced(bk models.Booking, rowRef string) bool {
	return bk.FormSynced && bk.FormRowRef == rowRef
}

// Sync matches one form row to its pending booking and promotes it.
// Returns processed=false for unknown codes, repeats, and lost races; none
// of those are errors.
func Sync(ctx context.Context, code string, fields map[string]string, order []string, rowRef string) (bool, error) {
	var bk models.Booking
	if err := db.BookingsCollection.FindOne(ctx, bson.M{"code": code}).Decode(&bk); err != nil {
		return false, nil // unmatched rows are expected, not an error
	}
	if AlreadySynced(bk, rowRef) || bk.FormSynced {
		return false, nil
	}
	if bk.Status != models.BookingPendingForm {
		return false, nil
	}

	contact := ExtractCustomer(fields)
	cust, err := customers.Resolve(ctx, contact)
	if err != nil {
		return false, err
	}

	target := StatusAfterSync(bk.ServiceType)

	// Conditioned on formsynced still being false: if the sweeper or a
	// duplicate sync won the race, this matches nothing and we walk away.
	res, err := db.BookingsCollection.UpdateOne(ctx,
		bson.M{"code": code, "formsynced": false, "status": models.BookingPendingForm},
		bson.M{"$set": bson.M{
			"status":            target,
			"customerid":        cust.CustomerID,
			"formsynced":        true,
			"formrowref":        rowRef,
			"customerdata":      fields,
			"customerdataorder": order,
			"updatedat":         time.Now(),
		}},
	)
	if err != nil {
		return false, err
	}
	if res.ModifiedCount == 0 {
		return false, nil
	}

	confirmBookingSlots(ctx, bk)

	mq.Emit(ctx, mq.EvBookingConfirmed, models.Event{
		BookingID: bk.BookingID, Code: bk.Code, TechID: bk.TechID,
	})
	booking.BroadcastAvailability(bk.TechID)
	return true, nil
}

// confirmBookingSlots hardens the booking's reserved slots from pending to
// confirmed. Scoped to pending status so nothing else flips.
func confirmBookingSlots(ctx context.Context, bk models.Booking) {
	ids := append([]string{bk.SlotID}, bk.LinkedSlotIDs...)
	if bk.PairedSlotID != "" {
		ids = append(ids, bk.PairedSlotID)
	}
	_, err := db.SlotCollection.UpdateMany(ctx,
		bson.M{"slotid": bson.M{"$in": ids}, "status": models.SlotPending},
		bson.M{"$set": bson.M{"status": models.SlotConfirmed, "updatedat": time.Now()}},
	)
	if err != nil {
		log.Printf("confirming slots for booking %s failed: %v", bk.Code, err)
	}
}

// BulkResult itemizes a sheet-wide sync run.
type BulkResult struct {
	Processed int           `json:"processed"`
	Skipped   int           `json:"skipped"`
	Failures  []ItemFailure `json:"failures,omitempty"`
}

type ItemFailure struct {
	RowRef string `json:"rowRef"`
	Reason string `json:"reason"`
}

// SyncAll reconciles every fetched row. One bad row never stops the rest.
func SyncAll(ctx context.Context, rows []sheets.FormRecord) BulkResult {
	var result BulkResult
	for _, row := range rows {
		code := ExtractBookingCode(row.Fields)
		if code == "" {
			result.Skipped++
			continue
		}
		processed, err := Sync(ctx, code, row.Fields, row.Order, row.RowRef)
		if err != nil {
			result.Failures = append(result.Failures, ItemFailure{RowRef: row.RowRef, Reason: err.Error()})
			continue
		}
		if processed {
			result.Processed++
		} else {
			result.Skipped++
		}
	}
	return result
}
