package booking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"nailbar/db"
	"nailbar/models"
	"nailbar/mq"
	"nailbar/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// POST /api/bookings
func CreateBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		SlotID        string   `json:"slotId"`
		ServiceType   string   `json:"serviceType"`
		PairedSlotID  string   `json:"pairedSlotId"`
		LinkedSlotIDs []string `json:"linkedSlotIds"`
		ClientType    string   `json:"clientType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	bk, reserved, err := Allocate(ctx, req.SlotID, CreateOptions{
		ServiceType:   req.ServiceType,
		PairedSlotID:  req.PairedSlotID,
		LinkedSlotIDs: req.LinkedSlotIDs,
		ClientType:    req.ClientType,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrInsufficientConsecutiveSlots):
			utils.RespondWithJSON(w, http.StatusConflict, utils.M{
				"error": err.Error(), "kind": "insufficient_consecutive_slots",
			})
		case errors.Is(err, ErrSlotUnavailable):
			utils.RespondWithJSON(w, http.StatusConflict, utils.M{
				"error": err.Error(), "kind": "slot_unavailable",
			})
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "booking failed")
		}
		return
	}

	mq.Emit(ctx, mq.EvBookingCreated, models.Event{
		BookingID: bk.BookingID, Code: bk.Code, TechID: bk.TechID,
		Date: reserved[0].Date, Time: reserved[0].Time,
	})
	BroadcastAvailability(bk.TechID)

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"booking": bk,
		"slots":   reserved,
	})
}

// GET /api/bookings/code/:code
func GetBookingByCode(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	code := ps.ByName("code")
	if code == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "missing code")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var bk models.Booking
	if err := db.BookingsCollection.FindOne(ctx, bson.M{"code": code}).Decode(&bk); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "booking not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"booking": bk})
}

// GET /api/bookings?status=&techId=&all=true
// Released and cancelled bookings stay out of the default view.
func ListBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	} else if r.URL.Query().Get("all") != "true" {
		filter["status"] = bson.M{"$nin": bson.A{models.BookingReleased, models.BookingCancelled}}
	}
	if techID := r.URL.Query().Get("techId"); techID != "" {
		filter["techid"] = techID
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cur, err := db.BookingsCollection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdat", Value: -1}}))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
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
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"bookings": bookings})
}

// POST /api/bookings/:id/cancel — admin cancel; frees the slots the same
// way the sweeper does, but regardless of age or sync state.
func CancelBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookingID := ps.ByName("id")
	if bookingID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "missing id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res := db.BookingsCollection.FindOneAndUpdate(ctx,
		bson.M{"bookingid": bookingID, "status": bson.M{"$nin": bson.A{models.BookingCancelled, models.BookingReleased}}},
		bson.M{"$set": bson.M{"status": models.BookingCancelled, "updatedat": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var bk models.Booking
	if err := res.Decode(&bk); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "booking not found or already closed")
		return
	}

	FreeBookingSlots(ctx, bk)
	BroadcastAvailability(bk.TechID)

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"ok": true, "booking": bk})
}

// FreeBookingSlots returns a booking's primary and linked slots to the
// available pool. Only pending/confirmed slots flip back; a slot already
// re-booked under a different status is left alone.
func FreeBookingSlots(ctx context.Context, bk models.Booking) error {
	ids := append([]string{bk.SlotID}, bk.LinkedSlotIDs...)
	if bk.PairedSlotID != "" {
		ids = append(ids, bk.PairedSlotID)
	}
	_, err := db.SlotCollection.UpdateMany(ctx,
		bson.M{
			"slotid": bson.M{"$in": ids},
			"status": bson.M{"$in": bson.A{models.SlotPending, models.SlotConfirmed}},
		},
		bson.M{"$set": bson.M{"status": models.SlotAvailable, "updatedat": time.Now()}},
	)
	return err
}
