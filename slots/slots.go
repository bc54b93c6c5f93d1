package slots

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"nailbar/blockdates"
	"nailbar/db"
	"nailbar/models"
	"nailbar/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func genID() string {
	return utils.GenerateRandomDigitString(18)
}

// FetchSlots loads slots matching the given filter, unsorted.
func FetchSlots(ctx context.Context, filter bson.M) ([]models.Slot, error) {
	cur, err := db.SlotCollection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Slot
	for cur.Next(ctx) {
		var s models.Slot
		if err := cur.Decode(&s); err != nil {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// PurgePastAvailable deletes still-available slots whose date has passed.
// Runs opportunistically on availability reads; pending/confirmed slots are
// never touched here, they belong to bookings.
func PurgePastAvailable(ctx context.Context) {
	today := time.Now().Format(utils.DateLayout)
	res, err := db.SlotCollection.DeleteMany(ctx, bson.M{
		"status": models.SlotAvailable,
		"date":   bson.M{"$lt": today},
	})
	if err != nil {
		log.Printf("slot purge failed: %v", err)
		return
	}
	if res.DeletedCount > 0 {
		log.Printf("purged %d past available slots", res.DeletedCount)
	}
}

// ---------- Handlers ----------

// GET /api/slots/available?techId=&from=&to=
func ListAvailableSlots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	PurgePastAvailable(ctx)

	filter := bson.M{"status": models.SlotAvailable}
	if techID := r.URL.Query().Get("techId"); techID != "" {
		filter["techid"] = techID
	}
	dateRange := bson.M{}
	if from := r.URL.Query().Get("from"); from != "" && utils.ValidDate(from) {
		dateRange["$gte"] = from
	}
	if to := r.URL.Query().Get("to"); to != "" && utils.ValidDate(to) {
		dateRange["$lte"] = to
	}
	if len(dateRange) > 0 {
		filter["date"] = dateRange
	}

	list, err := FetchSlots(ctx, filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	blocks, err := blockdates.ActiveBlocks(ctx)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"slots": FilterBookable(list, blocks, time.Now()),
	})
}

// GET /api/slots — admin view, includes hidden and reserved slots
func ListSlots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	filter := bson.M{}
	if techID := r.URL.Query().Get("techId"); techID != "" {
		filter["techid"] = techID
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}
	if date := r.URL.Query().Get("date"); date != "" {
		filter["date"] = date
	}

	list, err := FetchSlots(ctx, filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	SortByDateTime(list)
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"slots": list})
}

// POST /api/slots
func CreateSlot(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var s models.Slot
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if s.TechID == "" || !utils.ValidDate(s.Date) || !utils.ValidTime(s.Time) {
		utils.RespondWithError(w, http.StatusBadRequest, "missing required fields")
		return
	}
	if s.SlotType == "" {
		s.SlotType = models.SlotRegular
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	blocked, err := blockdates.IsBlocked(ctx, s.Date)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if blocked {
		utils.RespondWithError(w, http.StatusConflict, "date is blocked")
		return
	}

	s.SlotID = genID()
	s.Status = models.SlotAvailable
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt

	if _, err := db.SlotCollection.InsertOne(ctx, s); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.RespondWithError(w, http.StatusConflict, "slot already exists for this tech and time")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "db insert failed")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{"slot": s})
}

// PUT /api/slots/:id — admin edits notes/hidden/type; status moves only
// through the allocator or sweeper.
func UpdateSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slotID := ps.ByName("id")
	if slotID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "missing id")
		return
	}

	var body struct {
		IsHidden *bool   `json:"isHidden"`
		Notes    *string `json:"notes"`
		SlotType *string `json:"slotType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	set := bson.M{"updatedat": time.Now()}
	if body.IsHidden != nil {
		set["ishidden"] = *body.IsHidden
	}
	if body.Notes != nil {
		set["notes"] = *body.Notes
	}
	if body.SlotType != nil {
		if *body.SlotType != models.SlotRegular && *body.SlotType != models.SlotSpecial {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid slotType")
			return
		}
		set["slottype"] = *body.SlotType
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	res, err := db.SlotCollection.UpdateOne(ctx, bson.M{"slotid": slotID}, bson.M{"$set": set})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// DELETE /api/slots/:id — refuses to delete reserved slots.
func DeleteSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slotID := ps.ByName("id")
	if slotID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "missing id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	res, err := db.SlotCollection.DeleteOne(ctx, bson.M{
		"slotid": slotID,
		"status": models.SlotAvailable,
	})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusConflict, "slot missing or reserved")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
