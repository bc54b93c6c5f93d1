package blockdates

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"nailbar/db"
	"nailbar/models"
	"nailbar/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

func genID() string {
	return utils.GenerateRandomDigitString(14)
}

// Covers reports whether date (YYYY-MM-DD) falls inside block's inclusive
// range. Single-day blocks only match their start date.
func Covers(block models.BlockedDate, date string) bool {
	if block.Scope == models.BlockScopeSingle {
		return block.StartDate == date
	}
	end := block.EndDate
	if end == "" {
		end = block.StartDate
	}
	return date >= block.StartDate && date <= end
}

// AnyCovers reports whether any block in the set covers date.
func AnyCovers(blocks []models.BlockedDate, date string) bool {
	for _, b := range blocks {
		if Covers(b, date) {
			return true
		}
	}
	return false
}

// ActiveBlocks loads all blocks whose range has not fully passed as of today.
func ActiveBlocks(ctx context.Context) ([]models.BlockedDate, error) {
	today := time.Now().Format(utils.DateLayout)
	cur, err := db.BlockedDatesCollection.Find(ctx, bson.M{
		"$or": bson.A{
			bson.M{"enddate": bson.M{"$gte": today}},
			bson.M{"enddate": "", "startdate": bson.M{"$gte": today}},
			bson.M{"scope": models.BlockScopeSingle, "startdate": bson.M{"$gte": today}},
		},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var blocks []models.BlockedDate
	for cur.Next(ctx) {
		var b models.BlockedDate
		if err := cur.Decode(&b); err != nil {
			continue
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// IsBlocked checks a single date against the stored block calendar.
func IsBlocked(ctx context.Context, date string) (bool, error) {
	blocks, err := ActiveBlocks(ctx)
	if err != nil {
		return false, err
	}
	return AnyCovers(blocks, date), nil
}

// ---------- Handlers ----------

func ListBlockedDates(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cur, err := db.BlockedDatesCollection.Find(ctx, bson.M{})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var blocks []models.BlockedDate
	for cur.Next(ctx) {
		var b models.BlockedDate
		if err := cur.Decode(&b); err != nil {
			continue
		}
		blocks = append(blocks, b)
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"blockedDates": blocks})
}

func CreateBlockedDate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var b models.BlockedDate
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if !utils.ValidDate(b.StartDate) {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid startDate")
		return
	}
	if b.Scope == "" {
		b.Scope = models.BlockScopeRange
	}
	if b.Scope == models.BlockScopeSingle {
		b.EndDate = b.StartDate
	}
	if !utils.ValidDate(b.EndDate) || b.EndDate < b.StartDate {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid endDate")
		return
	}

	b.BlockID = genID()
	b.CreatedAt = time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if _, err := db.BlockedDatesCollection.InsertOne(ctx, b); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db insert failed")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{"blockedDate": b})
}

func UpdateBlockedDate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	blockID := ps.ByName("id")
	if blockID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "missing id")
		return
	}

	var body struct {
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
		Reason    string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	set := bson.M{}
	if body.StartDate != "" {
		if !utils.ValidDate(body.StartDate) {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid startDate")
			return
		}
		set["startdate"] = body.StartDate
	}
	if body.EndDate != "" {
		if !utils.ValidDate(body.EndDate) {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid endDate")
			return
		}
		set["enddate"] = body.EndDate
	}
	if body.Reason != "" {
		set["reason"] = body.Reason
	}
	if len(set) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	res, err := db.BlockedDatesCollection.UpdateOne(ctx, bson.M{"blockid": blockID}, bson.M{"$set": set})
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

func DeleteBlockedDate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	blockID := ps.ByName("id")
	if blockID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "missing id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	res, err := db.BlockedDatesCollection.DeleteOne(ctx, bson.M{"blockid": blockID})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
