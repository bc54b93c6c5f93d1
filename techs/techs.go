package techs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"nailbar/db"
	"nailbar/models"
	"nailbar/utils"

	"github.com/disintegration/imaging"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

const techPicDir = "static/techpic"

func genID() string {
	return utils.GenerateRandomDigitString(12)
}

// GET /api/techs
func ListNailTechs(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	filter := bson.M{}
	if r.URL.Query().Get("all") != "true" {
		filter["active"] = true
	}

	cur, err := db.NailTechsCollection.Find(ctx, filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var techs []models.NailTech
	for cur.Next(ctx) {
		var t models.NailTech
		if err := cur.Decode(&t); err != nil {
			continue
		}
		techs = append(techs, t)
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"techs": techs})
}

// POST /api/techs
func CreateNailTech(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var t models.NailTech
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if t.Name == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "name is required")
		return
	}

	t.TechID = genID()
	t.Active = true
	t.CreatedAt = time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if _, err := db.NailTechsCollection.InsertOne(ctx, t); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db insert failed")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"tech": t})
}

// PUT /api/techs/:id
func UpdateNailTech(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	techID := ps.ByName("id")
	if techID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "missing id")
		return
	}

	var body struct {
		Name   *string `json:"name"`
		Bio    *string `json:"bio"`
		Active *bool   `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	set := bson.M{}
	if body.Name != nil {
		set["name"] = *body.Name
	}
	if body.Bio != nil {
		set["bio"] = *body.Bio
	}
	if body.Active != nil {
		set["active"] = *body.Active
	}
	if len(set) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	res, err := db.NailTechsCollection.UpdateOne(ctx, bson.M{"techid": techID}, bson.M{"$set": set})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"ok": true})
}

// POST /api/techs/:id/photo — multipart upload, resized thumbnail saved
// alongside the original.
func UploadTechPhoto(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	techID := ps.ByName("id")
	if techID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "missing id")
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid form")
		return
	}
	file, _, err := r.FormFile("photo")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "no photo provided")
		return
	}
	defer file.Close()

	img, err := imaging.Decode(file)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "failed to decode image")
		return
	}

	if err := utils.EnsureDir(filepath.Join(techPicDir, "thumb")); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "upload dir unavailable")
		return
	}

	fileName := techID + ".jpg"
	if err := imaging.Save(img, filepath.Join(techPicDir, fileName)); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to save image")
		return
	}
	thumb := imaging.Resize(img, 300, 0, imaging.Lanczos)
	if err := imaging.Save(thumb, filepath.Join(techPicDir, "thumb", fileName)); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to save thumbnail")
		return
	}

	photoPath := fmt.Sprintf("/static/techpic/%s", fileName)
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if _, err := db.NailTechsCollection.UpdateOne(ctx,
		bson.M{"techid": techID},
		bson.M{"$set": bson.M{"photo": photoPath}},
	); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"photo": photoPath})
}
