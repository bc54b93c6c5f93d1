package formsync

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"nailbar/sheets"
	"nailbar/utils"

	"github.com/julienschmidt/httprouter"
)

// POST /api/formsync/row/:code — push-style delivery of a single form row.
func SyncBookingWithForm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	code := ps.ByName("code")
	if code == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "missing code")
		return
	}

	var req struct {
		Fields map[string]string `json:"fields"`
		Order  []string          `json:"order"`
		RowRef string            `json:"rowRef"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if len(req.Fields) == 0 || req.RowRef == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "fields and rowRef are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	processed, err := Sync(ctx, code, req.Fields, req.Order, req.RowRef)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "sync failed")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"processed": processed})
}

// POST /api/formsync/run — pull the whole sheet feed and reconcile it.
func RunSheetSync(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	rows, err := sheets.NewClient().FetchRows(ctx)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadGateway, err.Error())
		return
	}

	result := SyncAll(ctx, rows)
	utils.RespondWithJSON(w, http.StatusOK, result)
}
