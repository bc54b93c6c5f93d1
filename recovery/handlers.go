package recovery

import (
	"context"
	"errors"
	"net/http"
	"time"

	"nailbar/utils"

	"github.com/julienschmidt/httprouter"
)

// POST /api/recovery/bookings/:code
func RecoverBookingHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	code := ps.ByName("code")
	if code == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "missing code")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	diag, err := RecoverBooking(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotRecoverable) {
			utils.RespondWithJSON(w, http.StatusUnprocessableEntity, diag)
			return
		}
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, diag)
}

// POST /api/recovery/restore-missing-slots
func RestoreMissingSlotsHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	result, err := RestoreMissingSlots(ctx)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "bulk repair failed")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, result)
}
