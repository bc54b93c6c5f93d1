package sweeper

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"

	"nailbar/utils"

	"github.com/julienschmidt/httprouter"
)

const defaultThresholdMinutes = 30

func thresholdFromEnv() int {
	if v, err := strconv.Atoi(os.Getenv("RELEASE_THRESHOLD_MIN")); err == nil && v > 0 {
		return v
	}
	return defaultThresholdMinutes
}

// POST /api/sweeper/release?minutes=30
func ReleaseExpiredPendingBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	minutes := thresholdFromEnv()
	if v, err := strconv.Atoi(r.URL.Query().Get("minutes")); err == nil && v > 0 {
		minutes = v
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	result, err := ReleaseExpired(ctx, time.Duration(minutes)*time.Minute)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "sweep failed")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, result)
}

// GET /api/sweeper/eligible
func GetEligibleBookingsForRelease(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	views, err := ListEligible(ctx)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"eligible": views})
}

// POST /api/sweeper/release/manual
func ManuallyReleaseBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		BookingIDs []string `json:"bookingIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.BookingIDs) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "bookingIds required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	utils.RespondWithJSON(w, http.StatusOK, ReleaseByIDs(ctx, req.BookingIDs))
}

// POST /api/sweeper/reminders
func RunReminderScan(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	sent, err := ScanReminders(ctx)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "reminder scan failed")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"sent": sent})
}
