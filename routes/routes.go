package routes

import (
	"net/http"

	"nailbar/blockdates"
	"nailbar/booking"
	"nailbar/customers"
	"nailbar/formsync"
	"nailbar/middleware"
	"nailbar/ratelim"
	"nailbar/recovery"
	"nailbar/slips"
	"nailbar/slots"
	"nailbar/sweeper"
	"nailbar/techs"

	"github.com/julienschmidt/httprouter"
)

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/static/techpic/*filepath", http.Dir("static/techpic"))
}

func AddSlotRoutes(router *httprouter.Router) {
	router.GET("/api/slots/available", slots.ListAvailableSlots)
	router.GET("/api/slots", middleware.Authenticate(slots.ListSlots))
	router.POST("/api/slots", middleware.Authenticate(slots.CreateSlot))
	router.PUT("/api/slots/:id", middleware.Authenticate(slots.UpdateSlot))
	router.DELETE("/api/slots/:id", middleware.Authenticate(slots.DeleteSlot))
}

func AddBlockedDateRoutes(router *httprouter.Router) {
	router.GET("/api/blocked-dates", blockdates.ListBlockedDates)
	router.POST("/api/blocked-dates", middleware.Authenticate(blockdates.CreateBlockedDate))
	router.PUT("/api/blocked-dates/:id", middleware.Authenticate(blockdates.UpdateBlockedDate))
	router.DELETE("/api/blocked-dates/:id", middleware.Authenticate(blockdates.DeleteBlockedDate))
}

func AddBookingRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/bookings", rl.Limit(booking.CreateBooking))
	router.GET("/api/bookings", middleware.Authenticate(booking.ListBookings))
	router.GET("/api/bookings/code/:code", middleware.OptionalAuth(booking.GetBookingByCode))
	router.GET("/api/bookings/code/:code/slip", middleware.Authenticate(slips.PrintSlip))
	router.POST("/api/bookings/:id/cancel", middleware.Authenticate(booking.CancelBooking))
	router.GET("/ws/slots/:techid", booking.HandleWS)
}

func AddFormSyncRoutes(router *httprouter.Router) {
	router.POST("/api/formsync/run", middleware.Authenticate(formsync.RunSheetSync))
	router.POST("/api/formsync/row/:code", middleware.Authenticate(formsync.SyncBookingWithForm))
}

func AddSweeperRoutes(router *httprouter.Router) {
	router.GET("/api/sweeper/eligible", middleware.Authenticate(sweeper.GetEligibleBookingsForRelease))
	router.POST("/api/sweeper/release", middleware.Authenticate(sweeper.ReleaseExpiredPendingBookings))
	router.POST("/api/sweeper/release/manual", middleware.Authenticate(sweeper.ManuallyReleaseBookings))
	router.POST("/api/sweeper/reminders", middleware.Authenticate(sweeper.RunReminderScan))
}

func AddRecoveryRoutes(router *httprouter.Router) {
	router.POST("/api/recovery/restore-missing-slots", middleware.Authenticate(recovery.RestoreMissingSlotsHandler))
	router.POST("/api/recovery/bookings/:code", middleware.Authenticate(recovery.RecoverBookingHandler))
}

func AddTechRoutes(router *httprouter.Router) {
	router.GET("/api/techs", techs.ListNailTechs)
	router.POST("/api/techs", middleware.Authenticate(techs.CreateNailTech))
	router.PUT("/api/techs/:id", middleware.Authenticate(techs.UpdateNailTech))
	router.POST("/api/techs/:id/photo", middleware.Authenticate(techs.UploadTechPhoto))
}

func AddCustomerRoutes(router *httprouter.Router) {
	router.GET("/api/customers", middleware.Authenticate(customers.ListCustomers))
	router.GET("/api/customers/:id", middleware.Authenticate(customers.GetCustomer))
}
