package models

import "time"

// Slot statuses
const (
	SlotAvailable = "available"
	SlotPending   = "pending"
	SlotConfirmed = "confirmed"
)

// Slot types
const (
	SlotRegular = "regular"
	SlotSpecial = "special"
)

// Slot is a single bookable time unit for one nail tech on one date.
type Slot struct {
	SlotID    string    `json:"slotId" bson:"slotid"`
	Date      string    `json:"date" bson:"date"` // YYYY-MM-DD
	Time      string    `json:"time" bson:"time"` // HH:MM, 24h
	Status    string    `json:"status" bson:"status"`
	TechID    string    `json:"techId" bson:"techid"`
	SlotType  string    `json:"slotType,omitempty" bson:"slottype,omitempty"`
	IsHidden  bool      `json:"isHidden,omitempty" bson:"ishidden,omitempty"`
	Notes     string    `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdat"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedat"`
}

// BlockedDate scopes
const (
	BlockScopeRange  = "range"
	BlockScopeSingle = "single"
)

// BlockedDate marks an inclusive date range as unavailable.
type BlockedDate struct {
	BlockID   string    `json:"blockId" bson:"blockid"`
	StartDate string    `json:"startDate" bson:"startdate"`
	EndDate   string    `json:"endDate" bson:"enddate"`
	Reason    string    `json:"reason,omitempty" bson:"reason,omitempty"`
	Scope     string    `json:"scope" bson:"scope"`
	CreatedAt time.Time `json:"createdAt" bson:"createdat"`
}

// Booking statuses
const (
	BookingPendingForm    = "pending_form"
	BookingPendingPayment = "pending_payment"
	BookingConfirmed      = "confirmed"
	BookingCancelled      = "cancelled"
	BookingReleased       = "released"
)

// Service types
const (
	ServiceManicure    = "manicure"
	ServicePedicure    = "pedicure"
	ServiceManiPedi    = "mani_pedi"
	ServiceHome2Slots  = "home_service_2slots"
	ServiceHome3Slots  = "home_service_3slots"
)

// Booking links a customer (eventually) to one or more slots. CustomerID is
// nil until a form row has been reconciled; FormSynced flags that the row
// arrived, FormRowRef is the idempotence key for re-delivered rows.
type Booking struct {
	BookingID     string            `json:"bookingId" bson:"bookingid"`
	Code          string            `json:"code" bson:"code"` // human display code, e.g. NB-1042
	SlotID        string            `json:"slotId" bson:"slotid"`
	LinkedSlotIDs []string          `json:"linkedSlotIds,omitempty" bson:"linkedslotids,omitempty"`
	PairedSlotID  string            `json:"pairedSlotId,omitempty" bson:"pairedslotid,omitempty"` // legacy single companion
	ServiceType   string            `json:"serviceType" bson:"servicetype"`
	TechID        string            `json:"techId" bson:"techid"`
	ClientType    string            `json:"clientType,omitempty" bson:"clienttype,omitempty"`
	Status        string            `json:"status" bson:"status"`
	CustomerID    *string           `json:"customerId,omitempty" bson:"customerid,omitempty"`
	FormSynced    bool              `json:"formSynced" bson:"formsynced"`
	FormRowRef    string            `json:"formRowRef,omitempty" bson:"formrowref,omitempty"`
	CustomerData  map[string]string `json:"customerData,omitempty" bson:"customerdata,omitempty"`
	DataOrder     []string          `json:"customerDataOrder,omitempty" bson:"customerdataorder,omitempty"`
	Reminded      bool              `json:"reminded,omitempty" bson:"reminded,omitempty"`
	CreatedAt     time.Time         `json:"createdAt" bson:"createdat"`
	UpdatedAt     time.Time         `json:"updatedAt" bson:"updatedat"`
}

// Customer is the resolved external identity attached after form sync.
type Customer struct {
	CustomerID string    `json:"customerId" bson:"customerid"`
	Name       string    `json:"name" bson:"name"`
	Email      string    `json:"email,omitempty" bson:"email,omitempty"`
	Phone      string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Social     string    `json:"social,omitempty" bson:"social,omitempty"`
	Referral   string    `json:"referral,omitempty" bson:"referral,omitempty"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdat"`
}

// NailTech is the per-staff resource axis slots hang off of.
type NailTech struct {
	TechID    string    `json:"techId" bson:"techid"`
	Name      string    `json:"name" bson:"name"`
	Bio       string    `json:"bio,omitempty" bson:"bio,omitempty"`
	Photo     string    `json:"photo,omitempty" bson:"photo,omitempty"`
	Active    bool      `json:"active" bson:"active"`
	CreatedAt time.Time `json:"createdAt" bson:"createdat"`
}

// Event is the payload published on the booking lifecycle channel.
type Event struct {
	Name      string `json:"name"`
	BookingID string `json:"booking_id,omitempty"`
	Code      string `json:"code,omitempty"`
	TechID    string `json:"tech_id,omitempty"`
	Date      string `json:"date,omitempty"`
	Time      string `json:"time,omitempty"`
	At        int64  `json:"at"`
}
