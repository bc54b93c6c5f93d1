package booking

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"nailbar/blockdates"
	"nailbar/db"
	"nailbar/models"
	"nailbar/slots"
	"nailbar/utils"

	"go.mongodb.org/mongo-driver/bson"
)

// SlotCountFor maps a service type to the number of consecutive slots it
// consumes. Unknown service types return 0.
func SlotCountFor(serviceType string) int {
	switch serviceType {
	case models.ServiceManicure, models.ServicePedicure:
		return 1
	case models.ServiceManiPedi, models.ServiceHome2Slots:
		return 2
	case models.ServiceHome3Slots:
		return 3
	}
	return 0
}

// reserveTarget is the status slots move to on booking creation. The manual
// release flow keeps reservations at pending until the form arrives; set
// RESERVE_STATUS=confirmed to skip the pending step entirely.
func reserveTarget() string {
	if os.Getenv("RESERVE_STATUS") == models.SlotConfirmed {
		return models.SlotConfirmed
	}
	return models.SlotPending
}

// validatePrimary rejects a primary slot that cannot start a booking.
func validatePrimary(s models.Slot, blocks []models.BlockedDate, now time.Time) error {
	if s.Status != models.SlotAvailable {
		return fmt.Errorf("%w: slot is %s", ErrSlotUnavailable, s.Status)
	}
	if s.IsHidden {
		return fmt.Errorf("%w: slot is hidden", ErrSlotUnavailable)
	}
	if slots.IsPast(s, now) {
		return fmt.Errorf("%w: slot is in the past", ErrSlotUnavailable)
	}
	if blockdates.AnyCovers(blocks, s.Date) {
		return fmt.Errorf("%w: date is blocked", ErrSlotUnavailable)
	}
	return nil
}

// pickConsecutive selects the needed-1 slots immediately following primary
// in the tech's time ordering for that day. Every link in the chain must be
// available and visible; a pending or hidden slot in the way fails the whole
// pick rather than skipping over it.
func pickConsecutive(daySlots []models.Slot, primary models.Slot, needed int) ([]models.Slot, error) {
	if needed <= 1 {
		return nil, nil
	}
	slots.SortByDateTime(daySlots)

	start := -1
	for i, s := range daySlots {
		if s.SlotID == primary.SlotID {
			start = i
			break
		}
	}
	if start == -1 {
		return nil, fmt.Errorf("%w: primary slot not in tech schedule", ErrSlotUnavailable)
	}

	var chain []models.Slot
	for i := start + 1; i < len(daySlots) && len(chain) < needed-1; i++ {
		s := daySlots[i]
		if s.Status != models.SlotAvailable || s.IsHidden {
			return nil, fmt.Errorf("%w: need %d consecutive slots after %s", ErrInsufficientConsecutiveSlots, needed-1, primary.Time)
		}
		chain = append(chain, s)
	}
	if len(chain) < needed-1 {
		return nil, fmt.Errorf("%w: need %d consecutive slots after %s", ErrInsufficientConsecutiveSlots, needed-1, primary.Time)
	}
	return chain, nil
}

// isConsecutiveChain verifies that primary followed by companions occupies
// adjacent positions in the tech's day ordering, with no foreign slot
// wedged between.
func isConsecutiveChain(daySlots []models.Slot, primary models.Slot, companions []models.Slot) bool {
	slots.SortByDateTime(daySlots)

	pos := map[string]int{}
	for i, s := range daySlots {
		pos[s.SlotID] = i
	}

	p, ok := pos[primary.SlotID]
	if !ok {
		return false
	}
	for i, c := range companions {
		cp, ok := pos[c.SlotID]
		if !ok || cp != p+i+1 {
			return false
		}
	}
	return true
}

// reserveOne CAS-transitions a single slot from available to target. Exactly
// one of two racing callers can win this write.
func reserveOne(ctx context.Context, slotID, target string) error {
	res, err := db.SlotCollection.UpdateOne(ctx,
		bson.M{
			"slotid":   slotID,
			"status":   models.SlotAvailable,
			"ishidden": bson.M{"$ne": true},
		},
		bson.M{"$set": bson.M{"status": target, "updatedat": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return ErrSlotUnavailable
	}
	return nil
}

// rollbackReserved frees slots this allocation had already claimed. Scoped
// by the status we set them to, so a slot someone else holds is never
// touched.
func rollbackReserved(ctx context.Context, slotIDs []string, claimed string) {
	if len(slotIDs) == 0 {
		return
	}
	_, err := db.SlotCollection.UpdateMany(ctx,
		bson.M{"slotid": bson.M{"$in": slotIDs}, "status": claimed},
		bson.M{"$set": bson.M{"status": models.SlotAvailable, "updatedat": time.Now()}},
	)
	if err != nil {
		log.Printf("rollback of %v failed: %v", slotIDs, err)
	}
}

// CreateOptions carries the booking request into the allocator.
type CreateOptions struct {
	ServiceType   string
	PairedSlotID  string
	LinkedSlotIDs []string
	ClientType    string
}

// Allocate reserves the primary slot plus any companions the service needs
// and writes the ledger entry. All slots transition or none do: companion
// reservation failures roll back everything claimed so far.
func Allocate(ctx context.Context, primarySlotID string, opts CreateOptions) (*models.Booking, []models.Slot, error) {
	required := SlotCountFor(opts.ServiceType)
	if primarySlotID == "" || required == 0 {
		return nil, nil, fmt.Errorf("%w: slotId and a known serviceType are required", ErrValidation)
	}

	var primary models.Slot
	if err := db.SlotCollection.FindOne(ctx, bson.M{"slotid": primarySlotID}).Decode(&primary); err != nil {
		return nil, nil, fmt.Errorf("%w: slot not found", ErrSlotUnavailable)
	}

	blocks, err := blockdates.ActiveBlocks(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := validatePrimary(primary, blocks, time.Now()); err != nil {
		return nil, nil, err
	}

	daySlots, err := slots.FetchSlots(ctx, bson.M{"techid": primary.TechID, "date": primary.Date})
	if err != nil {
		return nil, nil, err
	}

	// Companions: explicit refs when the client chose them, otherwise the
	// next slots in the tech's ordering.
	var companions []models.Slot
	explicit := opts.LinkedSlotIDs
	if len(explicit) == 0 && opts.PairedSlotID != "" {
		explicit = []string{opts.PairedSlotID}
	}
	if len(explicit) > 0 {
		if len(explicit)+1 != required {
			return nil, nil, fmt.Errorf("%w: %s needs %d slots, got %d", ErrValidation, opts.ServiceType, required, len(explicit)+1)
		}
		byID := map[string]models.Slot{}
		for _, s := range daySlots {
			byID[s.SlotID] = s
		}
		for _, id := range explicit {
			s, ok := byID[id]
			if !ok || s.TechID != primary.TechID {
				return nil, nil, fmt.Errorf("%w: linked slot %s not found for tech", ErrSlotUnavailable, id)
			}
			if s.Status != models.SlotAvailable || s.IsHidden {
				return nil, nil, fmt.Errorf("%w: linked slot %s", ErrSlotUnavailable, id)
			}
			companions = append(companions, s)
		}
		if !isConsecutiveChain(daySlots, primary, companions) {
			return nil, nil, fmt.Errorf("%w: linked slots are not consecutive", ErrInsufficientConsecutiveSlots)
		}
	} else {
		companions, err = pickConsecutive(daySlots, primary, required)
		if err != nil {
			return nil, nil, err
		}
	}

	target := reserveTarget()
	all := append([]models.Slot{primary}, companions...)

	var claimed []string
	for _, s := range all {
		if err := reserveOne(ctx, s.SlotID, target); err != nil {
			rollbackReserved(ctx, claimed, target)
			if s.SlotID == primarySlotID {
				return nil, nil, fmt.Errorf("%w: lost race for slot %s", ErrSlotUnavailable, s.SlotID)
			}
			return nil, nil, fmt.Errorf("%w: lost race for companion %s", ErrInsufficientConsecutiveSlots, s.SlotID)
		}
		claimed = append(claimed, s.SlotID)
	}

	code, err := NextCode(ctx)
	if err != nil {
		rollbackReserved(ctx, claimed, target)
		return nil, nil, err
	}

	now := time.Now()
	status := models.BookingPendingForm
	if target == models.SlotConfirmed {
		status = models.BookingConfirmed
	}
	bk := models.Booking{
		BookingID:   utils.GenerateRandomDigitString(20),
		Code:        code,
		SlotID:      primary.SlotID,
		ServiceType: opts.ServiceType,
		TechID:      primary.TechID,
		ClientType:  opts.ClientType,
		Status:      status,
		FormSynced:  false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, c := range companions {
		bk.LinkedSlotIDs = append(bk.LinkedSlotIDs, c.SlotID)
	}
	if len(companions) == 1 {
		bk.PairedSlotID = companions[0].SlotID
	}

	if _, err := db.BookingsCollection.InsertOne(ctx, bk); err != nil {
		rollbackReserved(ctx, claimed, target)
		return nil, nil, err
	}

	for i := range all {
		all[i].Status = target
	}
	return &bk, all, nil
}
