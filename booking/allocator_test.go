package booking

import (
	"errors"
	"testing"
	"time"

	"nailbar/models"
)

func slot(id, date, clock, status string) models.Slot {
	return models.Slot{
		SlotID: id,
		Date:   date,
		Time:   clock,
		Status: status,
		TechID: "tech1",
	}
}

func TestSlotCountFor(t *testing.T) {
	cases := map[string]int{
		models.ServiceManicure:   1,
		models.ServicePedicure:   1,
		models.ServiceManiPedi:   2,
		models.ServiceHome2Slots: 2,
		models.ServiceHome3Slots: 3,
		"gel_xtreme":             0,
		"":                       0,
	}
	for svc, want := range cases {
		if got := SlotCountFor(svc); got != want {
			t.Errorf("SlotCountFor(%q) = %d, want %d", svc, got, want)
		}
	}
}

func TestPickConsecutiveChoosesFollowingSlots(t *testing.T) {
	day := []models.Slot{
		slot("s4", "2026-03-10", "11:30", models.SlotAvailable),
		slot("s1", "2026-03-10", "10:00", models.SlotAvailable),
		slot("s3", "2026-03-10", "11:00", models.SlotAvailable),
		slot("s2", "2026-03-10", "10:30", models.SlotAvailable),
	}
	primary := day[1] // 10:00

	chain, err := pickConsecutive(day, primary, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chain) != 2 {
		t.Fatalf("expected 2 companions, got %d", len(chain))
	}
	if chain[0].Time != "10:30" || chain[1].Time != "11:00" {
		t.Fatalf("expected 10:30 and 11:00, got %s and %s", chain[0].Time, chain[1].Time)
	}
}

func TestPickConsecutiveFailsOnPendingGap(t *testing.T) {
	day := []models.Slot{
		slot("s1", "2026-03-10", "10:00", models.SlotAvailable),
		slot("s2", "2026-03-10", "10:30", models.SlotPending),
		slot("s3", "2026-03-10", "11:00", models.SlotAvailable),
	}

	_, err := pickConsecutive(day, day[0], 2)
	if !errors.Is(err, ErrInsufficientConsecutiveSlots) {
		t.Fatalf("expected ErrInsufficientConsecutiveSlots, got %v", err)
	}
}

func TestPickConsecutiveFailsWhenTooFewSlots(t *testing.T) {
	day := []models.Slot{
		slot("s1", "2026-03-10", "16:30", models.SlotAvailable),
		slot("s2", "2026-03-10", "17:00", models.SlotAvailable),
	}

	_, err := pickConsecutive(day, day[0], 3)
	if !errors.Is(err, ErrInsufficientConsecutiveSlots) {
		t.Fatalf("expected ErrInsufficientConsecutiveSlots, got %v", err)
	}
}

func TestPickConsecutiveSingleSlotService(t *testing.T) {
	day := []models.Slot{slot("s1", "2026-03-10", "10:00", models.SlotAvailable)}
	chain, err := pickConsecutive(day, day[0], 1)
	if err != nil || chain != nil {
		t.Fatalf("single-slot service should need no companions, got %v %v", chain, err)
	}
}

func TestIsConsecutiveChain(t *testing.T) {
	day := []models.Slot{
		slot("s1", "2026-03-10", "10:00", models.SlotAvailable),
		slot("s2", "2026-03-10", "10:30", models.SlotAvailable),
		slot("s3", "2026-03-10", "11:00", models.SlotAvailable),
		slot("s4", "2026-03-10", "11:30", models.SlotAvailable),
	}

	if !isConsecutiveChain(day, day[0], []models.Slot{day[1], day[2]}) {
		t.Error("adjacent slots should form a chain")
	}
	if isConsecutiveChain(day, day[0], []models.Slot{day[2]}) {
		t.Error("skipping 10:30 should not count as consecutive")
	}
	if isConsecutiveChain(day, day[0], []models.Slot{slot("ghost", "2026-03-10", "12:00", models.SlotAvailable)}) {
		t.Error("slot outside the day schedule should not chain")
	}
}

func TestValidatePrimary(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)

	ok := slot("s1", "2026-03-10", "10:00", models.SlotAvailable)
	if err := validatePrimary(ok, nil, now); err != nil {
		t.Errorf("future available slot should validate, got %v", err)
	}

	taken := slot("s2", "2026-03-10", "10:00", models.SlotPending)
	if err := validatePrimary(taken, nil, now); !errors.Is(err, ErrSlotUnavailable) {
		t.Errorf("pending slot should be unavailable, got %v", err)
	}

	hidden := ok
	hidden.IsHidden = true
	if err := validatePrimary(hidden, nil, now); !errors.Is(err, ErrSlotUnavailable) {
		t.Errorf("hidden slot should be unavailable, got %v", err)
	}

	past := slot("s3", "2026-02-01", "10:00", models.SlotAvailable)
	if err := validatePrimary(past, nil, now); !errors.Is(err, ErrSlotUnavailable) {
		t.Errorf("past slot should be unavailable, got %v", err)
	}

	blocks := []models.BlockedDate{{StartDate: "2026-03-09", EndDate: "2026-03-11", Scope: models.BlockScopeRange}}
	if err := validatePrimary(ok, blocks, now); !errors.Is(err, ErrSlotUnavailable) {
		t.Errorf("blocked date should be unavailable, got %v", err)
	}
}
