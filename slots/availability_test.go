package slots

import (
	"testing"
	"time"

	"nailbar/models"
)

func TestFilterBookable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)

	list := []models.Slot{
		{SlotID: "past", Date: "2026-02-20", Time: "10:00", Status: models.SlotAvailable, TechID: "t1"},
		{SlotID: "pending", Date: "2026-03-10", Time: "10:00", Status: models.SlotPending, TechID: "t1"},
		{SlotID: "hidden", Date: "2026-03-10", Time: "10:30", Status: models.SlotAvailable, IsHidden: true, TechID: "t1"},
		{SlotID: "blocked", Date: "2026-03-15", Time: "10:00", Status: models.SlotAvailable, TechID: "t1"},
		{SlotID: "ok2", Date: "2026-03-11", Time: "09:00", Status: models.SlotAvailable, TechID: "t1"},
		{SlotID: "ok1", Date: "2026-03-10", Time: "11:00", Status: models.SlotAvailable, TechID: "t1"},
	}
	blocks := []models.BlockedDate{
		{StartDate: "2026-03-14", EndDate: "2026-03-16", Scope: models.BlockScopeRange},
	}

	got := FilterBookable(list, blocks, now)
	if len(got) != 2 {
		t.Fatalf("expected 2 bookable slots, got %d: %+v", len(got), got)
	}
	if got[0].SlotID != "ok1" || got[1].SlotID != "ok2" {
		t.Errorf("expected chronological order ok1,ok2, got %s,%s", got[0].SlotID, got[1].SlotID)
	}
}

func TestFilterBookableNeverShowsReserved(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)
	list := []models.Slot{
		{SlotID: "a", Date: "2026-03-10", Time: "10:00", Status: models.SlotPending, TechID: "t1"},
		{SlotID: "b", Date: "2026-03-10", Time: "10:30", Status: models.SlotConfirmed, TechID: "t1"},
	}
	if got := FilterBookable(list, nil, now); len(got) != 0 {
		t.Fatalf("reserved slots leaked into availability: %+v", got)
	}
}

func TestIsPastMalformed(t *testing.T) {
	s := models.Slot{Date: "not-a-date", Time: "10:00"}
	if !IsPast(s, time.Now()) {
		t.Error("malformed slot should read as past")
	}
}

func TestSortByDateTime(t *testing.T) {
	list := []models.Slot{
		{SlotID: "c", Date: "2026-03-11", Time: "09:00"},
		{SlotID: "a", Date: "2026-03-10", Time: "09:00"},
		{SlotID: "b", Date: "2026-03-10", Time: "14:00"},
	}
	SortByDateTime(list)
	if list[0].SlotID != "a" || list[1].SlotID != "b" || list[2].SlotID != "c" {
		t.Errorf("wrong order: %s %s %s", list[0].SlotID, list[1].SlotID, list[2].SlotID)
	}
}
