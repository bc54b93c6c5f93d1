package slots

import (
	"sort"
	"time"

	"nailbar/blockdates"
	"nailbar/models"
	"nailbar/utils"
)

// SortByDateTime orders slots chronologically, ties broken by tech id so
// listings are stable across techs sharing a time.
func SortByDateTime(list []models.Slot) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Date != list[j].Date {
			return list[i].Date < list[j].Date
		}
		if list[i].Time != list[j].Time {
			return list[i].Time < list[j].Time
		}
		return list[i].TechID < list[j].TechID
	})
}

// IsPast reports whether the slot's start moment is before now.
func IsPast(s models.Slot, now time.Time) bool {
	m := utils.SlotMoment(s.Date, s.Time)
	if m.IsZero() {
		return true // malformed slots never surface as bookable
	}
	return m.Before(now)
}

// FilterBookable returns the slots a customer may pick: available status,
// not hidden, not in the past, not on a blocked date. Staleness here can
// only under-report availability, never offer a taken slot.
func FilterBookable(list []models.Slot, blocks []models.BlockedDate, now time.Time) []models.Slot {
	out := []models.Slot{}
	for _, s := range list {
		if s.Status != models.SlotAvailable || s.IsHidden {
			continue
		}
		if IsPast(s, now) {
			continue
		}
		if blockdates.AnyCovers(blocks, s.Date) {
			continue
		}
		out = append(out, s)
	}
	SortByDateTime(out)
	return out
}
