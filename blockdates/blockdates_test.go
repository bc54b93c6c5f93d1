package blockdates

import (
	"testing"

	"nailbar/models"
)

func TestCoversRange(t *testing.T) {
	b := models.BlockedDate{StartDate: "2026-07-01", EndDate: "2026-07-14", Scope: models.BlockScopeRange}

	if !Covers(b, "2026-07-01") || !Covers(b, "2026-07-14") {
		t.Error("range endpoints are inclusive")
	}
	if !Covers(b, "2026-07-07") {
		t.Error("mid-range date should be covered")
	}
	if Covers(b, "2026-06-30") || Covers(b, "2026-07-15") {
		t.Error("dates outside the range should not be covered")
	}
}

func TestCoversSingleDay(t *testing.T) {
	b := models.BlockedDate{StartDate: "2026-07-04", EndDate: "2026-07-04", Scope: models.BlockScopeSingle}

	if !Covers(b, "2026-07-04") {
		t.Error("single-day block should cover its date")
	}
	if Covers(b, "2026-07-05") {
		t.Error("single-day block should not cover other dates")
	}
}

func TestCoversEmptyEndDate(t *testing.T) {
	b := models.BlockedDate{StartDate: "2026-07-04", Scope: models.BlockScopeRange}
	if !Covers(b, "2026-07-04") {
		t.Error("empty end date should fall back to start date")
	}
	if Covers(b, "2026-07-05") {
		t.Error("empty end date block is one day wide")
	}
}

func TestAnyCovers(t *testing.T) {
	blocks := []models.BlockedDate{
		{StartDate: "2026-07-01", EndDate: "2026-07-03", Scope: models.BlockScopeRange},
		{StartDate: "2026-08-01", EndDate: "2026-08-01", Scope: models.BlockScopeSingle},
	}
	if !AnyCovers(blocks, "2026-08-01") {
		t.Error("second block should match")
	}
	if AnyCovers(blocks, "2026-07-20") {
		t.Error("uncovered date matched")
	}
	if AnyCovers(nil, "2026-07-20") {
		t.Error("empty set covers nothing")
	}
}
