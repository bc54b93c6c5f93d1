package booking

import "errors"

// Allocation failures callers are expected to branch on. Conflicts mean
// "re-fetch availability and pick again", not "retry the same slot".
var (
	ErrSlotUnavailable              = errors.New("slot unavailable")
	ErrInsufficientConsecutiveSlots = errors.New("insufficient consecutive slots")
	ErrValidation                   = errors.New("validation error")
)
