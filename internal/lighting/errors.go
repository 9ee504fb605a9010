package lighting

import "errors"

// Sentinel errors for LED allocation and overrides.
var (
	// ErrNotAisle is returned when Allocate is given anything but an aisle.
	ErrNotAisle = errors.New("lighting: location is not an aisle")

	// ErrNotTier is returned by tier-level operations given another level.
	ErrNotTier = errors.New("lighting: location is not a tier")

	// ErrSlotCountMismatch is returned by SetSlotTierLeds when the number of
	// slot starts differs from the tier's slot count. The tier range has
	// already been applied when this is returned.
	ErrSlotCountMismatch = errors.New("lighting: slot start count does not match slots in tier")

	// ErrInvalidLedRange is returned for a range below 1 or with first > last.
	ErrInvalidLedRange = errors.New("lighting: invalid LED range")

	// ErrInvalidSlotStarts is returned when a slot start list cannot be parsed.
	ErrInvalidSlotStarts = errors.New("lighting: invalid slot start list")
)
