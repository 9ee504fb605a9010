package lighting

import (
	"fmt"

	"github.com/codeshelf/Codeshelf-sub002/internal/location"
)

// OffsetTierLeds shifts a tier's range and its slots' ranges by offset.
//
// A resulting tier range that starts below 1 is rejected and nothing
// changes. Slots whose shifted range would be unusable are left alone.
// A tier without LEDs is a no-op.
func OffsetTierLeds(tier *location.Location, offset int) error {
	if tier == nil || tier.Level != location.LevelTier {
		return ErrNotTier
	}
	if offset == 0 || !tier.LedsSet() || tier.FirstLed() == 0 {
		return nil
	}

	first, last := tier.FirstLed()+offset, tier.LastLed()+offset
	if first < 1 || first > last {
		return fmt.Errorf("%w: %s would become %d>%d", ErrInvalidLedRange, tier.NominalLocationID(), first, last)
	}
	tier.SetLeds(first, last)

	for _, slot := range tier.Children() {
		if !slot.LedsSet() || slot.FirstLed() <= 0 {
			continue
		}
		sf, sl := slot.FirstLed()+offset, slot.LastLed()+offset
		if sf > sl || sf <= 0 {
			continue
		}
		slot.SetLeds(sf, sl)
	}
	return nil
}
