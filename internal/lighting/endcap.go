package lighting

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/codeshelf/Codeshelf-sub002/internal/location"
)

// SlotTierParams describes an explicit tier layout in which each slot is
// given its own start LED. Endcaps and odd shelving use it where the
// proportional layout does not match the hardware.
type SlotTierParams struct {
	StartLed           int   `json:"startLed"`
	TotalLedCount      int   `json:"totalLedCount"`
	LowerLedNearAnchor bool  `json:"lowerLedNearAnchor"`
	LedsPerSlot        int   `json:"ledsPerSlot"`
	SlotStarts         []int `json:"slotStarts"`
}

// SlotStartsString renders SlotStarts in the "45/54/64" form.
func (p SlotTierParams) SlotStartsString() string {
	parts := make([]string, len(p.SlotStarts))
	for i, s := range p.SlotStarts {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, "/")
}

// ParseSlotStarts parses a slash-separated list of slot start LEDs such as
// "45/54/64". Whitespace around entries is ignored.
func ParseSlotStarts(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidSlotStarts)
	}
	fields := strings.Split(s, "/")
	starts := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSlotStarts, f)
		}
		starts = append(starts, n)
	}
	return starts, nil
}

// SetSlotTierLeds sets tier to [startLed, startLed+totalLedCount-1] and
// gives each slot, in LED order, ledsPerSlot LEDs from its entry in
// slotStarts. The proportional slot layout is not used.
//
// If len(slotStarts) differs from the number of slots the tier range is
// still applied and ErrSlotCountMismatch is returned with the slots left
// as they were.
func SetSlotTierLeds(tier *location.Location, startLed, totalLedCount int, lowerLedNearAnchor bool, ledsPerSlot int, slotStarts []int) error {
	if tier == nil || tier.Level != location.LevelTier {
		return ErrNotTier
	}
	if startLed < 1 || totalLedCount < 1 || ledsPerSlot < 1 {
		return fmt.Errorf("%w: start %d count %d per slot %d", ErrInvalidLedRange, startLed, totalLedCount, ledsPerSlot)
	}

	tier.LowerLedNearAnchor = lowerLedNearAnchor
	tier.SetLeds(startLed, startLed+totalLedCount-1)

	slots := slotsInLedOrder(tier)
	if len(slots) != len(slotStarts) {
		return fmt.Errorf("%w: %d starts for %d slots in %s",
			ErrSlotCountMismatch, len(slotStarts), len(slots), tier.NominalLocationID())
	}
	for i, slot := range slots {
		slot.SetLeds(slotStarts[i], slotStarts[i]+ledsPerSlot-1)
		slot.LowerLedNearAnchor = lowerLedNearAnchor
	}
	return nil
}

// SlotTierLedParameters reports the SetSlotTierLeds arguments that would
// reproduce the tier's current layout. LedsPerSlot is taken from the first
// slot in LED order.
func SlotTierLedParameters(tier *location.Location) (SlotTierParams, error) {
	if tier == nil || tier.Level != location.LevelTier {
		return SlotTierParams{}, ErrNotTier
	}

	p := SlotTierParams{LowerLedNearAnchor: tier.LowerLedNearAnchor}
	if tier.LedsSet() && tier.FirstLed() > 0 {
		p.StartLed = tier.FirstLed()
		p.TotalLedCount = tier.LastLed() - tier.FirstLed() + 1
	}

	slots := slotsInLedOrder(tier)
	p.SlotStarts = make([]int, 0, len(slots))
	for i, slot := range slots {
		if i == 0 && slot.LedsSet() && slot.FirstLed() > 0 {
			p.LedsPerSlot = slot.LastLed() - slot.FirstLed() + 1
		}
		p.SlotStarts = append(p.SlotStarts, slot.FirstLed())
	}
	return p, nil
}
