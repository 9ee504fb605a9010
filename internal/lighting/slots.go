package lighting

import (
	"slices"

	"github.com/codeshelf/Codeshelf-sub002/internal/location"
)

const (
	// maxLitPerSlot is the width a slot's lit span is trimmed to once it
	// spans more than maxLitPerSlot+1 LEDs.
	maxLitPerSlot = 4

	// minGuardedSlotWidth is the smallest per-slot share that gets guards.
	minGuardedSlotWidth = 4

	// unguardedStripLength is a strip length whose slots are never guarded.
	unguardedStripLength = 32

	guardLow  = 2
	guardHigh = 1
)

// slotsInLedOrder returns the tier's slots sorted by number, reversed when
// the low LED numbers are away from the anchor.
func slotsInLedOrder(tier *location.Location) []*location.Location {
	slots := tier.SortedChildren()
	if !tier.LowerLedNearAnchor {
		slices.Reverse(slots)
	}
	return slots
}

// layoutSlots divides a tier range of n LEDs starting at first between
// the tier's slots. Each slot lights a short span off its low edge, kept
// clear of the slot edges by a guard of two below and one above when the
// slots are wide enough. Spans of six or more are trimmed to four.
func (a *Allocator) layoutSlots(tier *location.Location, first, n int) {
	slots := slotsInLedOrder(tier)
	count := len(slots)
	if count == 0 {
		return
	}
	last := first + n - 1

	perSlot := n / count
	remainder := n % count
	onePerSlot := count == n

	low, high := guardLow, guardHigh
	if onePerSlot || perSlot < minGuardedSlotWidth || n == unguardedStripLength {
		low, high = 0, 0
	}
	guardTotal := low + high
	if guardTotal == 0 {
		guardTotal = 1
	}

	lit := 1
	if !onePerSlot {
		lit = (n - 1 - count*guardTotal) / count
	}

	prevEnd := first - 1
	for idx, slot := range slots {
		i := idx + 1
		start := prevEnd + 1
		end := start + perSlot - 1
		if i < remainder {
			end++
		}

		slotFirst := start + low
		slotLast := slotFirst + lit
		if onePerSlot {
			slotLast = slotFirst
		}

		if slotLast-slotFirst > maxLitPerSlot {
			if i > count/2 {
				slotFirst = slotLast - (maxLitPerSlot - 1)
			} else {
				slotLast = slotFirst + (maxLitPerSlot - 1)
			}
		}
		if slotFirst > slotLast {
			a.logger.Warn("slot LED range inverted, swapping",
				"slot", slot.NominalLocationID(), "first", slotFirst, "last", slotLast)
			slotFirst, slotLast = slotLast, slotFirst
		}

		// More slots than LEDs: keep the overflow on the tier's last LED.
		slotFirst = min(max(slotFirst, first), last)
		slotLast = min(max(slotLast, first), last)

		slot.SetLeds(slotFirst, slotLast)
		slot.LowerLedNearAnchor = tier.LowerLedNearAnchor
		prevEnd = end
	}

	if perSlot == 0 {
		a.logger.Warn("tier has more slots than LEDs",
			"tier", tier.NominalLocationID(), "slots", count, "leds", n)
	}
}
