package location

import "fmt"

// LayoutAisle recomputes the geometry of every bay, tier and slot of an
// aisle from the bays' current pick-face lengths, then the aisle's own pick
// face end and vertices.
//
// Bays are chained in bay-number order starting at the aisle anchor. Tiers
// sit at (0, 0, floor) with their bay's pick face. Slots split the bay
// length evenly.
func LayoutAisle(aisle *Location) error {
	if aisle.Level != LevelAisle {
		return fmt.Errorf("%w: layout of %s", ErrLevelMismatch, aisle.Level)
	}
	o := aisle.Orientation
	depth := aisle.DepthM

	anchor := ZeroPoint()
	for _, bay := range aisle.SortedChildren() {
		length := bay.PickFaceLength()
		if length <= 0 {
			return fmt.Errorf("%w: bay %s", ErrNonPositiveLength, bay.DomainID)
		}
		bay.ApplyGeometry(ComputeGeometry(anchor, length, depth, o))
		for _, tier := range bay.children {
			layoutTier(tier, length, depth, o)
		}
		anchor = anchor.AddPoint(bay.PickFaceEnd)
	}

	length := alongAxis(anchor, o)
	g := ComputeGeometry(aisle.Anchor, length, depth, o)
	aisle.PickFaceEnd = g.PickFaceEnd
	aisle.SetVertices(g.Vertices)
	return nil
}

func layoutTier(tier *Location, bayLength, depth float64, o Orientation) {
	tier.ApplyGeometry(ComputeGeometry(NewPoint(PositionTypeParent, 0, 0, tier.FloorM), bayLength, depth, o))

	slots := tier.SortedChildren()
	if len(slots) == 0 {
		return
	}
	width := bayLength / float64(len(slots))
	anchor := ZeroPoint()
	for _, slot := range slots {
		slot.ApplyGeometry(ComputeGeometry(anchor, width, depth, o))
		anchor = anchor.AddPoint(slot.PickFaceEnd)
	}
}

// SetBayLength records a bay's declared length ahead of LayoutAisle.
func SetBayLength(bay *Location, lengthM float64) {
	bay.PickFaceEnd = pickFaceVector(lengthM, bay.AisleOrientation())
}
