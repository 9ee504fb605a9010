package aisleimport

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/codeshelf/Codeshelf-sub002/internal/lighting"
	"github.com/codeshelf/Codeshelf-sub002/internal/location"
)

const clonePrefix = "CLONE("

// parseClone reads a Clone(<name>) directive from a length field. isClone
// is false when the field does not mention clone at all; a field that does
// but cannot be read returns ErrCloneSourceUnresolved.
func parseClone(field string) (source string, isClone bool, err error) {
	f := strings.TrimSpace(field)
	upper := strings.ToUpper(f)
	if !strings.Contains(upper, "CLONE") {
		return "", false, nil
	}
	if !strings.HasPrefix(upper, clonePrefix) || !strings.HasSuffix(f, ")") {
		return "", true, fmt.Errorf("%w: unreadable directive %q", ErrCloneSourceUnresolved, f)
	}
	source = strings.TrimSpace(f[len(clonePrefix) : len(f)-1])
	if source == "" {
		return "", true, fmt.Errorf("%w: unreadable directive %q", ErrCloneSourceUnresolved, f)
	}
	return source, true, nil
}

// cloneSourceAisle resolves the aisle named by a clone directive on the
// row defining name.
func (in *Interpreter) cloneSourceAisle(name, source string) (*location.Location, error) {
	if strings.EqualFold(name, source) {
		return nil, fmt.Errorf("%w: aisle %s", ErrCloneRedefinitionConflict, name)
	}
	if in.failed[strings.ToUpper(source)] {
		return nil, fmt.Errorf("%w: aisle %s failed earlier in this import", ErrCloneSourceUnresolved, source)
	}
	src := in.facility.Aisle(source)
	if src == nil {
		return nil, fmt.Errorf("%w: aisle %s does not exist", ErrCloneSourceUnresolved, source)
	}
	return src, nil
}

// cloneSourceBay resolves the bay named by a clone directive within the
// current aisle.
func (in *Interpreter) cloneSourceBay(name, source string) (*location.Location, error) {
	if strings.EqualFold(name, source) {
		return nil, fmt.Errorf("%w: bay %s", ErrCloneRedefinitionConflict, name)
	}
	src := in.aisle.Child(source)
	if src == nil {
		return nil, fmt.Errorf("%w: bay %s does not exist in %s", ErrCloneSourceUnresolved, source, in.aisle.DomainID)
	}
	return src, nil
}

// cloneAisle gives target the bays, tiers and slots of source. The clone
// always takes source's orientation, depth and pattern; differing values
// on the row are reported and ignored. Bay offsets are not copied. Rows
// after the clone are discarded until the next Aisle row.
func (in *Interpreter) cloneAisle(line int, source, target *location.Location, row Row) error {
	pattern := source.Pattern
	if pattern == "" {
		pattern = lighting.InferPattern(source)
	}
	if p := strings.TrimSpace(row.ControllerLED); p != "" {
		if parsed, ok := location.ParsePattern(p); !ok || parsed != pattern {
			in.warn(WarnClonePatternIgnored, line, "aisle %s: clone keeps pattern %s of %s, ignoring %q",
				target.DomainID, pattern, source.DomainID, p)
		}
	}
	if o := strings.TrimSpace(row.OrientXorY); o != "" && location.ParseOrientation(o) != source.Orientation {
		in.warn(WarnCloneOrientIgnored, line, "aisle %s: clone keeps orientation %s of %s, ignoring %q",
			target.DomainID, source.Orientation, source.DomainID, o)
	}
	if d := strings.TrimSpace(row.DepthCm); d != "" {
		cm, err := strconv.ParseFloat(d, 64)
		if err != nil || math.Round(cm) != math.Round(source.DepthM*cmPerMetre) {
			in.warn(WarnCloneDepthIgnored, line, "aisle %s: clone keeps depth %.0f cm of %s, ignoring %q",
				target.DomainID, source.DepthM*cmPerMetre, source.DomainID, d)
		}
	}

	target.Pattern = pattern
	target.Orientation = source.Orientation
	target.DepthM = source.DepthM

	for _, srcBay := range source.SortedChildren() {
		bay, err := in.ensure(target, srcBay.DomainID)
		if err != nil {
			return err
		}
		location.SetBayLength(bay, srcBay.PickFaceLength())
		bay.LedOffset = 0
		bay.CloneSource = ""

		if _, err := in.cloneTiers(srcBay, bay); err != nil {
			return err
		}
		in.bayCount++
	}
	in.bay = nil
	in.state = stateCloned
	in.startDiscarding(line)

	in.logger.Info("aisle cloned", "aisle", target.DomainID, "source", source.DomainID, "bays", in.bayCount, "pattern", string(pattern))
	return nil
}

// cloneTiers gives target the tiers and slots of source with their
// declared LED counts and floor heights. It returns the number of tiers.
func (in *Interpreter) cloneTiers(source, target *location.Location) (int, error) {
	tiers := source.SortedChildren()
	for _, srcTier := range tiers {
		tier, err := in.ensure(target, srcTier.DomainID)
		if err != nil {
			return 0, err
		}
		slots := srcTier.SortedChildren()
		tier.LedCount = srcTier.LedCount
		tier.SlotCount = len(slots)
		tier.FloorM = srcTier.FloorM
		for _, srcSlot := range slots {
			if _, err := in.ensure(tier, srcSlot.DomainID); err != nil {
				return 0, err
			}
		}
	}
	return len(tiers), nil
}
