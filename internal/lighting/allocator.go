package lighting

import (
	"slices"

	"github.com/codeshelf/Codeshelf-sub002/internal/location"
)

// Logger defines the logging interface used by the allocator.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Allocator assigns pick-face LED ranges to the tiers and slots of an aisle
// according to the aisle's lighting pattern.
//
// An Allocator holds no state between calls and may be shared.
type Allocator struct {
	logger Logger
}

// NewAllocator returns an allocator that logs nowhere until SetLogger is called.
func NewAllocator() *Allocator {
	return &Allocator{logger: noopLogger{}}
}

// SetLogger sets the logger for allocation events.
func (a *Allocator) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	a.logger = logger
}

// allocation is the running state of one Allocate call.
type allocation struct {
	aisle   string
	pattern location.Pattern
	next    int
	tiers   int
	leds    int
}

// tierRow is every tier sharing one tier number, indexed by bay position.
// A nil entry is a bay without that tier.
type tierRow []*location.Location

// Allocate recomputes the LED numbers and LowerLedNearAnchor flag of every
// tier and slot in aisle. Indicator ranges are not touched.
//
// An aisle with no pattern is treated as tierB1S1Side.
func (a *Allocator) Allocate(aisle *location.Location) error {
	if aisle == nil || aisle.Level != location.LevelAisle {
		return ErrNotAisle
	}

	pattern := aisle.Pattern
	if pattern == "" {
		pattern = location.PatternTierB1S1Side
	}
	bays := aisle.SortedChildren()
	rows := tierRows(bays)

	st := &allocation{aisle: aisle.DomainID, pattern: pattern}
	if pattern.IsZigzag() {
		a.allocateZigzag(st, rows)
	} else {
		a.allocateTiers(st, rows)
	}

	a.logger.Debug("allocated aisle LEDs",
		"aisle", st.aisle,
		"pattern", string(st.pattern),
		"bays", len(bays),
		"tiers", st.tiers,
		"leds", st.leds,
	)
	return nil
}

// allocateTiers numbers each tier level independently, restarting at 1.
func (a *Allocator) allocateTiers(st *allocation, rows []tierRow) {
	forward := st.pattern.StartsAtB1S1()
	for _, row := range rows {
		st.next = 1
		a.walkRow(st, row, forward)
	}
}

// allocateZigzag runs one counter through every tier row from the top
// row down, reversing direction on each row.
func (a *Allocator) allocateZigzag(st *allocation, rows []tierRow) {
	st.next = 1
	forward := st.pattern.StartsAtB1S1()
	for i := len(rows) - 1; i >= 0; i-- {
		a.walkRow(st, rows[i], forward)
		forward = !forward
	}
}

// walkRow assigns one row of tiers. forward runs B1 to Bn with the low
// LED numbers nearest each tier's anchor.
func (a *Allocator) walkRow(st *allocation, row tierRow, forward bool) {
	order := slices.Clone(row)
	if !forward {
		slices.Reverse(order)
	}
	for _, tier := range order {
		if tier == nil {
			continue
		}
		a.assignTier(st, tier, forward)
	}
}

// assignTier gives tier the next LedCount LEDs, shifted by its bay's
// offset, and lays out its slots inside that range.
func (a *Allocator) assignTier(st *allocation, tier *location.Location, lowerNearAnchor bool) {
	st.tiers++
	tier.LowerLedNearAnchor = lowerNearAnchor

	n := tier.LedCount
	if n <= 0 {
		tier.SetLeds(0, 0)
		for _, slot := range tier.Children() {
			slot.SetLeds(0, 0)
			slot.LowerLedNearAnchor = lowerNearAnchor
		}
		return
	}

	first := st.next
	st.next += n
	st.leds += n

	if bay := tier.Parent(); bay != nil && bay.LedOffset != 0 {
		if shifted := first + bay.LedOffset; shifted >= 1 {
			first = shifted
		} else {
			a.logger.Warn("bay LED offset ignored, range would start below 1",
				"aisle", st.aisle, "bay", bay.DomainID, "offset", bay.LedOffset)
		}
	}

	last := first + n - 1
	tier.SetLeds(first, last)
	a.logger.Debug("tier LEDs", "tier", tier.NominalLocationID(), "first", first, "last", last)

	a.layoutSlots(tier, first, n)
}

// tierRows groups the bays' tiers by tier number, T1 first. Row i holds
// the tiers numbered i+1; a tier whose name carries no number takes its
// position within the bay.
func tierRows(bays []*location.Location) []tierRow {
	var rows []tierRow
	for b, bay := range bays {
		for i, tier := range bay.SortedChildren() {
			n, ok := location.NameNumber(tier.DomainID)
			if !ok {
				n = i + 1
			}
			for len(rows) < n {
				rows = append(rows, make(tierRow, len(bays)))
			}
			rows[n-1][b] = tier
		}
	}
	return rows
}
