package aisleimport

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/codeshelf/Codeshelf-sub002/internal/lighting"
	"github.com/codeshelf/Codeshelf-sub002/internal/location"
)

// Logger defines the logging interface used by the interpreter.
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

const cmPerMetre = 100.0

// state is where the interpreter is within the row sequence.
type state int

const (
	stateExpectingAisle state = iota
	stateInAisle
	stateInBay
	// stateCloned follows an aisle clone. The clone is the whole aisle, so
	// Bay and Tier rows are discarded until the next Aisle row.
	stateCloned
	// stateSkipBay follows a rejected bay clone. Its Tier rows are
	// discarded until the next Bay or Aisle row.
	stateSkipBay
	// stateError discards rows until the next Aisle row.
	stateError
)

func (s state) String() string {
	switch s {
	case stateExpectingAisle:
		return "expecting-aisle"
	case stateInAisle:
		return "in-aisle"
	case stateInBay:
		return "in-bay"
	case stateCloned:
		return "cloned"
	case stateSkipBay:
		return "skip-bay"
	case stateError:
		return "error"
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}

// Interpreter applies aisle definition rows to a facility, one row at a
// time. Structure is created or updated in place; each aisle is laid out
// and its LEDs allocated once its rows end.
//
// An Interpreter is not safe for concurrent use. Run it inside
// location.Store.Update.
type Interpreter struct {
	facility  *location.Facility
	allocator *lighting.Allocator
	limits    Limits
	logger    Logger

	state     state
	aisleName string
	aisle     *location.Location
	bay       *location.Location
	bayCount  int
	tierCount int
	discarded int
	// discardLine is the row that started discarding in the current aisle.
	discardLine int

	// definedHere holds the locations named since the current Aisle row.
	definedHere map[*location.Location]bool
	// failed holds the upper-cased names of aisles whose rows failed.
	failed   map[string]bool
	imported []*location.Location
	tracker  *tracker
	result   *ImportResult
}

// NewInterpreter returns an interpreter that writes into f. Zero fields of
// limits take their DefaultLimits value.
func NewInterpreter(f *location.Facility, limits Limits) *Interpreter {
	return &Interpreter{
		facility:  f,
		allocator: lighting.NewAllocator(),
		limits:    limits.withDefaults(),
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for row events. It is also given to the
// LED allocator.
func (in *Interpreter) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	in.logger = logger
	in.allocator.SetLogger(logger)
}

// Interpret applies rows in order and returns what changed. Problems in
// one aisle are reported as warnings and never stop the rows of the next.
func (in *Interpreter) Interpret(rows []Row) *ImportResult {
	start := time.Now()
	in.reset()

	for i, row := range rows {
		line := row.Line
		if line == 0 {
			line = i + 1
		}
		in.result.Rows++
		in.step(line, row)
	}
	in.finishAisle()

	in.result.Retained = in.tracker.retained(in.imported)
	in.result.Duration = time.Since(start)

	in.logger.Info("aisle rows interpreted",
		"facility", in.facility.DomainID,
		"rows", in.result.Rows,
		"created", in.result.TotalCreated(),
		"updated", in.result.TotalUpdated(),
		"warnings", len(in.result.Warnings),
		"aisles", len(in.result.Aisles),
	)
	return in.result
}

func (in *Interpreter) reset() {
	in.result = newImportResult(in.facility.DomainID)
	in.tracker = newTracker(in.result)
	in.failed = make(map[string]bool)
	in.definedHere = make(map[*location.Location]bool)
	in.imported = nil
	in.state = stateExpectingAisle
	in.aisle, in.bay, in.aisleName = nil, nil, ""
	in.bayCount, in.tierCount = 0, 0
	in.discarded, in.discardLine = 0, 0
}

// step dispatches one row on its kind.
func (in *Interpreter) step(line int, row Row) {
	kind := row.Kind()
	if in.discards(kind) {
		in.result.Discarded++
		in.discarded++
		return
	}

	in.logger.Info("aisle file row", "row", line, "kind", row.BinType, "id", row.Name(), "state", in.state.String())

	var err error
	switch kind {
	case KindAisle:
		in.finishAisle()
		err = in.aisleRow(line, row)
	case KindBay:
		err = in.bayRow(line, row)
	case KindTier:
		err = in.tierRow(line, row)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownRowKind, row.BinType)
	}
	if err != nil {
		in.fail(line, atRow(line, err))
	}
}

// discards reports whether a row of kind is dropped in the current state.
func (in *Interpreter) discards(kind string) bool {
	switch in.state {
	case stateError, stateCloned:
		return kind != KindAisle
	case stateSkipBay:
		return kind == KindTier
	}
	return false
}

// startDiscarding records line as the first discarding row of the aisle
// unless an earlier one is already known.
func (in *Interpreter) startDiscarding(line int) {
	if in.discardLine == 0 {
		in.discardLine = line
	}
}

// fail abandons the rest of the current aisle.
func (in *Interpreter) fail(line int, err error) {
	in.warn(warningCode(err), line, "%v", err)
	in.logger.Warn("aisle rows abandoned", "row", line, "aisle", in.aisleName, "error", err)

	if in.aisleName != "" {
		key := strings.ToUpper(in.aisleName)
		if !in.failed[key] {
			in.failed[key] = true
			in.result.Failed = append(in.result.Failed, in.aisleName)
		}
	}
	in.state = stateError
	in.discardLine = line
}

// warn records a warning against the current aisle.
func (in *Interpreter) warn(code string, line int, format string, args ...any) {
	in.result.Warnings = append(in.result.Warnings, Warning{
		Code:    code,
		Row:     line,
		Aisle:   in.aisleName,
		Message: fmt.Sprintf(format, args...),
	})
}

// finishAisle closes the current aisle, finalizing it unless it failed.
func (in *Interpreter) finishAisle() {
	if in.discarded > 0 {
		reason := "after error"
		switch in.state {
		case stateCloned:
			reason = "after aisle clone"
		case stateSkipBay, stateInAisle, stateInBay:
			reason = "after rejected bay clone"
		}
		in.warn(WarnRowsDiscarded, in.discardLine, "%d rows discarded %s", in.discarded, reason)
	}
	in.discarded, in.discardLine = 0, 0
	if in.aisle != nil && in.state != stateError {
		in.finalize(in.aisle)
	}
	in.aisle, in.bay, in.aisleName = nil, nil, ""
	in.bayCount, in.tierCount = 0, 0
	in.state = stateExpectingAisle
}

// finalize lays out the aisle, allocates its LEDs and refreshes path
// positions when the aisle is on a path.
func (in *Interpreter) finalize(aisle *location.Location) {
	if err := location.LayoutAisle(aisle); err != nil {
		in.warn(WarnLayoutFailed, 0, "aisle %s: %v", aisle.DomainID, err)
		return
	}
	if err := in.allocator.Allocate(aisle); err != nil {
		in.warn(WarnLayoutFailed, 0, "aisle %s: %v", aisle.DomainID, err)
		return
	}
	if seg := aisle.PathSegment(); seg != nil {
		in.facility.RecomputePathDistances(seg.Path())
	}
	in.result.Aisles = append(in.result.Aisles, aisle.DomainID)
	in.logger.Info("aisle finalized", "aisle", aisle.DomainID, "bays", len(aisle.Children()), "pattern", string(aisle.Pattern))
}

func (in *Interpreter) aisleRow(line int, row Row) error {
	name := row.Name()
	in.aisleName = name
	in.definedHere = make(map[*location.Location]bool)

	if err := validateAisleName(name); err != nil {
		return err
	}

	sourceName, isClone, err := parseClone(row.LengthCm)
	if err != nil {
		return err
	}
	var source *location.Location
	if isClone {
		if source, err = in.cloneSourceAisle(name, sourceName); err != nil {
			return err
		}
	}

	anchorX, err := in.optionalFloat(line, "anchorX", row.AnchorX, WarnMissingAnchor)
	if err != nil {
		return err
	}
	anchorY, err := in.optionalFloat(line, "anchorY", row.AnchorY, WarnMissingAnchor)
	if err != nil {
		return err
	}

	var depthCm float64
	pattern := location.PatternTierB1S1Side
	if !isClone {
		if depthCm, err = in.optionalFloat(line, "depthCm", row.DepthCm, WarnMissingDepth); err != nil {
			return err
		}
		if p := strings.TrimSpace(row.ControllerLED); p != "" {
			parsed, ok := location.ParsePattern(p)
			if ok {
				pattern = parsed
			} else {
				in.warn(WarnUnknownPattern, line, "aisle %s: unknown pattern %q, using %s", name, p, pattern)
			}
		}
	}

	aisle, err := in.ensure(in.facility.Location, name)
	if err != nil {
		return err
	}
	aisle.Anchor = location.NewPoint(location.PositionTypeParent, anchorX, anchorY, 0)

	in.aisle, in.bay = aisle, nil
	in.bayCount, in.tierCount = 0, 0
	in.state = stateInAisle
	in.markImported(aisle)

	if isClone {
		return in.cloneAisle(line, source, aisle, row)
	}
	aisle.Orientation = location.ParseOrientation(row.OrientXorY)
	aisle.DepthM = depthCm / cmPerMetre
	aisle.Pattern = pattern
	return nil
}

func (in *Interpreter) bayRow(line int, row Row) error {
	name := row.Name()
	if in.aisle == nil {
		return fmt.Errorf("%w: bay %s before any aisle", ErrStructuralSequence, name)
	}

	sourceName, isClone, err := parseClone(row.LengthCm)
	if err != nil {
		in.skipRow(line, err)
		return nil
	}
	var source *location.Location
	if isClone {
		if source, err = in.cloneSourceBay(name, sourceName); err != nil {
			in.skipRow(line, err)
			return nil
		}
	}

	domainID, err := in.nextName(in.aisle, location.LevelBay, in.bayCount, name)
	if err != nil {
		return err
	}

	var lengthM float64
	if source != nil {
		lengthM = source.PickFaceLength()
	} else {
		cm, ok, err := parseFloat(row.LengthCm)
		if err != nil {
			return fmt.Errorf("%w: bay %s lengthCm %q", ErrNumericParse, name, row.LengthCm)
		}
		if !ok {
			cm = float64(in.limits.DefaultBayLengthCm)
			in.warn(WarnDefaultBayLength, line, "bay %s: no length, using %d cm", name, in.limits.DefaultBayLengthCm)
		}
		if cm <= 0 {
			return fmt.Errorf("%w: bay %s length %v cm", ErrValueOutOfRange, name, cm)
		}
		lengthM = cm / cmPerMetre
	}

	offset := 0
	if v := strings.TrimSpace(row.ControllerLED); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			in.warn(WarnInvalidBayOffset, line, "bay %s: offset %q is not a number, using 0", name, v)
		} else {
			offset = n
		}
	}

	bay, err := in.ensure(in.aisle, domainID)
	if err != nil {
		return err
	}
	location.SetBayLength(bay, lengthM)
	bay.LedOffset = offset
	bay.CloneSource = ""

	in.bay = bay
	in.bayCount++
	in.tierCount = 0
	in.state = stateInBay

	if source != nil {
		bay.CloneSource = source.DomainID
		n, err := in.cloneTiers(source, bay)
		if err != nil {
			return err
		}
		in.tierCount = n
		in.logger.Info("bay cloned", "aisle", in.aisle.DomainID, "bay", bay.DomainID, "source", source.DomainID, "tiers", n)
	}
	return nil
}

func (in *Interpreter) tierRow(line int, row Row) error {
	name := row.Name()
	if in.bay == nil {
		return fmt.Errorf("%w: tier %s before any bay", ErrStructuralSequence, name)
	}

	domainID, err := in.nextName(in.bay, location.LevelTier, in.tierCount, name)
	if err != nil {
		return err
	}

	slots, ok, err := parseInt(row.SlotsInTier)
	if err != nil {
		return fmt.Errorf("%w: tier %s slotsInTier %q", ErrNumericParse, name, row.SlotsInTier)
	}
	if !ok {
		slots = in.limits.DefaultSlotCount
	}
	if slots < 0 || slots > in.limits.MaxSlotsPerTier {
		return fmt.Errorf("%w: tier %s has %d slots, allowed 0 to %d", ErrValueOutOfRange, name, slots, in.limits.MaxSlotsPerTier)
	}

	leds, _, err := parseInt(row.LedCountInTier)
	if err != nil {
		return fmt.Errorf("%w: tier %s ledCountInTier %q", ErrNumericParse, name, row.LedCountInTier)
	}
	if clamped := min(max(leds, 0), in.limits.MaxLedsPerTier); clamped != leds {
		in.warn(WarnLedCountClamped, line, "tier %s: LED count %d clamped to %d", name, leds, clamped)
		leds = clamped
	}

	floorCm, _, err := parseFloat(row.TierFloorCm)
	if err != nil {
		return fmt.Errorf("%w: tier %s tierFloorCm %q", ErrNumericParse, name, row.TierFloorCm)
	}

	tier, err := in.ensure(in.bay, domainID)
	if err != nil {
		return err
	}
	tier.SlotCount = slots
	tier.LedCount = leds
	tier.FloorM = floorCm / cmPerMetre
	for s := 1; s <= slots; s++ {
		if _, err := in.ensure(tier, location.OrdinalName(location.LevelSlot, s)); err != nil {
			return err
		}
	}
	in.tierCount++
	return nil
}

// skipRow reports a rejected bay clone. The row and the Tier rows after it
// are skipped; the aisle continues at the next Bay row.
func (in *Interpreter) skipRow(line int, err error) {
	err = atRow(line, err)
	in.warn(warningCode(err), line, "%v", err)
	in.logger.Warn("bay clone skipped", "row", line, "aisle", in.aisleName, "error", err)
	in.bay = nil
	in.state = stateSkipBay
	in.startDiscarding(line)
}

// ensure finds or creates a child and records it as defined by this run.
func (in *Interpreter) ensure(parent *location.Location, name string) (*location.Location, error) {
	child, err := in.tracker.ensure(parent, name)
	if err != nil {
		return nil, err
	}
	in.definedHere[child] = true
	return child, nil
}

// nextName checks that name is the next ordinal under parent and returns
// its canonical form.
func (in *Interpreter) nextName(parent *location.Location, level location.Level, count int, name string) (string, error) {
	if c := parent.Child(name); c != nil && in.definedHere[c] {
		return "", fmt.Errorf("%w: %s %s already defined under %s", ErrDuplicateSiblingName, level, name, parent.DomainID)
	}
	expected := location.OrdinalName(level, count+1)
	if !strings.EqualFold(name, expected) {
		return "", fmt.Errorf("%w: %s %s should be %s", ErrStructuralSequence, level, name, expected)
	}
	return expected, nil
}

func (in *Interpreter) markImported(aisle *location.Location) {
	for _, a := range in.imported {
		if a == aisle {
			return
		}
	}
	in.imported = append(in.imported, aisle)
}

// optionalFloat parses an optional number, warning with code when it is
// empty.
func (in *Interpreter) optionalFloat(line int, field, value, code string) (float64, error) {
	v, ok, err := parseFloat(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrNumericParse, field, value)
	}
	if !ok {
		in.warn(code, line, "aisle %s: no %s, using 0", in.aisleName, field)
	}
	return v, nil
}

// validateAisleName requires A followed by a positive number, such as A14.
func validateAisleName(name string) error {
	if len(name) < 2 || name[0] != 'A' {
		return fmt.Errorf("%w: %q should be similar to A14", ErrInvalidAisleName, name)
	}
	if n, err := strconv.Atoi(name[1:]); err != nil || n < 1 {
		return fmt.Errorf("%w: %q should be similar to A14", ErrInvalidAisleName, name)
	}
	return nil
}

// parseFloat reads an optional number. ok is false for an empty field.
func parseFloat(value string) (v float64, ok bool, err error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, strconv.ErrSyntax
	}
	return v, true, nil
}

// parseInt reads an optional integer. ok is false for an empty field.
func parseInt(value string) (v int, ok bool, err error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false, nil
	}
	v, err = strconv.Atoi(value)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}
