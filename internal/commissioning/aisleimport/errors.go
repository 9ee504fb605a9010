package aisleimport

import (
	"errors"
	"fmt"
)

// Sentinel errors for aisle definition imports. Row-level errors never
// abort an import; they are reported as Warnings carrying the code from
// warningCode.
var (
	// ErrStructuralSequence indicates a row kind or name out of order,
	// such as a Tier before any Bay or B3 directly after B1.
	ErrStructuralSequence = errors.New("aisleimport: row out of sequence")

	// ErrUnknownRowKind indicates a binType other than Aisle, Bay or Tier.
	ErrUnknownRowKind = errors.New("aisleimport: unknown row kind")

	// ErrDuplicateSiblingName indicates a name defined twice under one parent.
	ErrDuplicateSiblingName = errors.New("aisleimport: duplicate sibling name")

	// ErrNumericParse indicates a numeric field that is present but unreadable.
	ErrNumericParse = errors.New("aisleimport: numeric field not parseable")

	// ErrValueOutOfRange indicates a readable number outside its allowed range.
	ErrValueOutOfRange = errors.New("aisleimport: value out of range")

	// ErrCloneSourceUnresolved indicates a clone directive that could not be
	// read, names nothing, or names a location whose definition failed.
	ErrCloneSourceUnresolved = errors.New("aisleimport: clone source unresolved")

	// ErrCloneRedefinitionConflict indicates a row that defines and clones
	// the same name.
	ErrCloneRedefinitionConflict = errors.New("aisleimport: cannot define and clone the same name")

	// ErrInvalidAisleName indicates an aisle name not of the form A<n>.
	ErrInvalidAisleName = errors.New("aisleimport: invalid aisle name")

	// ErrMissingHeader indicates CSV input without a binType column.
	ErrMissingHeader = errors.New("aisleimport: missing binType header")

	// ErrFileTooLarge indicates input over MaxImportSize.
	ErrFileTooLarge = errors.New("aisleimport: input exceeds maximum size")

	// ErrNoRows indicates input with a header but no rows.
	ErrNoRows = errors.New("aisleimport: no rows")
)

// Warning codes. Codes for row errors truncate the current aisle; the rest
// are informational.
const (
	WarnStructuralSequence  = "STRUCTURAL_SEQUENCE"
	WarnUnknownRowKind      = "UNKNOWN_ROW_KIND"
	WarnDuplicateSibling    = "DUPLICATE_SIBLING"
	WarnNumericParse        = "NUMERIC_PARSE"
	WarnValueOutOfRange     = "VALUE_OUT_OF_RANGE"
	WarnCloneUnresolved     = "CLONE_UNRESOLVED"
	WarnCloneRedefinition   = "CLONE_REDEFINITION"
	WarnInvalidAisleName    = "INVALID_AISLE_NAME"
	WarnLayoutFailed        = "LAYOUT_FAILED"
	WarnImportError         = "IMPORT_ERROR"
	WarnMissingAnchor       = "MISSING_ANCHOR"
	WarnMissingDepth        = "MISSING_DEPTH"
	WarnDefaultBayLength    = "DEFAULT_BAY_LENGTH"
	WarnLedCountClamped     = "LED_COUNT_CLAMPED"
	WarnInvalidBayOffset    = "INVALID_BAY_OFFSET"
	WarnUnknownPattern      = "UNKNOWN_PATTERN"
	WarnClonePatternIgnored = "CLONE_PATTERN_IGNORED"
	WarnCloneOrientIgnored  = "CLONE_ORIENTATION_IGNORED"
	WarnCloneDepthIgnored   = "CLONE_DEPTH_IGNORED"
	WarnRowsDiscarded       = "ROWS_DISCARDED"
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrStructuralSequence, WarnStructuralSequence},
	{ErrUnknownRowKind, WarnUnknownRowKind},
	{ErrDuplicateSiblingName, WarnDuplicateSibling},
	{ErrNumericParse, WarnNumericParse},
	{ErrValueOutOfRange, WarnValueOutOfRange},
	{ErrCloneSourceUnresolved, WarnCloneUnresolved},
	{ErrCloneRedefinitionConflict, WarnCloneRedefinition},
	{ErrInvalidAisleName, WarnInvalidAisleName},
}

// warningCode maps a row error to its warning code.
func warningCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return WarnImportError
}

// atRow prefixes err with the source row.
func atRow(line int, err error) error {
	return fmt.Errorf("row %d: %w", line, err)
}
