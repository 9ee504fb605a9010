package location

import "errors"

var (
	// ErrFacilityNotFound is returned when no facility has the requested domain ID.
	ErrFacilityNotFound = errors.New("location: facility not found")

	// ErrNotFound is returned when a dotted location ID does not resolve.
	ErrNotFound = errors.New("location: not found")

	// ErrLevelMismatch is returned when a location is attached or used at the wrong level.
	ErrLevelMismatch = errors.New("location: level mismatch")

	// ErrDuplicateDomainID is returned when a sibling already uses the domain ID.
	ErrDuplicateDomainID = errors.New("location: duplicate domain id")

	// ErrNonPositiveLength is returned when a bay has no length to lay out.
	ErrNonPositiveLength = errors.New("location: length must be positive")

	// ErrInvalidLedRange is returned for negative, half-set or inverted LED ranges.
	ErrInvalidLedRange = errors.New("location: invalid led range")

	// ErrIndicatorLevel is returned when indicator LEDs are set on a facility or slot.
	ErrIndicatorLevel = errors.New("location: indicator leds are only valid on aisle, bay or tier")

	// ErrControllerNotFound is returned when a controller ID is not registered.
	ErrControllerNotFound = errors.New("location: controller not found")

	// ErrControllerLevel is returned when a controller is assigned to anything but an aisle or tier.
	ErrControllerLevel = errors.New("location: controller can only be set on aisle or tier")

	// ErrUnknownScope is returned for a controller scope other than "" or "aisle".
	ErrUnknownScope = errors.New("location: unknown controller scope")

	// ErrInvalidDomainID is returned when a name fails validation.
	ErrInvalidDomainID = errors.New("location: invalid domain id")

	// ErrEmptyAlias is returned when an alias name is blank.
	ErrEmptyAlias = errors.New("location: alias is empty")

	// ErrPathNotFound is returned when a path ID does not resolve.
	ErrPathNotFound = errors.New("location: path not found")
)
