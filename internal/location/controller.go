package location

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Controller is an LED controller that drives one or more strips.
type Controller struct {
	ID         string `json:"id"`
	DomainID   string `json:"domain_id"`
	DeviceGUID string `json:"device_guid"`
	Network    string `json:"network"`
}

// ScopeAisle applies a tier's controller assignment to every tier of the
// same name in its aisle.
const ScopeAisle = "aisle"

// placeholderControllerBase is the highest placeholder controller number.
// Placeholders count down from it.
const placeholderControllerBase = 99999999

// AddController registers a controller. Domain IDs are unique per facility.
func (f *Facility) AddController(domainID, deviceGUID string) (*Controller, error) {
	if f.Controller(domainID) != nil {
		return nil, fmt.Errorf("%w: controller %s", ErrDuplicateDomainID, domainID)
	}
	c := &Controller{
		ID:         uuid.NewString(),
		DomainID:   domainID,
		DeviceGUID: deviceGUID,
		Network:    f.Network,
	}
	f.controllers = append(f.controllers, c)
	return c, nil
}

// Controller finds a controller by ID or domain ID.
func (f *Facility) Controller(idOrDomainID string) *Controller {
	for _, c := range f.controllers {
		if c.ID == idOrDomainID || strings.EqualFold(c.DomainID, idOrDomainID) {
			return c
		}
	}
	return nil
}

// Controllers returns every registered controller.
func (f *Facility) Controllers() []*Controller {
	return f.controllers
}

// EnsureLedControllers creates placeholder controllers so that there is at
// least one per tier whose LEDs start at 1, which is one physical strip.
// Placeholder domain IDs count down from 99999999 and their GUIDs are the
// domain ID prefixed with "0x". It returns the controllers it created.
func (f *Facility) EnsureLedControllers() []*Controller {
	strips := 0
	f.Walk(func(l *Location) {
		if l.Level == LevelTier && l.ledsSet && l.firstLed == 1 {
			strips++
		}
	})

	var created []*Controller
	for next := len(f.controllers); len(f.controllers) < strips; next++ {
		id := strconv.Itoa(placeholderControllerBase - next)
		c, err := f.AddController(id, "0x"+id)
		if err != nil {
			continue
		}
		created = append(created, c)
	}
	return created
}

// SetControllerChannel assigns an LED controller and channel.
//
// On an aisle the assignment is made at aisle level and every tier and slot
// override below it is cleared. On a tier with scope ScopeAisle every tier
// of the same name in the aisle is assigned; with an empty scope only loc
// is. Tier assignments clear their slots' overrides. A channel below 1 is
// treated as 1.
func (f *Facility) SetControllerChannel(loc *Location, controllerID string, channel int, scope string) error {
	c := f.Controller(controllerID)
	if c == nil {
		return fmt.Errorf("%w: %s", ErrControllerNotFound, controllerID)
	}
	if channel < 1 {
		channel = 1
	}
	if scope != "" && !strings.EqualFold(scope, ScopeAisle) {
		return fmt.Errorf("%w: %q", ErrUnknownScope, scope)
	}

	switch loc.Level {
	case LevelAisle:
		loc.Walk(func(d *Location) {
			d.ControllerID, d.Channel = "", 0
		})
		loc.ControllerID, loc.Channel = c.ID, channel
	case LevelTier:
		targets := []*Location{loc}
		if scope != "" {
			targets = sameNamedTiers(loc)
		}
		for _, t := range targets {
			t.Walk(func(d *Location) {
				d.ControllerID, d.Channel = "", 0
			})
			t.ControllerID, t.Channel = c.ID, channel
		}
	default:
		return fmt.Errorf("%w: %s", ErrControllerLevel, loc.Level)
	}
	return nil
}

func sameNamedTiers(tier *Location) []*Location {
	aisle := tier.Ancestor(LevelAisle)
	if aisle == nil {
		return []*Location{tier}
	}
	var out []*Location
	for _, bay := range aisle.SortedChildren() {
		if t := bay.Child(tier.DomainID); t != nil {
			out = append(out, t)
		}
	}
	return out
}

// EffectiveControllerID returns the controller assigned to l or its nearest
// ancestor, or "" when none is.
func (l *Location) EffectiveControllerID() string {
	for loc := l; loc != nil; loc = loc.parent {
		if loc.ControllerID != "" {
			return loc.ControllerID
		}
	}
	return ""
}

// EffectiveChannel returns the channel assigned to l or its nearest
// ancestor, or 0 when none is.
func (l *Location) EffectiveChannel() int {
	for loc := l; loc != nil; loc = loc.parent {
		if loc.Channel != 0 {
			return loc.Channel
		}
	}
	return 0
}

// EffectiveController resolves EffectiveControllerID against the facility.
func (l *Location) EffectiveController() *Controller {
	f := l.Facility()
	id := l.EffectiveControllerID()
	if f == nil || id == "" {
		return nil
	}
	return f.Controller(id)
}

// LedControllerUI returns the controller domain ID, in parentheses when it
// is inherited.
func (l *Location) LedControllerUI() string {
	c := l.EffectiveController()
	if c == nil {
		return ""
	}
	if l.ControllerID != "" {
		return c.DomainID
	}
	return "(" + c.DomainID + ")"
}

// LedChannelUI returns the channel, in parentheses when it is inherited.
func (l *Location) LedChannelUI() string {
	if l.Channel != 0 {
		return strconv.Itoa(l.Channel)
	}
	if ch := l.EffectiveChannel(); ch != 0 {
		return "(" + strconv.Itoa(ch) + ")"
	}
	return ""
}
