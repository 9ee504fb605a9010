package lighting

import (
	"encoding/json"
	"fmt"

	"github.com/codeshelf/Codeshelf-sub002/internal/location"
)

// MessagePublisher sends retained messages. *mqtt.Client satisfies it.
type MessagePublisher interface {
	PublishRetained(topic string, payload []byte) error
}

// TopicBuilder names the LED topics. mqtt.Topics satisfies it.
type TopicBuilder interface {
	AisleLeds(facilityID, aisleID string) string
	Controller(facilityID, controllerID string) string
}

// SlotMap is one slot's entry in an AisleMap.
type SlotMap struct {
	Location string `json:"location"`
	Leds     string `json:"leds"`
	First    int    `json:"first"`
	Last     int    `json:"last"`
}

// TierMap is one tier's entry in an AisleMap.
type TierMap struct {
	Location           string    `json:"location"`
	Controller         string    `json:"controller,omitempty"`
	Channel            int       `json:"channel,omitempty"`
	First              int       `json:"first"`
	Last               int       `json:"last"`
	LowerLedNearAnchor bool      `json:"lowerLedNearAnchor"`
	Slots              []SlotMap `json:"slots"`
}

// AisleMap is the LED layout of one aisle as published to controllers.
type AisleMap struct {
	Facility  string    `json:"facility"`
	Aisle     string    `json:"aisle"`
	Pattern   string    `json:"pattern"`
	Indicator *LedRange `json:"indicator,omitempty"`
	TotalLeds int       `json:"totalLeds"`
	SlotCount int       `json:"slotCount"`
	Tiers     []TierMap `json:"tiers"`
}

// BuildAisleMap snapshots the LED layout of aisle, bays and tiers in
// numeric order.
func BuildAisleMap(facilityID string, aisle *location.Location) AisleMap {
	m := AisleMap{
		Facility: facilityID,
		Aisle:    aisle.DomainID,
		Pattern:  string(aisle.Pattern),
		Tiers:    []TierMap{},
	}
	if first, last := aisle.IndicatorLeds(); first > 0 {
		m.Indicator = &LedRange{First: first, Last: last}
	}

	for _, bay := range aisle.SortedChildren() {
		for _, tier := range bay.SortedChildren() {
			tm := TierMap{
				Location:           tier.NominalLocationID(),
				First:              tier.FirstLed(),
				Last:               tier.LastLed(),
				LowerLedNearAnchor: tier.LowerLedNearAnchor,
				Channel:            tier.EffectiveChannel(),
				Slots:              make([]SlotMap, 0, len(tier.Children())),
			}
			if c := tier.EffectiveController(); c != nil {
				tm.Controller = c.DomainID
			}
			m.TotalLeds += LocationRange(tier).Count()
			for _, slot := range tier.SortedChildren() {
				tm.Slots = append(tm.Slots, SlotMap{
					Location: slot.NominalLocationID(),
					Leds:     LocationRange(slot).String(),
					First:    slot.FirstLed(),
					Last:     slot.LastLed(),
				})
				m.SlotCount++
			}
			m.Tiers = append(m.Tiers, tm)
		}
	}
	return m
}

// ControllerTier is one tier driven by a controller.
type ControllerTier struct {
	Location string `json:"location"`
	Channel  int    `json:"channel"`
	Leds     string `json:"leds"`
}

// ControllerMap lists every tier that resolves to one controller.
type ControllerMap struct {
	Facility   string           `json:"facility"`
	Controller string           `json:"controller"`
	DeviceGUID string           `json:"deviceGuid"`
	Network    string           `json:"network,omitempty"`
	Tiers      []ControllerTier `json:"tiers"`
}

// BuildControllerMap collects the tiers of f whose effective controller is c.
func BuildControllerMap(f *location.Facility, c *location.Controller) ControllerMap {
	m := ControllerMap{
		Facility:   f.DomainID,
		Controller: c.DomainID,
		DeviceGUID: c.DeviceGUID,
		Network:    c.Network,
		Tiers:      []ControllerTier{},
	}
	for _, aisle := range f.Aisles() {
		for _, bay := range aisle.SortedChildren() {
			for _, tier := range bay.SortedChildren() {
				if tier.EffectiveControllerID() != c.ID {
					continue
				}
				m.Tiers = append(m.Tiers, ControllerTier{
					Location: tier.NominalLocationID(),
					Channel:  tier.EffectiveChannel(),
					Leds:     LocationRange(tier).String(),
				})
			}
		}
	}
	return m
}

// Publisher sends LED layouts as retained messages so controllers pick up
// the current map when they connect.
type Publisher struct {
	client MessagePublisher
	topics TopicBuilder
	logger Logger
}

// NewPublisher returns a publisher writing through client.
func NewPublisher(client MessagePublisher, topics TopicBuilder) *Publisher {
	return &Publisher{client: client, topics: topics, logger: noopLogger{}}
}

// SetLogger sets the logger for publish events.
func (p *Publisher) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	p.logger = logger
}

// PublishAisle publishes the LED map of one aisle.
func (p *Publisher) PublishAisle(facilityID string, aisle *location.Location) error {
	return p.PublishAisleMap(BuildAisleMap(facilityID, aisle))
}

// PublishAisleMap publishes a map built earlier with BuildAisleMap.
func (p *Publisher) PublishAisleMap(m AisleMap) error {
	if err := p.publish(p.topics.AisleLeds(m.Facility, m.Aisle), m); err != nil {
		return err
	}
	p.logger.Debug("published aisle LED map", "facility", m.Facility, "aisle", m.Aisle, "tiers", len(m.Tiers))
	return nil
}

// PublishController publishes the tiers assigned to controller c.
func (p *Publisher) PublishController(f *location.Facility, c *location.Controller) error {
	return p.PublishControllerMap(BuildControllerMap(f, c))
}

// PublishControllerMap publishes a map built earlier with BuildControllerMap.
func (p *Publisher) PublishControllerMap(m ControllerMap) error {
	return p.publish(p.topics.Controller(m.Facility, m.Controller), m)
}

func (p *Publisher) publish(topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", topic, err)
	}
	if err := p.client.PublishRetained(topic, payload); err != nil {
		p.logger.Warn("LED map publish failed", "topic", topic, "error", err)
		return fmt.Errorf("publishing %s: %w", topic, err)
	}
	return nil
}
