package mqtt

import (
	"fmt"
	"strings"
)

// DefaultTopicPrefix is used when the configuration leaves topic_prefix empty.
const DefaultTopicPrefix = "codeshelf"

// Topics builds Codeshelf MQTT topic names under a common prefix.
//
//	topics := mqtt.NewTopics("codeshelf")
//	topics.AisleLeds("F1", "A9")
//	// Returns: "codeshelf/facility/F1/aisle/A9/leds"
type Topics struct {
	Prefix string
}

// NewTopics returns a topic builder for prefix, falling back to
// DefaultTopicPrefix when prefix is empty.
func NewTopics(prefix string) Topics {
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{Prefix: prefix}
}

func (t Topics) prefix() string {
	if t.Prefix == "" {
		return DefaultTopicPrefix
	}
	return t.Prefix
}

// SystemStatus returns the retained online/offline status topic.
//
// Example: codeshelf/system/status
func (t Topics) SystemStatus() string {
	return fmt.Sprintf("%s/system/status", t.prefix())
}

// AisleLeds returns the retained LED map topic for one aisle.
//
// Example: codeshelf/facility/F1/aisle/A9/leds
func (t Topics) AisleLeds(facilityID, aisleID string) string {
	return fmt.Sprintf("%s/facility/%s/aisle/%s/leds", t.prefix(), facilityID, aisleID)
}

// Controller returns the topic carrying the locations assigned to an LED
// controller.
//
// Example: codeshelf/facility/F1/controller/0x00000011
func (t Topics) Controller(facilityID, controllerID string) string {
	return fmt.Sprintf("%s/facility/%s/controller/%s", t.prefix(), facilityID, controllerID)
}

// ImportAisles returns the topic on which aisle definition CSV is
// submitted for import.
//
// Example: codeshelf/facility/F1/import/aisles
func (t Topics) ImportAisles(facilityID string) string {
	return fmt.Sprintf("%s/facility/%s/import/aisles", t.prefix(), facilityID)
}

// ImportResult returns the topic on which import outcomes are reported.
//
// Example: codeshelf/facility/F1/import/result
func (t Topics) ImportResult(facilityID string) string {
	return fmt.Sprintf("%s/facility/%s/import/result", t.prefix(), facilityID)
}

// AllImportRequests matches aisle imports for every facility.
//
// Pattern: codeshelf/facility/+/import/aisles
func (t Topics) AllImportRequests() string {
	return fmt.Sprintf("%s/facility/+/import/aisles", t.prefix())
}

// FacilityFromTopic extracts the facility segment from a topic produced
// by this builder. ok is false when the topic does not belong here.
func (t Topics) FacilityFromTopic(topic string) (facilityID string, ok bool) {
	rest, found := strings.CutPrefix(topic, t.prefix()+"/facility/")
	if !found {
		return "", false
	}
	facilityID, _, found = strings.Cut(rest, "/")
	if !found || facilityID == "" {
		return "", false
	}
	return facilityID, true
}
