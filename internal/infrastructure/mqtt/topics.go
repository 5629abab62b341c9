package mqtt

import (
	"fmt"
	"strings"
)

// TopicPrefix is the root of every hub topic.
//
// Layout:
//
//	grayhub/state/{kind}/{device}   retained JSON state
//	grayhub/event/{kind}/{device}   device events, not retained
//	grayhub/system/status           online/offline with LWT
const TopicPrefix = "grayhub"

// Topics provides builders for hub MQTT topics.
//
//	topics := mqtt.Topics{}
//	topics.DeviceState("LIGHT", "living-room")
//	// Returns: "grayhub/state/light/living-room"
type Topics struct{}

// DeviceState returns the retained state topic for a device.
func (Topics) DeviceState(kind, device string) string {
	return fmt.Sprintf("%s/state/%s/%s", TopicPrefix, strings.ToLower(kind), device)
}

// DeviceEvent returns the event topic for a device.
func (Topics) DeviceEvent(kind, device string) string {
	return fmt.Sprintf("%s/event/%s/%s", TopicPrefix, strings.ToLower(kind), device)
}

// SystemStatus returns the hub status topic.
//
// Example: grayhub/system/status
func (Topics) SystemStatus() string {
	return TopicPrefix + "/system/status"
}

// AllStates returns a pattern matching every device state topic.
//
// Pattern: grayhub/state/+/+
func (Topics) AllStates() string {
	return TopicPrefix + "/state/+/+"
}
