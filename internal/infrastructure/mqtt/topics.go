package mqtt

import (
	"fmt"
	"strings"
)

// DefaultTopicPrefix is used when no prefix is configured.
const DefaultTopicPrefix = "appliancesim"

// Topics builds the simulator's MQTT topic names under a common prefix.
//
//	topics := mqtt.NewTopics("appliancesim")
//	topics.DeviceState("NEV-001")
//	// Returns: "appliancesim/device/NEV-001/state"
type Topics struct {
	prefix string
}

// NewTopics creates a topic builder. Leading and trailing slashes are
// trimmed; an empty prefix falls back to DefaultTopicPrefix.
func NewTopics(prefix string) Topics {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{prefix: prefix}
}

// Prefix returns the root of every topic.
func (t Topics) Prefix() string {
	return t.prefix
}

// DeviceState returns the retained state topic for one appliance.
//
// Example: appliancesim/device/NEV-001/state
func (t Topics) DeviceState(deviceID string) string {
	return fmt.Sprintf("%s/device/%s/state", t.prefix, deviceID)
}

// Consumo returns the topic carrying each complete snapshot.
//
// Example: appliancesim/consumo
func (t Topics) Consumo() string {
	return t.prefix + "/consumo"
}

// SystemStatus returns the online/offline status topic (also the LWT topic).
//
// Example: appliancesim/system/status
func (t Topics) SystemStatus() string {
	return t.prefix + "/system/status"
}

// AllDeviceStates returns a wildcard matching every device state topic.
func (t Topics) AllDeviceStates() string {
	return t.prefix + "/device/+/state"
}
