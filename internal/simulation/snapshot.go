package simulation

import (
	"fmt"
	"strings"
	"time"
)

// Mode names the active simulation engine.
type Mode string

// Simulation modes.
const (
	ModeOnOff     Mode = "onoff"
	ModeWattage   Mode = "wattage"
	ModeStateless Mode = "stateless"
)

// ParseMode converts a configuration string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeOnOff, ModeWattage, ModeStateless:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// timestampLayout is ISO-8601 in UTC with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t the way the consumo endpoint reports it.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// Reading is one device's state inside a snapshot.
type Reading struct {
	DeviceID string `json:"device_id"`
	Name     string `json:"name"`
	Kind     Kind   `json:"kind"`

	// Value is watts in the wattage and stateless modes, 0 or 1 in onoff mode.
	Value int `json:"value"`

	// Timestamp is the instant Value was last recomputed.
	Timestamp time.Time `json:"timestamp"`
}

// On reports whether the device is drawing power.
func (r Reading) On() bool {
	return r.Value > 0
}

// Snapshot is the complete set of readings at one instant.
//
// A published snapshot is never modified. Callers that need to edit one
// must work on Clone().
type Snapshot struct {
	Mode     Mode      `json:"mode"`
	Tick     uint64    `json:"tick"`
	TakenAt  time.Time `json:"taken_at"`
	Readings []Reading `json:"readings"`
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := *s
	out.Readings = make([]Reading, len(s.Readings))
	copy(out.Readings, s.Readings)
	return &out
}

// Reading returns the reading for a device ID.
func (s *Snapshot) Reading(id string) (Reading, bool) {
	for _, r := range s.Readings {
		if r.DeviceID == id {
			return r, true
		}
	}
	return Reading{}, false
}

// OnCount returns how many devices are drawing power.
func (s *Snapshot) OnCount() int {
	n := 0
	for _, r := range s.Readings {
		if r.On() {
			n++
		}
	}
	return n
}
