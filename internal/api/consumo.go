package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nerrad567/appliance-sim/internal/simulation"
)

// wattageEntry is one /consumo element in wattage mode.
type wattageEntry struct {
	ID           string `json:"id"`
	ConsumoWatts int    `json:"consumo_watts"`
	Timestamp    string `json:"timestamp"`
}

// statelessEntry is one /consumo element in stateless mode.
type statelessEntry struct {
	ID               string `json:"id"`
	Electrodomestico string `json:"electrodomestico"`
	ConsumoWatts     int    `json:"consumo_watts"`
	Timestamp        string `json:"timestamp"`
}

// onOffEntry is one /consumo element in on/off mode. Field names follow
// the log format downstream consumers already parse.
type onOffEntry struct {
	LogID     string      `json:"LogID"`
	Device    onOffDevice `json:"device"`
	Timestamp string      `json:"timestamp"`
	Value     int         `json:"value"`
}

type onOffDevice struct {
	DeviceID string `json:"DeviceID"`
}

// consumoEntry renders a reading in the wire shape of mode.
func consumoEntry(mode simulation.Mode, r simulation.Reading) any {
	ts := simulation.FormatTimestamp(r.Timestamp)
	switch mode {
	case simulation.ModeOnOff:
		return onOffEntry{
			LogID:     uuid.NewString(),
			Device:    onOffDevice{DeviceID: r.DeviceID},
			Timestamp: ts,
			Value:     r.Value,
		}
	case simulation.ModeStateless:
		return statelessEntry{ID: r.DeviceID, Electrodomestico: r.Name, ConsumoWatts: r.Value, Timestamp: ts}
	default:
		return wattageEntry{ID: r.DeviceID, ConsumoWatts: r.Value, Timestamp: ts}
	}
}

// handleConsumo returns every device's current reading.
// It reads one snapshot, so all entries come from the same tick.
func (s *Server) handleConsumo(w http.ResponseWriter, _ *http.Request) {
	snap := s.provider.Current()

	entries := make([]any, 0, len(snap.Readings))
	for _, r := range snap.Readings {
		entries = append(entries, consumoEntry(snap.Mode, r))
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleConsumoByID returns a single device's current reading.
func (s *Server) handleConsumoByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := simulation.LookupDevice(id); err != nil {
		writeNotFound(w, err.Error())
		return
	}

	snap := s.provider.Current()
	reading, ok := snap.Reading(id)
	if !ok {
		writeNotFound(w, "no reading for device "+id)
		return
	}
	writeJSON(w, http.StatusOK, consumoEntry(snap.Mode, reading))
}
