package simulation

import "fmt"

// Kind classifies an appliance by usage pattern. It selects the on/off rule.
type Kind string

// Appliance kinds.
const (
	KindRefrigerator  Kind = "refrigerator"
	KindEntertainment Kind = "entertainment"
	KindBurstLoad     Kind = "burst_load"
	KindWorkstation   Kind = "workstation"
	KindClimate       Kind = "climate"
)

// Device is one simulated appliance. Devices are fixed at process start.
type Device struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind Kind   `json:"kind"`

	// BaseWatts is the nominal draw while on.
	BaseWatts int `json:"base_watts"`

	// VariationWatts is the full width of the band around BaseWatts.
	VariationWatts int `json:"variation_watts"`

	// AlwaysOn devices are never switched off by the stateless engine.
	AlwaysOn bool `json:"always_on"`

	// InitialOn is the on/off seed value (0 or 1).
	InitialOn int `json:"-"`
}

// appliances is the fixed device catalogue, in response order.
var appliances = []Device{
	{ID: "NEV-001", Name: "Refrigeradora", Kind: KindRefrigerator, BaseWatts: 150, VariationWatts: 30, AlwaysOn: true, InitialOn: 1},
	{ID: "TV-LIV-001", Name: "Televisor (Living)", Kind: KindEntertainment, BaseWatts: 80, VariationWatts: 20},
	{ID: "MICRO-01", Name: "Microondas", Kind: KindBurstLoad, BaseWatts: 1200, VariationWatts: 50},
	{ID: "LAP-WRK-01", Name: "Laptop (Cargando)", Kind: KindWorkstation, BaseWatts: 60, VariationWatts: 10},
	{ID: "AC-DORM-01", Name: "Aire Acondicionado", Kind: KindClimate, BaseWatts: 1500, VariationWatts: 200},
}

// Catalog returns a copy of the device catalogue in its fixed order.
func Catalog() []Device {
	out := make([]Device, len(appliances))
	copy(out, appliances)
	return out
}

// LookupDevice returns the catalogue entry for id.
func LookupDevice(id string) (Device, error) {
	for _, d := range appliances {
		if d.ID == id {
			return d, nil
		}
	}
	return Device{}, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
}
