package simulation

import (
	"math"
	"time"
)

// Engine advances a stateful simulation by one tick.
type Engine interface {
	// Mode reports which representation the engine produces.
	Mode() Mode

	// Seed builds the tick-0 snapshot from the catalogue.
	Seed(now time.Time) *Snapshot

	// Step computes the snapshot following prev. It never mutates prev.
	Step(prev *Snapshot, now time.Time) *Snapshot
}

// stampFor returns the timestamp for a recomputed reading. Timestamps never
// move backwards, and a zero (unavailable) clock keeps the previous value.
func stampFor(prev, now time.Time) time.Time {
	if now.IsZero() || now.Before(prev) {
		return prev
	}
	return now
}

// OnOffEngine recomputes binary device states with the per-kind rules.
type OnOffEngine struct {
	catalog []Device
	rnd     Rand
	loc     *time.Location
}

// NewOnOffEngine creates an on/off engine. Hours and weekdays are evaluated
// in loc; a nil loc means time.Local.
func NewOnOffEngine(catalog []Device, rnd Rand, loc *time.Location) *OnOffEngine {
	if loc == nil {
		loc = time.Local
	}
	return &OnOffEngine{catalog: catalog, rnd: rnd, loc: loc}
}

// Mode implements Engine.
func (e *OnOffEngine) Mode() Mode { return ModeOnOff }

// Seed implements Engine.
func (e *OnOffEngine) Seed(now time.Time) *Snapshot {
	snap := &Snapshot{Mode: ModeOnOff, TakenAt: now, Readings: make([]Reading, len(e.catalog))}
	for i, d := range e.catalog {
		snap.Readings[i] = Reading{DeviceID: d.ID, Name: d.Name, Kind: d.Kind, Value: d.InitialOn, Timestamp: now}
	}
	return snap
}

// Step implements Engine. Every device draws once and gets a fresh
// timestamp, whether or not its value changed.
func (e *OnOffEngine) Step(prev *Snapshot, now time.Time) *Snapshot {
	var local time.Time
	if !now.IsZero() {
		local = now.In(e.loc)
	}

	next := prev.Clone()
	next.Tick = prev.Tick + 1
	next.TakenAt = stampFor(prev.TakenAt, now)
	for i := range next.Readings {
		r := &next.Readings[i]
		r.Value = RuleFor(r.Kind)(r.Value, local, e.rnd.Float64())
		r.Timestamp = stampFor(r.Timestamp, now)
	}
	return next
}

// WattageEngine perturbs each device's wattage by a bounded random walk.
type WattageEngine struct {
	catalog       []Device
	rnd           Rand
	step          float64
	absorbingZero bool
}

// NewWattageEngine creates a wattage engine. Each tick moves a reading by a
// uniform amount in [-step, +step). With absorbingZero, a device that reaches
// exactly 0 W is never perturbed again.
func NewWattageEngine(catalog []Device, rnd Rand, step float64, absorbingZero bool) *WattageEngine {
	return &WattageEngine{catalog: catalog, rnd: rnd, step: step, absorbingZero: absorbingZero}
}

// Mode implements Engine.
func (e *WattageEngine) Mode() Mode { return ModeWattage }

// Seed implements Engine. Every device starts at its base load.
func (e *WattageEngine) Seed(now time.Time) *Snapshot {
	snap := &Snapshot{Mode: ModeWattage, TakenAt: now, Readings: make([]Reading, len(e.catalog))}
	for i, d := range e.catalog {
		snap.Readings[i] = Reading{DeviceID: d.ID, Name: d.Name, Kind: d.Kind, Value: d.BaseWatts, Timestamp: now}
	}
	return snap
}

// Step implements Engine.
func (e *WattageEngine) Step(prev *Snapshot, now time.Time) *Snapshot {
	next := prev.Clone()
	next.Tick = prev.Tick + 1
	next.TakenAt = stampFor(prev.TakenAt, now)
	for i := range next.Readings {
		r := &next.Readings[i]
		if e.absorbingZero && r.Value == 0 {
			continue
		}
		delta := (e.rnd.Float64()*2 - 1) * e.step
		r.Value = clampWatts(float64(r.Value) + delta)
		r.Timestamp = stampFor(r.Timestamp, now)
	}
	return next
}

// clampWatts rounds to the nearest watt and never goes below zero.
func clampWatts(w float64) int {
	v := math.Round(w)
	if v < 0 {
		return 0
	}
	return int(v)
}
