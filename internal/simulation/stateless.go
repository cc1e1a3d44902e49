package simulation

import (
	"sync/atomic"
	"time"
)

// statelessOnThreshold: a non always-on device is on when its draw exceeds this.
const statelessOnThreshold = 0.5

// Generator computes a fresh snapshot from scratch on every read.
// It keeps no device state between calls.
type Generator struct {
	catalog []Device
	rnd     Rand
	clock   Clock
	reads   atomic.Uint64
}

// NewGenerator creates a stateless generator. A nil clock means time.Now.
func NewGenerator(catalog []Device, rnd Rand, clock Clock) *Generator {
	if clock == nil {
		clock = time.Now
	}
	return &Generator{catalog: catalog, rnd: rnd, clock: clock}
}

// Generate builds a snapshot for the instant now.
//
// A device is on when it is always-on or its draw exceeds 0.5; on devices
// read base ± variation/2, rounded, and off devices read 0.
func (g *Generator) Generate(now time.Time) *Snapshot {
	snap := &Snapshot{
		Mode:     ModeStateless,
		Tick:     g.reads.Add(1),
		TakenAt:  now,
		Readings: make([]Reading, len(g.catalog)),
	}
	for i, d := range g.catalog {
		on := d.AlwaysOn || g.rnd.Float64() > statelessOnThreshold
		watts := 0
		if on {
			variation := float64(d.VariationWatts)
			watts = clampWatts(float64(d.BaseWatts) + g.rnd.Float64()*variation - variation/2)
		}
		snap.Readings[i] = Reading{DeviceID: d.ID, Name: d.Name, Kind: d.Kind, Value: watts, Timestamp: now}
	}
	return snap
}

// Current implements Provider.
func (g *Generator) Current() *Snapshot {
	return g.Generate(g.clock())
}
