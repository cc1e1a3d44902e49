package simulation

import (
	"fmt"
	"time"
)

// Provider returns the snapshot a reader should see right now.
type Provider interface {
	Current() *Snapshot
}

// Options configures New.
type Options struct {
	Mode     Mode
	Seed     int64
	Location *time.Location
	Interval time.Duration

	// WattageStep is the maximum per-tick change in wattage mode.
	WattageStep   float64
	AbsorbingZero bool

	// Clock defaults to time.Now. Rand defaults to NewRand(Seed).
	Clock Clock
	Rand  Rand
}

// Simulator bundles the engine for one mode with the state it needs.
// Stateful modes have a Store and an Updater; stateless mode has neither.
type Simulator struct {
	mode      Mode
	store     *Store
	updater   *Updater
	generator *Generator
}

// New wires the simulator for opts.Mode.
func New(opts Options) (*Simulator, error) {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = NewRand(opts.Seed)
	}
	catalog := Catalog()

	var engine Engine
	switch opts.Mode {
	case ModeStateless:
		return &Simulator{mode: ModeStateless, generator: NewGenerator(catalog, opts.Rand, opts.Clock)}, nil
	case ModeOnOff:
		engine = NewOnOffEngine(catalog, opts.Rand, opts.Location)
	case ModeWattage:
		engine = NewWattageEngine(catalog, opts.Rand, opts.WattageStep, opts.AbsorbingZero)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, opts.Mode)
	}

	if opts.Interval <= 0 {
		return nil, ErrInvalidInterval
	}

	store := NewStore(engine.Seed(opts.Clock()))
	updater := NewUpdater(engine, store, opts.Interval)
	updater.SetClock(opts.Clock)

	return &Simulator{mode: opts.Mode, store: store, updater: updater}, nil
}

// Mode returns the active mode.
func (s *Simulator) Mode() Mode {
	return s.mode
}

// Current implements Provider.
func (s *Simulator) Current() *Snapshot {
	if s.generator != nil {
		return s.generator.Current()
	}
	return s.store.Snapshot()
}

// Updater returns the periodic updater, or nil in stateless mode.
func (s *Simulator) Updater() *Updater {
	return s.updater
}

// Store returns the snapshot store, or nil in stateless mode.
func (s *Simulator) Store() *Store {
	return s.store
}
