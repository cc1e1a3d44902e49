// Package simulation is the appliance consumption simulator.
//
// It owns the fixed catalogue of five household appliances, the per-device
// probability rules and the three interchangeable engines that produce
// readings for them:
//
//   - onoff: binary on/off state recomputed every tick from time-of-day and
//     day-of-week dependent probabilities
//   - wattage: continuous wattage perturbed by a bounded random walk each tick
//   - stateless: a fresh reading computed from base load and variation on
//     every read, with no state kept between reads
//
// # Architecture
//
//	┌──────────┐  Step(prev, now)  ┌──────────┐  Replace   ┌──────────┐
//	│ Updater  │──────────────────▶│  Engine  │───────────▶│  Store   │◀── api (Current)
//	│ (ticker) │                   └──────────┘            └──────────┘
//	│          │──▶ queue ──▶ Listeners (websocket, prometheus, mqtt, influx, amqp)
//	└──────────┘
//
// # Thread Safety
//
// The Store publishes immutable snapshots with a single atomic pointer swap
// (read-copy-update). Readers never lock and never observe a half-updated
// list. Listeners run on a dispatch goroutine so the Updater never blocks on
// exporter I/O.
//
// # Usage
//
//	sim, err := simulation.New(simulation.Options{Mode: simulation.ModeOnOff, Interval: 5 * time.Second})
//	if err != nil {
//	    return err
//	}
//	go sim.Updater().Run(ctx)
//	snap := sim.Current()
package simulation
