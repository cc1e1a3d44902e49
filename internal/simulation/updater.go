package simulation

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// dispatchQueueSize bounds snapshots waiting for slow listeners.
const dispatchQueueSize = 16

// Clock returns the current instant. A zero time means the clock is unavailable.
type Clock func() time.Time

// Logger defines the logging interface used by the Updater.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Listener receives every snapshot the Updater publishes.
//
// Listeners run on the Updater's dispatch goroutine, one after another, and
// may perform I/O. A slow listener delays the others but never the ticks.
type Listener interface {
	OnSnapshot(ctx context.Context, snap *Snapshot)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ctx context.Context, snap *Snapshot)

// OnSnapshot implements Listener.
func (f ListenerFunc) OnSnapshot(ctx context.Context, snap *Snapshot) { f(ctx, snap) }

// Updater recomputes every device on a fixed period and publishes the
// result to the Store.
//
// Configure it with the Set*/AddListener methods before calling Run.
type Updater struct {
	engine   Engine
	store    *Store
	interval time.Duration
	clock    Clock
	logger   Logger

	listeners []Listener
	queue     chan *Snapshot
	onDrop    func()
	dropped   atomic.Uint64

	tickMu sync.Mutex // serialises Tick between Run and direct callers
}

// NewUpdater creates an Updater advancing store with engine every interval.
func NewUpdater(engine Engine, store *Store, interval time.Duration) *Updater {
	return &Updater{
		engine:   engine,
		store:    store,
		interval: interval,
		clock:    time.Now,
		logger:   noopLogger{},
		queue:    make(chan *Snapshot, dispatchQueueSize),
	}
}

// SetLogger sets the logger for the updater.
func (u *Updater) SetLogger(logger Logger) {
	u.logger = logger
}

// SetClock replaces the wall clock.
func (u *Updater) SetClock(clock Clock) {
	u.clock = clock
}

// AddListener registers a snapshot listener.
func (u *Updater) AddListener(l Listener) {
	u.listeners = append(u.listeners, l)
}

// SetOnDrop sets a callback invoked each time a queued snapshot is dropped
// because listeners fell behind.
func (u *Updater) SetOnDrop(fn func()) {
	u.onDrop = fn
}

// Dropped returns how many snapshots listeners never saw.
func (u *Updater) Dropped() uint64 {
	return u.dropped.Load()
}

// Interval returns the tick period.
func (u *Updater) Interval() time.Duration {
	return u.interval
}

// Tick runs one synchronous update at now and returns the published snapshot.
func (u *Updater) Tick(now time.Time) *Snapshot {
	u.tickMu.Lock()
	defer u.tickMu.Unlock()

	next := u.engine.Step(u.store.Snapshot(), now)
	u.store.Replace(next)
	u.enqueue(next)

	u.logger.Debug("tick published", "tick", next.Tick, "devices_on", next.OnCount())
	return next
}

// Run ticks every interval until ctx is cancelled. The current snapshot is
// handed to listeners once before the first tick.
func (u *Updater) Run(ctx context.Context) error {
	if u.interval <= 0 {
		return ErrInvalidInterval
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		u.dispatch(ctx)
	}()

	u.enqueue(u.store.Snapshot())

	ticker := time.NewTicker(u.interval)
	defer func() {
		ticker.Stop()
		wg.Wait()
	}()

	u.logger.Info("updater started", "mode", u.engine.Mode(), "interval", u.interval)
	for {
		select {
		case <-ctx.Done():
			u.logger.Info("updater stopped", "tick", u.store.Snapshot().Tick)
			return nil
		case <-ticker.C:
			u.Tick(u.clock())
		}
	}
}

// enqueue hands snap to the dispatch goroutine without blocking. When the
// queue is full the oldest pending snapshot is discarded.
func (u *Updater) enqueue(snap *Snapshot) {
	if len(u.listeners) == 0 {
		return
	}
	for {
		select {
		case u.queue <- snap:
			return
		default:
		}
		select {
		case <-u.queue:
			u.dropped.Add(1)
			if u.onDrop != nil {
				u.onDrop()
			}
		default:
		}
	}
}

func (u *Updater) dispatch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-u.queue:
			for _, l := range u.listeners {
				u.notify(ctx, l, snap)
			}
		}
	}
}

// notify isolates the updater from a panicking listener.
func (u *Updater) notify(ctx context.Context, l Listener, snap *Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			u.logger.Error("snapshot listener panic recovered", "tick", snap.Tick, "panic", r)
		}
	}()
	l.OnSnapshot(ctx, snap)
}
