package simulation

import (
	"sync"
	"time"
)

// fixedRand always returns the same draw.
type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

// seqRand replays a fixed sequence of draws, wrapping around.
type seqRand struct {
	mu   sync.Mutex
	vals []float64
	i    int
}

func (s *seqRand) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

// Reference instants. 2024-01-01 is a Monday.
var (
	mondayEvening = time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)
	mondayNoon    = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	mondayMorning = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	saturdayNoon  = time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC)
)

func valuesByID(s *Snapshot) map[string]int {
	out := make(map[string]int, len(s.Readings))
	for _, r := range s.Readings {
		out[r.DeviceID] = r.Value
	}
	return out
}
