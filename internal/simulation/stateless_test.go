package simulation

import (
	"testing"
	"time"
)

func TestGenerator_AllOn(t *testing.T) {
	g := NewGenerator(Catalog(), fixedRand(0.6), nil)
	snap := g.Generate(mondayNoon)

	// base + 0.6*variation - variation/2 = base + 0.1*variation
	want := map[string]int{
		"NEV-001":    153,
		"TV-LIV-001": 82,
		"MICRO-01":   1205,
		"LAP-WRK-01": 61,
		"AC-DORM-01": 1520,
	}
	got := valuesByID(snap)
	for id, v := range want {
		if got[id] != v {
			t.Errorf("%s = %d, want %d", id, got[id], v)
		}
	}
}

func TestGenerator_OnlyAlwaysOnSurvivesLowDraw(t *testing.T) {
	g := NewGenerator(Catalog(), fixedRand(0.4), nil)
	snap := g.Generate(mondayNoon)

	for _, r := range snap.Readings {
		switch r.DeviceID {
		case "NEV-001":
			// 150 + 0.4*30 - 15
			if r.Value != 147 {
				t.Errorf("NEV-001 = %d, want 147", r.Value)
			}
		default:
			if r.Value != 0 {
				t.Errorf("%s = %d, want 0", r.DeviceID, r.Value)
			}
		}
	}
}

func TestGenerator_DrawOrder(t *testing.T) {
	// NEV-001 is always on and draws once; TV draws on/off (0.9 -> on) then
	// its reading (1.0 -> base + variation/2); the rest draw 0.1 -> off.
	rnd := &seqRand{vals: []float64{0.5, 0.9, 1.0, 0.1, 0.1, 0.1}}
	g := NewGenerator(Catalog(), rnd, nil)

	got := valuesByID(g.Generate(mondayNoon))
	want := map[string]int{"NEV-001": 150, "TV-LIV-001": 90, "MICRO-01": 0, "LAP-WRK-01": 0, "AC-DORM-01": 0}
	for id, v := range want {
		if got[id] != v {
			t.Errorf("%s = %d, want %d", id, got[id], v)
		}
	}
}

func TestGenerator_ShapeIsStableAcrossReads(t *testing.T) {
	g := NewGenerator(Catalog(), NewRand(3), func() time.Time { return mondayNoon })

	first := g.Current()
	second := g.Current()

	if len(first.Readings) != len(second.Readings) {
		t.Fatalf("reading count changed %d -> %d", len(first.Readings), len(second.Readings))
	}
	for i := range first.Readings {
		if first.Readings[i].DeviceID != second.Readings[i].DeviceID {
			t.Errorf("reading %d id %s -> %s", i, first.Readings[i].DeviceID, second.Readings[i].DeviceID)
		}
		if first.Readings[i].Value < 0 || second.Readings[i].Value < 0 {
			t.Errorf("reading %d negative wattage", i)
		}
	}
	if second.Tick != first.Tick+1 {
		t.Errorf("read counter = %d, want %d", second.Tick, first.Tick+1)
	}
}
