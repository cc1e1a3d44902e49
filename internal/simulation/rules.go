package simulation

import "time"

// On-probabilities for the on/off engine.
const (
	refrigeratorOnProb = 0.95

	entertainmentEveningOnProb = 0.75
	entertainmentOffPeakOnProb = 0.05
	entertainmentEveningStart  = 18 // inclusive, runs to 23

	burstLoadOffProb = 0.5  // chance an on device switches off
	burstLoadOnProb  = 0.02 // chance an off device switches on

	workstationWorkOnProb = 0.90
	workstationIdleOnProb = 0.15
	workHoursStart        = 9  // inclusive
	workHoursEnd          = 18 // exclusive

	climateNightOnProb = 0.70
	climateDayOnProb   = 0.05
	climateNightStart  = 22 // inclusive
	climateNightEnd    = 6  // inclusive
)

// Rule computes a device's next on/off value.
//
// current is the device's value before the tick, local is the evaluation
// instant in the simulation time zone (zero when the clock is unavailable)
// and draw is one uniform value in [0,1).
type Rule func(current int, local time.Time, draw float64) int

// onOffRules maps each appliance kind to its rule. Rules are independent:
// no rule reads another device.
var onOffRules = map[Kind]Rule{
	KindRefrigerator:  refrigeratorRule,
	KindEntertainment: entertainmentRule,
	KindBurstLoad:     burstLoadRule,
	KindWorkstation:   workstationRule,
	KindClimate:       climateRule,
}

// RuleFor returns the on/off rule for a kind. Unknown kinds keep their value.
func RuleFor(kind Kind) Rule {
	if r, ok := onOffRules[kind]; ok {
		return r
	}
	return holdRule
}

// bernoulli returns 1 when draw falls under p.
func bernoulli(p, draw float64) int {
	if draw < p {
		return 1
	}
	return 0
}

func holdRule(current int, _ time.Time, _ float64) int {
	return current
}

func refrigeratorRule(_ int, _ time.Time, draw float64) int {
	return bernoulli(refrigeratorOnProb, draw)
}

func entertainmentRule(_ int, local time.Time, draw float64) int {
	if !local.IsZero() && local.Hour() >= entertainmentEveningStart {
		return bernoulli(entertainmentEveningOnProb, draw)
	}
	return bernoulli(entertainmentOffPeakOnProb, draw)
}

// burstLoadRule is asymmetric: short on-periods, rare starts.
func burstLoadRule(current int, _ time.Time, draw float64) int {
	if current == 1 {
		if draw < burstLoadOffProb {
			return 0
		}
		return 1
	}
	return bernoulli(burstLoadOnProb, draw)
}

func workstationRule(_ int, local time.Time, draw float64) int {
	if isWorkingHours(local) {
		return bernoulli(workstationWorkOnProb, draw)
	}
	return bernoulli(workstationIdleOnProb, draw)
}

func climateRule(_ int, local time.Time, draw float64) int {
	if !local.IsZero() {
		h := local.Hour()
		if h >= climateNightStart || h <= climateNightEnd {
			return bernoulli(climateNightOnProb, draw)
		}
	}
	return bernoulli(climateDayOnProb, draw)
}

// isWorkingHours reports Monday to Friday, 09:00 to 17:59.
func isWorkingHours(local time.Time) bool {
	if local.IsZero() {
		return false
	}
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	h := local.Hour()
	return h >= workHoursStart && h < workHoursEnd
}
