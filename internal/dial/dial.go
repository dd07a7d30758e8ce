// Package dial maps the rotation position reported by the device onto the
// application's 0..100 value domain.
package dial

import (
	"errors"
	"math"
)

const (
	MinValue = 0
	MaxValue = 100
)

// Range is the clamped rotation range configured on the device once at
// attach time. Cycles is how many full turns span Min..Max.
type Range struct {
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
	Start  float64 `yaml:"start"`
	Cycles int     `yaml:"cycles"`
}

// Default is the range used unless configured otherwise.
var Default = Range{Min: -1, Max: 1, Start: 0, Cycles: 1}

func (r Range) Validate() error {
	if !(r.Max > r.Min) {
		return errors.New("rotation range: max must be greater than min")
	}
	if r.Start < r.Min || r.Start > r.Max {
		return errors.New("rotation range: start outside [min, max]")
	}
	if r.Cycles <= 0 {
		return errors.New("rotation range: cycles must be positive")
	}
	return nil
}

// clamp clamps x in [lo,hi].
func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Volume linearly maps position in [Min,Max] to an integer in [0,100].
// For the default range that is floor((position+1)*100/2).
func (r Range) Volume(position float64) int {
	den := r.Max - r.Min
	if den <= 0 || math.IsNaN(position) {
		return MinValue
	}
	v := math.Floor(((position - r.Min) * MaxValue) / den)
	return int(clamp(v, MinValue, MaxValue))
}

// Position is the inverse of Volume, used to seed Start from a known value.
func (r Range) Position(value int) float64 {
	v := clamp(float64(value), MinValue, MaxValue)
	return r.Min + (v/MaxValue)*(r.Max-r.Min)
}
