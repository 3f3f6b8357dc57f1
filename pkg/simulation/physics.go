package simulation

import (
	"math"
	"time"
)

// Ambient is the shared weather all fields are derived from.
type Ambient struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
}

// DailyCycle is sin(2π(hour-phase)/24): +1 at the afternoon peak, -1 before dawn.
func (p Physics) DailyCycle(hour float64) float64 {
	return math.Sin(2 * math.Pi * (hour - p.PhaseShiftHours) / 24)
}

// AmbientAt evaluates the ambient model at a fractional hour of day.
func (p Physics) AmbientAt(hour float64) Ambient {
	c := p.DailyCycle(hour)
	return Ambient{
		Temperature: p.BaseTemp + c*p.TempAmplitude,
		Humidity:    clamp(p.BaseHumidity-c*p.HumidityAmplitude, p.AmbientHumidityMin, p.AmbientHumidityMax),
	}
}

// EvaporationRate is a step function of temperature.
func (p Physics) EvaporationRate(temp float64) float64 {
	if temp > p.HeatThreshold {
		return p.EvaporationHot
	}
	return p.EvaporationCool
}

// HourOfDay returns the fractional hour of t in [0, 24).
func HourOfDay(t time.Time) float64 {
	h, m, s := t.Clock()
	return float64(h) + float64(m)/60 + (float64(s)+float64(t.Nanosecond())/1e9)/3600
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// jitter draws uniform zero-mean noise in [-amp, amp).
func jitter(src Source, amp float64) float64 {
	return (src.Float64()*2 - 1) * amp
}

func between(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}
