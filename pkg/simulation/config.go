package simulation

import (
	"fmt"
	"time"
)

// Physics holds the tunable constants of the environmental model.
type Physics struct {
	BaseTemp           float64 // °C
	TempAmplitude      float64 // °C
	BaseHumidity       float64 // %
	HumidityAmplitude  float64 // %
	AmbientHumidityMin float64
	AmbientHumidityMax float64
	PhaseShiftHours    float64 // peak at PhaseShift+6, trough at PhaseShift-6

	HeatThreshold   float64 // °C
	EvaporationHot  float64 // moisture points per tick above HeatThreshold
	EvaporationCool float64 // moisture points per tick at or below HeatThreshold

	MoistureNoise    float64
	TemperatureNoise float64
	HumidityNoise    float64

	SeedMoistureMin float64
	SeedMoistureMax float64
	SeedECMin       float64
	SeedECMax       float64
	NominalTemp     float64
	NominalHumidity float64
}

// DefaultPhysics returns the model used by the dashboard: a 15-35 °C day
// peaking at 14:00 with humidity moving opposite to it.
func DefaultPhysics() Physics {
	return Physics{
		BaseTemp:           25,
		TempAmplitude:      10,
		BaseHumidity:       80,
		HumidityAmplitude:  30,
		AmbientHumidityMin: 30,
		AmbientHumidityMax: 100,
		PhaseShiftHours:    8,

		HeatThreshold:   30,
		EvaporationHot:  0.2,
		EvaporationCool: 0.05,

		MoistureNoise:    0.25,
		TemperatureNoise: 0.5,
		HumidityNoise:    1.0,

		SeedMoistureMin: 60,
		SeedMoistureMax: 80,
		SeedECMin:       1.0,
		SeedECMax:       2.0,
		NominalTemp:     25,
		NominalHumidity: 70,
	}
}

// Config is supplied once at construction.
type Config struct {
	FieldIDs        []string
	TickInterval    time.Duration // real time between ticks
	TickAdvance     time.Duration // simulated time added per tick
	StartHour       int           // hour of day the clock starts at, on the current date
	MoistureFloor   float64
	HistoryCapacity int

	// ReferenceField is the field recorded into history each tick.
	// Defaults to FieldIDs[0].
	ReferenceField string

	// Location of the simulated clock. Defaults to time.Local.
	Location *time.Location

	// Physics defaults to DefaultPhysics() when left zero.
	Physics Physics
}

// DefaultConfig mirrors the original dashboard: four fields, one tick per
// second, fifteen simulated minutes per tick, starting at 06:00.
func DefaultConfig() Config {
	return Config{
		FieldIDs:        []string{"wheat-a", "corn-b", "rice-c", "soybean-d"},
		TickInterval:    time.Second,
		TickAdvance:     15 * time.Minute,
		StartHour:       6,
		MoistureFloor:   10,
		HistoryCapacity: 20,
		Physics:         DefaultPhysics(),
	}
}

// Dilation is the number of simulated seconds that pass per real second.
func (c Config) Dilation() float64 {
	if c.TickInterval <= 0 {
		return 0
	}
	return float64(c.TickAdvance) / float64(c.TickInterval)
}

func (c Config) normalized() Config {
	out := c
	out.FieldIDs = append([]string(nil), c.FieldIDs...)
	if out.ReferenceField == "" && len(out.FieldIDs) > 0 {
		out.ReferenceField = out.FieldIDs[0]
	}
	if out.Location == nil {
		out.Location = time.Local
	}
	if out.Physics == (Physics{}) {
		out.Physics = DefaultPhysics()
	}
	return out
}

func (c Config) validate() error {
	if len(c.FieldIDs) == 0 {
		return &ConfigurationError{Field: "FieldIDs", Reason: "at least one field is required"}
	}
	seen := make(map[string]struct{}, len(c.FieldIDs))
	for _, id := range c.FieldIDs {
		if id == "" {
			return &ConfigurationError{Field: "FieldIDs", Reason: "field id must not be empty"}
		}
		if _, dup := seen[id]; dup {
			return &ConfigurationError{Field: "FieldIDs", Reason: fmt.Sprintf("duplicate field id %q", id)}
		}
		seen[id] = struct{}{}
	}
	if _, ok := seen[c.ReferenceField]; !ok {
		return &ConfigurationError{Field: "ReferenceField", Reason: fmt.Sprintf("%q is not a configured field", c.ReferenceField)}
	}
	if c.TickInterval <= 0 {
		return &ConfigurationError{Field: "TickInterval", Reason: "must be positive"}
	}
	if c.TickAdvance <= 0 {
		return &ConfigurationError{Field: "TickAdvance", Reason: "must be positive"}
	}
	if c.StartHour < 0 || c.StartHour > 23 {
		return &ConfigurationError{Field: "StartHour", Reason: "must be within 0-23"}
	}
	if c.MoistureFloor < 0 || c.MoistureFloor > 100 {
		return &ConfigurationError{Field: "MoistureFloor", Reason: "must be within 0-100"}
	}
	if c.HistoryCapacity <= 0 {
		return &ConfigurationError{Field: "HistoryCapacity", Reason: "must be positive"}
	}
	return c.Physics.validate()
}

func (p Physics) validate() error {
	nonNegative := []struct {
		name string
		v    float64
	}{
		{"TempAmplitude", p.TempAmplitude},
		{"HumidityAmplitude", p.HumidityAmplitude},
		{"EvaporationHot", p.EvaporationHot},
		{"EvaporationCool", p.EvaporationCool},
		{"MoistureNoise", p.MoistureNoise},
		{"TemperatureNoise", p.TemperatureNoise},
		{"HumidityNoise", p.HumidityNoise},
		{"SeedECMin", p.SeedECMin},
		{"SeedMoistureMin", p.SeedMoistureMin},
	}
	for _, n := range nonNegative {
		if n.v < 0 {
			return &ConfigurationError{Field: "Physics." + n.name, Reason: "must not be negative"}
		}
	}
	if p.SeedMoistureMax < p.SeedMoistureMin || p.SeedMoistureMax > 100 {
		return &ConfigurationError{Field: "Physics.SeedMoistureMax", Reason: "must be within SeedMoistureMin-100"}
	}
	if p.SeedECMax < p.SeedECMin {
		return &ConfigurationError{Field: "Physics.SeedECMax", Reason: "must not be below SeedECMin"}
	}
	if p.AmbientHumidityMin > p.AmbientHumidityMax {
		return &ConfigurationError{Field: "Physics.AmbientHumidityMin", Reason: "must not exceed AmbientHumidityMax"}
	}
	return nil
}
