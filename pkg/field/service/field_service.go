package service

import (
	"time"

	"agrisentry/pkg/climate"
	"agrisentry/pkg/simulation"
)

// Engine is the read side of *simulation.Engine.
type Engine interface {
	Snapshot() simulation.Snapshot
	FieldState(id string) (simulation.FieldState, error)
	History() []simulation.FieldState
	FieldIDs() []string
	ReferenceField() string
	Running() bool
	Physics() simulation.Physics
}

// FieldView is a reading rounded for display plus its crop assessment.
type FieldView struct {
	FieldID      string             `json:"field_id"`
	Timestamp    time.Time          `json:"timestamp"`
	SoilMoisture float64            `json:"soil_moisture"`
	Temperature  float64            `json:"temperature"`
	Humidity     float64            `json:"humidity"`
	EC           float64            `json:"ec"`
	Assessment   climate.Assessment `json:"assessment"`
}

// ModelView is the slice of the environmental model a dashboard plots
// against: the diurnal band and the evaporation threshold.
type ModelView struct {
	BaseTemp          float64 `json:"base_temp"`
	TempAmplitude     float64 `json:"temp_amplitude"`
	BaseHumidity      float64 `json:"base_humidity"`
	HumidityAmplitude float64 `json:"humidity_amplitude"`
	PeakHour          float64 `json:"peak_hour"`
	HeatThreshold     float64 `json:"heat_threshold"`
}

type ClockView struct {
	SimulatedTime  time.Time `json:"simulated_time"`
	Tick           uint64    `json:"tick"`
	Running        bool      `json:"running"`
	ReferenceField string    `json:"reference_field"`
	Model          ModelView `json:"model"`
}

type FieldService interface {
	List() []FieldView
	Get(id string) (*FieldView, error)
	History() []FieldView
	Clock() ClockView
}
