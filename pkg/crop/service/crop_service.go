package service

import (
	"fmt"

	"agrisentry/entities"
	"agrisentry/pkg/climate"
	"agrisentry/pkg/simulation"
)

// Readings is the part of the simulation engine a linked crop reads from.
type Readings interface {
	FieldState(id string) (simulation.FieldState, error)
}

type CropService interface {
	Create(c *entities.Crop) (*entities.Crop, error)
	Get(id uint, uid string) (*entities.Crop, error)
	List(uid string) ([]entities.Crop, error)
	Delete(id uint, uid string) error
}

// ValidationError reports a rejected crop field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// HealthOf maps a crop assessment onto the registry's badge values.
func HealthOf(a climate.Assessment) string {
	switch {
	case a.Irrigation == climate.IrrigateImmediately:
		return entities.HealthCritical
	case a.Status == climate.StatusNeedsAttention, a.SalinityWarning:
		return entities.HealthWarning
	default:
		return entities.HealthHealthy
	}
}
