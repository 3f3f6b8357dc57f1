package serviceImp

import (
	"math"
	"slices"
	"strings"
	"time"

	"agrisentry/entities"
	"agrisentry/pkg/climate"
	"agrisentry/pkg/crop/repository"
	"agrisentry/pkg/crop/service"
)

type cropSvc struct {
	r     repository.CropRepository
	eng   service.Readings
	rules climate.RulesEngine
	now   func() time.Time
}

// NewCropService builds the registry. eng may be nil, in which case
// sim_field_id links are rejected and health stays as stored.
func NewCropService(r repository.CropRepository, eng service.Readings, rules climate.RulesEngine) service.CropService {
	if rules == nil {
		rules = climate.Default()
	}
	return &cropSvc{r: r, eng: eng, rules: rules, now: time.Now}
}

func validate(c *entities.Crop) error {
	if c.UserID == "" {
		return &service.ValidationError{Field: "user_id", Reason: "required"}
	}
	if c.Name == "" {
		return &service.ValidationError{Field: "name", Reason: "required"}
	}
	if !slices.Contains(entities.CropTypes, c.CropType) {
		return &service.ValidationError{Field: "crop_type", Reason: "must be one of " + strings.Join(entities.CropTypes, ", ")}
	}
	if math.IsNaN(c.FieldArea) || c.FieldArea <= 0 {
		return &service.ValidationError{Field: "field_area", Reason: "must be positive"}
	}
	return nil
}

func (s *cropSvc) Create(c *entities.Crop) (*entities.Crop, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.CropType = strings.ToLower(strings.TrimSpace(c.CropType))
	c.SimFieldID = strings.TrimSpace(c.SimFieldID)
	if c.PlantingDate.IsZero() {
		c.PlantingDate = s.now()
	}
	if c.HealthStatus == "" {
		c.HealthStatus = entities.HealthHealthy
	}
	if c.GrowthStage == "" {
		c.GrowthStage = entities.StageSeedling
	}
	if err := validate(c); err != nil {
		return nil, err
	}
	if c.SimFieldID != "" {
		if s.eng == nil {
			return nil, &service.ValidationError{Field: "sim_field_id", Reason: "simulation is not running"}
		}
		if _, err := s.eng.FieldState(c.SimFieldID); err != nil {
			return nil, &service.ValidationError{Field: "sim_field_id", Reason: err.Error()}
		}
		s.refresh(c)
	}
	if err := s.r.Create(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *cropSvc) Get(id uint, uid string) (*entities.Crop, error) {
	c, err := s.r.FindByID(id, uid)
	if err != nil {
		return nil, err
	}
	s.refresh(c)
	return c, nil
}

func (s *cropSvc) List(uid string) ([]entities.Crop, error) {
	out, err := s.r.ListByUser(uid)
	if err != nil {
		return nil, err
	}
	for i := range out {
		s.refresh(&out[i])
	}
	return out, nil
}

func (s *cropSvc) Delete(id uint, uid string) error { return s.r.Delete(id, uid) }

// refresh derives health from the linked field's current reading. A link
// to a field the engine no longer knows keeps the stored value.
func (s *cropSvc) refresh(c *entities.Crop) {
	if c.SimFieldID == "" || s.eng == nil {
		return
	}
	st, err := s.eng.FieldState(c.SimFieldID)
	if err != nil {
		return
	}
	c.HealthStatus = service.HealthOf(s.rules.Assess(c.SimFieldID, st))
}
