package entities

import "time"

// Crop types offered by the My Fields form.
var CropTypes = []string{"wheat", "corn", "rice", "soybean", "tomato", "potato"}

// Crop health values shown as badges.
const (
	HealthHealthy  = "healthy"
	HealthWarning  = "warning"
	HealthCritical = "critical"
)

const StageSeedling = "seedling"

// Crop is one entry in a user's field registry. SimFieldID optionally ties
// it to a simulated field so its health follows the live readings.
type Crop struct {
	CropID       uint      `gorm:"primaryKey" json:"id"`
	UserID       string    `gorm:"index" json:"user_id"`
	Name         string    `json:"name"`
	CropType     string    `json:"crop_type"`
	FieldArea    float64   `json:"field_area"` // ha
	PlantingDate time.Time `json:"planting_date"`
	HealthStatus string    `json:"health_status"`
	GrowthStage  string    `json:"growth_stage"`
	SimFieldID   string    `json:"sim_field_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
