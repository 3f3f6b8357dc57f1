package entities

import "time"

// Activity types accepted by the activity log.
const (
	ActivityIrrigation    = "irrigation"
	ActivityFertilization = "fertilization"
	ActivitySowing        = "sowing"
	ActivityPestControl   = "pest_control"
	ActivityHarvest       = "harvest"
	ActivityOther         = "other"
)

var ActivityTypes = []string{
	ActivityIrrigation, ActivityFertilization, ActivitySowing,
	ActivityPestControl, ActivityHarvest, ActivityOther,
}

type Activity struct {
	ActivityID     uint      `gorm:"primaryKey" json:"activity_id"`
	UserID         string    `gorm:"index" json:"user_id"`
	FieldID        string    `gorm:"index" json:"field_id,omitempty"`
	Type           string    `gorm:"index" json:"type"`
	Description    string    `json:"description"`
	QuantityValue  *float64  `json:"quantity_value,omitempty"`
	QuantityUnit   string    `json:"quantity_unit,omitempty"`
	ActivityDate   time.Time `gorm:"index" json:"activity_date"`
	FeedbackRating *int      `json:"feedback_rating,omitempty"` // 1-5

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
