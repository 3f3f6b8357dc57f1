package service

import (
	"fmt"
	"io"
	"time"

	"agrisentry/entities"
	"agrisentry/pkg/activity/repository"
)

type ActivityService interface {
	Create(a *entities.Activity) (*entities.Activity, error)
	List(uid string, f repository.Filter) ([]entities.Activity, error)
	UpdatePartial(id uint, uid string, patch ActivityPatch) (*entities.Activity, error)
	Delete(id uint, uid string) error
	Recent(uid string, n int) ([]entities.Activity, error)
	ExportXLSX(uid string, f repository.Filter, w io.Writer) error
}

// ActivityPatch changes only the non-nil fields.
type ActivityPatch struct {
	FieldID        *string    `json:"field_id"`
	Type           *string    `json:"type"`
	Description    *string    `json:"description"`
	QuantityValue  *float64   `json:"quantity_value"`
	QuantityUnit   *string    `json:"quantity_unit"`
	ActivityDate   *time.Time `json:"activity_date"`
	FeedbackRating *int       `json:"feedback_rating"`
}

// ValidationError reports a rejected activity field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}
