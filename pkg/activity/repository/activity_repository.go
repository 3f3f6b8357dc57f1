package repository

import (
	"time"

	"agrisentry/entities"
)

// Filter narrows ListByUser. Zero values match everything; To is exclusive.
type Filter struct {
	From *time.Time
	To   *time.Time
	Type string
}

type ActivityRepository interface {
	Create(a *entities.Activity) error
	FindByID(id uint, uid string) (*entities.Activity, error)
	ListByUser(uid string, f Filter) ([]entities.Activity, error)
	Update(a *entities.Activity) error
	Delete(id uint, uid string) error
	Recent(uid string, n int) ([]entities.Activity, error)
}
