package repository

import "agrisentry/entities"

type CropRepository interface {
	Create(c *entities.Crop) error
	FindByID(id uint, uid string) (*entities.Crop, error)
	ListByUser(uid string) ([]entities.Crop, error)
	Delete(id uint, uid string) error
}
