package repositoryImp

import (
	"gorm.io/gorm"

	"agrisentry/entities"
	"agrisentry/pkg/crop/repository"
)

type cropRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.CropRepository { return &cropRepo{db} }

func (r *cropRepo) Create(c *entities.Crop) error { return r.db.Create(c).Error }

func (r *cropRepo) FindByID(id uint, uid string) (*entities.Crop, error) {
	var c entities.Crop
	if err := r.db.Where("crop_id = ? AND user_id = ?", id, uid).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByUser returns the newest entries first.
func (r *cropRepo) ListByUser(uid string) ([]entities.Crop, error) {
	var out []entities.Crop
	if err := r.db.Where("user_id = ?", uid).Order("created_at DESC, crop_id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *cropRepo) Delete(id uint, uid string) error {
	res := r.db.Where("crop_id = ? AND user_id = ?", id, uid).Delete(&entities.Crop{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
