package repositoryImp

import (
	"gorm.io/gorm"

	"agrisentry/entities"
	"agrisentry/pkg/activity/repository"
)

type activityRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.ActivityRepository { return &activityRepo{db} }

func (r *activityRepo) Create(a *entities.Activity) error { return r.db.Create(a).Error }

func (r *activityRepo) FindByID(id uint, uid string) (*entities.Activity, error) {
	var a entities.Activity
	if err := r.db.Where("activity_id = ? AND user_id = ?", id, uid).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *activityRepo) ListByUser(uid string, f repository.Filter) ([]entities.Activity, error) {
	q := r.db.Where("user_id = ?", uid)
	if f.From != nil {
		q = q.Where("activity_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("activity_date < ?", *f.To)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	var out []entities.Activity
	if err := q.Order("activity_date DESC, activity_id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *activityRepo) Update(a *entities.Activity) error { return r.db.Save(a).Error }

func (r *activityRepo) Delete(id uint, uid string) error {
	res := r.db.Where("activity_id = ? AND user_id = ?", id, uid).Delete(&entities.Activity{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *activityRepo) Recent(uid string, n int) ([]entities.Activity, error) {
	var out []entities.Activity
	if err := r.db.Where("user_id = ?", uid).Order("created_at DESC, activity_id DESC").Limit(n).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
