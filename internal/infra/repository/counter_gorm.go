package repository

import (
	"context"
	"errors"

	"jewelrystore/internal/domain/model"
	repo "jewelrystore/internal/repository"

	"gorm.io/gorm"
)

type counterGormRepository struct {
	db *gorm.DB
}

func NewCounterGormRepository(db *gorm.DB) repo.CounterRepository {
	return &counterGormRepository{db: db}
}

func (r *counterGormRepository) List(ctx context.Context) ([]model.Counter, error) {
	var list []model.Counter
	if err := r.db.WithContext(ctx).Order("id asc").Find(&list).Error; err != nil {
		return []model.Counter{}, err
	}
	return list, nil
}

func (r *counterGormRepository) FindByID(ctx context.Context, id int64) (model.Counter, error) {
	var c model.Counter
	err := r.db.WithContext(ctx).Preload("Products").First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Counter{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Counter{}, err
	}
	return c, nil
}

// 担当カウンター（複数あれば一番古いもの）
func (r *counterGormRepository) FindByAssignedEmployee(ctx context.Context, userID int64) (model.Counter, bool, error) {
	var c model.Counter
	err := r.db.WithContext(ctx).Where("assigned_employee_id = ?", userID).Order("id asc").First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Counter{}, false, nil
	}
	if err != nil {
		return model.Counter{}, false, err
	}
	return c, true, nil
}

func (r *counterGormRepository) Create(ctx context.Context, c model.Counter) (model.Counter, error) {
	if err := r.db.WithContext(ctx).Omit("Products").Create(&c).Error; err != nil {
		return model.Counter{}, err
	}
	return c, nil
}

func (r *counterGormRepository) Update(ctx context.Context, c model.Counter) error {
	res := r.db.WithContext(ctx).
		Model(&model.Counter{}).
		Where("id = ?", c.ID).
		Select("location", "assigned_employee_id", "manager_id", "updated_at").
		Updates(&c)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *counterGormRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c := model.Counter{ID: id}
		if err := tx.Model(&c).Association("Products").Clear(); err != nil {
			return err
		}
		res := tx.Delete(&model.Counter{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}

func (r *counterGormRepository) ReplaceProducts(ctx context.Context, counterID int64, productIDs []int64) error {
	products := make([]model.Product, 0, len(productIDs))
	for _, id := range productIDs {
		products = append(products, model.Product{ID: id})
	}
	c := model.Counter{ID: counterID}
	return r.db.WithContext(ctx).Model(&c).Association("Products").Replace(products)
}
