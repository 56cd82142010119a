package repository

import (
	"context"
	"errors"

	"jewelrystore/internal/domain/model"
	repo "jewelrystore/internal/repository"

	"gorm.io/gorm"
)

type debtGormRepository struct {
	db *gorm.DB
}

func NewDebtGormRepository(db *gorm.DB) repo.DebtRepository {
	return &debtGormRepository{db: db}
}

func (r *debtGormRepository) List(ctx context.Context, accountantID *int64) ([]model.Debt, error) {
	q := r.db.WithContext(ctx).Model(&model.Debt{})
	if accountantID != nil {
		q = q.Where("accountant_id = ?", *accountantID)
	}
	var list []model.Debt
	if err := q.Order("updated_at desc").Find(&list).Error; err != nil {
		return []model.Debt{}, err
	}
	return list, nil
}

func (r *debtGormRepository) FindByID(ctx context.Context, id int64) (model.Debt, error) {
	var d model.Debt
	err := r.db.WithContext(ctx).First(&d, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Debt{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Debt{}, err
	}
	return d, nil
}

func (r *debtGormRepository) Create(ctx context.Context, d model.Debt) (model.Debt, error) {
	if err := r.db.WithContext(ctx).Create(&d).Error; err != nil {
		return model.Debt{}, err
	}
	return d, nil
}

func (r *debtGormRepository) Update(ctx context.Context, d model.Debt) error {
	res := r.db.WithContext(ctx).
		Model(&model.Debt{}).
		Where("id = ?", d.ID).
		Select("amount", "interest_rate", "note", "updated_at").
		Updates(&d)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *debtGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Debt{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
