package repository

import (
	"context"
	"errors"

	"jewelrystore/internal/domain/model"
	repo "jewelrystore/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

// 在庫を「現在値」に更新し、調整履歴も残す
func (r *InventoryGormRepository) SetStockWithAdjustment(ctx context.Context, adminUserID int64, productID int64, newStock int64, reason string) (int64, error) {
	var before int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//注文確定と競合しないように行ロック
		var p model.Product
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, productID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repo.ErrNotFound
		}
		if err != nil {
			return err
		}
		before = p.Stock

		res := tx.Model(&model.Product{}).Where("id = ?", productID).Update("stock", newStock)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}

		adj := model.InventoryAdjustment{
			ProductID:   productID,
			AdminUserID: adminUserID,
			Before:      p.Stock,
			Delta:       newStock - p.Stock,
			Reason:      reason,
		}
		return tx.Create(&adj).Error
	})
	if err != nil {
		return 0, err
	}
	return before, nil
}

func (r *InventoryGormRepository) ListAdjustments(ctx context.Context, productID int64, limit int) ([]model.InventoryAdjustment, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var list []model.InventoryAdjustment
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id desc").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return []model.InventoryAdjustment{}, err
	}
	return list, nil
}
