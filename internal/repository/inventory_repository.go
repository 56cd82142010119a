package repository

import (
	"context"

	"jewelrystore/internal/domain/model"
)

// 在庫の直接更新と履歴保存をまとめた約束。
type InventoryRepository interface {
	// 在庫を現在値に更新し、更新前の値を返す
	SetStockWithAdjustment(ctx context.Context, adminUserID int64, productID int64, newStock int64, reason string) (int64, error)
	ListAdjustments(ctx context.Context, productID int64, limit int) ([]model.InventoryAdjustment, error)
}
