package repository

import (
	"context"

	"jewelrystore/internal/domain/model"
)

type OrderItemRepository interface {
	// 1回のINSERTでまとめて作成
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	FindByID(ctx context.Context, orderID int64, itemID int64) (model.OrderItem, error)
	UpdateQuantity(ctx context.Context, itemID int64, qty int64) error
}
