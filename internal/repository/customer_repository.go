package repository

import (
	"context"

	"jewelrystore/internal/domain/model"
)

// 顧客を保存・取得する窓口
type CustomerRepository interface {
	Create(ctx context.Context, c model.Customer) (model.Customer, error)
	List(ctx context.Context, q string, page int, limit int) ([]model.Customer, int64, error)
	FindByID(ctx context.Context, id int64) (model.Customer, error)
	Update(ctx context.Context, c model.Customer) error
}
