package repository

import (
	"context"

	"jewelrystore/internal/domain/model"
)

type CounterRepository interface {
	List(ctx context.Context) ([]model.Counter, error)
	// 取り扱い商品も読み込む
	FindByID(ctx context.Context, id int64) (model.Counter, error)
	FindByAssignedEmployee(ctx context.Context, userID int64) (model.Counter, bool, error)
	Create(ctx context.Context, c model.Counter) (model.Counter, error)
	Update(ctx context.Context, c model.Counter) error
	Delete(ctx context.Context, id int64) error
	ReplaceProducts(ctx context.Context, counterID int64, productIDs []int64) error
}
