package repository

import (
	"context"
	"errors"

	"jewelrystore/internal/domain/model"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("not found")

// 一覧検索
type ProductListQuery struct {
	Page     int
	Limit    int
	Q        string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     string
}

// 商品の永続化（保存・取得・ロック・在庫一括更新）を約束。
type ProductRepository interface {
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	// 削除済みは含めない
	FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error)

	// SELECT ... FOR UPDATE（id昇順）。削除済みも返すので呼び出し側で判定する
	LockByIDs(ctx context.Context, ids []int64) ([]model.Product, error)
	// product_id -> 新しい在庫 を1本のUPDATEで反映
	BulkUpdateStock(ctx context.Context, stocks map[int64]int64) error

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, id int64) error
	CountActive(ctx context.Context) (int64, error)
}
