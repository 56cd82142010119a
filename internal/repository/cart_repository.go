package repository

import (
	"context"

	"jewelrystore/internal/domain/model"
)

// セッションIDをキーにしたカートの保存先
type CartStore interface {
	// 無ければ空のカートを返す
	Get(ctx context.Context, sessionID string) (model.Cart, error)
	Save(ctx context.Context, sessionID string, cart model.Cart) error
	Delete(ctx context.Context, sessionID string) error
}
