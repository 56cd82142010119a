package repository

import (
	"context"

	"jewelrystore/internal/domain/model"
)

// 店舗設定（1行だけ）
type SettingRepository interface {
	// 無ければデフォルト値で作る
	GetOrCreate(ctx context.Context) (model.SystemSetting, error)
	Save(ctx context.Context, s model.SystemSetting) error
}
