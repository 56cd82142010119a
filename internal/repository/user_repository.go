package repository

import (
	"context"

	"jewelrystore/internal/domain/model"
)

// 保存・取得を約束
// FindBy系は見つからなければ(nil, nil)
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context, page int, limit int) ([]model.User, int64, error)
	// ユーザー情報の更新=>アクティブかどうか・ロールの変更・最後のログイン更新など
	Update(ctx context.Context, user *model.User) error
	//トークンのバージョンを＋１
	IncrementTokenVersion(ctx context.Context, userID int64) error
}

type GroupRepository interface {
	FindOrCreateByName(ctx context.Context, name string) (model.Group, error)
	// 所属グループを置き換える
	ReplaceUserGroups(ctx context.Context, userID int64, groups []model.Group) error
}
