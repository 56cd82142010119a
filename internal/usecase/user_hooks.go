package usecase

import (
	"context"

	"jewelrystore/internal/domain/model"
	"jewelrystore/internal/repository"
)

// ユーザー保存後の変更内容
type UserChange struct {
	Before  model.User
	After   model.User
	Created bool
}

// 保存後に明示的に呼ぶフック（登録順に実行）
type UserHook interface {
	AfterUserSave(ctx context.Context, change UserChange) error
}

func runUserHooks(ctx context.Context, hooks []UserHook, change UserChange) error {
	for _, h := range hooks {
		if err := h.AfterUserSave(ctx, change); err != nil {
			return err
		}
	}
	return nil
}

// ロールに対応するグループへ所属させる
type RoleGroupHook struct {
	groups repository.GroupRepository
}

func NewRoleGroupHook(groups repository.GroupRepository) *RoleGroupHook {
	return &RoleGroupHook{groups: groups}
}

func (h *RoleGroupHook) AfterUserSave(ctx context.Context, c UserChange) error {
	if !c.Created && c.Before.Role == c.After.Role {
		return nil
	}
	name := c.After.Role.GroupName()
	if name == "" {
		return nil
	}

	g, err := h.groups.FindOrCreateByName(ctx, name)
	if err != nil {
		return dbError(err)
	}
	if err := h.groups.ReplaceUserGroups(ctx, c.After.ID, []model.Group{g}); err != nil {
		return dbError(err)
	}
	return nil
}

// ロール変更・停止で発行済みのトークンを無効にする
type TokenVersionHook struct {
	users repository.UserRepository
}

func NewTokenVersionHook(users repository.UserRepository) *TokenVersionHook {
	return &TokenVersionHook{users: users}
}

func (h *TokenVersionHook) AfterUserSave(ctx context.Context, c UserChange) error {
	if c.Created {
		return nil
	}
	if c.Before.Role == c.After.Role && (c.After.IsActive || !c.Before.IsActive) {
		return nil
	}
	if err := h.users.IncrementTokenVersion(ctx, c.After.ID); err != nil {
		return dbError(err)
	}
	return nil
}
