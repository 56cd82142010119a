package usecase

import (
	"context"
	"net/http"
	"strings"

	"jewelrystore/internal/domain/model"
	"jewelrystore/internal/repository"

	"go.uber.org/zap"
)

// 管理者によるユーザー更新（nilは変更しない）
type UserUpdateInput struct {
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
}

type UserListOutput struct {
	Items []UserDTO `json:"items"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}

type UserUsecase struct {
	users     repository.UserRepository
	auditRepo repository.AuditLogRepository
	validator AuthValidator
	hooks     []UserHook
	clock     Clock
	logger    *zap.Logger
}

func NewUserUsecase(users repository.UserRepository, auditRepo repository.AuditLogRepository, validator AuthValidator, clock Clock, logger *zap.Logger, hooks ...UserHook) *UserUsecase {
	return &UserUsecase{users: users, auditRepo: auditRepo, validator: validator, hooks: hooks, clock: clock, logger: logger}
}

func (u *UserUsecase) List(ctx context.Context, page int, limit int) (UserListOutput, error) {
	if page < 1 {
		return UserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return UserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	users, total, err := u.users.List(ctx, page, limit)
	if err != nil {
		return UserListOutput{}, dbError(err)
	}
	out := UserListOutput{Items: make([]UserDTO, 0, len(users)), Total: total, Page: page, Limit: limit}
	for i := range users {
		out.Items = append(out.Items, toUserDTO(&users[i]))
	}
	return out, nil
}

type userAudit struct {
	Role     model.Role `json:"role"`
	IsActive bool       `json:"is_active"`
	Phone    string     `json:"phone"`
	Email    string     `json:"email"`
}

// 保存したあとにフックを順に呼ぶ（グループ同期・トークン失効）
func (u *UserUsecase) Update(ctx context.Context, actorUserID int64, targetUserID int64, in UserUpdateInput) (UserDTO, error) {
	if targetUserID <= 0 {
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	user, err := u.users.FindByID(ctx, targetUserID)
	if err != nil {
		return UserDTO{}, dbError(err)
	}
	if user == nil {
		return UserDTO{}, &model.NotFoundError{Resource: "user", ID: targetUserID}
	}
	before := *user

	if in.Role != nil {
		role := model.Role(strings.TrimSpace(*in.Role))
		if !role.Valid() {
			return UserDTO{}, NewHTTPError(http.StatusBadRequest, "invalid role")
		}
		user.Role = role
	}
	if in.IsActive != nil {
		//自分自身は停止できない
		if !*in.IsActive && actorUserID == targetUserID {
			return UserDTO{}, NewHTTPError(http.StatusBadRequest, "cannot deactivate yourself")
		}
		user.IsActive = *in.IsActive
	}
	if err := applyContactChanges(ctx, u.users, u.validator, user, in.Phone, in.Email); err != nil {
		return UserDTO{}, err
	}

	if err := u.users.Update(ctx, user); err != nil {
		return UserDTO{}, dbError(err)
	}

	if err := runUserHooks(ctx, u.hooks, UserChange{Before: before, After: *user}); err != nil {
		return UserDTO{}, err
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorUserID,
		Action:       model.AuditActionUpdateUser,
		ResourceType: model.AuditResourceUser,
		ResourceID:   targetUserID,
		BeforeJSON:   toJSON(userAudit{Role: before.Role, IsActive: before.IsActive, Phone: before.Phone, Email: before.Email}),
		AfterJSON:    toJSON(userAudit{Role: user.Role, IsActive: user.IsActive, Phone: user.Phone, Email: user.Email}),
		CreatedAt:    u.clock.Now(),
	}); err != nil {
		return UserDTO{}, dbError(err)
	}

	saved, err := u.users.FindByID(ctx, targetUserID)
	if err != nil || saved == nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if before.Role != saved.Role {
		u.logger.Info("user role changed",
			zap.Int64("user_id", targetUserID),
			zap.String("from", string(before.Role)),
			zap.String("to", string(saved.Role)))
	}
	return toUserDTO(saved), nil
}

// 電話番号・メールの変更（管理者更新とプロフィール更新で共通）
func applyContactChanges(ctx context.Context, users repository.UserRepository, validator AuthValidator, user *model.User, phone *string, email *string) error {
	if phone != nil {
		p := strings.TrimSpace(*phone)
		if len(p) > 15 {
			return NewHTTPError(http.StatusBadRequest, "phone is too long")
		}
		user.Phone = p
	}
	if email != nil {
		e := strings.TrimSpace(*email)
		if err := validator.ValidateEmail(ctx, e); err != nil {
			return NewHTTPError(http.StatusBadRequest, "invalid email")
		}
		if e != user.Email {
			other, err := users.FindByEmail(ctx, e)
			if err != nil {
				return dbError(err)
			}
			if other != nil {
				return NewHTTPError(http.StatusConflict, "email already used")
			}
			user.Email = e
		}
	}
	return nil
}
