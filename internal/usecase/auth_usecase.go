package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"jewelrystore/internal/authtoken"
	"jewelrystore/internal/config"
	"jewelrystore/internal/domain/model"
	"jewelrystore/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, username string, email string, password string) error
	ValidateLogin(ctx context.Context, login string, password string) error
	ValidatePassword(ctx context.Context, password string) error
	ValidateEmail(ctx context.Context, email string) error
}

type UserDTO struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	Role         string     `json:"role"`
	Groups       []string   `json:"groups"`
	TokenVersion int        `json:"token_version"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}

type JwtAccessTokenDTO struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenVersion int    `json:"token_version"`
}

type AuthRegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type AuthRegisterResponse struct {
	User UserDTO `json:"user"`
}

// loginはusernameかemail
type AuthLoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type AuthLoginResponse struct {
	User  UserDTO           `json:"user"`
	Token JwtAccessTokenDTO `json:"token"`
}

// nilは変更しない
type ProfileUpdateRequest struct {
	Phone *string `json:"phone"`
	Email *string `json:"email"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type DeactivateRequest struct {
	Password string `json:"password"`
}

type ForceLogoutResponse struct {
	UserID          int64 `json:"user_id"`
	NewTokenVersion int   `json:"new_token_version"`
}

type AuthUsecase struct {
	cfg       config.Config
	users     repository.UserRepository
	validator AuthValidator
	hooks     []UserHook
	clock     Clock
}

func NewAuthUsecase(
	cfg config.Config,
	users repository.UserRepository,
	validator AuthValidator,
	clock Clock,
	hooks ...UserHook,
) *AuthUsecase {
	return &AuthUsecase{
		cfg:       cfg,
		users:     users,
		validator: validator,
		hooks:     hooks,
		clock:     clock,
	}
}

// 新規登録はsales_staff
func (u *AuthUsecase) Register(ctx context.Context, req AuthRegisterRequest) (*AuthRegisterResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if err := u.validator.ValidateRegister(ctx, req.Username, req.Email, req.Password); err != nil {
		return nil, err
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrInternal
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: string(pwHash),
		Role:         model.RoleSalesStaff,
		TokenVersion: 0,
		IsActive:     true,
	}

	if err := u.users.Create(ctx, user); err != nil {
		return nil, ErrConflict
	}

	if err := runUserHooks(ctx, u.hooks, UserChange{After: *user, Created: true}); err != nil {
		return nil, err
	}

	//グループ反映後を読み直す
	saved, err := u.users.FindByID(ctx, user.ID)
	if err != nil || saved == nil {
		return nil, ErrInternal
	}

	return &AuthRegisterResponse{User: toUserDTO(saved)}, nil
}

func (u *AuthUsecase) Login(ctx context.Context, req AuthLoginRequest) (*AuthLoginResponse, error) {
	login := strings.TrimSpace(req.Login)
	if err := u.validator.ValidateLogin(ctx, login, req.Password); err != nil {
		return nil, err
	}

	var user *model.User
	var err error
	if strings.Contains(login, "@") {
		user, err = u.users.FindByEmail(ctx, login)
	} else {
		user, err = u.users.FindByUsername(ctx, login)
	}
	if err != nil || user == nil {
		return nil, ErrUnauthorized
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return nil, ErrForbidden
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrUnauthorized
	}

	now := u.clock.Now()
	user.LastLoginAt = &now
	_ = u.users.Update(ctx, user)

	accessToken, expiresIn, err := u.issueAccessToken(user, now)
	if err != nil {
		return nil, ErrInternal
	}

	return &AuthLoginResponse{
		User: toUserDTO(user),
		Token: JwtAccessTokenDTO{
			AccessToken:  accessToken,
			ExpiresIn:    expiresIn,
			TokenVersion: user.TokenVersion,
		},
	}, nil
}

func (u *AuthUsecase) Me(ctx context.Context, userID int64) (*UserDTO, error) {
	if userID <= 0 {
		return nil, ErrUnauthorized
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil || user == nil {
		return nil, ErrUnauthorized
	}

	if !user.IsActive {
		return nil, ErrForbidden
	}

	dto := toUserDTO(user)
	return &dto, nil
}

// 発行済みのアクセストークンを全て無効にする
func (u *AuthUsecase) ForceLogout(ctx context.Context, targetUserID int64) (*ForceLogoutResponse, error) {
	if targetUserID <= 0 {
		return nil, ErrValidation
	}

	if err := u.users.IncrementTokenVersion(ctx, targetUserID); err != nil {
		return nil, ErrInternal
	}

	user, err := u.users.FindByID(ctx, targetUserID)
	if err != nil {
		return nil, ErrInternal
	}
	if user == nil {
		return nil, &model.NotFoundError{Resource: "user", ID: targetUserID}
	}

	return &ForceLogoutResponse{
		UserID:          user.ID,
		NewTokenVersion: user.TokenVersion,
	}, nil
}

// jwt発行
func (u *AuthUsecase) issueAccessToken(user *model.User, now time.Time) (string, int, error) {
	ttl := u.cfg.AccessTokenTTL
	signed, err := authtoken.Sign(u.cfg.JWTSecret, authtoken.NewClaims(*user, now, ttl))
	if err != nil {
		return "", 0, err
	}
	return signed, int(ttl.Seconds()), nil
}

// 自分の電話番号・メールを更新
func (u *AuthUsecase) UpdateProfile(ctx context.Context, userID int64, req ProfileUpdateRequest) (*UserDTO, error) {
	user, err := u.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	before := *user

	if err := applyContactChanges(ctx, u.users, u.validator, user, req.Phone, req.Email); err != nil {
		return nil, err
	}
	if err := u.users.Update(ctx, user); err != nil {
		return nil, dbError(err)
	}
	if err := runUserHooks(ctx, u.hooks, UserChange{Before: before, After: *user}); err != nil {
		return nil, err
	}

	dto := toUserDTO(user)
	return &dto, nil
}

// パスワード変更。古いトークンは全て失効し、新しいトークンを返す
func (u *AuthUsecase) ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest) (*AuthLoginResponse, error) {
	user, err := u.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return nil, NewHTTPError(http.StatusBadRequest, "old password is incorrect")
	}
	if err := u.validator.ValidatePassword(ctx, req.NewPassword); err != nil {
		return nil, err
	}
	if req.NewPassword == req.OldPassword {
		return nil, NewHTTPError(http.StatusBadRequest, "new password must differ")
	}

	pwHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrInternal
	}
	user.PasswordHash = string(pwHash)
	if err := u.users.Update(ctx, user); err != nil {
		return nil, dbError(err)
	}
	if err := u.users.IncrementTokenVersion(ctx, user.ID); err != nil {
		return nil, dbError(err)
	}
	user.TokenVersion++

	now := u.clock.Now()
	accessToken, expiresIn, err := u.issueAccessToken(user, now)
	if err != nil {
		return nil, ErrInternal
	}
	return &AuthLoginResponse{
		User: toUserDTO(user),
		Token: JwtAccessTokenDTO{
			AccessToken:  accessToken,
			ExpiresIn:    expiresIn,
			TokenVersion: user.TokenVersion,
		},
	}, nil
}

// 自分の発行済みトークンを全て失効させる
func (u *AuthUsecase) Logout(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrUnauthorized
	}
	if err := u.users.IncrementTokenVersion(ctx, userID); err != nil {
		return ErrInternal
	}
	return nil
}

// 自分のアカウントを停止する。トークンの失効はフックで行う
func (u *AuthUsecase) Deactivate(ctx context.Context, userID int64, req DeactivateRequest) error {
	user, err := u.activeUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return NewHTTPError(http.StatusBadRequest, "password is incorrect")
	}

	before := *user
	user.IsActive = false
	if err := u.users.Update(ctx, user); err != nil {
		return dbError(err)
	}
	return runUserHooks(ctx, u.hooks, UserChange{Before: before, After: *user})
}

func (u *AuthUsecase) activeUser(ctx context.Context, userID int64) (*model.User, error) {
	if userID <= 0 {
		return nil, ErrUnauthorized
	}
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, dbError(err)
	}
	if user == nil {
		return nil, ErrUnauthorized
	}
	if !user.IsActive {
		return nil, ErrForbidden
	}
	return user, nil
}

// model.UserをAPI返却用DTOに変換。
func toUserDTO(u *model.User) UserDTO {
	groups := make([]string, 0, len(u.Groups))
	for _, g := range u.Groups {
		groups = append(groups, g.Name)
	}
	return UserDTO{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Phone:        u.Phone,
		Role:         string(u.Role),
		Groups:       groups,
		TokenVersion: u.TokenVersion,
		IsActive:     u.IsActive,
		LastLoginAt:  u.LastLoginAt,
	}
}
