package validator

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"jewelrystore/internal/repository"
	"jewelrystore/internal/usecase"
)

var (
	// 入力が不正
	ErrInvalidInput = errors.New("invalid input")

	// emailが既に使用済み
	ErrEmailAlreadyUsed = errors.New("email already used")

	// usernameが既に使用済み
	ErrUsernameAlreadyUsed = errors.New("username already used")
)

var (
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_.@+-]{1,150}$`)
)

type authValidator struct {
	users repository.UserRepository
}

// Usecaseは interface を依存注入
func NewAuthValidator(users repository.UserRepository) usecase.AuthValidator {
	return &authValidator{users: users}
}

// サインアップの入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, username string, email string, password string) error {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	// 必須チェック
	if username == "" || email == "" || password == "" {
		return ErrInvalidInput
	}
	if !usernameRe.MatchString(username) {
		return ErrInvalidInput
	}
	if !isEmailLike(email) {
		return ErrInvalidInput
	}

	if err := v.ValidatePassword(ctx, password); err != nil {
		return err
	}

	// 重複チェック（DBが必要）
	u, err := v.users.FindByUsername(ctx, username)
	if err == nil && u != nil {
		return ErrUsernameAlreadyUsed
	}
	u, err = v.users.FindByEmail(ctx, email)
	if err == nil && u != nil {
		return ErrEmailAlreadyUsed
	}

	return nil
}

// ログインの入力を検証（usernameかemailのどちらか）
func (v *authValidator) ValidateLogin(ctx context.Context, login string, password string) error {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return ErrInvalidInput
	}
	if strings.Contains(login, "@") && !isEmailLike(login) {
		return ErrInvalidInput
	}
	return nil
}

// パスワード最低文字数（登録・パスワード変更）
func (v *authValidator) ValidatePassword(_ context.Context, password string) error {
	if len(password) < 8 || len(password) > 72 {
		return ErrInvalidInput
	}
	return nil
}

// email形式のみ（店舗設定・ユーザー更新）
func (v *authValidator) ValidateEmail(_ context.Context, email string) error {
	if !isEmailLike(strings.TrimSpace(email)) {
		return ErrInvalidInput
	}
	return nil
}

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	return emailRe.MatchString(s)
}
