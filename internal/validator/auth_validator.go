package validator

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"marketplace/internal/domain/model"
	"marketplace/internal/repository"
	"marketplace/internal/usecase"
)

// パスワード最低文字数
const minPasswordLen = 6

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type authValidator struct {
	users repository.UserRepository
}

// Usecaseは interface を依存注入
func NewAuthValidator(users repository.UserRepository) usecase.AuthValidator {
	return &authValidator{users: users}
}

// サインアップの入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, in usecase.RegisterInput) error {
	// 必須チェック
	if in.Email == "" || in.Password == "" {
		return invalid("email and password are required")
	}

	// email形式
	if !isEmailLike(in.Email) {
		return invalid("invalid email")
	}

	if utf8.RuneCountInString(in.Password) < minPasswordLen {
		return invalid("Password should be at least 6 characters")
	}

	if !in.Role.Valid() {
		return invalid("invalid role")
	}
	if strings.TrimSpace(in.FullName) == "" {
		return invalid("full_name is required")
	}
	// 出品者は会社名が必須
	if in.Role == model.RoleSeller && strings.TrimSpace(in.CompanyName) == "" {
		return invalid("company_name is required")
	}

	// email重複チェック（DBが必要）
	_, err := v.users.FindByEmail(ctx, in.Email)
	if err == nil {
		return usecase.NewHTTPError(http.StatusConflict, "User already registered")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	// 必須チェック
	if email == "" || password == "" {
		return invalid("email and password are required")
	}

	// email形式
	if !isEmailLike(email) {
		return invalid("invalid email")
	}

	return nil
}

func invalid(msg string) error {
	return usecase.NewHTTPError(http.StatusBadRequest, msg)
}

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	return emailRe.MatchString(s)
}
