package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"marketplace/internal/config"
	"marketplace/internal/domain/model"
	"marketplace/internal/pricing"
	"marketplace/internal/repository"
	"marketplace/internal/session"

	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, in RegisterInput) error
	ValidateLogin(ctx context.Context, email string, password string) error
}

type RegisterInput struct {
	Email       string
	Password    string
	Role        model.Role
	FullName    string
	CompanyName string
	// 出品者のロゴ（任意）
	Logo *Upload
}

type JwtAccessTokenDTO struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenVersion int    `json:"token_version"`
}

type AuthLoginResponse struct {
	Profile  model.Profile     `json:"profile"`
	Currency pricing.Currency  `json:"currency"`
	Token    JwtAccessTokenDTO `json:"token"`
}

type MeResponse struct {
	Profile  model.Profile    `json:"profile"`
	Currency pricing.Currency `json:"currency"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

type AuthUsecase struct {
	cfg       config.Config
	users     repository.UserRepository
	profiles  repository.ProfileRepository
	loader    ProfileLoader
	sessions  *session.Manager
	storage   ObjectStorage
	validator AuthValidator
	clock     Clock
	ids       IDGenerator
	log       zerolog.Logger
}

func NewAuthUsecase(
	cfg config.Config,
	users repository.UserRepository,
	profiles repository.ProfileRepository,
	loader ProfileLoader,
	sessions *session.Manager,
	storage ObjectStorage,
	validator AuthValidator,
	clock Clock,
	ids IDGenerator,
	log zerolog.Logger,
) *AuthUsecase {
	return &AuthUsecase{
		cfg:       cfg,
		users:     users,
		profiles:  profiles,
		loader:    loader,
		sessions:  sessions,
		storage:   storage,
		validator: validator,
		clock:     clock,
		ids:       ids,
		log:       log,
	}
}

func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (*SuccessResponse, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)
	in.CompanyName = strings.TrimSpace(in.CompanyName)

	//入力検証（validatorに寄せる）
	if err := u.validator.ValidateRegister(ctx, in); err != nil {
		return nil, err
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errInternal
	}

	user := &model.User{
		ID:           u.ids.NewID(),
		Email:        in.Email,
		PasswordHash: string(pwHash),
		TokenVersion: 0,
		IsActive:     true,
	}
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, NewHTTPError(http.StatusConflict, "User already registered")
		}
		u.log.Error().Err(err).Msg("create user")
		return nil, errInternal
	}

	profile := model.Profile{
		ID:       user.ID,
		Email:    user.Email,
		Role:     in.Role,
		FullName: in.FullName,
	}

	if in.Role == model.RoleSeller {
		company := in.CompanyName
		profile.CompanyName = &company

		//ロゴは失敗しても登録は続ける
		if in.Logo != nil && len(in.Logo.Body) > 0 {
			path := fmt.Sprintf("logos/%s_%d", user.ID, u.clock.Now().UnixMilli())
			url, err := u.storage.Upload(ctx, path, in.Logo.ContentType, in.Logo.Body)
			if err != nil {
				u.log.Warn().Err(err).Str("user_id", user.ID).Msg("logo upload failed")
			} else {
				profile.LogoURL = url
			}
		}
	}

	//同じIDのプロフィールが既にあるなら作成済みとして扱う
	if err := u.profiles.Create(ctx, profile); err != nil && !errors.Is(err, repository.ErrConflict) {
		u.log.Error().Err(err).Str("user_id", user.ID).Msg("create profile")
		return nil, errInternal
	}

	return &SuccessResponse{Message: MsgRegistered}, nil
}

func (u *AuthUsecase) Login(ctx context.Context, email, password string) (*AuthLoginResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	// 1) 入力検証
	if err := u.validator.ValidateLogin(ctx, email, password); err != nil {
		return nil, err
	}

	//ユーザー取得
	user, err := u.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewHTTPError(http.StatusUnauthorized, MsgInvalidCredentials)
	}
	if err != nil {
		u.log.Error().Err(err).Msg("find user by email")
		return nil, errInternal
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return nil, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	//パスワード照合（bcrypt）
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, NewHTTPError(http.StatusUnauthorized, MsgInvalidCredentials)
	}

	//プロフィールはまだ見えないことがあるので待ちながら取る
	profile, err := u.loadProfile(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	//last_login更新
	now := u.clock.Now()
	user.LastLoginAt = &now
	if err := u.users.Update(ctx, user); err != nil {
		u.log.Warn().Err(err).Str("user_id", user.ID).Msg("update last_login_at")
	}

	s := u.sessions.Start(profile)

	token, expiresIn, err := u.issueAccessToken(user, profile.Role)
	if err != nil {
		return nil, errInternal
	}

	return &AuthLoginResponse{
		Profile:  s.Profile(),
		Currency: s.Currency(),
		Token: JwtAccessTokenDTO{
			AccessToken:  token,
			ExpiresIn:    expiresIn,
			TokenVersion: user.TokenVersion,
		},
	}, nil
}

// Logout は発行済みトークンを無効にしてセッション（カート）を捨てる。
func (u *AuthUsecase) Logout(ctx context.Context, userID string) (*SuccessResponse, error) {
	if userID == "" {
		return nil, errUnauthorized
	}
	if err := u.users.IncrementTokenVersion(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errUnauthorized
		}
		return nil, errInternal
	}
	u.sessions.End(userID)

	return &SuccessResponse{Message: "logout success"}, nil
}

func (u *AuthUsecase) Me(s *session.Session) MeResponse {
	return MeResponse{Profile: s.Profile(), Currency: s.Currency()}
}

// Resume は有効なトークンに対応するセッションを返す。
// プロセス再起動などで無ければプロフィールを取り直して作る（カートは空）。
func (u *AuthUsecase) Resume(ctx context.Context, userID string) (*session.Session, error) {
	if s, ok := u.sessions.Get(userID); ok {
		return s, nil
	}

	profile, err := u.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s, ok := u.sessions.Get(userID); ok {
		return s, nil
	}
	return u.sessions.Start(profile), nil
}

func (u *AuthUsecase) loadProfile(ctx context.Context, userID string) (model.Profile, error) {
	profile, err := u.loader.Load(ctx, userID)
	if errors.Is(err, session.ErrProfileMissing) {
		return model.Profile{}, NewHTTPError(http.StatusUnauthorized, MsgProfileNotFound)
	}
	if err != nil {
		u.log.Error().Err(err).Str("user_id", userID).Msg("load profile")
		return model.Profile{}, errInternal
	}
	return profile, nil
}

// jwt発行
func (u *AuthUsecase) issueAccessToken(user *model.User, role model.Role) (string, int, error) {
	now := u.clock.Now()
	exp := now.Add(u.cfg.AccessTokenTTL)

	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(role),
		"tv":   user.TokenVersion,
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := t.SignedString([]byte(u.cfg.JWTSecret))
	if err != nil {
		return "", 0, err
	}

	return signed, int(u.cfg.AccessTokenTTL / time.Second), nil
}
