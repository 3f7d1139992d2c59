package service

import (
	"context"
	"errors"
	"time"

	"reception/internal/middleware"
	"reception/internal/model"
	"reception/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// --- DTOs ---

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// LoginResult describes a successful login of either identity class.
// UserType is the discriminator: exactly "admin" or "user", always agreeing
// with which credential table validated.
type LoginResult struct {
	UserType     string
	Redirect     string
	AccessToken  string // admin only
	RefreshToken string // admin only
	CustomUser   *model.CustomUser
}

// TokenPair is a freshly minted access/refresh pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// ErrInvalidCredentials is the single generic login failure: the caller must
// not learn which lookup missed (no account enumeration).
var ErrInvalidCredentials = errors.New("Invalid email or password")

// --- Interface ---

type AuthService interface {
	// Login checks the admin table first, then the custom-user table.
	// First success wins; exhaustion of both yields ErrInvalidCredentials.
	Login(ctx context.Context, req LoginRequest, meta RequestMeta) (*LoginResult, error)
	// Logout blacklists the presented admin refresh token (custom sessions
	// have no server-side artifact to revoke) and records the audit entry.
	Logout(ctx context.Context, refreshToken string, meta RequestMeta) error
	// Refresh rotates a valid refresh token: the old token is revoked and a
	// new pair is issued. Revoked, expired, and unknown tokens are rejected.
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	// EnsureSeedAdmin provisions the out-of-band administrative account on
	// first boot when the admin table is empty.
	EnsureSeedAdmin(ctx context.Context, username, email, password string) error
}

type authService struct {
	admins     repository.AdminUserRepository
	customs    repository.CustomUserRepository
	tokens     repository.RefreshTokenRepository
	activities ActivityService
}

func NewAuthService(
	admins repository.AdminUserRepository,
	customs repository.CustomUserRepository,
	tokens repository.RefreshTokenRepository,
	activities ActivityService,
) AuthService {
	return &authService{
		admins:     admins,
		customs:    customs,
		tokens:     tokens,
		activities: activities,
	}
}

func (s *authService) Login(ctx context.Context, req LoginRequest, meta RequestMeta) (*LoginResult, error) {
	// Try admin login first. A lookup miss is non-fatal: fall through.
	if admin, err := s.admins.GetByEmail(ctx, req.Email); err == nil {
		if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)) == nil && admin.CanLogin() {
			pair, err := s.issueTokenPair(ctx, admin)
			if err != nil {
				return nil, err
			}

			meta.Actor = model.Actor{Admin: admin}
			record(ctx, s.activities, model.ActionLogin, model.EntityAuth, admin.ID.String(), admin.Username,
				"Admin logged in", meta)

			return &LoginResult{
				UserType:     middleware.UserTypeAdmin,
				Redirect:     "/auth/admin/dashboard/",
				AccessToken:  pair.AccessToken,
				RefreshToken: pair.RefreshToken,
			}, nil
		}
	}

	// Then the custom-user table.
	if custom, err := s.customs.GetByEmail(ctx, req.Email); err == nil {
		if bcrypt.CompareHashAndPassword([]byte(custom.LoginPassword), []byte(req.Password)) == nil {
			meta.Actor = model.Actor{Custom: custom}
			record(ctx, s.activities, model.ActionLogin, model.EntityAuth, custom.ID.String(), custom.FullName,
				"User logged in", meta)

			return &LoginResult{
				UserType:   middleware.UserTypeCustom,
				Redirect:   "/auth/user/dashboard/",
				CustomUser: custom,
			}, nil
		}
	}

	return nil, ErrInvalidCredentials
}

func (s *authService) Logout(ctx context.Context, refreshToken string, meta RequestMeta) error {
	if meta.Actor.IsAdmin() && refreshToken != "" {
		// Best-effort blacklist; a missing row is not a logout failure.
		if err := s.tokens.Revoke(ctx, refreshToken); err != nil {
			return err
		}
	}

	if !meta.Actor.IsAnonymous() {
		record(ctx, s.activities, model.ActionLogout, model.EntityAuth, "", meta.Actor.DisplayName(),
			"Logged out", meta)
	}
	return nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	stored, err := s.tokens.GetByToken(ctx, refreshToken)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}
	if stored.Revoked || time.Now().After(stored.ExpiresAt) {
		return nil, errors.New("refresh token expired or revoked")
	}

	admin, err := s.admins.GetByID(ctx, stored.AdminUserID.String())
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}

	// Rotation: the old token joins the blacklist before the new pair exists.
	if err := s.tokens.Revoke(ctx, refreshToken); err != nil {
		return nil, err
	}
	return s.issueTokenPair(ctx, admin)
}

func (s *authService) EnsureSeedAdmin(ctx context.Context, username, email, password string) error {
	total, err := s.admins.Count(ctx)
	if err != nil {
		return err
	}
	if total > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.admins.Create(ctx, &model.AdminUser{
		Username:    username,
		Email:       email,
		Password:    string(hashed),
		IsSuperuser: true,
		IsStaff:     true,
	})
}

func (s *authService) issueTokenPair(ctx context.Context, admin *model.AdminUser) (*TokenPair, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": admin.ID.String(),
		"iat": now.Unix(),
		"exp": now.Add(middleware.AccessTokenTTL).Unix(),
	})
	accessToken, err := token.SignedString(middleware.GetJWTSecret())
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	refreshToken := uuid.NewString() + uuid.NewString()
	if err := s.tokens.Create(ctx, &model.RefreshToken{
		AdminUserID: admin.ID,
		Token:       refreshToken,
		ExpiresAt:   now.Add(middleware.RefreshTokenTTL),
	}); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
