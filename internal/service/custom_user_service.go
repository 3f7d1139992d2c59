package service

import (
	"context"
	"errors"
	"fmt"

	"reception/internal/model"
	"reception/internal/repository"
	"reception/pkg/apperr"
	"reception/pkg/cache"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// --- DTOs ---

type RegisterRequest struct {
	FullName        string `json:"full_name" form:"full_name"`
	LoginEmail      string `json:"login_email" form:"login_email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

type UpdateCustomUserRequest struct {
	FullName   string `json:"full_name"`
	LoginEmail string `json:"login_email"`
}

type CustomUserResponse struct {
	ID         string `json:"id"`
	FullName   string `json:"full_name"`
	LoginEmail string `json:"login_email"`
	CreatedAt  string `json:"created_at"`
}

// --- Interface ---

type CustomUserService interface {
	// Register validates all fields together (field-keyed errors, not
	// fail-fast) and persists the account with a salted hash. When an
	// authenticated admin registers on a user's behalf, the acting admin is
	// recorded as creator.
	Register(ctx context.Context, req RegisterRequest, meta RequestMeta) (*CustomUserResponse, error)
	GetByID(ctx context.Context, id string) (*CustomUserResponse, error)
	List(ctx context.Context, offset, limit int) ([]CustomUserResponse, int64, error)
	Update(ctx context.Context, id string, req UpdateCustomUserRequest, meta RequestMeta) (*CustomUserResponse, error)
	Delete(ctx context.Context, id string, meta RequestMeta) (string, error)
}

type customUserService struct {
	repo       repository.CustomUserRepository
	activities ActivityService
	sessions   *cache.Cache
}

// NewCustomUserService creates a CustomUserService. sessions may be nil.
func NewCustomUserService(repo repository.CustomUserRepository, activities ActivityService, sessions *cache.Cache) CustomUserService {
	return &customUserService{repo: repo, activities: activities, sessions: sessions}
}

func mapCustomUser(user *model.CustomUser) *CustomUserResponse {
	return &CustomUserResponse{
		ID:         user.ID.String(),
		FullName:   user.FullName,
		LoginEmail: user.LoginEmail,
		CreatedAt:  user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (s *customUserService) Register(ctx context.Context, req RegisterRequest, meta RequestMeta) (*CustomUserResponse, error) {
	fieldErrs := apperr.FieldErrors{}

	if req.FullName == "" {
		fieldErrs["full_name"] = "Full name is required"
	}

	if req.LoginEmail == "" {
		fieldErrs["login_email"] = "Email is required"
	} else {
		taken, err := s.repo.EmailTaken(ctx, req.LoginEmail, "")
		if err != nil {
			return nil, err
		}
		if taken {
			fieldErrs["login_email"] = "Email already registered"
		}
	}

	if req.Password == "" {
		fieldErrs["password"] = "Password is required"
	} else if len(req.Password) < 6 {
		fieldErrs["password"] = "Password must be at least 6 characters"
	}

	if req.Password != req.ConfirmPassword {
		fieldErrs["confirm_password"] = "Passwords do not match"
	}

	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &model.CustomUser{
		FullName:      req.FullName,
		LoginEmail:    req.LoginEmail,
		LoginPassword: string(hashed),
		CreatedByID:   meta.Actor.AdminID(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	record(ctx, s.activities, model.ActionCreate, model.EntityUser, user.ID.String(), user.FullName,
		"Registered new user", meta)

	return mapCustomUser(user), nil
}

func (s *customUserService) GetByID(ctx context.Context, id string) (*CustomUserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("User not found")
	}
	return mapCustomUser(user), nil
}

func (s *customUserService) List(ctx context.Context, offset, limit int) ([]CustomUserResponse, int64, error) {
	users, total, err := s.repo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	out := make([]CustomUserResponse, 0, len(users))
	for i := range users {
		out = append(out, *mapCustomUser(&users[i]))
	}
	return out, total, nil
}

func (s *customUserService) Update(ctx context.Context, id string, req UpdateCustomUserRequest, meta RequestMeta) (*CustomUserResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperr.NotFound("User not found")
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("User not found")
	}

	if req.FullName == "" {
		return nil, apperr.FieldErrors{"full_name": "Full name is required"}
	}
	if req.LoginEmail == "" {
		return nil, apperr.FieldErrors{"login_email": "Email is required"}
	}

	if req.LoginEmail != user.LoginEmail {
		taken, err := s.repo.EmailTaken(ctx, req.LoginEmail, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperr.Conflict("Email already exists")
		}
	}

	user.FullName = req.FullName
	user.LoginEmail = req.LoginEmail
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	if s.sessions != nil {
		s.sessions.Delete(id)
	}

	record(ctx, s.activities, model.ActionUpdate, model.EntityUser, user.ID.String(), user.FullName,
		"Updated user profile", meta)

	return mapCustomUser(user), nil
}

func (s *customUserService) Delete(ctx context.Context, id string, meta RequestMeta) (string, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", apperr.NotFound("User not found")
	}

	// Capture the name before the row disappears; referencing bookings and
	// audit rows keep running with a nulled reference.
	name := user.FullName
	if err := s.repo.Delete(ctx, id); err != nil {
		return "", err
	}

	if s.sessions != nil {
		s.sessions.Delete(id)
	}

	record(ctx, s.activities, model.ActionDelete, model.EntityUser, id, name,
		fmt.Sprintf("Deleted user %q", name), meta)

	return name, nil
}
