package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
	"github.com/mzheleznov/rxpilot/internal/core/ports"
)

type AuthUseCase struct {
	users ports.UserStore
	now   func() time.Time
}

func NewAuthUseCase(users ports.UserStore) *AuthUseCase {
	return &AuthUseCase{
		users: users,
		now:   time.Now,
	}
}

// Login verifies credentials and returns the account to mint a session for.
// Both unknown email and bad password come back as ErrUnauthorized so the
// response does not leak which one failed.
func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "login", fmt.Errorf("email and password are required"))
	}

	user, err := uc.users.GetUserByEmail(ctx, email)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return nil, domain.WrapError(domain.ErrUnauthorized, "login", fmt.Errorf("invalid credentials"))
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.WrapError(domain.ErrUnauthorized, "login", fmt.Errorf("invalid credentials"))
	}
	return user, nil
}

type SignupInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	ClinicID string `json:"clinicId"`
}

func (in *SignupInput) Validate() error {
	if strings.TrimSpace(in.FullName) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "validate signup", fmt.Errorf("fullName is required"))
	}
	if !strings.Contains(in.Email, "@") {
		return domain.WrapError(domain.ErrInvalidInput, "validate signup", fmt.Errorf("invalid email address"))
	}
	if len(in.Password) < 6 {
		return domain.WrapError(domain.ErrInvalidInput, "validate signup", fmt.Errorf("password must be at least 6 characters"))
	}
	if strings.TrimSpace(in.ClinicID) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "validate signup", fmt.Errorf("clinicId is required"))
	}
	return nil
}

func (uc *AuthUseCase) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := uc.now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Name:         in.FullName,
		PasswordHash: string(hash),
		ClinicID:     in.ClinicID,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (uc *AuthUseCase) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return uc.users.GetUserByID(ctx, userID)
}
