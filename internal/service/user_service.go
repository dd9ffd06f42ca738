package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/Tomlord1122/taskflow/internal/auth"
	"github.com/Tomlord1122/taskflow/internal/domain"
	"github.com/Tomlord1122/taskflow/internal/repository"
)

const (
	msgUsernameTaken = "A user with that username already exists."
	msgEmailTaken    = "An account with this email already exists."
)

// UserResponse is the public view of an account.
type UserResponse struct {
	ID       uint
	Username string
	Email    string
}

// UserService is the user directory: registration and credential checks.
type UserService interface {
	Register(ctx context.Context, req RegisterRequest) (*UserResponse, error)
	Authenticate(ctx context.Context, username, password string) (*UserResponse, error)
	GetUser(ctx context.Context, id uint) (*UserResponse, error)
}

type userService struct {
	repo   repository.UserRepository
	hasher *auth.PasswordHasher
	// dummyHash is compared against when the username is unknown so that a
	// miss costs as much as a wrong password.
	dummyHash string
}

// NewUserService creates a UserService.
func NewUserService(repo repository.UserRepository, hasher *auth.PasswordHasher) (UserService, error) {
	dummy, err := hasher.Hash("taskflow-timing-equalizer")
	if err != nil {
		return nil, fmt.Errorf("prepare password hasher: %w", err)
	}
	return &userService{repo: repo, hasher: hasher, dummyHash: dummy}, nil
}

// Register validates req, checks that the username and email are free and
// stores the account with a hashed password.
func (s *userService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	req.normalize()
	verr := validateRegistration(req)

	if req.Username != "" && !verr.Has("username") {
		taken, err := s.repo.UsernameTaken(ctx, req.Username)
		if err != nil {
			return nil, fmt.Errorf("check username: %w", err)
		}
		if taken {
			verr.Add("username", msgUsernameTaken)
		}
	}
	if req.Email != "" && !verr.Has("email") {
		taken, err := s.repo.EmailTaken(ctx, req.Email)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if taken {
			verr.Add("email", msgEmailTaken)
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if isUniqueViolation(err) {
			// lost a race with a concurrent sign-up; report it on the form
			return nil, s.duplicateError(ctx, req)
		}
		log.Printf("Error creating user %q: %v", req.Username, err)
		return nil, fmt.Errorf("create user: %w", err)
	}

	return toUserResponse(user), nil
}

func (s *userService) duplicateError(ctx context.Context, req RegisterRequest) error {
	verr := &ValidationError{}
	if taken, _ := s.repo.UsernameTaken(ctx, req.Username); taken {
		verr.Add("username", msgUsernameTaken)
	}
	if taken, _ := s.repo.EmailTaken(ctx, req.Email); taken || !verr.Has("username") {
		verr.Add("email", msgEmailTaken)
	}
	return verr
}

// Authenticate returns ErrInvalidCredentials without saying whether the
// username or the password was wrong.
func (s *userService) Authenticate(ctx context.Context, username, password string) (*UserResponse, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return toUserResponse(user), nil
}

func (s *userService) GetUser(ctx context.Context, id uint) (*UserResponse, error) {
	if id == 0 {
		return nil, ErrUnauthorized
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return toUserResponse(user), nil
}

// isUniqueViolation recognises duplicate keys from GORM's error translation
// and raw Postgres errors (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		return pge.Code == "23505"
	}
	return false
}

func toUserResponse(u *domain.User) *UserResponse {
	return &UserResponse{ID: u.ID, Username: u.Username, Email: u.Email}
}
