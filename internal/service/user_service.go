package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bankcards/internal/errors"
	"bankcards/internal/model"
	"bankcards/internal/repository"
)

const bcryptCost = 10

// UserService is the user directory: it supplies owner identity and
// role, and manages user accounts on behalf of administrators.
type UserService interface {
	Create(ctx context.Context, username, password string, role model.Role) (*model.User, error)
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, id uuid.UUID, username, password *string, role *model.Role) (*model.User, error)
	Delete(ctx context.Context, id uuid.UUID, caller Caller) error
}

type userService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new user service.
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// Create adds a user with a bcrypt-hashed password.
func (s *userService) Create(ctx context.Context, username, password string, role model.Role) (*model.User, error) {
	taken, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return nil, errors.ErrConflict
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if err == gorm.ErrDuplicatedKey {
			return nil, errors.ErrConflict
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Get retrieves a user by ID.
func (s *userService) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// List returns all users.
func (s *userService) List(ctx context.Context) ([]model.User, error) {
	return s.userRepo.List(ctx)
}

// Update changes any of username, password, or role. Nil fields are
// left as they are.
func (s *userService) Update(ctx context.Context, id uuid.UUID, username, password *string, role *model.Role) (*model.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if username != nil {
		user.Username = *username
	}
	if password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	if role != nil {
		user.Role = *role
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if err == gorm.ErrDuplicatedKey {
			return nil, errors.ErrConflict
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// Delete removes a user. Callers may not delete themselves, and admin
// accounts cannot be deleted.
func (s *userService) Delete(ctx context.Context, id uuid.UUID, caller Caller) error {
	target, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if target.ID == caller.UserID {
		return errors.ErrForbidden
	}
	if target.IsAdmin() {
		return errors.ErrForbidden
	}

	return s.userRepo.Delete(ctx, id)
}
