package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/josmejia2401/jac-vision/internal/models"
	"github.com/josmejia2401/jac-vision/internal/repositories"
	"github.com/josmejia2401/jac-vision/internal/security"
)

// UserService covers user management: registration, profile reads,
// updates, soft deletion and password changes.
type UserService struct {
	users repositories.UserRepository
	idgen security.IDGenerator
	now   func() time.Time
}

func NewUserService(users repositories.UserRepository, idgen security.IDGenerator) *UserService {
	return &UserService{users: users, idgen: idgen, now: time.Now}
}

// GetByID returns the user when it exists and is available. Deleted,
// inactive and locked users read as unavailable.
func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if isUnavailable(user.Status) {
		return nil, ErrUserUnavailable
	}
	return user, nil
}

func isUnavailable(status models.Status) bool {
	switch status.ID {
	case models.StatusDeleted.ID, models.StatusInactive.ID, models.StatusLocked.ID:
		return true
	default:
		return false
	}
}

// GetPaginated lists users page by page together with the total count.
func (s *UserService) GetPaginated(ctx context.Context, page, limit int64) ([]models.User, int64, error) {
	return s.users.FindPaginated(ctx, page, limit)
}

type CreateUserInput struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Username    string
	Password    string
}

// CreateUser registers a new PENDING user with a generated numeric id and
// a hashed password.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &models.User{
		ID:          s.idgen.NextID(),
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		Username:    in.Username,
		Password:    string(hash),
		Security:    &models.Security{Roles: []string{}},
		Status:      models.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

type UpdateUserInput struct {
	FirstName   *string
	LastName    *string
	Email       *string
	PhoneNumber *string
}

// UpdateUser applies the provided profile fields to an available user.
func (s *UserService) UpdateUser(ctx context.Context, id int64, in UpdateUserInput) (*models.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.PhoneNumber != nil {
		user.PhoneNumber = *in.PhoneNumber
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// DeleteUser soft-deletes: the document stays, its status turns DELETED.
func (s *UserService) DeleteUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.SoftDelete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdatePassword verifies the current password and stores the hash of the
// new one.
func (s *UserService) UpdatePassword(ctx context.Context, id int64, current, next string) error {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)) != nil {
		return ErrWrongPassword
	}
	if current == next {
		return ErrSamePassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, id, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
