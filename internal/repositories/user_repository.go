package repositories

import (
	"context"
	"time"

	"github.com/josmejia2401/jac-vision/internal/models"
)

// UserRepository is the credential-store contract. Lookups return
// (nil, nil) when no document matches.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindPaginated(ctx context.Context, page, limit int64) ([]models.User, int64, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	SoftDelete(ctx context.Context, id int64) (*models.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error

	// IncrementLoginAttempts atomically increments the attempt counter and
	// returns the document as written, so concurrent failed logins observe
	// a consistent threshold crossing.
	IncrementLoginAttempts(ctx context.Context, id int64) (*models.User, error)

	// Lock marks the account locked until the given time, snapshotting the
	// current status into previousStatus in the same atomic update.
	Lock(ctx context.Context, id int64, until time.Time) (*models.User, error)
}
