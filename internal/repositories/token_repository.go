package repositories

import (
	"context"
	"time"

	"github.com/josmejia2401/jac-vision/internal/models"
)

// TokenRepository is the token-store contract, the durable source of truth
// for valid sessions. FindByID returns (nil, nil) when no record matches;
// deletes of absent records are not errors.
type TokenRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Token, error)
	FindByUserID(ctx context.Context, userID int64) ([]models.Token, error)
	Create(ctx context.Context, token *models.Token) error
	DeleteByID(ctx context.Context, id int64) error
	DeleteByUserID(ctx context.Context, userID int64) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
