package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/josmejia2401/jac-vision/internal/apierrors"
	"github.com/josmejia2401/jac-vision/internal/models"
	"github.com/josmejia2401/jac-vision/internal/repositories"
)

// AuthService orchestrates the login flow: credential check, lockout
// policy and token issuance.
type AuthService struct {
	users            repositories.UserRepository
	tokens           *TokenService
	maxLoginAttempts int
	lockDuration     time.Duration
	now              func() time.Time
	logger           zerolog.Logger
}

func NewAuthService(
	users repositories.UserRepository,
	tokens *TokenService,
	maxLoginAttempts int,
	lockDuration time.Duration,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:            users,
		tokens:           tokens,
		maxLoginAttempts: maxLoginAttempts,
		lockDuration:     lockDuration,
		now:              time.Now,
		logger:           logger,
	}
}

// WithClock returns a copy of s using the given clock.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	c := *s
	c.now = now
	return &c
}

type LogInInput struct {
	Username string
	Password string
	Audience string
}

type LogInOutput struct {
	AccessToken string `json:"accessToken"`
}

// LogIn authenticates a user and issues a fresh session token. Unknown
// users and wrong passwords fail with the same message; deleted and
// locked accounts fail with their own explicit errors. Three failed
// attempts lock the account for the configured duration.
func (s *AuthService) LogIn(ctx context.Context, in LogInInput) (*LogInOutput, error) {
	if models.AudienceFromCode(in.Audience) == nil {
		return nil, ErrInvalidAudience
	}

	now := s.now()

	user, err := s.users.FindByUsername(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if user.Status.ID == models.StatusDeleted.ID {
		return nil, ErrAccountDeleted
	}

	user.EnsureSecurity()

	// A live lock rejects the attempt without consuming one.
	if until := user.Security.LockedUntil; until != nil && until.After(now) {
		return nil, apierrors.Newf(http.StatusForbidden,
			"Cuenta bloqueada hasta %s", until.UTC().Format(time.RFC3339))
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		if err := s.registerFailedAttempt(ctx, user.ID, now); err != nil {
			return nil, err
		}
		return nil, ErrInvalidCredentials
	}

	user.Security.LoginAttempts = 0
	user.Security.LockedUntil = nil
	lastLogin := now
	user.Security.LastLoginAt = &lastLogin

	if user.Status.ID == models.StatusLocked.ID && user.PreviousStatus != nil {
		user.Status = *user.PreviousStatus
		user.PreviousStatus = nil
	}

	// Persisting the user and purging prior sessions run concurrently;
	// both must finish before the new token is issued.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.users.Update(gctx, user); err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if _, err := s.tokens.DeleteByUserID(gctx, user.ID); err != nil {
			return fmt.Errorf("purge user tokens: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	token, err := s.tokens.CreateToken(ctx, CreateTokenInput{
		Role:     models.RoleUser,
		Subject:  user.FirstName,
		UserID:   user.ID,
		Username: user.Username,
		Audience: in.Audience,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Str("audience", in.Audience).Msg("login succeeded")
	return &LogInOutput{AccessToken: token.AccessToken}, nil
}

// registerFailedAttempt durably counts the attempt, locking the account
// whenever the counter sits at or past the threshold. A failure after an
// elapsed lock therefore re-locks for a fresh window instead of granting
// further attempts. The increment is atomic at the storage layer so
// concurrent failures observe distinct counter values.
func (s *AuthService) registerFailedAttempt(ctx context.Context, userID int64, now time.Time) error {
	updated, err := s.users.IncrementLoginAttempts(ctx, userID)
	if err != nil {
		return fmt.Errorf("record failed attempt: %w", err)
	}
	if updated == nil || updated.Security == nil {
		return nil
	}

	if updated.Security.LoginAttempts >= s.maxLoginAttempts {
		until := now.Add(s.lockDuration)
		if _, err := s.users.Lock(ctx, userID, until); err != nil {
			return fmt.Errorf("lock account: %w", err)
		}
		s.logger.Warn().Int64("user_id", userID).Time("locked_until", until).Msg("account locked")
	}
	return nil
}

// LogOut revokes the session behind the bearer token. Always succeeds,
// whether or not a session existed.
func (s *AuthService) LogOut(ctx context.Context, accessToken string) (string, error) {
	if err := s.tokens.DeleteToken(ctx, accessToken); err != nil {
		return "", err
	}
	return "Sesión cerrada correctamente.", nil
}
