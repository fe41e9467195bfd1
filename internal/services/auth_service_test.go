package services_test

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/josmejia2401/jac-vision/internal/apierrors"
	"github.com/josmejia2401/jac-vision/internal/models"
	"github.com/josmejia2401/jac-vision/internal/services"
)

func hashPassword(t *testing.T, plain string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func activeUser(t *testing.T, id int64, username, password string) *models.User {
	t.Helper()
	return &models.User{
		ID:        id,
		FirstName: "Ana",
		Username:  username,
		Password:  hashPassword(t, password),
		Security:  &models.Security{Roles: []string{}},
		Status:    models.StatusActive,
	}
}

func newAuthService(
	users *mockUserRepo,
	tokens *services.TokenService,
	now time.Time,
) *services.AuthService {
	return services.NewAuthService(users, tokens, 3, 10*time.Minute, zerolog.Nop()).
		WithClock(fixedClock(now))
}

func TestLogIn_InvalidAudience(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	users := &mockUserRepo{
		findByUsernameFunc: func(context.Context, string) (*models.User, error) {
			t.Fatal("storage must not be touched on validation failures")
			return nil, nil
		},
	}
	svc := newAuthService(users, newTestTokenService(newMemoryTokenRepoWithCache()), now)

	_, err := svc.LogIn(context.Background(), services.LogInInput{
		Username: "alice", Password: "password123", Audience: "desktop",
	})
	assert.ErrorIs(t, err, services.ErrInvalidAudience)
}

// newMemoryTokenRepoWithCache keeps call sites short where the internals
// of the token service do not matter.
func newMemoryTokenRepoWithCache() (*memoryTokenRepo, *fakeCache, func() time.Time) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return newMemoryTokenRepo(), newFakeCache(), fixedClock(now)
}

func TestLogIn_UnknownUser_UniformError(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	users := &mockUserRepo{
		findByUsernameFunc: func(context.Context, string) (*models.User, error) {
			return nil, nil
		},
	}
	svc := newAuthService(users, newTestTokenService(newMemoryTokenRepoWithCache()), now)

	_, err := svc.LogIn(context.Background(), services.LogInInput{
		Username: "ghost", Password: "password123", Audience: "web",
	})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestLogIn_DeletedAccount(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	user := activeUser(t, 1, "alice", "password123")
	user.Status = models.StatusDeleted

	users := &mockUserRepo{
		findByUsernameFunc: func(context.Context, string) (*models.User, error) {
			return user, nil
		},
	}
	svc := newAuthService(users, newTestTokenService(newMemoryTokenRepoWithCache()), now)

	_, err := svc.LogIn(context.Background(), services.LogInInput{
		Username: "alice", Password: "password123", Audience: "web",
	})
	assert.ErrorIs(t, err, services.ErrAccountDeleted)

	var be *apierrors.BusinessError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 403, be.Status)
}

func TestLogIn_LockedAccount_NoAttemptConsumed(t *testing.T) {
	// Scenario: alice is locked for another 5 minutes and submits the
	// correct password. The login fails and the counter is untouched.
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	lockedUntil := now.Add(5 * time.Minute)

	user := activeUser(t, 1, "alice", "password123")
	user.Security.LoginAttempts = 3
	user.Security.LockedUntil = &lockedUntil
	user.Status = models.StatusLocked

	users := &mockUserRepo{
		findByUsernameFunc: func(context.Context, string) (*models.User, error) {
			return user, nil
		},
		incrementLoginAttemptsFunc: func(context.Context, int64) (*models.User, error) {
			t.Fatal("a locked account must not consume attempts")
			return nil, nil
		},
	}
	svc := newAuthService(users, newTestTokenService(newMemoryTokenRepoWithCache()), now)

	_, err := svc.LogIn(context.Background(), services.LogInInput{
		Username: "alice", Password: "password123", Audience: "web",
	})

	var be *apierrors.BusinessError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 403, be.Status)
	assert.Contains(t, be.Message, "Cuenta bloqueada hasta")
	assert.Contains(t, be.Message, lockedUntil.UTC().Format(time.RFC3339))
}

func TestLogIn_ElapsedLock_AllowsAttempt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	expired := now.Add(-time.Minute)

	user := activeUser(t, 1, "alice", "password123")
	user.Security.LockedUntil = &expired
	user.Status = models.StatusLocked
	prev := models.StatusActive
	user.PreviousStatus = &prev

	var updated *models.User
	users := &mockUserRepo{
		findByUsernameFunc: func(context.Context, string) (*models.User, error) {
			return user, nil
		},
		updateFunc: func(_ context.Context, u *models.User) error {
			updated = u
			return nil
		},
	}
	svc := newAuthService(users, newTestTokenService(newMemoryTokenRepoWithCache()), now)

	out, err := svc.LogIn(context.Background(), services.LogInInput{
		Username: "alice", Password: "password123", Audience: "web",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.AccessToken)

	require.NotNil(t, updated)
	assert.Equal(t, models.StatusActive, updated.Status)
	assert.Nil(t, updated.PreviousStatus)
	assert.Nil(t, updated.Security.LockedUntil)
}

func TestLogIn_ElapsedLock_WrongPasswordRelocks(t *testing.T) {
	// Scenario: alice's lock has elapsed but the counter still sits at the
	// threshold. Another wrong password must start a fresh lock window, not
	// hand out free attempts.
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	expired := now.Add(-time.Minute)

	user := activeUser(t, 1, "alice", "password123")
	user.Security.LoginAttempts = 3
	user.Security.LockedUntil = &expired
	user.Status = models.StatusLocked
	prev := models.StatusActive
	user.PreviousStatus = &prev

	var lockedAt *time.Time
	users := &mockUserRepo{
		findByUsernameFunc: func(context.Context, string) (*models.User, error) {
			return user, nil
		},
		incrementLoginAttemptsFunc: func(context.Context, int64) (*models.User, error) {
			after := *user
			sec := *user.Security
			sec.LoginAttempts = 4
			after.Security = &sec
			return &after, nil
		},
		lockFunc: func(_ context.Context, id int64, until time.Time) (*models.User, error) {
			lockedAt = &until
			locked := *user
			locked.Status = models.StatusLocked
			return &locked, nil
		},
	}
	svc := newAuthService(users, newTestTokenService(newMemoryTokenRepoWithCache()), now)

	_, err := svc.LogIn(context.Background(), services.LogInInput{
		Username: "alice", Password: "wrong-password", Audience: "web",
	})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	require.NotNil(t, lockedAt)
	assert.Equal(t, now.Add(10*time.Minute), *lockedAt)
}

func TestLogIn_WrongPassword_IncrementsAttempts(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	user := activeUser(t, 1, "alice", "password123")

	incremented := false
	users := &mockUserRepo{
		findByUsernameFunc: func(context.Context, string) (*models.User, error) {
			return user, nil
		},
		incrementLoginAttemptsFunc: func(_ context.Context, id int64) (*models.User, error) {
			incremented = true
			after := *user
			sec := *user.Security
			sec.LoginAttempts = 1
			after.Security = &sec
			return &after, nil
		},
		lockFunc: func(context.Context, int64, time.Time) (*models.User, error) {
			t.Fatal("one failed attempt must not lock the account")
			return nil, nil
		},
	}
	svc := newAuthService(users, newTestTokenService(newMemoryTokenRepoWithCache()), now)

	_, err := svc.LogIn(context.Background(), services.LogInInput{
		Username: "alice", Password: "wrong-password", Audience: "web",
	})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	assert.True(t, incremented)
}

func TestLogIn_ThirdFailure_LocksAccount(t *testing.T) {
	// Scenario: alice already has two failed attempts; a third wrong
	// password locks her for ten minutes.
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	user := activeUser(t, 1, "alice", "password123")
	user.Security.LoginAttempts = 2

	var lockedAt *time.Time
	users := &mockUserRepo{
		findByUsernameFunc: func(context.Context, string) (*models.User, error) {
			return user, nil
		},
		incrementLoginAttemptsFunc: func(_ context.Context, id int64) (*models.User, error) {
			after := *user
			sec := *user.Security
			sec.LoginAttempts = 3
			after.Security = &sec
			return &after, nil
		},
		lockFunc: func(_ context.Context, id int64, until time.Time) (*models.User, error) {
			lockedAt = &until
			locked := *user
			locked.Status = models.StatusLocked
			prev := models.StatusActive
			locked.PreviousStatus = &prev
			return &locked, nil
		},
	}
	svc := newAuthService(users, newTestTokenService(newMemoryTokenRepoWithCache()), now)

	_, err := svc.LogIn(context.Background(), services.LogInInput{
		Username: "alice", Password: "wrong-password", Audience: "web",
	})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	require.NotNil(t, lockedAt)
	assert.Equal(t, now.Add(10*time.Minute), *lockedAt)
}

func TestLogIn_Success_ResetsCountersAndIssuesOneToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	user := activeUser(t, 7, "bob", "password123")
	user.Security.LoginAttempts = 2

	var persisted *models.User
	users := &mockUserRepo{
		findByUsernameFunc: func(context.Context, string) (*models.User, error) {
			return user, nil
		},
		updateFunc: func(_ context.Context, u *models.User) error {
			persisted = u
			return nil
		},
	}

	tokenRepo := newMemoryTokenRepo()
	tokens := newTestTokenService(tokenRepo, newFakeCache(), fixedClock(now))
	svc := newAuthService(users, tokens, now)

	out, err := svc.LogIn(context.Background(), services.LogInInput{
		Username: "bob", Password: "password123", Audience: "app",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.AccessToken)

	require.NotNil(t, persisted)
	assert.Equal(t, 0, persisted.Security.LoginAttempts)
	assert.Nil(t, persisted.Security.LockedUntil)
	require.NotNil(t, persisted.Security.LastLoginAt)
	assert.Equal(t, now, *persisted.Security.LastLoginAt)

	assert.Equal(t, 1, tokenRepo.count())
}

func TestLogIn_SecondLogin_RevokesPriorSession(t *testing.T) {
	// Scenario: bob logs in twice. The first token's store record and
	// cache mirror disappear with the second login, so the first token no
	// longer authenticates even though it has not expired.
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	user := activeUser(t, 7, "bob", "password123")

	users := &mockUserRepo{
		findByUsernameFunc: func(context.Context, string) (*models.User, error) {
			return user, nil
		},
		updateFunc: func(context.Context, *models.User) error { return nil },
	}

	tokenRepo := newMemoryTokenRepo()
	cacheClient := newFakeCache()
	tokens := newTestTokenService(tokenRepo, cacheClient, fixedClock(now))
	svc := newAuthService(users, tokens, now)

	first, err := svc.LogIn(context.Background(), services.LogInInput{
		Username: "bob", Password: "password123", Audience: "web",
	})
	require.NoError(t, err)

	jwtUtil := newTestJWT(fixedClock(now), time.Hour)
	claims, err := jwtUtil.Decode(first.AccessToken)
	require.NoError(t, err)
	firstID, err := strconv.ParseInt(claims.ID, 10, 64)
	require.NoError(t, err)
	assert.True(t, cacheClient.has(fmt.Sprintf("auth:%d", firstID)))

	_, err = svc.LogIn(context.Background(), services.LogInInput{
		Username: "bob", Password: "password123", Audience: "web",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, tokenRepo.count())
	assert.False(t, cacheClient.has(fmt.Sprintf("auth:%d", firstID)))

	_, err = tokens.Resolve(context.Background(), firstID)
	assert.ErrorIs(t, err, services.ErrTokenNotFound)
}

func TestLogIn_LegacyUserWithoutSecurityBlock(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	user := activeUser(t, 9, "carol", "password123")
	user.Security = nil

	var persisted *models.User
	users := &mockUserRepo{
		findByUsernameFunc: func(context.Context, string) (*models.User, error) {
			return user, nil
		},
		updateFunc: func(_ context.Context, u *models.User) error {
			persisted = u
			return nil
		},
	}
	svc := newAuthService(users, newTestTokenService(newMemoryTokenRepoWithCache()), now)

	_, err := svc.LogIn(context.Background(), services.LogInInput{
		Username: "carol", Password: "password123", Audience: "web",
	})
	require.NoError(t, err)
	require.NotNil(t, persisted.Security)
	assert.Equal(t, 0, persisted.Security.LoginAttempts)
}

func TestLogOut_Idempotent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	user := activeUser(t, 7, "bob", "password123")

	users := &mockUserRepo{
		findByUsernameFunc: func(context.Context, string) (*models.User, error) {
			return user, nil
		},
		updateFunc: func(context.Context, *models.User) error { return nil },
	}

	tokenRepo := newMemoryTokenRepo()
	tokens := newTestTokenService(tokenRepo, newFakeCache(), fixedClock(now))
	svc := newAuthService(users, tokens, now)

	out, err := svc.LogIn(context.Background(), services.LogInInput{
		Username: "bob", Password: "password123", Audience: "web",
	})
	require.NoError(t, err)

	msg, err := svc.LogOut(context.Background(), "Bearer "+out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "Sesión cerrada correctamente.", msg)
	assert.Equal(t, 0, tokenRepo.count())

	// the second logout finds nothing and still succeeds
	msg, err = svc.LogOut(context.Background(), "Bearer "+out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "Sesión cerrada correctamente.", msg)
}
