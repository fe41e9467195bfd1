package services_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/josmejia2401/jac-vision/internal/cache"
	"github.com/josmejia2401/jac-vision/internal/models"
	"github.com/josmejia2401/jac-vision/internal/security"
	"github.com/josmejia2401/jac-vision/internal/services"
)

type mockUserRepo struct {
	findByIDFunc               func(ctx context.Context, id int64) (*models.User, error)
	findByUsernameFunc         func(ctx context.Context, username string) (*models.User, error)
	findPaginatedFunc          func(ctx context.Context, page, limit int64) ([]models.User, int64, error)
	createFunc                 func(ctx context.Context, user *models.User) error
	updateFunc                 func(ctx context.Context, user *models.User) error
	softDeleteFunc             func(ctx context.Context, id int64) (*models.User, error)
	updatePasswordFunc         func(ctx context.Context, id int64, hash string) error
	incrementLoginAttemptsFunc func(ctx context.Context, id int64) (*models.User, error)
	lockFunc                   func(ctx context.Context, id int64, until time.Time) (*models.User, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if m.findByIDFunc == nil {
		return nil, errors.New("not implemented")
	}
	return m.findByIDFunc(ctx, id)
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.findByUsernameFunc == nil {
		return nil, errors.New("not implemented")
	}
	return m.findByUsernameFunc(ctx, username)
}

func (m *mockUserRepo) FindPaginated(ctx context.Context, page, limit int64) ([]models.User, int64, error) {
	if m.findPaginatedFunc == nil {
		return nil, 0, errors.New("not implemented")
	}
	return m.findPaginatedFunc(ctx, page, limit)
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.createFunc == nil {
		return errors.New("not implemented")
	}
	return m.createFunc(ctx, user)
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	if m.updateFunc == nil {
		return errors.New("not implemented")
	}
	return m.updateFunc(ctx, user)
}

func (m *mockUserRepo) SoftDelete(ctx context.Context, id int64) (*models.User, error) {
	if m.softDeleteFunc == nil {
		return nil, errors.New("not implemented")
	}
	return m.softDeleteFunc(ctx, id)
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	if m.updatePasswordFunc == nil {
		return errors.New("not implemented")
	}
	return m.updatePasswordFunc(ctx, id, hash)
}

func (m *mockUserRepo) IncrementLoginAttempts(ctx context.Context, id int64) (*models.User, error) {
	if m.incrementLoginAttemptsFunc == nil {
		return nil, errors.New("not implemented")
	}
	return m.incrementLoginAttemptsFunc(ctx, id)
}

func (m *mockUserRepo) Lock(ctx context.Context, id int64, until time.Time) (*models.User, error) {
	if m.lockFunc == nil {
		return nil, errors.New("not implemented")
	}
	return m.lockFunc(ctx, id, until)
}

// memoryTokenRepo is an in-memory token store used where the interplay of
// several operations matters more than single calls.
type memoryTokenRepo struct {
	mu     sync.Mutex
	tokens map[int64]models.Token
}

func newMemoryTokenRepo() *memoryTokenRepo {
	return &memoryTokenRepo{tokens: map[int64]models.Token{}}
}

func (m *memoryTokenRepo) FindByID(_ context.Context, id int64) (*models.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *memoryTokenRepo) FindByUserID(_ context.Context, userID int64) ([]models.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Token{}
	for _, t := range m.tokens {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memoryTokenRepo) Create(_ context.Context, token *models.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token.ID] = *token
	return nil
}

func (m *memoryTokenRepo) DeleteByID(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, id)
	return nil
}

func (m *memoryTokenRepo) DeleteByUserID(_ context.Context, userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	for id, t := range m.tokens {
		if t.UserID == userID {
			delete(m.tokens, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *memoryTokenRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	for id, t := range m.tokens {
		if !t.ExpiresAt.After(now) {
			delete(m.tokens, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *memoryTokenRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens)
}

// fakeCache implements cache.Client in memory. TTLs are recorded but not
// enforced; tests drop entries explicitly to simulate cache expiry.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string]string
	ttls    map[string]time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.entries[key]
	if !ok {
		return "", cache.ErrCacheMiss
	}
	return v, nil
}

func (f *fakeCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeCache) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.entries, k)
		delete(f.ttls, k)
	}
	return nil
}

func (f *fakeCache) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[key]
	return ok
}

func (f *fakeCache) drop(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
	delete(f.ttls, key)
}

// downCache fails every operation, simulating an unreachable cache.
type downCache struct{}

func (downCache) Get(context.Context, string) (string, error) {
	return "", errors.New("connection refused")
}

func (downCache) Set(context.Context, string, string, time.Duration) error {
	return errors.New("connection refused")
}

func (downCache) Del(context.Context, ...string) error {
	return errors.New("connection refused")
}

// seqIDGen hands out sequential ids starting at next.
type seqIDGen struct {
	mu   sync.Mutex
	next int64
}

func (g *seqIDGen) NextID() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.next
	g.next++
	return id
}

const testSecret = "test-secret-key-minimum-32-characters-long"

func newTestJWT(now func() time.Time, life time.Duration) *security.JWTUtil {
	return security.NewJWTUtil(testSecret, "jac-vision-test", life).WithClock(now)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestTokenService(
	repo *memoryTokenRepo,
	cacheClient cache.Client,
	now func() time.Time,
) *services.TokenService {
	jwtUtil := newTestJWT(now, time.Hour)
	return services.NewTokenService(
		repo,
		cacheClient,
		jwtUtil,
		&seqIDGen{next: 260101000001},
		10*time.Minute,
		zerolog.Nop(),
	).WithClock(now)
}
