package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/josmejia2401/jac-vision/internal/cache"
	"github.com/josmejia2401/jac-vision/internal/models"
	"github.com/josmejia2401/jac-vision/internal/repositories"
	"github.com/josmejia2401/jac-vision/internal/security"
)

// TokenService issues, resolves and revokes session tokens. The token
// store is authoritative; the cache is a best-effort mirror with its own
// TTL, so a cache entry can lapse well before the token itself expires.
type TokenService struct {
	tokens   repositories.TokenRepository
	cache    cache.Client
	jwt      *security.JWTUtil
	idgen    security.IDGenerator
	cacheTTL time.Duration
	now      func() time.Time
	logger   zerolog.Logger
}

func NewTokenService(
	tokens repositories.TokenRepository,
	cacheClient cache.Client,
	jwtUtil *security.JWTUtil,
	idgen security.IDGenerator,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) *TokenService {
	return &TokenService{
		tokens:   tokens,
		cache:    cacheClient,
		jwt:      jwtUtil,
		idgen:    idgen,
		cacheTTL: cacheTTL,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock returns a copy of s using the given clock.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	c := *s
	c.now = now
	return &c
}

func cacheKey(tokenID int64) string {
	return fmt.Sprintf("auth:%d", tokenID)
}

// CreateTokenInput binds a new token to its owner.
type CreateTokenInput struct {
	Role     models.Role
	Subject  string
	UserID   int64
	Username string
	Audience string
}

// CreateToken signs a new bearer token, persists its session record and
// mirrors it into the cache. Expiry and issuer are read back from the
// signed token itself, never computed separately. A cache write failure
// does not fail the issuance.
func (s *TokenService) CreateToken(ctx context.Context, in CreateTokenInput) (*models.Token, error) {
	tokenID := s.idgen.NextID()

	accessToken, err := s.jwt.Sign(security.SignParams{
		Role:     string(in.Role),
		Subject:  in.Subject,
		UserID:   in.UserID,
		TokenID:  tokenID,
		Username: in.Username,
	})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	claims, err := s.jwt.Decode(accessToken)
	if err != nil {
		return nil, fmt.Errorf("decode issued token: %w", err)
	}

	token := &models.Token{
		ID:          tokenID,
		UserID:      in.UserID,
		AccessToken: accessToken,
		AppName:     claims.Issuer,
		Audience:    in.Audience,
		ExpiresAt:   claims.ExpiresAt.Time,
		CreatedAt:   s.now(),
	}

	if err := s.tokens.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}

	s.cacheSet(ctx, token)
	return token, nil
}

// Resolve looks up the session record for a verified jti, cache first,
// store on a miss. Expired records are evicted from both layers before
// failing. A store hit repopulates the cache.
func (s *TokenService) Resolve(ctx context.Context, tokenID int64) (*models.Token, error) {
	key := cacheKey(tokenID)

	raw, err := s.cache.Get(ctx, key)
	if err == nil {
		var token models.Token
		if jerr := json.Unmarshal([]byte(raw), &token); jerr == nil {
			if !token.ExpiresAt.After(s.now()) {
				if derr := s.tokens.DeleteByID(ctx, tokenID); derr != nil {
					return nil, fmt.Errorf("evict expired token: %w", derr)
				}
				s.cacheDel(ctx, key)
				return nil, ErrTokenExpired
			}
			return &token, nil
		}
		// unreadable cache entry, fall back to the store
		s.cacheDel(ctx, key)
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		// cache failures degrade to a store lookup, never surface
		s.logger.Warn().Err(err).Int64("token_id", tokenID).Msg("token cache unavailable")
	}

	token, err := s.tokens.FindByID(ctx, tokenID)
	if err != nil {
		return nil, fmt.Errorf("find token: %w", err)
	}
	if token == nil {
		return nil, ErrTokenNotFound
	}
	if !token.ExpiresAt.After(s.now()) {
		if derr := s.tokens.DeleteByID(ctx, tokenID); derr != nil {
			return nil, fmt.Errorf("evict expired token: %w", derr)
		}
		return nil, ErrTokenExpired
	}

	s.cacheSet(ctx, token)
	return token, nil
}

// DeleteToken revokes the session behind a bearer token. The token is
// decoded, not re-verified. Deleting an absent record is not an error, so
// a repeated logout succeeds.
func (s *TokenService) DeleteToken(ctx context.Context, accessToken string) error {
	claims, err := s.jwt.Decode(accessToken)
	if err != nil {
		return nil
	}
	tokenID, err := strconv.ParseInt(claims.ID, 10, 64)
	if err != nil {
		return nil
	}

	s.cacheDel(ctx, cacheKey(tokenID))
	if err := s.tokens.DeleteByID(ctx, tokenID); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

// DeleteByUserID removes every session owned by a user, used to
// invalidate prior sessions during a fresh login. Cache mirrors are
// evicted first so a revoked token cannot keep authenticating out of the
// cache for the rest of its TTL.
func (s *TokenService) DeleteByUserID(ctx context.Context, userID int64) (int64, error) {
	tokens, err := s.tokens.FindByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list user tokens: %w", err)
	}
	for i := range tokens {
		s.cacheDel(ctx, cacheKey(tokens[i].ID))
	}
	return s.tokens.DeleteByUserID(ctx, userID)
}

// GetTokensByUser lists a user's live session records.
func (s *TokenService) GetTokensByUser(ctx context.Context, userID int64) ([]models.Token, error) {
	return s.tokens.FindByUserID(ctx, userID)
}

// DeleteExpired purges token records whose expiry has passed.
func (s *TokenService) DeleteExpired(ctx context.Context) (int64, error) {
	return s.tokens.DeleteExpired(ctx, s.now())
}

func (s *TokenService) cacheSet(ctx context.Context, token *models.Token) {
	payload, err := json.Marshal(token)
	if err != nil {
		s.logger.Warn().Err(err).Int64("token_id", token.ID).Msg("failed to serialize token for cache")
		return
	}
	if err := s.cache.Set(ctx, cacheKey(token.ID), string(payload), s.cacheTTL); err != nil {
		s.logger.Warn().Err(err).Int64("token_id", token.ID).Msg("failed to cache token")
	}
}

func (s *TokenService) cacheDel(ctx context.Context, key string) {
	if err := s.cache.Del(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to evict cache entry")
	}
}
