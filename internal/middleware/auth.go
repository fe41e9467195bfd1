package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/josmejia2401/jac-vision/internal/apierrors"
	"github.com/josmejia2401/jac-vision/internal/security"
	"github.com/josmejia2401/jac-vision/internal/services"
)

const ctxAuthKey = "auth"

// AuthContext is the authenticated-request context handed to downstream
// handlers once a bearer token checks out.
type AuthContext struct {
	TokenID  int64
	UserID   int64
	AppName  string
	Audience string
	Roles    []string
}

// Auth gates every protected route. A request passes only when it carries
// a bearer token with a valid signature whose jti resolves to a live
// session record; every other outcome is a 401, and unexpected storage
// failures are a 500. The middleware never grants access on error.
func Auth(tokens *services.TokenService, jwtUtil *security.JWTUtil) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := Logger(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			logger.Warn().Msg("missing bearer token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Token no proporcionado",
			})
			return
		}

		rawToken := security.StripBearer(authHeader)

		claims, err := jwtUtil.Validate(rawToken)
		if err != nil {
			logger.Warn().Msg("invalid token signature")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Token inválido",
			})
			return
		}

		// valid signature but no usable jti: nothing to look up.
		// ParseInt rejects the empty string too.
		tokenID, err := strconv.ParseInt(claims.ID, 10, 64)
		if err != nil {
			logger.Warn().Msg("token has no usable jti")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Token inválido (sin jti)",
			})
			return
		}

		token, err := tokens.Resolve(c.Request.Context(), tokenID)
		if err != nil {
			var be *apierrors.BusinessError
			if errors.As(err, &be) {
				c.AbortWithStatusJSON(be.Status, gin.H{
					"success": false,
					"message": be.Message,
				})
				return
			}
			logger.Error().Err(err).Int64("token_id", tokenID).Msg("auth error")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Error interno de autenticación",
			})
			return
		}

		roles := []string{}
		if claims.Role != "" {
			roles = append(roles, claims.Role)
		}

		c.Set(ctxAuthKey, &AuthContext{
			TokenID:  token.ID,
			UserID:   token.UserID,
			AppName:  token.AppName,
			Audience: token.Audience,
			Roles:    roles,
		})
		c.Next()
	}
}

// GetAuth returns the authenticated context set by Auth.
func GetAuth(c *gin.Context) (*AuthContext, bool) {
	v, ok := c.Get(ctxAuthKey)
	if !ok {
		return nil, false
	}
	auth, ok := v.(*AuthContext)
	return auth, ok
}
