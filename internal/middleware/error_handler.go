package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/josmejia2401/jac-vision/internal/apierrors"
)

// ErrorHandler is the single translation point from errors recorded by
// handlers (via c.Error) to the JSON envelope. Internal errors are logged
// with full detail but reach the caller as a generic message.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		logger := Logger(c)

		var be *apierrors.BusinessError
		switch {
		case errors.As(err, &be):
			logger.Warn().Int("status", be.Status).Msg(be.Message)
			body := gin.H{"success": false, "message": be.Message}
			if len(be.Details) > 0 {
				body["details"] = be.Details
			}
			c.JSON(be.Status, body)

		case mongo.IsDuplicateKeyError(err):
			logger.Warn().Err(err).Msg("duplicate key")
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"message": "El valor ya está registrado.",
			})

		default:
			logger.Error().Err(err).Msg("unexpected error")
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Ocurrió un error inesperado. Contacte al soporte técnico.",
			})
		}
	}
}
