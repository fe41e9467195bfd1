package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/josmejia2401/jac-vision/internal/controllers"
)

// SetupRoutes registers all application routes.
func SetupRoutes(
	router *gin.Engine,
	authController *controllers.AuthController,
	userController *controllers.UserController,
	authMiddleware gin.HandlerFunc,
) {
	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/")

	authGroup := api.Group("/auth")
	RegisterAuthRoutes(authGroup, authController, authMiddleware)

	usersGroup := api.Group("/users")
	RegisterUserRoutes(usersGroup, userController, authMiddleware)
}
