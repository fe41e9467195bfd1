package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/josmejia2401/jac-vision/internal/controllers"
)

func RegisterAuthRoutes(router *gin.RouterGroup, authController *controllers.AuthController, authMiddleware gin.HandlerFunc) {
	// POST /auth/login - authenticate and issue a token
	router.POST("/login", authController.LogIn)

	// POST /auth/logout - revoke the presented session (requires a valid one)
	router.POST("/logout", authMiddleware, authController.LogOut)
}
