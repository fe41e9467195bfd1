package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/josmejia2401/jac-vision/internal/controllers"
)

func RegisterUserRoutes(router *gin.RouterGroup, userController *controllers.UserController, authMiddleware gin.HandlerFunc) {
	// POST /users - registration, the only public user endpoint
	router.POST("", userController.Create)

	protected := router.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("", userController.GetPaginated)
		protected.GET("/:id", userController.GetByID)
		protected.PUT("/:id", userController.Update)
		protected.DELETE("/:id", userController.Delete)
		protected.PUT("/:id/password", userController.UpdatePassword)
	}
}
