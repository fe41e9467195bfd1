package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/josmejia2401/jac-vision/internal/services"
)

// AuthController exposes the login and logout endpoints.
type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

type logInRequest struct {
	Username string `json:"username" binding:"required,min=3"`
	Password string `json:"password" binding:"required,min=8"`
	Audience string `json:"audience" binding:"required,oneof=web app"`
}

// LogIn - POST /auth/login
func (ac *AuthController) LogIn(c *gin.Context) {
	var req logInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Datos inválidos",
			"details": []string{err.Error()},
		})
		return
	}

	out, err := ac.auth.LogIn(c.Request.Context(), services.LogInInput{
		Username: req.Username,
		Password: req.Password,
		Audience: req.Audience,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": out})
}

// LogOut - POST /auth/logout; runs behind the auth middleware, so the
// token is already verified. Revoking an absent session still succeeds.
func (ac *AuthController) LogOut(c *gin.Context) {
	msg, err := ac.auth.LogOut(c.Request.Context(), c.GetHeader("Authorization"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": msg})
}
