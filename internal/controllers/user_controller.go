package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/josmejia2401/jac-vision/internal/services"
)

// UserController exposes the user management endpoints.
type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

type createUserRequest struct {
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phoneNumber"`
	Username    string `json:"username" binding:"required,min=3"`
	Password    string `json:"password" binding:"required,min=8"`
}

type updateUserRequest struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	Email       *string `json:"email" binding:"omitempty,email"`
	PhoneNumber *string `json:"phoneNumber"`
}

type updatePasswordRequest struct {
	Password    string `json:"password" binding:"required,min=8"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// Create - POST /users (public: registration)
func (uc *UserController) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	user, err := uc.users.CreateUser(c.Request.Context(), services.CreateUserInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Username:    req.Username,
		Password:    req.Password,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": user})
}

// GetByID - GET /users/:id
func (uc *UserController) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	user, err := uc.users.GetByID(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}

// GetPaginated - GET /users?page=&limit=
func (uc *UserController) GetPaginated(c *gin.Context) {
	page, err := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)
	if err != nil || limit < 1 {
		limit = 10
	}

	users, total, err := uc.users.GetPaginated(c.Request.Context(), page, limit)
	if err != nil {
		c.Error(err)
		return
	}

	pages := total / limit
	if total%limit != 0 {
		pages++
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    users,
		"total":   total,
		"page":    page,
		"pages":   pages,
	})
}

// Update - PUT /users/:id
func (uc *UserController) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	user, err := uc.users.UpdateUser(c.Request.Context(), id, services.UpdateUserInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}

// Delete - DELETE /users/:id (soft delete)
func (uc *UserController) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	user, err := uc.users.DeleteUser(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}

// UpdatePassword - PUT /users/:id/password
func (uc *UserController) UpdatePassword(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	if err := uc.users.UpdatePassword(c.Request.Context(), id, req.Password, req.NewPassword); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": "Contraseña actualizada correctamente."})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Datos inválidos",
			"details": []string{"El identificador debe ser numérico."},
		})
		return 0, false
	}
	return id, true
}

func respondInvalid(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": "Datos inválidos",
		"details": []string{err.Error()},
	})
}
