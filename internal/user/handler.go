package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContextUserKey is the key under which the authenticated User is stored in
// Gin context by the auth middleware.
const ContextUserKey = "user"

// EditProfileRequest represents the payload to edit one's own profile.
type EditProfileRequest struct {
	Email   string `json:"email" binding:"omitempty,email"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Address string `json:"address"`
	City    string `json:"city"`
}

// EditUserRequest represents the staff payload to edit any user, including
// the role.
type EditUserRequest struct {
	Email   string `json:"email" binding:"omitempty,email"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Address string `json:"address"`
	City    string `json:"city"`
	Role    Role   `json:"role" binding:"omitempty,oneof=user staff admin"`
}

// IDRequest represents a URI ID parameter.
type IDRequest struct {
	ID uint `uri:"id" binding:"required,min=1"`
}

// UserHandler handles HTTP requests for user resources.
type UserHandler struct {
	service UserService
	logger  *zap.Logger
}

// NewUserHandler registers profile endpoints on the authenticated group and
// management endpoints on the staff group.
func NewUserHandler(me, staff *gin.RouterGroup, service UserService, logger *zap.Logger) *UserHandler {
	h := &UserHandler{service: service, logger: logger}
	me.GET("/users/me", h.GetMe)
	me.PUT("/users/me", h.EditMe)
	staff.GET("/users", h.ListUsers)
	staff.GET("/users/:id", h.GetUser)
	staff.PUT("/users/:id", h.EditUser)
	staff.DELETE("/users/:id", h.DeleteUser)
	return h
}

// Principal extracts the authenticated user placed in context by the auth
// middleware.
func Principal(c *gin.Context) (*User, bool) {
	raw, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := raw.(*User)
	return user, ok
}

func (h *UserHandler) bindID(c *gin.Context) (uint, bool) {
	var uri IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or missing id"})
		return 0, false
	}
	return uri.ID, true
}

// GetMe godoc
// @Summary      Get current user
// @Tags         users
// @Produce      json
// @Success      200  {object}  User
// @Failure      401  {object}  map[string]string
// @Router       /users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	principal, ok := Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, principal)
}

// EditMe godoc
// @Summary      Edit current user's profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body  EditProfileRequest  true  "profile fields"
// @Success      204  {object}  nil
// @Failure      400  {object}  map[string]string
// @Router       /users/me [put]
func (h *UserHandler) EditMe(c *gin.Context) {
	principal, ok := Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req EditProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile payload"})
		return
	}
	err := h.service.UpdateProfile(c.Request.Context(), principal.ID, ProfileUpdate{
		Email:   req.Email,
		Name:    req.Name,
		Surname: req.Surname,
		Address: req.Address,
		City:    req.City,
	})
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, ErrInvalidEmailFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email format"})
	default:
		h.logger.Error("EditMe failed", zap.Uint("id", principal.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update profile"})
	}
}

// ListUsers godoc
// @Summary      List all users
// @Tags         users
// @Produce      json
// @Success      200  {array}  User
// @Failure      500  {object}  map[string]string
// @Router       /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.service.GetAllUsers(c.Request.Context())
	if err != nil {
		h.logger.Error("ListUsers failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser godoc
// @Summary      Get user by ID
// @Tags         users
// @Produce      json
// @Param        id  path  int  true  "user id"
// @Success      200  {object}  User
// @Failure      404  {object}  map[string]string
// @Router       /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	user, err := h.service.GetUserByID(c.Request.Context(), id)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, user)
	case errors.Is(err, ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	default:
		h.logger.Error("GetUser failed", zap.Uint("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read user"})
	}
}

// EditUser godoc
// @Summary      Edit any user
// @Tags         users
// @Accept       json
// @Param        id       path  int              true  "user id"
// @Param        payload  body  EditUserRequest  true  "user fields"
// @Success      204  {object}  nil
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /users/{id} [put]
func (h *UserHandler) EditUser(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	var req EditUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user payload"})
		return
	}
	err := h.service.UpdateProfile(c.Request.Context(), id, ProfileUpdate{
		Email:   req.Email,
		Name:    req.Name,
		Surname: req.Surname,
		Address: req.Address,
		City:    req.City,
	})
	if err == nil && req.Role != "" {
		err = h.service.UpdateRole(c.Request.Context(), id, req.Role)
	}
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, ErrInvalidEmailFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email format"})
	default:
		h.logger.Error("EditUser failed", zap.Uint("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update user"})
	}
}

// DeleteUser godoc
// @Summary      Delete a user
// @Tags         users
// @Param        id  path  int  true  "user id"
// @Success      204  {object}  nil
// @Failure      404  {object}  map[string]string
// @Router       /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteUser(c.Request.Context(), id); err != nil {
		h.logger.Error("DeleteUser failed", zap.Uint("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete user"})
		return
	}
	c.Status(http.StatusNoContent)
}
