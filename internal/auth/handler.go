package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JakubMikolajczyk/Library/internal/user"
	"github.com/JakubMikolajczyk/Library/internal/utils"
)

// LoginRequest is the payload for logging in.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the payload for registering a new user.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Email    string `json:"email" binding:"omitempty,email"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Address  string `json:"address"`
	City     string `json:"city"`
}

// ChangePasswordRequest is the payload for changing one's password.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// AuthHandler handles authentication-related HTTP endpoints. Tokens are
// delivered as http-only cookies, never in response bodies.
type AuthHandler struct {
	service    SessionService
	logger     *zap.Logger
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewAuthHandler registers the public auth endpoints on public and the
// authenticated ones on me.
func NewAuthHandler(
	public, me *gin.RouterGroup,
	service SessionService,
	logger *zap.Logger,
	accessTTL, refreshTTL time.Duration,
) *AuthHandler {
	h := &AuthHandler{
		service:    service,
		logger:     logger,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
	public.POST("/auth/login", h.Login)
	public.POST("/auth/register", h.Register)
	public.POST("/auth/refresh", h.Refresh)
	me.POST("/auth/logout", h.Logout)
	me.POST("/users/me/change-password", h.ChangePassword)
	return h
}

func (h *AuthHandler) setSessionCookies(c *gin.Context, pair TokenPair) {
	setAccessCookie(c, pair.AccessToken, h.accessTTL)
	setRefreshCookie(c, pair.RefreshToken, h.refreshTTL)
}

// Login godoc
// @Summary      Login
// @Description  Authenticate user and set session cookies
// @Tags         auth
// @Accept       json
// @Param        payload  body      LoginRequest  true  "Login credentials"
// @Success      200      {object}  nil
// @Failure      400      {object}  map[string]string
// @Failure      401      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return
	}
	pair, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		h.setSessionCookies(c, pair)
		c.Status(http.StatusOK)
	case errors.Is(err, ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	default:
		h.logger.Error("Login service failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not login"})
	}
}

// Register godoc
// @Summary      Register
// @Description  Create a user, then log them in (cookies set)
// @Tags         auth
// @Accept       json
// @Param        payload  body      RegisterRequest  true  "Profile and credentials"
// @Success      201      {object}  nil
// @Failure      400      {object}  map[string]string
// @Failure      409      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid registration payload"})
		return
	}
	pair, err := h.service.Register(c.Request.Context(), Registration{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Name:     req.Name,
		Surname:  req.Surname,
		Address:  req.Address,
		City:     req.City,
	})
	switch {
	case err == nil:
		h.setSessionCookies(c, pair)
		c.Status(http.StatusCreated)
	case errors.Is(err, ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
	case errors.Is(err, user.ErrPasswordTooShort),
		errors.Is(err, user.ErrPasswordNotAlphanumeric),
		errors.Is(err, user.ErrEmptyUsername):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Register service failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register"})
	}
}

// Refresh godoc
// @Summary      Refresh access token
// @Description  Validate the refresh cookie and set a new access cookie
// @Tags         auth
// @Success      200  {object}  nil
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshJWT, err := c.Cookie(RefreshTokenCookie)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token not found"})
		return
	}
	accessJWT, err := h.service.Refresh(c.Request.Context(), refreshJWT)
	switch {
	case err == nil:
		setAccessCookie(c, accessJWT, h.accessTTL)
		c.Status(http.StatusOK)
	case errors.Is(err, ErrSessionExpired):
		clearSessionCookies(c)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
	case errors.Is(err, ErrSessionRevoked):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session revoked"})
	case errors.Is(err, utils.ErrMalformedToken):
		h.logger.Warn("malformed refresh token presented", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
	default:
		h.logger.Error("Refresh service failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not refresh token"})
	}
}

// ChangePassword godoc
// @Summary      Change password
// @Description  Verify the old password, store the new one, revoke every session and clear cookies
// @Tags         users
// @Accept       json
// @Param        payload  body      ChangePasswordRequest  true  "Old and new password"
// @Success      200      {object}  nil
// @Failure      400      {object}  map[string]string
// @Failure      401      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /users/me/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	principal, ok := user.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "old and new password required"})
		return
	}
	err := h.service.ChangePassword(c.Request.Context(), principal.ID, req.OldPassword, req.NewPassword)
	switch {
	case err == nil:
		clearSessionCookies(c)
		c.Status(http.StatusOK)
	case errors.Is(err, ErrWrongPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": "wrong old password"})
	case errors.Is(err, user.ErrPasswordTooShort),
		errors.Is(err, user.ErrPasswordNotAlphanumeric):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("ChangePassword service failed", zap.Uint("userID", principal.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not change password"})
	}
}

// Logout godoc
// @Summary      Logout everywhere
// @Description  Revoke every session of the caller and clear cookies
// @Tags         auth
// @Success      204  {object}  nil
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	principal, ok := user.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if err := h.service.LogoutAll(c.Request.Context(), principal.ID); err != nil {
		h.logger.Error("Logout service failed", zap.Uint("userID", principal.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not logout"})
		return
	}
	clearSessionCookies(c)
	c.Status(http.StatusNoContent)
}
