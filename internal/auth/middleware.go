package auth

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JakubMikolajczyk/Library/internal/user"
	"github.com/JakubMikolajczyk/Library/internal/utils"
)

// AuthMiddleware authenticates requests with the access-token cookie, or an
// Authorization bearer header for non-browser clients. The resolved user is
// stored in the request context as the explicit principal.
func AuthMiddleware(userService user.UserService, accessSecret string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken, ok := accessTokenFromRequest(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		claims, err := utils.ParseAccessToken(rawToken, accessSecret)
		if err != nil {
			// An expired access token does not authenticate; the client
			// must go through the refresh endpoint.
			if !errors.Is(err, utils.ErrTokenExpired) {
				logger.Warn("access token parse failed", zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired access token"})
			return
		}

		userID, err := strconv.ParseUint(claims.Subject, 10, 64)
		if err != nil {
			logger.Error("invalid subject claim", zap.Error(err), zap.String("subject", claims.Subject))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token subject"})
			return
		}

		principal, err := userService.GetUserByID(c.Request.Context(), uint(userID))
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
				return
			}
			logger.Error("failed to load user by ID", zap.Error(err), zap.Uint("userID", uint(userID)))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "could not validate user"})
			return
		}

		c.Set(user.ContextUserKey, principal)
		c.Next()
	}
}

func accessTokenFromRequest(c *gin.Context) (string, bool) {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie, true
	}

	authHeader := c.GetHeader("Authorization")
	parts := strings.Fields(authHeader)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1], true
	}
	return "", false
}

// RoleMiddleware allows only principals holding one of the given roles.
func RoleMiddleware(logger *zap.Logger, roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := user.Principal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		for _, role := range roles {
			if principal.Role == role {
				c.Next()
				return
			}
		}
		logger.Warn("role check failed",
			zap.Uint("userID", principal.ID),
			zap.String("role", string(principal.Role)))
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}
