package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/anamul94/AITutor/internal/logger"
	"github.com/anamul94/AITutor/internal/requestdata"
	"github.com/anamul94/AITutor/internal/services"
)

// CtxUserKey is the gin context key under which RequireAuth stores the
// authenticated *types.User.
const CtxUserKey = "currentUser"

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return c.Query("token")
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{"message": message, "code": code},
	})
}

// RequireAuth verifies the bearer token and loads the authenticated user into
// both the gin context and the request context.
func RequireAuth(authService services.AuthService, log *logger.Logger) gin.HandlerFunc {
	authLog := log.With("middleware", "RequireAuth")
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		user, err := authService.UserFromToken(c.Request.Context(), tokenString)
		if err != nil {
			if errors.Is(err, services.ErrInactiveUser) {
				abortWithError(c, http.StatusForbidden, "forbidden", "inactive user account")
				return
			}
			authLog.Debug("Token verification failed", "error", err.Error())
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "could not validate credentials")
			return
		}

		c.Set(CtxUserKey, user)
		rd := &requestdata.RequestData{
			TokenString: tokenString,
			UserID:      user.ID,
			Email:       user.Email,
			IsAdmin:     user.IsAdmin,
		}
		c.Request = c.Request.WithContext(requestdata.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := requestdata.GetRequestData(c.Request.Context())
		if rd == nil || !rd.IsAdmin {
			abortWithError(c, http.StatusForbidden, "forbidden", "admin privileges required")
			return
		}
		c.Next()
	}
}
