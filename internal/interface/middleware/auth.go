package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-commerce-api/internal/domain/entity"
	"github.com/oksasatya/go-commerce-api/internal/domain/repository"
	"github.com/oksasatya/go-commerce-api/pkg/helpers"
	"github.com/oksasatya/go-commerce-api/pkg/response"
)

const (
	// CtxUserKey holds the resolved *entity.User for authenticated requests.
	CtxUserKey = "authUser"

	bearerPrefix = "Bearer "
)

// Protect resolves the Authorization bearer token to an identity and injects
// it into the request context. The client-visible message is uniform for
// every verification failure; the specific cause is only logged.
func Protect(jwt *helpers.JWTManager, users repository.UserRepository, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, bearerPrefix) {
			response.AbortFail(c, http.StatusUnauthorized, "Not authorized, no token", nil)
			return
		}

		token := strings.TrimPrefix(header, bearerPrefix)
		claims, err := jwt.Parse(token)
		if err != nil {
			logger.WithError(err).Debug("bearer token rejected")
			response.AbortFail(c, http.StatusUnauthorized, "Not authorized, token failed", nil)
			return
		}

		// the account may have been deleted after the token was issued
		u, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil || u == nil {
			logger.WithField("user_id", claims.UserID).Debug("token user no longer exists")
			response.AbortFail(c, http.StatusUnauthorized, "Not authorized, token failed", nil)
			return
		}

		c.Set(CtxUserKey, u)
		c.Next()
	}
}

// RequireAdmin gates a route on the resolved identity's admin flag. It must
// run after Protect.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := UserFromContext(c)
		if u == nil || !u.IsAdmin {
			response.AbortFail(c, http.StatusUnauthorized, "Not authorized as an admin", nil)
			return
		}
		c.Next()
	}
}

// UserFromContext returns the authenticated user set by Protect, or nil.
func UserFromContext(c *gin.Context) *entity.User {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*entity.User)
	return u
}
