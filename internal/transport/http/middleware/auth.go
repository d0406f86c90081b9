package middleware

import (
	"net/http"
	"strings"

	"github.com/flintandflours/storefront/internal/domain"
	"github.com/flintandflours/storefront/internal/repository"
	"github.com/gin-gonic/gin"
)

const (
	errUnauthorized = "Unauthorized"
	errForbidden    = "Forbidden"

	// ContextUserKey holds the authenticated *domain.User.
	ContextUserKey = "user"
)

// tokenParser is the subset of AuthUsecase the middleware needs.
type tokenParser interface {
	ParseToken(rawToken, wantType string) (string, error)
}

// Auth validates a Bearer access token, loads the account it belongs
// to, and sets it in the gin context. Refresh tokens are rejected here;
// they are only good for /auth/refresh.
func Auth(parser tokenParser, users repository.UserRepository, accessType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		userID, err := parser.ParseToken(strings.TrimPrefix(header, "Bearer "), accessType)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			// Token outlived the account.
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// RequireAdmin gates a route group to admin accounts. It must run
// after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := UserFromContext(c)
		if user == nil || !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": errForbidden})
			return
		}
		c.Next()
	}
}

// UserFromContext returns the authenticated user set by Auth, or nil.
func UserFromContext(c *gin.Context) *domain.User {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*domain.User)
	return user
}
