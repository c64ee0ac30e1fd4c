package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campusbuddy/events-api/internal/domain/entity"
	repo "github.com/campusbuddy/events-api/internal/domain/repository"
	"github.com/campusbuddy/events-api/pkg/helpers"
	"github.com/campusbuddy/events-api/pkg/response"
)

const (
	// CtxUserIDKey holds the authenticated user id in the Gin context.
	CtxUserIDKey = "userID"
	// CtxUserKey holds the resolved *entity.User.
	CtxUserKey = "authUser"
)

// Auth is the request authentication gate. It extracts the bearer token,
// verifies signature and expiry, resolves the subject to a live user record
// and attaches the identity to the request context. It fails closed: missing,
// malformed or expired tokens and tokens whose subject no longer exists are
// all rejected with a 401 and a generic message.
func Auth(users repo.UserRepository, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			unauthorized(c, "missing access token")
			return
		}
		claims, err := jwt.Parse(token)
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}
		u, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil || u == nil {
			unauthorized(c, "invalid or expired token")
			return
		}

		c.Set(CtxUserIDKey, u.ID)
		c.Set(CtxUserKey, u)
		c.Next()
	}
}

// UserFromContext returns the identity resolved by Auth, or nil outside an
// authenticated request.
func UserFromContext(c *gin.Context) *entity.User {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*entity.User)
	return u
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(c *gin.Context, msg string) {
	response.Error[any](c, http.StatusUnauthorized, msg, nil)
	c.Abort()
}
