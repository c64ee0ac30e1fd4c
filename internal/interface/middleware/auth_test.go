package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/campusbuddy/events-api/internal/domain/entity"
	"github.com/campusbuddy/events-api/internal/interface/middleware"
	"github.com/campusbuddy/events-api/internal/testsupport"
	"github.com/campusbuddy/events-api/pkg/helpers"
)

func newProtectedRouter(users *testsupport.UserRepo, jwt *helpers.JWTManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", middleware.Auth(users, jwt), func(c *gin.Context) {
		u := middleware.UserFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": u.ID, "ctx_id": c.GetString(middleware.CtxUserIDKey)})
	})
	return r
}

func seedUser(t *testing.T, users *testsupport.UserRepo) *entity.User {
	t.Helper()
	u := &entity.User{Name: "Asha", Email: "a@x.com", Password: "x", Role: entity.RoleUser}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestAuthAcceptsValidBearerToken(t *testing.T) {
	users := testsupport.NewUserRepo()
	jwt := helpers.NewJWTManager("secret", time.Hour)
	u := seedUser(t, users)
	token, _, err := jwt.Generate(u.ID)
	require.NoError(t, err)

	r := newProtectedRouter(users, jwt)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), u.ID)
}

func TestAuthRejectsMissingToken(t *testing.T) {
	users := testsupport.NewUserRepo()
	jwt := helpers.NewJWTManager("secret", time.Hour)

	r := newProtectedRouter(users, jwt)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsMalformedHeader(t *testing.T) {
	users := testsupport.NewUserRepo()
	jwt := helpers.NewJWTManager("secret", time.Hour)

	r := newProtectedRouter(users, jwt)
	for _, header := range []string{"garbage", "Basic abc", "Bearer", "Bearer not.a.jwt"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	users := testsupport.NewUserRepo()
	expired := helpers.NewJWTManager("secret", -time.Minute)
	u := seedUser(t, users)
	token, _, err := expired.Generate(u.ID)
	require.NoError(t, err)

	r := newProtectedRouter(users, helpers.NewJWTManager("secret", time.Hour))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsTokenSignedWithOtherKey(t *testing.T) {
	users := testsupport.NewUserRepo()
	u := seedUser(t, users)
	token, _, err := helpers.NewJWTManager("other-secret", time.Hour).Generate(u.ID)
	require.NoError(t, err)

	r := newProtectedRouter(users, helpers.NewJWTManager("secret", time.Hour))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsTokenForDeletedSubject(t *testing.T) {
	users := testsupport.NewUserRepo()
	jwt := helpers.NewJWTManager("secret", time.Hour)
	u := seedUser(t, users)
	token, _, err := jwt.Generate(u.ID)
	require.NoError(t, err)

	users.Delete(u.ID)

	r := newProtectedRouter(users, jwt)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}
