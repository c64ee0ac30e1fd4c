package validation_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/campusbuddy/events-api/pkg/validation"
)

type sampleRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Phone    string `json:"phone" binding:"omitempty,phone"`
	Role     string `json:"role" binding:"omitempty,oneof=user organizer admin"`
}

func bindSample(t *testing.T, body string) error {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var req sampleRequest
	return c.ShouldBindJSON(&req)
}

func TestToDetailsUsesJSONFieldNames(t *testing.T) {
	err := bindSample(t, `{"email":"nope","password":"short"}`)
	require.Error(t, err)

	details := validation.ToDetails(err)
	require.Equal(t, "must be a valid email", details["email"])
	require.Equal(t, "must be at least 8 characters", details["password"])
}

func TestToDetailsRequiredAndOneof(t *testing.T) {
	err := bindSample(t, `{"role":"superadmin"}`)
	require.Error(t, err)

	details := validation.ToDetails(err)
	require.Equal(t, "is required", details["email"])
	require.Equal(t, "is required", details["password"])
	require.Equal(t, "must be one of: user, organizer, admin", details["role"])
}

func TestToDetailsPhoneAlias(t *testing.T) {
	err := bindSample(t, `{"email":"a@x.com","password":"long-enough","phone":"12345"}`)
	require.Error(t, err)

	details := validation.ToDetails(err)
	require.Equal(t, "must be a valid phone number", details["phone"])
}

func TestToDetailsMalformedJSON(t *testing.T) {
	err := bindSample(t, `{"email": nope}`)
	require.Error(t, err)
	require.Equal(t, map[string]string{"payload": "invalid json"}, validation.ToDetails(err))
}

func TestToDetailsNil(t *testing.T) {
	require.Nil(t, validation.ToDetails(nil))
}

func TestValidJSONPasses(t *testing.T) {
	err := bindSample(t, `{"email":"a@x.com","password":"long-enough","phone":"+6281234567890","role":"organizer"}`)
	require.NoError(t, err)
}
