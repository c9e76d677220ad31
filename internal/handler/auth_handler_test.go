package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-timetabler/internal/service"
	"github.com/noah-isme/campus-timetabler/pkg/config"
)

func newAuthHandlerFixture(secret string) *AuthHandler {
	return NewAuthHandler(service.NewAuthService(config.AdminConfig{
		JWTSecret:  secret,
		Expiration: time.Hour,
	}))
}

func TestTokenIssued(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthHandlerFixture("super-secret")
	req, _ := http.NewRequest(http.MethodPost, "/auth/token", bytes.NewReader([]byte(`{"secret":"super-secret"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Token(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "token")
	require.Contains(t, w.Body.String(), "expires_at")
}

func TestTokenWrongSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthHandlerFixture("super-secret")
	req, _ := http.NewRequest(http.MethodPost, "/auth/token", bytes.NewReader([]byte(`{"secret":"guess"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Token(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTokenMalformedPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthHandlerFixture("super-secret")
	req, _ := http.NewRequest(http.MethodPost, "/auth/token", bytes.NewReader([]byte(`{"secret":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Token(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
