package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestValidatePhone(t *testing.T) {
	require.True(t, ValidatePhone("+91 98765-43210"))
	require.True(t, ValidatePhone("+44 (20) 7946 0958"))
	require.False(t, ValidatePhone("abc"))
	require.Equal(t, "+919876543210", NormalizePhone("+91 (98765) 43210"))
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	require.True(t, CheckPasswordHash("s3cret-pass", hash))
	require.False(t, CheckPasswordHash("wrong", hash))
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	const secret = "test-secret"

	r := gin.New()
	r.GET("/me", AuthMiddleware(secret), func(c *gin.Context) {
		salonID, _ := c.Get("salonId")
		c.String(http.StatusOK, salonID.(string))
	})

	token, err := GenerateToken(secret, "user-1", "salon-1", time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "salon-1", w.Body.String())

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	_, err = GenerateToken("", "user-1", "salon-1", time.Hour)
	require.Error(t, err)
}
