package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, userID string, ttl time.Duration) string {
	t.Helper()
	claims := sessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func authRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthMiddleware(testSecret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": c.GetString("user_id")})
	})
	return r
}

func TestAuthMiddleware_BearerHeader(t *testing.T) {
	req := require.New(t)
	r := authRouter()

	w := httptest.NewRecorder()
	hr := httptest.NewRequest(http.MethodGet, "/protected", nil)
	hr.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "alice", time.Hour))
	r.ServeHTTP(w, hr)

	req.Equal(http.StatusOK, w.Code)
	req.Contains(w.Body.String(), "alice")
}

func TestAuthMiddleware_QueryToken(t *testing.T) {
	// Browsers cannot set headers on a websocket upgrade.
	req := require.New(t)
	r := authRouter()

	w := httptest.NewRecorder()
	hr := httptest.NewRequest(http.MethodGet, "/protected?token="+signToken(t, testSecret, "bob", time.Hour), nil)
	r.ServeHTTP(w, hr)

	req.Equal(http.StatusOK, w.Code)
	req.Contains(w.Body.String(), "bob")
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	r := authRouter()

	cases := []struct {
		name  string
		token string
	}{
		{"missing token", ""},
		{"wrong secret", signToken(t, "other-secret", "alice", time.Hour)},
		{"expired", signToken(t, testSecret, "alice", -time.Hour)},
		{"empty user id", signToken(t, testSecret, "", time.Hour)},
		{"garbage", "not-a-jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			hr := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.token != "" {
				hr.Header.Set("Authorization", "Bearer "+tc.token)
			}
			r.ServeHTTP(w, hr)
			require.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}
