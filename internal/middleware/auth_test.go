package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/gigmate/pkg/auth"
	"github.com/thereayou/gigmate/pkg/logger"
)

type fakeRevocations struct {
	revoked map[string]bool
	err     error
}

func (f fakeRevocations) IsRevoked(_ context.Context, token string) (bool, error) {
	return f.revoked[token], f.err
}

func newRouter(jwt *auth.JWTManager, rev Revocations) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(jwt, rev, logger.Nop()), func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c).String())
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	jwt := auth.NewJWTManager("secret", time.Hour)
	userID := uuid.New()
	token, err := jwt.Generate(userID)
	require.NoError(t, err)
	revokedToken, err := jwt.Generate(uuid.New())
	require.NoError(t, err)

	cases := []struct {
		name   string
		target string
		header string
		rev    Revocations
		want   int
	}{
		{"bearer header", "/me", "Bearer " + token, fakeRevocations{}, http.StatusOK},
		{"query token", "/me?token=" + token, "", fakeRevocations{}, http.StatusOK},
		{"missing", "/me", "", fakeRevocations{}, http.StatusUnauthorized},
		{"garbage", "/me", "Bearer nope", fakeRevocations{}, http.StatusUnauthorized},
		{"revoked", "/me", "Bearer " + revokedToken, fakeRevocations{revoked: map[string]bool{revokedToken: true}}, http.StatusUnauthorized},
		{"redis down", "/me", "Bearer " + token, fakeRevocations{err: errors.New("dial tcp")}, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			newRouter(jwt, tc.rev).ServeHTTP(w, req)

			assert.Equal(t, tc.want, w.Code)
			if tc.want == http.StatusOK {
				assert.Equal(t, userID.String(), w.Body.String())
			}
		})
	}
}
