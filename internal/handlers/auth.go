package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/gigmate/internal/middleware"
	"github.com/thereayou/gigmate/pkg/auth"
	"github.com/thereayou/gigmate/pkg/logger"
)

// TokenRevoker ставит токен в черный список
type TokenRevoker interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
}

// AuthHandler - выход из сессии; токены выдает внешний сервис аккаунтов
type AuthHandler struct {
	jwtManager *auth.JWTManager
	revoker    TokenRevoker
	log        *logger.Logger
}

func NewAuthHandler(jwtMgr *auth.JWTManager, revoker TokenRevoker, log *logger.Logger) *AuthHandler {
	return &AuthHandler{jwtManager: jwtMgr, revoker: revoker, log: log.With("component", "auth_handler")}
}

// Logout ставит токен в черный список в Redis до истечения
func (h *AuthHandler) Logout(c *gin.Context) {
	rawToken := middleware.Token(c)

	exp, err := h.jwtManager.Expiry(rawToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "invalid token"})
		return
	}

	ttl := time.Until(exp)
	if ttl <= 0 {
		c.Status(http.StatusNoContent)
		return
	}
	if err := h.revoker.Revoke(c.Request.Context(), rawToken, ttl); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.Status(http.StatusNoContent)
}
