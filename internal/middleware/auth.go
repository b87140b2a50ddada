package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/thereayou/gigmate/pkg/auth"
	"github.com/thereayou/gigmate/pkg/logger"
)

const (
	UserIDKey = "userID"
	tokenKey  = "token"
)

// Revocations - черный список отозванных токенов
type Revocations interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// RedisRevocations хранит отозванные токены ключами blacklist:<token> до их истечения
type RedisRevocations struct {
	rdb *redis.Client
}

func NewRedisRevocations(rdb *redis.Client) *RedisRevocations {
	return &RedisRevocations{rdb: rdb}
}

func (r *RedisRevocations) IsRevoked(ctx context.Context, token string) (bool, error) {
	exists, err := r.rdb.Exists(ctx, "blacklist:"+token).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

func (r *RedisRevocations) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	return r.rdb.Set(ctx, "blacklist:"+token, 1, ttl).Err()
}

// AuthMiddleware проверяет JWT из заголовка или ?token= (для WebSocket)
func AuthMiddleware(jwtManager *auth.JWTManager, revocations Revocations, log *logger.Logger) gin.HandlerFunc {
	log = log.With("component", "auth")

	return func(c *gin.Context) {
		token, err := auth.ExtractToken(c.Request)
		if err != nil {
			abort(c, "missing or invalid token")
			return
		}

		// Проверяем, не в черном списке ли токен
		revoked, err := revocations.IsRevoked(c.Request.Context(), token)
		if err != nil {
			log.Error("revocation lookup failed", "error", err)
			abort(c, "token is blacklisted")
			return
		}
		if revoked {
			abort(c, "token is blacklisted")
			return
		}

		userID, err := jwtManager.UserID(token)
		if err != nil {
			abort(c, "invalid token")
			return
		}

		c.Set(UserIDKey, userID)
		c.Set(tokenKey, token)
		c.Next()
	}
}

// UserID - пользователь, установленный AuthMiddleware
func UserID(c *gin.Context) uuid.UUID {
	return c.MustGet(UserIDKey).(uuid.UUID)
}

// Token - исходный токен запроса
func Token(c *gin.Context) string {
	return c.GetString(tokenKey)
}

func abort(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": msg})
}
