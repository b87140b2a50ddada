package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thereayou/gigmate/internal/apperr"
	"github.com/thereayou/gigmate/pkg/logger"
)

// respondError отдает {"error": code, "message": text}; инфраструктурные ошибки - 500 без подробностей
func respondError(c *gin.Context, log *logger.Logger, err error) {
	if e, ok := apperr.As(err); ok {
		if e.Kind == apperr.KindPartialFailure {
			log.Error("partial failure", "path", c.FullPath(), "code", e.Code, "error", err)
		}
		c.JSON(e.Status(), gin.H{"error": e.Code, "message": e.Message})
		return
	}

	log.Error("request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "internal error"})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": apperr.CodeInvalidRequest, "message": msg})
}

// paramID разбирает uuid из пути; при ошибке ответ уже отправлен
func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
