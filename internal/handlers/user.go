package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/gigmate/internal/middleware"
	"github.com/thereayou/gigmate/internal/services"
	"github.com/thereayou/gigmate/pkg/logger"
)

type UserHandler struct {
	catalog *services.CatalogService
	log     *logger.Logger
}

func NewUserHandler(catalog *services.CatalogService, log *logger.Logger) *UserHandler {
	return &UserHandler{catalog: catalog, log: log.With("component", "user_handler")}
}

// GetMe возвращает профиль и музыкальный вкус текущего пользователя
func (h *UserHandler) GetMe(c *gin.Context) {
	profile, err := h.catalog.Profile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetUser возвращает профиль пользователя по ID
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}
	profile, err := h.catalog.Profile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
