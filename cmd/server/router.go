package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/gigmate/internal/handlers"
)

// Handlers - набор HTTP обработчиков сервера
type Handlers struct {
	Auth       *handlers.AuthHandler
	User       *handlers.UserHandler
	Room       *handlers.RoomHandler
	Message    *handlers.HTTPMessageHandler
	Connection *handlers.ConnectionHandler
	Thread     *handlers.ThreadHandler
	WebSocket  *handlers.WebSocketHandler
}

func APIEndpoints(r *gin.Engine, authMW gin.HandlerFunc, h Handlers) {
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	// WebSocket: токен можно передать в ?token=
	r.GET("/ws", authMW, h.WebSocket.HandleWebSocket)

	api := r.Group("/api/v1", authMW)
	{
		api.POST("/auth/logout", h.Auth.Logout)

		api.GET("/users/me", h.User.GetMe)
		api.GET("/users/:id", h.User.GetUser)

		api.GET("/events", h.Room.ListEvents)
		api.GET("/events/:id", h.Room.GetEvent)

		api.GET("/rooms", h.Room.JoinedRooms)
		api.POST("/rooms/:id/join", h.Room.JoinRoom)
		api.GET("/rooms/:id/members", h.Room.ListMembers)
		api.GET("/rooms/:id/messages", h.Message.GetRoomMessages)
		api.POST("/rooms/:id/messages", h.Message.SendRoomMessage)

		api.POST("/connections", h.Connection.Request)
		api.GET("/connections", h.Connection.List)
		api.GET("/connections/status", h.Connection.PairStatus)
		api.POST("/connections/:id/respond", h.Connection.Respond)
		api.POST("/connections/:id/thread", h.Connection.EnsureThread)

		api.GET("/threads", h.Thread.List)
		api.GET("/threads/:id", h.Thread.Get)
		api.GET("/threads/:id/messages", h.Message.GetThreadMessages)
		api.POST("/threads/:id/messages", h.Message.SendThreadMessage)
		api.PUT("/threads/:id/going-together", h.Thread.SetGoingTogether)
		api.GET("/threads/:id/checklist", h.Thread.ListItems)
		api.POST("/threads/:id/checklist", h.Thread.AddItem)
		api.POST("/threads/:id/checklist/:itemId/toggle", h.Thread.ToggleItem)
		api.PATCH("/threads/:id/checklist/:itemId", h.Thread.UpdateItem)
		api.DELETE("/threads/:id/checklist/:itemId", h.Thread.DeleteItem)
	}
}
