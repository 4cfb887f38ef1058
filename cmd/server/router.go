package server

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/thereayou/talkroom/internal/handlers"
	"github.com/thereayou/talkroom/internal/middleware"
	jwtauth "github.com/thereayou/talkroom/pkg/auth"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	User      *handlers.UserHandler
	Room      *handlers.RoomHandler
	Message   *handlers.MessageHandler
	Stream    *handlers.StreamHandler
	WebSocket *handlers.WebSocketHandler
	Upload    *handlers.UploadHandler
}

func APIEndpoints(r *gin.Engine, h *Handlers, jwtMgr *jwtauth.JWTManager, rdb *redis.Client, uploadsPath string) {
	// Auth endpoints
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/logout", h.Auth.Logout)
	}

	// Загруженные файлы
	r.Static("/uploads", uploadsPath)

	// API endpoints
	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(jwtMgr, rdb))
	{
		api.GET("/users/me", h.User.GetMe)
		api.PATCH("/users/me", h.User.UpdateMe)
		api.GET("/users/search", h.User.SearchUsers)
		api.GET("/users/:id", h.User.GetUser)

		api.POST("/rooms", h.Room.CreateRoom)
		api.POST("/rooms/direct", h.Room.CreateUserRoom)
		api.GET("/rooms", h.Room.GetMyRooms)
		api.GET("/rooms/:id", h.Room.GetRoom)
		api.POST("/rooms/:id/members", h.Room.AddMember)
		api.DELETE("/rooms/:id/members/:userID", h.Room.RemoveMember)

		api.POST("/rooms/:id/messages", h.Message.SendMessage)
		api.GET("/rooms/:id/messages", h.Message.GetRoomMessages)

		api.POST("/rooms/:id/uploads", h.Upload.UploadToRoom)
		api.GET("/uploads/:id", h.Upload.GetUpload)

		// живой поток комнаты (SSE)
		api.GET("/rooms/:id/live", h.Stream.StreamRoom)
	}

	// WebSocket вариант живого потока, токен в query
	ws := r.Group("/ws")
	ws.Use(middleware.WSAuthMiddleware(jwtMgr, rdb))
	{
		ws.GET("/rooms/:id", h.WebSocket.StreamRoom)
	}
}
