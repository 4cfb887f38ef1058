package server

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/thereayou/talkroom/internal/database"
	"github.com/thereayou/talkroom/internal/handlers"
	"github.com/thereayou/talkroom/internal/rooms"
	"github.com/thereayou/talkroom/pkg/auth"
)

type Server struct {
	Router     *gin.Engine
	DB         *database.Database
	Redis      *redis.Client
	JWTManager *auth.JWTManager
	Manager    *rooms.Manager
}

func NewServer() *Server {
	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Println(".env not found, using environment variables")
		}
	}

	dbConn := &database.Database{}
	if err := dbConn.Connect(); err != nil {
		log.Fatalf("Postgres connect failed: %v", err)
	}

	redisOpts, err := redis.ParseURL(os.Getenv("REDIS_URL"))
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Redis connect failed: %v", err)
	}

	uploadsPath := os.Getenv("UPLOADS_PATH")
	if uploadsPath == "" {
		uploadsPath = "./data/uploads"
	}
	if err := os.MkdirAll(uploadsPath, 0o755); err != nil {
		log.Fatalf("cannot create uploads dir: %v", err)
	}

	jwtMgr := auth.NewJWTManager(
		os.Getenv("JWT_SECRET"),
		24*time.Hour,
	)

	manager := rooms.NewManager(dbConn)

	h := &Handlers{
		Auth:      handlers.NewAuthHandler(dbConn, jwtMgr, rdb),
		User:      handlers.NewUserHandler(dbConn),
		Room:      handlers.NewRoomHandler(dbConn, manager),
		Message:   handlers.NewMessageHandler(dbConn, manager),
		Stream:    handlers.NewStreamHandler(manager),
		WebSocket: handlers.NewWebSocketHandler(manager),
		Upload:    handlers.NewUploadHandler(dbConn, uploadsPath),
	}

	router := gin.Default()
	APIEndpoints(router, h, jwtMgr, rdb, uploadsPath)

	return &Server{
		Router:     router,
		DB:         dbConn,
		Redis:      rdb,
		JWTManager: jwtMgr,
		Manager:    manager,
	}
}

func (s *Server) Run() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server starting on port %s", port)
	if err := s.Router.Run(":" + port); err != nil {
		log.Fatalf("Server run error: %v", err)
	}
}
