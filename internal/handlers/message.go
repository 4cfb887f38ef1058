package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thereayou/talkroom/internal/database"
	"github.com/thereayou/talkroom/internal/handlers/dto"
	"github.com/thereayou/talkroom/internal/middleware"
	"github.com/thereayou/talkroom/internal/rooms"
)

type MessageHandler struct {
	db      *database.Database
	manager *rooms.Manager
}

func NewMessageHandler(db *database.Database, manager *rooms.Manager) *MessageHandler {
	return &MessageHandler{db: db, manager: manager}
}

// SendMessage сохраняет сообщение и рассылает его живым подписчикам
func (h *MessageHandler) SendMessage(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)
	roomID := c.Param("id")

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.db.GetUser(userID.String())
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	messageID, err := h.manager.SendMessage(roomID, userID, user.Username, user.AvatarURL, req.Content, req.Uploads)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrRoomNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		case errors.Is(err, database.ErrAccessDenied):
			c.JSON(http.StatusForbidden, gin.H{"error": "you are not a member of this room"})
		case errors.Is(err, database.ErrUploadNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		}
		return
	}

	go h.db.UpdateLastSeen(userID.String())

	c.JSON(http.StatusCreated, gin.H{"id": messageID})
}

// GetRoomMessages отдает страницу истории, новые первыми.
// next_page = 0 значит, что страниц больше нет.
func (h *MessageHandler) GetRoomMessages(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)
	roomID := c.Param("id")

	if _, err := h.db.GetRoom(roomID, userID); err != nil {
		respondRoomError(c, err)
		return
	}

	page := 0
	if p := c.Query("page"); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
			return
		}
		page = parsed
	}

	messages, nextPage, err := h.manager.GetRoomMessages(roomID, userID, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages":  messages,
		"next_page": nextPage,
	})
}
