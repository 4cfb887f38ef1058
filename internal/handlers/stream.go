package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thereayou/talkroom/internal/middleware"
	"github.com/thereayou/talkroom/internal/rooms"
)

// keepAlivePeriod — интервал keepalive-комментариев в простое,
// чтобы прокси и клиент не считали соединение мертвым
const keepAlivePeriod = 15 * time.Second

// StreamHandler отдает живой поток комнаты через server-sent events
type StreamHandler struct {
	manager *rooms.Manager
}

func NewStreamHandler(manager *rooms.Manager) *StreamHandler {
	return &StreamHandler{manager: manager}
}

// StreamRoom подписывает на комнату и пишет каждое сообщение отдельным
// событием. Пропуски из-за отставания в поток не попадают — клиент
// добирает их постраничной историей.
func (h *StreamHandler) StreamRoom(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)
	roomID := c.Param("id")

	sub, err := h.manager.JoinRoom(roomID, userID)
	if err != nil {
		respondRoomError(c, err)
		return
	}
	defer sub.Close()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	keepalive := time.NewTicker(keepAlivePeriod)
	defer keepalive.Stop()

	ctx := c.Request.Context()

	for {
		select {
		case <-ctx.Done():
			// клиент отключился, подписка снимается в defer
			return

		case msg, ok := <-sub.C:
			if !ok {
				return
			}
			if n := sub.Lagged(); n > 0 {
				log.Printf("room %s: subscriber %s lagged, dropped %d messages", roomID, sub.ID, n)
			}
			c.SSEvent("IncomingMessage", msg)
			c.Writer.Flush()

		case <-keepalive.C:
			if _, err := c.Writer.WriteString(": keepalive\n\n"); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}
