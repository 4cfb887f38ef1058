package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/thereayou/talkroom/internal/database"
	"github.com/thereayou/talkroom/internal/handlers/dto"
	"github.com/thereayou/talkroom/internal/middleware"
	"github.com/thereayou/talkroom/internal/models"
	"github.com/thereayou/talkroom/internal/rooms"
)

type RoomHandler struct {
	db      *database.Database
	manager *rooms.Manager
}

func NewRoomHandler(db *database.Database, manager *rooms.Manager) *RoomHandler {
	return &RoomHandler{db: db, manager: manager}
}

// CreateRoom создает канал. Id — kebab-case от имени, поэтому
// повторное создание канала с тем же именем возвращает существующий.
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	var req dto.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	roomID := toKebab(req.Name)
	if roomID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room name must contain letters or digits"})
		return
	}

	roomID, err := h.db.CreateRoom(roomID, req.Name, req.Description, req.IsPrivate, false, []string{userID.String()})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create room"})
		return
	}

	room, err := h.db.GetRoom(roomID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load room"})
		return
	}

	c.JSON(http.StatusCreated, formatRoomResponse(room))
}

// CreateUserRoom создает (или находит) личную комнату. Id детерминирован:
// отсортированные уникальные id участников через "-", поэтому повторный
// запрос с тем же составом попадает в ту же комнату.
func (h *RoomHandler) CreateUserRoom(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	var req dto.CreateUserRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	memberIDs := append(req.UserIDs, userID.String())
	memberIDs = lo.Uniq(memberIDs)
	sort.Strings(memberIDs)

	names := make([]string, 0, len(memberIDs))
	for _, id := range memberIDs {
		user, err := h.db.GetUser(id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown user: " + id})
			return
		}
		names = append(names, user.Username)
	}

	roomID := strings.Join(memberIDs, "-")

	roomID, err := h.db.CreateRoom(roomID, strings.Join(names, ", "), "", true, true, memberIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create room"})
		return
	}

	room, err := h.db.GetRoom(roomID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load room"})
		return
	}

	c.JSON(http.StatusOK, formatRoomResponse(room))
}

// GetMyRooms возвращает видимые комнаты: личные и каналы отдельно
func (h *RoomHandler) GetMyRooms(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	conversations, channels, err := h.db.GetRooms(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get rooms"})
		return
	}

	registry := h.manager.Registry()

	format := func(list []models.Room) []gin.H {
		result := make([]gin.H, len(list))
		for i, room := range list {
			response := formatRoomResponse(&room)
			response["online_count"] = registry.Subscribers(room.ID)
			result[i] = response
		}
		return result
	}

	c.JSON(http.StatusOK, gin.H{
		"conversations": format(conversations),
		"channels":      format(channels),
	})
}

// GetRoom возвращает комнату с участниками
func (h *RoomHandler) GetRoom(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)
	roomID := c.Param("id")

	room, err := h.db.GetRoom(roomID, userID)
	if err != nil {
		respondRoomError(c, err)
		return
	}

	members, err := h.db.GetRoomUsers(roomID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get members"})
		return
	}

	response := formatRoomResponse(room)
	response["members"] = formatMembers(members)
	response["online_count"] = h.manager.Registry().Subscribers(roomID)

	c.JSON(http.StatusOK, response)
}

// AddMember добавляет участника. Добавлять могут только участники комнаты.
func (h *RoomHandler) AddMember(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)
	roomID := c.Param("id")

	if _, err := h.db.GetRoom(roomID, userID); err != nil {
		respondRoomError(c, err)
		return
	}

	isMember, err := h.db.IsMemberOfRoom(roomID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check membership"})
		return
	}
	if !isMember {
		c.JSON(http.StatusForbidden, gin.H{"error": "you are not a member of this room"})
		return
	}

	var req dto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	newMemberID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.db.AddUserToRoom(roomID, newMemberID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add member"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "member added"})
}

// RemoveMember убирает участника. Последнего участника приватной
// комнаты убрать нельзя.
func (h *RoomHandler) RemoveMember(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)
	roomID := c.Param("id")

	isMember, err := h.db.IsMemberOfRoom(roomID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check membership"})
		return
	}
	if !isMember {
		c.JSON(http.StatusForbidden, gin.H{"error": "you are not a member of this room"})
		return
	}

	memberID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.db.RemoveUserFromRoom(roomID, memberID); err != nil {
		switch {
		case errors.Is(err, database.ErrRoomCannotBeEmpty):
			c.JSON(http.StatusBadRequest, gin.H{"error": "room cannot be empty"})
		case errors.Is(err, database.ErrRoomNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove member"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "member removed"})
}

func respondRoomError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, database.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
	case errors.Is(err, database.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "you are not a member of this room"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func formatMembers(members []models.User) []gin.H {
	result := make([]gin.H, len(members))
	for i := range members {
		result[i] = formatUser(&members[i])
	}
	return result
}

func formatRoomResponse(room *models.Room) gin.H {
	return gin.H{
		"id":          room.ID,
		"name":        room.Name,
		"description": room.Description,
		"is_private":  room.IsPrivate,
		"is_user":     room.IsUser,
		"created_at":  room.CreatedAt,
	}
}

// toKebab приводит имя канала к id: "My Room" -> "my-room"
func toKebab(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastDash = false
		} else if !lastDash {
			b.WriteRune('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
