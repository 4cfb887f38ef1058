package handlers

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/xid"
	"github.com/thereayou/talkroom/internal/database"
	"github.com/thereayou/talkroom/internal/middleware"
	"github.com/thereayou/talkroom/internal/models"
)

type UploadHandler struct {
	db          *database.Database
	uploadsPath string
}

func NewUploadHandler(db *database.Database, uploadsPath string) *UploadHandler {
	return &UploadHandler{db: db, uploadsPath: uploadsPath}
}

// UploadToRoom принимает файл и регистрирует его как вложение.
// Возвращенный id передается в отправку сообщения.
func (h *UploadHandler) UploadToRoom(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)
	roomID := c.Param("id")

	if _, err := h.db.GetRoom(roomID, userID); err != nil {
		respondRoomError(c, err)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}
	defer file.Close()

	id := xid.New().String()
	storedName := id + "_" + filepath.Base(header.Filename)
	storedPath := filepath.Join(h.uploadsPath, storedName)

	if err := saveFile(file, storedPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file"})
		return
	}

	mtype, err := mimetype.DetectFile(storedPath)
	if err != nil {
		os.Remove(storedPath)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to detect file type"})
		return
	}

	upload := &models.Upload{
		ID:         id,
		UploadedBy: userID,
		RoomID:     &roomID,
		Filename:   header.Filename,
		URL:        "/uploads/" + storedName,
		CreatedAt:  time.Now(),
	}

	if err := h.db.SaveUpload(upload); err != nil {
		os.Remove(storedPath)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save upload"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":           upload.ID,
		"url":          upload.URL,
		"filename":     upload.Filename,
		"content_type": mtype.String(),
	})
}

// GetUpload отдает метаданные вложения
func (h *UploadHandler) GetUpload(c *gin.Context) {
	upload, err := h.db.GetUpload(c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrUploadNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "upload not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get upload"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         upload.ID,
		"url":        upload.URL,
		"filename":   upload.Filename,
		"room_id":    upload.RoomID,
		"created_at": upload.CreatedAt,
	})
}

func saveFile(src io.Reader, path string) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}
