package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/xid"
	"github.com/thereayou/talkroom/internal/models"
	"gorm.io/gorm"
)

// MaxFetch — размер страницы истории
const MaxFetch = 5

// GetMessagesForRoom получает страницу истории комнаты, новые первыми.
// Предикат доступа входит в тот же запрос, что и выборка.
func (d *Database) GetMessagesForRoom(roomID string, userID uuid.UUID, page int) ([]models.Message, error) {
	if page < 0 {
		page = 0
	}
	offset := page * MaxFetch

	var messages []models.Message
	err := d.db.
		Select("messages.*").
		Joins("JOIN rooms r ON r.id = messages.room_id").
		Joins("LEFT JOIN user_rooms ur ON r.id = ur.room_id AND ur.user_id = ?", userID).
		Where("messages.room_id = ? AND (r.is_private = ? OR ur.user_id IS NOT NULL)", roomID, false).
		Order("messages.created_at DESC").
		Limit(MaxFetch).
		Offset(offset).
		Preload("User").
		Preload("Uploads").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	return messages, nil
}

// SendMessage сохраняет сообщение одной транзакцией: проверка доступа,
// вставка, привязка вложений. Несуществующий upload id откатывает всё.
func (d *Database) SendMessage(roomID string, userID uuid.UUID, content string, uploadIDs []string) (*models.Message, error) {
	message := models.Message{
		ID:        xid.New().String(),
		RoomID:    roomID,
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now(),
	}

	err := d.db.Transaction(func(tx *gorm.DB) error {
		var room models.Room
		err := tx.
			Select("rooms.*").
			Joins("LEFT JOIN user_rooms ur ON rooms.id = ur.room_id AND ur.user_id = ?", userID).
			Where("rooms.id = ? AND (rooms.is_private = ? OR ur.user_id IS NOT NULL)", roomID, false).
			First(&room).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccessDenied
			}
			return err
		}

		for _, uploadID := range uploadIDs {
			var upload models.Upload
			if err := tx.First(&upload, "id = ?", uploadID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: %s", ErrUploadNotFound, uploadID)
				}
				return err
			}
			message.Uploads = append(message.Uploads, upload)
		}

		// Create вставляет сообщение и связи message_uploads одной операцией
		return tx.Omit("User", "Room").Create(&message).Error
	})
	if err != nil {
		return nil, err
	}

	return &message, nil
}
