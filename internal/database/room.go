package database

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/thereayou/talkroom/internal/models"
	"gorm.io/gorm"
)

// GetRoom возвращает комнату, если она видна пользователю:
// публичная, либо есть запись участника. Проверка доступа и чтение —
// один запрос, чтобы не было окна между check и use.
func (d *Database) GetRoom(roomID string, userID uuid.UUID) (*models.Room, error) {
	var room models.Room
	err := d.db.
		Select("rooms.*").
		Joins("LEFT JOIN user_rooms ur ON rooms.id = ur.room_id AND ur.user_id = ?", userID).
		Where("rooms.id = ? AND (rooms.is_private = ? OR ur.user_id IS NOT NULL)", roomID, false).
		First(&room).Error

	if err == nil {
		return &room, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Различаем "комнаты нет" и "нет доступа" только для ошибки,
	// сам доступ уже решен запросом выше
	var count int64
	if err := d.db.Model(&models.Room{}).Where("id = ?", roomID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrRoomNotFound
	}
	return nil, ErrAccessDenied
}

// CreateRoom создает комнату. Если комната с таким id уже есть —
// возвращает существующий id, ничего не меняя.
func (d *Database) CreateRoom(id, name, description string, isPrivate, isUser bool, memberIDs []string) (string, error) {
	err := d.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Room{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			// комната уже существует
			return nil
		}

		room := models.Room{
			ID:          id,
			Name:        name,
			Description: description,
			IsPrivate:   isPrivate,
			IsUser:      isUser,
			CreatedAt:   time.Now(),
		}

		if err := tx.Create(&room).Error; err != nil {
			return err
		}

		if room.IsPrivate {
			for _, memberID := range memberIDs {
				if err := tx.Exec(
					"INSERT INTO user_rooms (room_id, user_id) VALUES (?, ?)",
					id, memberID,
				).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	return id, nil
}

func (d *Database) IsMemberOfRoom(roomID string, userID uuid.UUID) (bool, error) {
	var count int64
	err := d.db.Table("user_rooms").
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddUserToRoom добавляет участника. Повторное добавление, в том числе
// двумя параллельными запросами, не ошибка.
func (d *Database) AddUserToRoom(roomID string, userID uuid.UUID) error {
	return d.db.Exec(
		"INSERT INTO user_rooms (room_id, user_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		roomID, userID,
	).Error
}

// RemoveUserFromRoom убирает участника. Последнего участника приватной
// комнаты убрать нельзя — комната стала бы недоступной навсегда.
func (d *Database) RemoveUserFromRoom(roomID string, userID uuid.UUID) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.First(&room, "id = ?", roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			return err
		}

		var total int64
		if err := tx.Table("user_rooms").Where("room_id = ?", roomID).Count(&total).Error; err != nil {
			return err
		}

		if room.IsPrivate && total <= 1 {
			return ErrRoomCannotBeEmpty
		}

		return tx.Exec(
			"DELETE FROM user_rooms WHERE room_id = ? AND user_id = ?",
			roomID, userID,
		).Error
	})
}

func (d *Database) GetRoomUsers(roomID string) ([]models.User, error) {
	var users []models.User
	err := d.db.
		Select("users.*").
		Joins("JOIN user_rooms ur ON ur.user_id = users.id").
		Where("ur.room_id = ?", roomID).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// GetRooms возвращает видимые пользователю комнаты: сначала личные
// переписки (is_user), потом каналы.
func (d *Database) GetRooms(userID uuid.UUID) (conversations, channels []models.Room, err error) {
	var rooms []models.Room
	err = d.db.
		Select("rooms.*").
		Joins("LEFT JOIN user_rooms ur ON rooms.id = ur.room_id AND ur.user_id = ?", userID).
		Where("rooms.is_private = ? OR ur.user_id IS NOT NULL", false).
		Find(&rooms).Error
	if err != nil {
		return nil, nil, err
	}

	conversations, channels = lo.FilterReject(rooms, func(r models.Room, _ int) bool {
		return r.IsUser
	})

	return conversations, channels, nil
}

// InitRooms создает общий канал general на пустой базе
func (d *Database) InitRooms() error {
	var count int64
	if err := d.db.Model(&models.Room{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	general := models.Room{
		ID:          "general",
		Name:        "general",
		Description: "The general channel",
		CreatedAt:   time.Now(),
	}

	return d.db.Create(&general).Error
}
