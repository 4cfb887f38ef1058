package models

import (
	"time"
)

type Room struct {
	// ID задается явно: kebab-case имя для каналов,
	// отсортированные user id через "-" для личных комнат
	ID          string `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Description string
	IsPrivate   bool `gorm:"not null;default:false"`
	IsUser      bool `gorm:"not null;default:false"`
	CreatedAt   time.Time

	// Связи
	Members  []User    `gorm:"many2many:user_rooms"`
	Messages []Message `gorm:"foreignKey:RoomID"`
}
