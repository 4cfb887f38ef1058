package models

import (
	"github.com/google/uuid"
	"time"
)

type Message struct {
	// ID генерируется через xid, сообщения неизменяемы после создания
	ID        string    `gorm:"primaryKey"`
	RoomID    string    `gorm:"not null;index"`
	UserID    uuid.UUID `gorm:"not null"`
	Content   string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"index"`

	// Связи
	User    User     `gorm:"foreignKey:UserID"`
	Room    Room     `gorm:"foreignKey:RoomID"`
	Uploads []Upload `gorm:"many2many:message_uploads"`
}
