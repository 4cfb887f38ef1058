package models

import (
	"github.com/google/uuid"
	"time"
)

type Upload struct {
	ID         string    `gorm:"primaryKey"`
	UploadedBy uuid.UUID `gorm:"not null"`
	RoomID     *string
	Filename   string
	URL        string `gorm:"not null"`
	CreatedAt  time.Time
}
