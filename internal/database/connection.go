package database

import (
	"errors"
	"os"

	"github.com/thereayou/talkroom/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func (d *Database) Connect() error {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return errors.New("DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return err
	}

	d.db = db

	return d.Migrate()
}

// Migrate создает схему и общий канал general
func (d *Database) Migrate() error {
	err := d.db.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.Message{},
		&models.Upload{},
	)
	if err != nil {
		return err
	}

	return d.InitRooms()
}
