package database

import (
	"errors"

	"github.com/thereayou/talkroom/internal/models"
	"gorm.io/gorm"
)

func (d *Database) SaveUpload(upload *models.Upload) error {
	return d.db.Create(upload).Error
}

func (d *Database) GetUpload(id string) (*models.Upload, error) {
	var upload models.Upload
	if err := d.db.First(&upload, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUploadNotFound
		}
		return nil, err
	}
	return &upload, nil
}
