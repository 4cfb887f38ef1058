package database

import "errors"

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrAccessDenied      = errors.New("access to room denied")
	ErrRoomCannotBeEmpty = errors.New("room cannot be empty")
	ErrUploadNotFound    = errors.New("upload not found")
)
