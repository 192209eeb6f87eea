package models

import "errors"

// Precondition violations surfaced to the caller as discrete kinds.
var (
	ErrEmptyName      = errors.New("name must not be empty")
	ErrDuplicateAlbum = errors.New("album name already exists")
	ErrUnknownAlbum   = errors.New("album not found")
	ErrDuplicatePhoto = errors.New("photo already in album")
	ErrUnknownPhoto   = errors.New("photo not found")
)
