package room

import "errors"

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomAlreadyExists = errors.New("room already exists")
	ErrUpdateConflict    = errors.New("room was modified concurrently")
)
