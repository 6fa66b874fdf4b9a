package village

import "errors"

var (
	ErrCharacterNotFound   = errors.New("character not found")
	ErrDuplicateSession    = errors.New("session already submitted")
	ErrStageLocked         = errors.New("stage locked")
	ErrInsufficientBalance = errors.New("insufficient balance")
)
