package usecase

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrInternal        = errors.New("internal error")
	ErrEmptyQuery      = errors.New("search query is empty")
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileBusy     = errors.New("profile graph is busy")
)
