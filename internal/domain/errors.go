package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrRentalArchived = errors.New("rental is archived")
	ErrStorage        = errors.New("storage failure")
)
