package quotes

import "errors"

var (
	ErrNotFound        = errors.New("quote not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrDuplicateNumber = errors.New("quote number already issued")
)
