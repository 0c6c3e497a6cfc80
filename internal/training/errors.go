package training

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
)
