package pricing

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrModelUnavailable = errors.New("pricing model not loaded")
	ErrBadPrediction    = errors.New("model produced an unusable price")
)
