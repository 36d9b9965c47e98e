package logs

import "errors"

var (
	ErrNotFound  = errors.New("log not found")
	ErrInvalidID = errors.New("invalid log id")
)
