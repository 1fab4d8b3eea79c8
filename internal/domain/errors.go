package domain

import "errors"

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrBlockNotFound    = errors.New("block not found")
	ErrUnknownBlockType = errors.New("unknown block type")
	ErrUnknownField     = errors.New("unknown field")
)
