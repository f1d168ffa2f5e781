package domain

import "errors"

var (
	ErrInvalidSelection = errors.New("invalid book selection")
	ErrUnknownBook      = errors.New("unknown book")
	ErrInvalidPageRange = errors.New("invalid page range")
	ErrInvalidLimit     = errors.New("invalid limit")
	ErrBookNotFound     = errors.New("book not found")
)

var ErrBatchTooLarge = errors.New("batch too large")
