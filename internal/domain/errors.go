package domain

import "errors"

var (
	ErrInvalidID       = errors.New("invalid id")
	ErrInvalidName     = errors.New("invalid name")
	ErrInvalidColor    = errors.New("invalid color")
	ErrInvalidText     = errors.New("invalid text")
	ErrInvalidCategory = errors.New("invalid category id")
)
