package model

import "errors"

var (
	// ErrNotFound is returned by stores when no row matches.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned by stores when a unique constraint is violated.
	ErrConflict = errors.New("already exists")
	// ErrTokenSuperseded is returned when a refresh token rotation loses
	// the compare-and-swap against the stored digest.
	ErrTokenSuperseded = errors.New("refresh token superseded")
)
