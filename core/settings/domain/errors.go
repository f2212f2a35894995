package domain

import "errors"

var (
	ErrUnknownField = errors.New("settings: unknown field")
	ErrInvalidValue = errors.New("settings: invalid value")
	ErrNoSettings   = errors.New("settings: payload has no settings object")
)
